package app

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Ayt3ck/puppet-homebrew/internal/brew"
)

var latestCmd = &cobra.Command{
	Use:     "latest <package>",
	Short:   "Report the newest version brew knows for a package",
	Example: `  brewpkg latest git`,
	Args:    cobra.ExactArgs(1),
	RunE:    runLatest,
}

func init() {
	RootCmd.AddCommand(latestCmd)
}

func runLatest(cmd *cobra.Command, args []string) error {
	p, err := newProvider()
	if err != nil {
		return err
	}

	version, err := p.Latest(args[0])
	if err != nil {
		return err
	}
	if version == "" {
		fmt.Printf("no version information for %s\n", brew.ResourceName(args[0]))
		return nil
	}

	fmt.Println(version)
	return nil
}
