package app

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Ayt3ck/puppet-homebrew/internal/brew"
)

var uninstallCmd = &cobra.Command{
	Use:     "uninstall <package>",
	Short:   "Remove a package",
	Example: `  brewpkg uninstall wget`,
	Args:    cobra.ExactArgs(1),
	RunE:    runUninstall,
}

func init() {
	RootCmd.AddCommand(uninstallCmd)
}

func runUninstall(cmd *cobra.Command, args []string) error {
	p, err := newProvider()
	if err != nil {
		return err
	}

	if err := p.Uninstall(args[0]); err != nil {
		return err
	}

	fmt.Printf("Uninstalled %s\n", brew.ResourceName(args[0]))
	return nil
}
