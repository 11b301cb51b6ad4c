package app

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/Ayt3ck/puppet-homebrew/internal/brew"
)

var (
	queryJSON bool

	queryCmd = &cobra.Command{
		Use:   "query <package>",
		Short: "Report the installed state of one package",
		Long: `Query brew for the installed state of a single package. Both the cask and
formula categories are checked. Prints nothing machine-hostile: either
"<name> <version>" or a note that the package is not installed.`,
		Example: `  brewpkg query wget
  brewpkg query --json node`,
		Args: cobra.ExactArgs(1),
		RunE: runQuery,
	}
)

func init() {
	queryCmd.Flags().BoolVar(&queryJSON, "json", false, "emit the record as JSON")
	RootCmd.AddCommand(queryCmd)
}

func runQuery(cmd *cobra.Command, args []string) error {
	p, err := newProvider()
	if err != nil {
		return err
	}

	pkg, err := p.Query(args[0])
	if err != nil {
		return err
	}
	if pkg == nil {
		fmt.Printf("%s is not installed\n", brew.ResourceName(args[0]))
		return nil
	}

	if queryJSON {
		return json.NewEncoder(os.Stdout).Encode(pkg)
	}
	fmt.Printf("%s %s\n", pkg.Name, pkg.Version)
	return nil
}
