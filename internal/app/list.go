package app

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/Ayt3ck/puppet-homebrew/internal/output"
)

var (
	listCached bool
	listJSON   bool

	listCmd = &cobra.Command{
		Use:   "list [package]",
		Short: "List installed packages",
		Long: `List installed packages. With a package argument, both cask and formula
categories are checked for that name. A full live listing also refreshes
the observed-state cache; --cached reads the cache instead of brew.`,
		Example: `  brewpkg list
  brewpkg list wget
  brewpkg list --cached`,
		Args: cobra.MaximumNArgs(1),
		RunE: runList,
	}
)

func init() {
	listCmd.Flags().BoolVar(&listCached, "cached", false, "read the observed-state cache instead of brew")
	listCmd.Flags().BoolVar(&listJSON, "json", false, "emit records as JSON")
	RootCmd.AddCommand(listCmd)
}

func runList(cmd *cobra.Command, args []string) error {
	if listCached {
		return runListCached()
	}

	filter := ""
	if len(args) == 1 {
		filter = args[0]
	}

	p, err := newProvider()
	if err != nil {
		return err
	}

	pkgs, err := p.PackageList(filter)
	if err != nil {
		return err
	}

	// A full listing doubles as a cache refresh. Best effort: the listing
	// is still printed when the cache is unavailable.
	if filter == "" {
		if st, err := openStore(); err == nil {
			if err := st.ReplaceAll(pkgs, time.Now()); err != nil {
				log.WithError(err).Debug("could not refresh package cache")
			}
			st.Close()
		} else {
			log.WithError(err).Debug("could not open package cache")
		}
	}

	if listJSON {
		return json.NewEncoder(os.Stdout).Encode(pkgs)
	}
	fmt.Print(output.RenderPackageTable(pkgs))
	return nil
}

func runListCached() error {
	st, err := openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	pkgs, err := st.ListPackages()
	if err != nil {
		return err
	}

	if listJSON {
		return json.NewEncoder(os.Stdout).Encode(pkgs)
	}
	fmt.Print(output.RenderObservedTable(pkgs))
	return nil
}
