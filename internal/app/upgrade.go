package app

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Ayt3ck/puppet-homebrew/internal/brew"
)

var (
	upgradeVersion string
	upgradeOptions []string

	upgradeCmd = &cobra.Command{
		Use:   "upgrade <package>",
		Short: "Upgrade a package, installing it if absent",
		Example: `  brewpkg upgrade git
  brewpkg upgrade node --pin 18.0.0`,
		Args: cobra.ExactArgs(1),
		RunE: runUpgrade,
	}
)

func init() {
	upgradeCmd.Flags().StringVar(&upgradeVersion, "pin", "", "upgrade to this exact version")
	upgradeCmd.Flags().StringArrayVar(&upgradeOptions, "option", nil, "extra brew upgrade flag (repeatable)")
	RootCmd.AddCommand(upgradeCmd)
}

func runUpgrade(cmd *cobra.Command, args []string) error {
	p, err := newProvider()
	if err != nil {
		return err
	}

	res := brew.ResourceSpec{
		Name:           args[0],
		Ensure:         brew.EnsureLatest,
		InstallOptions: installOptionsFor(upgradeOptions),
	}
	if upgradeVersion != "" {
		res.Ensure = brew.Ensure(upgradeVersion)
	}

	if err := p.Upgrade(res); err != nil {
		return err
	}

	fmt.Printf("Upgraded %s\n", brew.InstallName(res))
	return nil
}
