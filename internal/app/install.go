package app

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Ayt3ck/puppet-homebrew/internal/brew"
)

var (
	installVersion string
	installOptions []string

	installCmd = &cobra.Command{
		Use:   "install <package>",
		Short: "Install a package",
		Long: `Install a package via brew install. A pinned version becomes a
name@version install; extra options are handed to brew verbatim.

If a cached download fails checksum verification, the stale files are
removed before the failure is reported, so a retry starts from a clean
cache.`,
		Example: `  brewpkg install wget
  brewpkg install node --pin 18.0.0
  brewpkg install wget --option --force-bottle`,
		Args: cobra.ExactArgs(1),
		RunE: runInstall,
	}
)

func init() {
	installCmd.Flags().StringVar(&installVersion, "pin", "", "install this exact version")
	installCmd.Flags().StringArrayVar(&installOptions, "option", nil, "extra brew install flag (repeatable)")
	RootCmd.AddCommand(installCmd)
}

func runInstall(cmd *cobra.Command, args []string) error {
	p, err := newProvider()
	if err != nil {
		return err
	}

	res := brew.ResourceSpec{
		Name:           args[0],
		Ensure:         brew.EnsurePresent,
		InstallOptions: installOptionsFor(installOptions),
	}
	if installVersion != "" {
		res.Ensure = brew.Ensure(installVersion)
	}

	if err := p.Install(res); err != nil {
		return err
	}

	fmt.Printf("Installed %s\n", brew.InstallName(res))
	return nil
}
