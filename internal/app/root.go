package app

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/Ayt3ck/puppet-homebrew/internal/brew"
	"github.com/Ayt3ck/puppet-homebrew/internal/config"
	"github.com/Ayt3ck/puppet-homebrew/internal/store"
)

var (
	cfgFile string
	verbose bool

	cfg *config.Config
	log = logrus.New()

	// RootCmd is the root command for brewpkg
	RootCmd = &cobra.Command{
		Use:   "brewpkg",
		Short: "Homebrew package provider for configuration-management agents",
		Long: `brewpkg converges Homebrew packages toward a desired state. It wraps the
brew binary with a sanitized environment, parses its output into package
records, and exposes the lifecycle a configuration-management host expects:
query, latest, install, uninstall, upgrade.

Examples:
  # What is installed right now?
  brewpkg query wget

  # Newest version brew knows about
  brewpkg latest git

  # Converge a whole manifest
  brewpkg apply packages.ini

  # Keep the state cache fresh while other tools touch brew
  brewpkg watch --daemon`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			var err error
			cfg, err = config.Load(cfgFile)
			if err != nil {
				return err
			}
			if verbose {
				cfg.LogLevel = "debug"
			}
			level, err := logrus.ParseLevel(cfg.LogLevel)
			if err != nil {
				return fmt.Errorf("invalid log level %q: %w", cfg.LogLevel, err)
			}
			log.SetLevel(level)
			log.SetOutput(os.Stderr)
			return nil
		},
	}
)

func init() {
	RootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: ~/.config/brewpkg/config.ini)")
	RootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")

	RootCmd.SuggestionsMinimumDistance = 2
}

// Execute runs the root command
func Execute() error {
	return RootCmd.Execute()
}

// newProvider builds the provider against the configured brew binary.
func newProvider() (*brew.Provider, error) {
	execCtx, err := brew.ResolveExecContext(cfg.BrewPath)
	if err != nil {
		return nil, err
	}
	return brew.NewProvider(execCtx, log), nil
}

// installOptionsFor merges the configured default install options with
// per-command flags.
func installOptionsFor(flags []string) []string {
	if len(cfg.InstallOptions) == 0 {
		return flags
	}
	return append(append([]string{}, cfg.InstallOptions...), flags...)
}

// stateDir returns ~/.brewpkg, creating it if needed.
func stateDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user home directory: %w", err)
	}
	dir := filepath.Join(home, ".brewpkg")
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create state directory: %w", err)
	}
	return dir, nil
}

// getDBPath returns the cache database path, using the config value or the
// default under the state directory.
func getDBPath() (string, error) {
	if cfg != nil && cfg.DBPath != "" {
		return cfg.DBPath, nil
	}
	dir, err := stateDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "brewpkg.db"), nil
}

// openStore opens the cache database and ensures the schema exists.
func openStore() (*store.Store, error) {
	dbPath, err := getDBPath()
	if err != nil {
		return nil, err
	}
	st, err := store.New(dbPath)
	if err != nil {
		return nil, err
	}
	if err := st.CreateSchema(); err != nil {
		st.Close()
		return nil, err
	}
	return st, nil
}

// getDefaultPIDFile returns the default watch daemon PID file path.
func getDefaultPIDFile() (string, error) {
	dir, err := stateDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "watch.pid"), nil
}

// getDefaultLogFile returns the default watch daemon log file path.
func getDefaultLogFile() (string, error) {
	dir, err := stateDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "watch.log"), nil
}
