package app

import (
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/Ayt3ck/puppet-homebrew/internal/brew"
	"github.com/Ayt3ck/puppet-homebrew/internal/watcher"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show cache freshness and the last reconcile run",
	Long: `Display the watch daemon state, the observed-state cache contents, the
most recent reconcile pass, and how far the cache has drifted from what
brew actually has installed.`,
	Example: `  brewpkg status`,
	RunE:    runStatus,
}

func init() {
	RootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, args []string) error {
	pidFile, err := getDefaultPIDFile()
	if err != nil {
		return err
	}
	running, err := watcher.IsDaemonRunning(pidFile)
	if err != nil {
		return err
	}
	if running {
		fmt.Println("Watch daemon: running")
	} else {
		fmt.Println("Watch daemon: not running")
	}

	st, err := openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	names, err := st.PackageNames()
	if err != nil {
		return err
	}
	fmt.Printf("Cached packages: %d\n", len(names))

	last, err := st.LastRun()
	if err != nil {
		return err
	}
	if last == nil {
		fmt.Println("Last reconcile: never")
	} else {
		fmt.Printf("Last reconcile: %s (%d change(s))\n", humanize.Time(last.StartedAt), last.Changes)
	}

	// Best effort: skip drift reporting when brew itself is unavailable.
	if p, err := newProvider(); err == nil {
		if stale, err := countUncachedPackages(p, names); err == nil && stale > 0 {
			fmt.Printf("Cache drift: %d installed package(s) not in the cache — run 'brewpkg list' to refresh\n", stale)
		}
	}

	return nil
}

// lister is the provider surface drift counting needs.
type lister interface {
	PackageList(filter string) ([]brew.Package, error)
}

// countUncachedPackages reports how many live packages are missing from the
// cached name set.
func countUncachedPackages(p lister, cached []string) (int, error) {
	known := make(map[string]struct{}, len(cached))
	for _, name := range cached {
		known[name] = struct{}{}
	}

	live, err := p.PackageList("")
	if err != nil {
		return 0, err
	}

	missing := 0
	for _, pkg := range live {
		if _, ok := known[pkg.Name]; !ok {
			missing++
		}
	}
	return missing, nil
}
