package app

import (
	"fmt"
	"time"

	multierror "github.com/hashicorp/go-multierror"
	"github.com/spf13/cobra"

	"github.com/Ayt3ck/puppet-homebrew/internal/brew"
	"github.com/Ayt3ck/puppet-homebrew/internal/config"
	"github.com/Ayt3ck/puppet-homebrew/internal/output"
	"github.com/Ayt3ck/puppet-homebrew/internal/store"
)

var applyCmd = &cobra.Command{
	Use:   "apply <manifest>",
	Short: "Converge packages toward a manifest",
	Long: `Read a resource manifest and reconcile every package in it: install what
is missing, uninstall what should be absent, upgrade what is outdated.
Each pass is recorded in the state cache so 'brewpkg status' can report
what the last run changed.

Manifest format (ini, one section per package):

  [git]
  ensure = latest

  [wget]
  ensure = 1.21.3
  options = --force-bottle`,
	Example: `  brewpkg apply packages.ini`,
	Args:    cobra.ExactArgs(1),
	RunE:    runApply,
}

func init() {
	RootCmd.AddCommand(applyCmd)
}

// reconciler is the provider surface apply needs.
type reconciler interface {
	Query(name string) (*brew.Package, error)
	Reconcile(res brew.ResourceSpec) (brew.Action, error)
}

func runApply(cmd *cobra.Command, args []string) error {
	resources, err := config.LoadManifest(args[0])
	if err != nil {
		return err
	}

	p, err := newProvider()
	if err != nil {
		return err
	}

	st, err := openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	for i := range resources {
		resources[i].InstallOptions = installOptionsFor(resources[i].InstallOptions)
	}

	changes, err := applyResources(p, st, resources)
	fmt.Print(output.RenderChanges(changes))
	return err
}

// applyResources reconciles every resource, recording the actions taken as
// one run in the store. A failing resource does not stop the pass; failures
// are aggregated and reported at the end.
func applyResources(p reconciler, st *store.Store, resources []brew.ResourceSpec) ([]store.Change, error) {
	runID, err := st.StartRun(time.Now())
	if err != nil {
		return nil, err
	}

	var changes []store.Change
	var errs *multierror.Error

	for _, res := range resources {
		before, err := p.Query(res.Name)
		if err != nil {
			errs = multierror.Append(errs, fmt.Errorf("%s: %w", res.Name, err))
			continue
		}

		action, err := p.Reconcile(res)
		if err != nil {
			errs = multierror.Append(errs, fmt.Errorf("%s: %w", res.Name, err))
			continue
		}
		if action == brew.ActionNone {
			continue
		}

		change := store.Change{
			RunID:   runID,
			Package: brew.ResourceName(res.Name),
			Action:  string(action),
		}
		if before != nil {
			change.FromVersion = before.Version
		}
		if action != brew.ActionUninstall {
			if after, err := p.Query(res.Name); err == nil && after != nil {
				change.ToVersion = after.Version
			}
		}

		if err := st.RecordChange(change); err != nil {
			errs = multierror.Append(errs, err)
		}
		changes = append(changes, change)
	}

	if err := st.FinishRun(runID, time.Now(), len(changes)); err != nil {
		errs = multierror.Append(errs, err)
	}

	return changes, errs.ErrorOrNil()
}
