package app

import (
	"errors"
	"testing"

	"github.com/Ayt3ck/puppet-homebrew/internal/brew"
	"github.com/Ayt3ck/puppet-homebrew/internal/store"
)

// fakeReconciler scripts per-package outcomes for applyResources.
type fakeReconciler struct {
	installed map[string]string // name -> version, queried before and after
	actions   map[string]brew.Action
	errs      map[string]error
	after     map[string]string // version visible after the action
}

func (f *fakeReconciler) Query(name string) (*brew.Package, error) {
	rn := brew.ResourceName(name)
	if v, ok := f.installed[rn]; ok {
		return &brew.Package{Name: rn, Version: v, Provider: brew.ProviderName}, nil
	}
	return nil, nil
}

func (f *fakeReconciler) Reconcile(res brew.ResourceSpec) (brew.Action, error) {
	rn := brew.ResourceName(res.Name)
	if err := f.errs[rn]; err != nil {
		return brew.ActionNone, err
	}
	action := f.actions[rn]
	if action == "" {
		action = brew.ActionNone
	}
	// Queries after the action see the new state.
	if after, ok := f.after[rn]; ok {
		if f.installed == nil {
			f.installed = map[string]string{}
		}
		f.installed[rn] = after
	}
	return action, nil
}

func newTestStore(t *testing.T) *store.Store {
	t.Helper()
	st, err := store.New(":memory:")
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { st.Close() })
	if err := st.CreateSchema(); err != nil {
		t.Fatal(err)
	}
	return st
}

func TestApplyResourcesRecordsChanges(t *testing.T) {
	st := newTestStore(t)
	p := &fakeReconciler{
		installed: map[string]string{"git": "2.39.0"},
		actions: map[string]brew.Action{
			"git":  brew.ActionUpgrade,
			"wget": brew.ActionInstall,
			"htop": brew.ActionNone,
		},
		after: map[string]string{
			"git":  "2.40.0",
			"wget": "1.21.3",
		},
	}

	resources := []brew.ResourceSpec{
		{Name: "git", Ensure: brew.EnsureLatest},
		{Name: "Wget", Ensure: brew.EnsurePresent},
		{Name: "htop", Ensure: brew.EnsurePresent},
	}

	changes, err := applyResources(p, st, resources)
	if err != nil {
		t.Fatalf("applyResources failed: %v", err)
	}
	if len(changes) != 2 {
		t.Fatalf("expected 2 changes, got %d: %+v", len(changes), changes)
	}

	if changes[0].Package != "git" || changes[0].FromVersion != "2.39.0" || changes[0].ToVersion != "2.40.0" {
		t.Errorf("git change = %+v", changes[0])
	}
	if changes[1].Package != "wget" || changes[1].FromVersion != "" || changes[1].ToVersion != "1.21.3" {
		t.Errorf("wget change = %+v", changes[1])
	}

	run, err := st.LastRun()
	if err != nil {
		t.Fatal(err)
	}
	if run == nil || run.Changes != 2 {
		t.Errorf("last run = %+v", run)
	}

	recorded, err := st.ListChanges(run.ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(recorded) != 2 {
		t.Errorf("recorded changes = %+v", recorded)
	}
}

func TestApplyResourcesUninstallKeepsFromVersion(t *testing.T) {
	st := newTestStore(t)
	p := &fakeReconciler{
		installed: map[string]string{"htop": "3.2.2"},
		actions:   map[string]brew.Action{"htop": brew.ActionUninstall},
	}

	changes, err := applyResources(p, st, []brew.ResourceSpec{{Name: "htop", Ensure: brew.EnsureAbsent}})
	if err != nil {
		t.Fatalf("applyResources failed: %v", err)
	}
	if len(changes) != 1 {
		t.Fatalf("expected 1 change, got %+v", changes)
	}
	if changes[0].FromVersion != "3.2.2" || changes[0].ToVersion != "" {
		t.Errorf("uninstall change = %+v", changes[0])
	}
}

func TestApplyResourcesContinuesPastFailures(t *testing.T) {
	st := newTestStore(t)
	p := &fakeReconciler{
		actions: map[string]brew.Action{"wget": brew.ActionInstall},
		errs:    map[string]error{"broken": errors.New("install exploded")},
		after:   map[string]string{"wget": "1.21.3"},
	}

	resources := []brew.ResourceSpec{
		{Name: "broken", Ensure: brew.EnsurePresent},
		{Name: "wget", Ensure: brew.EnsurePresent},
	}

	changes, err := applyResources(p, st, resources)
	if err == nil {
		t.Fatal("expected the aggregated error")
	}
	if len(changes) != 1 || changes[0].Package != "wget" {
		t.Errorf("changes = %+v", changes)
	}
}
