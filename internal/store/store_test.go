package store

import (
	"testing"
	"time"

	"github.com/Ayt3ck/puppet-homebrew/internal/brew"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := New(":memory:")
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	t.Cleanup(func() { s.Close() })

	if err := s.CreateSchema(); err != nil {
		t.Fatalf("failed to create schema: %v", err)
	}
	return s
}

func TestUpsertAndGetPackage(t *testing.T) {
	s := newTestStore(t)
	observed := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)

	pkg := ObservedPackage{Name: "wget", Version: "1.21.3", ObservedAt: observed}
	if err := s.UpsertPackage(pkg); err != nil {
		t.Fatalf("UpsertPackage failed: %v", err)
	}

	got, err := s.GetPackage("wget")
	if err != nil {
		t.Fatalf("GetPackage failed: %v", err)
	}
	if got == nil {
		t.Fatal("expected a package")
	}
	if got.Version != "1.21.3" || !got.ObservedAt.Equal(observed) {
		t.Errorf("got %+v", got)
	}

	// Upsert replaces in place.
	pkg.Version = "1.21.4"
	if err := s.UpsertPackage(pkg); err != nil {
		t.Fatalf("UpsertPackage failed: %v", err)
	}
	got, err = s.GetPackage("wget")
	if err != nil {
		t.Fatalf("GetPackage failed: %v", err)
	}
	if got.Version != "1.21.4" {
		t.Errorf("Version = %q after upsert, want 1.21.4", got.Version)
	}
}

func TestGetPackageMissing(t *testing.T) {
	s := newTestStore(t)
	got, err := s.GetPackage("nope")
	if err != nil {
		t.Fatalf("GetPackage failed: %v", err)
	}
	if got != nil {
		t.Errorf("expected nil for an unseen package, got %+v", got)
	}
}

func TestReplaceAll(t *testing.T) {
	s := newTestStore(t)
	observed := time.Now().UTC().Truncate(time.Second)

	if err := s.UpsertPackage(ObservedPackage{Name: "stale", Version: "0.1", ObservedAt: observed}); err != nil {
		t.Fatal(err)
	}

	listing := []brew.Package{
		{Name: "wget", Version: "1.21.3", Provider: brew.ProviderName},
		{Name: "node", Version: "18.0.0", Provider: brew.ProviderName},
	}
	if err := s.ReplaceAll(listing, observed); err != nil {
		t.Fatalf("ReplaceAll failed: %v", err)
	}

	names, err := s.PackageNames()
	if err != nil {
		t.Fatalf("PackageNames failed: %v", err)
	}
	if len(names) != 2 || names[0] != "node" || names[1] != "wget" {
		t.Errorf("names = %v", names)
	}
}

func TestRunHistory(t *testing.T) {
	s := newTestStore(t)
	started := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)

	id, err := s.StartRun(started)
	if err != nil {
		t.Fatalf("StartRun failed: %v", err)
	}

	change := Change{
		RunID:       id,
		Package:     "git",
		Action:      string(brew.ActionUpgrade),
		FromVersion: "2.39.0",
		ToVersion:   "2.40.0",
	}
	if err := s.RecordChange(change); err != nil {
		t.Fatalf("RecordChange failed: %v", err)
	}

	finished := started.Add(time.Minute)
	if err := s.FinishRun(id, finished, 1); err != nil {
		t.Fatalf("FinishRun failed: %v", err)
	}

	last, err := s.LastRun()
	if err != nil {
		t.Fatalf("LastRun failed: %v", err)
	}
	if last == nil || last.ID != id || last.Changes != 1 {
		t.Errorf("last run = %+v", last)
	}
	if !last.FinishedAt.Equal(finished) {
		t.Errorf("FinishedAt = %v, want %v", last.FinishedAt, finished)
	}

	changes, err := s.ListChanges(id)
	if err != nil {
		t.Fatalf("ListChanges failed: %v", err)
	}
	if len(changes) != 1 || changes[0] != change {
		t.Errorf("changes = %+v", changes)
	}
}

func TestLastRunEmpty(t *testing.T) {
	s := newTestStore(t)
	last, err := s.LastRun()
	if err != nil {
		t.Fatalf("LastRun failed: %v", err)
	}
	if last != nil {
		t.Errorf("expected nil, got %+v", last)
	}
}
