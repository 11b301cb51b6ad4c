package output

import (
	"strings"
	"testing"
	"time"

	"github.com/Ayt3ck/puppet-homebrew/internal/brew"
	"github.com/Ayt3ck/puppet-homebrew/internal/store"
)

func TestRenderPackageTable(t *testing.T) {
	pkgs := []brew.Package{
		{Name: "wget", Version: "1.21.3", Provider: brew.ProviderName},
		{Name: "node", Version: "18.0.0", Provider: brew.ProviderName},
	}

	out := RenderPackageTable(pkgs)

	if !strings.Contains(out, "wget") || !strings.Contains(out, "1.21.3") {
		t.Errorf("missing wget row: %q", out)
	}
	// Sorted by name: node before wget.
	if strings.Index(out, "node") > strings.Index(out, "wget") {
		t.Errorf("rows not sorted by name: %q", out)
	}
}

func TestRenderPackageTableEmpty(t *testing.T) {
	out := RenderPackageTable(nil)
	if !strings.Contains(out, "No packages found") {
		t.Errorf("unexpected empty rendering: %q", out)
	}
}

func TestRenderObservedTable(t *testing.T) {
	pkgs := []store.ObservedPackage{
		{Name: "git", Version: "2.40.0", ObservedAt: time.Now().Add(-time.Hour)},
	}

	out := RenderObservedTable(pkgs)
	if !strings.Contains(out, "git") || !strings.Contains(out, "ago") {
		t.Errorf("missing observed row or relative time: %q", out)
	}
}

func TestRenderChanges(t *testing.T) {
	changes := []store.Change{
		{Package: "wget", Action: string(brew.ActionInstall), ToVersion: "1.21.3"},
		{Package: "git", Action: string(brew.ActionUpgrade), FromVersion: "2.39.0", ToVersion: "2.40.0"},
		{Package: "htop", Action: string(brew.ActionUninstall), FromVersion: "3.2.2"},
	}

	out := RenderChanges(changes)
	for _, want := range []string{"install", "wget (1.21.3)", "2.39.0 -> 2.40.0", "(was 3.2.2)"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q: %q", want, out)
		}
	}
}

func TestRenderChangesEmpty(t *testing.T) {
	out := RenderChanges(nil)
	if !strings.Contains(out, "Nothing to do") {
		t.Errorf("unexpected empty rendering: %q", out)
	}
}
