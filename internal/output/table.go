// Package output renders terminal tables for brewpkg's list and status
// commands. ANSI color is used only when stdout is a TTY and NO_COLOR is
// unset.
package output

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/mattn/go-isatty"

	"github.com/Ayt3ck/puppet-homebrew/internal/brew"
	"github.com/Ayt3ck/puppet-homebrew/internal/store"
)

const (
	colorReset  = "\033[0m"
	colorGreen  = "\033[32m"
	colorYellow = "\033[33m"
	colorRed    = "\033[31m"
	colorGray   = "\033[90m"
)

// IsColorEnabled returns true if ANSI color codes should be emitted.
func IsColorEnabled() bool {
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	return isatty.IsTerminal(os.Stdout.Fd())
}

// RenderPackageTable renders live provider records.
func RenderPackageTable(pkgs []brew.Package) string {
	if len(pkgs) == 0 {
		return "No packages found.\n"
	}

	sorted := make([]brew.Package, len(pkgs))
	copy(sorted, pkgs)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].Name < sorted[j].Name
	})

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%-28s %-20s %s\n", "Package", "Version", "Provider"))
	sb.WriteString(strings.Repeat("─", 60))
	sb.WriteString("\n")
	for _, pkg := range sorted {
		sb.WriteString(fmt.Sprintf("%-28s %-20s %s\n", pkg.Name, pkg.Version, pkg.Provider))
	}
	return sb.String()
}

// RenderObservedTable renders the cached observations with their age.
func RenderObservedTable(pkgs []store.ObservedPackage) string {
	if len(pkgs) == 0 {
		return "No packages cached. Run 'brewpkg list' or start 'brewpkg watch'.\n"
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%-28s %-20s %s\n", "Package", "Version", "Observed"))
	sb.WriteString(strings.Repeat("─", 60))
	sb.WriteString("\n")
	for _, pkg := range pkgs {
		sb.WriteString(fmt.Sprintf("%-28s %-20s %s\n", pkg.Name, pkg.Version, humanize.Time(pkg.ObservedAt)))
	}
	return sb.String()
}

// RenderChanges renders one reconcile pass's actions, colorized per action.
func RenderChanges(changes []store.Change) string {
	if len(changes) == 0 {
		return "Nothing to do: all resources already in their desired state.\n"
	}

	color := IsColorEnabled()
	var sb strings.Builder
	for _, c := range changes {
		line := fmt.Sprintf("%-10s %s", c.Action, c.Package)
		switch {
		case c.FromVersion != "" && c.ToVersion != "":
			line += fmt.Sprintf(" (%s -> %s)", c.FromVersion, c.ToVersion)
		case c.ToVersion != "":
			line += fmt.Sprintf(" (%s)", c.ToVersion)
		case c.FromVersion != "":
			line += fmt.Sprintf(" (was %s)", c.FromVersion)
		}
		if color {
			line = actionColor(c.Action) + line + colorReset
		}
		sb.WriteString(line)
		sb.WriteString("\n")
	}
	return sb.String()
}

func actionColor(action string) string {
	switch brew.Action(action) {
	case brew.ActionInstall:
		return colorGreen
	case brew.ActionUpgrade:
		return colorYellow
	case brew.ActionUninstall:
		return colorRed
	default:
		return colorGray
	}
}
