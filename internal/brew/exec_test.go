package brew

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestResolveExecContextOwnership(t *testing.T) {
	dir := t.TempDir()
	bin := filepath.Join(dir, "brew")
	if err := os.WriteFile(bin, []byte("#!/bin/sh\n"), 0755); err != nil {
		t.Fatal(err)
	}

	ctx, err := ResolveExecContext(bin)
	if os.Getuid() == 0 {
		// The temp file is root-owned when the tests run as root, which is
		// exactly the case the provider refuses.
		var perm *PermissionError
		if !errors.As(err, &perm) {
			t.Fatalf("expected PermissionError for root-owned binary, got %v", err)
		}
		if perm.Path != bin {
			t.Errorf("PermissionError path = %q, want %q", perm.Path, bin)
		}
		return
	}

	if err != nil {
		t.Fatalf("ResolveExecContext failed: %v", err)
	}
	if ctx.Path != bin {
		t.Errorf("Path = %q, want %q", ctx.Path, bin)
	}
	if ctx.Home == "" {
		t.Error("Home should be resolved from the binary owner's account")
	}
}

func TestResolveExecContextMissingBinary(t *testing.T) {
	if _, err := ResolveExecContext("/nonexistent/brew"); err == nil {
		t.Fatal("expected an error for a missing binary")
	}
}

func TestExecContextRun(t *testing.T) {
	ctx := &ExecContext{Path: "/bin/sh", Home: "/tmp"}

	out, err := ctx.Run([]string{"-c", "echo hello"}, RunOptions{FailOnError: true})
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if strings.TrimSpace(out) != "hello" {
		t.Errorf("output = %q, want hello", out)
	}
}

func TestExecContextRunSanitizesEnvironment(t *testing.T) {
	t.Setenv("BREW_TEST_LEAK", "leaked")

	ctx := &ExecContext{Path: "/bin/sh", Home: "/tmp"}
	out, err := ctx.Run([]string{"-c", "echo HOME=$HOME LEAK=$BREW_TEST_LEAK"}, RunOptions{FailOnError: true})
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if !strings.Contains(out, "HOME=/tmp") {
		t.Errorf("HOME not set from context: %q", out)
	}
	if strings.Contains(out, "LEAK=leaked") {
		t.Errorf("caller environment leaked into subprocess: %q", out)
	}
}

func TestExecContextRunFailOnError(t *testing.T) {
	ctx := &ExecContext{Path: "/bin/sh", Home: "/tmp"}

	_, err := ctx.Run([]string{"-c", "exit 3"}, RunOptions{FailOnError: true})
	var execErr *ExecError
	if !errors.As(err, &execErr) {
		t.Fatalf("expected *ExecError, got %v", err)
	}
	if execErr.ExitCode != 3 {
		t.Errorf("ExitCode = %d, want 3", execErr.ExitCode)
	}

	// Without FailOnError the exit status is discarded.
	if _, err := ctx.Run([]string{"-c", "exit 3"}, RunOptions{}); err != nil {
		t.Errorf("non-fatal run returned error: %v", err)
	}
}

func TestExecContextRunCombineOutput(t *testing.T) {
	ctx := &ExecContext{Path: "/bin/sh", Home: "/tmp"}

	out, err := ctx.Run([]string{"-c", "echo oops >&2"}, RunOptions{FailOnError: true, CombineOutput: true})
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if !strings.Contains(out, "oops") {
		t.Errorf("stderr not captured with CombineOutput: %q", out)
	}

	out, err = ctx.Run([]string{"-c", "echo oops >&2"}, RunOptions{FailOnError: true})
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if strings.Contains(out, "oops") {
		t.Errorf("stderr captured without CombineOutput: %q", out)
	}
}
