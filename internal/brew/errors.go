package brew

import (
	"fmt"
	"strings"
)

// PermissionError reports a brew binary owned by root. Homebrew refuses to
// run installs from a root-owned prefix, so this is fatal and not retried.
type PermissionError struct {
	Path string
}

func (e *PermissionError) Error() string {
	return fmt.Sprintf("%s is owned by root, and homebrew refuses to run package installs as root", e.Path)
}

// ExecError reports a subprocess that exited non-zero or failed to spawn.
type ExecError struct {
	Argv     []string
	ExitCode int
	Output   string
	Err      error
}

func (e *ExecError) Error() string {
	return fmt.Sprintf("command %q failed with exit code %d", strings.Join(e.Argv, " "), e.ExitCode)
}

func (e *ExecError) Unwrap() error {
	return e.Err
}

// ChecksumMismatchError reports a download whose checksum did not match
// during install or upgrade. The stale cached files have already been
// removed; the caller is expected to retry the install on its next pass.
type ChecksumMismatchError struct {
	Package string
	Files   []string
	// CleanupErr aggregates failures removing the cached files, if any.
	CleanupErr error
}

func (e *ChecksumMismatchError) Error() string {
	return fmt.Sprintf("checksum mismatch for package %s in files %s", e.Package, strings.Join(e.Files, ", "))
}

func (e *ChecksumMismatchError) Unwrap() error {
	return e.CleanupErr
}
