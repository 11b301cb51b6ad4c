package brew

import (
	"fmt"
	"os"
	"os/exec"
	"os/user"
	"strconv"
	"strings"
	"syscall"
)

// RunOptions controls a single brew invocation.
type RunOptions struct {
	// FailOnError turns a non-zero exit into an *ExecError. When unset the
	// captured output is returned as-is and the exit status is discarded.
	FailOnError bool
	// CombineOutput merges stderr into the captured stream.
	CombineOutput bool
}

// Runner executes brew with the given arguments and returns the captured
// output text.
type Runner interface {
	Run(args []string, opts RunOptions) (string, error)
}

// ExecContext is a Runner bound to a concrete brew binary. The binary's
// owner, group and home directory are resolved once, when the context is
// created, rather than per call.
type ExecContext struct {
	Path string
	UID  uint32
	GID  uint32
	Home string

	// privileged records whether the calling process runs as root, in which
	// case subprocesses are dropped to the binary owner's identity.
	privileged bool
}

// ResolveExecContext locates the brew binary and resolves its owner. Pass an
// empty path to search PATH. Returns a *PermissionError when the binary is
// owned by root.
func ResolveExecContext(path string) (*ExecContext, error) {
	if path == "" {
		found, err := exec.LookPath("brew")
		if err != nil {
			return nil, fmt.Errorf("could not find brew on PATH: %w", err)
		}
		path = found
	}

	fi, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("could not stat %s: %w", path, err)
	}

	st, ok := fi.Sys().(*syscall.Stat_t)
	if !ok {
		return nil, fmt.Errorf("could not read ownership of %s", path)
	}
	if st.Uid == 0 {
		return nil, &PermissionError{Path: path}
	}

	owner, err := user.LookupId(strconv.FormatUint(uint64(st.Uid), 10))
	if err != nil {
		return nil, fmt.Errorf("could not look up owner of %s: %w", path, err)
	}

	return &ExecContext{
		Path:       path,
		UID:        st.Uid,
		GID:        st.Gid,
		Home:       owner.HomeDir,
		privileged: os.Geteuid() == 0,
	}, nil
}

// Run executes brew with args. The subprocess environment is reset to a
// single HOME entry derived from the binary owner's account so nothing leaks
// in from the calling agent's environment. When the agent itself runs as
// root, the subprocess is dropped to the owner's uid/gid.
func (c *ExecContext) Run(args []string, opts RunOptions) (string, error) {
	cmd := exec.Command(c.Path, args...)
	cmd.Env = []string{"HOME=" + c.Home}

	if c.privileged {
		cmd.SysProcAttr = &syscall.SysProcAttr{
			Credential: &syscall.Credential{Uid: c.UID, Gid: c.GID},
		}
	}

	var out strings.Builder
	cmd.Stdout = &out
	if opts.CombineOutput {
		cmd.Stderr = &out
	}

	err := cmd.Run()
	if err != nil && opts.FailOnError {
		return out.String(), &ExecError{
			Argv:     append([]string{c.Path}, args...),
			ExitCode: exitCode(err),
			Output:   out.String(),
			Err:      err,
		}
	}

	return out.String(), nil
}

func exitCode(err error) int {
	if exitErr, ok := err.(*exec.ExitError); ok {
		return exitErr.ExitCode()
	}
	return -1
}
