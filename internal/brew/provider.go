// Package brew adapts Homebrew for a configuration-management agent: it
// shells out to the brew binary with a sanitized environment, parses its
// line-oriented output into package records, and maps the host's lifecycle
// calls (query/install/uninstall/upgrade/latest) onto brew invocations.
package brew

import (
	"fmt"
	"os"
	"regexp"
	"strings"

	multierror "github.com/hashicorp/go-multierror"
	"github.com/sirupsen/logrus"
)

// checksumMarker is the substring brew prints when a cached download fails
// checksum verification.
const checksumMarker = "sha256 checksum"

var (
	listLineRe          = regexp.MustCompile(`^(\S+)\s+(.+)$`)
	alreadyDownloadedRe = regexp.MustCompile(`Already downloaded: (.*)`)
)

// Action is the state transition Reconcile performed for a resource.
type Action string

const (
	ActionNone      Action = "none"
	ActionInstall   Action = "install"
	ActionUninstall Action = "uninstall"
	ActionUpgrade   Action = "upgrade"
)

// Provider implements the package lifecycle over a brew Runner. All calls
// are synchronous; each issues at most two subprocess invocations and holds
// no mutable state of its own.
type Provider struct {
	run Runner
	log *logrus.Logger
}

// NewProvider wraps a runner. A nil logger falls back to the logrus standard
// logger.
func NewProvider(run Runner, log *logrus.Logger) *Provider {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Provider{run: run, log: log}
}

// Query reports the installed state of a single package, or nil when it is
// not installed.
func (p *Provider) Query(name string) (*Package, error) {
	rn := ResourceName(name)
	p.log.WithField("package", rn).Debug("querying package state")

	pkgs, err := p.packageList(rn)
	if err != nil {
		return nil, err
	}
	if len(pkgs) == 0 {
		p.log.WithField("package", rn).Debug("package not installed")
		return nil, nil
	}

	p.log.WithFields(logrus.Fields{"package": rn, "version": pkgs[0].Version}).Debug("package found")
	return &pkgs[0], nil
}

// Latest reports the newest version brew knows for a package. It scans the
// brew info output for the package's metadata line and runs the matcher
// cascade against it. Returns "" when no metadata line is present.
func (p *Provider) Latest(name string) (string, error) {
	rn := ResourceName(name)
	out, err := p.run.Run([]string{"info", rn}, RunOptions{FailOnError: true})
	if err != nil {
		return "", fmt.Errorf("could not get latest version of %s: %w", rn, err)
	}

	for _, line := range strings.Split(out, "\n") {
		if !strings.HasPrefix(line, rn+":") {
			continue
		}
		version, matcher, ok := extractLatestVersion(line)
		if !ok {
			break
		}
		p.log.WithFields(logrus.Fields{"package": rn, "version": version, "matcher": matcher}).Debug("resolved latest version")
		return version, nil
	}
	return "", nil
}

// Install installs the resource at its install name, passing any install
// options through verbatim. A checksum mismatch in the output removes the
// stale cached downloads and still fails with a *ChecksumMismatchError so
// the host retries the install on its next pass.
func (p *Provider) Install(res ResourceSpec) error {
	name := InstallName(res)
	args := append([]string{"install", name}, res.InstallOptions...)

	out, err := p.run.Run(args, RunOptions{FailOnError: true, CombineOutput: true})
	if cerr := p.recoverChecksumMismatch(res.Name, out); cerr != nil {
		return cerr
	}
	if err != nil {
		return fmt.Errorf("could not install %s: %w", name, err)
	}
	return nil
}

// Uninstall removes a package.
func (p *Provider) Uninstall(name string) error {
	rn := ResourceName(name)
	if _, err := p.run.Run([]string{"uninstall", rn}, RunOptions{FailOnError: true}); err != nil {
		return fmt.Errorf("could not uninstall %s: %w", rn, err)
	}
	return nil
}

// Upgrade moves an installed resource to its newest version, installing it
// outright when it is absent. Shares Install's checksum-mismatch recovery.
func (p *Provider) Upgrade(res ResourceSpec) error {
	if !p.Installed(res) {
		return p.Install(res)
	}

	name := InstallName(res)
	args := append([]string{"upgrade", name}, res.InstallOptions...)

	out, err := p.run.Run(args, RunOptions{FailOnError: true, CombineOutput: true})
	if cerr := p.recoverChecksumMismatch(res.Name, out); cerr != nil {
		return cerr
	}
	if err != nil {
		return fmt.Errorf("could not upgrade %s: %w", name, err)
	}
	return nil
}

// Installed is a best-effort check via brew info. Failures are swallowed:
// the answer is true unless the output carries a literal "Not installed"
// line.
func (p *Provider) Installed(res ResourceSpec) bool {
	out, _ := p.run.Run([]string{"info", InstallName(res)}, RunOptions{CombineOutput: true})
	for _, line := range strings.Split(out, "\n") {
		if strings.TrimSpace(line) == "Not installed" {
			return false
		}
	}
	return true
}

// PackageList is the bulk listing primitive. An empty filter lists every
// installed package. A name filter lists both the cask and formula
// categories and keeps only the lines for that name.
func (p *Provider) PackageList(filter string) ([]Package, error) {
	if filter != "" {
		filter = ResourceName(filter)
	}
	return p.packageList(filter)
}

func (p *Provider) packageList(name string) ([]Package, error) {
	if name == "" {
		out, err := p.run.Run([]string{"list", "--versions"}, RunOptions{FailOnError: true})
		if err != nil {
			return nil, fmt.Errorf("could not list packages: %w", err)
		}
		return p.parseListing(out), nil
	}

	// brew list exits non-zero for a name that is not installed, so the
	// per-category listings run non-fatally: an absent package is a nil
	// result, not an error.
	caskOut, _ := p.run.Run([]string{"list", "--cask", "--versions", name}, RunOptions{})
	formulaOut, _ := p.run.Run([]string{"list", "--formula", "--versions", name}, RunOptions{})

	combined := caskOut + formulaOut
	if !strings.Contains(combined, name) {
		return nil, nil
	}

	var matched []string
	for _, line := range strings.Split(combined, "\n") {
		if strings.HasPrefix(line, name) {
			matched = append(matched, line)
		}
	}
	return p.parseListing(strings.Join(matched, "\n")), nil
}

// parseListing splits each listing line on the first run of whitespace into
// a (name, version) pair. Lines that do not fit are skipped with a warning.
func (p *Provider) parseListing(out string) []Package {
	var pkgs []Package
	for _, line := range strings.Split(out, "\n") {
		if strings.TrimSpace(line) == "" {
			continue
		}
		m := listLineRe.FindStringSubmatch(line)
		if m == nil {
			p.log.WithField("line", line).Warn("could not parse package listing line, skipping")
			continue
		}
		pkgs = append(pkgs, Package{Name: m[1], Version: m[2], Provider: ProviderName})
	}
	return pkgs
}

// Reconcile drives a resource toward its desired state and reports the
// action taken. The state machine: absent resources are installed for
// present/latest/version ensures; installed resources are uninstalled for
// absent, upgraded when latest or a pinned version is not yet satisfied.
func (p *Provider) Reconcile(res ResourceSpec) (Action, error) {
	pkg, err := p.Query(res.Name)
	if err != nil {
		return ActionNone, err
	}

	switch res.Ensure {
	case EnsureAbsent:
		if pkg == nil {
			return ActionNone, nil
		}
		return ActionUninstall, p.Uninstall(res.Name)

	case EnsureLatest:
		if pkg == nil {
			return ActionInstall, p.Install(res)
		}
		latest, err := p.Latest(res.Name)
		if err != nil {
			return ActionNone, err
		}
		if latest != "" && !versionListContains(pkg.Version, latest) {
			return ActionUpgrade, p.Upgrade(res)
		}
		return ActionNone, nil

	case EnsurePresent, "":
		if pkg == nil {
			return ActionInstall, p.Install(res)
		}
		return ActionNone, nil

	default:
		if pkg == nil {
			return ActionInstall, p.Install(res)
		}
		version, _ := res.Ensure.Version()
		if !versionListContains(pkg.Version, version) {
			return ActionUpgrade, p.Upgrade(res)
		}
		return ActionNone, nil
	}
}

// Prefix reports the Homebrew installation prefix.
func (p *Provider) Prefix() (string, error) {
	out, err := p.run.Run([]string{"--prefix"}, RunOptions{FailOnError: true})
	if err != nil {
		return "", fmt.Errorf("could not get brew prefix: %w", err)
	}
	return strings.TrimSpace(out), nil
}

// recoverChecksumMismatch scans install/upgrade output for a checksum
// failure and deletes the cached downloads it names. The install is still
// reported as failed; only the stale cache is repaired here.
func (p *Provider) recoverChecksumMismatch(name, out string) error {
	if !strings.Contains(out, checksumMarker) {
		return nil
	}

	var files []string
	for _, m := range alreadyDownloadedRe.FindAllStringSubmatch(out, -1) {
		files = append(files, strings.TrimSpace(m[1]))
	}

	var cleanup *multierror.Error
	for _, file := range files {
		p.log.WithField("file", file).Debug("removing cached download with mismatched checksum")
		if err := os.Remove(file); err != nil {
			cleanup = multierror.Append(cleanup, err)
		}
	}

	return &ChecksumMismatchError{
		Package:    ResourceName(name),
		Files:      files,
		CleanupErr: cleanup.ErrorOrNil(),
	}
}

// versionListContains reports whether a whitespace-separated version list,
// as parsed from a listing line, includes the exact version token.
func versionListContains(versions, want string) bool {
	for _, tok := range strings.Fields(versions) {
		if tok == want {
			return true
		}
	}
	return false
}
