package brew

import "regexp"

// versionMatcher is one alternative for pulling the authoritative latest
// version out of a brew info metadata line. Matchers are tried in order and
// the first hit wins.
type versionMatcher struct {
	name string
	re   *regexp.Regexp
}

// The cascade mirrors the shapes brew info prints for formulae and casks:
//
//	git: stable 2.40.0 (bottled), HEAD
//	wget: stable 1.21.3, HEAD
//	jq: stable 1.7
//	firefox: 117.0 (auto_updates)
//	some-cask: 1.2.3
var latestMatchers = []versionMatcher{
	{"stable-bottled", regexp.MustCompile(`stable ([^\s,]+) \(bottled\)`)},
	{"stable-head", regexp.MustCompile(`stable ([^\s,]+), HEAD`)},
	{"stable", regexp.MustCompile(`stable ([^\s,]+)`)},
	{"auto-updates", regexp.MustCompile(`([^\s,]+) \(auto_updates\)`)},
	{"trailing-version", regexp.MustCompile(`([^\s,:]+)\s*$`)},
}

// extractLatestVersion runs the matcher cascade against a metadata line.
func extractLatestVersion(line string) (version string, matcher string, ok bool) {
	for _, m := range latestMatchers {
		if groups := m.re.FindStringSubmatch(line); groups != nil {
			return groups[1], m.name, true
		}
	}
	return "", "", false
}
