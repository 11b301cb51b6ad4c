package brew

import "strings"

// ResourceName normalizes a resource name for the brew catalog, which is
// lowercase-only. Formulae referenced by URL are passed through untouched.
func ResourceName(name string) string {
	if strings.HasPrefix(name, "http://") || strings.HasPrefix(name, "https://") {
		return name
	}
	return strings.ToLower(name)
}

// InstallName is the name handed to brew install/upgrade: the resource name,
// suffixed with @version when the resource pins an explicit version.
func InstallName(res ResourceSpec) string {
	name := ResourceName(res.Name)
	if version, ok := res.Ensure.Version(); ok {
		return name + "@" + version
	}
	return name
}
