package brew

// ProviderName tags every package record produced by this component so the host
// can attribute state to the right backend.
const ProviderName = "homebrew"

// Package is one installed package as reported by brew. Version holds the
// remainder of the listing line after the name, so a keg with several versions
// installed side by side keeps them all ("1.21.3 1.21.2").
type Package struct {
	Name     string `json:"name"`
	Version  string `json:"version"`
	Provider string `json:"provider"`
}

// Ensure is the desired state for a resource: one of the generic markers
// below, or an explicit version string such as "2.40.0".
type Ensure string

const (
	EnsurePresent Ensure = "present"
	EnsureAbsent  Ensure = "absent"
	EnsureLatest  Ensure = "latest"
)

// Version returns the explicit version an Ensure value requests, or false if
// it is one of the generic markers.
func (e Ensure) Version() (string, bool) {
	switch e {
	case EnsurePresent, EnsureAbsent, EnsureLatest, "":
		return "", false
	}
	return string(e), true
}

// ResourceSpec is the desired state the host hands to the provider.
// InstallOptions are raw CLI flags passed through verbatim to brew
// install/upgrade invocations.
type ResourceSpec struct {
	Name           string
	Ensure         Ensure
	InstallOptions []string
}
