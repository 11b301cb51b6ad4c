package config

import (
	"fmt"
	"strings"

	"gopkg.in/ini.v1"

	"github.com/Ayt3ck/puppet-homebrew/internal/brew"
)

// LoadManifest reads a resource manifest: one ini section per package, with
// optional "ensure" (present/absent/latest/<version>, default present) and
// "options" (whitespace-separated install flags) keys.
//
//	[git]
//	ensure = latest
//
//	[wget]
//	ensure = 1.21.3
//	options = --force-bottle
func LoadManifest(path string) ([]brew.ResourceSpec, error) {
	file, err := ini.Load(path)
	if err != nil {
		return nil, fmt.Errorf("failed to parse manifest %s: %w", path, err)
	}

	var resources []brew.ResourceSpec
	for _, section := range file.Sections() {
		if section.Name() == ini.DefaultSection {
			continue
		}

		res := brew.ResourceSpec{
			Name:   section.Name(),
			Ensure: brew.EnsurePresent,
		}
		if v := section.Key("ensure").String(); v != "" {
			res.Ensure = brew.Ensure(v)
		}
		if v := section.Key("options").String(); v != "" {
			res.InstallOptions = strings.Fields(v)
		}
		resources = append(resources, res)
	}

	if len(resources) == 0 {
		return nil, fmt.Errorf("manifest %s declares no packages", path)
	}
	return resources, nil
}
