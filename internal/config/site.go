package config

import (
	"fmt"
	"time"

	"gopkg.in/yaml.v3"
)

// File is the YAML configuration file structure. It carries per-domain
// overrides that apply on top of robots.txt and the global settings.
//
// Example .clearseek file:
//
//	sites:
//	  docs.example.com:
//	    delay: 2s
//	    disallow:
//	      - /archive/
//	      - /search
//	  blog.example.com:
//	    delay: 500ms
type File struct {
	// Sites maps a domain to its overrides.
	Sites map[string]SiteConfig `yaml:"sites"`
}

// SiteConfig holds crawl overrides for one domain.
type SiteConfig struct {
	// Delay overrides the pacing delay for the domain. It acts as a
	// floor: robots.txt crawl-delay can still raise the effective
	// delay, never lower it below this value.
	Delay time.Duration `yaml:"delay,omitempty"`

	// Disallow lists path prefixes that must not be fetched on this
	// domain, in addition to whatever robots.txt declares.
	Disallow []string `yaml:"disallow,omitempty"`
}

// UnmarshalYAML decodes a site entry, parsing the delay from the usual
// Go duration notation ("2s", "500ms") rather than nanoseconds.
func (sc *SiteConfig) UnmarshalYAML(value *yaml.Node) error {
	var raw struct {
		Delay    string   `yaml:"delay"`
		Disallow []string `yaml:"disallow"`
	}
	if err := value.Decode(&raw); err != nil {
		return err
	}

	sc.Disallow = raw.Disallow
	if raw.Delay == "" {
		sc.Delay = 0
		return nil
	}

	d, err := time.ParseDuration(raw.Delay)
	if err != nil {
		return fmt.Errorf("invalid delay %q: %w", raw.Delay, err)
	}
	sc.Delay = d
	return nil
}

// SiteFor returns the overrides for a domain and whether any exist.
func (f *File) SiteFor(domain string) (SiteConfig, bool) {
	if f == nil || f.Sites == nil {
		return SiteConfig{}, false
	}
	sc, ok := f.Sites[domain]
	return sc, ok
}
