package stepconfig

import (
	"fmt"

	"github.com/rocketship-ai/scriptstep/internal/scriptsource"
	yaml "gopkg.in/yaml.v3"
)

// CurrentVersion is the persisted layout written by Marshal.
// Version 0 documents may carry the legacy single-field "command".
const CurrentVersion = 1

// Persisted is the raw on-disk form of a step configuration, any version
type Persisted struct {
	Version      int                      `json:"version" yaml:"version"`
	ScriptSource *scriptsource.Descriptor `json:"scriptSource,omitempty" yaml:"scriptSource,omitempty"`
	Bindings     string                   `json:"bindings,omitempty" yaml:"bindings,omitempty"`
	Classpath    string                   `json:"classpath,omitempty" yaml:"classpath,omitempty"`

	// Command is the deprecated inline script text. Upgrade moves it into
	// ScriptSource and clears it.
	Command *string `json:"command,omitempty" yaml:"command,omitempty"`
}

// Config is the current step configuration
type Config struct {
	Source    scriptsource.Source
	Bindings  string
	Classpath string
}

// Upgrade migrates a persisted document to the current layout in place and
// reports whether the legacy command was moved. Running it on an already
// upgraded document changes nothing.
func Upgrade(p *Persisted) bool {
	migrated := false
	if p.Command != nil {
		p.ScriptSource = &scriptsource.Descriptor{
			Type:   scriptsource.TypeString,
			Script: *p.Command,
		}
		p.Command = nil
		migrated = true
	}
	p.Version = CurrentVersion
	return migrated
}

// Decode parses a persisted document without upgrading it
func Decode(payload []byte) (*Persisted, error) {
	if err := Validate(payload); err != nil {
		return nil, err
	}

	var p Persisted
	if err := yaml.Unmarshal(payload, &p); err != nil {
		return nil, fmt.Errorf("failed to unmarshal step config: %w", err)
	}
	return &p, nil
}

// Load reads a persisted document of any version, upgrades it and returns the
// current configuration.
func Load(payload []byte) (*Config, error) {
	p, err := Decode(payload)
	if err != nil {
		return nil, err
	}
	Upgrade(p)
	return FromPersisted(p)
}

// FromPersisted converts an upgraded document into a Config
func FromPersisted(p *Persisted) (*Config, error) {
	if p.Command != nil {
		return nil, fmt.Errorf("step config has not been upgraded")
	}
	if p.ScriptSource == nil {
		return nil, fmt.Errorf("script source is required")
	}

	src, err := scriptsource.Decode(*p.ScriptSource)
	if err != nil {
		return nil, fmt.Errorf("invalid script source: %w", err)
	}

	return &Config{
		Source:    src,
		Bindings:  p.Bindings,
		Classpath: p.Classpath,
	}, nil
}

// ToPersisted returns the current-version document for a Config
func ToPersisted(c *Config) (*Persisted, error) {
	desc, err := scriptsource.Encode(c.Source)
	if err != nil {
		return nil, err
	}
	return &Persisted{
		Version:      CurrentVersion,
		ScriptSource: &desc,
		Bindings:     c.Bindings,
		Classpath:    c.Classpath,
	}, nil
}

// Marshal encodes a Config as a current-version YAML document
func Marshal(c *Config) ([]byte, error) {
	p, err := ToPersisted(c)
	if err != nil {
		return nil, err
	}
	out, err := yaml.Marshal(p)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal step config: %w", err)
	}
	return out, nil
}
