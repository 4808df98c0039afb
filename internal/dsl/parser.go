package dsl

import (
	"fmt"

	yaml "gopkg.in/yaml.v3"
)

// Step is one configured unit of work in a build
type Step struct {
	Name   string `json:"name" yaml:"name"`
	Plugin string `json:"plugin" yaml:"plugin"`
	// Config varies by plugin
	Config map[string]interface{} `json:"config" yaml:"config"`
}

// Build is an ordered list of steps run against one workspace
type Build struct {
	Name      string `json:"name" yaml:"name"`
	Workspace string `json:"workspace" yaml:"workspace"`
	Steps     []Step `json:"steps" yaml:"steps"`
}

// ParseYAML parses and checks a build file
func ParseYAML(yamlPayload []byte) (Build, error) {
	var build Build
	if err := yaml.Unmarshal(yamlPayload, &build); err != nil {
		return Build{}, fmt.Errorf("failed to unmarshal YAML: %w", err)
	}

	if build.Name == "" {
		return Build{}, fmt.Errorf("a name is required for the build")
	}
	if len(build.Steps) == 0 {
		return Build{}, fmt.Errorf("build %q: no steps defined", build.Name)
	}

	seen := make(map[string]bool, len(build.Steps))
	for i, step := range build.Steps {
		if step.Name == "" {
			return Build{}, fmt.Errorf("build %q: step %d: a name is required for each step", build.Name, i)
		}
		if step.Plugin == "" {
			return Build{}, fmt.Errorf("build %q: step %q: a plugin is required for each step", build.Name, step.Name)
		}
		if step.Config == nil {
			return Build{}, fmt.Errorf("build %q: step %q: config is required", build.Name, step.Name)
		}
		if seen[step.Name] {
			return Build{}, fmt.Errorf("build %q: step %q is defined more than once", build.Name, step.Name)
		}
		seen[step.Name] = true
	}

	return build, nil
}
