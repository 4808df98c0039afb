package script

import (
	"context"
	"fmt"

	"github.com/rocketship-ai/scriptstep/internal/auth"
	"github.com/rocketship-ai/scriptstep/internal/plugins/script/modules"
	"github.com/rocketship-ai/scriptstep/internal/scriptsource"
	"github.com/rocketship-ai/scriptstep/internal/stepconfig"
)

// Form is the submitted configuration of a new or changed step
type Form struct {
	ScriptSource scriptsource.Descriptor `json:"scriptSource" yaml:"scriptSource"`
	Bindings     string                  `json:"bindings" yaml:"bindings"`
	Classpath    string                  `json:"classpath" yaml:"classpath"`
}

// Descriptor describes the system script step type to the host
type Descriptor struct {
	loader modules.Loader
}

// NewDescriptor creates a descriptor whose instances use loader for shared modules
func NewDescriptor(loader modules.Loader) *Descriptor {
	return &Descriptor{loader: loader}
}

func (d *Descriptor) DisplayName() string {
	return "Execute system script"
}

// IsApplicable reports whether the caller may add this step type
func (d *Descriptor) IsApplicable(ctx context.Context, a auth.Authorizer) bool {
	return auth.CheckAdminPermission(ctx, a) == nil
}

// NewInstance creates a step from a submitted form. Only administrators may
// create or change system scripts.
func (d *Descriptor) NewInstance(ctx context.Context, a auth.Authorizer, form Form) (*SystemScript, error) {
	if err := auth.CheckAdminPermission(ctx, a); err != nil {
		return nil, err
	}

	src, err := scriptsource.Decode(form.ScriptSource)
	if err != nil {
		return nil, fmt.Errorf("invalid script source: %w", err)
	}

	cfg := &stepconfig.Config{
		Source:    src,
		Bindings:  form.Bindings,
		Classpath: form.Classpath,
	}
	return New(cfg, WithLoader(d.loader)), nil
}
