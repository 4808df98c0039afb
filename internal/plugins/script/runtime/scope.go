package runtime

import (
	"io"

	"github.com/rocketship-ai/scriptstep/internal/bindings"
)

// OutputBinding is the variable name under which the log sink is exposed
const OutputBinding = "out"

// reserved names are always bound by the interpreter and win over caller bindings
var reserved = map[string]bool{
	OutputBinding: true,
	"console":     true,
	"require":     true,
}

// IsReserved reports whether name is bound by the interpreter itself
func IsReserved(name string) bool {
	return reserved[name]
}

// Variable is a named value injected into the script's global scope
type Variable struct {
	Name  string
	Value interface{}
}

// Scope is the execution scope of one invocation
type Scope struct {
	// Out is the build's log sink
	Out io.Writer

	vars     []Variable
	shadowed []string
}

// NewScope creates a fresh scope from prepared bindings. Bindings that use a
// reserved name are dropped and reported by Shadowed.
func NewScope(b bindings.Bindings, out io.Writer) *Scope {
	if out == nil {
		out = io.Discard
	}

	s := &Scope{Out: out, vars: make([]Variable, 0, len(b))}
	for _, binding := range b {
		if IsReserved(binding.Name) {
			s.shadowed = append(s.shadowed, binding.Name)
			continue
		}
		s.vars = append(s.vars, Variable{Name: binding.Name, Value: binding.Value})
	}
	return s
}

// Variables returns the caller variables in declaration order
func (s *Scope) Variables() []Variable {
	vars := make([]Variable, len(s.vars))
	copy(vars, s.vars)
	return vars
}

// Shadowed returns the caller binding names dropped because they are reserved
func (s *Scope) Shadowed() []string {
	return s.shadowed
}
