package bindings

import (
	"errors"
	"fmt"
	"strings"

	"github.com/magiconair/properties"
)

// ErrMalformed is returned when the bindings text cannot be parsed
var ErrMalformed = errors.New("malformed bindings")

// Binding is a single named variable injected into a script scope
type Binding struct {
	Name  string
	Value string
}

// Bindings is an ordered set of bindings, in declaration order
type Bindings []Binding

// Parse turns a properties-formatted bindings blob into ordered bindings.
// Blank text yields no bindings. Property expansion (${...}) is not performed.
func Parse(text string) (Bindings, error) {
	if strings.TrimSpace(text) == "" {
		return Bindings{}, nil
	}

	loader := &properties.Loader{Encoding: properties.UTF8, DisableExpansion: true}
	props, err := loader.LoadBytes([]byte(text))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}

	keys := props.Keys()
	out := make(Bindings, 0, len(keys))
	for _, key := range keys {
		value, _ := props.Get(key)
		out = append(out, Binding{Name: key, Value: value})
	}
	return out, nil
}

// Names returns the binding names in order
func (b Bindings) Names() []string {
	names := make([]string, len(b))
	for i, binding := range b {
		names[i] = binding.Name
	}
	return names
}
