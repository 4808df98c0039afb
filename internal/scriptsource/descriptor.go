package scriptsource

import "fmt"

// Descriptor is the persisted form of a Source
type Descriptor struct {
	Type   string `json:"type" yaml:"type"`
	Script string `json:"script,omitempty" yaml:"script,omitempty"`
	Path   string `json:"path,omitempty" yaml:"path,omitempty"`
}

// Decode turns a persisted descriptor into a Source
func Decode(d Descriptor) (Source, error) {
	switch d.Type {
	case TypeString:
		return NewStringSource(d.Script), nil
	case TypeFile:
		if d.Path == "" {
			return nil, fmt.Errorf("file script source requires a path")
		}
		return NewFileSource(d.Path), nil
	case "":
		return nil, fmt.Errorf("script source type is required")
	default:
		return nil, fmt.Errorf("unsupported script source type: %s", d.Type)
	}
}

// Encode returns the persisted descriptor for a Source
func Encode(src Source) (Descriptor, error) {
	switch s := src.(type) {
	case *StringSource:
		return Descriptor{Type: TypeString, Script: s.Script}, nil
	case *FileSource:
		return Descriptor{Type: TypeFile, Path: s.Path}, nil
	case nil:
		return Descriptor{}, fmt.Errorf("script source is nil")
	default:
		return Descriptor{}, fmt.Errorf("unsupported script source %T", src)
	}
}
