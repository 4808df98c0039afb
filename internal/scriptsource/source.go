package scriptsource

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

const (
	TypeString = "string"
	TypeFile   = "file"
)

// ErrNotFound is returned when a file source does not exist in the workspace
var ErrNotFound = errors.New("script file not found")

// Workspace is the build context a source is resolved against
type Workspace struct {
	Dir string
}

// Source yields the executable text of a script
type Source interface {
	// Type returns the descriptor type ("string" or "file")
	Type() string

	// Open returns the script text as a stream. Callers close it.
	Open(ctx context.Context, ws Workspace) (io.ReadCloser, error)
}

// StringSource is a script written inline in the step configuration
type StringSource struct {
	Script string
}

// NewStringSource creates an inline source
func NewStringSource(script string) *StringSource {
	return &StringSource{Script: script}
}

func (s *StringSource) Type() string {
	return TypeString
}

func (s *StringSource) Open(ctx context.Context, ws Workspace) (io.ReadCloser, error) {
	return io.NopCloser(strings.NewReader(s.Script)), nil
}

// FileSource is a script read from a file, relative to the build workspace
type FileSource struct {
	Path string
}

// NewFileSource creates a file source
func NewFileSource(path string) *FileSource {
	return &FileSource{Path: path}
}

func (s *FileSource) Type() string {
	return TypeFile
}

func (s *FileSource) Open(ctx context.Context, ws Workspace) (io.ReadCloser, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	path := s.Path
	if !filepath.IsAbs(path) && ws.Dir != "" {
		path = filepath.Join(ws.Dir, path)
	}

	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, path)
		}
		return nil, fmt.Errorf("failed to open script file %s: %w", path, err)
	}
	return f, nil
}

// ReadAll resolves a source and returns its full text
func ReadAll(ctx context.Context, src Source, ws Workspace) (string, error) {
	rc, err := src.Open(ctx, ws)
	if err != nil {
		return "", err
	}
	defer func() { _ = rc.Close() }()

	content, err := io.ReadAll(rc)
	if err != nil {
		return "", fmt.Errorf("failed to read script: %w", err)
	}
	return string(content), nil
}
