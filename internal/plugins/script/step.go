package script

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"

	"github.com/google/uuid"
	"github.com/rocketship-ai/scriptstep/internal/bindings"
	"github.com/rocketship-ai/scriptstep/internal/plugins/script/executors"
	"github.com/rocketship-ai/scriptstep/internal/plugins/script/modules"
	"github.com/rocketship-ai/scriptstep/internal/plugins/script/runtime"
	"github.com/rocketship-ai/scriptstep/internal/scriptsource"
	"github.com/rocketship-ai/scriptstep/internal/stepconfig"
)

// SystemScript is a build step that evaluates an administrator-authored
// script in-process and derives the step result from its return value.
type SystemScript struct {
	Source    scriptsource.Source
	Bindings  string
	Classpath string

	loader modules.Loader

	mu     sync.Mutex
	output Outcome
}

// Option configures a SystemScript
type Option func(*SystemScript)

// WithLoader sets the shared module loader. Without it scripts only see the
// ambient loader and their code-search path.
func WithLoader(loader modules.Loader) Option {
	return func(s *SystemScript) {
		s.loader = loader
	}
}

// New creates a step from a loaded configuration
func New(cfg *stepconfig.Config, opts ...Option) *SystemScript {
	s := &SystemScript{
		Source:    cfg.Source,
		Bindings:  cfg.Bindings,
		Classpath: cfg.Classpath,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Config returns the step's persisted configuration
func (s *SystemScript) Config() *stepconfig.Config {
	return &stepconfig.Config{
		Source:    s.Source,
		Bindings:  s.Bindings,
		Classpath: s.Classpath,
	}
}

// Perform runs the script for a build. The boolean is the step result; a
// non-nil error wraps one of executors.ErrConfiguration, ErrEvaluation or
// ErrInterrupted and always comes with a false result.
func (s *SystemScript) Perform(ctx context.Context, build Build) (bool, error) {
	id := uuid.NewString()
	log := build.Log
	if log == nil {
		log = io.Discard
	}
	logger := slog.With("step", PluginType, "invocation_id", id)

	value, err := s.evaluate(ctx, build, log)
	if err != nil {
		if !errors.Is(err, executors.ErrEvaluation) {
			// evaluation diagnostics are already on the console
			_, _ = fmt.Fprintln(log, err.Error())
		}
		logger.Error("system script failed", "error", err)
		s.record(Outcome{InvocationID: id, Err: err})
		return false, err
	}

	success := executors.Interpret(value, log)
	logger.Debug("system script finished", "kind", value.Kind.String(), "success", success)
	s.record(Outcome{InvocationID: id, Value: value, Success: success})
	return success, nil
}

func (s *SystemScript) evaluate(ctx context.Context, build Build, log io.Writer) (executors.Value, error) {
	if s.Source == nil {
		return executors.Value{}, fmt.Errorf("%w: script source is required", executors.ErrConfiguration)
	}

	b, err := bindings.Parse(s.Bindings)
	if err != nil {
		return executors.Value{}, fmt.Errorf("%w: %w", executors.ErrConfiguration, err)
	}

	rc, err := s.Source.Open(ctx, build.Workspace)
	if err != nil {
		if ctx.Err() != nil {
			return executors.Value{}, fmt.Errorf("%w: %w", executors.ErrInterrupted, err)
		}
		return executors.Value{}, fmt.Errorf("%w: %w", executors.ErrConfiguration, err)
	}
	defer func() { _ = rc.Close() }()

	executor, err := executors.NewExecutor(executors.LanguageJavaScript, executors.Config{
		SearchPath: executors.ParseSearchPath(s.Classpath),
		Loader:     s.loader,
	})
	if err != nil {
		return executors.Value{}, err
	}
	slog.Debug("evaluating system script", "language", executor.Language(), "bindings", b.Names())
	return executor.Execute(ctx, rc, runtime.NewScope(b, log))
}

func (s *SystemScript) record(o Outcome) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.output = o
}

// Output returns the outcome of the last invocation
func (s *SystemScript) Output() Outcome {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.output
}
