package script

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/rocketship-ai/scriptstep/internal/plugins"
	"github.com/rocketship-ai/scriptstep/internal/plugins/script/executors"
	"github.com/rocketship-ai/scriptstep/internal/plugins/script/modules"
	"github.com/rocketship-ai/scriptstep/internal/scriptsource"
	"github.com/rocketship-ai/scriptstep/internal/stepconfig"
	"go.temporal.io/sdk/activity"
	"go.temporal.io/sdk/temporal"
)

// Error types reported to the workflow. None of them is retried.
const (
	ErrTypeConfiguration = "ConfigurationError"
	ErrTypeEvaluation    = "EvaluationError"
	ErrTypeInterrupted   = "Interrupted"
)

const heartbeatInterval = 5 * time.Second

// Auto-register the plugin when the package is imported
func init() {
	plugins.RegisterPlugin(NewScriptPlugin(modules.Platform()))
}

// ScriptPlugin runs system script steps as activities
type ScriptPlugin struct {
	loader modules.Loader
}

// NewScriptPlugin creates the plugin; steps resolve shared modules through loader
func NewScriptPlugin(loader modules.Loader) *ScriptPlugin {
	return &ScriptPlugin{loader: loader}
}

// GetType returns the plugin type for registration
func (p *ScriptPlugin) GetType() string {
	return PluginType
}

// Activity executes one system script step
func (p *ScriptPlugin) Activity(ctx context.Context, params map[string]interface{}) (interface{}, error) {
	logger := loggerFor(ctx)

	req, err := p.parseRequest(params)
	if err != nil {
		return nil, temporal.NewNonRetryableApplicationError(err.Error(), ErrTypeConfiguration, err)
	}

	cfg, err := p.parseConfig(req.Config)
	if err != nil {
		return nil, temporal.NewNonRetryableApplicationError(
			fmt.Sprintf("step %q: %v", req.Name, err), ErrTypeConfiguration, err)
	}

	if activity.IsActivity(ctx) {
		stop := startHeartbeat(ctx, heartbeatInterval)
		defer stop()
	}

	console := newConsole(func(line string) {
		logger.Info(line, "step", req.Name)
	})
	step := New(cfg, WithLoader(p.loader))

	logger.Info("Executing system script", "step", req.Name, "source", cfg.Source.Type())
	success, err := step.Perform(ctx, Build{
		Workspace: scriptsource.Workspace{Dir: req.Workspace},
		Log:       console,
	})
	console.Flush()

	outcome := step.Output()
	if err != nil {
		return nil, toApplicationError(req.Name, err)
	}

	logger.Info("System script completed", "step", req.Name, "success", success)
	return &ActivityResponse{
		Name:         req.Name,
		InvocationID: outcome.InvocationID,
		Success:      success,
		Kind:         outcome.Value.Kind.String(),
		Result:       outcome.Value.Text,
		Log:          console.String(),
	}, nil
}

// parseRequest parses the activity request parameters
func (p *ScriptPlugin) parseRequest(params map[string]interface{}) (ActivityRequest, error) {
	var req ActivityRequest

	if name, ok := params["name"].(string); ok {
		req.Name = name
	}
	if plugin, ok := params["plugin"].(string); ok {
		req.Plugin = plugin
	}
	if workspace, ok := params["workspace"].(string); ok {
		req.Workspace = workspace
	}
	config, ok := params["config"].(map[string]interface{})
	if !ok {
		return req, fmt.Errorf("invalid config format")
	}
	req.Config = config

	return req, nil
}

// parseConfig loads the step configuration, upgrading legacy layouts
func (p *ScriptPlugin) parseConfig(configMap map[string]interface{}) (*stepconfig.Config, error) {
	jsonData, err := json.Marshal(configMap)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal config: %w", err)
	}
	return stepconfig.Load(jsonData)
}

func toApplicationError(step string, err error) error {
	msg := fmt.Sprintf("step %q: %v", step, err)
	switch {
	case errors.Is(err, executors.ErrInterrupted):
		return temporal.NewNonRetryableApplicationError(msg, ErrTypeInterrupted, err)
	case errors.Is(err, executors.ErrEvaluation):
		return temporal.NewNonRetryableApplicationError(msg, ErrTypeEvaluation, err)
	default:
		return temporal.NewNonRetryableApplicationError(msg, ErrTypeConfiguration, err)
	}
}

// logger is the subset of the activity and slog loggers used here
type logger interface {
	Info(msg string, keyvals ...interface{})
}

func loggerFor(ctx context.Context) logger {
	if activity.IsActivity(ctx) {
		return activity.GetLogger(ctx)
	}
	return slog.Default()
}

// startHeartbeat records heartbeats until stopped so that cancellation of
// the build reaches the running script
func startHeartbeat(ctx context.Context, interval time.Duration) func() {
	done := make(chan struct{})
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				activity.RecordHeartbeat(ctx)
			case <-done:
				return
			case <-ctx.Done():
				return
			}
		}
	}()
	return func() {
		close(done)
		wg.Wait()
	}
}

// console is the log sink of an activity: every complete line is forwarded
// to the activity logger immediately and kept for the response
type console struct {
	mu      sync.Mutex
	buf     bytes.Buffer
	pending strings.Builder
	emit    func(line string)
}

func newConsole(emit func(line string)) *console {
	return &console{emit: emit}
}

func (c *console) Write(p []byte) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.buf.Write(p)
	for _, b := range p {
		if b == '\n' {
			c.emit(c.pending.String())
			c.pending.Reset()
			continue
		}
		c.pending.WriteByte(b)
	}
	return len(p), nil
}

// Flush emits a trailing partial line
func (c *console) Flush() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.pending.Len() > 0 {
		c.emit(c.pending.String())
		c.pending.Reset()
	}
}

func (c *console) String() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.buf.String()
}
