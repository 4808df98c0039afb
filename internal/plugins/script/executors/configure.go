package executors

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/dop251/goja"
	"github.com/dop251/goja_nodejs/console"
	"github.com/rocketship-ai/scriptstep/internal/plugins/script/modules"
	"github.com/rocketship-ai/scriptstep/internal/plugins/script/runtime"
)

// Config is the interpreter configuration of one invocation
type Config struct {
	// SearchPath lists extra directories consulted by require() after the loader
	SearchPath []string

	// Loader resolves shared modules contributed by installed extensions.
	// When nil the ambient loader is used.
	Loader modules.Loader
}

// ParseSearchPath splits a code-search-path string on the OS list separator
// and commas. Blank entries are dropped.
func ParseSearchPath(text string) []string {
	fields := strings.FieldsFunc(text, func(r rune) bool {
		return r == os.PathListSeparator || r == ','
	})

	var dirs []string
	for _, f := range fields {
		if f = strings.TrimSpace(f); f != "" {
			dirs = append(dirs, f)
		}
	}
	return dirs
}

// Configure builds a fresh runtime seeded with the scope's variables, the
// reserved log sink binding, console and a require() bound to the configured
// loader and search path.
func Configure(config Config, scope *runtime.Scope) (*goja.Runtime, error) {
	loader := config.Loader
	if loader == nil {
		loader = modules.Ambient()
	}

	vm := goja.New()

	for _, name := range scope.Shadowed() {
		slog.Warn("binding uses a reserved name and was ignored", "binding", name)
		if _, err := fmt.Fprintf(scope.Out, "Binding %q is reserved and was ignored\n", name); err != nil {
			return nil, fmt.Errorf("failed to write to log sink: %w", err)
		}
	}

	for _, v := range scope.Variables() {
		if err := vm.Set(v.Name, v.Value); err != nil {
			return nil, fmt.Errorf("failed to bind %s: %w", v.Name, err)
		}
	}

	registry, err := newRegistry(loader, config.SearchPath)
	if err != nil {
		return nil, err
	}
	enableRequire(vm, registry)

	sink := newSink(vm, scope.Out)
	if err := vm.Set(runtime.OutputBinding, sink.object()); err != nil {
		return nil, fmt.Errorf("failed to bind %s: %w", runtime.OutputBinding, err)
	}

	// console writes to the sink instead of the process log
	module := vm.NewObject()
	_ = module.Set("exports", vm.NewObject())
	console.RequireWithPrinter(sink)(vm, module)
	if err := vm.Set("console", module.Get("exports")); err != nil {
		return nil, fmt.Errorf("failed to bind console: %w", err)
	}

	return vm, nil
}
