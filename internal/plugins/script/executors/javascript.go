package executors

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/dop251/goja"
	"github.com/rocketship-ai/scriptstep/internal/plugins/script/runtime"
)

const scriptName = "script.js"

// JavaScriptExecutor evaluates JavaScript in-process using the goja engine
type JavaScriptExecutor struct {
	config Config
}

// NewJavaScriptExecutor creates a new JavaScript executor
func NewJavaScriptExecutor(config Config) *JavaScriptExecutor {
	return &JavaScriptExecutor{config: config}
}

// Language returns the language identifier
func (e *JavaScriptExecutor) Language() string {
	return LanguageJavaScript
}

// ValidateScript performs static validation of JavaScript code
func (e *JavaScriptExecutor) ValidateScript(script string) error {
	if _, err := goja.Compile(scriptName, script, false); err != nil {
		return fmt.Errorf("%w: javascript syntax error: %w", ErrEvaluation, err)
	}
	return nil
}

// Execute reads the whole script, evaluates it in a freshly configured
// runtime and returns the value of its last expression. Cancelling ctx
// interrupts the runtime.
func (e *JavaScriptExecutor) Execute(ctx context.Context, script io.Reader, scope *runtime.Scope) (Value, error) {
	text, err := io.ReadAll(script)
	if err != nil {
		return Value{}, fmt.Errorf("%w: failed to read script: %w", ErrConfiguration, err)
	}

	if err := ctx.Err(); err != nil {
		return Value{}, fmt.Errorf("%w: %w", ErrInterrupted, err)
	}

	program, err := goja.Compile(scriptName, string(text), false)
	if err != nil {
		report(scope, err)
		return Value{}, fmt.Errorf("%w: %w", ErrEvaluation, err)
	}

	vm, err := Configure(e.config, scope)
	if err != nil {
		return Value{}, fmt.Errorf("%w: %w", ErrConfiguration, err)
	}

	stop := context.AfterFunc(ctx, func() {
		vm.Interrupt(ctx.Err())
	})
	defer stop()

	value, err := run(vm, program)
	if ctxErr := ctx.Err(); ctxErr != nil {
		return Value{}, fmt.Errorf("%w: %w", ErrInterrupted, ctxErr)
	}
	if err != nil {
		var interrupted *goja.InterruptedError
		if errors.As(err, &interrupted) {
			return Value{}, fmt.Errorf("%w: %w", ErrInterrupted, err)
		}
		report(scope, err)
		return Value{}, fmt.Errorf("%w: %w", ErrEvaluation, err)
	}

	return value, nil
}

// run evaluates the program and classifies its result. Classifying calls
// back into the runtime (getters, toString), so Go panics from both steps
// are turned into errors.
func run(vm *goja.Runtime, program *goja.Program) (value Value, err error) {
	defer func() {
		if r := recover(); r != nil {
			if exception, ok := r.(*goja.Exception); ok {
				err = exception
				return
			}
			err = fmt.Errorf("javascript panic: %v", r)
		}
	}()

	result, err := vm.RunProgram(program)
	if err != nil {
		return Value{}, err
	}
	return Classify(result), nil
}

// report writes the interpreter diagnostic to the log sink
func report(scope *runtime.Scope, err error) {
	var exception *goja.Exception
	if errors.As(err, &exception) {
		_, _ = fmt.Fprintln(scope.Out, exception.String())
		return
	}
	_, _ = fmt.Fprintln(scope.Out, err.Error())
}
