package executors

import (
	"fmt"
	"io"
	"math"
	"strings"

	"github.com/dop251/goja"
)

// sink exposes the build's log writer to scripts
type sink struct {
	vm *goja.Runtime
	w  io.Writer
}

func newSink(vm *goja.Runtime, w io.Writer) *sink {
	return &sink{vm: vm, w: w}
}

func (s *sink) object() *goja.Object {
	obj := s.vm.NewObject()
	_ = obj.Set("print", s.print)
	_ = obj.Set("println", s.println)
	_ = obj.Set("printf", s.printf)
	return obj
}

func (s *sink) print(call goja.FunctionCall) goja.Value {
	s.write(joinArgs(call.Arguments))
	return goja.Undefined()
}

func (s *sink) println(call goja.FunctionCall) goja.Value {
	s.write(joinArgs(call.Arguments) + "\n")
	return goja.Undefined()
}

// printf formats with Go verbs. JavaScript has a single number type, so
// numbers are converted to fit the verb: integer verbs truncate, float verbs
// accept whole numbers.
func (s *sink) printf(call goja.FunctionCall) goja.Value {
	format := call.Argument(0).String()
	rest := call.Arguments[min(1, len(call.Arguments)):]
	verbs := formatVerbs(format)

	args := make([]interface{}, 0, len(rest))
	for i, arg := range rest {
		var verb rune
		if i < len(verbs) {
			verb = verbs[i]
		}
		args = append(args, numberFor(verb, arg.Export()))
	}
	s.write(fmt.Sprintf(format, args...))
	return goja.Undefined()
}

// formatVerbs returns the verb consuming each argument of a Go format string
func formatVerbs(format string) []rune {
	var verbs []rune
	runes := []rune(format)
	for i := 0; i < len(runes); i++ {
		if runes[i] != '%' {
			continue
		}
		for i++; i < len(runes); i++ {
			r := runes[i]
			if r == '*' {
				verbs = append(verbs, 'd')
				continue
			}
			if strings.ContainsRune("+-# 0123456789.[]", r) {
				continue
			}
			if r != '%' {
				verbs = append(verbs, r)
			}
			break
		}
	}
	return verbs
}

func numberFor(verb rune, v interface{}) interface{} {
	switch n := v.(type) {
	case float64:
		if strings.ContainsRune("dboxXcqU", verb) && !math.IsNaN(n) && !math.IsInf(n, 0) && math.Abs(n) < 1<<63 {
			return int64(n)
		}
	case int64:
		if strings.ContainsRune("eEfFgG", verb) {
			return float64(n)
		}
	}
	return v
}

// Log, Warn and Error make the sink the printer of console
func (s *sink) Log(line string)   { s.write(line + "\n") }
func (s *sink) Warn(line string)  { s.write(line + "\n") }
func (s *sink) Error(line string) { s.write(line + "\n") }

func (s *sink) write(text string) {
	if _, err := io.WriteString(s.w, text); err != nil {
		panic(s.vm.NewGoError(fmt.Errorf("failed to write to log sink: %w", err)))
	}
}

func joinArgs(args []goja.Value) string {
	parts := make([]string, len(args))
	for i, arg := range args {
		parts[i] = formatValue(arg)
	}
	return strings.Join(parts, " ")
}
