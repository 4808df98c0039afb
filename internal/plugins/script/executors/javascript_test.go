package executors

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/rocketship-ai/scriptstep/internal/bindings"
	"github.com/rocketship-ai/scriptstep/internal/plugins/script/modules"
	"github.com/rocketship-ai/scriptstep/internal/plugins/script/runtime"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func execute(t *testing.T, config Config, script string, b bindings.Bindings) (Value, string, error) {
	t.Helper()
	var out bytes.Buffer
	scope := runtime.NewScope(b, &out)
	v, err := NewJavaScriptExecutor(config).Execute(context.Background(), strings.NewReader(script), scope)
	return v, out.String(), err
}

func TestJavaScriptExecutor_Language(t *testing.T) {
	assert.Equal(t, "javascript", NewJavaScriptExecutor(Config{}).Language())
}

func TestJavaScriptExecutor_ValidateScript(t *testing.T) {
	executor := NewJavaScriptExecutor(Config{})

	assert.NoError(t, executor.ValidateScript("var x = 1; x + 1"))

	err := executor.ValidateScript("var = ;")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrEvaluation))
}

func TestJavaScriptExecutor_Outcomes(t *testing.T) {
	tests := []struct {
		name    string
		script  string
		success bool
		log     string
		kind    Kind
	}{
		{name: "true", script: "true", success: true, log: "", kind: KindBool},
		{name: "false", script: "false", success: false, log: "", kind: KindBool},
		{name: "zero", script: "0", success: true, log: "Script returned: 0\n", kind: KindNumeric},
		{name: "one", script: "1", success: false, log: "Script returned: 1\n", kind: KindNumeric},
		{name: "negative float", script: "-2.5", success: false, log: "Script returned: -2.5\n", kind: KindNumeric},
		{name: "computed zero", script: "var n = 3; n - 3", success: true, log: "Script returned: 0\n", kind: KindNumeric},
		{name: "string", script: `"hello"`, success: true, log: "Script returned: hello\n", kind: KindOther},
		{name: "object", script: `({a: 1})`, success: true, log: "Script returned: {\"a\":1}\n", kind: KindOther},
		{name: "array", script: `[1, "two"]`, success: true, log: "Script returned: [1,\"two\"]\n", kind: KindOther},
		{name: "no value", script: "var x = 1;", success: true, log: "", kind: KindAbsent},
		{name: "empty script", script: "", success: true, log: "", kind: KindAbsent},
		{name: "null", script: "null", success: true, log: "", kind: KindAbsent},
		{name: "undefined", script: "undefined", success: true, log: "", kind: KindAbsent},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v, _, err := execute(t, Config{}, tt.script, nil)
			require.NoError(t, err)
			assert.Equal(t, tt.kind, v.Kind)

			var log bytes.Buffer
			assert.Equal(t, tt.success, Interpret(v, &log))
			assert.Equal(t, tt.log, log.String())
		})
	}
}

func TestJavaScriptExecutor_Bindings(t *testing.T) {
	b := bindings.Bindings{{Name: "x", Value: "5"}, {Name: "name", Value: "world"}}

	v, _, err := execute(t, Config{}, `x === "5" && name === "world"`, b)
	require.NoError(t, err)
	assert.Equal(t, Value{Kind: KindBool, Bool: true}, v)
}

func TestJavaScriptExecutor_ReservedBindingWins(t *testing.T) {
	b := bindings.Bindings{{Name: "out", Value: "shadow"}, {Name: "x", Value: "1"}}

	v, log, err := execute(t, Config{}, `typeof out.println === "function"`, b)
	require.NoError(t, err)
	assert.True(t, v.Bool)
	assert.Contains(t, log, `Binding "out" is reserved and was ignored`)
}

func TestJavaScriptExecutor_OutputSink(t *testing.T) {
	script := `
		out.println("hello", 42);
		out.print("a");
		out.print("b\n");
		out.printf("%s=%d\n", "n", 7);
		console.log("ok", true);
		console.error("%s!", "bad");
	`
	v, log, err := execute(t, Config{}, script, nil)
	require.NoError(t, err)
	assert.Equal(t, KindAbsent, v.Kind)
	assert.Equal(t, "hello 42\nab\nn=7\nok true\nbad!\n", log)
}

func TestJavaScriptExecutor_PrintfNumbers(t *testing.T) {
	script := `
		out.printf("%d|%d|%.1f|%v|%x\n", 2.5, 6 / 2, 3, 1.5, 255);
		out.printf("100%%\n");
	`
	_, log, err := execute(t, Config{}, script, nil)
	require.NoError(t, err)
	assert.Equal(t, "2|3|3.0|1.5|ff\n100%\n", log)
}

func TestFormatVerbs(t *testing.T) {
	assert.Equal(t, []rune{'s', 'd', 'f'}, formatVerbs("%s=%-4d %%, %.2f"))
	assert.Empty(t, formatVerbs("plain"))
}

func TestJavaScriptExecutor_RequireInterruptedInModule(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	registry := modules.NewRegistry()
	require.NoError(t, registry.RegisterSource("spin", "while (true) {}"))

	script := `
		var caught = false;
		try { require("spin"); } catch (e) { caught = true; }
		caught
	`
	executor := NewJavaScriptExecutor(Config{Loader: registry})
	_, err := executor.Execute(ctx, strings.NewReader(script), runtime.NewScope(nil, nil))
	assert.True(t, errors.Is(err, ErrInterrupted))
}

func TestJavaScriptExecutor_EvaluationErrors(t *testing.T) {
	tests := []struct {
		name   string
		script string
		logHas string
	}{
		{name: "syntax error", script: "var = ;", logHas: "script.js"},
		{name: "thrown error", script: `throw new Error("boom")`, logHas: "boom"},
		{name: "reference error", script: "missingVariable + 1", logHas: "missingVariable"},
		{name: "throwing getter on result", script: `({get x() { throw new Error("getter boom") }})`, logHas: "getter boom"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, log, err := execute(t, Config{}, tt.script, nil)
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrEvaluation))
			assert.False(t, errors.Is(err, ErrInterrupted))
			assert.Contains(t, log, tt.logHas)
		})
	}
}

func TestJavaScriptExecutor_Interrupted(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	var out bytes.Buffer
	scope := runtime.NewScope(nil, &out)
	_, err := NewJavaScriptExecutor(Config{}).Execute(ctx, strings.NewReader("while (true) {}"), scope)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInterrupted))
	assert.False(t, errors.Is(err, ErrEvaluation))
}

func TestJavaScriptExecutor_InterruptNotCatchable(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	script := `
		var done = false;
		while (!done) {
			try { while (true) {} } catch (e) { done = true; }
		}
		true
	`
	scope := runtime.NewScope(nil, nil)
	_, err := NewJavaScriptExecutor(Config{}).Execute(ctx, strings.NewReader(script), scope)
	assert.True(t, errors.Is(err, ErrInterrupted))
}

func TestJavaScriptExecutor_CancelledBeforeStart(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	scope := runtime.NewScope(nil, nil)
	_, err := NewJavaScriptExecutor(Config{}).Execute(ctx, strings.NewReader("true"), scope)
	assert.True(t, errors.Is(err, ErrInterrupted))
}

func TestJavaScriptExecutor_PlatformModules(t *testing.T) {
	script := `
		var jq = require("jq");
		var yaml = require("yaml");
		var doc = yaml.parse("items:\n  - name: a\n  - name: b\n");
		jq.query(".items | length", doc)[0] === 2 && require("uuid").v4().length === 36
	`
	v, _, err := execute(t, Config{Loader: modules.Platform()}, script, nil)
	require.NoError(t, err)
	assert.Equal(t, Value{Kind: KindBool, Bool: true}, v)
}

func TestJavaScriptExecutor_AmbientLoaderWithoutPlatform(t *testing.T) {
	_, log, err := execute(t, Config{}, `require("jq")`, nil)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrEvaluation))
	assert.Contains(t, log, "module not found")
}

func TestJavaScriptExecutor_SearchPath(t *testing.T) {
	first := t.TempDir()
	second := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(second, "math.js"), []byte("exports.double = function (n) { return n * 2; };"), 0o600))
	require.NoError(t, os.MkdirAll(filepath.Join(first, "greeter"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(first, "greeter", "index.js"), []byte("module.exports = function (n) { return 'hi ' + n; };"), 0o600))

	config := Config{SearchPath: ParseSearchPath(first + string(os.PathListSeparator) + second)}
	v, _, err := execute(t, config, `require("greeter")("bob") + ":" + require("math").double(21)`, nil)
	require.NoError(t, err)
	assert.Equal(t, "hi bob:42", v.Text)
}

func TestJavaScriptExecutor_LoaderBeforeSearchPath(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "shared.js"), []byte("module.exports = 'from search path';"), 0o600))

	registry := modules.NewRegistry()
	require.NoError(t, registry.RegisterSource("shared", "module.exports = 'from extension';"))

	v, _, err := execute(t, Config{Loader: registry, SearchPath: []string{dir}}, `require("shared")`, nil)
	require.NoError(t, err)
	assert.Equal(t, "from extension", v.Text)
}

func TestJavaScriptExecutor_ModuleCache(t *testing.T) {
	registry := modules.NewRegistry()
	require.NoError(t, registry.RegisterSource("counter", "var n = 0; exports.next = function () { return ++n; };"))

	v, _, err := execute(t, Config{Loader: registry}, `require("counter").next(); require("counter").next()`, nil)
	require.NoError(t, err)
	assert.Equal(t, float64(2), v.Number)
}

func TestJavaScriptExecutor_FreshScopePerInvocation(t *testing.T) {
	executor := NewJavaScriptExecutor(Config{})

	_, err := executor.Execute(context.Background(), strings.NewReader("var leaked = 1;"), runtime.NewScope(nil, nil))
	require.NoError(t, err)

	v, err := executor.Execute(context.Background(), strings.NewReader("typeof leaked"), runtime.NewScope(nil, nil))
	require.NoError(t, err)
	assert.Equal(t, "undefined", v.Text)
}

func TestParseSearchPath(t *testing.T) {
	sep := string(os.PathListSeparator)
	assert.Nil(t, ParseSearchPath(""))
	assert.Nil(t, ParseSearchPath("  "))
	assert.Equal(t, []string{"/a", "/b", "/c"}, ParseSearchPath("/a"+sep+" /b ,/c"+sep))
}

func TestNewExecutor(t *testing.T) {
	executor, err := NewExecutor("javascript", Config{})
	require.NoError(t, err)
	assert.Equal(t, "javascript", executor.Language())

	executor, err = NewExecutor("", Config{})
	require.NoError(t, err)
	assert.Equal(t, "javascript", executor.Language())

	_, err = NewExecutor("groovy", Config{})
	assert.True(t, errors.Is(err, ErrConfiguration))

	assert.Equal(t, []string{"javascript"}, GetSupportedLanguages())
}
