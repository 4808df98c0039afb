package executors

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/rocketship-ai/scriptstep/internal/plugins/script/runtime"
)

// LanguageJavaScript is the language of the goja executor
const LanguageJavaScript = "javascript"

// Executor defines the interface for in-process script evaluators
type Executor interface {
	// Execute evaluates the whole script in the given scope and returns the
	// classified value of the script
	Execute(ctx context.Context, script io.Reader, scope *runtime.Scope) (Value, error)

	// Language returns the language identifier for this executor
	Language() string

	// ValidateScript performs static validation of the script
	ValidateScript(script string) error
}

// NewExecutor creates a new executor for the specified language
func NewExecutor(language string, config Config) (Executor, error) {
	switch language {
	case "", LanguageJavaScript:
		return NewJavaScriptExecutor(config), nil
	default:
		return nil, fmt.Errorf("%w: unsupported language %q, supported: %s",
			ErrConfiguration, language, strings.Join(GetSupportedLanguages(), ", "))
	}
}

// GetSupportedLanguages returns a list of all supported languages
func GetSupportedLanguages() []string {
	return []string{LanguageJavaScript}
}
