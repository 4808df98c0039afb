package interpreter

import (
	"errors"
	"strings"

	"go.temporal.io/sdk/temporal"
)

// ExtractCleanError returns the message a step failed with, without the
// activity and wrapping noise Temporal adds around it.
func ExtractCleanError(err error) string {
	if err == nil {
		return ""
	}

	var appErr *temporal.ApplicationError
	if errors.As(err, &appErr) {
		return appErr.Message()
	}

	// Truncate at the first Temporal wrap marker to avoid showing the same error twice
	errMsg := err.Error()
	marker := " (type: wrapError, retryable: true):"
	if idx := strings.Index(errMsg, marker); idx != -1 {
		return strings.TrimSpace(errMsg[:idx])
	}
	return errMsg
}
