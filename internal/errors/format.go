package errors

import (
	"encoding/json"
	stderrors "errors"
	"fmt"
	"strings"
)

// asIndexError returns the first IndexError in err's chain, wrapping plain
// errors as internal errors.
func asIndexError(err error) *IndexError {
	var ie *IndexError
	if stderrors.As(err, &ie) {
		return ie
	}
	return Wrap(ErrCodeInternal, err)
}

// FormatForUser returns a user-friendly error message.
// If debug is true, includes the underlying cause and details.
func FormatForUser(err error, debug bool) string {
	if err == nil {
		return ""
	}

	var ie *IndexError
	if !stderrors.As(err, &ie) {
		// Standard error - just return message
		return err.Error()
	}

	var sb strings.Builder

	sb.WriteString("Error: ")
	sb.WriteString(ie.Message)
	sb.WriteString("\n")

	if ie.Suggestion != "" {
		sb.WriteString("\nSuggestion: ")
		sb.WriteString(ie.Suggestion)
		sb.WriteString("\n")
	}

	if debug {
		if ie.Cause != nil {
			sb.WriteString(fmt.Sprintf("\nCause: %v\n", ie.Cause))
		}
		for k, v := range ie.Details {
			sb.WriteString(fmt.Sprintf("  %s: %s\n", k, v))
		}
	}

	// Error code for reference
	sb.WriteString(fmt.Sprintf("\n[%s]", ie.Code))

	return sb.String()
}

// FormatForCLI formats an error for CLI output.
// Uses a concise format suitable for terminal display.
func FormatForCLI(err error) string {
	if err == nil {
		return ""
	}

	ie := asIndexError(err)

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Error: %s\n", ie.Message))
	if ie.Suggestion != "" {
		sb.WriteString(fmt.Sprintf("  Hint: %s\n", ie.Suggestion))
	}
	sb.WriteString(fmt.Sprintf("  Code: %s\n", ie.Code))

	return sb.String()
}

// jsonError is the JSON representation of an error.
type jsonError struct {
	Code       string            `json:"code"`
	Message    string            `json:"message"`
	Category   string            `json:"category"`
	Severity   string            `json:"severity"`
	Details    map[string]string `json:"details,omitempty"`
	Suggestion string            `json:"suggestion,omitempty"`
	Cause      string            `json:"cause,omitempty"`
	Retryable  bool              `json:"retryable"`
}

// FormatJSON returns a JSON representation of the error.
// Suitable for machine consumption and structured logging.
func FormatJSON(err error) ([]byte, error) {
	if err == nil {
		return json.Marshal(nil)
	}

	ie := asIndexError(err)

	je := jsonError{
		Code:       ie.Code,
		Message:    ie.Message,
		Category:   string(ie.Category),
		Severity:   string(ie.Severity),
		Details:    ie.Details,
		Suggestion: ie.Suggestion,
		Retryable:  ie.Retryable,
	}

	if ie.Cause != nil {
		je.Cause = ie.Cause.Error()
	}

	return json.Marshal(je)
}

// FormatForLog formats an error for structured logging.
// Returns key-value pairs suitable for slog attributes.
func FormatForLog(err error) map[string]any {
	if err == nil {
		return nil
	}

	var ie *IndexError
	if !stderrors.As(err, &ie) {
		return map[string]any{
			"error": err.Error(),
		}
	}

	result := map[string]any{
		"error_code": ie.Code,
		"message":    ie.Message,
		"category":   string(ie.Category),
		"severity":   string(ie.Severity),
		"retryable":  ie.Retryable,
	}

	if ie.Cause != nil {
		result["cause"] = ie.Cause.Error()
	}

	if ie.Suggestion != "" {
		result["suggestion"] = ie.Suggestion
	}

	for k, v := range ie.Details {
		result["detail_"+k] = v
	}

	return result
}
