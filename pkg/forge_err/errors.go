// pkg/forge_err/errors.go

package forge_err

import (
	"errors"
	"strings"

	cerr "github.com/cockroachdb/errors"
)

// UserError marks a failure the operator caused or can fix themselves
// (declined prompt, missing tool, bad input). These exit softly and are
// reported without stack traces.
type UserError struct {
	cause error
}

func (e *UserError) Error() string { return e.cause.Error() }

func (e *UserError) Unwrap() error { return e.cause }

// NewUserError builds a UserError from a plain message.
func NewUserError(msg string) error {
	return &UserError{cause: cerr.New(msg)}
}

// NewExpectedError wraps an error for softer UX handling.
func NewExpectedError(err error) error {
	if err == nil {
		return nil
	}
	return &UserError{cause: err}
}

// IsExpectedUserError checks if the error is marked as expected.
func IsExpectedUserError(err error) bool {
	var e *UserError
	return errors.As(err, &e)
}

// WithRemediation attaches operator-facing fix-it hints to an error.
func WithRemediation(err error, hints ...string) error {
	for _, h := range hints {
		err = cerr.WithHint(err, h)
	}
	return err
}

// ExtractSummary extracts a concise error summary from full command output,
// keeping at most maxCandidates matching lines.
func ExtractSummary(output string, maxCandidates int) string {
	trimmed := strings.TrimSpace(output)
	if trimmed == "" {
		return "No output provided."
	}

	lines := strings.Split(trimmed, "\n")
	var candidates []string

	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		lower := strings.ToLower(line)
		if strings.Contains(lower, "error") ||
			strings.Contains(lower, "failed") ||
			strings.Contains(lower, "cannot") ||
			strings.Contains(lower, "denied") ||
			strings.Contains(lower, "fatal") ||
			strings.Contains(lower, "timeout") {
			candidates = append(candidates, line)
		}
	}

	if len(candidates) > 0 {
		if len(candidates) > maxCandidates {
			candidates = candidates[:maxCandidates]
		}
		return strings.Join(candidates, " - ")
	}

	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line != "" {
			return line
		}
	}

	return "Unknown error."
}
