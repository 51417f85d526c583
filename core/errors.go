package core

import (
	"errors"
	"fmt"
)

var (
	ErrContextTooLarge      = errors.New("assembled context exceeds model input budget")
	ErrDuplicateTool        = errors.New("tool already registered")
	ErrUnknownTool          = errors.New("unknown tool")
	ErrInvalidToolArguments = errors.New("invalid tool arguments")
	ErrModelUnavailable     = errors.New("model unavailable")
	ErrToolExecution        = errors.New("tool execution failed")
	ErrLoopLimit            = errors.New("tool-call round limit exceeded")
	ErrSessionNotFound      = errors.New("session not found")

	// Transport classification sentinels used by the retry policy.
	ErrRateLimited = errors.New("rate limited")
	ErrServerError = errors.New("server error")
	ErrTimeout     = errors.New("request timed out")
)

// IsRetryable reports whether err is a transient model-call failure that may
// succeed on another attempt.
func IsRetryable(err error) bool {
	return errors.Is(err, ErrRateLimited) ||
		errors.Is(err, ErrServerError) ||
		errors.Is(err, ErrTimeout)
}

type AssistantError struct {
	Op   string
	Tool string
	Err  error
}

func (e *AssistantError) Error() string {
	if e.Tool != "" {
		return fmt.Sprintf("%s [tool=%s]: %v", e.Op, e.Tool, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *AssistantError) Unwrap() error {
	return e.Err
}

func NewAssistantError(op, tool string, err error) *AssistantError {
	return &AssistantError{Op: op, Tool: tool, Err: err}
}
