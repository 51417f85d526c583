package llm

import (
	"fmt"
	"net/http"

	"github.com/hartwell/jobpilot/core"
)

type ChatResponse struct {
	Content      string          `json:"content"`
	ToolCalls    []core.ToolCall `json:"tool_calls,omitempty"`
	FinishReason string          `json:"finish_reason,omitempty"`
	Usage        core.TokenUsage `json:"usage,omitempty"`
}

func (r *ChatResponse) HasToolCalls() bool {
	return len(r.ToolCalls) > 0
}

// classifyStatus maps a non-200 provider response to a sentinel-wrapped error
// so the retry policy can distinguish transient from permanent failures.
func classifyStatus(statusCode int, body []byte) error {
	detail := fmt.Sprintf("API error %d: %s", statusCode, string(body))

	switch {
	case statusCode == http.StatusTooManyRequests:
		return fmt.Errorf("%w: %s", core.ErrRateLimited, detail)
	case statusCode == http.StatusRequestTimeout || statusCode == http.StatusGatewayTimeout:
		return fmt.Errorf("%w: %s", core.ErrTimeout, detail)
	case statusCode >= 500:
		return fmt.Errorf("%w: %s", core.ErrServerError, detail)
	default:
		return fmt.Errorf("%s", detail)
	}
}
