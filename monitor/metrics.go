package monitor

import "time"

// ChatMetrics records one full assistant exchange: a user message through to
// the final (or degraded) answer.
type ChatMetrics struct {
	SessionID   string        `json:"session_id"`
	Rounds      int           `json:"rounds"`
	TokensIn    int           `json:"tokens_in"`
	TokensOut   int           `json:"tokens_out"`
	Duration    time.Duration `json:"duration"`
	ToolCalls   int           `json:"tool_calls"`
	HitRoundCap bool          `json:"hit_round_cap"`
	Success     bool          `json:"success"`
	Error       string        `json:"error,omitempty"`
}

// ToolMetrics records one tool execution within an exchange.
type ToolMetrics struct {
	Tool     string        `json:"tool"`
	Duration time.Duration `json:"duration"`
	IsError  bool          `json:"is_error"`
}

// Summary is the aggregate view served by the metrics endpoint.
type Summary struct {
	TotalChats     int            `json:"total_chats"`
	TotalRounds    int            `json:"total_rounds"`
	TotalTokens    int            `json:"total_tokens"`
	TotalToolCalls int            `json:"total_tool_calls"`
	RoundCapHits   int            `json:"round_cap_hits"`
	Failures       int            `json:"failures"`
	ToolCounts     map[string]int `json:"tool_counts"`
	ToolErrors     map[string]int `json:"tool_errors"`
	StartTime      time.Time      `json:"start_time"`
}
