package core

// Completion is the outcome of one model round: either a final textual answer
// or a batch of requested tool calls. Exactly one of the two concrete types
// implements it per round.
type Completion interface {
	completion()
	Usage() TokenUsage
}

type TokenUsage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// FinalAnswer is plain assistant text terminating the round loop.
type FinalAnswer struct {
	Text   string
	Tokens TokenUsage
}

func (FinalAnswer) completion()         {}
func (f FinalAnswer) Usage() TokenUsage { return f.Tokens }

// ToolCallsRequested carries the calls the model wants executed before it can
// answer. Order is the model's emission order and is preserved through
// execution.
type ToolCallsRequested struct {
	Calls  []ToolCall
	Tokens TokenUsage
}

func (ToolCallsRequested) completion()         {}
func (t ToolCallsRequested) Usage() TokenUsage { return t.Tokens }
