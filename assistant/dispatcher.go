package assistant

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/hartwell/jobpilot/core"
	"github.com/hartwell/jobpilot/monitor"
	"github.com/hartwell/jobpilot/tools"
)

// State names the phases of one assistant exchange.
type State string

const (
	StateAwaitingModel  State = "AWAITING_MODEL"
	StateModelResponded State = "MODEL_RESPONDED"
	StateExecutingTools State = "EXECUTING_TOOLS"
	StateDone           State = "DONE"
)

// Completer produces one model completion for a conversation. Satisfied by
// llm.Adapter.
type Completer interface {
	Complete(ctx context.Context, system string, msgs []core.Message, tools []core.ToolSchema) (core.Completion, error)
}

const degradedAnswer = "I wasn't able to finish working through this request within the allowed number of tool rounds. The tool results gathered so far are in the conversation above; ask me to continue from there or narrow the request."

// Dispatcher runs the model/tool loop for one exchange: it sends the
// conversation to the model, executes any tool calls it requests, feeds the
// results back, and repeats until the model produces a final answer or the
// round limit is hit.
//
// All messages produced during an exchange are staged locally and committed
// to the session in one append once the exchange resolves, so a failed model
// call leaves the session exactly as it was.
type Dispatcher struct {
	model     Completer
	registry  *tools.Registry
	prompts   *PromptBuilder
	metrics   monitor.MetricsCollector
	logger    *slog.Logger
	maxRounds int
}

func NewDispatcher(model Completer, registry *tools.Registry, prompts *PromptBuilder, metrics monitor.MetricsCollector, logger *slog.Logger, maxRounds int) *Dispatcher {
	if maxRounds <= 0 {
		maxRounds = 5
	}
	if metrics == nil {
		metrics = monitor.NewNoOpCollector()
	}
	return &Dispatcher{
		model:     model,
		registry:  registry,
		prompts:   prompts,
		metrics:   metrics,
		logger:    logger,
		maxRounds: maxRounds,
	}
}

// HandleMessage processes one user message through the tool-call loop and
// returns the assistant's answer.
func (d *Dispatcher) HandleMessage(ctx context.Context, session *Session, userMsg string) (string, error) {
	start := time.Now()
	answer, rounds, toolCalls, usage, hitCap, err := d.run(ctx, session, userMsg)

	m := monitor.ChatMetrics{
		SessionID:   session.ID(),
		Rounds:      rounds,
		TokensIn:    usage.PromptTokens,
		TokensOut:   usage.CompletionTokens,
		Duration:    time.Since(start),
		ToolCalls:   toolCalls,
		HitRoundCap: hitCap,
		Success:     err == nil,
	}
	if err != nil {
		m.Error = err.Error()
	}
	d.metrics.RecordChat(m)

	return answer, err
}

func (d *Dispatcher) run(ctx context.Context, session *Session, userMsg string) (answer string, rounds, toolCalls int, usage core.TokenUsage, hitCap bool, err error) {
	system := d.prompts.SystemPrompt()
	ctxMsg, hasCtx, err := d.prompts.ContextMessage(ctx, session.UserID())
	if err != nil {
		return "", 0, 0, usage, false, err
	}

	// Per-user context leads the message sequence but is rebuilt every
	// exchange and never committed to the session.
	assemble := func(staged []core.Message) []core.Message {
		var msgs []core.Message
		if hasCtx {
			msgs = append(msgs, ctxMsg)
		}
		msgs = append(msgs, session.Messages()...)
		return append(msgs, staged...)
	}

	schemas := d.registry.Schemas()
	staged := []core.Message{core.NewUserMessage(userMsg)}
	working := assemble(staged)

	if err := d.prompts.CheckBudget(system, working); err != nil {
		return "", 0, 0, usage, false, err
	}

	state := StateAwaitingModel
	for round := 1; round <= d.maxRounds; round++ {
		d.logger.Debug("dispatch round",
			"session", session.ID(),
			"round", round,
			"state", state,
			"messages", len(working),
		)

		completion, err := d.model.Complete(ctx, system, working, schemas)
		if err != nil {
			return "", round, toolCalls, usage, false, err
		}
		state = StateModelResponded

		tokens := completion.Usage()
		usage.PromptTokens += tokens.PromptTokens
		usage.CompletionTokens += tokens.CompletionTokens
		usage.TotalTokens += tokens.TotalTokens

		switch c := completion.(type) {
		case core.FinalAnswer:
			state = StateDone
			staged = append(staged, core.NewAssistantMessage(c.Text))
			session.Append(staged...)
			return c.Text, round, toolCalls, usage, false, nil

		case core.ToolCallsRequested:
			state = StateExecutingTools
			toolCalls += len(c.Calls)
			staged = append(staged, core.NewToolCallMessage(c.Calls))

			results, err := d.executeCalls(ctx, c.Calls)
			if err != nil {
				return "", round, toolCalls, usage, false, err
			}
			for _, r := range results {
				staged = append(staged, core.NewToolMessage(r.ToolCallID, r.Content))
			}

			working = assemble(staged)
			if err := d.prompts.CheckBudget(system, working); err != nil {
				return "", round, toolCalls, usage, false, err
			}
			state = StateAwaitingModel

		default:
			return "", round, toolCalls, usage, false,
				core.NewAssistantError("dispatch", "", fmt.Errorf("unexpected completion type %T", completion))
		}
	}

	// Round limit hit: commit the partial exchange with a degraded answer
	// rather than throwing the gathered tool results away.
	d.logger.Warn("round limit reached",
		"session", session.ID(),
		"max_rounds", d.maxRounds,
		"error", core.ErrLoopLimit,
	)
	staged = append(staged, core.NewAssistantMessage(degradedAnswer))
	session.Append(staged...)
	return degradedAnswer, d.maxRounds, toolCalls, usage, true, nil
}

// executeCalls runs the requested tools in parallel and returns results in
// request order. Per-tool failures, including unknown tools and argument
// validation, become error-content results the model can react to; only a
// canceled context aborts the exchange.
func (d *Dispatcher) executeCalls(ctx context.Context, calls []core.ToolCall) ([]core.ToolResult, error) {
	results := make([]core.ToolResult, len(calls))

	g, gctx := errgroup.WithContext(ctx)
	for i, call := range calls {
		g.Go(func() error {
			results[i] = d.executeCall(gctx, call)
			return gctx.Err()
		})
	}
	if err := g.Wait(); err != nil {
		return nil, core.NewAssistantError("dispatch.tools", "", err)
	}
	return results, nil
}

func (d *Dispatcher) executeCall(ctx context.Context, call core.ToolCall) core.ToolResult {
	start := time.Now()

	tool, err := d.registry.Get(call.Name)
	if err != nil {
		d.logger.Warn("unknown tool requested", "tool", call.Name)
		d.metrics.RecordTool(monitor.ToolMetrics{Tool: call.Name, Duration: time.Since(start), IsError: true})
		return core.NewToolError(call.ID, fmt.Sprintf("tool not found: %s", call.Name))
	}

	content, err := tool.Execute(ctx, call.Arguments)
	d.metrics.RecordTool(monitor.ToolMetrics{
		Tool:     call.Name,
		Duration: time.Since(start),
		IsError:  err != nil,
	})
	if err != nil {
		d.logger.Warn("tool execution failed", "tool", call.Name, "error", err)
		return core.NewToolError(call.ID, fmt.Sprintf("%v: %v", core.ErrToolExecution, err))
	}
	return core.NewToolResult(call.ID, content)
}
