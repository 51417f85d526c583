package llm

import (
	"context"
	"errors"
	"log/slog"
	"math/rand"
	"time"

	"github.com/sony/gobreaker/v2"
	"golang.org/x/time/rate"

	"github.com/hartwell/jobpilot/core"
)

// Retry defaults for model calls.
const (
	defaultMaxAttempts    = 3
	defaultBaseRetryDelay = 500 * time.Millisecond
	defaultMaxRetryDelay  = 10 * time.Second
	defaultCallTimeout    = 60 * time.Second
)

// Circuit breaker defaults.
const (
	defaultBreakerMaxFailures uint32 = 5
	defaultBreakerTimeout            = 30 * time.Second
	defaultBreakerInterval           = 60 * time.Second
)

// RetryPolicy controls how failed model calls are retried. Sleep is
// injectable so tests can run without waiting on real backoff delays.
type RetryPolicy struct {
	MaxAttempts int
	BaseDelay   time.Duration
	MaxDelay    time.Duration
	Sleep       func(ctx context.Context, d time.Duration) error
}

func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxAttempts: defaultMaxAttempts,
		BaseDelay:   defaultBaseRetryDelay,
		MaxDelay:    defaultMaxRetryDelay,
		Sleep:       sleepContext,
	}
}

// backoff computes exponential backoff with 0-25% jitter for the given
// zero-based attempt number.
func (p RetryPolicy) backoff(attempt int) time.Duration {
	delay := p.BaseDelay * time.Duration(1<<uint(attempt))
	if delay > p.MaxDelay {
		delay = p.MaxDelay
	}
	jitter := time.Duration(rand.Int63n(int64(delay/4) + 1))
	return delay + jitter
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// AdapterConfig configures the model adapter.
type AdapterConfig struct {
	Model         core.ModelConfig
	Retry         RetryPolicy
	CallTimeout   time.Duration
	RatePerMinute int // 0 disables rate limiting
}

// Adapter wraps a provider Client with bounded retry, per-call timeouts,
// a circuit breaker, and optional rate limiting. It converts raw provider
// responses into core.Completion values, so callers never see the wire
// format.
type Adapter struct {
	client  Client
	cfg     AdapterConfig
	breaker *gobreaker.CircuitBreaker[*ChatResponse]
	limiter *rate.Limiter
	logger  *slog.Logger
}

func NewAdapter(client Client, cfg AdapterConfig, logger *slog.Logger) *Adapter {
	if cfg.Retry.MaxAttempts == 0 {
		cfg.Retry = DefaultRetryPolicy()
	}
	if cfg.Retry.Sleep == nil {
		cfg.Retry.Sleep = sleepContext
	}
	if cfg.CallTimeout == 0 {
		cfg.CallTimeout = defaultCallTimeout
	}

	cb := gobreaker.NewCircuitBreaker[*ChatResponse](gobreaker.Settings{
		Name:        "model:" + cfg.Model.Name,
		MaxRequests: 1, // allow 1 probe in half-open state
		Interval:    defaultBreakerInterval,
		Timeout:     defaultBreakerTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= defaultBreakerMaxFailures
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("circuit breaker state change",
				"breaker", name,
				"from", from.String(),
				"to", to.String(),
			)
		},
	})

	var limiter *rate.Limiter
	if cfg.RatePerMinute > 0 {
		limiter = rate.NewLimiter(rate.Limit(float64(cfg.RatePerMinute)/60.0), cfg.RatePerMinute)
	}

	return &Adapter{
		client:  client,
		cfg:     cfg,
		breaker: cb,
		limiter: limiter,
		logger:  logger,
	}
}

// Complete sends the conversation to the model and returns either a final
// answer or a set of requested tool calls. Transient failures (timeouts,
// rate limits, 5xx responses) are retried with exponential backoff up to
// the configured attempt limit; once exhausted, the call fails with
// core.ErrModelUnavailable. The caller's conversation state is never
// touched here, so a failed call leaves nothing to undo.
func (a *Adapter) Complete(ctx context.Context, system string, msgs []core.Message, tools []core.ToolSchema) (core.Completion, error) {
	if a.limiter != nil {
		if err := a.limiter.Wait(ctx); err != nil {
			return nil, core.NewAssistantError("llm.complete", "", err)
		}
	}

	var lastErr error
	for attempt := 0; attempt < a.cfg.Retry.MaxAttempts; attempt++ {
		if attempt > 0 {
			delay := a.cfg.Retry.backoff(attempt - 1)
			a.logger.Warn("retrying model call",
				"model", a.cfg.Model.Name,
				"attempt", attempt+1,
				"delay", delay,
				"error", lastErr,
			)
			if err := a.cfg.Retry.Sleep(ctx, delay); err != nil {
				return nil, core.NewAssistantError("llm.complete", "", err)
			}
		}

		resp, err := a.call(ctx, system, msgs, tools)
		if err == nil {
			return toCompletion(resp), nil
		}
		lastErr = err

		if errors.Is(err, context.Canceled) {
			return nil, core.NewAssistantError("llm.complete", "", err)
		}
		if !retryable(err) {
			return nil, core.NewAssistantError("llm.complete", "", err)
		}
	}

	a.logger.Error("model unavailable after retries",
		"model", a.cfg.Model.Name,
		"attempts", a.cfg.Retry.MaxAttempts,
		"error", lastErr,
	)
	return nil, core.NewAssistantError("llm.complete", "",
		errors.Join(core.ErrModelUnavailable, lastErr))
}

func (a *Adapter) call(ctx context.Context, system string, msgs []core.Message, tools []core.ToolSchema) (*ChatResponse, error) {
	callCtx, cancel := context.WithTimeout(ctx, a.cfg.CallTimeout)
	defer cancel()

	return a.breaker.Execute(func() (*ChatResponse, error) {
		return a.client.ChatWithTools(callCtx, a.cfg.Model.Name, system, msgs, tools)
	})
}

// retryable reports whether an error is worth another attempt. Breaker-open
// errors count: the breaker may close again while we back off.
func retryable(err error) bool {
	if core.IsRetryable(err) {
		return true
	}
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return true
	}
	// A per-call deadline firing is a timeout, not a caller cancellation.
	return errors.Is(err, context.DeadlineExceeded)
}

func toCompletion(resp *ChatResponse) core.Completion {
	if resp.HasToolCalls() {
		return core.ToolCallsRequested{Calls: resp.ToolCalls, Tokens: resp.Usage}
	}
	return core.FinalAnswer{Text: resp.Content, Tokens: resp.Usage}
}

// State exposes the breaker state for monitoring endpoints.
func (a *Adapter) State() gobreaker.State {
	return a.breaker.State()
}
