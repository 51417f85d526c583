package llm

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hartwell/jobpilot/core"
)

type fakeClient struct {
	responses []fakeResponse
	calls     int
}

type fakeResponse struct {
	resp *ChatResponse
	err  error
}

func (f *fakeClient) Chat(ctx context.Context, model, system, user string) (*ChatResponse, error) {
	return f.next()
}

func (f *fakeClient) ChatWithTools(ctx context.Context, model, system string, msgs []core.Message, tools []core.ToolSchema) (*ChatResponse, error) {
	return f.next()
}

func (f *fakeClient) next() (*ChatResponse, error) {
	if f.calls >= len(f.responses) {
		return nil, fmt.Errorf("fakeClient: no response queued for call %d", f.calls+1)
	}
	r := f.responses[f.calls]
	f.calls++
	return r.resp, r.err
}

func noSleep() (func(ctx context.Context, d time.Duration) error, *[]time.Duration) {
	var slept []time.Duration
	return func(_ context.Context, d time.Duration) error {
		slept = append(slept, d)
		return nil
	}, &slept
}

func testAdapter(client Client, maxAttempts int, sleep func(context.Context, time.Duration) error) *Adapter {
	return NewAdapter(client, AdapterConfig{
		Model: core.DefaultModelConfig("gpt-4"),
		Retry: RetryPolicy{
			MaxAttempts: maxAttempts,
			BaseDelay:   time.Millisecond,
			MaxDelay:    10 * time.Millisecond,
			Sleep:       sleep,
		},
	}, slog.Default())
}

func TestAdapterReturnsFinalAnswer(t *testing.T) {
	client := &fakeClient{responses: []fakeResponse{
		{resp: &ChatResponse{Content: "the answer"}},
	}}
	sleep, _ := noSleep()
	a := testAdapter(client, 3, sleep)

	c, err := a.Complete(context.Background(), "system", nil, nil)
	require.NoError(t, err)

	final, ok := c.(core.FinalAnswer)
	require.True(t, ok)
	assert.Equal(t, "the answer", final.Text)
}

func TestAdapterReturnsToolCalls(t *testing.T) {
	client := &fakeClient{responses: []fakeResponse{
		{resp: &ChatResponse{ToolCalls: []core.ToolCall{{ID: "c1", Name: "analyze_job"}}}},
	}}
	sleep, _ := noSleep()
	a := testAdapter(client, 3, sleep)

	c, err := a.Complete(context.Background(), "system", nil, nil)
	require.NoError(t, err)

	calls, ok := c.(core.ToolCallsRequested)
	require.True(t, ok)
	require.Len(t, calls.Calls, 1)
	assert.Equal(t, "analyze_job", calls.Calls[0].Name)
}

func TestAdapterRetriesTransientFailures(t *testing.T) {
	client := &fakeClient{responses: []fakeResponse{
		{err: fmt.Errorf("%w: 503", core.ErrServerError)},
		{err: fmt.Errorf("%w: 429", core.ErrRateLimited)},
		{resp: &ChatResponse{Content: "recovered"}},
	}}
	sleep, slept := noSleep()
	a := testAdapter(client, 3, sleep)

	c, err := a.Complete(context.Background(), "system", nil, nil)
	require.NoError(t, err)
	assert.Equal(t, "recovered", c.(core.FinalAnswer).Text)
	assert.Equal(t, 3, client.calls)
	assert.Len(t, *slept, 2, "backoff sleeps between attempts only")
}

func TestAdapterExhaustedRetriesBecomeModelUnavailable(t *testing.T) {
	client := &fakeClient{responses: []fakeResponse{
		{err: fmt.Errorf("%w: attempt 1", core.ErrTimeout)},
		{err: fmt.Errorf("%w: attempt 2", core.ErrTimeout)},
		{err: fmt.Errorf("%w: attempt 3", core.ErrTimeout)},
	}}
	sleep, _ := noSleep()
	a := testAdapter(client, 3, sleep)

	_, err := a.Complete(context.Background(), "system", nil, nil)
	require.Error(t, err)
	assert.True(t, errors.Is(err, core.ErrModelUnavailable))
	assert.Equal(t, 3, client.calls, "exactly MaxAttempts calls, no more")
}

func TestAdapterDoesNotRetryPermanentErrors(t *testing.T) {
	client := &fakeClient{responses: []fakeResponse{
		{err: errors.New("API error 401: invalid key")},
	}}
	sleep, slept := noSleep()
	a := testAdapter(client, 3, sleep)

	_, err := a.Complete(context.Background(), "system", nil, nil)
	require.Error(t, err)
	assert.False(t, errors.Is(err, core.ErrModelUnavailable))
	assert.Equal(t, 1, client.calls)
	assert.Empty(t, *slept)
}

func TestAdapterStopsOnCancellation(t *testing.T) {
	client := &fakeClient{responses: []fakeResponse{
		{err: fmt.Errorf("%w: first", core.ErrServerError)},
	}}
	ctx, cancel := context.WithCancel(context.Background())
	a := testAdapter(client, 3, func(sctx context.Context, _ time.Duration) error {
		cancel()
		return sctx.Err()
	})

	_, err := a.Complete(ctx, "system", nil, nil)
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.Canceled))
	assert.Equal(t, 1, client.calls)
}

func TestRetryPolicyBackoffGrowsAndCaps(t *testing.T) {
	p := RetryPolicy{BaseDelay: 100 * time.Millisecond, MaxDelay: time.Second}

	d0 := p.backoff(0)
	assert.GreaterOrEqual(t, d0, 100*time.Millisecond)
	assert.Less(t, d0, 126*time.Millisecond)

	d4 := p.backoff(4)
	assert.GreaterOrEqual(t, d4, time.Second)
	assert.LessOrEqual(t, d4, 1250*time.Millisecond)
}

func TestClassifyStatus(t *testing.T) {
	assert.True(t, errors.Is(classifyStatus(429, nil), core.ErrRateLimited))
	assert.True(t, errors.Is(classifyStatus(504, nil), core.ErrTimeout))
	assert.True(t, errors.Is(classifyStatus(500, nil), core.ErrServerError))
	assert.False(t, core.IsRetryable(classifyStatus(400, nil)))
}
