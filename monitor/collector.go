package monitor

import (
	"sync"
	"time"
)

type MetricsCollector interface {
	RecordChat(m ChatMetrics)
	RecordTool(m ToolMetrics)
	Flush() Summary
}

type InMemoryCollector struct {
	mu        sync.RWMutex
	summary   Summary
	startTime time.Time
}

func NewInMemoryCollector() *InMemoryCollector {
	return &InMemoryCollector{
		summary: Summary{
			ToolCounts: make(map[string]int),
			ToolErrors: make(map[string]int),
		},
		startTime: time.Now(),
	}
}

func (c *InMemoryCollector) RecordChat(m ChatMetrics) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.summary.TotalChats++
	c.summary.TotalRounds += m.Rounds
	c.summary.TotalTokens += m.TokensIn + m.TokensOut
	c.summary.TotalToolCalls += m.ToolCalls
	if m.HitRoundCap {
		c.summary.RoundCapHits++
	}
	if !m.Success {
		c.summary.Failures++
	}
}

func (c *InMemoryCollector) RecordTool(m ToolMetrics) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.summary.ToolCounts[m.Tool]++
	if m.IsError {
		c.summary.ToolErrors[m.Tool]++
	}
}

func (c *InMemoryCollector) Flush() Summary {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := c.summary
	out.StartTime = c.startTime
	out.ToolCounts = make(map[string]int, len(c.summary.ToolCounts))
	for k, v := range c.summary.ToolCounts {
		out.ToolCounts[k] = v
	}
	out.ToolErrors = make(map[string]int, len(c.summary.ToolErrors))
	for k, v := range c.summary.ToolErrors {
		out.ToolErrors[k] = v
	}
	return out
}

func (c *InMemoryCollector) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.summary = Summary{
		ToolCounts: make(map[string]int),
		ToolErrors: make(map[string]int),
	}
	c.startTime = time.Now()
}

type NoOpCollector struct{}

func NewNoOpCollector() *NoOpCollector {
	return &NoOpCollector{}
}

func (c *NoOpCollector) RecordChat(m ChatMetrics) {}

func (c *NoOpCollector) RecordTool(m ToolMetrics) {}

func (c *NoOpCollector) Flush() Summary {
	return Summary{}
}
