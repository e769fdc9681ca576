package llm

import (
	"context"
	"log/slog"
)

// LLMCallEvent describes one Generate call, retries included.
type LLMCallEvent struct {
	Task      TaskType
	Provider  Provider
	Model     string
	LatencyMs int64
	// Attempts counts backend requests, 1 when the first one succeeded.
	Attempts  int
	Success   bool
	ErrorCode string
}

// Observer receives events about LLM calls for logging and metrics.
type Observer interface {
	OnCallComplete(event LLMCallEvent)
}

// LogObserver logs each call as one llm_call line. Failures log at warn so
// an offline model shows up without debug logging.
type LogObserver struct {
	logger *slog.Logger
}

func NewLogObserver(l *slog.Logger) *LogObserver {
	if l == nil {
		l = slog.Default()
	}
	return &LogObserver{logger: l}
}

func (o *LogObserver) OnCallComplete(event LLMCallEvent) {
	level, status := slog.LevelInfo, "ok"
	if !event.Success {
		level, status = slog.LevelWarn, "err:"+event.ErrorCode
	}
	o.logger.Log(context.Background(), level, "llm_call",
		"task", event.Task,
		"provider", event.Provider,
		"model", event.Model,
		"latency_ms", event.LatencyMs,
		"attempts", event.Attempts,
		"status", status,
	)
}

// MultiObserver fans one event out to several observers.
type MultiObserver []Observer

func (m MultiObserver) OnCallComplete(event LLMCallEvent) {
	for _, o := range m {
		o.OnCallComplete(event)
	}
}

// NoopObserver discards all events.
type NoopObserver struct{}

func (NoopObserver) OnCallComplete(LLMCallEvent) {}
