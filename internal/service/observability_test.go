package service

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/alexanderramin/eventwise/internal/logger"
	"github.com/stretchr/testify/assert"
)

type recordingObserver struct {
	events []UseCaseEvent
}

func (r *recordingObserver) ObserveUseCase(_ context.Context, e UseCaseEvent) {
	r.events = append(r.events, e)
}

func TestLogUseCaseObserver_IncludesContextIDs(t *testing.T) {
	var buf bytes.Buffer
	obs := NewLogUseCaseObserver(slog.New(slog.NewTextHandler(&buf, nil)))
	ctx := logger.WithSessionID(context.Background(), "sess-9")

	obs.ObserveUseCase(ctx, UseCaseEvent{Name: "handle-message", Duration: 5 * time.Millisecond, Success: true})
	obs.ObserveUseCase(ctx, UseCaseEvent{Name: "generate", Err: errors.New("boom")})

	out := buf.String()
	assert.Contains(t, out, "use_case=handle-message")
	assert.Contains(t, out, "session_id=sess-9")
	assert.Contains(t, out, "level=ERROR")
	assert.Contains(t, out, "error=boom")
}

func TestUseCaseObserverOrNoop(t *testing.T) {
	assert.Equal(t, NoopUseCaseObserver{}, useCaseObserverOrNoop(nil))

	a, b := &recordingObserver{}, &recordingObserver{}
	assert.Same(t, a, useCaseObserverOrNoop([]UseCaseObserver{nil, a}))

	multi := useCaseObserverOrNoop([]UseCaseObserver{a, b})
	multi.ObserveUseCase(context.Background(), UseCaseEvent{Name: "export"})
	assert.Len(t, a.events, 1)
	assert.Len(t, b.events, 1)
}

func TestTurnService_ReportsUseCases(t *testing.T) {
	rec := &recordingObserver{}
	env := newTestEnv(t, weddingDialogue(), newFakeClassifier(msgConfirm))
	env.svc.observer = rec

	driveToReview(t, env)

	var names []string
	for _, e := range rec.events {
		names = append(names, e.Name)
		assert.True(t, e.Success)
	}
	assert.Equal(t, []string{"handle-message", "handle-message", "handle-message", "generate"}, names)
	assert.Equal(t, 15, rec.events[3].Fields["items"])
}
