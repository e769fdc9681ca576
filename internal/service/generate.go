package service

import (
	"context"
	"fmt"
	"time"

	"github.com/alexanderramin/eventwise/internal/app"
	"github.com/alexanderramin/eventwise/internal/domain"
	"github.com/alexanderramin/eventwise/internal/generation"
	"github.com/alexanderramin/eventwise/internal/intelligence"
	"github.com/alexanderramin/eventwise/internal/logger"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Generate runs every generation collaborator for a confirmed session and
// stores what they produced. Partial results are kept. When nothing at all
// comes back the confirmation is withdrawn so the user is asked again.
func (s *TurnService) Generate(ctx context.Context, sessionID string) (*app.GenerationReport, error) {
	unlock := s.locks.Lock(sessionID)
	defer unlock()
	return s.generateLocked(ctx, sessionID)
}

func (s *TurnService) generateLocked(ctx context.Context, sessionID string) (res *app.GenerationReport, err error) {
	ctx = logger.WithSessionID(ctx, sessionID)
	ctx, span := tracer.Start(ctx, "turn.generate",
		trace.WithAttributes(attribute.String("session.id", sessionID)))
	startedAt := time.Now()
	fields := map[string]any{}
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
		s.observer.ObserveUseCase(ctx, UseCaseEvent{
			Name:      "generate",
			StartedAt: startedAt,
			Duration:  time.Since(startedAt),
			Success:   err == nil,
			Err:       err,
			Fields:    fields,
		})
	}()

	sess, err := s.store.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	st := sess.State
	if st.HasGenerated || !st.UserConfirmedGeneration || len(s.analyzer.Missing(sess.Fields)) > 0 {
		return nil, fmt.Errorf("%w: stage %s", ErrGenerationNotReady, st.Stage)
	}

	report := s.dispatcher.Run(ctx, generation.NewEventContext(sess.Fields))
	s.metrics.GenerationDuration.Observe(time.Since(startedAt).Seconds())

	stored := map[domain.Category][]domain.ContentItem{}
	for _, c := range domain.Categories {
		items := report.Items[c]
		if len(items) == 0 {
			continue
		}
		if err := s.store.StoreGeneratedContent(ctx, sessionID, c, items); err != nil {
			return nil, fmt.Errorf("storing %s: %w", c, err)
		}
		stored[c] = items
		s.metrics.GenerationItems.WithLabelValues(string(c)).Add(float64(len(items)))
	}
	failed := report.FailedCategories()
	for _, c := range failed {
		s.metrics.GenerationFailures.WithLabelValues(string(c)).Inc()
	}

	var (
		update domain.StateUpdate
		reply  string
	)
	if len(stored) > 0 {
		update = domain.StateUpdate{
			HasGenerated:         domain.Ptr(true),
			AwaitingConfirmation: domain.Ptr(false),
			Stage:                domain.Ptr(domain.StageReviewingContent),
		}
		reply = intelligence.GenerationSummary(report.Counts(), failed)
	} else {
		update = domain.StateUpdate{
			UserConfirmedGeneration: domain.Ptr(false),
			AwaitingConfirmation:    domain.Ptr(true),
			Stage:                   domain.Ptr(domain.StageAwaitingConfirmation),
		}
		reply = intelligence.GenerationFailedMessage
		logger.Enrich(ctx, s.logger).WarnContext(ctx, "generation produced nothing", "failed", failed)
	}

	state, err := s.store.SetGenerationState(ctx, sessionID, update)
	if err != nil {
		return nil, fmt.Errorf("saving generation state: %w", err)
	}
	if err := s.store.AppendMessage(ctx, sessionID, domain.RoleAssistant, reply); err != nil {
		return nil, fmt.Errorf("recording reply: %w", err)
	}

	if len(stored) > 0 {
		if err := s.archive.RecordContent(ctx, sessionID, state.Stage, stored); err != nil {
			logger.Enrich(ctx, s.logger).WarnContext(ctx, "archiving content failed", "error", err)
		}
	}
	s.archiveMessages(ctx, sessionID, state.Stage, domain.Message{Role: domain.RoleAssistant, Content: reply, Timestamp: s.now()})

	total := 0
	counts := make(map[domain.Category]int, len(stored))
	for c, items := range stored {
		counts[c] = len(items)
		total += len(items)
	}
	fields["items"] = total
	fields["failed"] = len(failed)
	span.SetAttributes(attribute.Int("generation.items", total))

	return &app.GenerationReport{
		SessionID: sessionID,
		Reply:     reply,
		Stage:     state.Stage,
		Counts:    counts,
		Failed:    failed,
		Total:     total,
	}, nil
}
