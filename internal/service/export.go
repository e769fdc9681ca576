package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/alexanderramin/eventwise/internal/app"
	"github.com/alexanderramin/eventwise/internal/domain"
	"github.com/alexanderramin/eventwise/internal/export"
	"github.com/alexanderramin/eventwise/internal/intelligence"
	"github.com/alexanderramin/eventwise/internal/logger"
)

// RequestExport moves a session with content into the plan-confirmation
// stage and asks the user to confirm, the same as when the user asks for
// the plan in chat.
func (s *TurnService) RequestExport(ctx context.Context, sessionID string) (res *app.TurnResult, err error) {
	unlock := s.locks.Lock(sessionID)
	defer unlock()

	ctx = logger.WithSessionID(ctx, sessionID)
	startedAt := time.Now()
	defer func() {
		s.observer.ObserveUseCase(ctx, UseCaseEvent{
			Name:      "request-export",
			StartedAt: startedAt,
			Duration:  time.Since(startedAt),
			Success:   err == nil,
			Err:       err,
		})
	}()

	sess, err := s.store.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if !sess.State.HasGenerated {
		return nil, fmt.Errorf("%w: session %s has no recommendations", ErrNothingToExport, sessionID)
	}

	state, err := s.store.SetGenerationState(ctx, sessionID, domain.StateUpdate{
		AwaitingPdfConfirmation: domain.Ptr(true),
		PdfConfirmed:            domain.Ptr(false),
		Stage:                   domain.Ptr(domain.StageAwaitingPdfConfirmation),
	})
	if err != nil {
		return nil, fmt.Errorf("saving generation state: %w", err)
	}
	msg := intelligence.ConfirmPDFMessage
	if err := s.store.AppendMessage(ctx, sessionID, domain.RoleAssistant, msg); err != nil {
		return nil, fmt.Errorf("recording reply: %w", err)
	}
	s.archiveMessages(ctx, sessionID, state.Stage, domain.Message{Role: domain.RoleAssistant, Content: msg, Timestamp: s.now()})

	return &app.TurnResult{
		SessionID:            sessionID,
		Reply:                msg,
		Stage:                state.Stage,
		Missing:              []string{},
		CompletionPercentage: 100,
		State:                state,
	}, nil
}

// Export renders the plan document from the session snapshot. A pending
// confirmed plan request is settled and the session returns to reviewing.
func (s *TurnService) Export(ctx context.Context, sessionID string) (plan *export.Plan, err error) {
	unlock := s.locks.Lock(sessionID)
	defer unlock()

	ctx = logger.WithSessionID(ctx, sessionID)
	startedAt := time.Now()
	fields := map[string]any{}
	defer func() {
		s.observer.ObserveUseCase(ctx, UseCaseEvent{
			Name:      "export",
			StartedAt: startedAt,
			Duration:  time.Since(startedAt),
			Success:   err == nil,
			Err:       err,
			Fields:    fields,
		})
	}()

	snap, err := s.store.Snapshot(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	plan, err = export.RenderPlan(snap, s.now())
	if errors.Is(err, export.ErrNoRecommendations) {
		return nil, fmt.Errorf("%w: %w", ErrNothingToExport, err)
	}
	if err != nil {
		return nil, err
	}
	fields["bytes"] = len(plan.Markdown)

	if snap.State.PdfConfirmed || snap.State.AwaitingPdfConfirmation {
		_, err = s.store.SetGenerationState(ctx, sessionID, domain.StateUpdate{
			PdfConfirmed:            domain.Ptr(false),
			AwaitingPdfConfirmation: domain.Ptr(false),
			Stage:                   domain.Ptr(domain.StageReviewingContent),
		})
		if err != nil {
			return nil, fmt.Errorf("saving generation state: %w", err)
		}
	}
	return plan, nil
}
