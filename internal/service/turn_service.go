package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"time"

	"github.com/alexanderramin/eventwise/internal/app"
	"github.com/alexanderramin/eventwise/internal/completeness"
	"github.com/alexanderramin/eventwise/internal/domain"
	"github.com/alexanderramin/eventwise/internal/generation"
	"github.com/alexanderramin/eventwise/internal/intelligence"
	"github.com/alexanderramin/eventwise/internal/logger"
	"github.com/alexanderramin/eventwise/internal/metrics"
	"github.com/alexanderramin/eventwise/internal/session"
	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

var tracer = otel.Tracer("service.turn")

var (
	// ErrEmptyMessage is returned for blank user messages.
	ErrEmptyMessage = errors.New("message is empty")
	// ErrGenerationNotReady is returned by Generate when the session has not
	// passed the confirmation gate, or already has content.
	ErrGenerationNotReady = errors.New("generation not confirmed")
	// ErrNothingToExport is returned when a session has no recommendations.
	ErrNothingToExport = errors.New("nothing to export")
)

// Turn outcomes recorded in metrics and use-case events.
const (
	outcomeOK       = "ok"
	outcomeFallback = "fallback"
	outcomeError    = "error"
)

// ContentDispatcher fans an event out to the generation collaborators.
type ContentDispatcher interface {
	Run(ctx context.Context, ec generation.EventContext) generation.Report
}

// TurnDeps are the collaborators a TurnService composes.
type TurnDeps struct {
	Store      session.Store
	Analyzer   *completeness.Analyzer
	Dialogue   intelligence.DialogueService
	Classifier intelligence.ConfirmationClassifier
	Dispatcher ContentDispatcher
	// Archive is optional; nil disables archiving.
	Archive ChatArchive
	// Metrics is optional; nil registers on a private registry.
	Metrics *metrics.Metrics
	Logger  *slog.Logger
}

// TurnOptions tune a TurnService.
type TurnOptions struct {
	// HistoryWindow is how many prior messages the dialogue model sees.
	HistoryWindow int
	// TurnTimeout bounds the dialogue and confirmation calls of one turn.
	TurnTimeout time.Duration
}

// TurnService is the conversation state machine. It is the only component
// that mutates a session across a whole turn, and it serializes turns per
// session.
type TurnService struct {
	store      session.Store
	analyzer   *completeness.Analyzer
	dialogue   intelligence.DialogueService
	classifier intelligence.ConfirmationClassifier
	dispatcher ContentDispatcher
	archive    ChatArchive
	metrics    *metrics.Metrics
	logger     *slog.Logger
	observer   UseCaseObserver
	locks      *session.KeyedMutex
	opts       TurnOptions
	now        func() time.Time
}

var _ app.ConversationUseCase = (*TurnService)(nil)

func NewTurnService(deps TurnDeps, opts TurnOptions, observers ...UseCaseObserver) *TurnService {
	if deps.Archive == nil {
		deps.Archive = NoopArchive{}
	}
	if deps.Metrics == nil {
		deps.Metrics = metrics.New(prometheus.NewRegistry())
	}
	if deps.Logger == nil {
		deps.Logger = logger.Default()
	}
	if opts.HistoryWindow <= 0 {
		opts.HistoryWindow = 10
	}
	return &TurnService{
		store:      deps.Store,
		analyzer:   deps.Analyzer,
		dialogue:   deps.Dialogue,
		classifier: deps.Classifier,
		dispatcher: deps.Dispatcher,
		archive:    deps.Archive,
		metrics:    deps.Metrics,
		logger:     deps.Logger,
		observer:   useCaseObserverOrNoop(observers),
		locks:      session.NewKeyedMutex(),
		opts:       opts,
		now:        func() time.Time { return time.Now().UTC() },
	}
}

// HandleMessage runs one turn: record the message, ask the dialogue model,
// merge what it extracted, resolve the stage, apply the confirmation gates
// and persist the result. It never runs generation itself; a result with
// ReadyToGenerate tells the caller to call Generate.
func (s *TurnService) HandleMessage(ctx context.Context, sessionID, text string) (*app.TurnResult, error) {
	if err := checkTurnInput(sessionID, text); err != nil {
		return nil, err
	}
	unlock := s.locks.Lock(sessionID)
	defer unlock()
	return s.handleLocked(ctx, sessionID, text)
}

// Converse is HandleMessage followed, when the turn opened the gate, by
// Generate, both under one hold of the session's turn lock.
func (s *TurnService) Converse(ctx context.Context, sessionID, text string) (*app.ConverseResult, error) {
	if err := checkTurnInput(sessionID, text); err != nil {
		return nil, err
	}
	unlock := s.locks.Lock(sessionID)
	defer unlock()

	turn, err := s.handleLocked(ctx, sessionID, text)
	if err != nil {
		return nil, err
	}
	res := &app.ConverseResult{Turn: turn}
	if !turn.ReadyToGenerate {
		return res, nil
	}
	report, err := s.generateLocked(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	res.Generation = report
	return res, nil
}

func checkTurnInput(sessionID, text string) error {
	if strings.TrimSpace(sessionID) == "" {
		return errors.New("session id is required")
	}
	if strings.TrimSpace(text) == "" {
		return ErrEmptyMessage
	}
	return nil
}

func (s *TurnService) handleLocked(ctx context.Context, sessionID, text string) (res *app.TurnResult, err error) {
	ctx = logger.WithSessionID(ctx, sessionID)
	ctx, span := tracer.Start(ctx, "turn.handle_message",
		trace.WithAttributes(attribute.String("session.id", sessionID)))
	startedAt := time.Now()
	fields := map[string]any{}
	defer func() {
		outcome := outcomeOK
		stage := ""
		switch {
		case err != nil:
			outcome = outcomeError
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		case res.Fallback:
			outcome = outcomeFallback
		}
		if res != nil {
			stage = string(res.Stage)
			span.SetAttributes(attribute.String("turn.stage", stage))
		}
		span.End()
		s.metrics.ObserveTurn(stage, outcome, time.Since(startedAt))
		fields["outcome"] = outcome
		s.observer.ObserveUseCase(ctx, UseCaseEvent{
			Name:      "handle-message",
			StartedAt: startedAt,
			Duration:  time.Since(startedAt),
			Success:   err == nil,
			Err:       err,
			Fields:    fields,
		})
	}()

	log := logger.Enrich(ctx, s.logger)

	sess, err := s.store.GetOrCreate(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("loading session: %w", err)
	}
	prior := sess.State
	firstMessage := sess.MessageCount == 0

	history, err := s.store.HistoryWindow(ctx, sessionID, s.opts.HistoryWindow)
	if err != nil {
		return nil, fmt.Errorf("reading history: %w", err)
	}
	req := intelligence.DialogueRequest{
		Message:             text,
		History:             slices.Collect(history),
		KnownFields:         sess.Fields,
		HasGeneratedContent: prior.HasGenerated,
	}
	if err := s.store.AppendMessage(ctx, sessionID, domain.RoleUser, text); err != nil {
		return nil, fmt.Errorf("recording user message: %w", err)
	}
	userMsg := domain.Message{Role: domain.RoleUser, Content: text, Timestamp: s.now()}

	turnCtx, cancel := s.turnContext(ctx)
	defer cancel()

	reply, dErr := s.dialogue.Respond(turnCtx, req)
	if dErr != nil {
		log.WarnContext(ctx, "dialogue failed, using fallback", "error", dErr)
		fields["dialogue_error"] = dErr.Error()
		return s.fallbackTurn(ctx, sess, firstMessage, userMsg)
	}

	if err := s.store.StoreSuggestions(ctx, sessionID, reply.Suggestions); err != nil {
		return nil, fmt.Errorf("storing suggestions: %w", err)
	}

	incoming := s.guardValidFields(ctx, log, sess.Fields, reply.Suggestions)
	merged, err := s.store.MergeExtractedFields(ctx, sessionID, incoming)
	if err != nil {
		return nil, fmt.Errorf("merging fields: %w", err)
	}

	analysis := s.analyzer.Analyze(merged, prior.HasGenerated, prior)
	d := decision{
		stage:       analysis.Stage,
		awaiting:    analysis.AwaitingConfirmation || (prior.AwaitingConfirmation && !prior.HasGenerated),
		confirmed:   prior.UserConfirmedGeneration,
		ready:       analysis.ReadyToGenerate,
		awaitingPdf: prior.AwaitingPdfConfirmation,
		pdfDone:     prior.PdfConfirmed,
		message:     reply.Message,
	}

	switch {
	case d.stage == domain.StageAwaitingPdfConfirmation:
		ok := s.confirm(turnCtx, intelligence.ModePDF, text)
		if ok {
			d.pdfDone = true
			d.awaitingPdf = false
			d.stage = domain.StagePdfGeneration
			d.message = intelligence.PDFStartedMessage
			d.exportConfirmed = true
		} else {
			d.message = joinReply(reply.Message, intelligence.PDFRepromptMessage)
		}

	case d.stage == domain.StageAwaitingConfirmation && !d.confirmed && prior.AwaitingConfirmation:
		if s.confirm(turnCtx, intelligence.ModeGeneration, text) {
			d.confirmed = true
			d.ready = true
			d.stage = domain.StageConfirmed
		}

	case d.stage == domain.StageReviewingContent && reply.WantsPDF():
		d.awaitingPdf = true
		d.stage = domain.StageAwaitingPdfConfirmation
		d.message = intelligence.ConfirmPDFMessage

	case d.stage == domain.StageReviewingContent:
		d.refinement = reply.RefinementTargets()
		if len(d.refinement) > 0 {
			fields["refinement"] = reply.ActionRequested
			log.InfoContext(ctx, "refinement requested",
				"action", reply.ActionRequested, "details", reply.RefinementDetails)
		}
	}

	gateOpen := d.ready && d.confirmed && analysis.Complete() && !prior.HasGenerated
	proposed, known := domain.ParseStage(reply.ProposedStage)
	claimsReady := reply.ClaimsReady || (known && proposed == domain.StageConfirmed)

	switch {
	case gateOpen:
		d.message = intelligence.GeneratingMessage
	case claimsReady && !prior.HasGenerated:
		d.message = downgradeMessage(analysis.Missing)
		log.InfoContext(ctx, "downgraded readiness claim",
			"proposed_stage", reply.ProposedStage, "missing", analysis.Missing)
	case d.stage == domain.StageAwaitingConfirmation && !prior.AwaitingConfirmation && !reply.ClaimsAwaiting:
		d.message = joinReply(reply.Message, intelligence.ConfirmGenerationMessage)
	}

	if reply.Deterministic && !gateOpen {
		d.message = deterministicMessage(d, prior, reply.Message, analysis.Missing)
		fields["deterministic"] = true
	}

	if reply.ProposedStage != "" && proposed != d.stage {
		s.metrics.StageDisagreements.Inc()
		log.DebugContext(ctx, "model stage overruled",
			"proposed_stage", reply.ProposedStage, "resolved_stage", d.stage)
	}

	state, err := s.store.SetGenerationState(ctx, sessionID, domain.StateUpdate{
		AwaitingConfirmation:    domain.Ptr(d.awaiting),
		UserConfirmedGeneration: domain.Ptr(d.confirmed),
		Stage:                   domain.Ptr(d.stage),
		AwaitingPdfConfirmation: domain.Ptr(d.awaitingPdf),
		PdfConfirmed:            domain.Ptr(d.pdfDone),
	})
	if err != nil {
		return nil, fmt.Errorf("saving generation state: %w", err)
	}
	if err := s.store.AppendMessage(ctx, sessionID, domain.RoleAssistant, d.message); err != nil {
		return nil, fmt.Errorf("recording reply: %w", err)
	}
	s.archiveMessages(ctx, sessionID, d.stage, userMsg, domain.Message{Role: domain.RoleAssistant, Content: d.message, Timestamp: s.now()})

	fields["stage"] = string(d.stage)
	fields["missing"] = len(analysis.Missing)
	fields["ready"] = gateOpen

	return &app.TurnResult{
		SessionID:            sessionID,
		Reply:                d.message,
		Stage:                d.stage,
		ProposedStage:        reply.ProposedStage,
		Missing:              analysis.Missing,
		CompletionPercentage: analysis.CompletionPercentage,
		ReadyToGenerate:      gateOpen,
		ExportConfirmed:      d.exportConfirmed,
		Refinement:           d.refinement,
		Suggestions:          reply.Suggestions,
		State:                state,
	}, nil
}

// decision is the state a turn resolves to before it is persisted.
type decision struct {
	stage           domain.Stage
	awaiting        bool
	confirmed       bool
	ready           bool
	awaitingPdf     bool
	pdfDone         bool
	exportConfirmed bool
	refinement      []domain.Category
	message         string
}

// fallbackTurn answers without the model. Fields and state stay as they were.
func (s *TurnService) fallbackTurn(ctx context.Context, sess *domain.Session, first bool, userMsg domain.Message) (*app.TurnResult, error) {
	msg := intelligence.RetryMessage
	if first {
		msg = intelligence.GreetingMessage
	}
	if err := s.store.AppendMessage(ctx, sess.ID, domain.RoleAssistant, msg); err != nil {
		return nil, fmt.Errorf("recording fallback reply: %w", err)
	}
	s.archiveMessages(ctx, sess.ID, sess.State.Stage, userMsg, domain.Message{Role: domain.RoleAssistant, Content: msg, Timestamp: s.now()})

	analysis := s.analyzer.Analyze(sess.Fields, sess.State.HasGenerated, sess.State)
	return &app.TurnResult{
		SessionID:            sess.ID,
		Reply:                msg,
		Stage:                sess.State.Stage,
		Missing:              analysis.Missing,
		CompletionPercentage: analysis.CompletionPercentage,
		Fallback:             true,
		State:                sess.State,
	}, nil
}

// guardValidFields normalizes incoming values and drops any that would
// replace a currently valid value with an invalid one.
func (s *TurnService) guardValidFields(ctx context.Context, log *slog.Logger, current domain.Fields, incoming map[string]any) map[string]any {
	v := s.analyzer.Validator()
	out := v.Normalize(incoming)
	for k, val := range out {
		if v.IsValid(k, val) {
			continue
		}
		if cur, ok := current[k]; ok && v.IsValid(k, cur) {
			log.DebugContext(ctx, "kept valid field over invalid update", "field", k, "rejected", val)
			delete(out, k)
		}
	}
	return out
}

func (s *TurnService) confirm(ctx context.Context, mode intelligence.ConfirmationMode, text string) bool {
	ok := s.classifier.Confirm(ctx, mode, text)
	s.metrics.Confirmations.WithLabelValues(mode.String(), fmt.Sprint(ok)).Inc()
	return ok
}

func (s *TurnService) turnContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.opts.TurnTimeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, s.opts.TurnTimeout)
}

func (s *TurnService) archiveMessages(ctx context.Context, sessionID string, stage domain.Stage, msgs ...domain.Message) {
	if err := s.archive.RecordMessages(ctx, sessionID, stage, msgs...); err != nil {
		logger.Enrich(ctx, s.logger).WarnContext(ctx, "archiving messages failed", "error", err)
	}
}

// downgradeMessage replaces a premature readiness claim with the next thing
// the session actually needs.
func downgradeMessage(missing []string) string {
	if _, q, ok := completeness.NextQuestion(missing); ok {
		return intelligence.NeedDetailsMessage + " " + q
	}
	return intelligence.ConfirmGenerationMessage
}

// deterministicMessage completes a pattern-matched reply, which only
// acknowledges what was noted, with what the session needs next.
func deterministicMessage(d decision, prior domain.GenerationState, noted string, missing []string) string {
	switch d.stage {
	case domain.StageGreeting, domain.StageCollectingBasics, domain.StageCollectingDetails:
		if _, q, ok := completeness.NextQuestion(missing); ok {
			return joinReply(noted, q)
		}
	case domain.StageAwaitingConfirmation:
		return joinReply(noted, intelligence.ConfirmGenerationMessage)
	case domain.StageAwaitingPdfConfirmation:
		if prior.AwaitingPdfConfirmation {
			return intelligence.PDFRepromptMessage
		}
	}
	return d.message
}

func joinReply(parts ...string) string {
	var kept []string
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			kept = append(kept, p)
		}
	}
	return strings.Join(kept, "\n\n")
}
