package app

import "github.com/alexanderramin/eventwise/internal/domain"

// TurnResult is the outcome of one handled message.
type TurnResult struct {
	SessionID string
	Reply     string
	Stage     domain.Stage
	// ProposedStage is the model's own stage claim, kept for diagnostics.
	ProposedStage        string
	Missing              []string
	CompletionPercentage int
	// ReadyToGenerate is set when the caller should run Generate next.
	ReadyToGenerate bool
	// ExportConfirmed is set when the user just confirmed the plan document.
	ExportConfirmed bool
	// Refinement lists categories the user asked to rework after review. It
	// is a hint for the caller; content is never regenerated by a turn.
	Refinement []domain.Category
	// Fallback marks a reply produced without the dialogue model.
	Fallback    bool
	Suggestions map[string]any
	State       domain.GenerationState
}

// GenerationReport summarizes one generation run.
type GenerationReport struct {
	SessionID string
	Reply     string
	Stage     domain.Stage
	Counts    map[domain.Category]int
	Failed    []domain.Category
	Total     int
}

// ConverseResult is a turn plus the generation it may have triggered.
type ConverseResult struct {
	Turn       *TurnResult
	Generation *GenerationReport
}

// Reply is the last thing the assistant said this turn.
func (r *ConverseResult) Reply() string {
	if r.Generation != nil {
		return r.Generation.Reply
	}
	return r.Turn.Reply
}

// Stage is the session stage after the turn and any generation.
func (r *ConverseResult) Stage() domain.Stage {
	if r.Generation != nil {
		return r.Generation.Stage
	}
	return r.Turn.Stage
}

// ChatTranscript is an archived chat with its messages.
type ChatTranscript struct {
	Chat     *domain.Chat
	Messages []*domain.ChatMessage
}
