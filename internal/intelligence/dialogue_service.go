package intelligence

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/alexanderramin/eventwise/internal/domain"
	"github.com/alexanderramin/eventwise/internal/llm"
)

// Post-generation actions the dialogue model may report.
const (
	ActionGeneratePDF   = "generate_pdf"
	ActionRegenerateAll = "regenerate_all"
	ActionRefineMusic   = "refine_music"
	ActionRefineVenues  = "refine_venues"
	ActionRefineFood    = "refine_food"
	ActionRefineStyle   = "refine_style"
)

// MetaKeys are suggestion keys that describe the turn rather than the event.
// They are never merged into a session's fields.
var MetaKeys = []string{"action_requested", "refinement_type", "refinement_details", "has_generated", "ai_extracted", "pdf_requested"}

// DialogueRequest is everything the dialogue model sees for one turn.
type DialogueRequest struct {
	Message             string
	History             []domain.Message
	KnownFields         domain.Fields
	HasGeneratedContent bool
}

// DialogueReply is the model's proposal for a turn. Every claim in it is
// advisory; the turn orchestrator decides what actually happens.
type DialogueReply struct {
	Message string
	// Suggestions holds extracted event fields with nulls dropped and meta
	// keys removed.
	Suggestions     map[string]any
	ActionRequested string
	// RefinementDetails is the user's free-text description of a requested
	// change to generated content.
	RefinementDetails string
	ProposedStage     string
	ClaimsReady       bool
	ClaimsAwaiting    bool
	// Deterministic marks a reply built by pattern matching because the
	// model was disabled or unreachable.
	Deterministic bool
}

// WantsPDF reports whether the model detected a request for the plan document.
func (r *DialogueReply) WantsPDF() bool {
	return r.ActionRequested == ActionGeneratePDF
}

// RefinementTargets lists the content categories the user asked to rework.
// It is nil unless a refine or regenerate action was reported.
func (r *DialogueReply) RefinementTargets() []domain.Category {
	switch r.ActionRequested {
	case ActionRegenerateAll:
		return slices.Clone(domain.Categories)
	case ActionRefineStyle:
		return []domain.Category{domain.CategoryImages}
	case ActionRefineMusic:
		return []domain.Category{domain.CategoryMusic}
	case ActionRefineVenues:
		return []domain.Category{domain.CategoryVenues}
	case ActionRefineFood:
		return []domain.Category{domain.CategoryFood}
	}
	return nil
}

// refinementActions maps a bare refinement_type to its action.
var refinementActions = map[string]string{
	"all":    ActionRegenerateAll,
	"style":  ActionRefineStyle,
	"images": ActionRefineStyle,
	"music":  ActionRefineMusic,
	"venues": ActionRefineVenues,
	"food":   ActionRefineFood,
}

// dialogueTurnResponse is the JSON structure the LLM outputs at each turn.
type dialogueTurnResponse struct {
	Message              string         `json:"message"`
	Suggestions          map[string]any `json:"suggestions"`
	ReadyToGenerate      bool           `json:"ready_to_generate"`
	AwaitingConfirmation bool           `json:"awaiting_confirmation"`
	ConversationStage    string         `json:"conversation_stage"`
	ActionRequested      string         `json:"action_requested,omitempty"`
	PDFRequested         bool           `json:"pdf_requested,omitempty"`
}

// DialogueService produces the assistant's reply and extracted fields.
type DialogueService interface {
	Respond(ctx context.Context, req DialogueRequest) (*DialogueReply, error)
}

type dialogueService struct {
	client llm.LLMClient
}

// NewDialogueService creates a DialogueService backed by an LLM client.
func NewDialogueService(client llm.LLMClient) DialogueService {
	return &dialogueService{client: client}
}

func (s *dialogueService) Respond(ctx context.Context, req DialogueRequest) (*DialogueReply, error) {
	system := collectingSystemPrompt
	if req.HasGeneratedContent {
		system = reviewingSystemPrompt
	}

	resp, err := s.client.Generate(ctx, llm.GenerateRequest{
		Task:         llm.TaskDialogue,
		SystemPrompt: system,
		UserPrompt:   buildDialoguePrompt(req),
		JSONMode:     true,
	})
	if err != nil {
		if errors.Is(err, llm.ErrDisabled) || errors.Is(err, llm.ErrUnavailable) {
			if reply := DeterministicDialogue(req); reply != nil {
				return reply, nil
			}
		}
		return nil, fmt.Errorf("llm dialogue failed: %w", err)
	}

	turn, err := llm.ExtractJSON[dialogueTurnResponse](resp.Text, validateDialogueTurn)
	if err != nil {
		return nil, fmt.Errorf("failed to extract dialogue response: %w", err)
	}

	reply := &DialogueReply{
		Message:        strings.TrimSpace(turn.Message),
		Suggestions:    map[string]any{},
		ProposedStage:  turn.ConversationStage,
		ClaimsReady:    turn.ReadyToGenerate,
		ClaimsAwaiting: turn.AwaitingConfirmation,
	}
	var (
		refinementType string
		pdfRequested   = turn.PDFRequested
	)
	for k, v := range turn.Suggestions {
		if domain.IsEmptyValue(v) {
			continue
		}
		if slices.Contains(MetaKeys, k) {
			switch k {
			case "action_requested":
				if action, ok := v.(string); ok {
					reply.ActionRequested = normalizeAction(action)
				}
			case "pdf_requested":
				if v == true {
					pdfRequested = true
				}
			case "refinement_type":
				refinementType, _ = v.(string)
			case "refinement_details":
				if details, ok := v.(string); ok {
					reply.RefinementDetails = strings.TrimSpace(details)
				}
			}
			continue
		}
		reply.Suggestions[k] = v
	}

	// Top-level flags are honoured alongside the in-suggestions ones; a PDF
	// request wins over any other action.
	if reply.ActionRequested == "" {
		reply.ActionRequested = normalizeAction(turn.ActionRequested)
	}
	if reply.ActionRequested == "" && refinementType != "" {
		reply.ActionRequested = refinementActions[normalizeAction(refinementType)]
	}
	if pdfRequested {
		reply.ActionRequested = ActionGeneratePDF
	}
	return reply, nil
}

// buildDialoguePrompt renders known facts, the history window and the
// current message as "Role: content" lines.
func buildDialoguePrompt(req DialogueRequest) string {
	var b strings.Builder

	if len(req.KnownFields) > 0 {
		b.WriteString("Known event details:\n")
		for _, k := range slices.Sorted(maps.Keys(req.KnownFields)) {
			v, err := json.Marshal(req.KnownFields[k])
			if err != nil {
				continue
			}
			fmt.Fprintf(&b, "- %s: %s\n", k, v)
		}
		b.WriteString("\n")
	}

	for _, m := range req.History {
		b.WriteString(roleLabel(m.Role))
		b.WriteString(": ")
		b.WriteString(m.Content)
		b.WriteString("\n\n")
	}

	b.WriteString("User: ")
	b.WriteString(req.Message)
	return b.String()
}

func roleLabel(r domain.Role) string {
	if r == domain.RoleAssistant {
		return "Assistant"
	}
	return "User"
}

func normalizeAction(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

func validateDialogueTurn(resp dialogueTurnResponse) error {
	if strings.TrimSpace(resp.Message) == "" {
		return fmt.Errorf("message field is required")
	}
	return nil
}
