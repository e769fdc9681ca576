package domain

import "strings"

// Stage is the conversation stage resolved by the completeness analyzer.
type Stage string

const (
	StageGreeting                Stage = "greeting"
	StageCollectingBasics        Stage = "collecting_basics"
	StageCollectingDetails       Stage = "collecting_details"
	StageAwaitingConfirmation    Stage = "awaiting_confirmation"
	StageConfirmed               Stage = "confirmed"
	StageReviewingContent        Stage = "reviewing_content"
	StageAwaitingPdfConfirmation Stage = "awaiting_pdf_confirmation"
	StagePdfGeneration           Stage = "pdf_generation"
)

// ValidStages is the canonical set of accepted stage strings.
var ValidStages = map[Stage]bool{
	StageGreeting:                true,
	StageCollectingBasics:        true,
	StageCollectingDetails:       true,
	StageAwaitingConfirmation:    true,
	StageConfirmed:               true,
	StageReviewingContent:        true,
	StageAwaitingPdfConfirmation: true,
	StagePdfGeneration:           true,
}

// ParseStage coerces a free-form stage string (typically proposed by a model)
// into a Stage. The second return is false for anything outside the enum.
func ParseStage(s string) (Stage, bool) {
	norm := strings.ToLower(strings.TrimSpace(s))
	norm = strings.ReplaceAll(norm, " ", "_")
	norm = strings.ReplaceAll(norm, "-", "_")
	st := Stage(norm)
	if !ValidStages[st] {
		return "", false
	}
	return st, true
}

// PostGeneration reports whether the stage belongs to the review/export phase.
func (s Stage) PostGeneration() bool {
	switch s {
	case StageReviewingContent, StageAwaitingPdfConfirmation, StagePdfGeneration:
		return true
	default:
		return false
	}
}

type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Category names a bucket of generated content.
type Category string

const (
	CategoryImages Category = "images"
	CategoryMusic  Category = "music"
	CategoryVenues Category = "venues"
	CategoryFood   Category = "food"
)

// Categories lists every content category in display order.
var Categories = []Category{CategoryImages, CategoryMusic, CategoryVenues, CategoryFood}

// ValidCategory reports whether c is a known category.
func ValidCategory(c Category) bool {
	for _, known := range Categories {
		if c == known {
			return true
		}
	}
	return false
}
