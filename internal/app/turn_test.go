package app

import (
	"testing"

	"github.com/alexanderramin/eventwise/internal/domain"
	"github.com/stretchr/testify/assert"
)

func TestConverseResult_PrefersGeneration(t *testing.T) {
	r := &ConverseResult{Turn: &TurnResult{Reply: "turn", Stage: domain.StageConfirmed}}
	assert.Equal(t, "turn", r.Reply())
	assert.Equal(t, domain.StageConfirmed, r.Stage())

	r.Generation = &GenerationReport{Reply: "generated", Stage: domain.StageReviewingContent}
	assert.Equal(t, "generated", r.Reply())
	assert.Equal(t, domain.StageReviewingContent, r.Stage())
}
