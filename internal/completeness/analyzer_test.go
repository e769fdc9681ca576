package completeness

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/alexanderramin/eventwise/internal/domain"
)

func flexibleAnalyzer() *Analyzer {
	return NewAnalyzer(NewValidator(FlexiblePolicy()))
}

func completeFields() domain.Fields {
	return domain.Fields{
		"event_type":  "wedding",
		"location":    "Nairobi, Kenya",
		"guest_count": 50,
	}
}

func TestAnalyze_MissingEventTypeIsAlwaysGreeting(t *testing.T) {
	a := flexibleAnalyzer()

	res := a.Analyze(domain.Fields{"location": "Nairobi", "guest_count": 20}, false, domain.GenerationState{})
	assert.Equal(t, domain.StageGreeting, res.Stage)
	assert.Equal(t, []string{"event_type"}, res.Missing)
	assert.Equal(t, 67, res.CompletionPercentage)
	assert.False(t, res.ReadyToGenerate)

	res = a.Analyze(domain.Fields{"event_type": "event", "location": "Nairobi", "guest_count": 20}, false, domain.GenerationState{})
	assert.Equal(t, domain.StageGreeting, res.Stage, "placeholder event type counts as missing")
}

func TestAnalyze_EmptyFields(t *testing.T) {
	res := flexibleAnalyzer().Analyze(domain.Fields{}, false, domain.GenerationState{})

	assert.Equal(t, domain.StageGreeting, res.Stage)
	assert.Equal(t, []string{"event_type", "location", "guest_count"}, res.Missing)
	assert.Equal(t, 0, res.CompletionPercentage)
}

func TestAnalyze_CollectingDetails(t *testing.T) {
	res := flexibleAnalyzer().Analyze(domain.Fields{"event_type": "birthday"}, false, domain.GenerationState{})

	assert.Equal(t, domain.StageCollectingDetails, res.Stage)
	assert.Equal(t, []string{"location", "guest_count"}, res.Missing)
	assert.Equal(t, 33, res.CompletionPercentage)
}

func TestAnalyze_StrictPolicyCollectingBasics(t *testing.T) {
	a := NewAnalyzer(NewValidator(StrictPolicy()))

	res := a.Analyze(domain.Fields{"event_type": "gala", "location": "home"}, false, domain.GenerationState{})

	assert.Equal(t, domain.StageCollectingBasics, res.Stage)
	assert.Equal(t, []string{"location", "guest_count", "budget", "meal_type", "dietary_restrictions"}, res.Missing)
	assert.Equal(t, 17, res.CompletionPercentage)
}

func TestAnalyze_StrictPolicyComplete(t *testing.T) {
	a := NewAnalyzer(NewValidator(StrictPolicy()))
	fields := domain.Fields{
		"event_type":           "corporate dinner",
		"location":             "Mombasa, Kenya",
		"guest_count":          "around 40",
		"budget":               "mid-range",
		"meal_type":            "dinner",
		"dietary_restrictions": "none",
	}

	res := a.Analyze(fields, false, domain.GenerationState{})

	assert.Equal(t, domain.StageAwaitingConfirmation, res.Stage)
	assert.Equal(t, 100, res.CompletionPercentage)
	assert.Empty(t, res.Missing)
}

func TestAnalyze_FirstCompletePassOnlyAwaitsConfirmation(t *testing.T) {
	res := flexibleAnalyzer().Analyze(completeFields(), false, domain.GenerationState{})

	assert.Equal(t, domain.StageAwaitingConfirmation, res.Stage)
	assert.True(t, res.AwaitingConfirmation)
	assert.False(t, res.ReadyToGenerate)
	assert.Equal(t, 100, res.CompletionPercentage)
	assert.True(t, res.Complete())
}

func TestAnalyze_ConfirmationWithoutPriorAwaitingIsNotReady(t *testing.T) {
	prior := domain.GenerationState{UserConfirmedGeneration: true}

	res := flexibleAnalyzer().Analyze(completeFields(), false, prior)

	assert.Equal(t, domain.StageAwaitingConfirmation, res.Stage)
	assert.False(t, res.ReadyToGenerate)
}

func TestAnalyze_SecondPassWithConfirmationIsReady(t *testing.T) {
	prior := domain.GenerationState{AwaitingConfirmation: true, UserConfirmedGeneration: true}

	res := flexibleAnalyzer().Analyze(completeFields(), false, prior)

	assert.Equal(t, domain.StageConfirmed, res.Stage)
	assert.True(t, res.ReadyToGenerate)
	assert.True(t, res.UserConfirmedGeneration)
}

func TestAnalyze_AwaitingWithoutConfirmationStaysAwaiting(t *testing.T) {
	prior := domain.GenerationState{AwaitingConfirmation: true}

	res := flexibleAnalyzer().Analyze(completeFields(), false, prior)

	assert.Equal(t, domain.StageAwaitingConfirmation, res.Stage)
	assert.True(t, res.AwaitingConfirmation)
	assert.False(t, res.ReadyToGenerate)
}

func TestAnalyze_GeneratedContentNeverReady(t *testing.T) {
	a := flexibleAnalyzer()
	prior := domain.GenerationState{AwaitingConfirmation: true, UserConfirmedGeneration: true, HasGenerated: true}

	res := a.Analyze(domain.Fields{}, true, prior)
	assert.Equal(t, domain.StageReviewingContent, res.Stage)
	assert.False(t, res.ReadyToGenerate)
	assert.Equal(t, 100, res.CompletionPercentage)
	assert.Empty(t, res.Missing)

	prior.AwaitingPdfConfirmation = true
	res = a.Analyze(completeFields(), true, prior)
	assert.Equal(t, domain.StageAwaitingPdfConfirmation, res.Stage)
	assert.False(t, res.ReadyToGenerate)
}

func TestAnalyze_DoesNotMutateInput(t *testing.T) {
	fields := domain.Fields{"event_type": "wedding", "guest_count": "50"}

	flexibleAnalyzer().Analyze(fields, false, domain.GenerationState{})

	assert.Equal(t, "50", fields["guest_count"])
}

func TestNextQuestion(t *testing.T) {
	field, q, ok := NextQuestion([]string{"guest_count", "location"})
	assert.True(t, ok)
	assert.Equal(t, "location", field)
	assert.Contains(t, q, "city")

	field, q, ok = NextQuestion([]string{"theme_colors"})
	assert.True(t, ok)
	assert.Equal(t, "theme_colors", field)
	assert.Contains(t, q, "theme colors")

	_, _, ok = NextQuestion(nil)
	assert.False(t, ok)
}
