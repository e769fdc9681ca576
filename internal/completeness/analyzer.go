package completeness

import (
	"math"

	"github.com/alexanderramin/eventwise/internal/domain"
)

// Analysis is the analyzer's authoritative view of a session after a turn.
type Analysis struct {
	Missing                 []string
	Stage                   domain.Stage
	AwaitingConfirmation    bool
	UserConfirmedGeneration bool
	ReadyToGenerate         bool
	CompletionPercentage    int
}

// Complete reports whether every mandatory field is valid.
func (a Analysis) Complete() bool {
	return len(a.Missing) == 0
}

// Analyzer derives the conversation stage and readiness from merged fields
// and the session's prior generation state. It never calls out and never
// mutates its inputs.
type Analyzer struct {
	validator *Validator
}

func NewAnalyzer(v *Validator) *Analyzer {
	return &Analyzer{validator: v}
}

// Validator exposes the validator the analyzer judges fields with.
func (a *Analyzer) Validator() *Validator {
	return a.validator
}

// Analyze resolves the stage. Readiness requires two passes: the first
// complete analysis only raises AwaitingConfirmation; readiness flips once a
// later turn supplies UserConfirmedGeneration while that flag is still set.
func (a *Analyzer) Analyze(fields domain.Fields, hasGenerated bool, prior domain.GenerationState) Analysis {
	policy := a.validator.Policy()

	if hasGenerated {
		stage := domain.StageReviewingContent
		if prior.AwaitingPdfConfirmation {
			stage = domain.StageAwaitingPdfConfirmation
		}
		return Analysis{
			Missing:              []string{},
			Stage:                stage,
			CompletionPercentage: 100,
		}
	}

	missing := a.Missing(fields)
	res := Analysis{
		Missing:              missing,
		CompletionPercentage: percentage(len(policy.Mandatory), len(missing)),
	}

	switch {
	case !a.validator.IsValid(domain.FieldEventType, fields[domain.FieldEventType]):
		res.Stage = domain.StageGreeting
	case len(missing) > 3:
		res.Stage = domain.StageCollectingBasics
	case len(missing) > 0:
		res.Stage = domain.StageCollectingDetails
	case prior.AwaitingConfirmation && prior.UserConfirmedGeneration:
		res.Stage = domain.StageConfirmed
		res.AwaitingConfirmation = true
		res.UserConfirmedGeneration = true
		res.ReadyToGenerate = true
	default:
		res.Stage = domain.StageAwaitingConfirmation
		res.AwaitingConfirmation = true
	}
	return res
}

// Missing returns the policy's mandatory fields that are absent or invalid,
// in policy order.
func (a *Analyzer) Missing(fields domain.Fields) []string {
	missing := []string{}
	for _, f := range a.validator.Policy().Mandatory {
		if !a.validator.IsValid(f, fields[f]) {
			missing = append(missing, f)
		}
	}
	return missing
}

func percentage(total, missing int) int {
	if total == 0 {
		return 100
	}
	return int(math.Round(100 * float64(total-missing) / float64(total)))
}
