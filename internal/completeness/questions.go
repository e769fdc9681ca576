package completeness

import (
	"strings"

	"github.com/alexanderramin/eventwise/internal/domain"
)

// questionOrder is the order the assistant asks about missing details.
var questionOrder = []string{
	domain.FieldEventType,
	domain.FieldLocation,
	domain.FieldGuestCount,
	domain.FieldBudget,
	domain.FieldMealType,
	domain.FieldDietaryRestrictions,
}

var questions = map[string]string{
	domain.FieldEventType:           "What kind of event are you planning? 🎊",
	domain.FieldLocation:            "Where will it take place? A city and country is perfect.",
	domain.FieldGuestCount:          "Roughly how many guests are you expecting? A range is fine.",
	domain.FieldBudget:              "Do you have a budget or style in mind (luxury, mid-range, budget-friendly)?",
	domain.FieldMealType:            "What kind of meal are you thinking: breakfast, brunch, lunch, dinner, cocktails, snacks or buffet?",
	domain.FieldDietaryRestrictions: "Any dietary restrictions I should plan around? \"None\" is a fine answer.",
}

// NextQuestion returns the field to ask about next and the question to ask.
// ok is false when nothing in missing has a known question.
func NextQuestion(missing []string) (field, question string, ok bool) {
	pending := make(map[string]bool, len(missing))
	for _, m := range missing {
		pending[m] = true
	}
	for _, f := range questionOrder {
		if pending[f] {
			return f, questions[f], true
		}
	}
	if len(missing) > 0 {
		m := missing[0]
		return m, "Could you tell me a bit more about the " + strings.ReplaceAll(m, "_", " ") + "?", true
	}
	return "", "", false
}
