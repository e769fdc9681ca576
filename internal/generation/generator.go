package generation

import (
	"context"
	"errors"
	"strconv"
	"strings"

	"github.com/alexanderramin/eventwise/internal/domain"
)

var (
	// ErrNotConfigured is returned by a generator that has no credentials.
	ErrNotConfigured = errors.New("generator not configured")

	// ErrUpstream indicates a non-2xx answer from an external API.
	ErrUpstream = errors.New("upstream service error")
)

// EventContext is the subset of session fields generators work from.
type EventContext struct {
	EventType  string
	Location   string
	GuestCount int
	Budget     string
	MealType   string
	Dietary    string
	Date       string
	Style      string
}

// NewEventContext reads an EventContext out of merged session fields.
// Guest counts given as ranges or approximations use their first number.
func NewEventContext(fields domain.Fields) EventContext {
	return EventContext{
		EventType:  domain.Coalesce(fields.String(domain.FieldEventType), "party"),
		Location:   fields.String(domain.FieldLocation),
		GuestCount: firstNumber(fields.String(domain.FieldGuestCount)),
		Budget:     fields.String(domain.FieldBudget),
		MealType:   fields.String(domain.FieldMealType),
		Dietary:    fields.String(domain.FieldDietaryRestrictions),
		Date:       fields.String(domain.FieldDate),
		Style:      fields.String(domain.FieldStyle),
	}
}

// Generator produces recommendations for one content category.
type Generator interface {
	Category() domain.Category
	Generate(ctx context.Context, ec EventContext) ([]domain.ContentItem, error)
}

func firstNumber(s string) int {
	start := strings.IndexAny(s, "0123456789")
	if start < 0 {
		return 0
	}
	end := start
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	n, err := strconv.Atoi(s[start:end])
	if err != nil {
		return 0
	}
	return n
}
