package completeness

import (
	"fmt"
	"slices"
	"strings"

	"github.com/alexanderramin/eventwise/internal/domain"
)

// LocationRule selects how strictly a location value is judged.
type LocationRule int

const (
	// LocationFlexible accepts any general area of three or more characters.
	LocationFlexible LocationRule = iota
	// LocationStrict requires a specific place: five or more characters and
	// not a generic word like "home" or "venue".
	LocationStrict
)

// Policy is the set of mandatory fields plus per-field strictness used by
// both the validator and the analyzer.
type Policy struct {
	Name      string
	Mandatory []string
	Location  LocationRule
}

const (
	PolicyFlexible = "flexible"
	PolicyStrict   = "strict"
)

// FlexiblePolicy requires only what recommendations cannot do without:
// event type, a general location and a rough guest count.
func FlexiblePolicy() Policy {
	return Policy{
		Name:      PolicyFlexible,
		Mandatory: []string{domain.FieldEventType, domain.FieldLocation, domain.FieldGuestCount},
		Location:  LocationFlexible,
	}
}

// StrictPolicy additionally requires budget, meal type and dietary needs,
// and insists on a specific location.
func StrictPolicy() Policy {
	return Policy{
		Name: PolicyStrict,
		Mandatory: []string{
			domain.FieldEventType,
			domain.FieldLocation,
			domain.FieldGuestCount,
			domain.FieldBudget,
			domain.FieldMealType,
			domain.FieldDietaryRestrictions,
		},
		Location: LocationStrict,
	}
}

// PolicyByName resolves a configured policy name. Empty means flexible.
func PolicyByName(name string) (Policy, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", PolicyFlexible:
		return FlexiblePolicy(), nil
	case PolicyStrict:
		return StrictPolicy(), nil
	default:
		return Policy{}, fmt.Errorf("unknown completeness policy %q (expected %q or %q)", name, PolicyFlexible, PolicyStrict)
	}
}

// IsMandatory reports whether field is required by the policy.
func (p Policy) IsMandatory(field string) bool {
	return slices.Contains(p.Mandatory, field)
}
