package completeness

import (
	"fmt"
	"math"
	"slices"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/alexanderramin/eventwise/internal/domain"
)

var (
	placeholders     = []string{"unspecified", "not specified", "tbd"}
	eventPlaceholder = []string{"unspecified", "not specified", "tbd", "unknown", "event"}
	genericPlaces    = []string{"home", "house", "outdoor", "indoor", "venue", "backyard", "office"}
	mealTypes        = []string{"breakfast", "lunch", "dinner", "cocktails", "snacks", "brunch", "buffet"}
	noRestrictions   = []string{"none", "no", "no restrictions"}
	approxMarkers    = []string{"around", "about", "roughly", "approximately"}
)

// Result is the outcome of validating one field value.
type Result struct {
	Valid bool
	// Value is the normalized value to store. A pure-digit guest count
	// becomes an int; everything else passes through unchanged.
	Value  any
	Reason string
}

// Validator judges whether an extracted value is specific enough to use.
// It is pure and safe for concurrent use.
type Validator struct {
	policy Policy
}

// NewValidator returns a validator bound to policy.
func NewValidator(policy Policy) *Validator {
	return &Validator{policy: policy}
}

// Policy returns the policy the validator was built with.
func (v *Validator) Policy() Policy {
	return v.policy
}

// IsValid reports whether value is acceptable for field.
func (v *Validator) IsValid(field string, value any) bool {
	return v.Validate(field, value).Valid
}

// Validate checks value against the rule for field.
func (v *Validator) Validate(field string, value any) Result {
	if domain.IsEmptyValue(value) {
		return Result{Value: value, Reason: "missing"}
	}
	switch field {
	case domain.FieldGuestCount:
		return validateGuestCount(value)
	case domain.FieldLocation:
		return validateLocation(value, v.policy.Location)
	case domain.FieldEventType:
		return textRule(value, 3, eventPlaceholder)
	case domain.FieldMealType:
		return validateMealType(value)
	case domain.FieldDietaryRestrictions:
		return validateDietary(value)
	default:
		return textRule(value, 2, placeholders)
	}
}

// Normalize validates each entry and returns a copy where valid values are
// replaced by their normalized form. Invalid values are kept as given.
func (v *Validator) Normalize(fields map[string]any) map[string]any {
	out := make(map[string]any, len(fields))
	for k, val := range fields {
		res := v.Validate(k, val)
		if res.Valid {
			out[k] = res.Value
		} else {
			out[k] = val
		}
	}
	return out
}

// maxExactFloatInt bounds the integers a float64 represents exactly.
const maxExactFloatInt = 1 << 53

func validateGuestCount(value any) Result {
	switch n := value.(type) {
	case int:
		return numeric(n, float64(n))
	case int64:
		return numeric(int(n), float64(n))
	case float64:
		if math.IsNaN(n) || math.IsInf(n, 0) {
			return Result{Value: value, Reason: "not a number"}
		}
		// Only integral floats that fit an int exactly are coerced.
		if n == math.Trunc(n) && math.Abs(n) <= maxExactFloatInt {
			return numeric(int(n), n)
		}
		return numeric(n, n)
	case string:
		s := strings.ToLower(strings.TrimSpace(n))
		if isAllDigits(s) {
			if count, err := strconv.Atoi(s); err == nil {
				return numeric(count, float64(count))
			}
			// Too large for an int; the digit rule below still applies.
		}
		for _, m := range approxMarkers {
			if strings.Contains(s, m) {
				return Result{Valid: true, Value: value}
			}
		}
		if strings.Contains(s, "-") || slices.Contains(strings.Fields(s), "to") {
			return Result{Valid: true, Value: value}
		}
		if strings.ContainsFunc(s, unicode.IsDigit) {
			return Result{Valid: true, Value: value}
		}
		return Result{Value: value, Reason: "no count given"}
	default:
		return Result{Value: value, Reason: fmt.Sprintf("unsupported type %T", value)}
	}
}

func numeric(normalized any, f float64) Result {
	if f <= 0 {
		return Result{Value: normalized, Reason: "must be positive"}
	}
	return Result{Valid: true, Value: normalized}
}

func validateLocation(value any, rule LocationRule) Result {
	if rule == LocationStrict {
		res := textRule(value, 5, placeholders)
		if res.Valid && slices.Contains(genericPlaces, strings.ToLower(strings.TrimSpace(asText(value)))) {
			return Result{Value: value, Reason: "need a specific city or country"}
		}
		return res
	}
	return textRule(value, 3, placeholders)
}

func validateMealType(value any) Result {
	s, ok := value.(string)
	if !ok {
		return Result{Value: value, Reason: "must be a single meal type"}
	}
	s = strings.ToLower(strings.TrimSpace(s))
	if strings.ContainsAny(s, "/,") || strings.Contains(s, " or ") {
		return Result{Value: value, Reason: "multiple meal types"}
	}
	if !slices.Contains(mealTypes, s) {
		return Result{Value: value, Reason: "unknown meal type"}
	}
	return Result{Valid: true, Value: value}
}

func validateDietary(value any) Result {
	switch t := value.(type) {
	case []any, []string:
		// IsEmptyValue already rejected empty lists.
		return Result{Valid: true, Value: value}
	case string:
		if slices.Contains(noRestrictions, strings.ToLower(strings.TrimSpace(t))) {
			return Result{Valid: true, Value: value}
		}
	}
	return textRule(value, 3, placeholders)
}

// textRule accepts a string of at least minLen runes that is not one of the
// rejected placeholder words.
func textRule(value any, minLen int, rejected []string) Result {
	s, ok := value.(string)
	if !ok {
		return Result{Value: value, Reason: fmt.Sprintf("expected text, got %T", value)}
	}
	s = strings.TrimSpace(s)
	if utf8.RuneCountInString(s) < minLen {
		return Result{Value: value, Reason: "too short"}
	}
	if slices.Contains(rejected, strings.ToLower(s)) {
		return Result{Value: value, Reason: "placeholder"}
	}
	return Result{Valid: true, Value: value}
}

func asText(v any) string {
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprint(v)
}

func isAllDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
