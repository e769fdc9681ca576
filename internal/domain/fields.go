package domain

import (
	"fmt"
	"maps"
	"strings"
)

// Field names the assistant knows how to ask about.
const (
	FieldEventType           = "event_type"
	FieldLocation            = "location"
	FieldGuestCount          = "guest_count"
	FieldBudget              = "budget"
	FieldMealType            = "meal_type"
	FieldDietaryRestrictions = "dietary_restrictions"
	FieldDate                = "date"
	FieldStyle               = "style"
)

// Fields is the open-ended map of facts extracted from a conversation.
// A key is present only once it has held a non-empty value.
type Fields map[string]any

// Clone returns a shallow copy; values are immutable scalars or lists.
func (f Fields) Clone() Fields {
	if f == nil {
		return Fields{}
	}
	return maps.Clone(f)
}

// String returns the field rendered as text, or "" when absent or empty.
func (f Fields) String(key string) string {
	v, ok := f[key]
	if !ok || IsEmptyValue(v) {
		return ""
	}
	switch t := v.(type) {
	case string:
		return strings.TrimSpace(t)
	case []any:
		return joinList(t)
	case []string:
		return strings.Join(t, ", ")
	case float64:
		if t == float64(int64(t)) {
			return fmt.Sprintf("%d", int64(t))
		}
		return fmt.Sprintf("%g", t)
	default:
		return fmt.Sprint(t)
	}
}

// IsEmptyValue reports whether v counts as "no information": nil, the literal
// string "null", a whitespace-only string, or an empty list.
func IsEmptyValue(v any) bool {
	switch t := v.(type) {
	case nil:
		return true
	case string:
		s := strings.TrimSpace(t)
		return s == "" || strings.EqualFold(s, "null")
	case []any:
		return len(t) == 0
	case []string:
		return len(t) == 0
	default:
		return false
	}
}

func joinList(items []any) string {
	parts := make([]string, 0, len(items))
	for _, it := range items {
		if s := strings.TrimSpace(fmt.Sprint(it)); s != "" {
			parts = append(parts, s)
		}
	}
	return strings.Join(parts, ", ")
}
