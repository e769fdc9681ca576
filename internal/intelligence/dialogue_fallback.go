package intelligence

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/alexanderramin/eventwise/internal/domain"
)

// eventKeywords maps phrases to the event type they name. Longer phrases
// come first so "birthday party" wins over "party".
var eventKeywords = []struct {
	phrase    string
	eventType string
}{
	{"baby shower", "baby shower"},
	{"bridal shower", "bridal shower"},
	{"birthday party", "birthday party"},
	{"dinner party", "dinner party"},
	{"corporate event", "corporate event"},
	{"team building", "corporate event"},
	{"graduation", "graduation party"},
	{"anniversary", "anniversary"},
	{"engagement", "engagement party"},
	{"wedding", "wedding"},
	{"birthday", "birthday party"},
	{"conference", "conference"},
	{"retreat", "retreat"},
	{"reunion", "reunion"},
	{"gala", "gala"},
	{"picnic", "picnic"},
	{"festival", "festival"},
	{"party", "party"},
}

var (
	guestCountRe = regexp.MustCompile(`(?i)\b(\d{1,6})\s*\+?\s*(?:guests?|people|persons|attendees|pax|adults)\b`)
	locationRe   = regexp.MustCompile(`\b(?:in|at|In|At)\s+(\p{Lu}[\p{L}'.-]*(?:,?\s+\p{Lu}[\p{L}'.-]*)*)`)
	budgetRe     = regexp.MustCompile(`(?i)(?:[$€£]\s?\d[\d,]*(?:\.\d+)?\s*k?\b|\b\d[\d,]*(?:\.\d+)?\s*k?\s*(?:usd|kes|eur|gbp|dollars|shillings|euros|pounds)\b)`)
	pdfRe        = regexp.MustCompile(`(?i)\b(?:pdf|plan document|event plan)\b`)
)

// DeterministicDialogue answers a turn without the model by pattern
// matching the message for an event type, a guest count, a location and a
// budget. It returns nil when there is nothing to go on: a fresh
// conversation with no recognizable facts. The reply's Message only
// acknowledges what was noted; the turn orchestrator adds the next question.
func DeterministicDialogue(req DialogueRequest) *DialogueReply {
	reply := &DialogueReply{
		Suggestions:   ExtractFields(req.Message),
		Deterministic: true,
	}

	if req.HasGeneratedContent {
		if pdfRe.MatchString(req.Message) {
			reply.ActionRequested = ActionGeneratePDF
		}
		reply.Message = ReviewHintMessage
		return reply
	}

	if len(reply.Suggestions) == 0 && len(req.KnownFields) == 0 {
		return nil
	}
	reply.Message = notedMessage(reply.Suggestions)
	return reply
}

// ExtractFields pulls the event facts a plain sentence usually carries.
func ExtractFields(msg string) map[string]any {
	out := map[string]any{}
	lower := strings.ToLower(msg)

	for _, kw := range eventKeywords {
		if strings.Contains(lower, kw.phrase) {
			out[domain.FieldEventType] = kw.eventType
			break
		}
	}
	if m := guestCountRe.FindStringSubmatch(msg); m != nil {
		if n, err := strconv.Atoi(m[1]); err == nil && n > 0 {
			out[domain.FieldGuestCount] = n
		}
	}
	if m := locationRe.FindStringSubmatch(msg); m != nil {
		out[domain.FieldLocation] = strings.TrimRight(m[1], ".,")
	}
	if m := budgetRe.FindString(msg); m != "" {
		out[domain.FieldBudget] = strings.TrimSpace(m)
	}
	return out
}

func notedMessage(s map[string]any) string {
	var parts []string
	if v, ok := s[domain.FieldEventType]; ok {
		parts = append(parts, withArticle(fmt.Sprint(v)))
	}
	if v, ok := s[domain.FieldGuestCount]; ok {
		parts = append(parts, fmt.Sprintf("%v guests", v))
	}
	if v, ok := s[domain.FieldLocation]; ok {
		parts = append(parts, fmt.Sprintf("%v", v))
	}
	if v, ok := s[domain.FieldBudget]; ok {
		parts = append(parts, fmt.Sprintf("a budget of %v", v))
	}
	if len(parts) == 0 {
		return "Got it."
	}
	return "Got it: " + joinHuman(parts) + "."
}

func withArticle(noun string) string {
	if noun != "" && strings.ContainsRune("aeiou", rune(noun[0])) {
		return "an " + noun
	}
	return "a " + noun
}
