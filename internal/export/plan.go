// Package export renders a session's collected details and generated
// recommendations for use outside the chat: the event plan document and the
// gallery view.
package export

import (
	"errors"
	"fmt"
	"strings"
	"text/template"
	"time"
	"unicode"

	"github.com/alexanderramin/eventwise/internal/domain"
)

// ErrNoRecommendations is returned when a session has no music, venue or
// food items to put in a plan.
var ErrNoRecommendations = errors.New("no recommendations generated yet")

const notSpecified = "Not specified"

// planCategories are the categories a plan lists; images only feed the gallery.
var planCategories = []domain.Category{domain.CategoryMusic, domain.CategoryVenues, domain.CategoryFood}

// Plan is a rendered event plan document.
type Plan struct {
	Filename string
	Markdown string
}

type planDetail struct {
	Label string
	Value string
}

type planSection struct {
	Heading string
	Items   []domain.ContentItem
}

type planView struct {
	Title     string
	Generated string
	Details   []planDetail
	Sections  []planSection
}

var planTemplate = template.Must(template.New("plan").
	Funcs(template.FuncMap{"inc": func(i int) int { return i + 1 }}).
	Parse(`# {{.Title}}

_Generated {{.Generated}}_

## Event details

{{range .Details}}- **{{.Label}}:** {{.Value}}
{{end}}{{range .Sections}}
## {{.Heading}}

{{range $i, $it := .Items}}{{inc $i}}. **{{$it.Title}}**{{if $it.Description}}: {{$it.Description}}{{end}}{{if $it.URL}}
   {{$it.URL}}{{end}}
{{end}}{{end}}`))

// RenderPlan builds the Markdown plan for snap. Details the user never gave
// read "Not specified"; dietary restrictions default to "None".
func RenderPlan(snap domain.Snapshot, now time.Time) (*Plan, error) {
	total := 0
	for _, c := range planCategories {
		total += len(snap.Content[c])
	}
	if total == 0 {
		return nil, ErrNoRecommendations
	}

	eventType := fieldText(snap.Fields, domain.FieldEventType, "Event")
	view := planView{
		Title:     titleCase(eventType) + " Plan",
		Generated: now.UTC().Format("January 2, 2006"),
		Details: []planDetail{
			{"Event type", eventType},
			{"Location", fieldText(snap.Fields, domain.FieldLocation, notSpecified)},
			{"Guests", fieldText(snap.Fields, domain.FieldGuestCount, notSpecified)},
			{"Date", fieldText(snap.Fields, domain.FieldDate, notSpecified)},
			{"Budget", fieldText(snap.Fields, domain.FieldBudget, notSpecified)},
			{"Meal", fieldText(snap.Fields, domain.FieldMealType, notSpecified)},
			{"Dietary restrictions", fieldText(snap.Fields, domain.FieldDietaryRestrictions, "None")},
		},
	}
	if style := fieldText(snap.Fields, domain.FieldStyle, ""); style != "" {
		view.Details = append(view.Details, planDetail{"Style", style})
	}
	headings := map[domain.Category]string{
		domain.CategoryMusic:  "Music",
		domain.CategoryVenues: "Venues",
		domain.CategoryFood:   "Food & catering",
	}
	for _, c := range planCategories {
		if items := snap.Content[c]; len(items) > 0 {
			view.Sections = append(view.Sections, planSection{Heading: headings[c], Items: items})
		}
	}

	var b strings.Builder
	if err := planTemplate.Execute(&b, view); err != nil {
		return nil, fmt.Errorf("rendering plan: %w", err)
	}
	return &Plan{
		Filename: fmt.Sprintf("event_plan_%s.md", snap.SessionID),
		Markdown: b.String(),
	}, nil
}

func fieldText(fields domain.Fields, key, fallback string) string {
	v, ok := fields[key]
	if !ok || domain.IsEmptyValue(v) {
		return fallback
	}
	switch t := v.(type) {
	case []any:
		parts := make([]string, 0, len(t))
		for _, p := range t {
			parts = append(parts, fmt.Sprint(p))
		}
		return strings.Join(parts, ", ")
	case []string:
		return strings.Join(t, ", ")
	case float64:
		if t == float64(int64(t)) {
			return fmt.Sprintf("%d", int64(t))
		}
	}
	return strings.TrimSpace(fmt.Sprint(v))
}

func titleCase(s string) string {
	words := strings.Fields(s)
	for i, w := range words {
		r := []rune(w)
		r[0] = unicode.ToUpper(r[0])
		words[i] = string(r)
	}
	return strings.Join(words, " ")
}
