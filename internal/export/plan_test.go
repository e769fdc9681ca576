package export

import (
	"testing"
	"time"

	"github.com/alexanderramin/eventwise/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func item(cat domain.Category, title, url string) domain.ContentItem {
	return domain.ContentItem{ID: title, Category: cat, Title: title, URL: url, Source: "test"}
}

func TestRenderPlan_RequiresRecommendations(t *testing.T) {
	snap := domain.Snapshot{
		SessionID: "s1",
		Fields:    domain.Fields{domain.FieldEventType: "wedding"},
		Content: map[domain.Category][]domain.ContentItem{
			domain.CategoryImages: {item(domain.CategoryImages, "img", "")},
		},
	}
	_, err := RenderPlan(snap, time.Now())
	assert.ErrorIs(t, err, ErrNoRecommendations, "images alone are not a plan")
}

func TestRenderPlan_DetailsAndSections(t *testing.T) {
	snap := domain.Snapshot{
		SessionID: "abc",
		Fields: domain.Fields{
			domain.FieldEventType:  "beach wedding",
			domain.FieldLocation:   "Diani Beach",
			domain.FieldGuestCount: float64(80),
			domain.FieldStyle:      "boho",
		},
		Content: map[domain.Category][]domain.ContentItem{
			domain.CategoryMusic:  {item(domain.CategoryMusic, "Sunset Jazz", "https://youtube.com/x")},
			domain.CategoryVenues: {item(domain.CategoryVenues, "Almanara", ""), item(domain.CategoryVenues, "Baobab", "")},
		},
	}

	plan, err := RenderPlan(snap, time.Date(2026, 3, 7, 12, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Equal(t, "event_plan_abc.md", plan.Filename)

	md := plan.Markdown
	assert.Contains(t, md, "# Beach Wedding Plan")
	assert.Contains(t, md, "_Generated March 7, 2026_")
	assert.Contains(t, md, "- **Location:** Diani Beach")
	assert.Contains(t, md, "- **Guests:** 80")
	assert.Contains(t, md, "- **Budget:** Not specified")
	assert.Contains(t, md, "- **Dietary restrictions:** None")
	assert.Contains(t, md, "- **Style:** boho")
	assert.Contains(t, md, "## Music")
	assert.Contains(t, md, "1. **Sunset Jazz**\n   https://youtube.com/x")
	assert.Contains(t, md, "2. **Baobab**")
	assert.NotContains(t, md, "## Food")
}

func TestFieldText(t *testing.T) {
	fields := domain.Fields{
		"list":  []any{"vegan", "halal"},
		"blank": "  ",
		"n":     42,
	}
	assert.Equal(t, "vegan, halal", fieldText(fields, "list", "x"))
	assert.Equal(t, "x", fieldText(fields, "blank", "x"))
	assert.Equal(t, "42", fieldText(fields, "n", "x"))
	assert.Equal(t, "x", fieldText(fields, "missing", "x"))
}
