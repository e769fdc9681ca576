package testutil

import (
	"fmt"
	"sync/atomic"
	"time"

	"github.com/alexanderramin/eventwise/internal/domain"
	"github.com/google/uuid"
)

var testItemCounter atomic.Int64

// ChatOption customizes a fixture chat.
type ChatOption func(*domain.Chat)

func WithTitle(title string) ChatOption {
	return func(c *domain.Chat) { c.Title = title }
}

func WithStage(s domain.Stage) ChatOption {
	return func(c *domain.Chat) { c.Stage = s }
}

func WithUpdatedAt(t time.Time) ChatOption {
	return func(c *domain.Chat) { c.UpdatedAt = t }
}

// NewTestChat returns an archived chat with a random id.
func NewTestChat(opts ...ChatOption) *domain.Chat {
	now := time.Now().UTC()
	c := &domain.Chat{
		ID:        uuid.NewString(),
		Title:     "Test chat",
		Stage:     domain.StageGreeting,
		CreatedAt: now,
		UpdatedAt: now,
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// NewTestItems returns n distinct items for category.
func NewTestItems(category domain.Category, n int) []domain.ContentItem {
	items := make([]domain.ContentItem, n)
	for i := range items {
		seq := testItemCounter.Add(1)
		items[i] = domain.ContentItem{
			ID:       fmt.Sprintf("%s_%d", category, seq),
			Category: category,
			Title:    fmt.Sprintf("%s item %d", category, seq),
			URL:      fmt.Sprintf("https://example.com/%s/%d", category, seq),
			Source:   "test",
		}
	}
	return items
}

// WeddingFields is a complete set of mandatory fields for a wedding.
func WeddingFields() map[string]any {
	return map[string]any{
		domain.FieldEventType:  "wedding",
		domain.FieldLocation:   "Diani Beach",
		domain.FieldGuestCount: "80",
	}
}
