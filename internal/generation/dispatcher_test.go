package generation

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alexanderramin/eventwise/internal/domain"
	"github.com/stretchr/testify/assert"
)

type stubGenerator struct {
	category domain.Category
	items    []domain.ContentItem
	err      error
	delay    time.Duration
}

func (g stubGenerator) Category() domain.Category { return g.category }

func (g stubGenerator) Generate(ctx context.Context, _ EventContext) ([]domain.ContentItem, error) {
	if g.delay > 0 {
		select {
		case <-time.After(g.delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	return g.items, g.err
}

func items(c domain.Category, n int) []domain.ContentItem {
	out := make([]domain.ContentItem, n)
	for i := range out {
		out[i] = domain.ContentItem{Category: c, Title: string(c)}
	}
	return out
}

func TestDispatcher_KeepsPartialResults(t *testing.T) {
	d := NewDispatcher(time.Second, nil,
		stubGenerator{category: domain.CategoryImages, items: items(domain.CategoryImages, 3)},
		stubGenerator{category: domain.CategoryMusic, err: errors.New("quota")},
		stubGenerator{category: domain.CategoryVenues, items: items(domain.CategoryVenues, 2)},
		stubGenerator{category: domain.CategoryFood, items: []domain.ContentItem{}},
	)

	report := d.Run(context.Background(), weddingContext())

	assert.Equal(t, 5, report.Total())
	assert.Equal(t, map[domain.Category]int{
		domain.CategoryImages: 3,
		domain.CategoryVenues: 2,
		domain.CategoryFood:   0,
	}, report.Counts())
	assert.Equal(t, []domain.Category{domain.CategoryMusic}, report.FailedCategories())
}

func TestDispatcher_TimeoutIsPerGenerator(t *testing.T) {
	d := NewDispatcher(50*time.Millisecond, nil,
		stubGenerator{category: domain.CategoryImages, delay: 5 * time.Second},
		stubGenerator{category: domain.CategoryMusic, items: items(domain.CategoryMusic, 1)},
	)

	start := time.Now()
	report := d.Run(context.Background(), weddingContext())

	assert.Less(t, time.Since(start), 2*time.Second)
	assert.ErrorIs(t, report.Failed[domain.CategoryImages], context.DeadlineExceeded)
	assert.Len(t, report.Items[domain.CategoryMusic], 1)
}

func TestDispatcher_Categories(t *testing.T) {
	d := NewDispatcher(0, nil,
		stubGenerator{category: domain.CategoryVenues},
		stubGenerator{category: domain.CategoryFood},
	)
	assert.Equal(t, []domain.Category{domain.CategoryVenues, domain.CategoryFood}, d.Categories())
}
