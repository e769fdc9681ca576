package export

import (
	"context"
	"log/slog"

	"github.com/alexanderramin/eventwise/internal/domain"
	"github.com/alexanderramin/eventwise/internal/generation"
)

// Per-category caps for the generated gallery mix.
const (
	galleryImages = 8
	galleryOthers = 4
	stockCount    = 12
)

// Gallery sources.
const (
	SourceGenerated = "generated"
	SourceStock     = "stock"
	SourceNone      = "none"
)

// PhotoSource searches stock photography.
type PhotoSource interface {
	Search(ctx context.Context, query string, count int) ([]domain.ContentItem, error)
	SearchStyle(ctx context.Context, style string, count int) ([]domain.ContentItem, error)
}

// GalleryView is what a gallery request returns.
type GalleryView struct {
	Items   []domain.ContentItem `json:"images"`
	Source  string               `json:"source"`
	Style   string               `json:"style,omitempty"`
	Message string               `json:"message,omitempty"`
}

// Gallery assembles generated content for display, falling back to stock
// photos when a session has nothing yet.
type Gallery struct {
	photos PhotoSource
	logger *slog.Logger
}

// NewGallery returns a gallery. photos may be nil.
func NewGallery(photos PhotoSource, logger *slog.Logger) *Gallery {
	if logger == nil {
		logger = slog.Default()
	}
	return &Gallery{photos: photos, logger: logger}
}

// Mix returns up to 8 images followed by up to 4 each of music, venues and food.
func Mix(content map[domain.Category][]domain.ContentItem) []domain.ContentItem {
	out := make([]domain.ContentItem, 0, galleryImages+3*galleryOthers)
	out = append(out, head(content[domain.CategoryImages], galleryImages)...)
	for _, c := range []domain.Category{domain.CategoryMusic, domain.CategoryVenues, domain.CategoryFood} {
		out = append(out, head(content[c], galleryOthers)...)
	}
	return out
}

// Images returns the generated mix for content, or the stock gallery when
// content is empty.
func (g *Gallery) Images(ctx context.Context, content map[domain.Category][]domain.ContentItem) GalleryView {
	if mix := Mix(content); len(mix) > 0 {
		return GalleryView{Items: mix, Source: SourceGenerated}
	}
	if g.photos != nil {
		items, err := g.photos.Search(ctx, generation.DefaultGalleryQuery, stockCount)
		if err != nil {
			g.logger.WarnContext(ctx, "stock gallery failed", "error", err)
		} else if len(items) > 0 {
			return GalleryView{Items: items, Source: SourceStock}
		}
	}
	return GalleryView{Items: []domain.ContentItem{}, Source: SourceNone, Message: "Gallery services unavailable"}
}

// Style searches stock photos for a visual style.
func (g *Gallery) Style(ctx context.Context, style string, count int) GalleryView {
	if count <= 0 {
		count = stockCount
	}
	view := GalleryView{Items: []domain.ContentItem{}, Source: SourceNone, Style: style}
	if g.photos == nil {
		view.Message = "Gallery services unavailable"
		return view
	}
	items, err := g.photos.SearchStyle(ctx, style, count)
	if err != nil {
		g.logger.WarnContext(ctx, "style search failed", "style", style, "error", err)
		view.Message = "Gallery services unavailable"
		return view
	}
	view.Items = items
	view.Source = SourceStock
	return view
}

func head(items []domain.ContentItem, n int) []domain.ContentItem {
	if len(items) > n {
		return items[:n]
	}
	return items
}

var _ PhotoSource = (*generation.PhotoSearch)(nil)
