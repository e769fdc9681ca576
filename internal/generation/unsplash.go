package generation

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"github.com/alexanderramin/eventwise/internal/domain"
)

// DefaultGalleryQuery is the stock-photo query used before anything is generated.
const DefaultGalleryQuery = "event party celebration"

// UnsplashConfig holds the Unsplash access key.
type UnsplashConfig struct {
	Endpoint  string
	AccessKey string
}

// PhotoSearch fetches stock photos for the startup gallery and style search.
// A missing key yields an empty result, not an error.
type PhotoSearch struct {
	cfg    UnsplashConfig
	client *apiClient
}

func NewPhotoSearch(cfg UnsplashConfig) *PhotoSearch {
	if cfg.Endpoint == "" {
		cfg.Endpoint = "https://api.unsplash.com"
	}
	return &PhotoSearch{
		cfg:    cfg,
		client: newAPIClient(cfg.Endpoint, map[string]string{"Authorization": "Client-ID " + cfg.AccessKey}),
	}
}

type unsplashSearchResponse struct {
	Results []struct {
		ID             string `json:"id"`
		Description    string `json:"description"`
		AltDescription string `json:"alt_description"`
		URLs           struct {
			Regular string `json:"regular"`
			Small   string `json:"small"`
			Thumb   string `json:"thumb"`
		} `json:"urls"`
		User struct {
			Name string `json:"name"`
		} `json:"user"`
		Width  int `json:"width"`
		Height int `json:"height"`
	} `json:"results"`
}

// Search returns up to count photos for query.
func (p *PhotoSearch) Search(ctx context.Context, query string, count int) ([]domain.ContentItem, error) {
	if p.cfg.AccessKey == "" {
		return []domain.ContentItem{}, nil
	}
	if query == "" {
		query = DefaultGalleryQuery
	}
	if count <= 0 {
		count = 12
	}

	var resp unsplashSearchResponse
	err := p.client.do(ctx, requestOption{
		method: http.MethodGet,
		path:   "/search/photos",
		query:  url.Values{"query": {query}, "per_page": {strconv.Itoa(count)}, "order_by": {"relevant"}},
	}, &resp)
	if err != nil {
		return nil, err
	}

	items := make([]domain.ContentItem, 0, len(resp.Results))
	for _, r := range resp.Results {
		items = append(items, domain.ContentItem{
			ID:           "unsplash_" + r.ID,
			Category:     domain.CategoryImages,
			Title:        domain.Coalesce(r.AltDescription, r.Description, query),
			URL:          r.URLs.Regular,
			ThumbnailURL: r.URLs.Thumb,
			Source:       "unsplash",
			Metadata:     map[string]any{"photographer": r.User.Name, "width": r.Width, "height": r.Height},
		})
	}
	return items, nil
}

// SearchStyle runs Search with the query mapped from a style name.
func (p *PhotoSearch) SearchStyle(ctx context.Context, style string, count int) ([]domain.ContentItem, error) {
	return p.Search(ctx, StyleQuery(style), count)
}
