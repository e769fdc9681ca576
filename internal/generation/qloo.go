package generation

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"slices"
	"strconv"
	"strings"

	"github.com/alexanderramin/eventwise/internal/domain"
)

const placeEntityType = "urn:entity:place"

// QlooConfig holds credentials for the Qloo search API.
type QlooConfig struct {
	Endpoint string
	APIKey   string
	Limit    int
}

type qlooSearchResponse struct {
	Results []qlooEntity `json:"results"`
}

type qlooEntity struct {
	EntityID   string   `json:"entity_id"`
	Name       string   `json:"name"`
	Types      []string `json:"types"`
	Popularity float64  `json:"popularity"`
	Properties struct {
		Address        string  `json:"address"`
		Website        string  `json:"website"`
		Phone          string  `json:"phone"`
		BusinessRating float64 `json:"business_rating"`
		PriceLevel     int     `json:"price_level"`
		IsClosed       bool    `json:"is_closed"`
		Image          struct {
			URL string `json:"url"`
		} `json:"image"`
	} `json:"properties"`
	Tags []struct {
		Name string `json:"name"`
		Type string `json:"type"`
	} `json:"tags"`
}

func (e qlooEntity) isPlace() bool {
	return slices.ContainsFunc(e.Types, func(t string) bool { return strings.Contains(t, placeEntityType) })
}

func (e qlooEntity) tagNames() []string {
	names := make([]string, 0, len(e.Tags))
	for _, t := range e.Tags {
		names = append(names, strings.ToLower(t.Name))
	}
	return names
}

// qlooSearcher runs several queries against /search and keeps the unique
// place entities accepted by keep.
type qlooSearcher struct {
	cfg    QlooConfig
	client *apiClient
}

func newQlooSearcher(cfg QlooConfig) qlooSearcher {
	if cfg.Limit <= 0 {
		cfg.Limit = 4
	}
	return qlooSearcher{
		cfg:    cfg,
		client: newAPIClient(strings.TrimSuffix(cfg.Endpoint, "/"), map[string]string{"X-Api-Key": cfg.APIKey}),
	}
}

func (s qlooSearcher) search(ctx context.Context, queries []string, keep func(qlooEntity) bool) ([]qlooEntity, error) {
	if s.cfg.Endpoint == "" || s.cfg.APIKey == "" {
		return nil, ErrNotConfigured
	}

	seen := map[string]bool{}
	var (
		out     []qlooEntity
		lastErr error
	)
	for _, q := range queries {
		if len(out) >= s.cfg.Limit {
			break
		}
		var resp qlooSearchResponse
		err := s.client.do(ctx, requestOption{
			method: http.MethodGet,
			path:   "/search",
			query:  url.Values{"query": {q}, "limit": {strconv.Itoa(s.cfg.Limit * 2)}},
		}, &resp)
		if err != nil {
			lastErr = err
			if ctx.Err() != nil {
				break
			}
			continue
		}
		for _, e := range resp.Results {
			if e.EntityID == "" || seen[e.EntityID] || !e.isPlace() || !keep(e) {
				continue
			}
			seen[e.EntityID] = true
			out = append(out, e)
		}
	}
	if len(out) == 0 && lastErr != nil {
		return nil, fmt.Errorf("qloo search failed: %w", lastErr)
	}
	if len(out) > s.cfg.Limit {
		out = out[:s.cfg.Limit]
	}
	return out, nil
}

func placeItem(e qlooEntity, category domain.Category, fallbackLocation string) domain.ContentItem {
	loc := domain.Coalesce(e.Properties.Address, fallbackLocation)
	return domain.ContentItem{
		ID:           fmt.Sprintf("qloo_%s_%s", category, e.EntityID),
		Category:     category,
		Title:        e.Name,
		Description:  loc,
		URL:          e.Properties.Website,
		ThumbnailURL: e.Properties.Image.URL,
		Source:       "qloo",
		Metadata: map[string]any{
			"address":     e.Properties.Address,
			"phone":       e.Properties.Phone,
			"rating":      e.Properties.BusinessRating,
			"price_level": e.Properties.PriceLevel,
			"is_open":     !e.Properties.IsClosed,
			"popularity":  e.Popularity,
		},
	}
}

// VenueRecommender finds event venues near the event location.
type VenueRecommender struct {
	searcher qlooSearcher
}

func NewVenueRecommender(cfg QlooConfig) *VenueRecommender {
	return &VenueRecommender{searcher: newQlooSearcher(cfg)}
}

func (r *VenueRecommender) Category() domain.Category { return domain.CategoryVenues }

func (r *VenueRecommender) Generate(ctx context.Context, ec EventContext) ([]domain.ContentItem, error) {
	entities, err := r.searcher.search(ctx, VenueQueries(ec), func(qlooEntity) bool { return true })
	if err != nil {
		return nil, err
	}
	items := make([]domain.ContentItem, 0, len(entities))
	for _, e := range entities {
		items = append(items, placeItem(e, domain.CategoryVenues, ec.Location))
	}
	return items, nil
}

var foodKeywords = []string{
	"food", "restaurant", "cuisine", "catering", "dining", "cafe", "bakery",
	"kitchen", "buffet", "grill", "bbq", "chef", "meal", "lunch", "dinner", "breakfast",
}

// FoodRecommender finds caterers and restaurants suited to the event.
type FoodRecommender struct {
	searcher qlooSearcher
}

func NewFoodRecommender(cfg QlooConfig) *FoodRecommender {
	return &FoodRecommender{searcher: newQlooSearcher(cfg)}
}

func (r *FoodRecommender) Category() domain.Category { return domain.CategoryFood }

func (r *FoodRecommender) Generate(ctx context.Context, ec EventContext) ([]domain.ContentItem, error) {
	entities, err := r.searcher.search(ctx, FoodQueries(ec), isFoodPlace)
	if err != nil {
		return nil, err
	}
	items := make([]domain.ContentItem, 0, len(entities))
	for _, e := range entities {
		item := placeItem(e, domain.CategoryFood, ec.Location)
		if ec.Dietary != "" {
			item.Metadata["dietary_restrictions"] = ec.Dietary
		}
		items = append(items, item)
	}
	return items, nil
}

func isFoodPlace(e qlooEntity) bool {
	name := strings.ToLower(e.Name)
	tags := e.tagNames()
	for _, kw := range foodKeywords {
		if strings.Contains(name, kw) {
			return true
		}
		for _, t := range tags {
			if strings.Contains(t, kw) {
				return true
			}
		}
	}
	return false
}
