package generation

import (
	"context"
	"errors"
	"fmt"

	"github.com/alexanderramin/eventwise/internal/domain"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
	"google.golang.org/api/youtube/v3"
)

// YouTubeConfig holds the YouTube Data API key. Endpoint overrides the
// API root (e.g. "https://youtube.googleapis.com/"); empty uses the
// library default.
type YouTubeConfig struct {
	Endpoint string
	APIKey   string
	Limit    int
}

// MusicRecommender finds playlists (falling back to single videos) for
// the event's mood.
type MusicRecommender struct {
	cfg YouTubeConfig
	svc *youtube.Service
	err error
}

func NewMusicRecommender(cfg YouTubeConfig) *MusicRecommender {
	if cfg.Limit <= 0 {
		cfg.Limit = 4
	}
	r := &MusicRecommender{cfg: cfg}
	if cfg.APIKey == "" {
		return r
	}
	opts := []option.ClientOption{option.WithAPIKey(cfg.APIKey)}
	if cfg.Endpoint != "" {
		opts = append(opts, option.WithEndpoint(cfg.Endpoint))
	}
	r.svc, r.err = youtube.NewService(context.Background(), opts...)
	return r
}

func (r *MusicRecommender) Category() domain.Category { return domain.CategoryMusic }

// Generate takes one result per query, preferring playlists.
func (r *MusicRecommender) Generate(ctx context.Context, ec EventContext) ([]domain.ContentItem, error) {
	if r.cfg.APIKey == "" {
		return nil, ErrNotConfigured
	}
	if r.err != nil {
		return nil, fmt.Errorf("youtube client: %w", r.err)
	}

	seen := map[string]bool{}
	var (
		items   []domain.ContentItem
		lastErr error
	)
	for _, q := range MusicQueries(ec) {
		if len(items) >= r.cfg.Limit {
			break
		}
		resp, err := r.svc.Search.List([]string{"snippet"}).
			Q(q).
			Type("video,playlist").
			MaxResults(8).
			Context(ctx).
			Do()
		if err != nil {
			lastErr = youtubeError(err)
			if ctx.Err() != nil {
				break
			}
			continue
		}
		if it, ok := pickYouTubeItem(resp.Items); ok && !seen[it.ID] {
			seen[it.ID] = true
			it.Metadata["query"] = q
			items = append(items, it)
		}
	}
	if len(items) == 0 && lastErr != nil {
		return nil, fmt.Errorf("youtube search failed: %w", lastErr)
	}
	return items, nil
}

func youtubeError(err error) error {
	var gErr *googleapi.Error
	if errors.As(err, &gErr) {
		return fmt.Errorf("%w: status %d: %s", ErrUpstream, gErr.Code, truncate(gErr.Message, 200))
	}
	return fmt.Errorf("%w: %v", ErrUpstream, err)
}

func pickYouTubeItem(results []*youtube.SearchResult) (domain.ContentItem, bool) {
	for _, kind := range []string{"youtube#playlist", "youtube#video"} {
		for _, it := range results {
			if it == nil || it.Id == nil || it.Id.Kind != kind {
				continue
			}
			item := domain.ContentItem{
				Category: domain.CategoryMusic,
				Source:   "youtube",
				Metadata: map[string]any{},
			}
			if sn := it.Snippet; sn != nil {
				item.Title = sn.Title
				item.Description = truncate(sn.Description, 100)
				item.Metadata["channel"] = sn.ChannelTitle
				if sn.Thumbnails != nil && sn.Thumbnails.Medium != nil {
					item.ThumbnailURL = sn.Thumbnails.Medium.Url
				}
			}
			if kind == "youtube#playlist" {
				item.ID = "youtube_playlist_" + it.Id.PlaylistId
				item.URL = "https://www.youtube.com/playlist?list=" + it.Id.PlaylistId
				item.Metadata["type"] = "playlist"
			} else {
				item.ID = "youtube_video_" + it.Id.VideoId
				item.URL = "https://www.youtube.com/watch?v=" + it.Id.VideoId
				item.Metadata["type"] = "video"
			}
			return item, true
		}
	}
	return domain.ContentItem{}, false
}
