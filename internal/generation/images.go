package generation

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/alexanderramin/eventwise/internal/domain"
	"github.com/google/uuid"
	"github.com/openai/openai-go/v2"
	"github.com/openai/openai-go/v2/azure"
	"github.com/openai/openai-go/v2/option"
	"golang.org/x/sync/errgroup"
)

// ImageConfig points at an Azure OpenAI image deployment.
type ImageConfig struct {
	Endpoint   string
	APIKey     string
	Deployment string
	APIVersion string
	Size       string
}

// ImageGenerator renders inspiration images, one per prompt from ImagePrompts.
type ImageGenerator struct {
	cfg    ImageConfig
	client openai.Client
}

func NewImageGenerator(cfg ImageConfig) *ImageGenerator {
	if cfg.Deployment == "" {
		cfg.Deployment = "dall-e-3"
	}
	if cfg.APIVersion == "" {
		cfg.APIVersion = "2024-02-01"
	}
	if cfg.Size == "" {
		cfg.Size = "1024x1024"
	}
	g := &ImageGenerator{cfg: cfg}
	if cfg.Endpoint != "" && cfg.APIKey != "" {
		// The azure middleware routes images/generations to
		// /openai/deployments/{model}/... using the request's model field.
		g.client = openai.NewClient(
			azure.WithEndpoint(cfg.Endpoint, cfg.APIVersion),
			azure.WithAPIKey(cfg.APIKey),
			option.WithMaxRetries(0),
		)
	}
	return g
}

func (g *ImageGenerator) Category() domain.Category { return domain.CategoryImages }

// Generate renders all prompts concurrently. Individual failures are
// dropped; an error is returned only when no image was produced.
func (g *ImageGenerator) Generate(ctx context.Context, ec EventContext) ([]domain.ContentItem, error) {
	if g.cfg.Endpoint == "" || g.cfg.APIKey == "" {
		return nil, ErrNotConfigured
	}

	prompts := ImagePrompts(ec)
	results := make([]*domain.ContentItem, len(prompts))

	var (
		mu   sync.Mutex
		errs []error
	)
	eg, egCtx := errgroup.WithContext(ctx)
	for i, prompt := range prompts {
		eg.Go(func() error {
			item, err := g.render(egCtx, prompt)
			if err != nil {
				mu.Lock()
				errs = append(errs, err)
				mu.Unlock()
				return nil
			}
			results[i] = item
			return nil
		})
	}
	_ = eg.Wait()

	items := make([]domain.ContentItem, 0, len(prompts))
	for _, it := range results {
		if it != nil {
			items = append(items, *it)
		}
	}
	if len(items) == 0 && len(errs) > 0 {
		return nil, fmt.Errorf("image generation failed: %w", errors.Join(errs...))
	}
	return items, nil
}

func (g *ImageGenerator) render(ctx context.Context, prompt string) (*domain.ContentItem, error) {
	resp, err := g.client.Images.Generate(ctx, openai.ImageGenerateParams{
		Prompt:  prompt,
		Model:   openai.ImageModel(g.cfg.Deployment),
		N:       openai.Int(1),
		Size:    openai.ImageGenerateParamsSize(g.cfg.Size),
		Quality: openai.ImageGenerateParamsQualityStandard,
		Style:   openai.ImageGenerateParamsStyleNatural,
	})
	if err != nil {
		var apiErr *openai.Error
		if errors.As(err, &apiErr) {
			return nil, fmt.Errorf("%w: status %d: %s", ErrUpstream, apiErr.StatusCode, truncate(apiErr.Message, 200))
		}
		return nil, fmt.Errorf("%w: %v", ErrUpstream, err)
	}
	if len(resp.Data) == 0 || resp.Data[0].URL == "" {
		return nil, fmt.Errorf("%w: empty image response", ErrUpstream)
	}
	meta := map[string]any{"prompt": prompt, "width": 1024, "height": 1024}
	if rp := resp.Data[0].RevisedPrompt; rp != "" {
		meta["revised_prompt"] = rp
	}
	return &domain.ContentItem{
		ID:           "img_" + uuid.NewString(),
		Category:     domain.CategoryImages,
		Title:        prompt,
		URL:          resp.Data[0].URL,
		ThumbnailURL: resp.Data[0].URL,
		Source:       "azure_dalle",
		Metadata:     meta,
	}, nil
}
