package generation

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"sync/atomic"
	"testing"

	"github.com/alexanderramin/eventwise/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestImageGenerator_Generate(t *testing.T) {
	var calls atomic.Int32
	srv := newHTTPTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		assert.Equal(t, "/openai/deployments/dall-e-3/images/generations", r.URL.Path)
		assert.Equal(t, "2024-02-01", r.URL.Query().Get("api-version"))
		assert.Equal(t, "secret", r.Header.Get("api-key"))

		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "dall-e-3", body["model"])
		assert.Equal(t, "1024x1024", body["size"])
		assert.Equal(t, "standard", body["quality"])
		assert.Equal(t, "natural", body["style"])
		assert.EqualValues(t, 1, body["n"])

		writeJSON(w, map[string]any{
			"created": 1,
			"data":    []map[string]any{{"url": "https://img.example/1.png", "revised_prompt": "a garden wedding"}},
		})
	})

	g := NewImageGenerator(ImageConfig{Endpoint: srv.URL, APIKey: "secret"})
	items, err := g.Generate(context.Background(), weddingContext())
	require.NoError(t, err)

	assert.Equal(t, int32(3), calls.Load())
	require.Len(t, items, 3)
	for _, it := range items {
		assert.Equal(t, domain.CategoryImages, it.Category)
		assert.Equal(t, "https://img.example/1.png", it.URL)
		assert.Equal(t, "azure_dalle", it.Source)
		assert.Equal(t, "a garden wedding", it.Metadata["revised_prompt"])
	}
}

func TestImageGenerator_CustomDeploymentRouting(t *testing.T) {
	srv := newHTTPTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/openai/deployments/party-images/images/generations", r.URL.Path)
		assert.Equal(t, "2024-10-21", r.URL.Query().Get("api-version"))
		writeJSON(w, map[string]any{"created": 1, "data": []map[string]any{{"url": "https://img.example/c.png"}}})
	})

	items, err := NewImageGenerator(ImageConfig{
		Endpoint:   srv.URL + "/",
		APIKey:     "k",
		Deployment: "party-images",
		APIVersion: "2024-10-21",
	}).Generate(context.Background(), weddingContext())
	require.NoError(t, err)
	assert.Len(t, items, 3)
}

func TestImageGenerator_PartialFailureKeepsImages(t *testing.T) {
	var calls atomic.Int32
	srv := newHTTPTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			http.Error(w, "content policy", http.StatusBadRequest)
			return
		}
		writeJSON(w, map[string]any{"data": []map[string]any{{"url": "https://img.example/ok.png"}}})
	})

	items, err := NewImageGenerator(ImageConfig{Endpoint: srv.URL, APIKey: "k"}).
		Generate(context.Background(), weddingContext())
	require.NoError(t, err)
	assert.Len(t, items, 2)
}

func TestImageGenerator_AllFail(t *testing.T) {
	srv := newHTTPTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	})

	_, err := NewImageGenerator(ImageConfig{Endpoint: srv.URL, APIKey: "k"}).
		Generate(context.Background(), weddingContext())
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUpstream))
	assert.Contains(t, err.Error(), "status 500")
}

func TestImageGenerator_NotConfigured(t *testing.T) {
	_, err := NewImageGenerator(ImageConfig{}).Generate(context.Background(), weddingContext())
	assert.ErrorIs(t, err, ErrNotConfigured)
}
