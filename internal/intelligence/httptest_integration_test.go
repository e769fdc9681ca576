package intelligence

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alexanderramin/eventwise/internal/llm"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newHTTPTestServer(t *testing.T, handler http.HandlerFunc) *httptest.Server {
	t.Helper()

	var srv *httptest.Server
	func() {
		defer func() {
			if r := recover(); r != nil {
				t.Skipf("skipping HTTP integration test: local listener unavailable (%v)", r)
			}
		}()
		srv = httptest.NewServer(handler)
	}()
	return srv
}

// Runs the full path: httptest server, Ollama client, dialogue service.
func TestDialogueService_WithHTTPTestServer(t *testing.T) {
	turn := `{"message": "Great, 50 guests!", "suggestions": {"guest_count": "around 50", "location": null}, "ready_to_generate": false, "conversation_stage": "collecting_details"}`

	srv := newHTTPTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/generate", r.URL.Path)

		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "json", body["format"])

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{"model": "test-model", "response": turn})
	})
	defer srv.Close()

	cfg := llm.DefaultConfig()
	cfg.Endpoint = srv.URL
	cfg.Model = "test-model"
	cfg.MaxRetries = 0

	svc := NewDialogueService(llm.NewOllamaClient(cfg, llm.NoopObserver{}))
	reply, err := svc.Respond(context.Background(), DialogueRequest{Message: "around 50 people"})
	require.NoError(t, err)

	assert.Equal(t, "Great, 50 guests!", reply.Message)
	assert.Equal(t, map[string]any{"guest_count": "around 50"}, reply.Suggestions)
}

// A slow model must make the classifier answer "no" within the task timeout.
func TestConfirmationClassifier_Timeout_IsNo(t *testing.T) {
	srv := newHTTPTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-time.After(10 * time.Second):
		case <-r.Context().Done():
			return
		}
	})
	defer srv.Close()

	cfg := llm.DefaultConfig().WithTaskTimeout(llm.TaskConfirm, 300)
	cfg.Endpoint = srv.URL
	cfg.MaxRetries = 0

	var failures int
	c := NewConfirmationClassifier(llm.NewOllamaClient(cfg, llm.NoopObserver{}), func(ConfirmationMode, error) {
		failures++
	})

	start := time.Now()
	ok := c.Confirm(context.Background(), ModeGeneration, "yes")
	elapsed := time.Since(start)

	assert.False(t, ok)
	assert.Equal(t, 1, failures)
	assert.Less(t, elapsed, 3*time.Second)
}
