package httpapi

import (
	"context"
	"encoding/json"
	"io"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/alexanderramin/eventwise/internal/app"
	"github.com/alexanderramin/eventwise/internal/domain"
	"github.com/alexanderramin/eventwise/internal/export"
	"github.com/alexanderramin/eventwise/internal/metrics"
	"github.com/alexanderramin/eventwise/internal/service"
	"github.com/alexanderramin/eventwise/internal/session"
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"
)

// fakeConversation answers with canned results and records what it saw.
type fakeConversation struct {
	mu        sync.Mutex
	converse  *app.ConverseResult
	err       error
	plan      *export.Plan
	exportErr error
	request   *app.TurnResult
	texts     []string
}

func (f *fakeConversation) HandleMessage(context.Context, string, string) (*app.TurnResult, error) {
	return f.converse.Turn, f.err
}

func (f *fakeConversation) Generate(context.Context, string) (*app.GenerationReport, error) {
	return f.converse.Generation, f.err
}

func (f *fakeConversation) Converse(_ context.Context, _ string, text string) (*app.ConverseResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.texts = append(f.texts, text)
	if f.err != nil {
		return nil, f.err
	}
	return f.converse, nil
}

func (f *fakeConversation) RequestExport(context.Context, string) (*app.TurnResult, error) {
	if f.exportErr != nil {
		return nil, f.exportErr
	}
	return f.request, nil
}

func (f *fakeConversation) Export(context.Context, string) (*export.Plan, error) {
	if f.exportErr != nil {
		return nil, f.exportErr
	}
	return f.plan, nil
}

// fakePhotos serves stock photos for the gallery.
type fakePhotos struct {
	err       error
	lastStyle string
	lastCount int
}

func (p *fakePhotos) Search(_ context.Context, _ string, count int) ([]domain.ContentItem, error) {
	if p.err != nil {
		return nil, p.err
	}
	p.lastCount = count
	return []domain.ContentItem{{ID: "stock_1", Category: domain.CategoryImages, Title: "party", Source: "unsplash"}}, nil
}

func (p *fakePhotos) SearchStyle(_ context.Context, style string, count int) ([]domain.ContentItem, error) {
	if p.err != nil {
		return nil, p.err
	}
	p.lastStyle, p.lastCount = style, count
	return []domain.ContentItem{{ID: "style_1", Category: domain.CategoryImages, Title: style, Source: "unsplash"}}, nil
}

type testServer struct {
	e            *echo.Echo
	conversation *fakeConversation
	sessions     *session.SessionStore
	photos       *fakePhotos
	metrics      *metrics.Metrics
}

func newTestServer(t *testing.T, history app.ChatHistoryUseCase) *testServer {
	t.Helper()
	if history == nil {
		history = service.NoopArchive{}
	}
	reg := prometheus.NewRegistry()
	ts := &testServer{
		conversation: &fakeConversation{},
		sessions:     session.NewMemoryStore(),
		photos:       &fakePhotos{},
		metrics:      metrics.New(reg),
	}
	h := NewHandler(Deps{
		Conversation: ts.conversation,
		History:      history,
		Sessions:     ts.sessions,
		Gallery:      export.NewGallery(ts.photos, nil),
	})
	ts.e = NewServer(h, ServerOptions{Metrics: ts.metrics, Gatherer: reg})
	return ts
}

func (ts *testServer) do(t *testing.T, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, r)
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	ts.e.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return out
}

// seedSession records a short exchange in the live store.
func seedSession(t *testing.T, store session.Store, id string) {
	t.Helper()
	ctx := context.Background()
	_, err := store.GetOrCreate(ctx, id)
	require.NoError(t, err)
	require.NoError(t, store.AppendMessage(ctx, id, domain.RoleUser, "A birthday party for my sister"))
	require.NoError(t, store.AppendMessage(ctx, id, domain.RoleAssistant, "Fun! Where will it be?"))
}
