package cli

import (
	"bytes"
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/alexanderramin/eventwise/internal/app"
	"github.com/alexanderramin/eventwise/internal/domain"
	"github.com/alexanderramin/eventwise/internal/export"
	"github.com/alexanderramin/eventwise/internal/service"
	"github.com/alexanderramin/eventwise/internal/session"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

func init() {
	lipgloss.SetColorProfile(termenv.Ascii)
}

// scriptedConversation answers Converse by exact message text. A message
// scripted with a Generation marks the session exportable.
type scriptedConversation struct {
	mu        sync.Mutex
	replies   map[string]*app.ConverseResult
	generated map[string]bool
	failures  map[string]error
	calls     []string
}

func newScriptedConversation() *scriptedConversation {
	return &scriptedConversation{
		replies:   map[string]*app.ConverseResult{},
		generated: map[string]bool{},
		failures:  map[string]error{},
	}
}

func (c *scriptedConversation) on(text string, res *app.ConverseResult) *scriptedConversation {
	c.replies[text] = res
	return c
}

func (c *scriptedConversation) HandleMessage(ctx context.Context, id, text string) (*app.TurnResult, error) {
	res, err := c.Converse(ctx, id, text)
	if err != nil {
		return nil, err
	}
	return res.Turn, nil
}

func (c *scriptedConversation) Generate(context.Context, string) (*app.GenerationReport, error) {
	return nil, service.ErrGenerationNotReady
}

func (c *scriptedConversation) Converse(_ context.Context, id, text string) (*app.ConverseResult, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls = append(c.calls, text)
	if err := c.failures[text]; err != nil {
		return nil, err
	}
	res, ok := c.replies[text]
	if !ok {
		return &app.ConverseResult{Turn: &app.TurnResult{
			SessionID:            id,
			Reply:                "Tell me more!",
			Stage:                domain.StageCollectingBasics,
			Missing:              []string{domain.FieldEventType},
			CompletionPercentage: 0,
		}}, nil
	}
	if res.Generation != nil {
		c.generated[id] = true
	}
	return res, nil
}

func (c *scriptedConversation) RequestExport(_ context.Context, id string) (*app.TurnResult, error) {
	return &app.TurnResult{SessionID: id, Stage: domain.StageAwaitingPdfConfirmation}, nil
}

func (c *scriptedConversation) Export(_ context.Context, id string) (*export.Plan, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.generated[id] {
		return nil, service.ErrNothingToExport
	}
	return &export.Plan{Filename: "event_plan_" + id + ".md", Markdown: "# Wedding Plan\n"}, nil
}

func (c *scriptedConversation) messages() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]string(nil), c.calls...)
}

// Messages of the scripted wedding conversation.
const (
	msgWedding = "a beach wedding for 80 in Diani"
	msgConfirm = "yes please"
	msgPlan    = "yes make the pdf"
)

func weddingConversation() *scriptedConversation {
	return newScriptedConversation().
		on(msgWedding, &app.ConverseResult{Turn: &app.TurnResult{
			Reply:                "Shall I create your recommendations?",
			Stage:                domain.StageAwaitingConfirmation,
			Missing:              []string{},
			CompletionPercentage: 100,
		}}).
		on(msgConfirm, &app.ConverseResult{
			Turn: &app.TurnResult{
				Reply:                "Perfect! Creating your personalized recommendations now...",
				Stage:                domain.StageConfirmed,
				CompletionPercentage: 100,
				ReadyToGenerate:      true,
			},
			Generation: &app.GenerationReport{
				Reply:  "Here is what I found.",
				Stage:  domain.StageReviewingContent,
				Counts: map[domain.Category]int{domain.CategoryMusic: 4, domain.CategoryVenues: 3},
				Total:  7,
			},
		}).
		on(msgPlan, &app.ConverseResult{Turn: &app.TurnResult{
			Reply:           "Creating your plan.",
			Stage:           domain.StagePdfGeneration,
			ExportConfirmed: true,
		}})
}

// testApp wires an App over a scripted conversation and a memory store.
func testApp(t *testing.T, conv *scriptedConversation) *App {
	t.Helper()
	if conv == nil {
		conv = weddingConversation()
	}
	return &App{
		Conversation: conv,
		History:      service.NoopArchive{},
		Sessions:     session.NewMemoryStore(),
		Now:          func() time.Time { return time.Date(2026, 10, 16, 12, 0, 0, 0, time.UTC) },
	}
}

// executeCmd runs a cobra command and captures stdout/stderr.
func executeCmd(t *testing.T, app *App, stdin string, args ...string) (string, error) {
	t.Helper()
	root := NewRootCmd(app)
	buf := new(bytes.Buffer)
	root.SetOut(buf)
	root.SetErr(buf)
	root.SetIn(strings.NewReader(stdin))
	root.SetArgs(args)
	err := root.Execute()
	return buf.String(), err
}

// seedSession records a short exchange in the live store.
func seedSession(t *testing.T, store session.Store, id string) {
	t.Helper()
	ctx := context.Background()
	if _, err := store.MergeExtractedFields(ctx, id, map[string]any{domain.FieldEventType: "wedding"}); err != nil {
		t.Fatal(err)
	}
	if err := store.AppendMessage(ctx, id, domain.RoleUser, "I'm planning a wedding"); err != nil {
		t.Fatal(err)
	}
	if err := store.AppendMessage(ctx, id, domain.RoleAssistant, "Lovely! Where?"); err != nil {
		t.Fatal(err)
	}
}
