package service

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/alexanderramin/eventwise/internal/completeness"
	"github.com/alexanderramin/eventwise/internal/domain"
	"github.com/alexanderramin/eventwise/internal/generation"
	"github.com/alexanderramin/eventwise/internal/intelligence"
	"github.com/alexanderramin/eventwise/internal/metrics"
	"github.com/alexanderramin/eventwise/internal/session"
	"github.com/alexanderramin/eventwise/internal/testutil"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"
)

// scriptedDialogue answers by exact user message. Unscripted messages get a
// plain reply with no extracted fields.
type scriptedDialogue struct {
	mu       sync.Mutex
	replies  map[string]*intelligence.DialogueReply
	fail     map[string]error
	requests []intelligence.DialogueRequest
}

func newScriptedDialogue() *scriptedDialogue {
	return &scriptedDialogue{
		replies: map[string]*intelligence.DialogueReply{},
		fail:    map[string]error{},
	}
}

func (d *scriptedDialogue) on(msg string, reply *intelligence.DialogueReply) *scriptedDialogue {
	d.replies[msg] = reply
	return d
}

func (d *scriptedDialogue) failOn(msg string, err error) *scriptedDialogue {
	d.fail[msg] = err
	return d
}

func (d *scriptedDialogue) Respond(_ context.Context, req intelligence.DialogueRequest) (*intelligence.DialogueReply, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.requests = append(d.requests, req)
	if err, ok := d.fail[req.Message]; ok {
		return nil, err
	}
	if r, ok := d.replies[req.Message]; ok {
		cp := *r
		if cp.Suggestions == nil {
			cp.Suggestions = map[string]any{}
		}
		return &cp, nil
	}
	return &intelligence.DialogueReply{Message: "Tell me more!", Suggestions: map[string]any{}}, nil
}

func (d *scriptedDialogue) lastRequest() intelligence.DialogueRequest {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.requests[len(d.requests)-1]
}

// fakeClassifier confirms exactly the utterances it was given.
type fakeClassifier struct {
	mu    sync.Mutex
	yes   map[string]bool
	calls []intelligence.ConfirmationMode
}

func newFakeClassifier(yes ...string) *fakeClassifier {
	c := &fakeClassifier{yes: map[string]bool{}}
	for _, y := range yes {
		c.yes[y] = true
	}
	return c
}

func (c *fakeClassifier) Confirm(_ context.Context, mode intelligence.ConfirmationMode, utterance string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls = append(c.calls, mode)
	return c.yes[utterance]
}

func (c *fakeClassifier) callCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.calls)
}

// stubDispatcher returns a fixed report per run, cycling through reports.
type stubDispatcher struct {
	mu      sync.Mutex
	reports []generation.Report
	runs    int
	lastEC  generation.EventContext
}

func (d *stubDispatcher) Run(_ context.Context, ec generation.EventContext) generation.Report {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.lastEC = ec
	r := d.reports[min(d.runs, len(d.reports)-1)]
	d.runs++
	return r
}

func reportWith(items map[domain.Category]int, failed ...domain.Category) generation.Report {
	r := generation.Report{
		Items:  map[domain.Category][]domain.ContentItem{},
		Failed: map[domain.Category]error{},
	}
	for c, n := range items {
		r.Items[c] = testutil.NewTestItems(c, n)
	}
	for _, c := range failed {
		r.Failed[c] = errors.New("upstream unavailable")
	}
	return r
}

func fullReport() generation.Report {
	return reportWith(map[domain.Category]int{
		domain.CategoryImages: 3,
		domain.CategoryMusic:  4,
		domain.CategoryVenues: 4,
		domain.CategoryFood:   4,
	})
}

type testEnv struct {
	svc        *TurnService
	store      *session.SessionStore
	dialogue   *scriptedDialogue
	classifier *fakeClassifier
	dispatcher *stubDispatcher
	metrics    *metrics.Metrics
}

func newTestEnv(t *testing.T, dialogue *scriptedDialogue, classifier *fakeClassifier, reports ...generation.Report) *testEnv {
	t.Helper()
	env := newServiceEnv(t, dialogue, classifier, TurnOptions{HistoryWindow: 10}, reports...)
	env.dialogue = dialogue
	env.classifier = classifier
	return env
}

// newServiceEnv wires a TurnService around any dialogue and classifier.
// The scripted fakes on the returned env are left nil.
func newServiceEnv(t *testing.T, dialogue intelligence.DialogueService, classifier intelligence.ConfirmationClassifier, opts TurnOptions, reports ...generation.Report) *testEnv {
	t.Helper()
	if len(reports) == 0 {
		reports = []generation.Report{fullReport()}
	}
	store := session.NewMemoryStore()
	dispatcher := &stubDispatcher{reports: reports}
	m := metrics.New(prometheus.NewRegistry())
	svc := NewTurnService(TurnDeps{
		Store:      store,
		Analyzer:   completeness.NewAnalyzer(completeness.NewValidator(completeness.FlexiblePolicy())),
		Dialogue:   dialogue,
		Classifier: classifier,
		Dispatcher: dispatcher,
		Metrics:    m,
	}, opts)
	return &testEnv{svc: svc, store: store, dispatcher: dispatcher, metrics: m}
}

// Messages of the standard wedding conversation.
const (
	msgWedding  = "I'm planning a wedding"
	msgDetails  = "In Diani Beach, about 80 guests"
	msgConfirm  = "yes go ahead"
	msgAskPlan  = "can I get a pdf of this?"
	msgLikeIt   = "I like the music"
	msgPlanOK   = "yes create the pdf"
	testSession = "sess-1"
)

func weddingDialogue() *scriptedDialogue {
	return newScriptedDialogue().
		on(msgWedding, &intelligence.DialogueReply{
			Message:       "A wedding! Where will it be?",
			Suggestions:   map[string]any{domain.FieldEventType: "wedding"},
			ProposedStage: "collecting_details",
		}).
		on(msgDetails, &intelligence.DialogueReply{
			Message: "Lovely, Diani Beach for about 80.",
			Suggestions: map[string]any{
				domain.FieldLocation:   "Diani Beach",
				domain.FieldGuestCount: "about 80",
			},
			ProposedStage: "awaiting_confirmation",
		}).
		on(msgConfirm, &intelligence.DialogueReply{
			Message:       "On it!",
			ProposedStage: "confirmed",
			ClaimsReady:   true,
		}).
		on(msgAskPlan, &intelligence.DialogueReply{
			Message:         "Sure, I can make a plan.",
			ActionRequested: intelligence.ActionGeneratePDF,
			ProposedStage:   "reviewing_content",
		})
}

// driveToReview runs the wedding conversation through generation.
func driveToReview(t *testing.T, env *testEnv) {
	t.Helper()
	ctx := context.Background()
	for _, msg := range []string{msgWedding, msgDetails} {
		_, err := env.svc.Converse(ctx, testSession, msg)
		require.NoError(t, err)
	}
	res, err := env.svc.Converse(ctx, testSession, msgConfirm)
	require.NoError(t, err)
	require.NotNil(t, res.Generation)
	require.Equal(t, domain.StageReviewingContent, res.Stage())
}
