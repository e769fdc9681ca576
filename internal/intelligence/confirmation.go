package intelligence

import (
	"context"
	"fmt"
	"strings"

	"github.com/alexanderramin/eventwise/internal/llm"
)

// ConfirmationMode selects which question the user is answering.
type ConfirmationMode int

const (
	// ModeGeneration: "should I generate your recommendations now?"
	ModeGeneration ConfirmationMode = iota
	// ModePDF: "should I create the plan document?"
	ModePDF
)

func (m ConfirmationMode) String() string {
	if m == ModePDF {
		return "pdf"
	}
	return "generation"
}

// ConfirmationClassifier decides whether an utterance is an explicit yes.
// It never errors: any failure, timeout or unclear answer is a no.
type ConfirmationClassifier interface {
	Confirm(ctx context.Context, mode ConfirmationMode, utterance string) bool
}

type llmClassifier struct {
	client llm.LLMClient
	onErr  func(mode ConfirmationMode, err error)
}

// NewConfirmationClassifier creates a classifier backed by an LLM client.
// onErr, if non-nil, is told about failures that were turned into "no".
func NewConfirmationClassifier(client llm.LLMClient, onErr func(ConfirmationMode, error)) ConfirmationClassifier {
	return &llmClassifier{client: client, onErr: onErr}
}

func (c *llmClassifier) Confirm(ctx context.Context, mode ConfirmationMode, utterance string) bool {
	system := generationConfirmSystemPrompt
	if mode == ModePDF {
		system = pdfConfirmSystemPrompt
	}

	resp, err := c.client.Generate(ctx, llm.GenerateRequest{
		Task:         llm.TaskConfirm,
		SystemPrompt: system,
		UserPrompt:   fmt.Sprintf("User message: %q\n\nIs this an explicit confirmation?", utterance),
	})
	if err != nil {
		if c.onErr != nil {
			c.onErr(mode, err)
		}
		return false
	}
	return ParseVerdict(resp.Text)
}

// ParseVerdict accepts only the bare token "true" (case-insensitive, with
// optional surrounding whitespace, quotes or a trailing period).
func ParseVerdict(text string) bool {
	v := strings.ToLower(strings.TrimSpace(text))
	v = strings.Trim(v, `"'`)
	v = strings.TrimSuffix(v, ".")
	return v == "true"
}

// phraseClassifier is the deterministic stand-in used when no model is
// configured. It only accepts short, unambiguous affirmatives.
type phraseClassifier struct{}

// NewPhraseClassifier returns a classifier that matches exact affirmative
// phrases. Anything else, including longer sentences, is a no.
func NewPhraseClassifier() ConfirmationClassifier {
	return phraseClassifier{}
}

var generationPhrases = map[string]bool{
	"yes": true, "yes please": true, "yeah": true, "yep": true, "sure": true,
	"ok": true, "okay": true, "go ahead": true, "do it": true, "generate": true,
	"generate it": true, "start": true, "proceed": true, "yes go ahead": true,
	"ok generate": true, "let's do it": true,
}

var pdfPhrases = map[string]bool{
	"yes": true, "yes please": true, "create the pdf": true, "yes create the pdf": true,
	"make the pdf": true, "generate the pdf": true, "create the plan": true,
	"generate the plan": true, "make the plan": true, "go ahead": true, "create it": true,
}

func (phraseClassifier) Confirm(_ context.Context, mode ConfirmationMode, utterance string) bool {
	norm := normalizePhrase(utterance)
	if mode == ModePDF {
		return pdfPhrases[norm]
	}
	return generationPhrases[norm]
}

func normalizePhrase(s string) string {
	s = strings.ToLower(s)
	s = strings.Map(func(r rune) rune {
		switch r {
		case '!', '.', ',', '?':
			return -1
		}
		return r
	}, s)
	return strings.Join(strings.Fields(s), " ")
}
