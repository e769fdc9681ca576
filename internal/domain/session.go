package domain

import (
	"errors"
	"maps"
	"slices"
	"time"
)

// ErrInvariantViolation is returned when a state change would break a
// session invariant, such as marking content generated with no items stored.
var ErrInvariantViolation = errors.New("session invariant violation")

// Message is a single entry in a session's conversation history.
type Message struct {
	Role      Role
	Content   string
	Timestamp time.Time
}

// GenerationState tracks where a session sits in the confirm/generate/export flow.
type GenerationState struct {
	AwaitingConfirmation    bool
	UserConfirmedGeneration bool
	HasGenerated            bool
	Stage                   Stage
	AwaitingPdfConfirmation bool
	PdfConfirmed            bool
}

// StateUpdate is a partial GenerationState. Nil fields are left untouched.
type StateUpdate struct {
	AwaitingConfirmation    *bool
	UserConfirmedGeneration *bool
	HasGenerated            *bool
	Stage                   *Stage
	AwaitingPdfConfirmation *bool
	PdfConfirmed            *bool
}

// Apply merges u into s and returns the result.
func (u StateUpdate) Apply(s GenerationState) GenerationState {
	s.AwaitingConfirmation = ValueOr(u.AwaitingConfirmation, s.AwaitingConfirmation)
	s.UserConfirmedGeneration = ValueOr(u.UserConfirmedGeneration, s.UserConfirmedGeneration)
	s.HasGenerated = ValueOr(u.HasGenerated, s.HasGenerated)
	s.AwaitingPdfConfirmation = ValueOr(u.AwaitingPdfConfirmation, s.AwaitingPdfConfirmation)
	s.PdfConfirmed = ValueOr(u.PdfConfirmed, s.PdfConfirmed)
	if u.Stage != nil {
		s.Stage = *u.Stage
	}
	return s
}

// ContentItem is one generated recommendation (image, playlist, venue, dish).
// The conversation core only counts items; the shape belongs to the generators.
type ContentItem struct {
	ID           string         `json:"id"`
	Category     Category       `json:"category"`
	Title        string         `json:"title"`
	Description  string         `json:"description,omitempty"`
	URL          string         `json:"url,omitempty"`
	ThumbnailURL string         `json:"thumbnail_url,omitempty"`
	Source       string         `json:"source"`
	Metadata     map[string]any `json:"metadata,omitempty"`
}

// Session is the per-conversation state owned by the session store.
type Session struct {
	ID              string
	CreatedAt       time.Time
	UpdatedAt       time.Time
	Fields          Fields
	History         []Message
	State           GenerationState
	Content         map[Category][]ContentItem
	LastSuggestions map[string]any
	MessageCount    int
}

// NewSession returns an empty session in the greeting stage.
func NewSession(id string, now time.Time) *Session {
	return &Session{
		ID:        id,
		CreatedAt: now,
		UpdatedAt: now,
		Fields:    Fields{},
		State:     GenerationState{Stage: StageGreeting},
		Content:   map[Category][]ContentItem{},
	}
}

// Clone returns a deep copy so callers never share mutable state with a store.
func (s *Session) Clone() *Session {
	c := *s
	c.Fields = s.Fields.Clone()
	c.History = slices.Clone(s.History)
	c.Content = cloneContent(s.Content)
	if s.LastSuggestions != nil {
		c.LastSuggestions = maps.Clone(s.LastSuggestions)
	}
	return &c
}

// ItemCount returns the number of generated items across all categories.
func (s *Session) ItemCount() int {
	return CountItems(s.Content)
}

// Snapshot is the read-only view handed to the export collaborator.
type Snapshot struct {
	SessionID string
	Fields    Fields
	Content   map[Category][]ContentItem
	State     GenerationState
}

// Snapshot returns a deep-copied export view of the session.
func (s *Session) Snapshot() Snapshot {
	return Snapshot{
		SessionID: s.ID,
		Fields:    s.Fields.Clone(),
		Content:   cloneContent(s.Content),
		State:     s.State,
	}
}

// CountItems sums items across categories.
func CountItems(content map[Category][]ContentItem) int {
	n := 0
	for _, items := range content {
		n += len(items)
	}
	return n
}

func cloneContent(in map[Category][]ContentItem) map[Category][]ContentItem {
	out := make(map[Category][]ContentItem, len(in))
	for k, v := range in {
		out[k] = slices.Clone(v)
	}
	return out
}
