package session

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"maps"
	"slices"
	"sort"
	"time"

	"github.com/alexanderramin/eventwise/internal/domain"
)

// ErrNotFound is returned by read-only accessors for unknown session ids.
var ErrNotFound = errors.New("session not found")

// Store is the authoritative per-session state used by the turn orchestrator.
type Store interface {
	GetOrCreate(ctx context.Context, id string) (*domain.Session, error)
	Get(ctx context.Context, id string) (*domain.Session, error)
	AppendMessage(ctx context.Context, id string, role domain.Role, content string) error
	MergeExtractedFields(ctx context.Context, id string, fields map[string]any) (domain.Fields, error)
	HistoryWindow(ctx context.Context, id string, limit int) (iter.Seq[domain.Message], error)
	SetGenerationState(ctx context.Context, id string, update domain.StateUpdate) (domain.GenerationState, error)
	StoreGeneratedContent(ctx context.Context, id string, category domain.Category, items []domain.ContentItem) error
	StoreSuggestions(ctx context.Context, id string, raw map[string]any) error
	Snapshot(ctx context.Context, id string) (domain.Snapshot, error)
	Summary(ctx context.Context, id string) (Summary, error)
	List(ctx context.Context) ([]Summary, error)
	Clear(ctx context.Context, id string) error
	ClearAll(ctx context.Context) error
	Count(ctx context.Context) (int, error)
}

// Summary is a lightweight description of a session for listings.
type Summary struct {
	ID           string
	MessageCount int
	FieldCount   int
	Stage        domain.Stage
	HasGenerated bool
	ItemCounts   map[domain.Category]int
	UpdatedAt    time.Time
}

// backend is the raw persistence a SessionStore delegates to. Load returns
// (nil, nil) when the id is unknown. Implementations need not be safe for
// concurrent read-modify-write of one id; SessionStore serializes that.
type backend interface {
	load(ctx context.Context, id string) (*domain.Session, error)
	save(ctx context.Context, s *domain.Session) error
	remove(ctx context.Context, id string) error
	removeAll(ctx context.Context) error
	ids(ctx context.Context) ([]string, error)
}

// SessionStore implements Store over a backend, serializing mutations per
// session id.
type SessionStore struct {
	backend backend
	locks   *KeyedMutex
	now     func() time.Time
}

func newSessionStore(b backend) *SessionStore {
	return &SessionStore{
		backend: b,
		locks:   NewKeyedMutex(),
		now:     func() time.Time { return time.Now().UTC() },
	}
}

// GetOrCreate returns a copy of the session, creating it when absent.
func (s *SessionStore) GetOrCreate(ctx context.Context, id string) (*domain.Session, error) {
	var out *domain.Session
	err := s.update(ctx, id, func(sess *domain.Session) bool {
		out = sess.Clone()
		return false
	})
	return out, err
}

// Get returns a copy of an existing session or ErrNotFound.
func (s *SessionStore) Get(ctx context.Context, id string) (*domain.Session, error) {
	sess, err := s.backend.load(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("loading session %s: %w", id, err)
	}
	if sess == nil {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return sess, nil
}

func (s *SessionStore) AppendMessage(ctx context.Context, id string, role domain.Role, content string) error {
	return s.update(ctx, id, func(sess *domain.Session) bool {
		sess.History = append(sess.History, domain.Message{
			Role:      role,
			Content:   content,
			Timestamp: s.now(),
		})
		sess.MessageCount++
		return true
	})
}

// MergeExtractedFields applies last-non-null-wins: a non-empty incoming value
// replaces whatever is stored, an empty one (nil, "null", blank, empty list)
// never removes or downgrades a key. Returns the merged fields.
func (s *SessionStore) MergeExtractedFields(ctx context.Context, id string, fields map[string]any) (domain.Fields, error) {
	var merged domain.Fields
	err := s.update(ctx, id, func(sess *domain.Session) bool {
		changed := mergeFields(sess.Fields, fields)
		merged = sess.Fields.Clone()
		return changed
	})
	return merged, err
}

func mergeFields(dst domain.Fields, src map[string]any) bool {
	changed := false
	for k, v := range src {
		if domain.IsEmptyValue(v) {
			continue
		}
		dst[k] = v
		changed = true
	}
	return changed
}

// HistoryWindow returns a restartable sequence over the last limit messages
// in their original order. limit <= 0 means the whole history.
func (s *SessionStore) HistoryWindow(ctx context.Context, id string, limit int) (iter.Seq[domain.Message], error) {
	sess, err := s.backend.load(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("loading session %s: %w", id, err)
	}
	var window []domain.Message
	if sess != nil {
		window = sess.History
		if limit > 0 && len(window) > limit {
			window = window[len(window)-limit:]
		}
		window = slices.Clone(window)
	}
	return slices.Values(window), nil
}

// SetGenerationState shallow-merges update into the session's state.
// Raising HasGenerated with no stored items is rejected with
// domain.ErrInvariantViolation and leaves the state unchanged.
func (s *SessionStore) SetGenerationState(ctx context.Context, id string, update domain.StateUpdate) (domain.GenerationState, error) {
	var state domain.GenerationState
	var violation error
	err := s.update(ctx, id, func(sess *domain.Session) bool {
		next := update.Apply(sess.State)
		if next.HasGenerated && sess.ItemCount() == 0 {
			violation = fmt.Errorf("%w: session %s has no generated items", domain.ErrInvariantViolation, id)
			state = sess.State
			return false
		}
		sess.State = next
		state = next
		return true
	})
	if err == nil {
		err = violation
	}
	return state, err
}

// StoreGeneratedContent replaces one category's items. HasGenerated is only
// raised when the stored list is non-empty, and dropped when no items remain.
func (s *SessionStore) StoreGeneratedContent(ctx context.Context, id string, category domain.Category, items []domain.ContentItem) error {
	if !domain.ValidCategory(category) {
		return fmt.Errorf("unknown content category %q", category)
	}
	return s.update(ctx, id, func(sess *domain.Session) bool {
		sess.Content[category] = slices.Clone(items)
		switch {
		case len(items) > 0:
			sess.State.HasGenerated = true
		case sess.ItemCount() == 0:
			sess.State.HasGenerated = false
		}
		return true
	})
}

func (s *SessionStore) StoreSuggestions(ctx context.Context, id string, raw map[string]any) error {
	return s.update(ctx, id, func(sess *domain.Session) bool {
		sess.LastSuggestions = maps.Clone(raw)
		return true
	})
}

// Snapshot is the read accessor for export. Unknown ids yield ErrNotFound.
func (s *SessionStore) Snapshot(ctx context.Context, id string) (domain.Snapshot, error) {
	sess, err := s.Get(ctx, id)
	if err != nil {
		return domain.Snapshot{}, err
	}
	return sess.Snapshot(), nil
}

func (s *SessionStore) Summary(ctx context.Context, id string) (Summary, error) {
	sess, err := s.Get(ctx, id)
	if err != nil {
		return Summary{}, err
	}
	return summarize(sess), nil
}

// List returns summaries ordered by most recent activity first.
func (s *SessionStore) List(ctx context.Context) ([]Summary, error) {
	ids, err := s.backend.ids(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing sessions: %w", err)
	}
	out := make([]Summary, 0, len(ids))
	for _, id := range ids {
		sess, err := s.backend.load(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("loading session %s: %w", id, err)
		}
		if sess == nil {
			continue
		}
		out = append(out, summarize(sess))
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].UpdatedAt.After(out[j].UpdatedAt)
	})
	return out, nil
}

func (s *SessionStore) Clear(ctx context.Context, id string) error {
	unlock := s.locks.Lock(id)
	defer unlock()
	if err := s.backend.remove(ctx, id); err != nil {
		return fmt.Errorf("clearing session %s: %w", id, err)
	}
	return nil
}

func (s *SessionStore) ClearAll(ctx context.Context) error {
	if err := s.backend.removeAll(ctx); err != nil {
		return fmt.Errorf("clearing sessions: %w", err)
	}
	return nil
}

func (s *SessionStore) Count(ctx context.Context) (int, error) {
	ids, err := s.backend.ids(ctx)
	if err != nil {
		return 0, fmt.Errorf("counting sessions: %w", err)
	}
	return len(ids), nil
}

// update runs fn on the stored session under the per-id lock, creating the
// session first if needed. fn returns whether the session should be saved.
func (s *SessionStore) update(ctx context.Context, id string, fn func(*domain.Session) bool) error {
	if id == "" {
		return errors.New("session id is required")
	}
	unlock := s.locks.Lock(id)
	defer unlock()

	sess, err := s.backend.load(ctx, id)
	if err != nil {
		return fmt.Errorf("loading session %s: %w", id, err)
	}
	created := sess == nil
	if created {
		sess = domain.NewSession(id, s.now())
	}
	normalize(sess)

	if !fn(sess) && !created {
		return nil
	}
	sess.UpdatedAt = s.now()
	if err := s.backend.save(ctx, sess); err != nil {
		return fmt.Errorf("saving session %s: %w", id, err)
	}
	return nil
}

// normalize fills nil maps, which appear after decoding older documents.
func normalize(sess *domain.Session) {
	if sess.Fields == nil {
		sess.Fields = domain.Fields{}
	}
	if sess.Content == nil {
		sess.Content = map[domain.Category][]domain.ContentItem{}
	}
	if sess.State.Stage == "" {
		sess.State.Stage = domain.StageGreeting
	}
}

func summarize(sess *domain.Session) Summary {
	counts := make(map[domain.Category]int, len(domain.Categories))
	for _, c := range domain.Categories {
		counts[c] = len(sess.Content[c])
	}
	return Summary{
		ID:           sess.ID,
		MessageCount: sess.MessageCount,
		FieldCount:   len(sess.Fields),
		Stage:        sess.State.Stage,
		HasGenerated: sess.State.HasGenerated,
		ItemCounts:   counts,
		UpdatedAt:    sess.UpdatedAt,
	}
}
