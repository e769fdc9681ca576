package session

import (
	"context"
	"fmt"
	"math/rand/v2"
	"slices"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alexanderramin/eventwise/internal/domain"
)

func TestMemoryStore_GetOrCreateIsLazy(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	count, err := store.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, count)

	sess, err := store.GetOrCreate(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, "s1", sess.ID)
	assert.Equal(t, domain.StageGreeting, sess.State.Stage)
	assert.Empty(t, sess.Fields)

	count, err = store.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestMemoryStore_GetUnknownIsNotFound(t *testing.T) {
	store := NewMemoryStore()

	_, err := store.Get(context.Background(), "nope")
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = store.Snapshot(context.Background(), "nope")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryStore_ReturnsCopies(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	_, err := store.MergeExtractedFields(ctx, "s1", map[string]any{"event_type": "wedding"})
	require.NoError(t, err)

	sess, err := store.GetOrCreate(ctx, "s1")
	require.NoError(t, err)
	sess.Fields["event_type"] = "tampered"

	again, err := store.Get(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, "wedding", again.Fields["event_type"])
}

func TestMemoryStore_MergeNeverDowngrades(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	_, err := store.MergeExtractedFields(ctx, "s1", map[string]any{
		"event_type": "wedding",
		"location":   "Nairobi",
	})
	require.NoError(t, err)

	merged, err := store.MergeExtractedFields(ctx, "s1", map[string]any{
		"event_type":           nil,
		"location":             "  ",
		"budget":               "null",
		"dietary_restrictions": []any{},
		"guest_count":          50,
	})
	require.NoError(t, err)

	assert.Equal(t, domain.Fields{
		"event_type":  "wedding",
		"location":    "Nairobi",
		"guest_count": 50,
	}, merged)
}

func TestMemoryStore_MergeLastNonNullWins(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	_, err := store.MergeExtractedFields(ctx, "s1", map[string]any{"location": "Nairobi"})
	require.NoError(t, err)
	merged, err := store.MergeExtractedFields(ctx, "s1", map[string]any{"location": "Mombasa"})
	require.NoError(t, err)

	assert.Equal(t, "Mombasa", merged["location"])
}

func TestMemoryStore_MergeProperty(t *testing.T) {
	ctx := context.Background()
	rng := rand.New(rand.NewPCG(42, 7))
	keys := []string{"event_type", "location", "guest_count", "budget", "meal_type"}
	values := []any{nil, "", "null", "   ", []any{}, "wedding", "Nairobi", 40, "dinner", []any{"vegan"}}

	for run := range 50 {
		store := NewMemoryStore()
		id := fmt.Sprintf("s%d", run)
		expected := map[string]any{}

		for range 30 {
			batch := map[string]any{}
			for _, k := range keys {
				if rng.IntN(2) == 0 {
					batch[k] = values[rng.IntN(len(values))]
				}
			}
			merged, err := store.MergeExtractedFields(ctx, id, batch)
			require.NoError(t, err)

			for k, v := range batch {
				if !domain.IsEmptyValue(v) {
					expected[k] = v
				}
			}
			for k, v := range expected {
				assert.Equal(t, v, merged[k], "run %d key %s", run, k)
			}
			assert.Len(t, merged, len(expected))
		}
	}
}

func TestMemoryStore_HistoryWindow(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	for i := range 5 {
		role := domain.RoleUser
		if i%2 == 1 {
			role = domain.RoleAssistant
		}
		require.NoError(t, store.AppendMessage(ctx, "s1", role, fmt.Sprintf("m%d", i)))
	}

	window, err := store.HistoryWindow(ctx, "s1", 3)
	require.NoError(t, err)

	contents := func() []string {
		var out []string
		for m := range window {
			out = append(out, m.Content)
		}
		return out
	}
	assert.Equal(t, []string{"m2", "m3", "m4"}, contents())
	assert.Equal(t, []string{"m2", "m3", "m4"}, contents(), "window must be restartable")

	all, err := store.HistoryWindow(ctx, "s1", 0)
	require.NoError(t, err)
	assert.Len(t, slices.Collect(all), 5)

	longer, err := store.HistoryWindow(ctx, "s1", 50)
	require.NoError(t, err)
	assert.Len(t, slices.Collect(longer), 5)

	empty, err := store.HistoryWindow(ctx, "unknown", 10)
	require.NoError(t, err)
	assert.Empty(t, slices.Collect(empty))

	sess, err := store.Get(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, 5, sess.MessageCount)
}

func TestMemoryStore_HistoryWindowIsDetachedFromLaterAppends(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	require.NoError(t, store.AppendMessage(ctx, "s1", domain.RoleUser, "first"))

	window, err := store.HistoryWindow(ctx, "s1", 10)
	require.NoError(t, err)
	require.NoError(t, store.AppendMessage(ctx, "s1", domain.RoleAssistant, "second"))

	assert.Len(t, slices.Collect(window), 1)
}

func TestMemoryStore_SetGenerationStateShallowMerge(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	_, err := store.SetGenerationState(ctx, "s1", domain.StateUpdate{
		AwaitingConfirmation: domain.Ptr(true),
		Stage:                domain.Ptr(domain.StageAwaitingConfirmation),
	})
	require.NoError(t, err)

	state, err := store.SetGenerationState(ctx, "s1", domain.StateUpdate{
		UserConfirmedGeneration: domain.Ptr(true),
	})
	require.NoError(t, err)

	assert.True(t, state.AwaitingConfirmation)
	assert.True(t, state.UserConfirmedGeneration)
	assert.Equal(t, domain.StageAwaitingConfirmation, state.Stage)
}

func TestMemoryStore_HasGeneratedWithoutItemsRejected(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	_, err := store.SetGenerationState(ctx, "s1", domain.StateUpdate{HasGenerated: domain.Ptr(true)})
	require.ErrorIs(t, err, domain.ErrInvariantViolation)

	sess, err := store.Get(ctx, "s1")
	require.NoError(t, err)
	assert.False(t, sess.State.HasGenerated)
}

func TestMemoryStore_StoreGeneratedContent(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	require.NoError(t, store.StoreGeneratedContent(ctx, "s1", domain.CategoryMusic, nil))
	sess, err := store.Get(ctx, "s1")
	require.NoError(t, err)
	assert.False(t, sess.State.HasGenerated, "empty list must not mark generated")

	items := []domain.ContentItem{{ID: "v1", Category: domain.CategoryVenues, Title: "Garden"}}
	require.NoError(t, store.StoreGeneratedContent(ctx, "s1", domain.CategoryVenues, items))
	sess, err = store.Get(ctx, "s1")
	require.NoError(t, err)
	assert.True(t, sess.State.HasGenerated)
	assert.Equal(t, 1, sess.ItemCount())

	require.NoError(t, store.StoreGeneratedContent(ctx, "s1", domain.CategoryVenues, nil))
	sess, err = store.Get(ctx, "s1")
	require.NoError(t, err)
	assert.False(t, sess.State.HasGenerated, "removing the last items drops the flag")

	err = store.StoreGeneratedContent(ctx, "s1", domain.Category("videos"), items)
	assert.Error(t, err)
}

func TestMemoryStore_SummaryListAndClear(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	clock := time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC)
	store.now = func() time.Time {
		clock = clock.Add(time.Second)
		return clock
	}

	require.NoError(t, store.AppendMessage(ctx, "a", domain.RoleUser, "hi"))
	require.NoError(t, store.AppendMessage(ctx, "b", domain.RoleUser, "hello"))
	require.NoError(t, store.StoreGeneratedContent(ctx, "b", domain.CategoryFood, []domain.ContentItem{{ID: "f1"}}))
	require.NoError(t, store.StoreSuggestions(ctx, "b", map[string]any{"event_type": "gala"}))

	summary, err := store.Summary(ctx, "b")
	require.NoError(t, err)
	assert.Equal(t, 1, summary.MessageCount)
	assert.True(t, summary.HasGenerated)
	assert.Equal(t, 1, summary.ItemCounts[domain.CategoryFood])
	assert.Equal(t, 0, summary.ItemCounts[domain.CategoryImages])

	list, err := store.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "b", list[0].ID, "most recently updated first")

	require.NoError(t, store.Clear(ctx, "a"))
	count, err := store.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	require.NoError(t, store.ClearAll(ctx))
	count, err = store.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, count)
}

func TestMemoryStore_ConcurrentAppendsAcrossSessions(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	var wg sync.WaitGroup
	for s := range 8 {
		id := fmt.Sprintf("s%d", s)
		for range 25 {
			wg.Add(1)
			go func() {
				defer wg.Done()
				assert.NoError(t, store.AppendMessage(ctx, id, domain.RoleUser, "x"))
				_, err := store.MergeExtractedFields(ctx, id, map[string]any{"event_type": "party"})
				assert.NoError(t, err)
			}()
		}
	}
	wg.Wait()

	for s := range 8 {
		sess, err := store.Get(ctx, fmt.Sprintf("s%d", s))
		require.NoError(t, err)
		assert.Len(t, sess.History, 25)
		assert.Equal(t, 25, sess.MessageCount)
	}
}

func TestMemoryStore_EmptyIDRejected(t *testing.T) {
	err := NewMemoryStore().AppendMessage(context.Background(), "", domain.RoleUser, "hi")
	assert.Error(t, err)
}
