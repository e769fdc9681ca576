package repository

import (
	"context"
	"testing"

	"github.com/alexanderramin/eventwise/internal/domain"
	"github.com/alexanderramin/eventwise/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestContentRepo_ReplaceCategory(t *testing.T) {
	db := testutil.NewTestDB(t)
	chats := NewSQLiteChatRepo(db)
	repo := NewSQLiteContentRepo(db)
	ctx := context.Background()

	chat := testutil.NewTestChat()
	require.NoError(t, chats.Upsert(ctx, chat))

	venues := testutil.NewTestItems(domain.CategoryVenues, 3)
	venues[0].Metadata = map[string]any{"address": "Beach Rd"}
	require.NoError(t, repo.ReplaceCategory(ctx, chat.ID, domain.CategoryVenues, venues))
	require.NoError(t, repo.ReplaceCategory(ctx, chat.ID, domain.CategoryFood, testutil.NewTestItems(domain.CategoryFood, 1)))

	got, err := repo.ListByChat(ctx, chat.ID)
	require.NoError(t, err)
	require.Len(t, got[domain.CategoryVenues], 3)
	assert.Len(t, got[domain.CategoryFood], 1)
	assert.Equal(t, venues[0].ID, got[domain.CategoryVenues][0].ID)
	assert.Equal(t, "Beach Rd", got[domain.CategoryVenues][0].Metadata["address"])
	assert.Nil(t, got[domain.CategoryVenues][1].Metadata)

	replacement := testutil.NewTestItems(domain.CategoryVenues, 1)
	require.NoError(t, repo.ReplaceCategory(ctx, chat.ID, domain.CategoryVenues, replacement))

	got, err = repo.ListByChat(ctx, chat.ID)
	require.NoError(t, err)
	require.Len(t, got[domain.CategoryVenues], 1)
	assert.Equal(t, replacement[0].ID, got[domain.CategoryVenues][0].ID)
	assert.Len(t, got[domain.CategoryFood], 1, "other categories untouched")
}

func TestContentRepo_ReplaceCategory_RejectsUnknownCategory(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := NewSQLiteContentRepo(db)

	err := repo.ReplaceCategory(context.Background(), "chat", domain.Category("gifts"), nil)
	assert.Error(t, err)
}
