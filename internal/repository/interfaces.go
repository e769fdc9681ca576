package repository

import (
	"context"

	"github.com/alexanderramin/eventwise/internal/domain"
)

type ChatRepo interface {
	// Upsert creates the chat or refreshes its title, stage and updated_at.
	// An empty title never replaces an existing one.
	Upsert(ctx context.Context, c *domain.Chat) error
	GetByID(ctx context.Context, id string) (*domain.Chat, error)
	List(ctx context.Context, limit int) ([]*domain.Chat, error)
	Delete(ctx context.Context, id string) error
	DeleteAll(ctx context.Context) error
}

type MessageRepo interface {
	// Append stores m with the next sequence number for its chat.
	Append(ctx context.Context, m *domain.ChatMessage) error
	ListByChat(ctx context.Context, chatID string) ([]*domain.ChatMessage, error)
}

type ContentRepo interface {
	// ReplaceCategory swaps a chat's stored items for one category.
	ReplaceCategory(ctx context.Context, chatID string, category domain.Category, items []domain.ContentItem) error
	ListByChat(ctx context.Context, chatID string) (map[domain.Category][]domain.ContentItem, error)
}
