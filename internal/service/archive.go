package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/alexanderramin/eventwise/internal/app"
	"github.com/alexanderramin/eventwise/internal/db"
	"github.com/alexanderramin/eventwise/internal/domain"
	"github.com/alexanderramin/eventwise/internal/repository"
	"github.com/google/uuid"
)

// ErrArchiveDisabled is returned by history reads when no archive is configured.
var ErrArchiveDisabled = errors.New("chat archive disabled")

// ChatArchive records conversations for later browsing. The turn service
// treats every write as best-effort.
type ChatArchive interface {
	app.ChatHistoryUseCase
	// RecordMessages appends messages to chatID, creating the chat on first
	// use with a title taken from the first user message.
	RecordMessages(ctx context.Context, chatID string, stage domain.Stage, msgs ...domain.Message) error
	// RecordContent replaces the archived items of every category in content.
	RecordContent(ctx context.Context, chatID string, stage domain.Stage, content map[domain.Category][]domain.ContentItem) error
}

type chatArchive struct {
	db  db.DBTX
	uow db.UnitOfWork
	now func() time.Time
}

// NewChatArchive returns an archive over the sqlite chat tables.
func NewChatArchive(database db.DBTX, uow db.UnitOfWork) ChatArchive {
	return &chatArchive{
		db:  database,
		uow: uow,
		now: func() time.Time { return time.Now().UTC() },
	}
}

func (a *chatArchive) CreateChat(ctx context.Context, title string) (*domain.Chat, error) {
	now := a.now()
	chat := &domain.Chat{
		ID:        uuid.NewString(),
		Title:     domain.Coalesce(title, "New event"),
		Stage:     domain.StageGreeting,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := repository.NewSQLiteChatRepo(a.db).Upsert(ctx, chat); err != nil {
		return nil, err
	}
	return chat, nil
}

func (a *chatArchive) ListChats(ctx context.Context, limit int) ([]*domain.Chat, error) {
	return repository.NewSQLiteChatRepo(a.db).List(ctx, limit)
}

func (a *chatArchive) GetChat(ctx context.Context, id string) (*app.ChatTranscript, error) {
	chat, err := repository.NewSQLiteChatRepo(a.db).GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	msgs, err := repository.NewSQLiteMessageRepo(a.db).ListByChat(ctx, id)
	if err != nil {
		return nil, err
	}
	return &app.ChatTranscript{Chat: chat, Messages: msgs}, nil
}

func (a *chatArchive) DeleteChat(ctx context.Context, id string) error {
	return repository.NewSQLiteChatRepo(a.db).Delete(ctx, id)
}

func (a *chatArchive) DeleteAll(ctx context.Context) error {
	return repository.NewSQLiteChatRepo(a.db).DeleteAll(ctx)
}

func (a *chatArchive) RecordMessages(ctx context.Context, chatID string, stage domain.Stage, msgs ...domain.Message) error {
	return a.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		if err := a.touchChat(ctx, tx, chatID, stage, msgs); err != nil {
			return err
		}
		messages := repository.NewSQLiteMessageRepo(tx)
		for _, m := range msgs {
			if err := messages.Append(ctx, &domain.ChatMessage{
				ChatID:    chatID,
				Role:      m.Role,
				Content:   m.Content,
				CreatedAt: m.Timestamp,
			}); err != nil {
				return err
			}
		}
		return nil
	})
}

func (a *chatArchive) RecordContent(ctx context.Context, chatID string, stage domain.Stage, content map[domain.Category][]domain.ContentItem) error {
	return a.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		if err := a.touchChat(ctx, tx, chatID, stage, nil); err != nil {
			return err
		}
		items := repository.NewSQLiteContentRepo(tx)
		for _, c := range domain.Categories {
			list, ok := content[c]
			if !ok {
				continue
			}
			if err := items.ReplaceCategory(ctx, chatID, c, list); err != nil {
				return err
			}
		}
		return nil
	})
}

// touchChat creates the chat if needed and moves its stage and updated_at.
func (a *chatArchive) touchChat(ctx context.Context, tx db.DBTX, chatID string, stage domain.Stage, msgs []domain.Message) error {
	chats := repository.NewSQLiteChatRepo(tx)
	now := a.now()
	chat := &domain.Chat{ID: chatID, Stage: stage, CreatedAt: now, UpdatedAt: now}

	_, err := chats.GetByID(ctx, chatID)
	switch {
	case errors.Is(err, repository.ErrNotFound):
		chat.Title = "New event"
		for _, m := range msgs {
			if m.Role == domain.RoleUser {
				chat.Title = domain.ChatTitle(m.Content)
				break
			}
		}
	case err != nil:
		return fmt.Errorf("loading archived chat: %w", err)
	}
	return chats.Upsert(ctx, chat)
}

// NoopArchive is used when archiving is disabled. Writes succeed and reads
// report ErrArchiveDisabled.
type NoopArchive struct{}

func (NoopArchive) CreateChat(context.Context, string) (*domain.Chat, error) {
	now := time.Now().UTC()
	return &domain.Chat{ID: uuid.NewString(), Title: "New event", Stage: domain.StageGreeting, CreatedAt: now, UpdatedAt: now}, nil
}

func (NoopArchive) ListChats(context.Context, int) ([]*domain.Chat, error) {
	return nil, ErrArchiveDisabled
}

func (NoopArchive) GetChat(context.Context, string) (*app.ChatTranscript, error) {
	return nil, ErrArchiveDisabled
}

func (NoopArchive) DeleteChat(context.Context, string) error { return nil }
func (NoopArchive) DeleteAll(context.Context) error          { return nil }

func (NoopArchive) RecordMessages(context.Context, string, domain.Stage, ...domain.Message) error {
	return nil
}

func (NoopArchive) RecordContent(context.Context, string, domain.Stage, map[domain.Category][]domain.ContentItem) error {
	return nil
}
