package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/alexanderramin/eventwise/internal/db"
	"github.com/alexanderramin/eventwise/internal/domain"
)

// SQLiteChatRepo implements ChatRepo.
type SQLiteChatRepo struct {
	db db.DBTX
}

func NewSQLiteChatRepo(db db.DBTX) *SQLiteChatRepo {
	return &SQLiteChatRepo{db: db}
}

func (r *SQLiteChatRepo) Upsert(ctx context.Context, c *domain.Chat) error {
	created := c.CreatedAt
	updated := c.UpdatedAt
	query := `INSERT INTO chats (id, title, stage, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			title = CASE WHEN excluded.title = '' THEN chats.title ELSE excluded.title END,
			stage = excluded.stage,
			updated_at = excluded.updated_at`
	stage := domain.Coalesce(c.Stage, domain.StageGreeting)
	_, err := r.db.ExecContext(ctx, query, c.ID, c.Title, string(stage), formatTime(created), formatTime(updated))
	if err != nil {
		return fmt.Errorf("upserting chat: %w", err)
	}
	return nil
}

func (r *SQLiteChatRepo) GetByID(ctx context.Context, id string) (*domain.Chat, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT id, title, stage, created_at, updated_at FROM chats WHERE id = ?`, id)
	c, err := scanChat(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("chat %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("scanning chat: %w", err)
	}
	return c, nil
}

// List returns the most recently updated chats first. limit <= 0 means all.
func (r *SQLiteChatRepo) List(ctx context.Context, limit int) ([]*domain.Chat, error) {
	query := `SELECT id, title, stage, created_at, updated_at FROM chats ORDER BY updated_at DESC, id`
	args := []any{}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing chats: %w", err)
	}
	defer rows.Close()

	var chats []*domain.Chat
	for rows.Next() {
		c, err := scanChat(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning chat: %w", err)
		}
		chats = append(chats, c)
	}
	return chats, rows.Err()
}

func (r *SQLiteChatRepo) Delete(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM chats WHERE id = ?`, id); err != nil {
		return fmt.Errorf("deleting chat: %w", err)
	}
	return nil
}

func (r *SQLiteChatRepo) DeleteAll(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM chats`); err != nil {
		return fmt.Errorf("deleting chats: %w", err)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanChat(row rowScanner) (*domain.Chat, error) {
	var (
		c                  domain.Chat
		stage              string
		created, updatedAt string
	)
	if err := row.Scan(&c.ID, &c.Title, &stage, &created, &updatedAt); err != nil {
		return nil, err
	}
	c.Stage = domain.Stage(stage)
	c.CreatedAt = parseTime(created)
	c.UpdatedAt = parseTime(updatedAt)
	return &c, nil
}
