package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/alexanderramin/eventwise/internal/db"
	"github.com/alexanderramin/eventwise/internal/domain"
	"github.com/google/uuid"
)

// SQLiteMessageRepo implements MessageRepo.
type SQLiteMessageRepo struct {
	db db.DBTX
}

func NewSQLiteMessageRepo(db db.DBTX) *SQLiteMessageRepo {
	return &SQLiteMessageRepo{db: db}
}

// Append fills in ID, Seq and CreatedAt when they are unset.
func (r *SQLiteMessageRepo) Append(ctx context.Context, m *domain.ChatMessage) error {
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	if m.CreatedAt.IsZero() {
		m.CreatedAt = time.Now().UTC()
	}

	var seq int
	err := r.db.QueryRowContext(ctx,
		`SELECT COALESCE(MAX(seq), 0) + 1 FROM messages WHERE chat_id = ?`, m.ChatID).Scan(&seq)
	if err != nil {
		return fmt.Errorf("allocating message seq: %w", err)
	}
	m.Seq = seq

	_, err = r.db.ExecContext(ctx,
		`INSERT INTO messages (id, chat_id, seq, role, content, created_at) VALUES (?, ?, ?, ?, ?, ?)`,
		m.ID, m.ChatID, m.Seq, string(m.Role), m.Content, formatTime(m.CreatedAt))
	if err != nil {
		return fmt.Errorf("inserting message: %w", err)
	}
	return nil
}

func (r *SQLiteMessageRepo) ListByChat(ctx context.Context, chatID string) ([]*domain.ChatMessage, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, chat_id, seq, role, content, created_at FROM messages WHERE chat_id = ? ORDER BY seq`, chatID)
	if err != nil {
		return nil, fmt.Errorf("listing messages: %w", err)
	}
	defer rows.Close()

	var out []*domain.ChatMessage
	for rows.Next() {
		var (
			m             domain.ChatMessage
			role, created string
		)
		if err := rows.Scan(&m.ID, &m.ChatID, &m.Seq, &role, &m.Content, &created); err != nil {
			return nil, fmt.Errorf("scanning message: %w", err)
		}
		m.Role = domain.Role(role)
		m.CreatedAt = parseTime(created)
		out = append(out, &m)
	}
	return out, rows.Err()
}
