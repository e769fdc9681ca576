package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/alexanderramin/eventwise/internal/db"
	"github.com/alexanderramin/eventwise/internal/domain"
)

// SQLiteContentRepo implements ContentRepo. Item metadata is stored as JSON.
type SQLiteContentRepo struct {
	db db.DBTX
}

func NewSQLiteContentRepo(db db.DBTX) *SQLiteContentRepo {
	return &SQLiteContentRepo{db: db}
}

// ReplaceCategory should run inside a UnitOfWork so the delete and the
// inserts land together.
func (r *SQLiteContentRepo) ReplaceCategory(ctx context.Context, chatID string, category domain.Category, items []domain.ContentItem) error {
	if !domain.ValidCategory(category) {
		return fmt.Errorf("unknown content category %q", category)
	}
	if _, err := r.db.ExecContext(ctx,
		`DELETE FROM generated_items WHERE chat_id = ? AND category = ?`, chatID, string(category)); err != nil {
		return fmt.Errorf("clearing %s items: %w", category, err)
	}

	now := nowUTC()
	for i, it := range items {
		meta, err := json.Marshal(it.Metadata)
		if err != nil {
			return fmt.Errorf("encoding item metadata: %w", err)
		}
		if it.Metadata == nil {
			meta = []byte("{}")
		}
		_, err = r.db.ExecContext(ctx,
			`INSERT INTO generated_items
				(id, chat_id, category, position, title, description, url, thumbnail_url, source, metadata, created_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			it.ID, chatID, string(category), i, it.Title, it.Description, it.URL, it.ThumbnailURL, it.Source, string(meta), now)
		if err != nil {
			return fmt.Errorf("inserting %s item: %w", category, err)
		}
	}
	return nil
}

func (r *SQLiteContentRepo) ListByChat(ctx context.Context, chatID string) (map[domain.Category][]domain.ContentItem, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, category, title, description, url, thumbnail_url, source, metadata
		FROM generated_items WHERE chat_id = ? ORDER BY category, position`, chatID)
	if err != nil {
		return nil, fmt.Errorf("listing generated items: %w", err)
	}
	defer rows.Close()

	out := map[domain.Category][]domain.ContentItem{}
	for rows.Next() {
		var (
			it       domain.ContentItem
			category string
			meta     string
		)
		if err := rows.Scan(&it.ID, &category, &it.Title, &it.Description, &it.URL, &it.ThumbnailURL, &it.Source, &meta); err != nil {
			return nil, fmt.Errorf("scanning generated item: %w", err)
		}
		it.Category = domain.Category(category)
		if meta != "" && meta != "{}" && meta != "null" {
			if err := json.Unmarshal([]byte(meta), &it.Metadata); err != nil {
				return nil, fmt.Errorf("decoding item metadata: %w", err)
			}
		}
		out[it.Category] = append(out[it.Category], it)
	}
	return out, rows.Err()
}
