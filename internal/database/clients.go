package database

import (
	"context"
	"fmt"

	"salonq/internal/models"
)

// UpsertClient registers the phone or refreshes its last_seen_at.
func (db *DB) UpsertClient(ctx context.Context, phone string) error {
	query := `INSERT INTO clients (phone, created_at, last_seen_at) VALUES (?, ?, ?)
              ON CONFLICT(phone) DO UPDATE SET last_seen_at = excluded.last_seen_at`
	ts := now()
	if _, err := db.ExecContext(ctx, query, phone, ts, ts); err != nil {
		return fmt.Errorf("failed to upsert client: %w", err)
	}
	return nil
}

func (db *DB) GetClientByPhone(ctx context.Context, phone string) (*models.Client, error) {
	query := `SELECT id, phone, created_at, last_seen_at FROM clients WHERE phone = ?`
	var c models.Client
	err := db.QueryRowContext(ctx, query, phone).Scan(&c.ID, &c.Phone, &c.CreatedAt, &c.LastSeenAt)
	if err != nil {
		return nil, notFound(err)
	}
	return &c, nil
}
