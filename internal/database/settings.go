package database

import (
	"context"
	"database/sql"
	"fmt"

	"salonq/internal/models"
)

// SeedSettings makes sure the singleton row exists. A non-empty adminCode is
// written only when no code is stored yet.
func (db *DB) SeedSettings(ctx context.Context, adminCode string) error {
	ts := now()
	_, err := db.ExecContext(ctx,
		`INSERT OR IGNORE INTO settings (id, bot_active, admin_code, updated_at) VALUES (?, 1, ?, ?)`,
		models.SettingsID, adminCode, ts)
	if err != nil {
		return fmt.Errorf("failed to seed settings: %w", err)
	}
	if adminCode == "" {
		return nil
	}
	_, err = db.ExecContext(ctx,
		`UPDATE settings SET admin_code = ?, updated_at = ? WHERE id = ? AND admin_code = ''`,
		adminCode, ts, models.SettingsID)
	if err != nil {
		return fmt.Errorf("failed to seed admin code: %w", err)
	}
	return nil
}

func (db *DB) GetSettings(ctx context.Context) (*models.Settings, error) {
	var (
		s         models.Settings
		updatedAt sql.NullTime
	)
	err := db.QueryRowContext(ctx,
		`SELECT id, bot_active, admin_code, updated_at FROM settings WHERE id = ?`,
		models.SettingsID).Scan(&s.ID, &s.BotActive, &s.AdminCode, &updatedAt)
	if err != nil {
		return nil, notFound(err)
	}
	s.UpdatedAt = updatedAt.Time
	return &s, nil
}

func (db *DB) SetBotActive(ctx context.Context, active bool) error {
	result, err := db.ExecContext(ctx,
		`UPDATE settings SET bot_active = ?, updated_at = ? WHERE id = ?`, active, now(), models.SettingsID)
	if err != nil {
		return fmt.Errorf("failed to set bot_active: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return ErrNotFound
	}
	return nil
}

// ToggleBotActive flips bot_active and returns the new value. A missing settings
// row counts as active, so the first toggle deactivates.
func (db *DB) ToggleBotActive(ctx context.Context) (bool, error) {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	ts := now()
	if _, err := tx.ExecContext(ctx,
		`INSERT OR IGNORE INTO settings (id, bot_active, admin_code, updated_at) VALUES (?, 1, '', ?)`,
		models.SettingsID, ts); err != nil {
		return false, fmt.Errorf("failed to ensure settings in tx: %w", err)
	}

	var active bool
	if err := tx.QueryRowContext(ctx,
		`SELECT bot_active FROM settings WHERE id = ?`, models.SettingsID).Scan(&active); err != nil {
		return false, fmt.Errorf("failed to read bot_active in tx: %w", err)
	}

	active = !active
	if _, err := tx.ExecContext(ctx,
		`UPDATE settings SET bot_active = ?, updated_at = ? WHERE id = ?`, active, ts, models.SettingsID); err != nil {
		return false, fmt.Errorf("failed to update bot_active in tx: %w", err)
	}

	return active, tx.Commit()
}
