package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"salonq/internal/models"
)

const entryColumns = `id, phone, status, priority, created_at, notified_at, completed_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanEntry(row rowScanner) (*models.QueueEntry, error) {
	var (
		e           models.QueueEntry
		priority    sql.NullInt64
		notifiedAt  sql.NullTime
		completedAt sql.NullTime
	)
	if err := row.Scan(&e.ID, &e.Phone, &e.Status, &priority, &e.CreatedAt, &notifiedAt, &completedAt); err != nil {
		return nil, err
	}

	var p *int64
	if priority.Valid {
		p = &priority.Int64
	}
	e.Priority = models.PriorityFromStore(p)
	if notifiedAt.Valid {
		t := notifiedAt.Time
		e.NotifiedAt = &t
	}
	if completedAt.Valid {
		t := completedAt.Time
		e.CompletedAt = &t
	}
	return &e, nil
}

func (db *DB) queryEntries(ctx context.Context, query string, args ...any) ([]models.QueueEntry, error) {
	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	entries := []models.QueueEntry{}
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan queue entry: %w", err)
		}
		entries = append(entries, *e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return entries, nil
}

func notFound(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	return err
}

// CreateEntry inserts the entry as given. CreatedAt defaults to now.
func (db *DB) CreateEntry(ctx context.Context, entry *models.QueueEntry) error {
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = now()
	}
	if entry.Status == "" {
		entry.Status = models.StatusWaiting
	}

	query := `INSERT INTO queue_entries (phone, status, priority, created_at, notified_at, completed_at)
              VALUES (?, ?, ?, ?, ?, ?)`
	result, err := db.ExecContext(ctx, query,
		entry.Phone,
		entry.Status,
		models.PriorityToStore(entry.Priority),
		entry.CreatedAt,
		entry.NotifiedAt,
		entry.CompletedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create queue entry: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}
	entry.ID = id
	return nil
}

// CreateWaitingEntry enqueues the phone unless it already waits.
// On ErrAlreadyWaiting the existing entry is returned alongside the error.
func (db *DB) CreateWaitingEntry(ctx context.Context, phone string) (*models.QueueEntry, error) {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	row := tx.QueryRowContext(ctx,
		`SELECT `+entryColumns+` FROM queue_entries WHERE phone = ? AND status = ? ORDER BY id LIMIT 1`,
		phone, models.StatusWaiting)
	existing, err := scanEntry(row)
	if err == nil {
		return existing, ErrAlreadyWaiting
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("failed to check waiting entry in tx: %w", err)
	}

	entry := &models.QueueEntry{
		Phone:     phone,
		Status:    models.StatusWaiting,
		CreatedAt: now(),
	}
	result, err := tx.ExecContext(ctx,
		`INSERT INTO queue_entries (phone, status, priority, created_at) VALUES (?, ?, 0, ?)`,
		entry.Phone, entry.Status, entry.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to insert queue entry in tx: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("failed to get last insert id in tx: %w", err)
	}
	entry.ID = id

	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return entry, nil
}

func (db *DB) GetEntry(ctx context.Context, id int64) (*models.QueueEntry, error) {
	row := db.QueryRowContext(ctx, `SELECT `+entryColumns+` FROM queue_entries WHERE id = ?`, id)
	e, err := scanEntry(row)
	if err != nil {
		return nil, notFound(err)
	}
	return e, nil
}

// GetWaitingEntryByPhone returns the phone's current waiting entry.
func (db *DB) GetWaitingEntryByPhone(ctx context.Context, phone string) (*models.QueueEntry, error) {
	row := db.QueryRowContext(ctx,
		`SELECT `+entryColumns+` FROM queue_entries WHERE phone = ? AND status = ? ORDER BY id LIMIT 1`,
		phone, models.StatusWaiting)
	e, err := scanEntry(row)
	if err != nil {
		return nil, notFound(err)
	}
	return e, nil
}

// GetWaitingEntries returns waiting entries in insertion order.
func (db *DB) GetWaitingEntries(ctx context.Context) ([]models.QueueEntry, error) {
	entries, err := db.queryEntries(ctx,
		`SELECT `+entryColumns+` FROM queue_entries WHERE status = ? ORDER BY id`,
		models.StatusWaiting)
	if err != nil {
		return nil, fmt.Errorf("failed to get waiting entries: %w", err)
	}
	return entries, nil
}

func (db *DB) CountWaiting(ctx context.Context) (int, error) {
	var count int
	err := db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM queue_entries WHERE status = ?`, models.StatusWaiting).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count waiting entries: %w", err)
	}
	return count, nil
}

// OldestWaiting returns the earliest created waiting entry, priority ignored.
func (db *DB) OldestWaiting(ctx context.Context) (*models.QueueEntry, error) {
	row := db.QueryRowContext(ctx,
		`SELECT `+entryColumns+` FROM queue_entries WHERE status = ? ORDER BY created_at ASC, id ASC LIMIT 1`,
		models.StatusWaiting)
	e, err := scanEntry(row)
	if err != nil {
		return nil, notFound(err)
	}
	return e, nil
}

// GetEntries returns every entry created in [from, to], any status.
func (db *DB) GetEntries(ctx context.Context, from, to time.Time) ([]models.QueueEntry, error) {
	entries, err := db.queryEntries(ctx,
		`SELECT `+entryColumns+` FROM queue_entries WHERE created_at >= ? AND created_at <= ? ORDER BY created_at, id`,
		from.UTC(), to.UTC())
	if err != nil {
		return nil, fmt.Errorf("failed to get entries: %w", err)
	}
	return entries, nil
}

// MarkDone moves a waiting entry out of the queue.
func (db *DB) MarkDone(ctx context.Context, id int64) error {
	result, err := db.ExecContext(ctx,
		`UPDATE queue_entries SET status = ?, completed_at = ? WHERE id = ? AND status = ?`,
		models.StatusDone, now(), id, models.StatusWaiting)
	if err != nil {
		return fmt.Errorf("failed to mark entry done: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return ErrNotFound
	}
	return nil
}

func (db *DB) SetPriority(ctx context.Context, id int64) error {
	result, err := db.ExecContext(ctx,
		`UPDATE queue_entries SET priority = ? WHERE id = ?`, models.PriorityMarker, id)
	if err != nil {
		return fmt.Errorf("failed to set priority: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return ErrNotFound
	}
	return nil
}

// MarkNotified sets notified_at only if it is still NULL.
// It reports false when another writer got there first.
func (db *DB) MarkNotified(ctx context.Context, id int64, at time.Time) (bool, error) {
	result, err := db.ExecContext(ctx,
		`UPDATE queue_entries SET notified_at = ? WHERE id = ? AND notified_at IS NULL`, at.UTC(), id)
	if err != nil {
		return false, fmt.Errorf("failed to mark entry notified: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return rows == 1, nil
}
