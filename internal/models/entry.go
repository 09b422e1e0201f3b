package models

import "time"

type QueueEntry struct {
	ID          int64      `json:"id"`
	Phone       string     `json:"phone"`
	Status      string     `json:"status"` // waiting, done
	Priority    bool       `json:"priority"`
	CreatedAt   time.Time  `json:"created_at"`
	NotifiedAt  *time.Time `json:"notified_at,omitempty"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
}

// IsWaiting reports whether the entry still holds a place in the queue.
func (e *QueueEntry) IsWaiting() bool {
	return e.Status == StatusWaiting
}

// Notified reports whether the "your turn is near" message was already delivered.
func (e *QueueEntry) Notified() bool {
	return e.NotifiedAt != nil
}

// PriorityFromStore maps the stored priority column to a bool.
// Only the exact marker 1 counts as priority; NULL and anything else do not.
func PriorityFromStore(v *int64) bool {
	return v != nil && *v == PriorityMarker
}

// PriorityToStore is the inverse of PriorityFromStore.
func PriorityToStore(p bool) int64 {
	if p {
		return PriorityMarker
	}
	return 0
}
