package queue

import (
	"sort"
	"time"

	"salonq/internal/models"
)

// Position is one waiting entry's place in the ordered queue.
type Position struct {
	ID               int64  `json:"id"`
	Phone            string `json:"phone"`
	Position         int    `json:"position"`
	EstimatedMinutes int    `json:"estimatedMinutes"`
	Notified         bool   `json:"notified"`
	Priority         bool   `json:"priority"`
}

// Sort returns a stably sorted copy of entries: priority first, then oldest first.
func Sort(entries []models.QueueEntry) []models.QueueEntry {
	sorted := make([]models.QueueEntry, len(entries))
	copy(sorted, entries)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].Priority != sorted[j].Priority {
			return sorted[i].Priority
		}
		return sorted[i].CreatedAt.Before(sorted[j].CreatedAt)
	})
	return sorted
}

// Order ranks waiting entries and estimates each one's wait.
func Order(entries []models.QueueEntry, serviceDuration time.Duration) []Position {
	sorted := Sort(entries)
	positions := make([]Position, 0, len(sorted))
	for i, e := range sorted {
		pos := i + 1
		positions = append(positions, Position{
			ID:               e.ID,
			Phone:            e.Phone,
			Position:         pos,
			EstimatedMinutes: EstimateForPosition(pos, serviceDuration),
			Notified:         e.NotifiedAt != nil,
			Priority:         e.Priority,
		})
	}
	return positions
}

// EstimateForPosition is the wait in minutes for a 1-based position.
func EstimateForPosition(position int, serviceDuration time.Duration) int {
	minutes := (position - 1) * int(serviceDuration/time.Minute)
	if minutes < 0 {
		return 0
	}
	return minutes
}

// EstimateForCount is the check-in estimate: the newcomer is last of count waiting.
func EstimateForCount(count int, serviceDuration time.Duration) (position, minutes int) {
	return count, EstimateForPosition(count, serviceDuration)
}
