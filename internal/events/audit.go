package events

import (
	"encoding/json"

	"salonq/internal/metrics"

	"github.com/rs/zerolog"
)

// AuditHandler logs each event and counts it in salonq_queue_events_total.
func AuditHandler(logger *zerolog.Logger) EventHandler {
	return func(event *Event) error {
		metrics.IncEvent(event.Type)
		if logger == nil {
			return nil
		}
		logger.Info().
			Str("event", event.Type).
			RawJSON("payload", validJSON(event.Payload)).
			Time("at", event.CreatedAt).
			Msg("queue event")
		return nil
	}
}

func validJSON(raw []byte) []byte {
	if len(raw) == 0 || !json.Valid(raw) {
		return []byte("null")
	}
	return raw
}
