package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestMetrics(t *testing.T) {
	// Register should be safe to call multiple times
	Register()
	Register()

	assert.NotPanics(t, func() {
		IncHTTP("test_endpoint")
		IncCheckIn("created")
		IncEvent("entry_created")
	})
}

func TestNotificationCounter(t *testing.T) {
	before := testutil.ToFloat64(notifications.WithLabelValues("sent"))
	IncNotification("sent")
	assert.Equal(t, before+1, testutil.ToFloat64(notifications.WithLabelValues("sent")))
}

func TestObserveCycle(t *testing.T) {
	ObserveCycle("schedule", 10*time.Millisecond, 4)
	assert.Equal(t, float64(4), testutil.ToFloat64(queueWaiting))

	ObserveCycle("admin", time.Millisecond, 0)
	assert.Equal(t, float64(0), testutil.ToFloat64(queueWaiting))
}
