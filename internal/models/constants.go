package models

const (
	StatusWaiting = "waiting"
	StatusDone    = "done"
)

const (
	// PriorityMarker is the stored value that flags a priority entry.
	PriorityMarker = 1

	// SettingsID primary key of the singleton settings row
	SettingsID = 1
)

const (
	// DefaultServiceDurationMinutes time one customer occupies the chair
	DefaultServiceDurationMinutes = 20

	// DefaultNotificationThresholdMinutes customers with an ETA at or below this get notified
	DefaultNotificationThresholdMinutes = 15

	// DefaultRecalcSchedule cron expression for the periodic recalculation (every 2 minutes)
	DefaultRecalcSchedule = "*/2 * * * *"

	// DefaultNotifyClaimTTL seconds a notification claim is held before it expires
	DefaultNotifyClaimTTL = 5 * 60

	// RateLimitMessages inbound messages allowed per phone in the window
	RateLimitMessages = 10

	// RateLimitWindow window for inbound messages, seconds
	RateLimitWindow = 60

	// DefaultHTTPPort listening port when PORT is not set
	DefaultHTTPPort = 3000
)

const (
	AdvancePolicyArrival  = "arrival"
	AdvancePolicyPriority = "priority"
)

const (
	TriggerSchedule = "schedule"
	TriggerAdmin    = "admin"
	TriggerManual   = "manual"
)
