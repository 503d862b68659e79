package constants

import "time"

const (
	AppName = "maintenance-manager"

	// list caps
	DefaultListLimit  = 50
	MaxListLimit      = 200
	StatsScanLimit    = 500
	RecalcBatchLimit  = 500
	ActivityFeedLimit = 100

	// activity retention
	ActivityRetentionDays = 90
	ActivityPruneCap      = 500

	// escalation
	OverdueSweepInterval = time.Hour

	// maintenance cron, shortly after midnight
	DailyMaintenanceSchedule = "5 0 * * *"
)
