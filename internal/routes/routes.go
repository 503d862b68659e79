package routes

const (
	// Health
	Health = "/health"

	// Turn workflow
	TurnsBase        = "/api/v1/turns"
	TurnByID         = "/api/v1/turns/{id}"
	TurnTask         = "/api/v1/turns/{id}/tasks/{taskId}"
	TurnComplete     = "/api/v1/turns/{id}/complete"
	TurnBlock        = "/api/v1/turns/{id}/block"
	TurnsRecalculate = "/api/v1/turns/recalculate"

	// Unit inventory
	UnitsBase    = "/api/v1/units"
	UnitsBulk    = "/api/v1/units/bulk"
	UnitByID     = "/api/v1/units/{id}"
	UnitByNumber = "/api/v1/units/by-number/{unitNumber}"
	UnitVacant   = "/api/v1/units/{id}/vacant"
	UnitOccupied = "/api/v1/units/{id}/occupied"
	UnitTurns    = "/api/v1/units/{id}/turns"
	UnitsStats   = "/api/v1/units/statistics"

	// Activity trail
	ActivitiesBase  = "/api/v1/activities"
	ActivityByID    = "/api/v1/activities/{id}"
	ActivitiesStats = "/api/v1/activities/statistics"

	// Calendar
	EventsBase     = "/api/v1/calendar/events"
	EventByID      = "/api/v1/calendar/events/{id}"
	EventsUpcoming = "/api/v1/calendar/events/upcoming"
	EventsToday    = "/api/v1/calendar/events/today"
	EventsStats    = "/api/v1/calendar/events/statistics"
	EventsConflict = "/api/v1/calendar/conflicts"

	// Vendor directory
	VendorsBase         = "/api/v1/vendors"
	VendorsBulk         = "/api/v1/vendors/bulk"
	VendorsStats        = "/api/v1/vendors/statistics"
	VendorByID          = "/api/v1/vendors/{id}"
	VendorRating        = "/api/v1/vendors/{id}/rating"
	VendorJobCompletion = "/api/v1/vendors/{id}/job-completion"

	// Staff directory
	UsersBase         = "/api/v1/users"
	UsersStats        = "/api/v1/users/statistics"
	UsersSearch       = "/api/v1/users/search"
	UserByID          = "/api/v1/users/{id}"
	UserRole          = "/api/v1/users/{id}/role"
	UserLogin         = "/api/v1/users/{id}/login"
	UserNotifications = "/api/v1/users/{id}/notification-settings"
)
