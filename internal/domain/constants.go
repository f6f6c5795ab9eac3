package domain

// Business validation constants
const (
	MinDailyCapacity            = 1
	MaxDailyCapacity            = 100
	MinClientCap                = 1
	MaxClientCap                = 20
	MinLeadTimeThreshold        = 1
	MaxLeadTimeThreshold        = 100
	MaxCancellationReasonLength = 500
	MaxBookingHorizonDays       = 365
)

// Time format constants
const (
	TimeFormat = "15:04"      // HH:MM
	DateFormat = "2006-01-02" // YYYY-MM-DD
)

// ActiveStatuses статусы, занимающие вместимость дня и слот
var ActiveStatuses = []AppointmentStatus{
	StatusScheduled,
	StatusConfirmed,
}

// InactiveStatuses терминальные статусы
var InactiveStatuses = []AppointmentStatus{
	StatusCancelled,
	StatusCompleted,
}
