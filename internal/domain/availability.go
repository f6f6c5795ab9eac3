package domain

import "time"

// RejectionReason бизнес-причина отказа; возвращается в результате, а не ошибкой
type RejectionReason string

const (
	ReasonBlockedDate       RejectionReason = "blocked_date"
	ReasonCapacityExceeded  RejectionReason = "capacity_exceeded"
	ReasonClientCapExceeded RejectionReason = "client_cap_exceeded"
	ReasonSlotConflict      RejectionReason = "slot_conflict"
	ReasonLeadTimeViolation RejectionReason = "lead_time_violation"
	ReasonNotFound          RejectionReason = "not_found"
	ReasonAlreadyCancelled  RejectionReason = "already_cancelled"
)

// SlotAvailability доступность одного слота сетки
type SlotAvailability struct {
	StartAt   time.Time
	Available bool
}

// DayAvailability представление доступности исполнителя на дату
type DayAvailability struct {
	ProviderID       int64
	ServiceID        int64
	Date             time.Time
	Blocked          bool
	DailyCapacity    int
	Remaining        int
	RequiredLeadDays int // 0 для стандартных услуг
	Slots            []SlotAvailability
}

// NotificationTier уровень уведомления о доступности
type NotificationTier string

const (
	TierFullyBooked NotificationTier = "fully_booked"
	TierLastSlot    NotificationTier = "last_slot"
	TierSlotTaken   NotificationTier = "slot_taken"
	TierSlotFreed   NotificationTier = "slot_freed"
)
