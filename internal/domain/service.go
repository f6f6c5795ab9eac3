package domain

// LeadTimeClass класс услуги с точки зрения минимального времени записи
type LeadTimeClass string

const (
	// LeadTimeStandard запись возможна на любое время в будущем
	LeadTimeStandard LeadTimeClass = "standard"
	// LeadTimeNewRegistration запись минимум за minDays календарных дней, зависит от загрузки
	LeadTimeNewRegistration LeadTimeClass = "new_registration"
)

// IsValid проверяет, что класс известен
func (c LeadTimeClass) IsValid() bool {
	return c == LeadTimeStandard || c == LeadTimeNewRegistration
}

// Service represents a bookable service
type Service struct {
	ID              int64
	Name            string
	DurationMinutes int // 0 = длительность из политики бронирования
	LeadTimeClass   LeadTimeClass
	IsActive        bool
}

// IsDistinguished returns true if the service carries the load-sensitive lead time
func (s *Service) IsDistinguished() bool {
	return s.LeadTimeClass == LeadTimeNewRegistration
}
