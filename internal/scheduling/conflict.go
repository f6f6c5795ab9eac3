package scheduling

import (
	"time"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
)

// Overlaps проверяет пересечение полуоткрытых интервалов [s1,e1) и [s2,e2)
// Касание границ пересечением не считается
func Overlaps(s1, e1, s2, e2 time.Time) bool {
	return s1.Before(e2) && s2.Before(e1)
}

// FindConflict возвращает первую активную запись, пересекающуюся с кандидатом, или nil
func FindConflict(start time.Time, duration time.Duration, existing []*domain.Appointment) *domain.Appointment {
	end := start.Add(duration)
	for _, a := range existing {
		if !a.IsActive() {
			continue
		}
		if Overlaps(start, end, a.StartAt, a.EndAt()) {
			return a
		}
	}
	return nil
}

// IsFree проверяет, что кандидат не пересекается ни с одной активной записью
// Этот же предикат повторно применяется при фиксации записи в транзакции
func IsFree(start time.Time, duration time.Duration, existing []*domain.Appointment) bool {
	return FindConflict(start, duration, existing) == nil
}

// OccupiedSet множество занятых точек сетки
type OccupiedSet map[int64]struct{}

// Contains проверяет, занята ли точка сетки
func (s OccupiedSet) Contains(t time.Time) bool {
	_, ok := s[t.Unix()]
	return ok
}

// OccupiedGrid строит грубое множество занятых точек для UI:
// для записи с началом T и длительностью D занята каждая точка g,
// для которой floor_to_grid(T) <= g < T + D.
// Записи, начинающиеся не по сетке, занимают все точки, которые они задевают
func OccupiedGrid(slots []time.Time, dayOpen time.Time, step time.Duration, existing []*domain.Appointment) OccupiedSet {
	occupied := make(OccupiedSet)
	for _, a := range existing {
		if !a.IsActive() {
			continue
		}
		from := FloorToGrid(a.StartAt, dayOpen, step)
		to := a.EndAt()
		for _, g := range slots {
			if !g.Before(from) && g.Before(to) {
				occupied[g.Unix()] = struct{}{}
			}
		}
	}
	return occupied
}
