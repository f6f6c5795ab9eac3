package types

import (
	"database/sql/driver"
	"errors"
	"fmt"
	"time"
)

var ErrInvalidTimeOfDay = errors.New("invalid time of day, expected HH:MM")

// TimeOfDay время суток с точностью до минуты ("11:00", "20:00")
// Хранится как количество минут от полуночи
type TimeOfDay int

const minutesPerDay = 24 * 60

// ParseTimeOfDay разбирает строку формата HH:MM
func ParseTimeOfDay(s string) (TimeOfDay, error) {
	t, err := time.Parse("15:04", s)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidTimeOfDay, s)
	}
	return TimeOfDay(t.Hour()*60 + t.Minute()), nil
}

// MustParseTimeOfDay как ParseTimeOfDay, но паникует при ошибке (для констант и тестов)
func MustParseTimeOfDay(s string) TimeOfDay {
	t, err := ParseTimeOfDay(s)
	if err != nil {
		panic(err)
	}
	return t
}

// Minutes возвращает количество минут от полуночи
func (t TimeOfDay) Minutes() int {
	return int(t)
}

// IsValid проверяет, что время в пределах суток
func (t TimeOfDay) IsValid() bool {
	return t >= 0 && int(t) < minutesPerDay
}

// On возвращает момент времени для указанной календарной даты в указанной локации
func (t TimeOfDay) On(date time.Time, loc *time.Location) time.Time {
	y, m, d := date.Date()
	return time.Date(y, m, d, int(t)/60, int(t)%60, 0, 0, loc)
}

func (t TimeOfDay) String() string {
	return fmt.Sprintf("%02d:%02d", int(t)/60, int(t)%60)
}

// MarshalText используется для JSON и TOML
func (t TimeOfDay) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

// UnmarshalText используется для JSON и TOML
func (t *TimeOfDay) UnmarshalText(text []byte) error {
	parsed, err := ParseTimeOfDay(string(text))
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

// Value сохраняет время в БД строкой "HH:MM" (колонка TIME или VARCHAR)
func (t TimeOfDay) Value() (driver.Value, error) {
	return t.String(), nil
}

// Scan читает время из колонки TIME ("HH:MM:SS") или VARCHAR ("HH:MM")
func (t *TimeOfDay) Scan(src interface{}) error {
	var raw string
	switch v := src.(type) {
	case string:
		raw = v
	case []byte:
		raw = string(v)
	case time.Time:
		*t = TimeOfDay(v.Hour()*60 + v.Minute())
		return nil
	default:
		return fmt.Errorf("%w: unsupported source %T", ErrInvalidTimeOfDay, src)
	}

	if len(raw) > 5 {
		raw = raw[:5]
	}
	return t.UnmarshalText([]byte(raw))
}
