package model

import (
	"fmt"
	"strings"
	"time"
)

// Хранилище оперирует наивными датами без зоны ("2006-01-02T15:04:05").
// Время трактуется как локальное настенное и не конвертируется в UTC
// ни при сериализации, ни при разборе.
const localTimeLayout = "2006-01-02T15:04:05"

// LocalTime время без зоны в формате хранилища
type LocalTime struct {
	time.Time
}

// NewLocalTime оборачивает time.Time в LocalTime
func NewLocalTime(t time.Time) LocalTime {
	return LocalTime{Time: t}
}

func (t LocalTime) MarshalJSON() ([]byte, error) {
	if t.IsZero() {
		return []byte("null"), nil
	}
	return []byte(`"` + t.Format(localTimeLayout) + `"`), nil
}

func (t *LocalTime) UnmarshalJSON(data []byte) error {
	s := strings.Trim(string(data), `"`)
	if s == "null" || s == "" {
		*t = LocalTime{}
		return nil
	}

	// Хранилище может отдавать доли секунды, календарь — полный ISO
	layouts := []string{
		localTimeLayout,
		"2006-01-02T15:04:05.999999999",
		time.RFC3339,
	}

	for _, layout := range layouts {
		parsed, err := time.ParseInLocation(layout, s, time.Local)
		if err == nil {
			*t = LocalTime{Time: parsed}
			return nil
		}
	}

	return fmt.Errorf("parse local time %q", s)
}
