package model

import (
	"encoding/json"

	"github.com/google/uuid"
)

// LessonUpdate частичное обновление занятия (PATCH). Нулевые указатели
// не попадают в тело запроса.
type LessonUpdate struct {
	StudentID   *uuid.UUID    `json:"student_id,omitempty"`
	StartTime   *LocalTime    `json:"start_time,omitempty"`
	EndTime     *LocalTime    `json:"end_time,omitempty"`
	Topic       *string       `json:"topic,omitempty"`
	Status      *LessonStatus `json:"status,omitempty"`
	MaterialURL *string       `json:"material_url,omitempty"`
	HomeworkURL *string       `json:"homework_url,omitempty"`

	// ClearSeries явно записывает series_id = null — открепляет занятие
	// от серии при одиночном редактировании
	ClearSeries bool `json:"-"`
}

// IsEmpty проверяет что обновление не содержит изменений
func (u LessonUpdate) IsEmpty() bool {
	return u.StudentID == nil &&
		u.StartTime == nil &&
		u.EndTime == nil &&
		u.Topic == nil &&
		u.Status == nil &&
		u.MaterialURL == nil &&
		u.HomeworkURL == nil &&
		!u.ClearSeries
}

func (u LessonUpdate) MarshalJSON() ([]byte, error) {
	// alias без методов, чтобы не зациклить MarshalJSON
	type alias LessonUpdate

	data, err := json.Marshal(alias(u))
	if err != nil {
		return nil, err
	}

	if !u.ClearSeries {
		return data, nil
	}

	// omitempty не умеет отправлять явный null, поэтому дописываем руками
	fields := map[string]json.RawMessage{}
	if err := json.Unmarshal(data, &fields); err != nil {
		return nil, err
	}
	fields["series_id"] = json.RawMessage("null")

	return json.Marshal(fields)
}
