package model

import (
	"errors"

	"github.com/google/uuid"
)

type LessonStatus string

const (
	LessonStatusPlanned   LessonStatus = "planned"   // Запланирован
	LessonStatusCompleted LessonStatus = "completed" // Проведён
	LessonStatusCancelled LessonStatus = "cancelled" // Отменён
	LessonStatusNoShow    LessonStatus = "no_show"   // Ученик не пришёл
)

// ErrInvalidStatus статус вне перечисления LessonStatus
var ErrInvalidStatus = errors.New("invalid lesson status")

type Lesson struct {
	ID        uuid.UUID    `json:"id"`
	StudentID uuid.UUID    `json:"student_id"`
	StartTime LocalTime    `json:"start_time"`
	EndTime   LocalTime    `json:"end_time"`
	Topic     string       `json:"topic,omitempty"`
	Status    LessonStatus `json:"status"`
	// Цена фиксируется при создании из тарифа ученика и дальше не меняется
	Price float64 `json:"price"`
	// SeriesID общий для всех занятий, созданных одним запросом серии.
	// nil — разовое занятие или занятие, откреплённое от серии.
	SeriesID    *uuid.UUID `json:"series_id"`
	MaterialURL *string    `json:"material_url,omitempty"`
	HomeworkURL *string    `json:"homework_url,omitempty"`
}

// LessonCreate payload создания занятия. Цену проставляет хранилище
// из тарифа ученика.
type LessonCreate struct {
	StudentID uuid.UUID    `json:"student_id"`
	StartTime LocalTime    `json:"start_time"`
	EndTime   LocalTime    `json:"end_time"`
	Topic     string       `json:"topic,omitempty"`
	Status    LessonStatus `json:"status"`
	SeriesID  *uuid.UUID   `json:"series_id,omitempty"`
}

// IsValidStatus проверяет что статус входит в перечисление
func IsValidStatus(status LessonStatus) bool {
	switch status {
	case LessonStatusPlanned, LessonStatusCompleted, LessonStatusCancelled, LessonStatusNoShow:
		return true
	}
	return false
}

// ValidTransitions возвращает допустимые переходы из указанного статуса.
// Все переходы начинаются из planned; остальные статусы терминальные.
func ValidTransitions(status LessonStatus) []LessonStatus {
	if status == LessonStatusPlanned {
		return []LessonStatus{
			LessonStatusCompleted,
			LessonStatusCancelled,
			LessonStatusNoShow,
		}
	}
	return nil
}

// CanTransition проверяет допустим ли переход статуса
func CanTransition(from, to LessonStatus) bool {
	for _, allowed := range ValidTransitions(from) {
		if allowed == to {
			return true
		}
	}
	return false
}

// ChargedAmount сумма, которая списывается с баланса ученика за занятие:
// проведённое — полная цена, неявка — половина, остальные — ноль.
func ChargedAmount(lesson *Lesson) (float64, error) {
	switch lesson.Status {
	case LessonStatusCompleted:
		return lesson.Price, nil
	case LessonStatusNoShow:
		return lesson.Price * 0.5, nil
	case LessonStatusPlanned, LessonStatusCancelled:
		return 0, nil
	default:
		return 0, ErrInvalidStatus
	}
}
