package service

import (
	"math"
	"time"

	"github.com/denkrav/tutor_crm/internal/model"
	"github.com/google/uuid"
)

// MaxSeriesOccurrences жёсткий потолок серии: ровно 40 занятий ещё
// допустимо, 41 — уже отказ
const MaxSeriesOccurrences = 40

type Frequency string

const (
	FrequencyOnce   Frequency = "once"
	FrequencyWeekly Frequency = "weekly"
)

// SeriesRequest запрос на создание занятия или еженедельной серии
type SeriesRequest struct {
	StudentID uuid.UUID
	StartTime time.Time
	EndTime   time.Time
	Topic     string
	Frequency Frequency
	// RepeatUntil дата последнего занятия включительно, только для weekly
	RepeatUntil time.Time
}

// GenerateSeries разворачивает запрос в упорядоченный список payload'ов
// создания занятий. Для weekly все payload'ы получают общий свежий
// series_id; для once серия не помечается. Вся валидация выполняется
// до генерации — при ошибке не создаётся ни одного payload'а.
func GenerateSeries(req SeriesRequest) ([]model.LessonCreate, error) {
	if !req.EndTime.After(req.StartTime) {
		return nil, ErrInvalidDateRange
	}

	if req.Frequency != FrequencyWeekly || req.RepeatUntil.IsZero() {
		return []model.LessonCreate{newOccurrence(req, 0, nil)}, nil
	}

	startDate := truncateToDay(req.StartTime)
	untilDate := truncateToDay(req.RepeatUntil)
	if untilDate.Before(startDate) {
		return nil, ErrInvalidDateRange
	}

	count := daysBetween(startDate, untilDate)/7 + 1
	if count > MaxSeriesOccurrences {
		return nil, ErrTooManyOccurrences
	}

	seriesID := uuid.New()
	payloads := make([]model.LessonCreate, 0, count)
	for i := 0; i < count; i++ {
		payloads = append(payloads, newOccurrence(req, i, &seriesID))
	}

	return payloads, nil
}

// newOccurrence создаёт payload занятия со сдвигом на weeks недель.
// AddDate сохраняет настенное время при переходе через смену зимнего/летнего
// времени, в отличие от прибавления time.Duration.
func newOccurrence(req SeriesRequest, weeks int, seriesID *uuid.UUID) model.LessonCreate {
	return model.LessonCreate{
		StudentID: req.StudentID,
		StartTime: model.NewLocalTime(req.StartTime.AddDate(0, 0, 7*weeks)),
		EndTime:   model.NewLocalTime(req.EndTime.AddDate(0, 0, 7*weeks)),
		Topic:     req.Topic,
		Status:    model.LessonStatusPlanned,
		SeriesID:  seriesID,
	}
}

func truncateToDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// daysBetween считает календарные дни между полуночами. Округление
// сглаживает часовой сдвиг от перевода часов.
func daysBetween(from, to time.Time) int {
	return int(math.Round(to.Sub(from).Hours() / 24))
}
