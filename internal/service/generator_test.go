package service

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func weeklyRequest(start, end, until time.Time) SeriesRequest {
	return SeriesRequest{
		StudentID:   uuid.New(),
		StartTime:   start,
		EndTime:     end,
		Topic:       "Алгебра",
		Frequency:   FrequencyWeekly,
		RepeatUntil: until,
	}
}

func TestGenerateSeriesWeekly(t *testing.T) {
	start := time.Date(2025, 1, 6, 10, 0, 0, 0, time.Local)
	end := start.Add(time.Hour)
	until := time.Date(2025, 1, 27, 0, 0, 0, 0, time.Local)

	payloads, err := GenerateSeries(weeklyRequest(start, end, until))
	require.NoError(t, err)
	require.Len(t, payloads, 4)

	// Все занятия в один день недели и время, шаг ровно неделя
	for i, payload := range payloads {
		expected := start.AddDate(0, 0, 7*i)
		assert.Equal(t, expected, payload.StartTime.Time, "occurrence %d", i)
		assert.Equal(t, expected.Add(time.Hour), payload.EndTime.Time, "occurrence %d", i)
		assert.Equal(t, "Алгебра", payload.Topic)
	}

	// Общий series_id на всю серию
	require.NotNil(t, payloads[0].SeriesID)
	for _, payload := range payloads[1:] {
		require.NotNil(t, payload.SeriesID)
		assert.Equal(t, *payloads[0].SeriesID, *payload.SeriesID)
	}
}

func TestGenerateSeriesRepeatUntilOnStartDay(t *testing.T) {
	start := time.Date(2025, 1, 6, 10, 0, 0, 0, time.Local)

	// repeat_until в день первого занятия — серия из одного занятия
	payloads, err := GenerateSeries(weeklyRequest(start, start.Add(time.Hour), start))
	require.NoError(t, err)
	require.Len(t, payloads, 1)
	assert.NotNil(t, payloads[0].SeriesID)
}

func TestGenerateSeriesOnce(t *testing.T) {
	start := time.Date(2025, 1, 6, 10, 0, 0, 0, time.Local)

	payloads, err := GenerateSeries(SeriesRequest{
		StudentID: uuid.New(),
		StartTime: start,
		EndTime:   start.Add(time.Hour),
		Frequency: FrequencyOnce,
	})
	require.NoError(t, err)
	require.Len(t, payloads, 1)
	assert.Nil(t, payloads[0].SeriesID)
}

func TestGenerateSeriesInvalidRange(t *testing.T) {
	start := time.Date(2025, 1, 6, 10, 0, 0, 0, time.Local)

	// Конец раньше начала
	_, err := GenerateSeries(SeriesRequest{
		StudentID: uuid.New(),
		StartTime: start,
		EndTime:   start.Add(-time.Hour),
		Frequency: FrequencyOnce,
	})
	assert.ErrorIs(t, err, ErrInvalidDateRange)

	// repeat_until раньше первого занятия
	until := time.Date(2025, 1, 5, 0, 0, 0, 0, time.Local)
	_, err = GenerateSeries(weeklyRequest(start, start.Add(time.Hour), until))
	assert.ErrorIs(t, err, ErrInvalidDateRange)
}

func TestGenerateSeriesOccurrenceCap(t *testing.T) {
	start := time.Date(2025, 1, 6, 10, 0, 0, 0, time.Local)
	end := start.Add(time.Hour)

	// Ровно 40 занятий проходит
	until := start.AddDate(0, 0, 7*(MaxSeriesOccurrences-1))
	payloads, err := GenerateSeries(weeklyRequest(start, end, until))
	require.NoError(t, err)
	assert.Len(t, payloads, MaxSeriesOccurrences)

	// 41-е занятие — отказ целиком, без частичной генерации
	until = start.AddDate(0, 0, 7*MaxSeriesOccurrences)
	payloads, err = GenerateSeries(weeklyRequest(start, end, until))
	assert.ErrorIs(t, err, ErrTooManyOccurrences)
	assert.Nil(t, payloads)
}

func TestGenerateSeriesDistinctSeriesIDs(t *testing.T) {
	start := time.Date(2025, 1, 6, 10, 0, 0, 0, time.Local)
	end := start.Add(time.Hour)
	until := start.AddDate(0, 0, 14)

	first, err := GenerateSeries(weeklyRequest(start, end, until))
	require.NoError(t, err)
	second, err := GenerateSeries(weeklyRequest(start, end, until))
	require.NoError(t, err)

	assert.NotEqual(t, *first[0].SeriesID, *second[0].SeriesID)
}
