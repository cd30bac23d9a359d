package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsValidStatus(t *testing.T) {
	assert.True(t, IsValidStatus(LessonStatusPlanned))
	assert.True(t, IsValidStatus(LessonStatusCompleted))
	assert.True(t, IsValidStatus(LessonStatusCancelled))
	assert.True(t, IsValidStatus(LessonStatusNoShow))

	assert.False(t, IsValidStatus("done"))
	assert.False(t, IsValidStatus(""))
}

func TestCanTransition(t *testing.T) {
	// Из planned доступны все три терминальных статуса
	assert.True(t, CanTransition(LessonStatusPlanned, LessonStatusCompleted))
	assert.True(t, CanTransition(LessonStatusPlanned, LessonStatusCancelled))
	assert.True(t, CanTransition(LessonStatusPlanned, LessonStatusNoShow))

	// Терминальные статусы никуда не переходят, включая возврат в planned
	for _, from := range []LessonStatus{LessonStatusCompleted, LessonStatusCancelled, LessonStatusNoShow} {
		for _, to := range []LessonStatus{LessonStatusPlanned, LessonStatusCompleted, LessonStatusCancelled, LessonStatusNoShow} {
			assert.False(t, CanTransition(from, to), "%s -> %s", from, to)
		}
	}

	// Переход в самого себя тоже запрещён
	assert.False(t, CanTransition(LessonStatusPlanned, LessonStatusPlanned))
}

func TestChargedAmount(t *testing.T) {
	lesson := &Lesson{Price: 500}

	lesson.Status = LessonStatusCompleted
	charged, err := ChargedAmount(lesson)
	require.NoError(t, err)
	assert.Equal(t, 500.0, charged)

	// Неявка списывает ровно половину цены
	lesson.Status = LessonStatusNoShow
	charged, err = ChargedAmount(lesson)
	require.NoError(t, err)
	assert.Equal(t, 250.0, charged)

	lesson.Status = LessonStatusPlanned
	charged, err = ChargedAmount(lesson)
	require.NoError(t, err)
	assert.Zero(t, charged)

	lesson.Status = LessonStatusCancelled
	charged, err = ChargedAmount(lesson)
	require.NoError(t, err)
	assert.Zero(t, charged)

	lesson.Status = "unknown"
	_, err = ChargedAmount(lesson)
	assert.ErrorIs(t, err, ErrInvalidStatus)
}
