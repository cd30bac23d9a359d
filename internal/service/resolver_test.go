package service

import (
	"testing"

	"github.com/denkrav/tutor_crm/internal/model"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveEditScopeStandaloneLesson(t *testing.T) {
	lesson := &model.Lesson{ID: uuid.New()}
	topic := "Геометрия"

	// Занятие вне серии правится без выбора области
	plan, err := ResolveEditScope(lesson, model.LessonUpdate{Topic: &topic}, ScopeUnspecified)
	require.NoError(t, err)
	assert.Equal(t, ScopeSingle, plan.Scope)
	assert.Equal(t, lesson.ID, plan.LessonID)
	assert.False(t, plan.Changes.ClearSeries)
}

func TestResolveEditScopeSingleDetaches(t *testing.T) {
	seriesID := uuid.New()
	lesson := &model.Lesson{ID: uuid.New(), SeriesID: &seriesID}
	topic := "Геометрия"

	plan, err := ResolveEditScope(lesson, model.LessonUpdate{Topic: &topic}, ScopeSingle)
	require.NoError(t, err)
	assert.Equal(t, ScopeSingle, plan.Scope)
	// Одиночная правка занятия из серии открепляет его
	assert.True(t, plan.Changes.ClearSeries)
	assert.Equal(t, &topic, plan.Changes.Topic)
}

func TestResolveEditScopeSeriesStripsPerLessonFields(t *testing.T) {
	seriesID := uuid.New()
	lesson := &model.Lesson{ID: uuid.New(), SeriesID: &seriesID}
	topic := "Геометрия"
	status := model.LessonStatusCompleted
	url := "https://files.example/material.pdf"

	plan, err := ResolveEditScope(lesson, model.LessonUpdate{
		Topic:       &topic,
		Status:      &status,
		MaterialURL: &url,
		HomeworkURL: &url,
	}, ScopeSeries)
	require.NoError(t, err)

	assert.Equal(t, ScopeSeries, plan.Scope)
	assert.Equal(t, &topic, plan.Changes.Topic)
	// Статус и файлы — решения по конкретному занятию, к серии не применяются
	assert.Nil(t, plan.Changes.Status)
	assert.Nil(t, plan.Changes.MaterialURL)
	assert.Nil(t, plan.Changes.HomeworkURL)
	assert.False(t, plan.Changes.ClearSeries)
}

func TestResolveEditScopeMissingChoice(t *testing.T) {
	seriesID := uuid.New()
	lesson := &model.Lesson{ID: uuid.New(), SeriesID: &seriesID}
	topic := "Геометрия"

	_, err := ResolveEditScope(lesson, model.LessonUpdate{Topic: &topic}, ScopeUnspecified)
	assert.ErrorIs(t, err, ErrMissingScopeChoice)
}
