package service

import (
	"github.com/denkrav/tutor_crm/internal/model"
	"github.com/google/uuid"
)

// EditScope выбор пользователя: применить правку к одному занятию
// или ко всей серии
type EditScope string

const (
	ScopeUnspecified EditScope = ""
	ScopeSingle      EditScope = "single"
	ScopeSeries      EditScope = "series"
)

// MutationPlan рассчитанная мутация: какое занятие трогаем, каким
// PATCH'ем и в каком объёме
type MutationPlan struct {
	Scope    EditScope
	LessonID uuid.UUID
	Changes  model.LessonUpdate
}

// ResolveEditScope определяет область действия правки занятия.
//
// Занятие вне серии правится без вопросов. Для занятия из серии нужен
// явный выбор: single открепляет занятие (series_id = null), series
// применяет к серии только общесерийные поля — статус из серийной правки
// вырезается всегда, проведение и отмена остаются решением по конкретному
// занятию.
func ResolveEditScope(lesson *model.Lesson, changes model.LessonUpdate, scope EditScope) (*MutationPlan, error) {
	if lesson.SeriesID == nil {
		changes.ClearSeries = false
		return &MutationPlan{
			Scope:    ScopeSingle,
			LessonID: lesson.ID,
			Changes:  changes,
		}, nil
	}

	switch scope {
	case ScopeSingle:
		changes.ClearSeries = true
		return &MutationPlan{
			Scope:    ScopeSingle,
			LessonID: lesson.ID,
			Changes:  changes,
		}, nil

	case ScopeSeries:
		changes.Status = nil
		changes.MaterialURL = nil
		changes.HomeworkURL = nil
		changes.ClearSeries = false
		return &MutationPlan{
			Scope:    ScopeSeries,
			LessonID: lesson.ID,
			Changes:  changes,
		}, nil

	default:
		// Диалог выбора закрыли без ответа — ничего не меняем
		return nil, ErrMissingScopeChoice
	}
}
