package handlers

import (
	"errors"

	"github.com/denkrav/tutor_crm/internal/apiclient"
	"github.com/denkrav/tutor_crm/internal/model"
	"github.com/denkrav/tutor_crm/internal/service"
)

// ErrLessonNotFound занятие пропало из кеша последних показанных
var ErrLessonNotFound = errors.New("lesson not found")

// ErrorMessage возвращает пользовательское сообщение для ошибки
func ErrorMessage(err error) string {
	switch {
	case errors.Is(err, ErrLessonNotFound):
		return "❌ Занятие не найдено. Обновите список через /today или /week"
	case errors.Is(err, service.ErrStudentNotFound):
		return "❌ Ученик не найден. Обновите список через /students"
	case errors.Is(err, service.ErrIllegalTransition):
		return "❌ Статус этого занятия уже нельзя изменить"
	case errors.Is(err, service.ErrConfirmationRequired):
		return "❌ Неявка требует подтверждения"
	case errors.Is(err, service.ErrResultRequired):
		return "❌ Для проведённого занятия нужна тема"
	case errors.Is(err, service.ErrMissingScopeChoice):
		return "❌ Выберите: одно занятие или вся серия"
	case errors.Is(err, service.ErrInvalidDateRange):
		return "❌ Неверный диапазон дат"
	case errors.Is(err, service.ErrTooManyOccurrences):
		return "❌ Слишком длинная серия занятий"
	case errors.Is(err, model.ErrInvalidStatus):
		return "❌ Неизвестный статус занятия"
	case errors.Is(err, apiclient.ErrUpstream):
		return "❌ Хранилище недоступно. Попробуйте позже"
	default:
		return "❌ Произошла ошибка"
	}
}
