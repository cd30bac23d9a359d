package service

import (
	"errors"
	"fmt"

	"github.com/denkrav/tutor_crm/internal/model"
)

// Ошибки валидации. Обнаруживаются до любого сетевого вызова —
// при них ни одно занятие не создаётся и не меняется.
var (
	// ErrInvalidDateRange дата "повторять до" раньше даты первого занятия
	// либо конец занятия не позже начала
	ErrInvalidDateRange = errors.New("invalid date range")
	// ErrTooManyOccurrences серия длиннее 40 занятий
	ErrTooManyOccurrences = errors.New("too many occurrences in series")
	// ErrIllegalTransition недопустимый переход статуса
	ErrIllegalTransition = errors.New("illegal status transition")
	// ErrMissingScopeChoice редактирование занятия из серии без выбора
	// "одно занятие / вся серия"
	ErrMissingScopeChoice = errors.New("scope choice required for series lesson")
	// ErrConfirmationRequired неявка требует явного подтверждения
	ErrConfirmationRequired = errors.New("confirmation required")
	// ErrResultRequired проведение занятия требует фиксации результата
	ErrResultRequired = errors.New("lesson result required")
	// ErrStaleWindow ответ пришёл для окна календаря, которое уже
	// вытеснено более новым запросом того же потребителя
	ErrStaleWindow = errors.New("stale calendar window")
	// ErrStudentNotFound ученика нет в списке хранилища
	ErrStudentNotFound = errors.New("student not found")
	// ErrBalanceRefreshFailed оплата записана, но свежий баланс после неё
	// прочитать не удалось. Оплату повторять нельзя.
	ErrBalanceRefreshFailed = errors.New("balance refresh failed")
)

// OccurrenceError ошибка создания одного занятия серии
type OccurrenceError struct {
	Index int
	Err   error
}

// PartialBatchError часть занятий серии создана, часть — нет.
// Откат не выполняется: созданные занятия остаются в хранилище,
// вызывающий решает что делать с остальными.
type PartialBatchError struct {
	Created []*model.Lesson
	Failed  []OccurrenceError
}

func (e *PartialBatchError) Error() string {
	return fmt.Sprintf("series partially created: %d ok, %d failed (first: %v)",
		len(e.Created), len(e.Failed), e.Failed[0].Err)
}
