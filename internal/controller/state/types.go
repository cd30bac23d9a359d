package state

// UserState представляет текущее состояние пользователя в диалоге
type UserState string

const (
	StateNone UserState = "" // Нет активного состояния

	// Состояния для создания занятия
	StateAddLessonDate        UserState = "add_lesson_date"
	StateAddLessonTime        UserState = "add_lesson_time"
	StateAddLessonDuration    UserState = "add_lesson_duration"
	StateAddLessonTopic       UserState = "add_lesson_topic"
	StateAddLessonRepeatUntil UserState = "add_lesson_repeat_until"

	// Состояния для фиксации результата занятия
	StateCompleteLessonTopic    UserState = "complete_lesson_topic"
	StateCompleteLessonMaterial UserState = "complete_lesson_material"
	StateCompleteLessonHomework UserState = "complete_lesson_homework"

	// Состояния для редактирования занятия
	StateEditLessonTopic UserState = "edit_lesson_topic"

	// Состояния для переноса занятия
	StateRescheduleDate UserState = "reschedule_date"
	StateRescheduleTime UserState = "reschedule_time"

	// Состояния для записи оплаты
	StatePaymentAmount UserState = "payment_amount"
)

// UserData хранит временные данные пользователя во время диалога
type UserData struct {
	State UserState
	Data  map[string]interface{} // Временные данные для текущего диалога
}
