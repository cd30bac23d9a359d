package formatting

import "github.com/denkrav/tutor_crm/internal/model"

// LessonStatusDisplay представляет отображение статуса занятия
type LessonStatusDisplay struct {
	Emoji string
	Text  string
}

// GetLessonStatusDisplay возвращает emoji и текст для статуса занятия
func GetLessonStatusDisplay(status model.LessonStatus) LessonStatusDisplay {
	displays := map[model.LessonStatus]LessonStatusDisplay{
		model.LessonStatusPlanned:   {"🟣", "Запланировано"},
		model.LessonStatusCompleted: {"🟢", "Проведено"},
		model.LessonStatusCancelled: {"🔴", "Отменено"},
		model.LessonStatusNoShow:    {"🟡", "Неявка"},
	}

	if display, ok := displays[status]; ok {
		return display
	}

	return LessonStatusDisplay{"❓", "Неизвестно"}
}
