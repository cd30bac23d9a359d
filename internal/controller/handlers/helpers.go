package handlers

import (
	"context"
	"fmt"

	"github.com/denkrav/tutor_crm/internal/controller/formatting"
	"github.com/denkrav/tutor_crm/internal/model"
	"github.com/go-telegram/bot"
	"github.com/google/uuid"
)

// lessonsDataKey ключ последнего показанного списка занятий в данных
// пользователя: callbacks находят занятие по ID именно там, потому что
// хранилище не отдаёт занятие по одиночному GET
const lessonsDataKey = "lessons"

// sendError отправляет сообщение об ошибке
func (h *Handlers) sendError(ctx context.Context, b *bot.Bot, chatID int64, text string) {
	b.SendMessage(ctx, &bot.SendMessageParams{
		ChatID: chatID,
		Text:   text,
	})
}

// RememberLessons запоминает показанные занятия для последующих callback'ов
func (h *Handlers) RememberLessons(telegramID int64, lessons []model.Lesson) {
	byID := make(map[uuid.UUID]model.Lesson, len(lessons))
	for _, lesson := range lessons {
		byID[lesson.ID] = lesson
	}
	h.stateManager.SetData(telegramID, lessonsDataKey, byID)
}

// MergeLessons обновляет занятия в кеше, не вытесняя остальные показанные.
// Используется после точечных правок, чтобы кнопки соседних занятий
// не потеряли свои данные.
func (h *Handlers) MergeLessons(telegramID int64, lessons []model.Lesson) {
	value, ok := h.stateManager.GetData(telegramID, lessonsDataKey)
	byID, valid := value.(map[uuid.UUID]model.Lesson)
	if !ok || !valid {
		h.RememberLessons(telegramID, lessons)
		return
	}
	for _, lesson := range lessons {
		byID[lesson.ID] = lesson
	}
	h.stateManager.SetData(telegramID, lessonsDataKey, byID)
}

// LookupLesson находит занятие среди последних показанных
func (h *Handlers) LookupLesson(telegramID int64, id uuid.UUID) (*model.Lesson, bool) {
	value, ok := h.stateManager.GetData(telegramID, lessonsDataKey)
	if !ok {
		return nil, false
	}
	byID, ok := value.(map[uuid.UUID]model.Lesson)
	if !ok {
		return nil, false
	}
	lesson, ok := byID[id]
	if !ok {
		return nil, false
	}
	return &lesson, true
}

// FormatLesson форматирует карточку занятия для отображения
func FormatLesson(lesson *model.Lesson, studentName string) string {
	display := formatting.GetLessonStatusDisplay(lesson.Status)

	text := fmt.Sprintf(
		"%s %s\n\n"+
			"👤 Ученик: %s\n"+
			"🕐 Время: %s, %s\n"+
			"💵 Цена: %s",
		display.Emoji,
		display.Text,
		studentName,
		formatting.FormatDate(lesson.StartTime.Time),
		formatting.FormatTimeRange(lesson.StartTime.Time, lesson.EndTime.Time),
		formatting.FormatPrice(lesson.Price),
	)

	if lesson.Topic != "" {
		text += "\n📖 Тема: " + lesson.Topic
	}
	if lesson.SeriesID != nil {
		text += "\n🔁 Занятие из еженедельной серии"
	}

	charged, err := model.ChargedAmount(lesson)
	if err == nil && charged > 0 {
		text += "\n💳 Списано с баланса: " + formatting.FormatPrice(charged)
	}

	return text
}
