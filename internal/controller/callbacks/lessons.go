package callbacks

import (
	"context"

	"github.com/denkrav/tutor_crm/internal/controller/formatting"
	"github.com/denkrav/tutor_crm/internal/controller/handlers"
	"github.com/denkrav/tutor_crm/internal/controller/keyboard"
	"github.com/denkrav/tutor_crm/internal/model"
	"github.com/denkrav/tutor_crm/internal/service"
	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"go.uber.org/zap"
)

// lessonFromCallback разбирает callback data и находит занятие среди
// последних показанных пользователю
func (h *Handler) lessonFromCallback(ctx context.Context, b *bot.Bot, callback *models.CallbackQuery) (*model.Lesson, bool) {
	id, err := ParseUUIDFromCallback(callback.Data)
	if err != nil {
		h.Logger.Warn("Invalid lesson callback data", zap.String("data", callback.Data))
		AnswerCallbackAlert(ctx, b, callback.ID, "❌ Неверный формат данных")
		return nil, false
	}

	lesson, ok := h.Dialogs.LookupLesson(callback.From.ID, id)
	if !ok {
		AnswerCallbackAlert(ctx, b, callback.ID, handlers.ErrorMessage(handlers.ErrLessonNotFound))
		return nil, false
	}
	return lesson, true
}

// handleLessonMenu показывает карточку занятия с кнопками действий
func (h *Handler) handleLessonMenu(ctx context.Context, b *bot.Bot, callback *models.CallbackQuery) {
	msg := GetMessageFromCallback(callback)
	if msg == nil {
		AnswerCallback(ctx, b, callback.ID, "")
		return
	}

	lesson, ok := h.lessonFromCallback(ctx, b, callback)
	if !ok {
		return
	}

	studentName := "—"
	if student, err := h.Students.GetStudent(ctx, lesson.StudentID); err == nil {
		studentName = student.FullName
	} else {
		h.Logger.Warn("Failed to load student for lesson card", zap.Error(err))
	}

	kb := keyboard.NewBuilder()
	// Действия доступны только для запланированного занятия: из терминального
	// статуса переходов нет
	if lesson.Status == model.LessonStatusPlanned {
		id := lesson.ID.String()
		kb.Row(
			keyboard.Button("🟢 Провести", LessonComplete+id),
			keyboard.Button("🔴 Отменить", LessonCancel+id),
		).Row(
			keyboard.Button("🟡 Неявка", LessonNoShow+id),
			keyboard.Button("🕐 Перенести", LessonMove+id),
		).Row(
			keyboard.Button("✏️ Изменить тему", EditTopic+id),
		)
	}

	AnswerCallback(ctx, b, callback.ID, "")
	b.SendMessage(ctx, &bot.SendMessageParams{
		ChatID:      msg.Chat.ID,
		Text:        handlers.FormatLesson(lesson, studentName),
		ReplyMarkup: kb.Build(),
	})
}

// handleLessonComplete запускает диалог фиксации результата
func (h *Handler) handleLessonComplete(ctx context.Context, b *bot.Bot, callback *models.CallbackQuery) {
	msg := GetMessageFromCallback(callback)
	if msg == nil {
		AnswerCallback(ctx, b, callback.ID, "")
		return
	}

	lesson, ok := h.lessonFromCallback(ctx, b, callback)
	if !ok {
		return
	}
	if !model.CanTransition(lesson.Status, model.LessonStatusCompleted) {
		AnswerCallbackAlert(ctx, b, callback.ID, handlers.ErrorMessage(service.ErrIllegalTransition))
		return
	}

	AnswerCallback(ctx, b, callback.ID, "")
	h.Dialogs.StartCompleteLessonDialog(ctx, b, msg.Chat.ID, callback.From.ID, lesson.ID)
}

// handleLessonCancel отменяет занятие без списания
func (h *Handler) handleLessonCancel(ctx context.Context, b *bot.Bot, callback *models.CallbackQuery) {
	msg := GetMessageFromCallback(callback)
	if msg == nil {
		AnswerCallback(ctx, b, callback.ID, "")
		return
	}

	lesson, ok := h.lessonFromCallback(ctx, b, callback)
	if !ok {
		return
	}

	updated, err := h.Lessons.ChangeStatus(ctx, lesson, service.StatusChange{
		Status: model.LessonStatusCancelled,
	})
	if err != nil {
		h.Logger.Error("Failed to cancel lesson", zap.Error(err))
		AnswerCallbackAlert(ctx, b, callback.ID, handlers.ErrorMessage(err))
		return
	}

	h.Dialogs.MergeLessons(callback.From.ID, []model.Lesson{*updated})
	AnswerCallback(ctx, b, callback.ID, "Занятие отменено")
	b.SendMessage(ctx, &bot.SendMessageParams{
		ChatID: msg.Chat.ID,
		Text:   "🔴 Занятие отменено. С баланса ничего не списано.",
	})
}

// handleLessonNoShow спрашивает подтверждение неявки: это списание
// половины цены, случайного нажатия быть не должно
func (h *Handler) handleLessonNoShow(ctx context.Context, b *bot.Bot, callback *models.CallbackQuery) {
	msg := GetMessageFromCallback(callback)
	if msg == nil {
		AnswerCallback(ctx, b, callback.ID, "")
		return
	}

	lesson, ok := h.lessonFromCallback(ctx, b, callback)
	if !ok {
		return
	}
	if !model.CanTransition(lesson.Status, model.LessonStatusNoShow) {
		AnswerCallbackAlert(ctx, b, callback.ID, handlers.ErrorMessage(service.ErrIllegalTransition))
		return
	}

	kb := keyboard.NewBuilder().
		Row(
			keyboard.Button("✅ Подтвердить", NoShowYes+lesson.ID.String()),
			keyboard.Button("Отмена", NoShowNo),
		)

	AnswerCallback(ctx, b, callback.ID, "")
	b.SendMessage(ctx, &bot.SendMessageParams{
		ChatID:      msg.Chat.ID,
		Text:        "🟡 Отметить неявку? С баланса ученика спишется 50% цены занятия.",
		ReplyMarkup: kb.Build(),
	})
}

// handleNoShowConfirm фиксирует подтверждённую неявку
func (h *Handler) handleNoShowConfirm(ctx context.Context, b *bot.Bot, callback *models.CallbackQuery) {
	msg := GetMessageFromCallback(callback)
	if msg == nil {
		AnswerCallback(ctx, b, callback.ID, "")
		return
	}

	lesson, ok := h.lessonFromCallback(ctx, b, callback)
	if !ok {
		return
	}

	updated, err := h.Lessons.ChangeStatus(ctx, lesson, service.StatusChange{
		Status:    model.LessonStatusNoShow,
		Confirmed: true,
	})
	if err != nil {
		h.Logger.Error("Failed to mark no-show", zap.Error(err))
		AnswerCallbackAlert(ctx, b, callback.ID, handlers.ErrorMessage(err))
		return
	}

	h.Dialogs.MergeLessons(callback.From.ID, []model.Lesson{*updated})

	text := "🟡 Неявка отмечена."
	if charged, err := model.ChargedAmount(updated); err == nil {
		text += " Списано " + formatting.FormatPrice(charged) + "."
	}

	AnswerCallback(ctx, b, callback.ID, "Неявка отмечена")
	b.SendMessage(ctx, &bot.SendMessageParams{
		ChatID: msg.Chat.ID,
		Text:   text,
	})
}

// handleLessonMove запускает диалог переноса занятия
func (h *Handler) handleLessonMove(ctx context.Context, b *bot.Bot, callback *models.CallbackQuery) {
	msg := GetMessageFromCallback(callback)
	if msg == nil {
		AnswerCallback(ctx, b, callback.ID, "")
		return
	}

	lesson, ok := h.lessonFromCallback(ctx, b, callback)
	if !ok {
		return
	}
	if lesson.Status == model.LessonStatusCompleted {
		AnswerCallbackAlert(ctx, b, callback.ID, "❌ Проведённое занятие нельзя перенести")
		return
	}

	AnswerCallback(ctx, b, callback.ID, "")
	h.Dialogs.StartRescheduleDialog(ctx, b, msg.Chat.ID, callback.From.ID, lesson.ID)
}

// handleEditTopic запускает диалог смены темы
func (h *Handler) handleEditTopic(ctx context.Context, b *bot.Bot, callback *models.CallbackQuery) {
	msg := GetMessageFromCallback(callback)
	if msg == nil {
		AnswerCallback(ctx, b, callback.ID, "")
		return
	}

	lesson, ok := h.lessonFromCallback(ctx, b, callback)
	if !ok {
		return
	}

	AnswerCallback(ctx, b, callback.ID, "")
	h.Dialogs.StartEditTopicDialog(ctx, b, msg.Chat.ID, callback.From.ID, lesson.ID)
}

// handleScopeChoice применяет отложенную правку темы к одному занятию
// или ко всей серии
func (h *Handler) handleScopeChoice(ctx context.Context, b *bot.Bot, callback *models.CallbackQuery, series bool) {
	msg := GetMessageFromCallback(callback)
	if msg == nil {
		AnswerCallback(ctx, b, callback.ID, "")
		return
	}

	lesson, ok := h.lessonFromCallback(ctx, b, callback)
	if !ok {
		return
	}

	topicValue, ok := h.State.GetData(callback.From.ID, "pending_topic")
	if !ok {
		AnswerCallbackAlert(ctx, b, callback.ID, "❌ Правка устарела. Начните заново.")
		return
	}
	topic := topicValue.(string)

	scope := service.ScopeSingle
	if series {
		scope = service.ScopeSeries
	}

	updated, err := h.Lessons.EditLesson(ctx, lesson, model.LessonUpdate{Topic: &topic}, scope)
	if err != nil {
		h.Logger.Error("Failed to apply scoped edit", zap.Error(err))
		AnswerCallbackAlert(ctx, b, callback.ID, handlers.ErrorMessage(err))
		return
	}

	h.Dialogs.MergeLessons(callback.From.ID, updated)
	AnswerCallback(ctx, b, callback.ID, "")

	if series {
		b.SendMessage(ctx, &bot.SendMessageParams{
			ChatID: msg.Chat.ID,
			Text:   "✅ Тема обновлена у всей серии.",
		})
		return
	}
	b.SendMessage(ctx, &bot.SendMessageParams{
		ChatID: msg.Chat.ID,
		Text:   "✅ Тема обновлена. Занятие откреплено от серии и дальше живёт отдельно.",
	})
}

// handleScopeAbort закрывает выбор области без изменений
func (h *Handler) handleScopeAbort(ctx context.Context, b *bot.Bot, callback *models.CallbackQuery) {
	msg := GetMessageFromCallback(callback)
	AnswerCallback(ctx, b, callback.ID, "Изменения не применены")
	if msg != nil {
		b.SendMessage(ctx, &bot.SendMessageParams{
			ChatID: msg.Chat.ID,
			Text:   "Правка отменена, занятие не изменено.",
		})
	}
}

// handleAddLessonStudent продолжает диалог создания занятия после выбора ученика
func (h *Handler) handleAddLessonStudent(ctx context.Context, b *bot.Bot, callback *models.CallbackQuery) {
	msg := GetMessageFromCallback(callback)
	if msg == nil {
		AnswerCallback(ctx, b, callback.ID, "")
		return
	}

	studentID, err := ParseUUIDFromCallback(callback.Data)
	if err != nil {
		AnswerCallbackAlert(ctx, b, callback.ID, "❌ Неверный формат данных")
		return
	}

	AnswerCallback(ctx, b, callback.ID, "")
	h.Dialogs.StartAddLessonDialog(ctx, b, msg.Chat.ID, callback.From.ID, studentID)
}

// handleFrequencyOnce создаёт разовое занятие
func (h *Handler) handleFrequencyOnce(ctx context.Context, b *bot.Bot, callback *models.CallbackQuery) {
	msg := GetMessageFromCallback(callback)
	if msg == nil {
		AnswerCallback(ctx, b, callback.ID, "")
		return
	}

	AnswerCallback(ctx, b, callback.ID, "")
	h.Dialogs.SubmitLessonCreation(ctx, b, msg.Chat.ID, callback.From.ID, service.FrequencyOnce)
}

// handleFrequencyWeekly спрашивает дату окончания еженедельной серии
func (h *Handler) handleFrequencyWeekly(ctx context.Context, b *bot.Bot, callback *models.CallbackQuery) {
	msg := GetMessageFromCallback(callback)
	if msg == nil {
		AnswerCallback(ctx, b, callback.ID, "")
		return
	}

	AnswerCallback(ctx, b, callback.ID, "")
	h.Dialogs.AskRepeatUntil(ctx, b, msg.Chat.ID, callback.From.ID)
}

// handlePay запускает диалог записи оплаты
func (h *Handler) handlePay(ctx context.Context, b *bot.Bot, callback *models.CallbackQuery) {
	msg := GetMessageFromCallback(callback)
	if msg == nil {
		AnswerCallback(ctx, b, callback.ID, "")
		return
	}

	studentID, err := ParseUUIDFromCallback(callback.Data)
	if err != nil {
		AnswerCallbackAlert(ctx, b, callback.ID, "❌ Неверный формат данных")
		return
	}

	AnswerCallback(ctx, b, callback.ID, "")
	h.Dialogs.StartPaymentDialog(ctx, b, msg.Chat.ID, callback.From.ID, studentID)
}
