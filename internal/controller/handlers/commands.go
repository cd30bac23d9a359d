package handlers

import (
	"bytes"
	"context"
	"strings"
	"time"

	"github.com/denkrav/tutor_crm/internal/controller/formatting"
	"github.com/denkrav/tutor_crm/internal/controller/keyboard"
	"github.com/denkrav/tutor_crm/internal/controller/render"
	"github.com/denkrav/tutor_crm/internal/controller/state"
	"github.com/denkrav/tutor_crm/internal/model"
	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"go.uber.org/zap"
)

// HandleStart обрабатывает команду /start
func (h *Handlers) HandleStart(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update.Message == nil {
		return
	}

	welcomeText := "👋 Привет!\n\n" +
		"Это Tutor CRM — помощник репетитора: расписание, ученики, балансы.\n\n" +
		"Доступные команды:\n" +
		"/today - Занятия на сегодня\n" +
		"/week - Расписание недели картинкой\n" +
		"/addlesson - Создать занятие или серию\n" +
		"/students - Ученики и балансы\n" +
		"/help - Справка"

	b.SendMessage(ctx, &bot.SendMessageParams{
		ChatID: update.Message.Chat.ID,
		Text:   welcomeText,
	})
}

// HandleHelp обрабатывает команду /help
func (h *Handlers) HandleHelp(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update.Message == nil {
		return
	}

	helpText := "📚 Справка по командам:\n\n" +
		"/today - Список занятий на сегодня с кнопками действий\n" +
		"/week - Картинка расписания текущей недели\n" +
		"/addlesson - Создать занятие (разовое или еженедельную серию)\n" +
		"/students - Список учеников с балансами и кнопкой оплаты\n" +
		"/cancel - Отменить текущий диалог\n\n" +
		"Статусы занятий:\n" +
		"🟣 запланировано · 🟢 проведено (полная цена)\n" +
		"🔴 отменено (без списания) · 🟡 неявка (50% цены)"

	b.SendMessage(ctx, &bot.SendMessageParams{
		ChatID: update.Message.Chat.ID,
		Text:   helpText,
	})
}

// HandleCancel обрабатывает команду /cancel - отмена текущего диалога
func (h *Handlers) HandleCancel(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update.Message == nil {
		return
	}

	telegramID := update.Message.From.ID
	currentState := h.stateManager.GetState(telegramID)

	if currentState == state.StateNone {
		b.SendMessage(ctx, &bot.SendMessageParams{
			ChatID: update.Message.Chat.ID,
			Text:   "❌ Нет активных операций для отмены.",
		})
		return
	}

	h.stateManager.ClearDialog(telegramID)

	b.SendMessage(ctx, &bot.SendMessageParams{
		ChatID: update.Message.Chat.ID,
		Text:   "✅ Операция отменена.\n\nИспользуйте /help для просмотра доступных команд.",
	})
}

// HandleToday показывает занятия на сегодня с кнопками действий
func (h *Handlers) HandleToday(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update.Message == nil {
		return
	}

	now := time.Now()
	dayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	h.sendLessonList(ctx, b, update.Message.Chat.ID, update.Message.From.ID, dayStart, dayStart.AddDate(0, 0, 1),
		"📅 Занятия на сегодня ("+formatting.FormatDate(dayStart)+")")
}

// HandleWeek отправляет картинку расписания текущей недели
func (h *Handlers) HandleWeek(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update.Message == nil {
		return
	}

	chatID := update.Message.Chat.ID
	weekStart := startOfWeek(time.Now())
	weekEnd := weekStart.AddDate(0, 0, 7)

	events, err := h.calendarService.FetchWindow(ctx, update.Message.From.ID, weekStart, weekEnd)
	if err != nil {
		h.logger.Error("Failed to fetch week window", zap.Error(err))
		h.sendError(ctx, b, chatID, "❌ Не удалось загрузить расписание. Попробуйте позже.")
		return
	}

	if len(events) == 0 {
		b.SendMessage(ctx, &bot.SendMessageParams{
			ChatID: chatID,
			Text:   "На этой неделе занятий нет.",
		})
		return
	}

	image, err := render.GenerateWeekImage(weekStart, events, h.fontPath)
	if err != nil {
		h.logger.Error("Failed to render week image", zap.Error(err))
		h.sendError(ctx, b, chatID, "❌ Не удалось построить картинку расписания.")
		return
	}

	b.SendPhoto(ctx, &bot.SendPhotoParams{
		ChatID: chatID,
		Photo: &models.InputFileUpload{
			Filename: "week.png",
			Data:     bytes.NewReader(image),
		},
		Caption: "🗓 Расписание недели " + formatting.FormatDate(weekStart) + " - " + formatting.FormatDate(weekEnd.AddDate(0, 0, -1)),
	})
}

// HandleStudents показывает учеников с балансами
func (h *Handlers) HandleStudents(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update.Message == nil {
		return
	}

	chatID := update.Message.Chat.ID
	students, err := h.studentService.ListStudents(ctx)
	if err != nil {
		h.logger.Error("Failed to list students", zap.Error(err))
		h.sendError(ctx, b, chatID, "❌ Не удалось загрузить список учеников.")
		return
	}

	if len(students) == 0 {
		b.SendMessage(ctx, &bot.SendMessageParams{
			ChatID: chatID,
			Text:   "Учеников пока нет.",
		})
		return
	}

	for _, student := range students {
		text := "👤 " + student.FullName
		if student.Grade != "" {
			text += ", " + student.Grade + " класс"
		}
		text += "\n💰 Баланс: " + formatting.FormatBalance(student.Balance) +
			"\n💵 Тариф: " + formatting.FormatPrice(student.DefaultPrice)
		if student.Comment != "" {
			text += "\n📝 " + student.Comment
		}

		kb := keyboard.NewBuilder().
			Row(keyboard.Button("💳 Записать оплату", "pay:"+student.ID.String()))
		if student.TelegramContact != "" {
			kb.Row(keyboard.URLButton("✈️ Написать в Telegram",
				"https://t.me/"+strings.TrimPrefix(student.TelegramContact, "@")))
		}

		b.SendMessage(ctx, &bot.SendMessageParams{
			ChatID:      chatID,
			Text:        text,
			ReplyMarkup: kb.Build(),
		})
	}
}

// HandleAddLessonStart начинает диалог создания занятия
func (h *Handlers) HandleAddLessonStart(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update.Message == nil {
		return
	}

	chatID := update.Message.Chat.ID
	students, err := h.studentService.ListStudents(ctx)
	if err != nil {
		h.logger.Error("Failed to list students for lesson dialog", zap.Error(err))
		h.sendError(ctx, b, chatID, "❌ Не удалось загрузить список учеников.")
		return
	}

	if len(students) == 0 {
		b.SendMessage(ctx, &bot.SendMessageParams{
			ChatID: chatID,
			Text:   "Сначала заведите ученика — без него занятие не создать.",
		})
		return
	}

	kb := keyboard.NewBuilder()
	for _, student := range students {
		kb.Row(keyboard.Button(student.FullName, "addlesson_student:"+student.ID.String()))
	}

	b.SendMessage(ctx, &bot.SendMessageParams{
		ChatID:      chatID,
		Text:        "📝 Создание занятия\n\nШаг 1 из 5: Выберите ученика",
		ReplyMarkup: kb.Build(),
	})
}

// HandleTextMessage обрабатывает текстовые сообщения в зависимости от состояния пользователя
func (h *Handlers) HandleTextMessage(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update.Message == nil {
		return
	}

	// Игнорируем команды (они обрабатываются другими handlers)
	if strings.HasPrefix(update.Message.Text, "/") {
		return
	}

	telegramID := update.Message.From.ID
	currentState := h.stateManager.GetState(telegramID)

	// Шаги с вложениями принимают не только текст: у сообщения
	// с документом или фото поле Text пустое
	switch currentState {
	case state.StateCompleteLessonMaterial:
		h.handleCompleteLessonMaterialStep(ctx, b, update)
		return
	case state.StateCompleteLessonHomework:
		h.handleCompleteLessonHomeworkStep(ctx, b, update)
		return
	}

	if update.Message.Text == "" {
		return
	}

	switch currentState {
	case state.StateAddLessonDate:
		h.handleAddLessonDateStep(ctx, b, update)
	case state.StateAddLessonTime:
		h.handleAddLessonTimeStep(ctx, b, update)
	case state.StateAddLessonDuration:
		h.handleAddLessonDurationStep(ctx, b, update)
	case state.StateAddLessonTopic:
		h.handleAddLessonTopicStep(ctx, b, update)
	case state.StateAddLessonRepeatUntil:
		h.handleAddLessonRepeatUntilStep(ctx, b, update)
	case state.StateCompleteLessonTopic:
		h.handleCompleteLessonTopicStep(ctx, b, update)
	case state.StateEditLessonTopic:
		h.handleEditLessonTopicStep(ctx, b, update)
	case state.StateRescheduleDate:
		h.handleRescheduleDateStep(ctx, b, update)
	case state.StateRescheduleTime:
		h.handleRescheduleTimeStep(ctx, b, update)
	case state.StatePaymentAmount:
		h.handlePaymentAmountStep(ctx, b, update)
	}
}

// sendLessonList загружает окно календаря и отправляет занятия карточками
func (h *Handlers) sendLessonList(ctx context.Context, b *bot.Bot, chatID, telegramID int64, from, to time.Time, header string) {
	events, err := h.calendarService.FetchWindow(ctx, telegramID, from, to)
	if err != nil {
		h.logger.Error("Failed to fetch calendar window", zap.Error(err))
		h.sendError(ctx, b, chatID, "❌ Не удалось загрузить расписание. Показаны могут быть устаревшие данные.")
		return
	}

	if len(events) == 0 {
		b.SendMessage(ctx, &bot.SendMessageParams{
			ChatID: chatID,
			Text:   header + "\n\nЗанятий нет.",
		})
		return
	}

	b.SendMessage(ctx, &bot.SendMessageParams{
		ChatID: chatID,
		Text:   header,
	})

	remembered := make([]model.Lesson, 0, len(events))
	for _, event := range events {
		remembered = append(remembered, event.Lesson)

		kb := keyboard.NewBuilder().
			Row(keyboard.Button("ℹ️ Действия", "lesson_menu:"+event.ID.String()))

		b.SendMessage(ctx, &bot.SendMessageParams{
			ChatID:      chatID,
			Text:        event.TimeLabel + " — " + event.Title,
			ReplyMarkup: kb.Build(),
		})
	}
	h.RememberLessons(telegramID, remembered)
}

// startOfWeek возвращает полночь понедельника недели указанной даты
func startOfWeek(t time.Time) time.Time {
	day := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
	for day.Weekday() != time.Monday {
		day = day.AddDate(0, 0, -1)
	}
	return day
}
