package handlers

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/denkrav/tutor_crm/internal/apiclient"
	"github.com/denkrav/tutor_crm/internal/controller/formatting"
	"github.com/denkrav/tutor_crm/internal/controller/keyboard"
	"github.com/denkrav/tutor_crm/internal/controller/state"
	"github.com/denkrav/tutor_crm/internal/model"
	"github.com/denkrav/tutor_crm/internal/service"
	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// StartAddLessonDialog запускает диалог после выбора ученика в callback
func (h *Handlers) StartAddLessonDialog(ctx context.Context, b *bot.Bot, chatID, telegramID int64, studentID uuid.UUID) {
	h.stateManager.SetState(telegramID, state.StateAddLessonDate)
	h.stateManager.SetData(telegramID, "student_id", studentID)

	b.SendMessage(ctx, &bot.SendMessageParams{
		ChatID: chatID,
		Text: "Шаг 2 из 5: Укажите дату занятия\n\n" +
			"Формат: ДД.ММ.ГГГГ, например 15.09.2025\n\n" +
			"Для отмены используйте /cancel",
	})
}

// handleAddLessonDateStep обрабатывает ввод даты занятия
func (h *Handlers) handleAddLessonDateStep(ctx context.Context, b *bot.Bot, update *models.Update) {
	telegramID := update.Message.From.ID
	input := strings.TrimSpace(update.Message.Text)

	date, err := time.ParseInLocation(InputDateLayout, input, time.Local)
	if err != nil {
		h.sendError(ctx, b, update.Message.Chat.ID,
			"❌ Неверный формат даты. Введите ДД.ММ.ГГГГ, например 15.09.2025.\n\nПопробуйте ещё раз:")
		return
	}

	h.stateManager.SetData(telegramID, "date", date)
	h.stateManager.SetState(telegramID, state.StateAddLessonTime)

	b.SendMessage(ctx, &bot.SendMessageParams{
		ChatID: update.Message.Chat.ID,
		Text: fmt.Sprintf("✅ Дата: %s\n\n"+
			"Шаг 3 из 5: Во сколько начинается занятие?\n\n"+
			"Формат: ЧЧ:ММ, например 15:00", formatting.FormatDate(date)),
	})
}

// handleAddLessonTimeStep обрабатывает ввод времени начала
func (h *Handlers) handleAddLessonTimeStep(ctx context.Context, b *bot.Bot, update *models.Update) {
	telegramID := update.Message.From.ID
	input := strings.TrimSpace(update.Message.Text)

	startClock, err := time.Parse(InputTimeLayout, input)
	if err != nil {
		h.sendError(ctx, b, update.Message.Chat.ID,
			"❌ Неверный формат времени. Введите ЧЧ:ММ, например 15:00.\n\nПопробуйте ещё раз:")
		return
	}

	dateValue, ok := h.stateManager.GetData(telegramID, "date")
	if !ok {
		h.abortDialog(ctx, b, update.Message.Chat.ID, telegramID)
		return
	}
	date := dateValue.(time.Time)

	start := time.Date(date.Year(), date.Month(), date.Day(),
		startClock.Hour(), startClock.Minute(), 0, 0, date.Location())

	h.stateManager.SetData(telegramID, "start_time", start)
	h.stateManager.SetState(telegramID, state.StateAddLessonDuration)

	b.SendMessage(ctx, &bot.SendMessageParams{
		ChatID: update.Message.Chat.ID,
		Text: fmt.Sprintf("✅ Начало: %s\n\n"+
			"Шаг 4 из 5: Укажите длительность в минутах\n\n"+
			"Например: 60, 90", formatting.FormatDateTime(start)),
	})
}

// handleAddLessonDurationStep обрабатывает ввод длительности
func (h *Handlers) handleAddLessonDurationStep(ctx context.Context, b *bot.Bot, update *models.Update) {
	telegramID := update.Message.From.ID
	input := strings.TrimSpace(update.Message.Text)

	minutes, err := strconv.Atoi(input)
	if err != nil || minutes < LessonMinDuration || minutes > LessonMaxDuration {
		h.sendError(ctx, b, update.Message.Chat.ID,
			fmt.Sprintf("❌ Длительность должна быть числом от %d до %d минут.\n\nПопробуйте ещё раз:",
				LessonMinDuration, LessonMaxDuration))
		return
	}

	startValue, ok := h.stateManager.GetData(telegramID, "start_time")
	if !ok {
		h.abortDialog(ctx, b, update.Message.Chat.ID, telegramID)
		return
	}
	start := startValue.(time.Time)

	h.stateManager.SetData(telegramID, "end_time", start.Add(time.Duration(minutes)*time.Minute))
	h.stateManager.SetState(telegramID, state.StateAddLessonTopic)

	b.SendMessage(ctx, &bot.SendMessageParams{
		ChatID: update.Message.Chat.ID,
		Text: "✅ Длительность: " + formatting.FormatDuration(minutes) + "\n\n" +
			"Шаг 5 из 5: Тема занятия\n\n" +
			"Введите тему или «-», чтобы оставить пустой",
	})
}

// handleAddLessonTopicStep обрабатывает ввод темы и спрашивает периодичность
func (h *Handlers) handleAddLessonTopicStep(ctx context.Context, b *bot.Bot, update *models.Update) {
	telegramID := update.Message.From.ID
	topic := strings.TrimSpace(update.Message.Text)

	if topic == "-" {
		topic = ""
	}
	if len(topic) > LessonTopicMaxLength {
		h.sendError(ctx, b, update.Message.Chat.ID,
			fmt.Sprintf("❌ Тема слишком длинная. Максимум %d символов.\n\nПопробуйте ещё раз:", LessonTopicMaxLength))
		return
	}

	h.stateManager.SetData(telegramID, "topic", topic)
	h.stateManager.ClearDialog(telegramID)

	kb := keyboard.NewBuilder().
		Row(
			keyboard.Button("Разовое", "freq_once"),
			keyboard.Button("🔁 Каждую неделю", "freq_weekly"),
		)

	b.SendMessage(ctx, &bot.SendMessageParams{
		ChatID:      update.Message.Chat.ID,
		Text:        "Как создать занятие?",
		ReplyMarkup: kb.Build(),
	})
}

// AskRepeatUntil спрашивает дату окончания серии (после выбора weekly)
func (h *Handlers) AskRepeatUntil(ctx context.Context, b *bot.Bot, chatID, telegramID int64) {
	h.stateManager.SetState(telegramID, state.StateAddLessonRepeatUntil)

	b.SendMessage(ctx, &bot.SendMessageParams{
		ChatID: chatID,
		Text: "До какой даты повторять занятие?\n\n" +
			"Формат: ДД.ММ.ГГГГ, дата включительно.\n" +
			fmt.Sprintf("Серия не может быть длиннее %d занятий.", service.MaxSeriesOccurrences),
	})
}

// handleAddLessonRepeatUntilStep обрабатывает дату окончания серии
func (h *Handlers) handleAddLessonRepeatUntilStep(ctx context.Context, b *bot.Bot, update *models.Update) {
	telegramID := update.Message.From.ID
	input := strings.TrimSpace(update.Message.Text)

	until, err := time.ParseInLocation(InputDateLayout, input, time.Local)
	if err != nil {
		h.sendError(ctx, b, update.Message.Chat.ID,
			"❌ Неверный формат даты. Введите ДД.ММ.ГГГГ.\n\nПопробуйте ещё раз:")
		return
	}

	h.stateManager.SetData(telegramID, "repeat_until", until)
	h.SubmitLessonCreation(ctx, b, update.Message.Chat.ID, telegramID, service.FrequencyWeekly)
}

// SubmitLessonCreation собирает запрос из данных диалога и создаёт занятия
func (h *Handlers) SubmitLessonCreation(ctx context.Context, b *bot.Bot, chatID, telegramID int64, frequency service.Frequency) {
	studentValue, ok1 := h.stateManager.GetData(telegramID, "student_id")
	startValue, ok2 := h.stateManager.GetData(telegramID, "start_time")
	endValue, ok3 := h.stateManager.GetData(telegramID, "end_time")
	topicValue, ok4 := h.stateManager.GetData(telegramID, "topic")
	if !ok1 || !ok2 || !ok3 || !ok4 {
		h.abortDialog(ctx, b, chatID, telegramID)
		return
	}

	req := service.SeriesRequest{
		StudentID: studentValue.(uuid.UUID),
		StartTime: startValue.(time.Time),
		EndTime:   endValue.(time.Time),
		Topic:     topicValue.(string),
		Frequency: frequency,
	}
	if frequency == service.FrequencyWeekly {
		untilValue, ok := h.stateManager.GetData(telegramID, "repeat_until")
		if !ok {
			h.abortDialog(ctx, b, chatID, telegramID)
			return
		}
		req.RepeatUntil = untilValue.(time.Time)
	}

	created, err := h.lessonService.CreateLessons(ctx, req)

	var partial *service.PartialBatchError
	switch {
	case err == nil:
		h.stateManager.ClearDialog(telegramID)
		if len(created) == 1 {
			b.SendMessage(ctx, &bot.SendMessageParams{
				ChatID: chatID,
				Text:   "✅ Занятие создано: " + formatting.FormatDateTime(req.StartTime),
			})
			return
		}
		b.SendMessage(ctx, &bot.SendMessageParams{
			ChatID: chatID,
			Text: fmt.Sprintf("✅ Создана серия из %d занятий\n\nПервое: %s\nПоследнее: %s",
				len(created),
				formatting.FormatDateTime(created[0].StartTime.Time),
				formatting.FormatDateTime(created[len(created)-1].StartTime.Time)),
		})

	case errors.As(err, &partial):
		// Часть занятий создана: отката нет, сообщаем что именно получилось
		h.stateManager.ClearDialog(telegramID)
		h.logger.Warn("Series created partially",
			zap.Int("created", len(partial.Created)),
			zap.Int("failed", len(partial.Failed)),
		)
		b.SendMessage(ctx, &bot.SendMessageParams{
			ChatID: chatID,
			Text: fmt.Sprintf("⚠️ Серия создана частично: %d из %d занятий.\n"+
				"Проверьте расписание (/week) и добавьте недостающие вручную.",
				len(partial.Created), len(partial.Created)+len(partial.Failed)),
		})

	case errors.Is(err, service.ErrInvalidDateRange):
		h.sendError(ctx, b, chatID, "❌ Дата окончания раньше даты первого занятия.\n\nВведите другую дату:")

	case errors.Is(err, service.ErrTooManyOccurrences):
		h.sendError(ctx, b, chatID,
			fmt.Sprintf("❌ Слишком длинная серия (максимум %d занятий).\n\nВведите более близкую дату:", service.MaxSeriesOccurrences))

	default:
		h.stateManager.ClearDialog(telegramID)
		h.logger.Error("Failed to create lessons", zap.Error(err))
		h.sendError(ctx, b, chatID, "❌ Не удалось создать занятия. Попробуйте позже.")
	}
}

// StartCompleteLessonDialog спрашивает тему проведённого занятия
func (h *Handlers) StartCompleteLessonDialog(ctx context.Context, b *bot.Bot, chatID, telegramID int64, lessonID uuid.UUID) {
	h.stateManager.SetState(telegramID, state.StateCompleteLessonTopic)
	h.stateManager.SetData(telegramID, "lesson_id", lessonID)
	// Вложения прошлого диалога не должны прилипнуть к этому занятию
	h.stateManager.DeleteData(telegramID, "complete_material")
	h.stateManager.DeleteData(telegramID, "complete_homework")

	b.SendMessage(ctx, &bot.SendMessageParams{
		ChatID: chatID,
		Text: "📖 Фиксация результата занятия\n\n" +
			"Шаг 1 из 3: Какая была тема? Введите текст или «-», чтобы оставить текущую.",
	})
}

// handleCompleteLessonTopicStep запоминает тему и спрашивает материал
func (h *Handlers) handleCompleteLessonTopicStep(ctx context.Context, b *bot.Bot, update *models.Update) {
	telegramID := update.Message.From.ID
	chatID := update.Message.Chat.ID

	lesson, ok := h.dialogLesson(telegramID)
	if !ok {
		h.abortDialog(ctx, b, chatID, telegramID)
		return
	}

	topic := strings.TrimSpace(update.Message.Text)
	if topic == "-" {
		topic = lesson.Topic
	}

	h.stateManager.SetData(telegramID, "complete_topic", topic)
	h.stateManager.SetState(telegramID, state.StateCompleteLessonMaterial)

	b.SendMessage(ctx, &bot.SendMessageParams{
		ChatID: chatID,
		Text: "Шаг 2 из 3: Прикрепите материал занятия (документ или фото)\n\n" +
			"Или отправьте «-», чтобы пропустить.",
	})
}

// handleCompleteLessonMaterialStep принимает файл материала или пропуск
func (h *Handlers) handleCompleteLessonMaterialStep(ctx context.Context, b *bot.Bot, update *models.Update) {
	telegramID := update.Message.From.ID
	chatID := update.Message.Chat.ID

	if strings.TrimSpace(update.Message.Text) != "-" {
		file, ok := h.acceptAttachment(ctx, b, chatID, update.Message, "material")
		if !ok {
			return
		}
		h.stateManager.SetData(telegramID, "complete_material", file)
	}

	h.stateManager.SetState(telegramID, state.StateCompleteLessonHomework)
	b.SendMessage(ctx, &bot.SendMessageParams{
		ChatID: chatID,
		Text: "Шаг 3 из 3: Прикрепите домашнее задание (документ или фото)\n\n" +
			"Или отправьте «-», чтобы завершить без него.",
	})
}

// handleCompleteLessonHomeworkStep принимает домашку и завершает занятие
func (h *Handlers) handleCompleteLessonHomeworkStep(ctx context.Context, b *bot.Bot, update *models.Update) {
	telegramID := update.Message.From.ID
	chatID := update.Message.Chat.ID

	if strings.TrimSpace(update.Message.Text) != "-" {
		file, ok := h.acceptAttachment(ctx, b, chatID, update.Message, "homework")
		if !ok {
			return
		}
		h.stateManager.SetData(telegramID, "complete_homework", file)
	}

	h.submitLessonCompletion(ctx, b, chatID, telegramID)
}

// submitLessonCompletion собирает результат из данных диалога и переводит
// занятие в completed. Файлы уходят в хранилище до смены статуса: если
// загрузка не удалась, занятие остаётся запланированным.
func (h *Handlers) submitLessonCompletion(ctx context.Context, b *bot.Bot, chatID, telegramID int64) {
	lesson, ok := h.dialogLesson(telegramID)
	topicValue, okTopic := h.stateManager.GetData(telegramID, "complete_topic")
	if !ok || !okTopic {
		h.abortDialog(ctx, b, chatID, telegramID)
		return
	}

	result := service.LessonResult{Topic: topicValue.(string)}
	if value, ok := h.stateManager.GetData(telegramID, "complete_material"); ok {
		if file, ok := value.(*apiclient.UploadFile); ok {
			result.Material = file
		}
	}
	if value, ok := h.stateManager.GetData(telegramID, "complete_homework"); ok {
		if file, ok := value.(*apiclient.UploadFile); ok {
			result.Homework = file
		}
	}

	if result.Material != nil || result.Homework != nil {
		student, err := h.studentService.GetStudent(ctx, lesson.StudentID)
		if err != nil {
			h.stateManager.ClearDialog(telegramID)
			h.logger.Error("Failed to resolve student for lesson files", zap.Error(err))
			h.sendError(ctx, b, chatID, "❌ Не удалось определить ученика для загрузки файлов. Занятие не завершено.")
			return
		}
		result.StudentSlug = student.Slug
	}

	updated, err := h.lessonService.ChangeStatus(ctx, lesson, service.StatusChange{
		Status: model.LessonStatusCompleted,
		Result: &result,
	})
	if err != nil {
		h.stateManager.ClearDialog(telegramID)
		h.logger.Error("Failed to complete lesson", zap.Error(err))
		h.sendError(ctx, b, chatID, ErrorMessage(err))
		return
	}

	h.stateManager.ClearDialog(telegramID)
	h.stateManager.DeleteData(telegramID, "complete_material")
	h.stateManager.DeleteData(telegramID, "complete_homework")
	h.MergeLessons(telegramID, []model.Lesson{*updated})

	text := "🟢 Занятие проведено.\n💳 С баланса ученика списано " +
		formatting.FormatPrice(updated.Price) + "."
	if updated.MaterialURL != nil || updated.HomeworkURL != nil {
		text += "\n📎 Файлы сохранены."
	}
	b.SendMessage(ctx, &bot.SendMessageParams{
		ChatID: chatID,
		Text:   text,
	})
}

// acceptAttachment достаёт вложение из сообщения и скачивает его из
// Telegram. При любой проблеме сообщает пользователю и оставляет шаг
// активным для повторной попытки.
func (h *Handlers) acceptAttachment(ctx context.Context, b *bot.Bot, chatID int64, message *models.Message, fallbackName string) (*apiclient.UploadFile, bool) {
	fileID, name, ok := attachmentFromMessage(message, fallbackName)
	if !ok {
		h.sendError(ctx, b, chatID,
			"❌ Прикрепите документ или фото, либо отправьте «-», чтобы пропустить.")
		return nil, false
	}

	file, err := h.downloadAttachment(ctx, b, fileID, name)
	if err != nil {
		h.logger.Error("Failed to download attachment", zap.Error(err))
		h.sendError(ctx, b, chatID,
			"❌ Не удалось получить файл из Telegram.\n\nПопробуйте ещё раз или отправьте «-».")
		return nil, false
	}
	return file, true
}

// attachmentFromMessage извлекает файл из сообщения: документ как есть,
// из фото берётся самый крупный размер
func attachmentFromMessage(message *models.Message, fallbackName string) (fileID, name string, ok bool) {
	if message.Document != nil {
		name = message.Document.FileName
		if name == "" {
			name = fallbackName
		}
		return message.Document.FileID, name, true
	}
	if len(message.Photo) > 0 {
		return message.Photo[len(message.Photo)-1].FileID, fallbackName + ".jpg", true
	}
	return "", "", false
}

// downloadAttachment скачивает файл из Telegram для передачи в хранилище
func (h *Handlers) downloadAttachment(ctx context.Context, b *bot.Bot, fileID, name string) (*apiclient.UploadFile, error) {
	file, err := b.GetFile(ctx, &bot.GetFileParams{FileID: fileID})
	if err != nil {
		return nil, fmt.Errorf("get file %s: %w", fileID, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, b.FileDownloadLink(file), nil)
	if err != nil {
		return nil, fmt.Errorf("build download request: %w", err)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("download %s: %w", name, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("download %s: unexpected status %d", name, resp.StatusCode)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", name, err)
	}

	return &apiclient.UploadFile{Name: name, Reader: bytes.NewReader(data)}, nil
}

// StartEditTopicDialog спрашивает новую тему занятия
func (h *Handlers) StartEditTopicDialog(ctx context.Context, b *bot.Bot, chatID, telegramID int64, lessonID uuid.UUID) {
	h.stateManager.SetState(telegramID, state.StateEditLessonTopic)
	h.stateManager.SetData(telegramID, "lesson_id", lessonID)

	b.SendMessage(ctx, &bot.SendMessageParams{
		ChatID: chatID,
		Text:   "✏️ Введите новую тему занятия:",
	})
}

// handleEditLessonTopicStep применяет новую тему; для занятия из серии
// сначала спрашивает область действия
func (h *Handlers) handleEditLessonTopicStep(ctx context.Context, b *bot.Bot, update *models.Update) {
	telegramID := update.Message.From.ID
	chatID := update.Message.Chat.ID

	lesson, ok := h.dialogLesson(telegramID)
	if !ok {
		h.abortDialog(ctx, b, chatID, telegramID)
		return
	}

	topic := strings.TrimSpace(update.Message.Text)
	if len(topic) > LessonTopicMaxLength {
		h.sendError(ctx, b, chatID,
			fmt.Sprintf("❌ Тема слишком длинная. Максимум %d символов.\n\nПопробуйте ещё раз:", LessonTopicMaxLength))
		return
	}

	if lesson.SeriesID != nil {
		// Занятие из серии: без явного выбора области ничего не меняем
		h.stateManager.SetData(telegramID, "pending_topic", topic)
		h.stateManager.ClearDialog(telegramID)

		kb := keyboard.NewBuilder().
			Row(keyboard.Button("Только это занятие", "scope_single:"+lesson.ID.String())).
			Row(keyboard.Button("🔁 Всю серию", "scope_series:"+lesson.ID.String())).
			Row(keyboard.Button("Отмена", "scope_abort"))

		b.SendMessage(ctx, &bot.SendMessageParams{
			ChatID:      chatID,
			Text:        "Это занятие из еженедельной серии. К чему применить изменения?",
			ReplyMarkup: kb.Build(),
		})
		return
	}

	h.stateManager.ClearDialog(telegramID)
	updated, err := h.lessonService.EditLesson(ctx, lesson, model.LessonUpdate{Topic: &topic}, service.ScopeUnspecified)
	if err != nil {
		h.logger.Error("Failed to edit lesson", zap.Error(err))
		h.sendError(ctx, b, chatID, ErrorMessage(err))
		return
	}

	h.MergeLessons(telegramID, updated)
	b.SendMessage(ctx, &bot.SendMessageParams{
		ChatID: chatID,
		Text:   "✅ Тема обновлена.",
	})
}

// StartPaymentDialog спрашивает сумму оплаты
func (h *Handlers) StartPaymentDialog(ctx context.Context, b *bot.Bot, chatID, telegramID int64, studentID uuid.UUID) {
	h.stateManager.SetState(telegramID, state.StatePaymentAmount)
	h.stateManager.SetData(telegramID, "payment_student_id", studentID)

	b.SendMessage(ctx, &bot.SendMessageParams{
		ChatID: chatID,
		Text:   "💳 Введите сумму оплаты в гривнах:",
	})
}

// handlePaymentAmountStep записывает оплату
func (h *Handlers) handlePaymentAmountStep(ctx context.Context, b *bot.Bot, update *models.Update) {
	telegramID := update.Message.From.ID
	chatID := update.Message.Chat.ID
	input := strings.TrimSpace(strings.ReplaceAll(update.Message.Text, ",", "."))

	amount, err := strconv.ParseFloat(input, 64)
	if err != nil || amount <= 0 || amount > PaymentMaxAmount {
		h.sendError(ctx, b, chatID,
			"❌ Неверная сумма. Введите положительное число, например 800 или 650.50.\n\nПопробуйте ещё раз:")
		return
	}

	studentValue, ok := h.stateManager.GetData(telegramID, "payment_student_id")
	if !ok {
		h.abortDialog(ctx, b, chatID, telegramID)
		return
	}

	h.stateManager.ClearDialog(telegramID)

	student, err := h.studentService.RecordPayment(ctx, studentValue.(uuid.UUID), amount, "Пополнение баланса")
	switch {
	case err == nil:
		b.SendMessage(ctx, &bot.SendMessageParams{
			ChatID: chatID,
			Text: fmt.Sprintf("✅ Оплата %s записана.\n💰 Баланс %s: %s",
				formatting.FormatPrice(amount), student.FullName, formatting.FormatBalance(student.Balance)),
		})

	case errors.Is(err, service.ErrBalanceRefreshFailed):
		// Оплата уже в хранилище: не провоцируем повторный ввод
		h.logger.Warn("Payment recorded, balance unknown", zap.Error(err))
		b.SendMessage(ctx, &bot.SendMessageParams{
			ChatID: chatID,
			Text: "✅ Оплата " + formatting.FormatPrice(amount) + " записана.\n" +
				"⚠️ Свежий баланс загрузить не удалось — проверьте /students.",
		})

	default:
		h.logger.Error("Failed to record payment", zap.Error(err))
		h.sendError(ctx, b, chatID, "❌ Не удалось записать оплату. Попробуйте позже.")
	}
}

// StartRescheduleDialog спрашивает новую дату занятия
func (h *Handlers) StartRescheduleDialog(ctx context.Context, b *bot.Bot, chatID, telegramID int64, lessonID uuid.UUID) {
	h.stateManager.SetState(telegramID, state.StateRescheduleDate)
	h.stateManager.SetData(telegramID, "lesson_id", lessonID)

	b.SendMessage(ctx, &bot.SendMessageParams{
		ChatID: chatID,
		Text: "🕐 Перенос занятия\n\n" +
			"На какую дату перенести? Формат: ДД.ММ.ГГГГ\n\n" +
			"Для отмены используйте /cancel",
	})
}

// handleRescheduleDateStep обрабатывает новую дату переноса
func (h *Handlers) handleRescheduleDateStep(ctx context.Context, b *bot.Bot, update *models.Update) {
	telegramID := update.Message.From.ID
	input := strings.TrimSpace(update.Message.Text)

	date, err := time.ParseInLocation(InputDateLayout, input, time.Local)
	if err != nil {
		h.sendError(ctx, b, update.Message.Chat.ID,
			"❌ Неверный формат даты. Введите ДД.ММ.ГГГГ.\n\nПопробуйте ещё раз:")
		return
	}

	h.stateManager.SetData(telegramID, "reschedule_date", date)
	h.stateManager.SetState(telegramID, state.StateRescheduleTime)

	b.SendMessage(ctx, &bot.SendMessageParams{
		ChatID: update.Message.Chat.ID,
		Text:   "Во сколько начнётся занятие? Формат: ЧЧ:ММ",
	})
}

// handleRescheduleTimeStep переносит занятие на новое время, сохраняя
// его длительность
func (h *Handlers) handleRescheduleTimeStep(ctx context.Context, b *bot.Bot, update *models.Update) {
	telegramID := update.Message.From.ID
	chatID := update.Message.Chat.ID
	input := strings.TrimSpace(update.Message.Text)

	clock, err := time.Parse(InputTimeLayout, input)
	if err != nil {
		h.sendError(ctx, b, chatID,
			"❌ Неверный формат времени. Введите ЧЧ:ММ.\n\nПопробуйте ещё раз:")
		return
	}

	lesson, ok := h.dialogLesson(telegramID)
	if !ok {
		h.abortDialog(ctx, b, chatID, telegramID)
		return
	}
	dateValue, ok := h.stateManager.GetData(telegramID, "reschedule_date")
	if !ok {
		h.abortDialog(ctx, b, chatID, telegramID)
		return
	}
	date := dateValue.(time.Time)

	start := time.Date(date.Year(), date.Month(), date.Day(),
		clock.Hour(), clock.Minute(), 0, 0, date.Location())
	end := start.Add(lesson.EndTime.Sub(lesson.StartTime.Time))

	h.stateManager.ClearDialog(telegramID)

	updated, err := h.lessonService.Reschedule(ctx, lesson.ID, start, end)
	if err != nil {
		h.logger.Error("Failed to reschedule lesson", zap.Error(err))
		h.sendError(ctx, b, chatID, ErrorMessage(err))
		return
	}

	h.MergeLessons(telegramID, []model.Lesson{*updated})
	b.SendMessage(ctx, &bot.SendMessageParams{
		ChatID: chatID,
		Text: "✅ Занятие перенесено на " + formatting.FormatDateTime(updated.StartTime.Time) +
			" (" + formatting.FormatTimeRange(updated.StartTime.Time, updated.EndTime.Time) + ")",
	})
}

// dialogLesson достаёт занятие текущего диалога из данных пользователя
func (h *Handlers) dialogLesson(telegramID int64) (*model.Lesson, bool) {
	idValue, ok := h.stateManager.GetData(telegramID, "lesson_id")
	if !ok {
		return nil, false
	}
	return h.LookupLesson(telegramID, idValue.(uuid.UUID))
}

// abortDialog сбрасывает потерявший данные диалог
func (h *Handlers) abortDialog(ctx context.Context, b *bot.Bot, chatID, telegramID int64) {
	h.stateManager.ClearDialog(telegramID)
	h.sendError(ctx, b, chatID, "❌ Диалог потерял данные. Начните заново.")
}
