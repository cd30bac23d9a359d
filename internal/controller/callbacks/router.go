package callbacks

import (
	"context"
	"strings"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"go.uber.org/zap"
)

// ========================
// Callback Data Patterns
// ========================

// Занятия
const (
	LessonMenu     = "lesson_menu:"     // lesson_menu:<lesson_id>
	LessonComplete = "lesson_complete:" // lesson_complete:<lesson_id>
	LessonCancel   = "lesson_cancel:"   // lesson_cancel:<lesson_id>
	LessonNoShow   = "lesson_noshow:"   // lesson_noshow:<lesson_id>
	LessonMove     = "lesson_move:"     // lesson_move:<lesson_id>
	NoShowYes      = "noshow_yes:"      // noshow_yes:<lesson_id>
	NoShowNo       = "noshow_no"
	EditTopic      = "edit_topic:" // edit_topic:<lesson_id>
)

// Область действия правки занятия из серии
const (
	ScopeSingle = "scope_single:" // scope_single:<lesson_id>
	ScopeSeries = "scope_series:" // scope_series:<lesson_id>
	ScopeAbort  = "scope_abort"
)

// Создание занятия и оплаты
const (
	AddLessonStudent = "addlesson_student:" // addlesson_student:<student_id>
	FreqOnce         = "freq_once"
	FreqWeekly       = "freq_weekly"
	Pay              = "pay:" // pay:<student_id>
)

// HandleCallbackQuery точка входа для всех callback query бота
func (h *Handler) HandleCallbackQuery(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update.CallbackQuery == nil {
		return
	}
	Route(ctx, b, update.CallbackQuery, h)
}

// Route распределяет callback query по соответствующим обработчикам
func Route(ctx context.Context, b *bot.Bot, callback *models.CallbackQuery, h *Handler) {
	data := callback.Data

	h.Logger.Info("Routing callback",
		zap.String("data", data),
		zap.Int64("user_id", callback.From.ID),
	)

	switch {
	// ===== Занятия =====
	case strings.HasPrefix(data, LessonMenu):
		h.handleLessonMenu(ctx, b, callback)
	case strings.HasPrefix(data, LessonComplete):
		h.handleLessonComplete(ctx, b, callback)
	case strings.HasPrefix(data, LessonCancel):
		h.handleLessonCancel(ctx, b, callback)
	case strings.HasPrefix(data, LessonNoShow):
		h.handleLessonNoShow(ctx, b, callback)
	case strings.HasPrefix(data, LessonMove):
		h.handleLessonMove(ctx, b, callback)
	case strings.HasPrefix(data, NoShowYes):
		h.handleNoShowConfirm(ctx, b, callback)
	case data == NoShowNo:
		AnswerCallback(ctx, b, callback.ID, "Отменено")
	case strings.HasPrefix(data, EditTopic):
		h.handleEditTopic(ctx, b, callback)

	// ===== Область действия правки =====
	case strings.HasPrefix(data, ScopeSingle):
		h.handleScopeChoice(ctx, b, callback, false)
	case strings.HasPrefix(data, ScopeSeries):
		h.handleScopeChoice(ctx, b, callback, true)
	case data == ScopeAbort:
		h.handleScopeAbort(ctx, b, callback)

	// ===== Создание занятия =====
	case strings.HasPrefix(data, AddLessonStudent):
		h.handleAddLessonStudent(ctx, b, callback)
	case data == FreqOnce:
		h.handleFrequencyOnce(ctx, b, callback)
	case data == FreqWeekly:
		h.handleFrequencyWeekly(ctx, b, callback)

	// ===== Оплаты =====
	case strings.HasPrefix(data, Pay):
		h.handlePay(ctx, b, callback)

	default:
		h.Logger.Warn("Unknown callback data", zap.String("data", data))
		AnswerCallback(ctx, b, callback.ID, "")
	}
}
