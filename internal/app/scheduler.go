package app

import (
	"context"
	"fmt"
	"time"

	"github.com/denkrav/tutor_crm/internal/service"
	"go.uber.org/zap"
)

// NotifyFunc отправляет текст репетитору (обёртка над bot.SendMessage)
type NotifyFunc func(ctx context.Context, text string) error

// summaryViewerID отдельный потребитель календаря для фоновой сводки.
// Отрицательный, чтобы не пересечься с telegram id пользователей:
// сводка и запросы пользователей не вытесняют окна друг друга.
const summaryViewerID int64 = -1

// Scheduler управляет фоновыми задачами
type Scheduler struct {
	calendarService *service.CalendarService
	notify          NotifyFunc
	logger          *zap.Logger
	stopChan        chan struct{}
}

// NewScheduler создаёт новый планировщик
func NewScheduler(calendarService *service.CalendarService, notify NotifyFunc, logger *zap.Logger) *Scheduler {
	return &Scheduler{
		calendarService: calendarService,
		notify:          notify,
		logger:          logger,
		stopChan:        make(chan struct{}),
	}
}

// Start запускает фоновые задачи
func (s *Scheduler) Start(ctx context.Context) {
	s.logger.Info("Starting background scheduler")

	go s.runDailySummaryTask(ctx)
}

// Stop останавливает фоновые задачи
func (s *Scheduler) Stop() {
	s.logger.Info("Stopping background scheduler")
	close(s.stopChan)
}

// runDailySummaryTask раз в сутки шлёт репетитору сводку занятий на день
func (s *Scheduler) runDailySummaryTask(ctx context.Context) {
	// Первый запуск сразу при старте
	s.sendDailySummary(ctx)

	ticker := time.NewTicker(24 * time.Hour)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.sendDailySummary(ctx)
		case <-s.stopChan:
			s.logger.Info("Daily summary task stopped")
			return
		case <-ctx.Done():
			s.logger.Info("Daily summary task cancelled")
			return
		}
	}
}

// sendDailySummary собирает занятия на сегодня и отправляет сводку
func (s *Scheduler) sendDailySummary(ctx context.Context) {
	now := time.Now()
	dayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	dayEnd := dayStart.AddDate(0, 0, 1)

	events, err := s.calendarService.FetchWindow(ctx, summaryViewerID, dayStart, dayEnd)
	if err != nil {
		s.logger.Error("Failed to fetch lessons for daily summary", zap.Error(err))
		return
	}

	if len(events) == 0 {
		s.logger.Info("No lessons today, daily summary skipped")
		return
	}

	text := fmt.Sprintf("📅 Занятия на сегодня (%s):\n", dayStart.Format("02.01.2006"))
	for _, event := range events {
		text += fmt.Sprintf("\n%s — %s", event.TimeLabel, event.Title)
	}

	if err := s.notify(ctx, text); err != nil {
		s.logger.Error("Failed to send daily summary", zap.Error(err))
		return
	}

	s.logger.Info("Daily summary sent", zap.Int("lessons", len(events)))
}
