package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/denkrav/tutor_crm/internal/apiclient"
	"github.com/denkrav/tutor_crm/internal/app"
	"github.com/denkrav/tutor_crm/internal/config"
	"github.com/denkrav/tutor_crm/internal/controller"
	"github.com/denkrav/tutor_crm/internal/service"
	"github.com/go-telegram/bot"
	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger := app.NewLogger(cfg.Environment)
	defer logger.Sync()

	logger.Sugar().Infow("Starting tutor CRM bot",
		"environment", cfg.Environment,
		"api_base_url", cfg.APIBaseURL)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	// Хранилище занятий, учеников и оплат живёт за REST API
	client := apiclient.NewClient(cfg.APIBaseURL, logger)

	lessonService := service.NewLessonService(client, client, logger)
	studentService := service.NewStudentService(client, client, logger)
	calendarService := service.NewCalendarService(client, client, logger)

	b, err := bot.New(cfg.TelegramToken)
	if err != nil {
		logger.Fatal("Failed to create bot", zap.Error(err))
	}

	botController := controller.NewBotController(
		b,
		lessonService,
		studentService,
		calendarService,
		cfg.WeekFontPath,
		logger,
	)

	if err := botController.RegisterHandlers(ctx); err != nil {
		logger.Error("Failed to register bot handlers", zap.Error(err))
	}

	// Ежедневная сводка занятий уходит в чат репетитора, если он задан
	if cfg.TutorChatID != 0 {
		notify := func(ctx context.Context, text string) error {
			_, err := b.SendMessage(ctx, &bot.SendMessageParams{
				ChatID: cfg.TutorChatID,
				Text:   text,
			})
			return err
		}

		scheduler := app.NewScheduler(calendarService, notify, logger)
		scheduler.Start(ctx)
		defer scheduler.Stop()
	} else {
		logger.Info("TUTOR_CHAT_ID is not set, daily summary disabled")
	}

	logger.Info("✅ Bot is running")
	if err := botController.Start(ctx); err != nil {
		logger.Fatal("Bot stopped with error", zap.Error(err))
	}
	logger.Info("Bot stopped")
}
