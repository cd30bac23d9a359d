package config

import (
	"fmt"
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	TelegramToken string
	APIBaseURL    string
	Environment   string
	// TutorChatID чат, куда бот шлёт ежедневную сводку занятий
	TutorChatID int64
	// WeekFontPath путь к TTF для картинки недели (опционально)
	WeekFontPath string
}

func Load() (*Config, error) {
	// Пытаемся загрузить .env файл (игнорируем ошибку, если файла нет)
	if err := godotenv.Load(".env"); err != nil {
		log.Println("⚠️  No .env file found, using environment variables")
	} else {
		log.Println("✅ Loaded configuration from .env file")
	}

	cfg := &Config{
		TelegramToken: os.Getenv("TELEGRAM_TOKEN"),
		APIBaseURL:    os.Getenv("API_BASE_URL"),
		Environment:   os.Getenv("ENV"),
		WeekFontPath:  os.Getenv("WEEK_FONT_PATH"),
	}

	// Устанавливаем дефолтные значения
	if cfg.Environment == "" {
		cfg.Environment = "development"
	}
	if cfg.APIBaseURL == "" {
		cfg.APIBaseURL = "http://localhost:8000"
	}

	if chatID := os.Getenv("TUTOR_CHAT_ID"); chatID != "" {
		parsed, err := strconv.ParseInt(chatID, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("TUTOR_CHAT_ID must be an integer: %w", err)
		}
		cfg.TutorChatID = parsed
	}

	// Проверяем обязательные поля
	if cfg.TelegramToken == "" {
		return nil, fmt.Errorf("TELEGRAM_TOKEN is required but not set")
	}

	log.Printf("Config loaded\n")

	return cfg, nil
}
