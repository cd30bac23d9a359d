package main

import (
	"fmt"
	"os"
	"time"

	"github.com/denkrav/tutor_crm/internal/controller/render"
	"github.com/denkrav/tutor_crm/internal/model"
	"github.com/denkrav/tutor_crm/internal/service"
	"github.com/google/uuid"
)

func main() {
	now := time.Now()
	weekStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	// Начинаем с понедельника текущей недели
	for weekStart.Weekday() != time.Monday {
		weekStart = weekStart.AddDate(0, 0, -1)
	}

	events := []service.CalendarEvent{
		// Понедельник
		sampleEvent("Аня Петрова 7 класс", weekStart.Add(9*time.Hour), time.Hour, model.LessonStatusCompleted),
		sampleEvent("Мирон Ковальчук 9 класс", weekStart.Add(14*time.Hour), 90*time.Minute, model.LessonStatusPlanned),
		// Вторник
		sampleEvent("София Бондар 5 класс", weekStart.AddDate(0, 0, 1).Add(10*time.Hour), time.Hour, model.LessonStatusNoShow),
		sampleEvent("Аня Петрова 7 класс", weekStart.AddDate(0, 0, 1).Add(16*time.Hour), time.Hour, model.LessonStatusCancelled),
		// Среда
		sampleEvent("Мирон Ковальчук 9 класс", weekStart.AddDate(0, 0, 2).Add(9*time.Hour), time.Hour, model.LessonStatusPlanned),
		// Пятница
		sampleEvent("София Бондар 5 класс", weekStart.AddDate(0, 0, 4).Add(11*time.Hour), 2*time.Hour, model.LessonStatusPlanned),
	}

	imageData, err := render.GenerateWeekImage(weekStart, events, os.Getenv("WEEK_FONT_PATH"))
	if err != nil {
		fmt.Printf("Ошибка генерации изображения: %v\n", err)
		os.Exit(1)
	}

	filename := "week.png"
	if err := os.WriteFile(filename, imageData, 0644); err != nil {
		fmt.Printf("Ошибка сохранения файла: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("✅ Изображение успешно сохранено в %s\n", filename)
	fmt.Printf("📅 Период: %s - %s\n", weekStart.Format("02.01.2006"), weekStart.AddDate(0, 0, 6).Format("02.01.2006"))
	fmt.Printf("📊 Занятий: %d\n", len(events))
}

func sampleEvent(title string, start time.Time, duration time.Duration, status model.LessonStatus) service.CalendarEvent {
	end := start.Add(duration)
	return service.CalendarEvent{
		ID:        uuid.New(),
		Title:     title,
		Start:     start,
		End:       end,
		Color:     service.EventColor(status),
		Editable:  service.EventEditable(status),
		TimeLabel: start.Format("15:04") + " - " + end.Format("15:04"),
	}
}
