package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/denkrav/tutor_crm/internal/apiclient"
	"github.com/denkrav/tutor_crm/internal/model"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// studentStore операции хранилища над учениками; реализуется apiclient.Client.
// Чтения ученика по ID у хранилища нет, только список.
type studentStore interface {
	ListStudents(ctx context.Context) ([]model.Student, error)
	CreateStudent(ctx context.Context, payload model.StudentCreate) (*model.Student, error)
	UpdateStudent(ctx context.Context, id uuid.UUID, changes model.StudentUpdate) (*model.Student, error)
}

// Цвета событий календаря по статусу занятия
const (
	colorPlanned   = "#4F46E5" // индиго
	colorCompleted = "#10B981" // зелёный
	colorCancelled = "#EF4444" // красный
	colorNoShow    = "#F59E0B" // янтарный
	colorDefault   = "#6B7280" // серый, защитный вариант
)

// CalendarEvent отображаемое событие календаря
type CalendarEvent struct {
	ID        uuid.UUID
	Title     string
	Start     time.Time
	End       time.Time
	Color     string
	// Editable проведённые занятия не двигаются и не редактируются
	Editable  bool
	TimeLabel string
	Lesson    model.Lesson
	Student   *model.Student
}

// EventColor возвращает цвет отображения для статуса занятия
func EventColor(status model.LessonStatus) string {
	switch status {
	case model.LessonStatusPlanned:
		return colorPlanned
	case model.LessonStatusCompleted:
		return colorCompleted
	case model.LessonStatusCancelled:
		return colorCancelled
	case model.LessonStatusNoShow:
		return colorNoShow
	default:
		return colorDefault
	}
}

// EventEditable проверяет можно ли редактировать занятие из календаря
func EventEditable(status model.LessonStatus) bool {
	return status != model.LessonStatusCompleted
}

// CalendarService собирает отображаемую модель календаря из занятий
// и учеников
type CalendarService struct {
	lessons  lessonStore
	students studentStore
	logger   *zap.Logger

	// generations считает запросы окна отдельно по каждому потребителю:
	// ответ отбрасывается только если его обогнал более новый запрос того
	// же потребителя. Запросы разных потребителей (пользователи бота,
	// фоновая сводка) друг друга не вытесняют.
	mu          sync.Mutex
	generations map[int64]uint64
}

func NewCalendarService(lessons lessonStore, students studentStore, logger *zap.Logger) *CalendarService {
	return &CalendarService{
		lessons:     lessons,
		students:    students,
		logger:      logger,
		generations: make(map[int64]uint64),
	}
}

func (s *CalendarService) nextGeneration(viewer int64) uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.generations[viewer]++
	return s.generations[viewer]
}

func (s *CalendarService) currentGeneration(viewer int64) uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.generations[viewer]
}

// FetchWindow загружает занятия окна календаря и собирает события.
// Отменённые и неявки в календаре не показываются — как и в веб-версии,
// запрашиваются только planned и completed.
// viewer идентифицирует потребителя окна (telegram id пользователя либо
// служебный id фоновой задачи): последний запрос каждого потребителя
// побеждает его же более ранние.
func (s *CalendarService) FetchWindow(ctx context.Context, viewer int64, from, to time.Time) ([]CalendarEvent, error) {
	generation := s.nextGeneration(viewer)

	students, err := s.students.ListStudents(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetch window: %w", err)
	}

	start := model.NewLocalTime(from)
	end := model.NewLocalTime(to)
	lessons, err := s.lessons.ListLessons(ctx, apiclient.LessonFilter{
		Start:    &start,
		End:      &end,
		Statuses: []model.LessonStatus{model.LessonStatusPlanned, model.LessonStatusCompleted},
	})
	if err != nil {
		return nil, fmt.Errorf("fetch window: %w", err)
	}

	if s.currentGeneration(viewer) != generation {
		s.logger.Debug("Discarding stale calendar window",
			zap.Int64("viewer", viewer),
			zap.Uint64("generation", generation),
		)
		return nil, ErrStaleWindow
	}

	byID := make(map[uuid.UUID]*model.Student, len(students))
	for i := range students {
		byID[students[i].ID] = &students[i]
	}

	events := make([]CalendarEvent, 0, len(lessons))
	for _, lesson := range lessons {
		events = append(events, newEvent(lesson, byID[lesson.StudentID]))
	}

	return events, nil
}

func newEvent(lesson model.Lesson, student *model.Student) CalendarEvent {
	title := "Студент"
	if student != nil {
		title = student.FullName
		if student.Grade != "" {
			title += " " + student.Grade + " класс"
		}
	}

	return CalendarEvent{
		ID:        lesson.ID,
		Title:     title,
		Start:     lesson.StartTime.Time,
		End:       lesson.EndTime.Time,
		Color:     EventColor(lesson.Status),
		Editable:  EventEditable(lesson.Status),
		TimeLabel: lesson.StartTime.Format("15:04") + " - " + lesson.EndTime.Format("15:04"),
		Lesson:    lesson,
		Student:   student,
	}
}
