package service

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/denkrav/tutor_crm/internal/apiclient"
	"github.com/denkrav/tutor_crm/internal/model"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// fakeCalendarStore реализует lessonStore и studentStore для календаря
type fakeCalendarStore struct {
	students    []model.Student
	studentsErr error
	lessons     []model.Lesson

	gotFilter apiclient.LessonFilter

	// Первый вызов ListLessons блокируется до закрытия release,
	// entered сигналит что вызов начался
	release chan struct{}
	entered chan struct{}
	calls   atomic.Int32
}

func (f *fakeCalendarStore) ListStudents(ctx context.Context) ([]model.Student, error) {
	if f.studentsErr != nil {
		return nil, f.studentsErr
	}
	return f.students, nil
}

func (f *fakeCalendarStore) CreateStudent(ctx context.Context, payload model.StudentCreate) (*model.Student, error) {
	return nil, nil
}

func (f *fakeCalendarStore) UpdateStudent(ctx context.Context, id uuid.UUID, changes model.StudentUpdate) (*model.Student, error) {
	return nil, nil
}

func (f *fakeCalendarStore) ListLessons(ctx context.Context, filter apiclient.LessonFilter) ([]model.Lesson, error) {
	f.gotFilter = filter
	if f.calls.Add(1) == 1 && f.release != nil {
		close(f.entered)
		<-f.release
	}
	return f.lessons, nil
}

func (f *fakeCalendarStore) CreateLesson(ctx context.Context, payload model.LessonCreate) (*model.Lesson, error) {
	return nil, nil
}

func (f *fakeCalendarStore) UpdateLesson(ctx context.Context, id uuid.UUID, changes model.LessonUpdate) (*model.Lesson, error) {
	return nil, nil
}

func (f *fakeCalendarStore) UpdateLessonSeries(ctx context.Context, lessonID uuid.UUID, changes model.LessonUpdate) ([]model.Lesson, error) {
	return nil, nil
}

func TestEventColor(t *testing.T) {
	assert.Equal(t, "#4F46E5", EventColor(model.LessonStatusPlanned))
	assert.Equal(t, "#10B981", EventColor(model.LessonStatusCompleted))
	assert.Equal(t, "#EF4444", EventColor(model.LessonStatusCancelled))
	assert.Equal(t, "#F59E0B", EventColor(model.LessonStatusNoShow))
	// Неизвестный статус красится защитным серым, а не падает
	assert.Equal(t, "#6B7280", EventColor("archived"))
}

func TestEventEditable(t *testing.T) {
	assert.True(t, EventEditable(model.LessonStatusPlanned))
	assert.True(t, EventEditable(model.LessonStatusCancelled))
	assert.True(t, EventEditable(model.LessonStatusNoShow))
	// Проведённое занятие в календаре не двигается
	assert.False(t, EventEditable(model.LessonStatusCompleted))
}

func TestFetchWindowBuildsEvents(t *testing.T) {
	studentID := uuid.New()
	lessonID := uuid.New()
	start := time.Date(2025, 9, 15, 14, 0, 0, 0, time.Local)

	store := &fakeCalendarStore{
		students: []model.Student{{
			ID:       studentID,
			FullName: "Аня Петрова",
			Grade:    "7",
		}},
		lessons: []model.Lesson{{
			ID:        lessonID,
			StudentID: studentID,
			StartTime: model.NewLocalTime(start),
			EndTime:   model.NewLocalTime(start.Add(time.Hour)),
			Status:    model.LessonStatusPlanned,
		}},
	}
	svc := NewCalendarService(store, store, zap.NewNop())

	events, err := svc.FetchWindow(context.Background(), 1, start.AddDate(0, 0, -1), start.AddDate(0, 0, 6))
	require.NoError(t, err)
	require.Len(t, events, 1)

	event := events[0]
	assert.Equal(t, lessonID, event.ID)
	assert.Equal(t, "Аня Петрова 7 класс", event.Title)
	assert.Equal(t, "#4F46E5", event.Color)
	assert.True(t, event.Editable)
	assert.Equal(t, "14:00 - 15:00", event.TimeLabel)
	require.NotNil(t, event.Student)
	assert.Equal(t, studentID, event.Student.ID)

	// Календарь запрашивает только planned и completed
	assert.Equal(t, []model.LessonStatus{model.LessonStatusPlanned, model.LessonStatusCompleted}, store.gotFilter.Statuses)
	require.NotNil(t, store.gotFilter.Start)
	require.NotNil(t, store.gotFilter.End)
}

func TestFetchWindowUnknownStudent(t *testing.T) {
	start := time.Date(2025, 9, 15, 14, 0, 0, 0, time.Local)
	store := &fakeCalendarStore{
		lessons: []model.Lesson{{
			ID:        uuid.New(),
			StudentID: uuid.New(),
			StartTime: model.NewLocalTime(start),
			EndTime:   model.NewLocalTime(start.Add(time.Hour)),
			Status:    model.LessonStatusCompleted,
		}},
	}
	svc := NewCalendarService(store, store, zap.NewNop())

	events, err := svc.FetchWindow(context.Background(), 1, start, start.AddDate(0, 0, 1))
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, "Студент", events[0].Title)
	assert.Nil(t, events[0].Student)
}

func TestFetchWindowLastRequestWins(t *testing.T) {
	store := &fakeCalendarStore{
		release: make(chan struct{}),
		entered: make(chan struct{}),
	}
	svc := NewCalendarService(store, store, zap.NewNop())

	from := time.Date(2025, 9, 15, 0, 0, 0, 0, time.Local)

	firstDone := make(chan error, 1)
	go func() {
		_, err := svc.FetchWindow(context.Background(), 100, from, from.AddDate(0, 0, 7))
		firstDone <- err
	}()

	// Ждём пока первый запрос повиснет в хранилище, затем запускаем второй
	// от того же потребителя
	<-store.entered
	_, err := svc.FetchWindow(context.Background(), 100, from.AddDate(0, 0, 7), from.AddDate(0, 0, 14))
	require.NoError(t, err)

	// Первый запрос устарел и отбрасывается
	close(store.release)
	assert.ErrorIs(t, <-firstDone, ErrStaleWindow)
}

func TestFetchWindowIndependentConsumers(t *testing.T) {
	store := &fakeCalendarStore{
		release: make(chan struct{}),
		entered: make(chan struct{}),
	}
	svc := NewCalendarService(store, store, zap.NewNop())

	from := time.Date(2025, 9, 15, 0, 0, 0, 0, time.Local)

	firstDone := make(chan error, 1)
	go func() {
		_, err := svc.FetchWindow(context.Background(), 100, from, from.AddDate(0, 0, 1))
		firstDone <- err
	}()

	// Пока запрос первого пользователя висит в хранилище, другой потребитель
	// загружает своё окно. Чужой запрос не вытесняет первый: оба должны
	// завершиться успешно.
	<-store.entered
	_, err := svc.FetchWindow(context.Background(), 200, from, from.AddDate(0, 0, 7))
	require.NoError(t, err)

	close(store.release)
	assert.NoError(t, <-firstDone)
}
