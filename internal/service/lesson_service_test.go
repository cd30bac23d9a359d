package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/denkrav/tutor_crm/internal/apiclient"
	"github.com/denkrav/tutor_crm/internal/model"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// fakeLessonStore реализует lessonStore в памяти для тестов
type fakeLessonStore struct {
	mu sync.Mutex

	created       []model.LessonCreate
	createErr     error
	failOnIndex   int // индекс создаваемого занятия, падающий с createErr; -1 — не падать
	updates       []model.LessonUpdate
	updatedIDs    []uuid.UUID
	seriesUpdates []model.LessonUpdate
	listResult    []model.Lesson
	listErr       error
}

func newFakeLessonStore() *fakeLessonStore {
	return &fakeLessonStore{failOnIndex: -1}
}

func (f *fakeLessonStore) ListLessons(ctx context.Context, filter apiclient.LessonFilter) ([]model.Lesson, error) {
	return f.listResult, f.listErr
}

func (f *fakeLessonStore) CreateLesson(ctx context.Context, payload model.LessonCreate) (*model.Lesson, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	index := len(f.created)
	f.created = append(f.created, payload)
	if f.createErr != nil && (f.failOnIndex < 0 || f.failOnIndex == index) {
		return nil, f.createErr
	}

	return &model.Lesson{
		ID:        uuid.New(),
		StudentID: payload.StudentID,
		StartTime: payload.StartTime,
		EndTime:   payload.EndTime,
		Topic:     payload.Topic,
		Status:    payload.Status,
		SeriesID:  payload.SeriesID,
	}, nil
}

func (f *fakeLessonStore) UpdateLesson(ctx context.Context, id uuid.UUID, changes model.LessonUpdate) (*model.Lesson, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.updatedIDs = append(f.updatedIDs, id)
	f.updates = append(f.updates, changes)

	lesson := &model.Lesson{ID: id, Status: model.LessonStatusPlanned, Price: 500}
	if changes.Status != nil {
		lesson.Status = *changes.Status
	}
	if changes.Topic != nil {
		lesson.Topic = *changes.Topic
	}
	return lesson, nil
}

func (f *fakeLessonStore) UpdateLessonSeries(ctx context.Context, lessonID uuid.UUID, changes model.LessonUpdate) ([]model.Lesson, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.seriesUpdates = append(f.seriesUpdates, changes)
	return []model.Lesson{
		{ID: lessonID},
		{ID: uuid.New()},
	}, nil
}

// fakeUploader реализует fileUploader
type fakeUploader struct {
	urls []string
	err  error

	gotSlug  string
	gotDate  string
	gotFiles []apiclient.UploadFile
}

func (f *fakeUploader) UploadFiles(ctx context.Context, studentSlug, lessonDate string, files []apiclient.UploadFile) ([]string, error) {
	f.gotSlug = studentSlug
	f.gotDate = lessonDate
	f.gotFiles = files
	return f.urls, f.err
}

func newTestLessonService(store *fakeLessonStore, uploads *fakeUploader) *LessonService {
	if uploads == nil {
		uploads = &fakeUploader{}
	}
	return NewLessonService(store, uploads, zap.NewNop())
}

func TestCreateLessonsWeeklySuccess(t *testing.T) {
	store := newFakeLessonStore()
	svc := newTestLessonService(store, nil)

	start := time.Date(2025, 1, 6, 10, 0, 0, 0, time.Local)
	created, err := svc.CreateLessons(context.Background(), weeklyRequest(start, start.Add(time.Hour), start.AddDate(0, 0, 14)))
	require.NoError(t, err)
	require.Len(t, created, 3)
	assert.Len(t, store.created, 3)

	for _, lesson := range created {
		assert.Equal(t, model.LessonStatusPlanned, lesson.Status)
		require.NotNil(t, lesson.SeriesID)
	}
}

func TestCreateLessonsPartialFailure(t *testing.T) {
	store := newFakeLessonStore()
	store.createErr = errors.New("boom")
	store.failOnIndex = 1
	svc := newTestLessonService(store, nil)

	start := time.Date(2025, 1, 6, 10, 0, 0, 0, time.Local)
	created, err := svc.CreateLessons(context.Background(), weeklyRequest(start, start.Add(time.Hour), start.AddDate(0, 0, 14)))

	var partial *PartialBatchError
	require.ErrorAs(t, err, &partial)
	// Созданные занятия не откатываются
	assert.Len(t, created, 2)
	assert.Len(t, partial.Created, 2)
	assert.Len(t, partial.Failed, 1)
}

func TestCreateLessonsAllFailed(t *testing.T) {
	store := newFakeLessonStore()
	store.createErr = errors.New("boom")
	svc := newTestLessonService(store, nil)

	start := time.Date(2025, 1, 6, 10, 0, 0, 0, time.Local)
	created, err := svc.CreateLessons(context.Background(), weeklyRequest(start, start.Add(time.Hour), start.AddDate(0, 0, 7)))

	require.Error(t, err)
	var partial *PartialBatchError
	assert.False(t, errors.As(err, &partial))
	assert.Nil(t, created)
}

func TestCreateLessonsValidationBeforeStore(t *testing.T) {
	store := newFakeLessonStore()
	svc := newTestLessonService(store, nil)

	start := time.Date(2025, 1, 6, 10, 0, 0, 0, time.Local)
	_, err := svc.CreateLessons(context.Background(), weeklyRequest(start, start.Add(time.Hour), start.AddDate(0, 0, -7)))

	assert.ErrorIs(t, err, ErrInvalidDateRange)
	// Ни одного запроса к хранилищу при невалидной серии
	assert.Empty(t, store.created)
}

func TestChangeStatusIllegalTransition(t *testing.T) {
	store := newFakeLessonStore()
	svc := newTestLessonService(store, nil)

	for _, from := range []model.LessonStatus{model.LessonStatusCompleted, model.LessonStatusCancelled, model.LessonStatusNoShow} {
		lesson := &model.Lesson{ID: uuid.New(), Status: from}
		_, err := svc.ChangeStatus(context.Background(), lesson, StatusChange{Status: model.LessonStatusCancelled})
		assert.ErrorIs(t, err, ErrIllegalTransition, "from %s", from)
	}
	assert.Empty(t, store.updates)
}

func TestChangeStatusUnknownStatus(t *testing.T) {
	svc := newTestLessonService(newFakeLessonStore(), nil)

	lesson := &model.Lesson{ID: uuid.New(), Status: model.LessonStatusPlanned}
	_, err := svc.ChangeStatus(context.Background(), lesson, StatusChange{Status: "archived"})
	assert.ErrorIs(t, err, model.ErrInvalidStatus)
}

func TestChangeStatusNoShowRequiresConfirmation(t *testing.T) {
	store := newFakeLessonStore()
	svc := newTestLessonService(store, nil)
	lesson := &model.Lesson{ID: uuid.New(), Status: model.LessonStatusPlanned}

	_, err := svc.ChangeStatus(context.Background(), lesson, StatusChange{Status: model.LessonStatusNoShow})
	assert.ErrorIs(t, err, ErrConfirmationRequired)
	assert.Empty(t, store.updates)

	updated, err := svc.ChangeStatus(context.Background(), lesson, StatusChange{
		Status:    model.LessonStatusNoShow,
		Confirmed: true,
	})
	require.NoError(t, err)
	assert.Equal(t, model.LessonStatusNoShow, updated.Status)
}

func TestChangeStatusCompletedRequiresResult(t *testing.T) {
	store := newFakeLessonStore()
	svc := newTestLessonService(store, nil)
	lesson := &model.Lesson{ID: uuid.New(), Status: model.LessonStatusPlanned}

	_, err := svc.ChangeStatus(context.Background(), lesson, StatusChange{Status: model.LessonStatusCompleted})
	assert.ErrorIs(t, err, ErrResultRequired)
	assert.Empty(t, store.updates)
}

func TestCompleteLessonWithFiles(t *testing.T) {
	store := newFakeLessonStore()
	uploads := &fakeUploader{urls: []string{
		"https://files.example/material.pdf",
		"https://files.example/homework.pdf",
	}}
	svc := newTestLessonService(store, uploads)

	lesson := &model.Lesson{
		ID:        uuid.New(),
		Status:    model.LessonStatusPlanned,
		StartTime: model.NewLocalTime(time.Date(2025, 9, 15, 14, 0, 0, 0, time.Local)),
	}

	updated, err := svc.ChangeStatus(context.Background(), lesson, StatusChange{
		Status: model.LessonStatusCompleted,
		Result: &LessonResult{
			Topic:       "Квадратные уравнения",
			Material:    &apiclient.UploadFile{Name: "material.pdf"},
			Homework:    &apiclient.UploadFile{Name: "homework.pdf"},
			StudentSlug: "anya-petrova",
		},
	})
	require.NoError(t, err)
	assert.Equal(t, model.LessonStatusCompleted, updated.Status)

	assert.Equal(t, "anya-petrova", uploads.gotSlug)
	assert.Equal(t, "2025-09-15", uploads.gotDate)
	assert.Len(t, uploads.gotFiles, 2)

	require.Len(t, store.updates, 1)
	update := store.updates[0]
	require.NotNil(t, update.MaterialURL)
	require.NotNil(t, update.HomeworkURL)
	assert.Equal(t, "https://files.example/material.pdf", *update.MaterialURL)
	assert.Equal(t, "https://files.example/homework.pdf", *update.HomeworkURL)
}

func TestCompleteLessonUploadFailureBlocksStatus(t *testing.T) {
	store := newFakeLessonStore()
	uploads := &fakeUploader{err: errors.New("storage down")}
	svc := newTestLessonService(store, uploads)

	lesson := &model.Lesson{ID: uuid.New(), Status: model.LessonStatusPlanned}

	_, err := svc.ChangeStatus(context.Background(), lesson, StatusChange{
		Status: model.LessonStatusCompleted,
		Result: &LessonResult{
			Topic:    "Тема",
			Material: &apiclient.UploadFile{Name: "material.pdf"},
		},
	})
	require.Error(t, err)
	// Статус не меняется, пока файлы не загружены
	assert.Empty(t, store.updates)
}

func TestEditLessonSeriesScope(t *testing.T) {
	store := newFakeLessonStore()
	svc := newTestLessonService(store, nil)

	seriesID := uuid.New()
	lesson := &model.Lesson{ID: uuid.New(), SeriesID: &seriesID}
	topic := "Новая тема"

	updated, err := svc.EditLesson(context.Background(), lesson, model.LessonUpdate{Topic: &topic}, ScopeSeries)
	require.NoError(t, err)
	assert.Len(t, updated, 2)
	require.Len(t, store.seriesUpdates, 1)
	assert.Empty(t, store.updates)
}

func TestEditLessonSingleScope(t *testing.T) {
	store := newFakeLessonStore()
	svc := newTestLessonService(store, nil)

	seriesID := uuid.New()
	lesson := &model.Lesson{ID: uuid.New(), SeriesID: &seriesID}
	topic := "Новая тема"

	updated, err := svc.EditLesson(context.Background(), lesson, model.LessonUpdate{Topic: &topic}, ScopeSingle)
	require.NoError(t, err)
	assert.Len(t, updated, 1)
	require.Len(t, store.updates, 1)
	assert.True(t, store.updates[0].ClearSeries)
}

func TestReschedule(t *testing.T) {
	store := newFakeLessonStore()
	svc := newTestLessonService(store, nil)

	id := uuid.New()
	start := time.Date(2025, 9, 16, 15, 0, 0, 0, time.Local)

	_, err := svc.Reschedule(context.Background(), id, start, start.Add(-time.Hour))
	assert.ErrorIs(t, err, ErrInvalidDateRange)

	_, err = svc.Reschedule(context.Background(), id, start, start.Add(time.Hour))
	require.NoError(t, err)
	require.Len(t, store.updates, 1)
	update := store.updates[0]
	require.NotNil(t, update.StartTime)
	require.NotNil(t, update.EndTime)
	// Перенос не трогает серию
	assert.False(t, update.ClearSeries)
	assert.Nil(t, update.Status)
}
