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

// lessonStore операции хранилища над занятиями; реализуется apiclient.Client
type lessonStore interface {
	ListLessons(ctx context.Context, filter apiclient.LessonFilter) ([]model.Lesson, error)
	CreateLesson(ctx context.Context, payload model.LessonCreate) (*model.Lesson, error)
	UpdateLesson(ctx context.Context, id uuid.UUID, changes model.LessonUpdate) (*model.Lesson, error)
	UpdateLessonSeries(ctx context.Context, lessonID uuid.UUID, changes model.LessonUpdate) ([]model.Lesson, error)
}

// fileUploader загрузка файлов занятия; реализуется apiclient.Client
type fileUploader interface {
	UploadFiles(ctx context.Context, studentSlug, lessonDate string, files []apiclient.UploadFile) ([]string, error)
}

// LessonResult результат проведённого занятия, фиксируется вместе
// с переходом в completed
type LessonResult struct {
	Topic    string
	Material *apiclient.UploadFile
	Homework *apiclient.UploadFile
	// StudentSlug нужен хранилищу для раскладки файлов по папкам
	StudentSlug string
}

// StatusChange запрос на смену статуса занятия
type StatusChange struct {
	Status model.LessonStatus
	// Confirmed явное подтверждение для no_show
	Confirmed bool
	// Result обязателен для completed
	Result *LessonResult
}

type LessonService struct {
	store   lessonStore
	uploads fileUploader
	logger  *zap.Logger
}

func NewLessonService(store lessonStore, uploads fileUploader, logger *zap.Logger) *LessonService {
	return &LessonService{
		store:   store,
		uploads: uploads,
		logger:  logger,
	}
}

// CreateLessons разворачивает запрос в серию и отправляет все создания
// параллельно. Атомарности нет: при частичном успехе созданные занятия
// остаются, а вызывающий получает *PartialBatchError со списком удач
// и неудач.
func (s *LessonService) CreateLessons(ctx context.Context, req SeriesRequest) ([]*model.Lesson, error) {
	payloads, err := GenerateSeries(req)
	if err != nil {
		return nil, err
	}

	created := make([]*model.Lesson, len(payloads))
	errs := make([]error, len(payloads))

	var wg sync.WaitGroup
	for i, payload := range payloads {
		wg.Add(1)
		go func(i int, payload model.LessonCreate) {
			defer wg.Done()
			lesson, err := s.store.CreateLesson(ctx, payload)
			if err != nil {
				errs[i] = err
				return
			}
			created[i] = lesson
		}(i, payload)
	}
	wg.Wait()

	var ok []*model.Lesson
	var failed []OccurrenceError
	for i := range payloads {
		if errs[i] != nil {
			failed = append(failed, OccurrenceError{Index: i, Err: errs[i]})
			continue
		}
		ok = append(ok, created[i])
	}

	if len(failed) == 0 {
		s.logger.Info("Lessons created",
			zap.Int("count", len(ok)),
			zap.String("student_id", req.StudentID.String()),
			zap.String("frequency", string(req.Frequency)),
		)
		return ok, nil
	}

	s.logger.Error("Series creation partially failed",
		zap.Int("created", len(ok)),
		zap.Int("failed", len(failed)),
		zap.Error(failed[0].Err),
	)

	if len(ok) == 0 {
		return nil, fmt.Errorf("create lessons: %w", failed[0].Err)
	}
	return ok, &PartialBatchError{Created: ok, Failed: failed}
}

// ChangeStatus переводит занятие в новый статус. Все переходы стартуют
// из planned; completed требует результата, no_show — подтверждения.
// Смена статуса всегда затрагивает одно занятие, даже если оно в серии.
func (s *LessonService) ChangeStatus(ctx context.Context, lesson *model.Lesson, change StatusChange) (*model.Lesson, error) {
	if !model.IsValidStatus(change.Status) {
		return nil, model.ErrInvalidStatus
	}
	if !model.CanTransition(lesson.Status, change.Status) {
		return nil, fmt.Errorf("%s -> %s: %w", lesson.Status, change.Status, ErrIllegalTransition)
	}

	switch change.Status {
	case model.LessonStatusNoShow:
		if !change.Confirmed {
			return nil, ErrConfirmationRequired
		}
	case model.LessonStatusCompleted:
		if change.Result == nil {
			return nil, ErrResultRequired
		}
		return s.completeLesson(ctx, lesson, change.Result)
	}

	status := change.Status
	updated, err := s.store.UpdateLesson(ctx, lesson.ID, model.LessonUpdate{Status: &status})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Lesson status changed",
		zap.String("lesson_id", lesson.ID.String()),
		zap.String("from", string(lesson.Status)),
		zap.String("to", string(change.Status)),
	)

	return updated, nil
}

// completeLesson фиксирует результат занятия и переводит его в completed.
// Сначала загружаются файлы: если загрузка не удалась, статус не меняется.
func (s *LessonService) completeLesson(ctx context.Context, lesson *model.Lesson, result *LessonResult) (*model.Lesson, error) {
	var files []apiclient.UploadFile
	if result.Material != nil {
		files = append(files, *result.Material)
	}
	if result.Homework != nil {
		files = append(files, *result.Homework)
	}

	var materialURL, homeworkURL *string
	if len(files) > 0 {
		urls, err := s.uploads.UploadFiles(ctx, result.StudentSlug, lesson.StartTime.Format("2006-01-02"), files)
		if err != nil {
			return nil, fmt.Errorf("upload lesson files: %w", err)
		}
		if result.Material != nil && len(urls) > 0 {
			materialURL = &urls[0]
		}
		if result.Homework != nil && len(urls) > 0 {
			homeworkURL = &urls[len(urls)-1]
		}
	}

	status := model.LessonStatusCompleted
	update := model.LessonUpdate{
		Status:      &status,
		Topic:       &result.Topic,
		MaterialURL: materialURL,
		HomeworkURL: homeworkURL,
	}

	updated, err := s.store.UpdateLesson(ctx, lesson.ID, update)
	if err != nil {
		return nil, err
	}

	s.logger.Info("Lesson completed",
		zap.String("lesson_id", lesson.ID.String()),
		zap.String("topic", result.Topic),
		zap.Bool("has_material", materialURL != nil),
		zap.Bool("has_homework", homeworkURL != nil),
	)

	return updated, nil
}

// EditLesson применяет правку с учётом области действия. Для занятия
// из серии scope обязателен; вся логика выбора — в ResolveEditScope.
func (s *LessonService) EditLesson(ctx context.Context, lesson *model.Lesson, changes model.LessonUpdate, scope EditScope) ([]model.Lesson, error) {
	plan, err := ResolveEditScope(lesson, changes, scope)
	if err != nil {
		return nil, err
	}

	if plan.Scope == ScopeSeries {
		updated, err := s.store.UpdateLessonSeries(ctx, plan.LessonID, plan.Changes)
		if err != nil {
			return nil, err
		}
		s.logger.Info("Series updated",
			zap.String("lesson_id", plan.LessonID.String()),
			zap.Int("affected", len(updated)),
		)
		return updated, nil
	}

	updated, err := s.store.UpdateLesson(ctx, plan.LessonID, plan.Changes)
	if err != nil {
		return nil, err
	}
	return []model.Lesson{*updated}, nil
}

// Reschedule переносит одно занятие на новое время (drag-and-drop
// в календаре). Перенос не трогает series_id и не спрашивает область.
func (s *LessonService) Reschedule(ctx context.Context, lessonID uuid.UUID, start, end time.Time) (*model.Lesson, error) {
	if !end.After(start) {
		return nil, ErrInvalidDateRange
	}

	newStart := model.NewLocalTime(start)
	newEnd := model.NewLocalTime(end)
	return s.store.UpdateLesson(ctx, lessonID, model.LessonUpdate{
		StartTime: &newStart,
		EndTime:   &newEnd,
	})
}
