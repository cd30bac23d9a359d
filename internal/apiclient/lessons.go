package apiclient

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/denkrav/tutor_crm/internal/model"
	"github.com/google/uuid"
)

// LessonFilter параметры выборки занятий
type LessonFilter struct {
	Start     *model.LocalTime
	End       *model.LocalTime
	Statuses  []model.LessonStatus
	StudentID *uuid.UUID
	Skip      int
	Limit     int
}

func (f LessonFilter) query() url.Values {
	q := url.Values{}
	if f.Start != nil {
		q.Set("start", f.Start.Format("2006-01-02T15:04:05"))
	}
	if f.End != nil {
		q.Set("end", f.End.Format("2006-01-02T15:04:05"))
	}
	if len(f.Statuses) > 0 {
		statuses := make([]string, 0, len(f.Statuses))
		for _, s := range f.Statuses {
			statuses = append(statuses, string(s))
		}
		q.Set("status", strings.Join(statuses, ","))
	}
	if f.StudentID != nil {
		q.Set("student_id", f.StudentID.String())
	}
	if f.Skip > 0 {
		q.Set("skip", strconv.Itoa(f.Skip))
	}
	if f.Limit > 0 {
		q.Set("limit", strconv.Itoa(f.Limit))
	}
	return q
}

// ListLessons получает занятия по фильтру
func (c *Client) ListLessons(ctx context.Context, filter LessonFilter) ([]model.Lesson, error) {
	var lessons []model.Lesson
	if err := c.doJSON(ctx, http.MethodGet, "/lessons/", filter.query(), nil, &lessons); err != nil {
		return nil, fmt.Errorf("list lessons: %w", err)
	}
	return lessons, nil
}

// CreateLesson создаёт занятие
func (c *Client) CreateLesson(ctx context.Context, payload model.LessonCreate) (*model.Lesson, error) {
	lesson := &model.Lesson{}
	if err := c.doJSON(ctx, http.MethodPost, "/lessons/", nil, payload, lesson); err != nil {
		return nil, fmt.Errorf("create lesson: %w", err)
	}
	return lesson, nil
}

// UpdateLesson частично обновляет одно занятие
func (c *Client) UpdateLesson(ctx context.Context, id uuid.UUID, changes model.LessonUpdate) (*model.Lesson, error) {
	lesson := &model.Lesson{}
	if err := c.doJSON(ctx, http.MethodPatch, "/lessons/"+id.String(), nil, changes, lesson); err != nil {
		return nil, fmt.Errorf("update lesson: %w", err)
	}
	return lesson, nil
}

// UpdateLessonSeries обновляет все занятия, разделяющие series_id
// указанного занятия
func (c *Client) UpdateLessonSeries(ctx context.Context, lessonID uuid.UUID, changes model.LessonUpdate) ([]model.Lesson, error) {
	var lessons []model.Lesson
	if err := c.doJSON(ctx, http.MethodPatch, "/lessons/series/"+lessonID.String(), nil, changes, &lessons); err != nil {
		return nil, fmt.Errorf("update lesson series: %w", err)
	}
	return lessons, nil
}
