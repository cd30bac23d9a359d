package apiclient

import (
	"context"
	"fmt"
	"net/http"

	"github.com/denkrav/tutor_crm/internal/model"
	"github.com/google/uuid"
)

// ListStudents получает всех учеников. Отдельного GET по ID у хранилища
// нет — единственный способ прочитать ученика это список.
func (c *Client) ListStudents(ctx context.Context) ([]model.Student, error) {
	var students []model.Student
	if err := c.doJSON(ctx, http.MethodGet, "/students/", nil, nil, &students); err != nil {
		return nil, fmt.Errorf("list students: %w", err)
	}
	return students, nil
}

// CreateStudent создаёт ученика
func (c *Client) CreateStudent(ctx context.Context, payload model.StudentCreate) (*model.Student, error) {
	student := &model.Student{}
	if err := c.doJSON(ctx, http.MethodPost, "/students/", nil, payload, student); err != nil {
		return nil, fmt.Errorf("create student: %w", err)
	}
	return student, nil
}

// UpdateStudent частично обновляет ученика
func (c *Client) UpdateStudent(ctx context.Context, id uuid.UUID, changes model.StudentUpdate) (*model.Student, error) {
	student := &model.Student{}
	if err := c.doJSON(ctx, http.MethodPatch, "/students/"+id.String(), nil, changes, student); err != nil {
		return nil, fmt.Errorf("update student: %w", err)
	}
	return student, nil
}
