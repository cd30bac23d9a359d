package apiclient

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"

	"github.com/denkrav/tutor_crm/internal/model"
)

// UploadFile один файл для отправки в /upload
type UploadFile struct {
	Name   string
	Reader io.Reader
}

// UploadFiles загружает файлы занятия (материалы, домашка) и возвращает
// ссылки в том же порядке, в котором файлы были отправлены
func (c *Client) UploadFiles(ctx context.Context, studentSlug, lessonDate string, files []UploadFile) ([]string, error) {
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	for _, file := range files {
		part, err := writer.CreateFormFile("files", file.Name)
		if err != nil {
			return nil, fmt.Errorf("create form file: %w", err)
		}
		if _, err := io.Copy(part, file.Reader); err != nil {
			return nil, fmt.Errorf("copy file %s: %w", file.Name, err)
		}
	}

	if err := writer.WriteField("student_slug", studentSlug); err != nil {
		return nil, fmt.Errorf("write student_slug: %w", err)
	}
	if err := writer.WriteField("lesson_date", lessonDate); err != nil {
		return nil, fmt.Errorf("write lesson_date: %w", err)
	}

	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("close multipart writer: %w", err)
	}

	result := &model.UploadResult{}
	if err := c.do(ctx, http.MethodPost, "/upload/", nil, &buf, writer.FormDataContentType(), result); err != nil {
		return nil, fmt.Errorf("upload files: %w", err)
	}

	return result.FileURLs(), nil
}
