package apiclient

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/denkrav/tutor_crm/internal/model"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestListLessonsQuery(t *testing.T) {
	var gotQuery map[string][]string
	var gotPath string

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotQuery = r.URL.Query()
		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, "[]")
	}))
	defer srv.Close()

	client := NewClient(srv.URL, zap.NewNop())

	start := model.NewLocalTime(time.Date(2025, 9, 15, 0, 0, 0, 0, time.Local))
	end := model.NewLocalTime(time.Date(2025, 9, 22, 0, 0, 0, 0, time.Local))
	studentID := uuid.New()

	_, err := client.ListLessons(context.Background(), LessonFilter{
		Start:     &start,
		End:       &end,
		Statuses:  []model.LessonStatus{model.LessonStatusPlanned, model.LessonStatusCompleted},
		StudentID: &studentID,
		Limit:     50,
	})
	require.NoError(t, err)

	assert.Equal(t, "/lessons/", gotPath)
	assert.Equal(t, []string{"2025-09-15T00:00:00"}, gotQuery["start"])
	assert.Equal(t, []string{"2025-09-22T00:00:00"}, gotQuery["end"])
	assert.Equal(t, []string{"planned,completed"}, gotQuery["status"])
	assert.Equal(t, []string{studentID.String()}, gotQuery["student_id"])
	assert.Equal(t, []string{"50"}, gotQuery["limit"])
	assert.NotContains(t, gotQuery, "skip")
}

func TestUpdateLessonClearSeriesBody(t *testing.T) {
	var gotBody map[string]json.RawMessage
	var gotMethod, gotPath string

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		gotPath = r.URL.Path
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, `{"id":"`+strings.TrimPrefix(r.URL.Path, "/lessons/")+`","status":"planned","series_id":null}`)
	}))
	defer srv.Close()

	client := NewClient(srv.URL, zap.NewNop())

	id := uuid.New()
	topic := "Дроби"
	lesson, err := client.UpdateLesson(context.Background(), id, model.LessonUpdate{
		Topic:       &topic,
		ClearSeries: true,
	})
	require.NoError(t, err)

	assert.Equal(t, http.MethodPatch, gotMethod)
	assert.Equal(t, "/lessons/"+id.String(), gotPath)
	// Открепление уходит явным null, а не пропуском поля
	raw, ok := gotBody["series_id"]
	require.True(t, ok)
	assert.Equal(t, "null", string(raw))
	assert.Equal(t, id, lesson.ID)
	assert.Nil(t, lesson.SeriesID)
}

func TestUpdateLessonSeriesPath(t *testing.T) {
	var gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, "[]")
	}))
	defer srv.Close()

	client := NewClient(srv.URL, zap.NewNop())

	id := uuid.New()
	topic := "Дроби"
	_, err := client.UpdateLessonSeries(context.Background(), id, model.LessonUpdate{Topic: &topic})
	require.NoError(t, err)
	assert.Equal(t, "/lessons/series/"+id.String(), gotPath)
}

func TestNon2xxBecomesStatusError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		io.WriteString(w, `{"detail":"end must be after start"}`)
	}))
	defer srv.Close()

	client := NewClient(srv.URL, zap.NewNop())

	_, err := client.CreateLesson(context.Background(), model.LessonCreate{})
	require.Error(t, err)

	var statusErr *StatusError
	require.ErrorAs(t, err, &statusErr)
	assert.Equal(t, http.StatusUnprocessableEntity, statusErr.StatusCode)
	assert.Contains(t, statusErr.Body, "end must be after start")
	// Любая ошибка хранилища сворачивается к общему сторожевому значению
	assert.ErrorIs(t, err, ErrUpstream)
}

func TestTransportErrorWrapsUpstream(t *testing.T) {
	client := NewClient("http://127.0.0.1:1", zap.NewNop())

	_, err := client.ListStudents(context.Background())
	assert.ErrorIs(t, err, ErrUpstream)
}

func TestUploadFilesMultipart(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseMultipartForm(1<<20))

		assert.Equal(t, "anya-petrova", r.FormValue("student_slug"))
		assert.Equal(t, "2025-09-15", r.FormValue("lesson_date"))
		require.Len(t, r.MultipartForm.File["files"], 2)

		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, `{"files":["https://files.example/material.pdf","https://files.example/homework.pdf"]}`)
	}))
	defer srv.Close()

	client := NewClient(srv.URL, zap.NewNop())

	urls, err := client.UploadFiles(context.Background(), "anya-petrova", "2025-09-15", []UploadFile{
		{Name: "material.pdf", Reader: strings.NewReader("material")},
		{Name: "homework.pdf", Reader: strings.NewReader("homework")},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{
		"https://files.example/material.pdf",
		"https://files.example/homework.pdf",
	}, urls)
}

func TestUploadResultLegacyURLs(t *testing.T) {
	// Старый формат ответа /upload с полем urls всё ещё разбирается
	var result model.UploadResult
	require.NoError(t, json.Unmarshal([]byte(`{"urls":["https://files.example/a.pdf"]}`), &result))
	assert.Equal(t, []string{"https://files.example/a.pdf"}, result.FileURLs())
}
