package handlers

import (
	"github.com/denkrav/tutor_crm/internal/controller/state"
	"github.com/denkrav/tutor_crm/internal/service"
	"go.uber.org/zap"
)

// Handlers содержит все зависимости для обработки команд
type Handlers struct {
	lessonService   *service.LessonService
	studentService  *service.StudentService
	calendarService *service.CalendarService
	stateManager    *state.Manager
	fontPath        string
	logger          *zap.Logger
}

// NewHandlers создаёт новый обработчик команд
func NewHandlers(
	lessonService *service.LessonService,
	studentService *service.StudentService,
	calendarService *service.CalendarService,
	stateManager *state.Manager,
	fontPath string,
	logger *zap.Logger,
) *Handlers {
	return &Handlers{
		lessonService:   lessonService,
		studentService:  studentService,
		calendarService: calendarService,
		stateManager:    stateManager,
		fontPath:        fontPath,
		logger:          logger,
	}
}
