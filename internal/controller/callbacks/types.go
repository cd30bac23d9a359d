package callbacks

import (
	"github.com/denkrav/tutor_crm/internal/controller/handlers"
	"github.com/denkrav/tutor_crm/internal/controller/state"
	"github.com/denkrav/tutor_crm/internal/service"
	"go.uber.org/zap"
)

// Handler содержит зависимости всех callback-обработчиков
type Handler struct {
	Lessons  *service.LessonService
	Students *service.StudentService
	Dialogs  *handlers.Handlers
	State    *state.Manager
	Logger   *zap.Logger
}

// NewHandler создаёт обработчик callback query
func NewHandler(
	lessons *service.LessonService,
	students *service.StudentService,
	dialogs *handlers.Handlers,
	stateManager *state.Manager,
	logger *zap.Logger,
) *Handler {
	return &Handler{
		Lessons:  lessons,
		Students: students,
		Dialogs:  dialogs,
		State:    stateManager,
		Logger:   logger,
	}
}
