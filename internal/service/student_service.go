package service

import (
	"context"
	"fmt"

	"github.com/denkrav/tutor_crm/internal/model"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// paymentStore запись оплат; реализуется apiclient.Client
type paymentStore interface {
	CreatePayment(ctx context.Context, payload model.PaymentCreate) (*model.Payment, error)
}

type StudentService struct {
	students studentStore
	payments paymentStore
	logger   *zap.Logger
}

func NewStudentService(students studentStore, payments paymentStore, logger *zap.Logger) *StudentService {
	return &StudentService{
		students: students,
		payments: payments,
		logger:   logger,
	}
}

// ListStudents получает актуальный список учеников. Локального кеша нет:
// каждый показ списка — свежий запрос к хранилищу.
func (s *StudentService) ListStudents(ctx context.Context) ([]model.Student, error) {
	return s.students.ListStudents(ctx)
}

// GetStudent находит ученика по ID. Хранилище не отдаёт ученика
// одиночным GET, поэтому ищем по списку.
func (s *StudentService) GetStudent(ctx context.Context, id uuid.UUID) (*model.Student, error) {
	students, err := s.students.ListStudents(ctx)
	if err != nil {
		return nil, fmt.Errorf("get student: %w", err)
	}
	for i := range students {
		if students[i].ID == id {
			return &students[i], nil
		}
	}
	return nil, fmt.Errorf("get student %s: %w", id, ErrStudentNotFound)
}

// CreateStudent заводит ученика
func (s *StudentService) CreateStudent(ctx context.Context, payload model.StudentCreate) (*model.Student, error) {
	student, err := s.students.CreateStudent(ctx, payload)
	if err != nil {
		return nil, err
	}

	s.logger.Info("Student created",
		zap.String("student_id", student.ID.String()),
		zap.String("full_name", student.FullName),
	)

	return student, nil
}

// UpdateStudent частично обновляет ученика
func (s *StudentService) UpdateStudent(ctx context.Context, id uuid.UUID, changes model.StudentUpdate) (*model.Student, error) {
	return s.students.UpdateStudent(ctx, id, changes)
}

// RecordPayment записывает оплату и возвращает ученика с пересчитанным
// балансом. Баланс пересчитывает хранилище — локально он не патчится,
// а перечитывается. Если оплата записана, а перечитать баланс не вышло,
// возвращается ErrBalanceRefreshFailed: вызывающий не должен повторять
// оплату.
func (s *StudentService) RecordPayment(ctx context.Context, studentID uuid.UUID, amount float64, comment string) (*model.Student, error) {
	payment, err := s.payments.CreatePayment(ctx, model.PaymentCreate{
		StudentID: studentID,
		Amount:    amount,
		Comment:   comment,
	})
	if err != nil {
		return nil, fmt.Errorf("record payment: %w", err)
	}

	s.logger.Info("Payment recorded",
		zap.String("payment_id", payment.ID.String()),
		zap.String("student_id", studentID.String()),
		zap.Float64("amount", amount),
	)

	student, err := s.GetStudent(ctx, studentID)
	if err != nil {
		s.logger.Warn("Payment recorded but balance refresh failed",
			zap.String("student_id", studentID.String()),
			zap.Error(err),
		)
		return nil, fmt.Errorf("%w: %w", ErrBalanceRefreshFailed, err)
	}

	return student, nil
}
