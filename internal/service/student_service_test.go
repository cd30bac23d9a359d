package service

import (
	"context"
	"errors"
	"testing"

	"github.com/denkrav/tutor_crm/internal/model"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakePaymentStore struct {
	created   []model.PaymentCreate
	createErr error
}

func (f *fakePaymentStore) CreatePayment(ctx context.Context, payload model.PaymentCreate) (*model.Payment, error) {
	if f.createErr != nil {
		return nil, f.createErr
	}
	f.created = append(f.created, payload)
	return &model.Payment{ID: uuid.New(), StudentID: payload.StudentID, Amount: payload.Amount}, nil
}

func TestRecordPayment(t *testing.T) {
	studentID := uuid.New()
	students := &fakeCalendarStore{
		students: []model.Student{{ID: studentID, FullName: "Аня Петрова", Balance: 1300}},
	}
	payments := &fakePaymentStore{}
	svc := NewStudentService(students, payments, zap.NewNop())

	student, err := svc.RecordPayment(context.Background(), studentID, 800, "Пополнение")
	require.NoError(t, err)

	require.Len(t, payments.created, 1)
	assert.Equal(t, studentID, payments.created[0].StudentID)
	assert.Equal(t, 800.0, payments.created[0].Amount)

	// Баланс не патчится локально, а перечитывается из хранилища
	assert.Equal(t, 1300.0, student.Balance)
}

func TestRecordPaymentStoreError(t *testing.T) {
	payments := &fakePaymentStore{createErr: errors.New("boom")}
	svc := NewStudentService(&fakeCalendarStore{}, payments, zap.NewNop())

	_, err := svc.RecordPayment(context.Background(), uuid.New(), 800, "")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrBalanceRefreshFailed)
	assert.Empty(t, payments.created)
}

func TestRecordPaymentBalanceRefreshFailed(t *testing.T) {
	// Оплата записана, но перечитать баланс не вышло: ошибка должна быть
	// отличима от провала самой оплаты, иначе репетитор запишет её дважды
	students := &fakeCalendarStore{studentsErr: errors.New("storage down")}
	payments := &fakePaymentStore{}
	svc := NewStudentService(students, payments, zap.NewNop())

	_, err := svc.RecordPayment(context.Background(), uuid.New(), 800, "")
	require.ErrorIs(t, err, ErrBalanceRefreshFailed)
	assert.Len(t, payments.created, 1)
}

func TestGetStudentResolvesFromList(t *testing.T) {
	studentID := uuid.New()
	students := &fakeCalendarStore{
		students: []model.Student{
			{ID: uuid.New(), FullName: "Боря Иванов"},
			{ID: studentID, FullName: "Аня Петрова", Slug: "anya-petrova"},
		},
	}
	svc := NewStudentService(students, &fakePaymentStore{}, zap.NewNop())

	student, err := svc.GetStudent(context.Background(), studentID)
	require.NoError(t, err)
	assert.Equal(t, "Аня Петрова", student.FullName)
	assert.Equal(t, "anya-petrova", student.Slug)

	_, err = svc.GetStudent(context.Background(), uuid.New())
	assert.ErrorIs(t, err, ErrStudentNotFound)
}
