package model

import "github.com/google/uuid"

// Payment пополнение баланса ученика (отрицательная сумма — списание)
type Payment struct {
	ID        uuid.UUID `json:"id"`
	StudentID uuid.UUID `json:"student_id"`
	Amount    float64   `json:"amount"`
	Date      LocalTime `json:"date"`
	Comment   string    `json:"comment,omitempty"`
}

type PaymentCreate struct {
	StudentID uuid.UUID `json:"student_id"`
	Amount    float64   `json:"amount"`
	Comment   string    `json:"comment,omitempty"`
}
