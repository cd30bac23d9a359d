package model

import "github.com/google/uuid"

type Student struct {
	ID              uuid.UUID `json:"id"`
	FullName        string    `json:"full_name"`
	Grade           string    `json:"grade,omitempty"`
	Slug            string    `json:"slug,omitempty"`
	ParentName      string    `json:"parent_name,omitempty"`
	TelegramContact string    `json:"telegram_contact,omitempty"`
	// DefaultPrice тариф за занятие по умолчанию
	DefaultPrice float64 `json:"default_price"`
	// Balance считается на стороне хранилища (оплаты минус списания),
	// здесь только читается
	Balance float64 `json:"balance"`
	Comment string  `json:"comment,omitempty"`
}

type StudentCreate struct {
	FullName        string  `json:"full_name"`
	Grade           string  `json:"grade,omitempty"`
	ParentName      string  `json:"parent_name,omitempty"`
	TelegramContact string  `json:"telegram_contact,omitempty"`
	DefaultPrice    float64 `json:"default_price"`
	Comment         string  `json:"comment,omitempty"`
}

type StudentUpdate struct {
	FullName        *string  `json:"full_name,omitempty"`
	Grade           *string  `json:"grade,omitempty"`
	ParentName      *string  `json:"parent_name,omitempty"`
	TelegramContact *string  `json:"telegram_contact,omitempty"`
	DefaultPrice    *float64 `json:"default_price,omitempty"`
	Comment         *string  `json:"comment,omitempty"`
}
