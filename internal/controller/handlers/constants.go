package handlers

// Константы валидации для создания занятия
const (
	// Длительность занятия (в минутах)
	LessonMinDuration = 15
	LessonMaxDuration = 480 // 8 часов

	// Тема занятия
	LessonTopicMaxLength = 200

	// Максимальная сумма одной оплаты
	PaymentMaxAmount = 1_000_000
)

// Форматы ввода дат в диалогах
const (
	InputDateLayout = "02.01.2006"
	InputTimeLayout = "15:04"
)
