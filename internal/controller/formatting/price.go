package formatting

import "fmt"

// FormatPrice форматирует сумму в гривнах
func FormatPrice(price float64) string {
	if price == float64(int64(price)) {
		return fmt.Sprintf("%.0f грн", price)
	}
	return fmt.Sprintf("%.2f грн", price)
}

// FormatBalance форматирует баланс со знаком (минус = долг)
func FormatBalance(balance float64) string {
	if balance < 0 {
		return "−" + FormatPrice(-balance)
	}
	return FormatPrice(balance)
}
