package apiclient

import (
	"context"
	"fmt"
	"net/http"

	"github.com/denkrav/tutor_crm/internal/model"
)

// CreatePayment записывает оплату; баланс ученика пересчитывает хранилище
func (c *Client) CreatePayment(ctx context.Context, payload model.PaymentCreate) (*model.Payment, error) {
	payment := &model.Payment{}
	if err := c.doJSON(ctx, http.MethodPost, "/payments/", nil, payload, payment); err != nil {
		return nil, fmt.Errorf("create payment: %w", err)
	}
	return payment, nil
}
