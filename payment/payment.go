// Package payment talks to the card payment provider.
package payment

import (
	"context"
	"errors"

	"shawarma-sheesh-api/models"
)

// ErrUnhandledEvent is returned for callbacks that carry no payment outcome.
var ErrUnhandledEvent = errors.New("payment event not handled")

type SessionRequest struct {
	OrderID     uint
	Description string
	Amount      int64 // minor units
	Currency    string
	SuccessURL  string
	CancelURL   string
}

type Session struct {
	ID            string               `json:"id"`
	URL           string               `json:"url,omitempty"`
	OrderID       uint                 `json:"order_id"`
	Status        models.PaymentStatus `json:"status"`
	TransactionID string               `json:"transaction_id,omitempty"`
}

type Gateway interface {
	CreateSession(ctx context.Context, req SessionRequest) (*Session, error)
	GetSession(ctx context.Context, id string) (*Session, error)
	ParseCallback(payload []byte, signature string) (*Session, error)
}
