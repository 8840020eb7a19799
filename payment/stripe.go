package payment

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	"shawarma-sheesh-api/models"

	"github.com/stripe/stripe-go/v83"
	"github.com/stripe/stripe-go/v83/checkout/session"
	"github.com/stripe/stripe-go/v83/webhook"
)

type StripeGateway struct {
	webhookSecret string
}

func NewStripeGateway(secretKey, webhookSecret string) *StripeGateway {
	stripe.Key = secretKey
	return &StripeGateway{webhookSecret: webhookSecret}
}

func (g *StripeGateway) CreateSession(_ context.Context, req SessionRequest) (*Session, error) {
	orderRef := strconv.FormatUint(uint64(req.OrderID), 10)

	params := &stripe.CheckoutSessionParams{
		Mode:              stripe.String(string(stripe.CheckoutSessionModePayment)),
		SuccessURL:        stripe.String(req.SuccessURL),
		CancelURL:         stripe.String(req.CancelURL),
		ClientReferenceID: stripe.String(orderRef),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{
				PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
					Currency:   stripe.String(req.Currency),
					UnitAmount: stripe.Int64(req.Amount),
					ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
						Name: stripe.String(req.Description),
					},
				},
				Quantity: stripe.Int64(1),
			},
		},
	}
	params.AddMetadata("order_id", orderRef)

	s, err := session.New(params)
	if err != nil {
		return nil, fmt.Errorf("create checkout session: %w", err)
	}
	return fromCheckoutSession(s), nil
}

func (g *StripeGateway) GetSession(_ context.Context, id string) (*Session, error) {
	s, err := session.Get(id, nil)
	if err != nil {
		return nil, fmt.Errorf("get checkout session %s: %w", id, err)
	}
	return fromCheckoutSession(s), nil
}

func (g *StripeGateway) ParseCallback(payload []byte, signature string) (*Session, error) {
	event, err := webhook.ConstructEventWithOptions(payload, signature, g.webhookSecret,
		webhook.ConstructEventOptions{IgnoreAPIVersionMismatch: true})
	if err != nil {
		return nil, fmt.Errorf("verify webhook: %w", err)
	}

	switch string(event.Type) {
	case "checkout.session.completed",
		"checkout.session.async_payment_succeeded",
		"checkout.session.async_payment_failed",
		"checkout.session.expired":
	default:
		return nil, ErrUnhandledEvent
	}

	var s stripe.CheckoutSession
	if err := json.Unmarshal(event.Data.Raw, &s); err != nil {
		return nil, fmt.Errorf("decode checkout session: %w", err)
	}

	out := fromCheckoutSession(&s)
	if string(event.Type) == "checkout.session.async_payment_failed" {
		out.Status = models.PaymentStatusFailed
	}
	return out, nil
}

func fromCheckoutSession(s *stripe.CheckoutSession) *Session {
	out := &Session{
		ID:      s.ID,
		URL:     s.URL,
		OrderID: orderIDOf(s),
		Status:  statusOf(s),
	}
	if s.PaymentIntent != nil {
		out.TransactionID = s.PaymentIntent.ID
	}
	return out
}

func orderIDOf(s *stripe.CheckoutSession) uint {
	ref := s.Metadata["order_id"]
	if ref == "" {
		ref = s.ClientReferenceID
	}
	id, err := strconv.ParseUint(ref, 10, 64)
	if err != nil {
		return 0
	}
	return uint(id)
}

func statusOf(s *stripe.CheckoutSession) models.PaymentStatus {
	switch {
	case s.PaymentStatus == stripe.CheckoutSessionPaymentStatusPaid,
		s.PaymentStatus == stripe.CheckoutSessionPaymentStatusNoPaymentRequired:
		return models.PaymentStatusPaid
	case s.Status == stripe.CheckoutSessionStatusExpired:
		return models.PaymentStatusFailed
	default:
		return models.PaymentStatusPending
	}
}
