package services

import (
	"bytes"
	"io"
	"net/http"

	"github.com/stripe/stripe-go/v80"
	"github.com/stripe/stripe-go/v80/checkout/session"
	"github.com/stripe/stripe-go/v80/webhook"
)

// CheckoutSessionParams describes the hosted checkout session to create. The
// cart and user ids become session metadata so the webhook can run the card
// order path without a request-bound user.
type CheckoutSessionParams struct {
	Amount        int64 // minor units
	Currency      string
	CustomerEmail string
	CartID        string
	UserID        string
	Description   string
}

// CheckoutSessionRef is the gateway-hosted session reference returned to the
// client.
type CheckoutSessionRef struct {
	ID  string `json:"id"`
	URL string `json:"url"`
}

// CompletedSession is the slice of a checkout.session.completed event the
// card order path consumes.
type CompletedSession struct {
	SessionID string
	CartID    string
	UserID    string
}

// PaymentGateway abstracts the payment provider for the checkout service.
type PaymentGateway interface {
	CreateCheckoutSession(params CheckoutSessionParams) (*CheckoutSessionRef, error)
}

// StripeClient wraps the Stripe SDK for session creation and webhook
// signature verification.
type StripeClient struct {
	webhookKey string
	successURL string
	cancelURL  string
}

func NewStripeClient(secretKey, webhookKey, successURL, cancelURL string) *StripeClient {
	stripe.Key = secretKey
	return &StripeClient{
		webhookKey: webhookKey,
		successURL: successURL,
		cancelURL:  cancelURL,
	}
}

func (s *StripeClient) CreateCheckoutSession(p CheckoutSessionParams) (*CheckoutSessionRef, error) {
	params := &stripe.CheckoutSessionParams{
		PaymentMethodTypes: stripe.StringSlice([]string{"card"}),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{
				PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
					Currency: stripe.String(p.Currency),
					ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
						Name:        stripe.String("Your Order"),
						Description: stripe.String(p.Description),
					},
					UnitAmount: stripe.Int64(p.Amount),
				},
				Quantity: stripe.Int64(1),
			},
		},
		Mode:              stripe.String(string(stripe.CheckoutSessionModePayment)),
		SuccessURL:        stripe.String(s.successURL),
		CancelURL:         stripe.String(s.cancelURL),
		CustomerEmail:     stripe.String(p.CustomerEmail),
		ClientReferenceID: stripe.String(p.CartID),
	}
	params.AddMetadata("userId", p.UserID)

	sess, err := session.New(params)
	if err != nil {
		return nil, err
	}
	return &CheckoutSessionRef{ID: sess.ID, URL: sess.URL}, nil
}

// ParseWebhook verifies the Stripe-Signature header against the raw request
// body before any business logic runs.
func (s *StripeClient) ParseWebhook(r *http.Request) (stripe.Event, error) {
	var event stripe.Event
	payload, err := io.ReadAll(r.Body)
	if err != nil {
		return event, err
	}
	r.Body = io.NopCloser(bytes.NewBuffer(payload))
	sigHeader := r.Header.Get("Stripe-Signature")
	return webhook.ConstructEvent(payload, sigHeader, s.webhookKey)
}
