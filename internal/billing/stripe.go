package billing

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/stripe/stripe-go/v79"
	"github.com/stripe/stripe-go/v79/client"
)

// testPaymentMethod is the Stripe test card used for off-session charges.
const testPaymentMethod = "pm_card_visa"

// StripeGateway implements Gateway against the Stripe API.
type StripeGateway struct {
	api *client.API
}

// NewStripeGateway creates a StripeGateway authenticated with the given
// secret key.
func NewStripeGateway(apiKey string) *StripeGateway {
	api := &client.API{}
	api.Init(apiKey, nil)
	return &StripeGateway{api: api}
}

// CreateCustomer registers a Stripe customer for the payer.
func (g *StripeGateway) CreateCustomer(ctx context.Context, email, name string) (*Customer, error) {
	params := &stripe.CustomerParams{
		Email: stripe.String(email),
		Name:  stripe.String(name),
	}
	params.Context = ctx
	params.AddMetadata("registration_date", time.Now().UTC().Format(time.RFC3339))

	customer, err := g.api.Customers.New(params)
	if err != nil {
		return nil, fmt.Errorf("%w: create customer: %w", ErrPayment, err)
	}

	return &Customer{ID: customer.ID, Email: customer.Email}, nil
}

// CreateCharge confirms an off-session payment intent against the customer.
func (g *StripeGateway) CreateCharge(ctx context.Context, customerID string, amountMinor int64, currency string, questionCount int) (*Charge, error) {
	params := &stripe.PaymentIntentParams{
		Amount:        stripe.Int64(amountMinor),
		Currency:      stripe.String(currency),
		Customer:      stripe.String(customerID),
		PaymentMethod: stripe.String(testPaymentMethod),
		Confirm:       stripe.Bool(true),
		OffSession:    stripe.Bool(true),
	}
	params.Context = ctx
	params.AddMetadata("questions_count", strconv.Itoa(questionCount))
	params.AddMetadata("timestamp", time.Now().UTC().Format(time.RFC3339))

	intent, err := g.api.PaymentIntents.New(params)
	if err != nil {
		return nil, fmt.Errorf("%w: create payment intent: %w", ErrPayment, err)
	}

	return &Charge{
		ID:          intent.ID,
		Status:      string(intent.Status),
		AmountMinor: intent.Amount,
	}, nil
}

var _ Gateway = (*StripeGateway)(nil)
