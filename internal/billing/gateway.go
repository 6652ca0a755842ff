package billing

import (
	"context"
	"errors"
)

var (
	// ErrNoPayer is returned when a billing action is attempted before a
	// payer has been registered.
	ErrNoPayer = errors.New("no payer registered")

	// ErrPayment is returned when the payment gateway rejects a request or
	// is unreachable. The gateway cause is attached to the error chain.
	ErrPayment = errors.New("payment failed")
)

// Customer is the gateway's record of a registered payer.
type Customer struct {
	ID    string
	Email string
}

// Charge is the gateway's record of a processed payment.
type Charge struct {
	ID          string
	Status      string
	AmountMinor int64
}

// Gateway is the narrow payment-capability interface the ledger depends on.
// Implementations must not retry on failure; retry policy belongs to the
// caller.
type Gateway interface {
	CreateCustomer(ctx context.Context, email, name string) (*Customer, error)
	CreateCharge(ctx context.Context, customerID string, amountMinor int64, currency string, questionCount int) (*Charge, error)
}
