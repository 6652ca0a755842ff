package billing

import (
	"context"
	"fmt"
	"sync"
	"time"

	"docqa/pkg/logger"
)

// Payer is the registered payer a ledger charges against.
type Payer struct {
	ID           string    `json:"customer_id"`
	Email        string    `json:"email"`
	DisplayName  string    `json:"display_name"`
	RegisteredAt time.Time `json:"registered_at"`
}

// Receipt reports the outcome of a processed charge. Amount is in major
// currency units (the gateway deals in minor units).
type Receipt struct {
	Status string  `json:"status"`
	Amount float64 `json:"amount"`
}

// Ledger owns the payer identity, the monotonic question counter and the
// charge cadence. A charge is due exactly when the counter reaches a
// positive multiple of chargeEvery.
//
// All counter mutations and the charge decision for one question happen
// under the ledger mutex (see SettleQuestion), so concurrent questions can
// neither skip a due charge nor trigger it twice.
type Ledger struct {
	mu          sync.Mutex
	gateway     Gateway
	log         *logger.Logger
	payer       *Payer
	count       int
	chargeEvery int
	amountMinor int64
	currency    string
}

// NewLedger creates a Ledger charging amountMinor (minor currency units)
// every chargeEvery answered questions.
func NewLedger(gateway Gateway, chargeEvery int, amountMinor int64, currency string, log *logger.Logger) *Ledger {
	return &Ledger{
		gateway:     gateway,
		log:         log,
		chargeEvery: chargeEvery,
		amountMinor: amountMinor,
		currency:    currency,
	}
}

// RegisterPayer registers the payer with the payment gateway and makes it
// the ledger's active payer, resetting the question counter. A gateway
// failure leaves any previously registered payer and its counter untouched.
func (l *Ledger) RegisterPayer(ctx context.Context, email, displayName string) (*Payer, error) {
	customer, err := l.gateway.CreateCustomer(ctx, email, displayName)
	if err != nil {
		return nil, err
	}

	payer := &Payer{
		ID:           customer.ID,
		Email:        customer.Email,
		DisplayName:  displayName,
		RegisteredAt: time.Now().UTC(),
	}

	l.mu.Lock()
	l.payer = payer
	l.count = 0
	l.mu.Unlock()

	l.log.Info(fmt.Sprintf("Payer registered: %s", payer.Email))
	return payer, nil
}

// HasPayer reports whether a payer is currently registered.
func (l *Ledger) HasPayer() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.payer != nil
}

// QuestionCount returns the current counter value.
func (l *Ledger) QuestionCount() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.count
}

// IsChargeDue reports whether the given counter value triggers a charge.
func (l *Ledger) IsChargeDue(count int) bool {
	return count > 0 && count%l.chargeEvery == 0
}

// RecordQuestion increments the question counter for a successfully
// answered question and returns the new count. Callers that also need the
// charge decision should use SettleQuestion, which keeps both under one
// lock.
func (l *Ledger) RecordQuestion() (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.payer == nil {
		return 0, ErrNoPayer
	}
	l.count++
	return l.count, nil
}

// Charge processes a single charge against the current payer.
func (l *Ledger) Charge(ctx context.Context) (*Receipt, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.payer == nil {
		return nil, ErrNoPayer
	}
	return l.charge(ctx, l.count)
}

// charge calls the gateway. The caller must hold the ledger mutex.
func (l *Ledger) charge(ctx context.Context, count int) (*Receipt, error) {
	charge, err := l.gateway.CreateCharge(ctx, l.payer.ID, l.amountMinor, l.currency, count)
	if err != nil {
		l.log.Error(fmt.Sprintf("Charge failed at question %d: %v", count, err))
		return nil, err
	}
	l.log.Info(fmt.Sprintf("Charge processed at question %d: %s", count, charge.Status))
	return &Receipt{
		Status: charge.Status,
		Amount: float64(charge.AmountMinor) / 100,
	}, nil
}

// SettleQuestion records one successfully answered question and, when the
// new count makes a charge due, processes it through the gateway. The whole
// increment-check-charge sequence holds the ledger mutex.
//
// It returns the new count and, when a charge was processed, its receipt.
// A gateway failure surfaces as an error wrapping ErrPayment; the counter
// increment is kept (the question was answered) and no retry is attempted.
func (l *Ledger) SettleQuestion(ctx context.Context) (int, *Receipt, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.payer == nil {
		return 0, nil, ErrNoPayer
	}

	l.count++
	count := l.count

	if !l.IsChargeDue(count) {
		return count, nil, nil
	}

	receipt, err := l.charge(ctx, count)
	if err != nil {
		return count, nil, err
	}
	return count, receipt, nil
}
