package billing

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"docqa/pkg/logger"
)

// fakeGateway records calls and can be told to fail.
type fakeGateway struct {
	customers    int
	charges      []int // question counts at which charges happened
	failCustomer bool
	failCharge   bool
}

func (f *fakeGateway) CreateCustomer(ctx context.Context, email, name string) (*Customer, error) {
	if f.failCustomer {
		return nil, fmt.Errorf("%w: gateway down", ErrPayment)
	}
	f.customers++
	return &Customer{ID: fmt.Sprintf("cus_%d", f.customers), Email: email}, nil
}

func (f *fakeGateway) CreateCharge(ctx context.Context, customerID string, amountMinor int64, currency string, questionCount int) (*Charge, error) {
	if f.failCharge {
		return nil, fmt.Errorf("%w: card declined", ErrPayment)
	}
	f.charges = append(f.charges, questionCount)
	return &Charge{ID: "pi_test", Status: "succeeded", AmountMinor: amountMinor}, nil
}

func newTestLedger(gw Gateway) *Ledger {
	return NewLedger(gw, 5, 100, "usd", logger.New("test"))
}

func TestLedger_SettleWithoutPayer(t *testing.T) {
	l := newTestLedger(&fakeGateway{})

	if _, _, err := l.SettleQuestion(context.Background()); !errors.Is(err, ErrNoPayer) {
		t.Fatalf("SettleQuestion without payer: err = %v, want ErrNoPayer", err)
	}
}

func TestLedger_RecordQuestion(t *testing.T) {
	l := newTestLedger(&fakeGateway{})
	ctx := context.Background()

	if _, err := l.RecordQuestion(); !errors.Is(err, ErrNoPayer) {
		t.Fatalf("RecordQuestion without payer: err = %v, want ErrNoPayer", err)
	}

	if _, err := l.RegisterPayer(ctx, "payer@example.com", ""); err != nil {
		t.Fatalf("RegisterPayer: %v", err)
	}
	for i := 1; i <= 3; i++ {
		count, err := l.RecordQuestion()
		if err != nil {
			t.Fatalf("RecordQuestion %d: %v", i, err)
		}
		if count != i {
			t.Errorf("count = %d, want %d", count, i)
		}
	}
	if got := l.QuestionCount(); got != 3 {
		t.Errorf("QuestionCount = %d, want 3", got)
	}
}

func TestLedger_Charge(t *testing.T) {
	gw := &fakeGateway{}
	l := newTestLedger(gw)
	ctx := context.Background()

	if _, err := l.Charge(ctx); !errors.Is(err, ErrNoPayer) {
		t.Fatalf("Charge without payer: err = %v, want ErrNoPayer", err)
	}

	if _, err := l.RegisterPayer(ctx, "payer@example.com", ""); err != nil {
		t.Fatalf("RegisterPayer: %v", err)
	}
	receipt, err := l.Charge(ctx)
	if err != nil {
		t.Fatalf("Charge: %v", err)
	}
	if receipt.Status != "succeeded" || receipt.Amount != 1.00 {
		t.Errorf("receipt = %+v, want succeeded / 1.00", receipt)
	}
	if len(gw.charges) != 1 {
		t.Fatalf("gateway charged %d times, want 1", len(gw.charges))
	}

	gw.failCharge = true
	if _, err := l.Charge(ctx); !errors.Is(err, ErrPayment) {
		t.Fatalf("Charge with failing gateway: err = %v, want ErrPayment", err)
	}
}

func TestLedger_ChargesEveryFifthQuestion(t *testing.T) {
	gw := &fakeGateway{}
	l := newTestLedger(gw)
	ctx := context.Background()

	if _, err := l.RegisterPayer(ctx, "payer@example.com", "Payer"); err != nil {
		t.Fatalf("RegisterPayer: %v", err)
	}

	for i := 1; i <= 12; i++ {
		count, receipt, err := l.SettleQuestion(ctx)
		if err != nil {
			t.Fatalf("SettleQuestion %d: %v", i, err)
		}
		if count != i {
			t.Fatalf("count = %d, want %d", count, i)
		}
		wantCharge := i%5 == 0
		if (receipt != nil) != wantCharge {
			t.Errorf("question %d: receipt = %v, want charge = %v", i, receipt, wantCharge)
		}
	}

	if len(gw.charges) != 2 || gw.charges[0] != 5 || gw.charges[1] != 10 {
		t.Fatalf("charges happened at %v, want [5 10]", gw.charges)
	}
}

func TestLedger_ReceiptAmountInMajorUnits(t *testing.T) {
	gw := &fakeGateway{}
	l := newTestLedger(gw)
	ctx := context.Background()

	if _, err := l.RegisterPayer(ctx, "payer@example.com", ""); err != nil {
		t.Fatalf("RegisterPayer: %v", err)
	}
	var receipt *Receipt
	for i := 0; i < 5; i++ {
		var err error
		_, receipt, err = l.SettleQuestion(ctx)
		if err != nil {
			t.Fatalf("SettleQuestion: %v", err)
		}
	}
	if receipt == nil {
		t.Fatal("no receipt on the 5th question")
	}
	if receipt.Amount != 1.00 {
		t.Errorf("receipt.Amount = %v, want 1.00", receipt.Amount)
	}
	if receipt.Status != "succeeded" {
		t.Errorf("receipt.Status = %q, want %q", receipt.Status, "succeeded")
	}
}

func TestLedger_ReRegisterResetsCount(t *testing.T) {
	gw := &fakeGateway{}
	l := newTestLedger(gw)
	ctx := context.Background()

	if _, err := l.RegisterPayer(ctx, "first@example.com", ""); err != nil {
		t.Fatalf("RegisterPayer: %v", err)
	}
	for i := 0; i < 3; i++ {
		if _, _, err := l.SettleQuestion(ctx); err != nil {
			t.Fatalf("SettleQuestion: %v", err)
		}
	}

	if _, err := l.RegisterPayer(ctx, "second@example.com", ""); err != nil {
		t.Fatalf("RegisterPayer: %v", err)
	}
	if got := l.QuestionCount(); got != 0 {
		t.Fatalf("QuestionCount after re-register = %d, want 0", got)
	}

	// 重新注册后，第 5 个问题才再次扣费
	for i := 1; i <= 5; i++ {
		_, receipt, err := l.SettleQuestion(ctx)
		if err != nil {
			t.Fatalf("SettleQuestion: %v", err)
		}
		if (receipt != nil) != (i == 5) {
			t.Errorf("question %d after re-register: receipt = %v", i, receipt)
		}
	}
}

func TestLedger_FailedRegistrationKeepsPreviousPayer(t *testing.T) {
	gw := &fakeGateway{}
	l := newTestLedger(gw)
	ctx := context.Background()

	if _, err := l.RegisterPayer(ctx, "first@example.com", ""); err != nil {
		t.Fatalf("RegisterPayer: %v", err)
	}
	for i := 0; i < 2; i++ {
		if _, _, err := l.SettleQuestion(ctx); err != nil {
			t.Fatalf("SettleQuestion: %v", err)
		}
	}

	gw.failCustomer = true
	if _, err := l.RegisterPayer(ctx, "second@example.com", ""); !errors.Is(err, ErrPayment) {
		t.Fatalf("RegisterPayer with failing gateway: err = %v, want ErrPayment", err)
	}

	if !l.HasPayer() {
		t.Fatal("previous payer lost after failed re-registration")
	}
	if got := l.QuestionCount(); got != 2 {
		t.Fatalf("QuestionCount = %d, want 2 (untouched)", got)
	}
}

func TestLedger_ChargeFailureKeepsCounter(t *testing.T) {
	gw := &fakeGateway{}
	l := newTestLedger(gw)
	ctx := context.Background()

	if _, err := l.RegisterPayer(ctx, "payer@example.com", ""); err != nil {
		t.Fatalf("RegisterPayer: %v", err)
	}
	for i := 0; i < 4; i++ {
		if _, _, err := l.SettleQuestion(ctx); err != nil {
			t.Fatalf("SettleQuestion: %v", err)
		}
	}

	gw.failCharge = true
	count, receipt, err := l.SettleQuestion(ctx)
	if !errors.Is(err, ErrPayment) {
		t.Fatalf("SettleQuestion with failing charge: err = %v, want ErrPayment", err)
	}
	if receipt != nil {
		t.Errorf("receipt = %v, want nil on failed charge", receipt)
	}
	if count != 5 {
		t.Errorf("count = %d, want 5 (the answered question stays recorded)", count)
	}
	if got := l.QuestionCount(); got != 5 {
		t.Errorf("QuestionCount = %d, want 5", got)
	}
}
