package service

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"docqa/internal/billing"
	"docqa/internal/rag/pipeline"
	"docqa/pkg/logger"
)

type fakeIndexer struct {
	chunks int
	err    error
}

func (f *fakeIndexer) Run(ctx context.Context, path string) (int, error) {
	return f.chunks, f.err
}

type fakeEngine struct {
	answer string
	err    error
	calls  int
}

func (f *fakeEngine) Query(ctx context.Context, question string) (*pipeline.Answer, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return &pipeline.Answer{Text: f.answer, Timestamp: time.Now().UTC()}, nil
}

type fakeGateway struct {
	charges    int
	failCharge bool
}

func (f *fakeGateway) CreateCustomer(ctx context.Context, email, name string) (*billing.Customer, error) {
	return &billing.Customer{ID: "cus_test", Email: email}, nil
}

func (f *fakeGateway) CreateCharge(ctx context.Context, customerID string, amountMinor int64, currency string, questionCount int) (*billing.Charge, error) {
	if f.failCharge {
		return nil, fmt.Errorf("%w: card declined", billing.ErrPayment)
	}
	f.charges++
	return &billing.Charge{ID: "pi_test", Status: "succeeded", AmountMinor: amountMinor}, nil
}

func newTestService(engine *fakeEngine, gw *fakeGateway) (*Service, *billing.Ledger) {
	ledger := billing.NewLedger(gw, 5, 100, "usd", logger.New("test"))
	svc := New(&fakeIndexer{chunks: 1}, engine, ledger, logger.New("test"))
	return svc, ledger
}

func TestService_NoPayerFailsBeforeQuery(t *testing.T) {
	engine := &fakeEngine{answer: "never"}
	svc, _ := newTestService(engine, &fakeGateway{})

	_, err := svc.Answer(context.Background(), "hello")
	if !errors.Is(err, billing.ErrNoPayer) {
		t.Fatalf("Answer without payer: err = %v, want ErrNoPayer", err)
	}
	if engine.calls != 0 {
		t.Fatalf("engine invoked %d times without a payer, want 0", engine.calls)
	}
}

func TestService_FifthQuestionCarriesPayment(t *testing.T) {
	engine := &fakeEngine{answer: "ok"}
	gw := &fakeGateway{}
	svc, _ := newTestService(engine, gw)
	ctx := context.Background()

	if _, err := svc.RegisterPayer(ctx, "payer@example.com", "Payer"); err != nil {
		t.Fatalf("RegisterPayer: %v", err)
	}

	for i := 1; i <= 5; i++ {
		resp, err := svc.Answer(ctx, fmt.Sprintf("question %d", i))
		if err != nil {
			t.Fatalf("Answer %d: %v", i, err)
		}
		if resp.Answer.Text != "ok" {
			t.Errorf("answer %d text = %q", i, resp.Answer.Text)
		}
		if i < 5 && resp.Payment != nil {
			t.Errorf("question %d carried an unexpected payment: %+v", i, resp.Payment)
		}
		if i == 5 {
			if resp.Payment == nil {
				t.Fatal("5th question carried no payment")
			}
			if resp.Payment.Amount != 1.00 {
				t.Errorf("payment amount = %v, want 1.00", resp.Payment.Amount)
			}
		}
	}
	if gw.charges != 1 {
		t.Fatalf("gateway charged %d times, want 1", gw.charges)
	}
}

func TestService_FailedQueryLeavesLedgerUntouched(t *testing.T) {
	engine := &fakeEngine{err: fmt.Errorf("%w: model overloaded", pipeline.ErrGenerationFailed)}
	svc, ledger := newTestService(engine, &fakeGateway{})
	ctx := context.Background()

	if _, err := svc.RegisterPayer(ctx, "payer@example.com", ""); err != nil {
		t.Fatalf("RegisterPayer: %v", err)
	}

	_, err := svc.Answer(ctx, "hello")
	if !errors.Is(err, pipeline.ErrGenerationFailed) {
		t.Fatalf("Answer with failing engine: err = %v, want ErrGenerationFailed", err)
	}
	if got := ledger.QuestionCount(); got != 0 {
		t.Fatalf("QuestionCount = %d after failed query, want 0", got)
	}
}

func TestService_ChargeFailureSurfacesError(t *testing.T) {
	engine := &fakeEngine{answer: "ok"}
	gw := &fakeGateway{}
	svc, ledger := newTestService(engine, gw)
	ctx := context.Background()

	if _, err := svc.RegisterPayer(ctx, "payer@example.com", ""); err != nil {
		t.Fatalf("RegisterPayer: %v", err)
	}
	for i := 0; i < 4; i++ {
		if _, err := svc.Answer(ctx, "warmup"); err != nil {
			t.Fatalf("Answer: %v", err)
		}
	}

	gw.failCharge = true
	_, err := svc.Answer(ctx, "the metered one")
	if !errors.Is(err, billing.ErrPayment) {
		t.Fatalf("Answer with failing charge: err = %v, want ErrPayment", err)
	}
	// 问题已被回答，计数保留
	if got := ledger.QuestionCount(); got != 5 {
		t.Fatalf("QuestionCount = %d, want 5", got)
	}
}

func TestService_IndexDocumentDelegates(t *testing.T) {
	indexer := &fakeIndexer{chunks: 7}
	ledger := billing.NewLedger(&fakeGateway{}, 5, 100, "usd", logger.New("test"))
	svc := New(indexer, &fakeEngine{}, ledger, logger.New("test"))

	chunks, err := svc.IndexDocument(context.Background(), "some/path.txt")
	if err != nil {
		t.Fatalf("IndexDocument: %v", err)
	}
	if chunks != 7 {
		t.Errorf("chunks = %d, want 7", chunks)
	}
}
