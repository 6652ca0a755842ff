package service

import (
	"context"
	"fmt"

	"docqa/internal/billing"
	"docqa/internal/rag/pipeline"
	"docqa/pkg/logger"
)

// DocumentIndexer builds a new index snapshot from a document on disk.
type DocumentIndexer interface {
	Run(ctx context.Context, path string) (int, error)
}

// QueryEngine answers a single question against the current index.
type QueryEngine interface {
	Query(ctx context.Context, question string) (*pipeline.Answer, error)
}

// CombinedResponse is the result of one metered question: the answer, plus
// the charge receipt when this question triggered a charge.
type CombinedResponse struct {
	Answer  *pipeline.Answer `json:"answer"`
	Payment *billing.Receipt `json:"payment,omitempty"`
}

// Service is the metered query controller. It owns the single index,
// conversation memory and billing ledger of the deployment (via the
// pipelines and ledger handed to it) and keeps question answering and
// payment processing correctly ordered: no payer, no query; no answer, no
// charge.
type Service struct {
	log      *logger.Logger
	indexing DocumentIndexer
	engine   QueryEngine
	ledger   *billing.Ledger
}

// New creates a Service.
func New(indexing DocumentIndexer, engine QueryEngine, ledger *billing.Ledger, log *logger.Logger) *Service {
	return &Service{
		log:      log,
		indexing: indexing,
		engine:   engine,
		ledger:   ledger,
	}
}

// IndexDocument replaces the knowledge index with the content of the file at
// path. On failure the previous index stays in place.
func (s *Service) IndexDocument(ctx context.Context, path string) (int, error) {
	return s.indexing.Run(ctx, path)
}

// RegisterPayer registers (or replaces) the active payer. Replacing the
// payer resets the question counter.
func (s *Service) RegisterPayer(ctx context.Context, email, name string) (*billing.Payer, error) {
	return s.ledger.RegisterPayer(ctx, email, name)
}

// Answer runs one metered question.
//
// Protocol: fail fast with ErrNoPayer before the query engine is ever
// invoked; answer the question; then record it and process a due charge in
// one settle step. A failed query leaves the ledger untouched. A failed due
// charge fails the whole request even though an answer was produced: the
// caller is told payment did not go through rather than silently keeping
// the answer flowing.
func (s *Service) Answer(ctx context.Context, question string) (*CombinedResponse, error) {
	if !s.ledger.HasPayer() {
		return nil, billing.ErrNoPayer
	}

	answer, err := s.engine.Query(ctx, question)
	if err != nil {
		return nil, err
	}

	count, receipt, err := s.ledger.SettleQuestion(ctx)
	if err != nil {
		return nil, err
	}

	s.log.WithPayload(map[string]interface{}{
		"question_count": count,
		"charged":        receipt != nil,
	}).Info(fmt.Sprintf("Question %d answered", count))

	return &CombinedResponse{Answer: answer, Payment: receipt}, nil
}
