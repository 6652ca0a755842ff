package pipeline

import (
	"context"
	"fmt"
	"strings"
	"time"

	"docqa/internal/rag/index"
	"docqa/internal/rag/interfaces"
	"docqa/internal/rag/memory"
	"docqa/internal/rag/schema"
	"docqa/pkg/logger"
)

// Answer is the result of a successfully answered question.
type Answer struct {
	Text      string    `json:"answer"`
	Timestamp time.Time `json:"timestamp"`
}

// QAEngine answers a question against the knowledge index, conditioning the
// completion on prior conversation turns. A successfully answered question is
// appended to the conversation memory; a failed one leaves the memory
// untouched.
type QAEngine struct {
	embedder interfaces.EmbeddingModel
	llm      interfaces.LLM
	index    *index.Index
	memory   *memory.Buffer
	topK     int
	log      *logger.Logger
}

// NewQAEngine creates a new QAEngine.
func NewQAEngine(
	embedder interfaces.EmbeddingModel,
	llm interfaces.LLM,
	idx *index.Index,
	mem *memory.Buffer,
	topK int,
	log *logger.Logger,
) *QAEngine {
	return &QAEngine{
		embedder: embedder,
		llm:      llm,
		index:    idx,
		memory:   mem,
		topK:     topK,
		log:      log,
	}
}

// Query answers a question. Steps: embed the question, retrieve supporting
// chunks, build a prompt including the conversation context, invoke the LLM,
// and record the turn. Provider failures are reported as ErrGenerationFailed
// with the cause attached, and nothing is recorded on that path.
func (e *QAEngine) Query(ctx context.Context, question string) (*Answer, error) {
	if e.embedder == nil || e.llm == nil || e.index == nil || e.memory == nil {
		return nil, ErrNotInitialized
	}

	e.log.Info(fmt.Sprintf("Answering question: %q", question))

	embeddings, err := e.embedder.Embed(ctx, []string{question})
	if err != nil {
		e.log.Error(fmt.Sprintf("Failed to embed question: %v", err))
		return nil, fmt.Errorf("%w: embed question: %w", ErrGenerationFailed, err)
	}
	if len(embeddings) == 0 {
		return nil, fmt.Errorf("%w: no embedding returned for question", ErrGenerationFailed)
	}

	documents := e.index.Search(embeddings[0], e.topK)
	e.log.Info(fmt.Sprintf("Retrieved %d supporting chunks", len(documents)))

	prompt := e.buildPrompt(question, documents, e.memory.Context())

	text, err := e.llm.Generate(ctx, prompt)
	if err != nil {
		e.log.Error(fmt.Sprintf("LLM failed to generate answer: %v", err))
		return nil, fmt.Errorf("%w: %w", ErrGenerationFailed, err)
	}

	answer := &Answer{Text: text, Timestamp: time.Now().UTC()}
	e.memory.Append(schema.Turn{Question: question, Answer: text, Timestamp: answer.Timestamp})

	return answer, nil
}

// buildPrompt constructs a prompt from the question, retrieved chunks and
// prior conversation turns.
func (e *QAEngine) buildPrompt(question string, documents []*schema.Document, turns []schema.Turn) string {
	var sb strings.Builder

	sb.WriteString("Based on the following context, please answer the question.\n\nContext:\n")
	for i, doc := range documents {
		sb.WriteString("---\n")
		sb.WriteString(fmt.Sprintf("Context %d:\n%s\n", i+1, doc.Text))
	}
	sb.WriteString("---\n")

	if len(turns) > 0 {
		sb.WriteString("\nConversation so far:\n")
		for _, turn := range turns {
			sb.WriteString(fmt.Sprintf("User: %s\nAssistant: %s\n", turn.Question, turn.Answer))
		}
	}

	sb.WriteString(fmt.Sprintf("\nQuestion: %s", question))
	return sb.String()
}
