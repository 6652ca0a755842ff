package embeddings

import (
	"context"

	"docqa/internal/embedding"
	"docqa/internal/rag/interfaces"
)

// Adapter bridges a provider embedding client to the pipeline's
// EmbeddingModel interface.
type Adapter struct {
	model embedding.Embedding
}

// NewAdapter creates a new Adapter around the given provider client.
func NewAdapter(model embedding.Embedding) *Adapter {
	return &Adapter{model: model}
}

// Embed generates embeddings for a batch of texts.
func (a *Adapter) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	return a.model.EmbedBatch(ctx, texts)
}

// compile-time check to ensure Adapter implements the EmbeddingModel interface
var _ interfaces.EmbeddingModel = (*Adapter)(nil)
