package pipeline

import (
	"context"
	"fmt"

	"docqa/internal/rag/index"
	"docqa/internal/rag/interfaces"
	"docqa/internal/rag/loaders"
	"docqa/internal/rag/schema"
	"docqa/pkg/logger"

	"golang.org/x/sync/errgroup"
)

// embedBatchSize is the number of chunks sent to the embedding provider per
// request when indexing.
const embedBatchSize = 16

// IndexingPipeline orchestrates loading, splitting and embedding a document,
// then swaps the resulting chunk set into the knowledge index in one step.
// Nothing is observable in the index until the swap commits: any failure
// leaves the previous snapshot untouched.
type IndexingPipeline struct {
	splitter interfaces.Splitter
	embedder interfaces.EmbeddingModel
	index    *index.Index
	log      *logger.Logger
}

// NewIndexingPipeline creates a new IndexingPipeline.
func NewIndexingPipeline(
	splitter interfaces.Splitter,
	embedder interfaces.EmbeddingModel,
	idx *index.Index,
	log *logger.Logger,
) *IndexingPipeline {
	return &IndexingPipeline{
		splitter: splitter,
		embedder: embedder,
		index:    idx,
		log:      log,
	}
}

// Run executes the indexing pipeline for the file at path and returns the
// number of chunks in the new snapshot. All failures are reported as ErrLoad
// with the cause attached.
func (p *IndexingPipeline) Run(ctx context.Context, path string) (int, error) {
	p.log.Info(fmt.Sprintf("Starting indexing for path: %s", path))

	loader, err := loaders.ForPath(path)
	if err != nil {
		return 0, fmt.Errorf("%w: %w", ErrLoad, err)
	}

	// 1. Load the data
	initialDocs, err := loader.Load(ctx, path)
	if err != nil {
		p.log.Error(fmt.Sprintf("Failed to load data: %v", err))
		return 0, fmt.Errorf("%w: %w", ErrLoad, err)
	}

	// 2. Split documents into chunks
	chunks, err := p.splitter.Split(ctx, initialDocs)
	if err != nil {
		p.log.Error(fmt.Sprintf("Failed to split documents: %v", err))
		return 0, fmt.Errorf("%w: %w", ErrLoad, err)
	}
	p.log.Info(fmt.Sprintf("Split %d documents into %d chunks", len(initialDocs), len(chunks)))

	// 3. Embed the chunks in batches
	if err := p.embedChunks(ctx, chunks); err != nil {
		p.log.Error(fmt.Sprintf("Failed to embed chunks: %v", err))
		return 0, fmt.Errorf("%w: %w", ErrLoad, err)
	}

	// 4. Commit: replace the whole snapshot at once
	p.index.Replace(chunks)
	p.log.Info(fmt.Sprintf("Successfully finished indexing for: %s (%d chunks)", path, len(chunks)))
	return len(chunks), nil
}

// embedChunks fills in the Embedding of every chunk, batching requests to the
// provider concurrently.
func (p *IndexingPipeline) embedChunks(ctx context.Context, chunks []*schema.Document) error {
	eg, gCtx := errgroup.WithContext(ctx)

	for start := 0; start < len(chunks); start += embedBatchSize {
		end := start + embedBatchSize
		if end > len(chunks) {
			end = len(chunks)
		}
		batch := chunks[start:end]

		eg.Go(func() error {
			texts := make([]string, len(batch))
			for i, chunk := range batch {
				texts[i] = chunk.Text
			}
			embeddings, err := p.embedder.Embed(gCtx, texts)
			if err != nil {
				return err
			}
			if len(embeddings) != len(batch) {
				return fmt.Errorf("embedding count %d does not match batch size %d", len(embeddings), len(batch))
			}
			for i, chunk := range batch {
				chunk.Embedding = embeddings[i]
			}
			return nil
		})
	}

	return eg.Wait()
}
