package pipeline

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"docqa/internal/rag/index"
	"docqa/internal/rag/schema"
	"docqa/pkg/logger"
)

// passthroughSplitter returns each input document as a single chunk.
type passthroughSplitter struct{}

func (passthroughSplitter) Split(ctx context.Context, docs []*schema.Document) ([]*schema.Document, error) {
	return docs, nil
}

func writeTempTxt(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "doc.txt")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestIndexingPipeline_Run(t *testing.T) {
	idx := index.New()
	p := NewIndexingPipeline(passthroughSplitter{}, &fakeEmbedder{}, idx, logger.New("test"))

	path := writeTempTxt(t, "hello indexing")
	chunks, err := p.Run(context.Background(), path)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if chunks != 1 {
		t.Errorf("Run returned %d chunks, want 1", chunks)
	}
	if idx.Len() != 1 {
		t.Errorf("index holds %d chunks, want 1", idx.Len())
	}
}

func TestIndexingPipeline_UnsupportedExtension(t *testing.T) {
	idx := index.New()
	p := NewIndexingPipeline(passthroughSplitter{}, &fakeEmbedder{}, idx, logger.New("test"))

	path := filepath.Join(t.TempDir(), "doc.exe")
	if err := os.WriteFile(path, []byte("binary"), 0o644); err != nil {
		t.Fatal(err)
	}

	if _, err := p.Run(context.Background(), path); !errors.Is(err, ErrLoad) {
		t.Fatalf("Run on unsupported extension: err = %v, want ErrLoad", err)
	}
}

func TestIndexingPipeline_FailureKeepsPreviousSnapshot(t *testing.T) {
	idx := index.New()
	idx.Replace([]*schema.Document{
		{ID: "existing", Text: "previous snapshot", Embedding: []float32{1, 0}},
	})

	failing := &fakeEmbedder{err: errors.New("provider unavailable")}
	p := NewIndexingPipeline(passthroughSplitter{}, failing, idx, logger.New("test"))

	path := writeTempTxt(t, "new content that fails to embed")
	if _, err := p.Run(context.Background(), path); !errors.Is(err, ErrLoad) {
		t.Fatalf("Run with failing embedder: err = %v, want ErrLoad", err)
	}

	if idx.Len() != 1 {
		t.Fatalf("index holds %d chunks, want the 1 previous chunk", idx.Len())
	}
	results := idx.Search([]float32{1, 0}, 1)
	if len(results) != 1 || results[0].ID != "existing" {
		t.Fatalf("previous snapshot lost after failed run: %+v", results)
	}
}
