package index

import (
	"math"
	"sort"
	"sync"

	"docqa/internal/rag/schema"
)

// scoreEpsilon is the tolerance below which two similarity scores count as a
// tie. Cosine scores of parallel vectors can differ by rounding noise.
const scoreEpsilon = 1e-9

// Index is the in-process knowledge index: a snapshot of embedded document
// chunks plus brute-force cosine-similarity search over them.
//
// The snapshot is replaced wholesale on every successful load. Readers hold a
// read lock for the duration of a search, so they observe either the complete
// old snapshot or the complete new one, never a mix. An empty index is valid
// and searchable; it simply returns no results.
type Index struct {
	mu     sync.RWMutex
	chunks []*schema.Document
}

// New creates an empty Index. It is immediately searchable.
func New() *Index {
	return &Index{}
}

// Replace atomically swaps the current chunk snapshot for the given one.
// The caller must not mutate chunks after handing them over.
func (idx *Index) Replace(chunks []*schema.Document) {
	idx.mu.Lock()
	defer idx.mu.Unlock()
	idx.chunks = chunks
}

// Len returns the number of indexed chunks.
func (idx *Index) Len() int {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	return len(idx.chunks)
}

// Search returns up to topK chunks ranked by cosine similarity to the query
// embedding. Ties keep the original insertion order. An empty index returns
// an empty slice.
func (idx *Index) Search(embedding []float32, topK int) []*schema.Document {
	idx.mu.RLock()
	defer idx.mu.RUnlock()

	if topK <= 0 || len(idx.chunks) == 0 {
		return nil
	}

	type scored struct {
		doc   *schema.Document
		score float64
	}
	results := make([]scored, 0, len(idx.chunks))
	for _, chunk := range idx.chunks {
		results = append(results, scored{doc: chunk, score: cosineSimilarity(embedding, chunk.Embedding)})
	}

	// Stable sort keeps insertion order for equal scores. Scores within
	// scoreEpsilon are treated as equal so floating-point rounding on
	// parallel vectors cannot reorder tied chunks.
	sort.SliceStable(results, func(i, j int) bool {
		return results[i].score-results[j].score > scoreEpsilon
	})

	if topK > len(results) {
		topK = len(results)
	}
	out := make([]*schema.Document, topK)
	for i := 0; i < topK; i++ {
		out[i] = results[i].doc
	}
	return out
}

// cosineSimilarity computes the cosine of the angle between a and b.
// Mismatched or zero-length vectors score 0.
func cosineSimilarity(a, b []float32) float64 {
	if len(a) == 0 || len(a) != len(b) {
		return 0
	}
	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
