package memory

import (
	"sync"

	"docqa/internal/rag/schema"

	"github.com/pkoukk/tiktoken-go"
)

// TokenCounter reports the token cost of a piece of text. The budget of a
// Buffer is expressed in these units.
type TokenCounter func(text string) int

// NewTiktokenCounter returns a TokenCounter backed by the cl100k_base
// encoding. It falls back to rune counting if the encoding is unavailable.
func NewTiktokenCounter() TokenCounter {
	tke, err := tiktoken.GetEncoding("cl100k_base")
	if err != nil {
		return func(text string) int { return len([]rune(text)) }
	}
	return func(text string) int { return len(tke.Encode(text, nil, nil)) }
}

// Buffer is the conversation memory: an ordered, bounded log of prior
// question/answer turns. When appending a turn would exceed the token
// budget, the oldest turns are evicted first until the buffer fits again.
// Append never fails; a turn larger than the whole budget leaves the buffer
// empty.
type Buffer struct {
	mu      sync.Mutex
	budget  int
	counter TokenCounter
	turns   []schema.Turn
	used    int
}

// NewBuffer creates a Buffer with the given token budget. A nil counter
// defaults to the tiktoken-backed one.
func NewBuffer(budget int, counter TokenCounter) *Buffer {
	if counter == nil {
		counter = NewTiktokenCounter()
	}
	return &Buffer{
		budget:  budget,
		counter: counter,
	}
}

// Append adds a turn and evicts the oldest turns while the buffer exceeds
// its budget.
func (b *Buffer) Append(turn schema.Turn) {
	cost := b.counter(turn.Question) + b.counter(turn.Answer)

	b.mu.Lock()
	defer b.mu.Unlock()

	b.turns = append(b.turns, turn)
	b.used += cost

	for b.used > b.budget && len(b.turns) > 0 {
		oldest := b.turns[0]
		b.turns = b.turns[1:]
		b.used -= b.counter(oldest.Question) + b.counter(oldest.Answer)
	}
}

// Context returns the retained turns, oldest first.
func (b *Buffer) Context() []schema.Turn {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]schema.Turn, len(b.turns))
	copy(out, b.turns)
	return out
}

// Len returns the number of retained turns.
func (b *Buffer) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.turns)
}
