package pipeline

import "errors"

var (
	// ErrNotInitialized is returned when the query engine is asked to answer
	// before its index and memory have been wired up.
	ErrNotInitialized = errors.New("query engine not initialized")

	// ErrGenerationFailed is returned when the embedding or completion
	// provider fails. The underlying cause is attached to the error chain.
	ErrGenerationFailed = errors.New("answer generation failed")

	// ErrLoad is returned when loading, splitting or embedding a document
	// fails. The previous index snapshot stays in place.
	ErrLoad = errors.New("document load failed")
)
