package schema

import "time"

const (
	// MetadataKeyFileName is the key for the source file name.
	MetadataKeyFileName = "file_name"
	// MetadataKeyPageLabel is the key for the page number or label from the source document.
	MetadataKeyPageLabel = "page_label"
	// MetadataKeySheetName is the key for the worksheet name of a spreadsheet source.
	MetadataKeySheetName = "sheet_name"
)

// Document is the central data structure representing a piece of text and its
// associated data. It is the primary data carrier throughout the indexing and
// retrieval pipeline. A Document is immutable once it has been indexed.
type Document struct {
	// ID is the unique identifier for this document chunk.
	ID string

	// Text is the string content of the document chunk.
	Text string

	// Embedding is the vector representation of the text.
	Embedding []float32

	// Metadata holds arbitrary data about the document, such as
	// file_name, page_label or chunk_number.
	Metadata map[string]interface{}
}

// Turn is a single question/answer exchange retained as conversational
// context for later questions.
type Turn struct {
	Question  string
	Answer    string
	Timestamp time.Time
}
