package loaders

import (
	"context"
	"os"
	"path/filepath"
	"regexp"

	"docqa/internal/rag/interfaces"
	"docqa/internal/rag/schema"

	"github.com/google/uuid"
)

// MarkdownLoader implements the Loader interface for reading Markdown (.md) files.
type MarkdownLoader struct{}

// NewMarkdownLoader creates a new MarkdownLoader.
func NewMarkdownLoader() *MarkdownLoader {
	return &MarkdownLoader{}
}

// imageRegex matches Markdown image syntax (e.g. ![alt text](path/to/image.jpg)).
// Image references are stripped so they do not pollute the indexed text.
var imageRegex = regexp.MustCompile(`!\[.*?\]\(.*?\)`)

// Load reads a Markdown file and returns its text content as a single Document.
func (l *MarkdownLoader) Load(ctx context.Context, path string) ([]*schema.Document, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	textContent := imageRegex.ReplaceAllString(string(content), "")

	doc := &schema.Document{
		ID:   uuid.New().String(),
		Text: textContent,
		Metadata: map[string]interface{}{
			schema.MetadataKeyFileName: filepath.Base(path),
		},
	}

	return []*schema.Document{doc}, nil
}

// compile-time check to ensure MarkdownLoader implements the Loader interface
var _ interfaces.Loader = (*MarkdownLoader)(nil)
