package loaders

import (
	"context"
	"os"
	"path/filepath"

	"docqa/internal/rag/interfaces"
	"docqa/internal/rag/schema"

	htmltomarkdown "github.com/JohannesKaufmann/html-to-markdown/v2"
	"github.com/google/uuid"
)

// HtmlLoader implements the Loader interface for reading HTML files.
// The markup is converted to Markdown so only readable text is indexed.
type HtmlLoader struct{}

// NewHtmlLoader creates a new HtmlLoader.
func NewHtmlLoader() *HtmlLoader {
	return &HtmlLoader{}
}

// Load reads an HTML file, converts it to Markdown and returns a single Document.
func (l *HtmlLoader) Load(ctx context.Context, path string) ([]*schema.Document, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	markdown, err := htmltomarkdown.ConvertString(string(content))
	if err != nil {
		return nil, err
	}

	doc := &schema.Document{
		ID:   uuid.New().String(),
		Text: markdown,
		Metadata: map[string]interface{}{
			schema.MetadataKeyFileName: filepath.Base(path),
		},
	}

	return []*schema.Document{doc}, nil
}

// compile-time check to ensure HtmlLoader implements the Loader interface
var _ interfaces.Loader = (*HtmlLoader)(nil)
