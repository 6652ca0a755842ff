package loaders

import (
	"fmt"
	"path/filepath"
	"strings"

	"docqa/internal/rag/interfaces"
)

// registry maps a lower-case file extension to the loader handling it.
var registry = map[string]interfaces.Loader{
	".txt":  NewTxtLoader(),
	".md":   NewMarkdownLoader(),
	".html": NewHtmlLoader(),
	".pdf":  NewPdfLoader(),
	".docx": NewDocxLoader(),
	".xlsx": NewXlsxLoader(),
}

// SupportedExtensions returns the set of file extensions (with leading dot)
// that ForPath can resolve a loader for.
func SupportedExtensions() map[string]bool {
	exts := make(map[string]bool, len(registry))
	for ext := range registry {
		exts[ext] = true
	}
	return exts
}

// ForPath selects a loader based on the file extension of path.
func ForPath(path string) (interfaces.Loader, error) {
	ext := strings.ToLower(filepath.Ext(path))
	loader, ok := registry[ext]
	if !ok {
		return nil, fmt.Errorf("unsupported file type: %q", ext)
	}
	return loader, nil
}
