package loader

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/contexta-ai/contexta/internal/core"
)

// FileType is a document format recognized by extension.
type FileType string

const (
	TypePDF  FileType = "pdf"
	TypeTXT  FileType = "txt"
	TypeDOCX FileType = "docx"
)

// DetectType maps a file path to a supported document type by extension.
// Unsupported extensions fail immediately.
func DetectType(filePath string) (FileType, error) {
	ext := strings.ToLower(filepath.Ext(filePath))
	switch ext {
	case ".pdf":
		return TypePDF, nil
	case ".txt", ".text":
		return TypeTXT, nil
	case ".docx":
		return TypeDOCX, nil
	default:
		return "", fmt.Errorf("%w: unsupported file type %q", core.ErrInvalidInput, ext)
	}
}

// Loader extracts plain text from one document format.
type Loader interface {
	Load(ctx context.Context, filePath string) (string, error)
}

// Registry dispatches to the loader for a detected file type.
type Registry struct {
	loaders map[FileType]Loader
}

// NewRegistry returns a registry with the default loaders: plain text with
// encoding fallbacks, PDF via pdftotext, and a DOCX placeholder.
func NewRegistry() *Registry {
	return &Registry{loaders: map[FileType]Loader{
		TypeTXT:  &TextLoader{},
		TypePDF:  NewPDFLoader(nil),
		TypeDOCX: &DocxLoader{},
	}}
}

// Load detects the document type and extracts its text.
func (r *Registry) Load(ctx context.Context, filePath string) (string, FileType, error) {
	fileType, err := DetectType(filePath)
	if err != nil {
		return "", "", err
	}
	l, ok := r.loaders[fileType]
	if !ok {
		return "", fileType, fmt.Errorf("%w: no loader for file type %q", core.ErrNotImplemented, fileType)
	}
	text, err := l.Load(ctx, filePath)
	if err != nil {
		return "", fileType, err
	}
	return text, fileType, nil
}

// WithLoader overrides the loader for a file type. Used by tests and by
// callers that bring their own extraction tooling.
func (r *Registry) WithLoader(t FileType, l Loader) *Registry {
	r.loaders[t] = l
	return r
}

func statFile(filePath string) error {
	if _, err := os.Stat(filePath); err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("%w: file not found: %s", core.ErrNotFound, filePath)
		}
		return fmt.Errorf("failed to stat %s: %w", filePath, err)
	}
	return nil
}
