package loader

import (
	"context"
	"fmt"
	"os"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"

	"github.com/contexta-ai/contexta/internal/core"
)

// TextLoader reads plain-text files, trying a fixed ordered list of
// encodings before giving up: UTF-8, Windows-1252, then Latin-1 as the
// last resort.
type TextLoader struct{}

// Load reads the file and decodes it with the first encoding that accepts
// the bytes.
func (l *TextLoader) Load(ctx context.Context, filePath string) (string, error) {
	if err := statFile(filePath); err != nil {
		return "", err
	}

	data, err := os.ReadFile(filePath)
	if err != nil {
		return "", fmt.Errorf("failed to read %s: %w", filePath, err)
	}

	if utf8.Valid(data) {
		return string(data), nil
	}

	for _, cm := range []*charmap.Charmap{charmap.Windows1252, charmap.ISO8859_1} {
		decoded, err := cm.NewDecoder().Bytes(data)
		if err == nil {
			return string(decoded), nil
		}
	}

	return "", fmt.Errorf("%w: could not decode file %s", core.ErrInvalidInput, filePath)
}
