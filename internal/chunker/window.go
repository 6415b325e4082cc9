package chunker

import (
	"fmt"
	"strings"

	"github.com/contexta-ai/contexta/internal/core"
)

// Default window parameters, matching the ingestion defaults.
const (
	DefaultMaxTokens = 500
	DefaultOverlap   = 100
)

// WindowChunker splits text into overlapping fixed-size windows of
// whitespace-delimited words. The window start advances by
// maxTokens-overlap, so overlap must stay below maxTokens or the window
// would never move forward.
type WindowChunker struct {
	maxTokens int
	overlap   int
}

// NewWindowChunker validates the window configuration and returns a chunker.
func NewWindowChunker(maxTokens, overlap int) (*WindowChunker, error) {
	if maxTokens <= 0 {
		return nil, fmt.Errorf("%w: max_tokens must be positive, got %d", core.ErrInvalidInput, maxTokens)
	}
	if overlap < 0 {
		return nil, fmt.Errorf("%w: overlap must be non-negative, got %d", core.ErrInvalidInput, overlap)
	}
	if overlap >= maxTokens {
		return nil, fmt.Errorf("%w: overlap %d must be smaller than max_tokens %d", core.ErrInvalidInput, overlap, maxTokens)
	}
	return &WindowChunker{maxTokens: maxTokens, overlap: overlap}, nil
}

// Chunk splits text into ordered windows of at most maxTokens words. A text
// of maxTokens words or fewer yields exactly one chunk equal to the trimmed
// input; the empty string yields one empty chunk.
func (c *WindowChunker) Chunk(text string) ([]string, error) {
	words := strings.Fields(text)
	if len(words) <= c.maxTokens {
		return []string{strings.TrimSpace(text)}, nil
	}

	step := c.maxTokens - c.overlap
	chunks := make([]string, 0, (len(words)+step-1)/step)
	for start := 0; start < len(words); start += step {
		end := start + c.maxTokens
		if end > len(words) {
			end = len(words)
		}
		chunks = append(chunks, strings.Join(words[start:end], " "))
	}
	return chunks, nil
}

// MaxTokens returns the configured window size in words.
func (c *WindowChunker) MaxTokens() int { return c.maxTokens }

// Overlap returns the configured window overlap in words.
func (c *WindowChunker) Overlap() int { return c.overlap }
