package prompt

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/contexta-ai/contexta/internal/core"
)

func chunk(text string, docID int64, idx int) core.SearchResult {
	return core.SearchResult{Text: text, DocumentID: docID, ChunkIndex: idx}
}

func TestBuild_ExactLayout(t *testing.T) {
	b := NewRAGBuilder()

	got := b.Build("What is Go?", []core.SearchResult{chunk("Go is a language.", 1, 0)}, 3000)

	want := defaultSystemInstruction + "\n" +
		"\n" +
		"Context:\n" +
		"Go is a language.\n" +
		"\n" +
		"Question: What is Go?\n" +
		"\n" +
		"Answer:"
	assert.Equal(t, want, got)
}

func TestBuild_ContainsLabels(t *testing.T) {
	b := NewRAGBuilder()
	got := b.Build("why?", nil, 100)

	assert.Contains(t, got, "Context:")
	assert.Contains(t, got, "Question: why?")
	assert.Contains(t, got, "Answer:")
}

func TestBuild_StopsAtFirstOverflowingChunk(t *testing.T) {
	b := NewRAGBuilder()
	chunks := []core.SearchResult{
		chunk(strings.Repeat("a", 50), 1, 0),
		chunk(strings.Repeat("b", 100), 1, 1), // overflows the 100-char budget
		chunk("tiny", 1, 2),                   // would fit, must still be excluded
	}

	got := b.Build("q", chunks, 100)

	assert.Contains(t, got, strings.Repeat("a", 50))
	assert.NotContains(t, got, strings.Repeat("b", 100))
	assert.NotContains(t, got, "tiny")
}

func TestBuild_BudgetNeverExceeded(t *testing.T) {
	b := NewRAGBuilder()
	budget := 120
	chunks := []core.SearchResult{
		chunk(strings.Repeat("x", 40), 1, 0),
		chunk(strings.Repeat("y", 40), 1, 1),
		chunk(strings.Repeat("z", 40), 1, 2),
		chunk(strings.Repeat("w", 40), 1, 3),
	}

	got := b.Build("q", chunks, budget)

	// Extract the context block between "Context:\n" and the blank line
	// preceding the question.
	start := strings.Index(got, "Context:\n") + len("Context:\n")
	end := strings.Index(got, "\n\nQuestion:")
	require.Greater(t, end, start)
	contextBlock := got[start:end]

	total := 0
	for _, part := range strings.Split(contextBlock, "\n\n") {
		total += len(part)
	}
	assert.LessOrEqual(t, total, budget)
}

func TestBuildWithSources_CitationCountsAgainstBudget(t *testing.T) {
	b := NewRAGBuilder()
	text := strings.Repeat("a", 90)
	cited := fmt.Sprintf("%s [Source: Document %d, Chunk %d]", text, 7, 3)
	require.Greater(t, len(cited), 100)

	// The bare text fits a 100-char budget, but the citation suffix pushes
	// it over, so nothing is included.
	got := b.BuildWithSources("q", []core.SearchResult{chunk(text, 7, 3)}, 100)
	assert.NotContains(t, got, text)

	// With the budget covering the cited form, the chunk is included with
	// its citation.
	got = b.BuildWithSources("q", []core.SearchResult{chunk(text, 7, 3)}, len(cited))
	assert.Contains(t, got, "[Source: Document 7, Chunk 3]")
}

func TestBuildWithSources_Layout(t *testing.T) {
	b := NewRAGBuilder()

	got := b.BuildWithSources("q", []core.SearchResult{chunk("fact one", 2, 0), chunk("fact two", 2, 1)}, 3000)

	assert.Contains(t, got, "fact one [Source: Document 2, Chunk 0]\n\nfact two [Source: Document 2, Chunk 1]")
	assert.True(t, strings.HasSuffix(got, "\nAnswer:"))
}

func TestBuild_DefaultBudgetApplied(t *testing.T) {
	b := NewRAGBuilder()
	big := strings.Repeat("m", DefaultMaxContextLength+1)

	got := b.Build("q", []core.SearchResult{chunk(big, 1, 0)}, 0)

	assert.NotContains(t, got, big)
}
