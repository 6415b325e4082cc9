package prompt

import (
	"fmt"
	"strings"

	"github.com/contexta-ai/contexta/internal/core"
)

// DefaultMaxContextLength bounds the context block when the caller passes
// no budget.
const DefaultMaxContextLength = 3000

const defaultSystemInstruction = "You are a helpful assistant that answers questions based on the " +
	"provided context. Use only the information from the context to " +
	"answer the question. If the context doesn't contain enough " +
	"information to answer the question, say so. Be concise and " +
	"accurate in your responses."

// RAGBuilder assembles retrieval context and a question into the fixed
// prompt layout downstream answer generation expects:
//
//	<system instruction>
//	<blank>
//	Context:
//	<context block>
//	<blank>
//	Question: <question>
//	<blank>
//	Answer:
type RAGBuilder struct {
	systemInstruction string
	contextPrefix     string
	questionPrefix    string
	answerPrefix      string
}

// NewRAGBuilder returns a builder with the default instruction and labels.
func NewRAGBuilder() *RAGBuilder {
	return &RAGBuilder{
		systemInstruction: defaultSystemInstruction,
		contextPrefix:     "Context:",
		questionPrefix:    "Question:",
		answerPrefix:      "Answer:",
	}
}

// Build greedily accumulates chunk texts, in input order, into the context
// block. The first chunk that would push the accumulated length past
// maxContextLength stops accumulation; it is neither truncated nor skipped
// in favor of a smaller later chunk.
func (b *RAGBuilder) Build(question string, contextChunks []core.SearchResult, maxContextLength int) string {
	if maxContextLength <= 0 {
		maxContextLength = DefaultMaxContextLength
	}

	parts := make([]string, 0, len(contextChunks))
	currentLength := 0
	for _, chunk := range contextChunks {
		if currentLength+len(chunk.Text) > maxContextLength {
			break
		}
		parts = append(parts, chunk.Text)
		currentLength += len(chunk.Text)
	}

	return b.assemble(question, strings.Join(parts, "\n\n"))
}

// BuildWithSources works like Build but appends a bracketed citation to each
// chunk before measuring it, so citation text consumes part of the budget.
func (b *RAGBuilder) BuildWithSources(question string, contextChunks []core.SearchResult, maxContextLength int) string {
	if maxContextLength <= 0 {
		maxContextLength = DefaultMaxContextLength
	}

	parts := make([]string, 0, len(contextChunks))
	currentLength := 0
	for _, chunk := range contextChunks {
		cited := fmt.Sprintf("%s [Source: Document %d, Chunk %d]", chunk.Text, chunk.DocumentID, chunk.ChunkIndex)
		if currentLength+len(cited) > maxContextLength {
			break
		}
		parts = append(parts, cited)
		currentLength += len(cited)
	}

	return b.assemble(question, strings.Join(parts, "\n\n"))
}

func (b *RAGBuilder) assemble(question, context string) string {
	lines := []string{
		b.systemInstruction,
		"",
		b.contextPrefix,
		context,
		"",
		b.questionPrefix + " " + question,
		"",
		b.answerPrefix,
	}
	return strings.Join(lines, "\n")
}
