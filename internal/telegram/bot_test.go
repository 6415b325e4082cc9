package telegram

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/contexta-ai/contexta/internal/query"
)

func TestFormatAnswer_NoSources(t *testing.T) {
	got := formatAnswer(&query.Response{Answer: "plain answer", Sources: []query.Source{}})
	assert.Equal(t, "plain answer", got)
}

func TestFormatAnswer_ListsSources(t *testing.T) {
	got := formatAnswer(&query.Response{
		Answer: "the answer",
		Sources: []query.Source{
			{DocumentID: 42, ChunkIndex: 0, Score: 0.91},
			{DocumentID: 7, ChunkIndex: 3, Score: 0.55},
		},
	})
	assert.Equal(t, "the answer\n\nSources:\n- Document 42, Chunk 0 (score 0.91)\n- Document 7, Chunk 3 (score 0.55)", got)
}

func TestTenantSessions(t *testing.T) {
	s := newTenantSessions()

	_, ok := s.get(1)
	assert.False(t, ok)

	s.set(1, 9)
	tenantID, ok := s.get(1)
	assert.True(t, ok)
	assert.Equal(t, int64(9), tenantID)

	s.set(1, 11)
	tenantID, _ = s.get(1)
	assert.Equal(t, int64(11), tenantID)
}
