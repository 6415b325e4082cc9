package rerank

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/contexta-ai/contexta/internal/core"
)

func result(id string, score float64) core.SearchResult {
	return core.SearchResult{ID: id, Score: score}
}

func TestRerank_SortsDescending(t *testing.T) {
	r := NewScoreReranker()
	in := []core.SearchResult{result("a", 0.5), result("b", 0.9), result("c", 0.7)}

	out := r.Rerank("any query", in, 5)

	require.Len(t, out, 3)
	assert.Equal(t, "b", out[0].ID)
	assert.Equal(t, "c", out[1].ID)
	assert.Equal(t, "a", out[2].ID)
}

func TestRerank_TopKTruncates(t *testing.T) {
	r := NewScoreReranker()
	in := []core.SearchResult{result("a", 0.5), result("b", 0.9), result("c", 0.7)}

	out := r.Rerank("", in, 2)

	require.Len(t, out, 2)
	assert.Equal(t, 0.9, out[0].Score)
	assert.Equal(t, 0.7, out[1].Score)
}

func TestRerank_StableOnTies(t *testing.T) {
	r := NewScoreReranker()
	in := []core.SearchResult{
		result("first", 0.4),
		result("second", 0.4),
		result("third", 0.4),
		result("top", 0.8),
	}

	out := r.Rerank("", in, 10)

	require.Len(t, out, 4)
	assert.Equal(t, []string{"top", "first", "second", "third"},
		[]string{out[0].ID, out[1].ID, out[2].ID, out[3].ID})
}

func TestRerank_MissingScoreSortsAsZero(t *testing.T) {
	r := NewScoreReranker()
	in := []core.SearchResult{
		{ID: "unscored"}, // zero-value score
		result("neg", -0.1),
		result("pos", 0.2),
	}

	out := r.Rerank("", in, 10)

	require.Len(t, out, 3)
	assert.Equal(t, "pos", out[0].ID)
	assert.Equal(t, "unscored", out[1].ID)
	assert.Equal(t, "neg", out[2].ID)
}

func TestRerank_ShorterInputThanTopK(t *testing.T) {
	r := NewScoreReranker()
	out := r.Rerank("", []core.SearchResult{result("only", 1.0)}, 5)
	assert.Len(t, out, 1)
}

func TestRerank_DoesNotMutateInput(t *testing.T) {
	r := NewScoreReranker()
	in := []core.SearchResult{result("a", 0.1), result("b", 0.9)}

	_ = r.Rerank("", in, 2)

	assert.Equal(t, "a", in[0].ID)
	assert.Equal(t, "b", in[1].ID)
}
