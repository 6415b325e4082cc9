package rerank

import (
	"sort"

	"github.com/contexta-ai/contexta/internal/core"
)

// ScoreReranker reorders candidates by their retrieval score, descending.
// The baseline for cross-encoder or model-based strategies to replace; it
// accepts the query like every strategy but does not use it.
type ScoreReranker struct{}

// NewScoreReranker returns the score-descending baseline strategy.
func NewScoreReranker() *ScoreReranker { return &ScoreReranker{} }

// Rerank sorts results by descending score and returns at most topK. The
// sort is stable: equal scores keep their input order. An absent score is
// the zero value 0.0 and sorts accordingly, never an error.
func (r *ScoreReranker) Rerank(query string, results []core.SearchResult, topK int) []core.SearchResult {
	ranked := make([]core.SearchResult, len(results))
	copy(ranked, results)

	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Score > ranked[j].Score
	})

	if topK > 0 && topK < len(ranked) {
		ranked = ranked[:topK]
	}
	return ranked
}
