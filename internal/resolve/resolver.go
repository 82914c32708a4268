package resolve

import (
	"math"

	"github.com/sells-group/value-bot/internal/model"
)

// DefaultThreshold is the minimum similarity for a name to count as a match.
const DefaultThreshold = 70

// Resolver performs fuzzy name lookups against a dataset.
type Resolver struct {
	threshold int
}

// New creates a Resolver. A threshold outside 1..100 falls back to DefaultThreshold.
func New(threshold int) *Resolver {
	if threshold <= 0 || threshold > 100 {
		threshold = DefaultThreshold
	}
	return &Resolver{threshold: threshold}
}

// Threshold returns the acceptance threshold.
func (r *Resolver) Threshold() int {
	return r.threshold
}

// Resolve scans every item and returns the most similar one. The first item
// wins ties. When the best similarity is below the threshold the result has
// no item but still carries the best score.
func (r *Resolver) Resolve(query string, ds *model.Dataset) model.MatchResult {
	best := 0.0
	bestIdx := -1
	for i := range ds.Len() {
		s := Similarity(query, ds.Item(i).Name)
		if s > best {
			best = s
			bestIdx = i
		}
	}

	res := model.MatchResult{Score: int(math.Floor(best))}
	if bestIdx >= 0 && res.Score >= r.threshold {
		it := ds.Item(bestIdx)
		res.Item = &it
	}
	return res
}
