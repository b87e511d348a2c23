package smartctx

import (
	"math"
	"strings"
)

// TokenEstimator approximates how many model tokens a text costs.
// Budget decisions only need a consistent estimate, not an exact one.
type TokenEstimator interface {
	Estimate(text string) int
}

// WordCountEstimator approximates 1 token ≈ 0.75 words.
type WordCountEstimator struct{}

func (WordCountEstimator) Estimate(text string) int {
	words := len(strings.Fields(text))
	if words == 0 {
		return 0
	}
	return int(math.Ceil(float64(words) / 0.75))
}
