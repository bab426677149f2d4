// Package gate implements the quality gate authorizing an atom's commit
// transition. The gate is a pure predicate over one atom's quality score;
// it is independent of the repository-level coupling gate, which judges a
// whole test corpus.
package gate

import (
	"github.com/jasontalley/pact/errors"
)

// DefaultThreshold is the minimum quality score required to commit an atom.
const DefaultThreshold = 80

// Decision is the outcome of a gate check.
type Decision struct {
	OK             bool `json:"ok"`
	EffectiveScore int  `json:"effective_score"` // Score with nil coerced to 0
	Threshold      int  `json:"threshold"`
}

// Authorize evaluates an atom's quality score against the threshold.
// A nil score is treated as zero: an unscored atom never passes.
func Authorize(score *int, threshold int) Decision {
	effective := 0
	if score != nil {
		effective = *score
	}
	return Decision{
		OK:             effective >= threshold,
		EffectiveScore: effective,
		Threshold:      threshold,
	}
}

// Err materializes a failing decision as a quality-gate error whose message
// carries the exact score, so callers and tests can assert on it.
// Returns nil for a passing decision.
func (d Decision) Err() error {
	if d.OK {
		return nil
	}
	return errors.NewQualityGatef("quality score %d below commit threshold %d", d.EffectiveScore, d.Threshold)
}
