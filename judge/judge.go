// Package judge provides the optional external semantic judge consulted by
// the atomicity scorer. The judge is a capability, not a dependency: the
// heuristic path always functions standalone, and any judge failure is
// treated as absence rather than an error.
package judge

import (
	"context"
)

// Assessment holds the judge's three sub-scores, each in [0,1].
// Ambiguity is inverted in confidence: higher means more ambiguous.
type Assessment struct {
	BehavioralCompleteness float64 `json:"behavioral_completeness"`
	Testability            float64 `json:"testability"`
	Ambiguity              float64 `json:"ambiguity"`
}

// Confidence folds the sub-scores into a single 0-1 figure.
func (a *Assessment) Confidence() float64 {
	return (a.BehavioralCompleteness + a.Testability + (1 - a.Ambiguity)) / 3
}

// Judge evaluates an intent description semantically. Implementations bound
// their own latency; callers treat any error as "judge unavailable" and
// continue heuristic-only.
type Judge interface {
	Evaluate(ctx context.Context, description string) (*Assessment, error)
}

// clamp01 constrains a sub-score to [0,1]. Model output is untrusted.
func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// Clamp normalizes every sub-score into [0,1] in place.
func (a *Assessment) Clamp() {
	a.BehavioralCompleteness = clamp01(a.BehavioralCompleteness)
	a.Testability = clamp01(a.Testability)
	a.Ambiguity = clamp01(a.Ambiguity)
}
