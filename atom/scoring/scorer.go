// Package scoring implements the atomicity scorer: five independent
// heuristics over an intent description, optionally blended with an external
// semantic judge. The heuristic path always functions standalone; the judge
// is consulted opportunistically and its failure never fails a score.
package scoring

import (
	"context"
	"math"

	"go.uber.org/zap"

	"github.com/jasontalley/pact/internal/util"
	"github.com/jasontalley/pact/judge"
)

// Blend weights when a judge assessment is available.
const (
	heuristicWeight = 0.6
	judgeWeight     = 0.4
)

// Judge override thresholds: only extreme judge confidence overturns the
// heuristic verdict.
const (
	judgeForceAtomicAbove    = 0.8 // with at most one heuristic violation
	judgeForceNonAtomicBelow = 0.4
)

// Result is the full scoring outcome for one description.
type Result struct {
	IsAtomic     bool              `json:"is_atomic"`
	Confidence   float64           `json:"confidence"`    // 0-1, blended when a judge contributed
	QualityScore int               `json:"quality_score"` // Confidence scaled to 0-100 for the gate
	Heuristics   []HeuristicResult `json:"heuristics"`
	Violations   []string          `json:"violations,omitempty"`
	Suggestions  []string          `json:"suggestions,omitempty"`

	JudgeConsulted  bool     `json:"judge_consulted"`
	JudgeConfidence *float64 `json:"judge_confidence,omitempty"`
}

// Scorer evaluates intent descriptions. A nil judge disables blending.
type Scorer struct {
	judge  judge.Judge
	logger *zap.SugaredLogger
}

// NewScorer creates a scorer. judge may be nil; logger may be nil for silent
// operation.
func NewScorer(j judge.Judge, logger *zap.SugaredLogger) *Scorer {
	return &Scorer{judge: j, logger: logger}
}

// Score evaluates a description against all five heuristics and, when a
// judge is configured, blends its assessment into the confidence. Judge
// absence, timeout, or error degrades to heuristic-only scoring.
func (s *Scorer) Score(ctx context.Context, description string) (*Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	heuristics := runHeuristics(description)

	sum, max, violationCount := 0, 0, 0
	var violations, suggestions []string
	for _, h := range heuristics {
		sum += h.Score
		max += h.MaxScore
		if !h.Passed {
			violationCount++
			violations = append(violations, h.Name+": "+h.Violation)
			suggestions = append(suggestions, h.Suggestion)
		}
	}

	result := &Result{
		IsAtomic:    violationCount == 0,
		Confidence:  float64(sum) / float64(max),
		Heuristics:  heuristics,
		Violations:  violations,
		Suggestions: suggestions,
	}

	if s.judge != nil {
		s.blendJudge(ctx, description, result, violationCount)
	}

	result.QualityScore = util.ClampInt(int(math.Round(result.Confidence*100)), 0, 100)
	return result, nil
}

// blendJudge folds a judge assessment into the result. Heuristic confidence
// keeps the larger weight; the judge overturns the verdict only at extremes.
func (s *Scorer) blendJudge(ctx context.Context, description string, result *Result, violationCount int) {
	assessment, err := s.judge.Evaluate(ctx, description)
	if err != nil {
		if s.logger != nil {
			s.logger.Debugw("Judge unavailable, scoring heuristics only", "error", err)
		}
		return
	}

	jc := assessment.Confidence()
	result.JudgeConsulted = true
	result.JudgeConfidence = util.Ptr(jc)
	result.Confidence = heuristicWeight*result.Confidence + judgeWeight*jc

	if jc > judgeForceAtomicAbove && violationCount <= 1 {
		result.IsAtomic = true
	} else if jc < judgeForceNonAtomicBelow {
		result.IsAtomic = false
	}
}
