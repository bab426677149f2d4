package scoring

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestScoreSingleResponsibility(t *testing.T) {
	tests := []struct {
		name       string
		desc       string
		wantScore  int
		wantPassed bool
	}{
		{"no conjunctions", "User sees the dashboard after login", 20, true},
		{"one conjunction", "User can log in and log out", 10, false},
		{"two conjunctions", "User can log in and log out or stay signed in", 0, false},
		{"floor at zero", "A and B or C then D", 0, false},
		{"multi-word phrase counts once", "Shows totals as well as averages", 10, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := scoreSingleResponsibility(tt.desc)
			assert.Equal(t, tt.wantScore, r.Score)
			assert.Equal(t, tt.wantPassed, r.Passed)
		})
	}
}

func TestScoreObservableOutcome(t *testing.T) {
	t.Run("one observable pattern", func(t *testing.T) {
		r := scoreObservableOutcome("displays the result to the operator")
		assert.Equal(t, 10, r.Score)
		assert.True(t, r.Passed)
	})

	t.Run("two distinct patterns", func(t *testing.T) {
		r := scoreObservableOutcome("displays the total and returns the receipt")
		assert.Equal(t, 20, r.Score)
		assert.True(t, r.Passed)
	})

	t.Run("distinct patterns cap at 20", func(t *testing.T) {
		r := scoreObservableOutcome("displays, shows, returns, and emits the value")
		assert.Equal(t, 20, r.Score)
	})

	t.Run("repeated verb counts once", func(t *testing.T) {
		r := scoreObservableOutcome("displays a banner, then displays a toast")
		assert.Equal(t, 10, r.Score)
	})

	t.Run("nothing observable", func(t *testing.T) {
		r := scoreObservableOutcome("System processes data internally")
		assert.Equal(t, 0, r.Score)
		assert.False(t, r.Passed)
		assert.NotEmpty(t, r.Violation)
		assert.NotEmpty(t, r.Suggestion)
	})
}

func TestScoreImplementationAgnostic(t *testing.T) {
	t.Run("clean description", func(t *testing.T) {
		r := scoreImplementationAgnostic("User sees their profile page")
		assert.Equal(t, 20, r.Score)
		assert.True(t, r.Passed)
	})

	t.Run("tech term plus phrase", func(t *testing.T) {
		r := scoreImplementationAgnostic("Data saved using sql")
		assert.Equal(t, 10, r.Score)
		assert.False(t, r.Passed)
		assert.Contains(t, r.Violation, "sql")
	})

	t.Run("floors at zero", func(t *testing.T) {
		r := scoreImplementationAgnostic("stored in redis via http using sql and kafka")
		assert.Equal(t, 0, r.Score)
		assert.False(t, r.Passed)
	})
}

func TestScoreMeasurableCriteria(t *testing.T) {
	t.Run("strong indicators", func(t *testing.T) {
		r := scoreMeasurableCriteria("responds within 100 ms")
		assert.Equal(t, 20, r.Score) // net 3 clamps to max
		assert.True(t, r.Passed)
	})

	t.Run("vague only", func(t *testing.T) {
		r := scoreMeasurableCriteria("page loads quickly")
		assert.Equal(t, 5, r.Score) // 10 + (-1)*5
		assert.False(t, r.Passed)
		assert.Contains(t, r.Violation, "quickly")
	})

	t.Run("indicators outweigh vagueness", func(t *testing.T) {
		r := scoreMeasurableCriteria("loads in 2 seconds but feels fast")
		assert.Equal(t, 15, r.Score) // net 1
		assert.True(t, r.Passed)
	})

	t.Run("balanced net fails", func(t *testing.T) {
		r := scoreMeasurableCriteria("loads 2 seconds quickly fast")
		assert.Equal(t, 10, r.Score) // net 0
		assert.False(t, r.Passed)
	})

	t.Run("nothing measurable", func(t *testing.T) {
		r := scoreMeasurableCriteria("user completes checkout")
		assert.Equal(t, 10, r.Score)
		assert.False(t, r.Passed)
	})
}

func TestScoreReasonableScope(t *testing.T) {
	t.Run("well scoped", func(t *testing.T) {
		r := scoreReasonableScope("User resets password through an emailed link")
		assert.Equal(t, 20, r.Score)
		assert.True(t, r.Passed)
	})

	t.Run("too broad term", func(t *testing.T) {
		r := scoreReasonableScope("The entire system must handle load spikes gracefully")
		assert.Equal(t, 5, r.Score)
		assert.False(t, r.Passed)
		assert.Contains(t, r.Violation, "too broad")
	})

	t.Run("too narrow term", func(t *testing.T) {
		r := scoreReasonableScope("The button color must match brand guidelines exactly")
		assert.Equal(t, 5, r.Score)
		assert.Contains(t, r.Violation, "too narrow")
	})

	t.Run("too few words", func(t *testing.T) {
		r := scoreReasonableScope("Fix the login")
		assert.False(t, r.Passed)
		assert.Contains(t, r.Violation, "too short")
	})

	t.Run("word count boundaries", func(t *testing.T) {
		five := "System emits an audit event"
		assert.True(t, scoreReasonableScope(five).Passed)

		fifty := strings.TrimSpace(strings.Repeat("word ", 50))
		assert.True(t, scoreReasonableScope(fifty).Passed)

		fiftyOne := strings.TrimSpace(strings.Repeat("word ", 51))
		assert.False(t, scoreReasonableScope(fiftyOne).Passed)
	})

	t.Run("multiple reasons reported together", func(t *testing.T) {
		r := scoreReasonableScope("Fix everything")
		assert.Contains(t, r.Violation, "too broad")
		assert.Contains(t, r.Violation, "too short")
	})
}

func TestRunHeuristicsOrder(t *testing.T) {
	results := runHeuristics("anything at all here now")
	names := make([]string, len(results))
	for i, r := range results {
		names[i] = r.Name
	}
	assert.Equal(t, []string{
		HeuristicSingleResponsibility,
		HeuristicObservableOutcome,
		HeuristicImplementationAgnostic,
		HeuristicMeasurableCriteria,
		HeuristicReasonableScope,
	}, names)
}
