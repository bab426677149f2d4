package judge

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestJudge(t *testing.T, handler http.HandlerFunc) *HTTPJudge {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return NewHTTPJudge(Config{
		BaseURL:           server.URL,
		Model:             "test-model",
		TimeoutSeconds:    2,
		MaxCallsPerMinute: 600,
	}, nil)
}

func chatReply(content string) string {
	reply := map[string]interface{}{
		"choices": []map[string]interface{}{
			{"message": map[string]string{"role": "assistant", "content": content}},
		},
	}
	data, _ := json.Marshal(reply)
	return string(data)
}

func TestHTTPJudgeEvaluate(t *testing.T) {
	j := newTestJudge(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/chat/completions", r.URL.Path)

		var req chatRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "test-model", req.Model)
		require.Len(t, req.Messages, 2)
		assert.Equal(t, "system", req.Messages[0].Role)

		fmt.Fprint(w, chatReply(`{"behavioral_completeness": 0.9, "testability": 0.8, "ambiguity": 0.1}`))
	})

	assessment, err := j.Evaluate(context.Background(), "user sees a confirmation message after saving")
	require.NoError(t, err)
	assert.InDelta(t, 0.9, assessment.BehavioralCompleteness, 0.001)
	assert.InDelta(t, 0.8, assessment.Testability, 0.001)
	assert.InDelta(t, 0.1, assessment.Ambiguity, 0.001)
	assert.InDelta(t, (0.9+0.8+0.9)/3, assessment.Confidence(), 0.001)
}

func TestHTTPJudgeToleratesFencedJSON(t *testing.T) {
	j := newTestJudge(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, chatReply("Here is my assessment:\n```json\n{\"behavioral_completeness\": 0.5, \"testability\": 0.5, \"ambiguity\": 0.5}\n```"))
	})

	assessment, err := j.Evaluate(context.Background(), "something vague")
	require.NoError(t, err)
	assert.InDelta(t, 0.5, assessment.Testability, 0.001)
}

func TestHTTPJudgeClampsOutOfRangeScores(t *testing.T) {
	j := newTestJudge(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, chatReply(`{"behavioral_completeness": 1.7, "testability": -0.3, "ambiguity": 2.0}`))
	})

	assessment, err := j.Evaluate(context.Background(), "anything")
	require.NoError(t, err)
	assert.Equal(t, 1.0, assessment.BehavioralCompleteness)
	assert.Equal(t, 0.0, assessment.Testability)
	assert.Equal(t, 1.0, assessment.Ambiguity)
}

func TestHTTPJudgeErrorPaths(t *testing.T) {
	t.Run("non-200 status", func(t *testing.T) {
		j := newTestJudge(t, func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "model not loaded", http.StatusServiceUnavailable)
		})
		_, err := j.Evaluate(context.Background(), "anything")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "503")
	})

	t.Run("no JSON in reply", func(t *testing.T) {
		j := newTestJudge(t, func(w http.ResponseWriter, r *http.Request) {
			fmt.Fprint(w, chatReply("I cannot assess this."))
		})
		_, err := j.Evaluate(context.Background(), "anything")
		require.Error(t, err)
	})

	t.Run("timeout is bounded", func(t *testing.T) {
		j := newTestJudge(t, func(w http.ResponseWriter, r *http.Request) {
			select {
			case <-r.Context().Done():
			case <-time.After(5 * time.Second):
			}
		})

		ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
		defer cancel()

		start := time.Now()
		_, err := j.Evaluate(ctx, "anything")
		require.Error(t, err)
		assert.Less(t, time.Since(start), 2*time.Second, "evaluate must respect context deadline")
	})
}

func TestExtractJSON(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{`{"a": 1}`, `{"a": 1}`},
		{"```json\n{\"a\": 1}\n```", `{"a": 1}`},
		{`prose before {"a": 1} prose after`, `{"a": 1}`},
		{"no json here", ""},
		{"}{", ""},
	}

	for _, tt := range tests {
		if got := extractJSON(tt.in); got != tt.want {
			t.Errorf("extractJSON(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestAssessmentConfidence(t *testing.T) {
	perfect := &Assessment{BehavioralCompleteness: 1, Testability: 1, Ambiguity: 0}
	assert.InDelta(t, 1.0, perfect.Confidence(), 0.001)

	hopeless := &Assessment{BehavioralCompleteness: 0, Testability: 0, Ambiguity: 1}
	assert.InDelta(t, 0.0, hopeless.Confidence(), 0.001)
}
