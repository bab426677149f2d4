package judge

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/jasontalley/pact/errors"
)

// systemPrompt demands strict JSON so the response survives mechanical
// extraction. Models wrap output in fences anyway; extractJSON tolerates that.
const systemPrompt = `You are a requirements analyst assessing one intent description.
Respond with strict JSON only, no prose, exactly this shape:
{"behavioral_completeness": <0.0-1.0>, "testability": <0.0-1.0>, "ambiguity": <0.0-1.0>}
behavioral_completeness: does the description fully specify the expected behavior?
testability: could a test mechanically verify the described behavior?
ambiguity: 0.0 means fully unambiguous, 1.0 means hopelessly vague.`

// Config holds the HTTP judge settings.
type Config struct {
	BaseURL           string // OpenAI-compatible server, e.g. http://localhost:11434
	Model             string
	APIKey            string // Optional; sent as a bearer token when set
	TimeoutSeconds    int
	MaxCallsPerMinute int
}

// HTTPJudge evaluates descriptions against an OpenAI-compatible chat
// endpoint (Ollama, LocalAI, or a cloud gateway).
type HTTPJudge struct {
	baseURL    string
	model      string
	apiKey     string
	httpClient *http.Client
	limiter    *rate.Limiter
	logger     *zap.SugaredLogger
}

// NewHTTPJudge creates a judge with a bounded per-request timeout and a
// rate limiter sized from MaxCallsPerMinute.
func NewHTTPJudge(cfg Config, logger *zap.SugaredLogger) *HTTPJudge {
	timeout := cfg.TimeoutSeconds
	if timeout <= 0 {
		timeout = 15
	}
	callsPerMinute := cfg.MaxCallsPerMinute
	if callsPerMinute <= 0 {
		callsPerMinute = 30
	}
	return &HTTPJudge{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		model:   cfg.Model,
		apiKey:  cfg.APIKey,
		httpClient: &http.Client{
			Timeout: time.Duration(timeout) * time.Second,
		},
		limiter: rate.NewLimiter(rate.Limit(float64(callsPerMinute)/60.0), 1),
		logger:  logger,
	}
}

// chatRequest matches the OpenAI API format (Ollama is compatible)
type chatRequest struct {
	Model    string        `json:"model"`
	Messages []chatMessage `json:"messages"`
	Stream   bool          `json:"stream"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// chatResponse matches the OpenAI API format
type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

// Evaluate asks the model for an assessment of the description. The rate
// limiter waits within ctx, so a saturated limiter surfaces as a context
// error rather than an unbounded stall.
func (j *HTTPJudge) Evaluate(ctx context.Context, description string) (*Assessment, error) {
	if err := j.limiter.Wait(ctx); err != nil {
		return nil, errors.Wrap(err, "judge rate limit wait")
	}

	reqBody := chatRequest{
		Model: j.model,
		Messages: []chatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: description},
		},
		Stream: false,
	}

	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return nil, errors.Wrap(err, "marshal judge request")
	}

	endpoint := j.baseURL + "/v1/chat/completions"
	req, err := http.NewRequestWithContext(ctx, "POST", endpoint, bytes.NewBuffer(jsonData))
	if err != nil {
		return nil, errors.Wrap(err, "create judge request")
	}
	req.Header.Set("Content-Type", "application/json")
	if j.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+j.apiKey)
	}

	resp, err := j.httpClient.Do(req)
	if err != nil {
		return nil, errors.Wrap(err, "judge request failed")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, errors.Newf("judge returned status %d: %s", resp.StatusCode, string(body))
	}

	var completion chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&completion); err != nil {
		return nil, errors.Wrap(err, "decode judge response")
	}
	if len(completion.Choices) == 0 {
		return nil, errors.New("judge returned no completion choices")
	}

	assessment, err := parseAssessment(completion.Choices[0].Message.Content)
	if err != nil {
		return nil, err
	}

	if j.logger != nil {
		j.logger.Debugw("Judge assessment",
			"completeness", assessment.BehavioralCompleteness,
			"testability", assessment.Testability,
			"ambiguity", assessment.Ambiguity,
		)
	}

	return assessment, nil
}

// parseAssessment extracts the JSON object from model output and clamps
// every sub-score into range.
func parseAssessment(content string) (*Assessment, error) {
	raw := extractJSON(content)
	if raw == "" {
		return nil, errors.Newf("judge response contains no JSON object: %q", content)
	}

	var assessment Assessment
	if err := json.Unmarshal([]byte(raw), &assessment); err != nil {
		return nil, errors.Wrapf(err, "unmarshal judge assessment from %q", raw)
	}

	assessment.Clamp()
	return &assessment, nil
}

// extractJSON returns the outermost {...} span of s, tolerating code fences
// and surrounding prose. Empty string when no object is present.
func extractJSON(s string) string {
	start := strings.Index(s, "{")
	end := strings.LastIndex(s, "}")
	if start < 0 || end <= start {
		return ""
	}
	return s[start : end+1]
}
