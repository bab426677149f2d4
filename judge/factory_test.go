package judge

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jasontalley/pact/config"
)

func TestFromConfigDisabled(t *testing.T) {
	assert.Nil(t, FromConfig(nil, nil), "nil config yields no judge")

	cfg := &config.Config{}
	assert.Nil(t, FromConfig(cfg, nil), "judge disabled by default")

	cfg.Judge.Enabled = true
	cfg.Judge.BaseURL = ""
	assert.Nil(t, FromConfig(cfg, nil), "enabled judge without an endpoint yields no judge")
}

func TestFromConfigEnabled(t *testing.T) {
	cfg := &config.Config{}
	cfg.Judge.Enabled = true
	cfg.Judge.BaseURL = "http://localhost:11434/"
	cfg.Judge.Model = "llama3.2:3b"
	cfg.Judge.APIKey = "sk-test"
	cfg.Judge.TimeoutSeconds = 20
	cfg.Judge.MaxCallsPerMinute = 10

	j := FromConfig(cfg, nil)
	require.NotNil(t, j)

	hj, ok := j.(*HTTPJudge)
	require.True(t, ok, "factory builds the HTTP judge")
	assert.Equal(t, "http://localhost:11434", hj.baseURL, "trailing slash is trimmed")
	assert.Equal(t, "llama3.2:3b", hj.model)
	assert.Equal(t, "sk-test", hj.apiKey)
}
