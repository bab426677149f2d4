package judge

import (
	"go.uber.org/zap"

	"github.com/jasontalley/pact/config"
)

// FromConfig builds a judge from the judge configuration section.
//
// Returns nil when the judge is disabled or has no endpoint; the scorer
// treats a nil judge as an absent capability and stays heuristic-only.
func FromConfig(cfg *config.Config, logger *zap.SugaredLogger) Judge {
	if cfg == nil || !cfg.Judge.Enabled {
		return nil
	}

	if cfg.Judge.BaseURL == "" {
		if logger != nil {
			logger.Warnw("Judge enabled but judge.base_url is empty; scoring stays heuristic-only")
		}
		return nil
	}

	return NewHTTPJudge(Config{
		BaseURL:           cfg.Judge.BaseURL,
		Model:             cfg.Judge.Model,
		APIKey:            cfg.Judge.APIKey,
		TimeoutSeconds:    cfg.Judge.TimeoutSeconds,
		MaxCallsPerMinute: cfg.Judge.MaxCallsPerMinute,
	}, logger)
}

// Ensure implementations satisfy the Judge interface
var _ Judge = (*HTTPJudge)(nil)
