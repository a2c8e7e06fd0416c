package config

import (
	"strings"

	"github.com/rotisserie/eris"
)

// Validate checks that the fields a given command needs are present
// and sane. Mode is one of "filter", "filter-rule", "serve", "scrape".
func (c *Config) Validate(mode string) error {
	var problems []string

	switch mode {
	case "filter":
		problems = append(problems, c.validateBackend()...)
		problems = append(problems, c.validateFilter()...)
	case "filter-rule":
		// Rule-only filtering needs no AI backend.
		problems = append(problems, c.validateFilter()...)
	case "serve":
		// The backend stays optional here: the server degrades to
		// rule-only endpoints when none is configured.
		if c.Server.Port <= 0 {
			problems = append(problems, "server.port must be > 0")
		}
	case "scrape":
		if c.Apify.Token == "" {
			problems = append(problems, "apify.token is required")
		}
		if c.Apify.ActorID == "" {
			problems = append(problems, "apify.actor_id is required")
		}
	default:
		return eris.Errorf("config: unknown mode %q", mode)
	}

	if len(problems) > 0 {
		return eris.Errorf("config: %s", strings.Join(problems, "; "))
	}
	return nil
}

func (c *Config) validateBackend() []string {
	var problems []string

	switch c.Filter.Backend {
	case "anthropic":
		if c.Anthropic.Key == "" {
			problems = append(problems, "anthropic.key is required")
		}
	case "openai":
		if c.OpenAI.Key == "" {
			problems = append(problems, "openai.key is required")
		}
	case "proxy":
		if c.Proxy.BaseURL == "" {
			problems = append(problems, "proxy.base_url is required")
		}
	case "":
		problems = append(problems, "filter.backend is required")
	default:
		problems = append(problems, "filter.backend must be one of anthropic, openai, proxy")
	}
	return problems
}

func (c *Config) validateFilter() []string {
	var problems []string

	if c.Filter.BatchSize < 1 || c.Filter.BatchSize > 64 {
		problems = append(problems, "filter.batch_size must be between 1 and 64")
	}
	if c.Filter.MinConfidence < 0 || c.Filter.MinConfidence > 1 {
		problems = append(problems, "filter.min_confidence must be between 0 and 1")
	}
	return problems
}
