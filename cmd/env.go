package main

import (
	"context"
	"time"

	"github.com/rotisserie/eris"

	"github.com/sells-group/leadfilter-cli/internal/aiclassify"
	"github.com/sells-group/leadfilter-cli/internal/config"
	"github.com/sells-group/leadfilter-cli/internal/rules"
	"github.com/sells-group/leadfilter-cli/internal/store"
	"github.com/sells-group/leadfilter-cli/pkg/anthropic"
)

// loadRuleSet returns the embedded rules or an override file when
// filter.rules_path is set.
func loadRuleSet(cfg *config.Config) (*rules.RuleSet, error) {
	if cfg.Filter.RulesPath != "" {
		return rules.LoadFile(cfg.Filter.RulesPath)
	}
	return rules.Default(), nil
}

// newBackend builds the configured classification backend.
func newBackend(cfg *config.Config, override string) (aiclassify.Backend, error) {
	backend := cfg.Filter.Backend
	if override != "" {
		backend = override
	}

	switch backend {
	case "anthropic":
		if cfg.Anthropic.Key == "" {
			return nil, eris.New("anthropic key is required (LEADFILTER_ANTHROPIC_KEY)")
		}
		client := anthropic.NewClient(cfg.Anthropic.Key)
		return aiclassify.NewAnthropicBackend(client, cfg.Anthropic.Model), nil
	case "openai":
		if cfg.OpenAI.Key == "" {
			return nil, eris.New("openai key is required (LEADFILTER_OPENAI_KEY)")
		}
		return aiclassify.NewOpenAIBackend(cfg.OpenAI.Key, cfg.OpenAI.Model, cfg.OpenAI.BaseURL), nil
	case "proxy":
		if cfg.Proxy.BaseURL == "" {
			return nil, eris.New("proxy base URL is required (LEADFILTER_PROXY_BASE_URL)")
		}
		return aiclassify.NewProxyBackend(cfg.Proxy.BaseURL), nil
	default:
		return nil, eris.Errorf("unknown backend %q (want anthropic, openai, or proxy)", backend)
	}
}

// newBatchClassifier wires the backend and rules with configured tuning.
func newBatchClassifier(backend aiclassify.Backend, ruleSet *rules.RuleSet, cfg *config.Config) *aiclassify.BatchClassifier {
	return aiclassify.NewBatchClassifier(backend, ruleSet, aiclassify.Options{
		BatchSize:      cfg.Filter.BatchSize,
		RequestTimeout: time.Duration(cfg.Filter.RequestTimeout) * time.Second,
		BatchInterval:  time.Duration(cfg.Filter.BatchIntervalMS) * time.Millisecond,
	})
}

// openStore opens the configured store and runs migrations.
func openStore(ctx context.Context, cfg *config.Config) (store.Store, error) {
	var (
		s   store.Store
		err error
	)
	switch cfg.Store.Driver {
	case "sqlite":
		s, err = store.NewSQLite(cfg.Store.DatabaseURL)
	case "postgres":
		s, err = store.NewPostgres(ctx, cfg.Store.DatabaseURL, nil)
	default:
		return nil, eris.Errorf("unknown store driver %q (want sqlite or postgres)", cfg.Store.Driver)
	}
	if err != nil {
		return nil, err
	}

	if err := s.Migrate(ctx); err != nil {
		s.Close()
		return nil, err
	}
	return s, nil
}
