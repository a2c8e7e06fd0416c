// Package aiclassify decides whether scraped businesses genuinely
// provide a target service by asking an LLM backend, with per-item
// fallback to the rule classifier when a call fails.
package aiclassify

import (
	"context"

	"github.com/sells-group/leadfilter-cli/internal/model"
)

// Backend classifies a single business against a service type. The
// three implementations (Anthropic direct, server-side proxy, OpenAI)
// are interchangeable behind this interface; the batch classifier
// handles windowing, concurrency, and fallback on top of it.
type Backend interface {
	// Name identifies the backend in config and verdict metadata.
	Name() string
	// ClassifyOne returns the backend's verdict for one lead. Any
	// transport or parse failure returns an error; the caller decides
	// the fallback policy.
	ClassifyOne(ctx context.Context, lead model.Lead, serviceType string) (model.Verdict, error)
}
