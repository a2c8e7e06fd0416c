package aiclassify

import (
	"context"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/sells-group/leadfilter-cli/internal/model"
	"github.com/sells-group/leadfilter-cli/internal/rules"
)

const (
	defaultBatchSize      = 8
	defaultRequestTimeout = 30 * time.Second
	defaultBatchInterval  = 500 * time.Millisecond
)

// Progress reports batch completion to the caller.
type Progress struct {
	Processed  int
	Total      int
	Percentage float64
}

// ProgressFunc receives a Progress update after each window completes.
type ProgressFunc func(Progress)

// Options tunes the batch classifier.
type Options struct {
	// BatchSize caps concurrent in-flight requests per window.
	BatchSize int
	// RequestTimeout bounds each backend call. A timeout counts as a
	// classification failure eligible for rule fallback.
	RequestTimeout time.Duration
	// BatchInterval is the pacing delay between windows.
	BatchInterval time.Duration
}

// BatchClassifier runs a Backend over a list of leads in bounded
// concurrency windows, degrading per item to the rule classifier on
// failure. No per-item error ever escapes ClassifyAll.
type BatchClassifier struct {
	backend   Backend
	ruleSet   *rules.RuleSet
	batchSize int
	timeout   time.Duration
	limiter   *rate.Limiter
}

// NewBatchClassifier wires a backend to the rule fallback.
func NewBatchClassifier(backend Backend, ruleSet *rules.RuleSet, opts Options) *BatchClassifier {
	if opts.BatchSize <= 0 {
		opts.BatchSize = defaultBatchSize
	}
	if opts.RequestTimeout <= 0 {
		opts.RequestTimeout = defaultRequestTimeout
	}
	if opts.BatchInterval <= 0 {
		opts.BatchInterval = defaultBatchInterval
	}

	return &BatchClassifier{
		backend:   backend,
		ruleSet:   ruleSet,
		batchSize: opts.BatchSize,
		timeout:   opts.RequestTimeout,
		limiter:   rate.NewLimiter(rate.Every(opts.BatchInterval), 1),
	}
}

// ClassifyAll classifies every lead and returns verdicts in input
// order. Windows of BatchSize run concurrently; the limiter paces
// successive windows to respect vendor rate limits. onProgress (when
// non-nil) fires once per window with a non-decreasing Processed that
// reaches Total exactly once, at completion.
//
// Cancelling ctx stops issuing new requests; remaining leads get rule
// fallback verdicts so the partition stays total.
func (c *BatchClassifier) ClassifyAll(ctx context.Context, leads []model.Lead, serviceType string, onProgress ProgressFunc) []model.Verdict {
	verdicts := make([]model.Verdict, len(leads))
	if len(leads) == 0 {
		return verdicts
	}

	log := zap.L().With(
		zap.String("backend", c.backend.Name()),
		zap.String("service_type", serviceType),
		zap.Int("total", len(leads)),
	)
	log.Info("aiclassify: starting batch classification")

	for start := 0; start < len(leads); start += c.batchSize {
		end := start + c.batchSize
		if end > len(leads) {
			end = len(leads)
		}

		if err := c.limiter.Wait(ctx); err != nil {
			// Context cancelled: degrade the rest to rule verdicts.
			for i := start; i < len(leads); i++ {
				verdicts[i] = c.fallbackVerdict(leads[i], serviceType, err)
			}
			c.report(onProgress, len(leads), len(leads))
			log.Warn("aiclassify: run cancelled, remaining leads classified by rules",
				zap.Int("remaining", len(leads)-start),
			)
			return verdicts
		}

		c.classifyWindow(ctx, leads, verdicts, start, end, serviceType)
		c.report(onProgress, end, len(leads))
	}

	log.Info("aiclassify: batch classification complete",
		zap.Int("fallbacks", countFallbacks(verdicts)),
	)
	return verdicts
}

// classifyWindow fans out one window of concurrent backend calls and
// waits for all of them. Failures are resolved to fallback verdicts
// in place, never propagated.
func (c *BatchClassifier) classifyWindow(ctx context.Context, leads []model.Lead, verdicts []model.Verdict, start, end int, serviceType string) {
	g := new(errgroup.Group)
	g.SetLimit(c.batchSize)

	for i := start; i < end; i++ {
		g.Go(func() error {
			reqCtx, cancel := context.WithTimeout(ctx, c.timeout)
			defer cancel()

			verdict, err := c.backend.ClassifyOne(reqCtx, leads[i], serviceType)
			if err != nil {
				zap.L().Warn("aiclassify: backend call failed, using rule fallback",
					zap.String("business", leads[i].Name),
					zap.Error(err),
				)
				verdicts[i] = c.fallbackVerdict(leads[i], serviceType, err)
				return nil
			}
			verdicts[i] = verdict
			return nil
		})
	}

	// Goroutines write disjoint indices and never return errors.
	_ = g.Wait()
}

// fallbackVerdict classifies one lead with the rule engine after an
// AI failure. Confidence 0.5 marks these as weaker than real AI
// verdicts without discarding the lead.
func (c *BatchClassifier) fallbackVerdict(lead model.Lead, serviceType string, cause error) model.Verdict {
	decision := c.ruleSet.Classify(lead.Name, serviceType)

	reason := decision.Reason
	if !decision.Excluded {
		reason = "passed rule-based checks"
	}

	return model.Verdict{
		BusinessName:      lead.Name,
		Category:          serviceType,
		IsServiceProvider: !decision.Excluded,
		Confidence:        0.5,
		Reason:            reason,
		FallbackUsed:      true,
		Error:             eris.ToString(cause, false),
	}
}

func (c *BatchClassifier) report(onProgress ProgressFunc, processed, total int) {
	if onProgress == nil {
		return
	}
	onProgress(Progress{
		Processed:  processed,
		Total:      total,
		Percentage: float64(processed) / float64(total) * 100,
	})
}

func countFallbacks(verdicts []model.Verdict) int {
	n := 0
	for _, v := range verdicts {
		if v.FallbackUsed {
			n++
		}
	}
	return n
}
