package filter

import (
	"context"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/leadfilter-cli/internal/aiclassify"
	"github.com/sells-group/leadfilter-cli/internal/model"
	"github.com/sells-group/leadfilter-cli/internal/rules"
)

// Mode selects the classification path.
type Mode string

const (
	ModeRule Mode = "rule"
	ModeAI   Mode = "ai"
)

// defaultMinConfidence marks verdicts worth a human look.
const defaultMinConfidence = 0.7

// Orchestrator runs a full filtering pass in either mode and reports
// summary statistics. It holds no state between invocations; every
// Run is independent.
type Orchestrator struct {
	ruleSet       *rules.RuleSet
	classifier    *aiclassify.BatchClassifier
	minConfidence float64
}

// NewOrchestrator wires the rule set and the (optional) AI batch
// classifier. A nil classifier restricts Run to ModeRule. Verdicts
// below minConfidence are counted as low-confidence in the summary;
// zero selects the default threshold.
func NewOrchestrator(ruleSet *rules.RuleSet, classifier *aiclassify.BatchClassifier, minConfidence float64) *Orchestrator {
	if minConfidence <= 0 {
		minConfidence = defaultMinConfidence
	}
	return &Orchestrator{ruleSet: ruleSet, classifier: classifier, minConfidence: minConfidence}
}

// Run partitions leads for a service type and returns the per-lead
// verdicts in input order. In ModeAI it delegates to the batch
// classifier (which already degrades per item to rules); in ModeRule
// it delegates to FilterBatch.
func (o *Orchestrator) Run(ctx context.Context, leads []model.Lead, serviceType string, mode Mode, onProgress aiclassify.ProgressFunc) (model.BatchResult, []model.Verdict, model.Summary, error) {
	switch mode {
	case ModeRule:
		result, verdicts := FilterBatch(o.ruleSet, leads, serviceType)
		return result, verdicts, Summarize(verdicts, o.minConfidence), nil

	case ModeAI:
		if o.classifier == nil {
			return model.BatchResult{}, nil, model.Summary{}, eris.New("filter: ai mode requested but no classifier configured")
		}
		verdicts := o.classifier.ClassifyAll(ctx, leads, serviceType, onProgress)
		result := resultFromVerdicts(leads, verdicts)
		summary := Summarize(verdicts, o.minConfidence)

		zap.L().Info("filter: ai batch complete",
			zap.String("service_type", serviceType),
			zap.Int("accepted", summary.Included),
			zap.Int("excluded", summary.Excluded),
			zap.Int("fallbacks", summary.FallbackCount),
		)
		return result, verdicts, summary, nil

	default:
		return model.BatchResult{}, nil, model.Summary{}, eris.Errorf("filter: unknown mode %q", mode)
	}
}

// resultFromVerdicts maps per-lead verdicts into the partition,
// preserving input order.
func resultFromVerdicts(leads []model.Lead, verdicts []model.Verdict) model.BatchResult {
	result := model.BatchResult{
		FilteredLeads:      make([]model.Lead, 0, len(leads)),
		ExcludedBusinesses: make([]model.Exclusion, 0),
	}

	for i, lead := range leads {
		if i >= len(verdicts) {
			break
		}
		if verdicts[i].IsServiceProvider {
			result.FilteredLeads = append(result.FilteredLeads, lead)
			continue
		}
		result.ExcludedBusinesses = append(result.ExcludedBusinesses, model.Exclusion{
			Name:    lead.Name,
			Reason:  verdicts[i].Reason,
			Address: lead.Address,
		})
	}

	return result
}

// Summarize aggregates verdicts into run statistics. Pure function.
// Verdicts below minConfidence count as low-confidence; zero selects
// the default threshold.
func Summarize(verdicts []model.Verdict, minConfidence float64) model.Summary {
	if minConfidence <= 0 {
		minConfidence = defaultMinConfidence
	}

	s := model.Summary{Total: len(verdicts)}
	if s.Total == 0 {
		return s
	}

	var confidenceSum float64
	for _, v := range verdicts {
		if v.IsServiceProvider {
			s.Included++
		} else {
			s.Excluded++
		}
		confidenceSum += v.Confidence
		if v.Confidence < minConfidence {
			s.LowConfidenceCount++
		}
		if v.Error != "" {
			s.ErrorCount++
		}
		if v.FallbackUsed {
			s.FallbackCount++
		}
	}

	s.InclusionRate = float64(s.Included) / float64(s.Total)
	s.AvgConfidence = confidenceSum / float64(s.Total)
	return s
}
