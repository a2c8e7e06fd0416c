// Package filter partitions scraped leads into accepted and excluded
// lists, via the rule engine or the AI classifier with rule fallback.
package filter

import (
	"go.uber.org/zap"

	"github.com/sells-group/leadfilter-cli/internal/model"
	"github.com/sells-group/leadfilter-cli/internal/rules"
)

// FilterBatch runs the rule classifier over every lead. Every input
// lead lands in exactly one output list, in input order. Rule
// decisions are deterministic, so the returned verdicts carry full
// confidence.
func FilterBatch(ruleSet *rules.RuleSet, leads []model.Lead, serviceType string) (model.BatchResult, []model.Verdict) {
	verdicts := ruleVerdicts(ruleSet, leads, serviceType)
	result := resultFromVerdicts(leads, verdicts)

	zap.L().Debug("filter: rule batch complete",
		zap.String("service_type", serviceType),
		zap.Int("input", len(leads)),
		zap.Int("accepted", len(result.FilteredLeads)),
		zap.Int("excluded", len(result.ExcludedBusinesses)),
	)

	return result, verdicts
}

// ruleVerdicts classifies every lead with the rule engine.
func ruleVerdicts(ruleSet *rules.RuleSet, leads []model.Lead, serviceType string) []model.Verdict {
	verdicts := make([]model.Verdict, len(leads))
	for i, lead := range leads {
		decision := ruleSet.Classify(lead.Name, serviceType)
		reason := decision.Reason
		if !decision.Excluded {
			reason = "passed rule-based checks"
		}
		verdicts[i] = model.Verdict{
			BusinessName:      lead.Name,
			Category:          serviceType,
			IsServiceProvider: !decision.Excluded,
			Confidence:        1.0,
			Reason:            reason,
		}
	}
	return verdicts
}
