package rules

import (
	"fmt"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Decision is the verdict of the rule classifier for one business name.
type Decision struct {
	Excluded bool
	Reason   string
}

// Classify decides whether a business name should be excluded for a
// target service category. Pure function of (name, category).
//
// Evaluation order, first match wins:
//  1. category whitelist regex — include, overrides everything
//  2. category exclude regex
//  3. universal substring terms
//  4. category substring terms
//  5. default include
//
// Whitelist-first is load-bearing: the whitelists exist to rescue
// names that the broad substring terms would otherwise catch (e.g.
// "State of the Art Painting" vs the "art" term). Reordering changes
// classification outcomes.
func (rs *RuleSet) Classify(name, category string) Decision {
	normalized := normalizeName(name)
	if normalized == "" {
		// Empty names match no rules; fail open rather than drop leads.
		return Decision{}
	}

	whitelist, exclude := rs.SpecialPatterns(category)

	for _, re := range whitelist {
		if re.MatchString(normalized) {
			return Decision{}
		}
	}

	for _, re := range exclude {
		if re.MatchString(normalized) {
			return Decision{
				Excluded: true,
				Reason:   fmt.Sprintf("%s exclusion: matches pattern %q", category, re.String()),
			}
		}
	}

	for _, term := range rs.universal {
		if strings.Contains(normalized, term) {
			return Decision{
				Excluded: true,
				Reason:   fmt.Sprintf("universal exclusion: name contains %q", term),
			}
		}
	}

	for _, term := range rs.ServiceTerms(category) {
		if strings.Contains(normalized, term) {
			return Decision{
				Excluded: true,
				Reason:   fmt.Sprintf("%s exclusion: name contains %q", category, term),
			}
		}
	}

	return Decision{}
}

// normalizeName lowercases, trims, folds accents, and collapses runs
// of whitespace so rule terms match scraped names regardless of
// diacritics or spacing.
func normalizeName(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return ""
	}

	fold := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	if folded, _, err := transform.String(fold, s); err == nil {
		s = folded
	}

	return strings.Join(strings.Fields(s), " ")
}
