// Package rules implements the rule-based lead classifier: declarative
// exclusion tables plus a pure classification function over them.
package rules

import (
	_ "embed"
	"os"
	"regexp"
	"sort"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"
)

//go:embed rules.yaml
var defaultRules []byte

// ruleFile mirrors the YAML layout of a rule table.
type ruleFile struct {
	Universal  []string                    `yaml:"universal"`
	Categories map[string]categoryRuleFile `yaml:"categories"`
}

type categoryRuleFile struct {
	Terms    []string        `yaml:"terms"`
	Patterns patternRuleFile `yaml:"patterns"`
}

type patternRuleFile struct {
	Whitelist []string `yaml:"whitelist"`
	Exclude   []string `yaml:"exclude"`
}

// RuleSet holds compiled exclusion rules. Loaded once at startup and
// never mutated afterwards; safe for concurrent use.
type RuleSet struct {
	universal  []string
	categories map[string]categoryRules
}

type categoryRules struct {
	terms     []string
	whitelist []*regexp.Regexp
	exclude   []*regexp.Regexp
}

// Default returns the RuleSet compiled from the embedded rule tables.
// The embedded tables are validated at build time by tests, so a parse
// failure here is a programming error.
func Default() *RuleSet {
	rs, err := Load(defaultRules)
	if err != nil {
		panic(eris.ToString(err, true))
	}
	return rs
}

// Load parses and compiles a YAML rule table.
func Load(data []byte) (*RuleSet, error) {
	var rf ruleFile
	if err := yaml.Unmarshal(data, &rf); err != nil {
		return nil, eris.Wrap(err, "rules: parse rule table")
	}

	rs := &RuleSet{
		universal:  normalizeTerms(rf.Universal),
		categories: make(map[string]categoryRules, len(rf.Categories)),
	}

	for name, cf := range rf.Categories {
		cr := categoryRules{terms: normalizeTerms(cf.Terms)}

		var err error
		if cr.whitelist, err = compilePatterns(cf.Patterns.Whitelist); err != nil {
			return nil, eris.Wrapf(err, "rules: category %q whitelist", name)
		}
		if cr.exclude, err = compilePatterns(cf.Patterns.Exclude); err != nil {
			return nil, eris.Wrapf(err, "rules: category %q exclude", name)
		}

		rs.categories[name] = cr
	}

	return rs, nil
}

// LoadFile reads and compiles a rule table from a YAML file, for
// deployments that override the embedded defaults.
func LoadFile(path string) (*RuleSet, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "rules: read %s", path)
	}
	return Load(data)
}

// UniversalTerms returns the universal exclusion terms.
func (rs *RuleSet) UniversalTerms() []string {
	out := make([]string, len(rs.universal))
	copy(out, rs.universal)
	return out
}

// ServiceTerms returns the substring terms specific to a category.
// Unknown categories have no specific terms.
func (rs *RuleSet) ServiceTerms(category string) []string {
	cr, ok := rs.categories[category]
	if !ok {
		return nil
	}
	out := make([]string, len(cr.terms))
	copy(out, cr.terms)
	return out
}

// SpecialPatterns returns the whitelist and exclude regex patterns for
// a category. Both are nil for categories without special patterns.
func (rs *RuleSet) SpecialPatterns(category string) (whitelist, exclude []*regexp.Regexp) {
	cr, ok := rs.categories[category]
	if !ok {
		return nil, nil
	}
	return cr.whitelist, cr.exclude
}

// Categories returns the category names carrying specific rules,
// sorted for stable output.
func (rs *RuleSet) Categories() []string {
	names := make([]string, 0, len(rs.categories))
	for name := range rs.categories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func compilePatterns(patterns []string) ([]*regexp.Regexp, error) {
	if len(patterns) == 0 {
		return nil, nil
	}
	out := make([]*regexp.Regexp, 0, len(patterns))
	for _, p := range patterns {
		re, err := regexp.Compile(p)
		if err != nil {
			return nil, eris.Wrapf(err, "compile %q", p)
		}
		out = append(out, re)
	}
	return out, nil
}

func normalizeTerms(terms []string) []string {
	out := make([]string, 0, len(terms))
	for _, t := range terms {
		if n := normalizeName(t); n != "" {
			out = append(out, n)
		}
	}
	return out
}
