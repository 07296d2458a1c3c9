package dlp

import (
	"fmt"
	"regexp"
	"sort"
)

type compiledRule struct {
	rule Rule
	re   *regexp.Regexp
}

// Redactor applies rules in order. A nil Redactor passes text through.
type Redactor struct {
	rules []compiledRule
}

func NewRedactor(cfg RulesConfig) (*Redactor, error) {
	compiled := make([]compiledRule, 0, len(cfg.Rules))
	for _, rule := range cfg.Rules {
		if !rule.Enabled {
			continue
		}
		re, err := regexp.Compile(rule.Pattern)
		if err != nil {
			return nil, fmt.Errorf("rule %s: %w", rule.Name, err)
		}
		compiled = append(compiled, compiledRule{rule: rule, re: re})
	}
	return &Redactor{rules: compiled}, nil
}

// Redact returns text with every match masked, plus the sorted set of
// identifier types found.
func (r *Redactor) Redact(text string) (string, []string) {
	if r == nil {
		return text, nil
	}
	found := make(map[string]struct{})
	for _, cr := range r.rules {
		if !cr.re.MatchString(text) {
			continue
		}
		found[cr.rule.Type] = struct{}{}
		text = cr.re.ReplaceAllLiteralString(text, cr.rule.Mask)
	}
	if len(found) == 0 {
		return text, nil
	}
	types := make([]string, 0, len(found))
	for t := range found {
		types = append(types, t)
	}
	sort.Strings(types)
	return text, types
}
