// Package classify implements the rule-based statement classifier: an ordered
// table of phrase-matching rules evaluated first-match-wins, a short-statement
// heuristic, and a declared fallback. Every result carries the law detector's
// output for the same statement.
package classify

import (
	"fmt"
	"strings"

	"github.com/ppiankov/echelon/internal/law"
	"github.com/ppiankov/echelon/internal/model"
)

// DefaultMinTokens is the token count below which an unmatched statement is Neutral
const DefaultMinTokens = 2

// Rule maps a set of trigger phrases to a fixed classification
type Rule struct {
	ID          string        `json:"id"`
	Triggers    []string      `json:"triggers"` // Case-insensitive substrings; any one matches
	Echelon     model.Echelon `json:"echelon"`
	Subtype     model.Subtype `json:"subtype"`
	Explanation string        `json:"explanation"`
}

// compiledRule holds a rule with its triggers case-folded once
type compiledRule struct {
	Rule
	folded []string
}

func (r *compiledRule) matches(canonical string) bool {
	for _, trigger := range r.folded {
		if strings.Contains(canonical, trigger) {
			return true
		}
	}
	return false
}

func (r Rule) result(laws []model.LawID) model.Classification {
	return model.Classification{
		Echelon:     r.Echelon,
		Subtype:     r.Subtype,
		Explanation: r.Explanation,
		Laws:        laws,
		RuleID:      r.ID,
	}
}

// Classifier evaluates the rule table. Immutable after construction and safe for concurrent use.
type Classifier struct {
	rules     []compiledRule
	neutral   Rule
	fallback  Rule
	detector  *law.Detector
	minTokens int
}

// Option configures a Classifier
type Option func(*Classifier)

// WithMinTokens sets the short-statement threshold
func WithMinTokens(n int) Option {
	return func(c *Classifier) {
		if n >= 0 {
			c.minTokens = n
		}
	}
}

// WithReserved overrides the reserved neutral and fallback entries
func WithReserved(neutral, fallback Rule) Option {
	return func(c *Classifier) {
		c.neutral = neutral
		c.fallback = fallback
	}
}

// NewClassifier validates the rule table and builds a classifier.
// A nil detector uses the default Truth Echelon Laws.
func NewClassifier(rules []Rule, detector *law.Detector, opts ...Option) (*Classifier, error) {
	if detector == nil {
		detector = law.Default()
	}

	c := &Classifier{
		neutral:   NeutralRule,
		fallback:  FallbackRule,
		detector:  detector,
		minTokens: DefaultMinTokens,
	}
	for _, opt := range opts {
		opt(c)
	}

	seen := make(map[string]bool, len(rules)+2)
	for _, reserved := range []Rule{c.neutral, c.fallback} {
		if err := validateLabels(reserved); err != nil {
			return nil, err
		}
		if seen[reserved.ID] {
			return nil, fmt.Errorf("reserved rule %q: duplicate id", reserved.ID)
		}
		seen[reserved.ID] = true
	}

	c.rules = make([]compiledRule, 0, len(rules))
	for i, r := range rules {
		if r.ID == "" {
			return nil, fmt.Errorf("rule %d: empty id", i)
		}
		if seen[r.ID] {
			return nil, fmt.Errorf("rule %q: duplicate id", r.ID)
		}
		seen[r.ID] = true

		if err := validateLabels(r); err != nil {
			return nil, err
		}

		compiled := compiledRule{Rule: r}
		for _, trigger := range r.Triggers {
			if folded := law.Fold(trigger); strings.TrimSpace(folded) != "" {
				compiled.folded = append(compiled.folded, folded)
			}
		}
		if len(compiled.folded) == 0 {
			return nil, fmt.Errorf("rule %q: no trigger phrases", r.ID)
		}
		c.rules = append(c.rules, compiled)
	}

	return c, nil
}

func validateLabels(r Rule) error {
	if r.ID == "" {
		return fmt.Errorf("reserved rule: empty id")
	}
	if !r.Echelon.Valid() {
		return fmt.Errorf("rule %q: unknown echelon %q", r.ID, r.Echelon)
	}
	if !model.ValidPair(r.Echelon, r.Subtype) {
		return fmt.Errorf("rule %q: subtype %q is not declared for echelon %q", r.ID, r.Subtype, r.Echelon)
	}
	if r.Explanation == "" {
		return fmt.Errorf("rule %q: empty explanation", r.ID)
	}
	return nil
}

var defaultClassifier = mustDefault()

func mustDefault() *Classifier {
	c, err := NewClassifier(DefaultRules(), law.Default())
	if err != nil {
		panic(fmt.Sprintf("built-in rule table is invalid: %v", err))
	}
	return c
}

// Default returns the classifier over the canonical rule table
func Default() *Classifier {
	return defaultClassifier
}

// Classify labels a statement. It never fails: no match yields the neutral
// entry for short statements and the fallback entry otherwise.
func (c *Classifier) Classify(statement string) model.Classification {
	laws := c.detector.Detect(statement)

	// Rule matching uses the case-folded statement with every character retained
	canonical := law.Fold(statement)
	for i := range c.rules {
		if c.rules[i].matches(canonical) {
			return c.rules[i].result(laws)
		}
	}

	if len(strings.Fields(statement)) < c.minTokens {
		return c.neutral.result(laws)
	}
	return c.fallback.result(laws)
}

// DetectLaws exposes the classifier's law detector
func (c *Classifier) DetectLaws(statement string) []model.LawID {
	return c.detector.Detect(statement)
}

// Detector returns the law detector attached to every result
func (c *Classifier) Detector() *law.Detector {
	return c.detector
}

// Rules returns the content rules in evaluation order followed by the
// reserved neutral and fallback entries
func (c *Classifier) Rules() []Rule {
	out := make([]Rule, 0, len(c.rules)+2)
	for _, r := range c.rules {
		out = append(out, r.Rule)
	}
	return append(out, c.neutral, c.fallback)
}

// Pairs returns every (echelon, subtype) pair the classifier can produce
func (c *Classifier) Pairs() map[model.Echelon][]model.Subtype {
	pairs := make(map[model.Echelon][]model.Subtype)
	for _, r := range c.Rules() {
		dup := false
		for _, s := range pairs[r.Echelon] {
			if s == r.Subtype {
				dup = true
				break
			}
		}
		if !dup {
			pairs[r.Echelon] = append(pairs[r.Echelon], r.Subtype)
		}
	}
	return pairs
}

// IsReserved reports whether a classification came from the neutral or fallback entry
func (c *Classifier) IsReserved(result model.Classification) bool {
	return result.RuleID == c.neutral.ID || result.RuleID == c.fallback.ID
}
