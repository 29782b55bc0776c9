// Package law detects the structural cues (hedging, interrogative form,
// repetition and friends) that trigger Truth Echelon Laws. Detection is a pure
// function of the statement and is independent of how the statement is labeled.
package law

import (
	"strings"

	"github.com/ppiankov/echelon/internal/model"
	"golang.org/x/text/cases"
)

// Predicate reports whether a law applies. folded is the case-folded statement,
// trimmed is the original statement with surrounding whitespace removed.
type Predicate func(folded, trimmed string) bool

// Law pairs an identifier with its detection predicate
type Law struct {
	ID          model.LawID `json:"id"`
	Name        string      `json:"name"`
	Description string      `json:"description"`
	Cues        []string    `json:"cues,omitempty"` // Phrases the predicate looks for, for listing
	Match       Predicate   `json:"-"`
}

// Detector evaluates every law against a statement. Immutable after construction.
type Detector struct {
	laws []Law
}

// NewDetector creates a detector over the given laws; declaration order is result order
func NewDetector(laws []Law) *Detector {
	table := make([]Law, len(laws))
	copy(table, laws)
	return &Detector{laws: table}
}

var defaultDetector = NewDetector(DefaultLaws())

// Default returns the detector over the seven Truth Echelon Laws
func Default() *Detector {
	return defaultDetector
}

// Detect returns the identifiers of all triggered laws in declaration order.
// The result is never nil; no laws triggered yields an empty slice.
func (d *Detector) Detect(statement string) []model.LawID {
	folded := Fold(statement)
	trimmed := strings.TrimSpace(statement)

	triggered := make([]model.LawID, 0, 2)
	for _, l := range d.laws {
		if l.Match != nil && l.Match(folded, trimmed) {
			triggered = append(triggered, l.ID)
		}
	}
	return triggered
}

// Laws returns a copy of the law table
func (d *Detector) Laws() []Law {
	out := make([]Law, len(d.laws))
	copy(out, d.laws)
	return out
}

// Lookup finds a law by identifier
func (d *Detector) Lookup(id model.LawID) (Law, bool) {
	for _, l := range d.laws {
		if l.ID == id {
			return l, true
		}
	}
	return Law{}, false
}

// Fold case-folds s for substring matching. A Caser is stateful, so each call gets its own.
func Fold(s string) string {
	return cases.Fold().String(s)
}

// ContainsAny builds a predicate that matches when any phrase occurs in the folded statement
func ContainsAny(phrases ...string) Predicate {
	folded := make([]string, 0, len(phrases))
	for _, p := range phrases {
		if p = Fold(p); p != "" {
			folded = append(folded, p)
		}
	}
	return func(statement, _ string) bool {
		for _, p := range folded {
			if strings.Contains(statement, p) {
				return true
			}
		}
		return false
	}
}

// EndsWithQuestion matches when the trimmed original statement ends in "?"
func EndsWithQuestion() Predicate {
	return func(_, trimmed string) bool {
		return strings.HasSuffix(trimmed, "?")
	}
}
