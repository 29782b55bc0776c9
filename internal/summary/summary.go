// Package summary aggregates a batch of verdicts into counts and diagnostic signals.
package summary

import (
	"fmt"
	"sort"

	"github.com/ppiankov/echelon/internal/classify"
	"github.com/ppiankov/echelon/internal/model"
)

// falsehoods are the echelons counted towards the falsehood share
var falsehoods = map[model.Echelon]bool{
	model.EchelonMisinformation: true,
	model.EchelonMisusedLie:     true,
	model.EchelonDeliberateLie:  true,
}

// Summarizer computes batch summaries
type Summarizer struct {
	// DominantMinTotal is the smallest batch for which a dominant echelon is reported
	DominantMinTotal int
}

// NewSummarizer creates a summarizer with default thresholds
func NewSummarizer() *Summarizer {
	return &Summarizer{DominantMinTotal: 5}
}

// Summarize counts verdicts with the default summarizer
func Summarize(verdicts []model.Verdict) model.Summary {
	return NewSummarizer().Summarize(verdicts)
}

// Summarize counts verdicts by echelon and law and derives signals
func (s *Summarizer) Summarize(verdicts []model.Verdict) model.Summary {
	sum := model.Summary{
		Total:     len(verdicts),
		ByEchelon: make(map[model.Echelon]int),
		ByLaw:     make(map[model.LawID]int),
	}

	for _, v := range verdicts {
		c := v.Classification
		sum.ByEchelon[c.Echelon]++
		for _, l := range c.Laws {
			sum.ByLaw[l]++
		}
		switch {
		case c.Echelon == model.EchelonNeutral:
			sum.Neutral++
		case c.RuleID == classify.FallbackRule.ID:
			sum.Fallback++
		}
	}

	if sum.Total == 0 {
		return sum
	}

	sum.Signals = append(sum.Signals, s.unclassified(sum))
	if sig, ok := s.falsehoodShare(sum); ok {
		sum.Signals = append(sum.Signals, sig)
	}
	if sig, ok := s.hedging(sum); ok {
		sum.Signals = append(sum.Signals, sig)
	}
	if sig, ok := s.repetition(sum); ok {
		sum.Signals = append(sum.Signals, sig)
	}
	if sig, ok := s.dominant(sum); ok {
		sum.Signals = append(sum.Signals, sig)
	}

	return sum
}

// unclassified reports how much of the batch no content rule recognised
func (s *Summarizer) unclassified(sum model.Summary) model.Signal {
	count := sum.Neutral + sum.Fallback
	ratio := float64(count) / float64(sum.Total)

	severity := model.SeverityInfo
	if ratio >= 0.8 {
		severity = model.SeverityCritical
	} else if ratio >= 0.5 {
		severity = model.SeverityWarning
	}

	return model.Signal{
		Type:        model.SignalUnclassified,
		Severity:    severity,
		Description: fmt.Sprintf("%d of %d statements matched no content rule (%.0f%%)", count, sum.Total, ratio*100),
		Data: map[string]interface{}{
			"neutral":  sum.Neutral,
			"fallback": sum.Fallback,
			"ratio":    ratio,
			"formula":  "(neutral + fallback) / total",
		},
	}
}

// falsehoodShare reports misinformation and lies
func (s *Summarizer) falsehoodShare(sum model.Summary) (model.Signal, bool) {
	count := 0
	for e, n := range sum.ByEchelon {
		if falsehoods[e] {
			count += n
		}
	}
	if count == 0 {
		return model.Signal{}, false
	}

	ratio := float64(count) / float64(sum.Total)
	severity := model.SeverityInfo
	if ratio >= 0.5 {
		severity = model.SeverityCritical
	} else if ratio >= 0.25 {
		severity = model.SeverityWarning
	}

	return model.Signal{
		Type:        model.SignalFalsehoodShare,
		Severity:    severity,
		Description: fmt.Sprintf("%d statements classified as misinformation or lies (%.0f%%)", count, ratio*100),
		Data: map[string]interface{}{
			"count":   count,
			"ratio":   ratio,
			"formula": "(misinformation + misused lie + deliberate lie) / total",
		},
	}, true
}

// hedging reports batches where LAW 3 fires often
func (s *Summarizer) hedging(sum model.Summary) (model.Signal, bool) {
	count := sum.ByLaw[model.Law3]
	ratio := float64(count) / float64(sum.Total)
	if ratio < 0.3 {
		return model.Signal{}, false
	}

	return model.Signal{
		Type:        model.SignalHedging,
		Severity:    model.SeverityWarning,
		Description: fmt.Sprintf("Hedging language in %d of %d statements", count, sum.Total),
		Data: map[string]interface{}{
			"count": count,
			"ratio": ratio,
			"law":   string(model.Law3),
		},
	}, true
}

// repetition reports statements that lean on repetition (LAW 7)
func (s *Summarizer) repetition(sum model.Summary) (model.Signal, bool) {
	count := sum.ByLaw[model.Law7]
	if count == 0 {
		return model.Signal{}, false
	}

	return model.Signal{
		Type:        model.SignalRepetition,
		Severity:    model.SeverityInfo,
		Description: fmt.Sprintf("%d statements appeal to repetition or popularity", count),
		Data: map[string]interface{}{
			"count": count,
			"law":   string(model.Law7),
		},
	}, true
}

// dominant reports a single echelon covering most of a sizeable batch
func (s *Summarizer) dominant(sum model.Summary) (model.Signal, bool) {
	if sum.Total < s.DominantMinTotal {
		return model.Signal{}, false
	}

	// Deterministic tie-break: enumeration order
	order := make(map[model.Echelon]int)
	for i, e := range model.Echelons() {
		order[e] = i
	}
	echelons := make([]model.Echelon, 0, len(sum.ByEchelon))
	for e := range sum.ByEchelon {
		echelons = append(echelons, e)
	}
	sort.Slice(echelons, func(i, j int) bool {
		a, b := sum.ByEchelon[echelons[i]], sum.ByEchelon[echelons[j]]
		if a != b {
			return a > b
		}
		return order[echelons[i]] < order[echelons[j]]
	})

	top := echelons[0]
	ratio := float64(sum.ByEchelon[top]) / float64(sum.Total)
	if ratio < 0.6 {
		return model.Signal{}, false
	}

	return model.Signal{
		Type:        model.SignalDominant,
		Severity:    model.SeverityInfo,
		Description: fmt.Sprintf("%s accounts for %.0f%% of statements", top, ratio*100),
		Data: map[string]interface{}{
			"echelon": string(top),
			"count":   sum.ByEchelon[top],
			"ratio":   ratio,
		},
	}, true
}
