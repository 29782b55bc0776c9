package summary

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/ppiankov/echelon/internal/classify"
	"github.com/ppiankov/echelon/internal/model"
)

func verdictsFor(statements ...string) []model.Verdict {
	c := classify.Default()
	out := make([]model.Verdict, len(statements))
	for i, s := range statements {
		out[i] = model.Verdict{Statement: s, Classification: c.Classify(s), Engine: model.EngineRules}
	}
	return out
}

func signalTypes(sum model.Summary) []model.SignalType {
	types := make([]model.SignalType, 0, len(sum.Signals))
	for _, s := range sum.Signals {
		types = append(types, s.Type)
	}
	return types
}

func TestSummarize_Counts(t *testing.T) {
	sum := Summarize(verdictsFor(
		"vaccines contain demons",
		"the earth is flat, I repeat, flat",
		"The sky is blue.",
		"ok",
		"this is an unremarkable day",
	))

	if sum.Total != 5 {
		t.Errorf("Total = %d, want 5", sum.Total)
	}
	if sum.Neutral != 1 || sum.Fallback != 1 {
		t.Errorf("Neutral/Fallback = %d/%d, want 1/1", sum.Neutral, sum.Fallback)
	}

	wantEchelons := map[model.Echelon]int{
		model.EchelonMisusedLie: 2,
		model.EchelonTruth:      2,
		model.EchelonNeutral:    1,
	}
	if diff := cmp.Diff(wantEchelons, sum.ByEchelon); diff != "" {
		t.Errorf("ByEchelon mismatch (-want +got):\n%s", diff)
	}
	if sum.ByLaw[model.Law7] != 1 {
		t.Errorf("expected LAW 7 once, got %d", sum.ByLaw[model.Law7])
	}
}

func TestSummarize_Empty(t *testing.T) {
	sum := Summarize(nil)
	if sum.Total != 0 || len(sum.Signals) != 0 {
		t.Errorf("expected empty summary, got %+v", sum)
	}
	if sum.ByEchelon == nil || sum.ByLaw == nil {
		t.Error("expected non-nil maps")
	}
}

func TestSummarize_Signals(t *testing.T) {
	tests := []struct {
		name       string
		statements []string
		want       []model.SignalType
	}{
		{
			name:       "plain facts",
			statements: []string{"The sky is blue.", "World War II ended in 1945."},
			want:       []model.SignalType{model.SignalUnclassified},
		},
		{
			name:       "lies and repetition",
			statements: []string{"vaccines contain demons", "chemtrails are real, I repeat, real", "The sky is blue."},
			want:       []model.SignalType{model.SignalUnclassified, model.SignalFalsehoodShare, model.SignalRepetition},
		},
		{
			name:       "hedged opinions dominate",
			statements: []string{"I think it is fine", "I think so too", "In my opinion it works", "I feel good about it", "I think we won"},
			want:       []model.SignalType{model.SignalUnclassified, model.SignalHedging, model.SignalDominant},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sum := Summarize(verdictsFor(tt.statements...))
			if diff := cmp.Diff(tt.want, signalTypes(sum)); diff != "" {
				t.Errorf("signals mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestSummarize_UnclassifiedSeverity(t *testing.T) {
	sum := Summarize(verdictsFor("ok", "hi", "an unremarkable day", "another plain day", "The sky is blue."))
	if sum.Signals[0].Type != model.SignalUnclassified || sum.Signals[0].Severity != model.SeverityCritical {
		t.Errorf("expected critical unclassified signal, got %+v", sum.Signals[0])
	}
}
