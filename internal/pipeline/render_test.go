package pipeline

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/ppiankov/echelon/internal/model"
)

func sampleVerdict(laws []model.LawID) *model.Verdict {
	return &model.Verdict{
		ID:        "v1",
		Statement: "I think the earth is flat | really",
		Classification: model.Classification{
			Echelon:     model.EchelonMisusedLie,
			Subtype:     model.SubtypeConspiracyTheory,
			Explanation: "Presents a debunked conspiracy narrative as established fact.",
			Laws:        laws,
		},
		Engine:    model.EngineRules,
		CreatedAt: time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
	}
}

func TestRenderText(t *testing.T) {
	got := RenderText(sampleVerdict([]model.LawID{model.Law3, model.Law5}))
	want := "Echelon: Misused Lie\n" +
		"Subtype: Conspiracy Theory\n" +
		"Explanation: Presents a debunked conspiracy narrative as established fact.\n" +
		"Law Alert: LAW 3, LAW 5\n"
	if got != want {
		t.Errorf("RenderText mismatch:\ngot:\n%s\nwant:\n%s", got, want)
	}
}

func TestRenderText_NoLaws(t *testing.T) {
	got := RenderText(sampleVerdict([]model.LawID{}))
	if strings.Contains(got, "Law Alert") {
		t.Errorf("Law Alert line should be omitted:\n%s", got)
	}
	if strings.Count(got, "\n") != 3 {
		t.Errorf("expected three lines, got:\n%s", got)
	}
}

func TestRenderJSON_EmptyLaws(t *testing.T) {
	data, err := RenderJSON(sampleVerdict([]model.LawID{}))
	if err != nil {
		t.Fatalf("RenderJSON failed: %v", err)
	}
	if !strings.Contains(string(data), `"laws": []`) {
		t.Errorf("empty laws should render as []:\n%s", data)
	}

	var back model.Verdict
	if err := json.Unmarshal(data, &back); err != nil {
		t.Fatalf("output is not valid JSON: %v", err)
	}
}

func TestRenderMarkdown(t *testing.T) {
	report := &model.BatchReport{
		Source:      "https://example.com/page",
		Title:       "Example",
		GeneratedAt: time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
		Verdicts: []model.Verdict{
			*sampleVerdict([]model.LawID{}),
			*sampleVerdict([]model.LawID{model.Law3}),
		},
		Failures: []model.Failure{{Statement: "lost", Error: "timeout"}},
		Summary: model.Summary{
			Total:     2,
			ByEchelon: map[model.Echelon]int{model.EchelonMisusedLie: 2},
			ByLaw:     map[model.LawID]int{model.Law3: 1},
			Signals: []model.Signal{
				{Type: model.SignalFalsehoodShare, Severity: model.SeverityCritical, Description: "all false"},
			},
		},
	}

	md := RenderMarkdown(report)
	for _, want := range []string{
		"# Echelon Report: Example",
		"| Misused Lie | 2 |",
		"| LAW 3 | 1 |",
		"**falsehood_share** (critical)",
		`I think the earth is flat \| really`,
		"| None |",
		"| LAW 3 |",
		"## Failures",
	} {
		if !strings.Contains(md, want) {
			t.Errorf("markdown missing %q:\n%s", want, md)
		}
	}
}

func TestWriteFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "report.md")
	if err := WriteFile(path, []byte("# hi\n")); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "# hi\n" {
		t.Errorf("unexpected content: %q", data)
	}
}
