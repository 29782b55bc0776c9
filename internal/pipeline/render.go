package pipeline

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/ppiankov/echelon/internal/model"
)

// RenderText renders a verdict in the four-line layout used by the form and CLI.
// The Law Alert line is left out when no law fired.
func RenderText(v *model.Verdict) string {
	var b strings.Builder
	c := v.Classification
	fmt.Fprintf(&b, "Echelon: %s\n", c.Echelon)
	fmt.Fprintf(&b, "Subtype: %s\n", c.Subtype)
	fmt.Fprintf(&b, "Explanation: %s\n", c.Explanation)
	if len(c.Laws) > 0 {
		fmt.Fprintf(&b, "Law Alert: %s\n", joinLaws(c.Laws))
	}
	return b.String()
}

// RenderJSON renders any report value as indented JSON
func RenderJSON(v any) ([]byte, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal json: %w", err)
	}
	return append(data, '\n'), nil
}

// RenderMarkdown renders a batch report as a Markdown document
func RenderMarkdown(r *model.BatchReport) string {
	var b strings.Builder

	title := r.Title
	if title == "" {
		title = r.Source
	}
	fmt.Fprintf(&b, "# Echelon Report: %s\n\n", escapeMarkdown(title))
	fmt.Fprintf(&b, "- **Source:** %s\n", r.Source)
	fmt.Fprintf(&b, "- **Generated:** %s\n", r.GeneratedAt.Format("2006-01-02 15:04:05 MST"))
	if r.FetchMeta != nil {
		fmt.Fprintf(&b, "- **HTTP status:** %d\n", r.FetchMeta.StatusCode)
	}
	fmt.Fprintf(&b, "- **Statements:** %d\n\n", r.Summary.Total)

	b.WriteString("## Summary\n\n")
	b.WriteString("| Echelon | Count |\n|---|---|\n")
	for _, e := range model.Echelons() {
		if n := r.Summary.ByEchelon[e]; n > 0 {
			fmt.Fprintf(&b, "| %s | %d |\n", e, n)
		}
	}
	b.WriteString("\n")

	if len(r.Summary.ByLaw) > 0 {
		b.WriteString("| Law | Count |\n|---|---|\n")
		laws := make([]string, 0, len(r.Summary.ByLaw))
		for id := range r.Summary.ByLaw {
			laws = append(laws, string(id))
		}
		sort.Strings(laws)
		for _, id := range laws {
			fmt.Fprintf(&b, "| %s | %d |\n", id, r.Summary.ByLaw[model.LawID(id)])
		}
		b.WriteString("\n")
	}

	if len(r.Summary.Signals) > 0 {
		b.WriteString("## Signals\n\n")
		for _, s := range r.Summary.Signals {
			fmt.Fprintf(&b, "- **%s** (%s): %s\n", s.Type, s.Severity, s.Description)
		}
		b.WriteString("\n")
	}

	b.WriteString("## Statements\n\n")
	b.WriteString("| # | Statement | Echelon | Subtype | Laws |\n|---|---|---|---|---|\n")
	for i, v := range r.Verdicts {
		laws := "None"
		if len(v.Classification.Laws) > 0 {
			laws = joinLaws(v.Classification.Laws)
		}
		fmt.Fprintf(&b, "| %d | %s | %s | %s | %s |\n",
			i+1, escapeMarkdown(v.Statement), v.Classification.Echelon, v.Classification.Subtype, laws)
	}

	if len(r.Failures) > 0 {
		b.WriteString("\n## Failures\n\n")
		for _, f := range r.Failures {
			fmt.Fprintf(&b, "- %s: %s\n", escapeMarkdown(f.Statement), f.Error)
		}
	}

	return b.String()
}

// WriteFile writes rendered output, creating parent directories
func WriteFile(path string, data []byte) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create output dir: %w", err)
		}
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

func joinLaws(laws []model.LawID) string {
	parts := make([]string, len(laws))
	for i, l := range laws {
		parts[i] = string(l)
	}
	return strings.Join(parts, ", ")
}

var markdownEscaper = strings.NewReplacer("|", `\|`, "\n", " ", "\r", "")

func escapeMarkdown(s string) string {
	return markdownEscaper.Replace(s)
}
