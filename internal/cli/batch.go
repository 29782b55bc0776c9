package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/ppiankov/echelon/internal/model"
	"github.com/ppiankov/echelon/internal/pipeline"
	"github.com/spf13/cobra"
)

var (
	outJSON      string
	outMD        string
	concurrency  int
	batchTimeout time.Duration
)

// batchCmd represents the batch command
var batchCmd = &cobra.Command{
	Use:   "batch <file>",
	Short: "Classify statements from a file in parallel",
	Long: `Batch classifies every statement in a file concurrently:
- One statement per line; blank lines and lines starting with # are skipped
- Results keep the order of the file
- A summary counts Echelons and Laws and flags notable patterns

Example:
  echelon batch statements.txt
  echelon batch statements.txt --workers 8 --json report.json --md report.md`,
	Args: cobra.ExactArgs(1),
	RunE: runBatch,
}

func init() {
	rootCmd.AddCommand(batchCmd)

	batchCmd.Flags().StringVar(&outJSON, "json", "", "output JSON path")
	batchCmd.Flags().StringVar(&outMD, "md", "", "output Markdown path")
	batchCmd.Flags().IntVar(&concurrency, "workers", 0, "number of concurrent workers (default from config)")
	batchCmd.Flags().DurationVar(&batchTimeout, "timeout", 10*time.Minute, "total timeout for batch processing")
}

func runBatch(cmd *cobra.Command, args []string) error {
	file := args[0]

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if concurrency > 0 {
		cfg.Batch.Workers = concurrency
	}

	p, cleanup, err := newPipeline(cfg)
	if err != nil {
		return err
	}
	defer cleanup()

	ctx, cancel := context.WithTimeout(context.Background(), batchTimeout)
	defer cancel()

	if cfg.Output.Verbose {
		fmt.Fprintf(os.Stderr, "⚙️  Classifying %s with %d workers (engine: %s)\n", file, cfg.Batch.Workers, p.Engine())
	}

	report, err := p.ClassifyFile(ctx, file)
	if err != nil {
		return err
	}

	printReport(cmd.OutOrStdout(), report)
	return writeReport(report, outJSON, outMD, cfg.Output.Verbose)
}

// printReport prints one line per verdict followed by the summary
func printReport(w io.Writer, r *model.BatchReport) {
	for i, v := range r.Verdicts {
		c := v.Classification
		fmt.Fprintf(w, "%3d. %s\n     %s / %s", i+1, v.Statement, c.Echelon, c.Subtype)
		if len(c.Laws) > 0 {
			fmt.Fprintf(w, "  [%s]", joinLawIDs(c.Laws))
		}
		fmt.Fprintln(w)
	}
	for _, f := range r.Failures {
		fmt.Fprintf(w, "  ✗  %s\n     %s\n", f.Statement, f.Error)
	}

	fmt.Fprintf(w, "\nTotal: %d statements", r.Summary.Total)
	if len(r.Failures) > 0 {
		fmt.Fprintf(w, ", %d failed", len(r.Failures))
	}
	fmt.Fprintln(w)
	for _, e := range model.Echelons() {
		if n := r.Summary.ByEchelon[e]; n > 0 {
			fmt.Fprintf(w, "  %-18s %d\n", e, n)
		}
	}
	for _, s := range r.Summary.Signals {
		fmt.Fprintf(w, "  [%s] %s\n", s.Severity, s.Description)
	}
}

// writeReport writes the JSON and Markdown renderings when paths are given
func writeReport(r *model.BatchReport, jsonPath, mdPath string, verbose bool) error {
	if jsonPath != "" {
		data, err := pipeline.RenderJSON(r)
		if err != nil {
			return fmt.Errorf("render json: %w", err)
		}
		if err := pipeline.WriteFile(jsonPath, data); err != nil {
			return err
		}
		if verbose {
			fmt.Fprintf(os.Stderr, "✓ Wrote JSON: %s\n", jsonPath)
		}
	}

	if mdPath != "" {
		if err := pipeline.WriteFile(mdPath, []byte(pipeline.RenderMarkdown(r))); err != nil {
			return err
		}
		if verbose {
			fmt.Fprintf(os.Stderr, "✓ Wrote Markdown: %s\n", mdPath)
		}
	}
	return nil
}

func joinLawIDs(laws []model.LawID) string {
	ids := make([]string, len(laws))
	for i, l := range laws {
		ids[i] = string(l)
	}
	return strings.Join(ids, ", ")
}
