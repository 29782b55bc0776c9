package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"
)

var (
	scanTimeout time.Duration
	outputDir   string
	userAgent   string
	noRobots    bool
)

// scanCmd represents the scan command
var scanCmd = &cobra.Command{
	Use:   "scan <url> [url...]",
	Short: "Fetch pages and classify their statements",
	Long: `Scan fetches web pages, extracts the sentences of their main content and
classifies each one. robots.txt is honoured unless --no-robots is given.

With one URL the report is printed and optionally written with --json/--md.
With several URLs the pages are scanned in parallel and one JSON and one
Markdown report per page are written to --output-dir.

Example:
  echelon scan https://example.com/article
  echelon scan https://example.com/article --json report.json --md report.md
  echelon scan https://a.example https://b.example --output-dir ./reports`,
	Args: cobra.MinimumNArgs(1),
	RunE: runScan,
}

func init() {
	rootCmd.AddCommand(scanCmd)

	scanCmd.Flags().StringVar(&outJSON, "json", "", "output JSON path (single URL)")
	scanCmd.Flags().StringVar(&outMD, "md", "", "output Markdown path (single URL)")
	scanCmd.Flags().StringVar(&outputDir, "output-dir", "./echelon-reports", "output directory for reports (several URLs)")
	scanCmd.Flags().DurationVar(&scanTimeout, "timeout", 2*time.Minute, "overall scan timeout")
	scanCmd.Flags().StringVar(&userAgent, "ua", "", "HTTP User-Agent (default from config)")
	scanCmd.Flags().BoolVar(&noRobots, "no-robots", false, "ignore robots.txt")
}

func runScan(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if userAgent != "" {
		cfg.HTTP.UserAgent = userAgent
	}
	if noRobots {
		cfg.HTTP.RespectRobots = false
	}

	p, cleanup, err := newPipeline(cfg)
	if err != nil {
		return err
	}
	defer cleanup()

	ctx, cancel := context.WithTimeout(context.Background(), scanTimeout)
	defer cancel()

	if len(args) == 1 {
		if cfg.Output.Verbose {
			fmt.Fprintf(os.Stderr, "Scanning: %s\n", args[0])
		}
		report, err := p.ScanURL(ctx, args[0])
		if err != nil {
			return fmt.Errorf("scan failed: %w", err)
		}
		printReport(cmd.OutOrStdout(), report)
		return writeReport(report, outJSON, outMD, cfg.Output.Verbose)
	}

	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}

	fmt.Fprintf(os.Stderr, "⚙️  Scanning %d URLs with %d workers...\n", len(args), cfg.Batch.Workers)

	failures := 0
	for _, result := range p.ScanURLs(ctx, args) {
		if result.Error != nil {
			failures++
			fmt.Fprintf(os.Stderr, "✗ %s: %v\n", result.URL, result.Error)
			continue
		}

		slug := sanitizeFilename(result.URL)
		jsonPath := filepath.Join(outputDir, slug+".json")
		mdPath := filepath.Join(outputDir, slug+".md")
		if err := writeReport(result.Report, jsonPath, mdPath, false); err != nil {
			failures++
			fmt.Fprintf(os.Stderr, "✗ %s: %v\n", result.URL, err)
			continue
		}

		fmt.Fprintf(cmd.OutOrStdout(), "✓ %s (%d statements) → %s\n", result.URL, result.Report.Summary.Total, mdPath)
	}

	if failures > 0 {
		return fmt.Errorf("%d of %d scans failed", failures, len(args))
	}
	return nil
}

var filenameReplacer = strings.NewReplacer(
	"https://", "",
	"http://", "",
	"/", "_",
	"\\", "_",
	":", "_",
	"*", "_",
	"?", "_",
	"\"", "_",
	"<", "_",
	">", "_",
	"|", "_",
	" ", "-",
)

// sanitizeFilename turns a URL into a safe file name
func sanitizeFilename(s string) string {
	s = strings.Trim(filenameReplacer.Replace(s), "_")
	if s == "" {
		s = "report"
	}

	// Limit length
	if len(s) > 100 {
		s = s[:100]
	}

	return s
}
