package cli

import (
	"context"
	"fmt"

	"github.com/ppiankov/echelon/internal/history"
	"github.com/spf13/cobra"
)

var (
	historyLimit int
	historyJSON  bool
)

// historyCmd represents the history command
var historyCmd = &cobra.Command{
	Use:   "history [id]",
	Short: "Show recorded classifications",
	Long: `Show the most recent classifications from the history database, or a
single verdict by ID. Recording is enabled with history.enabled: true.

Example:
  echelon history --limit 10
  echelon history 6f1c0e9a-... --json`,
	Args: cobra.MaximumNArgs(1),
	RunE: runHistory,
}

func init() {
	rootCmd.AddCommand(historyCmd)
	historyCmd.Flags().IntVar(&historyLimit, "limit", 20, "number of verdicts to show")
	historyCmd.Flags().BoolVar(&historyJSON, "json", false, "print as JSON")
}

func runHistory(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	store, err := history.Open(cfg.History.Path)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	ctx := context.Background()
	out := cmd.OutOrStdout()

	if len(args) == 1 {
		v, err := store.Get(ctx, args[0])
		if err != nil {
			return fmt.Errorf("history %s: %w", args[0], err)
		}
		return printVerdict(out, v, historyJSON, false)
	}

	verdicts, err := store.Recent(ctx, historyLimit)
	if err != nil {
		return err
	}
	if historyJSON {
		return printJSON(out, verdicts)
	}

	total, err := store.Count(ctx)
	if err != nil {
		return err
	}
	for _, v := range verdicts {
		fmt.Fprintf(out, "%s  %s  %s / %s\n    %s\n",
			v.CreatedAt.Local().Format("2006-01-02 15:04"), v.ID, v.Classification.Echelon, v.Classification.Subtype, v.Statement)
	}
	fmt.Fprintf(out, "\nShowing %d of %d recorded verdicts\n", len(verdicts), total)
	return nil
}
