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

var classifyJSON bool

// classifyCmd represents the classify command
var classifyCmd = &cobra.Command{
	Use:   "classify [statement...]",
	Short: "Classify a single statement",
	Long: `Classify one statement and print its Echelon, Subtype, Explanation and Law Alert.

The statement is taken from the arguments, joined with spaces, or from stdin
when no arguments are given.

Example:
  echelon classify "In my opinion, the earth is flat"
  echo "Vaccines contain demons" | echelon classify --json
  echelon classify --engine llm --provider openai "The moon landing was faked"`,
	RunE: runClassify,
}

func init() {
	rootCmd.AddCommand(classifyCmd)
	classifyCmd.Flags().BoolVar(&classifyJSON, "json", false, "print the verdict as JSON")
}

func runClassify(cmd *cobra.Command, args []string) error {
	statement, err := readStatement(args, cmd.InOrStdin())
	if err != nil {
		return err
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	p, cleanup, err := newPipeline(cfg)
	if err != nil {
		return err
	}
	defer cleanup()

	ctx, cancel := context.WithTimeout(context.Background(), requestTimeout(cfg))
	defer cancel()

	v, err := p.Classify(ctx, statement)
	if err != nil {
		return fmt.Errorf("classify: %w", err)
	}

	return printVerdict(cmd.OutOrStdout(), v, classifyJSON, cfg.Output.Verbose)
}

// readStatement joins the arguments, or reads all of stdin when there are none
func readStatement(args []string, stdin io.Reader) (string, error) {
	if len(args) > 0 {
		return strings.Join(args, " "), nil
	}
	data, err := io.ReadAll(stdin)
	if err != nil {
		return "", fmt.Errorf("read stdin: %w", err)
	}
	return strings.TrimSpace(string(data)), nil
}

func printVerdict(w io.Writer, v *model.Verdict, asJSON, verbose bool) error {
	if asJSON {
		return printJSON(w, v)
	}

	fmt.Fprint(w, pipeline.RenderText(v))
	for _, warning := range v.Warnings {
		fmt.Fprintf(os.Stderr, "⚠️  %s\n", warning)
	}
	if verbose {
		fmt.Fprintf(os.Stderr, "Engine: %s", v.Engine)
		if v.Provider != "" {
			fmt.Fprintf(os.Stderr, " (%s/%s, cached: %v)", v.Provider, v.Model, v.Cached)
		}
		if v.Classification.RuleID != "" {
			fmt.Fprintf(os.Stderr, ", rule: %s", v.Classification.RuleID)
		}
		fmt.Fprintln(os.Stderr)
	}
	return nil
}

func printJSON(w io.Writer, v any) error {
	data, err := pipeline.RenderJSON(v)
	if err != nil {
		return err
	}
	_, err = w.Write(data)
	return err
}

// requestTimeout bounds a single classification
func requestTimeout(cfg *model.Config) time.Duration {
	if cfg.LLM.Timeout > 0 {
		return time.Duration(cfg.LLM.Timeout)*time.Second + 5*time.Second
	}
	return time.Minute
}
