package cli

import (
	"fmt"
	"strings"

	"github.com/ppiankov/echelon/internal/classify"
	"github.com/ppiankov/echelon/internal/law"
	"github.com/ppiankov/echelon/internal/model"
	"github.com/spf13/cobra"
)

// lawsCmd represents the laws command
var lawsCmd = &cobra.Command{
	Use:   "laws",
	Short: "List the Truth Echelon Laws and their cues",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		for _, l := range law.Default().Laws() {
			fmt.Fprintf(out, "%s  %s\n", l.ID, l.Name)
			fmt.Fprintf(out, "       %s\n", l.Description)
			if len(l.Cues) > 0 {
				fmt.Fprintf(out, "       cues: %s\n", strings.Join(l.Cues, ", "))
			}
		}
		return nil
	},
}

// rulesCmd represents the rules command
var rulesCmd = &cobra.Command{
	Use:   "rules",
	Short: "List the classification rules in evaluation order",
	Long: `List the rule table. Rules are tried in order and the first rule with a
matching trigger decides the Echelon and Subtype. Statements shorter than the
minimum token count are Neutral; anything else falls through to the fallback.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		for i, r := range classify.Default().Rules() {
			fmt.Fprintf(out, "%2d. %-16s %s / %s\n", i+1, r.ID, r.Echelon, r.Subtype)
			if len(r.Triggers) > 0 {
				fmt.Fprintf(out, "    triggers: %s\n", strings.Join(r.Triggers, ", "))
			}
		}

		fmt.Fprintln(out)
		fmt.Fprintf(out, "%d echelons:", len(model.Echelons()))
		for _, e := range model.Echelons() {
			fmt.Fprintf(out, " %s;", e)
		}
		fmt.Fprintln(out)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(lawsCmd)
	rootCmd.AddCommand(rulesCmd)
}
