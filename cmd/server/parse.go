package main

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/JAChelton/ai-inventory-tracker/internal/domain"
	"github.com/JAChelton/ai-inventory-tracker/internal/session"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

func newParseCmd() *cobra.Command {
	var (
		asJSON   bool
		noColor  bool
		clientID string
	)

	cmd := &cobra.Command{
		Use:   "parse [text]",
		Short: "Parse free text into inventory entries",
		Long: `Parse free text into inventory entries and print the resulting inventory.

With no arguments, lines are read from stdin. Each line replaces the previous draft, the way a
text box does, and a pass runs once input has been quiet for the session debounce interval.`,
		Example: `  inventory-tracker parse "3 dining chairs and an upright piano"
  echo "fish tank" | inventory-tracker parse --json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if noColor {
				color.NoColor = true
			}

			a, err := newApp(cmd.Context(), os.Stderr)
			if err != nil {
				return err
			}
			defer a.Close()

			out := cmd.OutOrStdout()
			printer := func(r session.Report) {
				for _, f := range r.Failures {
					color.New(color.FgRed).Fprintf(cmd.ErrOrStderr(), "✗ %s: %s\n", f.Phrase, f.Error)
				}
			}
			sess := a.newSession(clientID, printer)
			defer sess.Close()

			if len(args) > 0 {
				sess.Process(cmd.Context(), strings.Join(args, " "))
			} else if err := readDrafts(cmd, sess, cmd.InOrStdin()); err != nil {
				return err
			}

			if asJSON {
				return writeJSON(out, sess.Items())
			}
			printInventory(out, sess.Items())
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "print the inventory as JSON")
	cmd.Flags().BoolVar(&noColor, "no-color", false, "disable colored output")
	cmd.Flags().StringVar(&clientID, "client", "cli", "client identity used for rate limiting")
	return cmd
}

// readDrafts feeds stdin lines to the session as successive drafts, then flushes the last one.
func readDrafts(cmd *cobra.Command, sess *session.Session, in io.Reader) error {
	scanner := bufio.NewScanner(in)
	for scanner.Scan() {
		sess.Input(cmd.Context(), scanner.Text())
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("read input: %w", err)
	}
	sess.Flush()
	return nil
}

func writeJSON(w io.Writer, items *session.WorkingSet) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(struct {
		Entries []session.Entry `json:"entries"`
		Totals  session.Totals  `json:"totals"`
	}{
		Entries: items.Entries(),
		Totals:  items.Totals(),
	})
}

func printInventory(w io.Writer, items *session.WorkingSet) {
	entries := items.Entries()
	if len(entries) == 0 {
		color.New(color.FgYellow).Fprintln(w, "No items found")
		return
	}

	catalogColor := color.New(color.FgGreen)
	estimateColor := color.New(color.FgCyan)

	for _, e := range entries {
		c := catalogColor
		detail := "catalog"
		if e.Origin == domain.OriginAIGenerated {
			c = estimateColor
			detail = fmt.Sprintf("%s, %s, confidence %.2f", e.Dimensions, e.Category, e.Confidence)
		}
		c.Fprintf(w, "%3d x %-24s", e.Quantity, e.Name)
		fmt.Fprintf(w, " %7.1f kg  (%s)\n", e.WeightKg, detail)
	}

	totals := items.Totals()
	color.New(color.Bold).Fprintf(w, "%d items, %.1f kg total\n", totals.Items, totals.WeightKg)
}
