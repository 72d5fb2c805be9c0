package main

import (
	"encoding/json"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

var progressJSON bool

var progressCmd = &cobra.Command{
	Use:   "progress [subject]",
	Short: "Show review history",
	Long: `Show completed review passes with their accuracy, oldest first.
Without a subject every subject is included.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runProgress,
}

func init() {
	progressCmd.Flags().BoolVar(&progressJSON, "json", false, "print the summary as JSON")
	rootCmd.AddCommand(progressCmd)
}

func runProgress(cmd *cobra.Command, args []string) error {
	subject := ""
	if len(args) == 1 {
		subject = args[0]
	}

	ctx := cmd.Context()
	app, err := newApplication(ctx, appOptions{})
	if err != nil {
		return err
	}
	defer app.close()

	summary, err := app.service.Progress(ctx, subject)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if progressJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(summary)
	}

	if summary.Count == 0 {
		fmt.Fprintln(out, "No review history yet.")
		return nil
	}

	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "DATE\tSUBJECT\tSCORE\tACCURACY")
	for _, a := range summary.Attempts {
		fmt.Fprintf(tw, "%s\t%s\t%d/%d\t%.2f%%\n",
			a.CompletedAt.Local().Format("2006-01-02 15:04"), a.Subject, a.Correct, a.Total, a.Accuracy)
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	fmt.Fprintf(out, "\n%d attempt(s), average %.2f%%, best %.2f%%\n",
		summary.Count, summary.AverageAccuracy, summary.BestAccuracy)
	return nil
}
