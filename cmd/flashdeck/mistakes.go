package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

var mistakesJSON bool

var mistakesCmd = &cobra.Command{
	Use:   "mistakes [subject]",
	Short: "List cards missed during review",
	Long: `List the cards marked incorrect in past review passes, newest first,
with the correct answer. Without a subject every subject is included.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runMistakes,
}

func init() {
	mistakesCmd.Flags().BoolVar(&mistakesJSON, "json", false, "print the mistakes as JSON")
	rootCmd.AddCommand(mistakesCmd)
}

func runMistakes(cmd *cobra.Command, args []string) error {
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

	mistakes, err := app.service.Mistakes(ctx, subject)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if mistakesJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(mistakes)
	}

	if len(mistakes) == 0 {
		fmt.Fprintln(out, "No mistakes recorded yet.")
		return nil
	}
	for i, m := range mistakes {
		if i > 0 {
			fmt.Fprintln(out)
		}
		fmt.Fprintf(out, "[%s] %s\n", m.Subject, m.RecordedAt.Local().Format("2006-01-02 15:04"))
		fmt.Fprintf(out, "Q: %s\n", m.Question)
		fmt.Fprintf(out, "A: %s\n", m.Answer)
	}
	return nil
}
