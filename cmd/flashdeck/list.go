package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var listCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List stored subjects",
	Args:    cobra.NoArgs,
	RunE:    runList,
}

func init() {
	rootCmd.AddCommand(listCmd)
}

func runList(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	app, err := newApplication(ctx, appOptions{})
	if err != nil {
		return err
	}
	defer app.close()

	subjects, err := app.service.ListSubjects(ctx)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if len(subjects) == 0 {
		fmt.Fprintln(out, "No decks yet. Create one with: flashdeck generate <file>")
		return nil
	}
	for _, subject := range subjects {
		fmt.Fprintln(out, subject)
	}
	return nil
}
