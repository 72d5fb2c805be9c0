package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var deleteCmd = &cobra.Command{
	Use:     "delete <subject>",
	Aliases: []string{"rm"},
	Short:   "Delete a stored deck",
	Long: `Delete the deck stored under subject. Review history for the
subject is kept.`,
	Args: cobra.ExactArgs(1),
	RunE: runDelete,
}

func init() {
	rootCmd.AddCommand(deleteCmd)
}

func runDelete(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	app, err := newApplication(ctx, appOptions{})
	if err != nil {
		return err
	}
	defer app.close()

	if err := app.service.DeleteDeck(ctx, args[0]); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Deleted deck %q.\n", args[0])
	return nil
}
