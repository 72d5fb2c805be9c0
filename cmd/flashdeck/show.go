package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var showAnswers bool

var showCmd = &cobra.Command{
	Use:   "show <subject>",
	Short: "Print the cards of a deck",
	Args:  cobra.ExactArgs(1),
	RunE:  runShow,
}

func init() {
	showCmd.Flags().BoolVarP(&showAnswers, "answers", "a", false, "include answers")
	rootCmd.AddCommand(showCmd)
}

func runShow(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	app, err := newApplication(ctx, appOptions{})
	if err != nil {
		return err
	}
	defer app.close()

	deck, err := app.service.LoadDeck(ctx, args[0])
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "%s (%d cards, created %s)\n", deck.Subject, deck.Len(), deck.CreatedAt.Local().Format("2006-01-02 15:04"))
	for _, card := range deck.Cards {
		fmt.Fprintf(out, "\n%3d. %s\n", card.ID, card.Question)
		if showAnswers {
			fmt.Fprintf(out, "     -> %s\n", card.Answer)
		}
	}
	return nil
}
