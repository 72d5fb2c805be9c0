package main

import (
	"fmt"

	"github.com/phrazzld/flashdeck/internal/review"
	"github.com/phrazzld/flashdeck/internal/tui"
	"github.com/spf13/cobra"
)

var (
	reviewShuffle bool
	reviewSeed    uint64
)

var reviewCmd = &cobra.Command{
	Use:   "review <subject>",
	Short: "Review a deck interactively",
	Long: `Review the deck stored under subject one card at a time.

Keys: space/enter reveals the answer, y or right marks it correct,
n or left marks it incorrect, s toggles shuffling, r restarts and
q quits. Every completed pass is added to the review history.`,
	Args: cobra.ExactArgs(1),
	RunE: runReview,
}

func init() {
	reviewCmd.Flags().BoolVar(&reviewShuffle, "shuffle", false, "present cards in random order")
	reviewCmd.Flags().Uint64Var(&reviewSeed, "seed", 0, "seed for a reproducible shuffle")
	rootCmd.AddCommand(reviewCmd)
}

func runReview(cmd *cobra.Command, args []string) error {
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
	if deck.Len() == 0 {
		return fmt.Errorf("deck %q has no cards", deck.Subject)
	}

	var opts []review.Option
	if cmd.Flags().Changed("seed") {
		opts = append(opts, review.WithSeed(reviewSeed))
	}

	return tui.Run(ctx, tui.Config{
		Deck:           deck,
		Shuffle:        reviewShuffle,
		Record:         app.service.RecordAttempt,
		RecordMistakes: app.service.RecordMistakes,
		SessionOptions: opts,
	})
}
