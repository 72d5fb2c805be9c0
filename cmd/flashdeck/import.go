package main

import (
	"fmt"
	"time"

	"github.com/phrazzld/flashdeck/internal/deckfile"
	"github.com/phrazzld/flashdeck/internal/domain"
	"github.com/spf13/cobra"
)

var importSubject string

var importCmd = &cobra.Command{
	Use:   "import <file>",
	Short: "Load a YAML deck file",
	Long: `Load a YAML deck file and store it, replacing any deck under the
same subject. Use "-" to read from stdin.`,
	Args: cobra.ExactArgs(1),
	RunE: runImport,
}

func init() {
	importCmd.Flags().StringVarP(&importSubject, "subject", "s", "", "store under this subject instead of the one in the file")
	rootCmd.AddCommand(importCmd)
}

func runImport(cmd *cobra.Command, args []string) error {
	var (
		deck *domain.Deck
		err  error
	)
	if args[0] == "-" {
		deck, err = deckfile.Decode(cmd.InOrStdin(), time.Now)
	} else {
		deck, err = deckfile.ReadFile(args[0])
	}
	if err != nil {
		return err
	}
	if importSubject != "" {
		deck, err = domain.NewDeck(importSubject, deck.Cards, deck.CreatedAt)
		if err != nil {
			return err
		}
	}

	ctx := cmd.Context()
	app, err := newApplication(ctx, appOptions{})
	if err != nil {
		return err
	}
	defer app.close()

	if err := app.service.SaveDeck(ctx, deck); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Imported %d cards into %q.\n", deck.Len(), deck.Subject)
	return nil
}
