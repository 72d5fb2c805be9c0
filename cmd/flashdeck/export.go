package main

import (
	"fmt"

	"github.com/phrazzld/flashdeck/internal/deckfile"
	"github.com/spf13/cobra"
)

var exportOutput string

var exportCmd = &cobra.Command{
	Use:   "export <subject>",
	Short: "Write a deck as YAML",
	Long: `Write the deck stored under subject as a YAML deck file, to stdout
or to --output. The file can be edited and loaded back with import.`,
	Args: cobra.ExactArgs(1),
	RunE: runExport,
}

func init() {
	exportCmd.Flags().StringVarP(&exportOutput, "output", "o", "", "file to write (default: stdout)")
	rootCmd.AddCommand(exportCmd)
}

func runExport(cmd *cobra.Command, args []string) error {
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

	if exportOutput == "" {
		return deckfile.Encode(cmd.OutOrStdout(), deck)
	}
	if err := deckfile.WriteFile(exportOutput, deck); err != nil {
		return err
	}
	fmt.Fprintf(cmd.ErrOrStderr(), "Wrote %d cards to %s\n", deck.Len(), exportOutput)
	return nil
}
