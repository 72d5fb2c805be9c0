// Package main is the entry point for the flashdeck CLI.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

// Version is set at build time via ldflags.
var Version = "dev"

var (
	configFile string
	logLevel   string
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		stop()
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "flashdeck",
	Short: "flashdeck - turn documents into flashcard decks",
	Long: `flashdeck generates question/answer flashcards from PDF or text
documents with a language model, stores them as one deck per subject,
and lets you review decks in the terminal while tracking your accuracy.

Configuration is read from flashdeck.yaml (current directory,
$XDG_CONFIG_HOME/flashdeck or ~/.config/flashdeck) and FLASHDECK_*
environment variables.`,
	Version:       Version,
	SilenceUsage:  true,
	SilenceErrors: true,
	Run: func(cmd *cobra.Command, args []string) {
		_ = cmd.Help()
	},
}

func init() {
	rootCmd.CompletionOptions.DisableDefaultCmd = true
	rootCmd.SetVersionTemplate("flashdeck version {{.Version}}\n")

	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "config file (default: search flashdeck.yaml)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "override the configured log level (debug, info, warn, error)")
}
