package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/phrazzld/flashdeck/internal/deckfile"
	"github.com/phrazzld/flashdeck/internal/events"
	"github.com/phrazzld/flashdeck/internal/extract"
	"github.com/phrazzld/flashdeck/internal/service"
	"github.com/spf13/cobra"
)

var (
	generateSubject string
	generateText    string
	generateFormat  string
	generateCount   int
	generateNoSave  bool
	generateOutput  string
	generateQuiet   bool
)

var generateCmd = &cobra.Command{
	Use:   "generate [file]",
	Short: "Generate a deck from a document",
	Long: `Generate flashcards from a PDF or text document.

The document is split into chunks that are sent to the language model
in parallel. The resulting cards are de-duplicated, trimmed to --count
and saved under the subject, replacing any deck already stored there.

Pass "-" to read the document from stdin, or --text to use inline text.
The subject defaults to the file name without its extension.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runGenerate,
}

func init() {
	generateCmd.Flags().StringVarP(&generateSubject, "subject", "s", "", "subject to store the deck under")
	generateCmd.Flags().StringVar(&generateText, "text", "", "generate from this text instead of a file")
	generateCmd.Flags().StringVar(&generateFormat, "format", "", "document format: pdf or txt (default: from the file extension)")
	generateCmd.Flags().IntVarP(&generateCount, "count", "n", 0, "maximum number of cards (default: generation.default_count)")
	generateCmd.Flags().BoolVar(&generateNoSave, "no-save", false, "do not store the deck")
	generateCmd.Flags().StringVarP(&generateOutput, "output", "o", "", "also write the deck to this YAML file")
	generateCmd.Flags().BoolVarP(&generateQuiet, "quiet", "q", false, "do not print per-chunk progress")
	rootCmd.AddCommand(generateCmd)
}

func runGenerate(cmd *cobra.Command, args []string) error {
	req, err := buildGenerateRequest(cmd.InOrStdin(), args)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	app, err := newApplication(ctx, appOptions{generation: true})
	if err != nil {
		return err
	}
	defer app.close()

	if !generateQuiet {
		app.emitter.RegisterHandler(progressPrinter(cmd.ErrOrStderr()))
	}

	result, err := app.service.GenerateDeck(ctx, req)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Generated %d of %d requested cards for %q from %d chunk(s)",
		result.Produced, result.Requested, result.Deck.Subject, result.Chunks)
	if dropped := result.Duplicates + result.Invalid; dropped > 0 {
		fmt.Fprintf(out, ", dropped %d duplicate and %d malformed", result.Duplicates, result.Invalid)
	}
	fmt.Fprintln(out)
	if result.Short() {
		fmt.Fprintln(out, "Note: the source did not yield as many cards as requested.")
	}
	if result.Saved {
		fmt.Fprintf(out, "Saved deck %q.\n", result.Deck.Subject)
	}

	if generateOutput != "" {
		if err := deckfile.WriteFile(generateOutput, &result.Deck); err != nil {
			return err
		}
		fmt.Fprintf(out, "Wrote %s\n", generateOutput)
	}
	return nil
}

// buildGenerateRequest turns flags and arguments into a service request.
func buildGenerateRequest(stdin io.Reader, args []string) (service.GenerateRequest, error) {
	req := service.GenerateRequest{
		Subject:        generateSubject,
		RequestedCount: generateCount,
		Save:           !generateNoSave,
	}

	switch {
	case len(args) == 1 && generateText != "":
		return req, errors.New("pass either a file or --text, not both")
	case len(args) == 1:
		path := args[0]
		var (
			data []byte
			err  error
		)
		if path == "-" {
			data, err = io.ReadAll(stdin)
		} else {
			data, err = os.ReadFile(path)
		}
		if err != nil {
			return req, fmt.Errorf("failed to read %s: %w", path, err)
		}

		format, err := documentFormat(path)
		if err != nil {
			return req, err
		}
		req.Source, req.Format = data, format

		if req.Subject == "" && path != "-" {
			base := filepath.Base(path)
			req.Subject = strings.TrimSuffix(base, filepath.Ext(base))
		}
	case generateText != "":
		req.SourceText = generateText
	default:
		return req, errors.New("nothing to generate from: pass a file or --text")
	}

	if strings.TrimSpace(req.Subject) == "" {
		return req, errors.New("--subject is required")
	}
	return req, nil
}

func documentFormat(path string) (extract.Format, error) {
	if generateFormat != "" {
		return extract.ParseFormat(generateFormat)
	}
	if path == "-" {
		return extract.FormatText, nil
	}
	return extract.FormatFromFilename(path)
}

// progressPrinter reports generation events as they arrive. Chunk events
// come from concurrent workers.
func progressPrinter(w io.Writer) events.EventHandler {
	var mu sync.Mutex
	return events.HandlerFunc(func(_ context.Context, event *events.Event) error {
		if event.Type != events.TypeChunkGenerated {
			return nil
		}
		var p events.ChunkGenerated
		if err := event.UnmarshalPayload(&p); err != nil {
			return err
		}
		mu.Lock()
		defer mu.Unlock()
		_, err := fmt.Fprintf(w, "chunk %d/%d: %d candidate(s)\n", p.ChunkIndex+1, p.Chunks, p.Candidates)
		return err
	})
}
