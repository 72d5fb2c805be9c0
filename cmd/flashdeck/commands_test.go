package main

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/phrazzld/flashdeck/internal/config"
	"github.com/phrazzld/flashdeck/internal/domain"
	"github.com/phrazzld/flashdeck/internal/llm"
	"github.com/phrazzld/flashdeck/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const biologyDeck = `subject: Biology
created_at: 2025-03-01T12:00:00Z
cards:
  - question: What is ATP?
    answer: The cell's energy currency
  - question: Name two organelles.
    answer: Mitochondria and ribosomes
`

// setupCLI points configuration at a fresh SQLite file in a temp directory
// and resets command flags.
func setupCLI(t *testing.T) string {
	t.Helper()

	dir := t.TempDir()
	t.Chdir(dir)
	t.Setenv("XDG_CONFIG_HOME", dir)
	t.Setenv("XDG_DATA_HOME", dir)
	t.Setenv("HOME", dir)
	t.Setenv("GEMINI_API_KEY", "")
	t.Setenv("OPENAI_API_KEY", "")
	t.Setenv("FLASHDECK_LLM_API_KEY", "")
	t.Setenv("FLASHDECK_STORAGE_PATH", filepath.Join(dir, "decks.db"))
	t.Setenv("FLASHDECK_SERVER_LOG_LEVEL", "error")

	resetFlags()
	t.Cleanup(resetFlags)
	return dir
}

func resetFlags() {
	configFile, logLevel = "", ""
	generateSubject, generateText, generateFormat, generateOutput = "", "", "", ""
	generateCount, generateNoSave, generateQuiet = 0, false, false
	showAnswers = false
	exportOutput = ""
	importSubject = ""
	progressJSON = false
	mistakesJSON = false
	reviewShuffle, reviewSeed = false, 0
	servePort = 0
	newCompleter = providerCompleter
}

// execute runs the root command and returns what it wrote to stdout.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()

	var out, errOut bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&errOut)
	rootCmd.SetIn(strings.NewReader(""))
	rootCmd.SetArgs(args)
	err := rootCmd.ExecuteContext(context.Background())
	return out.String(), err
}

func importBiology(t *testing.T, dir string) {
	t.Helper()

	path := filepath.Join(dir, "biology.yaml")
	require.NoError(t, os.WriteFile(path, []byte(biologyDeck), 0o600))
	out, err := execute(t, "import", path)
	require.NoError(t, err)
	assert.Contains(t, out, `Imported 2 cards into "Biology".`)
}

func TestListEmpty(t *testing.T) {
	setupCLI(t)

	out, err := execute(t, "list")
	require.NoError(t, err)
	assert.Contains(t, out, "No decks yet")
}

func TestImportListShow(t *testing.T) {
	dir := setupCLI(t)
	importBiology(t, dir)

	out, err := execute(t, "list")
	require.NoError(t, err)
	assert.Equal(t, "Biology\n", out)

	out, err = execute(t, "show", "Biology")
	require.NoError(t, err)
	assert.Contains(t, out, "Biology (2 cards")
	assert.Contains(t, out, "1. What is ATP?")
	assert.NotContains(t, out, "energy currency")

	out, err = execute(t, "show", "--answers", "Biology")
	require.NoError(t, err)
	assert.Contains(t, out, "-> The cell's energy currency")
}

func TestImportWithSubjectOverride(t *testing.T) {
	dir := setupCLI(t)

	path := filepath.Join(dir, "deck.yaml")
	require.NoError(t, os.WriteFile(path, []byte(biologyDeck), 0o600))
	out, err := execute(t, "import", "--subject", "Cells", path)
	require.NoError(t, err)
	assert.Contains(t, out, `into "Cells"`)

	out, err = execute(t, "list")
	require.NoError(t, err)
	assert.Equal(t, "Cells\n", out)
}

func TestExportRoundTrip(t *testing.T) {
	dir := setupCLI(t)
	importBiology(t, dir)

	out, err := execute(t, "export", "Biology")
	require.NoError(t, err)
	assert.Equal(t, biologyDeck, out)

	path := filepath.Join(dir, "out", "biology.yaml")
	_, err = execute(t, "export", "-o", path, "Biology")
	require.NoError(t, err)
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, biologyDeck, string(data))
}

func TestShowMissingDeck(t *testing.T) {
	setupCLI(t)

	_, err := execute(t, "show", "nothing")
	require.Error(t, err)
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestDeleteCommand(t *testing.T) {
	dir := setupCLI(t)
	importBiology(t, dir)

	out, err := execute(t, "delete", "Biology")
	require.NoError(t, err)
	assert.Contains(t, out, `Deleted deck "Biology".`)

	out, err = execute(t, "list")
	require.NoError(t, err)
	assert.Contains(t, out, "No decks yet")
}

func TestProgressCommand(t *testing.T) {
	setupCLI(t)

	out, err := execute(t, "progress")
	require.NoError(t, err)
	assert.Contains(t, out, "No review history yet.")

	ctx := context.Background()
	app, err := newApplication(ctx, appOptions{logTo: io.Discard})
	require.NoError(t, err)
	require.NoError(t, app.service.RecordAttempt(ctx, domain.NewReviewAttempt("Biology", 3, 1, time.Now())))
	app.close()

	out, err = execute(t, "progress", "Biology")
	require.NoError(t, err)
	assert.Contains(t, out, "3/4")
	assert.Contains(t, out, "1 attempt(s), average 75.00%, best 75.00%")

	out, err = execute(t, "progress", "--json")
	require.NoError(t, err)
	assert.Contains(t, out, `"average_accuracy": 75`)
}

func TestMistakesCommand(t *testing.T) {
	setupCLI(t)

	out, err := execute(t, "mistakes")
	require.NoError(t, err)
	assert.Contains(t, out, "No mistakes recorded yet.")

	ctx := context.Background()
	app, err := newApplication(ctx, appOptions{logTo: io.Discard})
	require.NoError(t, err)
	missed := domain.Flashcard{ID: 2, Question: "Name two organelles.", Answer: "Mitochondria and ribosomes"}
	require.NoError(t, app.service.RecordMistakes(ctx, []domain.Mistake{domain.NewMistake("Biology", missed, time.Now())}))
	app.close()

	out, err = execute(t, "mistakes", "Biology")
	require.NoError(t, err)
	assert.Contains(t, out, "[Biology]")
	assert.Contains(t, out, "Q: Name two organelles.")
	assert.Contains(t, out, "A: Mitochondria and ribosomes")

	out, err = execute(t, "mistakes", "Chemistry")
	require.NoError(t, err)
	assert.Contains(t, out, "No mistakes recorded yet.")

	out, err = execute(t, "mistakes", "--json")
	require.NoError(t, err)
	assert.Contains(t, out, `"correct_answer": "Mitochondria and ribosomes"`)
}

func TestGenerateCommand(t *testing.T) {
	dir := setupCLI(t)
	t.Setenv("GEMINI_API_KEY", "test-key")

	var prompts int
	newCompleter = func(context.Context, *config.Config, *slog.Logger) (llm.Completer, error) {
		return llm.CompleterFunc(func(_ context.Context, prompt string, _ llm.Options) (string, error) {
			prompts++
			return "Q: What is Go?\nA: A programming language.\n\nQ: What is a goroutine?\nA: A lightweight thread.", nil
		}), nil
	}

	outPath := filepath.Join(dir, "go.yaml")
	out, err := execute(t, "generate", "--text", "Go is a language with goroutines.", "--subject", "Go", "--count", "5", "-o", outPath)
	require.NoError(t, err)
	assert.Equal(t, 1, prompts)
	assert.Contains(t, out, `Generated 2 of 5 requested cards for "Go" from 1 chunk(s)`)
	assert.Contains(t, out, "did not yield as many cards")
	assert.Contains(t, out, `Saved deck "Go".`)
	assert.FileExists(t, outPath)

	out, err = execute(t, "list")
	require.NoError(t, err)
	assert.Equal(t, "Go\n", out)
}

func TestGenerateFromFileUsesFileName(t *testing.T) {
	dir := setupCLI(t)
	t.Setenv("GEMINI_API_KEY", "test-key")
	newCompleter = func(context.Context, *config.Config, *slog.Logger) (llm.Completer, error) {
		return llm.CompleterFunc(func(context.Context, string, llm.Options) (string, error) {
			return `[{"question": "What is a cell?", "answer": "The unit of life."}]`, nil
		}), nil
	}

	path := filepath.Join(dir, "cells.txt")
	require.NoError(t, os.WriteFile(path, []byte("Cells are the unit of life."), 0o600))

	out, err := execute(t, "generate", "--no-save", path)
	require.NoError(t, err)
	assert.Contains(t, out, `for "cells"`)
	assert.NotContains(t, out, "Saved deck")

	out, err = execute(t, "list")
	require.NoError(t, err)
	assert.Contains(t, out, "No decks yet")
}

func TestGenerateArgumentErrors(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want string
	}{
		{"no source", []string{"generate"}, "nothing to generate from"},
		{"file and text", []string{"generate", "--text", "x", "notes.txt"}, "not both"},
		{"text without subject", []string{"generate", "--text", "x"}, "--subject is required"},
		{"missing file", []string{"generate", "missing.txt"}, "failed to read missing.txt"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			setupCLI(t)
			_, err := execute(t, tt.args...)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestGenerateRequiresCredentials(t *testing.T) {
	setupCLI(t)

	_, err := execute(t, "generate", "--text", "x", "--subject", "s")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "GEMINI_API_KEY")
}

func TestMigrateCommand(t *testing.T) {
	setupCLI(t)

	_, err := execute(t, "migrate")
	require.NoError(t, err)
	_, err = execute(t, "migrate", "version")
	require.NoError(t, err)

	_, err = execute(t, "migrate", "sideways")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown migration command")
}

func TestInvalidLogLevelFlag(t *testing.T) {
	setupCLI(t)

	_, err := execute(t, "--log-level", "loud", "list")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid --log-level")
}

func TestServeHTTPShutsDownOnCancel(t *testing.T) {
	app := &application{logger: slog.New(slog.NewTextHandler(io.Discard, nil))}

	listener, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	handler := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- app.serveHTTP(ctx, listener, handler) }()

	resp, err := http.Get("http://" + listener.Addr().String() + "/")
	require.NoError(t, err)
	_ = resp.Body.Close()
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not shut down")
	}
}
