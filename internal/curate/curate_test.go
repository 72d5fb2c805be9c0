package curate

import (
	"fmt"
	"testing"
	"time"

	"github.com/phrazzld/flashdeck/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fixedTime = time.Date(2025, 3, 14, 9, 26, 53, 0, time.UTC)

func fixedCurator() Curator {
	return Curator{Now: func() time.Time { return fixedTime }}
}

func candidates(n int, prefix string) []domain.Candidate {
	out := make([]domain.Candidate, n)
	for i := range out {
		out[i] = domain.Candidate{
			Question: fmt.Sprintf("%s question %d?", prefix, i+1),
			Answer:   fmt.Sprintf("%s answer %d", prefix, i+1),
		}
	}
	return out
}

func TestCurate_TruncatesInOrder(t *testing.T) {
	t.Parallel()

	batches := [][]domain.Candidate{candidates(5, "first"), candidates(3, "second")}
	res := fixedCurator().Curate(batches, "Biology", 5)

	require.Len(t, res.Deck.Cards, 5)
	assert.Equal(t, 5, res.Produced)
	assert.False(t, res.Short())
	for i, c := range res.Deck.Cards {
		assert.Equal(t, i+1, c.ID)
		assert.Equal(t, fmt.Sprintf("first question %d?", i+1), c.Question)
		assert.Equal(t, "Biology", c.Subject)
	}
}

func TestCurate_SpansBatches(t *testing.T) {
	t.Parallel()

	batches := [][]domain.Candidate{candidates(2, "a"), candidates(2, "b")}
	res := fixedCurator().Curate(batches, "Mixed", 3)

	require.Len(t, res.Deck.Cards, 3)
	assert.Equal(t, "a question 1?", res.Deck.Cards[0].Question)
	assert.Equal(t, "a question 2?", res.Deck.Cards[1].Question)
	assert.Equal(t, "b question 1?", res.Deck.Cards[2].Question)
}

func TestCurate_UnderSupplyIsNotAnError(t *testing.T) {
	t.Parallel()

	res := fixedCurator().Curate([][]domain.Candidate{candidates(3, "x")}, "Chem", 10)

	assert.Equal(t, 3, res.Produced)
	assert.Equal(t, 10, res.Requested)
	assert.True(t, res.Short())
	assert.Len(t, res.Deck.Cards, 3)
}

func TestCurate_DropsInvalidAndDuplicates(t *testing.T) {
	t.Parallel()

	batches := [][]domain.Candidate{
		{
			{Question: "  What is ATP?  ", Answer: " Energy currency ", SourceHint: " ATP is… "},
			{Question: "   ", Answer: "orphan"},
			{Question: "No answer", Answer: ""},
		},
		{
			{Question: "what   IS atp?", Answer: "A later duplicate"},
			{Question: "What is DNA?", Answer: "Genetic material"},
		},
	}

	res := fixedCurator().Curate(batches, "  Bio  ", 10)

	assert.Equal(t, 2, res.Invalid)
	assert.Equal(t, 1, res.Duplicates)
	require.Len(t, res.Deck.Cards, 2)
	assert.Equal(t, domain.Flashcard{
		ID: 1, Subject: "Bio", Question: "What is ATP?", Answer: "Energy currency", SourceHint: "ATP is…",
	}, res.Deck.Cards[0])
	assert.Equal(t, "What is DNA?", res.Deck.Cards[1].Question)
	assert.Equal(t, 2, res.Deck.Cards[1].ID)
	assert.Equal(t, "Bio", res.Deck.Subject)
	assert.NoError(t, res.Deck.Validate())
}

func TestCurate_Idempotent(t *testing.T) {
	t.Parallel()

	batches := [][]domain.Candidate{candidates(4, "p"), {{Question: "P QUESTION 1?", Answer: "dup"}}}

	first := fixedCurator().Curate(batches, "Physics", 3)
	second := fixedCurator().Curate(batches, "Physics", 3)

	assert.Equal(t, first, second)
	assert.Equal(t, fixedTime, first.Deck.CreatedAt)
}

func TestCurate_Empty(t *testing.T) {
	t.Parallel()

	res := Curate(nil, "Empty", 5)

	assert.NotNil(t, res.Deck.Cards)
	assert.Empty(t, res.Deck.Cards)
	assert.Equal(t, 0, res.Produced)
	assert.True(t, res.Short())
	assert.False(t, res.Deck.CreatedAt.IsZero())
}

func TestNormalizeQuestion(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "what is a cell?", NormalizeQuestion("  What\tis   a\nCELL?  "))
}
