// Package curate turns raw model candidates into a validated deck.
//
// Curation is the only path from untrusted model output to domain.Flashcard:
// fields are trimmed, incomplete pairs dropped, repeated questions collapsed
// and the survivors numbered 1..n in the order the chunks were produced.
package curate

import (
	"strings"
	"time"

	"github.com/phrazzld/flashdeck/internal/domain"
)

// Result is the curated deck plus counters describing what was discarded.
type Result struct {
	Deck domain.Deck

	// Requested is the card count asked for.
	Requested int

	// Produced is the number of cards in Deck.
	Produced int

	// Duplicates counts candidates whose question repeated an earlier one.
	Duplicates int

	// Invalid counts candidates with a blank question or answer.
	Invalid int
}

// Short reports whether fewer cards were produced than requested.
func (r Result) Short() bool {
	return r.Produced < r.Requested
}

// Curator curates candidate batches. The zero value stamps decks with
// time.Now.
type Curator struct {
	Now func() time.Time
}

// Curate curates batches with the wall clock.
func Curate(batches [][]domain.Candidate, subject string, requested int) Result {
	return Curator{}.Curate(batches, subject, requested)
}

// Curate flattens batches in order and keeps at most requested cards.
// A requested count of zero or less keeps every valid unique card.
// Identical inputs and clock produce identical decks.
func (c Curator) Curate(batches [][]domain.Candidate, subject string, requested int) Result {
	now := time.Now
	if c.Now != nil {
		now = c.Now
	}

	subject = domain.NormalizeSubject(subject)
	res := Result{Requested: requested}
	seen := make(map[string]struct{})
	cards := []domain.Flashcard{}

	for _, batch := range batches {
		for _, cand := range batch {
			q := strings.TrimSpace(cand.Question)
			a := strings.TrimSpace(cand.Answer)
			if q == "" || a == "" {
				res.Invalid++
				continue
			}

			key := NormalizeQuestion(q)
			if _, dup := seen[key]; dup {
				res.Duplicates++
				continue
			}
			seen[key] = struct{}{}

			if requested > 0 && len(cards) >= requested {
				continue
			}
			cards = append(cards, domain.Flashcard{
				ID:         len(cards) + 1,
				Subject:    subject,
				Question:   q,
				Answer:     a,
				SourceHint: strings.TrimSpace(cand.SourceHint),
			})
		}
	}

	res.Deck = domain.Deck{
		Subject:   subject,
		Cards:     cards,
		CreatedAt: now().UTC(),
	}
	res.Produced = len(cards)
	return res
}

// NormalizeQuestion is the key used to detect duplicate questions: lower
// case with runs of whitespace collapsed to one space.
func NormalizeQuestion(q string) string {
	return strings.Join(strings.Fields(strings.ToLower(q)), " ")
}
