// Package segment splits extracted text into bounded-size chunks for
// generation calls. Paragraph boundaries are preferred, then sentence
// boundaries, then whitespace; a single token longer than the limit is
// emitted on its own and flagged as oversized.
package segment

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/phrazzld/flashdeck/internal/domain"
)

// ErrInvalidChunkSize is returned when the chunk limit is not positive.
var ErrInvalidChunkSize = errors.New("max chunk size must be positive")

// EmptyInputError reports that there was nothing to segment.
type EmptyInputError struct {
	// Length is the untrimmed input length in bytes.
	Length int
}

// Error implements the error interface for EmptyInputError.
func (e *EmptyInputError) Error() string {
	return fmt.Sprintf("nothing to segment: input is empty after trimming (%d bytes)", e.Length)
}

// Is lets errors.Is match domain.ErrEmptyInput.
func (e *EmptyInputError) Is(target error) bool {
	return target == domain.ErrEmptyInput
}

// Chunk is one bounded slice of source text.
type Chunk struct {
	// Index is the zero-based position of the chunk in the document.
	Index int
	Text  string
	// Oversized marks a chunk holding a single token longer than the limit.
	Oversized bool
}

const (
	paragraphSep = "\n\n"
	wordSep      = " "
)

var (
	paragraphBreak = regexp.MustCompile(`\n[ \t\f\v]*\n\s*`)
	sentenceEnd    = regexp.MustCompile(`[.!?]+["'”’)\]]*\s+`)
)

// piece is an indivisible unit awaiting packing, with the separator used to
// join it to the previous piece when both share a chunk.
type piece struct {
	text      string
	sep       string
	oversized bool
}

// Segment splits text into chunks of at most maxChunkChars runes.
func Segment(text string, maxChunkChars int) ([]Chunk, error) {
	if maxChunkChars <= 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidChunkSize, maxChunkChars)
	}

	text = strings.ReplaceAll(text, "\r\n", "\n")
	if strings.TrimSpace(text) == "" {
		return nil, &EmptyInputError{Length: len(text)}
	}

	var pieces []piece
	for _, para := range paragraphBreak.Split(text, -1) {
		para = strings.TrimSpace(para)
		if para == "" {
			continue
		}
		pieces = append(pieces, splitUnit(para, paragraphSep, maxChunkChars)...)
	}

	return pack(pieces, maxChunkChars), nil
}

// splitUnit returns paragraph as one piece if it fits, else its sentences,
// recursing to words for sentences that still do not fit.
func splitUnit(para, sep string, max int) []piece {
	if runeLen(para) <= max {
		return []piece{{text: para, sep: sep}}
	}

	var out []piece
	for i, sentence := range splitSentences(para) {
		s := sep
		if i > 0 {
			s = wordSep
		}
		if runeLen(sentence) <= max {
			out = append(out, piece{text: sentence, sep: s})
			continue
		}
		for j, word := range strings.Fields(sentence) {
			ws := wordSep
			if j == 0 {
				ws = s
			}
			out = append(out, piece{text: word, sep: ws, oversized: runeLen(word) > max})
		}
	}
	return out
}

// splitSentences cuts after terminal punctuation followed by whitespace.
func splitSentences(para string) []string {
	var out []string
	start := 0
	for _, loc := range sentenceEnd.FindAllStringIndex(para, -1) {
		if s := strings.TrimSpace(para[start:loc[1]]); s != "" {
			out = append(out, s)
		}
		start = loc[1]
	}
	if s := strings.TrimSpace(para[start:]); s != "" {
		out = append(out, s)
	}
	return out
}

// pack greedily fills chunks with pieces in order.
func pack(pieces []piece, max int) []Chunk {
	var (
		chunks []Chunk
		cur    strings.Builder
		curLen int
	)

	flush := func() {
		if curLen == 0 {
			return
		}
		chunks = append(chunks, Chunk{Index: len(chunks), Text: cur.String()})
		cur.Reset()
		curLen = 0
	}

	for _, p := range pieces {
		n := runeLen(p.text)
		if p.oversized {
			flush()
			chunks = append(chunks, Chunk{Index: len(chunks), Text: p.text, Oversized: true})
			continue
		}
		if curLen > 0 && curLen+runeLen(p.sep)+n > max {
			flush()
		}
		if curLen > 0 {
			cur.WriteString(p.sep)
			curLen += runeLen(p.sep)
		}
		cur.WriteString(p.text)
		curLen += n
	}
	flush()

	return chunks
}

// Texts returns the chunk texts in order.
func Texts(chunks []Chunk) []string {
	out := make([]string, len(chunks))
	for i, c := range chunks {
		out[i] = c.Text
	}
	return out
}

func runeLen(s string) int {
	return utf8.RuneCountInString(s)
}
