// Package deckfile reads and writes decks as YAML documents:
//
//	subject: Biology
//	created_at: 2025-03-01T12:00:00Z
//	cards:
//	  - question: What is ATP?
//	    answer: The cell's energy currency
//	    source_hint: ATP is ...
//
// Multi-line text is written in block scalar style. Card IDs are not stored;
// they are the 1-based position in the file.
package deckfile

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/phrazzld/flashdeck/internal/domain"
	"gopkg.in/yaml.v3"
)

// ErrInvalidDeckFile is returned for documents that do not describe a valid deck.
var ErrInvalidDeckFile = errors.New("invalid deck file")

type fileCard struct {
	Question   string `yaml:"question"`
	Answer     string `yaml:"answer"`
	SourceHint string `yaml:"source_hint,omitempty"`
}

type fileDeck struct {
	Subject   string     `yaml:"subject"`
	CreatedAt time.Time  `yaml:"created_at"`
	Cards     []fileCard `yaml:"cards"`
}

// Decode parses a deck document. A missing created_at is filled with now.
func Decode(r io.Reader, now func() time.Time) (*domain.Deck, error) {
	var fd fileDeck
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&fd); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("%w: document is empty", ErrInvalidDeckFile)
		}
		return nil, fmt.Errorf("%w: %w", ErrInvalidDeckFile, err)
	}

	cards := make([]domain.Flashcard, len(fd.Cards))
	for i, c := range fd.Cards {
		cards[i] = domain.Flashcard{
			ID:         i + 1,
			Question:   strings.TrimSpace(c.Question),
			Answer:     strings.TrimSpace(c.Answer),
			SourceHint: strings.TrimSpace(c.SourceHint),
		}
	}

	created := fd.CreatedAt
	if created.IsZero() {
		if now == nil {
			now = time.Now
		}
		created = now()
	}

	deck, err := domain.NewDeck(fd.Subject, cards, created)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidDeckFile, err)
	}
	return deck, nil
}

// Encode writes deck as a YAML document.
func Encode(w io.Writer, deck *domain.Deck) error {
	if deck == nil {
		return fmt.Errorf("%w: deck cannot be nil", ErrInvalidDeckFile)
	}

	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(buildDeckNode(deck)); err != nil {
		return fmt.Errorf("failed to encode deck %q: %w", deck.Subject, err)
	}
	return enc.Close()
}

// ReadFile loads a deck document from path.
func ReadFile(path string) (*domain.Deck, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open deck file %s: %w", path, err)
	}
	defer f.Close()

	deck, err := Decode(f, time.Now)
	if err != nil {
		return nil, fmt.Errorf("failed to parse deck file %s: %w", path, err)
	}
	return deck, nil
}

// WriteFile saves deck to path.
func WriteFile(path string, deck *domain.Deck) error {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("failed to create deck file %s: %w", path, err)
	}
	if err := Encode(f, deck); err != nil {
		_ = f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("failed to write deck file %s: %w", path, err)
	}
	return nil
}

func buildDeckNode(deck *domain.Deck) *yaml.Node {
	doc := &yaml.Node{Kind: yaml.MappingNode}
	addStringField(doc, "subject", deck.Subject)
	doc.Content = append(doc.Content,
		&yaml.Node{Kind: yaml.ScalarNode, Value: "created_at"},
		&yaml.Node{Kind: yaml.ScalarNode, Value: deck.CreatedAt.UTC().Format(time.RFC3339Nano)},
	)

	cards := &yaml.Node{Kind: yaml.SequenceNode}
	for _, c := range deck.Cards {
		card := &yaml.Node{Kind: yaml.MappingNode}
		addStringField(card, "question", c.Question)
		addStringField(card, "answer", c.Answer)
		if c.SourceHint != "" {
			addStringField(card, "source_hint", c.SourceHint)
		}
		cards.Content = append(cards.Content, card)
	}
	doc.Content = append(doc.Content,
		&yaml.Node{Kind: yaml.ScalarNode, Value: "cards"},
		cards,
	)
	return doc
}

// addStringField appends key: value, using literal block style for
// multi-line values.
func addStringField(m *yaml.Node, key, value string) {
	v := &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: value}
	if strings.Contains(value, "\n") {
		v.Style = yaml.LiteralStyle
	}
	m.Content = append(m.Content,
		&yaml.Node{Kind: yaml.ScalarNode, Value: key},
		v,
	)
}
