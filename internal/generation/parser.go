package generation

import (
	"encoding/json"
	"regexp"
	"strings"

	"github.com/phrazzld/flashdeck/internal/domain"
)

var (
	codeFence    = regexp.MustCompile("(?s)^```[a-zA-Z]*\\s*\\n(.*?)\\n?```\\s*$")
	innerFence   = regexp.MustCompile("(?s)```[a-zA-Z]*\\s*\\n(.*?)```")
	listMarker   = regexp.MustCompile(`^(?:[-*•]+|\d+[.)])\s+`)
	questionLine = regexp.MustCompile(`(?i)^(?:q|question)\s*\d*\s*[:)]\s*(.*)$`)

	// Answers need a colon so that lettered options like "a) one" stay
	// part of the answer text.
	answerLine = regexp.MustCompile(`(?i)^(?:a|answer)\s*\d*\s*:\s*(.*)$`)
	inlinePair = regexp.MustCompile(`(?i)^(?:q|question)\s*\d*\s*[:)]\s*(.+?)\s+(?:\|\s*)?(?:a|answer)\s*:\s*(.+)$`)
)

// jsonCard accepts the field names models commonly use for the two sides.
type jsonCard struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
	Front    string `json:"front"`
	Back     string `json:"back"`
	Q        string `json:"q"`
	A        string `json:"a"`
}

func (c jsonCard) candidate() domain.Candidate {
	return domain.Candidate{
		Question: firstNonEmpty(c.Question, c.Front, c.Q),
		Answer:   firstNonEmpty(c.Answer, c.Back, c.A),
	}
}

// ParseCandidates extracts every well-formed question/answer unit from a
// model response. Units missing either side are dropped. It never fails.
func ParseCandidates(text string) []domain.Candidate {
	text = strings.TrimSpace(strings.ReplaceAll(text, "\r\n", "\n"))
	if m := codeFence.FindStringSubmatch(text); m != nil {
		text = strings.TrimSpace(m[1])
	}
	if text == "" {
		return []domain.Candidate{}
	}

	if strings.HasPrefix(text, "[") || strings.HasPrefix(text, "{") {
		if cards, ok := parseJSON(text); ok {
			return cards
		}
	}
	if cards := parseLines(text); len(cards) > 0 {
		return cards
	}
	if cards, ok := parseEmbeddedJSON(text); ok {
		return cards
	}
	return []domain.Candidate{}
}

// maxEmbeddedStarts bounds how many bracket positions are tried as the
// start of an embedded JSON value.
const maxEmbeddedStarts = 16

// parseEmbeddedJSON finds JSON surrounded by prose: a fenced block anywhere
// in the text, or else the first balanced array or object that decodes to
// at least one card.
func parseEmbeddedJSON(text string) ([]domain.Candidate, bool) {
	for _, m := range innerFence.FindAllStringSubmatch(text, -1) {
		if cards, ok := parseJSON(strings.TrimSpace(m[1])); ok && len(cards) > 0 {
			return cards, true
		}
	}

	tried := 0
	for i := 0; i < len(text) && tried < maxEmbeddedStarts; i++ {
		if text[i] != '[' && text[i] != '{' {
			continue
		}
		tried++
		end := closingBracket(text, i)
		if end < 0 {
			continue
		}
		if cards, ok := parseJSON(text[i : end+1]); ok && len(cards) > 0 {
			return cards, true
		}
	}
	return nil, false
}

// closingBracket returns the index of the bracket that closes the one at
// start, skipping brackets inside JSON strings, or -1.
func closingBracket(text string, start int) int {
	var (
		stack    []byte
		inString bool
		escaped  bool
	)
	for i := start; i < len(text); i++ {
		c := text[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case '[':
			stack = append(stack, ']')
		case '{':
			stack = append(stack, '}')
		case ']', '}':
			if len(stack) == 0 || stack[len(stack)-1] != c {
				return -1
			}
			stack = stack[:len(stack)-1]
			if len(stack) == 0 {
				return i
			}
		}
	}
	return -1
}

// parseJSON handles an array of cards or an object wrapping one.
func parseJSON(text string) ([]domain.Candidate, bool) {
	var raw []json.RawMessage
	if err := json.Unmarshal([]byte(text), &raw); err != nil {
		var wrapper map[string]json.RawMessage
		if err := json.Unmarshal([]byte(text), &wrapper); err != nil {
			return nil, false
		}
		for _, key := range []string{"cards", "flashcards", "items"} {
			if v, ok := wrapper[key]; ok && json.Unmarshal(v, &raw) == nil {
				break
			}
		}
		if raw == nil {
			var single jsonCard
			if err := json.Unmarshal([]byte(text), &single); err != nil || !wellFormed(single.candidate()) {
				return nil, false
			}
			return []domain.Candidate{trimCandidate(single.candidate())}, true
		}
	}

	out := []domain.Candidate{}
	for _, item := range raw {
		var c jsonCard
		if err := json.Unmarshal(item, &c); err != nil {
			continue
		}
		if cand := c.candidate(); wellFormed(cand) {
			out = append(out, trimCandidate(cand))
		}
	}
	return out, true
}

// parseLines reads Q:/A: blocks. Questions and answers may span several
// lines; a blank line ends an answer.
func parseLines(text string) []domain.Candidate {
	out := []domain.Candidate{}

	var (
		question, answer []string
		inAnswer         bool
	)
	finish := func() {
		c := domain.Candidate{
			Question: strings.Join(question, " "),
			Answer:   strings.Join(answer, " "),
		}
		if wellFormed(c) {
			out = append(out, trimCandidate(c))
		}
		question, answer, inAnswer = nil, nil, false
	}

	for _, raw := range strings.Split(text, "\n") {
		line := cleanLine(raw)

		if line == "" {
			if inAnswer {
				finish()
			}
			continue
		}

		if m := inlinePair.FindStringSubmatch(line); m != nil {
			finish()
			question, answer = []string{m[1]}, []string{m[2]}
			finish()
			continue
		}
		if m := questionLine.FindStringSubmatch(line); m != nil {
			finish()
			question = []string{m[1]}
			continue
		}
		if m := answerLine.FindStringSubmatch(line); m != nil {
			if question == nil || inAnswer {
				// An answer without a pending question is a stray fragment.
				finish()
				continue
			}
			inAnswer = true
			answer = []string{m[1]}
			continue
		}

		switch {
		case inAnswer:
			answer = append(answer, line)
		case question != nil:
			question = append(question, line)
		}
	}
	finish()

	return out
}

// cleanLine strips list markers and markdown emphasis around a line.
func cleanLine(line string) string {
	line = strings.TrimSpace(line)
	line = listMarker.ReplaceAllString(line, "")
	line = strings.ReplaceAll(line, "**", "")
	line = strings.ReplaceAll(line, "__", "")
	return strings.TrimSpace(line)
}

func wellFormed(c domain.Candidate) bool {
	return strings.TrimSpace(c.Question) != "" && strings.TrimSpace(c.Answer) != ""
}

func trimCandidate(c domain.Candidate) domain.Candidate {
	c.Question = strings.TrimSpace(c.Question)
	c.Answer = strings.TrimSpace(c.Answer)
	return c
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
