package generation

import (
	"testing"

	"github.com/phrazzld/flashdeck/internal/domain"
	"github.com/stretchr/testify/assert"
)

func TestParseCandidates_ToleratesMalformedUnit(t *testing.T) {
	t.Parallel()

	response := `Q: What is ATP?
A: The energy currency of the cell.

Q: This question never gets an answer

Q: What does DNA stand for?
A: Deoxyribonucleic acid.`

	got := ParseCandidates(response)
	assert.Equal(t, []domain.Candidate{
		{Question: "What is ATP?", Answer: "The energy currency of the cell."},
		{Question: "What does DNA stand for?", Answer: "Deoxyribonucleic acid."},
	}, got)
}

func TestParseCandidates_LineFormats(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		response string
		want     []domain.Candidate
	}{
		{
			name:     "numbered and bold markers",
			response: "1. **Q:** Define osmosis\n   **A:** Diffusion of water across a membrane\n\n2. **Q:** Define mitosis\n   **A:** Cell division",
			want: []domain.Candidate{
				{Question: "Define osmosis", Answer: "Diffusion of water across a membrane"},
				{Question: "Define mitosis", Answer: "Cell division"},
			},
		},
		{
			name:     "long labels and multi-line answer",
			response: "Question: State Newton's second law\nAnswer: F = ma,\nwhere m is mass.\n\nQuestion 2: Unit of force?\nAnswer 2: Newton",
			want: []domain.Candidate{
				{Question: "State Newton's second law", Answer: "F = ma, where m is mass."},
				{Question: "Unit of force?", Answer: "Newton"},
			},
		},
		{
			name:     "inline pairs",
			response: "Q: 2+2? A: 4\nQ: Capital of France? | A: Paris",
			want: []domain.Candidate{
				{Question: "2+2?", Answer: "4"},
				{Question: "Capital of France?", Answer: "Paris"},
			},
		},
		{
			name:     "blank line between question and answer",
			response: "Q: What is pH?\n\nA: A measure of acidity",
			want:     []domain.Candidate{{Question: "What is pH?", Answer: "A measure of acidity"}},
		},
		{
			name:     "stray answer and chatter are dropped",
			response: "Sure! Here are your cards.\nA: orphan answer\n\nQ: Real question?\nA: Real answer.\n",
			want:     []domain.Candidate{{Question: "Real question?", Answer: "Real answer."}},
		},
		{
			name:     "empty answer dropped",
			response: "Q: Has no answer\nA:   \n\nQ: Fine?\nA: Yes",
			want:     []domain.Candidate{{Question: "Fine?", Answer: "Yes"}},
		},
		{
			name:     "lettered options stay in the answer",
			response: "Q: What are the options?\nA: Options:\na) one\nb) two\n\nQ: Next?\nA: Done",
			want: []domain.Candidate{
				{Question: "What are the options?", Answer: "Options: a) one b) two"},
				{Question: "Next?", Answer: "Done"},
			},
		},
		{
			name:     "nothing usable",
			response: "I'm sorry, I can't help with that.",
			want:     []domain.Candidate{},
		},
		{
			name:     "empty",
			response: "   ",
			want:     []domain.Candidate{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, ParseCandidates(tt.response))
		})
	}
}

func TestParseCandidates_JSON(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		response string
		want     []domain.Candidate
	}{
		{
			name:     "array with mixed field names",
			response: `[{"question":"What is a cell?","answer":"Basic unit of life"},{"front":"Define gene","back":"Unit of heredity"},{"question":"no answer"}]`,
			want: []domain.Candidate{
				{Question: "What is a cell?", Answer: "Basic unit of life"},
				{Question: "Define gene", Answer: "Unit of heredity"},
			},
		},
		{
			name:     "fenced wrapper object",
			response: "```json\n{\"cards\": [{\"q\": \" Speed of light? \", \"a\": \"3e8 m/s\"}, 42]}\n```",
			want:     []domain.Candidate{{Question: "Speed of light?", Answer: "3e8 m/s"}},
		},
		{
			name:     "single object",
			response: `{"question":"Boiling point of water?","answer":"100 °C"}`,
			want:     []domain.Candidate{{Question: "Boiling point of water?", Answer: "100 °C"}},
		},
		{
			name:     "fenced array after prose",
			response: "Here are your cards:\n```json\n[{\"question\":\"q1\",\"answer\":\"a1\"}]\n```",
			want:     []domain.Candidate{{Question: "q1", Answer: "a1"}},
		},
		{
			name:     "bare array between prose",
			response: "Sure, here you go: [{\"front\": \"Define [x]\", \"back\": \"a } b\"}] Let me know if you need more.",
			want:     []domain.Candidate{{Question: "Define [x]", Answer: "a } b"}},
		},
		{
			name:     "brackets in prose without cards",
			response: "Note [1]: nothing here {really}.",
			want:     []domain.Candidate{},
		},
		{
			name:     "broken json falls back to lines",
			response: "[{\"question\": \"oops\"\nQ: Still parsed?\nA: Yes",
			want:     []domain.Candidate{{Question: "Still parsed?", Answer: "Yes"}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, ParseCandidates(tt.response))
		})
	}
}
