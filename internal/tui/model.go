// Package tui renders a review.Session as a bubbletea program.
package tui

import (
	"context"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/phrazzld/flashdeck/internal/domain"
	"github.com/phrazzld/flashdeck/internal/review"
)

// RecordFunc persists a finished pass.
type RecordFunc func(ctx context.Context, attempt *domain.ReviewAttempt) error

// MistakesFunc persists the cards missed in a finished pass.
type MistakesFunc func(ctx context.Context, mistakes []domain.Mistake) error

// Config wires runtime options into the TUI program.
type Config struct {
	Deck    *domain.Deck
	Shuffle bool

	// Record is called once per completed pass. Optional.
	Record RecordFunc

	// RecordMistakes is called after Record when a pass had misses. Optional.
	RecordMistakes MistakesFunc

	// SessionOptions configure the underlying review.Session.
	SessionOptions []review.Option
}

type attemptRecordedMsg struct {
	attempt *domain.ReviewAttempt
	err     error
}

type model struct {
	ctx     context.Context
	config  Config
	session *review.Session
	shuffle bool
	width   int

	attempt *domain.ReviewAttempt
	status  string
	err     error
}

// New returns a tea.Model ready to be mounted into a Program.
func New(ctx context.Context, config Config) (tea.Model, error) {
	return newModel(ctx, config)
}

func newModel(ctx context.Context, config Config) (*model, error) {
	if config.Deck == nil {
		return nil, review.ErrNoDeck
	}
	session := review.NewSession(config.SessionOptions...)
	if err := session.Start(config.Deck, config.Shuffle); err != nil {
		return nil, err
	}
	m := &model{
		ctx:     ctx,
		config:  config,
		session: session,
		shuffle: config.Shuffle,
		width:   80,
	}
	if session.State() == review.Complete {
		m.status = "This deck has no cards."
	}
	return m, nil
}

// Run blocks until the user quits.
func Run(ctx context.Context, config Config) error {
	m, err := newModel(ctx, config)
	if err != nil {
		return err
	}
	_, err = tea.NewProgram(m, tea.WithContext(ctx), tea.WithAltScreen()).Run()
	return err
}

func (m *model) Init() tea.Cmd {
	return nil
}

func (m *model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		return m, nil

	case attemptRecordedMsg:
		if msg.err != nil {
			m.err = msg.err
			m.status = "Could not save progress."
		} else {
			m.status = "Progress saved."
		}
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m *model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c", "q", "esc":
		return m, tea.Quit

	case " ", "space", "enter":
		if m.session.State() == review.Showing {
			m.err = m.session.Reveal()
		}
		return m, nil

	case "y", "right":
		return m, m.mark(true)

	case "n", "left":
		return m, m.mark(false)

	case "r":
		m.restart()
		return m, nil

	case "s":
		m.shuffle = !m.shuffle
		m.restart()
		return m, nil
	}
	return m, nil
}

func (m *model) mark(correct bool) tea.Cmd {
	if m.session.State() != review.Revealed {
		return nil
	}
	if err := m.session.Mark(correct); err != nil {
		m.err = err
		return nil
	}
	if m.session.State() != review.Complete {
		return nil
	}

	attempt, err := m.session.Summary()
	if err != nil {
		m.err = err
		return nil
	}
	mistakes, err := m.session.Mistakes()
	if err != nil {
		m.err = err
		return nil
	}
	m.attempt = attempt
	return m.recordCmd(attempt, mistakes)
}

func (m *model) recordCmd(attempt *domain.ReviewAttempt, mistakes []domain.Mistake) tea.Cmd {
	record, recordMistakes, ctx := m.config.Record, m.config.RecordMistakes, m.ctx
	if record == nil && (recordMistakes == nil || len(mistakes) == 0) {
		return nil
	}
	return func() tea.Msg {
		if record != nil {
			if err := record(ctx, attempt); err != nil {
				return attemptRecordedMsg{attempt: attempt, err: err}
			}
		}
		var err error
		if recordMistakes != nil && len(mistakes) > 0 {
			err = recordMistakes(ctx, mistakes)
		}
		return attemptRecordedMsg{attempt: attempt, err: err}
	}
}

func (m *model) restart() {
	m.err = m.session.Restart(m.shuffle)
	m.attempt = nil
	m.status = ""
}

func (m *model) View() string {
	var b strings.Builder

	deck := m.session.Deck()
	p := m.session.Progress()
	b.WriteString(titleStyle.Render(deck.Subject))
	b.WriteString("  ")
	b.WriteString(helperStyle.Render(fmt.Sprintf("%d/%d  ✓ %d  ✗ %d", p.Position, p.Total, p.Correct, p.Incorrect)))
	if m.shuffle {
		b.WriteString(helperStyle.Render("  shuffled"))
	}
	b.WriteString("\n\n")

	cardWidth := m.width - 4
	if cardWidth < 20 {
		cardWidth = 20
	}

	switch m.session.State() {
	case review.Showing, review.Revealed:
		card, _ := m.session.Current()
		body := questionStyle.Render(card.Question)
		if m.session.Flipped() {
			body += "\n\n" + answerStyle.Render(card.Answer)
			if card.SourceHint != "" {
				body += "\n\n" + helperStyle.Render(card.SourceHint)
			}
		}
		b.WriteString(cardStyle.Width(cardWidth).Render(body))
		b.WriteString("\n\n")
		if m.session.Flipped() {
			b.WriteString(helperStyle.Render("y correct • n incorrect • r restart • s shuffle • q quit"))
		} else {
			b.WriteString(helperStyle.Render("space reveal • r restart • s shuffle • q quit"))
		}

	case review.Complete:
		if m.attempt != nil {
			b.WriteString(summaryStyle.Render(fmt.Sprintf("Done: %d/%d correct (%.2f%%)",
				m.attempt.Correct, m.attempt.Total, m.attempt.Accuracy)))
			b.WriteString("\n\n")
		}
		b.WriteString(helperStyle.Render("r review again • s toggle shuffle • q quit"))
	}

	if m.status != "" {
		b.WriteString("\n")
		b.WriteString(helperStyle.Render(m.status))
	}
	if m.err != nil {
		b.WriteString("\n")
		b.WriteString(errorStyle.Render(m.err.Error()))
	}
	b.WriteString("\n")
	return b.String()
}

var (
	accentColor   = lipgloss.Color("205")
	titleStyle    = lipgloss.NewStyle().Bold(true).Foreground(accentColor)
	questionStyle = lipgloss.NewStyle().Bold(true)
	answerStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("110"))
	summaryStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("81"))
	errorStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	helperStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("244"))
	cardStyle     = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(accentColor).Padding(1, 2)
)
