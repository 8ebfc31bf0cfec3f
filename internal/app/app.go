// Package app is the interactive training session: one Bubble Tea model
// that shows an email, takes a phishing/legitimate verdict and explains
// mistakes before moving on.
package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"charm.land/bubbles/v2/help"
	"charm.land/bubbles/v2/key"
	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/phishdrill/internal/arcade"
	"github.com/abhisek/phishdrill/internal/ui/components"
	"github.com/abhisek/phishdrill/internal/ui/theme"
)

type phase int

const (
	phaseLoading phase = iota
	phaseAnswering
	phaseFeedback
	phaseEmpty
	phaseError
)

type keyMap struct {
	Phish key.Binding
	Legit key.Binding
	Next  key.Binding
	Quit  key.Binding
}

var keys = keyMap{
	Phish: key.NewBinding(key.WithKeys("p"), key.WithHelp("p", "phishing")),
	Legit: key.NewBinding(key.WithKeys("l"), key.WithHelp("l", "legitimate")),
	Next:  key.NewBinding(key.WithKeys("enter", "space", "n"), key.WithHelp("enter", "next email")),
	Quit:  key.NewBinding(key.WithKeys("q", "esc", "ctrl+c"), key.WithHelp("q", "quit")),
}

// trialMsg carries the result of RequestTrial.
type trialMsg struct {
	trial *arcade.Trial
	err   error
}

// Summary is what a finished session reports.
type Summary struct {
	Answered int
	Correct  int
}

// Model is the root Bubble Tea model of a session.
type Model struct {
	ctx    context.Context
	engine *arcade.Engine
	user   string
	now    func() time.Time

	help  help.Model
	width int

	phase   phase
	trial   *arcade.Trial
	shownAt time.Time
	outcome *arcade.Outcome
	err     error

	summary Summary
}

// New creates a session model for user. width is the terminal width used
// until the first resize.
func New(ctx context.Context, eng *arcade.Engine, user string, width int) *Model {
	return &Model{
		ctx:    ctx,
		engine: eng,
		user:   user,
		now:    time.Now,
		help:   help.New(),
		width:  width,
	}
}

// Summary returns the session totals so far.
func (m *Model) Summary() Summary {
	return m.summary
}

func (m *Model) Init() tea.Cmd {
	return m.nextTrial()
}

func (m *Model) nextTrial() tea.Cmd {
	m.phase = phaseLoading
	m.trial, m.outcome = nil, nil
	return func() tea.Msg {
		t, err := m.engine.RequestTrial(m.ctx, m.user)
		return trialMsg{trial: t, err: err}
	}
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		return m, nil

	case trialMsg:
		return m.handleTrial(msg)

	case tea.KeyPressMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m *Model) handleTrial(msg trialMsg) (tea.Model, tea.Cmd) {
	switch {
	case errors.Is(msg.err, arcade.ErrNoContentAvailable):
		m.phase = phaseEmpty
	case msg.err != nil:
		m.phase, m.err = phaseError, msg.err
	default:
		m.phase, m.trial, m.shownAt = phaseAnswering, msg.trial, m.now()
	}
	return m, nil
}

func (m *Model) handleKey(msg tea.KeyPressMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, keys.Quit) {
		return m, tea.Quit
	}

	switch m.phase {
	case phaseEmpty, phaseError:
		// Any key leaves.
		return m, tea.Quit

	case phaseAnswering:
		switch {
		case key.Matches(msg, keys.Phish):
			return m.submit(true)
		case key.Matches(msg, keys.Legit):
			return m.submit(false)
		}

	case phaseFeedback:
		if key.Matches(msg, keys.Next) {
			return m, m.nextTrial()
		}
	}
	return m, nil
}

func (m *Model) submit(deceptive bool) (tea.Model, tea.Cmd) {
	elapsed := int(m.now().Sub(m.shownAt).Milliseconds())
	out, err := m.engine.SubmitAttempt(m.ctx, arcade.Submission{
		UserID:           m.user,
		ItemID:           m.trial.Item.ID,
		GuessedDeceptive: &deceptive,
		ResponseTimeMs:   &elapsed,
	})
	if err != nil {
		m.phase, m.err = phaseError, fmt.Errorf("submit: %w", err)
		return m, nil
	}

	m.summary.Answered++
	if out.WasCorrect {
		m.summary.Correct++
	}
	m.phase, m.outcome = phaseFeedback, out
	return m, nil
}

func (m *Model) View() tea.View {
	return tea.NewView(m.render())
}

func (m *Model) render() string {
	cw := components.ContentWidth(m.width)
	var b strings.Builder

	switch m.phase {
	case phaseLoading:
		b.WriteString(theme.Hint.Render("Fetching the next email..."))

	case phaseEmpty:
		b.WriteString("No emails available. Import a catalog first: phishdrill import <file>\n\n")
		b.WriteString(theme.Hint.Render("Press any key to exit."))

	case phaseError:
		b.WriteString(theme.Incorrect.Render("Error: "+m.err.Error()) + "\n\n")
		b.WriteString(theme.Hint.Render("Press any key to exit."))

	case phaseAnswering:
		m.writeTrial(&b, cw)
		b.WriteString("\n\n" + m.help.ShortHelpView([]key.Binding{keys.Phish, keys.Legit, keys.Quit}))

	case phaseFeedback:
		m.writeTrial(&b, cw)
		b.WriteString("\n\n" + components.Verdict(m.outcome.WasCorrect) + "\n")
		if h := components.HintView(m.outcome.Hint, cw); h != "" {
			b.WriteString(h + "\n")
		}
		fmt.Fprintf(&b, "Accuracy %.0f%%  Streak %+d\n\n", m.outcome.RollingAccuracy*100, m.outcome.Streak)
		b.WriteString(m.help.ShortHelpView([]key.Binding{keys.Next, keys.Quit}))
	}
	return b.String()
}

func (m *Model) writeTrial(b *strings.Builder, cw int) {
	cfg := m.engine.Config()
	b.WriteString(components.DifficultyMeter(m.trial.TargetDifficulty, cfg.Min, cfg.Max, cw).View() + "\n")
	b.WriteString(components.EmailCard(m.trial.Item, cw))
}

// Run starts the Bubble Tea program over in and out and returns the
// session totals once the user quits.
func Run(ctx context.Context, m *Model, in io.Reader, out io.Writer) (Summary, error) {
	p := tea.NewProgram(m, tea.WithContext(ctx), tea.WithInput(in), tea.WithOutput(out))
	if _, err := p.Run(); err != nil {
		return m.Summary(), err
	}
	return m.Summary(), nil
}
