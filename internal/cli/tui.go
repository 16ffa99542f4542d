package cli

import (
	"context"
	"errors"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/valter-silva-au/parley/internal/core"
	"github.com/valter-silva-au/parley/pkg/models"
)

// Style definitions for the live session view.
var (
	tuiTitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("230")).
			Background(lipgloss.Color("62")).
			Padding(0, 1)

	tuiCorporateStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("69")).Bold(true)
	tuiNonprofitStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("114")).Bold(true)
	tuiTacticStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	tuiEventStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("214")).Bold(true)
	tuiGapStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("141"))
	tuiOutcomeStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("46")).Bold(true)
	tuiHelpStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
)

// Session messages delivered from the orchestrator goroutine.
type turnMsg models.Turn

type eventMsg models.AppliedEvent

type sessionDoneMsg struct {
	result *core.Result
	err    error
}

type sessionModel struct {
	width  int
	height int

	turns   []models.Turn
	events  map[int][]models.AppliedEvent // keyed by the round they follow
	offered float64
	ask     float64

	result *core.Result
	err    error
	done   bool
}

func newSessionModel(cfg core.Config) sessionModel {
	return sessionModel{
		events:  make(map[int][]models.AppliedEvent),
		offered: cfg.InitialFunding,
		ask:     cfg.RequestedFunding,
	}
}

func (m sessionModel) Init() tea.Cmd {
	return nil
}

func (m sessionModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "esc", "ctrl+c":
			return m, tea.Quit
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

	case turnMsg:
		turn := models.Turn(msg)
		m.turns = append(m.turns, turn)
		if turn.Speaker == models.SpeakerCorporate {
			m.offered = turn.Amount
		} else {
			m.ask = turn.Amount
		}
		return m, nil

	case eventMsg:
		ev := models.AppliedEvent(msg)
		m.events[ev.Round] = append(m.events[ev.Round], ev)
		return m, nil

	case sessionDoneMsg:
		m.result = msg.result
		m.err = msg.err
		m.done = true
		return m, nil
	}

	return m, nil
}

func (m sessionModel) View() string {
	var b strings.Builder

	b.WriteString(tuiTitleStyle.Render("parley: live negotiation"))
	b.WriteString("\n\n")

	for _, t := range m.turns {
		speaker := tuiCorporateStyle.Render("Corporate")
		if t.Speaker == models.SpeakerNonprofit {
			speaker = tuiNonprofitStyle.Render("Nonprofit")
		}
		fmt.Fprintf(&b, "%s %s\n", speaker,
			tuiTacticStyle.Render(fmt.Sprintf("round %d, %s", t.Round, t.Tactic)))
		fmt.Fprintf(&b, "  %s\n", wrapText(t.Message, m.width-4))

		for _, ev := range m.events[t.Round] {
			fmt.Fprintf(&b, "  %s %s\n", tuiEventStyle.Render("!!"), ev.Description)
		}
	}

	b.WriteString("\n")
	b.WriteString(tuiGapStyle.Render(fmt.Sprintf("offer $%.2f | ask $%.2f | gap $%.2f",
		m.offered, m.ask, m.ask-m.offered)))
	b.WriteString("\n")

	if m.done {
		if m.err != nil {
			fmt.Fprintf(&b, "\nSession failed: %v\n", m.err)
		} else if m.result != nil {
			b.WriteString("\n")
			b.WriteString(tuiOutcomeStyle.Render(fmt.Sprintf("Outcome: %s (%s) after %d rounds",
				m.result.Outcome, core.OutcomeLabel(m.result.Outcome), m.result.RoundsCompleted)))
			b.WriteString("\n")
		}
		b.WriteString(tuiHelpStyle.Render("\nq to close"))
	} else {
		b.WriteString(tuiHelpStyle.Render("\nnegotiating... q to abort"))
	}

	return b.String()
}

// wrapText does simple word wrapping for the message body.
func wrapText(s string, width int) string {
	if width < 20 {
		return s
	}

	var b strings.Builder
	line := 0
	for _, word := range strings.Fields(s) {
		if line > 0 && line+len(word)+1 > width {
			b.WriteString("\n  ")
			line = 0
		} else if line > 0 {
			b.WriteString(" ")
			line++
		}
		b.WriteString(word)
		line += len(word)
	}
	return b.String()
}

// runSessionTUI drives the orchestrator inside a bubbletea program, streaming
// turns and events into the view as they land.
func runSessionTUI(ctx context.Context, orc *core.Orchestrator, cfg core.Config) (*core.Result, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	p := tea.NewProgram(newSessionModel(cfg), tea.WithContext(ctx))

	orc.OnTurn = func(t models.Turn) { p.Send(turnMsg(t)) }
	orc.OnEvent = func(ev models.AppliedEvent) { p.Send(eventMsg(ev)) }

	done := make(chan sessionDoneMsg, 1)
	go func() {
		res, err := orc.Run(ctx, cfg)
		msg := sessionDoneMsg{result: res, err: err}
		done <- msg
		p.Send(msg)
	}()

	_, runErr := p.Run()

	// Closing the view cancels the session; the loop stops at the next
	// round boundary (or the in-flight collaborator call aborts).
	cancel()
	msg := <-done

	if runErr != nil && !errors.Is(runErr, context.Canceled) {
		return nil, fmt.Errorf("running session view: %w", runErr)
	}
	if msg.err != nil {
		if errors.Is(msg.err, context.Canceled) {
			return nil, fmt.Errorf("session aborted")
		}
		return nil, msg.err
	}
	return msg.result, nil
}
