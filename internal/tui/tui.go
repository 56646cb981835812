// Package tui implements the terminal calculator.
package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/truncate"
	"github.com/muesli/reflow/wordwrap"

	"github.com/codefionn/calcschnell/internal/history"
	"github.com/codefionn/calcschnell/internal/session"
)

const defaultWidth = 40

// Options configures the calculator model
type Options struct {
	Session     *session.Session
	ShowHistory bool
	HistoryRows int
	// Preload holds earlier history entries, newest first as returned by history.Store.Recent
	Preload   []history.Entry
	Clipboard ClipboardFunc
	// HelpStyle is a glamour standard style name; empty or "auto" detects the terminal
	HelpStyle string
}

// outcomeMsg carries a finished evaluation back into Update
type outcomeMsg struct {
	outcome session.Outcome
}

// historyLine is one row of the history pane
type historyLine struct {
	expression string
	display    string
	failed     bool
}

// Model is the bubbletea model of the calculator
type Model struct {
	ctx         context.Context
	session     *session.Session
	keys        KeyMap
	help        help.Model
	styles      Styles
	pad         keypad
	last        session.Outcome
	hasLast     bool
	lines       []historyLine
	showHistory bool
	historyRows int
	showHelp    bool
	helpView    *helpRenderer
	clipboard   ClipboardFunc
	status      string
	width       int
	quitting    bool
}

// New creates the calculator model
func New(ctx context.Context, opts Options) Model {
	sess := opts.Session
	if sess == nil {
		sess = session.NewSession(history.SourceTUI, nil)
	}
	clip := opts.Clipboard
	if clip == nil {
		clip = SystemClipboard
	}
	rows := opts.HistoryRows
	if rows <= 0 {
		rows = 8
	}

	m := Model{
		ctx:         ctx,
		session:     sess,
		keys:        DefaultKeyMap(),
		help:        help.New(),
		styles:      DefaultStyles(),
		showHistory: opts.ShowHistory,
		historyRows: rows,
		helpView:    newHelpRenderer(opts.HelpStyle),
		clipboard:   clip,
		width:       defaultWidth,
	}

	// Preload arrives newest first, the pane lists oldest first
	for i := len(opts.Preload) - 1; i >= 0; i-- {
		entry := opts.Preload[i]
		display := entry.Result
		if entry.Failed() {
			display = entry.ErrorMessage
		}
		m.appendLine(historyLine{expression: entry.Expression, display: display, failed: entry.Failed()})
	}
	return m
}

// Run starts the calculator and blocks until the user quits or ctx is cancelled
func Run(ctx context.Context, opts Options) error {
	p := tea.NewProgram(New(ctx, opts), tea.WithContext(ctx), tea.WithAltScreen())
	_, err := p.Run()
	return err
}

func (m Model) Init() tea.Cmd {
	return nil
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.help.Width = msg.Width
		return m, nil

	case outcomeMsg:
		if msg.outcome.Skipped {
			return m, nil
		}
		m.last = msg.outcome
		m.hasLast = true
		m.status = ""
		m.appendLine(historyLine{
			expression: msg.outcome.Expression,
			display:    msg.outcome.Display(),
			failed:     !msg.outcome.OK(),
		})
		return m, nil

	case ClipboardCopyMsg:
		if msg.Success {
			m.status = fmt.Sprintf("Copied %s", msg.Content)
		} else {
			m.status = "Copy failed: " + msg.Error
		}
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.showHelp {
		// Any key leaves the help page, quit keys still quit
		if key.Matches(msg, m.keys.Quit) {
			m.quitting = true
			return m, tea.Quit
		}
		m.showHelp = false
		return m, nil
	}

	switch {
	case key.Matches(msg, m.keys.Quit):
		m.quitting = true
		return m, tea.Quit
	case key.Matches(msg, m.keys.Help):
		m.showHelp = true
		return m, nil
	case key.Matches(msg, m.keys.Up):
		m.pad.move(-1, 0)
	case key.Matches(msg, m.keys.Down):
		m.pad.move(1, 0)
	case key.Matches(msg, m.keys.Left):
		m.pad.move(0, -1)
	case key.Matches(msg, m.keys.Right):
		m.pad.move(0, 1)
	case key.Matches(msg, m.keys.Press):
		return m.pressKey(m.pad.focused())
	case key.Matches(msg, m.keys.Submit):
		return m, m.submit()
	case key.Matches(msg, m.keys.Backspace):
		m.session.Backspace()
	case key.Matches(msg, m.keys.Clear):
		m.session.Clear()
	case key.Matches(msg, m.keys.Copy):
		if !m.hasLast || !m.last.OK() {
			m.status = "Nothing to copy"
			return m, nil
		}
		return m, copyToClipboard(m.clipboard, m.last.Result)
	case msg.Type == tea.KeyRunes:
		m.session.AppendString(string(msg.Runes))
	}

	return m, nil
}

// pressKey acts like clicking a keypad button
func (m Model) pressKey(label string) (tea.Model, tea.Cmd) {
	switch label {
	case keyEquals:
		return m, m.submit()
	case keyClear:
		m.session.Clear()
	case keyBackspace:
		m.session.Backspace()
	default:
		m.session.AppendString(label)
	}
	return m, nil
}

func (m Model) submit() tea.Cmd {
	ctx, sess := m.ctx, m.session
	return func() tea.Msg {
		return outcomeMsg{outcome: sess.Submit(ctx)}
	}
}

func (m *Model) appendLine(line historyLine) {
	m.lines = append(m.lines, line)
	if limit := m.historyRows * 4; len(m.lines) > limit {
		m.lines = m.lines[len(m.lines)-limit:]
	}
}

func (m Model) View() string {
	if m.quitting {
		return ""
	}
	if m.showHelp {
		return m.helpView.render(m.width) + "\n\n" + m.styles.Status.Render("press any key to return")
	}

	var b strings.Builder
	b.WriteString(m.displayView())
	b.WriteString("\n")
	b.WriteString(m.pad.view(m.styles))
	b.WriteString("\n")

	if m.showHistory && len(m.lines) > 0 {
		b.WriteString("\n")
		b.WriteString(m.historyView())
		b.WriteString("\n")
	}

	if m.status != "" {
		b.WriteString(m.styles.Status.Render(m.status))
		b.WriteString("\n")
	}
	b.WriteString(m.help.View(m.keys))
	return b.String()
}

func (m Model) innerWidth() int {
	w := m.width - 4 // border and padding
	if w < 10 {
		w = 10
	}
	return w
}

func (m Model) displayView() string {
	width := m.innerWidth()

	input := m.session.Text()
	if input == "" {
		input = " "
	}
	inputView := m.styles.Input.Render(wordwrap.String(input, width))

	result := ""
	if m.hasLast {
		style := m.styles.Result
		if !m.last.OK() {
			style = m.styles.Error
		}
		result = style.Render(m.last.Display())
	}
	resultView := lipgloss.PlaceHorizontal(width, lipgloss.Right, result)

	return m.styles.Display.Width(width + 2).Render(inputView + "\n" + resultView)
}

func (m Model) historyView() string {
	width := m.innerWidth()

	lines := m.lines
	if len(lines) > m.historyRows {
		lines = lines[len(lines)-m.historyRows:]
	}

	rows := make([]string, 0, len(lines)+1)
	rows = append(rows, m.styles.HistoryTitle.Render("History"))
	for _, line := range lines {
		expr := truncate.StringWithTail(line.expression, uint(width/2), "…")
		style := m.styles.HistoryOK
		text := expr + " = " + line.display
		if line.failed {
			style = m.styles.HistoryError
			text = expr + " → " + line.display
		}
		rows = append(rows, style.Render(wordwrap.String(text, width)))
	}
	return strings.Join(rows, "\n")
}
