package tui

import (
	"context"
	"errors"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/codefionn/calcschnell/internal/history"
	"github.com/codefionn/calcschnell/internal/session"
)

func newTestModel(t *testing.T, opts Options) Model {
	t.Helper()
	if opts.Session == nil {
		opts.Session = session.NewSession(history.SourceTUI, nil)
	}
	if opts.Clipboard == nil {
		opts.Clipboard = func(string) error { return errors.New("no clipboard in tests") }
	}
	if opts.HelpStyle == "" {
		opts.HelpStyle = "notty"
	}
	return New(context.Background(), opts)
}

// update feeds msgs to the model and runs the commands that report back
func update(t *testing.T, m Model, msgs ...tea.Msg) (Model, tea.Cmd) {
	t.Helper()
	var last tea.Cmd
	for _, msg := range msgs {
		next, cmd := m.Update(msg)
		m = next.(Model)
		last = cmd
		if cmd == nil {
			continue
		}
		switch result := cmd().(type) {
		case outcomeMsg, ClipboardCopyMsg:
			next, _ = m.Update(result)
			m = next.(Model)
		}
	}
	return m, last
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func keyOf(t tea.KeyType) tea.KeyMsg {
	return tea.KeyMsg{Type: t}
}

func TestTypingAndSubmit(t *testing.T) {
	m := newTestModel(t, Options{})

	m, _ = update(t, m, runes("(2+3)"), runes("*"), runes("4"))
	assert.Equal(t, "(2+3)*4", m.session.Text())

	m, _ = update(t, m, keyOf(tea.KeyEnter))
	require.True(t, m.hasLast)
	assert.Equal(t, "20", m.last.Result)
	assert.Equal(t, "", m.session.Text())
	assert.Contains(t, m.View(), "20")
}

func TestEqualsKeySubmits(t *testing.T) {
	m := newTestModel(t, Options{})

	m, _ = update(t, m, runes("7/2"), runes("="))
	assert.Equal(t, "3.5", m.last.Result)
}

func TestFailedSubmitKeepsInput(t *testing.T) {
	m := newTestModel(t, Options{})

	m, _ = update(t, m, runes("5/0"), keyOf(tea.KeyEnter))
	assert.False(t, m.last.OK())
	assert.Equal(t, "5/0", m.session.Text())
	assert.Contains(t, m.View(), "Error: Division by zero!")
}

func TestEmptySubmitDoesNothing(t *testing.T) {
	m := newTestModel(t, Options{})

	m, _ = update(t, m, keyOf(tea.KeyEnter))
	assert.False(t, m.hasLast)
	assert.Empty(t, m.lines)
}

func TestInvalidCharactersAreIgnored(t *testing.T) {
	m := newTestModel(t, Options{})

	m, _ = update(t, m, runes("1"), runes("x"), runes("^"), runes("2"))
	assert.Equal(t, "12", m.session.Text())
}

func TestBackspaceAndClear(t *testing.T) {
	m := newTestModel(t, Options{})

	m, _ = update(t, m, runes("123"), keyOf(tea.KeyBackspace))
	assert.Equal(t, "12", m.session.Text())

	m, _ = update(t, m, keyOf(tea.KeyEsc))
	assert.Equal(t, "", m.session.Text())

	m, _ = update(t, m, runes("9"), runes("c"))
	assert.Equal(t, "", m.session.Text())
}

func TestKeypadNavigation(t *testing.T) {
	m := newTestModel(t, Options{})
	assert.Equal(t, "7", m.pad.focused())

	// clamped at the top-left corner
	m, _ = update(t, m, keyOf(tea.KeyUp), keyOf(tea.KeyLeft))
	assert.Equal(t, "7", m.pad.focused())

	m, _ = update(t, m, keyOf(tea.KeyRight), keyOf(tea.KeySpace))
	assert.Equal(t, "8", m.session.Text())

	m, _ = update(t, m, keyOf(tea.KeyDown), keyOf(tea.KeyDown), keyOf(tea.KeyDown), keyOf(tea.KeyRight))
	assert.Equal(t, keyEquals, m.pad.focused())

	m, _ = update(t, m, keyOf(tea.KeyLeft), keyOf(tea.KeySpace))
	assert.Equal(t, "8.", m.session.Text())

	for i := 0; i < 10; i++ {
		m, _ = update(t, m, keyOf(tea.KeyDown), keyOf(tea.KeyRight))
	}
	assert.Equal(t, keyBackspace, m.pad.focused())
	m, _ = update(t, m, keyOf(tea.KeySpace))
	assert.Equal(t, "8", m.session.Text())

	m, _ = update(t, m, keyOf(tea.KeyLeft), keyOf(tea.KeySpace))
	assert.Equal(t, "", m.session.Text())
}

func TestKeypadEqualsSubmits(t *testing.T) {
	m := newTestModel(t, Options{})
	m.pad = keypad{row: 3, col: 2}

	m, _ = update(t, m, runes("6*7"), keyOf(tea.KeySpace))
	assert.Equal(t, "42", m.last.Result)
}

func TestCopyResult(t *testing.T) {
	var copied string
	m := newTestModel(t, Options{Clipboard: func(text string) error {
		copied = text
		return nil
	}})

	m, _ = update(t, m, keyOf(tea.KeyCtrlY))
	assert.Equal(t, "Nothing to copy", m.status)

	m, _ = update(t, m, runes("6*7"), keyOf(tea.KeyEnter), keyOf(tea.KeyCtrlY))
	assert.Equal(t, "42", copied)
	assert.Equal(t, "Copied 42", m.status)
}

func TestCopyFailureIsReported(t *testing.T) {
	m := newTestModel(t, Options{})

	m, _ = update(t, m, runes("1+1"), keyOf(tea.KeyEnter), keyOf(tea.KeyCtrlY))
	assert.Contains(t, m.status, "Copy failed")
}

func TestHelpToggle(t *testing.T) {
	m := newTestModel(t, Options{})

	m, _ = update(t, m, runes("?"))
	require.True(t, m.showHelp)
	assert.Contains(t, m.View(), "Keypad")

	// typing while help is shown only closes it
	m, _ = update(t, m, runes("5"))
	assert.False(t, m.showHelp)
	assert.Equal(t, "", m.session.Text())
}

func TestQuit(t *testing.T) {
	m := newTestModel(t, Options{})

	m, cmd := update(t, m, runes("q"))
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
	assert.Equal(t, "", m.View())

	m = newTestModel(t, Options{})
	_, cmd = update(t, m, keyOf(tea.KeyCtrlC))
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
}

func TestHistoryPane(t *testing.T) {
	preload := []history.Entry{
		{Expression: "2*2", Result: "4"},
		{Expression: "1/0", ErrorKind: "DivisionByZero", ErrorMessage: "Error: Division by zero!"},
	}
	m := newTestModel(t, Options{ShowHistory: true, HistoryRows: 3, Preload: preload})

	require.Len(t, m.lines, 2)
	assert.Equal(t, "1/0", m.lines[0].expression)
	assert.True(t, m.lines[0].failed)
	assert.Equal(t, "2*2", m.lines[1].expression)

	m, _ = update(t, m, runes("3+3"), keyOf(tea.KeyEnter), runes("4+4"), keyOf(tea.KeyEnter))

	view := m.View()
	assert.Contains(t, view, "History")
	assert.Contains(t, view, "4+4 = 8")
	assert.Contains(t, view, "3+3 = 6")
	// only the newest HistoryRows lines are shown
	assert.NotContains(t, view, "1/0")
}

func TestHistoryPaneHidden(t *testing.T) {
	m := newTestModel(t, Options{ShowHistory: false})

	m, _ = update(t, m, runes("1+2"), keyOf(tea.KeyEnter))
	assert.NotContains(t, m.View(), "History")
}

func TestWindowResize(t *testing.T) {
	m := newTestModel(t, Options{})

	m, _ = update(t, m, tea.WindowSizeMsg{Width: 60, Height: 30})
	assert.Equal(t, 60, m.width)
	assert.Equal(t, 56, m.innerWidth())

	m, _ = update(t, m, tea.WindowSizeMsg{Width: 5, Height: 30})
	assert.Equal(t, 10, m.innerWidth())
}

func TestSubmitRecordsThroughSession(t *testing.T) {
	rec := &recorder{}
	sess := session.NewSession(history.SourceTUI, rec)
	m := newTestModel(t, Options{Session: sess})

	update(t, m, runes("9-3"), keyOf(tea.KeyEnter))
	require.Len(t, rec.entries, 1)
	assert.Equal(t, history.SourceTUI, rec.entries[0].Source)
	assert.Equal(t, "6", rec.entries[0].Result)
}

type recorder struct {
	entries []history.Entry
}

func (r *recorder) Record(_ context.Context, entry history.Entry) (int64, error) {
	r.entries = append(r.entries, entry)
	return int64(len(r.entries)), nil
}
