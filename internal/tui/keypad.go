package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Special keypad labels
const (
	keyEquals    = "="
	keyClear     = "C"
	keyBackspace = "⌫"
)

var keypadLayout = [][]string{
	{"7", "8", "9", "/"},
	{"4", "5", "6", "*"},
	{"1", "2", "3", "-"},
	{"0", ".", keyEquals, "+"},
	{"(", ")", keyClear, keyBackspace},
}

// keypad tracks which button has focus
type keypad struct {
	row, col int
}

func (k *keypad) move(dRow, dCol int) {
	k.row = clamp(k.row+dRow, 0, len(keypadLayout)-1)
	k.col = clamp(k.col+dCol, 0, len(keypadLayout[k.row])-1)
}

func (k keypad) focused() string {
	return keypadLayout[k.row][k.col]
}

func (k keypad) view(styles Styles) string {
	rows := make([]string, 0, len(keypadLayout))
	for r, row := range keypadLayout {
		buttons := make([]string, 0, len(row))
		for c, label := range row {
			style := styles.Button
			switch {
			case r == k.row && c == k.col:
				style = styles.FocusedButton
			case label == keyEquals || label == keyClear || label == keyBackspace:
				style = styles.ActionButton
			case strings.Contains("+-*/()", label):
				style = styles.OperatorButton
			}
			buttons = append(buttons, style.Render(label))
		}
		rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top, buttons...))
	}
	return lipgloss.JoinVertical(lipgloss.Left, rows...)
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
