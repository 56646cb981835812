// Package input accumulates calculator keystrokes into an expression string.
package input

import (
	"strings"
	"sync"

	"github.com/codefionn/calcschnell/internal/consts"
)

// allowedSymbols are the non-digit characters a calculator expression may contain.
const allowedSymbols = "+-*/(). "

// IsAllowed reports whether r may be appended to a buffer.
func IsAllowed(r rune) bool {
	if r >= '0' && r <= '9' {
		return true
	}
	return r < 0x80 && strings.ContainsRune(allowedSymbols, r)
}

// Buffer holds the expression being typed. The zero value is ready to use.
type Buffer struct {
	mu   sync.RWMutex
	data []byte
}

// Append adds r if it is an allowed character and the buffer is not full.
func (b *Buffer) Append(r rune) bool {
	if !IsAllowed(r) {
		return false
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	if len(b.data) >= consts.MaxInputLen-1 {
		return false
	}
	b.data = append(b.data, byte(r))
	return true
}

// AppendString appends every allowed character of s until the buffer is full
// and returns how many were accepted. Disallowed characters are dropped.
func (b *Buffer) AppendString(s string) int {
	accepted := 0
	for _, r := range s {
		if !IsAllowed(r) {
			continue
		}
		if !b.Append(r) {
			break
		}
		accepted++
	}
	return accepted
}

// Set replaces the content with the allowed characters of s.
func (b *Buffer) Set(s string) int {
	b.Clear()
	return b.AppendString(s)
}

// Backspace removes the last character. It reports false on an empty buffer.
func (b *Buffer) Backspace() bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	if len(b.data) == 0 {
		return false
	}
	b.data = b.data[:len(b.data)-1]
	return true
}

// Clear empties the buffer.
func (b *Buffer) Clear() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.data = b.data[:0]
}

// TrimPrefix removes prefix if the buffer still starts with it and keeps
// anything typed after it. It reports whether prefix was removed.
func (b *Buffer) TrimPrefix(prefix string) bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	if len(b.data) < len(prefix) || string(b.data[:len(prefix)]) != prefix {
		return false
	}
	b.data = append(b.data[:0], b.data[len(prefix):]...)
	return true
}

// String returns the current expression.
func (b *Buffer) String() string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return string(b.data)
}

// Len returns the number of buffered characters.
func (b *Buffer) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.data)
}
