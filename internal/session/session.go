package session

import (
	"context"
	"sync"
	"time"

	"github.com/codefionn/calcschnell/internal/calc"
	"github.com/codefionn/calcschnell/internal/history"
	"github.com/codefionn/calcschnell/internal/input"
	"github.com/codefionn/calcschnell/internal/logger"
)

// maxOutcomes bounds the per-session outcome log
const maxOutcomes = 50

// Recorder persists evaluations. history.Store implements it.
type Recorder interface {
	Record(ctx context.Context, entry history.Entry) (int64, error)
}

// Outcome is the result of one evaluation as shown on the display
type Outcome struct {
	Expression string    `json:"expression"`
	Result     string    `json:"result,omitempty"`
	Err        error     `json:"-"`
	Message    string    `json:"message,omitempty"` // display text for Err
	Skipped    bool      `json:"skipped,omitempty"` // nothing was evaluated
	At         time.Time `json:"at"`
}

// OK reports whether the evaluation produced a result
func (o Outcome) OK() bool {
	return !o.Skipped && o.Err == nil
}

// Display returns the text for the result line
func (o Outcome) Display() string {
	if o.Err != nil {
		return o.Message
	}
	return o.Result
}

// Session ties an input buffer to the evaluator, one per user-facing surface
type Session struct {
	ID     string
	Source string // history source tag, e.g. "tui" or "ws"

	buf      input.Buffer
	recorder Recorder
	log      *logger.Logger

	mu        sync.RWMutex
	last      Outcome
	outcomes  []Outcome
	CreatedAt time.Time
}

// NewSession creates a session. recorder may be nil to skip persistence.
func NewSession(source string, recorder Recorder) *Session {
	id := NewID()
	return &Session{
		ID:        id,
		Source:    source,
		recorder:  recorder,
		log:       logger.Global().WithPrefix("session:" + id),
		outcomes:  make([]Outcome, 0, maxOutcomes),
		CreatedAt: time.Now(),
	}
}

// Input exposes the session's buffer
func (s *Session) Input() *input.Buffer {
	return &s.buf
}

// Text returns the expression being typed
func (s *Session) Text() string {
	return s.buf.String()
}

// Append adds one typed character
func (s *Session) Append(r rune) bool {
	return s.buf.Append(r)
}

// AppendString adds pasted text, dropping characters the keypad cannot produce
func (s *Session) AppendString(text string) int {
	return s.buf.AppendString(text)
}

// Backspace removes the last typed character
func (s *Session) Backspace() bool {
	return s.buf.Backspace()
}

// Clear empties the buffer
func (s *Session) Clear() {
	s.buf.Clear()
}

// Submit evaluates the buffer. An empty buffer is not evaluated. A successful
// evaluation removes the evaluated text from the buffer, keeping characters
// typed meanwhile; a failed one leaves it for correction.
func (s *Session) Submit(ctx context.Context) Outcome {
	expr := s.buf.String()
	if expr == "" {
		return Outcome{Skipped: true, At: time.Now()}
	}

	outcome := s.evaluate(ctx, expr)
	if outcome.OK() {
		s.buf.TrimPrefix(expr)
	}
	return outcome
}

// Evaluate evaluates expr directly without touching the buffer
func (s *Session) Evaluate(ctx context.Context, expr string) Outcome {
	return s.evaluate(ctx, expr)
}

func (s *Session) evaluate(ctx context.Context, expr string) Outcome {
	result, err := calc.Evaluate(expr)
	outcome := Outcome{
		Expression: expr,
		Result:     result,
		Err:        err,
		Message:    calc.Message(err),
		At:         time.Now(),
	}

	if err != nil {
		s.log.Debug("evaluation of %q failed: %v", expr, err)
	} else {
		s.log.Debug("evaluated %q = %s", expr, result)
	}

	s.mu.Lock()
	s.last = outcome
	if len(s.outcomes) == maxOutcomes {
		copy(s.outcomes, s.outcomes[1:])
		s.outcomes = s.outcomes[:maxOutcomes-1]
	}
	s.outcomes = append(s.outcomes, outcome)
	s.mu.Unlock()

	s.record(ctx, outcome)
	return outcome
}

func (s *Session) record(ctx context.Context, outcome Outcome) {
	if s.recorder == nil {
		return
	}
	entry := history.NewEntry(s.Source, outcome.Expression, outcome.Result, outcome.Err)
	if _, err := s.recorder.Record(ctx, entry); err != nil {
		s.log.Warn("failed to record evaluation: %v", err)
	}
}

// Last returns the most recent outcome
func (s *Session) Last() Outcome {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.last
}

// Outcomes returns the session's evaluations, oldest first
func (s *Session) Outcomes() []Outcome {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Outcome, len(s.outcomes))
	copy(out, s.outcomes)
	return out
}
