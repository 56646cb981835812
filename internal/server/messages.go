package server

import (
	"time"

	"github.com/codefionn/calcschnell/internal/calc"
	"github.com/codefionn/calcschnell/internal/session"
)

// Client message types
const (
	MessageTypeAppend    = "append"
	MessageTypeBackspace = "backspace"
	MessageTypeClear     = "clear"
	MessageTypeSubmit    = "submit"
	MessageTypeEvaluate  = "evaluate"
)

// Server message types
const (
	MessageTypeHello     = "hello"
	MessageTypeInput     = "input"
	MessageTypeResult    = "result"
	MessageTypeError     = "error"
	MessageTypeBroadcast = "broadcast"
)

// ClientMessage is sent by a WebSocket client
type ClientMessage struct {
	Type string `json:"type"`
	Text string `json:"text,omitempty"`
}

// WebMessage is sent to WebSocket clients
type WebMessage struct {
	Type       string    `json:"type"`
	Session    string    `json:"session,omitempty"`
	Input      *string   `json:"input,omitempty"` // current buffer, present on replies to the owner
	Expression string    `json:"expression,omitempty"`
	Result     string    `json:"result,omitempty"`
	Error      string    `json:"error,omitempty"`
	Kind       string    `json:"kind,omitempty"`
	Timestamp  time.Time `json:"timestamp"`
}

func inputMessage(sess *session.Session) *WebMessage {
	text := sess.Text()
	return &WebMessage{
		Type:      MessageTypeInput,
		Session:   sess.ID,
		Input:     &text,
		Timestamp: time.Now(),
	}
}

func outcomeMessage(sess *session.Session, outcome session.Outcome) *WebMessage {
	msg := inputMessage(sess)
	msg.Expression = outcome.Expression
	if outcome.Err != nil {
		msg.Type = MessageTypeError
		msg.Error = outcome.Message
		if kind := calc.KindOf(outcome.Err); kind != 0 {
			msg.Kind = kind.String()
		}
		return msg
	}
	msg.Type = MessageTypeResult
	msg.Result = outcome.Result
	return msg
}

func broadcastMessage(sessionID string, outcome session.Outcome) *WebMessage {
	return &WebMessage{
		Type:       MessageTypeBroadcast,
		Session:    sessionID,
		Expression: outcome.Expression,
		Result:     outcome.Result,
		Timestamp:  outcome.At,
	}
}

func errorMessage(text string) *WebMessage {
	return &WebMessage{
		Type:      MessageTypeError,
		Error:     text,
		Timestamp: time.Now(),
	}
}
