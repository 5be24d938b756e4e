package client

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"time"
)

// Replies shown in place of a proxy result.
const (
	NoResponse   = "No response."
	ContactError = "Error contacting API."
)

// Role is the author of a transcript message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message is one transcript entry.
type Message struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// Transcript is an append-only list of messages, safe for concurrent use.
type Transcript struct {
	mu       sync.RWMutex
	messages []Message
}

// Append adds m to the end.
func (t *Transcript) Append(m Message) {
	t.mu.Lock()
	t.messages = append(t.messages, m)
	t.mu.Unlock()
}

// Messages returns a copy of the transcript.
func (t *Transcript) Messages() []Message {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return append([]Message(nil), t.messages...)
}

// Len returns the number of messages.
func (t *Transcript) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.messages)
}

// Completer sends one prompt. *Client implements it.
type Completer interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// Session is one conversation with the proxy. Each prompt is sent on its
// own; the proxy keeps no history. Sends are serialized.
type Session struct {
	completer  Completer
	transcript *Transcript
	logger     *slog.Logger
	sendMu     sync.Mutex
}

// NewSession starts an empty conversation.
func NewSession(c Completer, logger *slog.Logger) *Session {
	if logger == nil {
		logger = slog.Default()
	}
	return &Session{completer: c, transcript: &Transcript{}, logger: logger}
}

// Send records prompt, asks the proxy and records the reply. A blank prompt
// is ignored and reported with ok == false.
func (s *Session) Send(ctx context.Context, prompt string) (reply Message, ok bool) {
	if strings.TrimSpace(prompt) == "" {
		return Message{}, false
	}

	s.sendMu.Lock()
	defer s.sendMu.Unlock()

	s.transcript.Append(Message{Role: RoleUser, Content: prompt})

	result, err := s.completer.Complete(ctx, prompt)
	switch {
	case err != nil:
		s.logger.DebugContext(ctx, "chat request failed", "error", err)
		result = ContactError
	case result == "":
		result = NoResponse
	}

	reply = Message{Role: RoleAssistant, Content: result}
	s.transcript.Append(reply)
	return reply, true
}

// SendReport sends the daily report quick action for day t.
func (s *Session) SendReport(ctx context.Context, t time.Time) (Message, bool) {
	return s.Send(ctx, ReportPrompt(t))
}

// Transcript returns the conversation so far.
func (s *Session) Transcript() *Transcript {
	return s.transcript
}

// ReportPrompt builds the quick-action prompt asking for the report summary
// of t's calendar day in t's location.
func ReportPrompt(t time.Time) string {
	return "ringkasan laporan " + t.Format(time.DateOnly)
}
