// Package widget is the chat panel: persisted visibility, the message log and
// the exchange with the assistant endpoint.
package widget

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"
)

type Role string

const (
	RoleUser Role = "user"
	RoleBot  Role = "bot"
)

// Message is one rendered entry in the chat log.
type Message struct {
	Text string
	Role Role
}

const (
	NoReply     = "No reply from assistant"
	Unreachable = "Unable to reach assistant server. Start `assistant-server`."
	errorPrefix = "Assistant error: "
)

// VisibleKey is the storage key of the visibility flag.
const VisibleKey = "chatVisible"

// KV is the persisted key/value storage the flag lives in.
type KV interface {
	Get(key string) (string, bool, error)
	Set(key, value string) error
}

// Visibility hides the raw "0"/"1" storage format from callers.
type Visibility struct {
	kv KV
}

func NewVisibility(kv KV) Visibility { return Visibility{kv: kv} }

// GetChatVisible reports the stored flag. Unset, "0" and unreadable storage
// all mean hidden.
func (v Visibility) GetChatVisible() bool {
	if v.kv == nil {
		return false
	}
	val, ok, err := v.kv.Get(VisibleKey)
	if err != nil {
		slog.Debug("[widget] visibility read failed", "error", err)
		return false
	}
	return ok && val == "1"
}

func (v Visibility) SetChatVisible(visible bool) error {
	if v.kv == nil {
		return nil
	}
	val := "0"
	if visible {
		val = "1"
	}
	return v.kv.Set(VisibleKey, val)
}

// Sender delivers one chat message and returns the reply.
type Sender interface {
	Send(ctx context.Context, message string) (string, error)
}

type Widget struct {
	mu       sync.Mutex
	visible  bool
	messages []Message

	vis    Visibility
	sender Sender
	focus  func() error
}

func New(kv KV, sender Sender) *Widget {
	return &Widget{vis: NewVisibility(kv), sender: sender}
}

// OnFocus sets the hook run when the panel becomes visible.
func (w *Widget) OnFocus(fn func() error) {
	w.mu.Lock()
	w.focus = fn
	w.mu.Unlock()
}

// Restore applies the persisted visibility. The panel starts hidden.
func (w *Widget) Restore() {
	if w.vis.GetChatVisible() {
		w.setVisible(true)
	}
}

func (w *Widget) Show() { w.setVisible(true) }

func (w *Widget) Hide() { w.setVisible(false) }

func (w *Widget) Toggle() { w.setVisible(!w.Visible()) }

func (w *Widget) Visible() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.visible
}

func (w *Widget) setVisible(visible bool) {
	w.mu.Lock()
	w.visible = visible
	focus := w.focus
	w.mu.Unlock()

	if visible && focus != nil {
		_ = focus()
	}
	if err := w.vis.SetChatVisible(visible); err != nil {
		slog.Debug("[widget] visibility write failed", "error", err)
	}
}

// Messages returns a copy of the log in append order.
func (w *Widget) Messages() []Message {
	w.mu.Lock()
	defer w.mu.Unlock()
	out := make([]Message, len(w.messages))
	copy(out, w.messages)
	return out
}

func (w *Widget) Append(m Message) {
	w.mu.Lock()
	w.messages = append(w.messages, m)
	w.mu.Unlock()
}

// Begin trims input and, when anything is left, logs it as a user message.
// ok is false for blank input, which must not reach the network.
func (w *Widget) Begin(input string) (text string, ok bool) {
	text = strings.TrimSpace(input)
	if text == "" {
		return "", false
	}
	w.Append(Message{Text: text, Role: RoleUser})
	return text, true
}

// Exchange sends text to the assistant and returns the single bot message
// describing the outcome. It never fails.
func (w *Widget) Exchange(ctx context.Context, text string) Message {
	reply, err := w.sender.Send(ctx, text)
	var se *StatusError
	switch {
	case errors.As(err, &se):
		detail := se.Message
		if detail == "" {
			detail = se.Status
		}
		return Message{Text: errorPrefix + detail, Role: RoleBot}
	case err != nil:
		slog.Debug("[widget] assistant unreachable", "error", err)
		return Message{Text: Unreachable, Role: RoleBot}
	case reply == "":
		return Message{Text: NoReply, Role: RoleBot}
	default:
		return Message{Text: reply, Role: RoleBot}
	}
}

// Submit runs Begin, Exchange and Append in sequence. It reports whether a
// request was made.
func (w *Widget) Submit(ctx context.Context, input string) bool {
	text, ok := w.Begin(input)
	if !ok {
		return false
	}
	w.Append(w.Exchange(ctx, text))
	return true
}
