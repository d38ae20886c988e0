// Package auth drives authentication: it adapts the host authentication
// stack's conversation protocol onto the secure prompt channel, consults the
// credential cache to suppress redundant prompts, and runs the retry loop.
package auth

import (
	"strings"

	"pezzo-go/errors"
	"pezzo-go/prompt"
)

// MsgStyle is the host stack's message classification.
type MsgStyle int

const (
	// EchoOff asks for a secret with echo disabled.
	EchoOff MsgStyle = iota
	// EchoOn asks for a visible line. The conversation still routes it
	// through the no-echo path so a misconfigured stack cannot make a
	// password visible.
	EchoOn
	// Info carries a message for the user; no reply.
	Info
	// ErrorText carries an error message for the user; no reply.
	ErrorText
)

// Message is one item of a conversation round.
type Message struct {
	Style MsgStyle
	Text  string
}

// Reply answers one message. Secret is a NUL-terminated byte string whose
// ownership transfers to the stack; prompt-only messages leave it nil.
type Reply struct {
	Secret []byte
}

// Conversation is the callback contract the host stack drives.
type Conversation interface {
	Converse(msgs []Message) ([]Reply, error)
}

// Prompter is the slice of the prompt channel the conversation needs.
// *prompt.Channel implements it.
type Prompter interface {
	EmitPrompt(text string) error
	EmitPasswordPrompt() error
	WriteMessage(text string) error
	ReadLine(echo bool) (*prompt.SecretBuffer, error)
	InvokerName() string
}

// PromptConversation maps stack messages onto the prompt channel.
type PromptConversation struct {
	prompter Prompter
	timedOut bool
}

// NewPromptConversation wraps a prompter.
func NewPromptConversation(p Prompter) *PromptConversation {
	return &PromptConversation{prompter: p}
}

// preflight resets per-attempt state.
func (c *PromptConversation) preflight() {
	c.timedOut = false
}

// TimedOut reports whether the last round failed on the prompt timeout.
func (c *PromptConversation) TimedOut() bool {
	return c.timedOut
}

// isPasswordPrompt recognises the host stack's stock password prompts, which
// are replaced with the program's own branded prompt. This is a usability
// rule, not a security one.
func isPasswordPrompt(text, invoker string) bool {
	if rest, ok := strings.CutPrefix(text, "Password:"); ok {
		return rest == "" || rest == " "
	}
	if rest, ok := strings.CutPrefix(text, invoker+"'s Password:"); ok {
		return rest == "" || rest == " "
	}
	return false
}

// Converse handles one round of stack messages.
func (c *PromptConversation) Converse(msgs []Message) ([]Reply, error) {
	replies := make([]Reply, len(msgs))
	for i, m := range msgs {
		switch m.Style {
		case EchoOff, EchoOn:
			buf, err := c.promptSecret(m.Text)
			if err != nil {
				return nil, err
			}
			replies[i].Secret = buf.TakeCString()
		case Info, ErrorText:
			if err := c.prompter.WriteMessage(m.Text); err != nil {
				return nil, err
			}
		default:
			return nil, errors.New(errors.KindAuthFatal, "converse", "unknown message style")
		}
	}
	return replies, nil
}

func (c *PromptConversation) promptSecret(text string) (*prompt.SecretBuffer, error) {
	var err error
	if isPasswordPrompt(text, c.prompter.InvokerName()) {
		err = c.prompter.EmitPasswordPrompt()
	} else {
		err = c.prompter.EmitPrompt(text)
	}
	if err != nil {
		return nil, err
	}

	buf, err := c.prompter.ReadLine(false)
	if err != nil {
		if errors.Is(err, errors.ErrPromptTimedOut) {
			c.timedOut = true
		}
		return nil, err
	}
	return buf, nil
}
