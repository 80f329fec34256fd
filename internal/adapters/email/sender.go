// Package email delivers notification emails. Bodies are written in markdown
// and rendered to HTML at send time.
package email

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/yuin/goldmark"
)

// Message is one outgoing email.
type Message struct {
	To       []string
	Subject  string
	Markdown string // body source; rendered to HTML by the sender
}

// SendResult is the provider's acknowledgement.
type SendResult struct {
	MessageID string
	SentAt    time.Time
}

// Sender delivers a message through an external provider.
type Sender interface {
	Send(ctx context.Context, msg Message) (SendResult, error)
}

var ErrNoRecipient = errors.New("email has no recipient")

// Validate checks that the message can be sent.
func (m Message) Validate() error {
	if len(m.To) == 0 || m.To[0] == "" {
		return ErrNoRecipient
	}
	if m.Subject == "" {
		return errors.New("email has no subject")
	}
	return nil
}

var markdown = goldmark.New()

// RenderHTML converts a markdown body to HTML. Raw HTML in the source is escaped.
func RenderHTML(source string) (string, error) {
	var buf bytes.Buffer
	if err := markdown.Convert([]byte(source), &buf); err != nil {
		return "", fmt.Errorf("render markdown: %w", err)
	}
	return buf.String(), nil
}
