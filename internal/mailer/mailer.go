// Package mailer abstracts outbound mail delivery. The queue consumer is
// the only caller; it formats mail events into subject/body pairs and
// hands them here.
package mailer

import (
	"context"
	"log"
)

// Mailer delivers a single plain-text message.
type Mailer interface {
	Send(ctx context.Context, to, subject, body string) error
}

// Console writes messages to the process log instead of delivering them.
// Used in development and whenever no SendGrid key is configured.
type Console struct {
	From string
}

func NewConsole(from string) *Console { return &Console{From: from} }

func (c *Console) Send(_ context.Context, to, subject, body string) error {
	log.Printf("mail (console): from=%s to=%s subject=%q\n%s", c.From, to, subject, body)
	return nil
}
