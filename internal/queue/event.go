// Package queue defines message payloads exchanged over the message broker
// and the background consumer that delivers them.
package queue

// Mail kinds understood by the consumer.
const (
	MailKindVerification  = "verification"
	MailKindPasswordReset = "password_reset"
)

// MailRequestedEvent is published when the auth provider needs a message
// delivered: an address verification link after account creation, or a
// password reset link. It carries everything the consumer needs so mail
// delivery never touches the primary database.
type MailRequestedEvent struct {
	Kind        string `json:"kind"`
	To          string `json:"to"`
	Name        string `json:"name,omitempty"`
	Link        string `json:"link"`
	RequestedAt string `json:"requested_at"`
}
