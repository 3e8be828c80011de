package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/nanaacademy/academy-server/internal/mailer"
)

// StartMailConsumer connects to RabbitMQ, declares the mail.outbound queue
// (durable), and delivers each event through the given mailer. It runs a
// reconnect loop with exponential backoff and keeps running across broker
// restarts; processing errors are logged and the offending message is
// rejected without requeue to avoid tight redelivery loops.
func StartMailConsumer(url string, m mailer.Mailer) {
	backoff := time.Second
	for {
		conn, err := amqp.Dial(url)
		if err != nil {
			log.Printf("mail-consumer: failed to dial broker: %v; retrying in %s", err, backoff)
			time.Sleep(backoff)
			if backoff < 30*time.Second {
				backoff *= 2
			}
			continue
		}
		backoff = time.Second // reset after successful connect

		if err := consumeLoop(conn, m); err != nil {
			log.Printf("mail-consumer: consume loop ended: %v; reconnecting", err)
			time.Sleep(2 * time.Second)
			continue
		}
	}
}

func consumeLoop(conn *amqp.Connection, m mailer.Mailer) error {
	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("channel open: %w", err)
	}
	defer func() { _ = ch.Close() }()

	if err := ch.Qos(20, 0, false); err != nil {
		log.Printf("mail-consumer: set QoS failed: %v", err)
	}

	if _, err := ch.QueueDeclare(mailQueueName, true, false, false, false, nil); err != nil {
		return fmt.Errorf("queue declare: %w", err)
	}

	msgs, err := ch.Consume(mailQueueName, "", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("queue consume: %w", err)
	}

	for d := range msgs {
		if err := handleMessage(d.Body, m); err != nil {
			log.Printf("mail-consumer: handle message failed: %v", err)
			_ = d.Nack(false, false) // reject, do not requeue
			continue
		}
		_ = d.Ack(false)
	}
	return errors.New("deliveries channel closed")
}

func handleMessage(body []byte, m mailer.Mailer) error {
	var ev MailRequestedEvent
	if err := json.Unmarshal(body, &ev); err != nil {
		return fmt.Errorf("unmarshal: %w", err)
	}
	subject, text, err := renderMail(ev)
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := m.Send(ctx, ev.To, subject, text); err != nil {
		return fmt.Errorf("send: %w", err)
	}
	return nil
}

// renderMail maps a mail event to a subject and plain-text body.
func renderMail(ev MailRequestedEvent) (subject, text string, err error) {
	greeting := "Hello"
	if ev.Name != "" {
		greeting = "Hello " + ev.Name
	}
	switch ev.Kind {
	case MailKindVerification:
		subject = "[NANA ACADEMY] Verify your email address"
		text = fmt.Sprintf("%s,\n\nPlease verify your email address by opening the link below:\n\n%s\n\nIf you did not expect this message you can ignore it.\n", greeting, ev.Link)
	case MailKindPasswordReset:
		subject = "[NANA ACADEMY] Reset your password"
		text = fmt.Sprintf("%s,\n\nA password reset was requested for your account. Open the link below to choose a new password:\n\n%s\n\nThe link expires in one hour. If you did not request a reset you can ignore this message.\n", greeting, ev.Link)
	default:
		return "", "", fmt.Errorf("unknown mail kind %q", ev.Kind)
	}
	return subject, text, nil
}
