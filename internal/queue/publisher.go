package queue

import (
	"context"
	"encoding/json"
	"log"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

const mailQueueName = "mail.outbound"

// Publisher publishes mail events to RabbitMQ. Errors are logged and
// returned so callers can decide whether a failed publish aborts their
// operation (the teacher provisioning path) or is merely logged (the
// student path).
type Publisher struct {
	URL string
}

// NewPublisher builds a publisher for the given broker URL. The URL comes
// from configuration; deployments without a broker use NopPublisher
// instead.
func NewPublisher(url string) *Publisher {
	return &Publisher{URL: url}
}

// NopPublisher drops mail events, logging each one. Used when no broker
// is configured so auth flows still complete in development.
type NopPublisher struct{}

func (NopPublisher) PublishMailRequested(_ context.Context, event MailRequestedEvent) error {
	log.Printf("mail (no broker configured): kind=%s to=%s link=%s", event.Kind, event.To, event.Link)
	return nil
}

// PublishMailRequested publishes a MailRequestedEvent to the mail.outbound
// queue. Messages are marked persistent and the queue is declared durable
// so pending mail survives broker restarts.
func (p *Publisher) PublishMailRequested(ctx context.Context, event MailRequestedEvent) error {
	conn, err := amqp.Dial(p.URL)
	if err != nil {
		log.Printf("rabbitmq: dial failed: %v", err)
		return err
	}
	defer func() { _ = conn.Close() }()

	ch, err := conn.Channel()
	if err != nil {
		log.Printf("rabbitmq: channel open failed: %v", err)
		return err
	}
	defer func() { _ = ch.Close() }()

	if _, err := ch.QueueDeclare(
		mailQueueName, // name
		true,          // durable
		false,         // autoDelete
		false,         // exclusive
		false,         // noWait
		nil,           // args
	); err != nil {
		log.Printf("rabbitmq: queue declare failed: %v", err)
		return err
	}

	body, err := json.Marshal(event)
	if err != nil {
		log.Printf("rabbitmq: marshal event failed: %v", err)
		return err
	}

	pub := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    time.Now().UTC(),
		Body:         body,
	}

	if err := ch.PublishWithContext(ctx,
		"",            // default exchange
		mailQueueName, // routing key = queue name
		false,         // mandatory
		false,         // immediate
		pub,
	); err != nil {
		log.Printf("rabbitmq: publish failed: %v", err)
		return err
	}

	return nil
}
