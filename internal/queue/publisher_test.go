package queue

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewPublisherKeepsConfiguredURL(t *testing.T) {
	// The broker URL comes from configuration only; a publisher never
	// invents a default address.
	t.Setenv("RABBITMQ_URL", "amqp://from-env:5672/")

	p := NewPublisher("amqp://broker.internal:5672/")
	assert.Equal(t, "amqp://broker.internal:5672/", p.URL)

	assert.Empty(t, NewPublisher("").URL)
}

func TestNopPublisherDropsEvent(t *testing.T) {
	err := NopPublisher{}.PublishMailRequested(context.Background(), MailRequestedEvent{
		Kind: MailKindVerification,
		To:   "x@nana.academy",
	})
	require.NoError(t, err)
}
