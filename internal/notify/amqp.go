package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/rs/zerolog"

	"github.com/Shivanand-hulikatti/culinary-events/internal/log"
)

// DefaultQueue is the queue confirmations are published to.
const DefaultQueue = "booking.confirmed"

// channel is the subset of *amqp.Channel used for publishing.
type channel interface {
	QueueDeclare(name string, durable, autoDelete, exclusive, noWait bool, args amqp.Table) (amqp.Queue, error)
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
	Close() error
}

type dialFunc func(url string) (io.Closer, channel, error)

// AMQPNotifier publishes confirmations as persistent JSON messages to a
// durable queue on the default exchange. It dials per message.
type AMQPNotifier struct {
	url    string
	queue  string
	dial   dialFunc
	logger zerolog.Logger
}

// NewAMQPNotifier returns a notifier for the broker at url. An empty queue
// selects DefaultQueue.
func NewAMQPNotifier(url, queue string) *AMQPNotifier {
	if queue == "" {
		queue = DefaultQueue
	}
	return &AMQPNotifier{
		url:    url,
		queue:  queue,
		dial:   dialAMQP,
		logger: log.WithComponent("notify"),
	}
}

func dialAMQP(url string) (io.Closer, channel, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, nil, err
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, nil, err
	}
	return conn, ch, nil
}

// BookingConfirmed implements Notifier.
func (n *AMQPNotifier) BookingConfirmed(ctx context.Context, msg BookingConfirmed) error {
	body, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("marshal booking confirmed: %w", err)
	}

	conn, ch, err := n.dial(n.url)
	if err != nil {
		n.logger.Warn().Err(err).Msg("amqp dial failed")
		return fmt.Errorf("amqp dial: %w", err)
	}
	defer func() { _ = conn.Close() }()
	defer func() { _ = ch.Close() }()

	if _, err := ch.QueueDeclare(n.queue, true, false, false, false, nil); err != nil {
		return fmt.Errorf("amqp queue declare: %w", err)
	}

	pub := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    time.Now().UTC(),
		MessageId:    msg.Reference,
		Body:         body,
	}
	if err := ch.PublishWithContext(ctx, "", n.queue, false, false, pub); err != nil {
		n.logger.Warn().Err(err).Str(log.FieldReference, msg.Reference).Msg("amqp publish failed")
		return fmt.Errorf("amqp publish: %w", err)
	}
	n.logger.Debug().Str(log.FieldReference, msg.Reference).Str("queue", n.queue).Msg("booking confirmation published")
	return nil
}
