package dispatch

import (
	"context"
	"encoding/json"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/pkg/errors"

	"storefront/pkg/storefront/domain/service"
)

const publishTimeout = 5 * time.Second

// AMQPDispatcher publishes domain events as JSON to a fanout exchange.
// Delivery is fire-and-forget; event loss is acceptable, the ledger
// remains the source of truth.
type AMQPDispatcher struct {
	channel  *amqp.Channel
	exchange string
}

func NewAMQPDispatcher(conn *amqp.Connection, exchange string) (*AMQPDispatcher, error) {
	channel, err := conn.Channel()
	if err != nil {
		return nil, errors.Wrap(err, "open amqp channel")
	}
	err = channel.ExchangeDeclare(exchange, "fanout", true, false, false, false, nil)
	if err != nil {
		return nil, errors.Wrapf(err, "declare exchange %s", exchange)
	}
	return &AMQPDispatcher{channel: channel, exchange: exchange}, nil
}

type envelope struct {
	Type       string        `json:"type"`
	OccurredAt time.Time     `json:"occurred_at"`
	Payload    service.Event `json:"payload"`
}

func (d *AMQPDispatcher) Dispatch(event service.Event) error {
	body, err := json.Marshal(envelope{
		Type:       event.Type(),
		OccurredAt: time.Now().UTC(),
		Payload:    event,
	})
	if err != nil {
		return errors.Wrapf(err, "encode event %s", event.Type())
	}

	ctx, cancel := context.WithTimeout(context.Background(), publishTimeout)
	defer cancel()

	err = d.channel.PublishWithContext(ctx, d.exchange, "", false, false, amqp.Publishing{
		ContentType: "application/json",
		Body:        body,
	})
	return errors.Wrapf(err, "publish event %s", event.Type())
}

func (d *AMQPDispatcher) Close() error {
	return d.channel.Close()
}
