package queue

import (
	"fmt"

	amqp "github.com/rabbitmq/amqp091-go"
)

// DeclareAndBind declares a durable queue and binds it to the exchange for the
// given routing keys.
func DeclareAndBind(ch *amqp.Channel, exchange, queueName string, routingKeys ...string) (amqp.Queue, error) {
	if err := ch.ExchangeDeclare(exchange, "direct", true, false, false, false, nil); err != nil {
		return amqp.Queue{}, fmt.Errorf("failed to declare exchange: %w", err)
	}

	q, err := ch.QueueDeclare(queueName, true, false, false, false, nil)
	if err != nil {
		return amqp.Queue{}, fmt.Errorf("failed to declare queue: %w", err)
	}

	for _, key := range routingKeys {
		if err := ch.QueueBind(q.Name, key, exchange, false, nil); err != nil {
			return amqp.Queue{}, fmt.Errorf("failed to bind queue to %s: %w", key, err)
		}
	}

	return q, nil
}

func ConsumeMessages(ch *amqp.Channel, queueName string) (<-chan amqp.Delivery, error) {
	msgs, err := ch.Consume(queueName, "", true, false, false, false, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to register consumer: %w", err)
	}
	return msgs, nil
}
