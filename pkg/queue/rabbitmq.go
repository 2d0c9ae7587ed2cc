package queue

import (
	"fmt"
	"os"

	amqp "github.com/rabbitmq/amqp091-go"
)

// ReportsExchange carries report lifecycle events. Routing keys:
// "report.created" and "report.updated".
const ReportsExchange = "reports"

func ConnectRabbitMQ(uri string) (*amqp.Connection, *amqp.Channel, error) {
	conn, err := amqp.Dial(uri)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to connect to rabbitmq: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open channel: %w", err)
	}

	return conn, ch, nil
}

// URIFromEnv builds the broker URI from RABBITMQ_* variables, defaulting to a
// local broker.
func URIFromEnv() string {
	if v := os.Getenv("RABBITMQ_URL"); v != "" {
		return v
	}
	host := envOr("RABBITMQ_HOST", "localhost")
	port := envOr("RABBITMQ_PORT", "5672")
	user := envOr("RABBITMQ_USER", "guest")
	pass := envOr("RABBITMQ_PASS", "guest")
	return fmt.Sprintf("amqp://%s:%s@%s:%s/", user, pass, host, port)
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
