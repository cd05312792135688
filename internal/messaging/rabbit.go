// internal/messaging/rabbit.go
package messaging

import (
	"fmt"
	"log"

	"compliancehub/internal/metrics"

	"github.com/streadway/amqp"
)

const (
	// JobsQueue is the durable queue the scheduler publishes job
	// triggers to and the single worker consumes from.
	JobsQueue = "billing_jobs"
	// JobsDLQ receives jobs that exhausted their retry budget.
	JobsDLQ = "billing_jobs_dlq"
	// NotificationsQueue carries outbound notification payloads for
	// the (external) delivery service.
	NotificationsQueue = "notifications"
)

type RabbitClient struct {
	conn    *amqp.Connection
	channel *amqp.Channel
	URL     string
}

func NewRabbitClient(url string) (*RabbitClient, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to create channel: %w", err)
	}

	return &RabbitClient{
		conn:    conn,
		channel: ch,
		URL:     url,
	}, nil
}

func (r *RabbitClient) GetChannel() *amqp.Channel {
	return r.channel
}

func (r *RabbitClient) GetConnection() *amqp.Connection {
	return r.conn
}

// DeclareQueues creates the durable jobs queue (with its DLQ) and the
// notifications queue. Safe to call on every startup.
func (r *RabbitClient) DeclareQueues() error {
	// 1. DLQ
	_, err := r.channel.QueueDeclare(
		JobsDLQ,
		true, false, false, false,
		nil,
	)
	if err != nil {
		return fmt.Errorf("declare DLQ: %w", err)
	}

	// 2. Jobs queue with DLQ binding
	args := amqp.Table{
		"x-dead-letter-exchange":    "",
		"x-dead-letter-routing-key": JobsDLQ,
	}
	_, err = r.channel.QueueDeclare(
		JobsQueue,
		true, false, false, false,
		args,
	)
	if err != nil {
		return fmt.Errorf("declare jobs queue: %w", err)
	}

	// 3. Notifications queue
	_, err = r.channel.QueueDeclare(
		NotificationsQueue,
		true, false, false, false,
		nil,
	)
	if err != nil {
		return fmt.Errorf("declare notifications queue: %w", err)
	}

	log.Printf("[Rabbit] Queues declared: %s, %s, %s", JobsQueue, JobsDLQ, NotificationsQueue)
	return nil
}

// Publish sends a message to the named queue via the default exchange.
func (r *RabbitClient) Publish(queueName string, body []byte) error {
	err := r.channel.Publish(
		"",        // default exchange
		queueName, // routing key (queue name)
		false,
		false,
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			Body:         body,
		},
	)
	if err != nil {
		return fmt.Errorf("failed to publish to queue %s: %w", queueName, err)
	}
	return nil
}

// Close cleans up connection and channel
func (r *RabbitClient) Close() error {
	if err := r.channel.Close(); err != nil {
		return err
	}
	if err := r.conn.Close(); err != nil {
		return err
	}
	return nil
}

func (r *RabbitClient) UpdateQueueDepth(queueName string) {
	q, err := r.channel.QueueInspect(queueName)
	if err != nil {
		log.Printf("[Rabbit] Failed to inspect queue %s: %v", queueName, err)
		return
	}

	metrics.QueueDepth.WithLabelValues(queueName).Set(float64(q.Messages))
}
