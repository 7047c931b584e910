package messaging

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/franciscosanchezn/gin-food-api/internal/models"
	"github.com/franciscosanchezn/gin-food-api/internal/services"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/sirupsen/logrus"
)

// RabbitMQ publishes notifications to a durable exchange and consumes them
// from a queue bound to it
type RabbitMQ struct {
	Conn     *amqp.Connection
	Channel  *amqp.Channel
	Exchange string
	Queue    string

	mu sync.Mutex
}

var _ services.Notifier = (*RabbitMQ)(nil)

const (
	// MaxDeliveryAttempts bounds how often a notification is stored before it
	// is dead-lettered
	MaxDeliveryAttempts = 5

	attemptHeader = "x-attempt"
	retryBackoff  = 2 * time.Second
)

// Retrier brings a delivery back after a delay
type Retrier interface {
	Retry(ctx context.Context, msg amqp.Delivery, attempt int) error
}

func NewRabbitMQ(url, exchange, queue string) (*RabbitMQ, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("failed to open channel: %w", err)
	}

	return &RabbitMQ{
		Conn:     conn,
		Channel:  ch,
		Exchange: exchange,
		Queue:    queue,
	}, nil
}

func (r *RabbitMQ) deadLetterExchange() string {
	return r.Exchange + ".dlx"
}

func (r *RabbitMQ) deadLetterQueue() string {
	return r.Queue + ".dead"
}

func (r *RabbitMQ) retryQueue() string {
	return r.Queue + ".retry"
}

// SetupQueues declares the exchange and the mailbox queue and binds them.
// Rejected deliveries go to a dead-letter queue; retried ones wait in a
// retry queue until their expiration routes them back to the exchange.
func (r *RabbitMQ) SetupQueues() error {
	for _, exchange := range []string{r.Exchange, r.deadLetterExchange()} {
		if err := r.Channel.ExchangeDeclare(
			exchange,
			"direct",
			true,  // durable
			false, // auto-delete
			false, // internal
			false, // no-wait
			nil,
		); err != nil {
			return fmt.Errorf("failed to declare exchange %s: %w", exchange, err)
		}
	}

	queues := []struct {
		name string
		args amqp.Table
	}{
		{r.deadLetterQueue(), amqp.Table{"x-queue-type": "classic"}},
		{r.retryQueue(), amqp.Table{
			"x-queue-type":              "classic",
			"x-dead-letter-exchange":    r.Exchange,
			"x-dead-letter-routing-key": "",
		}},
		{r.Queue, amqp.Table{
			"x-queue-type":              "classic",
			"x-dead-letter-exchange":    r.deadLetterExchange(),
			"x-dead-letter-routing-key": r.deadLetterQueue(),
		}},
	}
	for _, q := range queues {
		if _, err := r.Channel.QueueDeclare(
			q.name,
			true,  // durable
			false, // auto-delete
			false, // exclusive
			false, // no-wait
			q.args,
		); err != nil {
			return fmt.Errorf("failed to declare queue %s: %w", q.name, err)
		}
	}

	if err := r.Channel.QueueBind(r.deadLetterQueue(), r.deadLetterQueue(), r.deadLetterExchange(), false, nil); err != nil {
		return fmt.Errorf("failed to bind queue %s: %w", r.deadLetterQueue(), err)
	}
	if err := r.Channel.QueueBind(r.Queue, "", r.Exchange, false, nil); err != nil {
		return fmt.Errorf("failed to bind queue %s: %w", r.Queue, err)
	}
	return nil
}

// Retry parks a copy of msg in the retry queue. The delay grows with attempt.
func (r *RabbitMQ) Retry(ctx context.Context, msg amqp.Delivery, attempt int) error {
	headers := amqp.Table{}
	for k, v := range msg.Headers {
		headers[k] = v
	}
	headers[attemptHeader] = int32(attempt)

	r.mu.Lock()
	defer r.mu.Unlock()
	return r.Channel.PublishWithContext(ctx,
		"", // default exchange routes by queue name
		r.retryQueue(),
		false, // mandatory
		false, // immediate
		amqp.Publishing{
			Headers:      headers,
			DeliveryMode: amqp.Persistent,
			Timestamp:    msg.Timestamp,
			ContentType:  msg.ContentType,
			Expiration:   strconv.FormatInt(RetryDelay(attempt).Milliseconds(), 10),
			Body:         msg.Body,
		},
	)
}

// RetryDelay is the linear backoff before the given attempt
func RetryDelay(attempt int) time.Duration {
	if attempt < 1 {
		attempt = 1
	}
	return time.Duration(attempt) * retryBackoff
}

func (r *RabbitMQ) Dispatch(ctx context.Context, n models.Notification) error {
	body, err := encode(n)
	if err != nil {
		return err
	}

	msg := amqp.Publishing{
		DeliveryMode: amqp.Persistent,
		Timestamp:    time.Now(),
		ContentType:  "application/json",
		Body:         body,
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	return r.Channel.PublishWithContext(ctx,
		r.Exchange,
		"",
		false, // mandatory
		false, // immediate
		msg,
	)
}

// StartConsumer delivers queued notifications to sink until ctx is done or
// the channel closes
func (r *RabbitMQ) StartConsumer(ctx context.Context, sink services.Notifier) error {
	msgs, err := r.Channel.Consume(
		r.Queue,
		"food-api-mailbox", // consumer tag
		false,              // auto-ack
		false,              // exclusive
		false,              // no-local
		false,              // no-wait
		nil,
	)
	if err != nil {
		return fmt.Errorf("failed to register consumer: %w", err)
	}

	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-msgs:
				if !ok {
					log.Warn("RabbitMQ delivery channel closed")
					return
				}
				HandleDelivery(ctx, msg, sink, r)
			}
		}
	}()
	return nil
}

// HandleDelivery stores one delivery. Malformed messages are dead-lettered.
// Storage failures are retried through retry with a growing delay and
// dead-lettered once MaxDeliveryAttempts is reached.
func HandleDelivery(ctx context.Context, msg amqp.Delivery, sink services.Notifier, retry Retrier) {
	n, err := decode(msg.Body)
	if err != nil {
		log.WithError(err).Warn("Dropping malformed notification")
		nack(msg)
		return
	}

	if err := sink.Dispatch(ctx, n); err != nil {
		attempt := deliveryAttempt(msg) + 1
		retryable := !errors.Is(err, models.ErrValidation) && attempt < MaxDeliveryAttempts
		entry := log.WithError(err).WithFields(logrus.Fields{
			"user_id": n.UserID,
			"attempt": attempt,
			"retry":   retryable,
		})
		entry.Error("Failed to store notification")

		if !retryable {
			nack(msg)
			return
		}
		if err := retry.Retry(ctx, msg, attempt); err != nil {
			entry.WithField("retry_error", err).Error("Failed to schedule retry")
			nack(msg)
			return
		}
	}

	if err := msg.Ack(false); err != nil {
		log.WithError(err).Error("Failed to ack message")
	}
}

// nack rejects msg without requeueing so the broker dead-letters it
func nack(msg amqp.Delivery) {
	if err := msg.Nack(false, false); err != nil {
		log.WithError(err).Error("Failed to nack message")
	}
}

// deliveryAttempt reads how many times msg has already failed
func deliveryAttempt(msg amqp.Delivery) int {
	switch v := msg.Headers[attemptHeader].(type) {
	case int32:
		return int(v)
	case int64:
		return int(v)
	case int:
		return v
	}
	return 0
}

func (r *RabbitMQ) Close() {
	if r.Channel != nil {
		if err := r.Channel.Close(); err != nil {
			log.WithError(err).Warn("Failed to close RabbitMQ channel")
		}
	}
	if r.Conn != nil {
		if err := r.Conn.Close(); err != nil {
			log.WithError(err).Warn("Failed to close RabbitMQ connection")
		}
	}
}
