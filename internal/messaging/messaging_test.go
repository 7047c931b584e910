package messaging

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/franciscosanchezn/gin-food-api/internal/models"
	"github.com/franciscosanchezn/gin-food-api/internal/repository"
	"github.com/franciscosanchezn/gin-food-api/internal/services"
	"github.com/nats-io/nats.go"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeAcknowledger records how a delivery was settled
type fakeAcknowledger struct {
	acked   bool
	nacked  bool
	requeue bool
}

func (f *fakeAcknowledger) Ack(tag uint64, multiple bool) error {
	f.acked = true
	return nil
}

func (f *fakeAcknowledger) Nack(tag uint64, multiple, requeue bool) error {
	f.nacked = true
	f.requeue = requeue
	return nil
}

func (f *fakeAcknowledger) Reject(tag uint64, requeue bool) error {
	return f.Nack(tag, false, requeue)
}

// fakeRetrier records scheduled retries
type fakeRetrier struct {
	attempts []int
	err      error
}

func (f *fakeRetrier) Retry(_ context.Context, _ amqp.Delivery, attempt int) error {
	f.attempts = append(f.attempts, attempt)
	return f.err
}

func delivery(t *testing.T, body []byte) (amqp.Delivery, *fakeAcknowledger) {
	t.Helper()
	ack := &fakeAcknowledger{}
	return amqp.Delivery{Acknowledger: ack, DeliveryTag: 1, Body: body}, ack
}

func notificationBody(t *testing.T, n models.Notification) []byte {
	t.Helper()
	body, err := json.Marshal(n)
	require.NoError(t, err)
	return body
}

func TestHandleDeliveryStoresAndAcks(t *testing.T) {
	ctx := context.Background()
	mailbox := services.NewNotificationService(repository.NewMemoryMailboxRepository())
	at := time.Date(2026, 5, 1, 10, 0, 0, 0, time.UTC)

	msg, ack := delivery(t, notificationBody(t, models.Notification{
		UserID:  "u1",
		OrderID: "order-abcdef",
		Text:    "Order #ABCDEF is now being prepared.",
		Type:    models.MessageStatus,
		At:      at,
	}))
	HandleDelivery(ctx, msg, mailbox, &fakeRetrier{})

	assert.True(t, ack.acked)
	assert.False(t, ack.nacked)

	box, err := mailbox.Mailbox(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, box, 1)
	assert.Equal(t, "Order #ABCDEF is now being prepared.", box[0].Text)
	assert.True(t, at.Equal(box[0].Timestamp))
}

func TestHandleDeliveryDropsMalformed(t *testing.T) {
	mailbox := services.NewNotificationService(repository.NewMemoryMailboxRepository())

	for _, body := range [][]byte{[]byte("not json"), []byte(`{"text": "no user"}`)} {
		msg, ack := delivery(t, body)
		retry := &fakeRetrier{}
		HandleDelivery(context.Background(), msg, mailbox, retry)
		assert.Empty(t, retry.attempts)
		assert.False(t, ack.acked)
		assert.True(t, ack.nacked)
		assert.False(t, ack.requeue)
	}
}

func TestHandleDeliveryRetriesStoreFailures(t *testing.T) {
	failing := services.NotifierFunc(func(context.Context, models.Notification) error {
		return errors.New("database is locked")
	})
	body := notificationBody(t, models.Notification{UserID: "u1", Text: "hi"})

	t.Run("first failure is parked for retry", func(t *testing.T) {
		retry := &fakeRetrier{}
		msg, ack := delivery(t, body)
		HandleDelivery(context.Background(), msg, failing, retry)

		assert.Equal(t, []int{1}, retry.attempts)
		assert.True(t, ack.acked)
		assert.False(t, ack.nacked)
	})

	t.Run("attempt header is carried forward", func(t *testing.T) {
		retry := &fakeRetrier{}
		msg, ack := delivery(t, body)
		msg.Headers = amqp.Table{attemptHeader: int32(2)}
		HandleDelivery(context.Background(), msg, failing, retry)

		assert.Equal(t, []int{3}, retry.attempts)
		assert.True(t, ack.acked)
	})

	t.Run("dead-lettered after the last attempt", func(t *testing.T) {
		retry := &fakeRetrier{}
		msg, ack := delivery(t, body)
		msg.Headers = amqp.Table{attemptHeader: int32(MaxDeliveryAttempts - 1)}
		HandleDelivery(context.Background(), msg, failing, retry)

		assert.Empty(t, retry.attempts)
		assert.False(t, ack.acked)
		assert.True(t, ack.nacked)
		assert.False(t, ack.requeue)
	})

	t.Run("dead-lettered when retry cannot be scheduled", func(t *testing.T) {
		retry := &fakeRetrier{err: errors.New("channel closed")}
		msg, ack := delivery(t, body)
		HandleDelivery(context.Background(), msg, failing, retry)

		assert.Equal(t, []int{1}, retry.attempts)
		assert.False(t, ack.acked)
		assert.True(t, ack.nacked)
		assert.False(t, ack.requeue)
	})

	t.Run("validation failures are not retried", func(t *testing.T) {
		invalid := services.NotifierFunc(func(context.Context, models.Notification) error {
			return models.ErrValidation
		})
		retry := &fakeRetrier{}
		msg, ack := delivery(t, body)
		HandleDelivery(context.Background(), msg, invalid, retry)

		assert.Empty(t, retry.attempts)
		assert.True(t, ack.nacked)
		assert.False(t, ack.requeue)
	})
}

func TestRetryDelayGrows(t *testing.T) {
	assert.Equal(t, retryBackoff, RetryDelay(0))
	assert.Equal(t, retryBackoff, RetryDelay(1))
	assert.Equal(t, 4*retryBackoff, RetryDelay(4))
	assert.Less(t, RetryDelay(1), RetryDelay(2))
}

func TestHandleMsg(t *testing.T) {
	ctx := context.Background()
	mailbox := services.NewNotificationService(repository.NewMemoryMailboxRepository())

	HandleMsg(ctx, &nats.Msg{Subject: "orders.notifications", Data: []byte("{")}, mailbox)
	HandleMsg(ctx, &nats.Msg{
		Subject: "orders.notifications",
		Data:    notificationBody(t, models.Notification{UserID: "u1", Text: "Order #ABCDEF was cancelled."}),
	}, mailbox)

	box, err := mailbox.Mailbox(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, box, 1)
	assert.Equal(t, "Order #ABCDEF was cancelled.", box[0].Text)
}
