package messaging

import (
	"context"
	"fmt"
	"time"

	"github.com/franciscosanchezn/gin-food-api/internal/models"
	"github.com/franciscosanchezn/gin-food-api/internal/services"
	"github.com/nats-io/nats.go"
)

// NATS publishes notifications on a subject. Core NATS has no acknowledgement,
// so a subscriber that is down when a message is published misses it.
type NATS struct {
	Conn    *nats.Conn
	Subject string
}

var _ services.Notifier = (*NATS)(nil)

func NewNATS(url, subject string) (*NATS, error) {
	nc, err := nats.Connect(url,
		nats.Name("gin-food-api"),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			if err != nil {
				log.WithError(err).Warn("NATS disconnected")
			}
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			log.WithField("url", nc.ConnectedUrl()).Info("NATS reconnected")
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}
	return &NATS{Conn: nc, Subject: subject}, nil
}

func (n *NATS) Dispatch(ctx context.Context, notification models.Notification) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	body, err := encode(notification)
	if err != nil {
		return err
	}
	return n.Conn.Publish(n.Subject, body)
}

// Subscribe stores every notification published on the subject through sink
func (n *NATS) Subscribe(ctx context.Context, sink services.Notifier) (*nats.Subscription, error) {
	sub, err := n.Conn.Subscribe(n.Subject, func(msg *nats.Msg) {
		HandleMsg(ctx, msg, sink)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to subscribe to %s: %w", n.Subject, err)
	}
	return sub, nil
}

// HandleMsg decodes one NATS message and stores it
func HandleMsg(ctx context.Context, msg *nats.Msg, sink services.Notifier) {
	notification, err := decode(msg.Data)
	if err != nil {
		log.WithError(err).WithField("subject", msg.Subject).Warn("Dropping malformed notification")
		return
	}
	if err := sink.Dispatch(ctx, notification); err != nil {
		log.WithError(err).WithField("user_id", notification.UserID).Error("Failed to store notification")
	}
}

func (n *NATS) Close() {
	if n.Conn == nil {
		return
	}
	if err := n.Conn.Drain(); err != nil {
		log.WithError(err).Warn("Failed to drain NATS connection")
		n.Conn.Close()
	}
}
