package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/franciscosanchezn/gin-food-api/internal/config"
	"github.com/franciscosanchezn/gin-food-api/internal/models"
	"github.com/franciscosanchezn/gin-food-api/internal/repository"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

var log = config.NewLogger()

// Notifier delivers a notification to wherever the user's mailbox lives. The
// direct transport writes to the mailbox in-process; broker transports publish
// and let a consumer do the write.
type Notifier interface {
	Dispatch(ctx context.Context, n models.Notification) error
}

// NotifierFunc adapts a function to the Notifier interface
type NotifierFunc func(ctx context.Context, n models.Notification) error

func (f NotifierFunc) Dispatch(ctx context.Context, n models.Notification) error {
	return f(ctx, n)
}

// StatusMessage renders the mailbox text for an order entering status. It
// returns an empty string for statuses that do not notify.
func StatusMessage(orderID string, status models.OrderStatus) string {
	short := models.ShortID(orderID)
	switch status {
	case models.StatusPreparing:
		return fmt.Sprintf("Order #%s is now being prepared.", short)
	case models.StatusOutForDelivery:
		return fmt.Sprintf("Order #%s is dispatched and in transit.", short)
	case models.StatusDelivered:
		return fmt.Sprintf("Order #%s has been fulfilled.", short)
	case models.StatusCancelled:
		return fmt.Sprintf("Order #%s was cancelled.", short)
	}
	return ""
}

// NotificationService manages per-user mailboxes
type NotificationService interface {
	Notifier
	// Notify appends a message to the user's mailbox
	Notify(ctx context.Context, userID, text string, msgType models.MessageType) (*models.SystemMessage, error)
	// MarkRead flags a message as read. Unknown or foreign ids are ignored.
	MarkRead(ctx context.Context, userID, messageID string) error
	ClearAll(ctx context.Context, userID string) error
	// Mailbox returns the user's messages, newest first
	Mailbox(ctx context.Context, userID string) ([]models.SystemMessage, error)
	UnreadCount(ctx context.Context, userID string) (int64, error)
}

type notificationService struct {
	mailbox repository.MailboxRepository
	now     func() time.Time
}

func NewNotificationService(mailbox repository.MailboxRepository) NotificationService {
	return &notificationService{mailbox: mailbox, now: time.Now}
}

func (s *notificationService) Notify(ctx context.Context, userID, text string, msgType models.MessageType) (*models.SystemMessage, error) {
	return s.deliver(ctx, models.Notification{UserID: userID, Text: text, Type: msgType})
}

func (s *notificationService) Dispatch(ctx context.Context, n models.Notification) error {
	_, err := s.deliver(ctx, n)
	return err
}

func (s *notificationService) deliver(ctx context.Context, n models.Notification) (*models.SystemMessage, error) {
	if strings.TrimSpace(n.UserID) == "" {
		return nil, fmt.Errorf("%w: user id is required", models.ErrValidation)
	}
	if strings.TrimSpace(n.Text) == "" {
		return nil, fmt.Errorf("%w: message text is required", models.ErrValidation)
	}
	if n.Type == "" {
		n.Type = models.MessageStatus
	}
	at := n.At
	if at.IsZero() {
		at = s.now()
	}

	msg := &models.SystemMessage{
		ID:        uuid.NewString(),
		UserID:    n.UserID,
		Text:      n.Text,
		Type:      n.Type,
		Timestamp: at,
	}
	if err := s.mailbox.Append(ctx, msg); err != nil {
		return nil, fmt.Errorf("failed to store message: %w", err)
	}

	log.WithFields(logrus.Fields{
		"user_id":  n.UserID,
		"order_id": n.OrderID,
		"type":     n.Type,
	}).Debug("Mailbox message stored")
	return msg, nil
}

func (s *notificationService) MarkRead(ctx context.Context, userID, messageID string) error {
	return s.mailbox.MarkRead(ctx, userID, messageID)
}

func (s *notificationService) ClearAll(ctx context.Context, userID string) error {
	return s.mailbox.Clear(ctx, userID)
}

func (s *notificationService) Mailbox(ctx context.Context, userID string) ([]models.SystemMessage, error) {
	return s.mailbox.List(ctx, userID)
}

func (s *notificationService) UnreadCount(ctx context.Context, userID string) (int64, error) {
	return s.mailbox.CountUnread(ctx, userID)
}
