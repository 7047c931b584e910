package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/franciscosanchezn/gin-food-api/internal/cart"
	"github.com/franciscosanchezn/gin-food-api/internal/metrics"
	"github.com/franciscosanchezn/gin-food-api/internal/models"
	"github.com/sirupsen/logrus"
)

// UserLookup resolves the account behind an actor
type UserLookup interface {
	GetUserByID(ctx context.Context, id string) (*models.User, error)
}

// CheckoutService turns a cart into an order
type CheckoutService interface {
	// Checkout creates an order from the cart and empties it. The cart is left
	// untouched when the order cannot be created.
	Checkout(ctx context.Context, actor models.Actor, c *cart.Cart, delivery models.DeliveryInfo, payment models.PaymentInfo) (*models.Order, error)
}

type checkoutService struct {
	orders OrderService
	users  UserLookup
}

func NewCheckoutService(orders OrderService, users UserLookup) CheckoutService {
	return &checkoutService{orders: orders, users: users}
}

func (s *checkoutService) Checkout(ctx context.Context, actor models.Actor, c *cart.Cart, delivery models.DeliveryInfo, payment models.PaymentInfo) (order *models.Order, err error) {
	defer func() { metrics.RecordOrderOperation(metrics.OpCheckout, err == nil) }()

	if actor.IsAdmin {
		return nil, fmt.Errorf("%w: admin accounts cannot place orders", models.ErrNotPermitted)
	}
	user, err := s.users.GetUserByID(ctx, actor.UserID)
	if err != nil {
		if errors.Is(err, models.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: unknown account %s", models.ErrNotPermitted, actor.UserID)
		}
		return nil, err
	}
	if user.Suspended() {
		return nil, models.ErrAccountSuspended
	}
	if c == nil {
		return nil, models.ErrEmptyCart
	}

	err = c.Commit(func(lines []models.CartLine) error {
		created, err := s.orders.CreateOrder(ctx, actor.UserID, lines, delivery, payment)
		if err != nil {
			return err
		}
		order = created
		return nil
	})
	if err != nil {
		log.WithError(err).WithField("user_id", actor.UserID).Warn("Checkout failed")
		return nil, err
	}

	log.WithFields(logrus.Fields{
		"user_id":  actor.UserID,
		"order_id": order.ID,
	}).Info("Checkout completed")
	return order, nil
}
