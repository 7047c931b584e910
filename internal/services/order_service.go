package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/franciscosanchezn/gin-food-api/internal/metrics"
	"github.com/franciscosanchezn/gin-food-api/internal/models"
	"github.com/franciscosanchezn/gin-food-api/internal/pricing"
	"github.com/franciscosanchezn/gin-food-api/internal/repository"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// DefaultDeliveryFee is the flat fee added to every order
const DefaultDeliveryFee int64 = 50

// OrderService drives orders through their lifecycle
type OrderService interface {
	// CreateOrder re-prices the lines against the current catalog and stores a
	// Pending order. Clearing the cart is the caller's job.
	CreateOrder(ctx context.Context, userID string, lines []models.CartLine, delivery models.DeliveryInfo, payment models.PaymentInfo) (*models.Order, error)
	// Transition moves an order to the next status and notifies its owner
	Transition(ctx context.Context, orderID string, to models.OrderStatus) (*models.Order, error)
	// SetOrderStatus is Transition restricted to admins
	SetOrderStatus(ctx context.Context, actor models.Actor, orderID string, to models.OrderStatus) (*models.Order, error)
	// Get returns an order visible to the actor
	Get(ctx context.Context, actor models.Actor, orderID string) (*models.Order, error)
	// ListForUser returns the user's orders, newest first
	ListForUser(ctx context.Context, userID string) ([]models.Order, error)
	// List returns orders matching the filter for admins
	List(ctx context.Context, actor models.Actor, filter models.OrderFilter) ([]models.Order, error)
	// Review lets the owner rate a delivered order once
	Review(ctx context.Context, actor models.Actor, orderID string, rating int, comment string) (*models.Order, error)
	// SetFeedback toggles an admin's verdict on a review
	SetFeedback(ctx context.Context, actor models.Actor, orderID, feedback string) (*models.Order, error)
	Stats(ctx context.Context, actor models.Actor) (models.OrderStats, error)
}

// OrderOption configures an OrderService
type OrderOption func(*orderService)

// WithDeliveryFee overrides the flat delivery fee
func WithDeliveryFee(fee int64) OrderOption {
	return func(s *orderService) {
		if fee >= 0 {
			s.deliveryFee = fee
		}
	}
}

// WithClock replaces the time source used for timestamps
func WithClock(now func() time.Time) OrderOption {
	return func(s *orderService) {
		if now != nil {
			s.now = now
		}
	}
}

// WithTransportName labels notification metrics with the transport in use
func WithTransportName(name string) OrderOption {
	return func(s *orderService) {
		if name != "" {
			s.transport = name
		}
	}
}

type orderService struct {
	orders      repository.OrderRepository
	catalog     repository.CatalogRepository
	engine      *pricing.Engine
	notifier    Notifier
	deliveryFee int64
	now         func() time.Time
	transport   string
	locks       *keyedMutex
}

// NewOrderService creates a new instance of OrderService
func NewOrderService(orders repository.OrderRepository, catalog repository.CatalogRepository, engine *pricing.Engine, notifier Notifier, opts ...OrderOption) OrderService {
	s := &orderService{
		orders:      orders,
		catalog:     catalog,
		engine:      engine,
		notifier:    notifier,
		deliveryFee: DefaultDeliveryFee,
		now:         time.Now,
		transport:   "direct",
		locks:       newKeyedMutex(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *orderService) CreateOrder(ctx context.Context, userID string, lines []models.CartLine, delivery models.DeliveryInfo, payment models.PaymentInfo) (order *models.Order, err error) {
	defer func() { metrics.RecordOrderOperation(metrics.OpCreate, err == nil) }()

	if len(lines) == 0 {
		return nil, models.ErrEmptyCart
	}
	if strings.TrimSpace(userID) == "" {
		return nil, fmt.Errorf("%w: user id is required", models.ErrValidation)
	}
	if strings.TrimSpace(delivery.Destination) == "" {
		return nil, fmt.Errorf("%w: delivery destination is required", models.ErrValidation)
	}
	if !payment.Method.Valid() {
		return nil, fmt.Errorf("%w: unknown payment method %q", models.ErrValidation, payment.Method)
	}
	if strings.TrimSpace(payment.ReceiptRef) == "" {
		return nil, fmt.Errorf("%w: payment receipt is required", models.ErrValidation)
	}

	items := make([]models.OrderLine, 0, len(lines))
	priced := make([]models.CartLine, 0, len(lines))
	for _, line := range lines {
		p, err := s.reprice(ctx, line)
		if err != nil {
			return nil, err
		}
		priced = append(priced, p)
		items = append(items, models.OrderLine{Position: len(items), CartLine: p})
	}
	subtotal, total, err := pricing.Totals(priced, s.deliveryFee)
	if err != nil {
		return nil, err
	}

	now := s.now()
	order = &models.Order{
		ID:                  uuid.NewString(),
		UserID:              userID,
		LineItems:           items,
		Subtotal:            subtotal,
		DeliveryFee:         s.deliveryFee,
		TotalPrice:          total,
		DeliveryDestination: strings.TrimSpace(delivery.Destination),
		DeliveryNote:        delivery.Note,
		PaymentMethod:       payment.Method,
		PaymentReceiptRef:   payment.ReceiptRef,
		Status:              models.StatusPending,
		StatusHistory:       []models.StatusEntry{{Status: models.StatusPending, At: now}},
		CreatedAt:           now,
	}
	if err := s.orders.Create(ctx, order); err != nil {
		return nil, fmt.Errorf("failed to store order: %w", err)
	}

	log.WithFields(logrus.Fields{
		"order_id": order.ID,
		"user_id":  userID,
		"lines":    len(items),
		"total":    order.TotalPrice,
	}).Info("Order created")
	return order, nil
}

// reprice recomputes a line from the current catalog. The client's unit price
// and fingerprint are never trusted.
func (s *orderService) reprice(ctx context.Context, line models.CartLine) (models.CartLine, error) {
	item, err := s.catalog.Get(ctx, line.FoodID)
	if err != nil {
		return models.CartLine{}, err
	}
	if !item.IsAvailable {
		return models.CartLine{}, fmt.Errorf("%w: %q is not available", models.ErrInvalidConfiguration, item.Name)
	}
	canonical, err := s.engine.Normalize(item, line.ItemConfiguration)
	if err != nil {
		return models.CartLine{}, err
	}
	unit, err := s.engine.Price(item, canonical)
	if err != nil {
		return models.CartLine{}, err
	}
	return models.CartLine{
		ItemConfiguration: canonical,
		Name:              item.Name,
		UnitPrice:         unit,
		Fingerprint:       pricing.Fingerprint(canonical),
	}, nil
}

func (s *orderService) Transition(ctx context.Context, orderID string, to models.OrderStatus) (*models.Order, error) {
	updated, err := s.commitTransition(ctx, orderID, to)
	metrics.RecordOrderOperation(metrics.OpTransition, err == nil)
	if err != nil {
		return nil, err
	}
	s.notifyStatus(ctx, updated)
	return updated, nil
}

func (s *orderService) commitTransition(ctx context.Context, orderID string, to models.OrderStatus) (*models.Order, error) {
	unlock := s.locks.Lock(orderID)
	defer unlock()

	order, err := s.orders.Get(ctx, orderID)
	if err != nil {
		return nil, err
	}
	from := order.Status
	if !to.Valid() || !from.CanTransitionTo(to) {
		return nil, fmt.Errorf("%w: %s -> %s", models.ErrInvalidTransition, from, to)
	}

	updated, err := s.orders.UpdateStatus(ctx, orderID, from, to, s.now())
	if err != nil {
		return nil, err
	}
	log.WithFields(logrus.Fields{
		"order_id": orderID,
		"from":     from,
		"to":       to,
	}).Info("Order status changed")
	return updated, nil
}

// notifyStatus runs after the transition is committed. A failed dispatch is
// logged and counted but never undoes the transition.
func (s *orderService) notifyStatus(ctx context.Context, order *models.Order) {
	text := StatusMessage(order.ID, order.Status)
	if text == "" || s.notifier == nil {
		return
	}
	err := s.notifier.Dispatch(ctx, models.Notification{
		UserID:  order.UserID,
		OrderID: order.ID,
		Text:    text,
		Type:    models.MessageStatus,
		At:      order.UpdatedAt,
	})
	metrics.RecordNotification(s.transport, err == nil)
	if err != nil {
		log.WithError(err).WithFields(logrus.Fields{
			"order_id":  order.ID,
			"transport": s.transport,
		}).Error("Failed to dispatch status notification")
	}
}

func (s *orderService) SetOrderStatus(ctx context.Context, actor models.Actor, orderID string, to models.OrderStatus) (*models.Order, error) {
	if !actor.IsAdmin {
		return nil, fmt.Errorf("%w: only admins can change order status", models.ErrNotPermitted)
	}
	return s.Transition(ctx, orderID, to)
}

func (s *orderService) Get(ctx context.Context, actor models.Actor, orderID string) (*models.Order, error) {
	order, err := s.orders.Get(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if !actor.IsAdmin && order.UserID != actor.UserID {
		return nil, fmt.Errorf("%w: order belongs to another user", models.ErrNotPermitted)
	}
	return order, nil
}

func (s *orderService) ListForUser(ctx context.Context, userID string) ([]models.Order, error) {
	return s.orders.ListByUser(ctx, userID)
}

func (s *orderService) List(ctx context.Context, actor models.Actor, filter models.OrderFilter) ([]models.Order, error) {
	if !actor.IsAdmin {
		return nil, fmt.Errorf("%w: only admins can list all orders", models.ErrNotPermitted)
	}
	if filter.Status != "" && !filter.Status.Valid() {
		return nil, fmt.Errorf("%w: unknown status %q", models.ErrValidation, filter.Status)
	}
	return s.orders.List(ctx, filter)
}

func (s *orderService) Review(ctx context.Context, actor models.Actor, orderID string, rating int, comment string) (order *models.Order, err error) {
	defer func() { metrics.RecordOrderOperation(metrics.OpReview, err == nil) }()

	if rating < 1 || rating > 5 {
		return nil, fmt.Errorf("%w: rating must be between 1 and 5", models.ErrValidation)
	}
	existing, err := s.orders.Get(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if existing.UserID != actor.UserID {
		return nil, fmt.Errorf("%w: only the customer can review an order", models.ErrNotPermitted)
	}
	if existing.Status != models.StatusDelivered {
		return nil, fmt.Errorf("%w: only delivered orders can be reviewed", models.ErrValidation)
	}
	return s.orders.SaveReview(ctx, orderID, rating, strings.TrimSpace(comment))
}

func (s *orderService) SetFeedback(ctx context.Context, actor models.Actor, orderID, feedback string) (*models.Order, error) {
	if !actor.IsAdmin {
		return nil, fmt.Errorf("%w: only admins can leave feedback", models.ErrNotPermitted)
	}
	if feedback != models.FeedbackHelpful && feedback != models.FeedbackNotHelpful {
		return nil, fmt.Errorf("%w: feedback must be %q or %q", models.ErrValidation, models.FeedbackHelpful, models.FeedbackNotHelpful)
	}

	unlock := s.locks.Lock(orderID)
	defer unlock()

	order, err := s.orders.Get(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order.Rating == nil {
		return nil, fmt.Errorf("%w: order has no review", models.ErrValidation)
	}
	if order.AdminFeedback == feedback {
		feedback = ""
	}
	return s.orders.SetFeedback(ctx, orderID, feedback)
}

func (s *orderService) Stats(ctx context.Context, actor models.Actor) (models.OrderStats, error) {
	if !actor.IsAdmin {
		return models.OrderStats{}, fmt.Errorf("%w: only admins can view stats", models.ErrNotPermitted)
	}
	return s.orders.Stats(ctx)
}
