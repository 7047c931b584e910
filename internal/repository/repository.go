// Package repository holds the storage boundaries of the ordering core. Every
// store has a gorm adapter for the configured database and an in-memory adapter
// for tests and single-process runs.
package repository

import (
	"context"
	"time"

	"github.com/franciscosanchezn/gin-food-api/internal/models"
)

// CatalogRepository stores menu items
type CatalogRepository interface {
	// List returns items in menu order, optionally restricted to one category
	List(ctx context.Context, category models.Category) ([]models.CatalogItem, error)
	Get(ctx context.Context, id string) (*models.CatalogItem, error)
	Create(ctx context.Context, item *models.CatalogItem) error
	Update(ctx context.Context, item *models.CatalogItem) error
	Delete(ctx context.Context, id string) error
}

// OrderRepository stores orders and their audit history. Orders are never deleted.
type OrderRepository interface {
	Create(ctx context.Context, order *models.Order) error
	Get(ctx context.Context, id string) (*models.Order, error)
	// ListByUser returns the user's orders, newest first
	ListByUser(ctx context.Context, userID string) ([]models.Order, error)
	// List returns orders matching the filter, newest first
	List(ctx context.Context, filter models.OrderFilter) ([]models.Order, error)
	// UpdateStatus moves the order from one status to another and appends the
	// history entry atomically. It fails with ErrInvalidTransition when the
	// stored status is no longer from.
	UpdateStatus(ctx context.Context, id string, from, to models.OrderStatus, at time.Time) (*models.Order, error)
	// SaveReview records a rating once. A second review fails with ErrDuplicate.
	SaveReview(ctx context.Context, id string, rating int, comment string) (*models.Order, error)
	SetFeedback(ctx context.Context, id string, feedback string) (*models.Order, error)
	Stats(ctx context.Context) (models.OrderStats, error)
}

// MailboxRepository stores per-user system messages
type MailboxRepository interface {
	Append(ctx context.Context, msg *models.SystemMessage) error
	// List returns the user's messages, newest first
	List(ctx context.Context, userID string) ([]models.SystemMessage, error)
	// MarkRead flags one message as read. Unknown ids and ids owned by another
	// user are ignored.
	MarkRead(ctx context.Context, userID, messageID string) error
	Clear(ctx context.Context, userID string) error
	CountUnread(ctx context.Context, userID string) (int64, error)
}

func cloneOrder(o *models.Order) *models.Order {
	out := *o
	out.LineItems = make([]models.OrderLine, len(o.LineItems))
	for i, l := range o.LineItems {
		out.LineItems[i] = l
		out.LineItems[i].CartLine = l.CartLine.Clone()
	}
	out.StatusHistory = append([]models.StatusEntry(nil), o.StatusHistory...)
	if o.Rating != nil {
		r := *o.Rating
		out.Rating = &r
	}
	return &out
}

func cloneItem(item *models.CatalogItem) *models.CatalogItem {
	out := *item
	out.Ingredients = append([]string(nil), item.Ingredients...)
	out.SizeOptions = append([]models.PriceOption(nil), item.SizeOptions...)
	out.AvailableToppings = append([]models.PriceOption(nil), item.AvailableToppings...)
	out.AvailableSauces = append([]string(nil), item.AvailableSauces...)
	return &out
}

func summarize(orders []models.Order) models.OrderStats {
	stats := models.OrderStats{ByStatus: make(map[models.OrderStatus]int64, len(models.OrderStatuses))}
	for _, s := range models.OrderStatuses {
		stats.ByStatus[s] = 0
	}
	for _, o := range orders {
		stats.Total++
		stats.ByStatus[o.Status]++
		if !o.Status.Terminal() {
			stats.Active++
		}
		if o.Status == models.StatusDelivered {
			stats.Revenue += o.TotalPrice
		}
	}
	return stats
}
