// Package report turns a window of recent orders into an operational summary
// and hands it to a text generator for the admin dashboard.
package report

import (
	"context"
	"time"

	"github.com/franciscosanchezn/gin-food-api/internal/models"
)

// WindowSize is how many of the most recent orders a report covers
const WindowSize = 20

// Generator writes report prose from a summary
type Generator interface {
	Generate(ctx context.Context, summary Summary) (string, error)
}

// OrderDigest is the per-order slice of data a report sees
type OrderDigest struct {
	ShortID     string             `json:"shortId"`
	Status      models.OrderStatus `json:"status"`
	Items       int                `json:"items"`
	TotalPrice  int64              `json:"totalPrice"`
	Destination string             `json:"destination"`
	CreatedAt   time.Time          `json:"createdAt"`
	// MinutesInStatus is how long the order has been in its current status
	MinutesInStatus int `json:"minutesInStatus"`
}

// Summary aggregates a window of orders
type Summary struct {
	OrderCount int                        `json:"orderCount"`
	ByStatus   map[models.OrderStatus]int `json:"byStatus"`
	Active     int                        `json:"active"`
	Completed  int                        `json:"completed"`
	Cancelled  int                        `json:"cancelled"`
	Revenue    int64                      `json:"revenue"`
	Orders     []OrderDigest              `json:"orders"`
}

// Summarize aggregates orders as of now. Completed counts Delivered orders only;
// revenue is the total of Delivered orders.
func Summarize(orders []models.Order, now time.Time) Summary {
	s := Summary{
		OrderCount: len(orders),
		ByStatus:   make(map[models.OrderStatus]int, len(models.OrderStatuses)),
		Orders:     make([]OrderDigest, 0, len(orders)),
	}
	for _, status := range models.OrderStatuses {
		s.ByStatus[status] = 0
	}

	for i := range orders {
		o := &orders[i]
		s.ByStatus[o.Status]++
		switch {
		case o.Status == models.StatusDelivered:
			s.Completed++
			s.Revenue += o.TotalPrice
		case o.Status == models.StatusCancelled:
			s.Cancelled++
		default:
			s.Active++
		}

		items := 0
		for _, l := range o.LineItems {
			items += l.Quantity
		}
		since := o.CreatedAt
		if n := len(o.StatusHistory); n > 0 {
			since = o.StatusHistory[n-1].At
		}
		s.Orders = append(s.Orders, OrderDigest{
			ShortID:         o.ShortID(),
			Status:          o.Status,
			Items:           items,
			TotalPrice:      o.TotalPrice,
			Destination:     o.DeliveryDestination,
			CreatedAt:       o.CreatedAt,
			MinutesInStatus: int(now.Sub(since).Minutes()),
		})
	}
	return s
}
