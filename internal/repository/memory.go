package repository

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/franciscosanchezn/gin-food-api/internal/models"
)

// MemoryCatalogRepository keeps catalog items in process memory
type MemoryCatalogRepository struct {
	mu    sync.RWMutex
	order []string
	items map[string]*models.CatalogItem
}

var _ CatalogRepository = (*MemoryCatalogRepository)(nil)

func NewMemoryCatalogRepository() *MemoryCatalogRepository {
	return &MemoryCatalogRepository{items: make(map[string]*models.CatalogItem)}
}

func (r *MemoryCatalogRepository) List(_ context.Context, category models.Category) ([]models.CatalogItem, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]models.CatalogItem, 0, len(r.order))
	for _, id := range r.order {
		item := r.items[id]
		if category != "" && item.Category != category {
			continue
		}
		out = append(out, *cloneItem(item))
	}
	return out, nil
}

func (r *MemoryCatalogRepository) Get(_ context.Context, id string) (*models.CatalogItem, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	item, ok := r.items[id]
	if !ok {
		return nil, fmt.Errorf("%w: catalog item %s", models.ErrRecordNotFound, id)
	}
	return cloneItem(item), nil
}

func (r *MemoryCatalogRepository) Create(_ context.Context, item *models.CatalogItem) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.items[item.ID]; exists {
		return fmt.Errorf("%w: catalog item %s", models.ErrDuplicate, item.ID)
	}
	now := time.Now()
	item.CreatedAt, item.UpdatedAt = now, now
	r.items[item.ID] = cloneItem(item)
	r.order = append(r.order, item.ID)
	return nil
}

func (r *MemoryCatalogRepository) Update(_ context.Context, item *models.CatalogItem) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	existing, ok := r.items[item.ID]
	if !ok {
		return fmt.Errorf("%w: catalog item %s", models.ErrRecordNotFound, item.ID)
	}
	item.CreatedAt = existing.CreatedAt
	item.UpdatedAt = time.Now()
	r.items[item.ID] = cloneItem(item)
	return nil
}

func (r *MemoryCatalogRepository) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.items[id]; !ok {
		return fmt.Errorf("%w: catalog item %s", models.ErrRecordNotFound, id)
	}
	delete(r.items, id)
	for i, existing := range r.order {
		if existing == id {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	return nil
}

// MemoryOrderRepository keeps orders in process memory
type MemoryOrderRepository struct {
	mu     sync.RWMutex
	order  []string
	orders map[string]*models.Order
}

var _ OrderRepository = (*MemoryOrderRepository)(nil)

func NewMemoryOrderRepository() *MemoryOrderRepository {
	return &MemoryOrderRepository{orders: make(map[string]*models.Order)}
}

func (r *MemoryOrderRepository) Create(_ context.Context, order *models.Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.orders[order.ID]; exists {
		return fmt.Errorf("%w: order %s", models.ErrDuplicate, order.ID)
	}
	for i := range order.LineItems {
		order.LineItems[i].OrderID = order.ID
		order.LineItems[i].Position = i
	}
	for i := range order.StatusHistory {
		order.StatusHistory[i].OrderID = order.ID
	}
	if order.CreatedAt.IsZero() {
		order.CreatedAt = time.Now()
	}
	order.UpdatedAt = order.CreatedAt
	r.orders[order.ID] = cloneOrder(order)
	r.order = append(r.order, order.ID)
	return nil
}

func (r *MemoryOrderRepository) Get(_ context.Context, id string) (*models.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	o, ok := r.orders[id]
	if !ok {
		return nil, fmt.Errorf("%w: order %s", models.ErrRecordNotFound, id)
	}
	return cloneOrder(o), nil
}

func (r *MemoryOrderRepository) ListByUser(ctx context.Context, userID string) ([]models.Order, error) {
	return r.List(ctx, models.OrderFilter{UserID: userID})
}

func (r *MemoryOrderRepository) List(_ context.Context, filter models.OrderFilter) ([]models.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]models.Order, 0)
	for i := len(r.order) - 1; i >= 0; i-- {
		o := r.orders[r.order[i]]
		if filter.UserID != "" && o.UserID != filter.UserID {
			continue
		}
		if filter.Status != "" && o.Status != filter.Status {
			continue
		}
		out = append(out, *cloneOrder(o))
		if filter.Limit > 0 && len(out) == filter.Limit {
			break
		}
	}
	return out, nil
}

func (r *MemoryOrderRepository) UpdateStatus(_ context.Context, id string, from, to models.OrderStatus, at time.Time) (*models.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	o, ok := r.orders[id]
	if !ok {
		return nil, fmt.Errorf("%w: order %s", models.ErrRecordNotFound, id)
	}
	if o.Status != from {
		return nil, fmt.Errorf("%w: order %s is no longer %s", models.ErrInvalidTransition, id, from)
	}
	o.Status = to
	o.UpdatedAt = at
	o.StatusHistory = append(o.StatusHistory, models.StatusEntry{
		ID:      uint(len(o.StatusHistory) + 1),
		OrderID: id,
		Status:  to,
		At:      at,
	})
	return cloneOrder(o), nil
}

func (r *MemoryOrderRepository) SaveReview(_ context.Context, id string, rating int, comment string) (*models.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	o, ok := r.orders[id]
	if !ok {
		return nil, fmt.Errorf("%w: order %s", models.ErrRecordNotFound, id)
	}
	if o.Rating != nil {
		return nil, fmt.Errorf("%w: order %s has already been reviewed", models.ErrDuplicate, id)
	}
	o.Rating = &rating
	o.ReviewComment = comment
	return cloneOrder(o), nil
}

func (r *MemoryOrderRepository) SetFeedback(_ context.Context, id string, feedback string) (*models.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	o, ok := r.orders[id]
	if !ok {
		return nil, fmt.Errorf("%w: order %s", models.ErrRecordNotFound, id)
	}
	o.AdminFeedback = feedback
	return cloneOrder(o), nil
}

func (r *MemoryOrderRepository) Stats(_ context.Context) (models.OrderStats, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	orders := make([]models.Order, 0, len(r.orders))
	for _, o := range r.orders {
		orders = append(orders, *o)
	}
	return summarize(orders), nil
}

// MemoryMailboxRepository keeps mailboxes in process memory
type MemoryMailboxRepository struct {
	mu    sync.RWMutex
	boxes map[string][]models.SystemMessage
}

var _ MailboxRepository = (*MemoryMailboxRepository)(nil)

func NewMemoryMailboxRepository() *MemoryMailboxRepository {
	return &MemoryMailboxRepository{boxes: make(map[string][]models.SystemMessage)}
}

func (r *MemoryMailboxRepository) Append(_ context.Context, msg *models.SystemMessage) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.boxes[msg.UserID] = append(r.boxes[msg.UserID], *msg)
	return nil
}

func (r *MemoryMailboxRepository) List(_ context.Context, userID string) ([]models.SystemMessage, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	box := r.boxes[userID]
	out := make([]models.SystemMessage, 0, len(box))
	for i := len(box) - 1; i >= 0; i-- {
		out = append(out, box[i])
	}
	return out, nil
}

func (r *MemoryMailboxRepository) MarkRead(_ context.Context, userID, messageID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	box := r.boxes[userID]
	for i := range box {
		if box[i].ID == messageID {
			box[i].IsRead = true
		}
	}
	return nil
}

func (r *MemoryMailboxRepository) Clear(_ context.Context, userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.boxes, userID)
	return nil
}

func (r *MemoryMailboxRepository) CountUnread(_ context.Context, userID string) (int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var count int64
	for _, m := range r.boxes[userID] {
		if !m.IsRead {
			count++
		}
	}
	return count, nil
}
