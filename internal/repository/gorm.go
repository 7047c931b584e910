package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/franciscosanchezn/gin-food-api/internal/models"
	"gorm.io/gorm"
)

func translate(err error, what string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("%w: %s", models.ErrRecordNotFound, what)
	}
	return err
}

// GormCatalogRepository persists catalog items with gorm
type GormCatalogRepository struct {
	db *gorm.DB
}

var _ CatalogRepository = (*GormCatalogRepository)(nil)

func NewGormCatalogRepository(db *gorm.DB) *GormCatalogRepository {
	return &GormCatalogRepository{db: db}
}

func (r *GormCatalogRepository) List(ctx context.Context, category models.Category) ([]models.CatalogItem, error) {
	var items []models.CatalogItem
	q := r.db.WithContext(ctx).Order("created_at ASC").Order("id ASC")
	if category != "" {
		q = q.Where("category = ?", category)
	}
	if err := q.Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (r *GormCatalogRepository) Get(ctx context.Context, id string) (*models.CatalogItem, error) {
	var item models.CatalogItem
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&item).Error; err != nil {
		return nil, translate(err, "catalog item "+id)
	}
	return &item, nil
}

func (r *GormCatalogRepository) Create(ctx context.Context, item *models.CatalogItem) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&models.CatalogItem{}).Where("id = ?", item.ID).Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return fmt.Errorf("%w: catalog item %s", models.ErrDuplicate, item.ID)
		}
		return tx.Create(item).Error
	})
}

func (r *GormCatalogRepository) Update(ctx context.Context, item *models.CatalogItem) error {
	res := r.db.WithContext(ctx).Model(item).Select("*").Omit("created_at").Updates(item)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("%w: catalog item %s", models.ErrRecordNotFound, item.ID)
	}
	return nil
}

func (r *GormCatalogRepository) Delete(ctx context.Context, id string) error {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&models.CatalogItem{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("%w: catalog item %s", models.ErrRecordNotFound, id)
	}
	return nil
}

// GormOrderRepository persists orders, their lines and their status history
type GormOrderRepository struct {
	db *gorm.DB
}

var _ OrderRepository = (*GormOrderRepository)(nil)

func NewGormOrderRepository(db *gorm.DB) *GormOrderRepository {
	return &GormOrderRepository{db: db}
}

func (r *GormOrderRepository) withDetails(db *gorm.DB) *gorm.DB {
	return db.
		Preload("LineItems", func(db *gorm.DB) *gorm.DB { return db.Order("position ASC") }).
		Preload("StatusHistory", func(db *gorm.DB) *gorm.DB { return db.Order("changed_at ASC").Order("id ASC") })
}

func (r *GormOrderRepository) Create(ctx context.Context, order *models.Order) error {
	for i := range order.LineItems {
		order.LineItems[i].Position = i
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		seq, err := nextSeq(tx.Model(&models.Order{}))
		if err != nil {
			return err
		}
		order.Seq = seq
		return tx.Create(order).Error
	})
}

func (r *GormOrderRepository) Get(ctx context.Context, id string) (*models.Order, error) {
	var order models.Order
	if err := r.withDetails(r.db.WithContext(ctx)).Where("id = ?", id).First(&order).Error; err != nil {
		return nil, translate(err, "order "+id)
	}
	return &order, nil
}

func (r *GormOrderRepository) ListByUser(ctx context.Context, userID string) ([]models.Order, error) {
	return r.List(ctx, models.OrderFilter{UserID: userID})
}

func (r *GormOrderRepository) List(ctx context.Context, filter models.OrderFilter) ([]models.Order, error) {
	q := r.withDetails(r.db.WithContext(ctx)).Order("created_at DESC").Order("seq DESC")
	if filter.UserID != "" {
		q = q.Where("user_id = ?", filter.UserID)
	}
	if filter.Status != "" {
		q = q.Where("status = ?", filter.Status)
	}
	if filter.Limit > 0 {
		q = q.Limit(filter.Limit)
	}

	var orders []models.Order
	if err := q.Find(&orders).Error; err != nil {
		return nil, err
	}
	return orders, nil
}

func (r *GormOrderRepository) UpdateStatus(ctx context.Context, id string, from, to models.OrderStatus, at time.Time) (*models.Order, error) {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.Order{}).
			Where("id = ? AND status = ?", id, from).
			Updates(map[string]interface{}{"status": to, "updated_at": at})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			// Either the order is gone or someone else moved it first
			var count int64
			if err := tx.Model(&models.Order{}).Where("id = ?", id).Count(&count).Error; err != nil {
				return err
			}
			if count == 0 {
				return fmt.Errorf("%w: order %s", models.ErrRecordNotFound, id)
			}
			return fmt.Errorf("%w: order %s is no longer %s", models.ErrInvalidTransition, id, from)
		}
		return tx.Create(&models.StatusEntry{OrderID: id, Status: to, At: at}).Error
	})
	if err != nil {
		return nil, err
	}
	return r.Get(ctx, id)
}

func (r *GormOrderRepository) SaveReview(ctx context.Context, id string, rating int, comment string) (*models.Order, error) {
	res := r.db.WithContext(ctx).Model(&models.Order{}).
		Where("id = ? AND rating IS NULL", id).
		Updates(map[string]interface{}{"rating": rating, "review_comment": comment})
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		if _, err := r.Get(ctx, id); err != nil {
			return nil, err
		}
		return nil, fmt.Errorf("%w: order %s has already been reviewed", models.ErrDuplicate, id)
	}
	return r.Get(ctx, id)
}

func (r *GormOrderRepository) SetFeedback(ctx context.Context, id string, feedback string) (*models.Order, error) {
	res := r.db.WithContext(ctx).Model(&models.Order{}).Where("id = ?", id).Update("admin_feedback", feedback)
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, fmt.Errorf("%w: order %s", models.ErrRecordNotFound, id)
	}
	return r.Get(ctx, id)
}

type statusTotals struct {
	Status  models.OrderStatus
	Count   int64
	Revenue int64
}

func (r *GormOrderRepository) Stats(ctx context.Context) (models.OrderStats, error) {
	var rows []statusTotals
	err := r.db.WithContext(ctx).Model(&models.Order{}).
		Select("status, COUNT(*) AS count, COALESCE(SUM(total_price), 0) AS revenue").
		Group("status").
		Scan(&rows).Error
	if err != nil {
		return models.OrderStats{}, err
	}

	stats := summarize(nil)
	for _, row := range rows {
		stats.Total += row.Count
		stats.ByStatus[row.Status] = row.Count
		if !row.Status.Terminal() {
			stats.Active += row.Count
		}
		if row.Status == models.StatusDelivered {
			stats.Revenue = row.Revenue
		}
	}
	return stats, nil
}

// GormMailboxRepository persists system messages
type GormMailboxRepository struct {
	db *gorm.DB
}

var _ MailboxRepository = (*GormMailboxRepository)(nil)

func NewGormMailboxRepository(db *gorm.DB) *GormMailboxRepository {
	return &GormMailboxRepository{db: db}
}

func (r *GormMailboxRepository) Append(ctx context.Context, msg *models.SystemMessage) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		seq, err := nextSeq(tx.Model(&models.SystemMessage{}).Where("user_id = ?", msg.UserID))
		if err != nil {
			return err
		}
		msg.Seq = seq
		return tx.Create(msg).Error
	})
}

func (r *GormMailboxRepository) List(ctx context.Context, userID string) ([]models.SystemMessage, error) {
	var msgs []models.SystemMessage
	err := r.db.WithContext(ctx).Where("user_id = ?", userID).Order("timestamp DESC").Order("seq DESC").Find(&msgs).Error
	if err != nil {
		return nil, err
	}
	return msgs, nil
}

func (r *GormMailboxRepository) MarkRead(ctx context.Context, userID, messageID string) error {
	return r.db.WithContext(ctx).Model(&models.SystemMessage{}).
		Where("id = ? AND user_id = ?", messageID, userID).
		Update("is_read", true).Error
}

func (r *GormMailboxRepository) Clear(ctx context.Context, userID string) error {
	return r.db.WithContext(ctx).Where("user_id = ?", userID).Delete(&models.SystemMessage{}).Error
}

func (r *GormMailboxRepository) CountUnread(ctx context.Context, userID string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.SystemMessage{}).
		Where("user_id = ? AND is_read = ?", userID, false).
		Count(&count).Error
	return count, err
}

// nextSeq returns one past the highest seq in scope
func nextSeq(scope *gorm.DB) (int64, error) {
	var highest int64
	if err := scope.Select("COALESCE(MAX(seq), 0)").Scan(&highest).Error; err != nil {
		return 0, fmt.Errorf("failed to allocate sequence: %w", err)
	}
	return highest + 1, nil
}
