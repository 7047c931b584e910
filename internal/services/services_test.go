package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/franciscosanchezn/gin-food-api/internal/models"
	"github.com/franciscosanchezn/gin-food-api/internal/pricing"
	"github.com/franciscosanchezn/gin-food-api/internal/repository"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	err = db.AutoMigrate(&models.User{}, &models.OAuthClient{}, &models.SystemMessage{})
	require.NoError(t, err)

	return db
}

func doubleBurger() models.CatalogItem {
	return models.CatalogItem{
		ID:          "b2",
		Name:        "Double Burger",
		Category:    models.CategoryBurger,
		BasePrice:   280,
		Ingredients: []string{"Cheese", "Onion"},
		SizeOptions: []models.PriceOption{
			{Name: "Single"},
			{Name: "Double", PriceOffset: 95},
		},
		AvailableToppings: []models.PriceOption{{Name: "Bacon", PriceOffset: 30}},
		AvailableSauces:   []string{"BBQ"},
		IsAvailable:       true,
	}
}

func cola() models.CatalogItem {
	return models.CatalogItem{
		ID:          "d1",
		Name:        "Cola",
		Category:    models.CategoryDrinks,
		BasePrice:   60,
		SizeOptions: []models.PriceOption{{Name: "Small"}, {Name: "Large", PriceOffset: 30}},
		IsAvailable: true,
	}
}

func seededCatalog(t *testing.T, items ...models.CatalogItem) *repository.MemoryCatalogRepository {
	repo := repository.NewMemoryCatalogRepository()
	for i := range items {
		require.NoError(t, repo.Create(context.Background(), &items[i]))
	}
	return repo
}

// recordingNotifier keeps every notification it is handed
type recordingNotifier struct {
	mu   sync.Mutex
	sent []models.Notification
	err  error
}

func (r *recordingNotifier) Dispatch(_ context.Context, n models.Notification) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return r.err
	}
	r.sent = append(r.sent, n)
	return nil
}

func (r *recordingNotifier) Sent() []models.Notification {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]models.Notification(nil), r.sent...)
}

var errTransportDown = errors.New("transport down")

type fixedClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fixedClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(time.Second)
	return c.now
}

func newEngine() *pricing.Engine {
	return pricing.NewEngine(pricing.DefaultExtraSurcharge)
}

func validDelivery() models.DeliveryInfo {
	return models.DeliveryInfo{Destination: "Dorm B, room 12"}
}

func validPayment() models.PaymentInfo {
	return models.PaymentInfo{Method: models.PaymentTelebirr, ReceiptRef: "receipts/abc.jpg"}
}

var (
	admin    = models.Actor{UserID: "admin", IsAdmin: true}
	customer = models.Actor{UserID: "u1"}
)
