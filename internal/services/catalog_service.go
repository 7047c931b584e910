package services

import (
	"context"
	"fmt"

	"github.com/franciscosanchezn/gin-food-api/internal/models"
	"github.com/franciscosanchezn/gin-food-api/internal/pricing"
	"github.com/franciscosanchezn/gin-food-api/internal/repository"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// PriceQuote is the priced, canonical form of a configuration
type PriceQuote struct {
	UnitPrice     int64                    `json:"unitPrice"`
	Quantity      int                      `json:"quantity"`
	LineTotal     int64                    `json:"lineTotal"`
	Fingerprint   string                   `json:"fingerprint"`
	Configuration models.ItemConfiguration `json:"configuration"`
}

// CatalogService provides methods to browse and manage the menu
type CatalogService interface {
	// ListItems returns the menu, optionally restricted to one category
	ListItems(ctx context.Context, category models.Category) ([]models.CatalogItem, error)
	// GetItem retrieves a menu item by its ID
	GetItem(ctx context.Context, id string) (*models.CatalogItem, error)
	// CreateItem validates and stores a new menu item
	CreateItem(ctx context.Context, item models.CatalogItem) (*models.CatalogItem, error)
	// UpdateItem applies a partial update to an existing item
	UpdateItem(ctx context.Context, id string, patch models.CatalogItemPatch) (*models.CatalogItem, error)
	// DeleteItem removes an item from the menu. Existing orders keep their snapshot.
	DeleteItem(ctx context.Context, id string) error
	// PriceConfiguration prices a configuration without touching any cart
	PriceConfiguration(ctx context.Context, itemID string, cfg models.ItemConfiguration) (*PriceQuote, error)
}

type catalogService struct {
	repo   repository.CatalogRepository
	engine *pricing.Engine
}

// NewCatalogService creates a new instance of CatalogService
func NewCatalogService(repo repository.CatalogRepository, engine *pricing.Engine) CatalogService {
	return &catalogService{repo: repo, engine: engine}
}

func (s *catalogService) ListItems(ctx context.Context, category models.Category) ([]models.CatalogItem, error) {
	if category != "" && !category.Valid() {
		return nil, fmt.Errorf("%w: unknown category %q", models.ErrValidation, category)
	}
	return s.repo.List(ctx, category)
}

func (s *catalogService) GetItem(ctx context.Context, id string) (*models.CatalogItem, error) {
	return s.repo.Get(ctx, id)
}

func (s *catalogService) CreateItem(ctx context.Context, item models.CatalogItem) (*models.CatalogItem, error) {
	if item.ID == "" {
		item.ID = uuid.NewString()
	}
	if err := item.Validate(); err != nil {
		return nil, err
	}
	if err := s.repo.Create(ctx, &item); err != nil {
		return nil, err
	}
	log.WithFields(logrus.Fields{"item_id": item.ID, "category": item.Category}).Info("Catalog item created")
	return &item, nil
}

func (s *catalogService) UpdateItem(ctx context.Context, id string, patch models.CatalogItemPatch) (*models.CatalogItem, error) {
	item, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	patch.Apply(item)
	if err := item.Validate(); err != nil {
		return nil, err
	}
	if err := s.repo.Update(ctx, item); err != nil {
		return nil, err
	}
	log.WithField("item_id", id).Info("Catalog item updated")
	return item, nil
}

func (s *catalogService) DeleteItem(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	log.WithField("item_id", id).Info("Catalog item deleted")
	return nil
}

func (s *catalogService) PriceConfiguration(ctx context.Context, itemID string, cfg models.ItemConfiguration) (*PriceQuote, error) {
	item, err := s.repo.Get(ctx, itemID)
	if err != nil {
		return nil, err
	}
	if cfg.FoodID == "" {
		cfg.FoodID = itemID
	}

	canonical, err := s.engine.Normalize(item, cfg)
	if err != nil {
		return nil, err
	}
	unit, err := s.engine.Price(item, canonical)
	if err != nil {
		return nil, err
	}
	return &PriceQuote{
		UnitPrice:     unit,
		Quantity:      canonical.Quantity,
		LineTotal:     unit * int64(canonical.Quantity),
		Fingerprint:   pricing.Fingerprint(canonical),
		Configuration: canonical,
	}, nil
}
