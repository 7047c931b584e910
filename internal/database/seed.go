package database

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/franciscosanchezn/gin-food-api/internal/models"
	"github.com/franciscosanchezn/gin-food-api/internal/repository"
	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
	"gorm.io/gorm"
)

// SeedUser is a user entry in the seed file
type SeedUser struct {
	ID      string `yaml:"id"`
	Email   string `yaml:"email"`
	Name    string `yaml:"name"`
	Phone   string `yaml:"phone"`
	IsAdmin bool   `yaml:"isAdmin"`
}

// SeedData is the content of a catalog seed file
type SeedData struct {
	Users []SeedUser           `yaml:"users"`
	Items []models.CatalogItem `yaml:"items"`
}

// LoadSeedFile reads and validates a YAML seed file
func LoadSeedFile(path string) (*SeedData, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read seed file: %w", err)
	}
	return ParseSeed(raw)
}

// ParseSeed decodes seed YAML and validates every catalog item
func ParseSeed(raw []byte) (*SeedData, error) {
	var data SeedData
	if err := yaml.Unmarshal(raw, &data); err != nil {
		return nil, fmt.Errorf("failed to parse seed file: %w", err)
	}

	seen := make(map[string]bool, len(data.Items))
	for i := range data.Items {
		item := &data.Items[i]
		if item.ID == "" {
			return nil, fmt.Errorf("seed item %d: %w: id is required", i, models.ErrValidation)
		}
		if seen[item.ID] {
			return nil, fmt.Errorf("seed item %s: %w", item.ID, models.ErrDuplicate)
		}
		seen[item.ID] = true
		if err := item.Validate(); err != nil {
			return nil, fmt.Errorf("seed item %s: %w", item.ID, err)
		}
	}
	return &data, nil
}

// SeedCatalog creates every item the repository does not hold yet and returns
// how many were added. Existing items are left untouched.
func SeedCatalog(ctx context.Context, repo repository.CatalogRepository, items []models.CatalogItem) (int, error) {
	created := 0
	for i := range items {
		item := items[i]
		_, err := repo.Get(ctx, item.ID)
		if err == nil {
			continue
		}
		if !errors.Is(err, models.ErrRecordNotFound) {
			return created, err
		}
		if err := repo.Create(ctx, &item); err != nil {
			return created, fmt.Errorf("failed to seed %s: %w", item.ID, err)
		}
		created++
	}
	log.WithFields(logrus.Fields{"created": created, "total": len(items)}).Info("Catalog seeded")
	return created, nil
}

// SeedUsers inserts the seed users that do not exist yet
func SeedUsers(ctx context.Context, db *gorm.DB, users []SeedUser) (int, error) {
	created := 0
	for _, u := range users {
		var count int64
		if err := db.WithContext(ctx).Model(&models.User{}).Where("id = ? OR email = ?", u.ID, u.Email).Count(&count).Error; err != nil {
			return created, err
		}
		if count > 0 {
			continue
		}
		user := models.User{
			ID:      u.ID,
			Email:   u.Email,
			Name:    u.Name,
			Phone:   u.Phone,
			IsAdmin: u.IsAdmin,
			Status:  models.UserActive,
		}
		if err := db.WithContext(ctx).Create(&user).Error; err != nil {
			return created, fmt.Errorf("failed to seed user %s: %w", u.Email, err)
		}
		created++
	}
	log.WithFields(logrus.Fields{"created": created, "total": len(users)}).Info("Users seeded")
	return created, nil
}
