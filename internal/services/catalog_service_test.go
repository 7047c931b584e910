package services

import (
	"context"
	"testing"

	"github.com/franciscosanchezn/gin-food-api/internal/models"
	"github.com/franciscosanchezn/gin-food-api/internal/pricing"
	"github.com/franciscosanchezn/gin-food-api/internal/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCatalogCRUD(t *testing.T) {
	ctx := context.Background()
	svc := NewCatalogService(repository.NewMemoryCatalogRepository(), newEngine())

	item := doubleBurger()
	item.ID = ""
	created, err := svc.CreateItem(ctx, item)
	require.NoError(t, err)
	assert.NotEmpty(t, created.ID)

	got, err := svc.GetItem(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "Double Burger", got.Name)

	price := int64(300)
	unavailable := false
	updated, err := svc.UpdateItem(ctx, created.ID, models.CatalogItemPatch{BasePrice: &price, IsAvailable: &unavailable})
	require.NoError(t, err)
	assert.Equal(t, int64(300), updated.BasePrice)
	assert.False(t, updated.IsAvailable)
	assert.Equal(t, "Double Burger", updated.Name)

	require.NoError(t, svc.DeleteItem(ctx, created.ID))
	_, err = svc.GetItem(ctx, created.ID)
	assert.ErrorIs(t, err, models.ErrRecordNotFound)
}

func TestCatalogValidation(t *testing.T) {
	ctx := context.Background()
	svc := NewCatalogService(seededCatalog(t, doubleBurger()), newEngine())

	bad := doubleBurger()
	bad.ID = "x"
	bad.SizeOptions = nil
	_, err := svc.CreateItem(ctx, bad)
	assert.ErrorIs(t, err, models.ErrValidation)

	_, err = svc.CreateItem(ctx, doubleBurger())
	assert.ErrorIs(t, err, models.ErrDuplicate)

	negative := int64(-1)
	_, err = svc.UpdateItem(ctx, "b2", models.CatalogItemPatch{BasePrice: &negative})
	assert.ErrorIs(t, err, models.ErrValidation)

	got, err := svc.GetItem(ctx, "b2")
	require.NoError(t, err)
	assert.Equal(t, int64(280), got.BasePrice)

	_, err = svc.UpdateItem(ctx, "missing", models.CatalogItemPatch{BasePrice: &negative})
	assert.ErrorIs(t, err, models.ErrRecordNotFound)

	_, err = svc.ListItems(ctx, models.Category("Soup"))
	assert.ErrorIs(t, err, models.ErrValidation)
}

func TestListItemsByCategory(t *testing.T) {
	svc := NewCatalogService(seededCatalog(t, doubleBurger(), cola()), newEngine())

	all, err := svc.ListItems(context.Background(), "")
	require.NoError(t, err)
	assert.Len(t, all, 2)

	drinks, err := svc.ListItems(context.Background(), models.CategoryDrinks)
	require.NoError(t, err)
	require.Len(t, drinks, 1)
	assert.Equal(t, "d1", drinks[0].ID)
}

func TestPriceConfiguration(t *testing.T) {
	svc := NewCatalogService(seededCatalog(t, doubleBurger()), newEngine())

	quote, err := svc.PriceConfiguration(context.Background(), "b2", models.ItemConfiguration{
		SelectedSize:     "Double",
		SelectedToppings: []string{"Bacon"},
		Modifiers:        map[string]models.ModifierChoice{"Cheese": models.ModifierExtra},
		Quantity:         2,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(430), quote.UnitPrice)
	assert.Equal(t, int64(860), quote.LineTotal)
	assert.Equal(t, 2, quote.Quantity)
	assert.Equal(t, "b2", quote.Configuration.FoodID)
	assert.Equal(t, pricing.Fingerprint(quote.Configuration), quote.Fingerprint)

	_, err = svc.PriceConfiguration(context.Background(), "b2", models.ItemConfiguration{SelectedSize: "Triple"})
	assert.ErrorIs(t, err, models.ErrInvalidConfiguration)

	_, err = svc.PriceConfiguration(context.Background(), "missing", models.ItemConfiguration{})
	assert.ErrorIs(t, err, models.ErrRecordNotFound)
}
