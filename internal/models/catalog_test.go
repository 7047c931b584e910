package models

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validItem() CatalogItem {
	return CatalogItem{
		ID:          "burger-1",
		Name:        "Classic Burger",
		Category:    CategoryBurger,
		BasePrice:   280,
		Ingredients: []string{"Cheese", "Onion"},
		SizeOptions: []PriceOption{{Name: "Regular"}, {Name: "Large", PriceOffset: 95}},
		AvailableToppings: []PriceOption{
			{Name: "Bacon", PriceOffset: 30},
		},
		AvailableSauces: []string{"BBQ", "Mayo"},
		IsAvailable:     true,
	}
}

func TestCatalogItemValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*CatalogItem)
		wantErr bool
	}{
		{"valid", func(*CatalogItem) {}, false},
		{"missing name", func(i *CatalogItem) { i.Name = "  " }, true},
		{"unknown category", func(i *CatalogItem) { i.Category = "Soup" }, true},
		{"negative base price", func(i *CatalogItem) { i.BasePrice = -1 }, true},
		{"no sizes", func(i *CatalogItem) { i.SizeOptions = nil }, true},
		{"negative size offset", func(i *CatalogItem) { i.SizeOptions[1].PriceOffset = -5 }, true},
		{"duplicate size", func(i *CatalogItem) { i.SizeOptions[1].Name = "Regular" }, true},
		{"duplicate topping", func(i *CatalogItem) {
			i.AvailableToppings = append(i.AvailableToppings, PriceOption{Name: "Bacon"})
		}, true},
		{"duplicate sauce", func(i *CatalogItem) { i.AvailableSauces = []string{"BBQ", "BBQ"} }, true},
		{"unknown spicy level", func(i *CatalogItem) { i.SpicyLevel = "Volcanic" }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			item := validItem()
			tt.mutate(&item)
			err := item.Validate()
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, errors.Is(err, ErrValidation))
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestCatalogItemPatchApply(t *testing.T) {
	item := validItem()
	name := "Double Burger"
	price := int64(350)
	unavailable := false

	CatalogItemPatch{Name: &name, BasePrice: &price, IsAvailable: &unavailable}.Apply(&item)

	assert.Equal(t, "Double Burger", item.Name)
	assert.Equal(t, int64(350), item.BasePrice)
	assert.False(t, item.IsAvailable)
	assert.Equal(t, CategoryBurger, item.Category)
	assert.Len(t, item.SizeOptions, 2)
}

func TestModifierChoiceNormalize(t *testing.T) {
	m, ok := ModifierChoice("Normal").Normalize()
	assert.True(t, ok)
	assert.Equal(t, ModifierStandard, m)

	m, ok = ModifierExtra.Normalize()
	assert.True(t, ok)
	assert.Equal(t, ModifierExtra, m)

	_, ok = ModifierChoice("Double").Normalize()
	assert.False(t, ok)
}

func TestItemConfigurationCloneIsDeep(t *testing.T) {
	cfg := ItemConfiguration{
		FoodID:           "burger-1",
		SelectedToppings: []string{"Bacon"},
		Modifiers:        map[string]ModifierChoice{"Cheese": ModifierExtra},
	}
	clone := cfg.Clone()
	clone.SelectedToppings[0] = "Egg"
	clone.Modifiers["Cheese"] = ModifierRemove

	assert.Equal(t, "Bacon", cfg.SelectedToppings[0])
	assert.Equal(t, ModifierExtra, cfg.Modifiers["Cheese"])
}
