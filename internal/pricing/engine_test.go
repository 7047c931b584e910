package pricing

import (
	"errors"
	"math"
	"testing"

	"github.com/franciscosanchezn/gin-food-api/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func burger() *models.CatalogItem {
	return &models.CatalogItem{
		ID:          "burger-1",
		Name:        "Classic Burger",
		Category:    models.CategoryBurger,
		BasePrice:   280,
		Ingredients: []string{"Cheese", "Onion", "Pickles"},
		SizeOptions: []models.PriceOption{
			{Name: "Regular"},
			{Name: "Large", PriceOffset: 95},
		},
		AvailableToppings: []models.PriceOption{
			{Name: "Bacon", PriceOffset: 30},
			{Name: "Egg", PriceOffset: 20},
		},
		AvailableSauces:      []string{"BBQ", "Mayo"},
		HasCookingPreference: true,
		IsAvailable:          true,
	}
}

func TestPrice(t *testing.T) {
	engine := NewEngine(DefaultExtraSurcharge)
	item := burger()

	tests := []struct {
		name string
		cfg  models.ItemConfiguration
		want int64
	}{
		{"base only", models.ItemConfiguration{FoodID: "burger-1"}, 280},
		{"default size by name", models.ItemConfiguration{FoodID: "burger-1", SelectedSize: "Regular"}, 280},
		{"large bacon extra cheese", models.ItemConfiguration{
			FoodID:           "burger-1",
			SelectedSize:     "Large",
			SelectedToppings: []string{"Bacon"},
			Modifiers:        map[string]models.ModifierChoice{"Cheese": models.ModifierExtra},
		}, 430},
		{"remove and standard are free", models.ItemConfiguration{
			FoodID:    "burger-1",
			Modifiers: map[string]models.ModifierChoice{"Onion": models.ModifierRemove, "Pickles": "Normal"},
		}, 280},
		{"sauce and cooking preference are free", models.ItemConfiguration{
			FoodID:            "burger-1",
			SelectedSauce:     "BBQ",
			CookingPreference: models.CookingWellDone,
		}, 280},
		{"duplicate toppings count once", models.ItemConfiguration{
			FoodID:           "burger-1",
			SelectedToppings: []string{"Egg", "Egg"},
		}, 300},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := engine.Price(item, tt.cfg)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestPriceIsDeterministic(t *testing.T) {
	engine := NewEngine(DefaultExtraSurcharge)
	cfg := models.ItemConfiguration{
		FoodID:           "burger-1",
		SelectedSize:     "Large",
		SelectedToppings: []string{"Egg", "Bacon"},
		Modifiers:        map[string]models.ModifierChoice{"Cheese": models.ModifierExtra, "Onion": models.ModifierExtra},
	}

	first, err := engine.Price(burger(), cfg)
	require.NoError(t, err)
	for i := 0; i < 20; i++ {
		again, err := engine.Price(burger(), cfg)
		require.NoError(t, err)
		assert.Equal(t, first, again)
	}
	assert.Equal(t, int64(280+95+30+20+25+25), first)
	assert.Equal(t, []string{"Egg", "Bacon"}, cfg.SelectedToppings, "input must not be mutated")
}

func TestPriceRejectsInvalidConfiguration(t *testing.T) {
	engine := NewEngine(DefaultExtraSurcharge)

	tests := []struct {
		name string
		cfg  models.ItemConfiguration
	}{
		{"unknown size", models.ItemConfiguration{FoodID: "burger-1", SelectedSize: "Huge"}},
		{"unknown topping", models.ItemConfiguration{FoodID: "burger-1", SelectedToppings: []string{"Pineapple"}}},
		{"modifier on non-ingredient", models.ItemConfiguration{
			FoodID:    "burger-1",
			Modifiers: map[string]models.ModifierChoice{"Tomato": models.ModifierExtra},
		}},
		{"unknown modifier value", models.ItemConfiguration{
			FoodID:    "burger-1",
			Modifiers: map[string]models.ModifierChoice{"Cheese": "Double"},
		}},
		{"unknown sauce", models.ItemConfiguration{FoodID: "burger-1", SelectedSauce: "Ketchup"}},
		{"unknown cooking preference", models.ItemConfiguration{FoodID: "burger-1", CookingPreference: "Blue"}},
		{"wrong item", models.ItemConfiguration{FoodID: "pizza-1"}},
		{"negative quantity", models.ItemConfiguration{FoodID: "burger-1", Quantity: -2}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := engine.Price(burger(), tt.cfg)
			require.Error(t, err)
			assert.True(t, errors.Is(err, models.ErrInvalidConfiguration))
		})
	}
}

func TestPriceRejectsCookingPreferenceWhenNotOffered(t *testing.T) {
	item := burger()
	item.HasCookingPreference = false

	_, err := NewEngine(DefaultExtraSurcharge).Price(item, models.ItemConfiguration{
		FoodID:            "burger-1",
		CookingPreference: models.CookingRare,
	})
	assert.ErrorIs(t, err, models.ErrInvalidConfiguration)
}

func TestDrinkModifiersAreNotPriced(t *testing.T) {
	drink := &models.CatalogItem{
		ID:          "lemonade",
		Name:        "Lemonade",
		Category:    models.CategoryDrinks,
		BasePrice:   90,
		Ingredients: []string{"Ice", "Sugar"},
		SizeOptions: []models.PriceOption{{Name: "Small"}, {Name: "Large", PriceOffset: 40}},
		IsAvailable: true,
	}

	got, err := NewEngine(DefaultExtraSurcharge).Price(drink, models.ItemConfiguration{
		FoodID:       "lemonade",
		SelectedSize: "Large",
		Modifiers:    map[string]models.ModifierChoice{"Ice": models.ModifierExtra, "Sugar": models.ModifierRemove},
	})
	require.NoError(t, err)
	assert.Equal(t, int64(130), got)
}

func TestCustomSurcharge(t *testing.T) {
	got, err := NewEngine(15).Price(burger(), models.ItemConfiguration{
		FoodID:    "burger-1",
		Modifiers: map[string]models.ModifierChoice{"Cheese": models.ModifierExtra},
	})
	require.NoError(t, err)
	assert.Equal(t, int64(295), got)
	assert.Equal(t, DefaultExtraSurcharge, NewEngine(-1).ExtraSurcharge)
}

func TestNormalize(t *testing.T) {
	canonical, err := NewEngine(DefaultExtraSurcharge).Normalize(burger(), models.ItemConfiguration{
		FoodID:           "burger-1",
		SelectedToppings: []string{"Egg", "Bacon", "Egg"},
		Modifiers:        map[string]models.ModifierChoice{"Cheese": "Normal", "Onion": models.ModifierRemove},
	})
	require.NoError(t, err)

	assert.Equal(t, "Regular", canonical.SelectedSize)
	assert.Equal(t, []string{"Bacon", "Egg"}, canonical.SelectedToppings)
	assert.Equal(t, map[string]models.ModifierChoice{"Onion": models.ModifierRemove}, canonical.Modifiers)
	assert.Equal(t, 1, canonical.Quantity)
}

func TestNormalizeCapsQuantity(t *testing.T) {
	engine := NewEngine(DefaultExtraSurcharge)

	canonical, err := engine.Normalize(burger(), models.ItemConfiguration{FoodID: "burger-1", Quantity: models.MaxQuantity})
	require.NoError(t, err)
	assert.Equal(t, models.MaxQuantity, canonical.Quantity)

	_, err = engine.Normalize(burger(), models.ItemConfiguration{FoodID: "burger-1", Quantity: models.MaxQuantity + 1})
	assert.ErrorIs(t, err, models.ErrInvalidConfiguration)
}

func TestTotals(t *testing.T) {
	lines := []models.CartLine{
		{ItemConfiguration: models.ItemConfiguration{Quantity: 2}, UnitPrice: 400},
		{ItemConfiguration: models.ItemConfiguration{Quantity: 1}, UnitPrice: 60},
	}
	subtotal, total, err := Totals(lines, 50)
	require.NoError(t, err)
	assert.Equal(t, int64(860), subtotal)
	assert.Equal(t, int64(910), total)

	overflowing := [][]models.CartLine{
		{{ItemConfiguration: models.ItemConfiguration{Quantity: math.MaxInt64 / 200}, UnitPrice: 400}},
		{
			{ItemConfiguration: models.ItemConfiguration{Quantity: 1}, UnitPrice: math.MaxInt64},
			{ItemConfiguration: models.ItemConfiguration{Quantity: 1}, UnitPrice: 1},
		},
		{{ItemConfiguration: models.ItemConfiguration{Quantity: -1}, UnitPrice: 400}},
	}
	for _, lines := range overflowing {
		_, _, err := Totals(lines, 0)
		assert.ErrorIs(t, err, models.ErrInvalidConfiguration)
	}

	_, _, err = Totals([]models.CartLine{{ItemConfiguration: models.ItemConfiguration{Quantity: 1}, UnitPrice: math.MaxInt64}}, 50)
	assert.ErrorIs(t, err, models.ErrInvalidConfiguration)
}

func TestFingerprintIgnoresSelectionOrder(t *testing.T) {
	a := models.ItemConfiguration{
		FoodID:           "burger-1",
		SelectedSize:     "Large",
		SelectedToppings: []string{"Bacon", "Egg"},
		Modifiers:        map[string]models.ModifierChoice{"Cheese": models.ModifierExtra, "Onion": models.ModifierRemove},
		Notes:            "no rush",
		Quantity:         1,
	}
	b := models.ItemConfiguration{
		FoodID:           "burger-1",
		SelectedSize:     "Large",
		SelectedToppings: []string{"Egg", "Bacon", "Egg"},
		Modifiers: map[string]models.ModifierChoice{
			"Onion":   models.ModifierRemove,
			"Cheese":  models.ModifierExtra,
			"Pickles": models.ModifierStandard,
		},
		Quantity: 3,
	}

	assert.Equal(t, Fingerprint(a), Fingerprint(b))
	assert.Len(t, Fingerprint(a), 64)
}

func TestFingerprintIsSensitiveToEachField(t *testing.T) {
	base := models.ItemConfiguration{
		FoodID:           "burger-1",
		SelectedSize:     "Regular",
		SelectedSauce:    "BBQ",
		SelectedToppings: []string{"Bacon"},
		Modifiers:        map[string]models.ModifierChoice{"Cheese": models.ModifierExtra},
	}
	fp := Fingerprint(base)

	variants := map[string]func(*models.ItemConfiguration){
		"food":     func(c *models.ItemConfiguration) { c.FoodID = "burger-2" },
		"size":     func(c *models.ItemConfiguration) { c.SelectedSize = "Large" },
		"sauce":    func(c *models.ItemConfiguration) { c.SelectedSauce = "Mayo" },
		"toppings": func(c *models.ItemConfiguration) { c.SelectedToppings = []string{"Bacon", "Egg"} },
		"modifier": func(c *models.ItemConfiguration) { c.Modifiers = map[string]models.ModifierChoice{"Cheese": models.ModifierRemove} },
		"cooking":  func(c *models.ItemConfiguration) { c.CookingPreference = models.CookingRare },
	}

	for name, mutate := range variants {
		t.Run(name, func(t *testing.T) {
			cfg := base.Clone()
			mutate(&cfg)
			assert.NotEqual(t, fp, Fingerprint(cfg))
		})
	}
}
