package models

import (
	"fmt"
	"strings"
	"time"
)

// Category groups catalog items on the menu
type Category string

const (
	CategoryBurger    Category = "Burger"
	CategoryPizza     Category = "Pizza"
	CategoryFriedFood Category = "FriedFood"
	CategoryChicken   Category = "Chicken"
	CategoryDrinks    Category = "Drinks"
	CategoryDessert   Category = "Dessert"
)

// Categories lists every known category in menu order
var Categories = []Category{
	CategoryBurger, CategoryPizza, CategoryFriedFood, CategoryChicken, CategoryDrinks, CategoryDessert,
}

// Valid reports whether c is a known category
func (c Category) Valid() bool {
	for _, known := range Categories {
		if c == known {
			return true
		}
	}
	return false
}

// SpicyLevel describes how hot an item is
type SpicyLevel string

const (
	SpicyNone   SpicyLevel = "None"
	SpicyMild   SpicyLevel = "Mild"
	SpicyMedium SpicyLevel = "Medium"
	SpicyHot    SpicyLevel = "Hot"
)

// Valid reports whether s is a known spicy level. Empty means None.
func (s SpicyLevel) Valid() bool {
	switch s {
	case "", SpicyNone, SpicyMild, SpicyMedium, SpicyHot:
		return true
	}
	return false
}

// PriceOption is a named choice with a surcharge, used for sizes and toppings
type PriceOption struct {
	Name        string `json:"name" yaml:"name"`
	PriceOffset int64  `json:"priceOffset" yaml:"priceOffset"`
}

// CatalogItem represents an orderable menu item and its configuration schema.
// Prices are in the smallest currency unit.
type CatalogItem struct {
	ID                   string        `json:"id" gorm:"primaryKey" yaml:"id"`
	Name                 string        `json:"name" gorm:"not null" yaml:"name"`
	Description          string        `json:"description" yaml:"description"`
	Category             Category      `json:"category" gorm:"index;not null" yaml:"category"`
	BasePrice            int64         `json:"basePrice" yaml:"basePrice"`
	ImageURL             string        `json:"imageUrl,omitempty" yaml:"imageUrl"`
	Calories             int           `json:"calories,omitempty" yaml:"calories"`
	Ingredients          []string      `json:"ingredients" gorm:"serializer:json" yaml:"ingredients"`
	SizeOptions          []PriceOption `json:"sizeOptions" gorm:"serializer:json" yaml:"sizeOptions"`
	AvailableToppings    []PriceOption `json:"availableToppings" gorm:"serializer:json" yaml:"availableToppings"`
	AvailableSauces      []string      `json:"availableSauces" gorm:"serializer:json" yaml:"availableSauces"`
	SpicyLevel           SpicyLevel    `json:"spicyLevel" yaml:"spicyLevel"`
	HasCookingPreference bool          `json:"hasCookingPreference" yaml:"hasCookingPreference"`
	IsAvailable          bool          `json:"isAvailable" yaml:"isAvailable"`
	CreatedAt            time.Time     `json:"createdAt" yaml:"-"`
	UpdatedAt            time.Time     `json:"updatedAt" yaml:"-"`
}

// Validate checks the catalog invariants: a name, a known category, a
// non-negative base price and at least one size. Offsets must be non-negative
// and option names unique within their list.
func (item *CatalogItem) Validate() error {
	if strings.TrimSpace(item.Name) == "" {
		return fmt.Errorf("%w: name is required", ErrValidation)
	}
	if !item.Category.Valid() {
		return fmt.Errorf("%w: unknown category %q", ErrValidation, item.Category)
	}
	if item.BasePrice < 0 {
		return fmt.Errorf("%w: basePrice must not be negative", ErrValidation)
	}
	if !item.SpicyLevel.Valid() {
		return fmt.Errorf("%w: unknown spicy level %q", ErrValidation, item.SpicyLevel)
	}
	if len(item.SizeOptions) == 0 {
		return fmt.Errorf("%w: at least one size option is required", ErrValidation)
	}
	if err := validateOptions("size", item.SizeOptions); err != nil {
		return err
	}
	if err := validateOptions("topping", item.AvailableToppings); err != nil {
		return err
	}
	if dup := firstDuplicate(item.AvailableSauces); dup != "" {
		return fmt.Errorf("%w: duplicate sauce %q", ErrValidation, dup)
	}
	if dup := firstDuplicate(item.Ingredients); dup != "" {
		return fmt.Errorf("%w: duplicate ingredient %q", ErrValidation, dup)
	}
	return nil
}

// DefaultSize returns the first size option, which is the default selection
func (item *CatalogItem) DefaultSize() PriceOption {
	return item.SizeOptions[0]
}

// FindSize looks up a size option by name
func (item *CatalogItem) FindSize(name string) (PriceOption, bool) {
	return findOption(item.SizeOptions, name)
}

// FindTopping looks up a topping by name
func (item *CatalogItem) FindTopping(name string) (PriceOption, bool) {
	return findOption(item.AvailableToppings, name)
}

// HasSauce reports whether the sauce is offered for this item
func (item *CatalogItem) HasSauce(name string) bool {
	for _, s := range item.AvailableSauces {
		if s == name {
			return true
		}
	}
	return false
}

// HasIngredient reports whether name is one of the item's ingredients
func (item *CatalogItem) HasIngredient(name string) bool {
	for _, ing := range item.Ingredients {
		if ing == name {
			return true
		}
	}
	return false
}

// CatalogItemPatch carries a partial update. Nil fields are left untouched.
type CatalogItemPatch struct {
	Name                 *string        `json:"name"`
	Description          *string        `json:"description"`
	Category             *Category      `json:"category"`
	BasePrice            *int64         `json:"basePrice"`
	ImageURL             *string        `json:"imageUrl"`
	Calories             *int           `json:"calories"`
	Ingredients          *[]string      `json:"ingredients"`
	SizeOptions          *[]PriceOption `json:"sizeOptions"`
	AvailableToppings    *[]PriceOption `json:"availableToppings"`
	AvailableSauces      *[]string      `json:"availableSauces"`
	SpicyLevel           *SpicyLevel    `json:"spicyLevel"`
	HasCookingPreference *bool          `json:"hasCookingPreference"`
	IsAvailable          *bool          `json:"isAvailable"`
}

// Apply copies every non-nil field of the patch onto item
func (p CatalogItemPatch) Apply(item *CatalogItem) {
	if p.Name != nil {
		item.Name = *p.Name
	}
	if p.Description != nil {
		item.Description = *p.Description
	}
	if p.Category != nil {
		item.Category = *p.Category
	}
	if p.BasePrice != nil {
		item.BasePrice = *p.BasePrice
	}
	if p.ImageURL != nil {
		item.ImageURL = *p.ImageURL
	}
	if p.Calories != nil {
		item.Calories = *p.Calories
	}
	if p.Ingredients != nil {
		item.Ingredients = append([]string(nil), (*p.Ingredients)...)
	}
	if p.SizeOptions != nil {
		item.SizeOptions = append([]PriceOption(nil), (*p.SizeOptions)...)
	}
	if p.AvailableToppings != nil {
		item.AvailableToppings = append([]PriceOption(nil), (*p.AvailableToppings)...)
	}
	if p.AvailableSauces != nil {
		item.AvailableSauces = append([]string(nil), (*p.AvailableSauces)...)
	}
	if p.SpicyLevel != nil {
		item.SpicyLevel = *p.SpicyLevel
	}
	if p.HasCookingPreference != nil {
		item.HasCookingPreference = *p.HasCookingPreference
	}
	if p.IsAvailable != nil {
		item.IsAvailable = *p.IsAvailable
	}
}

func findOption(options []PriceOption, name string) (PriceOption, bool) {
	for _, opt := range options {
		if opt.Name == name {
			return opt, true
		}
	}
	return PriceOption{}, false
}

func validateOptions(kind string, options []PriceOption) error {
	seen := make(map[string]bool, len(options))
	for _, opt := range options {
		if strings.TrimSpace(opt.Name) == "" {
			return fmt.Errorf("%w: %s option without a name", ErrValidation, kind)
		}
		if opt.PriceOffset < 0 {
			return fmt.Errorf("%w: %s %q has a negative price offset", ErrValidation, kind, opt.Name)
		}
		if seen[opt.Name] {
			return fmt.Errorf("%w: duplicate %s %q", ErrValidation, kind, opt.Name)
		}
		seen[opt.Name] = true
	}
	return nil
}

func firstDuplicate(values []string) string {
	seen := make(map[string]bool, len(values))
	for _, v := range values {
		if seen[v] {
			return v
		}
		seen[v] = true
	}
	return ""
}
