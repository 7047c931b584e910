package models

// ModifierChoice is what the customer did with a default ingredient
type ModifierChoice string

const (
	ModifierRemove   ModifierChoice = "Remove"
	ModifierStandard ModifierChoice = "Standard"
	ModifierExtra    ModifierChoice = "Extra"
)

// Normalize maps accepted aliases onto the canonical choice. "Normal" and the
// empty string both mean Standard.
func (m ModifierChoice) Normalize() (ModifierChoice, bool) {
	switch m {
	case ModifierRemove, ModifierExtra:
		return m, true
	case ModifierStandard, "Normal", "":
		return ModifierStandard, true
	}
	return m, false
}

// CookingPreference is the doneness requested for items that offer it
type CookingPreference string

const (
	CookingRare     CookingPreference = "Rare"
	CookingMedium   CookingPreference = "Medium"
	CookingWellDone CookingPreference = "Well-done"
)

// Valid reports whether c is a known preference. Empty means no preference.
func (c CookingPreference) Valid() bool {
	switch c {
	case "", CookingRare, CookingMedium, CookingWellDone:
		return true
	}
	return false
}

// ItemConfiguration is a customer's selection for one catalog item
type ItemConfiguration struct {
	FoodID            string                    `json:"foodId"`
	SelectedSize      string                    `json:"selectedSize"`
	SelectedSauce     string                    `json:"selectedSauce,omitempty"`
	SelectedToppings  []string                  `json:"selectedToppings" gorm:"serializer:json"`
	Modifiers         map[string]ModifierChoice `json:"modifiers" gorm:"serializer:json"`
	CookingPreference CookingPreference         `json:"cookingPreference,omitempty"`
	Notes             string                    `json:"notes,omitempty"`
	Quantity          int                       `json:"quantity"`
}

// Clone returns a deep copy so that snapshots never share slices or maps
func (c ItemConfiguration) Clone() ItemConfiguration {
	out := c
	if c.SelectedToppings != nil {
		out.SelectedToppings = append([]string(nil), c.SelectedToppings...)
	}
	if c.Modifiers != nil {
		out.Modifiers = make(map[string]ModifierChoice, len(c.Modifiers))
		for k, v := range c.Modifiers {
			out.Modifiers[k] = v
		}
	}
	return out
}

// MaxQuantity bounds the quantity of a single cart or order line
const MaxQuantity = 99

// CartLine is a priced configuration held by a cart
type CartLine struct {
	ItemConfiguration
	Name        string `json:"name"`
	UnitPrice   int64  `json:"unitPrice"`
	Fingerprint string `json:"fingerprint" gorm:"index"`
}

// LineTotal is unit price times quantity
func (l CartLine) LineTotal() int64 {
	return l.UnitPrice * int64(l.Quantity)
}

// Clone returns a deep copy of the line
func (l CartLine) Clone() CartLine {
	out := l
	out.ItemConfiguration = l.ItemConfiguration.Clone()
	return out
}
