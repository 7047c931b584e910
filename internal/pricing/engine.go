package pricing

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"math"
	"sort"

	"github.com/franciscosanchezn/gin-food-api/internal/models"
)

// DefaultExtraSurcharge is charged once per ingredient modifier set to Extra
const DefaultExtraSurcharge int64 = 25

// Engine prices item configurations. It holds no mutable state and is safe for
// concurrent use.
type Engine struct {
	ExtraSurcharge int64
}

// NewEngine returns an engine using the given Extra surcharge. A negative
// surcharge falls back to the default.
func NewEngine(extraSurcharge int64) *Engine {
	if extraSurcharge < 0 {
		extraSurcharge = DefaultExtraSurcharge
	}
	return &Engine{ExtraSurcharge: extraSurcharge}
}

// Normalize validates cfg against the item schema and returns its canonical
// form: the size resolved to a concrete option, toppings sorted and deduplicated,
// Standard modifiers dropped and quantity at least one.
func (e *Engine) Normalize(item *models.CatalogItem, cfg models.ItemConfiguration) (models.ItemConfiguration, error) {
	out := cfg.Clone()

	if cfg.FoodID != item.ID {
		return out, fmt.Errorf("%w: configuration is for %q, not %q", models.ErrInvalidConfiguration, cfg.FoodID, item.ID)
	}
	if len(item.SizeOptions) == 0 {
		return out, fmt.Errorf("%w: item %q has no sizes", models.ErrInvalidConfiguration, item.ID)
	}

	if out.SelectedSize == "" {
		out.SelectedSize = item.DefaultSize().Name
	} else if _, ok := item.FindSize(out.SelectedSize); !ok {
		return out, fmt.Errorf("%w: unknown size %q", models.ErrInvalidConfiguration, out.SelectedSize)
	}

	if out.SelectedSauce != "" && !item.HasSauce(out.SelectedSauce) {
		return out, fmt.Errorf("%w: unknown sauce %q", models.ErrInvalidConfiguration, out.SelectedSauce)
	}

	toppings := make([]string, 0, len(out.SelectedToppings))
	seen := make(map[string]bool, len(out.SelectedToppings))
	for _, name := range out.SelectedToppings {
		if seen[name] {
			continue
		}
		if _, ok := item.FindTopping(name); !ok {
			return out, fmt.Errorf("%w: unknown topping %q", models.ErrInvalidConfiguration, name)
		}
		seen[name] = true
		toppings = append(toppings, name)
	}
	sort.Strings(toppings)
	out.SelectedToppings = toppings

	modifiers := make(map[string]models.ModifierChoice, len(out.Modifiers))
	for ingredient, choice := range out.Modifiers {
		if !item.HasIngredient(ingredient) {
			return out, fmt.Errorf("%w: %q is not an ingredient of %q", models.ErrInvalidConfiguration, ingredient, item.Name)
		}
		normalized, ok := choice.Normalize()
		if !ok {
			return out, fmt.Errorf("%w: unknown modifier %q for %q", models.ErrInvalidConfiguration, choice, ingredient)
		}
		if normalized != models.ModifierStandard {
			modifiers[ingredient] = normalized
		}
	}
	out.Modifiers = modifiers

	if !out.CookingPreference.Valid() {
		return out, fmt.Errorf("%w: unknown cooking preference %q", models.ErrInvalidConfiguration, out.CookingPreference)
	}
	if out.CookingPreference != "" && !item.HasCookingPreference {
		return out, fmt.Errorf("%w: %q does not take a cooking preference", models.ErrInvalidConfiguration, item.Name)
	}

	switch {
	case out.Quantity < 0:
		return out, fmt.Errorf("%w: quantity must be positive", models.ErrInvalidConfiguration)
	case out.Quantity == 0:
		out.Quantity = 1
	case out.Quantity > models.MaxQuantity:
		return out, fmt.Errorf("%w: quantity %d exceeds %d", models.ErrInvalidConfiguration, out.Quantity, models.MaxQuantity)
	}

	return out, nil
}

// Price returns the unit price of cfg for item in the smallest currency unit.
// It is deterministic and never mutates its inputs.
func (e *Engine) Price(item *models.CatalogItem, cfg models.ItemConfiguration) (int64, error) {
	canonical, err := e.Normalize(item, cfg)
	if err != nil {
		return 0, err
	}

	total := item.BasePrice

	size, _ := item.FindSize(canonical.SelectedSize)
	total += size.PriceOffset

	for _, name := range canonical.SelectedToppings {
		topping, _ := item.FindTopping(name)
		total += topping.PriceOffset
	}

	// Drinks accept modifiers (ice, sugar) but never charge for them
	if item.Category != models.CategoryDrinks {
		for _, choice := range canonical.Modifiers {
			if choice == models.ModifierExtra {
				total += e.ExtraSurcharge
			}
		}
	}

	return total, nil
}

// Totals sums line totals and adds fee. It fails with ErrInvalidConfiguration
// instead of wrapping around when an amount does not fit in an int64.
func Totals(lines []models.CartLine, fee int64) (subtotal, total int64, err error) {
	for _, l := range lines {
		if l.UnitPrice < 0 || l.Quantity < 0 {
			return 0, 0, fmt.Errorf("%w: negative price or quantity", models.ErrInvalidConfiguration)
		}
		if l.Quantity > 0 && l.UnitPrice > math.MaxInt64/int64(l.Quantity) {
			return 0, 0, fmt.Errorf("%w: line total overflows", models.ErrInvalidConfiguration)
		}
		lineTotal := l.LineTotal()
		if subtotal > math.MaxInt64-lineTotal {
			return 0, 0, fmt.Errorf("%w: subtotal overflows", models.ErrInvalidConfiguration)
		}
		subtotal += lineTotal
	}
	if fee < 0 || subtotal > math.MaxInt64-fee {
		return 0, 0, fmt.Errorf("%w: order total overflows", models.ErrInvalidConfiguration)
	}
	return subtotal, subtotal + fee, nil
}

type fingerprintKey struct {
	FoodID    string      `json:"f"`
	Size      string      `json:"s"`
	Sauce     string      `json:"c"`
	Toppings  []string    `json:"t"`
	Modifiers [][2]string `json:"m"`
	Cooking   string      `json:"p"`
}

// Fingerprint identifies a configuration independent of the order in which
// toppings and modifiers were chosen. Notes and quantity do not take part.
// Callers should fingerprint the output of Normalize so that an empty size and
// the default size compare equal.
func Fingerprint(cfg models.ItemConfiguration) string {
	toppings := make([]string, 0, len(cfg.SelectedToppings))
	seen := make(map[string]bool, len(cfg.SelectedToppings))
	for _, t := range cfg.SelectedToppings {
		if !seen[t] {
			seen[t] = true
			toppings = append(toppings, t)
		}
	}
	sort.Strings(toppings)

	modifiers := make([][2]string, 0, len(cfg.Modifiers))
	for ingredient, choice := range cfg.Modifiers {
		normalized, ok := choice.Normalize()
		if ok && normalized == models.ModifierStandard {
			continue
		}
		modifiers = append(modifiers, [2]string{ingredient, string(normalized)})
	}
	sort.Slice(modifiers, func(i, j int) bool { return modifiers[i][0] < modifiers[j][0] })

	key := fingerprintKey{
		FoodID:    cfg.FoodID,
		Size:      cfg.SelectedSize,
		Sauce:     cfg.SelectedSauce,
		Toppings:  toppings,
		Modifiers: modifiers,
		Cooking:   string(cfg.CookingPreference),
	}
	// Marshalling a struct of strings and slices cannot fail
	raw, _ := json.Marshal(key)
	sum := sha256.Sum256(raw)
	return hex.EncodeToString(sum[:])
}
