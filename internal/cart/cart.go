package cart

import (
	"fmt"
	"sync"

	"github.com/franciscosanchezn/gin-food-api/internal/models"
	"github.com/franciscosanchezn/gin-food-api/internal/pricing"
)

// Cart holds configured lines for one shopping session. Lines are keyed by
// configuration fingerprint and kept in insertion order.
type Cart struct {
	mu     sync.Mutex
	engine *pricing.Engine
	lines  []models.CartLine
}

// New creates an empty cart that prices lines with engine
func New(engine *pricing.Engine) *Cart {
	return &Cart{engine: engine}
}

// AddLine prices cfg against item and adds it. A configuration already in the
// cart has its quantity increased instead of creating a second line.
func (c *Cart) AddLine(cfg models.ItemConfiguration, item *models.CatalogItem) (models.CartLine, error) {
	if item == nil {
		return models.CartLine{}, fmt.Errorf("%w: no catalog item", models.ErrInvalidConfiguration)
	}
	if !item.IsAvailable {
		return models.CartLine{}, fmt.Errorf("%w: %q is not available", models.ErrInvalidConfiguration, item.Name)
	}

	canonical, err := c.engine.Normalize(item, cfg)
	if err != nil {
		return models.CartLine{}, err
	}
	unitPrice, err := c.engine.Price(item, canonical)
	if err != nil {
		return models.CartLine{}, err
	}
	fingerprint := pricing.Fingerprint(canonical)

	c.mu.Lock()
	defer c.mu.Unlock()

	if i := c.indexOf(fingerprint); i >= 0 {
		merged := c.lines[i].Quantity + canonical.Quantity
		if merged > models.MaxQuantity {
			return models.CartLine{}, fmt.Errorf("%w: quantity %d exceeds %d", models.ErrInvalidConfiguration, merged, models.MaxQuantity)
		}
		c.lines[i].Quantity = merged
		return c.lines[i].Clone(), nil
	}

	line := models.CartLine{
		ItemConfiguration: canonical,
		Name:              item.Name,
		UnitPrice:         unitPrice,
		Fingerprint:       fingerprint,
	}
	c.lines = append(c.lines, line)
	return line.Clone(), nil
}

// RemoveLine drops the line with the given fingerprint
func (c *Cart) RemoveLine(fingerprint string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	i := c.indexOf(fingerprint)
	if i < 0 {
		return fmt.Errorf("%w: cart line %s", models.ErrRecordNotFound, fingerprint)
	}
	c.lines = append(c.lines[:i], c.lines[i+1:]...)
	return nil
}

// SetQuantity replaces a line's quantity. Values below one are clamped to one;
// values above models.MaxQuantity are rejected.
func (c *Cart) SetQuantity(fingerprint string, qty int) (models.CartLine, error) {
	if qty > models.MaxQuantity {
		return models.CartLine{}, fmt.Errorf("%w: quantity %d exceeds %d", models.ErrInvalidConfiguration, qty, models.MaxQuantity)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	i := c.indexOf(fingerprint)
	if i < 0 {
		return models.CartLine{}, fmt.Errorf("%w: cart line %s", models.ErrRecordNotFound, fingerprint)
	}
	if qty < 1 {
		qty = 1
	}
	c.lines[i].Quantity = qty
	return c.lines[i].Clone(), nil
}

// Clear empties the cart
func (c *Cart) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lines = nil
}

// TotalItemCount is the sum of quantities over all lines
func (c *Cart) TotalItemCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	count := 0
	for _, l := range c.lines {
		count += l.Quantity
	}
	return count
}

// Subtotal is the sum of unit price times quantity over all lines
func (c *Cart) Subtotal() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()

	var total int64
	for _, l := range c.lines {
		total += l.LineTotal()
	}
	return total
}

// Snapshot returns a deep copy of the lines in insertion order
func (c *Cart) Snapshot() []models.CartLine {
	c.mu.Lock()
	defer c.mu.Unlock()

	out := make([]models.CartLine, len(c.lines))
	for i, l := range c.lines {
		out[i] = l.Clone()
	}
	return out
}

// Commit hands a snapshot of the lines to fn while holding the cart lock and
// empties the cart only if fn succeeds. Concurrent edits wait for fn to return.
func (c *Cart) Commit(fn func(lines []models.CartLine) error) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	lines := make([]models.CartLine, len(c.lines))
	for i, l := range c.lines {
		lines[i] = l.Clone()
	}
	if err := fn(lines); err != nil {
		return err
	}
	c.lines = nil
	return nil
}

// Len returns the number of distinct lines
func (c *Cart) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.lines)
}

func (c *Cart) indexOf(fingerprint string) int {
	for i, l := range c.lines {
		if l.Fingerprint == fingerprint {
			return i
		}
	}
	return -1
}
