package services

import (
	"context"
	"encoding/json"
	"fmt"

	"burger-forge/models"
	"burger-forge/storage"
)

// MaxLineQuantity caps a single line so quantities and subtotals cannot overflow.
const MaxLineQuantity = 999

// Cart is the line-item engine. Lines are kept in insertion order and a
// (catalog id, meal) pair appears at most once. Not safe for concurrent use;
// Session serializes access.
type Cart struct {
	menu  *Menu
	items []models.LineItem
}

func NewCart(menu *Menu) *Cart {
	return &Cart{menu: menu}
}

func (c *Cart) find(catalogID int, meal bool) int {
	for i := range c.items {
		if c.items[i].CatalogID == catalogID && c.items[i].IsMeal == meal {
			return i
		}
	}
	return -1
}

// AddItem adds one unit of the catalog item, as a meal when meal is true.
// A new line copies the current catalog name, price and image; an existing
// line only has its quantity bumped, so its locked-in price never changes.
// Returns false for an unknown catalog id.
func (c *Cart) AddItem(catalogID int, meal bool) (models.LineItem, bool) {
	if i := c.find(catalogID, meal); i >= 0 {
		if c.items[i].Quantity < MaxLineQuantity {
			c.items[i].Quantity++
		}
		return c.items[i].Clone(), true
	}
	item, ok := c.menu.Get(catalogID)
	if !ok {
		return models.LineItem{}, false
	}
	li := models.LineItem{
		CatalogID: item.ID,
		Name:      item.Name,
		UnitPrice: item.Price,
		Quantity:  1,
		Image:     item.Image,
	}
	if meal {
		m := c.menu.Meal()
		li.IsMeal = true
		li.UnitPrice += m.Upcharge
		li.MealIncludes = m.Includes
	}
	c.items = append(c.items, li)
	return li.Clone(), true
}

func (c *Cart) RemoveItem(catalogID int, meal bool) {
	if i := c.find(catalogID, meal); i >= 0 {
		c.items = append(c.items[:i], c.items[i+1:]...)
	}
}

// AdjustQuantity adds delta to the line's quantity and drops the line when it
// reaches zero or below. Increments stop at MaxLineQuantity. Missing lines are
// ignored.
func (c *Cart) AdjustQuantity(catalogID int, meal bool, delta int) {
	i := c.find(catalogID, meal)
	if i < 0 {
		return
	}
	q := c.items[i].Quantity
	if delta <= -q {
		c.items = append(c.items[:i], c.items[i+1:]...)
		return
	}
	c.items[i].Quantity = clampQuantity(q, delta)
}

// clampQuantity returns q+delta limited to MaxLineQuantity without overflowing.
// q must be in [0, MaxLineQuantity] and delta > -q.
func clampQuantity(q, delta int) int {
	if delta > MaxLineQuantity-q {
		return MaxLineQuantity
	}
	return q + delta
}

func (c *Cart) Total() int64 {
	var total int64
	for _, it := range c.items {
		total += it.Subtotal()
	}
	return total
}

// ItemCount is the badge number: units, not lines.
func (c *Cart) ItemCount() int {
	n := 0
	for _, it := range c.items {
		n += it.Quantity
	}
	return n
}

func (c *Cart) IsEmpty() bool {
	return len(c.items) == 0
}

// Items returns a deep copy of the lines.
func (c *Cart) Items() []models.LineItem {
	out := make([]models.LineItem, len(c.items))
	for i, it := range c.items {
		out[i] = it.Clone()
	}
	return out
}

func (c *Cart) Clear() {
	c.items = nil
}

// Restore replaces the lines with persisted ones. Lines with a non-positive
// quantity or negative price are dropped, quantities are capped and repeated
// identities are merged, so the cart invariants hold whatever was stored.
func (c *Cart) Restore(lines []models.LineItem) {
	c.items = nil
	for _, li := range lines {
		if li.Quantity <= 0 || li.UnitPrice < 0 {
			continue
		}
		if i := c.find(li.CatalogID, li.IsMeal); i >= 0 {
			c.items[i].Quantity = clampQuantity(c.items[i].Quantity, li.Quantity)
			continue
		}
		li = li.Clone()
		li.Quantity = clampQuantity(0, li.Quantity)
		if !li.IsMeal {
			li.MealIncludes = nil
		}
		c.items = append(c.items, li)
	}
}

const keyCart = "burgerForge_cart"

// CartStore persists cart lines between sessions.
type CartStore interface {
	LoadCart(ctx context.Context) ([]models.LineItem, error)
	SaveCart(ctx context.Context, items []models.LineItem) error
}

type kvCartStore struct {
	kv    storage.KV
	owner string
}

func NewCartStore(kv storage.KV, owner string) CartStore {
	return &kvCartStore{kv: kv, owner: owner}
}

// LoadCart returns ErrCorruptState (with no lines) when the stored JSON cannot be parsed.
func (s *kvCartStore) LoadCart(ctx context.Context) ([]models.LineItem, error) {
	raw, ok, err := s.kv.Get(ctx, s.owner, keyCart)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, nil
	}
	var items []models.LineItem
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, fmt.Errorf("%w: cart: %v", ErrCorruptState, err)
	}
	return items, nil
}

func (s *kvCartStore) SaveCart(ctx context.Context, items []models.LineItem) error {
	if len(items) == 0 {
		return s.kv.Delete(ctx, s.owner, keyCart)
	}
	b, err := json.Marshal(items)
	if err != nil {
		return fmt.Errorf("failed to marshal cart items: %w", err)
	}
	return s.kv.Set(ctx, s.owner, keyCart, b)
}
