package services

import (
	"math"
	"math/rand/v2"
	"testing"

	"burger-forge/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCart() *Cart {
	return NewCart(DefaultMenu(600))
}

func TestCartAddSameItemTwiceMerges(t *testing.T) {
	c := newTestCart()
	c.AddItem(1, false)
	c.AddItem(1, false)

	items := c.Items()
	require.Len(t, items, 1)
	assert.Equal(t, 2, items[0].Quantity)
	assert.Equal(t, int64(3700), c.Total())
	assert.Equal(t, 2, c.ItemCount())
}

func TestCartMealAndPlainAreDistinctLines(t *testing.T) {
	c := newTestCart()
	c.AddItem(1, false)
	meal, ok := c.AddItem(1, true)
	require.True(t, ok)

	items := c.Items()
	require.Len(t, items, 2)
	assert.False(t, items[0].IsMeal)
	assert.True(t, items[1].IsMeal)
	assert.Equal(t, int64(2450), meal.UnitPrice)
	assert.Equal(t, []models.BundleComponent{{Name: "Forge Fries", Price: 450}, {Name: "Craft Soda", Price: 350}}, meal.MealIncludes)
	assert.Empty(t, items[0].MealIncludes)
	assert.Equal(t, int64(4300), c.Total())
}

func TestCartAddUnknownItem(t *testing.T) {
	c := newTestCart()
	_, ok := c.AddItem(999, false)
	assert.False(t, ok)
	assert.True(t, c.IsEmpty())
}

func TestCartPreservesInsertionOrder(t *testing.T) {
	c := newTestCart()
	c.AddItem(3, false)
	c.AddItem(101, false)
	c.AddItem(1, true)
	c.AddItem(3, false)

	var ids []int
	for _, it := range c.Items() {
		ids = append(ids, it.CatalogID)
	}
	assert.Equal(t, []int{3, 101, 1}, ids)
}

func TestCartRemoveItemIgnoresQuantity(t *testing.T) {
	c := newTestCart()
	c.AddItem(2, false)
	c.AddItem(2, false)
	c.AddItem(2, true)

	c.RemoveItem(2, false)

	items := c.Items()
	require.Len(t, items, 1)
	assert.True(t, items[0].IsMeal)

	c.RemoveItem(2, false)
	assert.Len(t, c.Items(), 1, "removing a missing line is a no-op")
}

func TestCartAdjustQuantity(t *testing.T) {
	tests := []struct {
		name     string
		start    int
		delta    int
		wantQty  int
		wantGone bool
	}{
		{"increment", 1, 1, 2, false},
		{"decrement", 3, -1, 2, false},
		{"decrement to zero removes", 1, -1, 0, true},
		{"minus quantity removes", 4, -4, 0, true},
		{"below zero removes", 2, -5, 0, true},
		{"zero delta keeps", 2, 0, 2, false},
		{"huge increment stops at the cap", 2, math.MaxInt, MaxLineQuantity, false},
		{"huge decrement removes", 2, math.MinInt, 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestCart()
			for i := 0; i < tt.start; i++ {
				c.AddItem(4, false)
			}
			c.AdjustQuantity(4, false, tt.delta)
			items := c.Items()
			if tt.wantGone {
				assert.Empty(t, items)
				return
			}
			require.Len(t, items, 1)
			assert.Equal(t, tt.wantQty, items[0].Quantity)
		})
	}
}

func TestCartQuantityCap(t *testing.T) {
	c := newTestCart()
	c.AddItem(101, false)
	c.AdjustQuantity(101, false, MaxLineQuantity)

	line, ok := c.AddItem(101, false)
	require.True(t, ok)
	assert.Equal(t, MaxLineQuantity, line.Quantity)
	assert.Equal(t, int64(650*MaxLineQuantity), c.Total())

	c.AdjustQuantity(101, false, -1)
	assert.Equal(t, MaxLineQuantity-1, c.Items()[0].Quantity)
}

func TestCartAdjustMissingIsNoop(t *testing.T) {
	c := newTestCart()
	c.AddItem(1, false)
	before := c.Items()

	c.AdjustQuantity(1, true, 1)
	c.AdjustQuantity(42, false, -1)

	assert.Equal(t, before, c.Items())
}

func TestCartLockedPriceSurvivesMenuChange(t *testing.T) {
	menu := DefaultMenu(600)
	c := NewCart(menu)
	c.AddItem(1, true)

	cheaper, err := NewMenu([]models.MenuItem{{ID: 1, Name: "The Ironclad", Price: 100, Category: models.CategorySandwich, UpsellEligible: true}}, Meal{Upcharge: 0})
	require.NoError(t, err)
	c.menu = cheaper
	c.AddItem(1, true)

	items := c.Items()
	require.Len(t, items, 1)
	assert.Equal(t, int64(2450), items[0].UnitPrice)
	assert.Equal(t, 2, items[0].Quantity)
}

func TestCartItemsIsACopy(t *testing.T) {
	c := newTestCart()
	c.AddItem(1, true)

	items := c.Items()
	items[0].Quantity = 99
	items[0].MealIncludes[0].Name = "changed"

	fresh := c.Items()
	assert.Equal(t, 1, fresh[0].Quantity)
	assert.Equal(t, "Forge Fries", fresh[0].MealIncludes[0].Name)
}

func TestCartClear(t *testing.T) {
	c := newTestCart()
	c.AddItem(1, false)
	c.AddItem(103, false)
	c.Clear()
	assert.True(t, c.IsEmpty())
	assert.Zero(t, c.Total())
	assert.Zero(t, c.ItemCount())
}

func TestCartRestore(t *testing.T) {
	c := newTestCart()
	c.Restore([]models.LineItem{
		{CatalogID: 1, Name: "The Ironclad", UnitPrice: 1850, Quantity: 1},
		{CatalogID: 1, Name: "The Ironclad", UnitPrice: 1850, Quantity: 2},
		{CatalogID: 2, Name: "Magma Jalapeño", UnitPrice: 1600, Quantity: 0},
		{CatalogID: 3, Name: "Black Truffle Forge", UnitPrice: 2700, Quantity: 1, IsMeal: true},
		{CatalogID: 103, Name: "Forge Cola", UnitPrice: -1, Quantity: 1},
	})

	items := c.Items()
	require.Len(t, items, 2)
	assert.Equal(t, 3, items[0].Quantity)
	assert.True(t, items[1].IsMeal)
	assert.Equal(t, int64(3*1850+2700), c.Total())
}

func TestCartRestoreCapsQuantity(t *testing.T) {
	c := newTestCart()
	c.Restore([]models.LineItem{
		{CatalogID: 1, Name: "The Ironclad", UnitPrice: 1850, Quantity: math.MaxInt},
		{CatalogID: 1, Name: "The Ironclad", UnitPrice: 1850, Quantity: math.MaxInt},
	})

	items := c.Items()
	require.Len(t, items, 1)
	assert.Equal(t, MaxLineQuantity, items[0].Quantity)
}

// Any sequence of operations keeps Total equal to the sum recomputed from the lines,
// and never leaves duplicate identities or non-positive quantities behind.
func TestCartTotalInvariantUnderRandomOps(t *testing.T) {
	ids := []int{1, 2, 3, 4, 5, 6, 101, 102, 103, 104, 105, 999}
	r := rand.New(rand.NewPCG(1, 2))

	for run := 0; run < 200; run++ {
		c := newTestCart()
		for step := 0; step < 50; step++ {
			id := ids[r.IntN(len(ids))]
			meal := r.IntN(2) == 0
			switch r.IntN(3) {
			case 0:
				c.AddItem(id, meal)
			case 1:
				c.RemoveItem(id, meal)
			case 2:
				c.AdjustQuantity(id, meal, r.IntN(7)-3)
			}

			var want int64
			wantCount := 0
			seen := map[[2]int]bool{}
			for _, it := range c.Items() {
				want += it.UnitPrice * int64(it.Quantity)
				wantCount += it.Quantity
				require.Positive(t, it.Quantity)
				k := [2]int{it.CatalogID, boolInt(it.IsMeal)}
				require.False(t, seen[k], "duplicate identity %v", k)
				seen[k] = true
			}
			require.Equal(t, want, c.Total())
			require.Equal(t, wantCount, c.ItemCount())
		}
	}
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
