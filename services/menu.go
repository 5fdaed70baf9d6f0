package services

import (
	"fmt"

	"burger-forge/models"
)

// Meal describes the "make it a meal" bundle offered for upsell-eligible items.
type Meal struct {
	Upcharge int64                    `json:"upcharge"`
	Includes []models.BundleComponent `json:"includes"`
}

// Menu is the read-only catalog. It is built once at startup and never mutated.
type Menu struct {
	items []models.MenuItem
	byID  map[int]int
	meal  Meal
}

func NewMenu(items []models.MenuItem, meal Meal) (*Menu, error) {
	if meal.Upcharge < 0 {
		return nil, fmt.Errorf("meal upcharge must be >= 0")
	}
	m := &Menu{
		items: make([]models.MenuItem, 0, len(items)),
		byID:  make(map[int]int, len(items)),
		meal:  Meal{Upcharge: meal.Upcharge, Includes: append([]models.BundleComponent(nil), meal.Includes...)},
	}
	for _, it := range items {
		if !it.Category.Valid() {
			return nil, fmt.Errorf("item %d: invalid category: %s", it.ID, it.Category)
		}
		if it.Name == "" {
			return nil, fmt.Errorf("item %d: name is required", it.ID)
		}
		if it.Price < 0 {
			return nil, fmt.Errorf("item %d: price must be >= 0", it.ID)
		}
		if _, dup := m.byID[it.ID]; dup {
			return nil, fmt.Errorf("item %d: duplicate id", it.ID)
		}
		m.byID[it.ID] = len(m.items)
		m.items = append(m.items, it)
	}
	return m, nil
}

func (m *Menu) Get(id int) (models.MenuItem, bool) {
	i, ok := m.byID[id]
	if !ok {
		return models.MenuItem{}, false
	}
	return m.items[i], true
}

func (m *Menu) All() []models.MenuItem {
	out := make([]models.MenuItem, len(m.items))
	copy(out, m.items)
	return out
}

func (m *Menu) ByCategory(c models.Category) []models.MenuItem {
	var out []models.MenuItem
	for _, it := range m.items {
		if it.Category == c {
			out = append(out, it)
		}
	}
	return out
}

// AddOns returns the items offered in the checkout side panel.
func (m *Menu) AddOns() []models.MenuItem {
	var out []models.MenuItem
	for _, it := range m.items {
		if !it.UpsellEligible && it.Category != models.CategorySandwich {
			out = append(out, it)
		}
	}
	return out
}

func (m *Menu) Meal() Meal {
	return Meal{Upcharge: m.meal.Upcharge, Includes: append([]models.BundleComponent(nil), m.meal.Includes...)}
}

// FormatPrice renders cents as dollars, e.g. 1850 -> "$18.50".
func FormatPrice(cents int64) string {
	sign := ""
	if cents < 0 {
		sign = "-"
		cents = -cents
	}
	return fmt.Sprintf("%s$%d.%02d", sign, cents/100, cents%100)
}

const imgBase = "https://images.unsplash.com/"

// DefaultMenu is the Burger Forge catalog.
func DefaultMenu(mealUpcharge int64) *Menu {
	items := []models.MenuItem{
		{ID: 1, Name: "The Ironclad", Description: "Double smashed wagyu, aged cheddar, charcoal aioli, smoked bacon.", Price: 1850, Image: imgBase + "photo-1568901346375-23c9450c58cd", Category: models.CategorySandwich, Tag: "Signature", UpsellEligible: true},
		{ID: 2, Name: "Magma Jalapeño", Description: "Spicy pepper jack, blistered jalapeños, chipotle aioli, crispy onion strings.", Price: 1600, Image: imgBase + "photo-1594212699903-ec8a3eca50f5", Category: models.CategorySandwich, Tag: "Hot", UpsellEligible: true},
		{ID: 3, Name: "Black Truffle Forge", Description: "Wild mushrooms, truffle-infused mayo, swiss cheese, arugula on brioche.", Price: 2100, Image: imgBase + "photo-1550547660-d9450f859349", Category: models.CategorySandwich, UpsellEligible: true},
		{ID: 4, Name: "Smokestack BBQ", Description: "Beef patty, smoked brisket, maple bacon, bourbon BBQ sauce, pickles.", Price: 2400, Image: imgBase + "photo-1586190848861-99aa4a171e90", Category: models.CategorySandwich, Tag: "Hefty", UpsellEligible: true},
		{ID: 5, Name: "The Vulcan (Vegan)", Description: "House-made black bean & beet patty, avocado, sprouts, vegan spicy mayo.", Price: 1750, Image: imgBase + "photo-1525059696034-4967a8e1dca2", Category: models.CategorySandwich, Tag: "Vegan", UpsellEligible: true},
		{ID: 6, Name: "Steel City Classic", Description: "Single patty, heirloom tomato, iceberg lettuce, house pickles, classic forge sauce.", Price: 1900, Image: imgBase + "photo-1551782450-a2132b4ba21d", Category: models.CategorySandwich, UpsellEligible: true},

		{ID: 101, Name: "Truffle Fries", Price: 650, Image: imgBase + "photo-1573080496219-bb080dd4f877", Category: models.CategorySide},
		{ID: 102, Name: "Onion Rings", Price: 550, Image: imgBase + "photo-1639024471283-03518883512d", Category: models.CategorySide},
		{ID: 103, Name: "Forge Cola", Price: 350, Image: imgBase + "photo-1622483767028-3f66f32aef97", Category: models.CategoryDrink},
		{ID: 104, Name: "Smoked Lemonade", Price: 400, Image: imgBase + "photo-1621263764928-df1444c5e859", Category: models.CategoryDrink},
		{ID: 105, Name: "Charred Caesar", Price: 900, Image: imgBase + "photo-1550304943-4f24f54ddde9", Category: models.CategorySalad},
	}
	meal := Meal{
		Upcharge: mealUpcharge,
		Includes: []models.BundleComponent{
			{Name: "Forge Fries", Price: 450},
			{Name: "Craft Soda", Price: 350},
		},
	}
	m, err := NewMenu(items, meal)
	if err != nil {
		panic(err)
	}
	return m
}
