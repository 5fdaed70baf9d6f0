package models

type Category string

const (
	CategorySandwich Category = "sandwich"
	CategorySide     Category = "side"
	CategoryDrink    Category = "drink"
	CategorySalad    Category = "salad"
)

// Categories lists menu categories in display order.
var Categories = []Category{CategorySandwich, CategorySide, CategoryDrink, CategorySalad}

func (c Category) Valid() bool {
	switch c {
	case CategorySandwich, CategorySide, CategoryDrink, CategorySalad:
		return true
	}
	return false
}

// MenuItem is one catalog entry. Prices are in cents.
type MenuItem struct {
	ID             int      `json:"id"`
	Name           string   `json:"name"`
	Description    string   `json:"description,omitempty"`
	Price          int64    `json:"price"`
	Image          string   `json:"image"`
	Category       Category `json:"category"`
	Tag            string   `json:"tag,omitempty"` // "Signature", "Hot", ...
	UpsellEligible bool     `json:"upsellEligible"`
}
