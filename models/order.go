package models

import (
	"strings"
	"time"
)

type Fulfillment string

const (
	FulfillmentDelivery Fulfillment = "delivery"
	FulfillmentPickup   Fulfillment = "pickup"
)

// BundleComponent is one extra included in a meal.
type BundleComponent struct {
	Name  string `json:"name"`
	Price int64  `json:"price"`
}

// LineItem is a cart/order row. Identity in a cart is (CatalogID, IsMeal).
type LineItem struct {
	CatalogID    int               `json:"id"`
	Name         string            `json:"name"`
	UnitPrice    int64             `json:"price"`
	Quantity     int               `json:"quantity"`
	Image        string            `json:"image"`
	IsMeal       bool              `json:"isMeal,omitempty"`
	MealIncludes []BundleComponent `json:"mealIncludes,omitempty"`
}

func (li LineItem) Subtotal() int64 {
	return li.UnitPrice * int64(li.Quantity)
}

// Clone deep-copies the meal components.
func (li LineItem) Clone() LineItem {
	if li.MealIncludes != nil {
		inc := make([]BundleComponent, len(li.MealIncludes))
		copy(inc, li.MealIncludes)
		li.MealIncludes = inc
	}
	return li
}

type CustomerDetails struct {
	FullName    string      `json:"name"`
	Email       string      `json:"email"`
	Phone       string      `json:"phone"`
	Address     string      `json:"address"`
	Fulfillment Fulfillment `json:"deliveryType"`
	Notes       string      `json:"notes,omitempty"`
}

// Complete reports whether name, phone and address are filled in. Email and notes are optional.
func (d CustomerDetails) Complete() bool {
	return strings.TrimSpace(d.FullName) != "" &&
		strings.TrimSpace(d.Phone) != "" &&
		strings.TrimSpace(d.Address) != ""
}

// PaymentDetails is simulated card data. It is never persisted or sent anywhere.
type PaymentDetails struct {
	CardNumber     string `json:"cardNumber"`
	Expiry         string `json:"expiry"`
	CVC            string `json:"cvc"`
	CardholderName string `json:"cardholderName"`
}

func (p PaymentDetails) Complete() bool {
	return strings.TrimSpace(p.CardNumber) != "" &&
		strings.TrimSpace(p.Expiry) != "" &&
		strings.TrimSpace(p.CVC) != "" &&
		strings.TrimSpace(p.CardholderName) != ""
}

// Order is an immutable record of a completed checkout.
type Order struct {
	ID        string          `json:"id"`
	CreatedAt time.Time       `json:"date"`
	Items     []LineItem      `json:"items"`
	Total     int64           `json:"total"`
	Details   CustomerDetails `json:"details"`
}

// ItemsTotal recomputes the total from the items.
func (o Order) ItemsTotal() int64 {
	var sum int64
	for _, it := range o.Items {
		sum += it.Subtotal()
	}
	return sum
}

type User struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}
