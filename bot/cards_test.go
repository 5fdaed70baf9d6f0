package bot

import (
	"strings"
	"testing"
	"time"

	"burger-forge/models"
	"burger-forge/services"
)

func TestCartCardEmpty(t *testing.T) {
	c := CartCard(services.CartView{})
	if !strings.Contains(c.Text, "empty") {
		t.Errorf("CartCard(empty).Text = %q", c.Text)
	}
}

func TestCartCardShowsMealAndTotal(t *testing.T) {
	menu := services.DefaultMenu(600)
	cart := services.NewCart(menu)
	cart.AddItem(1, false)
	cart.AddItem(1, true)
	c := CartCard(services.CartView{Items: cart.Items(), Total: cart.Total(), ItemCount: cart.ItemCount()})

	for _, want := range []string{"The Ironclad × 1 · $18.50", "The Ironclad (Meal) × 1 · $24.50", "with Forge Fries, Craft Soda", "Total: $43.00"} {
		if !strings.Contains(c.Text, want) {
			t.Errorf("CartCard text missing %q:\n%s", want, c.Text)
		}
	}
}

func TestCheckoutCardPaymentStates(t *testing.T) {
	base := services.CheckoutView{
		Step:    services.StepPayment,
		Cart:    services.CartView{Total: 1850},
		Payment: models.PaymentDetails{CardNumber: "•••• 4242", Expiry: "12/29", CardholderName: "A"},
	}

	processing := base
	processing.Processing = true
	if c := CheckoutCard(processing); len(c.Buttons) != 0 || !strings.Contains(c.Text, "Processing") {
		t.Errorf("processing card = %+v, want no buttons", c)
	}

	declined := base
	declined.Error = "Payment declined: insufficient funds"
	declined.PaymentSet = true
	c := CheckoutCard(declined)
	if !strings.Contains(c.Text, "insufficient funds") {
		t.Errorf("declined card text = %q", c.Text)
	}
	if !hasCallback(c, "co:pay") {
		t.Error("declined card should allow retrying payment")
	}

	if hasCallback(CheckoutCard(base), "co:pay") {
		t.Error("pay button shown without a complete card")
	}
}

func TestCheckoutCardDetailsContinueGated(t *testing.T) {
	v := services.CheckoutView{Step: services.StepDetails, Details: models.CustomerDetails{Fulfillment: models.FulfillmentDelivery}}
	if hasCallback(CheckoutCard(v), "co:next") {
		t.Error("continue shown for incomplete details")
	}
	v.CanAdvance = true
	if !hasCallback(CheckoutCard(v), "co:next") {
		t.Error("continue missing for complete details")
	}
}

func TestKitchenCard(t *testing.T) {
	o := models.Order{
		ID:        "BF-042917",
		CreatedAt: time.Date(2026, 3, 14, 18, 30, 0, 0, time.UTC),
		Items:     []models.LineItem{{CatalogID: 3, Name: "Black Truffle Forge", UnitPrice: 2100, Quantity: 2}},
		Total:     4200,
		Details:   models.CustomerDetails{FullName: "Sam", Phone: "1", Address: "Main St", Fulfillment: models.FulfillmentDelivery},
	}
	c := KitchenCard("tg:42", o)
	for _, want := range []string{"BF-042917", "Black Truffle Forge × 2 · $42.00", "Total: $42.00", "Address: Main St", "tg:42"} {
		if !strings.Contains(c.Text, want) {
			t.Errorf("KitchenCard text missing %q:\n%s", want, c.Text)
		}
	}
}

func TestToasts(t *testing.T) {
	toasts := NewToasts()
	toasts.Notify("web:abc", services.Notification{Message: "Added to cart", ItemName: "x"})
	if got := toasts.Take("web:abc"); got != "" {
		t.Errorf("non-telegram owner toast = %q, want none", got)
	}

	toasts.Notify(Owner(7), services.Notification{Message: "Added to cart", ItemName: "Onion Rings"})
	toasts.Notify(Owner(7), services.Notification{Message: "Meal added to cart", ItemName: "The Ironclad"})
	if got := toasts.Take(Owner(7)); got != "Meal added to cart: The Ironclad" {
		t.Errorf("Take() = %q, want the latest toast", got)
	}
	if got := toasts.Take(Owner(7)); got != "" {
		t.Errorf("second Take() = %q, want empty", got)
	}
}

func hasCallback(c Card, data string) bool {
	for _, row := range c.Buttons {
		for _, b := range row {
			if b.CallbackData == data {
				return true
			}
		}
	}
	return false
}
