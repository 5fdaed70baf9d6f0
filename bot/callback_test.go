package bot

import (
	"testing"

	"burger-forge/models"
	"burger-forge/services"
)

func TestParseCallback(t *testing.T) {
	tests := []struct {
		data string
		want callback
	}{
		{"menu", callback{Kind: cbMenu}},
		{"cart", callback{Kind: cbCart}},
		{"noop", callback{Kind: cbNoop}},
		{"cat:side", callback{Kind: cbCategory, Category: models.CategorySide}},
		{"add:1", callback{Kind: cbAdd, CatalogID: 1}},
		{"addon:103", callback{Kind: cbAddOn, CatalogID: 103}},
		{"meal:accept", callback{Kind: cbMeal, Choice: services.UpsellAccept}},
		{"meal:abandon", callback{Kind: cbMeal, Choice: services.UpsellAbandon}},
		{"qty:4:1:-1", callback{Kind: cbQuantity, CatalogID: 4, Meal: true, Delta: -1}},
		{"qty:101:0:1", callback{Kind: cbQuantity, CatalogID: 101, Delta: 1}},
		{"rm:2:1", callback{Kind: cbRemove, CatalogID: 2, Meal: true}},
		{"co:pay", callback{Kind: cbCheckout, Action: "pay"}},
		{"co:open", callback{Kind: cbCheckout, Action: "open"}},
		{"ful:pickup", callback{Kind: cbFulfillment, Ful: models.FulfillmentPickup}},
	}
	for _, tt := range tests {
		got, err := parseCallback(tt.data)
		if err != nil {
			t.Errorf("parseCallback(%q) error = %v", tt.data, err)
			continue
		}
		if got != tt.want {
			t.Errorf("parseCallback(%q) = %+v, want %+v", tt.data, got, tt.want)
		}
	}
}

func TestParseCallbackRejects(t *testing.T) {
	for _, data := range []string{
		"",
		"menu:extra",
		"cat:dessert",
		"add:abc",
		"meal:maybe",
		"qty:1:1",
		"qty:1:2:1",
		"qty:x:0:1",
		"qty:1:0:+",
		"rm:1",
		"co:refund",
		"ful:drone",
		"locsel:1",
	} {
		if _, err := parseCallback(data); err == nil {
			t.Errorf("parseCallback(%q) error = nil, want error", data)
		}
	}
}

// Every button the cards render must parse back.
func TestCardButtonsParse(t *testing.T) {
	menu := services.DefaultMenu(600)
	cart := services.NewCart(menu)
	cart.AddItem(1, true)
	cart.AddItem(101, false)
	view := services.CartView{Items: cart.Items(), Total: cart.Total(), ItemCount: cart.ItemCount()}
	offer := services.NewUpsellGate(menu.Meal()).Offer(models.MenuItem{ID: 1, Name: "The Ironclad", Price: 1850})

	cards := []Card{
		CategoriesCard(menu, 2),
		CategoryCard(menu, models.CategorySandwich),
		UpsellCard(offer),
		CartCard(view),
		CheckoutCard(services.CheckoutView{Step: services.StepReview, Cart: view, AddOns: menu.AddOns()}),
		CheckoutCard(services.CheckoutView{Step: services.StepDetails, Cart: view, CanAdvance: true}),
		CheckoutCard(services.CheckoutView{Step: services.StepPayment, Cart: view, PaymentSet: true}),
		ConfirmationCard(models.Order{ID: "BF-000001"}),
	}
	for _, c := range cards {
		for _, row := range c.Buttons {
			for _, btn := range row {
				if _, err := parseCallback(btn.CallbackData); err != nil {
					t.Errorf("button %q: %v", btn.Text, err)
				}
				if len(btn.CallbackData) > 64 {
					t.Errorf("button %q callback data exceeds Telegram's 64 bytes", btn.Text)
				}
			}
		}
	}
}
