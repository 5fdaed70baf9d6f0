package bot

import (
	"fmt"
	"strconv"
	"strings"

	"burger-forge/models"
	"burger-forge/services"
)

// Button is one inline button (text + callback_data).
type Button struct {
	Text         string
	CallbackData string
}

// Card is the text and optional inline keyboard for one screen of the storefront.
type Card struct {
	Text    string
	Buttons [][]Button
}

var categoryLabels = map[models.Category]string{
	models.CategorySandwich: "🍔 Burgers",
	models.CategorySide:     "🍟 Sides",
	models.CategoryDrink:    "🥤 Drinks",
	models.CategorySalad:    "🥗 Salads",
}

func mealFlag(meal bool) string {
	if meal {
		return "1"
	}
	return "0"
}

func lineLabel(li models.LineItem) string {
	if li.IsMeal {
		return li.Name + " (Meal)"
	}
	return li.Name
}

// CategoriesCard is the menu landing screen.
func CategoriesCard(menu *services.Menu, cartCount int) Card {
	var rows [][]Button
	for _, c := range models.Categories {
		if len(menu.ByCategory(c)) == 0 {
			continue
		}
		rows = append(rows, []Button{{Text: categoryLabels[c], CallbackData: "cat:" + string(c)}})
	}
	rows = append(rows, []Button{{Text: fmt.Sprintf("🛒 Cart (%d)", cartCount), CallbackData: "cart"}})
	return Card{Text: "🔥 Burger Forge\nPick a category:", Buttons: rows}
}

func CategoryCard(menu *services.Menu, c models.Category) Card {
	var b strings.Builder
	b.WriteString(categoryLabels[c])
	b.WriteString("\n")
	var rows [][]Button
	for _, it := range menu.ByCategory(c) {
		fmt.Fprintf(&b, "\n%s · %s", it.Name, services.FormatPrice(it.Price))
		if it.Tag != "" {
			fmt.Fprintf(&b, " [%s]", it.Tag)
		}
		if it.Description != "" {
			fmt.Fprintf(&b, "\n  %s", it.Description)
		}
		rows = append(rows, []Button{{
			Text:         "➕ " + it.Name,
			CallbackData: "add:" + strconv.Itoa(it.ID),
		}})
	}
	rows = append(rows, []Button{{Text: "⬅️ Menu", CallbackData: "menu"}, {Text: "🛒 Cart", CallbackData: "cart"}})
	return Card{Text: b.String(), Buttons: rows}
}

func UpsellCard(o services.Offer) Card {
	parts := make([]string, 0, len(o.Includes))
	for _, c := range o.Includes {
		parts = append(parts, c.Name)
	}
	text := fmt.Sprintf("Make it a meal?\n\n%s · %s\nAs a meal with %s · %s",
		o.Item.Name, services.FormatPrice(o.Item.Price),
		strings.Join(parts, " + "), services.FormatPrice(o.MealPrice))
	return Card{
		Text: text,
		Buttons: [][]Button{
			{{Text: "✅ Make it a meal (+" + services.FormatPrice(o.MealPrice-o.Item.Price) + ")", CallbackData: "meal:" + string(services.UpsellAccept)}},
			{{Text: "No thanks, just the burger", CallbackData: "meal:" + string(services.UpsellDecline)}},
			{{Text: "✖️ Cancel", CallbackData: "meal:" + string(services.UpsellAbandon)}},
		},
	}
}

func writeLines(b *strings.Builder, items []models.LineItem) {
	for _, li := range items {
		fmt.Fprintf(b, "• %s × %d · %s\n", lineLabel(li), li.Quantity, services.FormatPrice(li.Subtotal()))
		if li.IsMeal && len(li.MealIncludes) > 0 {
			names := make([]string, 0, len(li.MealIncludes))
			for _, c := range li.MealIncludes {
				names = append(names, c.Name)
			}
			fmt.Fprintf(b, "   with %s\n", strings.Join(names, ", "))
		}
	}
}

func CartCard(v services.CartView) Card {
	if len(v.Items) == 0 {
		return Card{
			Text:    "🛒 Your cart is empty.",
			Buttons: [][]Button{{{Text: "📋 Browse menu", CallbackData: "menu"}}},
		}
	}
	var b strings.Builder
	fmt.Fprintf(&b, "🛒 Your cart (%d items)\n\n", v.ItemCount)
	writeLines(&b, v.Items)
	fmt.Fprintf(&b, "\nTotal: %s", services.FormatPrice(v.Total))

	var rows [][]Button
	for _, li := range v.Items {
		key := strconv.Itoa(li.CatalogID) + ":" + mealFlag(li.IsMeal)
		rows = append(rows, []Button{
			{Text: "➖", CallbackData: "qty:" + key + ":-1"},
			{Text: lineLabel(li), CallbackData: "noop"},
			{Text: "➕", CallbackData: "qty:" + key + ":1"},
			{Text: "🗑", CallbackData: "rm:" + key},
		})
	}
	rows = append(rows, []Button{{Text: "📋 Menu", CallbackData: "menu"}, {Text: "✅ Checkout", CallbackData: "co:open"}})
	return Card{Text: b.String(), Buttons: rows}
}

func detailsText(d models.CustomerDetails) string {
	or := func(s string) string {
		if strings.TrimSpace(s) == "" {
			return "-"
		}
		return s
	}
	return fmt.Sprintf("Name: %s\nPhone: %s\nEmail: %s\nAddress: %s\nFulfillment: %s\nNotes: %s",
		or(d.FullName), or(d.Phone), or(d.Email), or(d.Address), d.Fulfillment, or(d.Notes))
}

// CheckoutCard renders the current step of the checkout panel.
func CheckoutCard(v services.CheckoutView) Card {
	var b strings.Builder
	var rows [][]Button

	switch v.Step {
	case services.StepReview:
		if len(v.Cart.Items) == 0 {
			return Card{
				Text:    "Your cart is empty. Add something from the menu first.",
				Buttons: [][]Button{{{Text: "📋 Browse menu", CallbackData: "menu"}}},
			}
		}
		b.WriteString("Step 1/3 · Review your order\n\n")
		writeLines(&b, v.Cart.Items)
		fmt.Fprintf(&b, "\nTotal: %s", services.FormatPrice(v.Cart.Total))
		var addons []Button
		for _, it := range v.AddOns {
			addons = append(addons, Button{Text: "+ " + it.Name + " " + services.FormatPrice(it.Price), CallbackData: "addon:" + strconv.Itoa(it.ID)})
		}
		for i := 0; i < len(addons); i += 2 {
			rows = append(rows, addons[i:min(i+2, len(addons))])
		}
		rows = append(rows, []Button{{Text: "🛒 Edit cart", CallbackData: "cart"}, {Text: "Continue ➡️", CallbackData: "co:next"}})

	case services.StepDetails:
		b.WriteString("Step 2/3 · Your details\n\n")
		b.WriteString(detailsText(v.Details))
		rows = append(rows,
			[]Button{{Text: "🚚 Delivery", CallbackData: "ful:" + string(models.FulfillmentDelivery)}, {Text: "🏃 Pickup", CallbackData: "ful:" + string(models.FulfillmentPickup)}},
			[]Button{{Text: "✏️ Enter details", CallbackData: "co:form"}},
		)
		nav := []Button{{Text: "⬅️ Back", CallbackData: "co:back"}}
		if v.CanAdvance {
			nav = append(nav, Button{Text: "Continue ➡️", CallbackData: "co:next"})
		}
		rows = append(rows, nav)

	case services.StepPayment:
		b.WriteString("Step 3/3 · Payment\n\n")
		if v.Payment.CardNumber != "" {
			fmt.Fprintf(&b, "Card: %s\nExpiry: %s\nCardholder: %s\n", v.Payment.CardNumber, v.Payment.Expiry, v.Payment.CardholderName)
		} else {
			b.WriteString("No card entered yet.\n")
		}
		fmt.Fprintf(&b, "\nTo pay: %s", services.FormatPrice(v.Cart.Total))
		if v.Processing {
			b.WriteString("\n\n⏳ Processing payment...")
			return Card{Text: b.String()}
		}
		if v.Error != "" {
			fmt.Fprintf(&b, "\n\n⚠️ %s", v.Error)
		}
		rows = append(rows, []Button{{Text: "💳 Enter card", CallbackData: "co:form"}})
		nav := []Button{{Text: "⬅️ Back", CallbackData: "co:back"}}
		if v.PaymentSet {
			nav = append(nav, Button{Text: "Pay " + services.FormatPrice(v.Cart.Total), CallbackData: "co:pay"})
		}
		rows = append(rows, nav)

	case services.StepConfirmed:
		if v.Order == nil {
			return Card{Text: "Order confirmed."}
		}
		return ConfirmationCard(*v.Order)
	}
	return Card{Text: b.String(), Buttons: rows}
}

func ConfirmationCard(o models.Order) Card {
	var b strings.Builder
	fmt.Fprintf(&b, "🎉 Order confirmed!\n\nOrder %s\n\n", o.ID)
	writeLines(&b, o.Items)
	fmt.Fprintf(&b, "\nTotal paid: %s", services.FormatPrice(o.Total))
	if o.Details.Fulfillment == models.FulfillmentPickup {
		b.WriteString("\n\nWe'll let you know when it's ready for pickup.")
	} else {
		fmt.Fprintf(&b, "\n\nOn its way to %s.", o.Details.Address)
	}
	return Card{
		Text:    b.String(),
		Buttons: [][]Button{{{Text: "Done", CallbackData: "co:close"}}},
	}
}

// KitchenCard is what the admin chat receives for every placed order.
func KitchenCard(owner string, o models.Order) Card {
	var b strings.Builder
	fmt.Fprintf(&b, "🆕 New order %s\n%s\n\n", o.ID, o.CreatedAt.Format("2006-01-02 15:04 MST"))
	writeLines(&b, o.Items)
	fmt.Fprintf(&b, "\nTotal: %s\n\n", services.FormatPrice(o.Total))
	b.WriteString(detailsText(o.Details))
	fmt.Fprintf(&b, "\n\nCustomer: %s", owner)
	return Card{Text: b.String()}
}

func HistoryCard(orders []models.Order) Card {
	if len(orders) == 0 {
		return Card{Text: "You have no orders yet."}
	}
	var b strings.Builder
	b.WriteString("📦 Your orders\n")
	for _, o := range orders {
		count := 0
		for _, li := range o.Items {
			count += li.Quantity
		}
		fmt.Fprintf(&b, "\n%s · %s\n%d items · %s\n", o.ID, o.CreatedAt.Format("Jan 2, 2006 15:04"), count, services.FormatPrice(o.Total))
	}
	return Card{Text: b.String()}
}
