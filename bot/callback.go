package bot

import (
	"fmt"
	"strconv"
	"strings"

	"burger-forge/models"
	"burger-forge/services"
)

type callbackKind string

const (
	cbNoop        callbackKind = "noop"
	cbMenu        callbackKind = "menu"
	cbCart        callbackKind = "cart"
	cbCategory    callbackKind = "cat"
	cbAdd         callbackKind = "add"
	cbMeal        callbackKind = "meal"
	cbQuantity    callbackKind = "qty"
	cbRemove      callbackKind = "rm"
	cbCheckout    callbackKind = "co"
	cbAddOn       callbackKind = "addon"
	cbFulfillment callbackKind = "ful"
)

// callback is a decoded inline button press.
type callback struct {
	Kind      callbackKind
	CatalogID int
	Meal      bool
	Delta     int
	Category  models.Category
	Choice    services.UpsellChoice
	Action    string // co:<action>
	Ful       models.Fulfillment
}

var checkoutActions = map[string]bool{
	"open": true, "next": true, "back": true, "pay": true, "close": true, "form": true,
}

func parseCallback(data string) (callback, error) {
	kind, rest, _ := strings.Cut(data, ":")
	cb := callback{Kind: callbackKind(kind)}
	switch cb.Kind {
	case cbNoop, cbMenu, cbCart:
		if rest != "" {
			return callback{}, fmt.Errorf("unexpected argument in %q", data)
		}
	case cbCategory:
		cb.Category = models.Category(rest)
		if !cb.Category.Valid() {
			return callback{}, fmt.Errorf("unknown category in %q", data)
		}
	case cbAdd, cbAddOn:
		id, err := strconv.Atoi(rest)
		if err != nil {
			return callback{}, fmt.Errorf("bad item id in %q: %w", data, err)
		}
		cb.CatalogID = id
	case cbMeal:
		cb.Choice = services.UpsellChoice(rest)
		if !cb.Choice.Valid() {
			return callback{}, fmt.Errorf("unknown upsell choice in %q", data)
		}
	case cbQuantity:
		parts := strings.Split(rest, ":")
		if len(parts) != 3 {
			return callback{}, fmt.Errorf("malformed quantity callback %q", data)
		}
		if err := cb.parseLine(parts[0], parts[1]); err != nil {
			return callback{}, fmt.Errorf("%q: %w", data, err)
		}
		delta, err := strconv.Atoi(parts[2])
		if err != nil {
			return callback{}, fmt.Errorf("bad delta in %q: %w", data, err)
		}
		cb.Delta = delta
	case cbRemove:
		parts := strings.Split(rest, ":")
		if len(parts) != 2 {
			return callback{}, fmt.Errorf("malformed remove callback %q", data)
		}
		if err := cb.parseLine(parts[0], parts[1]); err != nil {
			return callback{}, fmt.Errorf("%q: %w", data, err)
		}
	case cbCheckout:
		if !checkoutActions[rest] {
			return callback{}, fmt.Errorf("unknown checkout action in %q", data)
		}
		cb.Action = rest
	case cbFulfillment:
		cb.Ful = models.Fulfillment(rest)
		if cb.Ful != models.FulfillmentDelivery && cb.Ful != models.FulfillmentPickup {
			return callback{}, fmt.Errorf("unknown fulfillment in %q", data)
		}
	default:
		return callback{}, fmt.Errorf("unknown callback %q", data)
	}
	return cb, nil
}

func (cb *callback) parseLine(id, meal string) error {
	n, err := strconv.Atoi(id)
	if err != nil {
		return fmt.Errorf("bad item id: %w", err)
	}
	switch meal {
	case "0":
	case "1":
		cb.Meal = true
	default:
		return fmt.Errorf("bad meal flag %q", meal)
	}
	cb.CatalogID = n
	return nil
}
