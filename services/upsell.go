package services

import "burger-forge/models"

type UpsellChoice string

const (
	UpsellAccept  UpsellChoice = "accept"
	UpsellDecline UpsellChoice = "decline"
	UpsellAbandon UpsellChoice = "abandon"
)

func (c UpsellChoice) Valid() bool {
	return c == UpsellAccept || c == UpsellDecline || c == UpsellAbandon
}

// Offer is a suspended add waiting for the customer to pick plain or meal.
type Offer struct {
	Item      models.MenuItem          `json:"item"`
	MealPrice int64                    `json:"mealPrice"`
	Includes  []models.BundleComponent `json:"includes"`
}

// UpsellGate holds at most one pending offer. A new offer replaces an
// unresolved one without committing it.
type UpsellGate struct {
	meal    Meal
	pending *Offer
}

func NewUpsellGate(meal Meal) *UpsellGate {
	return &UpsellGate{meal: meal}
}

func (g *UpsellGate) Offer(item models.MenuItem) Offer {
	o := Offer{
		Item:      item,
		MealPrice: item.Price + g.meal.Upcharge,
		Includes:  append([]models.BundleComponent(nil), g.meal.Includes...),
	}
	g.pending = &o
	return o
}

func (g *UpsellGate) Pending() (Offer, bool) {
	if g.pending == nil {
		return Offer{}, false
	}
	return *g.pending, true
}

// Resolve clears the pending offer and tells the caller what to add; commit
// is false for an abandon or when nothing was pending. An invalid choice
// leaves the offer pending.
func (g *UpsellGate) Resolve(choice UpsellChoice) (catalogID int, meal bool, commit bool) {
	if g.pending == nil || !choice.Valid() {
		return 0, false, false
	}
	id := g.pending.Item.ID
	g.pending = nil
	switch choice {
	case UpsellAccept:
		return id, true, true
	case UpsellDecline:
		return id, false, true
	default:
		return 0, false, false
	}
}

// Cancel drops any pending offer.
func (g *UpsellGate) Cancel() {
	g.pending = nil
}
