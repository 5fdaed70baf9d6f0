package services

import (
	"context"
	"fmt"
	"time"

	"burger-forge/models"
)

type Step int

const (
	StepReview Step = iota
	StepDetails
	StepPayment
	StepConfirmed
)

var stepNames = [...]string{"review", "details", "payment", "confirmed"}

func (s Step) String() string {
	if s < StepReview || s > StepConfirmed {
		return fmt.Sprintf("step(%d)", int(s))
	}
	return stepNames[s]
}

func (s Step) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

func (s *Step) UnmarshalText(b []byte) error {
	for i, n := range stepNames {
		if n == string(b) {
			*s = Step(i)
			return nil
		}
	}
	return fmt.Errorf("unknown checkout step: %q", b)
}

type CheckoutDeps struct {
	Orders     OrderStore
	Settler    Settler
	NewOrderID OrderIDGenerator
	Defaults   FormDefaults
	Now        func() time.Time
}

// Checkout walks Review -> Details -> Payment -> Confirmed. Forward moves are
// gated (non-empty cart, complete details, successful settlement); backward
// moves are free until the order is confirmed. Confirmed only leaves via Close.
type Checkout struct {
	cart *Cart
	menu *Menu
	deps CheckoutDeps

	step       Step
	details    models.CustomerDetails
	payment    models.PaymentDetails
	processing bool
	lastErr    string
	confirmed  *models.Order
}

func NewCheckout(cart *Cart, menu *Menu, deps CheckoutDeps) *Checkout {
	if deps.Defaults == nil {
		deps.Defaults = EmptyForm
	}
	if deps.Now == nil {
		deps.Now = time.Now
	}
	if deps.NewOrderID == nil {
		deps.NewOrderID = NewOrderIDGenerator("BF")
	}
	c := &Checkout{cart: cart, menu: menu, deps: deps}
	c.details, c.payment = deps.Defaults()
	return c
}

func (c *Checkout) Step() Step                      { return c.step }
func (c *Checkout) Processing() bool                { return c.processing }
func (c *Checkout) LastError() string               { return c.lastErr }
func (c *Checkout) Details() models.CustomerDetails { return c.details }
func (c *Checkout) Payment() models.PaymentDetails  { return c.payment }

func (c *Checkout) Confirmed() (models.Order, bool) {
	if c.confirmed == nil {
		return models.Order{}, false
	}
	return cloneOrder(*c.confirmed), true
}

func (c *Checkout) editable() bool {
	return !c.processing && c.step != StepConfirmed
}

// SetDetails replaces the details form. Ignored once confirmed or while paying.
func (c *Checkout) SetDetails(d models.CustomerDetails) bool {
	if !c.editable() {
		return false
	}
	if d.Fulfillment != models.FulfillmentPickup {
		d.Fulfillment = models.FulfillmentDelivery
	}
	c.details = d
	return true
}

func (c *Checkout) SetPayment(p models.PaymentDetails) bool {
	if !c.editable() {
		return false
	}
	c.payment = p
	c.lastErr = ""
	return true
}

func (c *Checkout) CanAdvance() bool {
	switch c.step {
	case StepReview:
		return !c.cart.IsEmpty()
	case StepDetails:
		return c.details.Complete()
	default:
		return false
	}
}

// Advance moves one step forward when the current step's guard holds.
// Payment is left only by Pay.
func (c *Checkout) Advance() bool {
	if !c.CanAdvance() {
		return false
	}
	c.step++
	return true
}

func (c *Checkout) Back() bool {
	if c.step == StepReview {
		return false
	}
	return c.GoTo(c.step - 1)
}

// GoTo jumps back to any earlier step.
func (c *Checkout) GoTo(step Step) bool {
	if !c.editable() || step < StepReview || step >= c.step {
		return false
	}
	c.step = step
	return true
}

// AddAddOn is the review side panel: add-ons go straight into the cart.
func (c *Checkout) AddAddOn(catalogID int) (models.LineItem, bool) {
	if c.step != StepReview || c.processing {
		return models.LineItem{}, false
	}
	item, ok := c.menu.Get(catalogID)
	if !ok || item.UpsellEligible {
		return models.LineItem{}, false
	}
	return c.cart.AddItem(catalogID, false)
}

// Pay settles the payment and, on success, records the order, confirms and
// empties the cart. A decline keeps the step, the cart and the forms, and
// sets LastError.
func (c *Checkout) Pay(ctx context.Context) (models.Order, error) {
	req, err := c.beginSettlement()
	if err != nil {
		return models.Order{}, err
	}
	receipt, err := c.deps.Settler.Settle(ctx, req.total, req.payment)
	return c.finishSettlement(ctx, req, receipt, err)
}

type settlement struct {
	items   []models.LineItem
	total   int64
	details models.CustomerDetails
	payment models.PaymentDetails
}

func (c *Checkout) beginSettlement() (settlement, error) {
	switch {
	case c.step != StepPayment:
		return settlement{}, ErrNotAtPayment
	case c.processing:
		return settlement{}, ErrSettlementInProgress
	case !c.payment.Complete():
		return settlement{}, ErrPaymentIncomplete
	case c.cart.IsEmpty():
		return settlement{}, ErrEmptyCart
	}
	c.processing = true
	c.lastErr = ""
	return settlement{
		items:   c.cart.Items(),
		total:   c.cart.Total(),
		details: c.details,
		payment: c.payment,
	}, nil
}

func (c *Checkout) finishSettlement(ctx context.Context, req settlement, receipt Receipt, settleErr error) (models.Order, error) {
	c.processing = false
	if settleErr != nil {
		c.lastErr = "Payment declined: " + settleErr.Error()
		return models.Order{}, fmt.Errorf("settle payment: %w", settleErr)
	}
	order := models.Order{
		ID:        c.deps.NewOrderID(),
		CreatedAt: c.deps.Now().UTC(),
		Items:     req.items,
		Total:     req.total,
		Details:   req.details,
	}
	if err := c.deps.Orders.Persist(ctx, order); err != nil {
		c.lastErr = "Your payment went through but the order could not be saved. Please try again."
		return models.Order{}, fmt.Errorf("save order (payment %s): %w", receipt.Reference, err)
	}
	c.confirmed = &order
	c.step = StepConfirmed
	c.cart.Clear()
	return cloneOrder(order), nil
}

// Close ends a confirmed checkout: back to Review with fresh form values and
// nothing left on display.
func (c *Checkout) Close() bool {
	if c.step != StepConfirmed {
		return false
	}
	c.reset()
	return true
}

// Reopen puts an unfinished checkout back at Review, keeping what was typed.
// A confirmed checkout stays on its confirmation.
func (c *Checkout) Reopen() {
	if c.processing || c.step == StepConfirmed {
		return
	}
	c.step = StepReview
}

func (c *Checkout) reset() {
	c.step = StepReview
	c.details, c.payment = c.deps.Defaults()
	c.processing = false
	c.lastErr = ""
	c.confirmed = nil
}

func cloneOrder(o models.Order) models.Order {
	items := make([]models.LineItem, len(o.Items))
	for i, it := range o.Items {
		items[i] = it.Clone()
	}
	o.Items = items
	return o
}
