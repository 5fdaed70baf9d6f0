package services

import (
	"context"
	"errors"
	"sync"

	"burger-forge/models"

	"go.uber.org/zap"
)

type AddOutcome string

const (
	AddOutcomeAdded   AddOutcome = "added"   // line added or bumped
	AddOutcomeOffered AddOutcome = "offered" // waiting on the meal upsell
	AddOutcomeBlocked AddOutcome = "blocked" // offer pending, payment in flight or order on display
	AddOutcomeUnknown AddOutcome = "unknown" // no such catalog item
	AddOutcomeNone    AddOutcome = "none"    // offer abandoned or nothing pending
)

type AddResult struct {
	Outcome AddOutcome       `json:"outcome"`
	Line    *models.LineItem `json:"line,omitempty"`
	Offer   *Offer           `json:"offer,omitempty"`
}

type CartView struct {
	Items     []models.LineItem `json:"items"`
	Total     int64             `json:"total"`
	ItemCount int               `json:"itemCount"`
}

type CheckoutView struct {
	Step       Step                   `json:"step"`
	CanAdvance bool                   `json:"canAdvance"`
	Processing bool                   `json:"processing"`
	Error      string                 `json:"error,omitempty"`
	Cart       CartView               `json:"cart"`
	Details    models.CustomerDetails `json:"details"`
	Payment    models.PaymentDetails  `json:"payment"` // card number masked, CVC withheld
	PaymentSet bool                   `json:"paymentComplete"`
	AddOns     []models.MenuItem      `json:"addOns,omitempty"`
	Order      *models.Order          `json:"order,omitempty"`
}

// Session is one customer's cart, upsell gate and checkout. All methods are
// safe for concurrent use; the lock is released while a payment settles so
// the processing state can be observed.
type Session struct {
	mu sync.Mutex

	owner     string
	menu      *Menu
	cart      *Cart
	gate      *UpsellGate
	checkout  *Checkout
	carts     CartStore
	orders    OrderStore
	users     UserStore
	notifier  Notifier
	listeners []OrderListener
	logger    *zap.Logger
}

func (s *Session) Owner() string { return s.owner }

// RequestAdd is the menu's "Add" button. Upsell-eligible items park in the
// gate instead of touching the cart.
func (s *Session) RequestAdd(ctx context.Context, catalogID int) AddResult {
	s.mu.Lock()
	defer s.mu.Unlock()

	item, ok := s.menu.Get(catalogID)
	if !ok {
		return AddResult{Outcome: AddOutcomeUnknown}
	}
	if s.cartFrozenLocked() {
		return AddResult{Outcome: AddOutcomeBlocked}
	}
	if item.UpsellEligible {
		o := s.gate.Offer(item)
		return AddResult{Outcome: AddOutcomeOffered, Offer: &o}
	}
	if _, pending := s.gate.Pending(); pending {
		return AddResult{Outcome: AddOutcomeBlocked}
	}
	return s.addLocked(ctx, catalogID, false)
}

func (s *Session) PendingOffer() (Offer, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.gate.Pending()
}

// ResolveUpsell finishes a pending offer: accept adds the meal, decline the
// plain item, abandon adds nothing.
func (s *Session) ResolveUpsell(ctx context.Context, choice UpsellChoice) AddResult {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cartFrozenLocked() {
		s.gate.Cancel()
		return AddResult{Outcome: AddOutcomeBlocked}
	}
	id, meal, commit := s.gate.Resolve(choice)
	if !commit {
		return AddResult{Outcome: AddOutcomeNone}
	}
	return s.addLocked(ctx, id, meal)
}

func (s *Session) settling() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.checkout.Processing()
}

// cartFrozenLocked reports whether the cart refuses changes: a payment is
// settling or a confirmed order is on display.
func (s *Session) cartFrozenLocked() bool {
	return s.checkout.Processing() || s.checkout.Step() == StepConfirmed
}

func (s *Session) addLocked(ctx context.Context, catalogID int, meal bool) AddResult {
	line, ok := s.cart.AddItem(catalogID, meal)
	if !ok {
		return AddResult{Outcome: AddOutcomeUnknown}
	}
	s.saveCartLocked(ctx)
	msg := "Added to cart"
	if meal {
		msg = "Meal added to cart"
	}
	s.notifier.Notify(s.owner, Notification{Message: msg, ItemName: line.Name})
	return AddResult{Outcome: AddOutcomeAdded, Line: &line}
}

func (s *Session) RemoveItem(ctx context.Context, catalogID int, meal bool) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cartFrozenLocked() {
		return false
	}
	s.cart.RemoveItem(catalogID, meal)
	s.saveCartLocked(ctx)
	return true
}

func (s *Session) AdjustQuantity(ctx context.Context, catalogID int, meal bool, delta int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cartFrozenLocked() {
		return false
	}
	if delta > 0 {
		if _, pending := s.gate.Pending(); pending {
			return false
		}
	}
	s.cart.AdjustQuantity(catalogID, meal, delta)
	s.saveCartLocked(ctx)
	return true
}

func (s *Session) Cart() CartView {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cartViewLocked()
}

func (s *Session) cartViewLocked() CartView {
	return CartView{Items: s.cart.Items(), Total: s.cart.Total(), ItemCount: s.cart.ItemCount()}
}

func (s *Session) saveCartLocked(ctx context.Context) {
	if err := s.carts.SaveCart(ctx, s.cart.Items()); err != nil {
		s.logger.Warn("failed to save cart", zap.String("owner", s.owner), zap.Error(err))
	}
}

// OpenCheckout shows the checkout panel, starting at Review unless an order is
// confirmed or a payment is in flight.
func (s *Session) OpenCheckout() CheckoutView {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.checkout.Reopen()
	return s.checkoutViewLocked()
}

func (s *Session) Checkout() CheckoutView {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.checkoutViewLocked()
}

func (s *Session) checkoutViewLocked() CheckoutView {
	v := CheckoutView{
		Step:       s.checkout.Step(),
		CanAdvance: s.checkout.CanAdvance(),
		Processing: s.checkout.Processing(),
		Error:      s.checkout.LastError(),
		Cart:       s.cartViewLocked(),
		Details:    s.checkout.Details(),
		Payment:    maskPayment(s.checkout.Payment()),
		PaymentSet: s.checkout.Payment().Complete(),
	}
	if v.Step == StepReview {
		v.AddOns = s.menu.AddOns()
	}
	if o, ok := s.checkout.Confirmed(); ok {
		v.Order = &o
		v.Cart = CartView{Items: []models.LineItem{}}
	}
	return v
}

func (s *Session) Advance() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.checkout.Advance()
}

func (s *Session) Back() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.checkout.Back()
}

func (s *Session) GoTo(step Step) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.checkout.GoTo(step)
}

func (s *Session) SetDetails(d models.CustomerDetails) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.checkout.SetDetails(d)
}

func (s *Session) SetPayment(p models.PaymentDetails) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.checkout.SetPayment(p)
}

// AddAddOn adds from the review side panel. Like RequestAdd it waits for a
// pending meal offer to be resolved.
func (s *Session) AddAddOn(ctx context.Context, catalogID int) AddResult {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, pending := s.gate.Pending(); pending {
		return AddResult{Outcome: AddOutcomeBlocked}
	}
	line, ok := s.checkout.AddAddOn(catalogID)
	if !ok {
		return AddResult{Outcome: AddOutcomeUnknown}
	}
	s.saveCartLocked(ctx)
	s.notifier.Notify(s.owner, Notification{Message: "Added to cart", ItemName: line.Name})
	return AddResult{Outcome: AddOutcomeAdded, Line: &line}
}

// Pay runs the settlement with the session unlocked. The settlement ignores
// cancellation of ctx: once started it always runs to completion.
func (s *Session) Pay(ctx context.Context) (models.Order, error) {
	ctx = context.WithoutCancel(ctx)

	s.mu.Lock()
	req, err := s.checkout.beginSettlement()
	s.mu.Unlock()
	if err != nil {
		return models.Order{}, err
	}

	receipt, settleErr := s.checkout.deps.Settler.Settle(ctx, req.total, req.payment)

	s.mu.Lock()
	order, err := s.checkout.finishSettlement(ctx, req, receipt, settleErr)
	if err == nil {
		s.saveCartLocked(ctx)
	}
	s.mu.Unlock()

	if err != nil {
		s.logger.Warn("checkout payment failed", zap.String("owner", s.owner), zap.Error(err))
		return models.Order{}, err
	}
	s.logger.Info("order placed",
		zap.String("owner", s.owner),
		zap.String("order_id", order.ID),
		zap.String("payment_ref", receipt.Reference),
		zap.Int64("total", order.Total),
	)
	for _, l := range s.listeners {
		l.OrderPlaced(ctx, s.owner, order)
	}
	return order, nil
}

// CloseCheckout dismisses the confirmation and starts a fresh session state:
// Review, default forms, an empty cart and no pending offer.
func (s *Session) CloseCheckout() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.checkout.Close() {
		return false
	}
	s.gate.Cancel()
	return true
}

// Orders is the history viewer's read: newest first. Unreadable history shows as empty.
func (s *Session) Orders(ctx context.Context) ([]models.Order, error) {
	orders, err := s.orders.ListAll(ctx)
	if err != nil {
		if errors.Is(err, ErrCorruptState) {
			s.logger.Warn("ignoring unreadable order history", zap.String("owner", s.owner), zap.Error(err))
			return []models.Order{}, nil
		}
		return nil, err
	}
	SortNewestFirst(orders)
	return orders, nil
}

func (s *Session) Login(ctx context.Context, name, email string) (models.User, error) {
	return s.users.Login(ctx, name, email)
}

func (s *Session) Logout(ctx context.Context) error {
	return s.users.Logout(ctx)
}

// User returns the signed-in customer; an unreadable record counts as signed out.
func (s *Session) User(ctx context.Context) (models.User, bool, error) {
	u, ok, err := s.users.Current(ctx)
	if errors.Is(err, ErrCorruptState) {
		s.logger.Warn("ignoring unreadable user", zap.String("owner", s.owner), zap.Error(err))
		return models.User{}, false, nil
	}
	return u, ok, err
}

func maskPayment(p models.PaymentDetails) models.PaymentDetails {
	digits := make([]rune, 0, len(p.CardNumber))
	for _, r := range p.CardNumber {
		if r >= '0' && r <= '9' {
			digits = append(digits, r)
		}
	}
	if len(digits) > 4 {
		p.CardNumber = "•••• " + string(digits[len(digits)-4:])
	}
	p.CVC = ""
	return p
}
