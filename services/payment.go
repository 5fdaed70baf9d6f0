package services

import (
	"context"
	"time"

	"burger-forge/models"

	"github.com/google/uuid"
)

// Receipt is what a settlement returns on success.
type Receipt struct {
	Reference string
	Amount    int64
	SettledAt time.Time
}

// Settler confirms a payment. A returned error is a decline: checkout stays
// at the payment step and keeps the cart.
type Settler interface {
	Settle(ctx context.Context, amount int64, card models.PaymentDetails) (Receipt, error)
}

// SimulatedSettler waits a fixed delay and always succeeds. No network call is made.
type SimulatedSettler struct {
	Delay time.Duration
	Now   func() time.Time
}

func NewSimulatedSettler(delay time.Duration) *SimulatedSettler {
	return &SimulatedSettler{Delay: delay, Now: time.Now}
}

func (s *SimulatedSettler) Settle(ctx context.Context, amount int64, card models.PaymentDetails) (Receipt, error) {
	if s.Delay > 0 {
		t := time.NewTimer(s.Delay)
		defer t.Stop()
		select {
		case <-t.C:
		case <-ctx.Done():
			return Receipt{}, ctx.Err()
		}
	}
	now := time.Now
	if s.Now != nil {
		now = s.Now
	}
	return Receipt{
		Reference: uuid.NewString(),
		Amount:    amount,
		SettledAt: now(),
	}, nil
}

// SettlerFunc adapts a function to Settler.
type SettlerFunc func(ctx context.Context, amount int64, card models.PaymentDetails) (Receipt, error)

func (f SettlerFunc) Settle(ctx context.Context, amount int64, card models.PaymentDetails) (Receipt, error) {
	return f(ctx, amount, card)
}
