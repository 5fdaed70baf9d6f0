package services

import (
	"context"
	"errors"
	"sync"
	"time"

	"burger-forge/storage"

	"go.uber.org/zap"
)

type SessionsConfig struct {
	Menu       *Menu
	KV         storage.KV
	Settler    Settler
	NewOrderID OrderIDGenerator
	Defaults   FormDefaults
	Notifier   Notifier
	Listeners  []OrderListener
	Logger     *zap.Logger
	Now        func() time.Time
}

// Sessions hands out one Session per owner, creating it (and restoring its
// saved cart) on first use. Idle sessions are dropped by Sweep; the cart and
// history live in the KV store, so an evicted owner gets them back on the
// next Get.
type Sessions struct {
	cfg SessionsConfig

	mu       sync.Mutex
	sessions map[string]*Session
	lastSeen map[string]time.Time
}

func NewSessions(cfg SessionsConfig) *Sessions {
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	if cfg.Notifier == nil {
		cfg.Notifier = LogNotifier{Logger: cfg.Logger}
	}
	if cfg.Settler == nil {
		cfg.Settler = NewSimulatedSettler(0)
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	return &Sessions{
		cfg:      cfg,
		sessions: make(map[string]*Session),
		lastSeen: make(map[string]time.Time),
	}
}

func (m *Sessions) Get(ctx context.Context, owner string) *Session {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lastSeen[owner] = m.cfg.Now()
	if s, ok := m.sessions[owner]; ok {
		return s
	}
	s := m.newSession(ctx, owner)
	m.sessions[owner] = s
	return s
}

// Sweep drops sessions not fetched for longer than idle and returns how many
// went. A session with a payment in flight is kept.
func (m *Sessions) Sweep(idle time.Duration) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	cutoff := m.cfg.Now().Add(-idle)
	n := 0
	for owner, s := range m.sessions {
		if !m.lastSeen[owner].Before(cutoff) || s.settling() {
			continue
		}
		delete(m.sessions, owner)
		delete(m.lastSeen, owner)
		n++
	}
	return n
}

// RunSweeper calls Sweep every interval until ctx is done.
func (m *Sessions) RunSweeper(ctx context.Context, interval, idle time.Duration) {
	t := time.NewTicker(interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			if n := m.Sweep(idle); n > 0 {
				m.cfg.Logger.Debug("evicted idle sessions", zap.Int("count", n))
			}
		}
	}
}

func (m *Sessions) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}

func (m *Sessions) newSession(ctx context.Context, owner string) *Session {
	cart := NewCart(m.cfg.Menu)
	orders := NewOrderStore(m.cfg.KV, owner)
	s := &Session{
		owner: owner,
		menu:  m.cfg.Menu,
		cart:  cart,
		gate:  NewUpsellGate(m.cfg.Menu.Meal()),
		checkout: NewCheckout(cart, m.cfg.Menu, CheckoutDeps{
			Orders:     orders,
			Settler:    m.cfg.Settler,
			NewOrderID: m.cfg.NewOrderID,
			Defaults:   m.cfg.Defaults,
			Now:        m.cfg.Now,
		}),
		carts:     NewCartStore(m.cfg.KV, owner),
		orders:    orders,
		users:     NewUserStore(m.cfg.KV, owner),
		notifier:  m.cfg.Notifier,
		listeners: m.cfg.Listeners,
		logger:    m.cfg.Logger,
	}
	lines, err := s.carts.LoadCart(ctx)
	switch {
	case errors.Is(err, ErrCorruptState):
		m.cfg.Logger.Warn("ignoring unreadable saved cart", zap.String("owner", owner), zap.Error(err))
	case err != nil:
		m.cfg.Logger.Error("failed to load cart", zap.String("owner", owner), zap.Error(err))
	default:
		cart.Restore(lines)
	}
	return s
}

func (m *Sessions) Menu() *Menu {
	return m.cfg.Menu
}
