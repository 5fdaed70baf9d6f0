package services

import (
	"context"
	"encoding/json"
	"fmt"
	"math/rand/v2"
	"sort"
	"strings"

	"burger-forge/models"
	"burger-forge/storage"
)

const keyOrders = "burgerForge_orders"

// OrderStore is the append-only order history of one customer.
type OrderStore interface {
	Persist(ctx context.Context, order models.Order) error
	ListAll(ctx context.Context) ([]models.Order, error)
}

// OrderListener is told about every order after it has been persisted.
type OrderListener interface {
	OrderPlaced(ctx context.Context, owner string, order models.Order)
}

type kvOrderStore struct {
	kv    storage.KV
	owner string
}

func NewOrderStore(kv storage.KV, owner string) OrderStore {
	return &kvOrderStore{kv: kv, owner: owner}
}

func (s *kvOrderStore) Persist(ctx context.Context, order models.Order) error {
	b, err := json.Marshal(order)
	if err != nil {
		return fmt.Errorf("failed to marshal order: %w", err)
	}
	if err := s.kv.Append(ctx, s.owner, keyOrders, b); err != nil {
		return fmt.Errorf("persist order %s: %w", order.ID, err)
	}
	return nil
}

// ListAll returns orders in the order they were placed. Unparsable history
// yields ErrCorruptState together with an empty list.
func (s *kvOrderStore) ListAll(ctx context.Context) ([]models.Order, error) {
	raw, ok, err := s.kv.Get(ctx, s.owner, keyOrders)
	if err != nil {
		return nil, err
	}
	if !ok {
		return []models.Order{}, nil
	}
	var orders []models.Order
	if err := json.Unmarshal(raw, &orders); err != nil {
		return []models.Order{}, fmt.Errorf("%w: orders: %v", ErrCorruptState, err)
	}
	return orders, nil
}

// SortNewestFirst orders history the way the viewer shows it.
func SortNewestFirst(orders []models.Order) {
	sort.SliceStable(orders, func(i, j int) bool {
		return orders[i].CreatedAt.After(orders[j].CreatedAt)
	})
}

const orderIDDigits = 6

// OrderIDGenerator returns human-readable ids like "BF-042917". Ids are not
// checked for collisions.
type OrderIDGenerator func() string

func NewOrderIDGenerator(prefix string) OrderIDGenerator {
	prefix = strings.TrimSuffix(prefix, "-")
	return func() string {
		return fmt.Sprintf("%s-%0*d", prefix, orderIDDigits, rand.IntN(1_000_000))
	}
}
