package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"burger-forge/models"
	"burger-forge/storage"
)

const keyUser = "burgerForge_user"

// UserStore keeps the signed-in customer. Sign-in is not verified; checkout
// works without a user.
type UserStore interface {
	Login(ctx context.Context, name, email string) (models.User, error)
	Current(ctx context.Context) (models.User, bool, error)
	Logout(ctx context.Context) error
}

type kvUserStore struct {
	kv    storage.KV
	owner string
}

func NewUserStore(kv storage.KV, owner string) UserStore {
	return &kvUserStore{kv: kv, owner: owner}
}

func (s *kvUserStore) Login(ctx context.Context, name, email string) (models.User, error) {
	u := models.User{Name: strings.TrimSpace(name), Email: strings.TrimSpace(email)}
	if u.Name == "" {
		return models.User{}, fmt.Errorf("name is required")
	}
	b, err := json.Marshal(u)
	if err != nil {
		return models.User{}, fmt.Errorf("failed to marshal user: %w", err)
	}
	if err := s.kv.Set(ctx, s.owner, keyUser, b); err != nil {
		return models.User{}, err
	}
	return u, nil
}

// Current returns ok=false when nobody is signed in or the stored user is unreadable.
func (s *kvUserStore) Current(ctx context.Context) (models.User, bool, error) {
	raw, ok, err := s.kv.Get(ctx, s.owner, keyUser)
	if err != nil || !ok {
		return models.User{}, false, err
	}
	var u models.User
	if err := json.Unmarshal(raw, &u); err != nil {
		return models.User{}, false, fmt.Errorf("%w: user: %v", ErrCorruptState, err)
	}
	return u, true, nil
}

func (s *kvUserStore) Logout(ctx context.Context) error {
	return s.kv.Delete(ctx, s.owner, keyUser)
}
