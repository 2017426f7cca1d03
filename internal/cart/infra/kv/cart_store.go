// Package kv stores the cart in the device key-value store, mirroring
// how the mobile clients keep it: one JSON array under a single key,
// read-modify-write as a whole.
package kv

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/sprigapp/sprig/internal/cart/domain"
	"github.com/sprigapp/sprig/pkg/kvstore"
)

const cartKey = "cart"

type CartStore struct {
	kv  kvstore.Store
	log *slog.Logger
}

func NewCartStore(kv kvstore.Store, log *slog.Logger) *CartStore {
	if log == nil {
		log = slog.Default()
	}
	return &CartStore{kv: kv, log: log}
}

// Load returns the persisted cart. A missing key or a value that no
// longer parses both come back as an empty cart, never an error: a
// corrupt cart record must not brick the purchase flow.
func (s *CartStore) Load(ctx context.Context) ([]domain.Item, error) {
	raw, err := s.kv.Get(ctx, cartKey)
	if errors.Is(err, kvstore.ErrNotFound) {
		return []domain.Item{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load cart: %w", err)
	}

	var items []domain.Item
	if err := json.Unmarshal(raw, &items); err != nil {
		s.log.Warn("cart record unreadable, starting empty", slog.Any("err", err))
		return []domain.Item{}, nil
	}
	return items, nil
}

func (s *CartStore) Save(ctx context.Context, items []domain.Item) error {
	if items == nil {
		items = []domain.Item{}
	}
	raw, err := json.Marshal(items)
	if err != nil {
		return fmt.Errorf("encode cart: %w", err)
	}
	if err := s.kv.Set(ctx, cartKey, raw); err != nil {
		return fmt.Errorf("save cart: %w", err)
	}
	return nil
}
