package app

import (
	"context"

	"github.com/sprigapp/sprig/internal/cart/domain"
)

// Store persists the whole cart as one record. Load returns an empty
// list when nothing has been stored yet.
type Store interface {
	Load(ctx context.Context) ([]domain.Item, error)
	Save(ctx context.Context, items []domain.Item) error
}
