package app

import (
	"context"

	plantdomain "github.com/sprigapp/sprig/internal/plants/domain"
)

type API interface {
	Add(ctx context.Context, userID, plantID string) error
	Remove(ctx context.Context, userID, plantID string) error
	ListByUser(ctx context.Context, userID string) ([]plantdomain.Plant, error)
}
