package adapter

import (
	"context"

	cartapp "github.com/sprigapp/sprig/internal/cart/app"
	cartdomain "github.com/sprigapp/sprig/internal/cart/domain"
)

// CartServiceAccess adapts the cart service to the orchestrator's
// CartAccess port.
type CartServiceAccess struct {
	svc *cartapp.Service
}

func NewCartServiceAccess(svc *cartapp.Service) *CartServiceAccess {
	return &CartServiceAccess{svc: svc}
}

func (a *CartServiceAccess) Items(ctx context.Context) ([]cartdomain.Item, error) {
	return a.svc.Items(ctx)
}

func (a *CartServiceAccess) Clear(ctx context.Context) error {
	return a.svc.Clear(ctx)
}
