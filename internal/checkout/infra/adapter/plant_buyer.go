package adapter

import (
	"context"

	checkoutapp "github.com/sprigapp/sprig/internal/checkout/app"
	plantsrest "github.com/sprigapp/sprig/internal/plants/rest"
)

// PlantBuyer adapts the plants REST client to the orchestrator's
// Buyer port.
type PlantBuyer struct {
	plants *plantsrest.Client
}

func NewPlantBuyer(plants *plantsrest.Client) *PlantBuyer {
	return &PlantBuyer{plants: plants}
}

func (b *PlantBuyer) Buy(ctx context.Context, plantID string, qty int) (checkoutapp.Receipt, error) {
	rec, err := b.plants.Buy(ctx, plantID, qty)
	if err != nil {
		return checkoutapp.Receipt{}, err
	}
	return checkoutapp.Receipt{StockCount: rec.StockCount}, nil
}
