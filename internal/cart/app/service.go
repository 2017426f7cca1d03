package app

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sprigapp/sprig/internal/cart/domain"
)

// Candidate is a plant-like record being added to the cart, with the
// display price and image already resolved by the caller.
type Candidate struct {
	ID          string
	Name        string
	Description string
	Price       float64
	Image       string
	Qty         int
}

type Service struct {
	store Store

	now   func() time.Time
	newID func() string
}

func NewService(store Store) *Service {
	return &Service{
		store: store,
		now:   time.Now,
		newID: uuid.NewString,
	}
}

// Add merges the candidate into the cart by id: an existing entry gets
// its quantity bumped, otherwise a new entry is appended. The whole
// list is persisted before returning.
func (s *Service) Add(ctx context.Context, c Candidate) (domain.Cart, error) {
	items, err := s.store.Load(ctx)
	if err != nil {
		return domain.Cart{}, err
	}
	cart := domain.Cart{Items: items}

	id := strings.TrimSpace(c.ID)
	if id == "" {
		// Every cart entry must be addressable for removal and buy
		// calls, even when the source record had no id.
		id = s.newID()
	}

	qty := c.Qty
	if qty < 1 {
		qty = 1
	}

	if i := cart.Find(id); i >= 0 {
		cart.Items[i].Qty += qty
	} else {
		name := c.Name
		if strings.TrimSpace(name) == "" {
			name = "Unnamed"
		}
		price := c.Price
		if price < 0 {
			price = 0
		}
		cart.Items = append(cart.Items, domain.Item{
			ID:          id,
			Name:        name,
			Description: c.Description,
			Price:       price,
			Image:       c.Image,
			Qty:         qty,
			AddedAt:     s.now().UnixMilli(),
		})
	}

	if err := s.store.Save(ctx, cart.Items); err != nil {
		return domain.Cart{}, err
	}
	return cart, nil
}

// Remove drops the entry with the given id. Removing an id that is not
// in the cart is a no-op; the list is persisted either way.
func (s *Service) Remove(ctx context.Context, id string) (domain.Cart, error) {
	items, err := s.store.Load(ctx)
	if err != nil {
		return domain.Cart{}, err
	}

	next := items[:0:0]
	for _, it := range items {
		if it.ID != id {
			next = append(next, it)
		}
	}

	if err := s.store.Save(ctx, next); err != nil {
		return domain.Cart{}, err
	}
	return domain.Cart{Items: next}, nil
}

func (s *Service) Clear(ctx context.Context) error {
	return s.store.Save(ctx, []domain.Item{})
}

func (s *Service) Items(ctx context.Context) ([]domain.Item, error) {
	return s.store.Load(ctx)
}

func (s *Service) Total(ctx context.Context) (float64, error) {
	items, err := s.store.Load(ctx)
	if err != nil {
		return 0, err
	}
	return domain.Cart{Items: items}.Total(), nil
}
