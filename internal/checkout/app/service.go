package app

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync/atomic"
	"time"

	cartdomain "github.com/sprigapp/sprig/internal/cart/domain"
	"github.com/sprigapp/sprig/internal/checkout/domain"
)

// CartAccess is the slice of the cart the orchestrator needs: a
// snapshot to purchase and a clear after the money moved.
type CartAccess interface {
	Items(ctx context.Context) ([]cartdomain.Item, error)
	Clear(ctx context.Context) error
}

// Receipt is the successful outcome of one buy call. StockCount is
// nil when the server did not report remaining stock.
type Receipt struct {
	StockCount *int
}

type Buyer interface {
	Buy(ctx context.Context, plantID string, qty int) (Receipt, error)
}

var (
	ErrEmptyCart        = errors.New("cart is empty")
	ErrPurchaseInFlight = errors.New("a purchase is already in progress")
)

type Service struct {
	cart  CartAccess
	buyer Buyer
	log   *slog.Logger

	// callTimeout bounds each individual buy call; a hung request
	// becomes a per-item failure instead of stalling the batch.
	callTimeout time.Duration

	inFlight atomic.Bool
}

func NewService(cart CartAccess, buyer Buyer, log *slog.Logger, callTimeout time.Duration) *Service {
	if log == nil {
		log = slog.Default()
	}
	if callTimeout <= 0 {
		callTimeout = 15 * time.Second
	}
	return &Service{
		cart:        cart,
		buyer:       buyer,
		log:         log,
		callTimeout: callTimeout,
	}
}

// PurchaseAll runs one checkout attempt over the current cart: one buy
// call per item, strictly in cart order, each failure contained to its
// own item. The cart is cleared when at least one item went through
// (paid items must not be re-purchasable); on total failure it is left
// untouched so the same items can be retried.
//
// Only one batch may run at a time; a second call while one is in
// flight returns ErrPurchaseInFlight.
func (s *Service) PurchaseAll(ctx context.Context) (domain.Summary, error) {
	if !s.inFlight.CompareAndSwap(false, true) {
		return domain.Summary{}, ErrPurchaseInFlight
	}
	defer s.inFlight.Store(false)

	items, err := s.cart.Items(ctx)
	if err != nil {
		return domain.Summary{}, err
	}
	if len(items) == 0 {
		return domain.Summary{}, ErrEmptyCart
	}

	results := make([]domain.PurchaseResult, 0, len(items))
	for _, it := range items {
		results = append(results, s.buyOne(ctx, it))
	}

	sum := domain.Summarize(results)
	s.log.Info("purchase batch finished",
		slog.String("outcome", sum.Outcome.String()),
		slog.Int("items", len(items)),
		slog.Int("failed", len(sum.Failed())))

	if sum.Outcome != domain.AllFailed {
		if err := s.cart.Clear(ctx); err != nil {
			// The purchases went through; a failed clear only risks
			// a stale cart, so log and carry on.
			s.log.Warn("cart clear failed after purchase", slog.Any("err", err))
		} else {
			sum.CartCleared = true
		}
	}
	return sum, nil
}

func (s *Service) buyOne(ctx context.Context, it cartdomain.Item) domain.PurchaseResult {
	if strings.TrimSpace(it.ID) == "" {
		return domain.PurchaseResult{OK: false, Message: "invalid item"}
	}

	qty := it.Qty
	if qty < 1 {
		qty = 1
	}

	callCtx, cancel := context.WithTimeout(ctx, s.callTimeout)
	defer cancel()

	rec, err := s.buyer.Buy(callCtx, it.ID, qty)
	if err != nil {
		s.log.Debug("buy failed",
			slog.String("plant", it.ID),
			slog.Any("err", err))
		return domain.PurchaseResult{OK: false, ID: it.ID, Message: err.Error()}
	}
	return domain.PurchaseResult{OK: true, ID: it.ID, Left: rec.StockCount}
}
