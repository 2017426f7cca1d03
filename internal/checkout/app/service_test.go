package app

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	cartdomain "github.com/sprigapp/sprig/internal/cart/domain"
	"github.com/sprigapp/sprig/internal/checkout/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeCart struct {
	items   []cartdomain.Item
	cleared bool
}

func (c *fakeCart) Items(ctx context.Context) ([]cartdomain.Item, error) {
	return append([]cartdomain.Item(nil), c.items...), nil
}

func (c *fakeCart) Clear(ctx context.Context) error {
	c.cleared = true
	c.items = nil
	return nil
}

// scriptedBuyer answers per plant id and records call order.
type scriptedBuyer struct {
	mu    sync.Mutex
	stock map[string]int
	errs  map[string]error
	calls []string
	block chan struct{} // when set, Buy waits until closed
}

func (b *scriptedBuyer) Buy(ctx context.Context, plantID string, qty int) (Receipt, error) {
	b.mu.Lock()
	b.calls = append(b.calls, plantID)
	b.mu.Unlock()

	if b.block != nil {
		select {
		case <-b.block:
		case <-ctx.Done():
			return Receipt{}, ctx.Err()
		}
	}

	if err, ok := b.errs[plantID]; ok {
		return Receipt{}, err
	}
	if left, ok := b.stock[plantID]; ok {
		return Receipt{StockCount: &left}, nil
	}
	return Receipt{}, nil
}

func item(id string, qty int) cartdomain.Item {
	return cartdomain.Item{ID: id, Name: id, Price: 10, Qty: qty}
}

func TestPurchaseAllEmptyCartShortCircuits(t *testing.T) {
	cart := &fakeCart{}
	buyer := &scriptedBuyer{}
	svc := NewService(cart, buyer, nil, time.Second)

	_, err := svc.PurchaseAll(context.Background())
	assert.ErrorIs(t, err, ErrEmptyCart)
	assert.Empty(t, buyer.calls, "empty cart must not hit the network")
	assert.False(t, cart.cleared)
}

func TestPurchaseAllFullSuccessClearsCart(t *testing.T) {
	cart := &fakeCart{items: []cartdomain.Item{item("a", 1), item("b", 2)}}
	buyer := &scriptedBuyer{stock: map[string]int{"a": 3, "b": 5}}
	svc := NewService(cart, buyer, nil, time.Second)

	sum, err := svc.PurchaseAll(context.Background())
	require.NoError(t, err)

	assert.Equal(t, domain.AllSucceeded, sum.Outcome)
	assert.True(t, sum.CartCleared)
	assert.True(t, cart.cleared)
	assert.Equal(t, []string{"a", "b"}, buyer.calls)
	assert.Equal(t, "Order placed!", sum.Message)
}

func TestPurchaseAllSingleSuccessEchoesStock(t *testing.T) {
	cart := &fakeCart{items: []cartdomain.Item{item("a", 1)}}
	buyer := &scriptedBuyer{stock: map[string]int{"a": 7}}
	svc := NewService(cart, buyer, nil, time.Second)

	sum, err := svc.PurchaseAll(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Order placed! Remaining stock: 7", sum.Message)
}

func TestPurchaseAllPartialFailureClearsCart(t *testing.T) {
	cart := &fakeCart{items: []cartdomain.Item{item("a", 1), item("b", 1)}}
	buyer := &scriptedBuyer{
		stock: map[string]int{"a": 3},
		errs:  map[string]error{"b": errors.New("HTTP 500")},
	}
	svc := NewService(cart, buyer, nil, time.Second)

	sum, err := svc.PurchaseAll(context.Background())
	require.NoError(t, err)

	assert.Equal(t, domain.Partial, sum.Outcome)
	assert.True(t, cart.cleared, "paid items must not be re-purchasable")

	require.Len(t, sum.Results, 2)
	assert.True(t, sum.Results[0].OK)
	assert.False(t, sum.Results[1].OK)
	assert.Equal(t, "b", sum.Results[1].ID)
	assert.Contains(t, sum.Message, "HTTP 500")
}

func TestPurchaseAllTotalFailurePreservesCart(t *testing.T) {
	cart := &fakeCart{items: []cartdomain.Item{item("a", 1), item("b", 1)}}
	buyer := &scriptedBuyer{errs: map[string]error{
		"a": errors.New("sold out"),
		"b": errors.New("HTTP 500"),
	}}
	svc := NewService(cart, buyer, nil, time.Second)

	sum, err := svc.PurchaseAll(context.Background())
	require.NoError(t, err)

	assert.Equal(t, domain.AllFailed, sum.Outcome)
	assert.False(t, cart.cleared)
	assert.Len(t, cart.items, 2, "cart must survive a fully failed batch")
	assert.Equal(t, "sold out", sum.Message, "first failure message shown verbatim")
}

func TestPurchaseAllFailureDoesNotSkipSiblings(t *testing.T) {
	cart := &fakeCart{items: []cartdomain.Item{item("a", 1), item("b", 1), item("c", 1)}}
	buyer := &scriptedBuyer{
		stock: map[string]int{"c": 1},
		errs: map[string]error{
			"a": errors.New("network unreachable"),
			"b": errors.New("HTTP 503"),
		},
	}
	svc := NewService(cart, buyer, nil, time.Second)

	sum, err := svc.PurchaseAll(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []string{"a", "b", "c"}, buyer.calls)
	require.Len(t, sum.Results, 3)
	assert.True(t, sum.Results[2].OK)
}

func TestPurchaseAllInvalidItemSkipsNetwork(t *testing.T) {
	cart := &fakeCart{items: []cartdomain.Item{
		{Name: "no id", Qty: 1},
		item("b", 1),
	}}
	buyer := &scriptedBuyer{stock: map[string]int{"b": 2}}
	svc := NewService(cart, buyer, nil, time.Second)

	sum, err := svc.PurchaseAll(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []string{"b"}, buyer.calls, "invalid item must not produce a buy call")
	require.Len(t, sum.Results, 2)
	assert.False(t, sum.Results[0].OK)
	assert.Equal(t, "invalid item", sum.Results[0].Message)
	assert.Empty(t, sum.Results[0].ID)
	assert.True(t, sum.Results[1].OK)
}

func TestPurchaseAllNormalizesQty(t *testing.T) {
	cart := &fakeCart{items: []cartdomain.Item{{ID: "a", Qty: -4}}}

	var gotQty int
	buyer := buyerFunc(func(ctx context.Context, plantID string, qty int) (Receipt, error) {
		gotQty = qty
		return Receipt{}, nil
	})
	svc := NewService(cart, buyer, nil, time.Second)

	_, err := svc.PurchaseAll(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, gotQty)
}

type buyerFunc func(ctx context.Context, plantID string, qty int) (Receipt, error)

func (f buyerFunc) Buy(ctx context.Context, plantID string, qty int) (Receipt, error) {
	return f(ctx, plantID, qty)
}

func TestPurchaseAllRejectsConcurrentBatch(t *testing.T) {
	block := make(chan struct{})
	cart := &fakeCart{items: []cartdomain.Item{item("a", 1)}}
	buyer := &scriptedBuyer{block: block}
	svc := NewService(cart, buyer, nil, 5*time.Second)

	done := make(chan struct{})
	go func() {
		defer close(done)
		_, _ = svc.PurchaseAll(context.Background())
	}()

	// Wait until the first batch is inside its buy call.
	require.Eventually(t, func() bool {
		buyer.mu.Lock()
		defer buyer.mu.Unlock()
		return len(buyer.calls) == 1
	}, time.Second, 5*time.Millisecond)

	_, err := svc.PurchaseAll(context.Background())
	assert.ErrorIs(t, err, ErrPurchaseInFlight)

	close(block)
	<-done

	// Once the first batch drains, a new one may start.
	cart.items = []cartdomain.Item{item("b", 1)}
	cart.cleared = false
	_, err = svc.PurchaseAll(context.Background())
	assert.NoError(t, err)
}

func TestPurchaseAllTimeoutBecomesItemFailure(t *testing.T) {
	cart := &fakeCart{items: []cartdomain.Item{item("slow", 1), item("b", 1)}}
	buyer := &scriptedBuyer{stock: map[string]int{"b": 1}}
	buyer.block = nil

	slow := buyerFunc(func(ctx context.Context, plantID string, qty int) (Receipt, error) {
		if plantID == "slow" {
			<-ctx.Done()
			return Receipt{}, ctx.Err()
		}
		return buyer.Buy(ctx, plantID, qty)
	})
	svc := NewService(cart, slow, nil, 10*time.Millisecond)

	sum, err := svc.PurchaseAll(context.Background())
	require.NoError(t, err)

	assert.Equal(t, domain.Partial, sum.Outcome)
	assert.False(t, sum.Results[0].OK)
	assert.True(t, sum.Results[1].OK, "timeout on one item must not stall the next")
}
