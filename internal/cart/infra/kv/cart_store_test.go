package kv

import (
	"context"
	"testing"

	"github.com/sprigapp/sprig/internal/cart/domain"
	"github.com/sprigapp/sprig/pkg/kvstore"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadMissingKeyIsEmptyCart(t *testing.T) {
	s := NewCartStore(kvstore.NewMemStore(), nil)

	items, err := s.Load(context.Background())
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestLoadMalformedRecordIsEmptyCart(t *testing.T) {
	ctx := context.Background()
	kv := kvstore.NewMemStore()
	require.NoError(t, kv.Set(ctx, "cart", []byte(`{"oops": not json`)))

	s := NewCartStore(kv, nil)
	items, err := s.Load(ctx)
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestSaveLoadRoundTrip(t *testing.T) {
	ctx := context.Background()
	s := NewCartStore(kvstore.NewMemStore(), nil)

	in := []domain.Item{
		{ID: "p1", Name: "Monstera", Price: 12.5, Qty: 2, AddedAt: 1700000000000},
		{ID: "p2", Name: "Fern", Price: 4, Qty: 1, AddedAt: 1700000001000},
	}
	require.NoError(t, s.Save(ctx, in))

	got, err := s.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, in, got)
}

func TestSaveNilPersistsEmptyList(t *testing.T) {
	ctx := context.Background()
	kv := kvstore.NewMemStore()
	s := NewCartStore(kv, nil)

	require.NoError(t, s.Save(ctx, nil))

	raw, err := kv.Get(ctx, "cart")
	require.NoError(t, err)
	assert.JSONEq(t, `[]`, string(raw))
}
