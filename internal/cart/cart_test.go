// Copyright (c) 2026 Velora. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package cart_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/velora/internal/cart"
)

// newHydratedStore builds a file-backed store ready for mutations.
func newHydratedStore(t *testing.T) *cart.Store {
	t.Helper()

	storage := cart.NewFileStorage(filepath.Join(t.TempDir(), "cart.json"))
	store := cart.NewStore(storage, nil)
	require.NoError(t, store.Load(context.Background()))
	return store
}

/*
TestStore_AddItem_Deduplicates: repeated adds of the same product keep exactly
one line item whose quantity equals the number of calls.
*/
func TestStore_AddItem_Deduplicates(t *testing.T) {
	store := newHydratedStore(t)
	ctx := context.Background()

	item := cart.Item{ProductID: "p1", Name: "Plush Bear", Price: 10}

	for i := 0; i < 5; i++ {
		require.NoError(t, store.AddItem(ctx, item))
	}

	items := store.Items()
	require.Len(t, items, 1)
	assert.Equal(t, 5, items[0].Quantity)
	assert.Equal(t, 5, store.Count())
}

/*
TestStore_AddItem_NormalizesFirstInsert: the incoming quantity and any stale
price/name on later adds are ignored.
*/
func TestStore_AddItem_NormalizesFirstInsert(t *testing.T) {
	store := newHydratedStore(t)
	ctx := context.Background()

	// Incoming quantity of 7 is normalized to 1 on first insert.
	require.NoError(t, store.AddItem(ctx, cart.Item{ProductID: "p1", Name: "Bear", Price: 10, Quantity: 7}))
	assert.Equal(t, 1, store.Quantity("p1"))

	// A later add with a drifted price only bumps the quantity.
	require.NoError(t, store.AddItem(ctx, cart.Item{ProductID: "p1", Name: "Bear v2", Price: 99}))

	items := store.Items()
	require.Len(t, items, 1)
	assert.Equal(t, 2, items[0].Quantity)
	assert.Equal(t, "Bear", items[0].Name)
	assert.InDelta(t, 10.0, items[0].Price, 1e-9)
}

/*
TestStore_UpdateQuantity_ClampsToOne: quantities at or below zero clamp to 1;
removal never happens through quantity updates.
*/
func TestStore_UpdateQuantity_ClampsToOne(t *testing.T) {
	tests := []struct {
		name     string
		quantity int
		want     int
	}{
		{"zero_clamps", 0, 1},
		{"negative_clamps", -3, 1},
		{"one_stays", 1, 1},
		{"normal_update", 4, 4},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := newHydratedStore(t)
			ctx := context.Background()

			require.NoError(t, store.AddItem(ctx, cart.Item{ProductID: "p1", Price: 10}))
			require.NoError(t, store.UpdateQuantity(ctx, "p1", tt.quantity))

			assert.Equal(t, tt.want, store.Quantity("p1"))
			assert.Len(t, store.Items(), 1, "clamping never removes the line item")
		})
	}
}

/*
TestStore_RemoveItem_Idempotent: removing an absent ID is a no-op.
*/
func TestStore_RemoveItem_Idempotent(t *testing.T) {
	store := newHydratedStore(t)
	ctx := context.Background()

	require.NoError(t, store.AddItem(ctx, cart.Item{ProductID: "p1", Price: 10}))

	require.NoError(t, store.RemoveItem(ctx, "ghost"))
	assert.Len(t, store.Items(), 1, "unknown ID leaves the cart unchanged")

	require.NoError(t, store.RemoveItem(ctx, "p1"))
	assert.Empty(t, store.Items())

	require.NoError(t, store.RemoveItem(ctx, "p1"))
	assert.Empty(t, store.Items())
}

/*
TestStore_Totals checks that {A: 2×₹10, B: 1×₹25} totals ₹45,
and a clamped quantity update leaves it untouched.
*/
func TestStore_Totals(t *testing.T) {
	store := newHydratedStore(t)
	ctx := context.Background()

	require.NoError(t, store.AddItem(ctx, cart.Item{ProductID: "productA", Price: 10}))
	require.NoError(t, store.AddItem(ctx, cart.Item{ProductID: "productA", Price: 10}))
	require.NoError(t, store.AddItem(ctx, cart.Item{ProductID: "productB", Price: 25}))

	assert.InDelta(t, 45.0, store.Total(), 1e-9)
	assert.Equal(t, 3, store.Count(), "count sums quantities, not line items")
	assert.Len(t, store.Items(), 2)

	// Clamped update: quantity stays 2, total unchanged.
	require.NoError(t, store.UpdateQuantity(ctx, "productA", 0))
	assert.Equal(t, 2, store.Quantity("productA"))
	assert.InDelta(t, 45.0, store.Total(), 1e-9)
}

/*
TestStore_ToggleWishlist verifies set semantics.
*/
func TestStore_ToggleWishlist(t *testing.T) {
	store := newHydratedStore(t)
	ctx := context.Background()

	added, err := store.ToggleWishlist(ctx, "p1")
	require.NoError(t, err)
	assert.True(t, added)
	assert.Equal(t, []string{"p1"}, store.Wishlist())

	// Toggling again removes; no duplicates ever.
	added, err = store.ToggleWishlist(ctx, "p1")
	require.NoError(t, err)
	assert.False(t, added)
	assert.Empty(t, store.Wishlist())
}

/*
TestStore_StorageRoundTrip: a cart survives serialize/deserialize with its
total intact, via a second store over the same file.
*/
func TestStore_StorageRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cart.json")
	ctx := context.Background()

	first := cart.NewStore(cart.NewFileStorage(path), nil)
	require.NoError(t, first.Load(ctx))
	require.NoError(t, first.AddItem(ctx, cart.Item{ProductID: "p1", Name: "Bear", Price: 12.5, Image: "/img/bear.png", Color: "brown"}))
	require.NoError(t, first.AddItem(ctx, cart.Item{ProductID: "p1"}))
	require.NoError(t, first.AddItem(ctx, cart.Item{ProductID: "p2", Price: 5}))

	second := cart.NewStore(cart.NewFileStorage(path), nil)
	require.NoError(t, second.Load(ctx))

	assert.Equal(t, first.Items(), second.Items())
	assert.InDelta(t, first.Total(), second.Total(), 1e-9)

	items := second.Items()
	require.Len(t, items, 2)
	assert.Equal(t, "brown", items[0].Color)
}

/*
TestStore_HydrationGuard: mutations before Load must not clobber the
persisted cart with an empty write.
*/
func TestStore_HydrationGuard(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cart.json")
	ctx := context.Background()

	// Seed storage with a real cart.
	seeded := cart.NewStore(cart.NewFileStorage(path), nil)
	require.NoError(t, seeded.Load(ctx))
	require.NoError(t, seeded.AddItem(ctx, cart.Item{ProductID: "p1", Price: 10}))

	// A fresh, un-hydrated store mutates in memory only.
	fresh := cart.NewStore(cart.NewFileStorage(path), nil)
	assert.False(t, fresh.Hydrated())
	require.NoError(t, fresh.Clear(ctx))

	// The stored cart survived the premature Clear.
	verify := cart.NewStore(cart.NewFileStorage(path), nil)
	require.NoError(t, verify.Load(ctx))
	assert.Len(t, verify.Items(), 1)
}

/*
TestStore_LoadIsIdempotent: a second Load keeps in-memory state.
*/
func TestStore_LoadIsIdempotent(t *testing.T) {
	store := newHydratedStore(t)
	ctx := context.Background()

	require.NoError(t, store.AddItem(ctx, cart.Item{ProductID: "p1", Price: 10}))
	require.NoError(t, store.Load(ctx))

	assert.Len(t, store.Items(), 1)
}
