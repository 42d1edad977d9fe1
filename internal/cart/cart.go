// Copyright (c) 2026 Velora. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package cart implements the shopping session store: the cart and wishlist a
shopper builds up independently of any upstream account.

Architecture:

  - Store: An explicitly constructed, per-session state container. No
    module-level singletons; tests and the session registry instantiate
    isolated instances.
  - Storage: Pluggable persistence. Redis in the gateway, a JSON file for
    single-user embedding and tests.
  - Hydration: State is loaded from storage exactly once before the first
    mutation persists, so an empty starting state never clobbers a stored cart.

Derived values (total, count) are recomputed from the line items on every
read; they are never stored and can never drift.
*/
package cart

import (
	"context"
	"log/slog"
	"sync"

	"github.com/taibuivan/velora/pkg/slice"
)

// Item is one line in the cart: a product reference with its quantity.
//
// JSON field names match the storefront's persisted cart shape.
type Item struct {
	ProductID string  `json:"id"`
	Name      string  `json:"name"`
	Price     float64 `json:"price"`
	Image     string  `json:"image"`
	Quantity  int     `json:"quantity"`
	Color     string  `json:"color,omitempty"`
}

// Store holds one shopper's cart and wishlist.
//
// # Invariants
//
//   - At most one line item per product ID.
//   - Quantity is never below 1; removal happens only through RemoveItem.
//   - The wishlist is a set: no duplicate product IDs.
//
// # Concurrency
//
// Safe for concurrent use. Two racing mutations serialize arbitrarily; last
// write wins, matching the storefront's reducer semantics.
type Store struct {
	mu       sync.Mutex
	storage  Storage
	logger   *slog.Logger
	items    []Item
	wishlist []string
	hydrated bool
}

// NewStore constructs an empty, not-yet-hydrated store over the given storage.
func NewStore(storage Storage, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Store{storage: storage, logger: logger}
}

// # Hydration

/*
Load hydrates the store from persistent storage.

Description: Runs once; later calls are no-ops. Until Load has succeeded,
mutations still update the in-memory state but are NOT mirrored to storage:
a store that has not seen its persisted cart must never overwrite it.

Parameters:
  - context: context.Context

Returns:
  - error: Storage read failures (the store stays un-hydrated)
*/
func (store *Store) Load(context context.Context) error {
	store.mu.Lock()
	defer store.mu.Unlock()

	if store.hydrated {
		return nil
	}

	items, err := store.storage.ReadCart(context)
	if err != nil {
		return err
	}

	wishlist, err := store.storage.ReadWishlist(context)
	if err != nil {
		return err
	}

	store.items = items
	store.wishlist = wishlist
	store.hydrated = true

	return nil
}

// Hydrated reports whether the store has loaded its persisted state.
func (store *Store) Hydrated() bool {
	store.mu.Lock()
	defer store.mu.Unlock()
	return store.hydrated
}

// # Cart Mutations

/*
AddItem puts a product in the cart.

Description: If a line item with the same product ID exists, its quantity is
incremented by one and every other incoming field is ignored; the stored
name/price never drift from what the shopper first saw. Otherwise the item is
appended with quantity normalized to exactly 1, regardless of the incoming
quantity field.

Parameters:
  - context: context.Context
  - item: Item

Returns:
  - error: Persistence failures (in-memory state is already updated)
*/
func (store *Store) AddItem(context context.Context, item Item) error {
	store.mu.Lock()
	defer store.mu.Unlock()

	found := false
	for index := range store.items {
		if store.items[index].ProductID == item.ProductID {
			store.items[index].Quantity++
			found = true
			break
		}
	}

	if !found {
		item.Quantity = 1
		store.items = append(store.items, item)
	}

	return store.persistCart(context)
}

/*
RemoveItem deletes a line item entirely.

Description: Idempotent. Removing an absent product ID leaves the cart
unchanged and reports success.
*/
func (store *Store) RemoveItem(context context.Context, productID string) error {
	store.mu.Lock()
	defer store.mu.Unlock()

	kept := store.items[:0]
	for _, item := range store.items {
		if item.ProductID != productID {
			kept = append(kept, item)
		}
	}
	store.items = kept

	return store.persistCart(context)
}

/*
UpdateQuantity sets a line item's quantity, clamped to a minimum of 1.

Description: A quantity of zero or below is clamped, never removed. The only
way out of the cart is an explicit RemoveItem. Unknown product IDs are a no-op.
*/
func (store *Store) UpdateQuantity(context context.Context, productID string, quantity int) error {
	store.mu.Lock()
	defer store.mu.Unlock()

	if quantity < 1 {
		quantity = 1
	}

	for index := range store.items {
		if store.items[index].ProductID == productID {
			store.items[index].Quantity = quantity
			break
		}
	}

	return store.persistCart(context)
}

// Clear empties the cart (the wishlist is untouched).
func (store *Store) Clear(context context.Context) error {
	store.mu.Lock()
	defer store.mu.Unlock()

	store.items = nil

	return store.persistCart(context)
}

// # Wishlist Mutations

/*
ToggleWishlist flips a product's wishlist membership.

Returns:
  - bool: true when the product was added, false when removed
  - error: Persistence failures
*/
func (store *Store) ToggleWishlist(context context.Context, productID string) (bool, error) {
	store.mu.Lock()
	defer store.mu.Unlock()

	for _, existing := range store.wishlist {
		if existing == productID {
			store.wishlist = slice.Filter(store.wishlist, func(id string) bool {
				return id != productID
			})
			return false, store.persistWishlist(context)
		}
	}

	store.wishlist = append(store.wishlist, productID)
	return true, store.persistWishlist(context)
}

// # Derived Values & Snapshots

// Items returns a copy of the current line items.
func (store *Store) Items() []Item {
	store.mu.Lock()
	defer store.mu.Unlock()

	snapshot := make([]Item, len(store.items))
	copy(snapshot, store.items)
	return snapshot
}

// Wishlist returns a copy of the wishlisted product IDs.
func (store *Store) Wishlist() []string {
	store.mu.Lock()
	defer store.mu.Unlock()

	snapshot := make([]string, len(store.wishlist))
	copy(snapshot, store.wishlist)
	return snapshot
}

// Quantity returns the quantity of one product, or 0 when absent.
func (store *Store) Quantity(productID string) int {
	store.mu.Lock()
	defer store.mu.Unlock()

	for _, item := range store.items {
		if item.ProductID == productID {
			return item.Quantity
		}
	}
	return 0
}

// Total returns Σ(unit price × quantity) across all line items.
func (store *Store) Total() float64 {
	store.mu.Lock()
	defer store.mu.Unlock()

	return slice.Reduce(store.items, 0.0, func(total float64, item Item) float64 {
		return total + item.Price*float64(item.Quantity)
	})
}

// Count returns the summed quantities, the cart badge number, which is
// distinct from the number of line items.
func (store *Store) Count() int {
	store.mu.Lock()
	defer store.mu.Unlock()

	return slice.Reduce(store.items, 0, func(count int, item Item) int {
		return count + item.Quantity
	})
}

// # Persistence Helpers

// persistCart mirrors the line items to storage. Callers hold the lock.
func (store *Store) persistCart(context context.Context) error {
	if !store.hydrated {
		// Pre-hydration writes would clobber the stored cart with a
		// partially-initialized one.
		return nil
	}

	snapshot := make([]Item, len(store.items))
	copy(snapshot, store.items)

	if err := store.storage.WriteCart(context, snapshot); err != nil {
		store.logger.Error("cart_persist_failed", slog.Any("error", err))
		return err
	}
	return nil
}

// persistWishlist mirrors the wishlist to storage. Callers hold the lock.
func (store *Store) persistWishlist(context context.Context) error {
	if !store.hydrated {
		return nil
	}

	snapshot := make([]string, len(store.wishlist))
	copy(snapshot, store.wishlist)

	if err := store.storage.WriteWishlist(context, snapshot); err != nil {
		store.logger.Error("wishlist_persist_failed", slog.Any("error", err))
		return err
	}
	return nil
}
