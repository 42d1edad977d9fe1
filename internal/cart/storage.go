// Copyright (c) 2026 Velora. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package cart

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"sync"
)

// Storage persists one shopper's cart and wishlist.
//
// Absent state reads back as (nil, nil): an empty cart, not an error.
type Storage interface {
	ReadCart(ctx context.Context) ([]Item, error)
	WriteCart(ctx context.Context, items []Item) error
	ReadWishlist(ctx context.Context) ([]string, error)
	WriteWishlist(ctx context.Context, productIDs []string) error
}

// # File-Backed Storage

// FileStorage persists the cart as a single JSON document on disk.
//
// It is the local-storage analog used by tests and single-user embeddings of
// the store; the gateway itself uses [RedisStorage].
type FileStorage struct {
	mu   sync.Mutex
	path string
}

// NewFileStorage creates a file-backed [Storage] rooted at path.
func NewFileStorage(path string) *FileStorage {
	return &FileStorage{path: path}
}

// fileDocument is the on-disk shape. Key names match the storefront's
// persisted local-storage keys.
type fileDocument struct {
	CartItems     []Item   `json:"cartItems"`
	WishlistItems []string `json:"wishlistItems"`
}

// ReadCart returns the stored line items, or nil when no file exists yet.
func (storage *FileStorage) ReadCart(_ context.Context) ([]Item, error) {
	storage.mu.Lock()
	defer storage.mu.Unlock()

	document, err := storage.read()
	if err != nil {
		return nil, err
	}
	return document.CartItems, nil
}

// WriteCart replaces the stored line items.
func (storage *FileStorage) WriteCart(_ context.Context, items []Item) error {
	storage.mu.Lock()
	defer storage.mu.Unlock()

	document, err := storage.read()
	if err != nil {
		return err
	}

	document.CartItems = items
	return storage.write(document)
}

// ReadWishlist returns the stored wishlist IDs, or nil when absent.
func (storage *FileStorage) ReadWishlist(_ context.Context) ([]string, error) {
	storage.mu.Lock()
	defer storage.mu.Unlock()

	document, err := storage.read()
	if err != nil {
		return nil, err
	}
	return document.WishlistItems, nil
}

// WriteWishlist replaces the stored wishlist IDs.
func (storage *FileStorage) WriteWishlist(_ context.Context, productIDs []string) error {
	storage.mu.Lock()
	defer storage.mu.Unlock()

	document, err := storage.read()
	if err != nil {
		return err
	}

	document.WishlistItems = productIDs
	return storage.write(document)
}

// read loads the document, tolerating a missing file. Callers hold the lock.
func (storage *FileStorage) read() (*fileDocument, error) {
	raw, err := os.ReadFile(storage.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return &fileDocument{}, nil
		}
		return nil, fmt.Errorf("cart_file_read_failed: %w", err)
	}

	document := &fileDocument{}
	if err := json.Unmarshal(raw, document); err != nil {
		return nil, fmt.Errorf("cart_file_decode_failed: %w", err)
	}
	return document, nil
}

// write saves the document. Callers hold the lock.
func (storage *FileStorage) write(document *fileDocument) error {
	encoded, err := json.Marshal(document)
	if err != nil {
		return fmt.Errorf("cart_file_encode_failed: %w", err)
	}

	if err := os.WriteFile(storage.path, encoded, 0o600); err != nil {
		return fmt.Errorf("cart_file_write_failed: %w", err)
	}
	return nil
}

// compile-time interface conformance (both backends, one place)
var (
	_ Storage = (*FileStorage)(nil)
	_ Storage = (*RedisStorage)(nil)
)
