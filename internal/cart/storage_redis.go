// Copyright (c) 2026 Velora. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package cart

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/taibuivan/velora/internal/platform/constants"
)

// RedisStorage persists a session's cart and wishlist in Redis.
//
// # Keyspace
//
// One pair of keys per storefront session:
//
//	shop:cart:<session-id>     → JSON array of line items
//	shop:wishlist:<session-id> → JSON array of product IDs
//
// Entries expire alongside the session cookie, so abandoned carts age out on
// their own.
type RedisStorage struct {
	client    *redis.Client
	sessionID string
}

// NewRedisStorage creates Redis-backed [Storage] scoped to one session.
func NewRedisStorage(client *redis.Client, sessionID string) *RedisStorage {
	return &RedisStorage{client: client, sessionID: sessionID}
}

/*
ReadCart loads the session's line items.

Description: A missing key reads back as an empty cart, never an error.
*/
func (storage *RedisStorage) ReadCart(context context.Context) ([]Item, error) {

	raw, err := storage.client.Get(context, constants.RedisPrefixCart+storage.sessionID).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("redis_cart_read_failed: %w", err)
	}

	var items []Item
	if err := json.Unmarshal([]byte(raw), &items); err != nil {
		return nil, fmt.Errorf("redis_cart_decode_failed: %w", err)
	}

	return items, nil
}

/*
WriteCart replaces the session's line items, refreshing the TTL.
*/
func (storage *RedisStorage) WriteCart(context context.Context, items []Item) error {

	encoded, err := json.Marshal(items)
	if err != nil {
		return fmt.Errorf("redis_cart_encode_failed: %w", err)
	}

	key := constants.RedisPrefixCart + storage.sessionID
	if err := storage.client.Set(context, key, encoded, constants.SessionCookieMaxAge).Err(); err != nil {
		return fmt.Errorf("redis_cart_write_failed: %w", err)
	}

	return nil
}

/*
ReadWishlist loads the session's wishlisted product IDs.
*/
func (storage *RedisStorage) ReadWishlist(context context.Context) ([]string, error) {

	raw, err := storage.client.Get(context, constants.RedisPrefixWishlist+storage.sessionID).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("redis_wishlist_read_failed: %w", err)
	}

	var productIDs []string
	if err := json.Unmarshal([]byte(raw), &productIDs); err != nil {
		return nil, fmt.Errorf("redis_wishlist_decode_failed: %w", err)
	}

	return productIDs, nil
}

/*
WriteWishlist replaces the session's wishlist, refreshing the TTL.
*/
func (storage *RedisStorage) WriteWishlist(context context.Context, productIDs []string) error {

	encoded, err := json.Marshal(productIDs)
	if err != nil {
		return fmt.Errorf("redis_wishlist_encode_failed: %w", err)
	}

	key := constants.RedisPrefixWishlist + storage.sessionID
	if err := storage.client.Set(context, key, encoded, constants.SessionCookieMaxAge).Err(); err != nil {
		return fmt.Errorf("redis_wishlist_write_failed: %w", err)
	}

	return nil
}
