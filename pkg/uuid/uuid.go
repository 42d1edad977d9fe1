// Copyright (c) 2026 Velora. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package uuid provides time-ordered unique identifiers for the gateway.

It wraps the standard UUID library to specifically generate Version 7 values.

Advantages:

  - Sortable: Naturally ordered by creation time (millisecond precision).
  - Friendly: Session and request IDs cluster by time in Redis key scans
    and log searches.
  - Compact: 128-bit, compatible with standard 'uuid' tooling.

Session cookies and request correlation IDs both use this generator.
*/
package uuid

import "github.com/google/uuid"

// # Generators

// New generates a new UUIDv7 string.
//
// Falls back to a random UUIDv4 if the monotonic clock source misbehaves;
// an ID must always come back.
func New() string {

	id, err := uuid.NewV7()
	if err != nil {
		return uuid.New().String()
	}

	return id.String()
}
