// Copyright (c) 2026 Velora. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package convert provides fault-tolerant string conversions for query
parameter parsing.

Storefront URLs carry user-editable filter values; handlers want a usable
number out of whatever arrives, never a parse error. Zero (or the caller's
default) stands in for anything malformed.

Do not use this package if distinguishing between malformed data and zero
values matters; use [strconv] directly there.
*/
package convert

import (
	"strconv"
)

// ToIntD converts a string to an int, returning the provided default if
// parsing fails or the string is empty.
func ToIntD(str string, def int) int {

	if str == "" {
		return def
	}

	if v, err := strconv.Atoi(str); err == nil {
		return v
	}

	return def
}

// ToFloat64 converts a string to a float64, swallowing errors.
// It returns 0 if the string is empty or cannot be parsed.
func ToFloat64(s string) float64 {

	if s == "" {
		return 0
	}

	v, _ := strconv.ParseFloat(s, 64)
	return v
}
