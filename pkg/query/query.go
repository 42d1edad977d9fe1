// Package query parses delimited list values arriving through URL query
// strings or environment variables.
package query

import (
	"strings"
)

// StringSlice parses a single comma-separated value into a trimmed slice of
// strings. Empty entries are dropped; an empty input yields nil.
func StringSlice(val string) []string {
	if val == "" {
		return nil
	}
	var res []string
	for _, v := range strings.Split(val, ",") {
		clean := strings.TrimSpace(v)
		if clean != "" {
			res = append(res, clean)
		}
	}
	return res
}
