// Package normalize resolves loosely named spreadsheet columns to canonical
// fields and cleans operator-typed event name strings.
package normalize

import (
	"sort"
	"strings"
	"unicode"
)

// Row is one record keyed by raw header text.
type Row map[string]string

// Lookup returns the first non-empty value for the given aliases.
//
// Each alias is tried in order against the row keys, first by exact match,
// then case-insensitively, then case-insensitively with all whitespace
// removed. Keys are visited in sorted order so ties resolve the same way on
// every call. Returns "" when nothing matches.
func Lookup(row Row, aliases ...string) string {
	if len(row) == 0 || len(aliases) == 0 {
		return ""
	}
	keys := make([]string, 0, len(row))
	for k := range row {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, alias := range aliases {
		if v := strings.TrimSpace(row[alias]); v != "" {
			return v
		}
		for _, k := range keys {
			if strings.EqualFold(k, alias) {
				if v := strings.TrimSpace(row[k]); v != "" {
					return v
				}
			}
		}
		squashed := stripSpace(alias)
		if squashed == "" {
			continue
		}
		for _, k := range keys {
			if strings.EqualFold(stripSpace(k), squashed) {
				if v := strings.TrimSpace(row[k]); v != "" {
					return v
				}
			}
		}
	}
	return ""
}

func stripSpace(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, s)
}
