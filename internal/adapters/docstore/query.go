package docstore

import (
	"encoding/json"
	"reflect"
	"sort"
	"strings"
	"time"
)

type listOptions struct {
	where []whereClause
	order string
	desc  bool
	limit int
}

type whereClause struct {
	field string
	value any
}

// ListOption shapes a List call.
type ListOption func(*listOptions)

// OrderBy sorts by a top-level field. Documents missing the field sort
// last in both directions; ties fall back to id ascending.
func OrderBy(field string, desc bool) ListOption {
	return func(o *listOptions) {
		o.order = field
		o.desc = desc
	}
}

// WhereEqual keeps documents whose top-level field equals value.
func WhereEqual(field string, value any) ListOption {
	return func(o *listOptions) {
		o.where = append(o.where, whereClause{field: field, value: normalizeValue(value)})
	}
}

// Limit caps the number of documents returned. n <= 0 means no limit.
func Limit(n int) ListOption {
	return func(o *listOptions) {
		o.limit = n
	}
}

// normalizeValue round-trips v through JSON so it compares equal to decoded
// document fields.
func normalizeValue(v any) any {
	raw, err := json.Marshal(v)
	if err != nil {
		return v
	}
	var out any
	if err := json.Unmarshal(raw, &out); err != nil {
		return v
	}
	return out
}

func fieldOf(d Document, field string) (any, bool) {
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(d.Data, &obj); err != nil {
		return nil, false
	}
	raw, ok := obj[field]
	if !ok {
		return nil, false
	}
	var v any
	if err := json.Unmarshal(raw, &v); err != nil || v == nil {
		return nil, false
	}
	return v, true
}

func applyListOptions(docs []Document, opts []ListOption) ([]Document, error) {
	var o listOptions
	for _, opt := range opts {
		opt(&o)
	}

	if len(o.where) > 0 {
		kept := docs[:0]
		for _, d := range docs {
			if matches(d, o.where) {
				kept = append(kept, d)
			}
		}
		docs = kept
	}

	if o.order != "" {
		keys := make([]any, len(docs))
		present := make([]bool, len(docs))
		for i, d := range docs {
			keys[i], present[i] = fieldOf(d, o.order)
		}
		idx := make([]int, len(docs))
		for i := range idx {
			idx[i] = i
		}
		sort.SliceStable(idx, func(a, b int) bool {
			i, j := idx[a], idx[b]
			if present[i] != present[j] {
				return present[i]
			}
			if present[i] {
				if c := compareValues(keys[i], keys[j]); c != 0 {
					if o.desc {
						return c > 0
					}
					return c < 0
				}
			}
			return docs[i].ID < docs[j].ID
		})
		sorted := make([]Document, len(docs))
		for k, i := range idx {
			sorted[k] = docs[i]
		}
		docs = sorted
	}

	if o.limit > 0 && len(docs) > o.limit {
		docs = docs[:o.limit]
	}
	return docs, nil
}

func matches(d Document, where []whereClause) bool {
	for _, w := range where {
		v, ok := fieldOf(d, w.field)
		if !ok || !reflect.DeepEqual(v, w.value) {
			return false
		}
	}
	return true
}

// compareValues orders numbers, timestamps, strings and bools; mixed types order by
// type name.
func compareValues(a, b any) int {
	switch x := a.(type) {
	case float64:
		if y, ok := b.(float64); ok {
			switch {
			case x < y:
				return -1
			case x > y:
				return 1
			}
			return 0
		}
	case string:
		if y, ok := b.(string); ok {
			// Timestamps drop trailing zeros, so compare them as times.
			if tx, err := time.Parse(time.RFC3339Nano, x); err == nil {
				if ty, err := time.Parse(time.RFC3339Nano, y); err == nil {
					return tx.Compare(ty)
				}
			}
			return strings.Compare(x, y)
		}
	case bool:
		if y, ok := b.(bool); ok {
			switch {
			case x == y:
				return 0
			case !x:
				return -1
			}
			return 1
		}
	}
	return strings.Compare(reflect.TypeOf(a).String(), reflect.TypeOf(b).String())
}
