// Package devutil trims catalog records down to the fields a caller asked
// for, addressed by their JSON names.
package devutil

import (
	"encoding/json"
	"strings"
)

// pick pasa v a map[string]any vía JSON y devuelve solo las keys pedidas.
func pick(v any, keys ...string) map[string]any {
	b, err := json.Marshal(v)
	if err != nil {
		return map[string]any{}
	}

	var m map[string]any
	if err := json.Unmarshal(b, &m); err != nil {
		return map[string]any{}
	}

	out := make(map[string]any, len(keys))
	for _, k := range keys {
		if val, ok := m[k]; ok {
			out[k] = val
		}
	}
	return out
}

// Pick returns the requested JSON fields of v. Unknown keys are dropped.
func Pick(v any, keys ...string) map[string]any {
	return pick(v, keys...)
}

// PickAll applies Pick to every item, keeping order.
func PickAll[T any](items []T, keys ...string) []map[string]any {
	out := make([]map[string]any, 0, len(items))
	for _, it := range items {
		out = append(out, pick(it, keys...))
	}
	return out
}

// ParseKeys splits a comma separated field list such as "id, title,price".
// Blank and repeated entries are skipped.
func ParseKeys(s string) []string {
	var keys []string
	seen := map[string]bool{}
	for _, k := range strings.Split(s, ",") {
		k = strings.TrimSpace(k)
		if k == "" || seen[k] {
			continue
		}
		seen[k] = true
		keys = append(keys, k)
	}
	return keys
}
