package service

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
)

// The external generator's output shape varies between runs: sometimes a bare
// array, sometimes an object wrapping the array under one of several
// conventional field names. Normalization happens once at the ingestion
// boundary; nothing past this file ever sees the raw document.

// RecommendationItem is the normalized, transient pipeline input. It is never
// persisted — only the resulting supplier orders and the AI action audit are.
type RecommendationItem struct {
	ProductID                string `json:"product_id"`
	ID                       string `json:"id"`
	CurrentStock             int    `json:"current_stock"`
	RecommendedOrderQuantity int    `json:"recommended_order_quantity"`
	Priority                 string `json:"priority"` // urgent | high | medium | low
	Reasoning                string `json:"reasoning"`
}

// knownArrayFields are checked first, in order, before falling back to the
// first array-valued property (by sorted key, for determinism).
var knownArrayFields = []string{"recommendations", "items", "products", "data"}

const defaultMinOrderQty = 10

// normalizeRecommendationDoc locates the recommendation array inside doc and
// applies field defaults: product_id falls back to id, and a missing order
// quantity becomes max(10, current_stock*2).
func normalizeRecommendationDoc(doc json.RawMessage) ([]RecommendationItem, error) {
	trimmed := bytes.TrimSpace(doc)
	if len(trimmed) == 0 {
		return nil, fmt.Errorf("empty recommendation document")
	}

	var arr json.RawMessage
	if trimmed[0] == '[' {
		arr = trimmed
	} else {
		var obj map[string]json.RawMessage
		if err := json.Unmarshal(trimmed, &obj); err != nil {
			return nil, fmt.Errorf("unparsable recommendation document: %w", err)
		}
		arr = findArrayField(obj)
		if arr == nil {
			return nil, fmt.Errorf("recommendation document contains no array field")
		}
	}

	var items []RecommendationItem
	if err := json.Unmarshal(arr, &items); err != nil {
		return nil, fmt.Errorf("unparsable recommendation items: %w", err)
	}

	normalized := items[:0]
	for _, it := range items {
		if it.ProductID == "" {
			it.ProductID = it.ID
		}
		if it.ProductID == "" {
			continue // nothing to order against
		}
		if it.RecommendedOrderQuantity <= 0 {
			it.RecommendedOrderQuantity = it.CurrentStock * 2
			if it.RecommendedOrderQuantity < defaultMinOrderQty {
				it.RecommendedOrderQuantity = defaultMinOrderQty
			}
		}
		normalized = append(normalized, it)
	}
	return normalized, nil
}

func findArrayField(obj map[string]json.RawMessage) json.RawMessage {
	for _, field := range knownArrayFields {
		if raw, ok := obj[field]; ok && isJSONArray(raw) {
			return raw
		}
	}
	keys := make([]string, 0, len(obj))
	for k := range obj {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if isJSONArray(obj[k]) {
			return obj[k]
		}
	}
	return nil
}

func isJSONArray(raw json.RawMessage) bool {
	trimmed := bytes.TrimSpace(raw)
	return len(trimmed) > 0 && trimmed[0] == '['
}

// ── Priority cascade ─────────────────────────────────────────────────────────
// An explicit ordered list of predicate tiers, evaluated in sequence; the
// first non-empty tier wins. Kept as pure logic, separate from any I/O.

const lowStockFloor = 5

type priorityTier struct {
	name  string
	match func(RecommendationItem) bool
}

var priorityCascade = []priorityTier{
	{"urgent_high", func(it RecommendationItem) bool {
		return it.Priority == "urgent" || it.Priority == "high"
	}},
	{"medium", func(it RecommendationItem) bool {
		return it.Priority == "medium"
	}},
	{"critical_stock", func(it RecommendationItem) bool {
		return it.CurrentStock < lowStockFloor
	}},
}

// selectByPriority returns the first non-empty tier and its name. An empty
// result means the pipeline ends with no orders created — not an error.
func selectByPriority(items []RecommendationItem) ([]RecommendationItem, string) {
	for _, tier := range priorityCascade {
		var matched []RecommendationItem
		for _, it := range items {
			if tier.match(it) {
				matched = append(matched, it)
			}
		}
		if len(matched) > 0 {
			return matched, tier.name
		}
	}
	return nil, ""
}
