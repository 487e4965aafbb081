package service

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeBareArray(t *testing.T) {
	doc := json.RawMessage(`[
		{"product_id": "p1", "current_stock": 2, "recommended_order_quantity": 30, "priority": "urgent"},
		{"product_id": "p2", "current_stock": 8, "recommended_order_quantity": 12, "priority": "low"}
	]`)

	items, err := normalizeRecommendationDoc(doc)
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, "p1", items[0].ProductID)
	assert.Equal(t, 30, items[0].RecommendedOrderQuantity)
}

func TestNormalizeWrappedUnderKnownField(t *testing.T) {
	for _, field := range []string{"recommendations", "items", "products", "data"} {
		doc := json.RawMessage(`{"` + field + `": [{"product_id": "p1", "recommended_order_quantity": 5}]}`)
		items, err := normalizeRecommendationDoc(doc)
		require.NoError(t, err, "field %s", field)
		require.Len(t, items, 1, "field %s", field)
	}
}

func TestNormalizePrefersKnownFieldOverOthers(t *testing.T) {
	// "aaa" sorts before "recommendations" but the known field wins.
	doc := json.RawMessage(`{
		"aaa": [{"product_id": "wrong", "recommended_order_quantity": 1}],
		"recommendations": [{"product_id": "right", "recommended_order_quantity": 1}]
	}`)
	items, err := normalizeRecommendationDoc(doc)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "right", items[0].ProductID)
}

func TestNormalizeFallsBackToFirstArrayField(t *testing.T) {
	doc := json.RawMessage(`{
		"meta": {"model": "v2"},
		"suggestions": [{"product_id": "p1", "recommended_order_quantity": 7}]
	}`)
	items, err := normalizeRecommendationDoc(doc)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "p1", items[0].ProductID)
}

func TestNormalizeDefaults(t *testing.T) {
	doc := json.RawMessage(`[
		{"id": "fallback-id", "current_stock": 20},
		{"product_id": "small", "current_stock": 2},
		{"current_stock": 9}
	]`)

	items, err := normalizeRecommendationDoc(doc)
	require.NoError(t, err)
	require.Len(t, items, 2, "item with neither id is dropped")

	// product_id falls back to id; missing quantity becomes max(10, stock*2).
	assert.Equal(t, "fallback-id", items[0].ProductID)
	assert.Equal(t, 40, items[0].RecommendedOrderQuantity)
	assert.Equal(t, 10, items[1].RecommendedOrderQuantity)
}

func TestNormalizeRejectsGarbage(t *testing.T) {
	cases := map[string]json.RawMessage{
		"empty":        json.RawMessage(``),
		"not json":     json.RawMessage(`hello`),
		"no array":     json.RawMessage(`{"note": "nothing to see"}`),
		"array of int": json.RawMessage(`[1, 2, 3]`),
	}
	for name, doc := range cases {
		_, err := normalizeRecommendationDoc(doc)
		assert.Error(t, err, name)
	}
}

func TestPriorityCascadeUrgentHighWins(t *testing.T) {
	items := []RecommendationItem{
		{ProductID: "a", Priority: "urgent"},
		{ProductID: "b", Priority: "medium"},
		{ProductID: "c", Priority: "high"},
		{ProductID: "d", Priority: "low", CurrentStock: 1},
	}
	selected, tier := selectByPriority(items)
	assert.Equal(t, "urgent_high", tier)
	require.Len(t, selected, 2)
	assert.Equal(t, "a", selected[0].ProductID)
	assert.Equal(t, "c", selected[1].ProductID)
}

func TestPriorityCascadeMediumTier(t *testing.T) {
	items := []RecommendationItem{
		{ProductID: "a", Priority: "medium"},
		{ProductID: "b", Priority: "low", CurrentStock: 0},
	}
	selected, tier := selectByPriority(items)
	assert.Equal(t, "medium", tier)
	require.Len(t, selected, 1)
	assert.Equal(t, "a", selected[0].ProductID)
}

func TestPriorityCascadeCriticalStockFallback(t *testing.T) {
	items := []RecommendationItem{
		{ProductID: "a", Priority: "low", CurrentStock: 3},
		{ProductID: "b", Priority: "low", CurrentStock: 50},
	}
	selected, tier := selectByPriority(items)
	assert.Equal(t, "critical_stock", tier)
	require.Len(t, selected, 1)
	assert.Equal(t, "a", selected[0].ProductID)
}

func TestPriorityCascadeNothingMatches(t *testing.T) {
	items := []RecommendationItem{
		{ProductID: "a", Priority: "low", CurrentStock: 50},
	}
	selected, tier := selectByPriority(items)
	assert.Empty(t, selected)
	assert.Equal(t, "", tier)
}
