package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPricingBySKU(t *testing.T) {
	products := newStubProductRepo()
	seedProduct(products, "Widget", "SKU-400", 19.99, 21, 5)
	svc := NewPricingService(products, nil) // nil Redis — cache is best-effort

	resp, err := svc.BySKU(context.Background(), "SKU-400")
	require.NoError(t, err)
	assert.Equal(t, "Widget", resp.Name)
	assert.Equal(t, "19.99", resp.Price.String())
	assert.Equal(t, "21", resp.TaxRate.String())
}

func TestPricingBySKUUnknown(t *testing.T) {
	svc := NewPricingService(newStubProductRepo(), nil)
	_, err := svc.BySKU(context.Background(), "NOPE")
	assert.True(t, errors.Is(err, ErrProductNotFound))
}

func TestPricingBySKUInactive(t *testing.T) {
	products := newStubProductRepo()
	p := seedProduct(products, "Retired", "SKU-401", 5, 0, 0)
	p.Active = false
	svc := NewPricingService(products, nil)

	_, err := svc.BySKU(context.Background(), "SKU-401")
	assert.True(t, errors.Is(err, ErrProductNotFound))
}
