package service

import (
	"context"
	"errors"
	"testing"

	"github.com/kantman01/ai-stock-management-sub000/internal/model"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLedgerRecordReceipt(t *testing.T) {
	products := newStubProductRepo()
	movements := &stubMovementRepo{}
	svc := NewLedgerService(products, movements)
	p := seedProduct(products, "Widget", "SKU-001", 10, 0, 10)

	mov, err := svc.Record(context.Background(), p.ID, model.MovementReceipt, 5, "delivery", nil)
	require.NoError(t, err)

	assert.Equal(t, 5, mov.Quantity)
	assert.Equal(t, 10, mov.PreviousStock)
	assert.Equal(t, 15, mov.NewStock)
	assert.Equal(t, 15, products.products[p.ID].Stock)
}

func TestLedgerSignConvention(t *testing.T) {
	products := newStubProductRepo()
	movements := &stubMovementRepo{}
	svc := NewLedgerService(products, movements)
	p := seedProduct(products, "Widget", "SKU-002", 10, 0, 20)

	cases := []struct {
		kind     string
		quantity int
		want     int // expected signed delta
	}{
		{model.MovementReceipt, 3, 3},
		{model.MovementCustomerReturn, 2, 2},
		{model.MovementSale, 4, -4},
		{model.MovementSupplierReturn, 1, -1},
		{model.MovementWaste, 2, -2},
		{model.MovementAdjustment, -3, -3},
		{model.MovementAdjustment, 5, 5},
	}

	expected := 20
	for _, tc := range cases {
		mov, err := svc.Record(context.Background(), p.ID, tc.kind, tc.quantity, "", nil)
		require.NoError(t, err, "kind %s", tc.kind)
		assert.Equal(t, tc.want, mov.Quantity, "kind %s", tc.kind)
		expected += tc.want
		assert.Equal(t, expected, products.products[p.ID].Stock)
	}
}

// Folding the signed quantities over the ledger from the initial stock must
// reproduce the on-hand value, and each entry must chain previous → new.
func TestLedgerReplayInvariant(t *testing.T) {
	products := newStubProductRepo()
	movements := &stubMovementRepo{}
	svc := NewLedgerService(products, movements)
	p := seedProduct(products, "Widget", "SKU-003", 10, 0, 0)

	ctx := context.Background()
	_, err := svc.Record(ctx, p.ID, model.MovementReceipt, 30, "", nil)
	require.NoError(t, err)
	_, err = svc.Record(ctx, p.ID, model.MovementSale, 12, "", nil)
	require.NoError(t, err)
	_, err = svc.Record(ctx, p.ID, model.MovementAdjustment, -3, "shrinkage", nil)
	require.NoError(t, err)
	_, err = svc.Record(ctx, p.ID, model.MovementCustomerReturn, 2, "", nil)
	require.NoError(t, err)

	entries := movements.byProduct(p.ID)
	require.Len(t, entries, 4)

	replayed := 0
	for _, m := range entries {
		assert.Equal(t, replayed, m.PreviousStock)
		replayed += m.Quantity
		assert.Equal(t, replayed, m.NewStock)
	}
	assert.Equal(t, products.products[p.ID].Stock, replayed)
}

func TestLedgerRejectsNegativeResult(t *testing.T) {
	products := newStubProductRepo()
	movements := &stubMovementRepo{}
	svc := NewLedgerService(products, movements)
	p := seedProduct(products, "Widget", "SKU-004", 10, 0, 10)

	_, err := svc.Record(context.Background(), p.ID, model.MovementWaste, 20, "", nil)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInsufficientStock))

	// Nothing applied, nothing written.
	assert.Equal(t, 10, products.products[p.ID].Stock)
	assert.Empty(t, movements.movements)
}

func TestLedgerRejectsInvalidInput(t *testing.T) {
	products := newStubProductRepo()
	movements := &stubMovementRepo{}
	svc := NewLedgerService(products, movements)
	p := seedProduct(products, "Widget", "SKU-005", 10, 0, 10)

	ctx := context.Background()

	_, err := svc.Record(ctx, p.ID, model.MovementReceipt, -5, "", nil)
	assert.True(t, errors.Is(err, ErrValidation), "negative magnitude for directional kind")

	_, err = svc.Record(ctx, p.ID, model.MovementAdjustment, 0, "", nil)
	assert.True(t, errors.Is(err, ErrValidation), "zero adjustment")

	_, err = svc.Record(ctx, p.ID, "teleport", 1, "", nil)
	assert.True(t, errors.Is(err, ErrValidation), "unknown kind")

	_, err = svc.Record(ctx, uuid.New(), model.MovementReceipt, 1, "", nil)
	assert.True(t, errors.Is(err, ErrProductNotFound))
}
