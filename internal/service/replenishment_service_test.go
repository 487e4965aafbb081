package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"testing"

	"github.com/kantman01/ai-stock-management-sub000/internal/dto"
	"github.com/kantman01/ai-stock-management-sub000/internal/model"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type replenishmentFixture struct {
	orders    *stubSupplierOrderRepo
	products  *stubProductRepo
	actions   *stubActionRepo
	generator *stubGenerator
	notifier  *stubNotifier
	svc       ReplenishmentService
}

func newReplenishmentFixture() *replenishmentFixture {
	f := &replenishmentFixture{
		orders:    newStubSupplierOrderRepo(),
		products:  newStubProductRepo(),
		actions:   &stubActionRepo{},
		generator: &stubGenerator{},
		notifier:  &stubNotifier{},
	}
	f.svc = NewReplenishmentService(f.orders, f.products, f.actions, f.generator, f.notifier)
	return f
}

func (f *replenishmentFixture) seedSupplied(name, sku string, price float64, stock int, supplierID uuid.UUID) *model.Product {
	p := seedProduct(f.products, name, sku, price, 0, stock)
	p.SupplierID = &supplierID
	return p
}

func urgentItem(productID uuid.UUID, qty int) string {
	return fmt.Sprintf(`{"product_id": %q, "priority": "urgent", "recommended_order_quantity": %d}`, productID, qty)
}

func TestRunGroupsBySupplier(t *testing.T) {
	f := newReplenishmentFixture()
	supplierA := uuid.New()
	supplierB := uuid.New()
	p1 := f.seedSupplied("Widget", "SKU-300", 10, 1, supplierA)
	p2 := f.seedSupplied("Gadget", "SKU-301", 20, 1, supplierA)
	p3 := f.seedSupplied("Gizmo", "SKU-302", 5, 1, supplierB)

	doc := json.RawMessage(`{"recommendations": [` +
		urgentItem(p1.ID, 10) + `,` + urgentItem(p2.ID, 5) + `,` + urgentItem(p3.ID, 8) + `]}`)

	resp, err := f.svc.Run(context.Background(), doc, dto.RunContext{Season: "winter"})
	require.NoError(t, err)
	require.Len(t, resp.Orders, 2, "one purchase order per supplier")
	assert.Empty(t, resp.Errors)

	totalsBySupplier := make(map[string]string)
	for _, o := range resp.Orders {
		assert.Equal(t, model.SupplierOrderPending, o.Status)
		assert.True(t, o.AutoGenerated)
		totalsBySupplier[o.SupplierID] = o.TotalAmount.String()
	}
	// supplier A: 10*10 + 5*20 = 200; supplier B: 8*5 = 40
	assert.Equal(t, "200", totalsBySupplier[supplierA.String()])
	assert.Equal(t, "40", totalsBySupplier[supplierB.String()])

	// One audit entry per emitted order, carrying the run context.
	require.Len(t, f.actions.actions, 2)
	var audit map[string]interface{}
	require.NoError(t, json.Unmarshal(f.actions.actions[0].ActionData, &audit))
	assert.Equal(t, "winter", audit["season"])
	assert.Equal(t, "replenishment_order", f.actions.actions[0].ActionType)

	events := f.notifier.eventNames()
	assert.Equal(t, []string{"supplier_order.created", "supplier_order.created"}, events)
}

func TestRunDropsItemsWithoutSupplier(t *testing.T) {
	f := newReplenishmentFixture()
	orphan := seedProduct(f.products, "Orphan", "SKU-303", 10, 0, 1) // no supplier

	doc := json.RawMessage(`[` + urgentItem(orphan.ID, 10) + `,` + urgentItem(uuid.New(), 5) + `]`)

	resp, err := f.svc.Run(context.Background(), doc, dto.RunContext{})
	require.NoError(t, err)
	assert.Empty(t, resp.Orders)
	assert.Empty(t, f.orders.orders)
}

func TestRunUnparsableDocument(t *testing.T) {
	f := newReplenishmentFixture()
	_, err := f.svc.Run(context.Background(), json.RawMessage(`not json`), dto.RunContext{})
	assert.True(t, errors.Is(err, ErrRecommendationUnavailable))
}

func TestRunNoTierMatched(t *testing.T) {
	f := newReplenishmentFixture()
	supplierA := uuid.New()
	p := f.seedSupplied("Widget", "SKU-304", 10, 50, supplierA)

	doc := json.RawMessage(`[{"product_id": "` + p.ID.String() + `", "priority": "low", "current_stock": 50, "recommended_order_quantity": 5}]`)

	resp, err := f.svc.Run(context.Background(), doc, dto.RunContext{})
	require.NoError(t, err)
	assert.Empty(t, resp.Orders)
	assert.Empty(t, f.orders.orders)
}

func TestRunFromGeneratorHappyPath(t *testing.T) {
	f := newReplenishmentFixture()
	supplierA := uuid.New()
	low := f.seedSupplied("Low", "SKU-305", 10, 2, supplierA) // stock 2 <= min 5

	f.generator.doc = json.RawMessage(`[` + urgentItem(low.ID, 20) + `]`)

	resp, err := f.svc.RunFromGenerator(context.Background(), "sweep", dto.RunContext{})
	require.NoError(t, err)
	assert.Equal(t, 1, f.generator.calls)
	require.Len(t, resp.Orders, 1)
	assert.Equal(t, "200", resp.Orders[0].TotalAmount.String())
}

func TestRunFromGeneratorSkipsWhenNothingLow(t *testing.T) {
	f := newReplenishmentFixture()
	supplierA := uuid.New()
	f.seedSupplied("Plenty", "SKU-306", 10, 99, supplierA)

	resp, err := f.svc.RunFromGenerator(context.Background(), "sweep", dto.RunContext{})
	require.NoError(t, err)
	assert.Empty(t, resp.Orders)
	assert.Equal(t, 0, f.generator.calls, "no snapshot, no generator call")
}

func TestRunFromGeneratorUnavailable(t *testing.T) {
	f := newReplenishmentFixture()
	supplierA := uuid.New()
	f.seedSupplied("Low", "SKU-307", 10, 0, supplierA)
	f.generator.err = errors.New("sidecar unreachable")

	_, err := f.svc.RunFromGenerator(context.Background(), "order_approved", dto.RunContext{})
	assert.True(t, errors.Is(err, ErrRecommendationUnavailable))
	assert.Empty(t, f.orders.orders)
}
