package service

import (
	"context"
	"encoding/json"
	"errors"
	"sync"

	"github.com/kantman01/ai-stock-management-sub000/internal/dto"
	"github.com/kantman01/ai-stock-management-sub000/internal/model"
	"github.com/kantman01/ai-stock-management-sub000/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// ── In-memory ProductRepository stub ─────────────────────────────────────────

type stubProductRepo struct {
	products map[uuid.UUID]*model.Product
}

func newStubProductRepo() *stubProductRepo {
	return &stubProductRepo{products: make(map[uuid.UUID]*model.Product)}
}

func (r *stubProductRepo) Create(_ context.Context, p *model.Product) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	r.products[p.ID] = p
	return nil
}

func (r *stubProductRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Product, error) {
	p, ok := r.products[id]
	if !ok {
		return nil, errors.New("record not found")
	}
	return p, nil
}

func (r *stubProductRepo) FindBySKU(_ context.Context, sku string) (*model.Product, error) {
	for _, p := range r.products {
		if p.SKU == sku && p.Active {
			return p, nil
		}
	}
	return nil, errors.New("record not found")
}

func (r *stubProductRepo) ListLowStock(_ context.Context) ([]model.Product, error) {
	var result []model.Product
	for _, p := range r.products {
		if p.Active && p.Stock <= p.MinStock {
			result = append(result, *p)
		}
	}
	return result, nil
}

func (r *stubProductRepo) FindForUpdateTx(_ *gorm.DB, id uuid.UUID) (*model.Product, error) {
	// The real repository scans the row into a fresh struct, so callers see a
	// snapshot that later UpdateStockTx calls do not mutate. Return a copy to
	// match that.
	p, err := r.FindByID(context.Background(), id)
	if err != nil {
		return nil, err
	}
	c := *p
	return &c, nil
}

func (r *stubProductRepo) UpdateStockTx(_ *gorm.DB, id uuid.UUID, delta int) error {
	p, ok := r.products[id]
	if !ok {
		return errors.New("record not found")
	}
	p.Stock += delta
	return nil
}

func (r *stubProductRepo) DB() *gorm.DB { return nil }

var _ repository.ProductRepository = (*stubProductRepo)(nil)

// ── In-memory StockMovementRepository stub ───────────────────────────────────

type stubMovementRepo struct {
	movements []model.StockMovement
}

func (r *stubMovementRepo) CreateTx(_ *gorm.DB, m *model.StockMovement) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	r.movements = append(r.movements, *m)
	return nil
}

func (r *stubMovementRepo) List(_ context.Context, filter repository.StockMovementFilter) ([]model.StockMovement, int64, error) {
	var result []model.StockMovement
	for _, m := range r.movements {
		if filter.ProductID != nil && m.ProductID != *filter.ProductID {
			continue
		}
		if filter.Kind != "" && m.Kind != filter.Kind {
			continue
		}
		result = append(result, m)
	}
	return result, int64(len(result)), nil
}

func (r *stubMovementRepo) byProduct(id uuid.UUID) []model.StockMovement {
	var result []model.StockMovement
	for _, m := range r.movements {
		if m.ProductID == id {
			result = append(result, m)
		}
	}
	return result
}

var _ repository.StockMovementRepository = (*stubMovementRepo)(nil)

// failingMovementRepo fails the Nth ledger append. The stub stores have no
// real transaction to roll back, so the injected failure also restores the
// captured pre-transaction state, standing in for the rollback the database
// performs.
type failingMovementRepo struct {
	*stubMovementRepo
	failOn   int // 1-based append that fails
	calls    int
	rollback func()
}

func (r *failingMovementRepo) CreateTx(tx *gorm.DB, m *model.StockMovement) error {
	r.calls++
	if r.calls == r.failOn {
		if r.rollback != nil {
			r.rollback()
		}
		return errors.New("write failed")
	}
	return r.stubMovementRepo.CreateTx(tx, m)
}

var _ repository.StockMovementRepository = (*failingMovementRepo)(nil)

func snapshotStores(orders *stubOrderRepo, products *stubProductRepo, movements *stubMovementRepo) func() {
	savedOrders := make(map[uuid.UUID]*model.Order, len(orders.orders))
	for id, o := range orders.orders {
		c := *o
		savedOrders[id] = &c
	}
	savedStock := make(map[uuid.UUID]int, len(products.products))
	for id, p := range products.products {
		savedStock[id] = p.Stock
	}
	savedMovements := append([]model.StockMovement(nil), movements.movements...)
	return func() {
		orders.orders = savedOrders
		for id, stock := range savedStock {
			products.products[id].Stock = stock
		}
		movements.movements = savedMovements
	}
}

// ── In-memory OrderRepository stub ───────────────────────────────────────────

type stubOrderRepo struct {
	orders map[uuid.UUID]*model.Order
}

func newStubOrderRepo() *stubOrderRepo {
	return &stubOrderRepo{orders: make(map[uuid.UUID]*model.Order)}
}

func (r *stubOrderRepo) Create(_ context.Context, _ *gorm.DB, o *model.Order) error {
	if o.ID == uuid.Nil {
		o.ID = uuid.New()
	}
	for i := range o.Items {
		if o.Items[i].ID == uuid.Nil {
			o.Items[i].ID = uuid.New()
		}
		o.Items[i].OrderID = o.ID
	}
	r.orders[o.ID] = o
	return nil
}

func (r *stubOrderRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Order, error) {
	o, ok := r.orders[id]
	if !ok {
		return nil, errors.New("record not found")
	}
	return o, nil
}

func (r *stubOrderRepo) FindForUpdateTx(_ *gorm.DB, id uuid.UUID) (*model.Order, error) {
	return r.FindByID(context.Background(), id)
}

func (r *stubOrderRepo) UpdateStatusTx(_ *gorm.DB, id uuid.UUID, status string) error {
	o, ok := r.orders[id]
	if !ok {
		return errors.New("record not found")
	}
	o.Status = status
	return nil
}

func (r *stubOrderRepo) List(_ context.Context, filter dto.OrderFilter) ([]model.Order, int64, error) {
	var result []model.Order
	for _, o := range r.orders {
		if filter.Status != "" && filter.Status != "all" && o.Status != filter.Status {
			continue
		}
		result = append(result, *o)
	}
	return result, int64(len(result)), nil
}

func (r *stubOrderRepo) DB() *gorm.DB { return nil }

var _ repository.OrderRepository = (*stubOrderRepo)(nil)

// staleOrderRepo reports a stale status from the unlocked read while the
// locked read sees the live row, mimicking a concurrent writer committing
// between the two.
type staleOrderRepo struct {
	*stubOrderRepo
	staleStatus map[uuid.UUID]string
}

func (r *staleOrderRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Order, error) {
	o, err := r.stubOrderRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if s, ok := r.staleStatus[id]; ok {
		stale := *o
		stale.Status = s
		return &stale, nil
	}
	return o, nil
}

var _ repository.OrderRepository = (*staleOrderRepo)(nil)

// ── In-memory SupplierOrderRepository stub ───────────────────────────────────

type stubSupplierOrderRepo struct {
	orders map[uuid.UUID]*model.SupplierOrder
}

func newStubSupplierOrderRepo() *stubSupplierOrderRepo {
	return &stubSupplierOrderRepo{orders: make(map[uuid.UUID]*model.SupplierOrder)}
}

func (r *stubSupplierOrderRepo) CreateTx(_ *gorm.DB, o *model.SupplierOrder) error {
	if o.ID == uuid.Nil {
		o.ID = uuid.New()
	}
	for i := range o.Items {
		if o.Items[i].ID == uuid.Nil {
			o.Items[i].ID = uuid.New()
		}
		o.Items[i].SupplierOrderID = o.ID
	}
	r.orders[o.ID] = o
	return nil
}

func (r *stubSupplierOrderRepo) FindByID(_ context.Context, id uuid.UUID) (*model.SupplierOrder, error) {
	o, ok := r.orders[id]
	if !ok {
		return nil, errors.New("record not found")
	}
	return o, nil
}

func (r *stubSupplierOrderRepo) FindForUpdateTx(_ *gorm.DB, id uuid.UUID) (*model.SupplierOrder, error) {
	return r.FindByID(context.Background(), id)
}

func (r *stubSupplierOrderRepo) UpdateStatusTx(_ *gorm.DB, id uuid.UUID, status string) error {
	o, ok := r.orders[id]
	if !ok {
		return errors.New("record not found")
	}
	o.Status = status
	return nil
}

func (r *stubSupplierOrderRepo) UpdateItemTx(_ *gorm.DB, item *model.SupplierOrderItem) error {
	o, ok := r.orders[item.SupplierOrderID]
	if !ok {
		return errors.New("record not found")
	}
	for i := range o.Items {
		if o.Items[i].ID == item.ID {
			o.Items[i].Quantity = item.Quantity
			o.Items[i].LineTotal = item.LineTotal
			return nil
		}
	}
	return errors.New("item not found")
}

func (r *stubSupplierOrderRepo) UpdateTotalTx(_ *gorm.DB, id uuid.UUID, total decimal.Decimal) error {
	o, ok := r.orders[id]
	if !ok {
		return errors.New("record not found")
	}
	o.TotalAmount = total
	return nil
}

func (r *stubSupplierOrderRepo) ListShippedByProduct(_ context.Context, productID uuid.UUID) ([]model.SupplierOrder, error) {
	var result []model.SupplierOrder
	for _, o := range r.orders {
		if o.Status != model.SupplierOrderShipped {
			continue
		}
		for _, item := range o.Items {
			if item.ProductID == productID {
				result = append(result, *o)
				break
			}
		}
	}
	return result, nil
}

func (r *stubSupplierOrderRepo) List(_ context.Context, filter dto.SupplierOrderFilter) ([]model.SupplierOrder, int64, error) {
	var result []model.SupplierOrder
	for _, o := range r.orders {
		if filter.Status != "" && filter.Status != "all" && o.Status != filter.Status {
			continue
		}
		result = append(result, *o)
	}
	return result, int64(len(result)), nil
}

func (r *stubSupplierOrderRepo) DB() *gorm.DB { return nil }

var _ repository.SupplierOrderRepository = (*stubSupplierOrderRepo)(nil)

// ── In-memory SupplierRepository / SupplierStockRepository stubs ─────────────

type stubSupplierRepo struct {
	suppliers map[uuid.UUID]*model.Supplier
}

func newStubSupplierRepo() *stubSupplierRepo {
	return &stubSupplierRepo{suppliers: make(map[uuid.UUID]*model.Supplier)}
}

func (r *stubSupplierRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Supplier, error) {
	s, ok := r.suppliers[id]
	if !ok {
		return nil, errors.New("record not found")
	}
	return s, nil
}

var _ repository.SupplierRepository = (*stubSupplierRepo)(nil)

type stockKey struct{ supplier, product uuid.UUID }

type stubSupplierStockRepo struct {
	stock map[stockKey]*model.SupplierStock
}

func newStubSupplierStockRepo() *stubSupplierStockRepo {
	return &stubSupplierStockRepo{stock: make(map[stockKey]*model.SupplierStock)}
}

func (r *stubSupplierStockRepo) seed(supplierID, productID uuid.UUID, qty int) {
	r.stock[stockKey{supplierID, productID}] = &model.SupplierStock{
		ID: uuid.New(), SupplierID: supplierID, ProductID: productID, Quantity: qty,
	}
}

func (r *stubSupplierStockRepo) Get(_ context.Context, supplierID, productID uuid.UUID) (*model.SupplierStock, error) {
	s, ok := r.stock[stockKey{supplierID, productID}]
	if !ok {
		return nil, errors.New("record not found")
	}
	return s, nil
}

func (r *stubSupplierStockRepo) Upsert(_ context.Context, s *model.SupplierStock) error {
	r.stock[stockKey{s.SupplierID, s.ProductID}] = s
	return nil
}

func (r *stubSupplierStockRepo) FindForUpdateTx(_ *gorm.DB, supplierID, productID uuid.UUID) (*model.SupplierStock, error) {
	return r.Get(context.Background(), supplierID, productID)
}

func (r *stubSupplierStockRepo) DecrementTx(_ *gorm.DB, supplierID, productID uuid.UUID, qty int) error {
	s, ok := r.stock[stockKey{supplierID, productID}]
	if !ok {
		return errors.New("record not found")
	}
	s.Quantity -= qty
	return nil
}

var _ repository.SupplierStockRepository = (*stubSupplierStockRepo)(nil)

// ── In-memory AIActionRepository stub ────────────────────────────────────────

type stubActionRepo struct {
	actions []model.AIAction
}

func (r *stubActionRepo) CreateTx(_ *gorm.DB, a *model.AIAction) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	r.actions = append(r.actions, *a)
	return nil
}

func (r *stubActionRepo) List(_ context.Context, _ int) ([]model.AIAction, error) {
	return r.actions, nil
}

var _ repository.AIActionRepository = (*stubActionRepo)(nil)

// ── Side-effect stubs ────────────────────────────────────────────────────────

type recordedEvent struct {
	event   string
	payload interface{}
}

type stubNotifier struct {
	mu     sync.Mutex
	events []recordedEvent
}

func (n *stubNotifier) Notify(_ context.Context, event string, payload interface{}) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events = append(n.events, recordedEvent{event: event, payload: payload})
}

func (n *stubNotifier) eventNames() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	names := make([]string, 0, len(n.events))
	for _, e := range n.events {
		names = append(names, e.event)
	}
	return names
}

type stubTrigger struct {
	orderIDs []uuid.UUID
}

func (t *stubTrigger) TriggerReplenishment(_ context.Context, orderID uuid.UUID) {
	t.orderIDs = append(t.orderIDs, orderID)
}

type stubGenerator struct {
	doc   json.RawMessage
	err   error
	calls int
}

func (g *stubGenerator) Analyze(_ context.Context, _ string, _ interface{}) (json.RawMessage, error) {
	g.calls++
	if g.err != nil {
		return nil, g.err
	}
	return g.doc, nil
}

// ── Seed helpers ─────────────────────────────────────────────────────────────

func decimalFromInt(n int) decimal.Decimal { return decimal.NewFromInt(int64(n)) }

func seedProduct(repo *stubProductRepo, name, sku string, price float64, taxRate float64, stock int) *model.Product {
	p := &model.Product{
		ID:         uuid.New(),
		SKU:        sku,
		Name:       name,
		Price:      decimal.NewFromFloat(price),
		Cost:       decimal.NewFromFloat(price * 0.6),
		TaxRate:    decimal.NewFromFloat(taxRate),
		Stock:      stock,
		MinStock:   5,
		ReorderQty: 10,
		Active:     true,
	}
	repo.products[p.ID] = p
	return p
}

func seedSupplier(repo *stubSupplierRepo, name string) *model.Supplier {
	email := name + "@suppliers.test"
	s := &model.Supplier{ID: uuid.New(), Name: name, Email: &email, Active: true}
	repo.suppliers[s.ID] = s
	return s
}
