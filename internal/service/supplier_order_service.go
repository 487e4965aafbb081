package service

import (
	"context"
	"fmt"

	"github.com/kantman01/ai-stock-management-sub000/internal/dto"
	"github.com/kantman01/ai-stock-management-sub000/internal/model"
	"github.com/kantman01/ai-stock-management-sub000/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type SupplierOrderService interface {
	Create(ctx context.Context, req dto.CreateSupplierOrderRequest, actor Actor) (*dto.SupplierOrderResponse, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status string, actor Actor) (*dto.SupplierOrderResponse, error)
	Complete(ctx context.Context, id uuid.UUID, overrides []dto.ItemOverride, actor Actor) (*dto.SupplierOrderResponse, error)
	Scan(ctx context.Context, code string) (*dto.BarcodeScanResponse, error)
	Get(ctx context.Context, id uuid.UUID) (*dto.SupplierOrderResponse, error)
	List(ctx context.Context, filter dto.SupplierOrderFilter) (*dto.SupplierOrderListResponse, error)
}

type supplierOrderService struct {
	repo         repository.SupplierOrderRepository
	productRepo  repository.ProductRepository
	supplierRepo repository.SupplierRepository
	stockRepo    repository.SupplierStockRepository
	ledger       LedgerService
	notifier     Notifier
}

func NewSupplierOrderService(
	repo repository.SupplierOrderRepository,
	productRepo repository.ProductRepository,
	supplierRepo repository.SupplierRepository,
	stockRepo repository.SupplierStockRepository,
	ledger LedgerService,
	notifier Notifier,
) SupplierOrderService {
	return &supplierOrderService{
		repo:         repo,
		productRepo:  productRepo,
		supplierRepo: supplierRepo,
		stockRepo:    stockRepo,
		ledger:       ledger,
		notifier:     notifier,
	}
}

// supplierTransitions is the forward walk a supplier (order owner) may drive.
// Staff may perform any non-terminal edit; entering completed always goes
// through Complete so the inventory side effects cannot be skipped.
var supplierTransitions = map[string]string{
	model.SupplierOrderPending:  model.SupplierOrderApproved,
	model.SupplierOrderApproved: model.SupplierOrderShipped,
	model.SupplierOrderShipped:  model.SupplierOrderDelivered,
}

func isTerminal(status string) bool {
	return status == model.SupplierOrderCompleted || status == model.SupplierOrderCancelled
}

func transitionAllowed(actor Actor, order *model.SupplierOrder, to string) bool {
	if isTerminal(order.Status) || to == model.SupplierOrderCompleted {
		return false
	}
	if actor.IsStaff() {
		return true
	}
	if actor.Role == "supplier" {
		if actor.SupplierID == nil || *actor.SupplierID != order.SupplierID {
			return false
		}
		return supplierTransitions[order.Status] == to
	}
	return false
}

// ── Create (manual purchase order) ───────────────────────────────────────────

func (s *supplierOrderService) Create(ctx context.Context, req dto.CreateSupplierOrderRequest, actor Actor) (*dto.SupplierOrderResponse, error) {
	supplierID, err := uuid.Parse(req.SupplierID)
	if err != nil {
		return nil, fmt.Errorf("%w: supplier_id", ErrValidation)
	}
	supplier, err := s.supplierRepo.FindByID(ctx, supplierID)
	if err != nil {
		return nil, fmt.Errorf("%w: supplier %s", ErrValidation, req.SupplierID)
	}

	order := model.SupplierOrder{
		SupplierID: supplierID,
		Status:     model.SupplierOrderPending,
		Note:       req.Note,
	}
	total := decimal.Zero
	names := make(map[uuid.UUID]string)
	for _, item := range req.Items {
		pid, err := uuid.Parse(item.ProductID)
		if err != nil {
			return nil, fmt.Errorf("%w: product_id %q", ErrValidation, item.ProductID)
		}
		p, err := s.productRepo.FindByID(ctx, pid)
		if err != nil || !p.Active {
			return nil, fmt.Errorf("%w: %s", ErrProductNotFound, item.ProductID)
		}
		lineTotal := p.Price.Mul(decimal.NewFromInt(int64(item.Quantity)))
		total = total.Add(lineTotal)
		names[pid] = p.Name
		order.Items = append(order.Items, model.SupplierOrderItem{
			ProductID: pid,
			Quantity:  item.Quantity,
			UnitPrice: p.Price,
			LineTotal: lineTotal,
		})
	}
	order.TotalAmount = total

	txErr := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		return s.repo.CreateTx(tx, &order)
	})
	if txErr != nil {
		return nil, txErr
	}

	if s.notifier != nil {
		s.notifier.Notify(ctx, "supplier_order.created", map[string]interface{}{
			"supplier_order_id": order.ID.String(),
			"supplier_id":       supplier.ID.String(),
			"total":             order.TotalAmount,
		})
	}
	resp := supplierOrderToResponse(&order)
	resp.Supplier = supplier.Name
	for i := range order.Items {
		resp.Items[i].Product = names[order.Items[i].ProductID]
	}
	return resp, nil
}

// ── UpdateStatus ─────────────────────────────────────────────────────────────

func (s *supplierOrderService) UpdateStatus(ctx context.Context, id uuid.UUID, status string, actor Actor) (*dto.SupplierOrderResponse, error) {
	order, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrSupplierOrderNotFound, id)
	}
	if !transitionAllowed(actor, order, status) {
		return nil, fmt.Errorf("%w: %s → %s (role %s)", ErrInvalidStateTransition, order.Status, status, actor.Role)
	}

	txErr := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		return s.repo.UpdateStatusTx(tx, id, status)
	})
	if txErr != nil {
		return nil, txErr
	}
	order.Status = status

	if s.notifier != nil {
		s.notifier.Notify(ctx, "supplier_order.status_changed", map[string]interface{}{
			"supplier_order_id": order.ID.String(),
			"status":            status,
		})
	}
	return supplierOrderToResponse(order), nil
}

// ── Complete ─────────────────────────────────────────────────────────────────
// The only transition with inventory side effects. Atomically, per item:
// receipt ledger entry on the product, supplier virtual stock decrement under
// a row lock, and a quantity/line-total rewrite when the received quantity
// differs from the ordered one. All-or-nothing: partial receipt of a
// multi-item order is not supported.

func (s *supplierOrderService) Complete(ctx context.Context, id uuid.UUID, overrides []dto.ItemOverride, actor Actor) (*dto.SupplierOrderResponse, error) {
	if !actor.IsStaff() {
		return nil, fmt.Errorf("%w: completion requires inventory-management capability", ErrInvalidStateTransition)
	}

	overrideByItem := make(map[uuid.UUID]int, len(overrides))
	for _, o := range overrides {
		itemID, err := uuid.Parse(o.ItemID)
		if err != nil {
			return nil, fmt.Errorf("%w: override item_id %q", ErrValidation, o.ItemID)
		}
		if o.Quantity < 0 {
			return nil, fmt.Errorf("%w: override quantity must not be negative", ErrValidation)
		}
		overrideByItem[itemID] = o.Quantity
	}

	actorID := actor.ID
	var completed *model.SupplierOrder

	txErr := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		order, err := s.repo.FindForUpdateTx(tx, id)
		if err != nil {
			return fmt.Errorf("%w: %s", ErrSupplierOrderNotFound, id)
		}
		if order.Status == model.SupplierOrderCompleted {
			return fmt.Errorf("%w: %s", ErrOrderAlreadyCompleted, id)
		}
		if order.Status == model.SupplierOrderCancelled {
			return fmt.Errorf("%w: order %s is cancelled", ErrInvalidStateTransition, id)
		}

		total := decimal.Zero
		for i := range order.Items {
			item := &order.Items[i]
			received := item.Quantity
			if q, ok := overrideByItem[item.ID]; ok {
				received = q
			}

			if received > 0 {
				note := fmt.Sprintf("supplier order %s", order.ID)
				if _, err := s.ledger.RecordTx(tx, item.ProductID, model.MovementReceipt, received, note, &actorID); err != nil {
					return err
				}

				// Virtual stock: locked read, then decrement. A missing row
				// counts as zero.
				vs, err := s.stockRepo.FindForUpdateTx(tx, order.SupplierID, item.ProductID)
				if err != nil || vs.Quantity < received {
					have := 0
					if err == nil {
						have = vs.Quantity
					}
					return fmt.Errorf("%w: supplier %s holds %d of product %s, completion needs %d",
						ErrSupplierStockShortfall, order.SupplierID, have, item.ProductID, received)
				}
				if err := s.stockRepo.DecrementTx(tx, order.SupplierID, item.ProductID, received); err != nil {
					return err
				}
			}

			if received != item.Quantity {
				item.Quantity = received
				item.LineTotal = item.UnitPrice.Mul(decimal.NewFromInt(int64(received)))
				if err := s.repo.UpdateItemTx(tx, item); err != nil {
					return err
				}
			}
			total = total.Add(item.LineTotal)
		}

		if err := s.repo.UpdateTotalTx(tx, id, total); err != nil {
			return err
		}
		if err := s.repo.UpdateStatusTx(tx, id, model.SupplierOrderCompleted); err != nil {
			return err
		}
		order.TotalAmount = total
		order.Status = model.SupplierOrderCompleted
		completed = order
		return nil
	})
	if txErr != nil {
		return nil, txErr
	}

	if s.notifier != nil {
		s.notifier.Notify(ctx, "supplier_order.completed", map[string]interface{}{
			"supplier_order_id": completed.ID.String(),
			"total":             completed.TotalAmount,
		})
	}
	return supplierOrderToResponse(completed), nil
}

// ── Scan ─────────────────────────────────────────────────────────────────────
// A physical scan of a product barcode confirms arrival: every shipped order
// containing the product advances to delivered, one transaction and one
// notification per order.

func (s *supplierOrderService) Scan(ctx context.Context, code string) (*dto.BarcodeScanResponse, error) {
	product, err := s.productRepo.FindBySKU(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("%w: sku %q", ErrProductNotFound, code)
	}

	orders, err := s.repo.ListShippedByProduct(ctx, product.ID)
	if err != nil {
		return nil, err
	}

	confirmed := make([]string, 0, len(orders))
	for i := range orders {
		order := &orders[i]
		txErr := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
			return s.repo.UpdateStatusTx(tx, order.ID, model.SupplierOrderDelivered)
		})
		if txErr != nil {
			log.Error().Err(txErr).Str("supplier_order_id", order.ID.String()).Msg("scan: failed to confirm delivery")
			continue
		}
		confirmed = append(confirmed, order.ID.String())
		if s.notifier != nil {
			s.notifier.Notify(ctx, "supplier_order.delivered", map[string]interface{}{
				"supplier_order_id": order.ID.String(),
				"product_id":        product.ID.String(),
			})
		}
	}

	return &dto.BarcodeScanResponse{
		ProductID:       product.ID.String(),
		Product:         product.Name,
		SKU:             product.SKU,
		Stock:           product.Stock,
		ConfirmedOrders: confirmed,
	}, nil
}

func (s *supplierOrderService) Get(ctx context.Context, id uuid.UUID) (*dto.SupplierOrderResponse, error) {
	order, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrSupplierOrderNotFound, id)
	}
	return supplierOrderToResponse(order), nil
}

func (s *supplierOrderService) List(ctx context.Context, filter dto.SupplierOrderFilter) (*dto.SupplierOrderListResponse, error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.Limit < 1 {
		filter.Limit = 50
	}
	orders, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	items := make([]dto.SupplierOrderResponse, 0, len(orders))
	for i := range orders {
		items = append(items, *supplierOrderToResponse(&orders[i]))
	}
	return &dto.SupplierOrderListResponse{Data: items, Total: total, Page: filter.Page, Limit: filter.Limit}, nil
}

func supplierOrderToResponse(o *model.SupplierOrder) *dto.SupplierOrderResponse {
	items := make([]dto.SupplierOrderItemResponse, 0, len(o.Items))
	for _, item := range o.Items {
		name := ""
		if item.Product != nil {
			name = item.Product.Name
		}
		items = append(items, dto.SupplierOrderItemResponse{
			ID:        item.ID.String(),
			ProductID: item.ProductID.String(),
			Product:   name,
			Quantity:  item.Quantity,
			UnitPrice: item.UnitPrice,
			LineTotal: item.LineTotal,
		})
	}
	supplierName := ""
	if o.Supplier != nil {
		supplierName = o.Supplier.Name
	}
	return &dto.SupplierOrderResponse{
		ID:            o.ID.String(),
		SupplierID:    o.SupplierID.String(),
		Supplier:      supplierName,
		Status:        o.Status,
		TotalAmount:   o.TotalAmount,
		AutoGenerated: o.AutoGenerated,
		Note:          o.Note,
		Items:         items,
		CreatedAt:     o.CreatedAt.Format("2006-01-02T15:04:05Z"),
	}
}
