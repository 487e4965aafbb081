package service

import (
	"context"
	"fmt"

	"github.com/kantman01/ai-stock-management-sub000/internal/dto"
	"github.com/kantman01/ai-stock-management-sub000/internal/model"
	"github.com/kantman01/ai-stock-management-sub000/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type OrderService interface {
	Create(ctx context.Context, req dto.CreateOrderRequest, actor Actor) (*dto.OrderResponse, error)
	Cancel(ctx context.Context, id uuid.UUID, actor Actor) (*dto.OrderResponse, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status string) (*dto.OrderResponse, error)
	List(ctx context.Context, filter dto.OrderFilter) (*dto.OrderListResponse, error)
}

type orderService struct {
	repo        repository.OrderRepository
	productRepo repository.ProductRepository
	ledger      LedgerService
	notifier    Notifier
	trigger     ReplenishmentTrigger
}

func NewOrderService(
	repo repository.OrderRepository,
	productRepo repository.ProductRepository,
	ledger LedgerService,
	notifier Notifier,
	trigger ReplenishmentTrigger,
) OrderService {
	return &orderService{
		repo:        repo,
		productRepo: productRepo,
		ledger:      ledger,
		notifier:    notifier,
		trigger:     trigger,
	}
}

// ── Create ────────────────────────────────────────────────────────────────────
// Coverage is all-or-nothing per order: when every line fits on-hand stock the
// order is auto-approved and each line is deducted with a sale ledger entry;
// when any line is short the order stays pending and no stock is touched.
// Partial fulfillment is intentionally not attempted.

func (s *orderService) Create(ctx context.Context, req dto.CreateOrderRequest, actor Actor) (*dto.OrderResponse, error) {
	customerID, err := uuid.Parse(req.CustomerID)
	if err != nil {
		return nil, fmt.Errorf("%w: customer_id", ErrValidation)
	}
	if len(req.Items) == 0 {
		return nil, fmt.Errorf("%w: empty item list", ErrValidation)
	}

	// Resolve products and snapshot prices (pre-flight, outside TX)
	type resolvedItem struct {
		productID uuid.UUID
		name      string
		price     decimal.Decimal
		taxRate   decimal.Decimal
		quantity  int
		lineTotal decimal.Decimal
	}

	var resolved []resolvedItem
	subtotal := decimal.Zero
	taxTotal := decimal.Zero
	covered := true

	for _, item := range req.Items {
		pid, err := uuid.Parse(item.ProductID)
		if err != nil {
			return nil, fmt.Errorf("%w: product_id %q", ErrValidation, item.ProductID)
		}
		p, err := s.productRepo.FindByID(ctx, pid)
		if err != nil || !p.Active {
			return nil, fmt.Errorf("%w: %s", ErrProductNotFound, item.ProductID)
		}

		qty := decimal.NewFromInt(int64(item.Quantity))
		lineSubtotal := p.Price.Mul(qty)
		lineTax := lineSubtotal.Mul(p.TaxRate).Div(decimal.NewFromInt(100))
		subtotal = subtotal.Add(lineSubtotal)
		taxTotal = taxTotal.Add(lineTax)

		if item.Quantity > p.Stock {
			covered = false
		}
		resolved = append(resolved, resolvedItem{
			productID: pid,
			name:      p.Name,
			price:     p.Price,
			taxRate:   p.TaxRate,
			quantity:  item.Quantity,
			lineTotal: lineSubtotal.Add(lineTax),
		})
	}

	status := model.OrderPending
	if covered {
		status = model.OrderApproved
	}

	order := model.Order{
		CustomerID:    customerID,
		Status:        status,
		PaymentStatus: "unpaid",
		Subtotal:      subtotal,
		TaxTotal:      taxTotal,
		Total:         subtotal.Add(taxTotal),
	}
	for _, r := range resolved {
		order.Items = append(order.Items, model.OrderItem{
			ProductID: r.productID,
			Quantity:  r.quantity,
			UnitPrice: r.price,
			TaxRate:   r.taxRate,
			LineTotal: r.lineTotal,
		})
	}

	actorID := actor.ID
	txErr := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		if err := s.repo.Create(ctx, tx, &order); err != nil {
			return err
		}
		if !covered {
			return nil
		}
		for _, r := range resolved {
			note := fmt.Sprintf("order %s", order.ID)
			if _, err := s.ledger.RecordTx(tx, r.productID, model.MovementSale, r.quantity, note, &actorID); err != nil {
				return fmt.Errorf("deducting stock for %s: %w", r.name, err)
			}
		}
		return nil
	})
	if txErr != nil {
		return nil, txErr
	}

	// Post-commit side effects — best-effort, never fail order creation.
	if s.notifier != nil {
		s.notifier.Notify(ctx, "order.created", map[string]interface{}{
			"order_id": order.ID.String(),
			"status":   order.Status,
			"total":    order.Total,
		})
	}
	if covered && s.trigger != nil {
		s.trigger.TriggerReplenishment(ctx, order.ID)
	}

	resp := orderToResponse(&order)
	for i, r := range resolved {
		resp.Items[i].Product = r.name
	}
	return resp, nil
}

// ── Cancel ────────────────────────────────────────────────────────────────────

func (s *orderService) Cancel(ctx context.Context, id uuid.UUID, actor Actor) (*dto.OrderResponse, error) {
	order, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrOrderNotFound, id)
	}
	if order.Status == model.OrderCancelled {
		return orderToResponse(order), nil
	}

	actorID := actor.ID
	cancelled := false

	txErr := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		// The status must be re-read under the row lock: a concurrent cancel
		// may have committed between the read above and this transaction, and
		// reversing the stock twice would corrupt the ledger.
		locked, err := s.repo.FindForUpdateTx(tx, id)
		if err != nil {
			return fmt.Errorf("%w: %s", ErrOrderNotFound, id)
		}
		if locked.Status == model.OrderCancelled {
			order = locked
			return nil
		}

		// Stock is only reversed when it was deducted at creation (approved
		// orders). A pending order never touched the inventory, so restocking
		// it would corrupt the ledger replay invariant.
		if locked.Status == model.OrderApproved {
			for _, item := range locked.Items {
				note := fmt.Sprintf("cancelled order %s", locked.ID)
				if _, err := s.ledger.RecordTx(tx, item.ProductID, model.MovementCustomerReturn, item.Quantity, note, &actorID); err != nil {
					return err
				}
			}
		}
		if err := s.repo.UpdateStatusTx(tx, id, model.OrderCancelled); err != nil {
			return err
		}
		locked.Status = model.OrderCancelled
		order = locked
		cancelled = true
		return nil
	})
	if txErr != nil {
		return nil, txErr
	}

	if cancelled && s.notifier != nil {
		s.notifier.Notify(ctx, "order.cancelled", map[string]interface{}{
			"order_id": order.ID.String(),
		})
	}
	return orderToResponse(order), nil
}

// ── UpdateStatus ──────────────────────────────────────────────────────────────
// Free-form status edit — no formal state machine at this layer, except that
// entering approved fires the replenishment trigger.

func (s *orderService) UpdateStatus(ctx context.Context, id uuid.UUID, status string) (*dto.OrderResponse, error) {
	order, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrOrderNotFound, id)
	}
	if order.Status == status {
		return orderToResponse(order), nil
	}

	becameApproved := false
	txErr := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		// Locked re-read: a concurrent edit may already have moved the order
		// to the target status, and re-firing the replenishment trigger for
		// the same approval would enqueue duplicate analysis jobs.
		locked, err := s.repo.FindForUpdateTx(tx, id)
		if err != nil {
			return fmt.Errorf("%w: %s", ErrOrderNotFound, id)
		}
		if locked.Status == status {
			order = locked
			return nil
		}
		becameApproved = status == model.OrderApproved
		if err := s.repo.UpdateStatusTx(tx, id, status); err != nil {
			return err
		}
		locked.Status = status
		order = locked
		return nil
	})
	if txErr != nil {
		return nil, txErr
	}

	if becameApproved && s.trigger != nil {
		s.trigger.TriggerReplenishment(ctx, order.ID)
	}
	return orderToResponse(order), nil
}

func (s *orderService) List(ctx context.Context, filter dto.OrderFilter) (*dto.OrderListResponse, error) {
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
	items := make([]dto.OrderResponse, 0, len(orders))
	for i := range orders {
		items = append(items, *orderToResponse(&orders[i]))
	}
	return &dto.OrderListResponse{Data: items, Total: total, Page: filter.Page, Limit: filter.Limit}, nil
}

func orderToResponse(o *model.Order) *dto.OrderResponse {
	items := make([]dto.OrderItemResponse, 0, len(o.Items))
	for _, item := range o.Items {
		name := ""
		if item.Product != nil {
			name = item.Product.Name
		}
		items = append(items, dto.OrderItemResponse{
			ProductID: item.ProductID.String(),
			Product:   name,
			Quantity:  item.Quantity,
			UnitPrice: item.UnitPrice,
			TaxRate:   item.TaxRate,
			LineTotal: item.LineTotal,
		})
	}
	return &dto.OrderResponse{
		ID:            o.ID.String(),
		CustomerID:    o.CustomerID.String(),
		Status:        o.Status,
		PaymentStatus: o.PaymentStatus,
		Subtotal:      o.Subtotal,
		TaxTotal:      o.TaxTotal,
		Total:         o.Total,
		Items:         items,
		CreatedAt:     o.CreatedAt.Format("2006-01-02T15:04:05Z"),
	}
}
