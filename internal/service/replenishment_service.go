package service

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"

	"github.com/kantman01/ai-stock-management-sub000/internal/dto"
	"github.com/kantman01/ai-stock-management-sub000/internal/model"
	"github.com/kantman01/ai-stock-management-sub000/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// RecommendationGenerator is the external AI analysis dependency, consumed as
// a black box: business-data snapshot in, recommendation document out.
type RecommendationGenerator interface {
	Analyze(ctx context.Context, promptContext string, snapshot interface{}) (json.RawMessage, error)
}

type ReplenishmentService interface {
	// Run feeds an already-obtained recommendation document through the
	// pipeline: normalize → priority cascade → supplier grouping → one
	// purchase order per supplier group, each group in its own transaction.
	Run(ctx context.Context, doc json.RawMessage, runCtx dto.RunContext) (*dto.RunReplenishmentResponse, error)

	// RunFromGenerator builds a low-stock snapshot, asks the generator for a
	// document, and runs it. Fails with ErrRecommendationUnavailable when the
	// generator is unreachable or returns unparsable output; not retried.
	RunFromGenerator(ctx context.Context, trigger string, runCtx dto.RunContext) (*dto.RunReplenishmentResponse, error)
}

type replenishmentService struct {
	orderRepo   repository.SupplierOrderRepository
	productRepo repository.ProductRepository
	actionRepo  repository.AIActionRepository
	generator   RecommendationGenerator
	notifier    Notifier
}

func NewReplenishmentService(
	orderRepo repository.SupplierOrderRepository,
	productRepo repository.ProductRepository,
	actionRepo repository.AIActionRepository,
	generator RecommendationGenerator,
	notifier Notifier,
) ReplenishmentService {
	return &replenishmentService{
		orderRepo:   orderRepo,
		productRepo: productRepo,
		actionRepo:  actionRepo,
		generator:   generator,
		notifier:    notifier,
	}
}

// groupedItem couples a selected recommendation with its resolved product.
type groupedItem struct {
	product *model.Product
	rec     RecommendationItem
}

func (s *replenishmentService) Run(ctx context.Context, doc json.RawMessage, runCtx dto.RunContext) (*dto.RunReplenishmentResponse, error) {
	items, err := normalizeRecommendationDoc(doc)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRecommendationUnavailable, err)
	}

	selected, tier := selectByPriority(items)
	if len(selected) == 0 {
		log.Info().Msg("replenishment: no tier matched, nothing to order")
		return &dto.RunReplenishmentResponse{Orders: []dto.SupplierOrderResponse{}}, nil
	}
	log.Info().Str("tier", tier).Int("items", len(selected)).Msg("replenishment: tier selected")

	// Supplier resolution: items whose product has no assigned supplier are
	// dropped (logged, not failed), the rest grouped by supplier id.
	groups := make(map[uuid.UUID][]groupedItem)
	for _, rec := range selected {
		pid, err := uuid.Parse(rec.ProductID)
		if err != nil {
			log.Warn().Str("product_id", rec.ProductID).Msg("replenishment: unparsable product id, dropping item")
			continue
		}
		p, err := s.productRepo.FindByID(ctx, pid)
		if err != nil || !p.Active {
			log.Warn().Str("product_id", rec.ProductID).Msg("replenishment: unknown or inactive product, dropping item")
			continue
		}
		if p.SupplierID == nil {
			log.Warn().Str("product_id", rec.ProductID).Str("sku", p.SKU).Msg("replenishment: product has no supplier, dropping item")
			continue
		}
		groups[*p.SupplierID] = append(groups[*p.SupplierID], groupedItem{product: p, rec: rec})
	}

	// Deterministic emission order across runs.
	supplierIDs := make([]uuid.UUID, 0, len(groups))
	for sid := range groups {
		supplierIDs = append(supplierIDs, sid)
	}
	sort.Slice(supplierIDs, func(i, j int) bool {
		return supplierIDs[i].String() < supplierIDs[j].String()
	})

	resp := &dto.RunReplenishmentResponse{Orders: []dto.SupplierOrderResponse{}}
	for _, sid := range supplierIDs {
		order, err := s.emitGroup(ctx, sid, groups[sid], runCtx)
		if err != nil {
			// One group failing must not abort the others.
			log.Error().Err(err).Str("supplier_id", sid.String()).Msg("replenishment: group emission failed")
			resp.Errors = append(resp.Errors, fmt.Sprintf("supplier %s: %v", sid, err))
			continue
		}
		resp.Orders = append(resp.Orders, *order)
	}
	return resp, nil
}

// emitGroup creates one pending auto-generated purchase order for a supplier
// group, plus its audit entry, inside a single transaction.
func (s *replenishmentService) emitGroup(ctx context.Context, supplierID uuid.UUID, group []groupedItem, runCtx dto.RunContext) (*dto.SupplierOrderResponse, error) {
	order := model.SupplierOrder{
		SupplierID:    supplierID,
		Status:        model.SupplierOrderPending,
		AutoGenerated: true,
		Note:          "system-generated replenishment order",
	}

	type auditItem struct {
		ProductID string          `json:"product_id"`
		SKU       string          `json:"sku"`
		Quantity  int             `json:"quantity"`
		UnitPrice decimal.Decimal `json:"unit_price"`
		Reasoning string          `json:"reasoning,omitempty"`
	}
	auditItems := make([]auditItem, 0, len(group))

	total := decimal.Zero
	for _, g := range group {
		qty := g.rec.RecommendedOrderQuantity
		lineTotal := g.product.Price.Mul(decimal.NewFromInt(int64(qty)))
		total = total.Add(lineTotal)
		order.Items = append(order.Items, model.SupplierOrderItem{
			ProductID: g.product.ID,
			Quantity:  qty,
			UnitPrice: g.product.Price,
			LineTotal: lineTotal,
		})
		auditItems = append(auditItems, auditItem{
			ProductID: g.product.ID.String(),
			SKU:       g.product.SKU,
			Quantity:  qty,
			UnitPrice: g.product.Price,
			Reasoning: g.rec.Reasoning,
		})
	}
	order.TotalAmount = total

	txErr := runTx(ctx, s.orderRepo.DB(), func(tx *gorm.DB) error {
		if err := s.orderRepo.CreateTx(tx, &order); err != nil {
			return err
		}
		actionData, err := json.Marshal(map[string]interface{}{
			"supplier_order_id": order.ID.String(),
			"supplier_id":       supplierID.String(),
			"items":             auditItems,
			"total":             total,
			"season":            runCtx.Season,
			"holiday":           runCtx.Holiday,
			"rationale":         runCtx.Rationale,
		})
		if err != nil {
			return err
		}
		return s.actionRepo.CreateTx(tx, &model.AIAction{
			ActionType: "replenishment_order",
			ActionData: actionData,
		})
	})
	if txErr != nil {
		return nil, txErr
	}

	if s.notifier != nil {
		s.notifier.Notify(ctx, "supplier_order.created", map[string]interface{}{
			"supplier_order_id": order.ID.String(),
			"supplier_id":       supplierID.String(),
			"auto_generated":    true,
			"total":             total,
		})
	}
	resp := supplierOrderToResponse(&order)
	for i, g := range group {
		resp.Items[i].Product = g.product.Name
	}
	return resp, nil
}

func (s *replenishmentService) RunFromGenerator(ctx context.Context, trigger string, runCtx dto.RunContext) (*dto.RunReplenishmentResponse, error) {
	lowStock, err := s.productRepo.ListLowStock(ctx)
	if err != nil {
		return nil, err
	}
	if len(lowStock) == 0 {
		log.Debug().Str("trigger", trigger).Msg("replenishment: no low-stock products, skipping generator call")
		return &dto.RunReplenishmentResponse{Orders: []dto.SupplierOrderResponse{}}, nil
	}

	type snapshotProduct struct {
		ID           string `json:"id"`
		SKU          string `json:"sku"`
		Name         string `json:"name"`
		CurrentStock int    `json:"current_stock"`
		MinStock     int    `json:"min_stock"`
		ReorderQty   int    `json:"reorder_qty"`
	}
	snapshot := make([]snapshotProduct, 0, len(lowStock))
	for _, p := range lowStock {
		snapshot = append(snapshot, snapshotProduct{
			ID:           p.ID.String(),
			SKU:          p.SKU,
			Name:         p.Name,
			CurrentStock: p.Stock,
			MinStock:     p.MinStock,
			ReorderQty:   p.ReorderQty,
		})
	}

	promptContext := fmt.Sprintf("restock analysis (trigger: %s)", trigger)
	doc, err := s.generator.Analyze(ctx, promptContext, snapshot)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRecommendationUnavailable, err)
	}
	return s.Run(ctx, doc, runCtx)
}
