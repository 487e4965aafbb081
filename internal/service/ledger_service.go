package service

import (
	"context"
	"fmt"

	"github.com/kantman01/ai-stock-management-sub000/internal/dto"
	"github.com/kantman01/ai-stock-management-sub000/internal/model"
	"github.com/kantman01/ai-stock-management-sub000/internal/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// LedgerService is the single write path for Product.Stock. Every stock
// mutation happens here, paired with an append-only StockMovement entry in
// the same transaction, so that replaying the ledger reproduces on-hand.
type LedgerService interface {
	// RecordTx must be called inside the caller's transaction. quantity is a
	// magnitude for directional kinds and a signed delta for kind=adjustment.
	// Fails with ErrInsufficientStock when the result would be negative — the
	// caller must abort the enclosing transaction on this error.
	RecordTx(tx *gorm.DB, productID uuid.UUID, kind string, quantity int, note string, actorID *uuid.UUID) (*model.StockMovement, error)

	// Record opens its own transaction around RecordTx — the manual movement
	// endpoint (receipts, waste, adjustments).
	Record(ctx context.Context, productID uuid.UUID, kind string, quantity int, note string, actorID *uuid.UUID) (*model.StockMovement, error)

	List(ctx context.Context, filter repository.StockMovementFilter) (*dto.StockMovementListResponse, error)
}

type ledgerService struct {
	productRepo  repository.ProductRepository
	movementRepo repository.StockMovementRepository
}

func NewLedgerService(productRepo repository.ProductRepository, movementRepo repository.StockMovementRepository) LedgerService {
	return &ledgerService{productRepo: productRepo, movementRepo: movementRepo}
}

// movementDelta applies the kind's sign convention.
func movementDelta(kind string, quantity int) (int, error) {
	switch kind {
	case model.MovementReceipt, model.MovementCustomerReturn:
		if quantity <= 0 {
			return 0, fmt.Errorf("%w: %s quantity must be positive", ErrValidation, kind)
		}
		return quantity, nil
	case model.MovementSale, model.MovementSupplierReturn, model.MovementWaste:
		if quantity <= 0 {
			return 0, fmt.Errorf("%w: %s quantity must be positive", ErrValidation, kind)
		}
		return -quantity, nil
	case model.MovementAdjustment:
		if quantity == 0 {
			return 0, fmt.Errorf("%w: adjustment delta must be non-zero", ErrValidation)
		}
		return quantity, nil
	default:
		return 0, fmt.Errorf("%w: unknown movement kind %q", ErrValidation, kind)
	}
}

func (s *ledgerService) RecordTx(tx *gorm.DB, productID uuid.UUID, kind string, quantity int, note string, actorID *uuid.UUID) (*model.StockMovement, error) {
	delta, err := movementDelta(kind, quantity)
	if err != nil {
		return nil, err
	}

	// Row lock: the read of "previous" and the write of "new" must be atomic
	// per product, otherwise the replay invariant breaks under concurrency.
	p, err := s.productRepo.FindForUpdateTx(tx, productID)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrProductNotFound, productID)
	}

	newStock := p.Stock + delta
	if newStock < 0 {
		return nil, fmt.Errorf("%w: product %s has %d, movement needs %d", ErrInsufficientStock, p.SKU, p.Stock, -delta)
	}

	if err := s.productRepo.UpdateStockTx(tx, productID, delta); err != nil {
		return nil, err
	}

	mov := &model.StockMovement{
		ProductID:     productID,
		Kind:          kind,
		Quantity:      delta,
		PreviousStock: p.Stock,
		NewStock:      newStock,
		Note:          note,
		ActorID:       actorID,
	}
	if err := s.movementRepo.CreateTx(tx, mov); err != nil {
		return nil, err
	}
	return mov, nil
}

func (s *ledgerService) Record(ctx context.Context, productID uuid.UUID, kind string, quantity int, note string, actorID *uuid.UUID) (*model.StockMovement, error) {
	var mov *model.StockMovement
	err := runTx(ctx, s.productRepo.DB(), func(tx *gorm.DB) error {
		m, err := s.RecordTx(tx, productID, kind, quantity, note, actorID)
		if err != nil {
			return err
		}
		mov = m
		return nil
	})
	if err != nil {
		return nil, err
	}
	return mov, nil
}

func (s *ledgerService) List(ctx context.Context, filter repository.StockMovementFilter) (*dto.StockMovementListResponse, error) {
	movements, total, err := s.movementRepo.List(ctx, filter)
	if err != nil {
		return nil, err
	}

	page := filter.Page
	limit := filter.Limit
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 500 {
		limit = 100
	}

	items := make([]dto.StockMovementResponse, 0, len(movements))
	for i := range movements {
		items = append(items, *movementToResponse(&movements[i]))
	}
	return &dto.StockMovementListResponse{Data: items, Total: total, Page: page, Limit: limit}, nil
}

func movementToResponse(m *model.StockMovement) *dto.StockMovementResponse {
	name := ""
	if m.Product != nil {
		name = m.Product.Name
	}
	return &dto.StockMovementResponse{
		ID:            m.ID.String(),
		ProductID:     m.ProductID.String(),
		Product:       name,
		Kind:          m.Kind,
		Quantity:      m.Quantity,
		PreviousStock: m.PreviousStock,
		NewStock:      m.NewStock,
		Note:          m.Note,
		CreatedAt:     m.CreatedAt.Format("2006-01-02T15:04:05Z"),
	}
}
