package service

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Business-rule errors. Handlers map these to HTTP statuses with errors.Is;
// anything else is treated as an internal failure and logged with context.
var (
	ErrProductNotFound           = errors.New("product not found or inactive")
	ErrOrderNotFound             = errors.New("order not found")
	ErrSupplierOrderNotFound     = errors.New("supplier order not found")
	ErrInsufficientStock         = errors.New("insufficient stock")
	ErrSupplierStockShortfall    = errors.New("supplier stock shortfall")
	ErrInvalidStateTransition    = errors.New("state transition not permitted")
	ErrOrderAlreadyCompleted     = errors.New("supplier order already completed")
	ErrRecommendationUnavailable = errors.New("recommendation generator unavailable")
	ErrValidation                = errors.New("invalid input")
)

// Actor identifies who is performing an operation, for transition gating and
// ledger attribution. SupplierID is set only for supplier-role tokens.
type Actor struct {
	ID         uuid.UUID
	Role       string // staff | admin | supplier
	SupplierID *uuid.UUID
}

// IsStaff reports whether the actor has the inventory-management capability.
func (a Actor) IsStaff() bool { return a.Role == "staff" || a.Role == "admin" }

// Notifier is the fire-and-forget notification fan-out. Implementations must
// never propagate failures to the caller — log and swallow.
type Notifier interface {
	Notify(ctx context.Context, event string, payload interface{})
}

// ReplenishmentTrigger enqueues an asynchronous replenishment run after an
// order is committed. Best-effort: failures must not fail the commit path.
type ReplenishmentTrigger interface {
	TriggerReplenishment(ctx context.Context, orderID uuid.UUID)
}

// runTx executes fn inside a GORM transaction when db is available,
// or calls fn(nil) directly when db is nil (unit test mode).
func runTx(ctx context.Context, db *gorm.DB, fn func(tx *gorm.DB) error) error {
	if db == nil {
		return fn(nil)
	}
	return db.WithContext(ctx).Transaction(fn)
}
