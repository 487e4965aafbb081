package model

import (
	"time"

	"github.com/google/uuid"
)

// Movement kinds. The sign convention is applied by the ledger service:
// receipt and customer_return increase stock, sale / supplier_return / waste
// decrease it, adjustment carries its own sign.
const (
	MovementReceipt        = "receipt"
	MovementSale           = "sale"
	MovementCustomerReturn = "customer_return"
	MovementSupplierReturn = "supplier_return"
	MovementWaste          = "waste"
	MovementAdjustment     = "adjustment"
)

// StockMovement is one entry of the append-only inventory ledger.
// Entries are never updated or deleted; corrections are new entries.
// For any product, folding Quantity over entries in creation order from zero
// reproduces the current Product.Stock.
type StockMovement struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	ProductID uuid.UUID `gorm:"type:uuid;not null;index"`
	Kind      string    `gorm:"not null"`
	// Quantity is the signed delta: positive = into the warehouse, negative = out.
	Quantity      int `gorm:"not null"`
	PreviousStock int `gorm:"not null"`
	NewStock      int `gorm:"not null"`
	Note          string
	ActorID       *uuid.UUID `gorm:"type:uuid"`
	CreatedAt     time.Time

	Product *Product `gorm:"foreignKey:ProductID"`
}
