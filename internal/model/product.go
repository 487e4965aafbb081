package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Product is a catalog item tracked by the warehouse.
// Stock is only mutated together with a StockMovement entry (see service.LedgerService)
// or by an administrative edit; it must never go negative.
type Product struct {
	ID      uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	SKU     string    `gorm:"uniqueIndex;not null"`
	Name    string    `gorm:"index;not null"`
	Price   decimal.Decimal `gorm:"type:decimal(10,2);not null"`
	Cost    decimal.Decimal `gorm:"type:decimal(10,2);not null"`
	// TaxRate is a percentage (10.00 = 10%).
	TaxRate decimal.Decimal `gorm:"type:decimal(5,2);not null;default:0"`
	Stock   int             `gorm:"not null;default:0"`
	// MinStock is the low-stock threshold used by the replenishment snapshot.
	MinStock   int        `gorm:"not null;default:5"`
	ReorderQty int        `gorm:"not null;default:10"`
	CategoryID *uuid.UUID `gorm:"type:uuid;index"`
	SupplierID *uuid.UUID `gorm:"type:uuid;index"`
	Active     bool       `gorm:"not null;default:true"`
	CreatedAt  time.Time
	UpdatedAt  time.Time

	Supplier *Supplier `gorm:"foreignKey:SupplierID"`
	Category *Category `gorm:"foreignKey:CategoryID"`
}
