package model

import (
	"time"

	"github.com/google/uuid"
)

// SupplierStock is the virtual on-hand quantity a supplier claims to hold for
// a product, before it is received into the warehouse. It is decremented only
// when a supplier order item is received (completion), under a row lock, and
// must never go negative.
type SupplierStock struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	SupplierID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_supplier_product"`
	ProductID  uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_supplier_product"`
	Quantity   int       `gorm:"not null;default:0"`
	CreatedAt  time.Time
	UpdatedAt  time.Time

	Supplier *Supplier `gorm:"foreignKey:SupplierID"`
	Product  *Product  `gorm:"foreignKey:ProductID"`
}

func (SupplierStock) TableName() string { return "supplier_stock" }
