package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Supplier order lifecycle:
//
//	pending → approved → shipped → delivered → completed
//
// with cancelled reachable from any non-terminal state. completed and
// cancelled are terminal. Only the completed transition has inventory side
// effects (see service.SupplierOrderService.Complete).
const (
	SupplierOrderPending   = "pending"
	SupplierOrderApproved  = "approved"
	SupplierOrderShipped   = "shipped"
	SupplierOrderDelivered = "delivered"
	SupplierOrderCompleted = "completed"
	SupplierOrderCancelled = "cancelled"
)

// SupplierOrder is a purchase order placed with a supplier, either by a human
// or by the replenishment pipeline (AutoGenerated=true).
type SupplierOrder struct {
	ID            uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	SupplierID    uuid.UUID `gorm:"type:uuid;not null;index"`
	Status        string    `gorm:"not null;default:'pending';index"`
	TotalAmount   decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	AutoGenerated bool            `gorm:"not null;default:false"`
	Note          string
	CreatedAt     time.Time
	UpdatedAt     time.Time

	Items    []SupplierOrderItem `gorm:"foreignKey:SupplierOrderID"`
	Supplier *Supplier           `gorm:"foreignKey:SupplierID"`
}

type SupplierOrderItem struct {
	ID              uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	SupplierOrderID uuid.UUID `gorm:"type:uuid;not null;index"`
	ProductID       uuid.UUID `gorm:"type:uuid;not null;index"`
	Quantity        int       `gorm:"not null"`
	UnitPrice       decimal.Decimal `gorm:"type:decimal(10,2);not null"`
	LineTotal       decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	CreatedAt       time.Time

	Product *Product `gorm:"foreignKey:ProductID"`
}
