package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Customer order statuses. The set is conceptually extensible; the engine only
// attaches semantics to these three.
const (
	OrderPending   = "pending"
	OrderApproved  = "approved"
	OrderCancelled = "cancelled"
)

// Order is a customer order. Orders are never physically deleted —
// cancellation is a status transition that reverses the stock effect.
type Order struct {
	ID            uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	CustomerID    uuid.UUID `gorm:"type:uuid;not null;index"`
	Status        string    `gorm:"not null;default:'pending'"`
	PaymentStatus string    `gorm:"not null;default:'unpaid'"`
	Subtotal      decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	TaxTotal      decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	Total         decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	CreatedAt     time.Time
	UpdatedAt     time.Time

	Items    []OrderItem `gorm:"foreignKey:OrderID"`
	Customer *Customer   `gorm:"foreignKey:CustomerID"`
}

// OrderItem freezes unit price and tax rate at order time; totals are never
// recomputed from the catalog afterwards.
type OrderItem struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	OrderID   uuid.UUID `gorm:"type:uuid;not null;index"`
	ProductID uuid.UUID `gorm:"type:uuid;not null;index"`
	Quantity  int       `gorm:"not null"`
	UnitPrice decimal.Decimal `gorm:"type:decimal(10,2);not null"`
	TaxRate   decimal.Decimal `gorm:"type:decimal(5,2);not null"`
	LineTotal decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	CreatedAt time.Time

	Product *Product `gorm:"foreignKey:ProductID"`
}
