package model

import (
	"time"

	"github.com/google/uuid"
)

// Supplier holds the commercial contact data used when placing purchase orders.
type Supplier struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Name      string    `gorm:"not null"`
	Email     *string
	Phone     *string
	Address   *string
	Active    bool `gorm:"not null;default:true"`
	CreatedAt time.Time
	UpdatedAt time.Time

	Products []Product `gorm:"foreignKey:SupplierID"`
}
