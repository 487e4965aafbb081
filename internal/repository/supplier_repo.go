package repository

import (
	"context"

	"github.com/kantman01/ai-stock-management-sub000/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// SupplierRepository is read-mostly here: supplier CRUD is owned elsewhere.
type SupplierRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*model.Supplier, error)
}

type supplierRepo struct{ db *gorm.DB }

func NewSupplierRepository(db *gorm.DB) SupplierRepository { return &supplierRepo{db: db} }

func (r *supplierRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Supplier, error) {
	var s model.Supplier
	err := r.db.WithContext(ctx).First(&s, id).Error
	return &s, err
}
