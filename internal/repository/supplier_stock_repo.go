package repository

import (
	"context"

	"github.com/kantman01/ai-stock-management-sub000/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// SupplierStockRepository manages the per-(supplier, product) virtual stock.
type SupplierStockRepository interface {
	Get(ctx context.Context, supplierID, productID uuid.UUID) (*model.SupplierStock, error)
	Upsert(ctx context.Context, s *model.SupplierStock) error

	// FindForUpdateTx locks the (supplier, product) row so that concurrent
	// completions against the same supplier serialize on the decrement.
	FindForUpdateTx(tx *gorm.DB, supplierID, productID uuid.UUID) (*model.SupplierStock, error)
	DecrementTx(tx *gorm.DB, supplierID, productID uuid.UUID, qty int) error
}

type supplierStockRepo struct{ db *gorm.DB }

func NewSupplierStockRepository(db *gorm.DB) SupplierStockRepository {
	return &supplierStockRepo{db: db}
}

func (r *supplierStockRepo) Get(ctx context.Context, supplierID, productID uuid.UUID) (*model.SupplierStock, error) {
	var s model.SupplierStock
	err := r.db.WithContext(ctx).
		Where("supplier_id = ? AND product_id = ?", supplierID, productID).
		First(&s).Error
	return &s, err
}

func (r *supplierStockRepo) Upsert(ctx context.Context, s *model.SupplierStock) error {
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "supplier_id"}, {Name: "product_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"quantity", "updated_at"}),
	}).Create(s).Error
}

func (r *supplierStockRepo) FindForUpdateTx(tx *gorm.DB, supplierID, productID uuid.UUID) (*model.SupplierStock, error) {
	var s model.SupplierStock
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("supplier_id = ? AND product_id = ?", supplierID, productID).
		First(&s).Error
	return &s, err
}

func (r *supplierStockRepo) DecrementTx(tx *gorm.DB, supplierID, productID uuid.UUID, qty int) error {
	return tx.Model(&model.SupplierStock{}).
		Where("supplier_id = ? AND product_id = ?", supplierID, productID).
		Update("quantity", gorm.Expr("quantity - ?", qty)).Error
}
