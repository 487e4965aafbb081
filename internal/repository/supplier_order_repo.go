package repository

import (
	"context"

	"github.com/kantman01/ai-stock-management-sub000/internal/dto"
	"github.com/kantman01/ai-stock-management-sub000/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type SupplierOrderRepository interface {
	CreateTx(tx *gorm.DB, o *model.SupplierOrder) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.SupplierOrder, error)
	// FindForUpdateTx locks the order row (items preloaded) so two concurrent
	// completions of the same order serialize.
	FindForUpdateTx(tx *gorm.DB, id uuid.UUID) (*model.SupplierOrder, error)
	UpdateStatusTx(tx *gorm.DB, id uuid.UUID, status string) error
	UpdateItemTx(tx *gorm.DB, item *model.SupplierOrderItem) error
	UpdateTotalTx(tx *gorm.DB, id uuid.UUID, total decimal.Decimal) error
	// ListShippedByProduct returns orders in shipped status containing the
	// product — the candidates a barcode scan confirms as delivered.
	ListShippedByProduct(ctx context.Context, productID uuid.UUID) ([]model.SupplierOrder, error)
	List(ctx context.Context, filter dto.SupplierOrderFilter) ([]model.SupplierOrder, int64, error)
	DB() *gorm.DB
}

type supplierOrderRepo struct{ db *gorm.DB }

func NewSupplierOrderRepository(db *gorm.DB) SupplierOrderRepository {
	return &supplierOrderRepo{db: db}
}

func (r *supplierOrderRepo) CreateTx(tx *gorm.DB, o *model.SupplierOrder) error {
	return tx.Create(o).Error
}

func (r *supplierOrderRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.SupplierOrder, error) {
	var o model.SupplierOrder
	err := r.db.WithContext(ctx).
		Preload("Items").
		Preload("Items.Product").
		Preload("Supplier").
		First(&o, id).Error
	return &o, err
}

func (r *supplierOrderRepo) FindForUpdateTx(tx *gorm.DB, id uuid.UUID) (*model.SupplierOrder, error) {
	var o model.SupplierOrder
	if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&o, id).Error; err != nil {
		return nil, err
	}
	// Items are loaded separately — FOR UPDATE cannot lock across a join.
	if err := tx.Where("supplier_order_id = ?", id).Find(&o.Items).Error; err != nil {
		return nil, err
	}
	return &o, nil
}

func (r *supplierOrderRepo) UpdateStatusTx(tx *gorm.DB, id uuid.UUID, status string) error {
	return tx.Model(&model.SupplierOrder{}).Where("id = ?", id).Update("status", status).Error
}

func (r *supplierOrderRepo) UpdateItemTx(tx *gorm.DB, item *model.SupplierOrderItem) error {
	return tx.Model(&model.SupplierOrderItem{}).Where("id = ?", item.ID).
		Updates(map[string]interface{}{
			"quantity":   item.Quantity,
			"line_total": item.LineTotal,
		}).Error
}

func (r *supplierOrderRepo) UpdateTotalTx(tx *gorm.DB, id uuid.UUID, total decimal.Decimal) error {
	return tx.Model(&model.SupplierOrder{}).Where("id = ?", id).
		Update("total_amount", total).Error
}

func (r *supplierOrderRepo) ListShippedByProduct(ctx context.Context, productID uuid.UUID) ([]model.SupplierOrder, error) {
	var orders []model.SupplierOrder
	err := r.db.WithContext(ctx).
		Joins("JOIN supplier_order_items ON supplier_order_items.supplier_order_id = supplier_orders.id").
		Where("supplier_order_items.product_id = ? AND supplier_orders.status = ?", productID, model.SupplierOrderShipped).
		Group("supplier_orders.id").
		Find(&orders).Error
	return orders, err
}

func (r *supplierOrderRepo) List(ctx context.Context, filter dto.SupplierOrderFilter) ([]model.SupplierOrder, int64, error) {
	q := r.db.WithContext(ctx).Model(&model.SupplierOrder{})
	if filter.Status != "" && filter.Status != "all" {
		q = q.Where("status = ?", filter.Status)
	}
	if filter.SupplierID != "" {
		q = q.Where("supplier_id = ?", filter.SupplierID)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (filter.Page - 1) * filter.Limit
	var orders []model.SupplierOrder
	err := q.Preload("Items").Preload("Items.Product").Preload("Supplier").
		Order("created_at DESC").Limit(filter.Limit).Offset(offset).
		Find(&orders).Error
	return orders, total, err
}

func (r *supplierOrderRepo) DB() *gorm.DB { return r.db }
