package repository

import (
	"context"

	"github.com/kantman01/ai-stock-management-sub000/internal/dto"
	"github.com/kantman01/ai-stock-management-sub000/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type OrderRepository interface {
	Create(ctx context.Context, tx *gorm.DB, o *model.Order) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Order, error)
	// FindForUpdateTx locks the order row (items loaded separately) so the
	// status check and its stock side effects serialize with concurrent
	// cancellations of the same order.
	FindForUpdateTx(tx *gorm.DB, id uuid.UUID) (*model.Order, error)
	UpdateStatusTx(tx *gorm.DB, id uuid.UUID, status string) error
	List(ctx context.Context, filter dto.OrderFilter) ([]model.Order, int64, error)
	DB() *gorm.DB
}

type orderRepo struct{ db *gorm.DB }

func NewOrderRepository(db *gorm.DB) OrderRepository { return &orderRepo{db: db} }

func (r *orderRepo) Create(ctx context.Context, tx *gorm.DB, o *model.Order) error {
	return tx.WithContext(ctx).Create(o).Error
}

func (r *orderRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Order, error) {
	var o model.Order
	err := r.db.WithContext(ctx).
		Preload("Items").
		Preload("Items.Product").
		First(&o, id).Error
	return &o, err
}

func (r *orderRepo) FindForUpdateTx(tx *gorm.DB, id uuid.UUID) (*model.Order, error) {
	var o model.Order
	if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&o, id).Error; err != nil {
		return nil, err
	}
	// Items are loaded separately — FOR UPDATE cannot lock across a join.
	if err := tx.Where("order_id = ?", id).Find(&o.Items).Error; err != nil {
		return nil, err
	}
	return &o, nil
}

func (r *orderRepo) UpdateStatusTx(tx *gorm.DB, id uuid.UUID, status string) error {
	return tx.Model(&model.Order{}).Where("id = ?", id).Update("status", status).Error
}

func (r *orderRepo) List(ctx context.Context, filter dto.OrderFilter) ([]model.Order, int64, error) {
	q := r.db.WithContext(ctx).Model(&model.Order{})
	if filter.Status != "" && filter.Status != "all" {
		q = q.Where("status = ?", filter.Status)
	}
	if filter.CustomerID != "" {
		q = q.Where("customer_id = ?", filter.CustomerID)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (filter.Page - 1) * filter.Limit
	var orders []model.Order
	err := q.Preload("Items").Preload("Items.Product").
		Order("created_at DESC").Limit(filter.Limit).Offset(offset).
		Find(&orders).Error
	return orders, total, err
}

func (r *orderRepo) DB() *gorm.DB { return r.db }
