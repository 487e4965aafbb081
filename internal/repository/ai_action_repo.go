package repository

import (
	"context"

	"github.com/kantman01/ai-stock-management-sub000/internal/model"

	"gorm.io/gorm"
)

// AIActionRepository is the append-only audit of replenishment decisions.
type AIActionRepository interface {
	CreateTx(tx *gorm.DB, a *model.AIAction) error
	List(ctx context.Context, limit int) ([]model.AIAction, error)
}

type aiActionRepo struct{ db *gorm.DB }

func NewAIActionRepository(db *gorm.DB) AIActionRepository { return &aiActionRepo{db: db} }

func (r *aiActionRepo) CreateTx(tx *gorm.DB, a *model.AIAction) error {
	return tx.Create(a).Error
}

func (r *aiActionRepo) List(ctx context.Context, limit int) ([]model.AIAction, error) {
	if limit < 1 || limit > 500 {
		limit = 100
	}
	var actions []model.AIAction
	err := r.db.WithContext(ctx).Order("created_at DESC").Limit(limit).Find(&actions).Error
	return actions, err
}
