package model

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// AIAction is the append-only audit trail of replenishment pipeline decisions:
// which supplier got an order, for what items, at what total, and why.
// Informational only — it has no consistency requirement with the order rows.
type AIAction struct {
	ID         uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	ActionType string          `gorm:"not null;index"`
	ActionData json.RawMessage `gorm:"type:jsonb"`
	CreatedAt  time.Time
}

func (AIAction) TableName() string { return "ai_actions" }
