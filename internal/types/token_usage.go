package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// TokenUsage is the append-only ledger of token deductions.
type TokenUsage struct {
	ID        uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	UserID    uuid.UUID      `gorm:"type:uuid;not null;index;column:user_id" json:"user_id"`
	ProjectID *uuid.UUID     `gorm:"type:uuid;index;column:project_id" json:"project_id,omitempty"`
	Action    string         `gorm:"not null;column:action" json:"action"`
	Tokens    int            `gorm:"not null;column:tokens" json:"tokens"`
	Metadata  datatypes.JSON `gorm:"column:metadata" json:"metadata,omitempty"`
	CreatedAt time.Time      `gorm:"not null;default:now()" json:"created_at"`
}

func (TokenUsage) TableName() string {
	return "token_usage"
}

func (t *TokenUsage) BeforeCreate(tx *gorm.DB) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	return nil
}
