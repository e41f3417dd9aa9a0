package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type User struct {
	ID             uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Email          string    `gorm:"uniqueIndex;not null;column:email" json:"email"`
	Plan           string    `gorm:"not null;default:free;column:plan" json:"plan"`
	TokensUsed     int       `gorm:"not null;default:0;column:tokens_used" json:"tokens_used"`
	RolloverTokens int       `gorm:"not null;default:0;column:rollover_tokens" json:"rollover_tokens"`
	CycleStartedAt time.Time `gorm:"column:cycle_started_at" json:"cycle_started_at"`
	CreatedAt      time.Time `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt      time.Time `gorm:"not null;default:now()" json:"updated_at"`
}

func (User) TableName() string {
	return "user"
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return nil
}
