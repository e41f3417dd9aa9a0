package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Project statuses. A project sits in "generating" while the synthesis
// pipeline runs and lands in "ready" or "error".
const (
	ProjectStatusGenerating = "generating"
	ProjectStatusReady      = "ready"
	ProjectStatusError      = "error"
)

type Project struct {
	ID              uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	UserID          uuid.UUID      `gorm:"type:uuid;not null;index;column:user_id" json:"user_id"`
	Title           string         `gorm:"not null;column:title" json:"title"`
	Language        string         `gorm:"not null;column:language" json:"language"`
	Outline         string         `gorm:"type:text;column:outline" json:"outline"`
	Theme           string         `gorm:"column:theme" json:"theme"`
	Status          string         `gorm:"not null;default:generating;column:status" json:"status"`
	SlidePlan       datatypes.JSON `gorm:"column:slide_plan" json:"slide_plan,omitempty"`
	SlideCount      int            `gorm:"not null;default:0;column:slide_count" json:"slide_count"`
	PptxURL         string         `gorm:"column:pptx_url" json:"pptx_url,omitempty"`
	ExportCount     int            `gorm:"not null;default:0;column:export_count" json:"export_count"`
	LastGeneratedAt *time.Time     `gorm:"column:last_generated_at" json:"last_generated_at,omitempty"`
	GenerateError   string         `gorm:"column:generate_error" json:"generate_error,omitempty"`
	CreatedAt       time.Time      `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt       time.Time      `gorm:"not null;default:now()" json:"updated_at"`
}

func (Project) TableName() string {
	return "project"
}

func (p *Project) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}
