package repos

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/slivora/slivora-backend/internal/pkg/logger"
	"github.com/slivora/slivora-backend/internal/types"
)

type TokenUsageRepo interface {
	Create(ctx context.Context, tx *gorm.DB, usage *types.TokenUsage) (*types.TokenUsage, error)
	ListByUser(ctx context.Context, tx *gorm.DB, userID uuid.UUID, limit int) ([]*types.TokenUsage, error)
}

type tokenUsageRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewTokenUsageRepo(db *gorm.DB, baseLog *logger.Logger) TokenUsageRepo {
	return &tokenUsageRepo{db: db, log: baseLog.With("repo", "TokenUsageRepo")}
}

func (tr *tokenUsageRepo) Create(ctx context.Context, tx *gorm.DB, usage *types.TokenUsage) (*types.TokenUsage, error) {
	transaction := tx
	if transaction == nil {
		transaction = tr.db
	}
	if err := transaction.WithContext(ctx).Create(usage).Error; err != nil {
		return nil, err
	}
	return usage, nil
}

func (tr *tokenUsageRepo) ListByUser(ctx context.Context, tx *gorm.DB, userID uuid.UUID, limit int) ([]*types.TokenUsage, error) {
	transaction := tx
	if transaction == nil {
		transaction = tr.db
	}
	if limit <= 0 {
		limit = 50
	}
	var rows []*types.TokenUsage
	if err := transaction.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Limit(limit).
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}
