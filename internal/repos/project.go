package repos

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/slivora/slivora-backend/internal/pkg/logger"
	"github.com/slivora/slivora-backend/internal/types"
)

type ProjectRepo interface {
	Create(ctx context.Context, tx *gorm.DB, project *types.Project) (*types.Project, error)
	GetByID(ctx context.Context, tx *gorm.DB, projectID uuid.UUID) (*types.Project, error)
	ListByUser(ctx context.Context, tx *gorm.DB, userID uuid.UUID) ([]*types.Project, error)
	Update(ctx context.Context, tx *gorm.DB, project *types.Project) error
	Delete(ctx context.Context, tx *gorm.DB, projectID uuid.UUID) error
}

type projectRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewProjectRepo(db *gorm.DB, baseLog *logger.Logger) ProjectRepo {
	return &projectRepo{db: db, log: baseLog.With("repo", "ProjectRepo")}
}

func (pr *projectRepo) Create(ctx context.Context, tx *gorm.DB, project *types.Project) (*types.Project, error) {
	transaction := tx
	if transaction == nil {
		transaction = pr.db
	}
	if err := transaction.WithContext(ctx).Create(project).Error; err != nil {
		return nil, err
	}
	return project, nil
}

func (pr *projectRepo) GetByID(ctx context.Context, tx *gorm.DB, projectID uuid.UUID) (*types.Project, error) {
	transaction := tx
	if transaction == nil {
		transaction = pr.db
	}
	var project types.Project
	if err := transaction.WithContext(ctx).
		Where("id = ?", projectID).
		First(&project).Error; err != nil {
		return nil, err
	}
	return &project, nil
}

func (pr *projectRepo) ListByUser(ctx context.Context, tx *gorm.DB, userID uuid.UUID) ([]*types.Project, error) {
	transaction := tx
	if transaction == nil {
		transaction = pr.db
	}
	var projects []*types.Project
	if err := transaction.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&projects).Error; err != nil {
		return nil, err
	}
	return projects, nil
}

func (pr *projectRepo) Update(ctx context.Context, tx *gorm.DB, project *types.Project) error {
	transaction := tx
	if transaction == nil {
		transaction = pr.db
	}
	return transaction.WithContext(ctx).Save(project).Error
}

func (pr *projectRepo) Delete(ctx context.Context, tx *gorm.DB, projectID uuid.UUID) error {
	transaction := tx
	if transaction == nil {
		transaction = pr.db
	}
	return transaction.WithContext(ctx).
		Where("id = ?", projectID).
		Delete(&types.Project{}).Error
}
