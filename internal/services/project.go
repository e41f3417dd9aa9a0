package services

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/slivora/slivora-backend/internal/pkg/logger"
	"github.com/slivora/slivora-backend/internal/repos"
	"github.com/slivora/slivora-backend/internal/types"
)

var (
	ErrProjectNotFound = errors.New("project not found")
	ErrNotProjectOwner = errors.New("project belongs to another user")
	ErrEmptyTitle      = errors.New("project title is required")
)

// ProjectService owns the project lifecycle around the generation
// pipeline. Reads and deletes are always scoped to the owning user.
type ProjectService interface {
	Create(ctx context.Context, userID uuid.UUID, title, language, outline, theme string) (*types.Project, error)
	GetOwned(ctx context.Context, userID, projectID uuid.UUID) (*types.Project, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]*types.Project, error)
	Delete(ctx context.Context, userID, projectID uuid.UUID) error
}

type projectService struct {
	projectRepo repos.ProjectRepo
	log         *logger.Logger
}

func NewProjectService(projectRepo repos.ProjectRepo, log *logger.Logger) ProjectService {
	return &projectService{
		projectRepo: projectRepo,
		log:         log.With("service", "ProjectService"),
	}
}

func (ps *projectService) Create(ctx context.Context, userID uuid.UUID, title, language, outline, theme string) (*types.Project, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, ErrEmptyTitle
	}
	if strings.TrimSpace(language) == "" {
		language = "English"
	}

	project := &types.Project{
		UserID:   userID,
		Title:    title,
		Language: language,
		Outline:  outline,
		Theme:    theme,
		Status:   types.ProjectStatusGenerating,
	}
	return ps.projectRepo.Create(ctx, nil, project)
}

func (ps *projectService) GetOwned(ctx context.Context, userID, projectID uuid.UUID) (*types.Project, error) {
	project, err := ps.projectRepo.GetByID(ctx, nil, projectID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProjectNotFound
		}
		return nil, err
	}
	if project.UserID != userID {
		return nil, ErrNotProjectOwner
	}
	return project, nil
}

func (ps *projectService) ListByUser(ctx context.Context, userID uuid.UUID) ([]*types.Project, error) {
	return ps.projectRepo.ListByUser(ctx, nil, userID)
}

func (ps *projectService) Delete(ctx context.Context, userID, projectID uuid.UUID) error {
	if _, err := ps.GetOwned(ctx, userID, projectID); err != nil {
		return err
	}
	return ps.projectRepo.Delete(ctx, nil, projectID)
}
