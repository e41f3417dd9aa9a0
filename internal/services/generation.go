package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/datatypes"

	"github.com/slivora/slivora-backend/internal/pkg/logger"
	"github.com/slivora/slivora-backend/internal/plan"
	"github.com/slivora/slivora-backend/internal/pricing"
	"github.com/slivora/slivora-backend/internal/repos"
	"github.com/slivora/slivora-backend/internal/synth"
	"github.com/slivora/slivora-backend/internal/types"
)

var ErrThemeNotAvailable = errors.New("theme is not available on the current plan")

// InsufficientTokensError carries the failed affordability check so
// callers can surface the balance alongside the refusal.
type InsufficientTokensError struct {
	Check *TokenCheck
}

func (e *InsufficientTokensError) Error() string {
	if e.Check != nil && e.Check.Message != "" {
		return e.Check.Message
	}
	return "insufficient tokens"
}

// GenerationService runs the synthesis pipeline for a project and keeps
// the project row in sync with the outcome.
type GenerationService interface {
	Generate(ctx context.Context, userPlan string, project *types.Project, action string) (*types.Project, error)
}

type generationService struct {
	synthesizer *synth.Synthesizer
	projectRepo repos.ProjectRepo
	tokens      TokenService
	log         *logger.Logger
}

func NewGenerationService(synthesizer *synth.Synthesizer, projectRepo repos.ProjectRepo, tokens TokenService, log *logger.Logger) GenerationService {
	return &generationService{
		synthesizer: synthesizer,
		projectRepo: projectRepo,
		tokens:      tokens,
		log:         log.With("service", "GenerationService"),
	}
}

func (gs *generationService) Generate(ctx context.Context, userPlan string, project *types.Project, action string) (*types.Project, error) {
	if action != pricing.ActionCreatePresentation && action != pricing.ActionRegenerateSlides {
		return nil, fmt.Errorf("unsupported generation action: %s", action)
	}
	if project.Theme != "" && !pricing.IsThemeAvailableForPlan(project.Theme, userPlan) {
		return nil, ErrThemeNotAvailable
	}

	check, err := gs.tokens.Check(ctx, project.UserID, action)
	if err != nil {
		return nil, err
	}
	if !check.OK {
		return nil, &InsufficientTokensError{Check: check}
	}

	if project.Status != types.ProjectStatusGenerating {
		project.Status = types.ProjectStatusGenerating
		project.GenerateError = ""
		if err := gs.projectRepo.Update(ctx, nil, project); err != nil {
			return nil, err
		}
	}

	slidePlan, err := gs.synthesizer.Synthesize(ctx, synth.Brief{
		Title:    project.Title,
		Language: project.Language,
		Outline:  project.Outline,
	})
	if err != nil {
		project.Status = types.ProjectStatusError
		project.GenerateError = err.Error()
		if updateErr := gs.projectRepo.Update(ctx, nil, project); updateErr != nil {
			gs.log.Error("Failed to record generation failure", "project_id", project.ID, "error", updateErr)
		}
		return nil, err
	}

	raw, err := plan.Encode(slidePlan)
	if err != nil {
		return nil, fmt.Errorf("failed to encode slide plan: %w", err)
	}

	now := time.Now()
	project.SlidePlan = datatypes.JSON(raw)
	project.SlideCount = len(slidePlan.Slides)
	project.Status = types.ProjectStatusReady
	project.GenerateError = ""
	project.LastGeneratedAt = &now
	if err := gs.projectRepo.Update(ctx, nil, project); err != nil {
		return nil, err
	}

	// Deduction happens only after the plan is persisted. A failure here
	// means the user got slides for free, which beats charging for a
	// generation they never received.
	if _, err := gs.tokens.Deduct(ctx, project.UserID, action, &project.ID, map[string]any{
		"slide_count": project.SlideCount,
	}); err != nil {
		gs.log.Error("Token deduction after generation failed", "project_id", project.ID, "action", action, "error", err)
	}

	gs.log.Info("Generation complete", "project_id", project.ID, "slides", project.SlideCount, "action", action)
	return project, nil
}
