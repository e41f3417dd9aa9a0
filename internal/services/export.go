package services

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/slivora/slivora-backend/internal/pkg/logger"
	"github.com/slivora/slivora-backend/internal/plan"
	"github.com/slivora/slivora-backend/internal/pricing"
	"github.com/slivora/slivora-backend/internal/render"
	"github.com/slivora/slivora-backend/internal/repos"
	"github.com/slivora/slivora-backend/internal/synth"
	"github.com/slivora/slivora-backend/internal/types"
	"github.com/slivora/slivora-backend/internal/watermark"
)

var ErrProjectNotReady = errors.New("project has no generated slide plan to export")

const signedURLTTL = time.Hour

// ExportResult is a finished export: the deck lives in the bucket and
// the URL is a short-lived signed download link.
type ExportResult struct {
	URL        string `json:"url"`
	Filename   string `json:"filename"`
	ThemeKey   string `json:"theme"`
	SlideCount int    `json:"slide_count"`
}

// ExportService renders a project's stored slide plan to a .pptx file,
// uploads it and returns a signed download URL.
type ExportService interface {
	Export(ctx context.Context, userPlan string, project *types.Project) (*ExportResult, error)
}

type exportService struct {
	projectRepo repos.ProjectRepo
	bucket      BucketService
	tokens      TokenService
	watermarks  *watermark.Source
	log         *logger.Logger
}

func NewExportService(projectRepo repos.ProjectRepo, bucket BucketService, tokens TokenService, watermarks *watermark.Source, log *logger.Logger) ExportService {
	return &exportService{
		projectRepo: projectRepo,
		bucket:      bucket,
		tokens:      tokens,
		watermarks:  watermarks,
		log:         log.With("service", "ExportService"),
	}
}

func (es *exportService) Export(ctx context.Context, userPlan string, project *types.Project) (*ExportResult, error) {
	if project.Status != types.ProjectStatusReady || len(project.SlidePlan) == 0 {
		return nil, ErrProjectNotReady
	}

	check, err := es.tokens.Check(ctx, project.UserID, pricing.ActionExportPresentation)
	if err != nil {
		return nil, err
	}
	if !check.OK {
		return nil, &InsufficientTokensError{Check: check}
	}

	slidePlan, err := plan.Decode(project.SlidePlan)
	if err != nil {
		return nil, fmt.Errorf("stored slide plan is unreadable: %w", err)
	}
	plan.Normalize(slidePlan)
	// Stored plans were valid when persisted, but a manual edit or a
	// schema change can invalidate them; never render an invalid plan.
	if fieldErrs := plan.Validate(slidePlan); len(fieldErrs) > 0 {
		return nil, &synth.ValidationError{Fields: fieldErrs}
	}

	result, err := render.Render(slidePlan, render.Options{
		ThemeKey:  project.Theme,
		Tier:      userPlan,
		Watermark: es.watermarks.Select(),
	})
	if err != nil {
		return nil, err
	}

	key := fmt.Sprintf("%s/%s", project.UserID, result.Filename)
	if err := es.bucket.UploadFile(ctx, key, bytes.NewReader(result.Bytes)); err != nil {
		return nil, err
	}
	url, err := es.bucket.SignedURL(key, signedURLTTL)
	if err != nil {
		return nil, err
	}

	// An empty project theme means the renderer pinned a random one.
	// Persist it so re-exports keep the same look.
	project.Theme = result.ThemeKey
	project.PptxURL = url
	project.ExportCount++
	if err := es.projectRepo.Update(ctx, nil, project); err != nil {
		es.log.Error("Failed to record export on project", "project_id", project.ID, "error", err)
	}

	if _, err := es.tokens.Deduct(ctx, project.UserID, pricing.ActionExportPresentation, &project.ID, map[string]any{
		"filename": result.Filename,
	}); err != nil {
		es.log.Error("Token deduction after export failed", "project_id", project.ID, "error", err)
	}

	es.log.Info("Export complete", "project_id", project.ID, "key", key, "slides", result.SlideCount)
	return &ExportResult{
		URL:        url,
		Filename:   result.Filename,
		ThemeKey:   result.ThemeKey,
		SlideCount: result.SlideCount,
	}, nil
}
