package services

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"gorm.io/datatypes"

	"github.com/slivora/slivora-backend/internal/pkg/logger"
	"github.com/slivora/slivora-backend/internal/plan"
	"github.com/slivora/slivora-backend/internal/pricing"
	"github.com/slivora/slivora-backend/internal/repos"
	"github.com/slivora/slivora-backend/internal/synth"
	"github.com/slivora/slivora-backend/internal/types"
	"github.com/slivora/slivora-backend/internal/watermark"
)

type fakeBucket struct {
	uploads map[string][]byte
}

func newFakeBucket() *fakeBucket {
	return &fakeBucket{uploads: make(map[string][]byte)}
}

func (fb *fakeBucket) UploadFile(_ context.Context, key string, file io.Reader) error {
	data, err := io.ReadAll(file)
	if err != nil {
		return err
	}
	fb.uploads[key] = data
	return nil
}

func (fb *fakeBucket) SignedURL(key string, _ time.Duration) (string, error) {
	return "https://signed.example/" + key, nil
}

func (fb *fakeBucket) DeleteFile(_ context.Context, key string) error {
	delete(fb.uploads, key)
	return nil
}

func exportablePlan() *plan.Plan {
	return &plan.Plan{
		ProjectTitle: "Quarterly Review",
		Language:     "en",
		Slides: []plan.Slide{
			{ID: "slide-1", Title: "Quarterly Review", Layout: plan.LayoutTitle},
			{ID: "slide-2", Title: "Highlights", Bullets: []string{"Revenue up"}, Layout: plan.LayoutTitleBullets},
			{ID: "slide-3", Title: "Next Steps", Layout: plan.LayoutSection},
		},
	}
}

func TestExportRendersUploadsAndDeducts(t *testing.T) {
	db := newTokenTestDB(t)
	log, err := logger.New("development")
	if err != nil {
		t.Fatalf("logger.New: %v", err)
	}
	userRepo := repos.NewUserRepo(db, log)
	usageRepo := repos.NewTokenUsageRepo(db, log)
	projectRepo := repos.NewProjectRepo(db, log)
	tokens := NewTokenService(db, userRepo, usageRepo, log)
	bucket := newFakeBucket()
	es := NewExportService(projectRepo, bucket, tokens, watermark.NewSource(log), log)

	user := seedUser(t, db, pricing.PlanFree, 0, 0)
	raw, err := plan.Encode(exportablePlan())
	if err != nil {
		t.Fatalf("encode plan: %v", err)
	}
	project := &types.Project{
		UserID:     user.ID,
		Title:      "Quarterly Review",
		Language:   "en",
		Theme:      "minimal",
		Status:     types.ProjectStatusReady,
		SlidePlan:  datatypes.JSON(raw),
		SlideCount: 3,
	}
	if err := db.Create(project).Error; err != nil {
		t.Fatalf("seed project: %v", err)
	}

	result, err := es.Export(context.Background(), pricing.PlanFree, project)
	if err != nil {
		t.Fatalf("Export: %v", err)
	}
	if !strings.HasPrefix(result.Filename, "quarterly-review-") || !strings.HasSuffix(result.Filename, ".pptx") {
		t.Fatalf("unexpected filename %q", result.Filename)
	}
	key := project.UserID.String() + "/" + result.Filename
	if len(bucket.uploads[key]) == 0 {
		t.Fatalf("deck bytes not uploaded under %q", key)
	}
	if result.URL != "https://signed.example/"+key {
		t.Fatalf("unexpected URL %q", result.URL)
	}

	var reloaded types.Project
	if err := db.First(&reloaded, "id = ?", project.ID).Error; err != nil {
		t.Fatalf("reload project: %v", err)
	}
	if reloaded.ExportCount != 1 || reloaded.PptxURL != result.URL {
		t.Fatalf("export not recorded: count=%d url=%q", reloaded.ExportCount, reloaded.PptxURL)
	}

	var ledger []types.TokenUsage
	if err := db.Find(&ledger, "user_id = ?", user.ID).Error; err != nil {
		t.Fatalf("load ledger: %v", err)
	}
	if len(ledger) != 1 || ledger[0].Action != pricing.ActionExportPresentation || ledger[0].Tokens != 3 {
		t.Fatalf("unexpected ledger: %+v", ledger)
	}
}

func TestExportRejectsInvalidStoredPlan(t *testing.T) {
	db := newTokenTestDB(t)
	log, err := logger.New("development")
	if err != nil {
		t.Fatalf("logger.New: %v", err)
	}
	userRepo := repos.NewUserRepo(db, log)
	usageRepo := repos.NewTokenUsageRepo(db, log)
	projectRepo := repos.NewProjectRepo(db, log)
	tokens := NewTokenService(db, userRepo, usageRepo, log)
	bucket := newFakeBucket()
	es := NewExportService(projectRepo, bucket, tokens, watermark.NewSource(log), log)

	user := seedUser(t, db, pricing.PlanFree, 0, 0)

	// Two slides with the same id: decodes fine, fails validation.
	corrupted := exportablePlan()
	corrupted.Slides[1].ID = "slide-1"
	raw, err := plan.Encode(corrupted)
	if err != nil {
		t.Fatalf("encode plan: %v", err)
	}
	project := &types.Project{
		UserID:    user.ID,
		Title:     "Quarterly Review",
		Language:  "en",
		Theme:     "minimal",
		Status:    types.ProjectStatusReady,
		SlidePlan: datatypes.JSON(raw),
	}
	if err := db.Create(project).Error; err != nil {
		t.Fatalf("seed project: %v", err)
	}

	_, err = es.Export(context.Background(), pricing.PlanFree, project)
	var validation *synth.ValidationError
	if !errors.As(err, &validation) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if len(bucket.uploads) != 0 {
		t.Fatal("invalid plan must not be uploaded")
	}
}

func TestExportRequiresReadyProject(t *testing.T) {
	db := newTokenTestDB(t)
	log, err := logger.New("development")
	if err != nil {
		t.Fatalf("logger.New: %v", err)
	}
	userRepo := repos.NewUserRepo(db, log)
	usageRepo := repos.NewTokenUsageRepo(db, log)
	projectRepo := repos.NewProjectRepo(db, log)
	tokens := NewTokenService(db, userRepo, usageRepo, log)
	es := NewExportService(projectRepo, newFakeBucket(), tokens, watermark.NewSource(log), log)

	user := seedUser(t, db, pricing.PlanFree, 0, 0)
	project := &types.Project{
		UserID:   user.ID,
		Title:    "Pending",
		Language: "en",
		Status:   types.ProjectStatusGenerating,
	}
	if err := db.Create(project).Error; err != nil {
		t.Fatalf("seed project: %v", err)
	}

	if _, err := es.Export(context.Background(), pricing.PlanFree, project); !errors.Is(err, ErrProjectNotReady) {
		t.Fatalf("expected ErrProjectNotReady, got %v", err)
	}
}
