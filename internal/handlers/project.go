package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/slivora/slivora-backend/internal/http/response"
	"github.com/slivora/slivora-backend/internal/pkg/logger"
	"github.com/slivora/slivora-backend/internal/pricing"
	"github.com/slivora/slivora-backend/internal/requestdata"
	"github.com/slivora/slivora-backend/internal/services"
)

type ProjectHandler struct {
	log        *logger.Logger
	projects   services.ProjectService
	generation services.GenerationService
	exports    services.ExportService
	tokens     services.TokenService
}

func NewProjectHandler(log *logger.Logger, projects services.ProjectService, generation services.GenerationService, exports services.ExportService, tokens services.TokenService) *ProjectHandler {
	return &ProjectHandler{
		log:        log.With("handler", "ProjectHandler"),
		projects:   projects,
		generation: generation,
		exports:    exports,
		tokens:     tokens,
	}
}

type createProjectRequest struct {
	Title    string `json:"title" binding:"required"`
	Language string `json:"language"`
	Outline  string `json:"outline"`
	Theme    string `json:"theme"`
}

// Create makes a project row and runs generation synchronously. The
// response carries the finished project including its slide plan.
func (ph *ProjectHandler) Create(c *gin.Context) {
	rd := requestdata.GetRequestData(c.Request.Context())

	var req createProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}

	if req.Theme != "" && !pricing.IsThemeAvailableForPlan(req.Theme, rd.Plan) {
		response.RespondError(c, http.StatusForbidden, "theme_not_available", services.ErrThemeNotAvailable)
		return
	}

	// Affordability is settled before the project row exists so a broke
	// account does not accumulate stuck "generating" rows.
	check, err := ph.tokens.Check(c.Request.Context(), rd.UserID, pricing.ActionCreatePresentation)
	if err != nil {
		respondServiceError(c, ph.log, err)
		return
	}
	if !check.OK {
		respondServiceError(c, ph.log, &services.InsufficientTokensError{Check: check})
		return
	}

	project, err := ph.projects.Create(c.Request.Context(), rd.UserID, req.Title, req.Language, req.Outline, req.Theme)
	if err != nil {
		respondServiceError(c, ph.log, err)
		return
	}

	project, err = ph.generation.Generate(c.Request.Context(), rd.Plan, project, pricing.ActionCreatePresentation)
	if err != nil {
		respondServiceError(c, ph.log, err)
		return
	}
	response.RespondCreated(c, project)
}

func (ph *ProjectHandler) Regenerate(c *gin.Context) {
	rd := requestdata.GetRequestData(c.Request.Context())
	projectID, ok := parseProjectID(c)
	if !ok {
		return
	}

	project, err := ph.projects.GetOwned(c.Request.Context(), rd.UserID, projectID)
	if err != nil {
		respondServiceError(c, ph.log, err)
		return
	}
	project, err = ph.generation.Generate(c.Request.Context(), rd.Plan, project, pricing.ActionRegenerateSlides)
	if err != nil {
		respondServiceError(c, ph.log, err)
		return
	}
	response.RespondOK(c, project)
}

func (ph *ProjectHandler) List(c *gin.Context) {
	rd := requestdata.GetRequestData(c.Request.Context())
	projects, err := ph.projects.ListByUser(c.Request.Context(), rd.UserID)
	if err != nil {
		respondServiceError(c, ph.log, err)
		return
	}
	response.RespondOK(c, gin.H{"projects": projects})
}

func (ph *ProjectHandler) Get(c *gin.Context) {
	rd := requestdata.GetRequestData(c.Request.Context())
	projectID, ok := parseProjectID(c)
	if !ok {
		return
	}
	project, err := ph.projects.GetOwned(c.Request.Context(), rd.UserID, projectID)
	if err != nil {
		respondServiceError(c, ph.log, err)
		return
	}
	response.RespondOK(c, project)
}

func (ph *ProjectHandler) Delete(c *gin.Context) {
	rd := requestdata.GetRequestData(c.Request.Context())
	projectID, ok := parseProjectID(c)
	if !ok {
		return
	}
	if err := ph.projects.Delete(c.Request.Context(), rd.UserID, projectID); err != nil {
		respondServiceError(c, ph.log, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (ph *ProjectHandler) Export(c *gin.Context) {
	rd := requestdata.GetRequestData(c.Request.Context())
	projectID, ok := parseProjectID(c)
	if !ok {
		return
	}
	project, err := ph.projects.GetOwned(c.Request.Context(), rd.UserID, projectID)
	if err != nil {
		respondServiceError(c, ph.log, err)
		return
	}
	result, err := ph.exports.Export(c.Request.Context(), rd.Plan, project)
	if err != nil {
		respondServiceError(c, ph.log, err)
		return
	}
	response.RespondOK(c, result)
}

func parseProjectID(c *gin.Context) (uuid.UUID, bool) {
	projectID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_project_id", err)
		return uuid.Nil, false
	}
	return projectID, true
}
