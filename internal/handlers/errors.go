package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/slivora/slivora-backend/internal/http/response"
	"github.com/slivora/slivora-backend/internal/pkg/logger"
	"github.com/slivora/slivora-backend/internal/render"
	"github.com/slivora/slivora-backend/internal/services"
	"github.com/slivora/slivora-backend/internal/synth"
)

// respondServiceError maps pipeline and service errors onto HTTP status
// codes. Anything unrecognized is a 500.
func respondServiceError(c *gin.Context, log *logger.Logger, err error) {
	var insufficient *services.InsufficientTokensError
	if errors.As(err, &insufficient) {
		c.JSON(http.StatusPaymentRequired, gin.H{
			"error": gin.H{
				"message": insufficient.Error(),
				"code":    "insufficient_tokens",
				"balance": insufficient.Check,
			},
		})
		return
	}

	var validation *synth.ValidationError
	if errors.As(err, &validation) {
		fields := make([]string, 0, len(validation.Fields))
		for _, fe := range validation.Fields {
			fields = append(fields, fe.String())
		}
		response.RespondFieldErrors(c, http.StatusUnprocessableEntity, "invalid_slide_plan",
			"The generated slide plan failed validation.", fields)
		return
	}

	var synthFailed *synth.SynthesisFailedError
	if errors.As(err, &synthFailed) {
		response.RespondError(c, http.StatusUnprocessableEntity, "synthesis_failed", err)
		return
	}

	var upstream *synth.UpstreamError
	if errors.As(err, &upstream) {
		status := http.StatusBadGateway
		if upstream.Kind == synth.UpstreamRateLimited {
			status = http.StatusTooManyRequests
		}
		response.RespondError(c, status, "upstream_"+upstream.Kind, errors.New(upstream.UserMessage()))
		return
	}

	var extraction *synth.ExtractionError
	if errors.As(err, &extraction) {
		response.RespondError(c, http.StatusBadGateway, "upstream_output", err)
		return
	}

	var renderErr *render.RenderError
	if errors.As(err, &renderErr) {
		log.Error("Render failed", "error", err)
		response.RespondError(c, http.StatusInternalServerError, "render_failed", err)
		return
	}

	switch {
	case errors.Is(err, services.ErrThemeNotAvailable):
		response.RespondError(c, http.StatusForbidden, "theme_not_available", err)
	case errors.Is(err, services.ErrProjectNotFound):
		response.RespondError(c, http.StatusNotFound, "project_not_found", err)
	case errors.Is(err, services.ErrNotProjectOwner):
		response.RespondError(c, http.StatusForbidden, "forbidden", err)
	case errors.Is(err, services.ErrProjectNotReady):
		response.RespondError(c, http.StatusConflict, "project_not_ready", err)
	case errors.Is(err, services.ErrEmptyTitle):
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
	default:
		log.Error("Unhandled service error", "error", err)
		response.RespondError(c, http.StatusInternalServerError, "internal_error", errors.New("internal server error"))
	}
}
