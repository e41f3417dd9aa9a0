package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/slivora/slivora-backend/internal/http/response"
	"github.com/slivora/slivora-backend/internal/pkg/logger"
	"github.com/slivora/slivora-backend/internal/pricing"
	"github.com/slivora/slivora-backend/internal/repos"
	"github.com/slivora/slivora-backend/internal/requestdata"
)

type TokenHandler struct {
	log      *logger.Logger
	userRepo repos.UserRepo
}

func NewTokenHandler(log *logger.Logger, userRepo repos.UserRepo) *TokenHandler {
	return &TokenHandler{
		log:      log.With("handler", "TokenHandler"),
		userRepo: userRepo,
	}
}

// Balance reports the caller's token position for the current cycle.
func (th *TokenHandler) Balance(c *gin.Context) {
	rd := requestdata.GetRequestData(c.Request.Context())

	user, err := th.userRepo.GetByID(c.Request.Context(), nil, rd.UserID)
	if err != nil {
		respondServiceError(c, th.log, err)
		return
	}

	planCfg := pricing.GetPlan(user.Plan)
	available := planCfg.MonthlyTokens + user.RolloverTokens - user.TokensUsed
	if available < 0 {
		available = 0
	}
	response.RespondOK(c, gin.H{
		"plan":             user.Plan,
		"monthly_tokens":   planCfg.MonthlyTokens,
		"tokens_used":      user.TokensUsed,
		"rollover_tokens":  user.RolloverTokens,
		"available_tokens": available,
		"cycle_started_at": user.CycleStartedAt,
	})
}
