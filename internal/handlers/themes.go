package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/slivora/slivora-backend/internal/http/response"
	"github.com/slivora/slivora-backend/internal/pricing"
	"github.com/slivora/slivora-backend/internal/requestdata"
	"github.com/slivora/slivora-backend/internal/themes"
)

type themeInfo struct {
	Key       string `json:"key"`
	Name      string `json:"name"`
	Available bool   `json:"available"`
}

// ListThemes returns the full catalog with availability flags for the
// caller's plan. Locked themes stay visible so the client can upsell.
func ListThemes(c *gin.Context) {
	rd := requestdata.GetRequestData(c.Request.Context())

	keys := themes.Keys()
	out := make([]themeInfo, 0, len(keys))
	for _, key := range keys {
		theme := themes.Get(key)
		out = append(out, themeInfo{
			Key:       theme.Key,
			Name:      theme.Name,
			Available: pricing.IsThemeAvailableForPlan(key, rd.Plan),
		})
	}
	response.RespondOK(c, gin.H{"themes": out})
}
