package render

import (
	"github.com/slivora/slivora-backend/internal/pricing"
	"github.com/slivora/slivora-backend/internal/themes"
	"github.com/slivora/slivora-backend/internal/watermark"
)

// Options selects the look and tier gating for one render.
type Options struct {
	// ThemeKey picks the document theme. Empty means one random catalog
	// theme, chosen at render start and fixed for the whole deck.
	ThemeKey string
	// Tier is the owner's subscription plan; the free tier is watermarked.
	Tier string
	// Watermark is the asset stamped on free-tier decks.
	Watermark watermark.Asset
}

// renderContext travels through every composer explicitly. Nothing here is
// process-global, so concurrent renders with different themes cannot
// interfere.
type renderContext struct {
	theme      themes.Theme
	tier       string
	watermark  watermark.Asset
	slideIndex int
}

func (rc *renderContext) watermarked() bool {
	return rc.tier == pricing.PlanFree || rc.tier == ""
}
