// Package pricing holds the subscription plan catalog and token costs.
// Values change here without touching core logic.
package pricing

const (
	PlanFree       = "free"
	PlanPro        = "pro"
	PlanBusiness   = "business"
	PlanEnterprise = "enterprise"

	DefaultPlan = PlanFree
)

const (
	ActionCreatePresentation = "create_presentation"
	ActionAddEditSlide       = "add_edit_slide"
	ActionExportPresentation = "export_presentation"
	ActionGenerateAnalytics  = "generate_analytics"
	ActionRegenerateSlides   = "regenerate_slides"
	ActionGenerateStudyNotes = "generate_study_notes"
)

type PlanConfig struct {
	ID                 string
	Name               string
	PriceUSD           int
	MonthlyTokens      int
	RolloverPercentage int
	AvailableThemes    []string
}

var freeThemes = []string{"minimal", "modern"}
var paidThemes = []string{"minimal", "modern", "corporate", "colorful", "creative"}

var plans = map[string]PlanConfig{
	PlanFree: {
		ID:                 PlanFree,
		Name:               "Free",
		PriceUSD:           0,
		MonthlyTokens:      50,
		RolloverPercentage: 0,
		AvailableThemes:    freeThemes,
	},
	PlanPro: {
		ID:                 PlanPro,
		Name:               "Pro",
		PriceUSD:           19,
		MonthlyTokens:      500,
		RolloverPercentage: 10,
		AvailableThemes:    paidThemes,
	},
	PlanBusiness: {
		ID:                 PlanBusiness,
		Name:               "Business",
		PriceUSD:           49,
		MonthlyTokens:      5000,
		RolloverPercentage: 15,
		AvailableThemes:    paidThemes,
	},
	PlanEnterprise: {
		ID:                 PlanEnterprise,
		Name:               "Enterprise",
		PriceUSD:           0,
		MonthlyTokens:      10000,
		RolloverPercentage: 20,
		AvailableThemes:    paidThemes,
	},
}

var tokenCosts = map[string]int{
	ActionCreatePresentation: 10,
	ActionAddEditSlide:       1,
	ActionExportPresentation: 3,
	ActionGenerateAnalytics:  8,
	ActionRegenerateSlides:   10,
	ActionGenerateStudyNotes: 5,
}

// GetPlan returns the config for the given plan, falling back to the free
// plan for unknown ids.
func GetPlan(planID string) PlanConfig {
	if p, ok := plans[planID]; ok {
		return p
	}
	return plans[DefaultPlan]
}

// ActionCost returns the token cost for an action, or 0 for unknown actions.
func ActionCost(action string) int {
	return tokenCosts[action]
}

func IsKnownAction(action string) bool {
	_, ok := tokenCosts[action]
	return ok
}

func IsThemeAvailableForPlan(themeKey, planID string) bool {
	for _, key := range GetPlan(planID).AvailableThemes {
		if key == themeKey {
			return true
		}
	}
	return false
}

func AvailableThemesForPlan(planID string) []string {
	src := GetPlan(planID).AvailableThemes
	out := make([]string, len(src))
	copy(out, src)
	return out
}

// RolloverTokens computes how many unused tokens carry into the next cycle.
func RolloverTokens(usedTokens, monthlyTokens, rolloverPercentage int) int {
	unused := monthlyTokens - usedTokens
	if unused < 0 {
		unused = 0
	}
	return unused * rolloverPercentage / 100
}
