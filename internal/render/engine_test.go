package render

import (
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/slivora/slivora-backend/internal/plan"
	"github.com/slivora/slivora-backend/internal/pptx"
	"github.com/slivora/slivora-backend/internal/pricing"
	"github.com/slivora/slivora-backend/internal/themes"
	"github.com/slivora/slivora-backend/internal/watermark"
)

func fullPlan() *plan.Plan {
	return &plan.Plan{
		ProjectTitle: "Go in Production",
		Language:     "en",
		Slides: []plan.Slide{
			{ID: "slide-1", Title: "Go in Production", Layout: plan.LayoutTitle},
			{ID: "slide-2", Title: "Why Go", Bullets: []string{"Fast builds", "Small deploys"}, Layout: plan.LayoutTitleBullets},
			{ID: "slide-3", Title: "Part One", SpeakerNotes: "The basics", Layout: plan.LayoutSection},
			{ID: "slide-4", Title: "Simplicity is prerequisite for reliability", SpeakerNotes: "E. W. Dijkstra", Layout: plan.LayoutQuote},
			{ID: "slide-5", Title: "Architecture", Layout: plan.LayoutImage},
		},
		References: []plan.Reference{
			{URL: "https://go.dev/doc", Label: "Go Documentation"},
			{URL: "https://go.dev/blog"},
		},
	}
}

func TestComposeSlideCountAndTheme(t *testing.T) {
	deck, key, err := Compose(fullPlan(), Options{ThemeKey: "modern", Tier: pricing.PlanPro})
	if err != nil {
		t.Fatalf("compose: %v", err)
	}
	if key != "modern" {
		t.Fatalf("expected modern, got %q", key)
	}
	// 5 plan slides + references + thank-you.
	if len(deck.Slides) != 7 {
		t.Fatalf("expected 7 slides, got %d", len(deck.Slides))
	}
	bg := themes.Get("modern").Colors.Background
	for i, s := range deck.Slides {
		if s.Background != bg {
			t.Fatalf("slide %d background %q, want %q", i, s.Background, bg)
		}
	}
	if deck.Author != deckAuthor || deck.Company != deckCompany || deck.Title != "Go in Production" {
		t.Fatalf("unexpected deck metadata: %+v", deck)
	}
}

func TestComposeAllLayoutsStayInSafeArea(t *testing.T) {
	for _, key := range themes.Keys() {
		deck, _, err := Compose(fullPlan(), Options{ThemeKey: key, Tier: pricing.PlanFree, Watermark: watermark.Asset{Text: "SLIVORA FREE"}})
		if err != nil {
			t.Fatalf("theme %s: %v", key, err)
		}
		for i, slide := range deck.Slides {
			for _, shape := range slide.Shapes {
				if !insideSafe(shape.Box) {
					t.Fatalf("theme %s slide %d shape %q escapes safe area: %+v", key, i, shape.Name, shape.Box)
				}
			}
		}
	}
}

func TestFreeTierWatermarkOnEverySlide(t *testing.T) {
	deck, _, err := Compose(fullPlan(), Options{ThemeKey: "minimal", Tier: pricing.PlanFree, Watermark: watermark.Asset{Text: "TRIAL"}})
	if err != nil {
		t.Fatalf("compose: %v", err)
	}
	for i, slide := range deck.Slides {
		last := slide.Shapes[len(slide.Shapes)-1]
		if last.Name != "watermark" {
			t.Fatalf("slide %d: watermark must be the topmost shape, got %q", i, last.Name)
		}
		if last.Kind != pptx.KindText {
			t.Fatalf("slide %d: expected text watermark, got %q", i, last.Kind)
		}
		if last.RotationDeg == 0 {
			t.Fatalf("slide %d: watermark must be rotated", i)
		}
		if last.Paragraphs[0].Runs[0].Transparency == 0 {
			t.Fatalf("slide %d: watermark must be translucent", i)
		}
	}
}

func TestImageWatermarkAsset(t *testing.T) {
	png := []byte{0x89, 'P', 'N', 'G'}
	deck, _, err := Compose(fullPlan(), Options{ThemeKey: "minimal", Tier: pricing.PlanFree, Watermark: watermark.Asset{Image: png}})
	if err != nil {
		t.Fatalf("compose: %v", err)
	}
	last := deck.Slides[0].Shapes[len(deck.Slides[0].Shapes)-1]
	if last.Kind != pptx.KindPicture || last.Name != "watermark" {
		t.Fatalf("expected picture watermark, got %+v", last)
	}
	if last.ImageTransparency == 0 {
		t.Fatal("image watermark must be translucent")
	}
}

func TestPaidTiersHaveNoWatermark(t *testing.T) {
	for _, tier := range []string{pricing.PlanPro, pricing.PlanBusiness, pricing.PlanEnterprise} {
		deck, _, err := Compose(fullPlan(), Options{ThemeKey: "minimal", Tier: tier, Watermark: watermark.Asset{Text: "TRIAL"}})
		if err != nil {
			t.Fatalf("compose: %v", err)
		}
		for i, slide := range deck.Slides {
			for _, shape := range slide.Shapes {
				if shape.Name == "watermark" {
					t.Fatalf("tier %s slide %d: unexpected watermark", tier, i)
				}
			}
		}
	}
}

func TestReferencesSlideAppendedWithHyperlinks(t *testing.T) {
	deck, _, err := Compose(fullPlan(), Options{ThemeKey: "corporate", Tier: pricing.PlanBusiness})
	if err != nil {
		t.Fatalf("compose: %v", err)
	}
	refSlide := deck.Slides[5]
	var refs *pptx.Shape
	for i := range refSlide.Shapes {
		if refSlide.Shapes[i].Name == "references" {
			refs = &refSlide.Shapes[i]
		}
	}
	if refs == nil {
		t.Fatalf("missing references shape: %+v", refSlide.Shapes)
	}
	if len(refs.Paragraphs) != 2 {
		t.Fatalf("expected 2 reference bullets, got %d", len(refs.Paragraphs))
	}
	if refs.Paragraphs[0].Runs[0].HyperlinkURL != "https://go.dev/doc" {
		t.Fatalf("missing hyperlink: %+v", refs.Paragraphs[0])
	}
	if refs.Paragraphs[0].Runs[0].Text != "Go Documentation" {
		t.Fatalf("label not used: %+v", refs.Paragraphs[0])
	}
	// Bare URLs fall back to the URL as the visible text.
	if refs.Paragraphs[1].Runs[0].Text != "https://go.dev/blog" {
		t.Fatalf("url fallback missing: %+v", refs.Paragraphs[1])
	}
}

func TestReferencesSlideNotDuplicated(t *testing.T) {
	p := fullPlan()
	p.Slides = append(p.Slides, plan.Slide{ID: "slide-6", Title: "References", Bullets: []string{"go.dev"}, Layout: plan.LayoutTitleBullets})
	deck, _, err := Compose(p, Options{ThemeKey: "minimal", Tier: pricing.PlanPro})
	if err != nil {
		t.Fatalf("compose: %v", err)
	}
	// 6 plan slides + thank-you, no appended references slide.
	if len(deck.Slides) != 7 {
		t.Fatalf("expected 7 slides, got %d", len(deck.Slides))
	}
}

func TestNoReferencesListNoAppendedSlide(t *testing.T) {
	p := fullPlan()
	p.References = nil
	deck, _, err := Compose(p, Options{ThemeKey: "minimal", Tier: pricing.PlanPro})
	if err != nil {
		t.Fatalf("compose: %v", err)
	}
	// 5 plan slides + thank-you only.
	if len(deck.Slides) != 6 {
		t.Fatalf("expected 6 slides, got %d", len(deck.Slides))
	}
}

func TestEmptyThemeKeyPinsRandomCatalogTheme(t *testing.T) {
	deck, key, err := Compose(fullPlan(), Options{Tier: pricing.PlanPro})
	if err != nil {
		t.Fatalf("compose: %v", err)
	}
	if !themes.Exists(key) {
		t.Fatalf("returned key %q not in catalog", key)
	}
	bg := themes.Get(key).Colors.Background
	for i, s := range deck.Slides {
		if s.Background != bg {
			t.Fatalf("slide %d switched theme mid-document", i)
		}
	}
}

func TestUnknownLayoutFallsBackToTitleBullets(t *testing.T) {
	p := fullPlan()
	p.Slides[1].Layout = "freeform"
	deck, _, err := Compose(p, Options{ThemeKey: "minimal", Tier: pricing.PlanPro})
	if err != nil {
		t.Fatalf("compose: %v", err)
	}
	found := false
	for _, shape := range deck.Slides[1].Shapes {
		if shape.Name == "bullets" {
			found = true
		}
	}
	if !found {
		t.Fatalf("fallback layout missing bullets block: %+v", deck.Slides[1].Shapes)
	}
}

func TestRenderProducesDeckBytes(t *testing.T) {
	res, err := Render(fullPlan(), Options{ThemeKey: "sunset", Tier: pricing.PlanFree, Watermark: watermark.Asset{Text: "SLIVORA FREE"}})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if len(res.Bytes) == 0 {
		t.Fatal("empty output")
	}
	if res.ThemeKey != "sunset" || res.SlideCount != 7 {
		t.Fatalf("unexpected result: %+v", res)
	}
	if !strings.HasPrefix(res.Filename, "go-in-production-") || !strings.HasSuffix(res.Filename, ".pptx") {
		t.Fatalf("unexpected filename %q", res.Filename)
	}
}

func TestFilename(t *testing.T) {
	at := time.Date(2026, 8, 29, 12, 0, 0, 0, time.UTC)
	if got := Filename("Q3 Review: Growth & Churn!", at); got != "q3-review-growth-churn-2026-08-29.pptx" {
		t.Fatalf("got %q", got)
	}
	if got := Filename("", at); got != "presentation-2026-08-29.pptx" {
		t.Fatalf("got %q", got)
	}
}

func TestSlug(t *testing.T) {
	cases := map[string]string{
		"Hello World":        "hello-world",
		"  Multi   Spaces  ": "multi-spaces",
		"Émoji & Symbols!!":  "moji-symbols",
		"---":                "presentation",
	}
	for in, want := range cases {
		if got := Slug(in); got != want {
			t.Fatalf("Slug(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestEnsureLenTruncation(t *testing.T) {
	long := strings.Repeat("a", 150)
	got := ensureLen(long, 100)
	if len(got) != 100 || !strings.HasSuffix(got, "...") {
		t.Fatalf("got len %d %q", len(got), got[90:])
	}
	if ensureLen("short", 100) != "short" {
		t.Fatal("short strings must pass through")
	}
}

func TestEnsureLenTruncatesOnRuneBoundaries(t *testing.T) {
	long := strings.Repeat("é", 100)
	got := ensureLen(long, 60)
	if !utf8.ValidString(got) {
		t.Fatalf("truncated string is not valid UTF-8: %q", got)
	}
	if n := utf8.RuneCountInString(got); n != 60 {
		t.Fatalf("expected 60 runes, got %d", n)
	}
	if !strings.HasSuffix(got, "...") {
		t.Fatalf("missing ellipsis: %q", got)
	}
}

func TestInsideSafeAcceptsComputedFullWidthBox(t *testing.T) {
	// SafeLeft+ContentW lands a few ULPs past SafeRight in float64;
	// such a box fills the content area exactly and must pass.
	full := pptx.Box{X: SafeLeft, Y: SafeTop, W: ContentW, H: SafeBottom - SafeTop}
	if !insideSafe(full) {
		t.Fatalf("full-width box rejected: right=%.17g bottom=%.17g", full.Right(), full.Bottom())
	}
	escaping := pptx.Box{X: SafeLeft, Y: SafeTop, W: ContentW + 0.05, H: 1}
	if insideSafe(escaping) {
		t.Fatal("box past the safe right edge must be rejected")
	}
}
