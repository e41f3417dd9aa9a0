// Package render turns a validated slide plan into a finished .pptx deck:
// per-layout composition, tier watermarking, appended references and closing
// slides, all inside a fixed safe content area.
package render

import (
	"fmt"
	"strings"
	"time"

	"github.com/slivora/slivora-backend/internal/plan"
	"github.com/slivora/slivora-backend/internal/pptx"
	"github.com/slivora/slivora-backend/internal/themes"
)

const (
	deckAuthor  = "AI Presentation Generator - Eccentric Edition"
	deckCompany = "SlideSmith Creative Studio"
)

// RenderError reports a composed shape that escaped the safe content area.
// It fires before any bytes are produced.
type RenderError struct {
	SlideIndex int
	Shape      string
	Detail     string
}

func (e *RenderError) Error() string {
	return fmt.Sprintf("render: slide %d shape %q: %s", e.SlideIndex, e.Shape, e.Detail)
}

// Result is a finished render.
type Result struct {
	Bytes      []byte
	ThemeKey   string
	Filename   string
	SlideCount int
}

// Compose builds the deck model for a plan without serializing it. The
// returned theme key is the one actually used, which matters when ThemeKey
// was empty and a random theme was pinned.
func Compose(p *plan.Plan, opts Options) (*pptx.Deck, string, error) {
	themeKey := opts.ThemeKey
	if themeKey == "" {
		themeKey = themes.RandomKey()
	}
	rc := &renderContext{
		theme:     themes.Get(themeKey),
		tier:      opts.Tier,
		watermark: opts.Watermark,
	}

	deck := &pptx.Deck{
		Title:   p.ProjectTitle,
		Subject: p.ProjectTitle,
		Author:  deckAuthor,
		Company: deckCompany,
	}

	for _, sl := range p.Slides {
		s := deck.AddSlide(rc.theme.Colors.Background)
		composeSlide(s, rc, sl)
		rc.slideIndex++
	}

	if len(p.References) > 0 && !hasReferencesSlide(p) {
		s := deck.AddSlide(rc.theme.Colors.Background)
		composeReferences(s, rc, p.References)
		rc.slideIndex++
	}

	s := deck.AddSlide(rc.theme.Colors.Background)
	composeThankYou(s, rc)

	if rc.watermarked() {
		for _, slide := range deck.Slides {
			stampWatermark(slide, rc)
		}
	}

	if err := checkSafeArea(deck); err != nil {
		return nil, "", err
	}
	return deck, themeKey, nil
}

// Render serializes a composed deck to .pptx bytes. It is pure: no I/O, no
// shared mutable state, so concurrent renders are safe.
func Render(p *plan.Plan, opts Options) (*Result, error) {
	deck, themeKey, err := Compose(p, opts)
	if err != nil {
		return nil, err
	}
	raw, err := pptx.Write(deck)
	if err != nil {
		return nil, err
	}
	return &Result{
		Bytes:      raw,
		ThemeKey:   themeKey,
		Filename:   Filename(p.ProjectTitle, time.Now()),
		SlideCount: len(deck.Slides),
	}, nil
}

// Filename builds "{slug}-{YYYY-MM-DD}.pptx".
func Filename(title string, now time.Time) string {
	return fmt.Sprintf("%s-%s.pptx", Slug(title), now.Format("2006-01-02"))
}

func hasReferencesSlide(p *plan.Plan) bool {
	for _, sl := range p.Slides {
		if strings.EqualFold(strings.TrimSpace(sl.Title), "References") {
			return true
		}
	}
	return false
}

// stampWatermark draws the overlay last so it sits above all content.
func stampWatermark(s *pptx.Slide, rc *renderContext) {
	if rc.watermark.IsImage() {
		s.Add(pptx.Shape{
			Name:              "watermark",
			Kind:              pptx.KindPicture,
			Box:               pptx.Box{X: 2.5, Y: 1.9, W: 5, H: 1.8},
			RotationDeg:       -30,
			ImageData:         rc.watermark.Image,
			ImageTransparency: 60,
		})
		return
	}
	s.Add(pptx.Shape{
		Name:        "watermark",
		Kind:        pptx.KindText,
		Box:         pptx.Box{X: 1.5, Y: 2.3, W: 7, H: 1.0},
		RotationDeg: -30,
		ShrinkToFit: true,
		Paragraphs: []pptx.Paragraph{{
			Align: pptx.AlignCenter,
			Runs: []pptx.Run{{
				Text:         rc.watermark.Text,
				Font:         rc.theme.Fonts.Primary,
				SizePt:       44,
				Color:        rc.theme.Colors.Muted,
				Transparency: 60,
				Bold:         true,
			}},
		}},
	})
}

func checkSafeArea(deck *pptx.Deck) error {
	for i, slide := range deck.Slides {
		for _, shape := range slide.Shapes {
			if !insideSafe(shape.Box) {
				return &RenderError{
					SlideIndex: i,
					Shape:      shape.Name,
					Detail: fmt.Sprintf("box (%.2f,%.2f %.2fx%.2f) escapes safe area (%.1f,%.1f)-(%.1f,%.1f)",
						shape.Box.X, shape.Box.Y, shape.Box.W, shape.Box.H, SafeLeft, SafeTop, SafeRight, SafeBottom),
				}
			}
		}
	}
	return nil
}
