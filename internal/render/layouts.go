package render

import (
	"github.com/slivora/slivora-backend/internal/plan"
	"github.com/slivora/slivora-backend/internal/pptx"
)

// Composers place everything inside the safe content area, decorative
// elements included. Decorations draw first so text stays on top; the
// watermark is stamped after everything else by the engine.

func addTitleText(s *pptx.Slide, rc *renderContext, text string, y, h float64) {
	t := rc.theme
	s.Add(pptx.Shape{
		Name:        "title",
		Kind:        pptx.KindText,
		Box:         pptx.Box{X: SafeLeft, Y: y, W: ContentW, H: h},
		ShrinkToFit: true,
		Shadow:      t.Design.UseShadows,
		Paragraphs: []pptx.Paragraph{{
			Align: pptx.AlignCenter,
			Runs: []pptx.Run{{
				Text:  ensureLen(text, maxRenderTitle),
				Font:  t.Fonts.Primary,
				SizePt: t.Sizes.Title,
				Color: t.Colors.Text,
				Bold:  true,
			}},
		}},
	})
}

func addHeadingText(s *pptx.Slide, rc *renderContext, text string, y, h float64) {
	t := rc.theme
	s.Add(pptx.Shape{
		Name:        "heading",
		Kind:        pptx.KindText,
		Box:         pptx.Box{X: SafeLeft, Y: y, W: ContentW, H: h},
		ShrinkToFit: true,
		Shadow:      t.Design.UseShadows,
		Paragraphs: []pptx.Paragraph{{
			Align: pptx.AlignCenter,
			Runs: []pptx.Run{{
				Text:  ensureLen(text, maxRenderTitle),
				Font:  t.Fonts.Primary,
				SizePt: t.Sizes.H2,
				Color: t.Colors.Text,
				Bold:  true,
			}},
		}},
	})
}

func addSubtitleText(s *pptx.Slide, rc *renderContext, text string, y, h float64) {
	if text == "" {
		return
	}
	t := rc.theme
	s.Add(pptx.Shape{
		Name:        "subtitle",
		Kind:        pptx.KindText,
		Box:         pptx.Box{X: SafeLeft, Y: y, W: ContentW, H: h},
		ShrinkToFit: true,
		Paragraphs: []pptx.Paragraph{{
			Align: pptx.AlignCenter,
			Runs: []pptx.Run{{
				Text:   ensureLen(text, 160),
				Font:   t.Fonts.Accent,
				SizePt: t.Sizes.Caption,
				Color:  t.Colors.Muted,
				Italic: true,
			}},
		}},
	})
}

// addBullets places every bullet in one text block so bullets can never
// collide with each other.
func addBullets(s *pptx.Slide, rc *renderContext, bullets []string, y, h float64) {
	if len(bullets) == 0 {
		return
	}
	t := rc.theme
	paras := make([]pptx.Paragraph, 0, len(bullets))
	for _, b := range bullets {
		paras = append(paras, pptx.Paragraph{
			Bullet: true,
			Runs: []pptx.Run{{
				Text:   ensureLen(b, maxRenderBullet),
				Font:   t.Fonts.Secondary,
				SizePt: t.Sizes.Bullet,
				Color:  t.Colors.Text,
			}},
		})
	}
	s.Add(pptx.Shape{
		Name:        "bullets",
		Kind:        pptx.KindText,
		Box:         pptx.Box{X: SafeLeft, Y: y, W: ContentW, H: h},
		ShrinkToFit: true,
		Paragraphs:  paras,
	})
}

func decor(s *pptx.Slide, rc *renderContext, name, geometry, color string, box pptx.Box, transparency int, rot float64) {
	if !rc.theme.Design.UseDecorativeElements {
		return
	}
	s.Add(pptx.Shape{
		Name:         name,
		Kind:         pptx.KindAuto,
		Box:          box,
		Geometry:     geometry,
		FillColor:    color,
		Transparency: transparency,
		RotationDeg:  rot,
	})
}

// accentBar is structural (underlines, dividers) and draws on every theme.
func accentBar(s *pptx.Slide, rc *renderContext, name, color string, box pptx.Box) {
	s.Add(pptx.Shape{
		Name:      name,
		Kind:      pptx.KindAuto,
		Box:       box,
		Geometry:  pptx.GeometryRect,
		FillColor: color,
	})
}

func composeTitle(s *pptx.Slide, rc *renderContext, sl plan.Slide) {
	t := rc.theme
	decor(s, rc, "decor-diamond", pptx.GeometryRect, t.Colors.Primary, pptx.Box{X: 0.9, Y: 0.8, W: 1.2, H: 1.2}, 20, 45)
	decor(s, rc, "decor-dot", pptx.GeometryEllipse, t.Colors.Secondary, pptx.Box{X: 7.9, Y: 1.0, W: 1.0, H: 1.0}, 30, 0)
	decor(s, rc, "decor-wedge", pptx.GeometryTriangle, t.Colors.Accent, pptx.Box{X: 7.2, Y: 3.5, W: 1.2, H: 1.2}, 25, 0)

	addTitleText(s, rc, sl.Title, 1.7, 1.8)

	accentBar(s, rc, "underline", t.Colors.Accent, pptx.Box{X: 2, Y: 4.2, W: 6, H: 0.12})

	decor(s, rc, "sparkle-left", pptx.GeometryRect, t.Colors.Accent, pptx.Box{X: 1.5, Y: 4.6, W: 0.28, H: 0.28}, 0, 45)
	decor(s, rc, "sparkle-right", pptx.GeometryRect, t.Colors.Primary, pptx.Box{X: 8.2, Y: 4.6, W: 0.28, H: 0.28}, 0, 45)
}

func composeTitleBullets(s *pptx.Slide, rc *renderContext, sl plan.Slide) {
	t := rc.theme
	decor(s, rc, "corner-left", pptx.GeometryRect, t.Colors.Primary, pptx.Box{X: 0.8, Y: 0.7, W: 1.8, H: 0.22}, 0, 15)
	decor(s, rc, "corner-right", pptx.GeometryRect, t.Colors.Secondary, pptx.Box{X: 6.6, Y: 0.7, W: 1.8, H: 0.22}, 0, -15)

	addHeadingText(s, rc, sl.Title, 0.75, 0.9)
	accentBar(s, rc, "underline", t.Colors.Accent, pptx.Box{X: 2, Y: 1.8, W: 6, H: 0.08})

	const bulletsY = 2.05
	addBullets(s, rc, sl.Bullets, bulletsY, SafeBottom-bulletsY-0.2)

	decor(s, rc, "float-diamond", pptx.GeometryRect, t.Colors.Accent, pptx.Box{X: 8.5, Y: 4.5, W: 0.35, H: 0.35}, 40, 45)
	decor(s, rc, "float-wedge", pptx.GeometryTriangle, t.Colors.Primary, pptx.Box{X: 0.85, Y: 4.75, W: 0.28, H: 0.28}, 50, 30)
}

func composeSection(s *pptx.Slide, rc *renderContext, sl plan.Slide) {
	t := rc.theme
	decor(s, rc, "glow-left", pptx.GeometryEllipse, t.Colors.Primary, pptx.Box{X: 0.8, Y: 0.7, W: 2.2, H: 2.2}, 15, 0)
	decor(s, rc, "glow-right", pptx.GeometryEllipse, t.Colors.Secondary, pptx.Box{X: 7.0, Y: 3.0, W: 2.2, H: 2.2}, 15, 0)

	accentBar(s, rc, "bar-top", t.Colors.Accent, pptx.Box{X: SafeLeft, Y: 1.1, W: ContentW, H: 0.18})
	accentBar(s, rc, "bar-bottom", t.Colors.Primary, pptx.Box{X: SafeLeft, Y: 4.5, W: ContentW, H: 0.18})

	addTitleText(s, rc, sl.Title, 1.75, 1.6)
	addSubtitleText(s, rc, sl.SpeakerNotes, 3.7, 0.7)

	decor(s, rc, "corner-tl", pptx.GeometryRect, t.Colors.Accent, pptx.Box{X: 0.8, Y: 0.7, W: 0.45, H: 0.45}, 0, 45)
	decor(s, rc, "corner-br", pptx.GeometryRect, t.Colors.Primary, pptx.Box{X: 8.7, Y: 4.7, W: 0.45, H: 0.45}, 0, 45)
}

func composeQuote(s *pptx.Slide, rc *renderContext, sl plan.Slide) {
	t := rc.theme
	decor(s, rc, "dot-left", pptx.GeometryEllipse, t.Colors.Primary, pptx.Box{X: 1.0, Y: 0.8, W: 0.8, H: 0.8}, 20, 0)
	decor(s, rc, "dot-right", pptx.GeometryEllipse, t.Colors.Secondary, pptx.Box{X: 8.2, Y: 4.2, W: 0.8, H: 0.8}, 20, 0)

	s.Add(pptx.Shape{
		Name:         "quote-frame",
		Kind:         pptx.KindAuto,
		Box:          pptx.Box{X: 0.8, Y: 1.2, W: 8.4, H: 3.2},
		Geometry:     pptx.GeometryRect,
		FillColor:    t.Colors.Background,
		Transparency: 10,
		LineColor:    t.Colors.Accent,
		LineWidthPt:  3,
		LineDashed:   true,
	})
	s.Add(pptx.Shape{
		Name:        "quote-frame-inner",
		Kind:        pptx.KindAuto,
		Box:         pptx.Box{X: 1.2, Y: 1.6, W: 7.6, H: 2.4},
		Geometry:    pptx.GeometryRect,
		LineColor:   t.Colors.Primary,
		LineWidthPt: 1,
		LineDashed:  true,
	})

	s.Add(pptx.Shape{
		Name:        "quote",
		Kind:        pptx.KindText,
		Box:         pptx.Box{X: 1.5, Y: 2.0, W: 7, H: 1.6},
		ShrinkToFit: true,
		Shadow:      t.Design.UseShadows,
		Paragraphs: []pptx.Paragraph{{
			Align: pptx.AlignCenter,
			Runs: []pptx.Run{{
				Text:   ensureLen(sl.Title, 240),
				Font:   t.Fonts.Accent,
				SizePt: t.Sizes.H2,
				Color:  t.Colors.Text,
				Italic: true,
			}},
		}},
	})

	if sl.SpeakerNotes != "" {
		s.Add(pptx.Shape{
			Name:        "attribution",
			Kind:        pptx.KindText,
			Box:         pptx.Box{X: 2, Y: 4.6, W: 6, H: 0.35},
			ShrinkToFit: true,
			Paragraphs: []pptx.Paragraph{{
				Align: pptx.AlignCenter,
				Runs: []pptx.Run{{
					Text:   ensureLen(sl.SpeakerNotes, 120),
					Font:   t.Fonts.Secondary,
					SizePt: t.Sizes.Caption,
					Color:  t.Colors.Muted,
					Bold:   true,
				}},
			}},
		})
	}

	decor(s, rc, "accent-tl", pptx.GeometryRect, t.Colors.Accent, pptx.Box{X: 0.85, Y: 1.5, W: 0.28, H: 0.28}, 0, 45)
	decor(s, rc, "accent-br", pptx.GeometryRect, t.Colors.Primary, pptx.Box{X: 8.8, Y: 4.2, W: 0.28, H: 0.28}, 0, 45)
	accentBar(s, rc, "baseline", t.Colors.Accent, pptx.Box{X: 2, Y: 4.95, W: 6, H: 0.12})
}

func composeImage(s *pptx.Slide, rc *renderContext, sl plan.Slide) {
	t := rc.theme
	s.Add(pptx.Shape{
		Name:        "image-frame",
		Kind:        pptx.KindAuto,
		Box:         pptx.Box{X: 0.8, Y: 0.7, W: 8.4, H: 4.3},
		Geometry:    pptx.GeometryRect,
		LineColor:   t.Colors.Accent,
		LineWidthPt: 4,
		LineDashed:  true,
	})

	s.Add(pptx.Shape{
		Name:        "title",
		Kind:        pptx.KindText,
		Box:         pptx.Box{X: 1, Y: 1, W: 8, H: 0.9},
		ShrinkToFit: true,
		Shadow:      t.Design.UseShadows,
		Paragraphs: []pptx.Paragraph{{
			Align: pptx.AlignCenter,
			Runs: []pptx.Run{{
				Text:  ensureLen(sl.Title, 80),
				Font:  t.Fonts.Primary,
				SizePt: t.Sizes.H2,
				Color: t.Colors.Text,
				Bold:  true,
			}},
		}},
	})

	decor(s, rc, "accent-dot", pptx.GeometryEllipse, t.Colors.Primary, pptx.Box{X: 8.5, Y: 0.75, W: 0.5, H: 0.5}, 0, 0)
	decor(s, rc, "accent-wedge", pptx.GeometryTriangle, t.Colors.Secondary, pptx.Box{X: 0.9, Y: 4.6, W: 0.4, H: 0.4}, 0, 45)
}

// composeReferences lays out the appended sources slide with hyperlinked
// bullets.
func composeReferences(s *pptx.Slide, rc *renderContext, refs []plan.Reference) {
	t := rc.theme
	addHeadingText(s, rc, "References", 0.75, 0.9)
	accentBar(s, rc, "underline", t.Colors.Accent, pptx.Box{X: 2, Y: 1.8, W: 6, H: 0.08})

	paras := make([]pptx.Paragraph, 0, len(refs))
	for _, ref := range refs {
		label := ref.Label
		if label == "" {
			label = ref.URL
		}
		paras = append(paras, pptx.Paragraph{
			Bullet: true,
			Runs: []pptx.Run{{
				Text:         ensureLen(label, maxRenderBullet),
				Font:         t.Fonts.Secondary,
				SizePt:       t.Sizes.Caption,
				Color:        t.Colors.Text,
				HyperlinkURL: ref.URL,
			}},
		})
	}
	s.Add(pptx.Shape{
		Name:        "references",
		Kind:        pptx.KindText,
		Box:         pptx.Box{X: SafeLeft, Y: 2.05, W: ContentW, H: SafeBottom - 2.05 - 0.2},
		ShrinkToFit: true,
		Paragraphs:  paras,
	})
}

func composeThankYou(s *pptx.Slide, rc *renderContext) {
	t := rc.theme
	s.Add(pptx.Shape{
		Name:        "thank-you",
		Kind:        pptx.KindText,
		Box:         pptx.Box{X: 1, Y: 2, W: 8, H: 1.5},
		ShrinkToFit: true,
		Shadow:      t.Design.UseShadows,
		Paragraphs: []pptx.Paragraph{{
			Align: pptx.AlignCenter,
			Runs: []pptx.Run{{
				Text:  "Thank You!",
				Font:  t.Fonts.Primary,
				SizePt: t.Sizes.Title,
				Color: t.Colors.Text,
				Bold:  true,
			}},
		}},
	})
	decor(s, rc, "closing-diamond", pptx.GeometryRect, t.Colors.Accent, pptx.Box{X: 4.5, Y: 3.6, W: 1, H: 1}, 0, 45)
}

// composeSlide routes a plan slide to its layout composer. Unknown layouts
// cannot reach here once validation passed, but the default arm keeps the
// router total.
func composeSlide(s *pptx.Slide, rc *renderContext, sl plan.Slide) {
	switch sl.Layout {
	case plan.LayoutTitle:
		composeTitle(s, rc, sl)
	case plan.LayoutSection:
		composeSection(s, rc, sl)
	case plan.LayoutQuote:
		composeQuote(s, rc, sl)
	case plan.LayoutImage:
		composeImage(s, rc, sl)
	case plan.LayoutTitleBullets:
		composeTitleBullets(s, rc, sl)
	default:
		composeTitleBullets(s, rc, sl)
	}
}
