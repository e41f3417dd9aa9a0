// Package watermark selects and produces the overlay stamped on free-tier
// decks. The asset is chosen once per render: a configured logo image wins,
// then a wordmark rasterized from a configured font, then plain text.
package watermark

import (
	"bytes"
	"fmt"
	"image/color"
	"os"
	"strings"

	"github.com/fogleman/gg"
	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"

	"github.com/slivora/slivora-backend/internal/pkg/logger"
)

const DefaultText = "SLIVORA FREE"

// Asset is the resolved watermark. A nil Image means the renderer should
// place Text as a rotated translucent text element instead.
type Asset struct {
	Image []byte
	Text  string
}

func (a Asset) IsImage() bool { return len(a.Image) > 0 }

type Source struct {
	log      *logger.Logger
	logoPath string
	fontPath string
	text     string
}

// NewSource resolves watermark configuration from the environment. All
// inputs are optional; the zero configuration yields the text asset.
func NewSource(log *logger.Logger) *Source {
	text := strings.TrimSpace(os.Getenv("WATERMARK_TEXT"))
	if text == "" {
		text = DefaultText
	}
	return &Source{
		log:      log.With("service", "WatermarkSource"),
		logoPath: strings.TrimSpace(os.Getenv("WATERMARK_LOGO_PATH")),
		fontPath: strings.TrimSpace(os.Getenv("WATERMARK_FONT_PATH")),
		text:     text,
	}
}

// Select picks the best available asset. Failures to load configured files
// degrade to the next option rather than failing the render.
func (s *Source) Select() Asset {
	if s.logoPath != "" {
		data, err := os.ReadFile(s.logoPath)
		if err == nil {
			return Asset{Image: data, Text: s.text}
		}
		s.log.Warn("Could not read watermark logo, falling back", "path", s.logoPath, "error", err.Error())
	}
	if s.fontPath != "" {
		data, err := renderWordmark(s.text, s.fontPath)
		if err == nil {
			return Asset{Image: data, Text: s.text}
		}
		s.log.Warn("Could not rasterize watermark wordmark, falling back", "font", s.fontPath, "error", err.Error())
	}
	return Asset{Text: s.text}
}

// renderWordmark draws the text onto a transparent PNG sized to fit it.
func renderWordmark(text, fontPath string) ([]byte, error) {
	face, err := loadFontFace(fontPath, 96)
	if err != nil {
		return nil, err
	}

	measure := gg.NewContext(1, 1)
	measure.SetFontFace(face)
	tw, th := measure.MeasureString(text)

	const pad = 24
	w := int(tw) + 2*pad
	h := int(th) + 2*pad

	dc := gg.NewContext(w, h)
	dc.SetFontFace(face)
	dc.SetColor(color.NRGBA{R: 0x6B, G: 0x72, B: 0x80, A: 0xFF})
	dc.DrawStringAnchored(text, float64(w)/2, float64(h)/2, 0.5, 0.5)

	var buf bytes.Buffer
	if err := dc.EncodePNG(&buf); err != nil {
		return nil, fmt.Errorf("encode watermark png: %w", err)
	}
	return buf.Bytes(), nil
}

func loadFontFace(fontPath string, size float64) (font.Face, error) {
	fontBytes, err := os.ReadFile(fontPath)
	if err != nil {
		return nil, fmt.Errorf("read font file: %w", err)
	}
	parsedFont, err := truetype.Parse(fontBytes)
	if err != nil {
		return nil, fmt.Errorf("parse TTF: %w", err)
	}
	face := truetype.NewFace(parsedFont, &truetype.Options{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingNone,
	})
	return face, nil
}
