package render

import (
	"regexp"
	"strings"

	"github.com/slivora/slivora-backend/internal/pptx"
)

// Safe content area in inches. Every placed region, decorations included,
// must stay inside this rectangle; the engine rejects slides that violate it
// before producing any bytes.
const (
	SafeLeft   = 0.8
	SafeRight  = 9.2
	SafeTop    = 0.7
	SafeBottom = 5.2

	ContentW = SafeRight - SafeLeft // 8.4"
)

// Render-time truncation caps. Shrink-to-fit handles overflow first; these
// are the last-resort hard limits.
const (
	maxRenderTitle  = 100
	maxRenderBullet = 300
)

// geomEpsilon absorbs float64 rounding: a full-width box computed as
// SafeLeft+ContentW lands a few ULPs past SafeRight and must still pass.
const geomEpsilon = 1e-9

func insideSafe(b pptx.Box) bool {
	return b.X >= SafeLeft-geomEpsilon &&
		b.Y >= SafeTop-geomEpsilon &&
		b.Right() <= SafeRight+geomEpsilon &&
		b.Bottom() <= SafeBottom+geomEpsilon
}

// ensureLen truncates with a trailing ellipsis once a string exceeds max
// characters. Truncation is on rune boundaries so multibyte text stays
// valid UTF-8.
func ensureLen(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max-3]) + "..."
}

var (
	slugStrip    = regexp.MustCompile(`[^a-z0-9\s-]`)
	slugSpaces   = regexp.MustCompile(`\s+`)
	slugRepeated = regexp.MustCompile(`-+`)
)

// Slug lowercases a title into a filename-safe token.
func Slug(title string) string {
	s := strings.ToLower(strings.TrimSpace(title))
	if s == "" {
		s = "presentation"
	}
	s = slugStrip.ReplaceAllString(s, "")
	s = slugSpaces.ReplaceAllString(s, "-")
	s = slugRepeated.ReplaceAllString(s, "-")
	s = strings.Trim(s, "-")
	if s == "" {
		s = "presentation"
	}
	return s
}
