package pptx

import (
	"strconv"
	"strings"
)

// emuPerInch is the OOXML base unit: 914400 English Metric Units per inch.
const emuPerInch = 914400

func emu(inches float64) string {
	return strconv.FormatInt(int64(inches*emuPerInch+0.5), 10)
}

// fontSize converts points to the hundredths used by the sz attribute.
func fontSize(pt int) string {
	return strconv.Itoa(pt * 100)
}

// lineWidth converts points to EMU (12700 per point).
func lineWidth(pt float64) string {
	return strconv.FormatInt(int64(pt*12700+0.5), 10)
}

// rotation converts degrees to 60000ths of a degree, normalized to [0,360).
func rotation(deg float64) string {
	for deg < 0 {
		deg += 360
	}
	for deg >= 360 {
		deg -= 360
	}
	return strconv.FormatInt(int64(deg*60000+0.5), 10)
}

// alphaVal converts a transparency percentage to the DrawingML alpha value
// (opacity in thousandths of a percent).
func alphaVal(transparency int) string {
	if transparency < 0 {
		transparency = 0
	}
	if transparency > 100 {
		transparency = 100
	}
	return strconv.Itoa((100 - transparency) * 1000)
}

var xmlReplacer = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
	`"`, "&quot;",
	"'", "&apos;",
)

func xmlEscape(s string) string {
	return xmlReplacer.Replace(s)
}

// normalizeColor strips a leading '#' and uppercases; empty input stays empty.
func normalizeColor(c string) string {
	c = strings.TrimPrefix(strings.TrimSpace(c), "#")
	return strings.ToUpper(c)
}
