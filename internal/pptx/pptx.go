// Package pptx writes PowerPoint (.pptx) documents. Callers describe a deck
// as slides of positioned shapes in inch coordinates; Write serializes that
// model into the OOXML zip package. The model is deliberately inspectable so
// composition can be tested without parsing XML back out.
package pptx

// Page geometry for 16:9 decks, in inches.
const (
	PageWidth  = 10.0
	PageHeight = 5.625
)

// Box is a shape's placement in inches from the top-left corner.
type Box struct {
	X float64
	Y float64
	W float64
	H float64
}

func (b Box) Right() float64  { return b.X + b.W }
func (b Box) Bottom() float64 { return b.Y + b.H }

// Preset geometries for auto shapes.
const (
	GeometryRect     = "rect"
	GeometryEllipse  = "ellipse"
	GeometryTriangle = "triangle"
)

// Paragraph alignment values, matching the DrawingML algn attribute.
const (
	AlignLeft   = "l"
	AlignCenter = "ctr"
	AlignRight  = "r"
)

// Run is a styled span of text. A non-empty HyperlinkURL turns the run into
// an external link.
type Run struct {
	Text         string
	Font         string
	SizePt       int
	Color        string
	Transparency int // percent, 0 opaque .. 100 invisible
	Bold         bool
	Italic       bool
	HyperlinkURL string
}

// Paragraph is one line or bullet inside a text shape.
type Paragraph struct {
	Runs   []Run
	Bullet bool
	Align  string
}

// Shape kinds.
const (
	KindAuto    = "auto"
	KindText    = "text"
	KindPicture = "picture"
)

// Shape is a single drawable element. Exactly one of the kind-specific
// sections is meaningful, selected by Kind.
type Shape struct {
	Name string
	Kind string
	Box  Box

	// RotationDeg rotates the shape clockwise around its center.
	RotationDeg float64

	// Auto shapes and text box chrome.
	Geometry     string
	FillColor    string
	Transparency int // percent, 0 opaque .. 100 invisible
	LineColor    string
	LineWidthPt  float64
	LineDashed   bool
	Shadow       bool

	// Text shapes. ShrinkToFit asks the renderer to scale text down rather
	// than overflow the box.
	Paragraphs  []Paragraph
	ShrinkToFit bool

	// Pictures. PNG only; ImageTransparency mirrors Transparency for blips.
	ImageData         []byte
	ImageTransparency int
}

// Slide is an ordered list of shapes over a solid background. Later shapes
// draw on top of earlier ones.
type Slide struct {
	Background string
	Shapes     []Shape
}

func (s *Slide) Add(shape Shape) {
	s.Shapes = append(s.Shapes, shape)
}

// Deck is a whole presentation plus its document properties.
type Deck struct {
	Title   string
	Subject string
	Author  string
	Company string
	Slides  []*Slide
}

func (d *Deck) AddSlide(background string) *Slide {
	s := &Slide{Background: background}
	d.Slides = append(d.Slides, s)
	return s
}
