package pptx

import (
	"archive/zip"
	"bytes"
	"io"
	"strings"
	"testing"
)

func readParts(t *testing.T, raw []byte) map[string]string {
	t.Helper()
	zr, err := zip.NewReader(bytes.NewReader(raw), int64(len(raw)))
	if err != nil {
		t.Fatalf("open zip: %v", err)
	}
	parts := map[string]string{}
	for _, f := range zr.File {
		rc, err := f.Open()
		if err != nil {
			t.Fatalf("open %s: %v", f.Name, err)
		}
		data, err := io.ReadAll(rc)
		rc.Close()
		if err != nil {
			t.Fatalf("read %s: %v", f.Name, err)
		}
		parts[f.Name] = string(data)
	}
	return parts
}

func testDeck() *Deck {
	d := &Deck{Title: "Demo Deck", Subject: "Demo", Author: "Tester", Company: "Slivora"}
	s := d.AddSlide("FFFFFF")
	s.Add(Shape{
		Name: "title", Kind: KindText,
		Box:         Box{X: 1, Y: 1, W: 8, H: 1.5},
		ShrinkToFit: true,
		Paragraphs: []Paragraph{{
			Align: AlignCenter,
			Runs:  []Run{{Text: "Hello <World>", Font: "Inter", SizePt: 44, Color: "1F2937", Bold: true}},
		}},
	})
	s.Add(Shape{
		Name: "accent", Kind: KindAuto,
		Box:          Box{X: 2, Y: 3, W: 6, H: 0.12},
		Geometry:     GeometryEllipse,
		FillColor:    "#2563EB",
		Transparency: 20,
		RotationDeg:  45,
		Shadow:       true,
	})
	return d
}

func TestWriteProducesAllParts(t *testing.T) {
	raw, err := Write(testDeck())
	if err != nil {
		t.Fatalf("write: %v", err)
	}
	parts := readParts(t, raw)
	for _, name := range []string{
		"[Content_Types].xml",
		"_rels/.rels",
		"docProps/core.xml",
		"docProps/app.xml",
		"ppt/presentation.xml",
		"ppt/_rels/presentation.xml.rels",
		"ppt/slideMasters/slideMaster1.xml",
		"ppt/slideLayouts/slideLayout1.xml",
		"ppt/theme/theme1.xml",
		"ppt/slides/slide1.xml",
		"ppt/slides/_rels/slide1.xml.rels",
	} {
		if _, ok := parts[name]; !ok {
			t.Fatalf("missing part %s", name)
		}
	}
	if !strings.Contains(parts["ppt/presentation.xml"], `cx="9144000" cy="5143500" type="screen16x9"`) {
		t.Fatalf("wrong page size: %s", parts["ppt/presentation.xml"])
	}
	if !strings.Contains(parts["docProps/core.xml"], "<dc:title>Demo Deck</dc:title>") {
		t.Fatalf("missing title: %s", parts["docProps/core.xml"])
	}
}

func TestSlideXMLShapes(t *testing.T) {
	raw, err := Write(testDeck())
	if err != nil {
		t.Fatalf("write: %v", err)
	}
	slide := readParts(t, raw)["ppt/slides/slide1.xml"]

	if !strings.Contains(slide, "<a:normAutofit/>") {
		t.Fatal("missing shrink-to-fit")
	}
	if !strings.Contains(slide, "Hello &lt;World&gt;") {
		t.Fatal("text not escaped")
	}
	if !strings.Contains(slide, `<a:latin typeface="Inter"/>`) {
		t.Fatal("missing font")
	}
	// 45 degrees in 60000ths, with 20% transparency as 80000 alpha.
	if !strings.Contains(slide, `rot="2700000"`) {
		t.Fatal("missing rotation")
	}
	if !strings.Contains(slide, `<a:srgbClr val="2563EB"><a:alpha val="80000"/></a:srgbClr>`) {
		t.Fatal("missing alpha fill")
	}
	if !strings.Contains(slide, `prst="ellipse"`) {
		t.Fatal("missing geometry")
	}
	if !strings.Contains(slide, "<a:outerShdw") {
		t.Fatal("missing shadow")
	}
	// 1 inch offset.
	if !strings.Contains(slide, `<a:off x="914400" y="914400"/>`) {
		t.Fatal("missing placement")
	}
}

func TestHyperlinkRelationships(t *testing.T) {
	d := &Deck{Title: "Links"}
	s := d.AddSlide("FFFFFF")
	s.Add(Shape{
		Name: "refs", Kind: KindText,
		Box: Box{X: 1, Y: 1, W: 8, H: 3},
		Paragraphs: []Paragraph{{
			Bullet: true,
			Runs:   []Run{{Text: "Example", SizePt: 20, HyperlinkURL: "https://example.com/a?x=1&y=2"}},
		}},
	})
	raw, err := Write(d)
	if err != nil {
		t.Fatalf("write: %v", err)
	}
	parts := readParts(t, raw)
	slide := parts["ppt/slides/slide1.xml"]
	rels := parts["ppt/slides/_rels/slide1.xml.rels"]

	if !strings.Contains(slide, `<a:hlinkClick`) || !strings.Contains(slide, `r:id="rId2"`) {
		t.Fatalf("missing hyperlink run: %s", slide)
	}
	if !strings.Contains(rels, `TargetMode="External"`) {
		t.Fatalf("hyperlink not external: %s", rels)
	}
	if !strings.Contains(rels, "https://example.com/a?x=1&amp;y=2") {
		t.Fatalf("url not escaped: %s", rels)
	}
	if !strings.Contains(slide, `<a:buChar char="&#8226;"/>`) {
		t.Fatal("missing bullet marker")
	}
}

func TestPictureEmbedding(t *testing.T) {
	png := []byte{0x89, 'P', 'N', 'G', 0x0D, 0x0A, 0x1A, 0x0A}
	d := &Deck{Title: "Pics"}
	s := d.AddSlide("000000")
	s.Add(Shape{
		Name: "watermark", Kind: KindPicture,
		Box:               Box{X: 3, Y: 2, W: 4, H: 1.5},
		RotationDeg:       -30,
		ImageData:         png,
		ImageTransparency: 60,
	})
	raw, err := Write(d)
	if err != nil {
		t.Fatalf("write: %v", err)
	}
	parts := readParts(t, raw)
	if parts["ppt/media/image1.png"] != string(png) {
		t.Fatal("media bytes mismatch")
	}
	slide := parts["ppt/slides/slide1.xml"]
	if !strings.Contains(slide, `<a:blip r:embed="rId2">`) {
		t.Fatalf("missing blip: %s", slide)
	}
	if !strings.Contains(slide, `<a:alphaModFix amt="40000"/>`) {
		t.Fatalf("missing picture alpha: %s", slide)
	}
	// -30 degrees normalizes to 330.
	if !strings.Contains(slide, `rot="19800000"`) {
		t.Fatalf("missing rotation: %s", slide)
	}
	if !strings.Contains(parts["ppt/slides/_rels/slide1.xml.rels"], "../media/image1.png") {
		t.Fatal("missing image relationship")
	}
}

func TestWriteRejectsEmptyDeck(t *testing.T) {
	if _, err := Write(&Deck{Title: "empty"}); err == nil {
		t.Fatal("expected error for empty deck")
	}
}

func TestSlideCountInPresentation(t *testing.T) {
	d := &Deck{Title: "multi"}
	for i := 0; i < 3; i++ {
		s := d.AddSlide("FFFFFF")
		s.Add(Shape{Name: "t", Kind: KindText, Box: Box{X: 1, Y: 1, W: 8, H: 1},
			Paragraphs: []Paragraph{{Runs: []Run{{Text: "x", SizePt: 20}}}}})
	}
	raw, err := Write(d)
	if err != nil {
		t.Fatalf("write: %v", err)
	}
	parts := readParts(t, raw)
	pres := parts["ppt/presentation.xml"]
	for _, marker := range []string{`id="256"`, `id="257"`, `id="258"`} {
		if !strings.Contains(pres, marker) {
			t.Fatalf("missing %s in %s", marker, pres)
		}
	}
	if _, ok := parts["ppt/slides/slide3.xml"]; !ok {
		t.Fatal("missing slide3")
	}
	if !strings.Contains(parts["[Content_Types].xml"], "/ppt/slides/slide3.xml") {
		t.Fatal("slide3 not in content types")
	}
}
