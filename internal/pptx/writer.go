package pptx

import (
	"archive/zip"
	"bytes"
	"fmt"
	"strings"
)

const (
	nsA = "http://schemas.openxmlformats.org/drawingml/2006/main"
	nsP = "http://schemas.openxmlformats.org/presentationml/2006/main"
	nsR = "http://schemas.openxmlformats.org/officeDocument/2006/relationships"

	relTypeSlide       = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/slide"
	relTypeSlideLayout = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/slideLayout"
	relTypeSlideMaster = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/slideMaster"
	relTypeTheme       = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/theme"
	relTypeHyperlink   = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/hyperlink"
	relTypeImage       = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/image"
)

// Write serializes the deck into a complete .pptx zip package.
func Write(d *Deck) ([]byte, error) {
	if len(d.Slides) == 0 {
		return nil, fmt.Errorf("pptx: deck has no slides")
	}

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)

	files := map[string][]byte{}
	files["[Content_Types].xml"] = []byte(contentTypesXML(len(d.Slides)))
	files["_rels/.rels"] = []byte(rootRelsXML)
	files["docProps/core.xml"] = []byte(corePropsXML(d))
	files["docProps/app.xml"] = []byte(appPropsXML(d))
	files["ppt/presentation.xml"] = []byte(presentationXML(len(d.Slides)))
	files["ppt/_rels/presentation.xml.rels"] = []byte(presentationRelsXML(len(d.Slides)))
	files["ppt/slideMasters/slideMaster1.xml"] = []byte(slideMasterXML)
	files["ppt/slideMasters/_rels/slideMaster1.xml.rels"] = []byte(slideMasterRelsXML)
	files["ppt/slideLayouts/slideLayout1.xml"] = []byte(slideLayoutXML)
	files["ppt/slideLayouts/_rels/slideLayout1.xml.rels"] = []byte(slideLayoutRelsXML)
	files["ppt/theme/theme1.xml"] = []byte(themeXML)

	mediaIndex := 0
	for i, slide := range d.Slides {
		slideXML, rels, media := serializeSlide(slide, &mediaIndex)
		files[fmt.Sprintf("ppt/slides/slide%d.xml", i+1)] = []byte(slideXML)
		files[fmt.Sprintf("ppt/slides/_rels/slide%d.xml.rels", i+1)] = []byte(rels)
		for name, data := range media {
			files["ppt/media/"+name] = data
		}
	}

	// Zip entry order matters to some readers: content types first.
	order := []string{"[Content_Types].xml", "_rels/.rels"}
	seen := map[string]bool{"[Content_Types].xml": true, "_rels/.rels": true}
	for name := range files {
		if !seen[name] {
			order = append(order, name)
		}
	}
	sortAfterFixed(order, 2)

	for _, name := range order {
		w, err := zw.Create(name)
		if err != nil {
			return nil, fmt.Errorf("pptx: create %s: %w", name, err)
		}
		if _, err := w.Write(files[name]); err != nil {
			return nil, fmt.Errorf("pptx: write %s: %w", name, err)
		}
	}

	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("pptx: close zip: %w", err)
	}
	return buf.Bytes(), nil
}

func sortAfterFixed(names []string, fixed int) {
	tail := names[fixed:]
	for i := 1; i < len(tail); i++ {
		for j := i; j > 0 && tail[j] < tail[j-1]; j-- {
			tail[j], tail[j-1] = tail[j-1], tail[j]
		}
	}
}

const xmlHeader = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>` + "\n"

func contentTypesXML(slideCount int) string {
	var b strings.Builder
	b.WriteString(xmlHeader)
	b.WriteString(`<Types xmlns="http://schemas.openxmlformats.org/package/2006/content-types">`)
	b.WriteString(`<Default Extension="rels" ContentType="application/vnd.openxmlformats-package.relationships+xml"/>`)
	b.WriteString(`<Default Extension="xml" ContentType="application/xml"/>`)
	b.WriteString(`<Default Extension="png" ContentType="image/png"/>`)
	b.WriteString(`<Override PartName="/ppt/presentation.xml" ContentType="application/vnd.openxmlformats-officedocument.presentationml.presentation.main+xml"/>`)
	b.WriteString(`<Override PartName="/ppt/slideMasters/slideMaster1.xml" ContentType="application/vnd.openxmlformats-officedocument.presentationml.slideMaster+xml"/>`)
	b.WriteString(`<Override PartName="/ppt/slideLayouts/slideLayout1.xml" ContentType="application/vnd.openxmlformats-officedocument.presentationml.slideLayout+xml"/>`)
	b.WriteString(`<Override PartName="/ppt/theme/theme1.xml" ContentType="application/vnd.openxmlformats-officedocument.theme+xml"/>`)
	for i := 1; i <= slideCount; i++ {
		fmt.Fprintf(&b, `<Override PartName="/ppt/slides/slide%d.xml" ContentType="application/vnd.openxmlformats-officedocument.presentationml.slide+xml"/>`, i)
	}
	b.WriteString(`<Override PartName="/docProps/core.xml" ContentType="application/vnd.openxmlformats-package.core-properties+xml"/>`)
	b.WriteString(`<Override PartName="/docProps/app.xml" ContentType="application/vnd.openxmlformats-officedocument.extended-properties+xml"/>`)
	b.WriteString(`</Types>`)
	return b.String()
}

const rootRelsXML = xmlHeader + `<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships">` +
	`<Relationship Id="rId1" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/officeDocument" Target="ppt/presentation.xml"/>` +
	`<Relationship Id="rId2" Type="http://schemas.openxmlformats.org/package/2006/relationships/metadata/core-properties" Target="docProps/core.xml"/>` +
	`<Relationship Id="rId3" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/extended-properties" Target="docProps/app.xml"/>` +
	`</Relationships>`

func corePropsXML(d *Deck) string {
	var b strings.Builder
	b.WriteString(xmlHeader)
	b.WriteString(`<cp:coreProperties xmlns:cp="http://schemas.openxmlformats.org/package/2006/metadata/core-properties" xmlns:dc="http://purl.org/dc/elements/1.1/" xmlns:dcterms="http://purl.org/dc/terms/" xmlns:xsi="http://www.w3.org/2001/XMLSchema-instance">`)
	fmt.Fprintf(&b, `<dc:title>%s</dc:title>`, xmlEscape(d.Title))
	fmt.Fprintf(&b, `<dc:subject>%s</dc:subject>`, xmlEscape(d.Subject))
	fmt.Fprintf(&b, `<dc:creator>%s</dc:creator>`, xmlEscape(d.Author))
	fmt.Fprintf(&b, `<cp:lastModifiedBy>%s</cp:lastModifiedBy>`, xmlEscape(d.Author))
	b.WriteString(`<cp:revision>1</cp:revision>`)
	b.WriteString(`</cp:coreProperties>`)
	return b.String()
}

func appPropsXML(d *Deck) string {
	var b strings.Builder
	b.WriteString(xmlHeader)
	b.WriteString(`<Properties xmlns="http://schemas.openxmlformats.org/officeDocument/2006/extended-properties" xmlns:vt="http://schemas.openxmlformats.org/officeDocument/2006/docPropsVTypes">`)
	b.WriteString(`<Application>Slivora</Application>`)
	fmt.Fprintf(&b, `<Slides>%d</Slides>`, len(d.Slides))
	fmt.Fprintf(&b, `<Company>%s</Company>`, xmlEscape(d.Company))
	b.WriteString(`</Properties>`)
	return b.String()
}

func presentationXML(slideCount int) string {
	var b strings.Builder
	b.WriteString(xmlHeader)
	fmt.Fprintf(&b, `<p:presentation xmlns:a="%s" xmlns:r="%s" xmlns:p="%s">`, nsA, nsR, nsP)
	b.WriteString(`<p:sldMasterIdLst><p:sldMasterId id="2147483648" r:id="rId1"/></p:sldMasterIdLst>`)
	b.WriteString(`<p:sldIdLst>`)
	for i := 0; i < slideCount; i++ {
		fmt.Fprintf(&b, `<p:sldId id="%d" r:id="rId%d"/>`, 256+i, 2+i)
	}
	b.WriteString(`</p:sldIdLst>`)
	fmt.Fprintf(&b, `<p:sldSz cx="%s" cy="%s" type="screen16x9"/>`, emu(PageWidth), emu(PageHeight))
	fmt.Fprintf(&b, `<p:notesSz cx="%s" cy="%s"/>`, emu(PageHeight), emu(PageWidth))
	b.WriteString(`</p:presentation>`)
	return b.String()
}

func presentationRelsXML(slideCount int) string {
	var b strings.Builder
	b.WriteString(xmlHeader)
	b.WriteString(`<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships">`)
	fmt.Fprintf(&b, `<Relationship Id="rId1" Type="%s" Target="slideMasters/slideMaster1.xml"/>`, relTypeSlideMaster)
	for i := 0; i < slideCount; i++ {
		fmt.Fprintf(&b, `<Relationship Id="rId%d" Type="%s" Target="slides/slide%d.xml"/>`, 2+i, relTypeSlide, i+1)
	}
	fmt.Fprintf(&b, `<Relationship Id="rId%d" Type="%s" Target="theme/theme1.xml"/>`, 2+slideCount, relTypeTheme)
	b.WriteString(`</Relationships>`)
	return b.String()
}

const emptySpTreeHeader = `<p:nvGrpSpPr><p:cNvPr id="1" name=""/><p:cNvGrpSpPr/><p:nvPr/></p:nvGrpSpPr>` +
	`<p:grpSpPr><a:xfrm><a:off x="0" y="0"/><a:ext cx="0" cy="0"/><a:chOff x="0" y="0"/><a:chExt cx="0" cy="0"/></a:xfrm></p:grpSpPr>`

var slideMasterXML = xmlHeader +
	`<p:sldMaster xmlns:a="` + nsA + `" xmlns:r="` + nsR + `" xmlns:p="` + nsP + `">` +
	`<p:cSld><p:bg><p:bgPr><a:solidFill><a:srgbClr val="FFFFFF"/></a:solidFill><a:effectLst/></p:bgPr></p:bg>` +
	`<p:spTree>` + emptySpTreeHeader + `</p:spTree></p:cSld>` +
	`<p:clrMap bg1="lt1" tx1="dk1" bg2="lt2" tx2="dk2" accent1="accent1" accent2="accent2" accent3="accent3" accent4="accent4" accent5="accent5" accent6="accent6" hlink="hlink" folHlink="folHlink"/>` +
	`<p:sldLayoutIdLst><p:sldLayoutId id="2147483649" r:id="rId1"/></p:sldLayoutIdLst>` +
	`</p:sldMaster>`

var slideMasterRelsXML = xmlHeader + `<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships">` +
	`<Relationship Id="rId1" Type="` + relTypeSlideLayout + `" Target="../slideLayouts/slideLayout1.xml"/>` +
	`<Relationship Id="rId2" Type="` + relTypeTheme + `" Target="../theme/theme1.xml"/>` +
	`</Relationships>`

var slideLayoutXML = xmlHeader +
	`<p:sldLayout xmlns:a="` + nsA + `" xmlns:r="` + nsR + `" xmlns:p="` + nsP + `" type="blank">` +
	`<p:cSld name="Blank"><p:spTree>` + emptySpTreeHeader + `</p:spTree></p:cSld>` +
	`<p:clrMapOvr><a:masterClrMapping/></p:clrMapOvr>` +
	`</p:sldLayout>`

var slideLayoutRelsXML = xmlHeader + `<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships">` +
	`<Relationship Id="rId1" Type="` + relTypeSlideMaster + `" Target="../slideMasters/slideMaster1.xml"/>` +
	`</Relationships>`

var themeXML = xmlHeader +
	`<a:theme xmlns:a="` + nsA + `" name="Slivora">` +
	`<a:themeElements>` +
	`<a:clrScheme name="Slivora">` +
	`<a:dk1><a:srgbClr val="000000"/></a:dk1><a:lt1><a:srgbClr val="FFFFFF"/></a:lt1>` +
	`<a:dk2><a:srgbClr val="1F2937"/></a:dk2><a:lt2><a:srgbClr val="F9FAFB"/></a:lt2>` +
	`<a:accent1><a:srgbClr val="2563EB"/></a:accent1><a:accent2><a:srgbClr val="3B82F6"/></a:accent2>` +
	`<a:accent3><a:srgbClr val="8B5CF6"/></a:accent3><a:accent4><a:srgbClr val="FF6B6B"/></a:accent4>` +
	`<a:accent5><a:srgbClr val="4ECDC4"/></a:accent5><a:accent6><a:srgbClr val="FFD23F"/></a:accent6>` +
	`<a:hlink><a:srgbClr val="2563EB"/></a:hlink><a:folHlink><a:srgbClr val="8B5CF6"/></a:folHlink>` +
	`</a:clrScheme>` +
	`<a:fontScheme name="Slivora">` +
	`<a:majorFont><a:latin typeface="Inter"/><a:ea typeface=""/><a:cs typeface=""/></a:majorFont>` +
	`<a:minorFont><a:latin typeface="Inter"/><a:ea typeface=""/><a:cs typeface=""/></a:minorFont>` +
	`</a:fontScheme>` +
	`<a:fmtScheme name="Slivora">` +
	`<a:fillStyleLst>` +
	`<a:solidFill><a:schemeClr val="phClr"/></a:solidFill>` +
	`<a:solidFill><a:schemeClr val="phClr"/></a:solidFill>` +
	`<a:solidFill><a:schemeClr val="phClr"/></a:solidFill>` +
	`</a:fillStyleLst>` +
	`<a:lnStyleLst>` +
	`<a:ln w="6350"><a:solidFill><a:schemeClr val="phClr"/></a:solidFill></a:ln>` +
	`<a:ln w="12700"><a:solidFill><a:schemeClr val="phClr"/></a:solidFill></a:ln>` +
	`<a:ln w="19050"><a:solidFill><a:schemeClr val="phClr"/></a:solidFill></a:ln>` +
	`</a:lnStyleLst>` +
	`<a:effectStyleLst>` +
	`<a:effectStyle><a:effectLst/></a:effectStyle>` +
	`<a:effectStyle><a:effectLst/></a:effectStyle>` +
	`<a:effectStyle><a:effectLst/></a:effectStyle>` +
	`</a:effectStyleLst>` +
	`<a:bgFillStyleLst>` +
	`<a:solidFill><a:schemeClr val="phClr"/></a:solidFill>` +
	`<a:solidFill><a:schemeClr val="phClr"/></a:solidFill>` +
	`<a:solidFill><a:schemeClr val="phClr"/></a:solidFill>` +
	`</a:bgFillStyleLst>` +
	`</a:fmtScheme>` +
	`</a:themeElements>` +
	`</a:theme>`

// serializeSlide renders one slide and its relationship part. Hyperlink and
// image relationship ids are allocated as they are encountered; media files
// are numbered globally via mediaIndex.
func serializeSlide(s *Slide, mediaIndex *int) (slideXML, relsXML string, media map[string][]byte) {
	media = map[string][]byte{}

	type relationship struct {
		id       string
		relType  string
		target   string
		external bool
	}
	rels := []relationship{{id: "rId1", relType: relTypeSlideLayout, target: "../slideLayouts/slideLayout1.xml"}}
	nextRel := 2

	addHyperlink := func(url string) string {
		id := fmt.Sprintf("rId%d", nextRel)
		nextRel++
		rels = append(rels, relationship{id: id, relType: relTypeHyperlink, target: url, external: true})
		return id
	}
	addImage := func(data []byte) string {
		*mediaIndex++
		name := fmt.Sprintf("image%d.png", *mediaIndex)
		media[name] = data
		id := fmt.Sprintf("rId%d", nextRel)
		nextRel++
		rels = append(rels, relationship{id: id, relType: relTypeImage, target: "../media/" + name})
		return id
	}

	var b strings.Builder
	b.WriteString(xmlHeader)
	fmt.Fprintf(&b, `<p:sld xmlns:a="%s" xmlns:r="%s" xmlns:p="%s">`, nsA, nsR, nsP)
	b.WriteString(`<p:cSld>`)
	if bg := normalizeColor(s.Background); bg != "" {
		fmt.Fprintf(&b, `<p:bg><p:bgPr><a:solidFill><a:srgbClr val="%s"/></a:solidFill><a:effectLst/></p:bgPr></p:bg>`, bg)
	}
	b.WriteString(`<p:spTree>`)
	b.WriteString(emptySpTreeHeader)

	for i, shape := range s.Shapes {
		writeShape(&b, shape, i+2, addHyperlink, addImage)
	}

	b.WriteString(`</p:spTree></p:cSld>`)
	b.WriteString(`<p:clrMapOvr><a:masterClrMapping/></p:clrMapOvr>`)
	b.WriteString(`</p:sld>`)

	var rb strings.Builder
	rb.WriteString(xmlHeader)
	rb.WriteString(`<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships">`)
	for _, rel := range rels {
		if rel.external {
			fmt.Fprintf(&rb, `<Relationship Id="%s" Type="%s" Target="%s" TargetMode="External"/>`, rel.id, rel.relType, xmlEscape(rel.target))
		} else {
			fmt.Fprintf(&rb, `<Relationship Id="%s" Type="%s" Target="%s"/>`, rel.id, rel.relType, xmlEscape(rel.target))
		}
	}
	rb.WriteString(`</Relationships>`)

	return b.String(), rb.String(), media
}

func writeShape(b *strings.Builder, shape Shape, id int, addHyperlink func(string) string, addImage func([]byte) string) {
	if shape.Kind == KindPicture {
		writePicture(b, shape, id, addImage)
		return
	}

	b.WriteString(`<p:sp>`)
	fmt.Fprintf(b, `<p:nvSpPr><p:cNvPr id="%d" name="%s"/><p:cNvSpPr/><p:nvPr/></p:nvSpPr>`, id, xmlEscape(shape.Name))

	b.WriteString(`<p:spPr>`)
	writeXfrm(b, shape)
	geom := shape.Geometry
	if geom == "" {
		geom = GeometryRect
	}
	fmt.Fprintf(b, `<a:prstGeom prst="%s"><a:avLst/></a:prstGeom>`, geom)

	if fill := normalizeColor(shape.FillColor); fill != "" {
		b.WriteString(`<a:solidFill>`)
		writeColor(b, fill, shape.Transparency)
		b.WriteString(`</a:solidFill>`)
	} else {
		b.WriteString(`<a:noFill/>`)
	}

	if line := normalizeColor(shape.LineColor); line != "" {
		fmt.Fprintf(b, `<a:ln w="%s">`, lineWidth(shape.LineWidthPt))
		b.WriteString(`<a:solidFill>`)
		writeColor(b, line, shape.Transparency)
		b.WriteString(`</a:solidFill>`)
		if shape.LineDashed {
			b.WriteString(`<a:prstDash val="dash"/>`)
		}
		b.WriteString(`</a:ln>`)
	} else {
		b.WriteString(`<a:ln><a:noFill/></a:ln>`)
	}

	if shape.Shadow {
		b.WriteString(`<a:effectLst><a:outerShdw blurRad="40000" dist="23000" dir="5400000" rotWithShape="0"><a:srgbClr val="000000"><a:alpha val="35000"/></a:srgbClr></a:outerShdw></a:effectLst>`)
	}
	b.WriteString(`</p:spPr>`)

	if shape.Kind == KindText {
		writeTextBody(b, shape, addHyperlink)
	}
	b.WriteString(`</p:sp>`)
}

func writeXfrm(b *strings.Builder, shape Shape) {
	if shape.RotationDeg != 0 {
		fmt.Fprintf(b, `<a:xfrm rot="%s">`, rotation(shape.RotationDeg))
	} else {
		b.WriteString(`<a:xfrm>`)
	}
	fmt.Fprintf(b, `<a:off x="%s" y="%s"/><a:ext cx="%s" cy="%s"/>`, emu(shape.Box.X), emu(shape.Box.Y), emu(shape.Box.W), emu(shape.Box.H))
	b.WriteString(`</a:xfrm>`)
}

func writeColor(b *strings.Builder, hex string, transparency int) {
	if transparency > 0 {
		fmt.Fprintf(b, `<a:srgbClr val="%s"><a:alpha val="%s"/></a:srgbClr>`, hex, alphaVal(transparency))
	} else {
		fmt.Fprintf(b, `<a:srgbClr val="%s"/>`, hex)
	}
}

func writeTextBody(b *strings.Builder, shape Shape, addHyperlink func(string) string) {
	b.WriteString(`<p:txBody>`)
	b.WriteString(`<a:bodyPr wrap="square" lIns="45720" tIns="45720" rIns="45720" bIns="45720" anchor="t">`)
	if shape.ShrinkToFit {
		b.WriteString(`<a:normAutofit/>`)
	}
	b.WriteString(`</a:bodyPr><a:lstStyle/>`)

	for _, para := range shape.Paragraphs {
		b.WriteString(`<a:p><a:pPr`)
		if para.Align != "" {
			fmt.Fprintf(b, ` algn="%s"`, para.Align)
		}
		b.WriteString(`>`)
		if para.Bullet {
			b.WriteString(`<a:buChar char="&#8226;"/>`)
		} else {
			b.WriteString(`<a:buNone/>`)
		}
		b.WriteString(`</a:pPr>`)

		for _, run := range para.Runs {
			b.WriteString(`<a:r><a:rPr lang="en-US"`)
			if run.SizePt > 0 {
				fmt.Fprintf(b, ` sz="%s"`, fontSize(run.SizePt))
			}
			if run.Bold {
				b.WriteString(` b="1"`)
			}
			if run.Italic {
				b.WriteString(` i="1"`)
			}
			b.WriteString(` dirty="0">`)
			if c := normalizeColor(run.Color); c != "" {
				b.WriteString(`<a:solidFill>`)
				writeColor(b, c, run.Transparency)
				b.WriteString(`</a:solidFill>`)
			}
			if run.Font != "" {
				fmt.Fprintf(b, `<a:latin typeface="%s"/>`, xmlEscape(run.Font))
			}
			if run.HyperlinkURL != "" {
				fmt.Fprintf(b, `<a:hlinkClick xmlns:r="%s" r:id="%s"/>`, nsR, addHyperlink(run.HyperlinkURL))
			}
			b.WriteString(`</a:rPr>`)
			fmt.Fprintf(b, `<a:t>%s</a:t>`, xmlEscape(run.Text))
			b.WriteString(`</a:r>`)
		}
		b.WriteString(`</a:p>`)
	}
	b.WriteString(`</p:txBody>`)
}

func writePicture(b *strings.Builder, shape Shape, id int, addImage func([]byte) string) {
	rid := addImage(shape.ImageData)
	b.WriteString(`<p:pic>`)
	fmt.Fprintf(b, `<p:nvPicPr><p:cNvPr id="%d" name="%s"/><p:cNvPicPr/><p:nvPr/></p:nvPicPr>`, id, xmlEscape(shape.Name))
	b.WriteString(`<p:blipFill>`)
	fmt.Fprintf(b, `<a:blip r:embed="%s">`, rid)
	if shape.ImageTransparency > 0 {
		fmt.Fprintf(b, `<a:alphaModFix amt="%s"/>`, alphaVal(shape.ImageTransparency))
	}
	b.WriteString(`</a:blip><a:stretch><a:fillRect/></a:stretch></p:blipFill>`)
	b.WriteString(`<p:spPr>`)
	writeXfrm(b, shape)
	b.WriteString(`<a:prstGeom prst="rect"><a:avLst/></a:prstGeom>`)
	b.WriteString(`</p:spPr>`)
	b.WriteString(`</p:pic>`)
}
