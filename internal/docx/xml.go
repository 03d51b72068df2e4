package docx

import "encoding/xml"

// WordprocessingML types for word/document.xml. Only the subset the
// assembler emits is modeled.

const wordprocessingNS = "http://schemas.openxmlformats.org/wordprocessingml/2006/main"

type documentXML struct {
	XMLName xml.Name `xml:"w:document"`
	XmlnsW  string   `xml:"xmlns:w,attr"`
	Body    bodyXML  `xml:"w:body"`
}

type bodyXML struct {
	XMLName xml.Name `xml:"w:body"`
	// Content holds paragraphXML and tableXML values in document
	// order; each carries its own element name.
	Content []any
	SectPr  *sectPrXML `xml:"w:sectPr,omitempty"`
}

type paragraphXML struct {
	XMLName xml.Name      `xml:"w:p"`
	Props   *paraPropsXML `xml:"w:pPr,omitempty"`
	Runs    []runXML      `xml:"w:r"`
}

type paraPropsXML struct {
	Style *valAttrXML `xml:"w:pStyle,omitempty"`
	NumPr *numPrXML   `xml:"w:numPr,omitempty"`
}

type numPrXML struct {
	Ilvl  intAttrXML `xml:"w:ilvl"`
	NumID intAttrXML `xml:"w:numId"`
}

type valAttrXML struct {
	Val string `xml:"w:val,attr"`
}

type intAttrXML struct {
	Val int `xml:"w:val,attr"`
}

type runXML struct {
	XMLName xml.Name  `xml:"w:r"`
	Break   *breakXML `xml:"w:br,omitempty"`
	Text    *textXML  `xml:"w:t,omitempty"`
}

type breakXML struct {
	Type string `xml:"w:type,attr,omitempty"`
}

type textXML struct {
	Space string `xml:"xml:space,attr,omitempty"`
	Value string `xml:",chardata"`
}

type tableXML struct {
	XMLName xml.Name      `xml:"w:tbl"`
	Props   tblPropsXML   `xml:"w:tblPr"`
	Grid    tblGridXML    `xml:"w:tblGrid"`
	Rows    []tableRowXML `xml:"w:tr"`
}

type tblPropsXML struct {
	Width   tblWidthXML   `xml:"w:tblW"`
	Borders tblBordersXML `xml:"w:tblBorders"`
}

type tblWidthXML struct {
	W    int    `xml:"w:w,attr"`
	Type string `xml:"w:type,attr"`
}

type tblBordersXML struct {
	Top     borderXML `xml:"w:top"`
	Left    borderXML `xml:"w:left"`
	Bottom  borderXML `xml:"w:bottom"`
	Right   borderXML `xml:"w:right"`
	InsideH borderXML `xml:"w:insideH"`
	InsideV borderXML `xml:"w:insideV"`
}

type borderXML struct {
	Val string `xml:"w:val,attr"`
	Sz  int    `xml:"w:sz,attr"`
}

type tblGridXML struct {
	Cols []gridColXML `xml:"w:gridCol"`
}

type gridColXML struct {
	W int `xml:"w:w,attr"`
}

type tableRowXML struct {
	Cells []tableCellXML `xml:"w:tc"`
}

type tableCellXML struct {
	Paragraphs []paragraphXML `xml:"w:p"`
}

type sectPrXML struct {
	XMLName xml.Name `xml:"w:sectPr"`
	PgSz    pgSzXML  `xml:"w:pgSz"`
}

type pgSzXML struct {
	W int `xml:"w:w,attr"`
	H int `xml:"w:h,attr"`
}

func singleBorder() tblBordersXML {
	edge := borderXML{Val: "single", Sz: 4}
	return tblBordersXML{Top: edge, Left: edge, Bottom: edge, Right: edge, InsideH: edge, InsideV: edge}
}
