// Package docx assembles inferred page structures into Word documents
// (OOXML WordprocessingML inside a zip container).
package docx

import (
	"archive/zip"
	"encoding/xml"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/kumarraju1982/Convertx/internal/layout"
)

// ConflictPolicy controls behavior when the output path already exists.
type ConflictPolicy string

const (
	// Overwrite replaces an existing file.
	Overwrite ConflictPolicy = "overwrite"
	// Unique appends _1, _2, ... until the name is free.
	Unique ConflictPolicy = "unique"
)

const (
	// US Letter in twips.
	pageWidthTwips  = 12240
	pageHeightTwips = 15840
	// Usable width inside default 1" margins.
	contentWidthTwips = 9360
)

// Document accumulates pages and serializes them as a .docx file.
// Pages must be added in order; every page after the first is preceded
// by an explicit page break so the one-PDF-page-to-one-section mapping
// survives into the output.
type Document struct {
	pages []layout.Page
}

// New creates an empty document.
func New() *Document {
	return &Document{}
}

// AddPage appends a page. An empty page still occupies a page in the
// output.
func (d *Document) AddPage(page layout.Page) {
	d.pages = append(d.pages, page)
}

// PageCount returns the number of pages added so far.
func (d *Document) PageCount() int {
	return len(d.pages)
}

// WriteTo serializes the document package to w.
func (d *Document) WriteTo(w io.Writer) error {
	docPart, err := d.documentPart()
	if err != nil {
		return err
	}

	zw := zip.NewWriter(w)
	parts := []struct {
		name string
		data []byte
	}{
		{"[Content_Types].xml", []byte(contentTypesXML)},
		{"_rels/.rels", []byte(packageRelsXML)},
		{"word/document.xml", docPart},
		{"word/_rels/document.xml.rels", []byte(documentRelsXML)},
		{"word/styles.xml", []byte(stylesXML)},
		{"word/numbering.xml", []byte(numberingXML)},
	}
	for _, p := range parts {
		f, err := zw.Create(p.name)
		if err != nil {
			return fmt.Errorf("failed to create package part %s: %w", p.name, err)
		}
		if _, err := f.Write(p.data); err != nil {
			return fmt.Errorf("failed to write package part %s: %w", p.name, err)
		}
	}
	if err := zw.Close(); err != nil {
		return fmt.Errorf("failed to finalize package: %w", err)
	}
	return nil
}

// Save writes the document to path, applying the conflict policy, and
// returns the path actually written. The parent directory must already
// exist.
func (d *Document) Save(path string, policy ConflictPolicy) (string, error) {
	dir := filepath.Dir(path)
	info, err := os.Stat(dir)
	if err != nil {
		return "", fmt.Errorf("output directory %s: %w", dir, err)
	}
	if !info.IsDir() {
		return "", fmt.Errorf("output directory %s is not a directory", dir)
	}

	target := path
	if policy == Unique {
		target, err = uniquePath(path)
		if err != nil {
			return "", err
		}
	}

	f, err := os.Create(target)
	if err != nil {
		return "", fmt.Errorf("failed to create %s: %w", target, err)
	}
	if err := d.WriteTo(f); err != nil {
		f.Close()
		os.Remove(target)
		return "", err
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("failed to close %s: %w", target, err)
	}
	return target, nil
}

// uniquePath finds a free filename by appending _1, _2, ...
func uniquePath(path string) (string, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return path, nil
	}
	ext := filepath.Ext(path)
	base := strings.TrimSuffix(path, ext)
	for i := 1; i <= 10000; i++ {
		candidate := fmt.Sprintf("%s_%d%s", base, i, ext)
		if _, err := os.Stat(candidate); os.IsNotExist(err) {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("no free filename for %s", path)
}

func (d *Document) documentPart() ([]byte, error) {
	body := bodyXML{
		SectPr: &sectPrXML{PgSz: pgSzXML{W: pageWidthTwips, H: pageHeightTwips}},
	}

	for i, page := range d.pages {
		if i > 0 {
			body.Content = append(body.Content, pageBreak())
		}
		if len(page.Elements) == 0 {
			body.Content = append(body.Content, paragraphXML{})
			continue
		}
		for _, el := range page.Elements {
			body.Content = append(body.Content, elementToXML(el))
		}
	}

	doc := documentXML{XmlnsW: wordprocessingNS, Body: body}
	data, err := xml.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal document body: %w", err)
	}
	return append([]byte(xml.Header), data...), nil
}

func elementToXML(el layout.Element) any {
	switch el.Kind {
	case layout.KindHeading:
		level := el.Level
		if level < 1 || level > 3 {
			level = 3
		}
		return styledParagraph("Heading"+strconv.Itoa(level), el.Text, nil)
	case layout.KindListItem:
		style, numID := "ListBullet", 1
		if el.Ordered {
			style, numID = "ListNumber", 2
		}
		return styledParagraph(style, el.Text, &numPrXML{
			Ilvl:  intAttrXML{Val: 0},
			NumID: intAttrXML{Val: numID},
		})
	case layout.KindTable:
		return tableToXML(el.Rows)
	default:
		return textParagraph(el.Text)
	}
}

func textParagraph(text string) paragraphXML {
	return paragraphXML{Runs: textRuns(text)}
}

func styledParagraph(style, text string, numPr *numPrXML) paragraphXML {
	return paragraphXML{
		Props: &paraPropsXML{
			Style: &valAttrXML{Val: style},
			NumPr: numPr,
		},
		Runs: textRuns(text),
	}
}

func textRuns(text string) []runXML {
	return []runXML{{Text: &textXML{Space: "preserve", Value: text}}}
}

func pageBreak() paragraphXML {
	return paragraphXML{Runs: []runXML{{Break: &breakXML{Type: "page"}}}}
}

func tableToXML(rows [][]string) tableXML {
	cols := 0
	for _, row := range rows {
		if len(row) > cols {
			cols = len(row)
		}
	}
	if cols == 0 {
		cols = 1
	}

	grid := tblGridXML{Cols: make([]gridColXML, cols)}
	for i := range grid.Cols {
		grid.Cols[i] = gridColXML{W: contentWidthTwips / cols}
	}

	tbl := tableXML{
		Props: tblPropsXML{
			Width:   tblWidthXML{W: contentWidthTwips, Type: "dxa"},
			Borders: singleBorder(),
		},
		Grid: grid,
	}
	for _, row := range rows {
		tr := tableRowXML{Cells: make([]tableCellXML, cols)}
		for c := 0; c < cols; c++ {
			cell := ""
			if c < len(row) {
				cell = row[c]
			}
			tr.Cells[c] = tableCellXML{Paragraphs: []paragraphXML{textParagraph(cell)}}
		}
		tbl.Rows = append(tbl.Rows, tr)
	}
	return tbl
}
