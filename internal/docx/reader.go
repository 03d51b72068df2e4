package docx

import (
	"archive/zip"
	"encoding/xml"
	"fmt"
	"io"
	"strings"
)

// Block is one body-level unit read back from a document: a paragraph
// (possibly styled, possibly a page break) or a table.
type Block struct {
	Style     string
	Text      string
	PageBreak bool
	Rows      [][]string
}

type readParagraph struct {
	Props struct {
		Style struct {
			Val string `xml:"val,attr"`
		} `xml:"pStyle"`
	} `xml:"pPr"`
	Runs []struct {
		Break *struct {
			Type string `xml:"type,attr"`
		} `xml:"br"`
		Text string `xml:"t"`
	} `xml:"r"`
}

type readTable struct {
	Rows []struct {
		Cells []struct {
			Paragraphs []readParagraph `xml:"p"`
		} `xml:"tc"`
	} `xml:"tr"`
}

// Read extracts the body blocks of a .docx file in document order.
// It reads just enough of the format to verify generated output.
func Read(path string) ([]Block, error) {
	zr, err := zip.OpenReader(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer zr.Close()

	var docFile *zip.File
	for _, f := range zr.File {
		if f.Name == "word/document.xml" {
			docFile = f
			break
		}
	}
	if docFile == nil {
		return nil, fmt.Errorf("%s has no word/document.xml", path)
	}

	rc, err := docFile.Open()
	if err != nil {
		return nil, fmt.Errorf("failed to open document part: %w", err)
	}
	defer rc.Close()

	return parseBody(rc)
}

func parseBody(r io.Reader) ([]Block, error) {
	dec := xml.NewDecoder(r)
	var blocks []Block
	depth := 0

	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to parse document body: %w", err)
		}

		switch t := tok.(type) {
		case xml.StartElement:
			// Only body-level paragraphs and tables; nested ones
			// (table cells) are consumed by DecodeElement.
			if depth == 2 && t.Name.Local == "p" {
				var p readParagraph
				if err := dec.DecodeElement(&p, &t); err != nil {
					return nil, fmt.Errorf("failed to parse paragraph: %w", err)
				}
				blocks = append(blocks, paragraphBlock(p))
				continue
			}
			if depth == 2 && t.Name.Local == "tbl" {
				var tbl readTable
				if err := dec.DecodeElement(&tbl, &t); err != nil {
					return nil, fmt.Errorf("failed to parse table: %w", err)
				}
				blocks = append(blocks, tableBlock(tbl))
				continue
			}
			depth++
		case xml.EndElement:
			depth--
		}
	}
	return blocks, nil
}

func paragraphBlock(p readParagraph) Block {
	b := Block{Style: p.Props.Style.Val}
	var texts []string
	for _, r := range p.Runs {
		if r.Break != nil && r.Break.Type == "page" {
			b.PageBreak = true
		}
		if r.Text != "" {
			texts = append(texts, r.Text)
		}
	}
	b.Text = strings.Join(texts, "")
	return b
}

func tableBlock(tbl readTable) Block {
	b := Block{}
	for _, tr := range tbl.Rows {
		var row []string
		for _, tc := range tr.Cells {
			var texts []string
			for _, p := range tc.Paragraphs {
				texts = append(texts, paragraphBlock(p).Text)
			}
			row = append(row, strings.Join(texts, " "))
		}
		b.Rows = append(b.Rows, row)
	}
	return b
}
