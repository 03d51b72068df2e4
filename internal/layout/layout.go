// Package layout infers document structure from positioned OCR words.
//
// The analyzer works on one page at a time: words are grouped into
// lines, lines into columns, and columns are classified into headings,
// list items, tables and paragraphs in reading order.
package layout

import (
	"log/slog"

	"github.com/kumarraju1982/Convertx/internal/config"
	"github.com/kumarraju1982/Convertx/internal/ocr"
	"github.com/kumarraju1982/Convertx/internal/pdf"
)

// Kind discriminates the element variants.
type Kind string

const (
	KindParagraph Kind = "paragraph"
	KindHeading   Kind = "heading"
	KindListItem  Kind = "list_item"
	KindTable     Kind = "table"
)

// Element is one structural unit of a page.
type Element struct {
	Kind Kind `json:"kind"`

	// Text is the element content. Empty for tables.
	Text string `json:"text,omitempty"`

	// Level is the heading level (1-3), set only for KindHeading.
	Level int `json:"level,omitempty"`

	// Ordered distinguishes numbered from bulleted list items.
	Ordered bool `json:"ordered,omitempty"`

	// Rows holds table cell text, row-major. Set only for KindTable.
	Rows [][]string `json:"rows,omitempty"`
}

// Page is the inferred structure of a single page. A blank page has
// an empty Elements slice.
type Page struct {
	PageNumber int       `json:"page_number"`
	Elements   []Element `json:"elements"`
}

// Analyzer infers structure from recognition results.
type Analyzer struct {
	cfg    config.LayoutCfg
	logger *slog.Logger
}

// NewAnalyzer creates an analyzer with the given tuning parameters.
// Zero-valued thresholds fall back to defaults.
func NewAnalyzer(cfg config.LayoutCfg, logger *slog.Logger) *Analyzer {
	def := config.DefaultConfig().Layout
	if cfg.HeadingRatio <= 1 {
		cfg.HeadingRatio = def.HeadingRatio
	}
	if cfg.HeadingH1Ratio <= 1 {
		cfg.HeadingH1Ratio = def.HeadingH1Ratio
	}
	if cfg.HeadingH2Ratio <= 1 {
		cfg.HeadingH2Ratio = def.HeadingH2Ratio
	}
	if cfg.ParagraphGapRatio <= 0 {
		cfg.ParagraphGapRatio = def.ParagraphGapRatio
	}
	return &Analyzer{cfg: cfg, logger: logger}
}

// Analyze converts one page's recognition result into structure.
// Pages with no recognized words produce an empty structure rather
// than an error.
func (a *Analyzer) Analyze(img pdf.PageImage, res ocr.Result) Page {
	page := Page{PageNumber: img.PageNumber, Elements: []Element{}}
	if len(res.Words) == 0 {
		return page
	}

	lines := groupLines(res.Words)
	bodyHeight := medianLineHeight(lines)
	columns := detectColumns(lines, img.Width)

	for _, col := range columns {
		page.Elements = append(page.Elements, a.classify(col, bodyHeight)...)
	}

	a.logger.Debug("page analyzed",
		"page", img.PageNumber,
		"words", len(res.Words),
		"lines", len(lines),
		"columns", len(columns),
		"elements", len(page.Elements))

	return page
}
