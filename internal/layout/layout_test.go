package layout

import (
	"log/slog"
	"strings"
	"testing"

	"github.com/kumarraju1982/Convertx/internal/config"
	"github.com/kumarraju1982/Convertx/internal/ocr"
	"github.com/kumarraju1982/Convertx/internal/pdf"
)

func testAnalyzer() *Analyzer {
	return NewAnalyzer(config.LayoutCfg{}, slog.New(slog.DiscardHandler))
}

func testImage() pdf.PageImage {
	return pdf.PageImage{PageNumber: 1, Width: 1000, Height: 1400, DPI: 300}
}

// textLine lays out the tokens of text as adjacent words starting at
// (x, y) with the given height. Word width tracks token length so
// different texts produce different word positions.
func textLine(text string, x, y, h int) []ocr.Word {
	var words []ocr.Word
	cx := x
	for _, tok := range strings.Fields(text) {
		w := len(tok) * h / 2
		words = append(words, ocr.Word{Text: tok, X: cx, Y: y, Width: w, Height: h, Confidence: 0.95})
		cx += w + h/2
	}
	return words
}

func wordAt(text string, x, y, h int) ocr.Word {
	return ocr.Word{Text: text, X: x, Y: y, Width: len(text) * h / 2, Height: h, Confidence: 0.95}
}

func analyze(t *testing.T, words []ocr.Word) Page {
	t.Helper()
	return testAnalyzer().Analyze(testImage(), ocr.Result{Words: words})
}

func TestAnalyze_EmptyPage(t *testing.T) {
	page := analyze(t, nil)
	if page.PageNumber != 1 {
		t.Errorf("PageNumber = %d, want 1", page.PageNumber)
	}
	if len(page.Elements) != 0 {
		t.Errorf("got %d elements for blank page, want 0", len(page.Elements))
	}
}

func TestAnalyze_ParagraphMerging(t *testing.T) {
	var words []ocr.Word
	words = append(words, textLine("alpha beta gamma", 100, 100, 20)...)
	words = append(words, textLine("go onward here", 100, 126, 20)...)            // gap 6, merges
	words = append(words, textLine("concluding remark follows", 100, 200, 20)...) // gap 54, splits

	page := analyze(t, words)
	if len(page.Elements) != 2 {
		t.Fatalf("got %d elements, want 2: %+v", len(page.Elements), page.Elements)
	}
	if page.Elements[0].Kind != KindParagraph {
		t.Errorf("Elements[0].Kind = %q, want paragraph", page.Elements[0].Kind)
	}
	if want := "alpha beta gamma go onward here"; page.Elements[0].Text != want {
		t.Errorf("Elements[0].Text = %q, want %q", page.Elements[0].Text, want)
	}
	if want := "concluding remark follows"; page.Elements[1].Text != want {
		t.Errorf("Elements[1].Text = %q, want %q", page.Elements[1].Text, want)
	}
}

func TestAnalyze_HeadingLevels(t *testing.T) {
	var words []ocr.Word
	words = append(words, textLine("Document Title", 100, 100, 40)...)   // 2.0x body
	words = append(words, textLine("Major Section", 100, 200, 32)...)    // 1.6x
	words = append(words, textLine("Small Subsection", 100, 300, 24)...) // 1.2x
	for i, text := range []string{
		"alpha beta gamma delta",
		"go onward here now",
		"concluding remark follows shortly",
		"end of body text",
		"final supporting sentence here",
	} {
		words = append(words, textLine(text, 100, 400+i*30, 20)...)
	}

	page := analyze(t, words)
	if len(page.Elements) < 4 {
		t.Fatalf("got %d elements, want at least 4: %+v", len(page.Elements), page.Elements)
	}

	wantHeadings := []struct {
		text  string
		level int
	}{
		{"Document Title", 1},
		{"Major Section", 2},
		{"Small Subsection", 3},
	}
	for i, want := range wantHeadings {
		el := page.Elements[i]
		if el.Kind != KindHeading {
			t.Errorf("Elements[%d].Kind = %q, want heading", i, el.Kind)
			continue
		}
		if el.Text != want.text || el.Level != want.level {
			t.Errorf("Elements[%d] = {%q, H%d}, want {%q, H%d}", i, el.Text, el.Level, want.text, want.level)
		}
	}
	if last := page.Elements[len(page.Elements)-1]; last.Kind != KindParagraph {
		t.Errorf("body text classified as %q, want paragraph", last.Kind)
	}
}

func TestAnalyze_ListItems(t *testing.T) {
	var words []ocr.Word
	words = append(words, textLine("• first bullet point", 100, 100, 20)...)
	words = append(words, textLine("• second bullet point", 100, 130, 20)...)
	words = append(words, textLine("1. opening numbered step", 100, 200, 20)...)
	words = append(words, textLine("2. closing numbered step", 100, 230, 20)...)

	page := analyze(t, words)
	if len(page.Elements) != 4 {
		t.Fatalf("got %d elements, want 4: %+v", len(page.Elements), page.Elements)
	}

	want := []struct {
		text    string
		ordered bool
	}{
		{"first bullet point", false},
		{"second bullet point", false},
		{"opening numbered step", true},
		{"closing numbered step", true},
	}
	for i, w := range want {
		el := page.Elements[i]
		if el.Kind != KindListItem {
			t.Errorf("Elements[%d].Kind = %q, want list_item", i, el.Kind)
			continue
		}
		if el.Text != w.text || el.Ordered != w.ordered {
			t.Errorf("Elements[%d] = {%q, ordered=%v}, want {%q, ordered=%v}",
				i, el.Text, el.Ordered, w.text, w.ordered)
		}
	}
}

func TestListItem_Markers(t *testing.T) {
	tests := []struct {
		in      string
		text    string
		ordered bool
		ok      bool
	}{
		{"• bullet text", "bullet text", false, true},
		{"- dash bullet", "dash bullet", false, true},
		{"3. third entry", "third entry", true, true},
		{"12) twelfth entry", "twelfth entry", true, true},
		{"a) lettered entry", "lettered entry", true, true},
		{"iv. roman entry", "roman entry", true, true},
		{"plain sentence here", "", false, false},
		{"3.14 is not a marker", "", false, false},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			text, ordered, ok := listItem(tt.in)
			if ok != tt.ok {
				t.Fatalf("listItem(%q) ok = %v, want %v", tt.in, ok, tt.ok)
			}
			if ok && (text != tt.text || ordered != tt.ordered) {
				t.Errorf("listItem(%q) = (%q, %v), want (%q, %v)", tt.in, text, ordered, tt.text, tt.ordered)
			}
		})
	}
}

func TestAnalyze_Table(t *testing.T) {
	var words []ocr.Word
	cells := [][]string{
		{"Name", "Age", "City"},
		{"Alice", "30", "Paris"},
		{"Bob", "25", "Oslo"},
	}
	anchors := []int{100, 300, 500}
	for r, row := range cells {
		for c, cell := range row {
			words = append(words, wordAt(cell, anchors[c], 100+r*30, 20))
		}
	}

	page := analyze(t, words)
	if len(page.Elements) != 1 {
		t.Fatalf("got %d elements, want 1 table: %+v", len(page.Elements), page.Elements)
	}
	tbl := page.Elements[0]
	if tbl.Kind != KindTable {
		t.Fatalf("Kind = %q, want table", tbl.Kind)
	}
	if len(tbl.Rows) != 3 {
		t.Fatalf("got %d rows, want 3", len(tbl.Rows))
	}
	for r, row := range cells {
		for c, want := range row {
			if got := tbl.Rows[r][c]; got != want {
				t.Errorf("Rows[%d][%d] = %q, want %q", r, c, got, want)
			}
		}
	}
}

func TestAnalyze_MisalignedRowsDegradeToParagraph(t *testing.T) {
	words := []ocr.Word{
		wordAt("alpha", 100, 100, 20), wordAt("beta", 300, 100, 20),
		wordAt("gamma", 100, 130, 20), wordAt("delta", 380, 130, 20),
		wordAt("epsilon", 100, 160, 20), wordAt("zeta", 460, 160, 20),
	}

	page := analyze(t, words)
	if len(page.Elements) != 1 {
		t.Fatalf("got %d elements, want 1: %+v", len(page.Elements), page.Elements)
	}
	if page.Elements[0].Kind != KindParagraph {
		t.Errorf("Kind = %q, want paragraph (degraded table)", page.Elements[0].Kind)
	}
}

func TestAnalyze_TwoColumns(t *testing.T) {
	leftTexts := []string{
		"alpha beta gamma",
		"go onward here",
		"concluding remark now",
		"end of column",
	}
	rightTexts := []string{
		"zebra runs fast",
		"by the river",
		"mountains rise high",
		"last right line",
	}

	var words []ocr.Word
	for i, text := range leftTexts {
		words = append(words, textLine(text, 100, 100+i*30, 20)...)
	}
	for i, text := range rightTexts {
		words = append(words, textLine(text, 600, 100+i*30, 20)...)
	}

	page := analyze(t, words)
	if len(page.Elements) != 2 {
		t.Fatalf("got %d elements, want 2 column paragraphs: %+v", len(page.Elements), page.Elements)
	}

	left, right := page.Elements[0].Text, page.Elements[1].Text
	if !strings.HasPrefix(left, "alpha") || !strings.Contains(left, "end of column") {
		t.Errorf("left column text = %q", left)
	}
	if !strings.HasPrefix(right, "zebra") || !strings.Contains(right, "last right line") {
		t.Errorf("right column text = %q", right)
	}
	if strings.Contains(left, "zebra") {
		t.Error("right-column words leaked into the left column")
	}
}

func TestGroupLines_OrderAndJitter(t *testing.T) {
	words := []ocr.Word{
		wordAt("second", 300, 102, 20), // slight vertical jitter
		wordAt("first", 100, 100, 20),
		wordAt("below", 100, 160, 20),
	}

	lines := groupLines(words)
	if len(lines) != 2 {
		t.Fatalf("got %d lines, want 2", len(lines))
	}
	if got := lines[0].text(); got != "first second" {
		t.Errorf("lines[0] = %q, want %q", got, "first second")
	}
	if got := lines[1].text(); got != "below" {
		t.Errorf("lines[1] = %q, want %q", got, "below")
	}
}
