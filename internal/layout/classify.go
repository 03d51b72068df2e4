package layout

import (
	"regexp"
	"strings"
)

// Classification precedence within a column: table runs first, then
// per line heading, then list marker, then paragraph accumulation.
func (a *Analyzer) classify(lines []*line, bodyHeight int) []Element {
	var (
		elements []Element
		para     []string
		prev     *line
	)

	flush := func() {
		if len(para) > 0 {
			elements = append(elements, Element{Kind: KindParagraph, Text: strings.Join(para, " ")})
			para = nil
		}
	}

	for i := 0; i < len(lines); {
		if tbl, consumed := detectTable(lines[i:]); consumed > 0 {
			flush()
			elements = append(elements, tbl)
			i += consumed
			prev = lines[i-1]
			continue
		}

		l := lines[i]
		if level := a.headingLevel(l, bodyHeight); level > 0 {
			flush()
			elements = append(elements, Element{Kind: KindHeading, Text: l.text(), Level: level})
			prev = l
			i++
			continue
		}

		if text, ordered, ok := listItem(l.text()); ok {
			flush()
			elements = append(elements, Element{Kind: KindListItem, Text: text, Ordered: ordered})
			prev = l
			i++
			continue
		}

		// A vertical gap beyond the threshold starts a new paragraph;
		// a gap exactly at the threshold still merges.
		if prev != nil && len(para) > 0 {
			gap := l.top - (prev.top + prev.height)
			if float64(gap) > a.cfg.ParagraphGapRatio*float64(prev.height) {
				flush()
			}
		}
		para = append(para, l.text())
		prev = l
		i++
	}
	flush()
	return elements
}

// headingLevel returns 1-3 for heading lines and 0 for body text.
// The effective font size is the line height relative to the page's
// median line height.
func (a *Analyzer) headingLevel(l *line, bodyHeight int) int {
	if bodyHeight == 0 {
		return 0
	}
	ratio := float64(l.height) / float64(bodyHeight)
	if ratio < a.cfg.HeadingRatio {
		return 0
	}
	switch {
	case ratio >= a.cfg.HeadingH1Ratio:
		return 1
	case ratio >= a.cfg.HeadingH2Ratio:
		return 2
	default:
		return 3
	}
}

var (
	bulletMarker = regexp.MustCompile(`^[•◦▪●○‣*–—-]\s+`)
	numberMarker = regexp.MustCompile(`^\d{1,3}[.)]\s+`)
	romanMarker  = regexp.MustCompile(`^(?i)(?:ix|iv|v|x{1,3}|v?i{1,3})[.)]\s+`)
	letterMarker = regexp.MustCompile(`^[A-Za-z][.)]\s+`)
)

// listItem matches leading list markers. It returns the text with the
// marker stripped and whether the marker implies an ordered list.
func listItem(text string) (string, bool, bool) {
	for _, m := range []struct {
		re      *regexp.Regexp
		ordered bool
	}{
		{bulletMarker, false},
		{numberMarker, true},
		{romanMarker, true},
		{letterMarker, true},
	} {
		if loc := m.re.FindStringIndex(text); loc != nil {
			return strings.TrimSpace(text[loc[1]:]), m.ordered, true
		}
	}
	return "", false, false
}
