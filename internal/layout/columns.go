package layout

import "github.com/kumarraju1982/Convertx/internal/ocr"

// detectColumns splits lines into vertical columns in reading order
// (left to right). A column boundary is a vertical band at least 10%
// of the page wide that fewer than 20% of lines cross. Pages without
// such a band stay single-column.
func detectColumns(lines []*line, pageWidth int) [][]*line {
	if len(lines) < 4 || pageWidth <= 0 {
		return [][]*line{lines}
	}

	// Coverage counts, per x position, how many lines have a word over
	// it. Line extents would hide the gutter whenever words from both
	// columns were grouped into one line.
	coverage := make([]int, pageWidth)
	stamp := make([]int, pageWidth)
	minLeft, maxRight := pageWidth, 0
	for li, l := range lines {
		for _, w := range l.words {
			left := clamp(w.X, 0, pageWidth-1)
			right := clamp(w.X+w.Width, 0, pageWidth)
			for x := left; x < right; x++ {
				if stamp[x] != li+1 {
					stamp[x] = li + 1
					coverage[x]++
				}
			}
			if left < minLeft {
				minLeft = left
			}
			if right > maxRight {
				maxRight = right
			}
		}
	}

	crossLimit := 0.2 * float64(len(lines))
	minGapWidth := pageWidth / 10

	bestStart, bestWidth := -1, 0
	for x := minLeft; x < maxRight; {
		if float64(coverage[x]) >= crossLimit {
			x++
			continue
		}
		start := x
		for x < maxRight && float64(coverage[x]) < crossLimit {
			x++
		}
		if w := x - start; w >= minGapWidth && w > bestWidth {
			bestStart, bestWidth = start, w
		}
	}
	if bestStart < 0 {
		return [][]*line{lines}
	}

	split := bestStart + bestWidth/2
	var leftWords, rightWords []ocr.Word
	leftMass, rightMass := 0, 0
	for _, l := range lines {
		for _, w := range l.words {
			if w.X+w.Width/2 < split {
				leftWords = append(leftWords, w)
				leftMass += w.Width
			} else {
				rightWords = append(rightWords, w)
				rightMass += w.Width
			}
		}
	}

	// Ragged right margins produce low-coverage bands too. A real
	// column holds a substantial share of the page's text.
	total := leftMass + rightMass
	if leftMass*4 < total || rightMass*4 < total {
		return [][]*line{lines}
	}

	var cols [][]*line
	if left := groupLines(leftWords); len(left) > 0 {
		cols = append(cols, left)
	}
	if right := groupLines(rightWords); len(right) > 0 {
		cols = append(cols, right)
	}
	if len(cols) < 2 {
		return [][]*line{lines}
	}
	return cols
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
