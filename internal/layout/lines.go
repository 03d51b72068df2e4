package layout

import (
	"sort"
	"strings"

	"github.com/kumarraju1982/Convertx/internal/ocr"
)

// line is a horizontal run of words sharing a baseline.
type line struct {
	words []ocr.Word
	top   int
	left  int
	right int
	// height is the median word height, used as the effective font size.
	height int
}

func (l *line) text() string {
	parts := make([]string, len(l.words))
	for i, w := range l.words {
		parts[i] = w.Text
	}
	return strings.Join(parts, " ")
}

func (l *line) centerY() float64 {
	return float64(l.top) + float64(l.height)/2
}

func (l *line) add(w ocr.Word) {
	l.words = append(l.words, w)
	if w.Y < l.top {
		l.top = w.Y
	}
	if w.X < l.left {
		l.left = w.X
	}
	if w.X+w.Width > l.right {
		l.right = w.X + w.Width
	}
	l.height = medianWordHeight(l.words)
}

// groupLines clusters words into lines. A word joins an existing line
// when its vertical center is within half the line height of the
// line's center; otherwise it starts a new line. Lines come back in
// top-to-bottom order with words sorted left to right.
func groupLines(words []ocr.Word) []*line {
	if len(words) == 0 {
		return nil
	}

	sorted := make([]ocr.Word, len(words))
	copy(sorted, words)
	sort.Slice(sorted, func(i, j int) bool {
		ci := float64(sorted[i].Y) + float64(sorted[i].Height)/2
		cj := float64(sorted[j].Y) + float64(sorted[j].Height)/2
		return ci < cj
	})

	var lines []*line
	for _, w := range sorted {
		wc := float64(w.Y) + float64(w.Height)/2
		var target *line
		if len(lines) > 0 {
			last := lines[len(lines)-1]
			tol := float64(max(last.height, w.Height)) * 0.5
			if abs(wc-last.centerY()) <= tol {
				target = last
			}
		}
		if target == nil {
			lines = append(lines, &line{
				words:  []ocr.Word{w},
				top:    w.Y,
				left:   w.X,
				right:  w.X + w.Width,
				height: w.Height,
			})
			continue
		}
		target.add(w)
	}

	for _, l := range lines {
		sort.Slice(l.words, func(i, j int) bool {
			return l.words[i].X < l.words[j].X
		})
	}
	sort.Slice(lines, func(i, j int) bool {
		return lines[i].top < lines[j].top
	})
	return lines
}

func medianWordHeight(words []ocr.Word) int {
	heights := make([]int, len(words))
	for i, w := range words {
		heights[i] = w.Height
	}
	sort.Ints(heights)
	return heights[len(heights)/2]
}

func medianLineHeight(lines []*line) int {
	if len(lines) == 0 {
		return 0
	}
	heights := make([]int, len(lines))
	for i, l := range lines {
		heights[i] = l.height
	}
	sort.Ints(heights)
	return heights[len(heights)/2]
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
