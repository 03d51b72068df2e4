package layout

import (
	"sort"
	"strings"
)

const (
	// Words within this many pixels of a column anchor count as aligned.
	tableAlignTolerance = 15

	minTableRows = 3

	// Fraction of rows that must contribute a word to a column anchor.
	tableColumnHitRatio = 0.7

	// Fraction of all words in the run that must sit on an anchor.
	tableWordAlignRatio = 0.8
)

// detectTable tries to read a prefix of lines as a table. It returns
// the table element and the number of lines consumed; consumed is zero
// when the lines do not align well enough, in which case the caller
// falls back to ordinary text classification.
func detectTable(lines []*line) (Element, int) {
	run := 0
	for run < len(lines) && tableRowCandidate(lines[run]) {
		run++
	}

	for n := run; n >= minTableRows; n-- {
		if rows, ok := tableRows(lines[:n]); ok {
			return Element{Kind: KindTable, Rows: rows}, n
		}
	}
	return Element{}, 0
}

// tableRowCandidate filters lines that could be table rows: at least
// two words and no list marker.
func tableRowCandidate(l *line) bool {
	if len(l.words) < 2 {
		return false
	}
	_, _, isList := listItem(l.text())
	return !isList
}

// tableRows checks column alignment across the run and, when it holds,
// assigns each word to its nearest column anchor.
func tableRows(run []*line) ([][]string, bool) {
	type start struct {
		x   int
		row int
	}
	var starts []start
	totalWords := 0
	for i, l := range run {
		for _, w := range l.words {
			starts = append(starts, start{x: w.X, row: i})
			totalWords++
		}
	}
	sort.Slice(starts, func(i, j int) bool { return starts[i].x < starts[j].x })

	// Cluster word starts, then keep clusters that enough rows hit.
	minRowHits := int(tableColumnHitRatio*float64(len(run)) + 0.999)
	var anchors []int
	alignedWords := 0

	i := 0
	for i < len(starts) {
		j := i
		rows := map[int]bool{}
		sum := 0
		for j < len(starts) && starts[j].x-starts[i].x <= tableAlignTolerance {
			rows[starts[j].row] = true
			sum += starts[j].x
			j++
		}
		if len(rows) >= minRowHits {
			anchors = append(anchors, sum/(j-i))
			alignedWords += j - i
		}
		i = j
	}

	if len(anchors) < 2 {
		return nil, false
	}
	if float64(alignedWords) < tableWordAlignRatio*float64(totalWords) {
		return nil, false
	}

	rows := make([][]string, len(run))
	for ri, l := range run {
		cells := make([][]string, len(anchors))
		for _, w := range l.words {
			ci := nearestAnchor(anchors, w.X)
			cells[ci] = append(cells[ci], w.Text)
		}
		row := make([]string, len(anchors))
		for ci, parts := range cells {
			row[ci] = strings.Join(parts, " ")
		}
		rows[ri] = row
	}
	return rows, true
}

func nearestAnchor(anchors []int, x int) int {
	best, bestDist := 0, -1
	for i, a := range anchors {
		d := x - a
		if d < 0 {
			d = -d
		}
		if bestDist < 0 || d < bestDist {
			best, bestDist = i, d
		}
	}
	return best
}
