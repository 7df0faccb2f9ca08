package road

// DerivedRoad 下三路之一: MATCH/BREAK marks read off the big road, one per column or
// one per cell depending on the DerivedMode.
type DerivedRoad struct {
	Kind  DerivedKind `json:"kind"`
	Marks []Mark      `json:"marks"`
}

// Derive computes the derived road of the given kind. An empty mode reads as
// DerivedPerColumn.
func Derive(br BigRoad, kind DerivedKind, mode DerivedMode) DerivedRoad {
	back := kind.StartColumn() - 1
	if mode == DerivedPerCell {
		return DerivedRoad{Kind: kind, Marks: cellMarks(br, back)}
	}
	return DerivedRoad{Kind: kind, Marks: columnMarks(br, back)}
}

// columnMarks emits one mark for every column c that has `back` columns behind its
// predecessor: MATCH when column c-1 and column c-1-back have equal length. The
// road holds at most len(Columns)-back marks.
func columnMarks(br BigRoad, back int) []Mark {
	if back < 1 {
		return nil
	}
	marks := make([]Mark, 0, len(br.Columns))
	for c := back + 1; c < len(br.Columns); c++ {
		marks = append(marks, lengthMark(br, c, back))
	}
	return marks
}

// cellMarks walks every big-road cell at (column c, row r) and compares it with the
// column `back` places to the left:
//   - r > 0: MATCH unless the reference column ends exactly at row r-1.
//   - r == 0: same rule as columnMarks.
//
// A mark only reads columns left of its own cell, so appending hands never rewrites
// earlier marks.
func cellMarks(br BigRoad, back int) []Mark {
	if back < 1 {
		return nil
	}
	marks := make([]Mark, 0, br.CellCount())
	for c, col := range br.Columns {
		for r := range col.Cells {
			if r == 0 {
				if c-1-back < 0 {
					continue
				}
				marks = append(marks, lengthMark(br, c, back))
				continue
			}
			if c-back < 0 {
				continue
			}
			if br.Height(c-back) == r {
				marks = append(marks, MarkBreak)
			} else {
				marks = append(marks, MarkMatch)
			}
		}
	}
	return marks
}

func lengthMark(br BigRoad, c, back int) Mark {
	if br.Height(c-1) == br.Height(c-1-back) {
		return MarkMatch
	}
	return MarkBreak
}

func (d DerivedRoad) Len() int { return len(d.Marks) }

// Latest returns the most recent mark.
func (d DerivedRoad) Latest() (Mark, bool) {
	if len(d.Marks) == 0 {
		return 0, false
	}
	return d.Marks[len(d.Marks)-1], true
}

// Tail returns up to n most recent marks.
func (d DerivedRoad) Tail(n int) []Mark {
	if n <= 0 || len(d.Marks) == 0 {
		return []Mark{}
	}
	if n > len(d.Marks) {
		n = len(d.Marks)
	}
	out := make([]Mark, n)
	copy(out, d.Marks[len(d.Marks)-n:])
	return out
}

// Columns groups consecutive identical marks the way the road is drawn.
func (d DerivedRoad) Columns() [][]Mark {
	var cols [][]Mark
	for _, m := range d.Marks {
		if n := len(cols); n > 0 && cols[n-1][0] == m {
			cols[n-1] = append(cols[n-1], m)
			continue
		}
		cols = append(cols, []Mark{m})
	}
	return cols
}
