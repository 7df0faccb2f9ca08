package road

import "baccarat-lite/outcome"

// Cell is one non-tie hand in the big road. Ties dealt after it are folded in as a count.
type Cell struct {
	Index int `json:"index"` // position in the source sequence
	Ties  int `json:"ties,omitempty"`
}

// Column is a run of identical non-tie outcomes. A column is never empty.
type Column struct {
	Outcome outcome.Outcome `json:"outcome"`
	Cells   []Cell          `json:"cells"`
}

func (c Column) Len() int { return len(c.Cells) }

// BigRoad 大路
type BigRoad struct {
	Columns []Column `json:"columns"`
	// Ties dealt before the first non-tie hand. They never form a column.
	LeadingTies int `json:"leading_ties,omitempty"`
}

// BuildBigRoad folds outcomes into columns. It holds no state between calls, so the
// same input always yields an identical road.
func BuildBigRoad(outcomes []outcome.Outcome) BigRoad {
	var br BigRoad
	for i, o := range outcomes {
		switch o {
		case outcome.Tie:
			if len(br.Columns) == 0 {
				br.LeadingTies++
				continue
			}
			col := &br.Columns[len(br.Columns)-1]
			col.Cells[len(col.Cells)-1].Ties++
		case outcome.Banker, outcome.Player:
			if n := len(br.Columns); n > 0 && br.Columns[n-1].Outcome == o {
				br.Columns[n-1].Cells = append(br.Columns[n-1].Cells, Cell{Index: i})
				continue
			}
			br.Columns = append(br.Columns, Column{Outcome: o, Cells: []Cell{{Index: i}}})
		}
	}
	return br
}

// Height is the length of column c, or 0 when c is out of range.
func (br BigRoad) Height(c int) int {
	if c < 0 || c >= len(br.Columns) {
		return 0
	}
	return br.Columns[c].Len()
}

// CellCount is the number of non-tie hands placed on the road.
func (br BigRoad) CellCount() int {
	n := 0
	for _, col := range br.Columns {
		n += col.Len()
	}
	return n
}

// TieCount includes leading ties.
func (br BigRoad) TieCount() int {
	n := br.LeadingTies
	for _, col := range br.Columns {
		for _, cell := range col.Cells {
			n += cell.Ties
		}
	}
	return n
}

// Heights lists column lengths in order.
func (br BigRoad) Heights() []int {
	out := make([]int, len(br.Columns))
	for i, col := range br.Columns {
		out[i] = col.Len()
	}
	return out
}

// Last returns the most recent column.
func (br BigRoad) Last() (Column, bool) {
	if len(br.Columns) == 0 {
		return Column{}, false
	}
	return br.Columns[len(br.Columns)-1], true
}
