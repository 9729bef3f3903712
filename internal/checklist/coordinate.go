package checklist

import (
	"fmt"

	"github.com/xuri/excelize/v2"
)

// Fixed template columns, 1-based (A=1).
const (
	ColumnNumber        = 1
	ColumnQuestion      = 2
	ColumnComplies      = 5
	ColumnDoesNotComply = 6
	ColumnNotApplicable = 7
	ColumnObservations  = 8
)

// Coordinate is a 1-based (row, column) cell position.
type Coordinate struct {
	Row int
	Col int
}

// Cell returns the A1-style name of c.
func (c Coordinate) Cell() (string, error) {
	if c.Row < 1 || c.Col < 1 {
		return "", fmt.Errorf("invalid coordinate row=%d col=%d", c.Row, c.Col)
	}
	return excelize.CoordinatesToCellName(c.Col, c.Row)
}

func (c Coordinate) String() string {
	name, err := c.Cell()
	if err != nil {
		return fmt.Sprintf("R%dC%d", c.Row, c.Col)
	}
	return name
}

// ColumnFor returns the column that receives the mark for a. Unset has none.
func ColumnFor(a Answer) (int, bool) {
	switch a {
	case Complies:
		return ColumnComplies, true
	case DoesNotComply:
		return ColumnDoesNotComply, true
	case NotApplicable:
		return ColumnNotApplicable, true
	default:
		return 0, false
	}
}

// MarkAt returns the mark coordinate for an answer on row.
func MarkAt(row int, a Answer) (Coordinate, bool) {
	col, ok := ColumnFor(a)
	if !ok {
		return Coordinate{}, false
	}
	return Coordinate{Row: row, Col: col}, true
}

// ObservationsAt returns the observations coordinate on row.
func ObservationsAt(row int) Coordinate {
	return Coordinate{Row: row, Col: ColumnObservations}
}
