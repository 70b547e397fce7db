package model

// Cell is the content of one grid square. It is either empty, a tetromino
// color tag, or stone (an indestructible penalty row).
type Cell string

const (
	CellEmpty Cell = "empty"
	CellStone Cell = "stone"
)

// Grid dimensions for every player field.
const (
	GridRows = 20
	GridCols = 10
)

// Grid is a player's permanent field, row-major: Grid[row][col].
type Grid [][]Cell

// NewGrid creates an empty GridRows x GridCols grid.
func NewGrid() Grid {
	g := make(Grid, GridRows)
	for i := range g {
		row := make([]Cell, GridCols)
		for j := range row {
			row[j] = CellEmpty
		}
		g[i] = row
	}
	return g
}

// Copy returns a deep copy of the grid.
func (g Grid) Copy() Grid {
	out := make(Grid, len(g))
	for i, row := range g {
		out[i] = make([]Cell, len(row))
		copy(out[i], row)
	}
	return out
}

// Flatten returns the grid cells in row-major order as a single slice.
func (g Grid) Flatten() []Cell {
	out := make([]Cell, 0, len(g)*GridCols)
	for _, row := range g {
		out = append(out, row...)
	}
	return out
}
