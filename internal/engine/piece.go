package engine

import "github.com/tetranet/tetranet/internal/model"

// SpawnX / SpawnY is the home anchor for a freshly dealt piece; the anchor is
// the top-left of the shape's bounding box.
const (
	SpawnX = 4
	SpawnY = 0
)

// Tetromino is one of the seven immutable catalog shapes. The catalog index
// is stable and is the domain of the bag shuffle.
type Tetromino struct {
	Shape [][]bool
	Color model.Cell
}

// Catalog is the fixed, ordered tetromino set. Do not reorder: bag indices
// refer to these positions.
var Catalog = []Tetromino{
	{Shape: [][]bool{
		{false, false, false, false},
		{true, true, true, true},
		{false, false, false, false},
		{false, false, false, false},
	}, Color: "block-I"},
	{Shape: [][]bool{
		{true, false, false},
		{true, true, true},
		{false, false, false},
	}, Color: "block-J"},
	{Shape: [][]bool{
		{false, false, true},
		{true, true, true},
		{false, false, false},
	}, Color: "block-L"},
	{Shape: [][]bool{
		{true, true},
		{true, true},
	}, Color: "block-O"},
	{Shape: [][]bool{
		{false, true, true},
		{true, true, false},
		{false, false, false},
	}, Color: "block-S"},
	{Shape: [][]bool{
		{false, true, false},
		{true, true, true},
		{false, false, false},
	}, Color: "block-T"},
	{Shape: [][]bool{
		{true, true, false},
		{false, true, true},
		{false, false, false},
	}, Color: "block-Z"},
}

// Piece is an active falling piece: a shape of cell values plus an anchor
// position into the grid. Y may be negative while the piece is partially
// above the visible field. Pieces are never mutated; every transform returns
// a new value.
type Piece struct {
	Shape [][]model.Cell
	X     int
	Y     int
	Color model.Cell
}

// NewPiece builds a Piece from a catalog tetromino at the spawn anchor,
// mapping filled shape cells to the tetromino's color tag.
func NewPiece(t Tetromino) Piece {
	shape := make([][]model.Cell, len(t.Shape))
	for i, row := range t.Shape {
		shape[i] = make([]model.Cell, len(row))
		for j, filled := range row {
			if filled {
				shape[i][j] = t.Color
			} else {
				shape[i][j] = model.CellEmpty
			}
		}
	}
	return Piece{Shape: shape, X: SpawnX, Y: SpawnY, Color: t.Color}
}

// Moved returns a copy of the piece offset by (dx, dy). The shape is shared;
// it is never written to.
func (p Piece) Moved(dx, dy int) Piece {
	p.X += dx
	p.Y += dy
	return p
}

// Rotated returns the piece turned 90 degrees clockwise around its own
// bounding box: transpose, then reverse each row. No wall kicks.
func (p Piece) Rotated() Piece {
	if len(p.Shape) == 0 {
		return p
	}
	rows := len(p.Shape)
	cols := len(p.Shape[0])
	rotated := make([][]model.Cell, cols)
	for i := 0; i < cols; i++ {
		rotated[i] = make([]model.Cell, rows)
		for j := 0; j < rows; j++ {
			rotated[i][j] = p.Shape[rows-1-j][i]
		}
	}
	p.Shape = rotated
	return p
}
