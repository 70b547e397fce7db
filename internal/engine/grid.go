package engine

import "github.com/tetranet/tetranet/internal/model"

// PreviewSize is the side of the next-piece preview grid.
const PreviewSize = 4

// CanPlace reports whether every non-empty cell of the piece lands inside
// column bounds, above the bottom, and on an empty grid cell. Rows above the
// visible grid (y < 0) are legal and not content-checked.
func CanPlace(p Piece, grid model.Grid) bool {
	for dy, row := range p.Shape {
		for dx, cell := range row {
			if cell == model.CellEmpty {
				continue
			}
			px := p.X + dx
			py := p.Y + dy
			if px < 0 || px >= model.GridCols || py >= model.GridRows {
				return false
			}
			if py >= 0 && grid[py][px] != model.CellEmpty {
				return false
			}
		}
	}
	return true
}

// AttemptMove returns the piece offset by (dx, dy) if the new position is
// valid. On failure the input piece is returned unchanged with ok=false.
func AttemptMove(p Piece, grid model.Grid, dx, dy int) (Piece, bool) {
	moved := p.Moved(dx, dy)
	if !CanPlace(moved, grid) {
		return p, false
	}
	return moved, true
}

// AttemptRotate returns the piece rotated clockwise if the rotated shape
// fits. On failure the input piece is returned unchanged with ok=false.
func AttemptRotate(p Piece, grid model.Grid) (Piece, bool) {
	rotated := p.Rotated()
	if !CanPlace(rotated, grid) {
		return p, false
	}
	return rotated, true
}

// HardDrop returns the lowest valid position straight down from the piece.
// ok is false when the piece cannot move at all.
func HardDrop(p Piece, grid model.Grid) (Piece, bool) {
	dropped := p
	for {
		next := dropped.Moved(0, 1)
		if !CanPlace(next, grid) {
			break
		}
		dropped = next
	}
	if dropped.X == p.X && dropped.Y == p.Y {
		return p, false
	}
	return dropped, true
}

// LockAndClear writes the piece's non-empty cells into a copy of the grid
// (cells outside the field are dropped), then removes full rows bottom-up,
// unshifting an empty row at the top for each. Cleared rows cascade: the
// scan re-checks the same index after a removal. Returns the new grid and
// the updated cumulative cleared-line count.
func LockAndClear(grid model.Grid, p Piece, lines int) (model.Grid, int) {
	out := grid.Copy()
	for dy, row := range p.Shape {
		for dx, cell := range row {
			if cell == model.CellEmpty {
				continue
			}
			px := p.X + dx
			py := p.Y + dy
			if py >= 0 && py < model.GridRows && px >= 0 && px < model.GridCols {
				out[py][px] = cell
			}
		}
	}

	cleared := lines
	for i := model.GridRows - 1; i >= 0; i-- {
		full := true
		for _, cell := range out[i] {
			if cell == model.CellEmpty {
				full = false
				break
			}
		}
		if !full {
			continue
		}
		out = append(out[:i], out[i+1:]...)
		empty := make([]model.Cell, model.GridCols)
		for j := range empty {
			empty[j] = model.CellEmpty
		}
		out = append(model.Grid{empty}, out...)
		cleared++
		i++ // the row shifted into this index has not been checked yet
	}

	return out, cleared
}

// VisualGrid overlays the active piece on a copy of the grid. Piece cells
// take precedence; the stored grid is untouched. A nil piece yields a plain
// copy.
func VisualGrid(grid model.Grid, p *Piece) model.Grid {
	out := grid.Copy()
	if p == nil {
		return out
	}
	for dy, row := range p.Shape {
		for dx, cell := range row {
			if cell == model.CellEmpty {
				continue
			}
			px := p.X + dx
			py := p.Y + dy
			if px >= 0 && px < model.GridCols && py >= 0 && py < model.GridRows {
				out[py][px] = cell
			}
		}
	}
	return out
}

// PreviewGrid centers the piece's canonical shape in a size x size grid.
func PreviewGrid(p Piece, size int) model.Grid {
	out := make(model.Grid, size)
	for i := range out {
		out[i] = make([]model.Cell, size)
		for j := range out[i] {
			out[i][j] = model.CellEmpty
		}
	}
	if len(p.Shape) == 0 {
		return out
	}

	height := len(p.Shape)
	width := len(p.Shape[0])
	offsetX := (size - width) / 2
	offsetY := (size - height) / 2

	for dy, row := range p.Shape {
		for dx, cell := range row {
			if cell == model.CellEmpty {
				continue
			}
			px := offsetX + dx
			py := offsetY + dy
			if px >= 0 && px < size && py >= 0 && py < size {
				out[py][px] = cell
			}
		}
	}
	return out
}

// WithStoneRow returns the grid shifted up one row with an indestructible
// stone row appended at the bottom. The top row is discarded.
func WithStoneRow(grid model.Grid) model.Grid {
	out := grid.Copy()
	out = out[1:]
	stone := make([]model.Cell, model.GridCols)
	for j := range stone {
		stone[j] = model.CellStone
	}
	return append(out, stone)
}
