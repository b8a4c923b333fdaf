package main

const (
	SpatialCellSize = 100.0 // ~2x the largest shape radius (pentagon 45)
	SpatialCols     = int(WorldSize/SpatialCellSize) + 1
	SpatialRows     = SpatialCols
)

// ShapeGrid is a fixed-size broad-phase grid of shape indices
type ShapeGrid struct {
	cells [SpatialCols * SpatialRows][]int
}

// Clear resets all cells (keeps allocated capacity)
func (g *ShapeGrid) Clear() {
	for i := range g.cells {
		g.cells[i] = g.cells[i][:0]
	}
}

// Build indexes every shape by its bounding box
func (g *ShapeGrid) Build(shapes []Shape) {
	g.Clear()
	for i := range shapes {
		g.InsertCircle(shapes[i].Pos, shapes[i].Radius, i)
	}
}

// cellRange returns the inclusive cell bounds overlapping a circle's bounding box
func cellRange(p Vector, radius float64) (minCX, maxCX, minCY, maxCY int) {
	minCX = clampCell(int((p.X-radius)/SpatialCellSize), SpatialCols)
	maxCX = clampCell(int((p.X+radius)/SpatialCellSize), SpatialCols)
	minCY = clampCell(int((p.Y-radius)/SpatialCellSize), SpatialRows)
	maxCY = clampCell(int((p.Y+radius)/SpatialCellSize), SpatialRows)
	return
}

func clampCell(c, n int) int {
	if c < 0 {
		return 0
	}
	if c >= n {
		return n - 1
	}
	return c
}

// InsertCircle adds idx to all cells overlapping the circle's bounding box
func (g *ShapeGrid) InsertCircle(p Vector, radius float64, idx int) {
	minCX, maxCX, minCY, maxCY := cellRange(p, radius)
	for cy := minCY; cy <= maxCY; cy++ {
		for cx := minCX; cx <= maxCX; cx++ {
			c := cy*SpatialCols + cx
			g.cells[c] = append(g.cells[c], idx)
		}
	}
}

// QueryBuf appends the indices in cells overlapping the circle to buf.
// An index may appear more than once.
func (g *ShapeGrid) QueryBuf(p Vector, radius float64, buf []int) []int {
	minCX, maxCX, minCY, maxCY := cellRange(p, radius)
	for cy := minCY; cy <= maxCY; cy++ {
		for cx := minCX; cx <= maxCX; cx++ {
			buf = append(buf, g.cells[cy*SpatialCols+cx]...)
		}
	}
	return buf
}
