package layout

// Grid dimensions used to bucket keys for nearest-key queries.
const (
	gridColumns = 10
	gridRows    = 5
)

// GeometryIndex maps a point to the keys that could plausibly be the intended
// target of a touch at that point. It is read-only once built.
type GeometryIndex struct {
	width      int
	height     int
	cellWidth  int
	cellHeight int
	cells      [][]int
}

// newGeometryIndex buckets key indices into grid cells. A key joins every cell
// that its bounds, grown by radius on each side, overlap.
func newGeometryIndex(keys []*Key, width, height, radius int) *GeometryIndex {
	g := &GeometryIndex{
		width:  width,
		height: height,
		cells:  make([][]int, gridColumns*gridRows),
	}
	if width <= 0 || height <= 0 {
		return g
	}

	g.cellWidth = (width + gridColumns - 1) / gridColumns
	g.cellHeight = (height + gridRows - 1) / gridRows

	for row := 0; row < gridRows; row++ {
		for col := 0; col < gridColumns; col++ {
			x0 := col * g.cellWidth
			y0 := row * g.cellHeight
			x1 := x0 + g.cellWidth
			y1 := y0 + g.cellHeight

			var members []int
			for i, k := range keys {
				if k.X-radius < x1 && k.X+k.Width+radius > x0 &&
					k.Y-radius < y1 && k.Y+k.Height+radius > y0 {
					members = append(members, i)
				}
			}
			g.cells[row*gridColumns+col] = members
		}
	}

	return g
}

// NearestKeys returns the indices of keys near the point in ascending order.
// Points outside the layout bounds have no nearby keys.
func (g *GeometryIndex) NearestKeys(x, y int) []int {
	if x < 0 || x >= g.width || y < 0 || y >= g.height {
		return nil
	}
	col := x / g.cellWidth
	row := y / g.cellHeight
	if col >= gridColumns || row >= gridRows {
		return nil
	}
	return g.cells[row*gridColumns+col]
}
