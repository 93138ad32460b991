package grid

// GetGridCoords maps a linear index onto a grid that is cols wide.
func GetGridCoords(index int, cols int) (x int, y int) {
	return index % cols, index / cols
}

// PageStart returns the first index of the page of rows*cols cells that
// contains index.
func PageStart(index, cols, rows int) int {
	size := cols * rows
	return (index / size) * size
}
