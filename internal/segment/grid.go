package segment

// Unlabeled marks a background cell in a LabelGrid.
const Unlabeled int32 = -1

// PixelGrid is the ink mask of one extraction, row-major.
type PixelGrid struct {
	Width  int
	Height int
	ink    []bool
}

// NewPixelGrid returns an all-background grid.
func NewPixelGrid(width, height int) *PixelGrid {
	return &PixelGrid{
		Width:  width,
		Height: height,
		ink:    make([]bool, width*height),
	}
}

// Threshold builds the ink mask of buf: a pixel is ink when its first
// component is below InkThreshold.
func Threshold(buf *PixelBuffer) *PixelGrid {
	g := NewPixelGrid(buf.Width, buf.Height)
	for y := 0; y < buf.Height; y++ {
		row := y * buf.Stride
		for x := 0; x < buf.Width; x++ {
			g.ink[y*g.Width+x] = buf.Pix[row+x*buf.Components] < InkThreshold
		}
	}
	return g
}

// Ink reports whether (x, y) is foreground.
func (g *PixelGrid) Ink(x, y int) bool {
	return g.ink[y*g.Width+x]
}

// SetInk marks (x, y) as foreground or background.
func (g *PixelGrid) SetInk(x, y int, ink bool) {
	g.ink[y*g.Width+x] = ink
}

// InkCount returns the number of foreground cells.
func (g *PixelGrid) InkCount() int {
	n := 0
	for _, v := range g.ink {
		if v {
			n++
		}
	}
	return n
}

// LabelGrid holds one label per pixel, Unlabeled for background.
type LabelGrid struct {
	Width  int
	Height int
	cells  []int32
}

func newLabelGrid(width, height int) *LabelGrid {
	cells := make([]int32, width*height)
	for i := range cells {
		cells[i] = Unlabeled
	}
	return &LabelGrid{Width: width, Height: height, cells: cells}
}

// At returns the label at (x, y).
func (l *LabelGrid) At(x, y int) int32 {
	return l.cells[y*l.Width+x]
}

func (l *LabelGrid) set(x, y int, label int32) {
	l.cells[y*l.Width+x] = label
}
