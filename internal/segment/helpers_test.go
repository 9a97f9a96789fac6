package segment

import (
	"image"
	"image/color"
	"testing"
)

// createTestImage returns an all-white gray image.
func createTestImage(width, height int) *image.Gray {
	img := image.NewGray(image.Rect(0, 0, width, height))
	for i := range img.Pix {
		img.Pix[i] = 255
	}
	return img
}

// fillRect paints r black.
func fillRect(img *image.Gray, r image.Rectangle) {
	r = r.Intersect(img.Bounds())
	for y := r.Min.Y; y < r.Max.Y; y++ {
		for x := r.Min.X; x < r.Max.X; x++ {
			img.SetGray(x, y, color.Gray{Y: 0})
		}
	}
}

// gridFromRows builds an ink grid from rows of '#' (ink) and '.' (background).
func gridFromRows(t *testing.T, rows ...string) *PixelGrid {
	t.Helper()
	if len(rows) == 0 {
		return NewPixelGrid(0, 0)
	}
	g := NewPixelGrid(len(rows[0]), len(rows))
	for y, row := range rows {
		if len(row) != g.Width {
			t.Fatalf("row %d has width %d, want %d", y, len(row), g.Width)
		}
		for x, c := range row {
			g.SetInk(x, y, c == '#')
		}
	}
	return g
}

// compacted labels grid and returns the compacted labels and component count.
func compacted(t *testing.T, grid *PixelGrid) (*LabelGrid, int) {
	t.Helper()
	labels, forest, err := Scan(grid, 0)
	if err != nil {
		t.Fatalf("Scan failed: %v", err)
	}
	count, err := Compact(labels, forest)
	if err != nil {
		t.Fatalf("Compact failed: %v", err)
	}
	return labels, count
}

func newTestExtractor(t *testing.T, opts Options) *Extractor {
	t.Helper()
	e, err := NewExtractor(opts)
	if err != nil {
		t.Fatalf("NewExtractor failed: %v", err)
	}
	return e
}

func blobBounds(blobs []Blob) []image.Rectangle {
	out := make([]image.Rectangle, len(blobs))
	for i, b := range blobs {
		out[i] = b.Bounds
	}
	return out
}
