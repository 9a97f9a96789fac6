package segment

import (
	"fmt"
	"image"

	"github.com/ironsheep/glyphseg-mcp/internal/unionfind"
)

// Region is the inclusive bounding box of every pixel sharing one compacted label.
type Region struct {
	Label int `json:"label"`
	MinX  int `json:"min_x"`
	MaxX  int `json:"max_x"`
	MinY  int `json:"min_y"`
	MaxY  int `json:"max_y"`
}

// Width is MaxX-MinX, so a one-pixel-wide region has width zero.
func (r Region) Width() int { return r.MaxX - r.MinX }

// Height is MaxY-MinY.
func (r Region) Height() int { return r.MaxY - r.MinY }

// Area is Width*Height.
func (r Region) Area() int { return r.Width() * r.Height() }

// AspectRatio is Width/Height. It is only meaningful for non-degenerate regions.
func (r Region) AspectRatio() float64 {
	return float64(r.Width()) / float64(r.Height())
}

// Rect returns the pixel rectangle the region covers.
func (r Region) Rect() image.Rectangle {
	return image.Rect(r.MinX, r.MinY, r.MaxX+1, r.MaxY+1)
}

// Compact rewrites every provisional label in labels to a dense index of its
// set representative and returns the number of components.
//
// Indices are handed out in ascending provisional-label order, so the result
// is deterministic for a given image.
func Compact(labels *LabelGrid, forest *unionfind.Forest) (int, error) {
	provisional := forest.Labels()
	if len(provisional) == 0 {
		for _, c := range labels.cells {
			if c != Unlabeled {
				return 0, fmt.Errorf("%w: label %d not in forest", ErrInvariantViolation, c)
			}
		}
		return 0, nil
	}

	remap := make([]int32, provisional[len(provisional)-1]+1)
	for i := range remap {
		remap[i] = Unlabeled
	}

	index := make(map[int]int32, len(provisional))
	for _, l := range provisional {
		root, err := forest.Find(l)
		if err != nil {
			return 0, fmt.Errorf("%w: %w", ErrInvariantViolation, err)
		}
		idx, ok := index[root]
		if !ok {
			idx = int32(len(index))
			index[root] = idx
		}
		remap[l] = idx
	}

	for i, c := range labels.cells {
		if c == Unlabeled {
			continue
		}
		if int(c) >= len(remap) || remap[c] == Unlabeled {
			return 0, fmt.Errorf("%w: label %d not in forest", ErrInvariantViolation, c)
		}
		labels.cells[i] = remap[c]
	}

	return len(index), nil
}

// Regions measures the bounding box of each compacted label in one pass.
// count must be the value returned by Compact.
func Regions(labels *LabelGrid, count int) []Region {
	regions := make([]Region, count)
	for i := range regions {
		regions[i] = Region{
			Label: i,
			MinX:  labels.Width,
			MaxX:  -1,
			MinY:  labels.Height,
			MaxY:  -1,
		}
	}

	for y := 0; y < labels.Height; y++ {
		for x := 0; x < labels.Width; x++ {
			l := labels.At(x, y)
			if l == Unlabeled {
				continue
			}
			r := &regions[l]
			r.MinX = min(r.MinX, x)
			r.MaxX = max(r.MaxX, x)
			r.MinY = min(r.MinY, y)
			r.MaxY = max(r.MaxY, y)
		}
	}

	return regions
}
