package segment

import (
	"fmt"

	"github.com/ironsheep/glyphseg-mcp/internal/unionfind"
)

// Scan labels the ink of grid in one top-to-bottom, left-to-right pass.
//
// Each ink pixel looks at its left and top neighbours:
//   - neither labelled: a fresh label is allocated and added to the forest
//   - one labelled: its label is copied
//   - both labelled: the top label is copied and, if the two differ, their
//     sets are unioned
//
// The returned labels are provisional; Compact resolves them to components.
// Allocating more than maxLabels labels fails with ErrInvariantViolation.
// A maxLabels of zero or less means math.MaxInt32.
func Scan(grid *PixelGrid, maxLabels int) (*LabelGrid, *unionfind.Forest, error) {
	limit := Options{MaxLabels: maxLabels}.labelLimit()

	labels := newLabelGrid(grid.Width, grid.Height)
	forest := unionfind.New()
	next := 0

	for y := 0; y < grid.Height; y++ {
		for x := 0; x < grid.Width; x++ {
			if !grid.Ink(x, y) {
				continue
			}

			left, top := Unlabeled, Unlabeled
			if x > 0 {
				left = labels.At(x-1, y)
			}
			if y > 0 {
				top = labels.At(x, y-1)
			}

			switch {
			case left == Unlabeled && top == Unlabeled:
				if next >= limit {
					return nil, nil, fmt.Errorf("%w: more than %d provisional labels needed at (%d,%d)",
						ErrInvariantViolation, limit, x, y)
				}
				labels.set(x, y, int32(next))
				forest.Add(next)
				next++
			case top == Unlabeled:
				labels.set(x, y, left)
			case left == Unlabeled:
				labels.set(x, y, top)
			default:
				labels.set(x, y, top)
				if left != top {
					if err := forest.Union(int(top), int(left)); err != nil {
						return nil, nil, fmt.Errorf("%w: %w", ErrInvariantViolation, err)
					}
				}
			}
		}
	}

	return labels, forest, nil
}
