package segment

import "image"

// splitMargin keeps the cut away from the outermost columns of a region,
// where serifs and stroke ends thin out.
const splitMargin = 2

// minSplitWidth is the narrowest half, before padding, that still counts as a glyph.
const minSplitWidth = 5

// Split cuts a splittable region into two padded boxes at the inner column
// holding the least ink. Labels must already be compacted.
//
// It returns no boxes when the region is too narrow to have an inner column
// range, and the single padded box of the whole region when either half
// would be narrower than a glyph.
func Split(r Region, labels *LabelGrid, opts Options) []image.Rectangle {
	lo, hi := r.MinX+splitMargin, r.MaxX-splitMargin
	if lo >= hi {
		return nil
	}

	cut, least := 0, -1
	for x := lo; x <= hi; x++ {
		ink := 0
		for y := r.MinY; y <= r.MaxY; y++ {
			if labels.At(x, y) != Unlabeled {
				ink++
			}
		}
		if least < 0 || ink < least {
			cut, least = x-lo, ink
		}
	}

	rx, ry := opts.XMergeRadius, opts.YMergeRadius
	w, h := r.Width(), r.Height()
	top := r.MinY - ry
	bottom := top + h + 2*ry

	first := image.Rectangle{
		Min: image.Pt(r.MinX-rx, top),
		Max: image.Pt(r.MinX-rx+cut+2*rx, bottom),
	}
	cutX := lo + cut
	second := image.Rectangle{
		Min: image.Pt(cutX-rx, top),
		Max: image.Pt(cutX-rx+(w-cut)+2*rx, bottom),
	}

	minWidth := minSplitWidth + 2*rx
	if first.Dx() < minWidth || second.Dx() < minWidth {
		return []image.Rectangle{PaddedBox(r, opts)}
	}
	return []image.Rectangle{first, second}
}
