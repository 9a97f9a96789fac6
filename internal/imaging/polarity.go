package imaging

import "image"

// InkFraction returns the share of pixels in g that are darker than mid-gray.
// Printed text rarely covers more than a third of its line, so a value above
// one half means the image is light text on a dark ground.
func InkFraction(g *image.Gray) float64 {
	b := g.Bounds()
	total := b.Dx() * b.Dy()
	if total == 0 {
		return 0
	}

	dark := 0
	for y := b.Min.Y; y < b.Max.Y; y++ {
		row := g.Pix[g.PixOffset(b.Min.X, y):g.PixOffset(b.Max.X-1, y)+1]
		for _, v := range row {
			if v < 128 {
				dark++
			}
		}
	}
	return float64(dark) / float64(total)
}

// Invert flips every sample of g in place.
func Invert(g *image.Gray) {
	b := g.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		row := g.Pix[g.PixOffset(b.Min.X, y):g.PixOffset(b.Max.X-1, y)+1]
		for i, v := range row {
			row[i] = 255 - v
		}
	}
}
