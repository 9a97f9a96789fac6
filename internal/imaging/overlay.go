package imaging

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"strconv"

	"github.com/lucasb-eyer/go-colorful"
)

// OverlayResult contains the image with blob boxes drawn on it
type OverlayResult struct {
	Width       int    `json:"width"`
	Height      int    `json:"height"`
	ImageBase64 string `json:"image_base64"`
	MimeType    string `json:"mime_type"`
	BoxCount    int    `json:"box_count"`
}

// BoxOverlay outlines each box on a copy of img and, if showIndices is set,
// writes the box's position in the slice above its top-left corner.
//
// Boxes are in img's coordinate space; parts outside the image are clipped.
// With an empty or invalid boxColorHex every box gets its own hue so that
// neighbouring glyphs are easy to tell apart.
func BoxOverlay(img image.Image, boxes []image.Rectangle, showIndices bool, boxColorHex string) (*OverlayResult, error) {
	bounds := img.Bounds()

	result := image.NewRGBA(bounds)
	draw.Draw(result, bounds, img, bounds.Min, draw.Src)

	colors := boxColors(len(boxes))
	if fixed, err := parseHexColor(boxColorHex); err == nil {
		for i := range colors {
			colors[i] = fixed
		}
	}

	for i, b := range boxes {
		outlineRect(result, b, colors[i])
	}

	if showIndices {
		labelColor := color.RGBA{255, 255, 255, 255}
		for i, b := range boxes {
			drawLabel(result, b.Min.X, b.Min.Y-8, strconv.Itoa(i), labelColor, colors[i])
		}
	}

	encoded, err := Encode(result, 1)
	if err != nil {
		return nil, err
	}

	return &OverlayResult{
		Width:       encoded.Width,
		Height:      encoded.Height,
		ImageBase64: encoded.ImageBase64,
		MimeType:    encoded.MimeType,
		BoxCount:    len(boxes),
	}, nil
}

// boxColors spreads n hues evenly around the colour wheel.
func boxColors(n int) []color.RGBA {
	colors := make([]color.RGBA, n)
	for i := range colors {
		r, g, b := colorful.Hsv(float64(i)*360/float64(n), 0.85, 0.9).RGB255()
		colors[i] = color.RGBA{R: r, G: g, B: b, A: 255}
	}
	return colors
}

// outlineRect draws the one-pixel border just inside r.
func outlineRect(img *image.RGBA, r image.Rectangle, c color.RGBA) {
	if r.Empty() {
		return
	}
	for x := r.Min.X; x < r.Max.X; x++ {
		img.SetRGBA(x, r.Min.Y, c)
		img.SetRGBA(x, r.Max.Y-1, c)
	}
	for y := r.Min.Y; y < r.Max.Y; y++ {
		img.SetRGBA(r.Min.X, y, c)
		img.SetRGBA(r.Max.X-1, y, c)
	}
}

// parseHexColor parses a hex color string like "#FF0000" or "#FF000080"
func parseHexColor(hex string) (color.RGBA, error) {
	if len(hex) == 0 {
		return color.RGBA{}, fmt.Errorf("empty color string")
	}
	if hex[0] == '#' {
		hex = hex[1:]
	}

	var r, g, b, a uint8 = 0, 0, 0, 255

	switch len(hex) {
	case 6:
		val, err := strconv.ParseUint(hex, 16, 32)
		if err != nil {
			return color.RGBA{}, err
		}
		r = uint8(val >> 16)
		g = uint8(val >> 8)
		b = uint8(val)
	case 8:
		val, err := strconv.ParseUint(hex, 16, 32)
		if err != nil {
			return color.RGBA{}, err
		}
		r = uint8(val >> 24)
		g = uint8(val >> 16)
		b = uint8(val >> 8)
		a = uint8(val)
	default:
		return color.RGBA{}, fmt.Errorf("invalid hex color length")
	}

	return color.RGBA{R: r, G: g, B: b, A: a}, nil
}

// drawLabel draws digits in a 3x5 pixel font on a filled background
func drawLabel(img *image.RGBA, x, y int, text string, fg, bg color.RGBA) {
	glyphs := map[rune][]string{
		'0': {"111", "101", "101", "101", "111"},
		'1': {"010", "110", "010", "010", "111"},
		'2': {"111", "001", "111", "100", "111"},
		'3': {"111", "001", "111", "001", "111"},
		'4': {"101", "101", "111", "001", "001"},
		'5': {"111", "100", "111", "001", "111"},
		'6': {"111", "100", "111", "101", "111"},
		'7': {"111", "001", "001", "001", "001"},
		'8': {"111", "101", "111", "101", "111"},
		'9': {"111", "101", "111", "001", "111"},
		',': {"000", "000", "000", "010", "010"},
	}

	bounds := img.Bounds()
	charWidth := 4
	labelWidth := len(text) * charWidth
	labelHeight := 7

	// Draw background
	for dy := -1; dy < labelHeight; dy++ {
		for dx := -1; dx < labelWidth; dx++ {
			px, py := x+dx, y+dy
			if px >= bounds.Min.X && px < bounds.Max.X && py >= bounds.Min.Y && py < bounds.Max.Y {
				img.Set(px, py, bg)
			}
		}
	}

	// Draw text
	cx := x
	for _, ch := range text {
		glyph, ok := glyphs[ch]
		if !ok {
			cx += charWidth
			continue
		}
		for row, line := range glyph {
			for col, pixel := range line {
				if pixel == '1' {
					px, py := cx+col, y+row
					if px >= bounds.Min.X && px < bounds.Max.X && py >= bounds.Min.Y && py < bounds.Max.Y {
						img.Set(px, py, fg)
					}
				}
			}
		}
		cx += charWidth
	}
}
