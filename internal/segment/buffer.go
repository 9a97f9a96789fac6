package segment

import (
	"fmt"
	"image"

	"github.com/disintegration/imaging"
)

// PixelBuffer is a platform-neutral raster: Height rows of Stride bytes, each
// pixel made of Components consecutive 8-bit samples. Only the first sample of
// each pixel is read for ink detection.
type PixelBuffer struct {
	Width      int
	Height     int
	Stride     int
	Components int
	Pix        []byte
}

// NewPixelBuffer wraps raw pixel data after checking that it is large enough
// for the given geometry. The slice is not copied.
func NewPixelBuffer(width, height, stride, components int, pix []byte) (*PixelBuffer, error) {
	b := &PixelBuffer{
		Width:      width,
		Height:     height,
		Stride:     stride,
		Components: components,
		Pix:        pix,
	}
	if err := b.validate(); err != nil {
		return nil, err
	}
	return b, nil
}

func (b *PixelBuffer) validate() error {
	if b == nil {
		return fmt.Errorf("%w: nil buffer", ErrInvalidBuffer)
	}
	if b.Width < 0 || b.Height < 0 {
		return fmt.Errorf("%w: negative dimensions %dx%d", ErrInvalidBuffer, b.Width, b.Height)
	}
	if b.Components < 1 {
		return fmt.Errorf("%w: component count %d", ErrInvalidBuffer, b.Components)
	}
	if b.Width == 0 || b.Height == 0 {
		return nil
	}
	rowBytes := b.Width * b.Components
	if b.Stride < rowBytes {
		return fmt.Errorf("%w: stride %d shorter than row of %d bytes", ErrInvalidBuffer, b.Stride, rowBytes)
	}
	need := (b.Height-1)*b.Stride + rowBytes
	if len(b.Pix) < need {
		return fmt.Errorf("%w: have %d bytes, need %d", ErrInvalidBuffer, len(b.Pix), need)
	}
	return nil
}

// Bounds returns the buffer rectangle, anchored at the origin.
func (b *PixelBuffer) Bounds() image.Rectangle {
	return image.Rect(0, 0, b.Width, b.Height)
}

// Sample returns the first component of the pixel at (x, y).
func (b *PixelBuffer) Sample(x, y int) byte {
	return b.Pix[y*b.Stride+x*b.Components]
}

// FromImage adapts a Go image. Gray images are shared without copying; any
// other image is converted to NRGBA, so its first component is red.
func FromImage(img image.Image) *PixelBuffer {
	r := img.Bounds()
	if g, ok := img.(*image.Gray); ok {
		pix := g.Pix
		if !r.Empty() {
			pix = g.Pix[g.PixOffset(r.Min.X, r.Min.Y):]
		}
		return &PixelBuffer{
			Width:      r.Dx(),
			Height:     r.Dy(),
			Stride:     g.Stride,
			Components: 1,
			Pix:        pix,
		}
	}

	n := imaging.Clone(img)
	return &PixelBuffer{
		Width:      n.Rect.Dx(),
		Height:     n.Rect.Dy(),
		Stride:     n.Stride,
		Components: 4,
		Pix:        n.Pix,
	}
}

// Image returns a Go image view of the buffer, used for cropping blobs.
// One- and four-component buffers are shared; other layouts are copied into
// a gray image built from the first component.
func (b *PixelBuffer) Image() image.Image {
	rect := b.Bounds()
	switch b.Components {
	case 1:
		return &image.Gray{Pix: b.Pix, Stride: b.Stride, Rect: rect}
	case 4:
		return &image.NRGBA{Pix: b.Pix, Stride: b.Stride, Rect: rect}
	}

	gray := image.NewGray(rect)
	for y := 0; y < b.Height; y++ {
		for x := 0; x < b.Width; x++ {
			gray.Pix[y*gray.Stride+x] = b.Sample(x, y)
		}
	}
	return gray
}
