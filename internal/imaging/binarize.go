package imaging

import (
	"fmt"
	"image"

	"github.com/anthonynsimon/bild/adjust"
	"github.com/anthonynsimon/bild/effect"
	bildseg "github.com/anthonynsimon/bild/segment"
)

// Binarizer turns a photographed or scanned line of text into a black and
// white image the segmenter can label.
//
// The filter chain is: grayscale, median denoise, brightness, contrast, then
// a hard threshold. Ink ends up 0 and paper 255.
type Binarizer struct {
	// MedianRadius removes speckle noise. Zero skips the median pass.
	MedianRadius float64 `json:"median_radius" yaml:"median_radius"`

	// Brightness and Contrast are relative changes in [-1, 1]; zero is a no-op.
	Brightness float64 `json:"brightness" yaml:"brightness"`
	Contrast   float64 `json:"contrast" yaml:"contrast"`

	// Level is the threshold: samples at or above it become paper.
	Level uint8 `json:"level" yaml:"level"`

	// AutoInvert flips light-on-dark results so ink is always black.
	AutoInvert bool `json:"auto_invert" yaml:"auto_invert"`
}

// DefaultBinarizer returns settings suited to dark print on light paper.
func DefaultBinarizer() *Binarizer {
	return &Binarizer{
		MedianRadius: 1,
		Brightness:   0,
		Contrast:     0.3,
		Level:        128,
		AutoInvert:   true,
	}
}

// Validate checks that the adjustments are within bild's accepted range.
func (b *Binarizer) Validate() error {
	if b.MedianRadius < 0 {
		return fmt.Errorf("median radius must be non-negative, got %v", b.MedianRadius)
	}
	if b.Brightness < -1 || b.Brightness > 1 {
		return fmt.Errorf("brightness must be in [-1,1], got %v", b.Brightness)
	}
	if b.Contrast < -1 || b.Contrast > 1 {
		return fmt.Errorf("contrast must be in [-1,1], got %v", b.Contrast)
	}
	return nil
}

// String identifies the settings; equal settings give equal strings.
func (b *Binarizer) String() string {
	return fmt.Sprintf("median=%g brightness=%g contrast=%g level=%d invert=%t",
		b.MedianRadius, b.Brightness, b.Contrast, b.Level, b.AutoInvert)
}

// Binarize runs the filter chain over img and returns a 0/255 gray image of
// the same size.
func (b *Binarizer) Binarize(img image.Image) (image.Image, error) {
	if err := b.Validate(); err != nil {
		return nil, fmt.Errorf("binarize: %w", err)
	}
	if img.Bounds().Empty() {
		return image.NewGray(image.Rect(0, 0, 0, 0)), nil
	}

	var out image.Image = effect.Grayscale(img)
	if b.MedianRadius > 0 {
		out = effect.Median(out, b.MedianRadius)
	}
	if b.Brightness != 0 {
		out = adjust.Brightness(out, b.Brightness)
	}
	if b.Contrast != 0 {
		out = adjust.Contrast(out, b.Contrast)
	}
	bw := bildseg.Threshold(out, b.Level)
	if b.AutoInvert && InkFraction(bw) > 0.5 {
		Invert(bw)
	}
	return bw, nil
}
