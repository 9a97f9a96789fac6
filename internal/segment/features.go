package segment

import (
	"fmt"
	"image"
	"image/color"

	"github.com/disintegration/imaging"
)

// Classifier input geometry: a FeatureWidth x FeatureHeight bitmap followed
// by the aspect ratio of the blob.
const (
	FeatureWidth  = 16
	FeatureHeight = 20
	FeatureLen    = FeatureWidth*FeatureHeight + 1
)

// Features converts a blob image into the classifier input vector.
//
// The image is resized to 16x20 with nearest-neighbour sampling and each
// sample becomes 0 for ink (first channel below InkThreshold) or 1 for
// background, row-major. The width/height ratio of the image before resizing
// is appended last. An empty image yields an all-background bitmap with a
// ratio of 0.
func Features(img image.Image) []float64 {
	out := make([]float64, FeatureLen)
	b := img.Bounds()
	if b.Empty() {
		for i := 0; i < FeatureLen-1; i++ {
			out[i] = 1
		}
		return out
	}

	small := imaging.Resize(img, FeatureWidth, FeatureHeight, imaging.NearestNeighbor)
	for y := 0; y < FeatureHeight; y++ {
		row := y * small.Stride
		for x := 0; x < FeatureWidth; x++ {
			if small.Pix[row+x*4] >= InkThreshold {
				out[y*FeatureWidth+x] = 1
			}
		}
	}
	out[FeatureLen-1] = float64(b.Dx()) / float64(b.Dy())
	return out
}

// FeatureBitmap renders the bitmap part of a feature vector as a 16x20 gray
// image, black for ink. The trailing aspect ratio is ignored.
func FeatureBitmap(features []float64) (*image.Gray, error) {
	if len(features) < FeatureWidth*FeatureHeight {
		return nil, fmt.Errorf("feature vector has %d values, want at least %d",
			len(features), FeatureWidth*FeatureHeight)
	}
	img := image.NewGray(image.Rect(0, 0, FeatureWidth, FeatureHeight))
	for y := 0; y < FeatureHeight; y++ {
		for x := 0; x < FeatureWidth; x++ {
			v := color.Gray{Y: 255}
			if features[y*FeatureWidth+x] < 0.5 {
				v = color.Gray{Y: 0}
			}
			img.SetGray(x, y, v)
		}
	}
	return img, nil
}
