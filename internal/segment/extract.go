package segment

import (
	"fmt"
	"image"
	"sort"

	"github.com/disintegration/imaging"
)

// Blob is one candidate glyph: its pixels and where they came from.
type Blob struct {
	// Image is the cropped sub-image, anchored at the origin.
	Image *image.NRGBA
	// Bounds is the crop rectangle in the coordinates of the input image.
	Bounds image.Rectangle
}

// AspectRatio is the width over height of the blob before any resizing.
func (b Blob) AspectRatio() float64 {
	if b.Bounds.Dy() == 0 {
		return 0
	}
	return float64(b.Bounds.Dx()) / float64(b.Bounds.Dy())
}

// Features returns the classifier input vector of the blob.
func (b Blob) Features() []float64 {
	return Features(b.Image)
}

// Extractor runs the full segmentation pipeline with a fixed set of options.
// It holds no per-call state and is safe for concurrent use.
type Extractor struct {
	opts Options
}

// NewExtractor validates opts and returns an extractor bound to them.
func NewExtractor(opts Options) (*Extractor, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	return &Extractor{opts: opts}, nil
}

// Options returns the options the extractor was built with.
func (e *Extractor) Options() Options {
	return e.opts
}

// Boxes runs labelling, filtering, splitting and merging over buf and returns
// the surviving glyph boxes with the merge padding removed. Boxes are in
// discovery order and have not been clipped to the buffer.
//
// The only errors are an invalid buffer and ErrInvariantViolation.
func (e *Extractor) Boxes(buf *PixelBuffer) ([]image.Rectangle, error) {
	if err := buf.validate(); err != nil {
		return nil, err
	}
	if buf.Width == 0 || buf.Height == 0 {
		return nil, nil
	}

	labels, forest, err := Scan(Threshold(buf), e.opts.MaxLabels)
	if err != nil {
		return nil, err
	}
	count, err := Compact(labels, forest)
	if err != nil {
		return nil, err
	}

	var candidates []image.Rectangle
	for _, r := range Regions(labels, count) {
		d := Classify(r, buf.Width, buf.Height, e.opts)
		switch d.Kind {
		case Single:
			candidates = append(candidates, d.Box)
		case Splittable:
			candidates = append(candidates, Split(r, labels, e.opts)...)
		}
	}

	merged := MergeRects(candidates, e.opts.MergeMode)
	pad := image.Pt(e.opts.XMergeRadius, e.opts.YMergeRadius)
	boxes := merged[:0]
	for _, m := range merged {
		// Built directly: image.Rect would swap inverted corners.
		b := image.Rectangle{Min: m.Min.Add(pad), Max: m.Max.Sub(pad)}
		if b.Dx() < MinBlobWidth || b.Dy() < MinBlobHeight {
			continue
		}
		boxes = append(boxes, b)
	}
	return boxes, nil
}

// Extract segments buf into glyph blobs ordered left to right.
//
// A blank or noisy buffer yields an empty result, not an error. Boxes that
// fall outside the buffer are clipped; boxes left empty by clipping are
// dropped.
func (e *Extractor) Extract(buf *PixelBuffer) ([]Blob, error) {
	boxes, err := e.Boxes(buf)
	if err != nil {
		return nil, fmt.Errorf("extract blobs: %w", err)
	}
	return cropBlobs(buf.Image(), boxes), nil
}

// ExtractImage segments a Go image. Blob bounds are reported in the image's
// own coordinate space, so images with a non-zero origin are handled.
func (e *Extractor) ExtractImage(img image.Image) ([]Blob, error) {
	boxes, err := e.Boxes(FromImage(img))
	if err != nil {
		return nil, fmt.Errorf("extract blobs: %w", err)
	}
	origin := img.Bounds().Min
	for i := range boxes {
		boxes[i] = boxes[i].Add(origin)
	}
	return cropBlobs(img, boxes), nil
}

func cropBlobs(src image.Image, boxes []image.Rectangle) []Blob {
	bounds := src.Bounds()
	blobs := make([]Blob, 0, len(boxes))
	for _, b := range boxes {
		r := b.Intersect(bounds)
		if r.Empty() {
			continue
		}
		blobs = append(blobs, Blob{
			Image:  imaging.Crop(src, r),
			Bounds: r,
		})
	}
	sort.SliceStable(blobs, func(i, j int) bool {
		return blobs[i].Bounds.Min.X < blobs[j].Bounds.Min.X
	})
	return blobs
}
