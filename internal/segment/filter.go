package segment

import "image"

// Predicate is a pure geometric test of a region against the image size.
type Predicate func(r Region, width, height int) bool

// NonDegenerate rejects regions that are a single row or column.
func NonDegenerate(r Region, _, _ int) bool {
	return r.MinX < r.MaxX && r.MinY < r.MaxY
}

// NotTooTall rejects regions taller than three quarters of the image.
func NotTooTall(r Region, _, height int) bool {
	return float64(r.Height()) < 0.75*float64(height)
}

// NotTooWide rejects regions wider than a quarter of the image.
func NotTooWide(r Region, width, _ int) bool {
	return float64(r.Width()) < 0.25*float64(width)
}

// NotTooShort rejects regions shorter than 8% of the image height.
func NotTooShort(r Region, _, height int) bool {
	return float64(r.Height()) > 0.08*float64(height)
}

// NotTooThin rejects regions narrower than 1% of the image width.
func NotTooThin(r Region, width, _ int) bool {
	return float64(r.Width()) > 0.01*float64(width)
}

// NotTooSmall rejects regions whose box area is 100 pixels or less.
func NotTooSmall(r Region, _, _ int) bool {
	return r.Area() > 100
}

// AwayFromBorder rejects regions touching any image edge; they are usually
// cut-off glyphs or frame noise.
func AwayFromBorder(r Region, width, height int) bool {
	return r.MinX != 0 && r.MinY != 0 && r.MaxX != width-1 && r.MaxY != height-1
}

// Predicates must all hold for a region to be accepted. NonDegenerate comes
// first so the others may assume a non-zero height.
var Predicates = []Predicate{
	NonDegenerate,
	NotTooTall,
	NotTooWide,
	NotTooShort,
	NotTooThin,
	NotTooSmall,
	AwayFromBorder,
}

// Aspect ratio bounds for a region that holds two touching glyphs.
const (
	SplittableMinRatio = 1.0
	SplittableMaxRatio = 2.5
)

// Kind is the outcome of classifying a region.
type Kind int

const (
	// Reject drops the region.
	Reject Kind = iota
	// Single accepts the region as one glyph.
	Single
	// Splittable accepts the region as two touching glyphs.
	Splittable
)

func (k Kind) String() string {
	switch k {
	case Single:
		return "single"
	case Splittable:
		return "splittable"
	default:
		return "reject"
	}
}

// Decision is the classification of one region. Box is the padded box of the
// whole region for Single and Splittable decisions.
type Decision struct {
	Kind Kind
	Box  image.Rectangle
}

// Classify decides what to do with a region of an image of the given size.
func Classify(r Region, width, height int, opts Options) Decision {
	for _, p := range Predicates {
		if !p(r, width, height) {
			return Decision{Kind: Reject}
		}
	}

	ratio := r.AspectRatio()
	switch {
	case ratio < SplittableMinRatio:
		return Decision{Kind: Single, Box: PaddedBox(r, opts)}
	case ratio <= SplittableMaxRatio:
		return Decision{Kind: Splittable, Box: PaddedBox(r, opts)}
	default:
		return Decision{Kind: Reject}
	}
}

// PaddedBox returns the region's pixel rectangle grown by the merge radii.
func PaddedBox(r Region, opts Options) image.Rectangle {
	return image.Rectangle{
		Min: image.Pt(r.MinX-opts.XMergeRadius, r.MinY-opts.YMergeRadius),
		Max: image.Pt(r.MaxX+opts.XMergeRadius+1, r.MaxY+opts.YMergeRadius+1),
	}
}
