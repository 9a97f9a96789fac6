package segment

import (
	"fmt"
	"math"
	"strings"
)

const (
	// InkThreshold is the sample value below which a pixel counts as ink.
	InkThreshold = 127

	// MinBlobWidth and MinBlobHeight are the smallest plausible glyph
	// dimensions after the merge padding has been removed.
	MinBlobWidth  = 7
	MinBlobHeight = 14

	// DefaultXMergeRadius and DefaultYMergeRadius pad accepted boxes so that
	// fragments of one glyph (the dot of an i, a broken stroke) overlap and merge.
	DefaultXMergeRadius = 1
	DefaultYMergeRadius = 3
)

// MergeMode selects how overlapping candidate boxes are combined.
type MergeMode int

const (
	// MergeSinglePass unions each candidate into every previously accepted box
	// it overlaps, in one forward pass. Chains of three or more boxes can
	// leave overlapping results.
	MergeSinglePass MergeMode = iota

	// MergeFixedPoint repeats the single pass until no two boxes overlap.
	MergeFixedPoint
)

// String returns the config spelling of the mode.
func (m MergeMode) String() string {
	switch m {
	case MergeSinglePass:
		return "single"
	case MergeFixedPoint:
		return "fixed"
	default:
		return fmt.Sprintf("MergeMode(%d)", int(m))
	}
}

// ParseMergeMode parses "single" or "fixed". The empty string selects
// MergeSinglePass.
func ParseMergeMode(s string) (MergeMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "single", "single-pass":
		return MergeSinglePass, nil
	case "fixed", "fixed-point":
		return MergeFixedPoint, nil
	default:
		return 0, fmt.Errorf("%w: unknown merge mode %q", ErrInvalidOptions, s)
	}
}

// Options tunes an extraction. The zero value is not useful; start from
// DefaultOptions.
type Options struct {
	// XMergeRadius and YMergeRadius pad accepted boxes outward before merging
	// and are removed again afterwards.
	XMergeRadius int
	YMergeRadius int

	// MergeMode selects the merge strategy.
	MergeMode MergeMode

	// MaxLabels bounds the number of provisional labels the scanner may
	// create. Zero or negative means math.MaxInt32.
	MaxLabels int
}

// DefaultOptions returns the standard tuning for printed text.
func DefaultOptions() Options {
	return Options{
		XMergeRadius: DefaultXMergeRadius,
		YMergeRadius: DefaultYMergeRadius,
		MergeMode:    MergeSinglePass,
		MaxLabels:    math.MaxInt32,
	}
}

// Validate checks that the options can drive an extraction.
func (o Options) Validate() error {
	if o.XMergeRadius < 0 || o.YMergeRadius < 0 {
		return fmt.Errorf("%w: merge radii must be non-negative, got (%d,%d)",
			ErrInvalidOptions, o.XMergeRadius, o.YMergeRadius)
	}
	if o.MergeMode != MergeSinglePass && o.MergeMode != MergeFixedPoint {
		return fmt.Errorf("%w: unknown merge mode %d", ErrInvalidOptions, int(o.MergeMode))
	}
	return nil
}

func (o Options) labelLimit() int {
	if o.MaxLabels <= 0 || o.MaxLabels > math.MaxInt32 {
		return math.MaxInt32
	}
	return o.MaxLabels
}
