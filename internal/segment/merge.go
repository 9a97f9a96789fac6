package segment

import "image"

// MergeRects unions overlapping boxes.
//
// In MergeSinglePass mode each box is compared, in order, against the boxes
// accepted so far. Every accepted box it overlaps is replaced by their union;
// if it overlaps none it is appended. Boxes grown late in the pass are not
// compared against each other again, so a chain such as A, C, B (B bridging A
// and C) leaves two overlapping results.
//
// MergeFixedPoint repeats the pass until no two boxes overlap.
func MergeRects(boxes []image.Rectangle, mode MergeMode) []image.Rectangle {
	merged := mergePass(boxes)
	if mode != MergeFixedPoint {
		return merged
	}
	// Every pass over an overlapping set absorbs at least one box, so this terminates.
	for anyOverlap(merged) {
		merged = mergePass(merged)
	}
	return merged
}

func mergePass(boxes []image.Rectangle) []image.Rectangle {
	merged := make([]image.Rectangle, 0, len(boxes))
	for _, b := range boxes {
		absorbed := false
		for i := range merged {
			if b.Overlaps(merged[i]) {
				merged[i] = merged[i].Union(b)
				absorbed = true
			}
		}
		if !absorbed {
			merged = append(merged, b)
		}
	}
	return merged
}

func anyOverlap(boxes []image.Rectangle) bool {
	for i := range boxes {
		for j := i + 1; j < len(boxes); j++ {
			if boxes[i].Overlaps(boxes[j]) {
				return true
			}
		}
	}
	return false
}
