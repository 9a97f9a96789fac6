// Package segment splits a binarized line of printed text into single-glyph blobs.
//
// The pipeline runs entirely in memory on one image per call:
//
//  1. Threshold: the first component of each pixel is compared against
//     InkThreshold. Samples below it are ink.
//  2. Scan: a single raster pass assigns provisional labels using the left and
//     top neighbours (4-connectivity) and records label equivalences in a
//     unionfind.Forest.
//  3. Compact: every provisional label is replaced by a dense index of its
//     set representative, and the bounding Region of each index is measured.
//  4. Classify: each Region is rejected, accepted as one glyph, or accepted as
//     a pair of touching glyphs, using the Predicates and the aspect ratio.
//  5. Split: touching pairs are cut at the inner column with the least ink.
//  6. MergeRects: padded candidate boxes that overlap are unioned.
//  7. Extract: boxes are inset back, filtered by the minimum glyph size,
//     cropped from the source image and sorted left to right.
//
// # Coordinate System
//
// Regions use inclusive Min/Max pixel coordinates. Boxes are image.Rectangle
// values, so Max is exclusive. All coordinates are relative to the pixel
// buffer origin; ExtractImage translates them back into the source image's
// coordinate space.
//
// # Errors
//
// Extraction only ever fails with ErrInvariantViolation or ErrInvalidBuffer.
// Regions that fail the geometric checks, splits that would produce slivers and
// boxes that fall outside the image are silently dropped: a blank or noisy
// image yields zero blobs, not an error.
//
// # Thread Safety
//
// An Extractor holds only read-only options, so one Extractor can serve
// concurrent Extract calls on different buffers.
package segment
