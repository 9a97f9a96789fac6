// Package imaging provides the image handling around glyph segmentation:
// loading and caching scans, binarizing them, encoding crops, and drawing
// debug overlays of blob boxes.
//
// All operations work with standard Go image.Image types and use a coordinate
// system where (0,0) is at the top-left corner, X increases rightward, and Y
// increases downward.
//
// # Coordinate System
//
// All pixel coordinates in this package are 0-based:
//   - X: horizontal position (0 = leftmost pixel)
//   - Y: vertical position (0 = topmost pixel)
//   - For regions, (x1,y1) is inclusive (top-left), (x2,y2) is exclusive (bottom-right)
//
// # Binarization
//
// Binarizer is the filter chain that turns a photographed or scanned line of
// print into the black and white input the segmenter expects. It is built on
// github.com/anthonynsimon/bild: grayscale, median denoise, brightness,
// contrast, then a hard threshold. Light text on a dark ground is inverted
// when AutoInvert is set.
//
// # Thread Safety
//
// The ImageCache type is safe for concurrent use. A Binarizer is read-only
// during Binarize and may be shared. Individual operations are stateless and
// can be called concurrently on different images.
//
// # Error Handling
//
// Functions return errors for invalid inputs such as:
//   - Coordinates outside image bounds
//   - Invalid region specifications (x1 >= x2 or y1 >= y2)
//   - Binarizer settings outside bild's accepted ranges
//   - File I/O errors during image loading
//   - Encoding errors during image output
//
// # Performance Considerations
//
// Decoding and binarizing dominate the cost of a segmentation tool call, so
// ImageCache keeps both. Consider using Evict() or Clear() to manage memory for
// long-running processes.
package imaging
