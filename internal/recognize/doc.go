// Package recognize turns segmented glyph blobs into text.
//
// A Recognizer runs an optional Binarizer, extracts blobs with a
// segment.Extractor and passes each blob's feature vector to a Classifier.
// For every blob whose best score reaches the confidence threshold, the best
// scoring character allowed by the white and black lists is appended to the
// text. Every scored blob also reports its candidates: the allowed characters
// scoring at least the blob's mean score, best first.
//
// Classification failures are per blob: they are logged and the blob is
// skipped, so one unreadable glyph does not lose the rest of the line.
package recognize
