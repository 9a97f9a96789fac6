// Package ocr provides a glyph Classifier backed by the Tesseract OCR engine.
//
// CharClassifier wraps Tesseract (via gosseract/v2) in single character page
// segmentation mode. It receives the same normalized feature vector any
// classifier would, renders it back into an image, and maps Tesseract's symbol
// level confidences onto the recognizer's alphabet.
//
// # Prerequisites
//
// Tesseract and its language data must be installed on the system:
//   - Ubuntu/Debian: apt-get install tesseract-ocr tesseract-ocr-eng
//   - macOS: brew install tesseract
//   - Windows: Download from https://github.com/UB-Mannheim/tesseract/wiki
//
// # Rendering
//
// The 16x20 bitmap is stretched back to the blob's original aspect ratio,
// upscaled with nearest neighbour sampling (Scale, default 4) and surrounded
// by a white margin (Margin, default 10). Tesseract is unreliable on glyphs
// smaller than about 30 pixels or touching the image edge.
//
// # Concurrency
//
// Every Classify call creates and closes its own Tesseract client. This costs
// an engine initialization per glyph but lets RecognizeAll run several images
// in parallel without sharing a client.
//
// # Error Handling
//
// Classify returns errors for:
//   - Feature vectors of the wrong length
//   - Unsupported language codes or Tesseract initialization failures
//   - Glyphs in which Tesseract found no alphabet character (ErrNoSymbol)
//
// The recognizer treats all of these as per-glyph failures.
package ocr
