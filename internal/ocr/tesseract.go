package ocr

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"math"
	"strings"
	"unicode"

	"github.com/disintegration/imaging"
	"github.com/otiai10/gosseract/v2"

	"github.com/ironsheep/glyphseg-mcp/internal/segment"
)

// ErrNoSymbol is returned when Tesseract finds nothing in the alphabet in a glyph.
var ErrNoSymbol = errors.New("ocr: no symbol recognized")

const (
	// DefaultScale is the upscale factor applied to the 20-pixel-high glyph
	// bitmap before it is handed to Tesseract.
	DefaultScale = 4

	// DefaultMargin is the white border, in pixels, around the upscaled glyph.
	DefaultMargin = 10
)

// CharClassifier scores glyph feature vectors with Tesseract in single
// character mode.
//
// Each call opens its own Tesseract client, so a CharClassifier can be
// shared between goroutines.
type CharClassifier struct {
	// Alphabet is the score order and the Tesseract whitelist.
	Alphabet string

	// Language is the Tesseract language code, e.g. "eng".
	Language string

	// Scale and Margin control how the glyph bitmap is rendered.
	Scale  int
	Margin int
}

// NewCharClassifier returns a classifier for alphabet using the default
// rendering.
func NewCharClassifier(alphabet, language string) *CharClassifier {
	return &CharClassifier{
		Alphabet: alphabet,
		Language: language,
		Scale:    DefaultScale,
		Margin:   DefaultMargin,
	}
}

// Classify renders the feature vector back into an image and returns one
// score in [0,1] per alphabet character, in alphabet order.
//
// Parameters:
//   - ctx: Checked before Tesseract is started. A running recognition cannot
//     be interrupted.
//   - features: A segment.FeatureLen vector as produced by segment.Features.
//
// Returns:
//   - []float64: Tesseract's symbol confidence for each character it
//     reported, zero for the rest.
//   - error: Non-nil if the vector is malformed, Tesseract fails, or no
//     alphabet character was recognized (ErrNoSymbol).
//
// # Lowercase Results
//
// Tesseract may answer in lower case even with an upper case whitelist. A
// character missing from the alphabet is matched again by its upper and
// lower case forms.
func (c *CharClassifier) Classify(ctx context.Context, features []float64) ([]float64, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	glyph, err := c.GlyphImage(features)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, glyph); err != nil {
		return nil, fmt.Errorf("failed to encode glyph: %w", err)
	}

	client := gosseract.NewClient()
	defer client.Close()

	if err := client.SetLanguage(c.Language); err != nil {
		return nil, fmt.Errorf("failed to set language: %w", err)
	}
	if err := client.SetPageSegMode(gosseract.PSM_SINGLE_CHAR); err != nil {
		return nil, fmt.Errorf("failed to set page segmentation mode: %w", err)
	}
	if err := client.SetWhitelist(c.Alphabet); err != nil {
		return nil, fmt.Errorf("failed to set whitelist: %w", err)
	}
	if err := client.SetImageFromBytes(buf.Bytes()); err != nil {
		return nil, fmt.Errorf("failed to set image: %w", err)
	}

	boxes, err := client.GetBoundingBoxes(gosseract.RIL_SYMBOL)
	if err != nil {
		return nil, fmt.Errorf("OCR failed: %w", err)
	}

	symbols := make([]Symbol, 0, len(boxes))
	for _, box := range boxes {
		symbols = append(symbols, Symbol{
			Text:       box.Word,
			Confidence: float64(box.Confidence) / 100.0,
		})
	}

	scores, found := c.Scores(symbols)
	if !found {
		return nil, ErrNoSymbol
	}
	return scores, nil
}

// Symbol is one character reading reported by the engine.
type Symbol struct {
	Text       string  `json:"text"`
	Confidence float64 `json:"confidence"`
}

// Scores maps engine readings onto the alphabet, keeping the highest
// confidence per character. found is false when no reading matched.
func (c *CharClassifier) Scores(symbols []Symbol) (scores []float64, found bool) {
	alphabet := []rune(c.Alphabet)
	scores = make([]float64, len(alphabet))

	for _, s := range symbols {
		text := strings.TrimSpace(s.Text)
		if text == "" {
			continue
		}
		r := []rune(text)[0]
		idx := indexRune(alphabet, r)
		if idx < 0 {
			idx = indexRune(alphabet, unicode.ToUpper(r))
		}
		if idx < 0 {
			idx = indexRune(alphabet, unicode.ToLower(r))
		}
		if idx < 0 {
			continue
		}
		conf := math.Min(1, math.Max(0, s.Confidence))
		scores[idx] = math.Max(scores[idx], conf)
		found = true
	}
	return scores, found
}

func indexRune(alphabet []rune, r rune) int {
	for i, a := range alphabet {
		if a == r {
			return i
		}
	}
	return -1
}

// GlyphImage turns a feature vector back into an upscaled black on white
// glyph with a white margin. The trailing aspect ratio restores the width the
// blob had before it was normalized to 16x20.
func (c *CharClassifier) GlyphImage(features []float64) (*image.NRGBA, error) {
	if len(features) != segment.FeatureLen {
		return nil, fmt.Errorf("feature vector has %d values, want %d", len(features), segment.FeatureLen)
	}
	bitmap, err := segment.FeatureBitmap(features)
	if err != nil {
		return nil, err
	}

	scale, margin := max(1, c.Scale), max(0, c.Margin)
	h := segment.FeatureHeight * scale
	w := segment.FeatureWidth * scale
	if ratio := features[segment.FeatureLen-1]; ratio > 0 {
		w = max(1, int(math.Round(float64(h)*ratio)))
	}

	glyph := imaging.Resize(bitmap, w, h, imaging.NearestNeighbor)
	canvas := imaging.New(w+2*margin, h+2*margin, color.White)
	return imaging.Paste(canvas, glyph, image.Pt(margin, margin)), nil
}

// Info describes the OCR engine.
type Info struct {
	Available bool   `json:"available"`
	Version   string `json:"version,omitempty"`
	Error     string `json:"error,omitempty"`
	Backend   string `json:"backend"`
}

// EngineInfo reports whether Tesseract can be loaded and its version.
func EngineInfo() (info Info) {
	info.Backend = "gosseract"
	defer func() {
		// gosseract panics when libtesseract cannot initialize.
		if r := recover(); r != nil {
			info.Available = false
			info.Error = fmt.Sprint(r)
		}
	}()

	client := gosseract.NewClient()
	defer client.Close()
	info.Version = client.Version()
	info.Available = info.Version != ""
	return info
}
