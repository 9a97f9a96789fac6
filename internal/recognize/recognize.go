package recognize

import (
	"context"
	"errors"
	"fmt"
	"image"
	"log"
	"sort"
	"strings"

	"github.com/disintegration/imaging"
	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/floats"

	"github.com/ironsheep/glyphseg-mcp/internal/segment"
)

const (
	// DefaultAlphabet is the character set a classifier scores, in score order.
	DefaultAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

	// DefaultConfidenceThreshold is the best score a blob needs to contribute
	// a character to the recognized text.
	DefaultConfidenceThreshold = 0.1
)

var (
	// ErrEmptyRect is returned by RecognizeRect when the rectangle does not
	// intersect the image.
	ErrEmptyRect = errors.New("recognize: rectangle outside image")

	// ErrInvalidOptions reports options that cannot drive a Recognizer.
	ErrInvalidOptions = errors.New("recognize: invalid options")
)

// Classifier scores one glyph. features is a segment.FeatureLen vector and the
// result holds one confidence per alphabet character, in alphabet order.
// Implementations must be safe for concurrent use when RecognizeAll runs with
// more than one worker.
type Classifier interface {
	Classify(ctx context.Context, features []float64) ([]float64, error)
}

// ClassifierFunc adapts a function to the Classifier interface.
type ClassifierFunc func(ctx context.Context, features []float64) ([]float64, error)

// Classify calls f.
func (f ClassifierFunc) Classify(ctx context.Context, features []float64) ([]float64, error) {
	return f(ctx, features)
}

// Binarizer prepares a raw image for segmentation.
type Binarizer interface {
	Binarize(img image.Image) (image.Image, error)
}

// Options configures a Recognizer. Start from DefaultOptions.
type Options struct {
	// Alphabet lists the characters the classifier scores, in order.
	Alphabet string

	// Whitelist restricts output to these characters. Empty allows all.
	Whitelist string

	// Blacklist removes these characters from the output.
	Blacklist string

	// ConfidenceThreshold is the minimum best score for a blob to add a
	// character to the text. Blobs below it still report candidates.
	ConfidenceThreshold float64

	// Workers bounds RecognizeAll concurrency. Zero or less means one.
	Workers int

	// Binarizer runs before segmentation. Nil means the input is already
	// black and white.
	Binarizer Binarizer
}

// DefaultOptions returns the standard alphabet and threshold with no
// character restrictions and no binarizer.
func DefaultOptions() Options {
	return Options{
		Alphabet:            DefaultAlphabet,
		ConfidenceThreshold: DefaultConfidenceThreshold,
		Workers:             1,
	}
}

// Validate checks the options.
func (o Options) Validate() error {
	if o.Alphabet == "" {
		return fmt.Errorf("%w: empty alphabet", ErrInvalidOptions)
	}
	if o.ConfidenceThreshold < 0 || o.ConfidenceThreshold > 1 {
		return fmt.Errorf("%w: confidence threshold %v outside [0,1]", ErrInvalidOptions, o.ConfidenceThreshold)
	}
	return nil
}

// Candidate is one possible reading of a glyph.
type Candidate struct {
	Char       string  `json:"char"`
	Confidence float64 `json:"confidence"`
}

// Glyph is a recognized blob: where it is and what it might be.
type Glyph struct {
	// Bounds is the blob rectangle in the coordinates of the segmented image.
	Bounds image.Rectangle

	// Candidates are the allowed characters scoring at least the mean
	// confidence of the blob, best first.
	Candidates []Candidate
}

// Result is the outcome of recognizing one image.
type Result struct {
	// Text holds one character per confident blob, left to right.
	Text string

	// Glyphs holds every blob the classifier scored, including those not
	// confident enough to appear in Text.
	Glyphs []Glyph
}

// Recognizer segments images and classifies their glyphs. It holds no mutable
// state and is safe for concurrent use if its Classifier and Binarizer are.
type Recognizer struct {
	extractor  *segment.Extractor
	classifier Classifier
	opts       Options
	alphabet   []rune
}

// New builds a Recognizer from a segmentation extractor and a classifier.
func New(extractor *segment.Extractor, classifier Classifier, opts Options) (*Recognizer, error) {
	if extractor == nil || classifier == nil {
		return nil, fmt.Errorf("%w: extractor and classifier are required", ErrInvalidOptions)
	}
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	return &Recognizer{
		extractor:  extractor,
		classifier: classifier,
		opts:       opts,
		alphabet:   []rune(opts.Alphabet),
	}, nil
}

// Options returns the options the recognizer was built with.
func (r *Recognizer) Options() Options {
	return r.opts
}

// Recognize binarizes img if a Binarizer is set, extracts its glyph blobs and
// classifies each one.
//
// A blob whose classification fails, or returns the wrong number of scores,
// is logged and skipped. Only segmentation errors, binarizer errors and
// context cancellation fail the call.
func (r *Recognizer) Recognize(ctx context.Context, img image.Image) (*Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if r.opts.Binarizer != nil {
		bw, err := r.opts.Binarizer.Binarize(img)
		if err != nil {
			return nil, fmt.Errorf("recognize: %w", err)
		}
		img = bw
	}

	blobs, err := r.extractor.ExtractImage(img)
	if err != nil {
		return nil, fmt.Errorf("recognize: %w", err)
	}

	var text strings.Builder
	result := &Result{Glyphs: make([]Glyph, 0, len(blobs))}
	for i, blob := range blobs {
		scores, err := r.classifier.Classify(ctx, blob.Features())
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return nil, ctxErr
			}
			log.Printf("Classifier failed on blob %d at %v: %v", i, blob.Bounds, err)
			continue
		}
		if len(scores) != len(r.alphabet) {
			log.Printf("Classifier returned %d scores for blob %d, want %d", len(scores), i, len(r.alphabet))
			continue
		}

		if floats.Max(scores) >= r.opts.ConfidenceThreshold {
			if c, ok := r.best(scores); ok {
				text.WriteRune(c)
			}
		}
		result.Glyphs = append(result.Glyphs, Glyph{
			Bounds:     blob.Bounds,
			Candidates: r.candidates(scores),
		})
	}

	result.Text = text.String()
	return result, nil
}

// RecognizeRect recognizes the part of img inside rect. Glyph bounds are
// relative to the top-left corner of the clipped rectangle.
func (r *Recognizer) RecognizeRect(ctx context.Context, img image.Image, rect image.Rectangle) (*Result, error) {
	clipped := rect.Intersect(img.Bounds())
	if clipped.Empty() {
		return nil, fmt.Errorf("%w: %v not in %v", ErrEmptyRect, rect, img.Bounds())
	}
	return r.Recognize(ctx, imaging.Crop(img, clipped))
}

// RecognizeAll recognizes a batch of images with at most Options.Workers
// running at once. Results are in input order. The first failure cancels the
// images not yet started and is returned.
func (r *Recognizer) RecognizeAll(ctx context.Context, imgs []image.Image) ([]*Result, error) {
	results := make([]*Result, len(imgs))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(max(1, r.opts.Workers))
	for i, img := range imgs {
		i, img := i, img
		g.Go(func() error {
			res, err := r.Recognize(ctx, img)
			if err != nil {
				return fmt.Errorf("image %d: %w", i, err)
			}
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// allowed applies the white and black lists.
func (r *Recognizer) allowed(c rune) bool {
	if r.opts.Whitelist != "" && !strings.ContainsRune(r.opts.Whitelist, c) {
		return false
	}
	return !strings.ContainsRune(r.opts.Blacklist, c)
}

// best returns the highest scoring allowed character.
func (r *Recognizer) best(scores []float64) (rune, bool) {
	sorted := append([]float64(nil), scores...)
	order := make([]int, len(scores))
	floats.Argsort(sorted, order)

	for i := len(order) - 1; i >= 0; i-- {
		if c := r.alphabet[order[i]]; r.allowed(c) {
			return c, true
		}
	}
	return 0, false
}

func (r *Recognizer) candidates(scores []float64) []Candidate {
	mean := floats.Sum(scores) / float64(len(scores))

	var out []Candidate
	for i, s := range scores {
		if c := r.alphabet[i]; s >= mean && r.allowed(c) {
			out = append(out, Candidate{Char: string(c), Confidence: s})
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Confidence > out[j].Confidence
	})
	return out
}
