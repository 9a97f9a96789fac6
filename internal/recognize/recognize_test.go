package recognize

import (
	"context"
	"errors"
	"image"
	"image/color"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/ironsheep/glyphseg-mcp/internal/imaging"
	"github.com/ironsheep/glyphseg-mcp/internal/segment"
)

// scores builds a classifier output over DefaultAlphabet with a 0.01 floor.
func scores(peaks map[rune]float64) []float64 {
	out := make([]float64, len(DefaultAlphabet))
	for i, c := range DefaultAlphabet {
		out[i] = 0.01
		if v, ok := peaks[c]; ok {
			out[i] = v
		}
	}
	return out
}

var (
	narrowScores = scores(map[rune]float64{'I': 0.9, 'L': 0.5})
	wideScores   = scores(map[rune]float64{'O': 0.8, 'Q': 0.6, '0': 0.3})
)

// byShape reads narrow glyphs as I and wider ones as O.
func byShape(_ context.Context, f []float64) ([]float64, error) {
	if len(f) != segment.FeatureLen {
		return nil, errors.New("bad feature vector")
	}
	if f[segment.FeatureLen-1] < 0.4 {
		return narrowScores, nil
	}
	return wideScores, nil
}

// createLine draws a narrow bar at x=30 and a wide block at x=100.
func createLine() *image.Gray {
	img := image.NewGray(image.Rect(0, 0, 200, 100))
	for i := range img.Pix {
		img.Pix[i] = 255
	}
	fill := func(r image.Rectangle) {
		for y := r.Min.Y; y < r.Max.Y; y++ {
			for x := r.Min.X; x < r.Max.X; x++ {
				img.SetGray(x, y, color.Gray{})
			}
		}
	}
	fill(image.Rect(30, 40, 38, 80))
	fill(image.Rect(100, 50, 120, 80))
	return img
}

func newRecognizer(t *testing.T, c Classifier, mod func(*Options)) *Recognizer {
	t.Helper()
	ex, err := segment.NewExtractor(segment.DefaultOptions())
	if err != nil {
		t.Fatalf("NewExtractor failed: %v", err)
	}
	opts := DefaultOptions()
	if mod != nil {
		mod(&opts)
	}
	r, err := New(ex, c, opts)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	return r
}

func TestRecognize(t *testing.T) {
	r := newRecognizer(t, ClassifierFunc(byShape), nil)

	res, err := r.Recognize(context.Background(), createLine())
	if err != nil {
		t.Fatalf("Recognize failed: %v", err)
	}
	if res.Text != "IO" {
		t.Errorf("Text: got %q, want %q", res.Text, "IO")
	}
	if len(res.Glyphs) != 2 {
		t.Fatalf("Glyphs: got %d, want 2", len(res.Glyphs))
	}

	if want := image.Rect(30, 40, 38, 80); res.Glyphs[0].Bounds != want {
		t.Errorf("glyph 0 bounds: got %v, want %v", res.Glyphs[0].Bounds, want)
	}

	got := res.Glyphs[1].Candidates
	want := []Candidate{{"O", 0.8}, {"Q", 0.6}, {"0", 0.3}}
	if len(got) != len(want) {
		t.Fatalf("candidates: got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("candidate %d: got %v, want %v", i, got[i], want[i])
		}
	}
}

func TestRecognize_Lists(t *testing.T) {
	tests := []struct {
		name      string
		whitelist string
		blacklist string
		want      string
	}{
		{"no lists", "", "", "IO"},
		{"whitelist", "LQ", "", "LQ"},
		{"blacklist", "", "I", "LO"},
		{"both", "IQO", "O", "IQ"},
		{"nothing allowed", "Z", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := newRecognizer(t, ClassifierFunc(byShape), func(o *Options) {
				o.Whitelist = tt.whitelist
				o.Blacklist = tt.blacklist
			})
			res, err := r.Recognize(context.Background(), createLine())
			if err != nil {
				t.Fatalf("Recognize failed: %v", err)
			}
			if res.Text != tt.want {
				t.Errorf("Text: got %q, want %q", res.Text, tt.want)
			}
			for _, g := range res.Glyphs {
				for _, c := range g.Candidates {
					if tt.whitelist != "" && !strings.Contains(tt.whitelist, c.Char) {
						t.Errorf("candidate %q not in whitelist", c.Char)
					}
					if strings.Contains(tt.blacklist, c.Char) && tt.blacklist != "" {
						t.Errorf("candidate %q is blacklisted", c.Char)
					}
				}
			}
		})
	}
}

func TestRecognize_BelowThreshold(t *testing.T) {
	weak := scores(map[rune]float64{'A': 0.05})
	r := newRecognizer(t, ClassifierFunc(func(context.Context, []float64) ([]float64, error) {
		return weak, nil
	}), nil)

	res, err := r.Recognize(context.Background(), createLine())
	if err != nil {
		t.Fatalf("Recognize failed: %v", err)
	}
	if res.Text != "" {
		t.Errorf("Text: got %q, want empty", res.Text)
	}
	if len(res.Glyphs) != 2 {
		t.Fatalf("weak blobs should still be reported, got %d", len(res.Glyphs))
	}
	if c := res.Glyphs[0].Candidates; len(c) != 1 || c[0].Char != "A" {
		t.Errorf("candidates: got %v, want only A", c)
	}
}

func TestRecognize_ClassifierFailuresSkipBlob(t *testing.T) {
	tests := []struct {
		name string
		fail func([]float64) ([]float64, error)
	}{
		{"error", func([]float64) ([]float64, error) { return nil, errors.New("network exploded") }},
		{"wrong length", func([]float64) ([]float64, error) { return []float64{1}, nil }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := ClassifierFunc(func(ctx context.Context, f []float64) ([]float64, error) {
				if f[segment.FeatureLen-1] < 0.4 {
					return tt.fail(f)
				}
				return byShape(ctx, f)
			})
			r := newRecognizer(t, c, nil)

			res, err := r.Recognize(context.Background(), createLine())
			if err != nil {
				t.Fatalf("Recognize failed: %v", err)
			}
			if res.Text != "O" || len(res.Glyphs) != 1 {
				t.Errorf("got %q with %d glyphs, want %q with 1", res.Text, len(res.Glyphs), "O")
			}
		})
	}
}

func TestRecognize_Cancelled(t *testing.T) {
	r := newRecognizer(t, ClassifierFunc(byShape), nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := r.Recognize(ctx, createLine()); !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

func TestRecognize_WithBinarizer(t *testing.T) {
	// Colour scan of the same line.
	gray := createLine()
	img := image.NewRGBA(gray.Bounds())
	for y := 0; y < 100; y++ {
		for x := 0; x < 200; x++ {
			c := color.RGBA{225, 220, 200, 255}
			if gray.GrayAt(x, y).Y == 0 {
				c = color.RGBA{40, 35, 50, 255}
			}
			img.Set(x, y, c)
		}
	}

	r := newRecognizer(t, ClassifierFunc(byShape), func(o *Options) {
		o.Binarizer = imaging.DefaultBinarizer()
	})
	res, err := r.Recognize(context.Background(), img)
	if err != nil {
		t.Fatalf("Recognize failed: %v", err)
	}
	if res.Text != "IO" {
		t.Errorf("Text: got %q, want %q", res.Text, "IO")
	}
}

type failingBinarizer struct{}

func (failingBinarizer) Binarize(image.Image) (image.Image, error) {
	return nil, errors.New("lamp broken")
}

func TestRecognize_BinarizerError(t *testing.T) {
	r := newRecognizer(t, ClassifierFunc(byShape), func(o *Options) {
		o.Binarizer = failingBinarizer{}
	})
	if _, err := r.Recognize(context.Background(), createLine()); err == nil {
		t.Error("expected the binarizer error")
	}
}

func TestRecognizeRect(t *testing.T) {
	r := newRecognizer(t, ClassifierFunc(byShape), nil)

	res, err := r.RecognizeRect(context.Background(), createLine(), image.Rect(80, 0, 200, 100))
	if err != nil {
		t.Fatalf("RecognizeRect failed: %v", err)
	}
	if res.Text != "O" {
		t.Errorf("Text: got %q, want %q", res.Text, "O")
	}
	if len(res.Glyphs) != 1 {
		t.Fatalf("Glyphs: got %d, want 1", len(res.Glyphs))
	}
	if want := image.Rect(20, 50, 40, 80); res.Glyphs[0].Bounds != want {
		t.Errorf("bounds: got %v, want %v relative to the rect", res.Glyphs[0].Bounds, want)
	}
}

func TestRecognizeRect_Outside(t *testing.T) {
	r := newRecognizer(t, ClassifierFunc(byShape), nil)

	_, err := r.RecognizeRect(context.Background(), createLine(), image.Rect(300, 300, 400, 400))
	if !errors.Is(err, ErrEmptyRect) {
		t.Errorf("expected ErrEmptyRect, got %v", err)
	}
}

func TestRecognizeAll(t *testing.T) {
	var calls atomic.Int32
	c := ClassifierFunc(func(ctx context.Context, f []float64) ([]float64, error) {
		calls.Add(1)
		return byShape(ctx, f)
	})
	r := newRecognizer(t, c, func(o *Options) { o.Workers = 3 })

	blank := image.NewGray(image.Rect(0, 0, 50, 50))
	for i := range blank.Pix {
		blank.Pix[i] = 255
	}
	imgs := []image.Image{createLine(), blank, createLine(), blank, createLine()}

	results, err := r.RecognizeAll(context.Background(), imgs)
	if err != nil {
		t.Fatalf("RecognizeAll failed: %v", err)
	}
	if len(results) != len(imgs) {
		t.Fatalf("results: got %d, want %d", len(results), len(imgs))
	}
	for i, res := range results {
		want := "IO"
		if i%2 == 1 {
			want = ""
		}
		if res.Text != want {
			t.Errorf("result %d: got %q, want %q", i, res.Text, want)
		}
	}
	if calls.Load() != 6 {
		t.Errorf("classifier calls: got %d, want 6", calls.Load())
	}
}

func TestRecognizeAll_FirstErrorWins(t *testing.T) {
	r := newRecognizer(t, ClassifierFunc(byShape), func(o *Options) {
		o.Binarizer = failingBinarizer{}
		o.Workers = 2
	})

	_, err := r.RecognizeAll(context.Background(), []image.Image{createLine(), createLine()})
	if err == nil || !strings.Contains(err.Error(), "lamp broken") {
		t.Errorf("expected the binarizer error, got %v", err)
	}
}

func TestNew_Validation(t *testing.T) {
	ex, err := segment.NewExtractor(segment.DefaultOptions())
	if err != nil {
		t.Fatalf("NewExtractor failed: %v", err)
	}
	c := ClassifierFunc(byShape)

	tests := []struct {
		name string
		ex   *segment.Extractor
		c    Classifier
		mod  func(*Options)
	}{
		{"nil extractor", nil, c, nil},
		{"nil classifier", ex, nil, nil},
		{"empty alphabet", ex, c, func(o *Options) { o.Alphabet = "" }},
		{"threshold above one", ex, c, func(o *Options) { o.ConfidenceThreshold = 1.5 }},
		{"negative threshold", ex, c, func(o *Options) { o.ConfidenceThreshold = -0.1 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts := DefaultOptions()
			if tt.mod != nil {
				tt.mod(&opts)
			}
			if _, err := New(tt.ex, tt.c, opts); !errors.Is(err, ErrInvalidOptions) {
				t.Errorf("expected ErrInvalidOptions, got %v", err)
			}
		})
	}
}
