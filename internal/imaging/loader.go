package imaging

import (
	"fmt"
	"image"
	_ "image/gif"  // Register GIF format decoder
	_ "image/jpeg" // Register JPEG format decoder
	_ "image/png"  // Register PNG format decoder
	"os"
	"sync"

	_ "golang.org/x/image/bmp"  // Register BMP format decoder
	_ "golang.org/x/image/tiff" // Register TIFF format decoder
)

// ImageCache provides thread-safe caching of decoded images and of their
// binarized variants.
//
// Decoded images are keyed by file path. Binarized images are keyed by path
// and the binarizer settings, so tools that re-segment the same scan with
// different merge options do not repeat the filter chain.
//
// ImageCache is safe for concurrent use by multiple goroutines.
//
// # Memory Management
//
// Cached images remain in memory until explicitly removed via Evict() or Clear().
// Evict drops every variant of a path.
type ImageCache struct {
	mu        sync.RWMutex
	images    map[string]cachedImage
	binarized map[binarizedKey]image.Image
}

type cachedImage struct {
	img    image.Image
	format string
}

type binarizedKey struct {
	path     string
	settings string
}

// NewImageCache creates and initializes a new empty image cache.
func NewImageCache() *ImageCache {
	return &ImageCache{
		images:    make(map[string]cachedImage),
		binarized: make(map[binarizedKey]image.Image),
	}
}

// Load retrieves an image from the cache or loads it from disk if not cached.
//
// Parameters:
//   - path: File path to the image. Supported formats are PNG, JPEG, GIF,
//     BMP and TIFF.
//
// Returns:
//   - image.Image: The decoded image.
//   - error: Non-nil if the file cannot be opened or decoded.
//
// The image is cached using the exact path string provided.
func (c *ImageCache) Load(path string) (image.Image, error) {
	entry, err := c.load(path)
	if err != nil {
		return nil, err
	}
	return entry.img, nil
}

func (c *ImageCache) load(path string) (cachedImage, error) {
	c.mu.RLock()
	if entry, ok := c.images[path]; ok {
		c.mu.RUnlock()
		return entry, nil
	}
	c.mu.RUnlock()

	f, err := os.Open(path)
	if err != nil {
		return cachedImage{}, fmt.Errorf("failed to open image: %w", err)
	}
	defer f.Close()

	img, format, err := image.Decode(f)
	if err != nil {
		return cachedImage{}, fmt.Errorf("failed to decode image: %w", err)
	}

	entry := cachedImage{img: img, format: format}
	c.mu.Lock()
	c.images[path] = entry
	c.mu.Unlock()

	return entry, nil
}

// LoadBinarized returns the image at path after running it through b.
// A nil binarizer returns the decoded image unchanged.
func (c *ImageCache) LoadBinarized(path string, b *Binarizer) (image.Image, error) {
	img, err := c.Load(path)
	if err != nil || b == nil {
		return img, err
	}

	key := binarizedKey{path: path, settings: b.String()}
	c.mu.RLock()
	if out, ok := c.binarized[key]; ok {
		c.mu.RUnlock()
		return out, nil
	}
	c.mu.RUnlock()

	out, err := b.Binarize(img)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	c.binarized[key] = out
	c.mu.Unlock()

	return out, nil
}

// Clear removes all images from the cache.
func (c *ImageCache) Clear() {
	c.mu.Lock()
	c.images = make(map[string]cachedImage)
	c.binarized = make(map[binarizedKey]image.Image)
	c.mu.Unlock()
}

// Evict removes an image and all of its binarized variants from the cache.
// If the path is not in the cache, this method does nothing.
func (c *ImageCache) Evict(path string) {
	c.mu.Lock()
	delete(c.images, path)
	for k := range c.binarized {
		if k.path == path {
			delete(c.binarized, k)
		}
	}
	c.mu.Unlock()
}

// ImageInfo contains metadata about a loaded image file.
type ImageInfo struct {
	// Width is the image width in pixels.
	Width int `json:"width"`

	// Height is the image height in pixels.
	Height int `json:"height"`

	// Format is the decoder that read the file: "png", "jpeg", "gif", "bmp" or "tiff".
	Format string `json:"format"`

	// ColorModel is "gray", "gray16", "rgba", "rgba64", "paletted", "ycbcr" or "other".
	ColorModel string `json:"color_model"`

	// Components is the number of 8-bit samples per pixel the segmenter will
	// see: 1 for 8-bit gray, 4 for everything else.
	Components int `json:"components"`

	// FileSizeBytes is the size of the image file on disk in bytes.
	FileSizeBytes int64 `json:"file_size_bytes"`
}

// LoadImageInfo loads an image into the cache and describes it.
//
// Parameters:
//   - cache: The image cache to use for loading. Must not be nil.
//   - path: Path to the image file.
//
// Returns:
//   - *ImageInfo: Metadata about the image.
//   - error: Non-nil if the image cannot be loaded or the file cannot be stat'd.
func LoadImageInfo(cache *ImageCache, path string) (*ImageInfo, error) {
	entry, err := cache.load(path)
	if err != nil {
		return nil, err
	}

	stat, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("failed to stat file: %w", err)
	}

	model, components := "other", 4
	switch entry.img.(type) {
	case *image.Gray:
		model, components = "gray", 1
	case *image.Gray16:
		model = "gray16"
	case *image.RGBA, *image.NRGBA:
		model = "rgba"
	case *image.RGBA64, *image.NRGBA64:
		model = "rgba64"
	case *image.Paletted:
		model = "paletted"
	case *image.YCbCr:
		model = "ycbcr"
	}

	bounds := entry.img.Bounds()
	return &ImageInfo{
		Width:         bounds.Dx(),
		Height:        bounds.Dy(),
		Format:        entry.format,
		ColorModel:    model,
		Components:    components,
		FileSizeBytes: stat.Size(),
	}, nil
}
