package imaging

import (
	"errors"
	"fmt"
	"image"
	_ "image/gif"  // Register GIF format decoder
	_ "image/jpeg" // Register JPEG format decoder
	_ "image/png"  // Register PNG format decoder
	"io"
	"os"
	"sync"

	_ "golang.org/x/image/bmp"  // Register BMP format decoder
	_ "golang.org/x/image/webp" // Register WebP format decoder
)

// ErrInvalidImage is returned for input that cannot be decoded or has a zero
// dimension. It aborts an analysis before any session is created.
var ErrInvalidImage = errors.New("invalid image")

// Validate checks that img is usable as a target photograph.
//
// Returns an error wrapping ErrInvalidImage if img is nil or either dimension
// is zero.
func Validate(img image.Image) error {
	if img == nil {
		return fmt.Errorf("%w: no image", ErrInvalidImage)
	}
	b := img.Bounds()
	if b.Dx() <= 0 || b.Dy() <= 0 {
		return fmt.Errorf("%w: zero dimension %dx%d", ErrInvalidImage, b.Dx(), b.Dy())
	}
	return nil
}

// Decode reads a raster image from r and validates it.
//
// Returns the decoded image and its format name ("png", "jpeg", "gif", "bmp",
// "webp"). Undecodable data and zero-dimension images both yield an error
// wrapping ErrInvalidImage.
func Decode(r io.Reader) (image.Image, string, error) {
	img, format, err := image.Decode(r)
	if err != nil {
		return nil, "", fmt.Errorf("%w: failed to decode image: %v", ErrInvalidImage, err)
	}
	if err := Validate(img); err != nil {
		return nil, "", err
	}
	return img, format, nil
}

type cachedImage struct {
	img    image.Image
	format string
}

// ImageCache provides thread-safe caching of decoded target photographs.
//
// Images are keyed by the exact path string. Only images that pass Validate
// are cached, so a cached entry is always analysable.
//
// Cached images remain in memory until Evict. The server evicts an
// image when the session analysing it is closed.
type ImageCache struct {
	mu     sync.RWMutex
	images map[string]cachedImage
}

// NewImageCache creates and initializes a new empty image cache.
func NewImageCache() *ImageCache {
	return &ImageCache{
		images: make(map[string]cachedImage),
	}
}

// Load retrieves an image from the cache or loads it from disk if not cached.
//
// Returns an error if the file cannot be opened. Decoding failures and
// zero-dimension images return an error wrapping ErrInvalidImage.
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

	img, format, err := Decode(f)
	if err != nil {
		return cachedImage{}, fmt.Errorf("%s: %w", path, err)
	}

	entry := cachedImage{img: img, format: format}
	c.mu.Lock()
	c.images[path] = entry
	c.mu.Unlock()

	return entry, nil
}

// Evict removes a specific image from the cache by its path.
// If the path is not in the cache, this method does nothing.
func (c *ImageCache) Evict(path string) {
	c.mu.Lock()
	delete(c.images, path)
	c.mu.Unlock()
}

// Len returns the number of cached images.
func (c *ImageCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.images)
}

// ImageInfo contains metadata about a loaded target photograph.
type ImageInfo struct {
	// Width is the image width in pixels.
	Width int `json:"width"`

	// Height is the image height in pixels.
	Height int `json:"height"`

	// Format is the decoder that accepted the file: "png", "jpeg", "gif",
	// "bmp" or "webp". Detection is based on file contents, not extension.
	Format string `json:"format"`

	// Grayscale is true when the decoded image has a single channel.
	Grayscale bool `json:"grayscale"`

	// FileSizeBytes is the size of the image file on disk in bytes.
	FileSizeBytes int64 `json:"file_size_bytes"`
}

// LoadImageInfo loads an image through cache and returns its metadata.
func LoadImageInfo(cache *ImageCache, path string) (*ImageInfo, error) {
	entry, err := cache.load(path)
	if err != nil {
		return nil, err
	}

	stat, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("failed to stat file: %w", err)
	}

	grayscale := false
	switch entry.img.(type) {
	case *image.Gray, *image.Gray16:
		grayscale = true
	}

	bounds := entry.img.Bounds()
	return &ImageInfo{
		Width:         bounds.Dx(),
		Height:        bounds.Dy(),
		Format:        entry.format,
		Grayscale:     grayscale,
		FileSizeBytes: stat.Size(),
	}, nil
}
