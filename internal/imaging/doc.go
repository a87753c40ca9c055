// Package imaging loads target photographs and prepares them for analysis.
//
// It covers the image side of shot-group analysis: decoding and caching
// uploaded photographs, turning them into a denoised intensity map for the
// detector, and the small raster utilities the server needs to hand images
// back to a client (resizing for a display canvas, cropping, PNG encoding).
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
// IntensityMap always has its origin at (0,0), even when the source image's
// bounds are offset.
//
// # Thread Safety
//
// The ImageCache type is safe for concurrent use. Preprocess and the other
// functions are pure and never modify their input.
//
// # Error Handling
//
// Unreadable data and zero-dimension images return errors wrapping
// ErrInvalidImage; test with errors.Is. File I/O and encoding errors are
// wrapped with context.
//
// # Performance Considerations
//
// Preprocess is linear in the number of pixels; the blur kernel has a fixed
// size independent of image resolution. Cached photographs stay in memory
// until Evict.
package imaging
