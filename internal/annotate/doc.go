// Package annotate renders analysis results onto target photographs.
//
// Rendering is a pure projection: every function returns a new image and
// leaves its inputs untouched, and nothing rendered here is ever read back as
// shot data.
//
// Drawing uses gogpu/gg's software rasteriser with anti-aliasing. Labels use
// the Go Regular font bundled with golang.org/x/image.
package annotate
