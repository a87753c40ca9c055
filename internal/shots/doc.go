// Package shots holds the pure domain of shot-group analysis: impact points,
// the validated detection configuration, pixel-to-millimetre calibration, and
// the group metrics computed from a set of points.
//
// # Units
//
// Everything inside the system is expressed in image pixels. Millimetres only
// appear in Metrics, which are converted at the reporting boundary by a
// Calibration. No other package converts between the two.
//
// # Coordinate System
//
// Points use the image convention: origin at the top-left corner, X increasing
// rightward, Y increasing downward. Coordinates are real-valued so sub-pixel
// centroids and manually placed shots survive without rounding.
package shots
