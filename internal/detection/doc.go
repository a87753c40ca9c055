// Package detection locates bullet holes in a preprocessed target photograph.
//
// A bullet hole on a paper target is a dark, round, isolated blob on a light
// background. Detect turns an intensity map into candidate impact points by
// segmenting dark pixels, cleaning the mask, and keeping only blobs whose
// shape looks like a hole.
//
// # Algorithm Overview
//
//  1. Segmentation: a pixel is foreground iff its intensity is strictly
//     below the configured sensitivity.
//  2. Opening: erosion then dilation (bild effect.Erode/Dilate) with a small
//     structuring element and a fixed iteration count removes specks.
//  3. Contours: 8-connected components are flood-filled and their outer
//     boundary is traced with Moore-neighbour tracing.
//  4. Shape filter: area, circularity (4π·area/perimeter²) and solidity
//     (area / convex hull area) must all pass.
//  5. Centroid: the area-weighted centroid of each accepted contour.
//
// # Coordinate System
//
// All coordinates use the standard image convention:
//   - Origin (0, 0) at top-left corner
//   - X increases rightward
//   - Y increases downward
//
// Contour vertices are pixel centres, so contour areas are slightly smaller
// than pixel counts (a filled disc of radius r has contour area ≈ π(r-½)²).
//
// # Results
//
// Zero candidates is a normal result, not an error. Blobs with a zero
// perimeter or a zero convex hull area are skipped individually and counted
// in Result.Degenerate.
//
// # Performance
//
// Every pass is linear in the number of pixels plus the boundary length of
// each blob. The cost is deterministic for a given image and configuration,
// and the same input always yields the same candidates in the same order.
//
// # Limitations
//
// The detector assumes dark holes on light paper under even lighting. Torn
// paper, overlapping holes and strong shadows may merge or split blobs.
package detection
