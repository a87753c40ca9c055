// Package session implements the interactive edit session for one analysed
// target photograph.
//
// A Session owns the original image, the detection configuration, and the
// single authoritative shot set. Automated detection seeds the shot set; after
// that it changes only through the named operations Add, Move, Delete, Undo,
// Reanalyze and Reset. Metrics are recomputed after every change, so Metrics
// never returns a stale value.
//
// # States
//
//   - Detected: the shot set is exactly what detection produced. New and
//     Reanalyze enter this state.
//   - Editing: at least one effective Add, Move or Delete since the last
//     detection.
//   - Empty: the shot set was cleared by Reset, ready for manual placement.
//
// # Undo
//
// Undo is single level. Every effective Add, Move or Delete first captures
// the shot set; Undo restores that capture and empties the buffer, so calling
// Undo again without an intervening edit does nothing. Move and Delete of an
// unknown id change nothing and capture nothing. Reanalyze and Reset are not
// edits: they replace the shot set wholesale and clear the undo buffer.
//
// # Feedback Loops
//
// Reanalyze always runs detection on the preprocessed original image, never
// on anything rendered from the session. Rendered output is a read-only
// projection.
//
// # Thread Safety
//
// A Session is single-owner and not safe for concurrent use. Callers that
// share one across goroutines must serialise access, for example with one
// mutex per session. Distinct sessions are independent.
package session
