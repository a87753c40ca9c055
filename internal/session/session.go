package session

import (
	"fmt"
	"image"

	"github.com/google/uuid"

	"github.com/ironsheep/shot-group-mcp/internal/detection"
	"github.com/ironsheep/shot-group-mcp/internal/imaging"
	"github.com/ironsheep/shot-group-mcp/internal/shots"
)

// State is the position of a Session in its lifecycle.
type State int

const (
	// Empty means the shot set was cleared and nothing has been placed since.
	Empty State = iota

	// Detected means the shot set is exactly the detector output.
	Detected

	// Editing means the shot set has been changed by hand since detection.
	Editing
)

// String returns the lower-case state name.
func (s State) String() string {
	switch s {
	case Empty:
		return "empty"
	case Detected:
		return "detected"
	case Editing:
		return "editing"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Source records where a shot came from.
type Source string

const (
	SourceDetected Source = "detected"
	SourceManual   Source = "manual"
)

// Shot is one impact point in the shot set.
type Shot struct {
	// ID identifies the shot for Move and Delete. IDs are never reused.
	ID string `json:"id"`

	// Point is the shot centre in image pixel coordinates.
	Point shots.Point `json:"point"`

	// Source is SourceDetected for detector output and SourceManual for
	// shots placed with Add. A moved shot keeps its source.
	Source Source `json:"source"`
}

// DetectionSummary describes the detection pass that last seeded the shot set.
type DetectionSummary struct {
	Candidates int            `json:"candidates"`
	Components int            `json:"components"`
	Rejected   map[string]int `json:"rejected,omitempty"`
	Degenerate int            `json:"degenerate"`
}

// Session is the interactive edit session for one photograph.
type Session struct {
	id  string
	img image.Image

	// intensity is the preprocessed original image. Every detection pass
	// reads it and nothing writes it.
	intensity *imaging.IntensityMap

	cfg shots.Config
	cal shots.Calibration

	state State
	shots []Shot

	// undo is the shot set captured before the last effective edit, valid
	// while hasUndo is set. A captured set may legitimately be empty.
	undo    []Shot
	hasUndo bool

	metrics   shots.Metrics
	mask      *detection.Mask
	detection DetectionSummary
}

// New analyses img with cfg and returns a session seeded with the detected
// shots.
//
// Parameters:
//   - img: The photograph. It is retained but never modified.
//   - cfg: Detection and calibration settings, checked with Validate.
//
// Returns:
//   - *Session: In state Detected. Zero detected shots is a valid session.
//   - error: Wraps imaging.ErrInvalidImage for a nil or zero-dimension image,
//     or shots.ErrInvalidConfig for an out-of-range configuration. No session
//     is created on error.
func New(img image.Image, cfg shots.Config) (*Session, error) {
	if err := imaging.Validate(img); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	cal, err := shots.NewCalibration(img.Bounds().Dx(), cfg.ReferenceWidthMm)
	if err != nil {
		return nil, err
	}

	intensity, err := imaging.Preprocess(img)
	if err != nil {
		return nil, fmt.Errorf("failed to preprocess image: %w", err)
	}

	s := &Session{
		id:        uuid.NewString(),
		img:       img,
		intensity: intensity,
	}
	s.detect(cfg, cal)

	Logger().Info("session created",
		"session", s.id,
		"width", intensity.Width,
		"height", intensity.Height,
		"shots", len(s.shots),
		"components", s.detection.Components,
		"degenerate", s.detection.Degenerate)

	return s, nil
}

// detect replaces the shot set with a fresh detection pass.
func (s *Session) detect(cfg shots.Config, cal shots.Calibration) {
	result := detection.Detect(s.intensity, cfg)

	s.cfg = cfg
	s.cal = cal
	s.mask = result.Mask
	s.detection = DetectionSummary{
		Candidates: result.Count(),
		Components: result.Components,
		Rejected:   result.Rejected,
		Degenerate: result.Degenerate,
	}

	s.shots = make([]Shot, 0, result.Count())
	for _, p := range result.Points() {
		s.shots = append(s.shots, Shot{ID: uuid.NewString(), Point: p, Source: SourceDetected})
	}
	s.clearUndo()
	s.state = Detected
	s.recompute()
}

// Add appends a manually placed shot and returns it. Add always succeeds.
func (s *Session) Add(p shots.Point) Shot {
	s.capture()
	shot := Shot{ID: uuid.NewString(), Point: p, Source: SourceManual}
	s.shots = append(s.shots, shot)
	s.edited("add", shot.ID)
	return shot
}

// Move replaces the coordinates of the shot with the given id.
//
// Returns false, leaving the session untouched, if no such shot exists.
func (s *Session) Move(id string, p shots.Point) bool {
	i := s.index(id)
	if i < 0 {
		return false
	}
	s.capture()
	s.shots[i].Point = p
	s.edited("move", id)
	return true
}

// Delete removes the shot with the given id.
//
// Returns false, leaving the session untouched, if no such shot exists.
func (s *Session) Delete(id string) bool {
	i := s.index(id)
	if i < 0 {
		return false
	}
	s.capture()
	s.shots = append(s.shots[:i], s.shots[i+1:]...)
	s.edited("delete", id)
	return true
}

// Undo restores the shot set captured before the last effective edit.
//
// Returns false if there is nothing to undo. A second Undo without an
// intervening edit is always a no-op.
func (s *Session) Undo() bool {
	if !s.hasUndo {
		return false
	}
	s.shots = s.undo
	s.clearUndo()
	s.recompute()

	Logger().Debug("undo", "session", s.id, "shots", len(s.shots))
	return true
}

// Reanalyze re-runs detection on the original image with cfg, replacing the
// shot set wholesale. The session returns to state Detected and the undo
// buffer is cleared.
//
// Returns an error wrapping shots.ErrInvalidConfig, leaving the session
// unchanged, if cfg is out of range.
func (s *Session) Reanalyze(cfg shots.Config) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	cal, err := shots.NewCalibration(s.intensity.Width, cfg.ReferenceWidthMm)
	if err != nil {
		return err
	}

	s.detect(cfg, cal)

	Logger().Info("session reanalysed",
		"session", s.id,
		"sensitivity", cfg.Sensitivity,
		"min_area_px", cfg.MinAreaPx,
		"shots", len(s.shots))
	return nil
}

// Reset clears the shot set and enters state Empty. It is not undoable.
func (s *Session) Reset() {
	s.shots = []Shot{}
	s.clearUndo()
	s.state = Empty
	s.recompute()

	Logger().Debug("reset", "session", s.id)
}

// ID returns the session identifier.
func (s *Session) ID() string { return s.id }

// State returns the current lifecycle state.
func (s *Session) State() State { return s.state }

// Config returns the configuration of the last detection pass.
func (s *Session) Config() shots.Config { return s.cfg }

// Calibration returns the current pixel-to-millimetre calibration.
func (s *Session) Calibration() shots.Calibration { return s.cal }

// Image returns the original photograph. Callers must not modify it.
func (s *Session) Image() image.Image { return s.img }

// Mask returns the cleaned binary mask of the last detection pass. Callers
// must not modify it.
func (s *Session) Mask() *detection.Mask { return s.mask }

// Detection returns statistics of the last detection pass.
func (s *Session) Detection() DetectionSummary {
	d := s.detection
	if d.Rejected != nil {
		d.Rejected = make(map[string]int, len(s.detection.Rejected))
		for k, v := range s.detection.Rejected {
			d.Rejected[k] = v
		}
	}
	return d
}

// CanUndo reports whether Undo would change the shot set.
func (s *Session) CanUndo() bool { return s.hasUndo }

// Shots returns a copy of the shot set in order.
func (s *Session) Shots() []Shot {
	out := make([]Shot, len(s.shots))
	copy(out, s.shots)
	return out
}

// Points returns the shot coordinates in shot order.
func (s *Session) Points() []shots.Point {
	pts := make([]shots.Point, len(s.shots))
	for i, shot := range s.shots {
		pts[i] = shot.Point
	}
	return pts
}

// Metrics returns the group metrics of the current shot set.
func (s *Session) Metrics() shots.Metrics {
	m := s.metrics
	if m.MeanPointOfImpact != nil {
		mpi := *m.MeanPointOfImpact
		m.MeanPointOfImpact = &mpi
	}
	if m.Spread != nil {
		spread := *m.Spread
		m.Spread = &spread
	}
	return m
}

func (s *Session) index(id string) int {
	for i, shot := range s.shots {
		if shot.ID == id {
			return i
		}
	}
	return -1
}

// capture snapshots the shot set into the undo buffer.
func (s *Session) capture() {
	s.undo = make([]Shot, len(s.shots))
	copy(s.undo, s.shots)
	s.hasUndo = true
}

func (s *Session) clearUndo() {
	s.undo = nil
	s.hasUndo = false
}

// edited finishes an effective edit.
func (s *Session) edited(op, id string) {
	s.state = Editing
	s.recompute()
	Logger().Debug(op, "session", s.id, "shot", id, "shots", len(s.shots))
}

func (s *Session) recompute() {
	s.metrics = shots.Compute(s.Points(), s.cal)
}
