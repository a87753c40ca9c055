package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"image"
	"log"

	"github.com/ironsheep/shot-group-mcp/internal/annotate"
	"github.com/ironsheep/shot-group-mcp/internal/imaging"
	"github.com/ironsheep/shot-group-mcp/internal/session"
	"github.com/ironsheep/shot-group-mcp/internal/shots"
	"github.com/ironsheep/shot-group-mcp/internal/store"
)

// noDetectionsHint is returned with an analysis that found no holes.
const noDetectionsHint = "No holes detected. Raise sensitivity or lower min_area_px and call target_reanalyze, or place shots with target_add_shot."

// ToolCallParams represents the parameters for a tools/call MCP request.
type ToolCallParams struct {
	// Name is the tool to invoke (e.g., "target_analyze", "target_add_shot").
	Name string `json:"name"`

	// Arguments contains the tool-specific parameters as JSON.
	Arguments json.RawMessage `json:"arguments"`
}

// handleToolsCall processes a tools/call request and executes the specified tool.
//
// The response wraps the tool result in MCP's content format:
//
//	{
//	  "content": [{"type": "text", "text": "<JSON result>"}]
//	}
//
// Tool execution errors return a JSON-RPC error response with code -32000.
func (s *Server) handleToolsCall(ctx context.Context, req *MCPRequest) *MCPResponse {
	var params ToolCallParams
	if err := json.Unmarshal(req.Params, &params); err != nil {
		return s.errorResponse(req.ID, -32602, "Invalid params", err.Error())
	}
	if s.debug {
		log.Printf("tool: %s", params.Name)
	}

	result, err := s.executeTool(ctx, params.Name, params.Arguments)
	if err != nil {
		return s.errorResponse(req.ID, -32000, "Tool execution failed", err.Error())
	}
	text, err := marshalResult(result)
	if err != nil {
		return s.errorResponse(req.ID, -32000, "Tool execution failed", err.Error())
	}

	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      req.ID,
		Result: map[string]interface{}{
			"content": []map[string]interface{}{
				{
					"type": "text",
					"text": text,
				},
			},
		},
	}
}

// executeTool dispatches tool execution to the appropriate handler function.
//
// Each tool handler:
//  1. Unmarshals arguments from JSON
//  2. Applies default values for optional parameters
//  3. Looks up the session and holds its lock for the whole operation
//  4. Calls the appropriate session/annotate/store function
//  5. Returns the result or error
func (s *Server) executeTool(ctx context.Context, name string, args json.RawMessage) (interface{}, error) {
	switch name {
	// Analysis
	case "target_image_info":
		return s.handleImageInfo(args)
	case "target_analyze":
		return s.handleAnalyze(args)
	case "target_reanalyze":
		return s.handleReanalyze(args)

	// Editing
	case "target_add_shot":
		return s.handleAddShot(args)
	case "target_move_shot":
		return s.handleMoveShot(args)
	case "target_delete_shot":
		return s.handleDeleteShot(args)
	case "target_undo":
		return s.handleUndo(args)
	case "target_reset":
		return s.handleReset(args)
	case "target_metrics":
		return s.handleMetrics(args)
	case "target_close":
		return s.handleClose(args)

	// Rendering
	case "target_annotate":
		return s.handleAnnotate(args)
	case "target_mask":
		return s.handleMask(args)

	// History
	case "target_save_result":
		return s.handleSaveResult(ctx, args)
	case "target_history":
		return s.handleHistory(ctx, args)

	default:
		return nil, fmt.Errorf("unknown tool: %s", name)
	}
}

// errorResponse creates a JSON-RPC error response with the given details.
func (s *Server) errorResponse(id interface{}, code int, message, data string) *MCPResponse {
	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      id,
		Error: &MCPError{
			Code:    code,
			Message: message,
			Data:    data,
		},
	}
}

// marshalResult converts a tool result to a pretty-printed JSON string.
// Values JSON cannot represent, such as NaN or infinite floats, are an error.
func marshalResult(v interface{}) (string, error) {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to encode result: %w", err)
	}
	return string(b), nil
}

// === Results ===

// sessionResult is the common response of every tool that reads or changes
// a session: the full shot set and freshly computed metrics.
type sessionResult struct {
	SessionID   string            `json:"session_id"`
	State       string            `json:"state"`
	Shots       []session.Shot    `json:"shots"`
	Metrics     shots.Metrics     `json:"metrics"`
	Calibration shots.Calibration `json:"calibration"`
	CanUndo     bool              `json:"can_undo"`
}

func snapshot(sess *session.Session) sessionResult {
	return sessionResult{
		SessionID:   sess.ID(),
		State:       sess.State().String(),
		Shots:       sess.Shots(),
		Metrics:     sess.Metrics(),
		Calibration: sess.Calibration(),
		CanUndo:     sess.CanUndo(),
	}
}

// analysisResult is returned by target_analyze and target_reanalyze.
type analysisResult struct {
	sessionResult
	Config          shots.Config             `json:"config"`
	Detection       session.DetectionSummary `json:"detection"`
	NoDetections    bool                     `json:"no_detections"`
	Hint            string                   `json:"hint,omitempty"`
	ReplacedSession string                   `json:"replaced_session,omitempty"`
	Image           *imaging.ImageInfo       `json:"image,omitempty"`
}

func analysis(sess *session.Session) analysisResult {
	r := analysisResult{
		sessionResult: snapshot(sess),
		Config:        sess.Config(),
		Detection:     sess.Detection(),
	}
	if len(r.Shots) == 0 {
		r.NoDetections = true
		r.Hint = noDetectionsHint
	}
	return r
}

// editResult is returned by the editing tools.
type editResult struct {
	sessionResult
	// Changed is false when the operation was a no-op (unknown shot ID,
	// nothing to undo).
	Changed bool          `json:"changed"`
	Shot    *session.Shot `json:"shot,omitempty"`

	// DisplayShots holds the shot positions in canvas coordinates, in shot
	// order, when the request gave a display_width.
	DisplayShots []shots.Point `json:"display_shots,omitempty"`
}

// edited builds the response of an editing tool.
func edited(sess *session.Session, changed bool, scale imaging.DisplayScale, displayed bool) editResult {
	r := editResult{sessionResult: snapshot(sess), Changed: changed}
	if displayed {
		r.DisplayShots = make([]shots.Point, len(r.Shots))
		for i, shot := range r.Shots {
			x, y := scale.ToDisplay(shot.Point.X, shot.Point.Y)
			r.DisplayShots[i] = shots.Point{X: x, Y: y}
		}
	}
	return r
}

// === Analysis Handlers ===

type imageInfoArgs struct {
	Path string `json:"path"`
}

func (s *Server) handleImageInfo(args json.RawMessage) (interface{}, error) {
	var a imageInfoArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	return imaging.LoadImageInfo(s.cache, a.Path)
}

// configArgs carries optional detection overrides.
type configArgs struct {
	Sensitivity      *int     `json:"sensitivity"`
	MinAreaPx        *float64 `json:"min_area_px"`
	ReferenceWidthMm *float64 `json:"reference_width_mm"`
}

// apply overrides base with the fields that were supplied and validates the
// result once.
func (a configArgs) apply(base shots.Config) (shots.Config, error) {
	if a.Sensitivity != nil {
		base.Sensitivity = *a.Sensitivity
	}
	if a.MinAreaPx != nil {
		base.MinAreaPx = *a.MinAreaPx
	}
	if a.ReferenceWidthMm != nil {
		base.ReferenceWidthMm = *a.ReferenceWidthMm
	}
	return shots.NewConfig(base.Sensitivity, base.MinAreaPx, base.ReferenceWidthMm)
}

type analyzeArgs struct {
	Path string `json:"path"`
	configArgs
}

func (s *Server) handleAnalyze(args json.RawMessage) (interface{}, error) {
	var a analyzeArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	if a.Path == "" {
		return nil, errors.New("path is required")
	}

	cfg, err := a.apply(s.defaults)
	if err != nil {
		return nil, err
	}
	info, err := imaging.LoadImageInfo(s.cache, a.Path)
	if err != nil {
		return nil, err
	}
	img, err := s.cache.Load(a.Path)
	if err != nil {
		return nil, err
	}

	sess, err := session.New(img, cfg)
	if err != nil {
		return nil, err
	}

	r := analysis(sess)
	r.Image = info
	r.ReplacedSession = s.sessions.put(a.Path, sess)
	return r, nil
}

type reanalyzeArgs struct {
	SessionID string `json:"session_id"`
	configArgs
}

func (s *Server) handleReanalyze(args json.RawMessage) (interface{}, error) {
	var a reanalyzeArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	return s.sessions.with(a.SessionID, func(sess *session.Session) (interface{}, error) {
		cfg, err := a.apply(sess.Config())
		if err != nil {
			return nil, err
		}
		if err := sess.Reanalyze(cfg); err != nil {
			return nil, err
		}
		return analysis(sess), nil
	})
}

// === Editing Handlers ===

type sessionArgs struct {
	SessionID string `json:"session_id"`
}

// pointArgs is a shot position, optionally in display canvas coordinates.
type pointArgs struct {
	X            float64 `json:"x"`
	Y            float64 `json:"y"`
	DisplayWidth int     `json:"display_width"`
}

// imagePoint converts the argument to image pixel coordinates for sess and
// returns the canvas scale it used. The converted point must pass
// shots.Point.Validate.
func (a pointArgs) imagePoint(sess *session.Session) (shots.Point, imaging.DisplayScale, error) {
	scale, err := imaging.NewDisplayScale(sess.Image().Bounds().Dx(), a.DisplayWidth)
	if err != nil {
		return shots.Point{}, scale, err
	}
	x, y := scale.ToImage(a.X, a.Y)
	p := shots.Point{X: x, Y: y}
	if err := p.Validate(); err != nil {
		return shots.Point{}, scale, err
	}
	return p, scale, nil
}

type addShotArgs struct {
	SessionID string `json:"session_id"`
	pointArgs
}

func (s *Server) handleAddShot(args json.RawMessage) (interface{}, error) {
	var a addShotArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	return s.sessions.with(a.SessionID, func(sess *session.Session) (interface{}, error) {
		p, scale, err := a.imagePoint(sess)
		if err != nil {
			return nil, err
		}
		shot := sess.Add(p)
		r := edited(sess, true, scale, a.DisplayWidth > 0)
		r.Shot = &shot
		return r, nil
	})
}

type moveShotArgs struct {
	SessionID string `json:"session_id"`
	ShotID    string `json:"shot_id"`
	pointArgs
}

func (s *Server) handleMoveShot(args json.RawMessage) (interface{}, error) {
	var a moveShotArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	return s.sessions.with(a.SessionID, func(sess *session.Session) (interface{}, error) {
		p, scale, err := a.imagePoint(sess)
		if err != nil {
			return nil, err
		}
		changed := sess.Move(a.ShotID, p)
		return edited(sess, changed, scale, a.DisplayWidth > 0), nil
	})
}

type deleteShotArgs struct {
	SessionID string `json:"session_id"`
	ShotID    string `json:"shot_id"`
}

func (s *Server) handleDeleteShot(args json.RawMessage) (interface{}, error) {
	var a deleteShotArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	return s.sessions.with(a.SessionID, func(sess *session.Session) (interface{}, error) {
		changed := sess.Delete(a.ShotID)
		return editResult{sessionResult: snapshot(sess), Changed: changed}, nil
	})
}

func (s *Server) handleUndo(args json.RawMessage) (interface{}, error) {
	var a sessionArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	return s.sessions.with(a.SessionID, func(sess *session.Session) (interface{}, error) {
		changed := sess.Undo()
		return editResult{sessionResult: snapshot(sess), Changed: changed}, nil
	})
}

func (s *Server) handleReset(args json.RawMessage) (interface{}, error) {
	var a sessionArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	return s.sessions.with(a.SessionID, func(sess *session.Session) (interface{}, error) {
		sess.Reset()
		return editResult{sessionResult: snapshot(sess), Changed: true}, nil
	})
}

func (s *Server) handleMetrics(args json.RawMessage) (interface{}, error) {
	var a sessionArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	return s.sessions.with(a.SessionID, func(sess *session.Session) (interface{}, error) {
		return snapshot(sess), nil
	})
}

func (s *Server) handleClose(args json.RawMessage) (interface{}, error) {
	var a sessionArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	e, err := s.sessions.remove(a.SessionID)
	if err != nil {
		return nil, err
	}
	s.cache.Evict(e.path)
	return map[string]interface{}{
		"session_id": a.SessionID,
		"closed":     true,
	}, nil
}

// === Rendering Handlers ===

type annotateArgs struct {
	SessionID    string `json:"session_id"`
	NumberShots  bool   `json:"number_shots"`
	DisplayWidth int    `json:"display_width"`
	CropToGroup  bool   `json:"crop_to_group"`
	Margin       *int   `json:"margin"`
	ShotColor    string `json:"shot_color"`
	MPIColor     string `json:"mpi_color"`
	SpreadColor  string `json:"spread_color"`

	// RingDiameterMm draws shot rings at a physical size, usually the bullet
	// calibre. Zero keeps the size derived from the image width.
	RingDiameterMm float64 `json:"ring_diameter_mm"`
}

// defaultCropMargin is the margin around the group for crop_to_group.
const defaultCropMargin = 40

type renderResult struct {
	*imaging.EncodedImage
	SessionID string        `json:"session_id"`
	Metrics   shots.Metrics `json:"metrics"`
	// Scale maps image pixels to the returned image's pixels.
	Scale float64 `json:"scale"`
	// Origin is the image pixel shown at the returned image's top-left.
	Origin image.Point `json:"origin"`
}

func (s *Server) handleAnnotate(args json.RawMessage) (interface{}, error) {
	var a annotateArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	palette, err := annotate.ParsePalette(a.ShotColor, a.MPIColor, a.SpreadColor)
	if err != nil {
		return nil, err
	}
	if a.RingDiameterMm < 0 || a.RingDiameterMm > shots.MaxReferenceWidthMm {
		return nil, fmt.Errorf("%w: ring diameter %g mm must be in [0, %g]", shots.ErrInvalidConfig, a.RingDiameterMm, shots.MaxReferenceWidthMm)
	}

	return s.sessions.with(a.SessionID, func(sess *session.Session) (interface{}, error) {
		points := sess.Points()
		metrics := sess.Metrics()

		opts := annotate.Options{
			NumberShots: a.NumberShots,
			Palette:     &palette,
		}
		if a.RingDiameterMm > 0 {
			opts.ShotRadius = sess.Calibration().ToPx(a.RingDiameterMm / 2)
		}
		annotated, err := annotate.Annotate(sess.Image(), points, metrics, opts)
		if err != nil {
			return nil, err
		}
		var out image.Image = annotated

		origin := sess.Image().Bounds().Min
		if a.CropToGroup && len(points) > 0 {
			margin := defaultCropMargin
			if a.Margin != nil {
				margin = *a.Margin
			}
			// Annotate and CropAround both return images with their origin
			// at (0, 0).
			group := annotate.GroupBounds(points, margin).Sub(origin)
			out, err = imaging.CropAround(annotated, group, 0)
			if err != nil {
				return nil, err
			}
			origin = origin.Add(group.Intersect(annotated.Bounds()).Min)
		}

		return render(sess, out, origin, a.DisplayWidth, metrics)
	})
}

type maskArgs struct {
	SessionID    string `json:"session_id"`
	Overlay      bool   `json:"overlay"`
	DisplayWidth int    `json:"display_width"`
}

func (s *Server) handleMask(args json.RawMessage) (interface{}, error) {
	var a maskArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	return s.sessions.with(a.SessionID, func(sess *session.Session) (interface{}, error) {
		var out image.Image
		var err error
		if a.Overlay {
			out, err = annotate.MaskOverlay(sess.Image(), sess.Mask(), annotate.DefaultPalette.Mask, annotate.DefaultMaskOpacity)
		} else {
			out, err = annotate.MaskView(sess.Mask())
		}
		if err != nil {
			return nil, err
		}
		return render(sess, out, sess.Image().Bounds().Min, a.DisplayWidth, sess.Metrics())
	})
}

// render resizes img to displayWidth and encodes it.
func render(sess *session.Session, img image.Image, origin image.Point, displayWidth int, m shots.Metrics) (*renderResult, error) {
	scale, err := imaging.NewDisplayScale(img.Bounds().Dx(), displayWidth)
	if err != nil {
		return nil, err
	}
	encoded, err := imaging.EncodePNG(imaging.ResizeToWidth(img, displayWidth))
	if err != nil {
		return nil, err
	}
	return &renderResult{
		EncodedImage: encoded,
		SessionID:    sess.ID(),
		Metrics:      m,
		Scale:        scale.Factor,
		Origin:       origin,
	}, nil
}

// === History Handlers ===

var errHistoryDisabled = errors.New("result history is disabled; start the server with -db")

type saveResultArgs struct {
	SessionID string `json:"session_id"`
	Label     string `json:"label"`
}

func (s *Server) handleSaveResult(ctx context.Context, args json.RawMessage) (interface{}, error) {
	var a saveResultArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	if s.history == nil {
		return nil, errHistoryDisabled
	}

	e, err := s.sessions.get(a.SessionID)
	if err != nil {
		return nil, err
	}
	e.mu.Lock()
	r := store.NewResult(e.sess.ID(), a.Label, e.path, e.sess.Config(), e.sess.Metrics())
	e.mu.Unlock()

	if err := s.history.Save(ctx, &r); err != nil {
		return nil, err
	}
	return r, nil
}

type historyArgs struct {
	SessionID string `json:"session_id"`
	Limit     int    `json:"limit"`
}

func (s *Server) handleHistory(ctx context.Context, args json.RawMessage) (interface{}, error) {
	var a historyArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	if s.history == nil {
		return nil, errHistoryDisabled
	}

	results, err := s.history.List(ctx, a.SessionID, a.Limit)
	if err != nil {
		return nil, err
	}
	return map[string]interface{}{
		"results": results,
		"count":   len(results),
	}, nil
}
