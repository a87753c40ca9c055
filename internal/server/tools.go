package server

// Tool represents an MCP tool definition
type Tool struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description"`
	InputSchema map[string]interface{} `json:"inputSchema"`
}

// Shared property schemas.
var (
	pathProperty = map[string]interface{}{
		"type":        "string",
		"description": "Absolute path to the target photograph (PNG, JPEG, GIF, BMP or WebP)",
	}
	sessionIDProperty = map[string]interface{}{
		"type":        "string",
		"description": "Session ID returned by target_analyze",
	}
	shotIDProperty = map[string]interface{}{
		"type":        "string",
		"description": "Shot ID from the shots list of a previous result",
	}
	sensitivityProperty = map[string]interface{}{
		"type":        "integer",
		"description": "Darkness threshold 0-255. Pixels darker than this are hole candidates. Raise to find fainter holes (default: 155)",
		"minimum":     0,
		"maximum":     255,
	}
	minAreaProperty = map[string]interface{}{
		"type":        "number",
		"description": "Smallest blob area in square pixels accepted as a hole. Lower to find smaller holes (default: 50)",
		"minimum":     1,
	}
	referenceWidthProperty = map[string]interface{}{
		"type":             "number",
		"description":      "Physical width of the photographed area in millimetres, used to convert pixels to mm (default: 210, A4)",
		"exclusiveMinimum": 0,
	}
	displayWidthProperty = map[string]interface{}{
		"type":        "integer",
		"description": "Width in pixels of the canvas the coordinates refer to, or the width to render at. Omit or 0 for full image size",
		"minimum":     0,
	}
)

// sessionOnly is the schema for tools that take just a session ID.
func sessionOnly() map[string]interface{} {
	return map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"session_id": sessionIDProperty,
		},
		"required": []string{"session_id"},
	}
}

// GetToolDefinitions returns all available tools
func GetToolDefinitions() []Tool {
	return []Tool{
		// Analysis
		{
			Name:        "target_image_info",
			Description: "Get the dimensions, format and file size of a target photograph without analysing it.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": pathProperty,
				},
				"required": []string{"path"},
			},
		},
		{
			Name:        "target_analyze",
			Description: "Detect bullet holes in a target photograph and open an edit session. Returns the session ID, detected shots (image pixel coordinates) and group metrics: mean point of impact, mean radius and extreme spread in millimetres. Analysing the same path again replaces its session.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path":               pathProperty,
					"sensitivity":        sensitivityProperty,
					"min_area_px":        minAreaProperty,
					"reference_width_mm": referenceWidthProperty,
				},
				"required": []string{"path"},
			},
		},
		{
			Name:        "target_reanalyze",
			Description: "Run detection again on the session's original photograph with new parameters. Replaces every shot, including manual edits, and clears undo. Omitted parameters keep their current values.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"session_id":         sessionIDProperty,
					"sensitivity":        sensitivityProperty,
					"min_area_px":        minAreaProperty,
					"reference_width_mm": referenceWidthProperty,
				},
				"required": []string{"session_id"},
			},
		},

		// Editing
		{
			Name:        "target_add_shot",
			Description: "Add a shot the detector missed. Coordinates are image pixels, or canvas pixels when display_width is given, in which case display_shots reports every shot in canvas pixels. Coordinates must be finite. Returns updated metrics.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"session_id": sessionIDProperty,
					"x": map[string]interface{}{
						"type":        "number",
						"description": "X coordinate of the shot centre",
					},
					"y": map[string]interface{}{
						"type":        "number",
						"description": "Y coordinate of the shot centre",
					},
					"display_width": displayWidthProperty,
				},
				"required": []string{"session_id", "x", "y"},
			},
		},
		{
			Name:        "target_move_shot",
			Description: "Move a shot to a new position, in image pixels or canvas pixels as for target_add_shot. An unknown shot ID changes nothing. Returns updated metrics.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"session_id": sessionIDProperty,
					"shot_id":    shotIDProperty,
					"x": map[string]interface{}{
						"type":        "number",
						"description": "New X coordinate of the shot centre",
					},
					"y": map[string]interface{}{
						"type":        "number",
						"description": "New Y coordinate of the shot centre",
					},
					"display_width": displayWidthProperty,
				},
				"required": []string{"session_id", "shot_id", "x", "y"},
			},
		},
		{
			Name:        "target_delete_shot",
			Description: "Remove a false detection. An unknown shot ID changes nothing. Returns updated metrics.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"session_id": sessionIDProperty,
					"shot_id":    shotIDProperty,
				},
				"required": []string{"session_id", "shot_id"},
			},
		},
		{
			Name:        "target_undo",
			Description: "Revert the most recent add, move or delete. Only one level is kept: a second undo changes nothing.",
			InputSchema: sessionOnly(),
		},
		{
			Name:        "target_reset",
			Description: "Remove every shot so the group can be placed by hand. Cannot be undone.",
			InputSchema: sessionOnly(),
		},
		{
			Name:        "target_metrics",
			Description: "Get the current shots, metrics and calibration of a session without changing it.",
			InputSchema: sessionOnly(),
		},
		{
			Name:        "target_close",
			Description: "Close a session and release its photograph from memory.",
			InputSchema: sessionOnly(),
		},

		// Rendering
		{
			Name:        "target_annotate",
			Description: "Render the photograph with each shot circled, the mean point of impact marked and the extreme spread drawn and labelled in millimetres. Returns a base64 PNG, the scale from image pixels to returned pixels, and the image pixel at the returned image's top-left.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"session_id": sessionIDProperty,
					"number_shots": map[string]interface{}{
						"type":        "boolean",
						"description": "Label each shot with its position in the shot list (default: false)",
					},
					"display_width": displayWidthProperty,
					"crop_to_group": map[string]interface{}{
						"type":        "boolean",
						"description": "Crop to the shots plus a margin (default: false)",
					},
					"margin": map[string]interface{}{
						"type":        "integer",
						"description": "Margin in image pixels around the group when cropping (default: 40)",
						"minimum":     0,
					},
					"ring_diameter_mm": map[string]interface{}{
						"type":        "number",
						"description": "Draw shot rings at this physical diameter, e.g. the bullet calibre (default: sized from the image width)",
						"minimum":     0,
					},
					"shot_color": map[string]interface{}{
						"type":        "string",
						"description": "Shot ring colour as hex, e.g. #2ecc40",
					},
					"mpi_color": map[string]interface{}{
						"type":        "string",
						"description": "Mean point of impact colour as hex, e.g. #ff2020",
					},
					"spread_color": map[string]interface{}{
						"type":        "string",
						"description": "Extreme spread line colour as hex, e.g. #1f6fff",
					},
				},
				"required": []string{"session_id"},
			},
		},
		{
			Name:        "target_mask",
			Description: "Render the binary hole mask from the last detection pass (white = hole candidate), or tint it over the photograph. Use it to tune sensitivity and min_area_px.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"session_id": sessionIDProperty,
					"overlay": map[string]interface{}{
						"type":        "boolean",
						"description": "Tint the mask over the photograph instead of returning it black and white (default: false)",
					},
					"display_width": displayWidthProperty,
				},
				"required": []string{"session_id"},
			},
		},

		// History
		{
			Name:        "target_save_result",
			Description: "Save the session's current metrics to the result history. Requires the server to be started with a database.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"session_id": sessionIDProperty,
					"label": map[string]interface{}{
						"type":        "string",
						"description": "Free-form label, e.g. rifle, load or distance",
					},
				},
				"required": []string{"session_id"},
			},
		},
		{
			Name:        "target_history",
			Description: "List saved results, newest first.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"session_id": map[string]interface{}{
						"type":        "string",
						"description": "Only list results saved from this session",
					},
					"limit": map[string]interface{}{
						"type":        "integer",
						"description": "Maximum number of results (default: 50)",
						"minimum":     1,
					},
				},
			},
		},
	}
}

// handleToolsList returns the list of available tools
func (s *Server) handleToolsList(req *MCPRequest) *MCPResponse {
	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      req.ID,
		Result: map[string]interface{}{
			"tools": GetToolDefinitions(),
		},
	}
}
