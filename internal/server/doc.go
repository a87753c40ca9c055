// Package server implements the MCP (Model Context Protocol) server for
// shot-group analysis of target photographs.
//
// This package provides a JSON-RPC 2.0 server that exposes hole detection,
// interactive correction and group metrics through the MCP protocol. An MCP
// client (typically an AI assistant) analyses a photo, inspects the annotated
// result, and fixes missed or false detections until the metrics are right.
//
// # Protocol
//
// The server communicates over stdio using JSON-RPC 2.0:
//   - Input: JSON-RPC requests on stdin (one per line)
//   - Output: JSON-RPC responses on stdout
//
// Supported MCP methods:
//   - initialize: Protocol handshake
//   - tools/list: Enumerate available tools
//   - tools/call: Execute a tool with arguments
//   - ping: Health check
//
// # Available Tools
//
// Analysis:
//   - target_image_info: Image metadata without analysis
//   - target_analyze: Detect holes and open an edit session
//   - target_reanalyze: Detect again with new parameters
//
// Editing (each returns the full shot set and recomputed metrics):
//   - target_add_shot, target_move_shot, target_delete_shot
//   - target_undo: Single-level undo
//   - target_reset: Clear every shot
//   - target_metrics: Read-only view of the session
//   - target_close: Drop the session and its cached photo
//
// Rendering:
//   - target_annotate: Photo with shots, MPI and extreme spread drawn
//   - target_mask: The binary detection mask, alone or as an overlay
//
// History (requires a database, see WithStore):
//   - target_save_result, target_history
//
// # Sessions
//
// Each analysed photograph gets a session, addressed by the ID returned from
// target_analyze. Analysing the same path again replaces the earlier session.
// Calls on one session are serialised by a per-session lock; calls on
// different sessions do not contend.
//
// # Coordinates
//
// Shot positions are image pixel coordinates with the origin at the top-left.
// Editing tools accept display_width so a client working on a scaled canvas
// can pass canvas coordinates; they are divided by the canvas scale before
// use.
//
// # Error Handling
//
// Tool execution errors are returned as JSON-RPC error responses with:
//   - code: -32000 (tool execution failure) or standard JSON-RPC codes
//   - message: Human-readable error description
//   - data: Additional error details (typically the Go error string)
//
// Editing an unknown shot ID is not an error: the result reports
// changed=false.
//
// # Usage
//
//	srv := server.New(server.WithDefaults(shots.DefaultConfig()))
//	if err := srv.Run(); err != nil {
//	    log.Fatal(err)
//	}
package server
