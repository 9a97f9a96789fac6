// Package server implements the MCP (Model Context Protocol) server for glyph
// segmentation and recognition.
//
// This package provides a JSON-RPC 2.0 server that exposes the segmentation
// pipeline through the MCP protocol, so an MCP client can inspect how a line
// of printed text breaks into characters and what each character reads as.
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
// Image Information:
//   - glyph_load: Load image and get metadata
//
// Preprocessing:
//   - glyph_binarize: Show the black and white image the segmenter sees
//
// Segmentation:
//   - glyph_extract_blobs: Per-character bounding boxes, left to right
//   - glyph_blob_features: The 321-value classifier input for one blob
//   - glyph_overlay: Blob boxes drawn on the original image
//
// Recognition:
//   - glyph_recognize: Text and per-glyph candidates for one image
//   - glyph_recognize_batch: Several images recognized concurrently
//
// # Per-Call Options
//
// Segmentation tools accept x_merge_radius, y_merge_radius, merge_mode and
// binarize; recognition tools also accept whitelist, blacklist and
// confidence_threshold. Overrides are applied to a copy of the server's
// config.Config for that call only.
//
// # Image Caching
//
// The server maintains an in-memory cache of loaded images and of their
// binarized variants. Images are cached by path and reused across tool calls.
// The cache persists for the lifetime of the server process.
//
// # Error Handling
//
// Tool execution errors are returned as JSON-RPC error responses with:
//   - code: -32000 (tool execution failure), -32602 (invalid params) or
//     -32601 (unknown method)
//   - message: Human-readable error description
//   - data: Additional error details (typically the Go error string)
//
// # Usage
//
// The server is typically started by an MCP client:
//
//	srv := server.New(cfg, nil)
//	if err := srv.Run(ctx); err != nil {
//	    log.Fatal(err)
//	}
package server
