package server

// Tool represents an MCP tool definition
type Tool struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description"`
	InputSchema map[string]interface{} `json:"inputSchema"`
}

func pathProperty() map[string]interface{} {
	return map[string]interface{}{
		"type":        "string",
		"description": "Absolute path to the image file",
	}
}

func regionProperty(description string) map[string]interface{} {
	return map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"x1": map[string]interface{}{"type": "integer", "description": "Left edge X coordinate (0-based)"},
			"y1": map[string]interface{}{"type": "integer", "description": "Top edge Y coordinate (0-based)"},
			"x2": map[string]interface{}{"type": "integer", "description": "Right edge X coordinate (exclusive)"},
			"y2": map[string]interface{}{"type": "integer", "description": "Bottom edge Y coordinate (exclusive)"},
		},
		"required":    []string{"x1", "y1", "x2", "y2"},
		"description": description,
	}
}

// segmentProperties are the per-call segmentation overrides shared by every
// tool that extracts blobs. Omitted values come from the server configuration.
func segmentProperties(props map[string]interface{}) map[string]interface{} {
	props["x_merge_radius"] = map[string]interface{}{
		"type":        "integer",
		"description": "Horizontal padding used to merge nearby fragments (default from config, usually 1)",
	}
	props["y_merge_radius"] = map[string]interface{}{
		"type":        "integer",
		"description": "Vertical padding used to merge nearby fragments such as the dot of an i (default from config, usually 3)",
	}
	props["merge_mode"] = map[string]interface{}{
		"type":        "string",
		"enum":        []string{"single", "fixed"},
		"description": "single: one merge pass. fixed: repeat until no boxes overlap",
	}
	props["binarize"] = map[string]interface{}{
		"type":        "boolean",
		"description": "Run the grayscale/denoise/contrast/threshold chain before segmenting. Disable for images that are already black and white",
	}
	return props
}

// recognizeProperties adds the output filters on top of the segmentation overrides.
func recognizeProperties(props map[string]interface{}) map[string]interface{} {
	props = segmentProperties(props)
	props["whitelist"] = map[string]interface{}{
		"type":        "string",
		"description": "Only these characters may appear in the text. Empty allows the whole alphabet",
	}
	props["blacklist"] = map[string]interface{}{
		"type":        "string",
		"description": "These characters never appear in the text",
	}
	props["confidence_threshold"] = map[string]interface{}{
		"type":        "number",
		"description": "Minimum best score (0-1) for a glyph to contribute a character (default 0.1)",
	}
	return props
}

// GetToolDefinitions returns all available tools
func GetToolDefinitions() []Tool {
	return []Tool{
		// Image Information
		{
			Name:        "glyph_load",
			Description: "Load an image file and return its dimensions, format, color model and the number of samples per pixel the segmenter reads.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": pathProperty(),
				},
				"required": []string{"path"},
			},
		},

		// Preprocessing
		{
			Name:        "glyph_binarize",
			Description: "Return the black and white image the segmenter sees, as base64 PNG. Use this to check that characters survive thresholding before tuning merge options.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path":   pathProperty(),
					"region": regionProperty("Optional region to return. If omitted, returns the entire image."),
					"scale": map[string]interface{}{
						"type":        "number",
						"description": "Optional scale factor (e.g., 2.0 to double size). Default 1.0",
						"default":     1.0,
					},
				},
				"required": []string{"path"},
			},
		},

		// Segmentation
		{
			Name:        "glyph_extract_blobs",
			Description: "Segment a line of text into per-character blobs and return their bounding boxes, left to right. Touching characters are split at their thinnest column.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": segmentProperties(map[string]interface{}{
					"path": pathProperty(),
					"include_images": map[string]interface{}{
						"type":        "boolean",
						"description": "Also return each blob as base64 PNG. Default false",
					},
					"scale": map[string]interface{}{
						"type":        "number",
						"description": "Scale factor for returned blob images. Default 1.0",
						"default":     1.0,
					},
				}),
				"required": []string{"path"},
			},
		},
		{
			Name:        "glyph_blob_features",
			Description: "Return the 16x20 normalized bitmap and aspect ratio (321 values) a classifier receives for one blob.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": segmentProperties(map[string]interface{}{
					"path": pathProperty(),
					"index": map[string]interface{}{
						"type":        "integer",
						"description": "Blob index as returned by glyph_extract_blobs",
					},
				}),
				"required": []string{"path", "index"},
			},
		},
		{
			Name:        "glyph_overlay",
			Description: "Draw the blob boxes on the original image and return it as base64 PNG. Useful for checking segmentation visually.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": segmentProperties(map[string]interface{}{
					"path": pathProperty(),
					"show_indices": map[string]interface{}{
						"type":        "boolean",
						"description": "Label each box with its blob index. Default true",
						"default":     true,
					},
					"box_color": map[string]interface{}{
						"type":        "string",
						"description": "Box color as hex (e.g., '#FF0000'). Default gives every box its own color",
					},
				}),
				"required": []string{"path"},
			},
		},

		// Recognition
		{
			Name:        "glyph_recognize",
			Description: "Segment an image and classify each glyph with Tesseract in single character mode. Returns the text and per-glyph candidates.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": recognizeProperties(map[string]interface{}{
					"path":   pathProperty(),
					"region": regionProperty("Optional region to recognize. Glyph boxes are then relative to the region's top-left corner."),
				}),
				"required": []string{"path"},
			},
		},
		{
			Name:        "glyph_recognize_batch",
			Description: "Recognize several images concurrently with the same options. Results are returned in input order.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": recognizeProperties(map[string]interface{}{
					"paths": map[string]interface{}{
						"type":        "array",
						"items":       map[string]interface{}{"type": "string"},
						"description": "Absolute paths to the image files",
					},
				}),
				"required": []string{"paths"},
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
