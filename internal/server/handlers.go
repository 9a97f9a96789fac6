package server

import (
	"context"
	"encoding/json"
	"fmt"
	"image"
	"log"
	"strings"
	"time"

	"github.com/ironsheep/glyphseg-mcp/internal/config"
	"github.com/ironsheep/glyphseg-mcp/internal/imaging"
	"github.com/ironsheep/glyphseg-mcp/internal/recognize"
	"github.com/ironsheep/glyphseg-mcp/internal/segment"
)

// ToolCallParams represents the parameters for a tools/call MCP request.
type ToolCallParams struct {
	// Name is the tool to invoke (e.g., "glyph_load", "glyph_recognize").
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

	start := time.Now()
	result, err := s.executeTool(ctx, params.Name, params.Arguments)
	if s.cfg.Debug() {
		log.Printf("Tool %s finished in %v (err=%v)", params.Name, time.Since(start), err)
	}
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
					"text": mustMarshalJSON(result),
				},
			},
		},
	}
}

// executeTool dispatches tool execution to the appropriate handler function.
//
// Each tool handler:
//  1. Unmarshals arguments from JSON
//  2. Merges per-call overrides over a copy of the server configuration
//  3. Loads (and if requested binarizes) images through the cache
//  4. Calls the appropriate imaging/segment/recognize function
//  5. Returns the result or error
func (s *Server) executeTool(ctx context.Context, name string, args json.RawMessage) (interface{}, error) {
	switch name {
	// Image Information
	case "glyph_load":
		return s.handleGlyphLoad(args)

	// Preprocessing
	case "glyph_binarize":
		return s.handleGlyphBinarize(args)

	// Segmentation
	case "glyph_extract_blobs":
		return s.handleGlyphExtractBlobs(args)
	case "glyph_blob_features":
		return s.handleGlyphBlobFeatures(args)
	case "glyph_overlay":
		return s.handleGlyphOverlay(args)

	// Recognition
	case "glyph_recognize":
		return s.handleGlyphRecognize(ctx, args)
	case "glyph_recognize_batch":
		return s.handleGlyphRecognizeBatch(ctx, args)

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

// mustMarshalJSON converts a value to pretty-printed JSON string.
// Panics are suppressed; on marshal failure, returns an empty string.
func mustMarshalJSON(v interface{}) string {
	b, _ := json.MarshalIndent(v, "", "  ")
	return string(b)
}

// === Shared argument handling ===

type regionArgs struct {
	X1 int `json:"x1"`
	Y1 int `json:"y1"`
	X2 int `json:"x2"`
	Y2 int `json:"y2"`
}

func (r regionArgs) rect() image.Rectangle {
	return image.Rect(r.X1, r.Y1, r.X2, r.Y2)
}

// segmentArgs are optional overrides; nil means use the configured value.
type segmentArgs struct {
	XMergeRadius *int    `json:"x_merge_radius"`
	YMergeRadius *int    `json:"y_merge_radius"`
	MergeMode    *string `json:"merge_mode"`
	Binarize     *bool   `json:"binarize"`
}

type recognizeArgs struct {
	segmentArgs
	Whitelist           *string  `json:"whitelist"`
	Blacklist           *string  `json:"blacklist"`
	ConfidenceThreshold *float64 `json:"confidence_threshold"`
}

// settings returns a copy of the server configuration with the overrides
// applied. The server's own configuration is never modified.
func (s *Server) settings(a segmentArgs) (config.Config, error) {
	cfg := s.cfg
	if a.XMergeRadius != nil {
		cfg.XMergeRadius = *a.XMergeRadius
	}
	if a.YMergeRadius != nil {
		cfg.YMergeRadius = *a.YMergeRadius
	}
	if a.MergeMode != nil {
		cfg.MergeMode = *a.MergeMode
	}
	if a.Binarize != nil {
		cfg.Binarize = *a.Binarize
	}
	if err := cfg.Validate(); err != nil {
		return config.Config{}, err
	}
	return cfg, nil
}

func (s *Server) recognizeSettings(a recognizeArgs) (config.Config, error) {
	cfg, err := s.settings(a.segmentArgs)
	if err != nil {
		return config.Config{}, err
	}
	if a.Whitelist != nil {
		cfg.Whitelist = *a.Whitelist
	}
	if a.Blacklist != nil {
		cfg.Blacklist = *a.Blacklist
	}
	if a.ConfidenceThreshold != nil {
		cfg.ConfidenceThreshold = *a.ConfidenceThreshold
	}
	if err := cfg.Validate(); err != nil {
		return config.Config{}, err
	}
	return cfg, nil
}

// prepare loads the image the segmenter should see for cfg.
func (s *Server) prepare(path string, cfg config.Config) (image.Image, error) {
	if !cfg.Binarize {
		return s.cache.Load(path)
	}
	return s.cache.LoadBinarized(path, &cfg.Binarizer)
}

func (s *Server) extract(path string, a segmentArgs) (image.Image, []segment.Blob, error) {
	cfg, err := s.settings(a)
	if err != nil {
		return nil, nil, err
	}
	opts, err := cfg.Segment()
	if err != nil {
		return nil, nil, err
	}
	ext, err := segment.NewExtractor(opts)
	if err != nil {
		return nil, nil, err
	}
	img, err := s.prepare(path, cfg)
	if err != nil {
		return nil, nil, err
	}
	blobs, err := ext.ExtractImage(img)
	if err != nil {
		return nil, nil, err
	}
	return img, blobs, nil
}

// recognizer builds a recognizer for cfg. Binarization is left to prepare so
// that the cache can reuse it.
func (s *Server) recognizer(cfg config.Config) (*recognize.Recognizer, error) {
	segOpts, err := cfg.Segment()
	if err != nil {
		return nil, err
	}
	ext, err := segment.NewExtractor(segOpts)
	if err != nil {
		return nil, err
	}
	opts := cfg.Recognize()
	opts.Binarizer = nil
	return recognize.New(ext, s.classifier, opts)
}

// === Result types ===

// Box is a blob rectangle: top-left corner plus size, in pixels.
type Box struct {
	X      int `json:"x"`
	Y      int `json:"y"`
	Width  int `json:"width"`
	Height int `json:"height"`
}

func boxOf(r image.Rectangle) Box {
	return Box{X: r.Min.X, Y: r.Min.Y, Width: r.Dx(), Height: r.Dy()}
}

// BlobInfo describes one extracted blob.
type BlobInfo struct {
	Index       int     `json:"index"`
	Box         Box     `json:"box"`
	AspectRatio float64 `json:"aspect_ratio"`
	ImageBase64 string  `json:"image_base64,omitempty"`
}

// ExtractBlobsResult is returned by glyph_extract_blobs.
type ExtractBlobsResult struct {
	ImageWidth  int        `json:"image_width"`
	ImageHeight int        `json:"image_height"`
	Count       int        `json:"count"`
	Blobs       []BlobInfo `json:"blobs"`
}

// BlobFeaturesResult is returned by glyph_blob_features.
type BlobFeaturesResult struct {
	Index       int       `json:"index"`
	Box         Box       `json:"box"`
	AspectRatio float64   `json:"aspect_ratio"`
	Features    []float64 `json:"features"`

	// Bitmap renders the 16x20 part of Features, '#' for ink.
	Bitmap []string `json:"bitmap"`
}

// GlyphResult is one recognized glyph.
type GlyphResult struct {
	Index      int                   `json:"index"`
	Box        Box                   `json:"box"`
	Candidates []recognize.Candidate `json:"candidates"`
}

// RecognizeResult is returned by glyph_recognize and per image by
// glyph_recognize_batch.
type RecognizeResult struct {
	Path   string        `json:"path,omitempty"`
	Text   string        `json:"text"`
	Glyphs []GlyphResult `json:"glyphs"`
}

// RecognizeBatchResult is returned by glyph_recognize_batch.
type RecognizeBatchResult struct {
	Results []RecognizeResult `json:"results"`
}

func toRecognizeResult(path string, res *recognize.Result) RecognizeResult {
	out := RecognizeResult{Path: path, Text: res.Text, Glyphs: make([]GlyphResult, len(res.Glyphs))}
	for i, g := range res.Glyphs {
		candidates := g.Candidates
		if candidates == nil {
			candidates = []recognize.Candidate{}
		}
		out.Glyphs[i] = GlyphResult{Index: i, Box: boxOf(g.Bounds), Candidates: candidates}
	}
	return out
}

// === Image Information Handlers ===

type glyphLoadArgs struct {
	Path string `json:"path"`
}

func (s *Server) handleGlyphLoad(args json.RawMessage) (interface{}, error) {
	var a glyphLoadArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	return imaging.LoadImageInfo(s.cache, a.Path)
}

// === Preprocessing Handlers ===

type glyphBinarizeArgs struct {
	Path   string      `json:"path"`
	Region *regionArgs `json:"region,omitempty"`
	Scale  float64     `json:"scale"`
}

func (s *Server) handleGlyphBinarize(args json.RawMessage) (interface{}, error) {
	var a glyphBinarizeArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	if a.Scale == 0 {
		a.Scale = 1.0
	}
	bw, err := s.cache.LoadBinarized(a.Path, &s.cfg.Binarizer)
	if err != nil {
		return nil, err
	}
	if a.Region == nil {
		return imaging.Encode(bw, a.Scale)
	}
	return imaging.Crop(bw, a.Region.X1, a.Region.Y1, a.Region.X2, a.Region.Y2, a.Scale)
}

// === Segmentation Handlers ===

type glyphExtractBlobsArgs struct {
	Path string `json:"path"`
	segmentArgs
	IncludeImages bool    `json:"include_images"`
	Scale         float64 `json:"scale"`
}

func (s *Server) handleGlyphExtractBlobs(args json.RawMessage) (interface{}, error) {
	var a glyphExtractBlobsArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	if a.Scale == 0 {
		a.Scale = 1.0
	}
	img, blobs, err := s.extract(a.Path, a.segmentArgs)
	if err != nil {
		return nil, err
	}

	result := &ExtractBlobsResult{
		ImageWidth:  img.Bounds().Dx(),
		ImageHeight: img.Bounds().Dy(),
		Count:       len(blobs),
		Blobs:       make([]BlobInfo, len(blobs)),
	}
	for i, b := range blobs {
		info := BlobInfo{Index: i, Box: boxOf(b.Bounds), AspectRatio: b.AspectRatio()}
		if a.IncludeImages {
			enc, err := imaging.Encode(b.Image, a.Scale)
			if err != nil {
				return nil, fmt.Errorf("blob %d: %w", i, err)
			}
			info.ImageBase64 = enc.ImageBase64
		}
		result.Blobs[i] = info
	}
	return result, nil
}

type glyphBlobFeaturesArgs struct {
	Path  string `json:"path"`
	Index int    `json:"index"`
	segmentArgs
}

func (s *Server) handleGlyphBlobFeatures(args json.RawMessage) (interface{}, error) {
	var a glyphBlobFeaturesArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	_, blobs, err := s.extract(a.Path, a.segmentArgs)
	if err != nil {
		return nil, err
	}
	if a.Index < 0 || a.Index >= len(blobs) {
		return nil, fmt.Errorf("blob index %d out of range, image has %d blobs", a.Index, len(blobs))
	}

	blob := blobs[a.Index]
	features := blob.Features()
	bitmap := make([]string, segment.FeatureHeight)
	for y := range bitmap {
		var row strings.Builder
		for x := 0; x < segment.FeatureWidth; x++ {
			if features[y*segment.FeatureWidth+x] == 0 {
				row.WriteByte('#')
			} else {
				row.WriteByte('.')
			}
		}
		bitmap[y] = row.String()
	}

	return &BlobFeaturesResult{
		Index:       a.Index,
		Box:         boxOf(blob.Bounds),
		AspectRatio: blob.AspectRatio(),
		Features:    features,
		Bitmap:      bitmap,
	}, nil
}

type glyphOverlayArgs struct {
	Path string `json:"path"`
	segmentArgs
	ShowIndices *bool  `json:"show_indices"`
	BoxColor    string `json:"box_color"`
}

func (s *Server) handleGlyphOverlay(args json.RawMessage) (interface{}, error) {
	var a glyphOverlayArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	showIndices := a.ShowIndices == nil || *a.ShowIndices

	prepared, blobs, err := s.extract(a.Path, a.segmentArgs)
	if err != nil {
		return nil, err
	}
	original, err := s.cache.Load(a.Path)
	if err != nil {
		return nil, err
	}

	// Binarized images are anchored at the origin.
	shift := original.Bounds().Min.Sub(prepared.Bounds().Min)
	boxes := make([]image.Rectangle, len(blobs))
	for i, b := range blobs {
		boxes[i] = b.Bounds.Add(shift)
	}
	return imaging.BoxOverlay(original, boxes, showIndices, a.BoxColor)
}

// === Recognition Handlers ===

type glyphRecognizeArgs struct {
	Path   string      `json:"path"`
	Region *regionArgs `json:"region,omitempty"`
	recognizeArgs
}

func (s *Server) handleGlyphRecognize(ctx context.Context, args json.RawMessage) (interface{}, error) {
	var a glyphRecognizeArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	cfg, err := s.recognizeSettings(a.recognizeArgs)
	if err != nil {
		return nil, err
	}
	r, err := s.recognizer(cfg)
	if err != nil {
		return nil, err
	}
	img, err := s.prepare(a.Path, cfg)
	if err != nil {
		return nil, err
	}

	var res *recognize.Result
	if a.Region != nil {
		res, err = r.RecognizeRect(ctx, img, a.Region.rect().Add(img.Bounds().Min))
	} else {
		res, err = r.Recognize(ctx, img)
	}
	if err != nil {
		return nil, err
	}
	out := toRecognizeResult("", res)
	return &out, nil
}

type glyphRecognizeBatchArgs struct {
	Paths []string `json:"paths"`
	recognizeArgs
}

func (s *Server) handleGlyphRecognizeBatch(ctx context.Context, args json.RawMessage) (interface{}, error) {
	var a glyphRecognizeBatchArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	if len(a.Paths) == 0 {
		return nil, fmt.Errorf("paths must not be empty")
	}
	cfg, err := s.recognizeSettings(a.recognizeArgs)
	if err != nil {
		return nil, err
	}
	r, err := s.recognizer(cfg)
	if err != nil {
		return nil, err
	}

	imgs := make([]image.Image, len(a.Paths))
	for i, path := range a.Paths {
		if imgs[i], err = s.prepare(path, cfg); err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
	}

	results, err := r.RecognizeAll(ctx, imgs)
	if err != nil {
		return nil, err
	}

	out := &RecognizeBatchResult{Results: make([]RecognizeResult, len(results))}
	for i, res := range results {
		out.Results[i] = toRecognizeResult(a.Paths[i], res)
	}
	return out, nil
}
