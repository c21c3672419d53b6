package mcp

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/dmmcquay/nogo/internal/board"
	"github.com/dmmcquay/nogo/internal/cache"
	"github.com/dmmcquay/nogo/internal/game"
	"github.com/dmmcquay/nogo/internal/logging"
	"github.com/dmmcquay/nogo/internal/ratelimit"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// ToolsHandler answers questions about saved Atari-Go positions.
type ToolsHandler struct {
	logger     logging.ContextLogger
	middleware *Middleware
	cache      *cache.Manager
}

// NewToolsHandler creates a new tools handler.
func NewToolsHandler(logger logging.ContextLogger) *ToolsHandler {
	return &ToolsHandler{logger: logger}
}

// SetMiddleware sets the middleware for the tools handler.
func (h *ToolsHandler) SetMiddleware(middleware *Middleware) {
	h.middleware = middleware
}

// SetCache enables memoization of describePosition and listLegalMoves.
func (h *ToolsHandler) SetCache(c *cache.Manager) {
	h.cache = c
}

func positionArgs() []mcp.ToolOption {
	return []mcp.ToolOption{
		mcp.WithString("content",
			mcp.Description("Save file content: a header line followed by one row per line using X, O and ."),
		),
		mcp.WithString("path",
			mcp.Description("Path of a save file to read when content is not given"),
		),
	}
}

func coordArgs() []mcp.ToolOption {
	return []mcp.ToolOption{
		mcp.WithNumber("row",
			mcp.Description("0-indexed row, 0 is the top line"),
			mcp.Required(),
		),
		mcp.WithNumber("col",
			mcp.Description("0-indexed column, 0 is the left edge"),
			mcp.Required(),
		),
	}
}

func (h *ToolsHandler) register(s *server.MCPServer, tool mcp.Tool, handler ToolHandler) {
	if h.middleware != nil {
		handler = h.middleware.WrapTool(tool.Name, handler)
	}
	s.AddTool(tool, server.ToolHandlerFunc(handler))
}

// RegisterTools registers all tools with the MCP server.
func (h *ToolsHandler) RegisterTools(s *server.MCPServer) {
	describeOpts := append([]mcp.ToolOption{
		mcp.WithDescription("Describe a saved Atari-Go position: side to move, stone counts, groups and groups in atari."),
	}, positionArgs()...)
	h.register(s, mcp.NewTool("describePosition", describeOpts...), h.HandleDescribePosition)

	legalOpts := append([]mcp.ToolOption{
		mcp.WithDescription("List every legal point for a color (default: the side to move)."),
		mcp.WithString("color",
			mcp.Description("black, white, X or O"),
		),
	}, positionArgs()...)
	h.register(s, mcp.NewTool("listLegalMoves", legalOpts...), h.HandleListLegalMoves)

	groupOpts := append([]mcp.ToolOption{
		mcp.WithDescription("Show the group containing a stone with its stones and liberties."),
	}, positionArgs()...)
	groupOpts = append(groupOpts, coordArgs()...)
	h.register(s, mcp.NewTool("inspectGroup", groupOpts...), h.HandleInspectGroup)

	evalOpts := append([]mcp.ToolOption{
		mcp.WithDescription("Try a move without saving it: legality, captures, and whether it wins."),
		mcp.WithString("color",
			mcp.Description("black, white, X or O (default: the side to move)"),
		),
	}, positionArgs()...)
	evalOpts = append(evalOpts, coordArgs()...)
	h.register(s, mcp.NewTool("evaluateMove", evalOpts...), h.HandleEvaluateMove)

	h.register(s, mcp.NewTool("serverStatus",
		mcp.WithDescription("Report analysis cache counters and rate limit levels."),
	), h.HandleServerStatus)
}

type groupSummary struct {
	Color     string      `json:"color"`
	Size      int         `json:"size"`
	Liberties int         `json:"liberties"`
	InAtari   bool        `json:"inAtari"`
	Stones    []coordJSON `json:"stones,omitempty"`
	Libs      []coordJSON `json:"libertyPoints,omitempty"`
}

type coordJSON struct {
	Row int `json:"row"`
	Col int `json:"col"`
}

type positionDescription struct {
	Height         int            `json:"height"`
	Width          int            `json:"width"`
	ToMove         string         `json:"toMove"`
	BlackStones    int            `json:"blackStones"`
	WhiteStones    int            `json:"whiteStones"`
	LegalMoveCount int            `json:"legalMoveCount"`
	Groups         []groupSummary `json:"groups"`
	Render         string         `json:"render"`
}

type moveEvaluation struct {
	Row       int    `json:"row"`
	Col       int    `json:"col"`
	Color     string `json:"color"`
	Legal     bool   `json:"legal"`
	Reason    string `json:"reason,omitempty"`
	Captured  int    `json:"captured"`
	Wins      bool   `json:"wins"`
	Liberties int    `json:"liberties"`
}

// HandleDescribePosition handles the describePosition tool.
func (h *ToolsHandler) HandleDescribePosition(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	logger := h.requestLogger(ctx, "describePosition")

	args, err := argsMap(request)
	if err != nil {
		return nil, err
	}
	snap, err := loadPosition(args)
	if err != nil {
		return nil, err
	}

	key, err := positionKey("describePosition", snap)
	if err != nil {
		return nil, err
	}
	if result, ok := h.cachedResult(key, logger); ok {
		return result, nil
	}

	b := snap.State.Board()
	desc := positionDescription{
		Height:         b.Height(),
		Width:          b.Width(),
		ToMove:         snap.State.Turn().String(),
		BlackStones:    len(b.Stones(board.Black)),
		WhiteStones:    len(b.Stones(board.White)),
		LegalMoveCount: len(snap.State.LegalMoves()),
		Groups:         []groupSummary{},
		Render:         b.String(),
	}
	for _, g := range board.Groups(b) {
		desc.Groups = append(desc.Groups, summarize(g, false))
	}

	logger.Debug("Described position", "height", desc.Height, "width", desc.Width, "groups", len(desc.Groups))
	return h.storeResult(key, desc)
}

// HandleListLegalMoves handles the listLegalMoves tool.
func (h *ToolsHandler) HandleListLegalMoves(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	logger := h.requestLogger(ctx, "listLegalMoves")

	args, err := argsMap(request)
	if err != nil {
		return nil, err
	}
	snap, err := loadPosition(args)
	if err != nil {
		return nil, err
	}
	color, err := colorArg(args, snap.State.Turn())
	if err != nil {
		return nil, err
	}

	key, err := positionKey("listLegalMoves", snap, color.String())
	if err != nil {
		return nil, err
	}
	if result, ok := h.cachedResult(key, logger); ok {
		return result, nil
	}

	moves := game.LegalMoves(snap.State.Board(), color)
	out := struct {
		Color string      `json:"color"`
		Count int         `json:"count"`
		Moves []coordJSON `json:"moves"`
	}{
		Color: color.String(),
		Count: len(moves),
		Moves: toJSON(moves),
	}

	logger.Debug("Listed legal moves", "color", out.Color, "count", out.Count)
	return h.storeResult(key, out)
}

// HandleInspectGroup handles the inspectGroup tool.
func (h *ToolsHandler) HandleInspectGroup(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	logger := h.requestLogger(ctx, "inspectGroup")

	args, err := argsMap(request)
	if err != nil {
		return nil, err
	}
	snap, err := loadPosition(args)
	if err != nil {
		return nil, err
	}
	c, err := coordArg(args)
	if err != nil {
		return nil, err
	}

	g, err := board.GroupOf(snap.State.Board(), c)
	if err != nil {
		return nil, fmt.Errorf("inspect %v: %w", c, err)
	}

	logger.Debug("Inspected group", "row", c.Row, "col", c.Col, "size", len(g.Stones))
	return jsonResult(summarize(g, true))
}

// HandleEvaluateMove handles the evaluateMove tool. The position is never
// modified.
func (h *ToolsHandler) HandleEvaluateMove(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	logger := h.requestLogger(ctx, "evaluateMove")

	args, err := argsMap(request)
	if err != nil {
		return nil, err
	}
	snap, err := loadPosition(args)
	if err != nil {
		return nil, err
	}
	color, err := colorArg(args, snap.State.Turn())
	if err != nil {
		return nil, err
	}
	c, err := coordArg(args)
	if err != nil {
		return nil, err
	}

	eval := moveEvaluation{Row: c.Row, Col: c.Col, Color: color.String()}
	res, err := game.ResolveMove(snap.State.Board().Clone(), c, color)
	switch {
	case err == nil:
		eval.Legal = true
		eval.Captured = res.CapturedStones()
		eval.Wins = eval.Captured > 0
		eval.Liberties = res.Liberties
	case errors.Is(err, board.ErrOutOfBounds):
		eval.Reason = "out_of_bounds"
	case errors.Is(err, board.ErrOccupied):
		eval.Reason = "occupied"
	case errors.Is(err, game.ErrIllegalMove):
		eval.Reason = "suicide"
	default:
		return nil, err
	}

	logger.Debug("Evaluated move", "row", c.Row, "col", c.Col, "legal", eval.Legal)
	return jsonResult(eval)
}

type serverStatus struct {
	Cache     cache.Stats      `json:"cache"`
	RateLimit ratelimit.Status `json:"rateLimit"`
}

// HandleServerStatus handles the serverStatus tool.
func (h *ToolsHandler) HandleServerStatus(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	st := serverStatus{Cache: h.cache.Stats()}
	if h.middleware != nil {
		st.RateLimit = h.middleware.rateLimiter.Status()
	}
	return jsonResult(st)
}

// positionKey identifies an analysis by the canonical save text of the
// position, so whitespace differences and path versus content hit the same
// entry. Computer seat state does not affect analysis and is left out.
func positionKey(tool string, snap game.Snapshot, extra ...string) (string, error) {
	var buf bytes.Buffer
	if err := game.Encode(&buf, game.Snapshot{State: snap.State}); err != nil {
		return "", fmt.Errorf("failed to encode position: %w", err)
	}
	return cache.Key(append([]string{tool, buf.String()}, extra...)...), nil
}

func (h *ToolsHandler) cachedResult(key string, logger logging.ContextLogger) (*mcp.CallToolResult, bool) {
	text, ok := h.cache.Get(key)
	if !ok {
		return nil, false
	}
	logger.Debug("Serving cached analysis")
	return mcp.NewToolResultText(text), true
}

func (h *ToolsHandler) storeResult(key string, v interface{}) (*mcp.CallToolResult, error) {
	text, err := formatJSON(v)
	if err != nil {
		return nil, err
	}
	h.cache.Put(key, text)
	return mcp.NewToolResultText(text), nil
}

func (h *ToolsHandler) requestLogger(ctx context.Context, tool string) logging.ContextLogger {
	if _, ok := logging.RequestIDFromContext(ctx); !ok {
		ctx = logging.ContextWithRequestID(ctx, logging.GenerateRequestID())
	}
	return h.logger.WithContext(ctx).WithField("tool", tool)
}

func argsMap(request mcp.CallToolRequest) (map[string]interface{}, error) {
	args := request.Params.Arguments
	if args == nil {
		return nil, fmt.Errorf("missing arguments")
	}
	m, ok := args.(map[string]interface{})
	if !ok {
		return nil, fmt.Errorf("invalid arguments format")
	}
	return m, nil
}

// loadPosition reads the position from "content", falling back to "path".
func loadPosition(args map[string]interface{}) (game.Snapshot, error) {
	if v, ok := args["content"]; ok {
		content, ok := v.(string)
		if !ok {
			return game.Snapshot{}, fmt.Errorf("content must be a string")
		}
		return game.Decode(strings.NewReader(content))
	}
	if v, ok := args["path"]; ok {
		path, ok := v.(string)
		if !ok || path == "" {
			return game.Snapshot{}, fmt.Errorf("path must be a non-empty string")
		}
		return game.LoadFile(path)
	}
	return game.Snapshot{}, fmt.Errorf("must provide either 'content' or 'path' parameter")
}

func intArg(args map[string]interface{}, name string) (int, error) {
	v, ok := args[name]
	if !ok {
		return 0, fmt.Errorf("missing required parameter %q", name)
	}
	switch n := v.(type) {
	case float64:
		if n != float64(int(n)) {
			return 0, fmt.Errorf("%s must be a whole number", name)
		}
		return int(n), nil
	case int:
		return n, nil
	case string:
		i, err := strconv.Atoi(strings.TrimSpace(n))
		if err != nil {
			return 0, fmt.Errorf("%s must be a number: %w", name, err)
		}
		return i, nil
	}
	return 0, fmt.Errorf("%s must be a number", name)
}

func coordArg(args map[string]interface{}) (board.Coord, error) {
	row, err := intArg(args, "row")
	if err != nil {
		return board.Coord{}, err
	}
	col, err := intArg(args, "col")
	if err != nil {
		return board.Coord{}, err
	}
	return board.Coord{Row: row, Col: col}, nil
}

func colorArg(args map[string]interface{}, def board.Color) (board.Color, error) {
	v, ok := args["color"]
	if !ok {
		return def, nil
	}
	s, _ := v.(string)
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "black", "x":
		return board.Black, nil
	case "white", "o":
		return board.White, nil
	}
	return board.Empty, fmt.Errorf("unknown color %q", v)
}

func summarize(g board.Group, detail bool) groupSummary {
	s := groupSummary{
		Color:     g.Color.String(),
		Size:      len(g.Stones),
		Liberties: g.LibertyCount(),
		InAtari:   g.LibertyCount() == 1,
	}
	if detail {
		s.Stones = toJSON(g.Stones)
		s.Libs = toJSON(g.Liberties)
	}
	return s
}

func toJSON(coords []board.Coord) []coordJSON {
	out := make([]coordJSON, 0, len(coords))
	for _, c := range coords {
		out = append(out, coordJSON{Row: c.Row, Col: c.Col})
	}
	return out
}

func formatJSON(v interface{}) (string, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to format result: %w", err)
	}
	return string(data), nil
}

func jsonResult(v interface{}) (*mcp.CallToolResult, error) {
	text, err := formatJSON(v)
	if err != nil {
		return nil, err
	}
	return mcp.NewToolResultText(text), nil
}
