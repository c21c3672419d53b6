package mcp

import (
	"context"
	"fmt"
	"time"

	"github.com/dmmcquay/nogo/internal/logging"
	"github.com/dmmcquay/nogo/internal/metrics"
	"github.com/dmmcquay/nogo/internal/ratelimit"
	"github.com/mark3labs/mcp-go/mcp"
)

// Middleware wraps MCP tool handlers with request IDs, rate limiting,
// logging, metrics and panic recovery.
type Middleware struct {
	logger      logging.ContextLogger
	metrics     metrics.Recorder
	rateLimiter *ratelimit.Limiter
}

// NewMiddleware creates a new middleware instance. A nil recorder disables
// metrics and a nil limiter disables rate limiting.
func NewMiddleware(logger logging.ContextLogger, recorder metrics.Recorder, rateLimiter *ratelimit.Limiter) *Middleware {
	if recorder == nil {
		recorder = metrics.Nop{}
	}
	return &Middleware{
		logger:      logger,
		metrics:     recorder,
		rateLimiter: rateLimiter,
	}
}

// ToolHandler is the function signature for MCP tool handlers.
type ToolHandler func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error)

// WrapTool wraps a tool handler with middleware functionality.
func (m *Middleware) WrapTool(toolName string, handler ToolHandler) ToolHandler {
	return func(ctx context.Context, request mcp.CallToolRequest) (result *mcp.CallToolResult, err error) {
		start := time.Now()
		ctx = logging.ContextWithRequestID(ctx, logging.GenerateRequestID())
		logger := m.logger.WithContext(ctx).WithField("tool", toolName)

		logger.Info("Tool request received")

		if err := m.rateLimiter.Allow(toolName); err != nil {
			m.metrics.RecordToolCall(toolName, "rate_limited", time.Since(start).Seconds())
			return nil, err
		}

		defer func() {
			if r := recover(); r != nil {
				result, err = nil, fmt.Errorf("tool %s panicked: %v", toolName, r)
			}

			status := "success"
			if err != nil {
				status = "error"
				logger.Error("Tool request failed",
					"error", err,
					"duration", time.Since(start).String(),
				)
			} else {
				logger.Info("Tool request completed",
					"duration", time.Since(start).String(),
				)
			}
			m.metrics.RecordToolCall(toolName, status, time.Since(start).Seconds())
		}()

		return handler(ctx, request)
	}
}
