package ratelimit

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/dmmcquay/nogo/internal/config"
	"github.com/dmmcquay/nogo/internal/logging"
)

var ErrRateLimited = errors.New("rate limit exceeded")

// Limiter throttles MCP tool calls with one shared bucket and optional
// per-tool buckets. A nil *Limiter allows everything.
type Limiter struct {
	logger logging.ContextLogger
	now    func() time.Time
	global *TokenBucket
	// tools is keyed by lower-cased tool name since config keys arrive folded.
	tools map[string]*TokenBucket
	limit map[string]int
	cfg   config.RateLimitConfig
}

// NewLimiter returns nil when rate limiting is disabled.
func NewLimiter(cfg config.RateLimitConfig, logger logging.ContextLogger) *Limiter {
	if !cfg.Enabled {
		return nil
	}
	return newLimiterAt(cfg, logger, time.Now)
}

func newLimiterAt(cfg config.RateLimitConfig, logger logging.ContextLogger, now func() time.Time) *Limiter {
	start := now()
	l := &Limiter{
		logger: logger,
		now:    now,
		global: newTokenBucketAt(cfg.BurstSize, perSecond(cfg.RequestsPerMin), start),
		tools:  make(map[string]*TokenBucket, len(cfg.PerToolLimits)),
		limit:  make(map[string]int, len(cfg.PerToolLimits)),
		cfg:    cfg,
	}
	for tool, perMin := range cfg.PerToolLimits {
		// Per-tool bursts keep the same ratio to the rate as the global bucket.
		burst := cfg.BurstSize * perMin / cfg.RequestsPerMin
		if burst < 1 {
			burst = 1
		}
		key := strings.ToLower(tool)
		l.tools[key] = newTokenBucketAt(burst, perSecond(perMin), start)
		l.limit[key] = perMin
	}
	return l
}

func perSecond(perMin int) float64 {
	return float64(perMin) / 60.0
}

// Allow takes a token for tool. The error wraps ErrRateLimited and says how
// long to back off.
func (l *Limiter) Allow(tool string) error {
	if l == nil {
		return nil
	}

	now := l.now()
	if !l.global.Take(now) {
		wait := l.global.RetryAfter(now)
		l.logger.Warn("Global rate limit exceeded", "tool", tool, "retry_after", wait.String())
		return fmt.Errorf("%w: retry in %s", ErrRateLimited, wait.Round(time.Millisecond))
	}

	bucket, ok := l.tools[strings.ToLower(tool)]
	if ok && !bucket.Take(now) {
		l.global.Refund()
		wait := bucket.RetryAfter(now)
		l.logger.Warn("Tool rate limit exceeded", "tool", tool, "retry_after", wait.String())
		return fmt.Errorf("%w for tool %s: retry in %s", ErrRateLimited, tool, wait.Round(time.Millisecond))
	}
	return nil
}

// ToolStatus is a per-tool snapshot for Status.
type ToolStatus struct {
	Tool           string  `json:"tool"`
	RequestsPerMin int     `json:"requestsPerMin"`
	Tokens         float64 `json:"tokens"`
}

// Status reports the limiter configuration and current bucket levels.
type Status struct {
	Enabled        bool         `json:"enabled"`
	RequestsPerMin int          `json:"requestsPerMin,omitempty"`
	BurstSize      int          `json:"burstSize,omitempty"`
	Tokens         float64      `json:"tokens,omitempty"`
	Tools          []ToolStatus `json:"tools,omitempty"`
}

func (l *Limiter) Status() Status {
	if l == nil {
		return Status{}
	}

	now := l.now()
	st := Status{
		Enabled:        true,
		RequestsPerMin: l.cfg.RequestsPerMin,
		BurstSize:      l.cfg.BurstSize,
		Tokens:         l.global.Available(now),
	}
	for tool, bucket := range l.tools {
		st.Tools = append(st.Tools, ToolStatus{
			Tool:           tool,
			RequestsPerMin: l.limit[tool],
			Tokens:         bucket.Available(now),
		})
	}
	sort.Slice(st.Tools, func(i, j int) bool { return st.Tools[i].Tool < st.Tools[j].Tool })
	return st
}
