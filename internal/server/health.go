package server

import (
	"context"
	"encoding/json"
	"net/http"
	"sort"
	"sync"
	"time"

	"github.com/dmmcquay/nogo/internal/logging"
)

// Status represents the health status of a component.
type Status string

const (
	StatusHealthy   Status = "healthy"
	StatusUnhealthy Status = "unhealthy"
)

// Check reports whether one component is usable.
type Check func(ctx context.Context) error

type Component struct {
	Name        string    `json:"name"`
	Status      Status    `json:"status"`
	Message     string    `json:"message,omitempty"`
	LastChecked time.Time `json:"last_checked"`
}

type HealthResponse struct {
	Status     Status      `json:"status"`
	Timestamp  time.Time   `json:"timestamp"`
	Service    string      `json:"service,omitempty"`
	Version    string      `json:"version,omitempty"`
	Components []Component `json:"components,omitempty"`
}

// Checker runs readiness checks. Liveness never consults them.
type Checker struct {
	logger  logging.ContextLogger
	service string
	version string

	mu     sync.RWMutex
	checks map[string]Check
}

func NewChecker(logger logging.ContextLogger, service, version string) *Checker {
	return &Checker{
		logger:  logger,
		service: service,
		version: version,
		checks:  make(map[string]Check),
	}
}

// RegisterCheck adds or replaces the check for name.
func (c *Checker) RegisterCheck(name string, check Check) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.checks[name] = check
}

// CheckHealth runs every check in name order with a per-check timeout.
func (c *Checker) CheckHealth(ctx context.Context) HealthResponse {
	c.mu.RLock()
	names := make([]string, 0, len(c.checks))
	for name := range c.checks {
		names = append(names, name)
	}
	checks := make(map[string]Check, len(c.checks))
	for k, v := range c.checks {
		checks[k] = v
	}
	c.mu.RUnlock()
	sort.Strings(names)

	response := c.response(StatusHealthy)
	response.Components = make([]Component, 0, len(names))

	for _, name := range names {
		component := Component{
			Name:        name,
			Status:      StatusHealthy,
			LastChecked: time.Now().UTC(),
		}

		checkCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
		err := checks[name](checkCtx)
		cancel()

		if err != nil {
			component.Status = StatusUnhealthy
			component.Message = err.Error()
			response.Status = StatusUnhealthy
			c.logger.WithField("component", name).Warn("Health check failed", "error", err)
		}
		response.Components = append(response.Components, component)
	}

	return response
}

func (c *Checker) response(status Status) HealthResponse {
	return HealthResponse{
		Status:    status,
		Timestamp: time.Now().UTC(),
		Service:   c.service,
		Version:   c.version,
	}
}

// LivenessHandler answers healthy as long as the process serves requests.
func (c *Checker) LivenessHandler(w http.ResponseWriter, r *http.Request) {
	c.writeJSON(w, http.StatusOK, c.response(StatusHealthy))
}

// ReadinessHandler answers 503 when any registered check fails.
func (c *Checker) ReadinessHandler(w http.ResponseWriter, r *http.Request) {
	ctx := logging.ContextWithCorrelationID(r.Context(), logging.GenerateCorrelationID())
	c.logger.WithContext(ctx).Debug("Performing readiness check")

	response := c.CheckHealth(ctx)

	statusCode := http.StatusOK
	if response.Status != StatusHealthy {
		statusCode = http.StatusServiceUnavailable
	}
	c.writeJSON(w, statusCode, response)
}

func (c *Checker) writeJSON(w http.ResponseWriter, statusCode int, body HealthResponse) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		c.logger.Error("Failed to encode health response", "error", err)
	}
}
