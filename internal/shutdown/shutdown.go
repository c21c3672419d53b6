package shutdown

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/dmmcquay/nogo/internal/logging"
)

type component struct {
	name string
	fn   func(context.Context) error
}

// Manager stops registered components when the game ends or the process is
// signalled, whichever comes first.
type Manager struct {
	logger       logging.ContextLogger
	mu           sync.Mutex
	components   []component
	done         chan struct{}
	shutdownOnce sync.Once
	err          error
	signals      []os.Signal
}

func NewManager(logger logging.ContextLogger) *Manager {
	return &Manager{
		logger:  logger,
		done:    make(chan struct{}),
		signals: []os.Signal{os.Interrupt, syscall.SIGTERM},
	}
}

// Register adds a component. Components stop in reverse order of
// registration (LIFO).
func (m *Manager) Register(name string, fn func(context.Context) error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.components = append(m.components, component{name: name, fn: fn})
}

// HandleSignals shuts down on SIGINT or SIGTERM. The returned context is
// cancelled when a signal arrives so a running game stops asking for moves.
func (m *Manager) HandleSignals(ctx context.Context, timeout time.Duration) context.Context {
	ctx, cancel := context.WithCancel(ctx)
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, m.signals...)

	go func() {
		defer signal.Stop(sigCh)
		select {
		case sig := <-sigCh:
			m.logger.Info("Received shutdown signal", "signal", sig.String())
			cancel()
			m.Shutdown(timeout)
		case <-m.done:
			cancel()
		}
	}()

	return ctx
}

// Shutdown stops every component once, sharing one deadline. Later calls
// return the first call's result.
func (m *Manager) Shutdown(timeout time.Duration) error {
	m.shutdownOnce.Do(func() {
		m.mu.Lock()
		components := make([]component, len(m.components))
		copy(components, m.components)
		m.mu.Unlock()

		m.logger.Debug("Starting graceful shutdown", "timeout", timeout.String(), "components", len(components))
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()

		var errs []error
		for i := len(components) - 1; i >= 0; i-- {
			c := components[i]
			if err := m.stop(ctx, c); err != nil {
				errs = append(errs, fmt.Errorf("%s: %w", c.name, err))
			}
		}

		m.err = errors.Join(errs...)
		if m.err != nil {
			m.logger.Error("Graceful shutdown completed with errors", "errors", len(errs))
		}
		close(m.done)
	})

	<-m.done
	return m.err
}

func (m *Manager) stop(ctx context.Context, c component) error {
	if err := ctx.Err(); err != nil {
		m.logger.Error("Shutdown deadline passed before component stopped", "component", c.name)
		return err
	}

	start := time.Now()
	err := c.fn(ctx)
	elapsed := time.Since(start)
	if err != nil {
		m.logger.Error("Failed to shutdown component",
			"component", c.name,
			"error", err,
			"elapsed", elapsed.String())
	} else {
		m.logger.Debug("Component shutdown complete",
			"component", c.name,
			"elapsed", elapsed.String())
	}
	return err
}

// Done returns a channel that's closed when shutdown is complete.
func (m *Manager) Done() <-chan struct{} {
	return m.done
}

// WaitForShutdown blocks until shutdown is complete.
func (m *Manager) WaitForShutdown() {
	<-m.done
}
