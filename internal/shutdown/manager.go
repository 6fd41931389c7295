// Package shutdown ties the GUI and headless runs to SIGINT/SIGTERM. Named
// components stop in reverse registration order, each within a timeout.
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

	"mood-canvas/internal/logger"
)

const DefaultComponentTimeout = 10 * time.Second

// ErrInterrupted wraps the error of a Run cut short by a signal.
var ErrInterrupted = errors.New("interrupted")

type Shutdownable interface {
	Shutdown()
}

// Func adapts a plain function.
type Func func()

func (f Func) Shutdown() { f() }

type component struct {
	name string
	Shutdownable
}

type Manager struct {
	components []component
	logger     logger.Logger
	timeout    time.Duration
	signals    []os.Signal

	mu       sync.Mutex
	done     chan struct{}
	ctx      context.Context
	cancel   context.CancelCauseFunc
	stopOnce sync.Once
	stop     func()
}

func NewManager(log logger.Logger) *Manager {
	ctx, cancel := context.WithCancelCause(context.Background())

	return &Manager{
		logger:  log,
		timeout: DefaultComponentTimeout,
		signals: []os.Signal{os.Interrupt, syscall.SIGTERM},
		done:    make(chan struct{}),
		ctx:     ctx,
		cancel:  cancel,
		stop:    func() {},
	}
}

// SetTimeout bounds how long each component may take to stop.
func (m *Manager) SetTimeout(d time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.timeout = d
}

// Register adds a component; name only appears in logs.
func (m *Manager) Register(name string, c Shutdownable) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.components = append(m.components, component{name: name, Shutdownable: c})
}

// Listen starts shutdown on the first SIGINT or SIGTERM.
func (m *Manager) Listen() {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, m.signals...)
	m.stop = func() { signal.Stop(sigChan) }

	go func() {
		select {
		case sig := <-sigChan:
			m.logger.Info("ShutdownManager", "shutdown signal received", map[string]interface{}{
				"signal": sig.String(),
			})
			m.shutdown(fmt.Errorf("%w by %s", ErrInterrupted, sig))
		case <-m.done:
		}
	}()
}

// Run executes fn under the manager's context and shuts down once it
// returns. If a signal or an explicit Shutdown cancelled the context first,
// the error wraps ErrInterrupted.
func (m *Manager) Run(fn func(ctx context.Context) error) error {
	err := fn(m.ctx)

	cause := context.Cause(m.ctx)
	m.Shutdown()

	if cause != nil && errors.Is(cause, ErrInterrupted) {
		if err == nil {
			return cause
		}
		return fmt.Errorf("%w: %w", cause, err)
	}
	return err
}

// Shutdown is safe to call more than once and from any goroutine.
func (m *Manager) Shutdown() {
	m.shutdown(fmt.Errorf("%w by request", ErrInterrupted))
}

func (m *Manager) shutdown(cause error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	select {
	case <-m.done:
		return
	default:
		close(m.done)
	}

	m.stopOnce.Do(m.stop)
	m.cancel(cause)

	m.logger.Info("ShutdownManager", "shutdown sequence initiated", map[string]interface{}{
		"components": len(m.components),
	})

	for i := len(m.components) - 1; i >= 0; i-- {
		c := m.components[i]
		start := time.Now()

		finished := make(chan struct{})
		go func() {
			defer close(finished)
			c.Shutdown()
		}()

		select {
		case <-finished:
			m.logger.Debug("ShutdownManager", "component stopped", map[string]interface{}{
				"component":  c.name,
				"elapsed_ms": time.Since(start).Milliseconds(),
			})
		case <-time.After(m.timeout):
			m.logger.Warning("ShutdownManager", "component shutdown timeout", map[string]interface{}{
				"component": c.name,
				"timeout":   m.timeout.String(),
			})
		}
	}

	m.logger.Info("ShutdownManager", "shutdown sequence completed", nil)
}

// Context is cancelled when shutdown begins.
func (m *Manager) Context() context.Context {
	return m.ctx
}

func (m *Manager) Done() <-chan struct{} {
	return m.done
}
