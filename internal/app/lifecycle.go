package app

import (
	"sync"

	"mood-canvas/internal/eventbus"
	"mood-canvas/internal/gui"
	"mood-canvas/internal/logger"
)

type Lifecycle struct {
	guiManager *gui.Manager
	bus        *eventbus.Bus
	handlers   *Handlers
	logger     logger.Logger
	once       sync.Once
}

func NewLifecycle(gm *gui.Manager, bus *eventbus.Bus, log logger.Logger) *Lifecycle {
	return &Lifecycle{
		guiManager: gm,
		bus:        bus,
		logger:     log,
	}
}

func (l *Lifecycle) SetHandlers(h *Handlers) {
	l.handlers = h
}

// Shutdown is safe to call from the window close hook and a signal handler.
func (l *Lifecycle) Shutdown() {
	l.once.Do(l.shutdown)
}

func (l *Lifecycle) shutdown() {
	l.logger.Info("Lifecycle", "shutdown sequence initiated", nil)

	// In-flight runs publish to the bus, so stop them first.
	if l.handlers != nil {
		l.handlers.Shutdown()
		l.logger.Debug("Lifecycle", "handlers stopped", nil)
	}

	if l.guiManager != nil {
		l.guiManager.Shutdown()
		l.logger.Debug("Lifecycle", "GUI manager shutdown completed", nil)
	}

	if l.bus != nil {
		l.bus.Shutdown()
		l.logger.Debug("Lifecycle", "event bus drained", map[string]interface{}{
			"dropped_events": l.bus.Dropped(),
		})
	}

	l.logger.Info("Lifecycle", "shutdown sequence completed", nil)
}
