// Package pipeline runs mood resolution, circuit encoding, color collapse and
// image generation in order, reporting progress on an event bus.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"mood-canvas/internal/circuit"
	"mood-canvas/internal/eventbus"
	"mood-canvas/internal/logger"
	"mood-canvas/internal/timing"
)

// ErrBusy is returned when a run is requested while another is in flight.
var ErrBusy = errors.New("a generation is already running")

type Coordinator struct {
	resolver  MoodResolver
	encoder   Encoder
	generator ImageGenerator
	describer ImageDescriber
	bus       *eventbus.Bus
	timer     *timing.Tracker
	logger    logger.Logger

	running atomic.Bool
	mu      sync.RWMutex
	last    *Result
}

// Options wires a Coordinator. Describer may be nil to skip image description.
type Options struct {
	Resolver  MoodResolver
	Encoder   Encoder
	Generator ImageGenerator
	Describer ImageDescriber
	Bus       *eventbus.Bus
	Timer     *timing.Tracker
	Logger    logger.Logger
}

func NewCoordinator(opts Options) *Coordinator {
	if opts.Encoder == nil {
		opts.Encoder = circuit.New(circuit.MinWires)
	}
	if opts.Timer == nil {
		opts.Timer = timing.NewTracker()
	}
	if opts.Logger == nil {
		opts.Logger = logger.NoOp{}
	}

	return &Coordinator{
		resolver:  opts.Resolver,
		encoder:   opts.Encoder,
		generator: opts.Generator,
		describer: opts.Describer,
		bus:       opts.Bus,
		timer:     opts.Timer,
		logger:    opts.Logger,
	}
}

// Busy reports whether a run is in flight.
func (c *Coordinator) Busy() bool {
	return c.running.Load()
}

// LastResult returns the most recent completed run, or nil.
func (c *Coordinator) LastResult() *Result {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.last
}

// Timer exposes per-stage timings across runs.
func (c *Coordinator) Timer() *timing.Tracker {
	return c.timer
}

// Run executes one generation. Mood and circuit stages never fail; an image
// stage failure is returned together with the partial result.
func (c *Coordinator) Run(ctx context.Context, req Request) (*Result, error) {
	if !c.running.CompareAndSwap(false, true) {
		return nil, ErrBusy
	}
	defer c.running.Store(false)

	res := &Result{
		Request:      req,
		StageTimings: make(map[string]time.Duration),
	}

	c.logger.Info("Pipeline", "run started", map[string]interface{}{
		"mood_length": len(req.Mood),
		"checkout":    req.Checkout,
	})

	c.stage(res, StageMood, func() error {
		res.Resolution = c.resolver.Resolve(ctx, req.Mood, req.Checkout)
		return nil
	})

	c.stage(res, StageCircuit, func() error {
		res.State = c.encoder.Encode(res.Resolution.Color, res.Resolution.Factor)
		return nil
	})

	c.stage(res, StageCollapse, func() error {
		res.OutputColor = circuit.Collapse(res.State)
		return nil
	})

	c.logger.Info("Pipeline", "colors resolved", map[string]interface{}{
		"mood_color":   res.Resolution.Color.Hex(),
		"factor":       res.Resolution.Factor,
		"sentiment":    res.Resolution.Sentiment,
		"fallback":     res.Resolution.Fallback,
		"output_color": res.OutputColor.Hex(),
		"color_shift":  res.Resolution.Color.Distance(res.OutputColor),
	})

	err := c.stage(res, StageImage, func() error {
		img, err := c.generator.Generate(ctx, res.OutputColor)
		if err != nil {
			return err
		}
		res.Image = img
		return nil
	})
	if err != nil {
		c.finish(res, err)
		return res, fmt.Errorf("image generation: %w", err)
	}

	if c.describer != nil {
		// Description is decorative; failures are logged and ignored.
		_ = c.stage(res, StageDescribe, func() error {
			desc, err := c.describer.DescribeImage(ctx, res.Image.Path)
			if err != nil {
				return err
			}
			res.Description = desc
			return nil
		})
	}

	c.finish(res, nil)
	return res, nil
}

func (c *Coordinator) stage(res *Result, name string, fn func() error) error {
	c.publish(eventbus.StageStarted, map[string]interface{}{"stage": name})

	stop := c.timer.Start(name)
	err := fn()
	elapsed := stop()
	res.StageTimings[name] = elapsed

	if err != nil {
		c.logger.Error("Pipeline", err, map[string]interface{}{
			"stage": name,
		})
		c.publish(eventbus.StageFailed, map[string]interface{}{
			"stage": name,
			"error": err.Error(),
		})
		return err
	}

	c.logger.Debug("Pipeline", "stage completed", map[string]interface{}{
		"stage":      name,
		"elapsed_ms": elapsed.Milliseconds(),
	})
	c.publish(eventbus.StageCompleted, map[string]interface{}{
		"stage":   name,
		"elapsed": elapsed,
	})
	return nil
}

func (c *Coordinator) finish(res *Result, err error) {
	c.mu.Lock()
	c.last = res
	c.mu.Unlock()

	data := map[string]interface{}{
		"image_path":   res.ImagePath(),
		"output_color": res.OutputColor.Hex(),
	}
	if err != nil {
		data["error"] = err.Error()
	}
	c.publish(eventbus.RunFinished, data)

	c.logger.Info("Pipeline", "run finished", map[string]interface{}{
		"image_path": res.ImagePath(),
		"ok":         err == nil,
	})
}

func (c *Coordinator) publish(eventType string, data map[string]interface{}) {
	if c.bus == nil {
		return
	}
	c.bus.Publish(eventbus.Event{Type: eventType, Data: data})
}
