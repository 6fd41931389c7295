package app

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"

	"mood-canvas/internal/eventbus"
	"mood-canvas/internal/gui"
	"mood-canvas/internal/logger"
	"mood-canvas/internal/pipeline"
)

// Runner is the part of the pipeline coordinator the handlers drive.
type Runner interface {
	Run(ctx context.Context, req pipeline.Request) (*pipeline.Result, error)
	Busy() bool
}

var stageStatus = map[string]string{
	pipeline.StageMood:     "Interpreting mood...",
	pipeline.StageCircuit:  "Encoding color onto the circuit...",
	pipeline.StageCollapse: "Collapsing state to a color...",
	pipeline.StageImage:    "Generating image...",
	pipeline.StageDescribe: "Describing image...",
}

type Handlers struct {
	runner     Runner
	guiManager *gui.Manager
	logger     logger.Logger

	// launching is held from the click until the run goroutine exits, so a
	// second click cannot slip in before the coordinator marks itself busy.
	launching atomic.Bool

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func NewHandlers(runner Runner, gm *gui.Manager, log logger.Logger) *Handlers {
	ctx, cancel := context.WithCancel(context.Background())
	return &Handlers{
		runner:     runner,
		guiManager: gm,
		logger:     log,
		ctx:        ctx,
		cancel:     cancel,
	}
}

// HandleGenerate starts a run in the background. Clicks while a run is in
// flight are ignored.
func (h *Handlers) HandleGenerate(moodText, checkoutTime string) {
	if h.runner.Busy() || !h.launching.CompareAndSwap(false, true) {
		h.logger.Debug("Handlers", "generate ignored while busy", nil)
		return
	}

	moodText = strings.TrimSpace(moodText)
	checkoutTime = strings.TrimSpace(checkoutTime)

	h.guiManager.SetBusy(true)
	h.guiManager.UpdateStatus("Starting...")

	h.wg.Add(1)
	go func() {
		defer h.wg.Done()
		defer h.launching.Store(false)

		res, err := h.runner.Run(h.ctx, pipeline.Request{
			Mood:     moodText,
			Checkout: checkoutTime,
		})
		if errors.Is(err, pipeline.ErrBusy) {
			// Another run owns the button state.
			h.logger.Debug("Handlers", "run rejected as busy", nil)
			return
		}
		h.present(res, err)
		h.guiManager.SetBusy(false)
	}()
}

func (h *Handlers) present(res *pipeline.Result, err error) {
	if res != nil {
		h.guiManager.SetColors(res.Resolution.Color, res.OutputColor, res.Resolution.Factor)
	}

	if err != nil {
		if errors.Is(err, context.Canceled) {
			h.guiManager.UpdateStatus("Cancelled")
			return
		}
		h.guiManager.ShowError("Generation failed", err)
		h.guiManager.UpdateStatus("Image generation failed")
		return
	}

	h.guiManager.ShowImage(res.ImagePath())
	h.guiManager.SetDescription(res.Description)

	status := fmt.Sprintf("Done: %s", res.OutputColor.Hex())
	if res.Resolution.Fallback {
		status += " (fallback color)"
	}
	h.guiManager.UpdateStatus(status)
}

// SubscribeProgress mirrors pipeline stages into the status bar.
func (h *Handlers) SubscribeProgress(bus *eventbus.Bus) {
	bus.Subscribe(eventbus.StageStarted, eventbus.HandlerFunc{
		Name: "status-stage-started",
		Fn: func(ev eventbus.Event) {
			stage, _ := ev.Data["stage"].(string)
			if text, ok := stageStatus[stage]; ok {
				h.guiManager.UpdateStatus(text)
			}
		},
	})
	bus.Subscribe(eventbus.StageFailed, eventbus.HandlerFunc{
		Name: "status-stage-failed",
		Fn: func(ev eventbus.Event) {
			h.logger.Warning("Handlers", "stage failed", ev.Data)
		},
	})
}

// Shutdown cancels an in-flight run and waits for its goroutine.
func (h *Handlers) Shutdown() {
	h.cancel()
	h.wg.Wait()
}
