package pipeline

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mood-canvas/internal/circuit"
	"mood-canvas/internal/eventbus"
	"mood-canvas/internal/imagegen"
	"mood-canvas/internal/mood"
	"mood-canvas/internal/palette"
)

type fixedResolver struct {
	res   mood.Resolution
	gotMu sync.Mutex
	got   []Request
}

func (f *fixedResolver) Resolve(_ context.Context, m, c string) mood.Resolution {
	f.gotMu.Lock()
	f.got = append(f.got, Request{Mood: m, Checkout: c})
	f.gotMu.Unlock()
	return f.res
}

type fakeGenerator struct {
	err     error
	colors  []palette.Color
	release chan struct{}
	entered chan struct{}
}

func (f *fakeGenerator) Generate(_ context.Context, c palette.Color) (*imagegen.Result, error) {
	if f.entered != nil {
		close(f.entered)
	}
	if f.release != nil {
		<-f.release
	}
	f.colors = append(f.colors, c)
	if f.err != nil {
		return nil, f.err
	}
	return &imagegen.Result{Path: "/tmp/output_test.png", Prompt: imagegen.Prompt(c)}, nil
}

type fakeDescriber struct {
	desc string
	err  error
	path string
}

func (f *fakeDescriber) DescribeImage(_ context.Context, path string) (string, error) {
	f.path = path
	return f.desc, f.err
}

type eventLog struct {
	mu    sync.Mutex
	types []string
	stage []interface{}
}

func subscribeAll(bus *eventbus.Bus, log *eventLog) {
	for _, typ := range []string{eventbus.StageStarted, eventbus.StageCompleted, eventbus.StageFailed, eventbus.RunFinished} {
		typ := typ
		bus.Subscribe(typ, eventbus.HandlerFunc{Name: "log-" + typ, Fn: func(e eventbus.Event) {
			log.mu.Lock()
			defer log.mu.Unlock()
			log.types = append(log.types, typ)
			log.stage = append(log.stage, e.Data["stage"])
		}})
	}
}

func redResolution() mood.Resolution {
	return mood.Resolution{Color: palette.MustParseHex("#ff0000"), Factor: 0, Sentiment: mood.Happy}
}

func TestRunProducesImageFromCollapsedColor(t *testing.T) {
	resolver := &fixedResolver{res: redResolution()}
	gen := &fakeGenerator{}
	bus := eventbus.New(64)
	log := &eventLog{}
	subscribeAll(bus, log)

	c := NewCoordinator(Options{
		Resolver:  resolver,
		Encoder:   circuit.New(4),
		Generator: gen,
		Bus:       bus,
	})

	res, err := c.Run(context.Background(), Request{Mood: "elated", Checkout: "2024-06-10 12:00"})
	require.NoError(t, err)
	bus.Shutdown()

	assert.Equal(t, []Request{{Mood: "elated", Checkout: "2024-06-10 12:00"}}, resolver.got)
	assert.Len(t, res.State, 16)
	assert.Equal(t, "#0000ff", res.OutputColor.Hex())
	require.Len(t, gen.colors, 1)
	assert.Equal(t, res.OutputColor, gen.colors[0])
	assert.Equal(t, "/tmp/output_test.png", res.ImagePath())
	assert.Empty(t, res.Description)
	assert.Same(t, res, c.LastResult())
	assert.False(t, c.Busy())

	for _, s := range []string{StageMood, StageCircuit, StageCollapse, StageImage} {
		assert.Contains(t, res.StageTimings, s)
	}
	assert.NotContains(t, res.StageTimings, StageDescribe)

	log.mu.Lock()
	defer log.mu.Unlock()
	assert.Equal(t, []string{
		eventbus.StageStarted, eventbus.StageCompleted,
		eventbus.StageStarted, eventbus.StageCompleted,
		eventbus.StageStarted, eventbus.StageCompleted,
		eventbus.StageStarted, eventbus.StageCompleted,
		eventbus.RunFinished,
	}, log.types)
	assert.Equal(t, StageImage, log.stage[7])
}

func TestRunImageFailure(t *testing.T) {
	gen := &fakeGenerator{err: imagegen.ErrNoImages}
	c := NewCoordinator(Options{
		Resolver:  &fixedResolver{res: redResolution()},
		Generator: gen,
		Describer: &fakeDescriber{desc: "never"},
	})

	res, err := c.Run(context.Background(), Request{Mood: "x"})
	require.Error(t, err)
	assert.ErrorIs(t, err, imagegen.ErrNoImages)
	require.NotNil(t, res)
	assert.Empty(t, res.ImagePath())
	assert.Equal(t, "#0000ff", res.OutputColor.Hex())
	assert.NotContains(t, res.StageTimings, StageDescribe)
}

func TestRunDescribesImage(t *testing.T) {
	desc := &fakeDescriber{desc: "serene"}
	c := NewCoordinator(Options{
		Resolver:  &fixedResolver{res: redResolution()},
		Generator: &fakeGenerator{},
		Describer: desc,
	})

	res, err := c.Run(context.Background(), Request{Mood: "x"})
	require.NoError(t, err)
	assert.Equal(t, "serene", res.Description)
	assert.Equal(t, "/tmp/output_test.png", desc.path)
}

func TestRunDescribeFailureIsNotFatal(t *testing.T) {
	c := NewCoordinator(Options{
		Resolver:  &fixedResolver{res: redResolution()},
		Generator: &fakeGenerator{},
		Describer: &fakeDescriber{err: errors.New("vision down")},
	})

	res, err := c.Run(context.Background(), Request{Mood: "x"})
	require.NoError(t, err)
	assert.Empty(t, res.Description)
	assert.Equal(t, "/tmp/output_test.png", res.ImagePath())
}

func TestRunRejectsConcurrentRuns(t *testing.T) {
	gen := &fakeGenerator{release: make(chan struct{}), entered: make(chan struct{})}
	c := NewCoordinator(Options{
		Resolver:  &fixedResolver{res: redResolution()},
		Generator: gen,
	})

	done := make(chan error, 1)
	go func() {
		_, err := c.Run(context.Background(), Request{Mood: "first"})
		done <- err
	}()

	<-gen.entered
	assert.True(t, c.Busy())

	_, err := c.Run(context.Background(), Request{Mood: "second"})
	assert.ErrorIs(t, err, ErrBusy)

	close(gen.release)
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("first run did not finish")
	}
	assert.False(t, c.Busy())
}

func TestTimerAccumulatesAcrossRuns(t *testing.T) {
	c := NewCoordinator(Options{
		Resolver:  &fixedResolver{res: redResolution()},
		Generator: &fakeGenerator{},
	})

	for i := 0; i < 3; i++ {
		_, err := c.Run(context.Background(), Request{Mood: "x"})
		require.NoError(t, err)
	}
	assert.Len(t, c.Timer().Timings(StageCircuit), 3)
}

func TestResultImagePathNil(t *testing.T) {
	var r *Result
	assert.Empty(t, r.ImagePath())
}
