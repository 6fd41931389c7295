package pipeline

import (
	"context"
	"time"

	"mood-canvas/internal/imagegen"
	"mood-canvas/internal/mood"
	"mood-canvas/internal/palette"
)

// Stage names, also used as timing keys and event payloads.
const (
	StageMood     = "mood"
	StageCircuit  = "circuit"
	StageCollapse = "collapse"
	StageImage    = "image"
	StageDescribe = "describe"
)

// MoodResolver turns mood text and a checkout time into a color and factor.
type MoodResolver interface {
	Resolve(ctx context.Context, userMood, checkoutTime string) mood.Resolution
}

// Encoder maps a color and datetime factor onto a state vector.
type Encoder interface {
	Encode(color palette.Color, factor float64) []complex128
}

// ImageGenerator requests and stores an image for a color.
type ImageGenerator interface {
	Generate(ctx context.Context, color palette.Color) (*imagegen.Result, error)
}

// ImageDescriber reports the sentiment an image conveys.
type ImageDescriber interface {
	DescribeImage(ctx context.Context, path string) (string, error)
}

// Request is one click of "Generate Visual".
type Request struct {
	Mood     string
	Checkout string
}

// Result carries everything a run produced.
type Result struct {
	Request      Request
	Resolution   mood.Resolution
	State        []complex128
	OutputColor  palette.Color
	Image        *imagegen.Result
	Description  string
	StageTimings map[string]time.Duration
}

// ImagePath is empty when no image was produced.
func (r *Result) ImagePath() string {
	if r == nil || r.Image == nil {
		return ""
	}
	return r.Image.Path
}
