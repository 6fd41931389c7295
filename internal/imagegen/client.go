// Package imagegen drives a Stable Diffusion style txt2img endpoint and keeps
// the images it returns.
package imagegen

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"math/rand"
	"net/http"
	"time"

	"mood-canvas/internal/logger"
	"mood-canvas/internal/palette"
)

// ErrNoImages is returned when the service answers without any image.
var ErrNoImages = errors.New("no images found in the response")

// Params are the generation knobs sent with every prompt.
type Params struct {
	Steps             int     `toml:"steps" json:"steps"`
	Width             int     `toml:"width" json:"width"`
	Height            int     `toml:"height" json:"height"`
	CFGScale          float64 `toml:"cfg_scale" json:"cfg_scale"`
	DenoisingStrength float64 `toml:"denoising_strength" json:"denoising_strength"`
	EnableHR          bool    `toml:"enable_hr" json:"enable_hr"`
	RestoreFaces      bool    `toml:"restore_faces" json:"restore_faces"`
}

func DefaultParams() Params {
	return Params{
		Steps:             121,
		Width:             666,
		Height:            456,
		CFGScale:          7,
		DenoisingStrength: 0.7,
		EnableHR:          false,
		RestoreFaces:      true,
	}
}

// txt2imgRequest keeps the string-typed fields existing servers accept.
type txt2imgRequest struct {
	Prompt            string `json:"prompt"`
	Steps             int    `json:"steps"`
	Seed              int64  `json:"seed"`
	EnableHR          string `json:"enable_hr"`
	DenoisingStrength string `json:"denoising_strength"`
	CFGScale          string `json:"cfg_scale"`
	Width             int    `json:"width"`
	Height            int    `json:"height"`
	RestoreFaces      string `json:"restore_faces"`
}

type txt2imgResponse struct {
	Images []string `json:"images"`
}

// Result describes one saved image.
type Result struct {
	Path   string
	Prompt string
	Seed   int64
}

type Client struct {
	url        string
	params     Params
	httpClient *http.Client
	store      *Store
	logger     logger.Logger
	seed       func() int64
}

func NewClient(url string, params Params, store *Store, timeout time.Duration, log logger.Logger) *Client {
	if log == nil {
		log = logger.NoOp{}
	}
	return &Client{
		url:        url,
		params:     params,
		httpClient: &http.Client{Timeout: timeout},
		store:      store,
		logger:     log,
		seed:       func() int64 { return rand.Int63n(math.MaxInt64) },
	}
}

// Prompt is the text sent for a given color.
func Prompt(c palette.Color) string {
	return "Generate an image with predominant color " + c.Hex()
}

// Generate requests one image dominated by c and stores it.
func (c *Client) Generate(ctx context.Context, color palette.Color) (*Result, error) {
	req := c.buildRequest(Prompt(color))

	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("encode txt2img request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build txt2img request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	c.logger.Debug("ImageClient", "requesting image", map[string]interface{}{
		"prompt": req.Prompt,
		"seed":   req.Seed,
	})

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("txt2img request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("txt2img returned %s: %s", resp.Status, bytes.TrimSpace(snippet))
	}

	var decoded txt2imgResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil, fmt.Errorf("decode txt2img response: %w", err)
	}
	if len(decoded.Images) == 0 {
		return nil, ErrNoImages
	}

	data, err := base64.StdEncoding.DecodeString(decoded.Images[0])
	if err != nil {
		return nil, fmt.Errorf("decode image payload: %w", err)
	}

	path, err := c.store.Save(data)
	if err != nil {
		return nil, err
	}

	c.logger.Info("ImageClient", "image saved", map[string]interface{}{
		"path":  path,
		"bytes": len(data),
	})

	return &Result{Path: path, Prompt: req.Prompt, Seed: req.Seed}, nil
}

func (c *Client) buildRequest(prompt string) txt2imgRequest {
	return txt2imgRequest{
		Prompt:            prompt,
		Steps:             c.params.Steps,
		Seed:              c.seed(),
		EnableHR:          fmt.Sprint(c.params.EnableHR),
		DenoisingStrength: fmt.Sprint(c.params.DenoisingStrength),
		CFGScale:          fmt.Sprint(c.params.CFGScale),
		Width:             c.params.Width,
		Height:            c.params.Height,
		RestoreFaces:      fmt.Sprint(c.params.RestoreFaces),
	}
}
