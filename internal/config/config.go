// Package config loads runtime settings from a TOML file, the legacy
// configopenai.json file, a .env file and the environment, in that order of
// increasing precedence.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"

	"mood-canvas/internal/circuit"
	"mood-canvas/internal/imagegen"
)

// LegacyFile is the JSON file earlier releases read next to the binary.
const LegacyFile = "configopenai.json"

type Config struct {
	OpenAIAPIKey   string          `toml:"openai_api_key"`
	ChatBaseURL    string          `toml:"chat_base_url"`
	ChatModel      string          `toml:"chat_model"`
	VisionModel    string          `toml:"vision_model"`
	DescribeImages bool            `toml:"describe_images"`
	StableURL      string          `toml:"stable_url"`
	OutputDir      string          `toml:"output_dir"`
	Wires          int             `toml:"wires"`
	Timeout        Duration        `toml:"timeout"`
	LogLevel       string          `toml:"log_level"`
	JSONLogs       bool            `toml:"json_logs"`
	Image          imagegen.Params `toml:"image"`
}

// Duration lets TOML carry values like "90s".
type Duration struct {
	time.Duration
}

func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// legacyConfig mirrors configopenai.json.
type legacyConfig struct {
	OpenAIAPIKey string `json:"openai_api_key"`
	StableURL    string `json:"stable_url"`
}

func Default() *Config {
	return &Config{
		ChatBaseURL: "https://api.openai.com/v1",
		ChatModel:   "gpt-4",
		VisionModel: "gpt-4-vision-preview",
		OutputDir:   ".",
		Wires:       circuit.MinWires,
		Timeout:     Duration{120 * time.Second},
		LogLevel:    "info",
		Image:       imagegen.DefaultParams(),
	}
}

// Load builds a Config. An empty path tries LegacyFile in the working
// directory; a missing file is fine as long as the environment fills the gaps.
func Load(path string) (*Config, error) {
	cfg := Default()

	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	explicit := path != ""
	if !explicit {
		path = LegacyFile
	}

	if err := cfg.loadFile(path); err != nil {
		if explicit || !errors.Is(err, os.ErrNotExist) {
			return nil, err
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) loadFile(path string) error {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		if _, err := os.Stat(path); err != nil {
			return fmt.Errorf("config file: %w", err)
		}
		if _, err := toml.DecodeFile(path, c); err != nil {
			return fmt.Errorf("parse %s: %w", path, err)
		}
		return nil
	case ".json":
		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("config file: %w", err)
		}
		var legacy legacyConfig
		if err := json.Unmarshal(data, &legacy); err != nil {
			return fmt.Errorf("parse %s: %w", path, err)
		}
		c.OpenAIAPIKey = legacy.OpenAIAPIKey
		c.StableURL = legacy.StableURL
		return nil
	default:
		return fmt.Errorf("unsupported config format %q", filepath.Ext(path))
	}
}

func (c *Config) applyEnv() error {
	if v := os.Getenv("OPENAI_API_KEY"); v != "" {
		c.OpenAIAPIKey = v
	}
	if v := os.Getenv("OPENAI_BASE_URL"); v != "" {
		c.ChatBaseURL = v
	}
	if v := os.Getenv("STABLE_URL"); v != "" {
		c.StableURL = v
	}
	if v := os.Getenv("MOOD_CANVAS_OUTPUT_DIR"); v != "" {
		c.OutputDir = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		c.LogLevel = v
	} else if os.Getenv("DEBUG") == "1" {
		c.LogLevel = "debug"
	}
	if v := os.Getenv("MOOD_CANVAS_JSON_LOGS"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("MOOD_CANVAS_JSON_LOGS: %w", err)
		}
		c.JSONLogs = b
	}
	if v := os.Getenv("MOOD_CANVAS_WIRES"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("MOOD_CANVAS_WIRES: %w", err)
		}
		c.Wires = n
	}
	return nil
}

// Validate reports settings the pipeline cannot run without.
func (c *Config) Validate() error {
	var errs []error
	if c.OpenAIAPIKey == "" {
		errs = append(errs, errors.New("openai_api_key is required"))
	}
	if c.StableURL == "" {
		errs = append(errs, errors.New("stable_url is required"))
	}
	if c.Wires < circuit.MinWires || c.Wires > circuit.MaxWires {
		errs = append(errs, fmt.Errorf("wires must be between %d and %d, got %d", circuit.MinWires, circuit.MaxWires, c.Wires))
	}
	if c.Timeout.Duration <= 0 {
		errs = append(errs, errors.New("timeout must be positive"))
	}
	if c.Image.Width <= 0 || c.Image.Height <= 0 || c.Image.Steps <= 0 {
		errs = append(errs, errors.New("image width, height and steps must be positive"))
	}
	return errors.Join(errs...)
}
