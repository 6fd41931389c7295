package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
	cli "github.com/spf13/cobra"

	"mood-canvas/internal/app"
	"mood-canvas/internal/config"
	"mood-canvas/internal/logger"
	"mood-canvas/internal/palette"
	"mood-canvas/internal/pipeline"
	"mood-canvas/internal/shutdown"
)

var (
	rootCmd = &cli.Command{
		Use:     "mood-canvas",
		Short:   "Turn a mood into a color, a circuit and a picture",
		Version: app.AppVersion,
		RunE:    runGUI,
	}

	generateCmd = &cli.Command{
		Use:   "generate",
		Short: "Run one generation without the GUI and print the result",
		RunE:  runGenerate,
	}
)

func init() {
	rootCmd.PersistentFlags().StringP("config", "c", "", "TOML or JSON settings file (default configopenai.json)")
	rootCmd.PersistentFlags().String("log-level", "", "debug, info, warn or error")

	generateCmd.Flags().StringP("mood", "m", "", "how you feel; empty resolves to the neutral fallback")
	generateCmd.Flags().StringP("checkout", "t", "", "checkout time, YYYY-MM-DD HH:MM")
	generateCmd.Flags().Bool("json", false, "print the result as JSON")

	rootCmd.AddCommand(generateCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "%s\n", err.Error())
		os.Exit(1)
	}
}

func setup(cmd *cli.Command) (*config.Config, *logger.ZerologAdapter, error) {
	path, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(path)
	if err != nil {
		return nil, nil, err
	}
	if level, _ := cmd.Flags().GetString("log-level"); level != "" {
		cfg.LogLevel = level
	}
	if err := cfg.Validate(); err != nil {
		return nil, nil, fmt.Errorf("invalid configuration: %w", err)
	}

	log := logger.New(logger.ParseLevel(cfg.LogLevel), cfg.JSONLogs)
	return cfg, log, nil
}

func runGUI(cmd *cli.Command, _ []string) error {
	cfg, log, err := setup(cmd)
	if err != nil {
		return err
	}

	application, err := app.NewApplication(cfg, log)
	if err != nil {
		return fmt.Errorf("application initialization failed: %w", err)
	}

	sm := shutdown.NewManager(log)
	sm.Register("fyne app", shutdown.Func(application.Quit))
	sm.Register("lifecycle", application.Lifecycle())
	sm.Listen()

	err = application.Run()
	application.Lifecycle().Shutdown()
	return err
}

func runGenerate(cmd *cli.Command, _ []string) error {
	cfg, log, err := setup(cmd)
	if err != nil {
		return err
	}

	moodText, _ := cmd.Flags().GetString("mood")
	checkout, _ := cmd.Flags().GetString("checkout")
	asJSON, _ := cmd.Flags().GetBool("json")

	sm := shutdown.NewManager(log)
	sm.Listen()

	coordinator := app.NewCoordinator(cfg, nil, log)
	return sm.Run(func(ctx context.Context) error {
		res, runErr := coordinator.Run(ctx, pipeline.Request{
			Mood:     moodText,
			Checkout: checkout,
		})
		if res != nil {
			if err := printResult(cmd.OutOrStdout(), res, asJSON); err != nil {
				return err
			}
		}
		return runErr
	})
}

type summary struct {
	MoodColor   string           `json:"mood_color"`
	Sentiment   string           `json:"sentiment,omitempty"`
	Fallback    bool             `json:"fallback"`
	Factor      float64          `json:"factor"`
	OutputColor string           `json:"output_color"`
	ImagePath   string           `json:"image_path,omitempty"`
	Prompt      string           `json:"prompt,omitempty"`
	Description string           `json:"description,omitempty"`
	TimingsMS   map[string]int64 `json:"timings_ms"`
}

func printResult(w io.Writer, res *pipeline.Result, asJSON bool) error {
	s := summary{
		MoodColor:   res.Resolution.Color.Hex(),
		Sentiment:   res.Resolution.Sentiment,
		Fallback:    res.Resolution.Fallback,
		Factor:      res.Resolution.Factor,
		OutputColor: res.OutputColor.Hex(),
		ImagePath:   res.ImagePath(),
		Description: res.Description,
		TimingsMS:   make(map[string]int64, len(res.StageTimings)),
	}
	if res.Image != nil {
		s.Prompt = res.Image.Prompt
	}
	for stage, d := range res.StageTimings {
		s.TimingsMS[stage] = d.Milliseconds()
	}

	if asJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(s)
	}

	fmt.Fprintf(w, "mood color:   %s", s.MoodColor)
	if s.Fallback {
		fmt.Fprint(w, " (fallback)")
	}
	fmt.Fprintln(w, swatch(res.Resolution.Color))
	fmt.Fprintf(w, "factor:       %.3f\n", s.Factor)
	fmt.Fprintf(w, "output color: %s%s\n", s.OutputColor, swatch(res.OutputColor))
	if s.ImagePath != "" {
		fmt.Fprintf(w, "image:        %s\n", s.ImagePath)
	}
	if s.Description != "" {
		fmt.Fprintf(w, "description:  %s\n", s.Description)
	}
	return nil
}

// swatch is a truecolor block, empty when the terminal has no color.
func swatch(c palette.Color) string {
	if color.NoColor {
		return ""
	}
	return " " + color.BgRGB(int(c.R), int(c.G), int(c.B)).Sprint("    ")
}
