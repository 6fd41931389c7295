package app

import (
	"fyne.io/fyne/v2"
	fyneapp "fyne.io/fyne/v2/app"

	"mood-canvas/internal/circuit"
	"mood-canvas/internal/config"
	"mood-canvas/internal/eventbus"
	"mood-canvas/internal/gui"
	"mood-canvas/internal/imagegen"
	"mood-canvas/internal/logger"
	"mood-canvas/internal/mood"
	"mood-canvas/internal/pipeline"
)

const (
	AppName       = "Mood Canvas"
	AppID         = "com.moodcanvas.desktop"
	AppVersion    = "1.0.0"
	WindowWidth   = 720
	WindowHeight  = 760
	eventBufferSz = 64
)

type Application struct {
	fyneApp     fyne.App
	window      fyne.Window
	guiManager  *gui.Manager
	coordinator *pipeline.Coordinator
	bus         *eventbus.Bus
	logger      logger.Logger
	lifecycle   *Lifecycle
}

// NewCoordinator builds the pipeline from configuration. It is shared by the
// GUI and the headless command.
func NewCoordinator(cfg *config.Config, bus *eventbus.Bus, log logger.Logger) *pipeline.Coordinator {
	chat := mood.NewClient(mood.ClientOptions{
		APIKey:  cfg.OpenAIAPIKey,
		BaseURL: cfg.ChatBaseURL,
		Timeout: cfg.Timeout.Duration,
	})
	analyzer := mood.NewAnalyzer(chat, cfg.ChatModel, cfg.VisionModel, log)

	images := imagegen.NewClient(
		cfg.StableURL,
		cfg.Image,
		imagegen.NewStore(cfg.OutputDir),
		cfg.Timeout.Duration,
		log,
	)

	opts := pipeline.Options{
		Resolver:  analyzer,
		Encoder:   circuit.New(cfg.Wires),
		Generator: images,
		Bus:       bus,
		Logger:    log,
	}
	if cfg.DescribeImages {
		opts.Describer = analyzer
	}
	return pipeline.NewCoordinator(opts)
}

func NewApplication(cfg *config.Config, log logger.Logger) (*Application, error) {
	fyneApp := fyneapp.NewWithID(AppID)
	fyneApp.Settings().SetTheme(gui.NewTheme())

	window := fyneApp.NewWindow(AppName)
	window.Resize(fyne.NewSize(WindowWidth, WindowHeight))
	window.CenterOnScreen()
	window.SetMaster()

	log.Info("Application", "starting application", map[string]interface{}{
		"version":         AppVersion,
		"chat_model":      cfg.ChatModel,
		"wires":           cfg.Wires,
		"output_dir":      cfg.OutputDir,
		"describe_images": cfg.DescribeImages,
	})

	bus := eventbus.New(eventBufferSz)
	coordinator := NewCoordinator(cfg, bus, log)
	guiManager := gui.NewManager(window, log)

	application := &Application{
		fyneApp:     fyneApp,
		window:      window,
		guiManager:  guiManager,
		coordinator: coordinator,
		bus:         bus,
		logger:      log,
		lifecycle:   NewLifecycle(guiManager, bus, log),
	}

	application.setupHandlers()

	log.Info("Application", "initialization complete", nil)
	return application, nil
}

func (a *Application) setupHandlers() {
	handlers := NewHandlers(a.coordinator, a.guiManager, a.logger)
	a.lifecycle.SetHandlers(handlers)

	a.guiManager.SetGenerateHandler(handlers.HandleGenerate)
	handlers.SubscribeProgress(a.bus)
}

// Lifecycle exposes shutdown so signal handling can trigger it.
func (a *Application) Lifecycle() *Lifecycle {
	return a.lifecycle
}

// Quit closes the window from any goroutine.
func (a *Application) Quit() {
	fyne.Do(func() {
		a.fyneApp.Quit()
	})
}

func (a *Application) Run() error {
	a.window.SetCloseIntercept(func() {
		a.logger.Info("Application", "shutdown requested", nil)
		a.lifecycle.Shutdown()
		a.window.Close()
	})

	a.window.SetContent(a.guiManager.GetMainContainer())
	a.window.Show()

	a.logger.Info("Application", "GUI displayed", nil)
	a.fyneApp.Run()

	return nil
}
