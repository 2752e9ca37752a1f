package app

import (
	"context"
	"fmt"
	"runtime/debug"

	"deviceguard/internal/config"
	"deviceguard/internal/logger"
	"deviceguard/internal/service/ai"
	"deviceguard/internal/service/camera"
	"deviceguard/internal/service/guard"
	"deviceguard/internal/service/prompt"
	"deviceguard/internal/service/storage"

	"github.com/pkg/errors"
	"gocv.io/x/gocv"
)

// CameraOpener opens the capture device.
type CameraOpener func(cfg *config.Config, logger *logger.Logger) (*camera.Camera, error)

type App struct {
	config     *config.Config
	logger     *logger.Logger
	ask        prompt.Asker
	openCamera CameraOpener
}

// NewApp builds the application around cfg and a logger writing to cfg.LogDirectory.
func NewApp(cfg *config.Config) (*App, error) {
	log, err := logger.NewLogger(cfg)
	if err != nil {
		return nil, err
	}
	return newApp(cfg, log, prompt.Confirm, camera.Open), nil
}

func newApp(cfg *config.Config, log *logger.Logger, ask prompt.Asker, openCamera CameraOpener) *App {
	return &App{
		config:     cfg,
		logger:     log,
		ask:        ask,
		openCamera: openCamera,
	}
}

// Logger returns the application logger.
func (a *App) Logger() *logger.Logger {
	return a.logger
}

// CleanLogs truncates every log file before a fresh run.
func (a *App) CleanLogs() error {
	for _, name := range logger.LogFiles {
		if err := a.logger.CleanLogs(name); err != nil {
			return err
		}
	}
	return nil
}

// Close releases the logger.
func (a *App) Close() error {
	return a.logger.Close()
}

// Run performs startup checks in order (model files, network, results
// directory, camera, window) and then runs the detection loop until quit.
// A panic anywhere below is returned as an error carrying its stack.
func (a *App) Run(ctx context.Context) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = errors.Errorf("panic: %v\n%s", r, debug.Stack())
		}
	}()
	return a.run(ctx)
}

func (a *App) run(ctx context.Context) error {
	a.logger.Info("gocv version: %s, OpenCV version: %s", gocv.Version(), gocv.OpenCVVersion())

	variant, err := prompt.ChooseVariant(a.config.ModelVariant, a.ask)
	if err != nil {
		return err
	}

	files := a.config.ModelFiles(variant)
	if err := files.Verify(); err != nil {
		return err
	}

	a.logger.Info("Loading %s model...", variant)
	detector, err := ai.NewDetectorService(files, a.config, a.logger)
	if err != nil {
		return err
	}
	defer detector.Close()
	a.logger.Info("%s model loaded successfully: %s", variant, detector)

	store, err := storage.NewSnapshotStore(a.config.ResultsDirectory, a.logger)
	if err != nil {
		return err
	}
	a.logger.Info("Snapshots will be saved to %s", store.Dir())

	a.logger.Info("Initializing camera...")
	cam, err := a.openCamera(a.config, a.logger)
	if err != nil {
		return err
	}

	window := camera.NewWindow(a.config.WindowName)
	defer window.Close()

	a.logger.Info("Camera initialized successfully.")
	a.logger.Info("Object detection is running. Press 'q' to quit.")

	g := guard.New[*gocv.Mat](cam, detector, detector, window, store, a.guardOptions(), nil, a.logger)
	stats, err := g.Run(ctx)
	a.logger.Info("Processed %d of %d frames, saved %d snapshots", stats.Processed, stats.Acquired, stats.Snapshots)
	return err
}

func (a *App) guardOptions() guard.Options {
	opts := guard.DefaultOptions()
	opts.ProcessingInterval = a.config.ProcessingInterval
	opts.FPSReportEvery = a.config.FPSReportEvery
	opts.RetryDelay = a.config.RetryDelay
	return opts
}

// Describe renders the effective configuration for the startup banner.
func (a *App) Describe() string {
	return fmt.Sprintf("camera %d @ %dx%d, YOLO dir %s, results %s, every %d frame(s), confidence > %.2f, NMS %.2f",
		a.config.CameraDevice, a.config.FrameWidth, a.config.FrameHeight,
		a.config.YoloDirectory, a.config.ResultsDirectory,
		a.config.ProcessingInterval, a.config.ConfidenceThreshold, a.config.NMSThreshold)
}
