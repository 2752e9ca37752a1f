package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"deviceguard/internal/app"
	"deviceguard/internal/config"
	"deviceguard/internal/service/prompt"

	"github.com/pkg/errors"
	"github.com/urfave/cli/v2"
)

// errReported marks an error that has already been written to the log.
var errReported = errors.New("error already reported")

func main() {
	cliApp := &cli.App{
		Name:  "guard",
		Usage: "watch the webcam and save a snapshot whenever the set of detected objects changes",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "variant", Usage: "model variant: tiny or full (asked at startup when unset)", EnvVars: []string{"MODEL_VARIANT"}},
			&cli.IntFlag{Name: "device", Usage: "camera device index", EnvVars: []string{"CAMERA_DEVICE"}},
			&cli.StringFlag{Name: "yolo-dir", Usage: "directory with the YOLO files", EnvVars: []string{"YOLO_DIR"}},
			&cli.StringFlag{Name: "results-dir", Usage: "directory snapshots are written to", EnvVars: []string{"RESULTS_DIR"}},
			&cli.BoolFlag{Name: "cpu", Usage: "run inference on the CPU instead of CUDA"},
			&cli.BoolFlag{Name: "clean-logs", Usage: "truncate the log files before starting"},
		},
		Action: run,
	}

	if err := cliApp.Run(os.Args); err != nil {
		if !errors.Is(err, errReported) {
			fmt.Fprintf(os.Stderr, "An error occurred: %v\nTraceback:\n%+v\n", err, err)
		}
		prompt.WaitForEnter(os.Stdin, os.Stdout)
		os.Exit(1)
	}
}

func run(c *cli.Context) error {
	cfg := config.Load()
	applyFlags(c, cfg)

	application, err := app.NewApp(cfg)
	if err != nil {
		return err
	}
	defer application.Close()

	if c.Bool("clean-logs") {
		if err := application.CleanLogs(); err != nil {
			return err
		}
	}

	application.Logger().Info("Starting: %s", application.Describe())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := application.Run(ctx); err != nil {
		application.Logger().Error("An error occurred: %v\nTraceback:\n%+v", err, err)
		return errReported
	}
	return nil
}

func applyFlags(c *cli.Context, cfg *config.Config) {
	if c.IsSet("variant") {
		cfg.ModelVariant = config.Variant(c.String("variant"))
	}
	if c.IsSet("device") {
		cfg.CameraDevice = c.Int("device")
	}
	if c.IsSet("yolo-dir") {
		cfg.YoloDirectory = c.String("yolo-dir")
	}
	if c.IsSet("results-dir") {
		cfg.ResultsDirectory = c.String("results-dir")
	}
	if c.Bool("cpu") {
		cfg.DNNBackend = "cpu"
	}
}
