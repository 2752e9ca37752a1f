package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"

	"deviceguard/internal/config"
	"deviceguard/internal/logger"
	"deviceguard/internal/setup"

	"github.com/urfave/cli/v2"
)

func main() {
	cliApp := &cli.App{
		Name:  "setup",
		Usage: "download the YOLO model files used by guard",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "yolo-dir", Usage: "directory to download into", EnvVars: []string{"YOLO_DIR"}},
			&cli.StringFlag{Name: "only", Usage: "download a single variant (tiny or full) plus the class names"},
		},
		Action: run,
	}

	if err := cliApp.Run(os.Args); err != nil {
		log.Fatalf("Setup failed: %+v", err)
	}
}

func run(c *cli.Context) error {
	cfg := config.Load()
	if c.IsSet("yolo-dir") {
		cfg.YoloDirectory = c.String("yolo-dir")
	}

	var only config.Variant
	if c.IsSet("only") {
		v, err := config.ParseVariant(c.String("only"))
		if err != nil {
			return err
		}
		only = v
	}

	l, err := logger.NewLogger(cfg)
	if err != nil {
		return err
	}
	defer l.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	l.Info("Setting up Object Detection application...")
	report, err := setup.NewInstaller(cfg.YoloDirectory, nil, l).Run(ctx, only)
	if err != nil {
		return err
	}

	fmt.Printf("\nSetup completed successfully! %d downloaded, %d already present.\n", len(report.Downloaded), len(report.Skipped))
	fmt.Println("You can now run the object detection application with 'go run ./cmd/guard'")
	return nil
}
