// Package setup downloads the YOLO weight, config and class-name files the
// guard needs at runtime.
package setup

import (
	"context"
	"os"
	"path/filepath"

	"deviceguard/internal/config"
	"deviceguard/internal/logger"

	"github.com/docker/go-units"
	"github.com/hashicorp/go-getter"
	"github.com/pkg/errors"
)

// Artifact is one downloadable model file. An empty Variant marks a file
// shared by every variant.
type Artifact struct {
	Name    string
	URL     string
	Variant config.Variant
}

// Artifacts lists every file the guard can use.
var Artifacts = []Artifact{
	{Name: "yolov3.weights", URL: "https://pjreddie.com/media/files/yolov3.weights", Variant: config.VariantFull},
	{Name: "yolov3.cfg", URL: "https://raw.githubusercontent.com/pjreddie/darknet/master/cfg/yolov3.cfg", Variant: config.VariantFull},
	{Name: "yolov3-tiny.weights", URL: "https://pjreddie.com/media/files/yolov3-tiny.weights", Variant: config.VariantTiny},
	{Name: "yolov3-tiny.cfg", URL: "https://raw.githubusercontent.com/pjreddie/darknet/master/cfg/yolov3-tiny.cfg", Variant: config.VariantTiny},
	{Name: config.NamesFile, URL: "https://raw.githubusercontent.com/pjreddie/darknet/master/data/coco.names"},
}

// Fetcher downloads src to the file dst.
type Fetcher interface {
	Fetch(ctx context.Context, dst, src string) error
}

// GetterFetcher fetches single files with go-getter.
type GetterFetcher struct{}

func (GetterFetcher) Fetch(ctx context.Context, dst, src string) error {
	client := &getter.Client{
		Ctx:  ctx,
		Src:  src,
		Dst:  dst,
		Mode: getter.ClientModeFile,
	}
	return client.Get()
}

// Report lists what a Run did.
type Report struct {
	Downloaded []string
	Skipped    []string
}

// Installer places artifacts in a directory.
type Installer struct {
	dir     string
	fetcher Fetcher
	logger  *logger.Logger
}

// NewInstaller returns an Installer writing into dir. A nil fetcher uses go-getter.
func NewInstaller(dir string, fetcher Fetcher, logger *logger.Logger) *Installer {
	if fetcher == nil {
		fetcher = GetterFetcher{}
	}
	return &Installer{dir: dir, fetcher: fetcher, logger: logger}
}

// Select returns the artifacts needed for only, or all of them when only is empty.
func Select(only config.Variant) []Artifact {
	if only == "" {
		return Artifacts
	}
	var selected []Artifact
	for _, a := range Artifacts {
		if a.Variant == "" || a.Variant == only {
			selected = append(selected, a)
		}
	}
	return selected
}

// Run downloads every selected artifact that is not already present. A
// download lands under a temporary name and is renamed into place once
// complete, so a failed run never leaves a truncated model file behind.
func (i *Installer) Run(ctx context.Context, only config.Variant) (Report, error) {
	var report Report

	if err := os.MkdirAll(i.dir, 0755); err != nil {
		return report, errors.Wrapf(err, "failed to create %s", i.dir)
	}
	i.logger.Info("Directory for YOLO files: %s", i.dir)

	for _, a := range Select(only) {
		path := filepath.Join(i.dir, a.Name)
		if _, err := os.Stat(path); err == nil {
			i.logger.Info("%s already exists.", a.Name)
			report.Skipped = append(report.Skipped, a.Name)
			continue
		}

		i.logger.Info("Downloading %s...", a.Name)
		size, err := i.download(ctx, path, a.URL)
		if err != nil {
			return report, errors.Wrapf(err, "failed to download %s from %s", a.Name, a.URL)
		}
		i.logger.Info("%s downloaded successfully (%s).", a.Name, units.HumanSize(float64(size)))
		report.Downloaded = append(report.Downloaded, a.Name)
	}
	return report, nil
}

func (i *Installer) download(ctx context.Context, path, url string) (int64, error) {
	partial := path + ".part"
	defer os.Remove(partial)

	if err := i.fetcher.Fetch(ctx, partial, url); err != nil {
		return 0, err
	}

	info, err := os.Stat(partial)
	if err != nil {
		return 0, errors.Wrap(err, "download produced no file")
	}
	if info.Size() == 0 {
		return 0, errors.New("downloaded file is empty")
	}

	if err := os.Rename(partial, path); err != nil {
		return 0, errors.Wrap(err, "failed to move download into place")
	}
	return info.Size(), nil
}
