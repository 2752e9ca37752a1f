package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
)

// Variant selects which YOLO weight/config pair is loaded.
type Variant string

const (
	VariantTiny Variant = "tiny"
	VariantFull Variant = "full"
)

// NamesFile is the class-name list shared by both variants.
const NamesFile = "coco.names"

// ErrModelFilesMissing is returned by ModelFiles.Verify when any required file is absent.
var ErrModelFilesMissing = errors.New("YOLO files are missing. Please run setup first")

// ParseVariant accepts "tiny"/"full" and a few common spellings of them.
func ParseVariant(s string) (Variant, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "tiny", "yolov3-tiny", "y", "yes":
		return VariantTiny, nil
	case "full", "yolov3", "n", "no":
		return VariantFull, nil
	}
	return "", errors.Errorf("unknown model variant %q (want tiny or full)", s)
}

// WeightsFile returns the weights file name of the variant.
func (v Variant) WeightsFile() string {
	if v == VariantTiny {
		return "yolov3-tiny.weights"
	}
	return "yolov3.weights"
}

// ConfigFile returns the darknet cfg file name of the variant.
func (v Variant) ConfigFile() string {
	if v == VariantTiny {
		return "yolov3-tiny.cfg"
	}
	return "yolov3.cfg"
}

func (v Variant) String() string {
	if v == VariantTiny {
		return "YOLOv3-tiny"
	}
	return "YOLOv3"
}

// ModelFiles are the three files the detector needs at runtime.
type ModelFiles struct {
	Weights string
	Config  string
	Names   string
}

// ModelFiles resolves the file paths of a variant under the YOLO directory.
func (c *Config) ModelFiles(v Variant) ModelFiles {
	return ModelFiles{
		Weights: filepath.Join(c.YoloDirectory, v.WeightsFile()),
		Config:  filepath.Join(c.YoloDirectory, v.ConfigFile()),
		Names:   filepath.Join(c.YoloDirectory, NamesFile),
	}
}

// Verify checks that every model file exists. The returned error wraps
// ErrModelFilesMissing and lists each missing path.
func (m ModelFiles) Verify() error {
	var missing []string
	for _, path := range []string{m.Weights, m.Config, m.Names} {
		if _, err := os.Stat(path); err != nil {
			missing = append(missing, path)
		}
	}
	if len(missing) == 0 {
		return nil
	}
	return errors.Wrap(ErrModelFilesMissing, fmt.Sprintf("missing %s", strings.Join(missing, ", ")))
}
