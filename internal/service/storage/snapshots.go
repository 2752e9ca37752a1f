package storage

import (
	"fmt"
	"os"
	"path/filepath"

	"deviceguard/internal/dto"
	"deviceguard/internal/logger"

	"github.com/pkg/errors"
)

// TimestampLayout formats snapshot times as YYYYMMDD_HHMMSS.
const TimestampLayout = "20060102_150405"

// maxSuffix bounds the search for a free file name within one second.
const maxSuffix = 1000

// SnapshotStore writes snapshot events as JPEG files in one directory.
type SnapshotStore struct {
	imagesDir string
	logger    *logger.Logger
}

// NewSnapshotStore creates the target directory if needed.
func NewSnapshotStore(imagesDir string, logger *logger.Logger) (*SnapshotStore, error) {
	if err := os.MkdirAll(imagesDir, 0755); err != nil {
		return nil, errors.Wrapf(err, "failed to create results directory %s", imagesDir)
	}
	return &SnapshotStore{imagesDir: imagesDir, logger: logger}, nil
}

// Dir returns the directory snapshots are written to.
func (s *SnapshotStore) Dir() string {
	return s.imagesDir
}

// Save writes event.Image to snapshot_<timestamp>.jpg and returns its path.
// When that name is taken, _1, _2, ... is appended so nothing is overwritten.
func (s *SnapshotStore) Save(event dto.SnapshotEvent) (string, error) {
	if len(event.Image) == 0 {
		return "", errors.New("snapshot has no image data")
	}

	stamp := event.Timestamp.Format(TimestampLayout)
	for i := 0; i < maxSuffix; i++ {
		fullpath := filepath.Join(s.imagesDir, snapshotName(stamp, i))

		file, err := os.OpenFile(fullpath, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0644)
		if os.IsExist(err) {
			continue
		}
		if err != nil {
			return "", errors.Wrapf(err, "failed to create %s", fullpath)
		}

		if _, err := file.Write(event.Image); err != nil {
			file.Close()
			os.Remove(fullpath)
			return "", errors.Wrapf(err, "failed to write %s", fullpath)
		}
		if err := file.Close(); err != nil {
			return "", errors.Wrapf(err, "failed to close %s", fullpath)
		}

		if i > 0 && s.logger != nil {
			s.logger.Warning("Snapshot name for %s taken, saved as %s", stamp, filepath.Base(fullpath))
		}
		return fullpath, nil
	}
	return "", errors.Errorf("no free snapshot name for %s", stamp)
}

func snapshotName(stamp string, suffix int) string {
	if suffix == 0 {
		return fmt.Sprintf("snapshot_%s.jpg", stamp)
	}
	return fmt.Sprintf("snapshot_%s_%d.jpg", stamp, suffix)
}
