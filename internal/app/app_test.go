package app

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"

	"deviceguard/internal/config"
	"deviceguard/internal/logger"
	"deviceguard/internal/service/camera"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testApp(t *testing.T, cfg *config.Config, opened *int) *App {
	t.Helper()
	log, err := logger.New(t.TempDir(), io.Discard, io.Discard)
	require.NoError(t, err)
	t.Cleanup(func() { log.Close() })

	ask := func(string) (bool, error) { return true, nil }
	open := func(*config.Config, *logger.Logger) (*camera.Camera, error) {
		*opened++
		return nil, camera.ErrCameraUnavailable
	}
	return newApp(cfg, log, ask, open)
}

func TestRun_MissingModelFileAbortsBeforeCamera(t *testing.T) {
	for _, missing := range []string{"yolov3-tiny.weights", "yolov3-tiny.cfg", "coco.names"} {
		t.Run(missing, func(t *testing.T) {
			dir := t.TempDir()
			for _, name := range []string{"yolov3-tiny.weights", "yolov3-tiny.cfg", "coco.names"} {
				if name != missing {
					require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("x"), 0644))
				}
			}

			cfg := &config.Config{
				YoloDirectory:    dir,
				ResultsDirectory: filepath.Join(t.TempDir(), "results"),
				ModelVariant:     config.VariantTiny,
			}
			opened := 0
			err := testApp(t, cfg, &opened).Run(context.Background())

			require.Error(t, err)
			assert.True(t, errors.Is(err, config.ErrModelFilesMissing))
			assert.Contains(t, err.Error(), missing)
			assert.Equal(t, 0, opened, "camera must not be touched")

			_, statErr := os.Stat(cfg.ResultsDirectory)
			assert.True(t, os.IsNotExist(statErr), "nothing is created before verification")
		})
	}
}

func TestRun_PromptChoosesVariantFiles(t *testing.T) {
	// Only the full-size files exist; the prompt answers "tiny".
	dir := t.TempDir()
	for _, name := range []string{"yolov3.weights", "yolov3.cfg", "coco.names"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("x"), 0644))
	}

	opened := 0
	err := testApp(t, &config.Config{YoloDirectory: dir}, &opened).Run(context.Background())

	require.Error(t, err)
	assert.True(t, errors.Is(err, config.ErrModelFilesMissing))
	assert.Contains(t, err.Error(), "yolov3-tiny.weights")
	assert.Equal(t, 0, opened)
}

func TestRun_RecoversPanic(t *testing.T) {
	log, err := logger.New(t.TempDir(), io.Discard, io.Discard)
	require.NoError(t, err)
	defer log.Close()

	ask := func(string) (bool, error) { panic("terminal went away") }
	a := newApp(&config.Config{}, log, ask, nil)

	err = a.Run(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "panic: terminal went away")
	assert.Contains(t, err.Error(), "goroutine")
}

func TestGuardOptions_FromConfig(t *testing.T) {
	cfg := &config.Config{ProcessingInterval: 3, FPSReportEvery: 10, RetryDelay: 5}
	a := newApp(cfg, nil, nil, nil)

	opts := a.guardOptions()
	assert.Equal(t, 3, opts.ProcessingInterval)
	assert.Equal(t, 10, opts.FPSReportEvery)
	assert.EqualValues(t, 5, opts.RetryDelay)
	assert.Contains(t, opts.QuitKeys, int('q'))
}

func TestCleanLogs_TruncatesEveryLevel(t *testing.T) {
	logDir := t.TempDir()
	log, err := logger.New(logDir, io.Discard, io.Discard)
	require.NoError(t, err)
	t.Cleanup(func() { log.Close() })

	log.Info("old info")
	log.Warning("old warning")
	log.Error("old error")

	a := newApp(&config.Config{LogDirectory: logDir}, log, nil, nil)
	require.NoError(t, a.CleanLogs())

	for _, name := range logger.LogFiles {
		data, err := os.ReadFile(filepath.Join(logDir, name))
		require.NoError(t, err, name)
		assert.Empty(t, data, name)
	}

	log.Info("fresh")
	data, err := os.ReadFile(filepath.Join(logDir, "info.log"))
	require.NoError(t, err)
	assert.Contains(t, string(data), "fresh")
	assert.NotContains(t, string(data), "old info")
}
