package logger

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestLogger(t *testing.T) (*Logger, string, *bytes.Buffer, *bytes.Buffer) {
	t.Helper()
	color.NoColor = true

	dir := t.TempDir()
	var stdout, stderr bytes.Buffer
	l, err := New(dir, &stdout, &stderr)
	require.NoError(t, err)
	t.Cleanup(func() { l.Close() })
	return l, dir, &stdout, &stderr
}

func readLog(t *testing.T, dir, name string) string {
	t.Helper()
	data, err := os.ReadFile(filepath.Join(dir, name))
	require.NoError(t, err)
	return string(data)
}

func TestLogger_LevelsGoToTheirFiles(t *testing.T) {
	l, dir, stdout, stderr := newTestLogger(t)

	l.Info("camera %d ready", 0)
	l.Warning("frame dropped")
	l.Error("write failed: %v", "disk full")

	assert.Contains(t, readLog(t, dir, "info.log"), "camera 0 ready")
	assert.Contains(t, readLog(t, dir, "warning.log"), "frame dropped")
	assert.Contains(t, readLog(t, dir, "error.log"), "write failed: disk full")

	assert.NotContains(t, readLog(t, dir, "info.log"), "frame dropped")

	assert.Contains(t, stdout.String(), "INFO    ")
	assert.Contains(t, stdout.String(), "WARNING ")
	assert.Contains(t, stderr.String(), "ERROR   ")
	assert.NotContains(t, stdout.String(), "write failed")
}

func TestLogger_FilesHaveNoConsoleTag(t *testing.T) {
	l, dir, _, _ := newTestLogger(t)

	l.Info("hello")

	line := strings.TrimSpace(readLog(t, dir, "info.log"))
	assert.False(t, strings.HasPrefix(line, "INFO"), "file line %q should not carry the console tag", line)
	assert.Contains(t, line, "logger_test.go")
}

func TestLogger_FormatsPercentArgument(t *testing.T) {
	l, dir, _, _ := newTestLogger(t)

	l.Info("%s", "100% done")
	l.Info("%d%% of frames", 50)

	info := readLog(t, dir, "info.log")
	assert.Contains(t, info, "100% done")
	assert.Contains(t, info, "50% of frames")
}

func TestLogger_CleanLogs(t *testing.T) {
	l, dir, _, _ := newTestLogger(t)

	l.Warning("something")
	require.NotEmpty(t, readLog(t, dir, "warning.log"))

	require.NoError(t, l.CleanLogs("warning.log"))
	assert.Empty(t, readLog(t, dir, "warning.log"))

	assert.Error(t, l.CleanLogs("missing.log"))
}
