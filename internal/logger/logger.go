package logger

import (
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"sync"

	"deviceguard/internal/config"

	"github.com/fatih/color"
	"github.com/pkg/errors"
)

// Logger provides leveled logging (info/warning/error) to files and stdout/stderr.
type Logger struct {
	infoLog    *log.Logger
	warningLog *log.Logger
	errorLog   *log.Logger
	logDir     string
	files      []*os.File
	mu         sync.Mutex
}

// NewLogger creates a Logger and ensures the log directory exists.
func NewLogger(config *config.Config) (*Logger, error) {
	return New(config.LogDirectory, os.Stdout, os.Stderr)
}

// New creates a Logger writing to per-level files in logDir and to the given
// console writers.
func New(logDir string, stdout, stderr io.Writer) (*Logger, error) {
	if err := os.MkdirAll(logDir, 0755); err != nil {
		return nil, errors.Wrap(err, "failed to create log directory")
	}

	logger := &Logger{
		logDir: logDir,
	}

	if err := logger.setupLoggers(stdout, stderr); err != nil {
		logger.Close()
		return nil, err
	}
	return logger, nil
}

// setupLoggers initializes writers and per-level loggers.
func (l *Logger) setupLoggers(stdout, stderr io.Writer) error {
	infoFileHandle, err := l.openLogFile(filepath.Join(l.logDir, LogFiles[0]))
	if err != nil {
		return err
	}
	warningFileHandle, err := l.openLogFile(filepath.Join(l.logDir, LogFiles[1]))
	if err != nil {
		return err
	}
	errorFileHandle, err := l.openLogFile(filepath.Join(l.logDir, LogFiles[2]))
	if err != nil {
		return err
	}

	// The console gets a colored level tag; files stay plain.
	infoWriter := io.MultiWriter(prefixWriter{stdout, color.GreenString("INFO    ")}, infoFileHandle)
	warningWriter := io.MultiWriter(prefixWriter{stdout, color.YellowString("WARNING ")}, warningFileHandle)
	errorWriter := io.MultiWriter(prefixWriter{stderr, color.RedString("ERROR   ")}, errorFileHandle)

	flags := log.Ldate | log.Ltime | log.Lshortfile
	l.infoLog = log.New(infoWriter, "", flags)
	l.warningLog = log.New(warningWriter, "", flags)
	l.errorLog = log.New(errorWriter, "", flags)
	return nil
}

// openLogFile opens or creates a log file for appending.
func (l *Logger) openLogFile(filename string) (*os.File, error) {
	file, err := os.OpenFile(filename, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0666)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open log file %s", filename)
	}
	l.files = append(l.files, file)
	return file, nil
}

// Info writes a formatted info-level log entry.
func (l *Logger) Info(format string, v ...interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.infoLog.Output(2, fmt.Sprintf(format, v...))
}

// Warning writes a formatted warning-level log entry.
func (l *Logger) Warning(format string, v ...interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.warningLog.Output(2, fmt.Sprintf(format, v...))
}

// Error writes a formatted error-level log entry.
func (l *Logger) Error(format string, v ...interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.errorLog.Output(2, fmt.Sprintf(format, v...))
}

// LogFiles are the per-level files written under the log directory.
var LogFiles = []string{"info.log", "warning.log", "error.log"}

// CleanLogs truncates the specified log file.
func (l *Logger) CleanLogs(fileName string) error {
	filePath := filepath.Join(l.logDir, fileName)
	file, err := os.OpenFile(filePath, os.O_WRONLY|os.O_TRUNC, 0644)
	if err != nil {
		return errors.Wrapf(err, "failed to truncate %s", fileName)
	}
	return file.Close()
}

// Close closes the underlying log files.
func (l *Logger) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	var firstErr error
	for _, f := range l.files {
		if err := f.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	l.files = nil
	return firstErr
}
