package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/mattn/go-isatty"
	"github.com/sirupsen/logrus"

	"github.com/tules/tules/pkg/paths"
)

var (
	loggers   = make(map[string]*logrus.Entry)
	loggersMu sync.Mutex
)

// NewLogger creates and returns a pre-configured logger for a specific component.
// It uses a singleton pattern per component to avoid re-initializing.
func NewLogger(component string) *logrus.Entry {
	loggersMu.Lock()
	defer loggersMu.Unlock()

	if logger, exists := loggers[component]; exists {
		return logger
	}

	logger := logrus.New()

	levelStr := "info"
	if v := os.Getenv("TULES_LOG_LEVEL"); v != "" {
		levelStr = v
	}
	level, err := logrus.ParseLevel(levelStr)
	if err != nil {
		level = logrus.InfoLevel
	}
	logger.SetLevel(level)

	if os.Getenv("TULES_LOG_CALLER") == "true" {
		logger.SetReportCaller(true)
	}

	logger.SetFormatter(&logrus.JSONFormatter{})

	var writers []io.Writer

	// File sink under the tules state dir, one file per component per day.
	if stateDir := paths.StateDir(); stateDir != "" {
		dateStr := time.Now().Format("2006-01-02")
		logFilePath := filepath.Join(stateDir, "logs", fmt.Sprintf("%s-%s.log", component, dateStr))
		if err := os.MkdirAll(filepath.Dir(logFilePath), 0755); err == nil {
			file, err := os.OpenFile(logFilePath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0666)
			if err == nil {
				writers = append(writers, file)
			}
		}
	}

	// Structured stderr only in debug mode or when not attached to an
	// interactive terminal, so normal CLI output stays clean.
	isDebug := os.Getenv("TULES_DEBUG") == "1" || logger.GetLevel() == logrus.DebugLevel
	isInteractive := isatty.IsTerminal(os.Stderr.Fd()) || isatty.IsCygwinTerminal(os.Stderr.Fd())
	if isDebug || !isInteractive {
		writers = append(writers, os.Stderr)
	}

	switch len(writers) {
	case 0:
		logger.SetOutput(io.Discard)
	case 1:
		logger.SetOutput(writers[0])
	default:
		logger.SetOutput(io.MultiWriter(writers...))
	}

	entry := logger.WithField("component", component)
	loggers[component] = entry
	return entry
}
