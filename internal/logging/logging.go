package logging

import (
	"io"
	"log"
	"os"
	"sync"
)

// Level is a logging threshold; higher levels are more verbose.
type Level int

const (
	LevelError Level = iota
	LevelWarn
	LevelInfo
	LevelDebug
)

var (
	mu     sync.RWMutex
	level  = LevelInfo
	logger = log.New(os.Stderr, "", log.LstdFlags)
)

// SetLevel sets the global log level
func SetLevel(l Level) {
	mu.Lock()
	level = l
	mu.Unlock()
}

// SetVerbose enables verbose (debug) logging
func SetVerbose(verbose bool) {
	if verbose {
		SetLevel(LevelDebug)
	} else {
		SetLevel(LevelInfo)
	}
}

// SetOutput redirects log output, used by tests and the doctor command.
func SetOutput(w io.Writer) {
	logger.SetOutput(w)
}

func enabled(l Level) bool {
	mu.RLock()
	defer mu.RUnlock()
	return level >= l
}

func Error(format string, args ...interface{}) {
	if enabled(LevelError) {
		logger.Printf("[ERROR] "+format, args...)
	}
}

func Warn(format string, args ...interface{}) {
	if enabled(LevelWarn) {
		logger.Printf("[WARN] "+format, args...)
	}
}

func Info(format string, args ...interface{}) {
	if enabled(LevelInfo) {
		logger.Printf("[INFO] "+format, args...)
	}
}

func Debug(format string, args ...interface{}) {
	if enabled(LevelDebug) {
		logger.Printf("[DEBUG] "+format, args...)
	}
}
