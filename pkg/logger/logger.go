// Package logger is the service's levelled logger.
package logger

import (
	"fmt"
	"io"
	"log"
	"os"
	"strings"
	"sync"
	"time"
)

type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
	LevelFatal
)

var levelNames = map[Level]string{
	LevelDebug: "debug",
	LevelInfo:  "info",
	LevelWarn:  "warn",
	LevelError: "error",
	LevelFatal: "fatal",
}

func (l Level) String() string {
	if s, ok := levelNames[l]; ok {
		return s
	}
	return "info"
}

var (
	mu     sync.RWMutex
	logger *log.Logger = log.New(os.Stdout, "", 0)
	level  Level       = LevelInfo

	// exit is replaced in tests so Fatalf can be observed.
	exit = os.Exit
)

// ParseLevel maps debug|info|warn|warning|error|fatal (any case) to a Level.
// Unknown input yields LevelInfo.
func ParseLevel(s string) Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return LevelDebug
	case "warn", "warning":
		return LevelWarn
	case "error":
		return LevelError
	case "fatal":
		return LevelFatal
	default:
		return LevelInfo
	}
}

// Init sets the global log level. Call early during startup.
func Init(l string) {
	mu.Lock()
	defer mu.Unlock()
	level = ParseLevel(l)
}

// SetOutput redirects log output.
func SetOutput(w io.Writer) {
	mu.Lock()
	defer mu.Unlock()
	logger = log.New(w, "", 0)
}

// Writer returns the current output, for libraries that log on their own.
func Writer() io.Writer {
	mu.RLock()
	defer mu.RUnlock()
	return logger.Writer()
}

func logf(l Level, format string, v ...interface{}) {
	mu.RLock()
	lg, min := logger, level
	mu.RUnlock()
	if l < min {
		return
	}
	lg.Printf("%s [%s] %s", time.Now().Format(time.RFC3339), strings.ToUpper(l.String()), fmt.Sprintf(format, v...))
}

func Debugf(format string, v ...interface{}) { logf(LevelDebug, format, v...) }
func Infof(format string, v ...interface{})  { logf(LevelInfo, format, v...) }
func Warnf(format string, v ...interface{})  { logf(LevelWarn, format, v...) }
func Errorf(format string, v ...interface{}) { logf(LevelError, format, v...) }

// Fatalf always logs, then exits with status 1.
func Fatalf(format string, v ...interface{}) {
	mu.RLock()
	lg := logger
	mu.RUnlock()
	lg.Printf("%s [FATAL] %s", time.Now().Format(time.RFC3339), fmt.Sprintf(format, v...))
	exit(1)
}

func Info(v string)  { Infof("%s", v) }
func Warn(v string)  { Warnf("%s", v) }
func Error(v string) { Errorf("%s", v) }

// LevelString returns the current level as text.
func LevelString() string {
	mu.RLock()
	defer mu.RUnlock()
	return level.String()
}
