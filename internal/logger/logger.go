// Package logger provides leveled logging to stderr. Query-path failures
// are logged here with their failure kind so operators can see what
// degraded while end users only get the fallback answer.
package logger

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
)

type level int

const (
	levelDebug level = iota
	levelInfo
	levelWarn
	levelError
)

var (
	mu       sync.RWMutex
	minLevel = levelInfo
	output   io.Writer = os.Stderr
)

// SetLevel sets the minimum level: "debug", "info", "warn" or "error".
// Unknown values keep the current level.
func SetLevel(name string) {
	mu.Lock()
	defer mu.Unlock()
	switch strings.ToLower(name) {
	case "debug":
		minLevel = levelDebug
	case "info":
		minLevel = levelInfo
	case "warn":
		minLevel = levelWarn
	case "error":
		minLevel = levelError
	}
}

// SetOutput sets the log destination. Defaults to os.Stderr; useful for
// tests.
func SetOutput(w io.Writer) {
	mu.Lock()
	defer mu.Unlock()
	output = w
}

func log(l level, tag, format string, args ...any) {
	mu.RLock()
	defer mu.RUnlock()
	if l < minLevel {
		return
	}
	fmt.Fprintf(output, "["+tag+"] "+format+"\n", args...)
}

func Debug(format string, args ...any) { log(levelDebug, "DEBUG", format, args...) }
func Info(format string, args ...any)  { log(levelInfo, "INFO", format, args...) }
func Warn(format string, args ...any)  { log(levelWarn, "WARN", format, args...) }
func Error(format string, args ...any) { log(levelError, "ERROR", format, args...) }
