package logger

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/rs/zerolog"
	"gopkg.in/natefinch/lumberjack.v2"
)

// logger.go builds the shared zerolog loggers: human-readable console
// output plus a rotated log file.

var (
	logDir   string
	logLevel = "info"

	mu      sync.RWMutex
	loggers = make(map[string]zerolog.Logger)
)

// SetLogDir sets the directory log files are written under. Call it
// before the first New; already-built loggers keep their file.
func SetLogDir(dir string) {
	logDir = dir
}

// SetLogLevel sets the level applied to loggers built afterwards.
func SetLogLevel(level string) {
	logLevel = strings.ToLower(level)
}

// logFile resolves the log file path, creating the logs directory on
// first use. When the directory cannot be created, logging falls back
// to the system temp directory rather than failing the program.
func logFile() string {
	dir := logDir
	if dir == "" {
		dir = "."
	}
	logsDir := filepath.Join(dir, "logs")
	if err := os.MkdirAll(logsDir, 0o755); err != nil {
		return filepath.Join(os.TempDir(), "progressbar.log")
	}
	return filepath.Join(logsDir, "progressbar.log")
}

// New returns the logger for the named component, building it on first
// use. Console output goes to stdout so it stays off the stream the
// progress renderer redraws on.
func New(component string) zerolog.Logger {
	mu.RLock()
	if l, ok := loggers[component]; ok {
		mu.RUnlock()
		return l
	}
	mu.RUnlock()

	rotating := &lumberjack.Logger{
		Filename: logFile(),
		MaxSize:  10, // megabytes
		MaxAge:   15, // days
		Compress: true,
	}

	console := zerolog.ConsoleWriter{
		Out:        os.Stdout,
		TimeFormat: "15:04:05",
		FormatLevel: func(i interface{}) string {
			level := strings.ToUpper(fmt.Sprintf("%s", i))
			if len(level) > 3 {
				level = level[:3]
			}
			return "[" + level + "]"
		},
	}

	file := zerolog.ConsoleWriter{
		Out:        rotating,
		TimeFormat: "2006-01-02 15:04:05",
		NoColor:    true,
		FormatLevel: func(i interface{}) string {
			return strings.ToUpper(fmt.Sprintf("| %-6s|", i))
		},
	}

	level, err := zerolog.ParseLevel(logLevel)
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}

	l := zerolog.New(zerolog.MultiLevelWriter(console, file)).
		With().
		Timestamp().
		Str("component", component).
		Logger().
		Level(level)

	mu.Lock()
	loggers[component] = l
	mu.Unlock()

	return l
}

// Default returns the program-wide logger.
func Default() zerolog.Logger {
	return New("progressbar")
}
