package logging

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

// Options configures the process logger. File is optional; when set, log
// lines go to stderr and are appended to the file.
type Options struct {
	Level string
	File  string
}

var (
	mu      sync.RWMutex
	current = LevelInfo
	sugar   = newSugar(zapcore.InfoLevel, nil)
)

// ParseLevel maps debug|info|warn|error to a Level, defaulting to info.
func ParseLevel(s string) Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "error":
		return LevelError
	case "warn", "warning":
		return LevelWarn
	case "debug":
		return LevelDebug
	default:
		return LevelInfo
	}
}

// InitFromEnv sets the log level based on LOG_LEVEL (debug|info|warn|error).
func InitFromEnv() {
	_ = Init(Options{Level: os.Getenv("LOG_LEVEL"), File: os.Getenv("LOG_FILE")})
}

// Init replaces the process logger. A file that cannot be opened is reported
// and logging continues on stderr only.
func Init(opts Options) error {
	level := ParseLevel(opts.Level)

	var fileSink zapcore.WriteSyncer
	var openErr error
	if opts.File != "" {
		if dir := filepath.Dir(opts.File); dir != "" {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				openErr = fmt.Errorf("create log dir: %w", err)
			}
		}
		if openErr == nil {
			f, err := os.OpenFile(opts.File, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
			if err != nil {
				openErr = fmt.Errorf("open log file: %w", err)
			} else {
				fileSink = zapcore.AddSync(f)
			}
		}
	}

	mu.Lock()
	current = level
	sugar = newSugar(zapLevel(level), fileSink)
	mu.Unlock()

	if openErr != nil {
		Errorf("[logging] %v; using stderr only", openErr)
	} else if fileSink != nil {
		Infof("[logging] logging to file: %s", opts.File)
	}
	return openErr
}

// Enabled reports whether messages at l are emitted.
func Enabled(l Level) bool {
	mu.RLock()
	defer mu.RUnlock()
	return current <= l
}

func Debugf(format string, args ...interface{}) {
	logger().Debugf(format, args...)
}

func Infof(format string, args ...interface{}) {
	logger().Infof(format, args...)
}

func Warnf(format string, args ...interface{}) {
	logger().Warnf(format, args...)
}

func Errorf(format string, args ...interface{}) {
	logger().Errorf(format, args...)
}

func Fatalf(format string, args ...interface{}) {
	logger().Fatalf(format, args...)
}

// Sync flushes buffered entries; call it before exit.
func Sync() {
	_ = logger().Sync()
}

func logger() *zap.SugaredLogger {
	mu.RLock()
	defer mu.RUnlock()
	return sugar
}

func zapLevel(l Level) zapcore.Level {
	switch l {
	case LevelDebug:
		return zapcore.DebugLevel
	case LevelWarn:
		return zapcore.WarnLevel
	case LevelError:
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}

func newSugar(level zapcore.Level, fileSink zapcore.WriteSyncer) *zap.SugaredLogger {
	encCfg := zap.NewProductionEncoderConfig()
	encCfg.TimeKey = "time"
	encCfg.EncodeTime = zapcore.TimeEncoderOfLayout("2006-01-02 15:04:05")
	encCfg.EncodeLevel = zapcore.CapitalLevelEncoder
	enc := zapcore.NewConsoleEncoder(encCfg)

	enabler := zap.NewAtomicLevelAt(level)
	cores := []zapcore.Core{zapcore.NewCore(enc, zapcore.Lock(os.Stderr), enabler)}
	if fileSink != nil {
		cores = append(cores, zapcore.NewCore(enc, fileSink, enabler))
	}
	return zap.New(zapcore.NewTee(cores...)).Sugar()
}
