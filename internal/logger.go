package internal

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

// LogLevel represents the logging level
type LogLevel int

const (
	LogLevelError LogLevel = iota
	LogLevelWarn
	LogLevelInfo
	LogLevelDebug
)

var (
	logMu    sync.RWMutex
	logLevel = LogLevelInfo
	atom     = zap.NewAtomicLevelAt(zapcore.InfoLevel)
	logger   = newZapLogger(zapcore.Lock(os.Stderr))
	rotator  *lumberjack.Logger
)

func newZapLogger(ws zapcore.WriteSyncer) *zap.SugaredLogger {
	encCfg := zap.NewDevelopmentEncoderConfig()
	encCfg.EncodeTime = zapcore.ISO8601TimeEncoder
	encCfg.EncodeLevel = zapcore.CapitalLevelEncoder
	core := zapcore.NewCore(zapcore.NewConsoleEncoder(encCfg), ws, atom)
	return zap.New(core).Sugar()
}

// ParseLogLevel maps "debug", "info", "warn" and "error" to a LogLevel
func ParseLogLevel(s string) (LogLevel, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return LogLevelDebug, nil
	case "", "info":
		return LogLevelInfo, nil
	case "warn", "warning":
		return LogLevelWarn, nil
	case "error":
		return LogLevelError, nil
	default:
		return LogLevelInfo, fmt.Errorf("unknown log level: %q", s)
	}
}

// SetLogLevel sets the global log level
func SetLogLevel(level LogLevel) {
	logMu.Lock()
	defer logMu.Unlock()
	logLevel = level
	switch level {
	case LogLevelError:
		atom.SetLevel(zapcore.ErrorLevel)
	case LogLevelWarn:
		atom.SetLevel(zapcore.WarnLevel)
	case LogLevelDebug:
		atom.SetLevel(zapcore.DebugLevel)
	default:
		atom.SetLevel(zapcore.InfoLevel)
	}
}

// SetVerbose enables verbose (debug) logging
func SetVerbose(verbose bool) {
	if verbose {
		SetLogLevel(LogLevelDebug)
	} else {
		SetLogLevel(LogLevelInfo)
	}
}

// SetLogOutput redirects log output to w
func SetLogOutput(w io.Writer) {
	logMu.Lock()
	defer logMu.Unlock()
	closeRotatorLocked()
	logger = newZapLogger(zapcore.AddSync(w))
}

// SetLogFile sends log output to a size-rotated file
func SetLogFile(path string) {
	logMu.Lock()
	defer logMu.Unlock()
	closeRotatorLocked()
	rotator = &lumberjack.Logger{
		Filename:   path,
		MaxSize:    10, // megabytes
		MaxBackups: 3,
		MaxAge:     14, // days
	}
	logger = newZapLogger(zapcore.AddSync(rotator))
}

// SyncLogs flushes buffered log entries and closes any log file
func SyncLogs() {
	logMu.Lock()
	defer logMu.Unlock()
	_ = logger.Sync()
	closeRotatorLocked()
}

func closeRotatorLocked() {
	if rotator != nil {
		_ = rotator.Close()
		rotator = nil
	}
}

func currentLogger() *zap.SugaredLogger {
	logMu.RLock()
	defer logMu.RUnlock()
	return logger
}

// LogError logs an error message
func LogError(format string, args ...interface{}) {
	currentLogger().Errorf(format, args...)
}

// LogWarn logs a warning message
func LogWarn(format string, args ...interface{}) {
	currentLogger().Warnf(format, args...)
}

// LogInfo logs an info message
func LogInfo(format string, args ...interface{}) {
	currentLogger().Infof(format, args...)
}

// LogDebug logs a debug message
func LogDebug(format string, args ...interface{}) {
	currentLogger().Debugf(format, args...)
}
