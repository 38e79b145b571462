// internal/logger/logger.go
package logger

import (
	"errors"
	"os"
	"syscall"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

type Config struct {
	LogFile    string
	MaxSize    int  // megabytes
	MaxAge     int  // days
	MaxBackups int  // rotated files kept
	Compress   bool // gzip rotated files
	Debug      bool
	// Console writes human-readable logs to stdout. Disable it while a
	// full-screen terminal UI owns the screen.
	Console bool
	// Buffer, when set, receives every entry for in-app display.
	Buffer *LogBuffer
}

func DefaultConfig() Config {
	return Config{
		LogFile:    "staker.log",
		MaxSize:    50,
		MaxAge:     14,
		MaxBackups: 3,
		Compress:   true,
		Console:    true,
	}
}

// New builds the application logger: a pretty console core, a rotated JSON
// file core and an optional in-memory buffer core.
func New(cfg Config) (*zap.Logger, error) {
	level := zapcore.InfoLevel
	if cfg.Debug {
		level = zapcore.DebugLevel
	}

	var cores []zapcore.Core

	if cfg.Console {
		cores = append(cores, zapcore.NewCore(PrettyEncoder(), zapcore.Lock(os.Stdout), level))
	}

	if cfg.LogFile != "" {
		rotator := &lumberjack.Logger{
			Filename:   cfg.LogFile,
			MaxSize:    cfg.MaxSize,
			MaxBackups: cfg.MaxBackups,
			MaxAge:     cfg.MaxAge,
			Compress:   cfg.Compress,
		}
		cores = append(cores, zapcore.NewCore(zapcore.NewJSONEncoder(fileEncoderConfig()), zapcore.AddSync(rotator), level))
	}

	if cfg.Buffer != nil {
		cores = append(cores, zapcore.NewCore(zapcore.NewJSONEncoder(bufferEncoderConfig()), zapcore.AddSync(cfg.Buffer), level))
	}

	if len(cores) == 0 {
		return zap.NewNop(), nil
	}

	return zap.New(zapcore.NewTee(cores...),
		zap.AddCaller(),
		zap.AddStacktrace(zapcore.ErrorLevel),
	), nil
}

func fileEncoderConfig() zapcore.EncoderConfig {
	ec := zap.NewProductionEncoderConfig()
	ec.TimeKey = "timestamp"
	ec.EncodeTime = zapcore.ISO8601TimeEncoder
	ec.EncodeLevel = zapcore.CapitalLevelEncoder
	ec.EncodeDuration = zapcore.StringDurationEncoder
	ec.EncodeCaller = zapcore.ShortCallerEncoder
	return ec
}

func bufferEncoderConfig() zapcore.EncoderConfig {
	return zapcore.EncoderConfig{
		MessageKey:     "msg",
		LevelKey:       "level",
		TimeKey:        "time",
		NameKey:        "logger",
		LineEnding:     zapcore.DefaultLineEnding,
		EncodeLevel:    zapcore.LowercaseLevelEncoder,
		EncodeTime:     zapcore.RFC3339NanoTimeEncoder,
		EncodeDuration: zapcore.StringDurationEncoder,
		EncodeName:     zapcore.FullNameEncoder,
	}
}

// WithOperation returns a logger tagged with the operation name and a fresh
// correlation id, and the id itself.
func WithOperation(l *zap.Logger, operation string) (*zap.Logger, string) {
	id := uuid.New().String()
	return l.With(
		zap.String("operation", operation),
		zap.String("correlation_id", id),
		zap.Time("start_time", time.Now().UTC()),
	), id
}

// WithTransaction adds the transaction digest to every entry.
func WithTransaction(l *zap.Logger, digest string) *zap.Logger {
	return l.With(zap.String("tx_digest", digest))
}

// Sync flushes l, ignoring the errors terminals return for fsync on stdout.
func Sync(l *zap.Logger) error {
	err := l.Sync()
	if errors.Is(err, syscall.EINVAL) || errors.Is(err, syscall.ENOTTY) {
		return nil
	}
	return err
}
