package logging

import (
	"fmt"
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

const (
	rotateMaxSizeMB  = 30
	rotateMaxAgeDays = 365
	rotateMaxBackups = 10
)

// Options configures NewLogger
type Options struct {
	ServiceName string
	Level       string
	// File, when set, receives a copy of every entry through a rotating writer
	File string
	// Interactive keeps stderr clear for a terminal user. stderr gets warnings and above,
	// or nothing at all when File is set.
	Interactive bool
}

// NewLogger creates a new structured logger
func NewLogger(opts Options) (*zap.Logger, error) {
	level := zap.InfoLevel
	if opts.Level != "" {
		parsed, err := zapcore.ParseLevel(opts.Level)
		if err != nil {
			return nil, fmt.Errorf("invalid log level %q: %w", opts.Level, err)
		}
		level = parsed
	}

	encoderConfig := zap.NewProductionEncoderConfig()
	encoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	encoder := zapcore.NewJSONEncoder(encoderConfig)

	var cores []zapcore.Core
	switch {
	case !opts.Interactive:
		cores = append(cores, zapcore.NewCore(encoder, zapcore.Lock(os.Stderr), level))
	case opts.File == "":
		cores = append(cores, zapcore.NewCore(encoder, zapcore.Lock(os.Stderr), maxLevel(level, zap.WarnLevel)))
	}
	if opts.File != "" {
		cores = append(cores, zapcore.NewCore(encoder, zapcore.AddSync(&lumberjack.Logger{
			Filename:   opts.File,
			MaxSize:    rotateMaxSizeMB,
			MaxAge:     rotateMaxAgeDays,
			MaxBackups: rotateMaxBackups,
			LocalTime:  true,
			Compress:   true,
		}), level))
	}

	logger := zap.New(zapcore.NewTee(cores...), zap.AddCaller()).
		With(zap.String("service", opts.ServiceName))

	return logger, nil
}

func maxLevel(a, b zapcore.Level) zapcore.Level {
	if a > b {
		return a
	}
	return b
}

// WithSession returns a logger with session_id field
func WithSession(logger *zap.Logger, sessionID string) *zap.Logger {
	return logger.With(zap.String("session_id", sessionID))
}
