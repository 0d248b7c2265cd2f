package log

import (
	"context"

	"go.uber.org/zap"
)

// LogLevel defines the severity level for log messages.
type LogLevel string

const (
	// LogInfo is used for general informational messages.
	LogInfo LogLevel = "info"

	// LogWarn is used for potentially harmful situations.
	LogWarn LogLevel = "warn"

	// LogError is used for error events that might still allow the application to continue running.
	LogError LogLevel = "error"

	// LogDebug is used for debugging messages with detailed internal information.
	LogDebug LogLevel = "debug"
)

type loggerKey struct{}

// WithZapLogger installs logger into ctx so that stores, effects and sharing
// cells running under ctx log through it.
// The teardown flushes the logger and returns the parent context.
func WithZapLogger(
	ctx context.Context,
	logger *zap.Logger,
) (context.Context, func() context.Context) {
	if logger == nil {
		logger = zap.NewNop()
	}
	return context.WithValue(ctx, loggerKey{}, logger), func() context.Context {
		// Sync on a console core returns EINVAL for stdout; nothing to do about it.
		_ = logger.Sync()
		return ctx
	}
}

// From returns the logger installed in ctx, or a no-op logger.
func From(ctx context.Context) *zap.Logger {
	if ctx == nil {
		return zap.NewNop()
	}
	if logger, ok := ctx.Value(loggerKey{}).(*zap.Logger); ok {
		return logger
	}
	return zap.NewNop()
}

// Effect emits a structured log entry through the logger carried by ctx.
func Effect(ctx context.Context, level LogLevel, msg string, fields map[string]interface{}) {
	Write(From(ctx), level, msg, fields)
}

// Write logs msg on logger at level.
func Write(logger *zap.Logger, level LogLevel, msg string, fields map[string]interface{}) {
	zfields := make([]zap.Field, 0, len(fields))
	for k, v := range fields {
		if err, ok := v.(error); ok {
			zfields = append(zfields, zap.NamedError(k, err))
			continue
		}
		zfields = append(zfields, zap.Any(k, v))
	}

	switch level {
	case LogInfo:
		logger.Info(msg, zfields...)
	case LogWarn:
		logger.Warn(msg, zfields...)
	case LogError:
		logger.Error(msg, zfields...)
	case LogDebug:
		logger.Debug(msg, zfields...)
	default:
		logger.Info(msg, zfields...)
	}
}
