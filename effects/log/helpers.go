package log

import (
	"context"
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// NewTest builds a debug-level console logger for tests and demos.
func NewTest() *zap.Logger {
	consoleCore := zapcore.NewCore(
		zapcore.NewConsoleEncoder(zap.NewDevelopmentEncoderConfig()),
		zapcore.Lock(os.Stdout),
		zap.DebugLevel,
	)
	return zap.New(consoleCore)
}

func WithTestLogger(
	ctx context.Context,
) (context.Context, func() context.Context) {
	return WithZapLogger(ctx, NewTest())
}
