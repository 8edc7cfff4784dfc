// Package logger builds the zap logger shared by the server and commands.
package logger

import (
	"os"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// New creates a logger writing to stdout. Format is "json" or "console";
// an unparseable level falls back to info.
func New(level, format string) *zap.Logger {
	var lvl zapcore.Level
	if err := lvl.UnmarshalText([]byte(strings.ToLower(level))); err != nil {
		lvl = zapcore.InfoLevel
	}

	var encoder zapcore.Encoder
	var options []zap.Option
	if strings.EqualFold(format, "console") {
		encCfg := zap.NewDevelopmentEncoderConfig()
		encCfg.EncodeTime = zapcore.ISO8601TimeEncoder
		encCfg.EncodeLevel = zapcore.CapitalColorLevelEncoder
		encoder = zapcore.NewConsoleEncoder(encCfg)
		options = append(options, zap.AddCaller(), zap.AddStacktrace(zapcore.ErrorLevel))
	} else {
		encCfg := zap.NewProductionEncoderConfig()
		encCfg.EncodeTime = zapcore.ISO8601TimeEncoder
		encoder = zapcore.NewJSONEncoder(encCfg)
		options = append(options, zap.AddCaller())
	}

	core := zapcore.NewCore(encoder, zapcore.Lock(os.Stdout), lvl)
	return zap.New(core, options...)
}

// Sync flushes buffered entries, ignoring the EINVAL some terminals return
// for stdout.
func Sync(l *zap.Logger) {
	_ = l.Sync()
}
