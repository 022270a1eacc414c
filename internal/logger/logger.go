package logger

import (
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var log = zap.NewNop()

func Init() {
	encoderCfg := zap.NewProductionEncoderConfig()
	encoderCfg.EncodeTime = zapcore.ISO8601TimeEncoder

	level := zapcore.InfoLevel
	if os.Getenv("LOG_LEVEL") == "debug" {
		level = zapcore.DebugLevel
	}

	core := zapcore.NewCore(
		zapcore.NewJSONEncoder(encoderCfg),
		zapcore.AddSync(os.Stdout),
		level,
	)

	log = zap.New(core)
	log.Info("logger initialized")
}

func fieldsOf(fields map[string]any) []zap.Field {
	out := make([]zap.Field, 0, len(fields))
	for k, v := range fields {
		out = append(out, zap.Any(k, v))
	}
	return out
}

func Info(msg string, fields map[string]any) {
	log.Info(msg, fieldsOf(fields)...)
}

func Warn(msg string, fields map[string]any) {
	log.Warn(msg, fieldsOf(fields)...)
}

func Error(msg string, fields map[string]any) {
	log.Error(msg, fieldsOf(fields)...)
}

func Fatal(msg string, fields map[string]any) {
	log.Fatal(msg, fieldsOf(fields)...)
}
