package logger

import (
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// EncoderConfig is the field layout shared by every catalog log line
func EncoderConfig(env string) zapcore.EncoderConfig {
	if env == "production" {
		cfg := zap.NewProductionEncoderConfig()
		cfg.TimeKey = "timestamp"
		cfg.MessageKey = "message"
		cfg.EncodeTime = zapcore.ISO8601TimeEncoder
		return cfg
	}

	cfg := zap.NewDevelopmentEncoderConfig()
	cfg.EncodeLevel = zapcore.CapitalColorLevelEncoder
	return cfg
}

// New creates a new structured logger writing to stdout
func New(env string) (*zap.Logger, error) {
	return NewWithWriter(env, zapcore.Lock(os.Stdout)), nil
}

// NewWithWriter builds the logger on an arbitrary sink. Production emits
// JSON at info level; anything else emits console lines at debug level.
func NewWithWriter(env string, w zapcore.WriteSyncer) *zap.Logger {
	encoderConfig := EncoderConfig(env)

	var (
		encoder zapcore.Encoder
		level   = zapcore.DebugLevel
	)
	if env == "production" {
		encoder = zapcore.NewJSONEncoder(encoderConfig)
		level = zapcore.InfoLevel
	} else {
		encoder = zapcore.NewConsoleEncoder(encoderConfig)
	}

	core := zapcore.NewCore(encoder, w, level)

	return zap.New(core,
		zap.AddCaller(),
		zap.AddStacktrace(zapcore.ErrorLevel),
		zap.ErrorOutput(zapcore.Lock(os.Stderr)),
		zap.Fields(zap.String("service", "storefront-catalog")),
	)
}

// NewWithDefaults creates a logger from SERVER_ENV
func NewWithDefaults() *zap.Logger {
	env := os.Getenv("SERVER_ENV")
	if env == "" {
		env = "development"
	}

	logger, err := New(env)
	if err != nil {
		// Fallback to basic logger
		logger, _ = zap.NewProduction()
	}

	return logger
}
