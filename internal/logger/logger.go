package logger

import (
	"net/http"

	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const (
	EnvProduction  = "production"
	EnvDevelopment = "development"
	EnvTest        = "test"
)

// EncoderConfig is the JSON layout shipped to log collectors in production.
func EncoderConfig() zapcore.EncoderConfig {
	cfg := zap.NewProductionEncoderConfig()
	cfg.TimeKey = "timestamp"
	cfg.MessageKey = "message"
	cfg.EncodeTime = zapcore.ISO8601TimeEncoder
	cfg.EncodeDuration = zapcore.MillisDurationEncoder
	return cfg
}

// Level returns the minimum level logged for env. Tests only surface warnings.
func Level(env string) zapcore.Level {
	switch env {
	case EnvProduction:
		return zapcore.InfoLevel
	case EnvTest:
		return zapcore.WarnLevel
	default:
		return zapcore.DebugLevel
	}
}

// New creates a new structured logger
func New(env string) (*zap.Logger, error) {
	var config zap.Config

	if env == EnvProduction {
		config = zap.NewProductionConfig()
		config.Encoding = "json"
		config.EncoderConfig = EncoderConfig()
	} else {
		config = zap.NewDevelopmentConfig()
		config.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}
	config.Level = zap.NewAtomicLevelAt(Level(env))

	// Always log to stdout for container compatibility
	config.OutputPaths = []string{"stdout"}
	config.ErrorOutputPaths = []string{"stderr"}

	return config.Build(
		zap.AddCaller(),
		zap.AddStacktrace(zapcore.ErrorLevel),
		zap.Fields(zap.String("env", env)),
	)
}

// NewJSON writes production-format entries to w at the level for env.
func NewJSON(env string, w zapcore.WriteSyncer) *zap.Logger {
	core := zapcore.NewCore(zapcore.NewJSONEncoder(EncoderConfig()), w, Level(env))
	return zap.New(core, zap.AddStacktrace(zapcore.ErrorLevel))
}

// WithRequest tags l with the chi request id of r, when there is one.
func WithRequest(l *zap.Logger, r *http.Request) *zap.Logger {
	id := middleware.GetReqID(r.Context())
	if id == "" {
		return l
	}
	return l.With(zap.String("request_id", id))
}
