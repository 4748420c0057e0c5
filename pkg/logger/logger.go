package logger

import (
	"fmt"
	"os"
	"strings"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const developmentEnv = "development"

// Config holds logger settings.
type Config struct {
	Level      string // debug, info, warn, error
	Encoding   string // json or console; empty picks console in development, json elsewhere
	OutputPath string // comma-separated zap sinks; empty means stdout
	Service    string // "service" field on every entry
	// Environment is attached as "env". Development also enables caller
	// info and colored levels on the console encoder.
	Environment string
	// Sampling keeps the first 100 identical entries per second and every
	// 100th after that.
	Sampling bool
}

// New opens the configured sinks and builds the logger.
func New(cfg Config) (*zap.Logger, error) {
	sink, _, err := zap.Open(outputPaths(cfg.OutputPath)...)
	if err != nil {
		return nil, fmt.Errorf("failed to open log output %q: %w", cfg.OutputPath, err)
	}
	return build(cfg, sink), nil
}

func build(cfg Config, sink zapcore.WriteSyncer) *zap.Logger {
	dev := cfg.Environment == developmentEnv

	var core zapcore.Core = zapcore.NewCore(newEncoder(cfg.Encoding, dev), sink, parseLevel(cfg.Level))
	if cfg.Sampling {
		core = zapcore.NewSamplerWithOptions(core, time.Second, 100, 100)
	}

	opts := []zap.Option{zap.ErrorOutput(zapcore.Lock(os.Stderr))}
	if dev {
		opts = append(opts, zap.AddCaller())
	}

	var fields []zap.Field
	if cfg.Service != "" {
		fields = append(fields, zap.String("service", cfg.Service))
	}
	if cfg.Environment != "" {
		fields = append(fields, zap.String("env", cfg.Environment))
	}
	return zap.New(core, opts...).With(fields...)
}

func newEncoder(encoding string, dev bool) zapcore.Encoder {
	encoderCfg := zap.NewProductionEncoderConfig()
	encoderCfg.TimeKey = "timestamp"
	encoderCfg.EncodeTime = zapcore.ISO8601TimeEncoder
	encoderCfg.EncodeLevel = zapcore.CapitalLevelEncoder

	switch normalizeEncoding(encoding, dev) {
	case "console":
		if dev {
			encoderCfg.EncodeLevel = zapcore.CapitalColorLevelEncoder
		}
		return zapcore.NewConsoleEncoder(encoderCfg)
	default:
		return zapcore.NewJSONEncoder(encoderCfg)
	}
}

// parseLevel falls back to info. The logger does not exist yet, so a bad
// level is reported on stderr.
func parseLevel(raw string) zap.AtomicLevel {
	level := zap.NewAtomicLevel()
	name := strings.ToLower(strings.TrimSpace(raw))
	if name == "" {
		return level
	}
	if err := level.UnmarshalText([]byte(name)); err != nil {
		fmt.Fprintf(os.Stderr, "Invalid log level '%s', using 'info'. Error: %v\n", raw, err)
		level.SetLevel(zap.InfoLevel)
	}
	return level
}

func normalizeEncoding(encoding string, dev bool) string {
	switch e := strings.ToLower(strings.TrimSpace(encoding)); e {
	case "console", "json":
		return e
	case "":
		if dev {
			return "console"
		}
	}
	return "json"
}

func outputPaths(raw string) []string {
	var paths []string
	for _, p := range strings.Split(raw, ",") {
		if p = strings.TrimSpace(p); p != "" {
			paths = append(paths, p)
		}
	}
	if len(paths) == 0 {
		return []string{"stdout"}
	}
	return paths
}
