package observability

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/smallbiznis/docflow/internal/config"
	"go.uber.org/zap/zapcore"
)

const (
	ProtocolGRPC = "grpc"
	ProtocolHTTP = "http"

	FormatJSON    = "json"
	FormatConsole = "console"
)

// Config is the validated observability setup shared by the logger, the
// tracer provider and the metric exporter.
type Config struct {
	ServiceName string
	Environment string
	Version     string

	LogLevel  string
	LogFormat string

	OtelEnabled          bool
	OtelExporterEndpoint string
	OtelExporterProtocol string
	OtelSamplingRatio    float64
}

// LoadConfig derives the observability setup from the application config.
// Unknown log levels, formats and exporter protocols fail startup rather
// than silently dropping telemetry.
func LoadConfig(cfg config.Config) (Config, error) {
	raw := cfg.Observability

	out := Config{
		ServiceName:          firstNonEmpty(cfg.AppName, "docflow"),
		Environment:          firstNonEmpty(raw.DeploymentEnv, cfg.Environment),
		Version:              firstNonEmpty(raw.ServiceVersion, cfg.AppVersion),
		LogLevel:             firstNonEmpty(strings.ToLower(raw.LogLevel), "info"),
		LogFormat:            firstNonEmpty(strings.ToLower(raw.LogFormat), FormatJSON),
		OtelEnabled:          raw.OtelEnabled,
		OtelExporterEndpoint: strings.TrimSpace(cfg.OTLPEndpoint),
		OtelExporterProtocol: firstNonEmpty(strings.TrimSuffix(strings.ToLower(raw.OtelProtocol), "/protobuf"), ProtocolGRPC),
		OtelSamplingRatio:    clampRatio(raw.OtelSampling),
	}

	if _, err := zapcore.ParseLevel(out.LogLevel); err != nil {
		return Config{}, fmt.Errorf("observability: %w", err)
	}
	switch out.LogFormat {
	case FormatJSON, FormatConsole:
	default:
		return Config{}, fmt.Errorf("observability: unsupported log format %q", out.LogFormat)
	}
	switch out.OtelExporterProtocol {
	case ProtocolGRPC, ProtocolHTTP:
	default:
		return Config{}, fmt.Errorf("observability: unsupported otlp protocol %q", out.OtelExporterProtocol)
	}
	if out.OtelEnabled && out.OtelExporterEndpoint == "" {
		return Config{}, errors.New("observability: otlp endpoint is required when telemetry is enabled")
	}

	return out, nil
}

// Debug turns on verbose request logging and stack traces.
func (c Config) Debug() bool {
	if c.LogLevel == "debug" {
		return true
	}
	switch strings.ToLower(c.Environment) {
	case "dev", "development", "local", "test":
		return true
	}
	return false
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}

func clampRatio(v float64) float64 {
	if math.IsNaN(v) || v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
