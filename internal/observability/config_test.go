package observability

import (
	"testing"

	"github.com/smallbiznis/docflow/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func baseConfig() config.Config {
	return config.Config{
		AppName:      "docflow",
		AppVersion:   "0.1.0",
		Environment:  "production",
		OTLPEndpoint: "collector:4317",
		Observability: config.ObservabilityConfig{
			LogLevel:     "INFO",
			LogFormat:    "json",
			OtelProtocol: "grpc",
			OtelSampling: 0.1,
		},
	}
}

func TestLoadConfigDefaults(t *testing.T) {
	cfg := baseConfig()
	cfg.AppName = ""
	cfg.Observability = config.ObservabilityConfig{}

	out, err := LoadConfig(cfg)
	require.NoError(t, err)
	assert.Equal(t, "docflow", out.ServiceName)
	assert.Equal(t, "info", out.LogLevel)
	assert.Equal(t, FormatJSON, out.LogFormat)
	assert.Equal(t, ProtocolGRPC, out.OtelExporterProtocol)
	assert.False(t, out.Debug())
}

func TestLoadConfigOverrides(t *testing.T) {
	cfg := baseConfig()
	cfg.Observability.DeploymentEnv = "staging"
	cfg.Observability.ServiceVersion = "1.2.3"
	cfg.Observability.OtelSampling = 4
	cfg.Observability.OtelProtocol = "http/protobuf"

	out, err := LoadConfig(cfg)
	require.NoError(t, err)
	assert.Equal(t, "staging", out.Environment)
	assert.Equal(t, "1.2.3", out.Version)
	assert.Equal(t, 1.0, out.OtelSamplingRatio)
	assert.Equal(t, ProtocolHTTP, out.OtelExporterProtocol)
}

func TestLoadConfigRejectsUnknownValues(t *testing.T) {
	cases := map[string]func(*config.Config){
		"level":    func(c *config.Config) { c.Observability.LogLevel = "loud" },
		"format":   func(c *config.Config) { c.Observability.LogFormat = "xml" },
		"protocol": func(c *config.Config) { c.Observability.OtelProtocol = "udp" },
		"endpoint": func(c *config.Config) {
			c.Observability.OtelEnabled = true
			c.OTLPEndpoint = " "
		},
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			cfg := baseConfig()
			mutate(&cfg)
			_, err := LoadConfig(cfg)
			assert.Error(t, err)
		})
	}
}

func TestDebug(t *testing.T) {
	assert.True(t, Config{LogLevel: "debug", Environment: "production"}.Debug())
	assert.True(t, Config{LogLevel: "info", Environment: "Development"}.Debug())
	assert.False(t, Config{LogLevel: "info", Environment: "production"}.Debug())
}
