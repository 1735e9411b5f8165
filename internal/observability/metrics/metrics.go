package metrics

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// Config configures the metrics provider.
type Config struct {
	Enabled          bool
	ExporterEndpoint string
	ExporterProtocol string
	ServiceName      string
	Environment      string
}

// Metrics exposes application-level instruments.
type Metrics struct {
	valuations        metric.Int64Counter
	documentsSaved    metric.Int64Counter
	templatesRendered metric.Int64Counter
	exports           metric.Int64Counter
}

// NewProvider configures and registers the meter provider.
func NewProvider(lc fx.Lifecycle, cfg Config, log *zap.Logger) (metric.MeterProvider, error) {
	if !cfg.Enabled {
		provider := noop.NewMeterProvider()
		otel.SetMeterProvider(provider)
		return provider, nil
	}

	exporter, err := newExporter(cfg.ExporterProtocol, cfg.ExporterEndpoint)
	if err != nil {
		return nil, err
	}

	reader := sdkmetric.NewPeriodicReader(exporter, sdkmetric.WithInterval(10*time.Second))
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	otel.SetMeterProvider(provider)

	if lc != nil {
		lc.Append(fx.Hook{
			OnStop: func(ctx context.Context) error {
				if log != nil {
					log.Info("shutting down meter provider")
				}
				return provider.Shutdown(ctx)
			},
		})
	}

	if log != nil {
		log.Info("metrics initialized",
			zap.String("endpoint", cfg.ExporterEndpoint),
			zap.String("protocol", cfg.ExporterProtocol),
		)
	}

	return provider, nil
}

// New configures the domain metrics instruments.
func New(cfg Config, provider metric.MeterProvider) (*Metrics, error) {
	name := strings.TrimSpace(cfg.ServiceName)
	if name == "" {
		name = "docflow"
	}
	meter := provider.Meter(name)

	valuations, err := meter.Int64Counter("docflow_valuations_total")
	if err != nil {
		return nil, err
	}
	documentsSaved, err := meter.Int64Counter("docflow_documents_saved_total")
	if err != nil {
		return nil, err
	}
	templatesRendered, err := meter.Int64Counter("docflow_templates_rendered_total")
	if err != nil {
		return nil, err
	}
	exports, err := meter.Int64Counter("docflow_exports_total")
	if err != nil {
		return nil, err
	}

	return &Metrics{
		valuations:        valuations,
		documentsSaved:    documentsSaved,
		templatesRendered: templatesRendered,
		exports:           exports,
	}, nil
}

// RecordValuation counts valuation requests by rate convention and outcome.
func (m *Metrics) RecordValuation(ctx context.Context, convention, outcome string) {
	if m == nil {
		return
	}
	attrs := FilterAttributes(
		attribute.String("convention", strings.TrimSpace(convention)),
		attribute.String("outcome", strings.TrimSpace(outcome)),
	)
	m.valuations.Add(ctx, 1, metric.WithAttributes(attrs...))
}

// RecordDocumentSaved counts persisted documents by type.
func (m *Metrics) RecordDocumentSaved(ctx context.Context, documentType string, manualNumber bool) {
	if m == nil {
		return
	}
	attrs := FilterAttributes(
		attribute.String("document_type", strings.TrimSpace(documentType)),
		attribute.Bool("manual_number", manualNumber),
	)
	m.documentsSaved.Add(ctx, 1, metric.WithAttributes(attrs...))
}

// RecordTemplateRendered counts template renders by output format.
func (m *Metrics) RecordTemplateRendered(ctx context.Context, format, outcome string) {
	if m == nil {
		return
	}
	attrs := FilterAttributes(
		attribute.String("format", strings.TrimSpace(format)),
		attribute.String("outcome", strings.TrimSpace(outcome)),
	)
	m.templatesRendered.Add(ctx, 1, metric.WithAttributes(attrs...))
}

// RecordExport counts spreadsheet exports.
func (m *Metrics) RecordExport(ctx context.Context, format string) {
	if m == nil {
		return
	}
	attrs := FilterAttributes(attribute.String("format", strings.TrimSpace(format)))
	m.exports.Add(ctx, 1, metric.WithAttributes(attrs...))
}

func newExporter(protocol, endpoint string) (sdkmetric.Exporter, error) {
	protocol = strings.ToLower(strings.TrimSpace(protocol))
	switch protocol {
	case "http", "http/protobuf":
		opts := []otlpmetrichttp.Option{}
		if endpoint != "" {
			opts = append(opts, otlpmetrichttp.WithEndpoint(endpoint))
		}
		return otlpmetrichttp.New(context.Background(), opts...)
	case "grpc", "grpc/protobuf", "":
		opts := []otlpmetricgrpc.Option{otlpmetricgrpc.WithInsecure()}
		if endpoint != "" {
			opts = append(opts, otlpmetricgrpc.WithEndpoint(endpoint))
		}
		return otlpmetricgrpc.New(context.Background(), opts...)
	default:
		return nil, fmt.Errorf("unsupported OTLP protocol %q", protocol)
	}
}

var allowedLabelKeys = map[attribute.Key]struct{}{
	"endpoint":      {},
	"status_code":   {},
	"convention":    {},
	"outcome":       {},
	"document_type": {},
	"manual_number": {},
	"format":        {},
	"reason":        {},
}

// FilterAttributes strips disallowed labels to keep metrics low-cardinality.
func FilterAttributes(attrs ...attribute.KeyValue) []attribute.KeyValue {
	filtered := make([]attribute.KeyValue, 0, len(attrs))
	for _, attr := range attrs {
		if _, ok := allowedLabelKeys[attr.Key]; !ok {
			continue
		}
		filtered = append(filtered, attr)
	}
	return filtered
}
