package metrics

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

const (
	NumberingReasonDeadlineExceeded     = "deadline_exceeded"
	NumberingReasonDBLockTimeout        = "db_lock_timeout"
	NumberingReasonSerializationFailure = "serialization_failure"
	NumberingReasonUniqueViolation      = "unique_violation"
	NumberingReasonContention           = "contention"
	NumberingReasonUnknown              = "unknown"
)

// NumberingMetrics captures document number issuance signals.
type NumberingMetrics struct {
	issued          *prometheus.CounterVec
	overrides       *prometheus.CounterVec
	fallbackCodes   *prometheus.CounterVec
	persistFailures *prometheus.CounterVec
	resets          prometheus.Counter
	duration        *prometheus.HistogramVec
}

// NewNumberingMetrics registers numbering collectors on the given registerer.
func NewNumberingMetrics(registerer prometheus.Registerer, cfg Config) *NumberingMetrics {
	if registerer == nil {
		registerer = prometheus.DefaultRegisterer
	}

	serviceName := strings.TrimSpace(cfg.ServiceName)
	if serviceName == "" {
		serviceName = "docflow"
	}
	environment := strings.TrimSpace(cfg.Environment)
	if environment == "" {
		environment = "unknown"
	}
	constLabels := prometheus.Labels{
		"service": serviceName,
		"env":     environment,
	}

	issued := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name:        "docflow_numbering_issued_total",
		Help:        "Document numbers issued from the sequence by type code.",
		ConstLabels: constLabels,
	}, []string{"code"})
	overrides := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name:        "docflow_numbering_overrides_total",
		Help:        "Manual number overrides accepted without touching the sequence.",
		ConstLabels: constLabels,
	}, []string{"code"})
	fallbackCodes := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name:        "docflow_numbering_fallback_codes_total",
		Help:        "Numbers issued for document types outside the code table.",
		ConstLabels: constLabels,
	}, []string{"code"})
	persistFailures := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name:        "docflow_numbering_persist_failures_total",
		Help:        "Sequence state writes that failed by low-cardinality reason.",
		ConstLabels: constLabels,
	}, []string{"reason"})
	resets := prometheus.NewCounter(prometheus.CounterOpts{
		Name:        "docflow_numbering_resets_total",
		Help:        "Administrative sequence resets.",
		ConstLabels: constLabels,
	})
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:        "docflow_numbering_generate_duration_seconds",
		Help:        "Latency of number generation including the state round trip.",
		Buckets:     []float64{0.0005, 0.001, 0.0025, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		ConstLabels: constLabels,
	}, []string{"outcome"})

	registerer.MustRegister(issued, overrides, fallbackCodes, persistFailures, resets, duration)

	return &NumberingMetrics{
		issued:          issued,
		overrides:       overrides,
		fallbackCodes:   fallbackCodes,
		persistFailures: persistFailures,
		resets:          resets,
		duration:        duration,
	}
}

func (m *NumberingMetrics) IncIssued(code string) {
	if m == nil {
		return
	}
	m.issued.WithLabelValues(normalizeLabel(code)).Inc()
}

func (m *NumberingMetrics) IncOverride(code string) {
	if m == nil {
		return
	}
	m.overrides.WithLabelValues(normalizeLabel(code)).Inc()
}

func (m *NumberingMetrics) IncFallbackCode(code string) {
	if m == nil {
		return
	}
	m.fallbackCodes.WithLabelValues(normalizeLabel(code)).Inc()
}

func (m *NumberingMetrics) IncPersistFailure(err error) {
	if m == nil {
		return
	}
	m.persistFailures.WithLabelValues(ClassifyPersistFailure(err)).Inc()
}

func (m *NumberingMetrics) IncReset() {
	if m == nil {
		return
	}
	m.resets.Inc()
}

func (m *NumberingMetrics) ObserveGenerate(outcome string, d time.Duration) {
	if m == nil {
		return
	}
	m.duration.WithLabelValues(normalizeLabel(outcome)).Observe(d.Seconds())
}

// ClassifyPersistFailure maps a store error to a bounded reason label.
func ClassifyPersistFailure(err error) string {
	if err == nil {
		return NumberingReasonUnknown
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return NumberingReasonDeadlineExceeded
	}
	if errors.Is(err, redis.TxFailedErr) {
		return NumberingReasonContention
	}
	if hasPGCode(err, "55P03") {
		return NumberingReasonDBLockTimeout
	}
	if hasPGCode(err, "40001") {
		return NumberingReasonSerializationFailure
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) || hasPGCode(err, "23505") {
		return NumberingReasonUniqueViolation
	}
	return NumberingReasonUnknown
}

func hasPGCode(err error, code string) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == code
	}
	return false
}

func normalizeLabel(value string) string {
	value = strings.TrimSpace(value)
	if value == "" {
		return "unknown"
	}
	return value
}
