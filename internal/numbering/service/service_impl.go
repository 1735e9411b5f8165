package service

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/smallbiznis/docflow/internal/clock"
	"github.com/smallbiznis/docflow/internal/config"
	"github.com/smallbiznis/docflow/internal/numbering/domain"
	"github.com/smallbiznis/docflow/internal/numbering/format"
	"github.com/smallbiznis/docflow/internal/observability/metrics"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

type ServiceParam struct {
	fx.In

	Repo    domain.Repository
	Clock   clock.Clock
	Config  config.Config
	Log     *zap.Logger
	Metrics *metrics.NumberingMetrics `optional:"true"`
}

type Service struct {
	repo     domain.Repository
	clock    clock.Clock
	template string
	log      *zap.Logger
	metrics  *metrics.NumberingMetrics
	tracer   trace.Tracer

	// mu serializes read-modify-write cycles issued by this process. The
	// store's atomic Update covers other processes.
	mu sync.Mutex
}

func NewService(p ServiceParam) (domain.Service, error) {
	template := strings.TrimSpace(p.Config.Numbering.Template)
	if template == "" {
		template = format.DefaultNumberTemplate
	}
	if err := format.ValidateTemplate(template); err != nil {
		return nil, err
	}

	return &Service{
		repo:     p.Repo,
		clock:    p.Clock,
		template: template,
		log:      p.Log.Named("numbering.service"),
		metrics:  p.Metrics,
		tracer:   otel.Tracer("docflow/numbering"),
	}, nil
}

func (s *Service) Generate(ctx context.Context, documentType domain.DocumentType, manualOverride string) (domain.Number, error) {
	ctx, span := s.tracer.Start(ctx, "numbering.Generate")
	defer span.End()
	span.SetAttributes(attribute.String("document_type", string(documentType)))

	if override := strings.TrimSpace(manualOverride); override != "" {
		code, _, _ := domain.CodeFor(documentType)
		s.metrics.IncOverride(code)
		span.SetAttributes(attribute.Bool("manual", true))
		return domain.Number{Value: override, Manual: true}, nil
	}

	code, known, err := domain.CodeFor(documentType)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return domain.Number{}, err
	}
	if !known {
		s.log.Warn("unknown document type, using derived code",
			zap.String("document_type", string(documentType)),
			zap.String("code", code),
		)
		s.metrics.IncFallbackCode(code)
	}

	year := s.clock.Now().Year()
	start := time.Now()

	s.mu.Lock()
	seq, err := s.repo.Increment(ctx, code, year)
	s.mu.Unlock()

	if err != nil {
		s.metrics.IncPersistFailure(err)
		s.metrics.ObserveGenerate("failed", time.Since(start))
		s.log.Error("failed to persist numbering state",
			zap.String("code", code),
			zap.Int("year", year),
			zap.Error(err),
		)
		span.RecordError(err)
		span.SetStatus(codes.Error, "persist failed")
		return domain.Number{}, fmt.Errorf("%w: %w", domain.ErrPersistenceFailure, err)
	}

	value, err := format.FormatNumber(s.template, code, year, seq)
	if err != nil {
		s.metrics.ObserveGenerate("failed", time.Since(start))
		span.SetStatus(codes.Error, err.Error())
		return domain.Number{}, err
	}

	s.metrics.IncIssued(code)
	s.metrics.ObserveGenerate("ok", time.Since(start))
	span.SetAttributes(
		attribute.String("code", code),
		attribute.Int("year", year),
		attribute.Int64("sequence", seq),
	)

	return domain.Number{
		Value:    value,
		Code:     code,
		Year:     year,
		Sequence: seq,
	}, nil
}

func (s *Service) ResetYear(ctx context.Context, documentType domain.DocumentType, year int) error {
	code, _, err := domain.CodeFor(documentType)
	if err != nil {
		return err
	}
	year, err = s.resolveYear(year)
	if err != nil {
		return err
	}

	s.mu.Lock()
	err = s.repo.Reset(ctx, code, year)
	s.mu.Unlock()
	if err != nil {
		return fmt.Errorf("%w: %w", domain.ErrPersistenceFailure, err)
	}

	s.metrics.IncReset()
	s.log.Info("numbering sequence reset",
		zap.String("code", code),
		zap.Int("year", year),
	)
	return nil
}

func (s *Service) Current(ctx context.Context, documentType domain.DocumentType, year int) (int64, error) {
	code, _, err := domain.CodeFor(documentType)
	if err != nil {
		return 0, err
	}
	year, err = s.resolveYear(year)
	if err != nil {
		return 0, err
	}
	state, err := s.repo.Load(ctx)
	if err != nil {
		return 0, err
	}
	return state.Sequence(code, year), nil
}

func (s *Service) State(ctx context.Context) (domain.State, error) {
	return s.repo.Load(ctx)
}

func (s *Service) resolveYear(year int) (int, error) {
	if year == 0 {
		return s.clock.Now().Year(), nil
	}
	if year < 1 || year > 9999 {
		return 0, domain.ErrInvalidYear
	}
	return year, nil
}
