package service

import (
	"context"

	"github.com/smallbiznis/docflow/internal/config"
	"github.com/smallbiznis/docflow/internal/observability/metrics"
	"github.com/smallbiznis/docflow/internal/valuation/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

type ServiceParam struct {
	fx.In

	Config  *config.ValuationConfigHolder
	Log     *zap.Logger
	Metrics *metrics.Metrics `optional:"true"`
}

type Service struct {
	cfg     *config.ValuationConfigHolder
	log     *zap.Logger
	metrics *metrics.Metrics
}

func NewService(p ServiceParam) domain.Service {
	return &Service{
		cfg:     p.Config,
		log:     p.Log.Named("valuation.service"),
		metrics: p.Metrics,
	}
}

func (s *Service) ComputeLineTotals(ctx context.Context, item domain.LineItem, convention domain.RateConvention) (domain.LineTotals, error) {
	engine, err := s.engine(convention)
	if err != nil {
		return domain.LineTotals{}, err
	}
	return engine.ComputeLineTotals(item)
}

func (s *Service) ComputeDocumentTotals(ctx context.Context, items []domain.LineItem, convention domain.RateConvention) (domain.Valuation, error) {
	engine, err := s.engine(convention)
	if err != nil {
		return domain.Valuation{}, err
	}
	result, err := engine.ComputeDocumentTotals(items)
	if err != nil {
		s.log.Debug("valuation rejected", zap.Int("lines", len(items)), zap.Error(err))
		s.metrics.RecordValuation(ctx, string(engine.opts.Convention), "rejected")
		return domain.Valuation{}, err
	}
	s.metrics.RecordValuation(ctx, string(engine.opts.Convention), "ok")
	return result, nil
}

// engine snapshots the current configuration so one computation never
// observes a hot reload halfway through. Every caller-supplied convention is
// parsed here; blank falls back to the configured default.
func (s *Service) engine(convention domain.RateConvention) (*Engine, error) {
	cfg := s.cfg.Get()
	parsed, err := ParseConvention(string(convention), domain.RateConvention(cfg.RateConvention))
	if err != nil {
		return nil, err
	}
	return NewEngine(domain.Options{
		DefaultRate: cfg.DefaultRate,
		Convention:  parsed,
	})
}
