package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/docflow/internal/clock"
	"github.com/smallbiznis/docflow/internal/document/domain"
	"github.com/smallbiznis/docflow/internal/kvstore/collection"
	kvdomain "github.com/smallbiznis/docflow/internal/kvstore/domain"
	numberingdomain "github.com/smallbiznis/docflow/internal/numbering/domain"
	"github.com/smallbiznis/docflow/internal/observability/logger"
	"github.com/smallbiznis/docflow/internal/observability/metrics"
	valuationdomain "github.com/smallbiznis/docflow/internal/valuation/domain"
	"github.com/smallbiznis/docflow/pkg/db/pagination"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

type ServiceParam struct {
	fx.In

	Store     kvdomain.Store
	Valuation valuationdomain.Service
	Numbering numberingdomain.Service
	GenID     *snowflake.Node
	Clock     clock.Clock
	Log       *zap.Logger
	Metrics   *metrics.Metrics `optional:"true"`
}

type Service struct {
	docs      *collection.Collection[domain.Document]
	valuation valuationdomain.Service
	numbering numberingdomain.Service
	clock     clock.Clock
	log       *zap.Logger
	metrics   *metrics.Metrics
}

func NewService(p ServiceParam) domain.Service {
	return &Service{
		docs: collection.New(p.Store, kvdomain.KeyDocuments, collection.Identity[domain.Document]{
			ID:     func(d domain.Document) string { return d.ID },
			WithID: func(d domain.Document, id string) domain.Document { d.ID = id; return d },
		}, func() string { return p.GenID.Generate().String() }),
		valuation: p.Valuation,
		numbering: p.Numbering,
		clock:     p.Clock,
		log:       p.Log.Named("document.service"),
		metrics:   p.Metrics,
	}
}

func (s *Service) ProposeNumber(ctx context.Context, documentType numberingdomain.DocumentType) (numberingdomain.Number, error) {
	if _, err := resolveCode(documentType); err != nil {
		return numberingdomain.Number{}, err
	}
	return s.numbering.Generate(ctx, documentType, "")
}

func (s *Service) Preview(ctx context.Context, req domain.DraftRequest) (domain.Document, error) {
	doc, err := s.build(ctx, req)
	if err != nil {
		return domain.Document{}, err
	}
	doc.Number = strings.TrimSpace(req.Number)
	return doc, nil
}

func (s *Service) Save(ctx context.Context, req domain.DraftRequest) (domain.Document, error) {
	doc, err := s.build(ctx, req)
	if err != nil {
		return domain.Document{}, err
	}

	number, err := s.numbering.Generate(ctx, doc.Type, req.Number)
	if err != nil {
		return domain.Document{}, err
	}
	doc.Number = number.Value

	now := s.clock.Now().UTC()
	doc.CreatedAt = &now
	doc.UpdatedAt = &now

	saved, err := s.docs.Prepend(ctx, doc)
	if err != nil {
		if !number.Manual {
			logger.WithContext(ctx, s.log).Warn("issued number was not stored with a document",
				zap.String("number", number.Value),
				zap.Error(err),
			)
		}
		return domain.Document{}, err
	}

	s.metrics.RecordDocumentSaved(ctx, string(saved.Type), number.Manual)
	logger.WithDocument(logger.WithContext(ctx, s.log), string(saved.Type), saved.ID).
		Info("document saved", zap.String("number", saved.Number))
	return saved, nil
}

func (s *Service) Update(ctx context.Context, id string, req domain.DraftRequest) (domain.Document, error) {
	doc, err := s.build(ctx, req)
	if err != nil {
		return domain.Document{}, err
	}
	now := s.clock.Now().UTC()

	updated, err := s.docs.Update(ctx, id, func(existing domain.Document) domain.Document {
		next := doc
		next.Number = existing.Number
		if n := strings.TrimSpace(req.Number); n != "" {
			next.Number = n
		}
		next.CreatedAt = existing.CreatedAt
		next.UpdatedAt = &now
		return next
	})
	if err != nil {
		return domain.Document{}, mapErr(err)
	}
	return updated, nil
}

func (s *Service) Get(ctx context.Context, id string) (domain.Document, error) {
	doc, err := s.docs.Get(ctx, id)
	if err != nil {
		return domain.Document{}, mapErr(err)
	}
	return doc, nil
}

func (s *Service) List(ctx context.Context, req domain.ListRequest) (domain.ListResponse, error) {
	docs, err := s.All(ctx, req.Type)
	if err != nil {
		return domain.ListResponse{}, err
	}
	page, info, err := pagination.Slice(docs, req.Pagination, func(d domain.Document) string { return d.ID })
	if err != nil {
		return domain.ListResponse{}, err
	}
	return domain.ListResponse{Documents: page, PageInfo: info}, nil
}

func (s *Service) All(ctx context.Context, documentType numberingdomain.DocumentType) ([]domain.Document, error) {
	docs, err := s.docs.List(ctx)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(string(documentType)) == "" {
		return docs, nil
	}
	code, err := resolveCode(documentType)
	if err != nil {
		return nil, err
	}
	out := make([]domain.Document, 0, len(docs))
	for _, d := range docs {
		if c, _, err := numberingdomain.CodeFor(d.Type); err == nil && c == code {
			out = append(out, d)
		}
	}
	return out, nil
}

func (s *Service) Delete(ctx context.Context, id string) error {
	if err := s.docs.Delete(ctx, id); err != nil {
		return mapErr(err)
	}
	logger.WithContext(ctx, s.log).Info("document deleted", zap.String("document_id", id))
	return nil
}

// build validates and values a draft. It never touches numbering state, so
// rejected drafts do not consume numbers.
func (s *Service) build(ctx context.Context, req domain.DraftRequest) (domain.Document, error) {
	if _, err := resolveCode(req.Type); err != nil {
		return domain.Document{}, err
	}

	date := strings.TrimSpace(req.Date)
	if date == "" {
		date = s.clock.Now().Format(domain.DateLayout)
	} else if _, err := time.Parse(domain.DateLayout, date); err != nil {
		return domain.Document{}, domain.ErrInvalidDate
	}

	valuation, err := s.valuation.ComputeDocumentTotals(ctx, req.Items, req.RateConvention)
	if err != nil {
		return domain.Document{}, err
	}

	status := strings.TrimSpace(req.Status)
	if status == "" {
		status = domain.StatusDraft
	}

	return domain.Document{
		Type:         req.Type,
		Date:         date,
		ClientID:     strings.TrimSpace(req.ClientID),
		SupplierID:   strings.TrimSpace(req.SupplierID),
		Items:        valuation.Lines,
		TotalHT:      valuation.Totals.TotalExcludingTax,
		TotalTVA:     valuation.Totals.TotalTax,
		TotalTTC:     valuation.Totals.TotalIncludingTax,
		TVABreakdown: valuation.Totals.BreakdownByRate,
		Status:       status,
		Notes:        req.Notes,
		TemplateID:   strings.TrimSpace(req.TemplateID),
	}, nil
}

func resolveCode(documentType numberingdomain.DocumentType) (string, error) {
	code, _, err := numberingdomain.CodeFor(documentType)
	if err != nil {
		return "", domain.ErrInvalidType
	}
	return code, nil
}

func mapErr(err error) error {
	if errors.Is(err, collection.ErrNotFound) {
		return domain.ErrNotFound
	}
	return err
}
