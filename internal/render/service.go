package render

import (
	"context"
	"errors"

	"github.com/gosimple/slug"
	catalogdomain "github.com/smallbiznis/docflow/internal/catalog/domain"
	documentdomain "github.com/smallbiznis/docflow/internal/document/domain"
	"github.com/smallbiznis/docflow/internal/observability/logger"
	"github.com/smallbiznis/docflow/internal/observability/metrics"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

const FormatPDF = "pdf"

// File is a rendered artifact ready for download.
type File struct {
	Name        string
	ContentType string
	Body        []byte
}

type ServiceParam struct {
	fx.In

	Documents documentdomain.Service
	Catalog   catalogdomain.Service
	Log       *zap.Logger
	Metrics   *metrics.Metrics `optional:"true"`
}

type Service struct {
	documents documentdomain.Service
	catalog   catalogdomain.Service
	log       *zap.Logger
	metrics   *metrics.Metrics
}

func NewService(p ServiceParam) *Service {
	return &Service{
		documents: p.Documents,
		catalog:   p.Catalog,
		log:       p.Log.Named("render.service"),
		metrics:   p.Metrics,
	}
}

// DocumentPDF renders a stored document with its resolved template.
// PDFs are never persisted; every call renders from the snapshot.
func (s *Service) DocumentPDF(ctx context.Context, id string) (File, error) {
	doc, err := s.documents.Get(ctx, id)
	if err != nil {
		return File{}, err
	}

	in, err := s.Input(ctx, doc)
	if err != nil {
		return File{}, err
	}

	body, err := PDF(in)
	if err != nil {
		s.metrics.RecordTemplateRendered(ctx, FormatPDF, "error")
		logger.WithDocument(logger.WithContext(ctx, s.log), string(doc.Type), doc.ID).
			Error("failed to render document pdf", zap.Error(err))
		return File{}, err
	}
	s.metrics.RecordTemplateRendered(ctx, FormatPDF, "success")

	return File{
		Name:        FileName(doc, FormatPDF),
		ContentType: "application/pdf",
		Body:        body,
	}, nil
}

// Input gathers the template and parties referenced by doc. Dangling
// client, supplier or template references render without that part.
func (s *Service) Input(ctx context.Context, doc documentdomain.Document) (Input, error) {
	in := Input{Document: doc}

	tpl, ok, err := s.catalog.ResolveTemplate(ctx, string(doc.Type), doc.TemplateID)
	switch {
	case errors.Is(err, catalogdomain.ErrNotFound):
		s.log.Warn("document template not found", zap.String("document_id", doc.ID), zap.String("template_id", doc.TemplateID))
	case err != nil:
		return Input{}, err
	case ok:
		in.Template = &tpl
	}

	if doc.ClientID != "" {
		client, err := s.catalog.Clients().Get(ctx, doc.ClientID)
		switch {
		case errors.Is(err, catalogdomain.ErrNotFound):
		case err != nil:
			return Input{}, err
		default:
			in.Client = &client
		}
	}
	if doc.SupplierID != "" {
		supplier, err := s.catalog.Suppliers().Get(ctx, doc.SupplierID)
		switch {
		case errors.Is(err, catalogdomain.ErrNotFound):
		case err != nil:
			return Input{}, err
		default:
			in.Supplier = &supplier
		}
	}
	return in, nil
}

// FileName derives a download name from the document number, falling back
// to its id for unnumbered documents.
func FileName(doc documentdomain.Document, ext string) string {
	base := slug.Make(doc.Number)
	if base == "" {
		base = slug.Make(string(doc.Type) + "-" + doc.ID)
	}
	return base + "." + ext
}
