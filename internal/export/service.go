package export

import (
	"context"
	"strings"

	"github.com/gosimple/slug"
	catalogdomain "github.com/smallbiznis/docflow/internal/catalog/domain"
	"github.com/smallbiznis/docflow/internal/clock"
	documentdomain "github.com/smallbiznis/docflow/internal/document/domain"
	numberingdomain "github.com/smallbiznis/docflow/internal/numbering/domain"
	"github.com/smallbiznis/docflow/internal/observability/metrics"
	"github.com/smallbiznis/docflow/internal/render"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

const FormatXLSX = "xlsx"

type ServiceParam struct {
	fx.In

	Documents documentdomain.Service
	Catalog   catalogdomain.Service
	Clock     clock.Clock
	Log       *zap.Logger
	Metrics   *metrics.Metrics `optional:"true"`
}

type Service struct {
	documents documentdomain.Service
	catalog   catalogdomain.Service
	clock     clock.Clock
	log       *zap.Logger
	metrics   *metrics.Metrics
}

func NewService(p ServiceParam) *Service {
	return &Service{
		documents: p.Documents,
		catalog:   p.Catalog,
		clock:     p.Clock,
		log:       p.Log.Named("export.service"),
		metrics:   p.Metrics,
	}
}

// Register exports every stored document of documentType (all types when
// empty), newest first.
func (s *Service) Register(ctx context.Context, documentType numberingdomain.DocumentType) (render.File, error) {
	docs, err := s.documents.All(ctx, documentType)
	if err != nil {
		return render.File{}, err
	}

	parties, err := s.parties(ctx)
	if err != nil {
		return render.File{}, err
	}

	body, err := BuildRegister(docs, parties)
	if err != nil {
		s.log.Error("failed to build register", zap.Error(err))
		return render.File{}, err
	}
	s.metrics.RecordExport(ctx, FormatXLSX)

	name := []string{"register"}
	if documentType != "" {
		name = append(name, string(documentType))
	}
	name = append(name, s.clock.Now().Format(documentdomain.DateLayout))

	return render.File{
		Name:        slug.Make(strings.Join(name, " ")) + "." + FormatXLSX,
		ContentType: "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
		Body:        body,
	}, nil
}

func (s *Service) parties(ctx context.Context) (Parties, error) {
	clients, err := s.catalog.Clients().List(ctx)
	if err != nil {
		return Parties{}, err
	}
	suppliers, err := s.catalog.Suppliers().List(ctx)
	if err != nil {
		return Parties{}, err
	}

	p := Parties{
		Clients:   make(map[string]string, len(clients)),
		Suppliers: make(map[string]string, len(suppliers)),
	}
	for _, c := range clients {
		p.Clients[c.ID] = c.Name
	}
	for _, sp := range suppliers {
		p.Suppliers[sp.ID] = sp.Name
	}
	return p, nil
}
