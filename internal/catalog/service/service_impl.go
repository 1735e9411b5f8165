package service

import (
	"context"
	"math"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/docflow/internal/catalog/domain"
	"github.com/smallbiznis/docflow/internal/clock"
	kvdomain "github.com/smallbiznis/docflow/internal/kvstore/domain"
	"github.com/smallbiznis/docflow/internal/kvstore/collection"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

type ServiceParam struct {
	fx.In

	Store kvdomain.Store
	GenID *snowflake.Node
	Clock clock.Clock
	Log   *zap.Logger
}

type Service struct {
	log   *zap.Logger
	clock clock.Clock

	items     *registry[domain.Item]
	templates *registry[domain.Template]
	clients   *registry[domain.Client]
	suppliers *registry[domain.Supplier]

	templateList *collection.Collection[domain.Template]
}

func NewService(p ServiceParam) domain.Service {
	newID := func() string { return p.GenID.Generate().String() }

	s := &Service{
		log:   p.Log.Named("catalog.service"),
		clock: p.Clock,
	}

	s.templateList = collection.New(p.Store, kvdomain.KeyTemplates, collection.Identity[domain.Template]{
		ID:     func(t domain.Template) string { return t.ID },
		WithID: func(t domain.Template, id string) domain.Template { t.ID = id; return t },
	}, newID)

	s.items = &registry[domain.Item]{
		items: collection.New(p.Store, kvdomain.KeyItems, collection.Identity[domain.Item]{
			ID:     func(i domain.Item) string { return i.ID },
			WithID: func(i domain.Item, id string) domain.Item { i.ID = id; return i },
		}, newID),
		normalize: normalizeItem,
	}
	s.templates = &registry[domain.Template]{
		items:     s.templateList,
		normalize: normalizeTemplate,
		stamp:     s.stampTemplate,
	}
	s.clients = &registry[domain.Client]{
		items: collection.New(p.Store, kvdomain.KeyClients, collection.Identity[domain.Client]{
			ID:     func(c domain.Client) string { return c.ID },
			WithID: func(c domain.Client, id string) domain.Client { c.ID = id; return c },
		}, newID),
		normalize: normalizeClient,
	}
	s.suppliers = &registry[domain.Supplier]{
		items: collection.New(p.Store, kvdomain.KeySuppliers, collection.Identity[domain.Supplier]{
			ID:     func(f domain.Supplier) string { return f.ID },
			WithID: func(f domain.Supplier, id string) domain.Supplier { f.ID = id; return f },
		}, newID),
		normalize: normalizeSupplier,
	}
	return s
}

func (s *Service) Items() domain.Registry[domain.Item]         { return s.items }
func (s *Service) Templates() domain.Registry[domain.Template] { return s.templates }
func (s *Service) Clients() domain.Registry[domain.Client]     { return s.clients }
func (s *Service) Suppliers() domain.Registry[domain.Supplier] { return s.suppliers }

func (s *Service) SetDefaultTemplate(ctx context.Context, id string) (domain.Template, error) {
	target, err := s.templates.Get(ctx, id)
	if err != nil {
		return domain.Template{}, err
	}

	list, err := s.templateList.List(ctx)
	if err != nil {
		return domain.Template{}, err
	}
	for _, t := range list {
		if t.ID == id || t.Type != target.Type || !t.IsDefault {
			continue
		}
		if _, err := s.templateList.Update(ctx, t.ID, func(cur domain.Template) domain.Template {
			cur.IsDefault = false
			return cur
		}); err != nil {
			return domain.Template{}, mapErr(err)
		}
	}

	updated, err := s.templateList.Update(ctx, id, func(cur domain.Template) domain.Template {
		cur.IsDefault = true
		return cur
	})
	if err != nil {
		return domain.Template{}, mapErr(err)
	}
	s.log.Info("default template changed", zap.String("template_id", id), zap.String("type", updated.Type))
	return updated, nil
}

func (s *Service) ResolveTemplate(ctx context.Context, documentType, templateID string) (domain.Template, bool, error) {
	if id := strings.TrimSpace(templateID); id != "" {
		t, err := s.templates.Get(ctx, id)
		if err != nil {
			return domain.Template{}, false, err
		}
		return t, true, nil
	}

	list, err := s.templateList.List(ctx)
	if err != nil {
		return domain.Template{}, false, err
	}
	for _, t := range list {
		if t.IsDefault && t.Matches(documentType) {
			return t, true, nil
		}
	}
	return domain.Template{}, false, nil
}

func (s *Service) stampTemplate(t domain.Template, existing *domain.Template) domain.Template {
	now := s.clock.Now().UTC()
	t.UpdatedAt = &now
	if existing == nil {
		t.CreatedAt = &now
		t.Version = 1
		return t
	}
	t.CreatedAt = existing.CreatedAt
	t.Version = existing.Version + 1
	return t
}

func normalizeItem(i domain.Item) (domain.Item, error) {
	i.Name = strings.TrimSpace(i.Name)
	if i.Name == "" {
		return i, domain.ErrInvalidName
	}
	if math.IsNaN(i.PriceHT) || math.IsInf(i.PriceHT, 0) {
		return i, domain.ErrInvalidPrice
	}
	if i.TaxRate != nil {
		r := *i.TaxRate
		if math.IsNaN(r) || r < 0 || r > 1 {
			return i, domain.ErrInvalidTaxRate
		}
	}
	return i, nil
}

func normalizeTemplate(t domain.Template) (domain.Template, error) {
	t.Name = strings.TrimSpace(t.Name)
	t.Type = strings.ToLower(strings.TrimSpace(t.Type))
	if t.Name == "" {
		return t, domain.ErrInvalidName
	}
	if t.Type == "" {
		return t, domain.ErrInvalidTemplateType
	}
	return t, nil
}

func normalizeClient(c domain.Client) (domain.Client, error) {
	c.Name = strings.TrimSpace(c.Name)
	if c.Name == "" {
		return c, domain.ErrInvalidName
	}
	c.Type = "client"
	return c, nil
}

func normalizeSupplier(f domain.Supplier) (domain.Supplier, error) {
	f.Name = strings.TrimSpace(f.Name)
	if f.Name == "" {
		return f, domain.ErrInvalidName
	}
	f.Type = "fournisseur"
	return f, nil
}
