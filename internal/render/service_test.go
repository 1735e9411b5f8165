package render

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	catalogdomain "github.com/smallbiznis/docflow/internal/catalog/domain"
	catalogservice "github.com/smallbiznis/docflow/internal/catalog/service"
	"github.com/smallbiznis/docflow/internal/clock"
	"github.com/smallbiznis/docflow/internal/config"
	documentdomain "github.com/smallbiznis/docflow/internal/document/domain"
	documentservice "github.com/smallbiznis/docflow/internal/document/service"
	"github.com/smallbiznis/docflow/internal/kvstore/memory"
	numberingrepo "github.com/smallbiznis/docflow/internal/numbering/repository"
	numberingservice "github.com/smallbiznis/docflow/internal/numbering/service"
	valuationdomain "github.com/smallbiznis/docflow/internal/valuation/domain"
	valuationservice "github.com/smallbiznis/docflow/internal/valuation/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fixture struct {
	svc       *Service
	documents documentdomain.Service
	catalog   catalogdomain.Service
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	store := memory.New("r2r_v1")
	clk := clock.NewFakeClock(time.Date(2024, time.April, 2, 8, 30, 0, 0, time.UTC))

	holder, err := config.NewStaticValuationConfigHolder(config.DefaultValuationConfig())
	require.NoError(t, err)
	numbering, err := numberingservice.NewService(numberingservice.ServiceParam{
		Repo:  numberingrepo.NewRepository(store, zap.NewNop()),
		Clock: clk,
		Log:   zap.NewNop(),
	})
	require.NoError(t, err)
	node, err := snowflake.NewNode(3)
	require.NoError(t, err)

	documents := documentservice.NewService(documentservice.ServiceParam{
		Store:     store,
		Valuation: valuationservice.NewService(valuationservice.ServiceParam{Config: holder, Log: zap.NewNop()}),
		Numbering: numbering,
		GenID:     node,
		Clock:     clk,
		Log:       zap.NewNop(),
	})
	catalog := catalogservice.NewService(catalogservice.ServiceParam{
		Store: store,
		GenID: node,
		Clock: clk,
		Log:   zap.NewNop(),
	})

	return fixture{
		svc:       NewService(ServiceParam{Documents: documents, Catalog: catalog, Log: zap.NewNop()}),
		documents: documents,
		catalog:   catalog,
	}
}

func TestDocumentPDF(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	client, err := f.catalog.Clients().Create(ctx, catalogdomain.Client{Name: "Dupont SARL"})
	require.NoError(t, err)
	_, err = f.catalog.Templates().Create(ctx, catalogdomain.Template{
		Type: "facture", Name: "Facture", Content: "Client: {{client_name}}", IsDefault: true,
	})
	require.NoError(t, err)

	doc, err := f.documents.Save(ctx, documentdomain.DraftRequest{
		Type:     "facture",
		ClientID: client.ID,
		Items: []valuationdomain.LineItem{
			{Name: "Conseil", Quantity: 1, UnitPriceExcludingTax: 100, TaxRate: valuationdomain.Float(0.2)},
		},
	})
	require.NoError(t, err)

	file, err := f.svc.DocumentPDF(ctx, doc.ID)
	require.NoError(t, err)
	assert.Equal(t, "fac-2024-0001.pdf", file.Name)
	assert.Equal(t, "application/pdf", file.ContentType)
	assert.True(t, bytes.HasPrefix(file.Body, []byte("%PDF")))
}

func TestDocumentPDFUnknownDocument(t *testing.T) {
	f := newFixture(t)
	_, err := f.svc.DocumentPDF(context.Background(), "missing")
	assert.ErrorIs(t, err, documentdomain.ErrNotFound)
}

func TestInputToleratesDanglingReferences(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	in, err := f.svc.Input(ctx, documentdomain.Document{
		ID: "1", Type: "devis", ClientID: "gone", SupplierID: "gone", TemplateID: "gone",
	})
	require.NoError(t, err)
	assert.Nil(t, in.Template)
	assert.Nil(t, in.Client)
	assert.Nil(t, in.Supplier)
}

func TestInputResolvesDefaultTemplateForAllTypes(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	tpl, err := f.catalog.Templates().Create(ctx, catalogdomain.Template{Type: catalogdomain.TemplateTypeAll, Name: "Generic", IsDefault: true})
	require.NoError(t, err)

	in, err := f.svc.Input(ctx, documentdomain.Document{ID: "1", Type: "bon-de-livraison"})
	require.NoError(t, err)
	require.NotNil(t, in.Template)
	assert.Equal(t, tpl.ID, in.Template.ID)
}

func TestFileName(t *testing.T) {
	assert.Equal(t, "dev-2024-0003.xlsx", FileName(documentdomain.Document{Number: "DEV-2024/0003"}, "xlsx"))
	assert.Equal(t, "devis-42.pdf", FileName(documentdomain.Document{Type: "devis", ID: "42"}, "pdf"))
}
