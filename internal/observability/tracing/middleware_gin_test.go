package tracing

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func recordSpans(t *testing.T) *tracetest.SpanRecorder {
	t.Helper()
	recorder := tracetest.NewSpanRecorder()
	provider := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	previous := otel.GetTracerProvider()
	otel.SetTracerProvider(provider)
	t.Cleanup(func() {
		otel.SetTracerProvider(previous)
		_ = provider.Shutdown(t.Context())
	})
	return recorder
}

func attrMap(attrs []attribute.KeyValue) map[attribute.Key]string {
	out := make(map[attribute.Key]string, len(attrs))
	for _, attr := range attrs {
		out[attr.Key] = attr.Value.Emit()
	}
	return out
}

func TestGinMiddlewareTagsDocumentSpans(t *testing.T) {
	gin.SetMode(gin.TestMode)
	recorder := recordSpans(t)

	r := gin.New()
	r.Use(GinMiddleware())
	r.PUT("/api/documents/:id", func(c *gin.Context) {
		c.Set(DocumentTypeKey, "facture")
		c.Status(http.StatusOK)
	})

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodPut, "/api/documents/1790", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	spans := recorder.Ended()
	require.Len(t, spans, 1)
	assert.Equal(t, "HTTP PUT /api/documents/:id", spans[0].Name())

	attrs := attrMap(spans[0].Attributes())
	assert.Equal(t, "1790", attrs["docflow.document_id"])
	assert.Equal(t, "facture", attrs["docflow.document_type"])
	assert.Equal(t, "200", attrs["http.status_code"])
	assert.NotEqual(t, codes.Error, spans[0].Status().Code)
}

func TestGinMiddlewareMarksServerErrors(t *testing.T) {
	gin.SetMode(gin.TestMode)
	recorder := recordSpans(t)

	r := gin.New()
	r.Use(GinMiddleware())
	r.POST("/api/numbers", func(c *gin.Context) {
		_ = c.Error(errors.New("store down"))
		c.Set(ErrorTypeKey, "numbering_unavailable")
		c.Status(http.StatusServiceUnavailable)
	})

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/numbers", nil))
	require.Equal(t, http.StatusServiceUnavailable, rec.Code)

	spans := recorder.Ended()
	require.Len(t, spans, 1)
	assert.Equal(t, codes.Error, spans[0].Status().Code)
	assert.Equal(t, "numbering_unavailable", spans[0].Status().Description)

	attrs := attrMap(spans[0].Attributes())
	assert.Equal(t, "numbering_unavailable", attrs["docflow.error_type"])
	assert.NotContains(t, attrs, attribute.Key("docflow.document_id"))
	require.Len(t, spans[0].Events(), 1)
}
