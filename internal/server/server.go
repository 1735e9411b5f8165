package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/smallbiznis/docflow/internal/authorization"
	catalogdomain "github.com/smallbiznis/docflow/internal/catalog/domain"
	"github.com/smallbiznis/docflow/internal/config"
	documentdomain "github.com/smallbiznis/docflow/internal/document/domain"
	"github.com/smallbiznis/docflow/internal/export"
	numberingdomain "github.com/smallbiznis/docflow/internal/numbering/domain"
	"github.com/smallbiznis/docflow/internal/observability"
	obslogger "github.com/smallbiznis/docflow/internal/observability/logger"
	obstracing "github.com/smallbiznis/docflow/internal/observability/tracing"
	"github.com/smallbiznis/docflow/internal/render"
	valuationdomain "github.com/smallbiznis/docflow/internal/valuation/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

var Module = fx.Module("http.server",
	fx.Provide(registerGin),
	fx.Invoke(NewServer),
	fx.Invoke(run),
)

func NewEngine(obsCfg observability.Config) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(obslogger.GinMiddleware(obslogger.MiddlewareConfig{
		Debug:           obsCfg.Debug(),
		ErrorClassifier: classifyErrorForLog,
	}))
	r.Use(obstracing.GinMiddleware())
	r.Use(ErrorHandlingMiddleware())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return r
}

func registerGin(obsCfg observability.Config) *gin.Engine {
	return NewEngine(obsCfg)
}

func run(lc fx.Lifecycle, cfg config.Config, r *gin.Engine, log *zap.Logger) {
	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					log.Fatal("http server stopped", zap.Error(err))
				}
			}()
			log.Info("http server listening", zap.String("addr", cfg.HTTPAddr))
			return nil
		},
		OnStop: func(ctx context.Context) error {
			shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	})
}

type Server struct {
	engine       *gin.Engine
	cfg          config.Config
	log          *zap.Logger
	authzSvc     authorization.Service
	valuationSvc valuationdomain.Service
	numberingSvc numberingdomain.Service
	documentSvc  documentdomain.Service
	catalogSvc   catalogdomain.Service
	renderSvc    *render.Service
	exportSvc    *export.Service
}

type ServerParams struct {
	fx.In

	Gin          *gin.Engine
	Cfg          config.Config
	Log          *zap.Logger
	AuthzSvc     authorization.Service
	ValuationSvc valuationdomain.Service
	NumberingSvc numberingdomain.Service
	DocumentSvc  documentdomain.Service
	CatalogSvc   catalogdomain.Service
	RenderSvc    *render.Service
	ExportSvc    *export.Service
}

func NewServer(p ServerParams) *Server {
	svc := &Server{
		engine:       p.Gin,
		cfg:          p.Cfg,
		log:          p.Log.Named("http.server"),
		authzSvc:     p.AuthzSvc,
		valuationSvc: p.ValuationSvc,
		numberingSvc: p.NumberingSvc,
		documentSvc:  p.DocumentSvc,
		catalogSvc:   p.CatalogSvc,
		renderSvc:    p.RenderSvc,
		exportSvc:    p.ExportSvc,
	}

	svc.registerAPIRoutes()
	svc.registerFallback()

	return svc
}

func (s *Server) Engine() *gin.Engine {
	return s.engine
}

func (s *Server) registerAPIRoutes() {
	api := s.engine.Group("/api", s.APIKeyRequired())

	// -------- Valuation --------
	api.POST("/valuations", s.authorize(authorization.ObjectValuation, authorization.ActionValuationCompute), s.ComputeValuation)

	// -------- Numbering --------
	api.POST("/numbers", s.authorize(authorization.ObjectNumber, authorization.ActionNumberGenerate), s.GenerateNumber)
	api.GET("/numbers/state", s.authorize(authorization.ObjectNumbering, authorization.ActionNumberingView), s.GetNumberingState)
	api.POST("/numbers/reset", s.authorize(authorization.ObjectNumbering, authorization.ActionNumberingReset), s.ResetNumbering)

	// -------- Documents --------
	api.POST("/documents/preview", s.authorize(authorization.ObjectDocument, authorization.ActionDocumentCreate), s.PreviewDocument)
	api.POST("/documents", s.authorize(authorization.ObjectDocument, authorization.ActionDocumentCreate), s.CreateDocument)
	api.GET("/documents", s.authorize(authorization.ObjectDocument, authorization.ActionDocumentView), s.ListDocuments)
	api.GET("/documents/export.xlsx", s.authorize(authorization.ObjectDocument, authorization.ActionDocumentExport), s.ExportDocuments)
	api.GET("/documents/:id", s.authorize(authorization.ObjectDocument, authorization.ActionDocumentView), s.GetDocumentByID)
	api.PUT("/documents/:id", s.authorize(authorization.ObjectDocument, authorization.ActionDocumentUpdate), s.UpdateDocument)
	api.GET("/documents/:id/pdf", s.authorize(authorization.ObjectDocument, authorization.ActionDocumentView), s.GetDocumentPDF)
	api.DELETE("/documents/:id", s.authorize(authorization.ObjectDocument, authorization.ActionDocumentDelete), s.DeleteDocument)

	// -------- Catalog --------
	view := s.authorize(authorization.ObjectCatalog, authorization.ActionCatalogView)
	manage := s.authorize(authorization.ObjectCatalog, authorization.ActionCatalogManage)

	registerRegistry(api, "/items", s.catalogSvc.Items(), view, manage)
	registerRegistry(api, "/clients", s.catalogSvc.Clients(), view, manage)
	registerRegistry(api, "/suppliers", s.catalogSvc.Suppliers(), view, manage)
	registerRegistry(api, "/templates", s.catalogSvc.Templates(), view, manage)
	api.POST("/templates/:id/default", manage, s.SetDefaultTemplate)
}

func (s *Server) registerFallback() {
	s.engine.NoRoute(func(c *gin.Context) {
		AbortWithError(c, ErrNotFound)
	})
}
