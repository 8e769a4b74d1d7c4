package server

import (
	"context"
	"net/http"

	"github.com/civicworks/parkledger/internal/config"
	ledgerdomain "github.com/civicworks/parkledger/internal/ledger/domain"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

type ServerParams struct {
	fx.In

	Cfg       config.Config
	Log       *zap.Logger
	LedgerSvc ledgerdomain.Service
	Registry  *prometheus.Registry `optional:"true"`
}

// Server exposes the admin surface of the sync engine: the per-payment ledger
// hooks invoked by the payment CRUD side and the manual resync action.
type Server struct {
	cfg       config.Config
	log       *zap.Logger
	ledgerSvc ledgerdomain.Service
	registry  *prometheus.Registry
}

func NewEngine(cfg config.Config) *gin.Engine {
	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(ErrorHandlingMiddleware())
	return engine
}

func NewServer(p ServerParams) *Server {
	return &Server{
		cfg:       p.Cfg,
		log:       p.Log.Named("server"),
		ledgerSvc: p.LedgerSvc,
		registry:  p.Registry,
	}
}

// RegisterRoutes mounts all routes on the engine.
func (s *Server) RegisterRoutes(engine *gin.Engine) {
	engine.GET("/healthz", s.Healthz)
	if s.registry != nil {
		engine.GET("/metrics", gin.WrapH(promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{})))
	}

	admin := engine.Group("/admin/v1")
	admin.POST("/payments/:id/ledger", s.ProcessPayment)
	admin.PUT("/payments/:id/ledger", s.UpdateIncome)
	admin.DELETE("/payments/:id/ledger", s.RemoveIncome)
	admin.POST("/ledger/sync", s.SyncPayments)
}

func (s *Server) Healthz(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"service": s.cfg.AppName,
		"version": s.cfg.AppVersion,
	})
}

// RunHTTP starts the HTTP listener under the fx lifecycle.
func RunHTTP(lc fx.Lifecycle, cfg config.Config, log *zap.Logger, engine *gin.Engine, s *Server) {
	s.RegisterRoutes(engine)

	srv := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: engine,
	}

	lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			go func() {
				if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					log.Error("http server stopped", zap.Error(err))
				}
			}()
			log.Info("http server listening", zap.String("addr", cfg.HTTPAddr))
			return nil
		},
		OnStop: func(ctx context.Context) error {
			return srv.Shutdown(ctx)
		},
	})
}

// Module wires the admin HTTP surface.
var Module = fx.Module("server",
	fx.Provide(NewEngine),
	fx.Provide(NewServer),
	fx.Invoke(RunHTTP),
)
