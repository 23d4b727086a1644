// Package server exposes the intake and read surface: the DataHub inbox
// endpoint plus projections over settlements, processes, issues and
// reconciliation results.
package server

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/nordlux/elcore/internal/config"
	messagingdomain "github.com/nordlux/elcore/internal/messaging/domain"
	processdomain "github.com/nordlux/elcore/internal/process/domain"
	reconciliationdomain "github.com/nordlux/elcore/internal/reconciliation/domain"
	settlementdomain "github.com/nordlux/elcore/internal/settlement/domain"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

func NewEngine(log *zap.Logger) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(requestLogger(log.Named("http")))
	r.Use(ErrorHandlingMiddleware())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return r
}

func requestLogger(log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		started := time.Now()
		c.Next()
		log.Info("request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("duration", time.Since(started)))
	}
}

func run(lc fx.Lifecycle, cfg config.Config, log *zap.Logger, r *gin.Engine) {
	srv := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: r,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					log.Fatal("http server failed", zap.Error(err))
				}
			}()
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
	engine            *gin.Engine
	cfg               config.Config
	messagingSvc      messagingdomain.Service
	processSvc        processdomain.Service
	settlementSvc     settlementdomain.Service
	reconciliationSvc reconciliationdomain.Service
}

type ServerParams struct {
	fx.In

	Gin               *gin.Engine
	Cfg               config.Config
	MessagingSvc      messagingdomain.Service
	ProcessSvc        processdomain.Service
	SettlementSvc     settlementdomain.Service
	ReconciliationSvc reconciliationdomain.Service
}

func NewServer(p ServerParams) *Server {
	s := &Server{
		engine:            p.Gin,
		cfg:               p.Cfg,
		messagingSvc:      p.MessagingSvc,
		processSvc:        p.ProcessSvc,
		settlementSvc:     p.SettlementSvc,
		reconciliationSvc: p.ReconciliationSvc,
	}
	s.registerRoutes()
	return s
}

func (s *Server) Engine() *gin.Engine {
	return s.engine
}

func (s *Server) registerRoutes() {
	v1 := s.engine.Group("/v1")

	v1.POST("/datahub/inbox", s.ReceiveEnvelope)

	v1.GET("/settlements", s.ListSettlements)
	v1.GET("/settlements/:id", s.GetSettlementByID)

	v1.GET("/issues", s.ListIssues)
	v1.POST("/issues/:id/resolve", s.ResolveIssue)
	v1.POST("/issues/:id/dismiss", s.DismissIssue)

	v1.GET("/processes", s.ListProcesses)
	v1.GET("/processes/:id", s.GetProcessByID)
	v1.POST("/processes/supplier-change", s.InitiateSupplierChange)
	v1.POST("/processes/:id/execute", s.ExecuteSupplierChange)

	v1.GET("/reconciliation/:gridArea", s.ListReconciliationResults)
	v1.POST("/reconciliation/:gridArea/run", s.RunReconciliation)
}

var Module = fx.Module("http.server",
	fx.Provide(NewEngine),
	fx.Provide(NewServer),
	fx.Invoke(func(*Server) {}),
	fx.Invoke(run),
)
