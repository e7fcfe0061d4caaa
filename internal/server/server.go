package server

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/smallbiznis/orderdesk/internal/authorization"
	"github.com/smallbiznis/orderdesk/internal/backend"
	"github.com/smallbiznis/orderdesk/internal/cache"
	"github.com/smallbiznis/orderdesk/internal/clientstate"
	csdomain "github.com/smallbiznis/orderdesk/internal/clientstate/domain"
	"github.com/smallbiznis/orderdesk/internal/config"
	"github.com/smallbiznis/orderdesk/internal/identity"
	"github.com/smallbiznis/orderdesk/internal/masterdata"
	masterdatadomain "github.com/smallbiznis/orderdesk/internal/masterdata/domain"
	"github.com/smallbiznis/orderdesk/internal/observability"
	obsmiddleware "github.com/smallbiznis/orderdesk/internal/observability/logger"
	obsmetrics "github.com/smallbiznis/orderdesk/internal/observability/metrics"
	obstracing "github.com/smallbiznis/orderdesk/internal/observability/tracing"
	"github.com/smallbiznis/orderdesk/internal/order"
	orderdomain "github.com/smallbiznis/orderdesk/internal/order/domain"
	"github.com/smallbiznis/orderdesk/internal/providers"
	"github.com/smallbiznis/orderdesk/internal/ratelimit"
	"github.com/smallbiznis/orderdesk/internal/session"
	"github.com/smallbiznis/orderdesk/internal/session/cookie"
	sessiondomain "github.com/smallbiznis/orderdesk/internal/session/domain"
	"github.com/smallbiznis/orderdesk/internal/tax"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

var Module = fx.Module("http.server",
	cache.Module,
	ratelimit.Module,
	backend.Module,
	identity.Module,
	clientstate.Module,
	session.Module,
	authorization.Module,
	tax.Module,
	providers.Module,
	order.Module,
	masterdata.Module,
	fx.Provide(registerGin),
	fx.Invoke(NewServer),
	fx.Invoke(run),
)

type EngineParams struct {
	fx.In

	Cfg         config.Config
	ObsCfg      observability.Config
	HTTPMetrics *obsmetrics.HTTPMetrics
	Registry    *prometheus.Registry
}

func NewEngine(p EngineParams) *gin.Engine {
	if !p.ObsCfg.Debug() {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(cors.New(corsConfig(p.Cfg)))
	r.Use(obsmiddleware.GinMiddleware(obsmiddleware.MiddlewareConfig{
		Debug:           p.ObsCfg.Debug(),
		ErrorClassifier: classifyErrorForLog,
	}))
	r.Use(obstracing.GinMiddleware())
	if p.HTTPMetrics != nil {
		r.Use(p.HTTPMetrics.GinMiddleware())
	}
	r.Use(ErrorHandlingMiddleware())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	if p.Registry != nil {
		r.GET("/metrics", obsmetrics.Handler(p.Registry))
	}

	return r
}

// The SPA runs on its own origin and sends the client id cookie along.
func corsConfig(cfg config.Config) cors.Config {
	cc := cors.DefaultConfig()
	cc.AllowOrigins = cfg.CORSOrigins
	if len(cc.AllowOrigins) == 0 {
		cc.AllowOrigins = []string{"http://localhost:5173"}
	}
	cc.AllowCredentials = true
	cc.AllowHeaders = append(cc.AllowHeaders, "X-Request-Id", "Authorization")
	cc.ExposeHeaders = []string{"X-Request-Id", "Content-Disposition"}
	cc.MaxAge = 12 * time.Hour
	return cc
}

func registerGin(p EngineParams) *gin.Engine {
	return NewEngine(p)
}

func run(lc fx.Lifecycle, cfg config.Config, r *gin.Engine, log *zap.Logger) {
	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			log.Info("http server listening", zap.String("addr", cfg.HTTPAddr))
			go func() {
				if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					panic(err)
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
	engine        *gin.Engine
	cfg           config.Config
	log           *zap.Logger
	cookies       *cookie.Manager
	sessions      sessiondomain.Service
	credentials   csdomain.CredentialService
	authzSvc      authorization.Service
	masterdataSvc masterdatadomain.Service
	orderSvc      orderdomain.Service
}

type ServerParams struct {
	fx.In

	Gin           *gin.Engine
	Cfg           config.Config
	Log           *zap.Logger
	Cookies       *cookie.Manager
	Sessions      sessiondomain.Service
	Credentials   csdomain.CredentialService
	AuthzSvc      authorization.Service
	MasterdataSvc masterdatadomain.Service
	OrderSvc      orderdomain.Service
}

func NewServer(p ServerParams) *Server {
	s := &Server{
		engine:        p.Gin,
		cfg:           p.Cfg,
		log:           p.Log.Named("http.server"),
		cookies:       p.Cookies,
		sessions:      p.Sessions,
		credentials:   p.Credentials,
		authzSvc:      p.AuthzSvc,
		masterdataSvc: p.MasterdataSvc,
		orderSvc:      p.OrderSvc,
	}
	s.RegisterRoutes()
	return s
}

func (s *Server) RegisterRoutes() {
	api := s.engine.Group("/api")
	api.Use(s.WithClient())

	s.RegisterAuthRoutes(api)
	s.RegisterCredentialRoutes(api)
	s.RegisterDashboardRoutes(api)
	s.RegisterMasterRoutes(api)
	s.RegisterOrderRoutes(api)
}

func (s *Server) RegisterAuthRoutes(api *gin.RouterGroup) {
	auth := api.Group("/auth")
	auth.POST("/login", s.Login)
	auth.POST("/restore", s.Restore)
	auth.POST("/logout", s.Logout)
	auth.GET("/session", s.CurrentSession)
	auth.POST("/signup/admin", s.SignupAdmin)
	auth.POST("/provision/:kind/:code",
		s.RequireSession(),
		s.authorize(authorization.ObjectAccount, authorization.ActionProvision),
		s.ProvisionAccount,
	)
}

func (s *Server) RegisterCredentialRoutes(api *gin.RouterGroup) {
	creds := api.Group("/credentials")
	creds.GET("/:role", s.ListCredentials)
	creds.DELETE("/:role", s.ClearCredentials)
	creds.DELETE("/:role/:email", s.RemoveCredential)
}

func (s *Server) RegisterDashboardRoutes(api *gin.RouterGroup) {
	api.GET("/dashboards/:name", s.RequireSession(), s.Dashboard)
}

func (s *Server) RegisterMasterRoutes(api *gin.RouterGroup) {
	masters := api.Group("/masters", s.RequireSession())
	masters.GET("/:kind", s.authorize(authorization.ObjectMasterData, authorization.ActionView), s.ListMasters)
	masters.POST("/:kind", s.authorize(authorization.ObjectMasterData, authorization.ActionCreate), s.CreateMaster)
	masters.GET("/:kind/:code", s.authorize(authorization.ObjectMasterData, authorization.ActionView), s.GetMaster)
	masters.PUT("/:kind/:code", s.authorize(authorization.ObjectMasterData, authorization.ActionUpdate), s.UpdateMaster)
}

func (s *Server) RegisterOrderRoutes(api *gin.RouterGroup) {
	orders := api.Group("/orders", s.RequireSession())
	orders.POST("/draft", s.authorize(authorization.ObjectOrder, authorization.ActionCreate), s.NewDraft)
	orders.POST("/compute", s.authorize(authorization.ObjectOrder, authorization.ActionCreate), s.ComputeOrder)
	orders.POST("", s.authorize(authorization.ObjectOrder, authorization.ActionSubmit), s.SubmitOrder)
	orders.GET("/:number", s.authorize(authorization.ObjectOrder, authorization.ActionView), s.GetOrder)
	orders.GET("/:number/voucher", s.authorize(authorization.ObjectOrder, authorization.ActionView), s.OrderVoucher)
}
