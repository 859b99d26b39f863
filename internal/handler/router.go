package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"dynqr/redirector/internal/config"
	"dynqr/redirector/internal/handler/middleware"
	jwtpkg "dynqr/redirector/pkg/jwt"
)

func SetupRouter(
	cfg *config.Config,
	logger *zap.Logger,
	jwtManager *jwtpkg.Manager,
	redirectHandler *RedirectHandler,
	qrCodeHandler *QRCodeHandler,
	healthHandler *HealthHandler,
) *gin.Engine {
	if cfg.Server.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.SetHTMLTemplate(statusPage)

	// Global middleware
	r.Use(middleware.Recovery(logger))
	r.Use(middleware.RequestLogger(logger))
	r.Use(middleware.Metrics())
	if len(cfg.CORS.AllowedOrigins) > 0 {
		r.Use(middleware.CORS(cfg.CORS))
	}

	// Probes and metrics
	r.GET("/healthz", healthHandler.Live)
	r.GET("/readyz", healthHandler.Ready)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// Public scan endpoint encoded in every printed code
	r.GET("/qr/:shortId", redirectHandler.Resolve)

	// Owner API
	owner := r.Group("/api/v1")
	owner.Use(middleware.JWTAuth(jwtManager))
	{
		owner.POST("/codes", qrCodeHandler.Create)
		owner.GET("/codes", qrCodeHandler.List)
		owner.GET("/codes/:id", qrCodeHandler.Get)
		owner.PATCH("/codes/:id", qrCodeHandler.Update)
		owner.DELETE("/codes/:id", qrCodeHandler.Delete)
	}

	return r
}
