package main

import (
	"fmt"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/excellence-college/school-portal/internal/backend"
	"github.com/excellence-college/school-portal/internal/cache"
	"github.com/excellence-college/school-portal/internal/dashboard"
	"github.com/excellence-college/school-portal/internal/handler"
	"github.com/excellence-college/school-portal/internal/metrics"
	"github.com/excellence-college/school-portal/internal/middleware"
	"github.com/excellence-college/school-portal/internal/session"
	"github.com/excellence-college/school-portal/internal/stats"
	pkgcache "github.com/excellence-college/school-portal/pkg/cache"
	"github.com/excellence-college/school-portal/pkg/config"
	"github.com/excellence-college/school-portal/pkg/logger"
	reqidmiddleware "github.com/excellence-college/school-portal/pkg/middleware/requestid"
	"github.com/excellence-college/school-portal/pkg/response"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	redisClient, err := pkgcache.NewRedis(cfg.Redis)
	if err != nil {
		logr.Sugar().Fatalw("failed to connect redis", "error", err)
	}
	defer redisClient.Close() //nolint:errcheck

	metricsSvc := metrics.NewService()

	apiClient := backend.NewClient(cfg.Backend, logr.Named("backend"), backend.WithObserver(metricsSvc))

	cacheSvc := cache.NewService(cache.NewRepository(redisClient), metricsSvc, cfg.Cache.PublicStatsTTL, logr.Named("cache"), cfg.Cache.Enabled)
	statsSvc := stats.NewService(apiClient, cacheSvc, stats.Config{
		PublicTTL: cfg.Cache.PublicStatsTTL,
		AdminTTL:  cfg.Cache.AdminStatsTTL,
	}, logr.Named("stats"))

	sessionMgr := session.NewManager(session.NewRedisStore(redisClient), apiClient, cfg.Session, logr.Named("session"))
	controllers := dashboard.NewRegistry(apiClient, statsSvc, dashboard.Config{PageSize: cfg.Site.PageSize}, logr.Named("dashboard"))

	publicHandler := handler.NewPublicHandler(apiClient, statsSvc, cfg.Site, logr.Named("public"))
	authHandler := handler.NewAuthHandler(apiClient, sessionMgr, controllers, metricsSvc, cfg.Site, logr.Named("auth"))
	adminHandler := handler.NewAdminHandler(controllers, statsSvc, sessionMgr, metricsSvc, cfg.Site, logr.Named("admin"))

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(middleware.Metrics(metricsSvc))
	r.Use(middleware.SecureHeaders())

	r.SetFuncMap(handler.TemplateFuncs())
	r.LoadHTMLGlob("web/templates/*.tmpl")

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/ready", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})
	r.GET("/metrics", gin.WrapH(metricsSvc.Handler()))
	r.GET("/favicon.ico", func(c *gin.Context) {
		response.NoContent(c)
	})

	r.GET("/", publicHandler.Home)
	r.GET("/about", publicHandler.About)
	r.GET("/inquiry", publicHandler.InquiryForm)
	r.POST("/inquiry", publicHandler.SubmitInquiry)

	r.GET("/admin", func(c *gin.Context) {
		c.Redirect(http.StatusSeeOther, "/admin/login")
	})
	r.GET("/admin/login", authHandler.LoginPage)
	r.POST("/admin/login", authHandler.Login)
	r.POST("/admin/logout", authHandler.Logout)

	guarded := r.Group("/admin", middleware.RequireSession(sessionMgr))
	{
		guarded.GET("/dashboard", adminHandler.Dashboard)
		guarded.POST("/inquiries/:id", adminHandler.Update)
		guarded.POST("/inquiries/:id/delete", adminHandler.Delete)
		guarded.GET("/export/csv", adminHandler.ExportCSV)
		guarded.GET("/report/pdf", adminHandler.StatsReport)
		guarded.GET("/api/stats", adminHandler.StatsJSON)
		guarded.GET("/password", authHandler.PasswordPage)
		guarded.POST("/password", authHandler.ChangePassword)
	}

	// Unmatched paths land on the home page.
	r.NoRoute(func(c *gin.Context) {
		c.Redirect(http.StatusSeeOther, "/")
	})

	addr := fmt.Sprintf(":%d", cfg.Port)
	logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env)
	if err := r.Run(addr); err != nil {
		logr.Sugar().Fatalw("server failed", "error", err)
	}
}
