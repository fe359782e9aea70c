// Package router assembles the HTTP surface of the desk.
package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"stockdesk/internal/handlers"
	"stockdesk/internal/middleware"
	"stockdesk/internal/services"
)

// Services are the domain services the router exposes.
type Services struct {
	Users        services.UserServicer
	Audit        services.AuditServicer
	BlockedItems services.BlockedItemServicer
	Monitoring   services.MonitoringServicer
	Supplies     services.SupplyServicer
	PPE          services.PPEServicer
	CutPasswords services.CutPasswordServicer
	Consolidated services.ConsolidatedServicer
	Catalog      services.CatalogServicer
}

// Options configure the non-domain parts of the router.
type Options struct {
	Sectors           []string
	MaintenanceAPIKey string
	Mirror            handlers.MirrorSyncer
	// Docs mounts the swagger UI and /metrics.
	Docs bool
}

// New builds the gin engine with every route registered.
func New(svc Services, opts Options) *gin.Engine {
	authHandler := handlers.NewAuthHandler(svc.Users)
	adminHandler := handlers.NewAdminHandler(svc.Users)
	deskHandler := handlers.NewDeskHandler(opts.Sectors, svc.Audit, opts.Mirror)
	blockedHandler := handlers.NewBlockedItemHandler(svc.BlockedItems, svc.Audit)
	monitoringHandler := handlers.NewMonitoringHandler(svc.Monitoring, svc.Audit)
	supplyHandler := handlers.NewSupplyHandler(svc.Supplies, svc.Audit)
	ppeHandler := handlers.NewPPEHandler(svc.PPE, svc.Audit)
	cutHandler := handlers.NewCutPasswordHandler(svc.CutPasswords, svc.Audit)
	consolidatedHandler := handlers.NewConsolidatedHandler(svc.Consolidated)
	catalogHandler := handlers.NewCatalogHandler(svc.Catalog)

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogging())
	router.Use(middleware.Metrics())
	router.Use(middleware.ErrorHandler())
	router.Use(cors())

	if opts.Docs {
		router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
		router.GET("/metrics", gin.WrapH(promhttp.Handler()))
	}

	router.GET("/api/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	v1 := router.Group("/api/v1")

	// Public routes
	auth := v1.Group("/auth")
	auth.POST("/register", authHandler.Register)
	auth.POST("/login", authHandler.Login)

	// Scheduled jobs authenticate with the maintenance key
	maintenance := v1.Group("/maintenance")
	maintenance.Use(middleware.MaintenanceAuthMiddleware(opts.MaintenanceAPIKey))
	maintenance.POST("/mirror", deskHandler.SyncMirror)

	// Protected routes
	protected := v1.Group("/")
	protected.Use(middleware.AuthMiddleware())

	protected.GET("/profile", authHandler.GetProfile)
	protected.POST("/profile/password", authHandler.ChangePassword)
	protected.GET("/sectors", deskHandler.ListSectors)
	protected.GET("/audit", deskHandler.ListAudit)

	admin := protected.Group("/admin")
	admin.Use(middleware.RequireAdmin())
	admin.GET("/users", adminHandler.ListUsers)
	admin.POST("/users", adminHandler.CreateUser)
	admin.PUT("/users/:username/password", adminHandler.ResetPassword)
	admin.DELETE("/users/:username", adminHandler.DeleteUser)

	blocked := protected.Group("/blocked-items")
	blocked.POST("", blockedHandler.Create)
	blocked.GET("", blockedHandler.List)
	blocked.GET("/export", blockedHandler.Export)
	blocked.GET("/:id", blockedHandler.Get)
	blocked.PUT("/:id", blockedHandler.Update)
	blocked.DELETE("/:id", blockedHandler.Delete)

	monitoring := protected.Group("/monitoring")
	monitoring.POST("", monitoringHandler.Create)
	monitoring.GET("", monitoringHandler.List)
	monitoring.GET("/export", monitoringHandler.Export)
	monitoring.GET("/responsibles", monitoringHandler.Responsibles)
	monitoring.GET("/:id", monitoringHandler.Get)
	monitoring.PUT("/:id", monitoringHandler.Update)
	monitoring.DELETE("/:id", monitoringHandler.Delete)

	supplies := protected.Group("/supplies")
	supplies.POST("", supplyHandler.Create)
	supplies.GET("", supplyHandler.List)
	supplies.GET("/export", supplyHandler.Export)
	supplies.GET("/:id", supplyHandler.Get)
	supplies.PUT("/:id", supplyHandler.Update)
	supplies.DELETE("/:id", supplyHandler.Delete)

	ppe := protected.Group("/ppe")
	ppe.POST("", ppeHandler.Create)
	ppe.GET("", ppeHandler.List)
	ppe.GET("/export", ppeHandler.Export)
	ppe.GET("/:id", ppeHandler.Get)
	ppe.GET("/:id/items", ppeHandler.Items)
	ppe.PUT("/:id", ppeHandler.Update)
	ppe.DELETE("/:id", ppeHandler.Delete)

	cut := protected.Group("/cut-passwords")
	cut.POST("", cutHandler.Create)
	cut.GET("", cutHandler.List)
	cut.GET("/export", cutHandler.Export)
	cut.GET("/by-order/:number", cutHandler.GetByOrder)
	cut.GET("/:id", cutHandler.Get)
	cut.GET("/:id/items", cutHandler.Items)
	cut.PUT("/:id", cutHandler.Update)
	cut.PUT("/:id/status", cutHandler.UpdateStatus)
	cut.DELETE("/:id", cutHandler.Delete)

	consolidated := protected.Group("/consolidated")
	consolidated.POST("", consolidatedHandler.Insert)
	consolidated.GET("", consolidatedHandler.List)
	consolidated.GET("/exists", consolidatedHandler.Exists)
	consolidated.PUT("/:id", consolidatedHandler.Update)
	consolidated.DELETE("/:id", consolidatedHandler.Delete)

	catalog := protected.Group("/catalog")
	catalog.GET("", catalogHandler.List)
	catalog.POST("", catalogHandler.Upsert)
	catalog.PUT("", catalogHandler.Replace)
	catalog.GET("/:code", catalogHandler.Lookup)
	catalog.DELETE("/:code", catalogHandler.Delete)

	return router
}

func cors() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, X-API-Key, X-Request-ID")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}
