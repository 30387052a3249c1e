package router

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/smuct-dev/studentbase-backend/internal/config"
	"github.com/smuct-dev/studentbase-backend/internal/handler"
	"github.com/smuct-dev/studentbase-backend/internal/middleware"
	"github.com/smuct-dev/studentbase-backend/internal/response"
	"github.com/smuct-dev/studentbase-backend/internal/service"
)

// Handlers groups all handler instances for route setup.
type Handlers struct {
	Auth    *handler.AuthHandler
	Account *handler.AccountHandler
	Stream  *handler.StreamHandler
}

// SetupRouter configures all Gin route groups with appropriate middlewares.
func SetupRouter(
	authService *service.AuthService,
	handlers *Handlers,
	cfg *config.Config,
) *gin.Engine {
	gin.SetMode(cfg.GinMode)
	router := gin.Default()

	// If AllowedOrigins is set in config, restrict to that list;
	// otherwise allow all (*) so dev works without extra config.
	corsConfig := cors.DefaultConfig()
	if len(cfg.AllowedOrigins) > 0 {
		corsConfig.AllowOrigins = cfg.AllowedOrigins
	} else {
		corsConfig.AllowAllOrigins = true
	}
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Authorization", "X-Request-ID"}
	corsConfig.ExposeHeaders = []string{"X-Request-ID"}
	corsConfig.MaxAge = 12 * time.Hour
	router.Use(cors.New(corsConfig))

	// Apply request ID middleware globally so every response includes metadata.
	router.Use(response.RequestIDMiddleware())

	// Apply brotli compression globally.
	router.Use(middleware.Compress())

	// Serve uploaded attachments statically with aggressive caching (1 year).
	uploadsGroup := router.Group("/uploads")
	uploadsGroup.Use(middleware.CacheControl(31536000))
	{
		uploadsGroup.Static("/", cfg.UploadDir)
	}

	// Health check.
	router.GET("/health", func(c *gin.Context) {
		response.Success(c, http.StatusOK, gin.H{"status": "ok"})
	})

	// ─── Auth Group ────────────────────────────────────────────────────
	auth := router.Group("/api/v1/auth")
	{
		auth.POST("/register", handlers.Auth.Register)
		auth.POST("/login", handlers.Auth.Login)

		auth.GET("/profile", middleware.RequireJWT(authService), handlers.Auth.Profile)
		auth.DELETE("/:id",
			middleware.RequireJWT(authService),
			middleware.RequireAdmin(),
			handlers.Auth.Delete,
		)
		auth.POST("/:id/promote",
			middleware.RequireJWT(authService),
			middleware.RequireAdmin(),
			handlers.Auth.Promote,
		)
	}

	// ─── Student Records Group (JWT; mutations admin-only) ─────────────
	students := router.Group("/api/v1/students")
	students.Use(middleware.RequireJWT(authService))
	{
		students.GET("", handlers.Account.List)
		students.GET("/:id", handlers.Account.Get)
		students.POST("/:id/attachment", handlers.Account.UploadAttachment)

		admin := students.Group("")
		admin.Use(middleware.RequireAdmin())
		{
			admin.POST("", handlers.Account.Create)
			admin.PUT("/:id", handlers.Account.Update)
			admin.PATCH("/:id/status", handlers.Account.UpdateStatus)
			admin.PATCH("/:id/role", handlers.Account.UpdateRole)
			admin.DELETE("/:id", handlers.Account.Delete)
			admin.POST("/bulk-delete", handlers.Account.BulkDelete)
		}
	}

	// ─── WebSocket Group (Admin WS Auth) ───────────────────────────────
	if handlers.Stream != nil {
		ws := router.Group("/ws/v1")
		ws.Use(middleware.RequireAdminWSAuth(authService))
		{
			ws.GET("/admin/accounts/stream", handlers.Stream.AccountChangeStream)
		}
	}

	return router
}
