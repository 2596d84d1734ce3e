package router

import (
	"github.com/gin-gonic/gin"

	"github.com/dedicate-place/backend/internal/config"
	"github.com/dedicate-place/backend/internal/http/handlers"
	"github.com/dedicate-place/backend/internal/http/middleware"
	"github.com/dedicate-place/backend/internal/models"
	"github.com/dedicate-place/backend/internal/service"
)

func SetupRouter(
	cfg *config.Config,
	authHandler *handlers.AuthHandler,
	profileHandler *handlers.ProfileHandler,
	objectHandler *handlers.ObjectHandler,
	reportHandler *handlers.ReportHandler,
	adminHandler *handlers.AdminHandler,
	paymentHandler *handlers.PaymentHandler,
	mediaHandler *handlers.MediaHandler,
	healthHandler *handlers.HealthHandler,
	tokenManager *service.TokenManager,
) *gin.Engine {
	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.Default()
	r.Use(middleware.ErrorHandler())
	r.Use(middleware.CORSMiddleware(cfg.AllowedOrigins))

	r.GET("/health", healthHandler.Health)

	api := r.Group("/api")

	authGroup := api.Group("/auth")
	authRateLimit := middleware.RateLimitMiddleware(cfg.RateLimitLimit, cfg.RateLimitPeriod)
	authGroup.Use(authRateLimit)
	{
		authGroup.POST("/register", authHandler.Register)
		authGroup.POST("/login", authHandler.Login)
		authGroup.POST("/refresh", authHandler.Refresh)
		authGroup.POST("/logout", authHandler.Logout)
	}

	// Управление сессиями доступно только владельцу аккаунта
	sessions := api.Group("/auth/sessions")
	sessions.Use(middleware.AuthMiddleware(tokenManager))
	{
		sessions.GET("", authHandler.ListSessions)
		sessions.DELETE("/:id", middleware.UUIDValidator("id"), authHandler.DeleteSession)
		sessions.DELETE("", authHandler.DeleteAllSessionsExcept)
	}

	// Публичные маршруты: витрина, статистика, платежи, вебхуки
	api.GET("/objects", objectHandler.ListPublic)
	api.GET("/objects/:id", middleware.Int64Validator("id"), objectHandler.Get)
	api.GET("/objects/:id/reports", middleware.Int64Validator("id"), objectHandler.PublicReports)
	api.GET("/stats/objects", objectHandler.Stats)

	api.POST("/payments/intent", paymentHandler.CreateIntent)
	api.POST("/payments/:id/confirm", middleware.UUIDValidator("id"), paymentHandler.Confirm)
	api.GET("/payments/:id", middleware.UUIDValidator("id"), paymentHandler.Get)
	api.POST("/webhooks/stripe", paymentHandler.Webhook)

	// Защищённые маршруты
	protected := api.Group("/")
	protected.Use(middleware.AuthMiddleware(tokenManager))
	{
		protected.GET("/profile", profileHandler.Me)
		protected.PUT("/profile", profileHandler.Update)

		protected.POST("/media/images", mediaHandler.Upload)
		protected.DELETE("/media/images", mediaHandler.Delete)
	}

	// Кабинет провайдера
	provider := api.Group("/provider")
	provider.Use(middleware.AuthMiddleware(tokenManager))
	provider.Use(middleware.RequireRoles(models.RoleProvider, models.RoleAdmin))
	{
		provider.GET("/objects", objectHandler.ListMine)
		provider.POST("/objects", objectHandler.Create)
		provider.PUT("/objects/:id", middleware.Int64Validator("id"), objectHandler.Update)
		provider.PATCH("/objects/:id/status", middleware.Int64Validator("id"), objectHandler.UpdateStatus)
		provider.DELETE("/objects/:id", middleware.Int64Validator("id"), objectHandler.Delete)
	}

	// Кабинет хранителя
	guardian := api.Group("/guardian")
	guardian.Use(middleware.AuthMiddleware(tokenManager))
	guardian.Use(middleware.RequireRoles(models.RoleGuardian, models.RoleAdmin))
	{
		guardian.GET("/reports", reportHandler.ListMine)
		guardian.POST("/reports", reportHandler.Create)
		guardian.GET("/reports/:id", middleware.UUIDValidator("id"), reportHandler.Get)
		guardian.PUT("/reports/:id", middleware.UUIDValidator("id"), reportHandler.Update)
	}

	// Админка
	admin := api.Group("/admin")
	admin.Use(middleware.AuthMiddleware(tokenManager))
	admin.Use(middleware.RequireRoles(models.RoleAdmin))
	{
		admin.GET("/users", adminHandler.ListUsers)
		admin.PUT("/users/:id", middleware.UUIDValidator("id"), adminHandler.UpdateUser)
		admin.DELETE("/users/:id", middleware.UUIDValidator("id"), adminHandler.DeleteUser)

		admin.GET("/reports", adminHandler.ListReports)
		admin.POST("/reports/:id/approve", middleware.UUIDValidator("id"), adminHandler.ApproveReport)

		admin.GET("/objects", adminHandler.ListObjects)
	}

	return r
}
