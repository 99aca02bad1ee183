package router

import (
	"github.com/gin-gonic/gin"

	"github.com/mkravchenko/lendit-backend/internal/config"
	"github.com/mkravchenko/lendit-backend/internal/http/handlers"
	"github.com/mkravchenko/lendit-backend/internal/http/middleware"
	"github.com/mkravchenko/lendit-backend/internal/service"
)

// Handlers собирает все хэндлеры приложения для передачи в SetupRouter.
type Handlers struct {
	Auth         *handlers.AuthHandler
	User         *handlers.UserHandler
	Item         *handlers.ItemHandler
	Request      *handlers.RequestHandler
	Return       *handlers.ReturnHandler
	Notification *handlers.NotificationHandler
	Conversation *handlers.ConversationHandler
	Review       *handlers.ReviewHandler
	Report       *handlers.ReportHandler
	Admin        *handlers.AdminHandler
	Media        *handlers.MediaHandler
	WS           *handlers.WSHandler
	Health       *handlers.HealthHandler
}

// SetupRouter настраивает маршруты и middleware.
func SetupRouter(cfg *config.Config, h Handlers, tokenManager *service.TokenManager) *gin.Engine {
	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.Default()
	r.Use(middleware.ErrorHandler())
	r.Use(middleware.CORSMiddleware(cfg.AllowedOrigins))

	r.GET("/health", h.Health.Health)

	api := r.Group("/api")

	authGroup := api.Group("/auth")
	authRateLimit := middleware.RateLimitMiddleware(cfg.RateLimitLimit, cfg.RateLimitPeriod)
	authGroup.Use(authRateLimit)
	{
		authGroup.POST("/register", h.Auth.Register)
		authGroup.POST("/login", h.Auth.Login)
		authGroup.POST("/refresh", h.Auth.Refresh)
	}

	protectedAuth := api.Group("/auth")
	protectedAuth.Use(middleware.AuthMiddleware(tokenManager))
	{
		protectedAuth.POST("/logout", h.Auth.Logout)
		protectedAuth.GET("/me", h.Auth.Me)
		protectedAuth.GET("/sessions", h.Auth.ListSessions)
		protectedAuth.DELETE("/sessions/:id", h.Auth.DeleteSession)
		protectedAuth.DELETE("/sessions", h.Auth.DeleteAllSessionsExcept)
	}

	// Публичные маршруты
	api.GET("/ws", h.WS.Handle)
	api.GET("/items", h.Item.List)
	api.GET("/items/:id", middleware.UUIDValidator("id"), h.Item.Get)
	api.GET("/users/:id", middleware.UUIDValidator("id"), h.User.Get)
	api.GET("/users/:id/reviews", middleware.UUIDValidator("id"), h.Review.ListByUser)
	api.GET("/users/:id/rating", middleware.UUIDValidator("id"), h.Review.UserRating)
	api.GET("/reviews/:id", middleware.UUIDValidator("id"), h.Review.Get)
	api.GET("/media/photos/:id", middleware.UUIDValidator("id"), h.Media.ServePhoto)

	// Защищённые маршруты
	protected := api.Group("/")
	protected.Use(middleware.AuthMiddleware(tokenManager))
	{
		protected.POST("/items", h.Item.Create)
		protected.GET("/items/mine", h.Item.Mine)
		protected.PUT("/items/:id", middleware.UUIDValidator("id"), h.Item.Update)
		protected.PATCH("/items/:id/status", middleware.UUIDValidator("id"), h.Item.SetStatus)
		protected.DELETE("/items/:id", middleware.UUIDValidator("id"), h.Item.Delete)

		protected.POST("/requests", h.Request.Create)
		protected.GET("/requests/incoming", h.Request.Incoming)
		protected.GET("/requests/outgoing", h.Request.Outgoing)
		protected.GET("/requests/:id", middleware.UUIDValidator("id"), h.Request.Get)
		protected.POST("/requests/:id/approve", middleware.UUIDValidator("id"), h.Request.Approve)
		protected.POST("/requests/:id/reject", middleware.UUIDValidator("id"), h.Request.Reject)
		protected.POST("/requests/:id/confirm-delivery", middleware.UUIDValidator("id"), h.Request.ConfirmDelivery)
		protected.GET("/requests/:id/return", middleware.UUIDValidator("id"), h.Return.GetByRequest)

		protected.POST("/returns", h.Return.Create)
		protected.GET("/returns", h.Return.List)
		protected.GET("/returns/:id", middleware.UUIDValidator("id"), h.Return.Get)
		protected.POST("/returns/:id/approve", middleware.UUIDValidator("id"), h.Return.Approve)
		protected.POST("/returns/:id/reject", middleware.UUIDValidator("id"), h.Return.Reject)
		protected.POST("/returns/:id/confirm", middleware.UUIDValidator("id"), h.Return.Confirm)

		protected.GET("/notifications", h.Notification.List)
		protected.GET("/notifications/unread/count", h.Notification.UnreadCount)
		protected.PUT("/notifications/:id/read", middleware.UUIDValidator("id"), h.Notification.MarkRead)
		protected.PUT("/notifications/read-all", h.Notification.MarkAllRead)
		protected.DELETE("/notifications/:id", middleware.UUIDValidator("id"), h.Notification.Delete)

		protected.GET("/conversations", h.Conversation.List)
		protected.GET("/conversations/by-request/:id", middleware.UUIDValidator("id"), h.Conversation.GetByRequest)
		protected.GET("/conversations/:id", middleware.UUIDValidator("id"), h.Conversation.Get)
		protected.GET("/conversations/:id/messages", middleware.UUIDValidator("id"), h.Conversation.Messages)
		protected.POST("/conversations/:id/messages", middleware.UUIDValidator("id"), h.Conversation.SendMessage)

		protected.POST("/reviews", h.Review.Create)
		protected.GET("/reviews/can-leave/:id", middleware.UUIDValidator("id"), h.Review.CanLeave)

		protected.POST("/reports", h.Report.Create)
		protected.GET("/reports/mine", h.Report.Mine)
		protected.GET("/reports/:id", middleware.UUIDValidator("id"), h.Report.Get)

		protected.POST("/media/photos", h.Media.UploadPhoto)
		protected.GET("/media/mine", h.Media.ListMine)
		protected.DELETE("/media/:id", middleware.UUIDValidator("id"), h.Media.DeleteMedia)
	}

	// Модерация
	admin := api.Group("/admin")
	admin.Use(middleware.AuthMiddleware(tokenManager), middleware.RequireAdmin())
	{
		admin.GET("/users", h.Admin.ListUsers)
		admin.PATCH("/users/:id/ban", middleware.UUIDValidator("id"), h.Admin.SetBanned)
		admin.GET("/requests/pending", h.Admin.PendingRequests)
		admin.GET("/returns/pending", h.Admin.PendingReturns)
		admin.GET("/reports", h.Admin.ListReports)
		admin.POST("/reports/:id/resolve", middleware.UUIDValidator("id"), h.Admin.ResolveReport)
	}

	return r
}
