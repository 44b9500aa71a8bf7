package router

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/BigPoppaG/CourseMe/internal/config"
	"github.com/BigPoppaG/CourseMe/internal/handler"
	"github.com/BigPoppaG/CourseMe/internal/middleware"
	"github.com/BigPoppaG/CourseMe/internal/response"
	"github.com/BigPoppaG/CourseMe/internal/service"
)

// Handlers groups all handler instances for route setup.
type Handlers struct {
	Auth      *handler.AuthHandler
	Objective *handler.ObjectiveHandler
	Module    *handler.ModuleHandler
	Subject   *handler.SubjectHandler
	Topic     *handler.TopicHandler
	Lecture   *handler.LectureHandler
	WS        *handler.WSHandler
}

// SetupRouter configures all Gin route groups with appropriate middlewares.
func SetupRouter(
	authService *service.AuthService,
	handlers *Handlers,
	cfg *config.Config,
) *gin.Engine {
	gin.SetMode(cfg.GinMode)
	router := gin.Default()

	// ─── CORS ──────────────────────────────────────────────────────────
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

	// Serve uploaded lecture material statically with aggressive caching (1 year).
	lecturesGroup := router.Group("/lectures")
	lecturesGroup.Use(middleware.CacheControl(31536000))
	{
		lecturesGroup.Static("/", cfg.LectureDir)
	}

	// Health check.
	router.GET("/health", func(c *gin.Context) {
		response.Success(c, http.StatusOK, gin.H{"status": "ok"})
	})

	// Rate limiter for auth routes (30 requests per minute per IP).
	authLimiter := middleware.NewRateLimiter(30, time.Minute)

	// ─── 1. Auth Group (Public, Rate Limited) ──────────────────────────
	auth := router.Group("/api/v1/auth")
	{
		auth.POST("/signup", authLimiter.Middleware(), handlers.Auth.Signup)
		auth.POST("/login", authLimiter.Middleware(), handlers.Auth.Login)

		// Authenticated profile routes
		auth.POST("/logout", middleware.RequireJWT(authService), handlers.Auth.Logout)
		auth.GET("/me", middleware.RequireJWT(authService), handlers.Auth.Me)
	}

	// ─── 2. User Group (JWT + Session) ─────────────────────────────────
	userAPI := router.Group("/api/v1")
	userAPI.Use(
		middleware.RequireJWT(authService),
		middleware.CheckSession(authService),
	)
	{
		userAPI.GET("/objectives", handlers.Objective.List)
		userAPI.GET("/objectives/selectable", handlers.Objective.Selectable)
		userAPI.GET("/objectives/assessable", handlers.Objective.Assessable)
		userAPI.GET("/objectives/:id", handlers.Objective.Get)
		userAPI.POST("/objectives", handlers.Objective.Create)
		userAPI.PUT("/objectives/:id", handlers.Objective.Update)
		userAPI.DELETE("/objectives/:id", handlers.Objective.Delete)
		userAPI.POST("/objectives/remove", handlers.Objective.Remove)
		userAPI.POST("/objectives/assign", handlers.Objective.Assign)
		userAPI.POST("/objectives/assess", handlers.Objective.Assess)

		userAPI.GET("/modules", handlers.Module.Catalogue)
		userAPI.GET("/modules/:id", handlers.Module.View)
		userAPI.POST("/modules", handlers.Module.Create)
		userAPI.PUT("/modules/:id", handlers.Module.Update)
		userAPI.POST("/modules/:id/star", handlers.Module.Star)
		userAPI.POST("/modules/:id/vote", handlers.Module.Vote)

		userAPI.POST("/lectures/upload", handlers.Lecture.Upload)

		userAPI.GET("/subjects", handlers.Subject.List)
		userAPI.GET("/subjects/:id/topics", handlers.Topic.ListBySubject)
	}

	// ─── 3. WebSocket Group (WS Auth) ──────────────────────────────────
	ws := router.Group("/ws/v1")
	ws.Use(middleware.RequireWSAuth(authService))
	{
		ws.GET("/modules/:id/engagement", handlers.WS.EngagementStream)
	}

	// ─── 4. Admin Group (JWT + Admin) ──────────────────────────────────
	adminAPI := router.Group("/api/v1/admin")
	adminAPI.Use(middleware.RequireAdmin(authService))
	{
		subjectsGroup := adminAPI.Group("/subjects")
		{
			subjectsGroup.POST("", handlers.Subject.Create)
			subjectsGroup.PUT("/:id", handlers.Subject.Update)
			subjectsGroup.DELETE("/:id", handlers.Subject.Delete)
		}

		topicsGroup := adminAPI.Group("/topics")
		{
			topicsGroup.POST("", handlers.Topic.Create)
			topicsGroup.PUT("/:id", handlers.Topic.Update)
			topicsGroup.DELETE("/:id", handlers.Topic.Delete)
		}
	}

	return router
}
