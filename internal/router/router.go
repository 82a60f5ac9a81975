package router

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/DictatorXP/ExamWeb/internal/config"
	"github.com/DictatorXP/ExamWeb/internal/handler"
	"github.com/DictatorXP/ExamWeb/internal/middleware"
	"github.com/DictatorXP/ExamWeb/internal/response"
)

// SetupRouter configures the Gin engine with middleware and routes.
func SetupRouter(students *handler.StudentHandler, cfg *config.Config) *gin.Engine {
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
	corsConfig.AllowMethods = []string{"GET", "POST", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "X-Request-ID"}
	corsConfig.ExposeHeaders = []string{"X-Request-ID"}
	corsConfig.MaxAge = 12 * time.Hour
	router.Use(cors.New(corsConfig))

	// Apply request ID middleware globally so every response includes metadata.
	router.Use(response.RequestIDMiddleware())

	// Health check.
	router.GET("/health", func(c *gin.Context) {
		response.Success(c, http.StatusOK, gin.H{"status": "ok"})
	})

	// Rate limiter for registration (30 requests per minute per IP) so a
	// misbehaving client cannot flood the admin channel.
	registerLimiter := middleware.NewRateLimiter(30, time.Minute)

	api := router.Group("/api/v1")
	{
		api.POST("/students/register", registerLimiter.Middleware(), students.Register)
		api.GET("/students/:id/approval", students.ApprovalStatus)
		api.GET("/students/:id/retake", students.RetakeStatus)
		api.GET("/students/:id/result", students.Result)

		api.GET("/exam", students.GetExam)
		api.POST("/exam/submit", students.Submit)
	}

	return router
}
