package routes

import (
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/draftsmith/draftsmith/config"
	"github.com/draftsmith/draftsmith/controllers"
	"github.com/draftsmith/draftsmith/middleware"
	"github.com/draftsmith/draftsmith/repositories"
	"github.com/draftsmith/draftsmith/services"
	"github.com/draftsmith/draftsmith/utils"
)

// SetupRouter wires routes, middlewares, and controllers.
func SetupRouter(blogService *services.BlogService, users repositories.UserRepository) *gin.Engine {
	cfg := config.Get()
	switch strings.ToLower(cfg.GinMode) {
	case "debug":
		gin.SetMode(gin.DebugMode)
	case "test":
		gin.SetMode(gin.TestMode)
	default:
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	// Replace default console logger with file-based zap logger
	gl, err := utils.NewRollingFileLogger(cfg.GinPath, cfg.LogLevel, cfg.LogMaxSizeMB, cfg.LogMaxBackups, cfg.LogMaxAgeDays, cfg.LogCompress)
	if err == nil {
		r.Use(utils.Ginzap(gl, time.RFC3339, true))
		r.Use(utils.RecoveryWithZap(gl, false))
	} else {
		r.Use(gin.Recovery())
	}

	corsCfg := cors.Config{
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Authorization", "Content-Type"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	if len(cfg.AllowedOrigins) == 1 && cfg.AllowedOrigins[0] == "*" {
		corsCfg.AllowAllOrigins = true
	} else {
		corsCfg.AllowOrigins = cfg.AllowedOrigins
	}
	r.Use(cors.New(corsCfg))

	r.GET("/health", func(ctx *gin.Context) {
		utils.Success(ctx, gin.H{"status": "ok"})
	})

	authController := controllers.NewAuthController(users)
	blogController := controllers.NewBlogController(blogService)

	api := r.Group("/api/v1")

	authGroup := api.Group("/auth")
	authGroup.Use(middleware.RateLimitMiddleware())
	authGroup.POST("/register", authController.Register)
	authGroup.POST("/login", authController.Login)
	authGroup.GET("/me", middleware.AuthRequired(), authController.Me)

	blogsGroup := api.Group("/blogs")
	blogsGroup.GET("", blogController.ListBlogs)
	blogsGroup.GET("/:id", blogController.GetBlog)
	api.GET("/authors/:id/blogs", blogController.ListAuthorBlogs)

	protected := api.Group("")
	protected.Use(middleware.AuthRequired(), middleware.RateLimitMiddleware())
	protected.POST("/blogs", blogController.CreateBlog)
	protected.PUT("/blogs/:id", blogController.UpdateBlog)
	protected.DELETE("/blogs/:id", blogController.DeleteBlog)
	protected.GET("/me/blogs", blogController.ListMyBlogs)
	protected.POST("/upload", blogController.UploadAsset)

	return r
}
