package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/shaoyi1998/blog-backend/internal/handler"
	"github.com/shaoyi1998/blog-backend/internal/middleware"
	"github.com/shaoyi1998/blog-backend/pkg/jwt"
)

// Setup configures all API routes
func Setup(
	router *gin.Engine,
	articleHandler *handler.ArticleHandler,
	assetHandler *handler.AssetHandler,
	settingHandler *handler.SettingHandler,
	jwtManager *jwt.Manager,
	redisClient *redis.Client,
) {
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := router.Group("/api/v1")

	// writes require a root token
	root := []gin.HandlerFunc{
		middleware.JWTAuth(jwtManager),
		middleware.RequireRoot(),
	}
	writeLimit := middleware.RateLimitPerUser(redisClient, middleware.DefaultWriteRateLimit())

	articles := api.Group("/articles")
	articles.GET("", articleHandler.ListArticles)
	articles.GET("/:id", articleHandler.GetArticle)

	articlesWrite := articles.Group("", root...)
	articlesWrite.Use(writeLimit)
	articlesWrite.POST("", articleHandler.CreateArticle)
	articlesWrite.PUT("/:id", articleHandler.UpdateArticle)
	articlesWrite.DELETE("/:id", articleHandler.DeleteArticle)

	api.GET("/images", assetHandler.ListImages)

	admin := api.Group("/admin", root...)
	admin.POST("/assets/reclaim", assetHandler.Reclaim)
	admin.GET("/assets/audit", assetHandler.Audit)
	admin.GET("/settings/media", settingHandler.GetMediaSettings)
	admin.PUT("/settings/media", settingHandler.UpdateMediaSettings)
}
