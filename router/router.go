package router

import (
	"GoDrop/config"
	"GoDrop/internal/handler"
	"GoDrop/utils"

	"github.com/gin-gonic/gin"
)

// Handlers groups every handler the router wires.
type Handlers struct {
	Auth      *handler.AuthHandler
	Files     *handler.FileHandler
	Shares    *handler.ShareHandler
	Analytics *handler.AnalyticsHandler
}

// InitRouter builds API routes.
func InitRouter(cfg *config.Config, codec *utils.TokenCodec, h Handlers) *gin.Engine {
	r := gin.Default()
	r.Use(utils.CORSMiddleware(cfg.CORSOrigins))

	api := r.Group("/api")
	{
		api.POST("/auth/login", h.Auth.Login)

		admin := api.Group("")
		admin.Use(utils.AdminAuthMiddleware(codec))
		{
			admin.POST("/files/upload", h.Files.Upload)
			admin.GET("/files", h.Files.List)
			admin.DELETE("/files/:fileID", h.Files.Delete)
			admin.POST("/files/:fileID/share", h.Files.CreateShare)
			admin.POST("/files/:fileID/download-token", h.Files.CreateDownloadToken)

			admin.GET("/analytics/share-access", h.Analytics.ListAccessLogs)
			admin.GET("/analytics/share-access/stats", h.Analytics.GetAccessStats)
		}

		// token-gated download paths, no admin session required
		api.GET("/files/:fileID/download", h.Files.Download)

		public := api.Group("/share")
		public.Use(utils.RateLimitMiddleware(cfg.PublicRate, cfg.PublicBurst))
		{
			public.GET("/:shareCode", h.Shares.Info)
			public.POST("/:shareCode/verify", h.Shares.Verify)
			public.GET("/:shareCode/download", h.Shares.Download)
		}
	}
	return r
}
