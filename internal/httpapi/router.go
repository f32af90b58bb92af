package httpapi

import (
	"net/http"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/oakwellhq/chatgate/internal/chat"
	"github.com/oakwellhq/chatgate/internal/config"
	"github.com/oakwellhq/chatgate/internal/httpapi/handlers"
	"github.com/oakwellhq/chatgate/internal/httpapi/middleware"
	"github.com/oakwellhq/chatgate/internal/quota"
)

func NewRouter(db *gorm.DB, cfg config.Config, guard *quota.Guard, svc *chat.Service) *gin.Engine {
	r := gin.New()
	r.HandleMethodNotAllowed = true
	r.Use(gin.Logger())
	r.Use(middleware.Recovery())
	r.Use(middleware.RequestID())

	corsCfg := cors.DefaultConfig()
	if len(cfg.AllowedOrigins) > 0 {
		corsCfg.AllowOrigins = cfg.AllowedOrigins
	} else {
		corsCfg.AllowAllOrigins = true
	}
	corsCfg.AllowHeaders = append(corsCfg.AllowHeaders, "X-Admin-Token", middleware.RequestIDHeader)
	r.Use(cors.New(corsCfg))

	r.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"error": "route not found"})
	})
	r.NoMethod(func(c *gin.Context) {
		c.JSON(http.StatusMethodNotAllowed, gin.H{"error": "method not allowed"})
	})

	h := handlers.NewHandler(db, cfg, guard, svc)

	r.GET("/healthz", h.Health)
	r.POST("/chat", h.Chat)
	r.GET("/quota", h.QuotaStatus)
	r.GET("/history", h.History)
	r.POST("/admin/reset", h.ResetQuotas)

	return r
}
