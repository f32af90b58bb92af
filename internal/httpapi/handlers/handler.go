package handlers

import (
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/oakwellhq/chatgate/internal/chat"
	"github.com/oakwellhq/chatgate/internal/config"
	"github.com/oakwellhq/chatgate/internal/quota"
)

type Handler struct {
	DB    *gorm.DB
	Cfg   config.Config
	Guard *quota.Guard
	Svc   *chat.Service
}

func NewHandler(db *gorm.DB, cfg config.Config, guard *quota.Guard, svc *chat.Service) *Handler {
	return &Handler{DB: db, Cfg: cfg, Guard: guard, Svc: svc}
}

// clientIdentity resolves the caller-distinguishing key: the first entry of
// X-Forwarded-For when a proxy set one, else the transport peer address.
func clientIdentity(c *gin.Context) string {
	if xff := c.GetHeader("X-Forwarded-For"); xff != "" {
		if first := strings.TrimSpace(strings.Split(xff, ",")[0]); first != "" {
			return first
		}
	}
	return c.RemoteIP()
}
