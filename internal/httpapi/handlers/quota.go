package handlers

import (
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

func (h *Handler) QuotaStatus(c *gin.Context) {
	identity := clientIdentity(c)
	st, err := h.Svc.Status(c.Request.Context(), identity)
	if err != nil {
		log.Printf("[quota] identity=%s status failed: %v", identity, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"used":      st.Used,
		"remaining": st.Remaining,
		"limit":     st.Limit,
		"reset_at":  st.ResetAt.Format(time.RFC3339),
	})
}

func (h *Handler) History(c *gin.Context) {
	identity := clientIdentity(c)
	entries, err := h.Svc.RecentHistory(c.Request.Context(), identity, 5)
	if err != nil {
		log.Printf("[history] identity=%s list failed: %v", identity, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"history": entries})
}

// ResetQuotas wipes every daily counter. The hook for an external scheduler;
// guarded by a static token when one is configured.
func (h *Handler) ResetQuotas(c *gin.Context) {
	if h.Cfg.AdminToken != "" && c.GetHeader("X-Admin-Token") != h.Cfg.AdminToken {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}
	if err := h.Guard.ResetAll(c.Request.Context()); err != nil {
		log.Printf("[quota] reset failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}
	log.Printf("[quota] all counters reset")
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
