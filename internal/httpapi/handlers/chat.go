package handlers

import (
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/oakwellhq/chatgate/internal/chat"
	"github.com/oakwellhq/chatgate/internal/quota"
)

type chatReq struct {
	Prompt  string      `json:"prompt"`
	History []chat.Turn `json:"history"`
}

func (h *Handler) Chat(c *gin.Context) {
	var req chatReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}

	identity := clientIdentity(c)
	res, err := h.Svc.Exchange(c.Request.Context(), identity, req.Prompt, req.History)
	if err != nil {
		h.writeExchangeError(c, identity, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"response":  res.Response,
		"remaining": res.Remaining,
		"model":     res.Model,
	})
}

func (h *Handler) writeExchangeError(c *gin.Context, identity string, err error) {
	switch {
	case errors.Is(err, chat.ErrPromptRequired):
		c.JSON(http.StatusBadRequest, gin.H{"error": "prompt is required"})
	case errors.Is(err, chat.ErrQuotaExceeded):
		c.JSON(http.StatusTooManyRequests, gin.H{
			"error":    "daily limit reached",
			"reset_at": quota.NextReset(time.Now()).Format(time.RFC3339),
		})
	default:
		log.Printf("[chat] identity=%s exchange failed: %v", identity, err)
		body := gin.H{"error": "internal server error"}
		if h.Cfg.DevMode {
			body["details"] = err.Error()
		}
		c.JSON(http.StatusInternalServerError, body)
	}
}
