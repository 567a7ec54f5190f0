package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/voicedesk/voicedesk/internal/auth"
	"github.com/voicedesk/voicedesk/internal/common"
)

type tokenReq struct {
	ClientID     string `json:"client_id" binding:"required"`
	ClientSecret string `json:"client_secret" binding:"required"`
}

// IssueToken exchanges the configured service-client credentials for a JWT.
// The classifier gateway is the only expected client.
func (h *Handler) IssueToken(c *gin.Context) {
	var req tokenReq
	if err := c.ShouldBindJSON(&req); err != nil {
		common.Fail(c, http.StatusBadRequest, 10001, "invalid json")
		return
	}

	if h.Cfg.ClientID == "" || h.Cfg.ClientSecretHash == "" {
		common.Fail(c, http.StatusForbidden, 40300, "token issuing not configured")
		return
	}
	if req.ClientID != h.Cfg.ClientID || !auth.CheckSecret(h.Cfg.ClientSecretHash, req.ClientSecret) {
		common.Fail(c, http.StatusUnauthorized, 40102, "invalid client credentials")
		return
	}

	token, err := auth.SignJWT(req.ClientID, h.Cfg.JWTSecret, 24*time.Hour)
	if err != nil {
		common.Fail(c, http.StatusInternalServerError, 50004, "failed to sign token")
		return
	}
	common.OK(c, gin.H{"token": token})
}
