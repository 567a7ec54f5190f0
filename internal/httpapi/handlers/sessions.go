package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/voicedesk/voicedesk/internal/common"
	"github.com/voicedesk/voicedesk/internal/dialog"
	"github.com/voicedesk/voicedesk/internal/logging"
)

func (h *Handler) Ping(c *gin.Context) {
	common.OK(c, gin.H{"pong": true})
}

// CreateSession starts a conversation in UNIDENTIFIED.
func (h *Handler) CreateSession(c *gin.Context) {
	sess := dialog.NewSession()
	if err := h.Sessions.Save(c.Request.Context(), sess); err != nil {
		common.Fail(c, http.StatusInternalServerError, 50001, "failed to create session")
		return
	}
	common.OK(c, gin.H{"session_id": sess.ID, "state": sess.State})
}

func (h *Handler) GetSession(c *gin.Context) {
	sess, err := h.Sessions.Get(c.Request.Context(), c.Param("session_id"))
	if err != nil {
		if errors.Is(err, dialog.ErrSessionNotFound) {
			common.Fail(c, http.StatusNotFound, 40401, "session not found")
			return
		}
		common.Fail(c, http.StatusInternalServerError, 50002, "session store error")
		return
	}
	common.OK(c, gin.H{"session": sess})
}

// DispatchIntent routes one classified intent through the conversation core
// and commits the session afterwards. The body is the classifier's structured
// record; nothing here parses free text.
func (h *Handler) DispatchIntent(c *gin.Context) {
	var intent dialog.Intent
	if err := c.ShouldBindJSON(&intent); err != nil {
		common.Fail(c, http.StatusBadRequest, 10001, "invalid json")
		return
	}
	if intent.Action == "" {
		common.Fail(c, http.StatusBadRequest, 10002, "action required")
		return
	}

	sess, err := h.Sessions.Get(c.Request.Context(), c.Param("session_id"))
	if err != nil {
		if errors.Is(err, dialog.ErrSessionNotFound) {
			common.Fail(c, http.StatusNotFound, 40401, "session not found")
			return
		}
		common.Fail(c, http.StatusInternalServerError, 50002, "session store error")
		return
	}

	res, err := h.Router.Dispatch(c.Request.Context(), sess, intent)
	if err != nil {
		// persistence failure: the conversation should be ended gracefully
		logging.L().Error("booking store unavailable",
			zap.String("session_id", sess.ID),
			zap.String("action", intent.Action),
			zap.Error(err))
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"code":    50300,
			"message": "store unavailable",
			"data": gin.H{
				"result": dialog.Failure(dialog.KindStoreUnavailable, "booking store unavailable"),
			},
		})
		return
	}

	if err := h.Sessions.Save(c.Request.Context(), sess); err != nil {
		common.Fail(c, http.StatusInternalServerError, 50003, "failed to persist session")
		return
	}

	common.OK(c, gin.H{
		"result": res,
		"session": gin.H{
			"id":    sess.ID,
			"state": sess.State,
			"ended": sess.Ended,
		},
	})
}
