package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/voicedesk/voicedesk/internal/common"
	"github.com/voicedesk/voicedesk/internal/config"
	"github.com/voicedesk/voicedesk/internal/dialog"
	"github.com/voicedesk/voicedesk/internal/httpapi/handlers"
	"github.com/voicedesk/voicedesk/internal/httpapi/middleware"
	"github.com/voicedesk/voicedesk/internal/tools"
)

func NewRouter(db *gorm.DB, cfg config.Config, sessions dialog.SessionStore, queue tools.Publisher) *gin.Engine {
	r := gin.New()
	r.HandleMethodNotAllowed = true
	r.Use(gin.Logger())
	r.Use(middleware.Recovery())
	r.Use(middleware.RequestID())

	r.NoRoute(func(c *gin.Context) {
		common.Fail(c, http.StatusNotFound, 40400, "route not found")
	})
	r.NoMethod(func(c *gin.Context) {
		common.Fail(c, http.StatusMethodNotAllowed, 40500, "method not allowed")
	})

	h := handlers.NewHandler(db, cfg, sessions, queue)

	r.GET("/ping", h.Ping)
	r.POST("/token", h.IssueToken)

	authGroup := r.Group("/")
	authGroup.Use(middleware.AuthRequired(cfg.JWTSecret))
	authGroup.POST("/sessions", h.CreateSession)
	authGroup.GET("/sessions/:session_id", h.GetSession)
	authGroup.POST("/sessions/:session_id/intents", h.DispatchIntent)

	return r
}
