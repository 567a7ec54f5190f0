package handlers

import (
	"gorm.io/gorm"

	"github.com/voicedesk/voicedesk/internal/booking"
	"github.com/voicedesk/voicedesk/internal/config"
	"github.com/voicedesk/voicedesk/internal/convlog"
	"github.com/voicedesk/voicedesk/internal/dialog"
	"github.com/voicedesk/voicedesk/internal/tools"
)

type Handler struct {
	Cfg      config.Config
	Sessions dialog.SessionStore
	Router   *dialog.Router
}

func NewHandler(db *gorm.DB, cfg config.Config, sessions dialog.SessionStore, queue tools.Publisher) *Handler {
	machine := dialog.NewMachine(cfg.Reentry)
	router := dialog.NewRouter(machine)

	tools.RegisterAll(router, tools.Deps{
		Store: booking.NewRepo(db),
		Logs:  convlog.NewRepo(db),
		Queue: queue,
		Grid:  booking.NewGrid(cfg.BusinessOpenHour, cfg.BusinessCloseHour, cfg.SlotWindowDays),
	})

	return &Handler{
		Cfg:      cfg,
		Sessions: sessions,
		Router:   router,
	}
}
