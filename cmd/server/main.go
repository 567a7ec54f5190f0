package main

import (
	"time"

	"go.uber.org/zap"

	"github.com/voicedesk/voicedesk/internal/config"
	"github.com/voicedesk/voicedesk/internal/db"
	"github.com/voicedesk/voicedesk/internal/dialog"
	"github.com/voicedesk/voicedesk/internal/httpapi"
	"github.com/voicedesk/voicedesk/internal/logging"
	"github.com/voicedesk/voicedesk/internal/store/rabbitmq"
	"github.com/voicedesk/voicedesk/internal/store/redisstore"
	"github.com/voicedesk/voicedesk/internal/tools"
)

func main() {
	logging.Init()
	log := logging.L()

	cfg := config.Load()

	gdb, err := db.Connect(cfg.DBDriver, cfg.DBDSN)
	if err != nil {
		log.Fatal("db connect", zap.Error(err))
	}
	if err := db.Migrate(gdb); err != nil {
		log.Fatal("db migrate", zap.Error(err))
	}

	var sessions dialog.SessionStore
	switch cfg.SessionStore {
	case "redis":
		sessions = redisstore.New(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB,
			time.Duration(cfg.SessionTTLMin)*time.Minute)
	default:
		sessions = dialog.NewMemoryStore()
	}

	// Summaries are best-effort: without a broker, logs stay pending.
	var queue tools.Publisher
	pub, err := rabbitmq.NewPublisher(cfg.RabbitURL, cfg.RabbitQueue)
	if err != nil {
		log.Warn("rabbit unavailable, conversation logs will stay pending", zap.Error(err))
	} else {
		defer pub.Close()
		queue = pub
	}

	r := httpapi.NewRouter(gdb, cfg, sessions, queue)

	log.Info("server starting",
		zap.String("addr", cfg.ListenAddr),
		zap.String("db_driver", cfg.DBDriver),
		zap.String("session_store", cfg.SessionStore))
	if err := r.Run(cfg.ListenAddr); err != nil {
		log.Fatal("server exited", zap.Error(err))
	}
}
