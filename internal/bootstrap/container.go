package bootstrap

import (
	"context"
	"log"
	"math/rand"
	"time"

	"support-chat-be/internal/config"
	"support-chat-be/internal/constant"
	"support-chat-be/internal/controller"
	"support-chat-be/internal/dialogue"
	"support-chat-be/internal/moderation"
	"support-chat-be/internal/pkg/logger"
	"support-chat-be/internal/pkg/mailer"
	"support-chat-be/internal/relay"
	"support-chat-be/internal/service"
	"support-chat-be/internal/session"
	"support-chat-be/internal/store"
	"support-chat-be/internal/websocket"
	pktNats "support-chat-be/pkg/nats"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

type Container struct {
	// Controllers
	ChatController      controller.IChatController
	AdminChatController controller.IAdminChatController

	// Background services (exposed for main.go to run)
	Relay *relay.Relay

	WebSocketHub *websocket.Hub
	NatsPub      *pktNats.Publisher
}

func NewContainer(db *gorm.DB, cfg *config.Config) *Container {
	// 1. Core facades
	sysLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.App.Environment == "production")

	var emailService mailer.IEmailService
	if cfg.SMTP.Host != "" {
		emailService = mailer.NewEmailService(
			cfg.SMTP.Host,
			cfg.SMTP.Port,
			cfg.SMTP.Email,
			cfg.SMTP.Password,
			cfg.SMTP.SenderName,
		)
	} else {
		log.Println("[WARN] SMTP not configured, handoff alert emails disabled")
	}

	// 2. Event bus
	watermillLogger := watermill.NewStdLogger(false, false)
	pubSub := gochannel.NewGoChannel(
		gochannel.Config{},
		watermillLogger,
	)

	// 2.5 Infrastructure
	natsPub, err := pktNats.NewPublisher(cfg.App.NatsURL)
	if err != nil {
		log.Printf("[WARN] Failed to connect to NATS Publisher: %v", err)
	}

	opt, err := redis.ParseURL(cfg.App.RedisURL)
	if err != nil {
		log.Printf("[WARN] Failed to parse Redis URL: %v. Using direct Addr", err)
		opt = &redis.Options{
			Addr: cfg.App.RedisURL,
		}
	}
	rdb := redis.NewClient(opt)
	if _, err := rdb.Ping(context.Background()).Result(); err != nil {
		log.Printf("[WARN] Failed to connect to Redis: %v. Running single node", err)
		rdb = nil
	}

	// WebSocket hub
	wsLogger := logger.NewIsolatedLogger("logs/chat_ws.log")
	wsHub := websocket.NewHub(rdb, wsLogger)
	go wsHub.Run()

	// 3. Stores
	var sessionStore store.SessionStore
	var settingsStore store.SettingsStore
	if db != nil {
		gormStore := store.NewGormStore(db, pubSub)
		sessionStore, settingsStore = gormStore, gormStore
	} else {
		log.Println("[WARN] No database configured, using in-memory session store")
		memStore := store.NewMemoryStore(pubSub)
		sessionStore, settingsStore = memStore, memStore
	}

	pointers := session.NewPointerRepository(cfg.Chat.PointerTTL)
	engine := dialogue.NewEngine(
		dialogue.DefaultTable,
		constant.FallbackReplies,
		rand.New(rand.NewSource(time.Now().UnixNano())),
	)
	filter := moderation.NewFilter(constant.BlockedWords)

	// 4. Services
	settingsService := service.NewSettingsService(settingsStore, sysLogger)

	chatService := service.NewChatService(
		sessionStore,
		pointers,
		engine,
		filter,
		wsHub,
		emailService,
		cfg.SMTP.AlertTo,
		natsPub,
		sysLogger,
		cfg.Chat.TypingDelay,
		cfg.Chat.HandoffDelay,
	)

	adminService := service.NewAdminChatService(sessionStore, sysLogger)

	// Disabling the widget suspends visitor traffic and tells every open
	// connection to tear down.
	settingsService.OnChange(func(enabled bool) {
		if enabled {
			chatService.Resume()
		} else {
			chatService.Suspend()
		}
		wsHub.Broadcast(websocket.Envelope{Type: constant.EnvelopeSettings, Data: enabled})
	})

	// Apply the persisted flag on boot so a restart keeps a disabled widget
	// disabled.
	if enabled, err := settingsService.Enabled(context.Background()); err == nil && !enabled {
		chatService.Suspend()
	}

	// 5. Snapshot relay
	chatRelay := relay.New(pubSub, sessionStore, wsHub, sysLogger)

	return &Container{
		ChatController:      controller.NewChatController(chatService, settingsService, wsHub, sysLogger),
		AdminChatController: controller.NewAdminChatController(adminService, settingsService, wsHub, sysLogger),
		Relay:               chatRelay,
		WebSocketHub:        wsHub,
		NatsPub:             natsPub,
	}
}
