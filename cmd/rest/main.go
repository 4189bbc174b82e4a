package main

import (
	"context"
	"log"

	"support-chat-be/internal/bootstrap"
	"support-chat-be/internal/config"
	"support-chat-be/internal/server"
	"support-chat-be/internal/tracer"
	"support-chat-be/pkg/database"

	"github.com/fatih/color"
	"gorm.io/gorm"
)

func main() {
	// 0. Initialize Tracer (no-op unless OTEL_ENABLED=true)
	shutdownTracer := tracer.InitTracer()
	defer shutdownTracer(context.Background())

	// 1. Load Configuration
	cfg := config.Load()

	// 2. Initialize Database (optional; falls back to in-memory store)
	var gormDB *gorm.DB
	if cfg.Database.Connection != "" {
		db, err := database.NewGormDBFromDSN(cfg.Database.Connection)
		if err != nil {
			log.Panicf("Unable to connect to GORM DB: %v", err)
		}
		gormDB = db
	}

	// 3. Bootstrap Dependencies (Container)
	container := bootstrap.NewContainer(gormDB, cfg)

	// 4. Start Background Services
	go func() {
		log.Println("Background: Starting snapshot relay...")
		if err := container.Relay.Run(context.Background()); err != nil {
			log.Printf("Background relay error: %v", err)
		}
	}()

	color.Cyan("Support Chat Backend (%s)", cfg.App.Environment)

	// 5. Initialize and run server
	srv := server.New(cfg, container)
	log.Fatal(srv.Run())
}
