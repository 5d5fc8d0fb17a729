package main

import (
	"log"

	"support-assistant-be/internal/bootstrap"
	"support-assistant-be/internal/config"
	"support-assistant-be/internal/model"
	"support-assistant-be/internal/server"
	"support-assistant-be/pkg/database"
)

func main() {
	// 1. Load Configuration
	cfg := config.Load()
	if cfg.Gateway.BaseURL == "" || cfg.Gateway.Token == "" {
		log.Panic("BOT_GATEWAY_URL and BOT_GATEWAY_TOKEN must be set")
	}

	// 2. Initialize Database
	gormDB, err := database.NewGormDBFromDSN(cfg.Database.Connection)
	if err != nil {
		log.Panicf("Unable to connect to GORM DB: %v", err)
	}

	// 3. Migrate conversation tables (the knowledge table is owned by ingest)
	if err := gormDB.AutoMigrate(&model.Ticket{}, &model.TicketMessage{}); err != nil {
		log.Panicf("Unable to migrate database: %v", err)
	}

	// 4. Bootstrap Dependencies (Container)
	container := bootstrap.NewContainer(gormDB, cfg)

	// 5. Initialize Server
	srv := server.New(cfg, container)

	// 6. Run Server
	log.Fatal(srv.Run())
}
