package main

import (
	"log"
	"os"

	"github.com/joho/godotenv"
	"github.com/pointward/rewards-backend/internal/config"
	"github.com/pointward/rewards-backend/internal/db"
	"github.com/pointward/rewards-backend/internal/model"
	"github.com/pointward/rewards-backend/internal/server"
	"github.com/pointward/rewards-backend/internal/service"
)

// set via -ldflags at build time
var (
	gitSHA    = "dev"
	buildTime = "unknown"
)

func main() {
	_ = godotenv.Load()

	rules := service.DefaultBonusRules()
	cfg, cfgErr := config.Load()
	if cfgErr == nil {
		rules = service.NewBonusRules(cfg.Tier1RatePercent, cfg.Tier2RatePercent, cfg.PointsPerLevel)
	}

	srv := server.New(nil, rules, gitSHA, buildTime)

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	addr := ":" + port

	errCh := make(chan error, 1)

	go func() {
		log.Printf("starting server on %s", addr)
		errCh <- srv.Start(addr)
	}()

	go func() {
		if cfgErr != nil {
			log.Printf("config load error: %v", cfgErr)
			return
		}
		conn, err := db.Connect(cfg)
		if err != nil {
			log.Printf("db connect error: %v", err)
			return
		}
		srv.SetDB(conn)
		if err := conn.AutoMigrate(&model.Account{}, &model.Task{}, &model.TaskCompletion{}); err != nil {
			log.Printf("auto migrate error: %v", err)
		}
	}()

	if err := <-errCh; err != nil {
		log.Fatalf("server stopped: %v", err)
	}
}
