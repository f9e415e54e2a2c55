package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/pointward/rewards-backend/internal/config"
	"github.com/pointward/rewards-backend/internal/db"
	"github.com/pointward/rewards-backend/internal/model"
	"gorm.io/gorm"
)

type seedTask struct {
	Title       string
	Description string
	Points      int64
}

func main() {
	if err := run(); err != nil {
		log.Fatalf("seed failed: %v", err)
	}
}

func run() error {
	ctx := context.Background()
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	gdb, err := db.Connect(cfg)
	if err != nil {
		return fmt.Errorf("connect db: %w", err)
	}
	if err := gdb.AutoMigrate(&model.Account{}, &model.Task{}, &model.TaskCompletion{}); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}

	canSeed, err := shouldSeed(ctx, gdb)
	if err != nil {
		return err
	}
	if !canSeed {
		log.Printf("tasks already exist; skipping seed (set FORCE_SEED=true to override)")
		return nil
	}

	tasks := buildSeedTasks()
	err = gdb.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for i := range tasks {
			t := model.Task{
				Title:       strings.TrimSpace(tasks[i].Title),
				Description: strings.TrimSpace(tasks[i].Description),
				Points:      tasks[i].Points,
				Active:      true,
			}
			if err := tx.Create(&t).Error; err != nil {
				return fmt.Errorf("insert task %q: %w", t.Title, err)
			}
		}
		return nil
	})
	if err != nil {
		return err
	}
	log.Printf("seeded %d tasks", len(tasks))

	if adminUID := os.Getenv("SEED_ADMIN_UID"); adminUID != "" {
		admin := model.Account{
			UID:          adminUID,
			DisplayName:  "Administrator",
			Level:        1,
			ReferralCode: uuid.NewString(),
			Role:         model.RoleAdmin,
		}
		if err := gdb.WithContext(ctx).FirstOrCreate(&admin, model.Account{UID: adminUID}).Error; err != nil {
			return fmt.Errorf("seed admin account: %w", err)
		}
		log.Printf("seeded admin account %s", adminUID)
	}
	return nil
}

func buildSeedTasks() []seedTask {
	return []seedTask{
		{Title: "Complete your profile", Description: "Add a display name and avatar.", Points: 20},
		{Title: "Verify your email", Description: "Click the link in the verification mail.", Points: 10},
		{Title: "Take the welcome survey", Description: "Five quick questions about your interests.", Points: 50},
		{Title: "Make your first redemption", Description: "Spend points on any reward.", Points: 30},
		{Title: "Watch the intro video", Description: "Two minutes on how earning works.", Points: 7},
		{Title: "Connect a social account", Description: "Link any one social login.", Points: 25},
		{Title: "Daily check-in streak", Description: "Open the app three days in a row.", Points: 100},
		{Title: "Rate the app", Description: "Leave a store review.", Points: 40},
	}
}

func shouldSeed(ctx context.Context, gdb *gorm.DB) (bool, error) {
	var cnt int64
	if err := gdb.WithContext(ctx).Model(&model.Task{}).Count(&cnt).Error; err != nil {
		return false, fmt.Errorf("count tasks: %w", err)
	}
	if cnt == 0 {
		return true, nil
	}
	return strings.EqualFold(os.Getenv("FORCE_SEED"), "true"), nil
}
