package main

import (
	"context"
	"fmt"
	"log"
	"time"

	"egov-portal/internal/config"
	"egov-portal/internal/database"
	"egov-portal/internal/store"
	"egov-portal/pkg/validator"
)

// Завантажує демо-акаунти, заявки і сповіщення в MongoDB.
// Повторний запуск нічого не дублює.
func main() {
	cfg := config.Load()
	validator.Init()

	db, err := database.NewMongoDB(cfg)
	if err != nil {
		log.Fatal(err)
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := db.CreateIndexes(ctx); err != nil {
		log.Fatal(err)
	}

	if err := store.SeedDemo(ctx, store.NewMongoStore(db.Database)); err != nil {
		log.Fatal(err)
	}

	fmt.Printf("Демо-дані завантажено в %s (пароль для всіх акаунтів: %q)\n", cfg.DatabaseName, store.DemoPassword)
}
