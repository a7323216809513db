// cmd/server/main.go - E-Gov Portal Backend Server
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	// Внутрішні пакети проекту
	"egov-portal/internal/config"
	"egov-portal/internal/database"
	"egov-portal/internal/logging"
	"egov-portal/internal/store"
	"egov-portal/pkg/validator"

	// Зовнішні залежності
	"github.com/sirupsen/logrus"
	"github.com/spf13/pflag"
)

var (
	// Час запуску сервера для /health
	serverStartTime = time.Now()

	// Версія застосунку
	appVersion = "1.0.0"
	buildTime  = "unknown"
	gitCommit  = "unknown"
)

func main() {
	// Конфігурація: .env і змінні оточення, потім прапорці командного рядка
	cfg := config.Load()
	applyFlags(cfg, os.Args[1:])

	logging.Setup(cfg)
	printStartupInfo(cfg)

	validator.Init()

	st, ready, closeStore, err := openStore(cfg)
	if err != nil {
		logrus.Fatalf("❌ Failed to open store: %v", err)
	}
	defer closeStore()

	if cfg.SeedDemo {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		if err := store.SeedDemo(ctx, st); err != nil {
			logrus.Fatalf("❌ Failed to seed demo data: %v", err)
		}
		cancel()
		logrus.Info("🌱 Демо-дані завантажено")
	}

	app := newApplication(cfg, st, ready)
	defer app.close()

	// WebSocket Hub для real-time сповіщень
	go app.hub.Run()

	// Періодичне оновлення аналітики
	if err := app.analytics.Start(cfg.AnalyticsCron); err != nil {
		logrus.Fatalf("❌ %v", err)
	}

	router := app.setupRouter()

	srv := &http.Server{
		Addr:           fmt.Sprintf("%s:%s", cfg.Host, cfg.Port),
		Handler:        router,
		ReadTimeout:    15 * time.Second,
		WriteTimeout:   15 * time.Second,
		IdleTimeout:    60 * time.Second,
		MaxHeaderBytes: 1 << 20, // 1 MB
	}

	go func() {
		logrus.Infof("🚀 E-Gov Portal Backend Server v%s starting...", appVersion)
		logrus.Infof("🌐 Server running on http://%s:%s", cfg.Host, cfg.Port)
		logrus.Infof("📡 WebSocket endpoint: ws://%s:%s/ws", cfg.Host, cfg.Port)

		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logrus.Fatalf("❌ Server failed to start: %v", err)
		}
	}()

	// Очікуємо сигнал завершення
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logrus.Info("🛑 Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logrus.Warnf("⚠️  Server forced to shutdown: %v", err)
	} else {
		logrus.Info("✅ Server gracefully stopped")
	}
}

// applyFlags перекриває значення з оточення прапорцями командного рядка
func applyFlags(cfg *config.Config, args []string) {
	flags := pflag.NewFlagSet("server", pflag.ExitOnError)
	flags.StringVar(&cfg.Port, "port", cfg.Port, "HTTP port")
	flags.StringVar(&cfg.Host, "host", cfg.Host, "HTTP host")
	flags.StringVar(&cfg.Env, "env", cfg.Env, "environment: development or production")
	flags.StringVar(&cfg.StoreDriver, "store", cfg.StoreDriver, "store driver: memory or mongo")
	flags.BoolVar(&cfg.SeedDemo, "seed", cfg.SeedDemo, "load demo users and documents on start")
	flags.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "logrus level")
	_ = flags.Parse(args)
}

// openStore повертає сховище, перевірку готовності і функцію закриття
func openStore(cfg *config.Config) (store.Store, func(context.Context) error, func(), error) {
	switch cfg.StoreDriver {
	case config.StoreMemory:
		logrus.Info("💾 Using in-memory store")
		return store.NewMemoryStore(), nil, func() {}, nil

	case config.StoreMongo:
		logrus.Info("🔌 Connecting to MongoDB...")
		db, err := database.NewMongoDB(cfg)
		if err != nil {
			return nil, nil, nil, err
		}

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := db.CreateIndexes(ctx); err != nil {
			logrus.Warnf("⚠️  Warning: Failed to create some indexes: %v", err)
		}

		closeDB := func() {
			if err := db.Close(); err != nil {
				logrus.Warnf("⚠️  Error disconnecting from MongoDB: %v", err)
			} else {
				logrus.Info("✅ Disconnected from MongoDB")
			}
		}
		return store.NewMongoStore(db.Database), db.Ping, closeDB, nil
	}

	return nil, nil, nil, fmt.Errorf("unknown store driver %q", cfg.StoreDriver)
}

// printStartupInfo виводить інформацію про запуск сервера
func printStartupInfo(cfg *config.Config) {
	logrus.Info("================================================================================")
	logrus.Info("🏛️  E-Gov Portal Backend Server")
	logrus.Infof("📌 Version: %s | Build: %s | Commit: %s", appVersion, buildTime, gitCommit)
	logrus.Infof("🌍 Environment: %s", cfg.Env)
	logrus.Infof("   • Host: %s", cfg.Host)
	logrus.Infof("   • Port: %s", cfg.Port)
	logrus.Infof("   • Store: %s", cfg.StoreDriver)
	if cfg.StoreDriver == config.StoreMongo {
		logrus.Infof("   • Database: %s", cfg.DatabaseName)
	}
	logrus.Infof("   • CORS Origins: %v", cfg.AllowedOrigins)
	logrus.Infof("   • Language: %s", cfg.DefaultLanguage)
	if cfg.RateLimitEnabled {
		logrus.Infof("   • Rate Limit: %d requests per %s", cfg.RateLimitRequests, cfg.RateLimitWindow)
	}
	logrus.Info("================================================================================")
}
