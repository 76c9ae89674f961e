package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/TurnIfCode/backend-gogo/pkg/logger"
)

func main() {
	cfg := loadConfig()
	logger.Setup(cfg.LogLevel, cfg.LogFormat)

	db, err := openDB(cfg)
	if err != nil {
		logger.Fatalf("failed to connect database: %v", err)
	}

	// `./backend-gogo migrate` runs AutoMigrate and seeding then exits.
	if len(os.Args) > 1 && os.Args[1] == "migrate" {
		migrate(db)
		seedDB(db, cfg)
		logger.Info("migration and seeding completed")
		return
	}

	if cfg.AutoMigrate {
		migrate(db)
	}
	seedDB(db, cfg)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           newApp(cfg, db).routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Infof("listening on %s", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatalf("server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Errorf("forced shutdown: %v", err)
	}
	if sqlDB, err := db.DB(); err == nil {
		_ = sqlDB.Close()
	}
}
