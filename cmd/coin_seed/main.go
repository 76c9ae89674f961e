package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/TurnIfCode/backend-gogo/pkg/database"
	"github.com/TurnIfCode/backend-gogo/pkg/logger"
	"github.com/TurnIfCode/backend-gogo/store"
)

func main() {
	file := flag.String("file", "coins.json", "JSON array of coin packages")
	watch := flag.Bool("watch", false, "re-seed whenever the file changes")
	flag.Parse()

	db, err := database.FromEnv()
	if err != nil {
		logger.Fatalf("open db: %v", err)
	}
	catalog := store.NewCatalogStore(db)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	seed := func() error {
		coins, err := loadCoins(*file)
		if err != nil {
			return err
		}
		if err := catalog.UpsertCoins(ctx, coins); err != nil {
			return err
		}
		fmt.Printf("seeded %d coin packages from %s\n", len(coins), *file)
		return nil
	}

	if err := seed(); err != nil {
		if !*watch {
			logger.Fatalf("seed failed: %v", err)
		}
		logger.Errorf("seed failed: %v", err)
	}
	if !*watch {
		return
	}
	err = watchFile(ctx, *file, func() {
		if err := seed(); err != nil {
			logger.Errorf("re-seed failed: %v", err)
		}
	})
	if err != nil {
		logger.Fatalf("watch: %v", err)
	}
}
