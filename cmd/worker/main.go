package main

import (
	"GoDrop/config"
	"GoDrop/internal/repo"
	"GoDrop/internal/worker"
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
)

func main() {
	cfg := config.Load()

	db, err := repo.InitMysql(cfg)
	if err != nil {
		log.Fatal(err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	log.Println("access worker started")
	if err := worker.NewAccessWorker(db, cfg).Run(ctx); err != nil {
		log.Fatalf("access worker stopped: %v", err)
	}
}
