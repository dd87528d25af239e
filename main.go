package main

import (
	"GoDrop/config"
	"GoDrop/internal/event"
	"GoDrop/internal/handler"
	"GoDrop/internal/repo"
	"GoDrop/internal/service"
	"GoDrop/internal/storage"
	"GoDrop/router"
	"GoDrop/utils"
	"log"
)

// main initializes services and starts the HTTP server.
func main() {
	cfg := config.Load()

	db, err := repo.InitMysql(cfg)
	if err != nil {
		log.Fatal(err)
	}

	var cache utils.Cache
	redisClient, err := repo.InitRedis(cfg)
	if err != nil {
		log.Printf("redis unavailable, share-info cache disabled: %v", err)
	} else {
		cache = utils.NewRedisCache(redisClient)
	}

	store, err := storage.NewFromConfig(cfg.Storage)
	if err != nil {
		log.Fatal(err)
	}

	publisher := event.NewPublisher(cfg.RabbitMQURL)
	defer publisher.Close()

	codec := utils.NewTokenCodec(cfg.JWTSecret)
	shares := service.NewShareService(db, cfg, cache)
	files := service.NewFileService(db, store, cfg, shares, codec)
	downloads := service.NewDownloadService(db, store, cfg, shares, files, codec, publisher)
	analytics := service.NewAnalyticsService(db)

	r := router.InitRouter(cfg, codec, router.Handlers{
		Auth:      handler.NewAuthHandler(cfg, codec),
		Files:     handler.NewFileHandler(cfg, files, shares, downloads),
		Shares:    handler.NewShareHandler(cfg, files, shares, downloads),
		Analytics: handler.NewAnalyticsHandler(analytics),
	})

	if err := r.Run(cfg.ListenAddr); err != nil {
		log.Fatal(err)
	}
}
