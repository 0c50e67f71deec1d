package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/mjaszc/stocks-watcher/internal/api"
	"github.com/mjaszc/stocks-watcher/internal/cache"
	"github.com/mjaszc/stocks-watcher/internal/config"
	"github.com/mjaszc/stocks-watcher/internal/database"
	"github.com/mjaszc/stocks-watcher/internal/kafka"
	"github.com/mjaszc/stocks-watcher/internal/normalize"
	"github.com/mjaszc/stocks-watcher/internal/series"
)

func main() {
	log.Println("Starting stocks-watcher server...")

	if err := godotenv.Load(); err == nil {
		log.Println("Loaded configuration from .env")
	}
	cfg := config.Load()

	db, err := database.New(cfg.Database.ConnectionString())
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	// Cache-aside over the slow store. A failed Redis connection is
	// not fatal: the serving path degrades to slow-store-only reads.
	var fetcher series.Fetcher = series.NewStoreFetcher(db)
	redisCache, err := cache.NewRedisCache(&cache.Config{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err != nil {
		log.Printf("Redis unavailable, serving without fast store: %v", err)
	} else {
		defer redisCache.Close()
		fetcher = series.NewCachedFetcher(fetcher, redisCache, cfg.Cache.TTL)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// React to ingestion events from other producers by recomputing
	// the affected symbol's rebased series.
	if len(cfg.Kafka.Brokers) > 0 && cfg.Kafka.Brokers[0] != "" {
		consumer := kafka.NewConsumer(cfg.Kafka.Brokers, cfg.Kafka.Topic, cfg.Kafka.GroupID, normalize.NewEngine(db))
		go func() {
			if err := consumer.Start(ctx); err != nil {
				log.Printf("Kafka consumer stopped: %v", err)
			}
		}()
	}

	handler := api.NewHandler(fetcher, db)
	srv := &http.Server{
		Addr:         cfg.Server.Host + ":" + cfg.Server.Port,
		Handler:      api.SetupRoutes(handler),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	go func() {
		log.Printf("Listening on %s", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("HTTP server failed: %v", err)
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	log.Println("Shutdown signal received, stopping...")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("HTTP shutdown: %v", err)
	}
}
