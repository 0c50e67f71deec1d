package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/mjaszc/stocks-watcher/internal/config"
	"github.com/mjaszc/stocks-watcher/internal/database"
	"github.com/mjaszc/stocks-watcher/internal/ingest"
	"github.com/mjaszc/stocks-watcher/internal/kafka"
	"github.com/mjaszc/stocks-watcher/internal/normalize"
	"github.com/mjaszc/stocks-watcher/internal/scheduler"
)

func main() {
	log.Println("Starting stocks-watcher worker...")

	if err := godotenv.Load(); err == nil {
		log.Println("Loaded configuration from .env")
	}
	cfg := config.Load()

	db, err := database.New(cfg.Database.ConnectionString())
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	if err := db.RunMigrations("db/migrations"); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	var producer ingest.Publisher
	if len(cfg.Kafka.Brokers) > 0 && cfg.Kafka.Brokers[0] != "" {
		p := kafka.NewProducer(cfg.Kafka.Brokers, cfg.Kafka.Topic)
		defer p.Close()
		producer = p
	}

	downloader := ingest.NewDownloader(cfg.Ingest.BaseURL)
	engine := normalize.NewEngine(db)
	loader := ingest.NewLoader(downloader, db, engine, producer)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sched := scheduler.NewScheduler(ctx, loader, cfg.Ingest.Symbols)
	if err := sched.Register(cfg.Worker.CronSpec); err != nil {
		log.Fatalf("Failed to register cron task: %v", err)
	}
	sched.Start()
	defer sched.Stop()

	if cfg.Worker.RunOnStart {
		log.Println("RUN_ON_START enabled, refreshing now")
		go sched.RunNow()
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	log.Println("Shutdown signal received, stopping...")
}
