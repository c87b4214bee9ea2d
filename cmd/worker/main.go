package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"

	"github.com/hibiken/asynq"

	"library-backend/internal/config"
	"library-backend/internal/infrastructure/queue"
	"library-backend/internal/infrastructure/queue/handlers"
	"library-backend/internal/shared"
	"library-backend/pkg/container"
	"library-backend/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("❌ Failed to load config: %v", err)
	}

	logger.Init(cfg.App.Env)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	c, err := container.New(ctx, cfg)
	if err != nil {
		log.Fatalf("❌ Failed to initialize container: %v", err)
	}
	defer c.Cleanup()

	redisOpt := asynq.RedisClientOpt{
		Addr:     cfg.Redis.Addr(),
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	}

	srv := asynq.NewServer(redisOpt, asynq.Config{
		Concurrency: 5,
		Queues: map[string]int{
			shared.QueueCritical: 6,
			shared.QueueDefault:  3,
			shared.QueueReports:  1,
		},
	})

	mux := asynq.NewServeMux()
	mux.Handle(shared.TaskOverdueReport, handlers.NewOverdueReportHandler(c.BorrowService))

	scheduler, err := queue.NewScheduler(redisOpt)
	if err != nil {
		log.Fatalf("❌ Failed to build scheduler: %v", err)
	}

	go func() {
		log.Println("⏰ Scheduler started")
		if err := scheduler.Run(); err != nil {
			log.Fatalf("❌ Scheduler error: %v", err)
		}
	}()

	go func() {
		log.Println("👷 Worker started")
		if err := srv.Run(mux); err != nil {
			log.Fatalf("❌ Worker error: %v", err)
		}
	}()

	<-ctx.Done()
	log.Println("🛑 Shutting down worker...")

	scheduler.Shutdown()
	srv.Shutdown()

	log.Println("👋 Worker exited")
}
