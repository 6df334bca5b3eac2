package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/SeakMengs/SignFlow/internal/config"
	"github.com/SeakMengs/SignFlow/internal/database"
	"github.com/SeakMengs/SignFlow/internal/env"
	"github.com/SeakMengs/SignFlow/internal/mailer"
	"github.com/SeakMengs/SignFlow/internal/queue"
	"github.com/SeakMengs/SignFlow/internal/repository"
	"github.com/SeakMengs/SignFlow/internal/util"
)

// this function run before main
func init() {
	env.LoadEnv(".env")
}

func main() {
	cfg := config.GetConfig()
	logger := util.NewLogger(cfg.ENV)

	if cfg.RabbitMQ.URL == "" {
		logger.Fatal("RABBITMQ_URL is required to run the mail consumer")
	}

	db, err := database.ConnectReturnGormDB(cfg.DB)
	if err != nil {
		logger.Panic(err)
	}

	sqlDb, err := db.DB()
	if err != nil {
		logger.Panic(err)
	}
	defer sqlDb.Close()
	logger.Info("Database connected \n")

	repo := repository.NewRepository(db, logger, nil)
	app := queue.MailConsumerContext{
		Config:   &cfg,
		Logger:   logger,
		Store:    repo.SigningRequest,
		Notifier: mailer.NewNotifier(mailer.New(&cfg, logger), cfg.FrontendURL),
	}

	rabbitMQ, err := queue.NewRabbitMQ(cfg.RabbitMQ.URL)
	if err != nil {
		logger.Panic("Error connecting to RabbitMQ: ", err)
	}
	logger.Info("RabbitMQ connected \n")
	defer func() {
		if err := rabbitMQ.Close(); err != nil {
			logger.Errorf("Failed to close RabbitMQ connection: %v", err)
		}
	}()

	workers := cfg.RabbitMQ.WORKERS
	if workers <= 0 {
		workers = util.DetermineWorkers(0)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rabbitMQ.ConsumeMailJob(ctx, queue.DeliverMailJob, workers, &app); err != nil {
		logger.Fatalf("Failed to consume mail job: %v", err)
	}

	logger.Infof("Started consuming mail job with %d workers", workers)

	<-ctx.Done()
	logger.Info("Shutting down mail consumer")
}
