package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/SeakMengs/SignFlow/internal/cache"
	"github.com/SeakMengs/SignFlow/internal/config"
	"github.com/SeakMengs/SignFlow/internal/database"
	"github.com/SeakMengs/SignFlow/internal/env"
	"github.com/SeakMengs/SignFlow/internal/event"
	"github.com/SeakMengs/SignFlow/internal/mailer"
	"github.com/SeakMengs/SignFlow/internal/queue"
	"github.com/SeakMengs/SignFlow/internal/repository"
	"github.com/SeakMengs/SignFlow/internal/util"
	"github.com/SeakMengs/SignFlow/pkg/esign"
	"go.uber.org/zap"
)

// this function run before main
func init() {
	env.LoadEnv(".env")
}

func main() {
	cfg := config.GetConfig()
	logger := util.NewLogger(cfg.ENV)

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

	// Without Redis, reminders are deduplicated only within this process.
	var ledger esign.ReminderLedger = esign.NewMemoryLedger()
	if cfg.Redis.URL != "" {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		rdb, err := cache.Connect(ctx, cfg.Redis.URL)
		cancel()
		if err != nil {
			logger.Panicf("Error connecting to redis: %v", err)
		}
		defer rdb.Close()
		ledger = cache.NewRedisReminderLedger(rdb)
	} else {
		logger.Warn("REDIS_URL is empty, reminder deduplication will not survive a restart")
	}

	var publisher event.Publisher
	if len(cfg.Kafka.BROKERS) > 0 {
		kafkaPublisher, err := event.NewKafkaPublisher(cfg.Kafka.BROKERS, cfg.Kafka.TOPIC)
		if err != nil {
			logger.Panicf("Error creating kafka publisher: %v", err)
		}
		defer kafkaPublisher.Close()
		publisher = kafkaPublisher
	}

	var notifier esign.Notifier
	if cfg.RabbitMQ.URL != "" {
		rabbitMQ, err := queue.NewRabbitMQ(cfg.RabbitMQ.URL)
		if err != nil {
			logger.Panic("Error connecting to RabbitMQ: ", err)
		}
		defer func() {
			if err := rabbitMQ.Close(); err != nil {
				logger.Errorf("Failed to close RabbitMQ connection: %v", err)
			}
		}()
		notifier = queue.NewMailNotifier(rabbitMQ)
	} else {
		notifier = mailer.NewNotifier(mailer.New(&cfg, logger), cfg.FrontendURL)
	}

	service := esign.NewService(esign.ServiceOptions{
		Store:    repo.SigningRequest,
		Notifier: notifier,
		Ledger:   ledger,
		Audit:    event.NewAuditRecorder(repo.SigningRequestLog, publisher, logger),
		Logger:   logger,
	})
	defer service.Wait()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	interval := cfg.Scheduler.Interval
	if interval <= 0 {
		interval = 15 * time.Minute
	}
	logger.Infof("Scheduler started, running every %s", interval)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	runOnce(ctx, service, logger)
	for {
		select {
		case <-ctx.Done():
			logger.Info("Shutting down scheduler")
			return
		case <-ticker.C:
			runOnce(ctx, service, logger)
		}
	}
}

// runOnce expires overdue requests before reminding, so a request past its due
// date never gets one more reminder.
func runOnce(ctx context.Context, service *esign.Service, logger *zap.SugaredLogger) {
	now := time.Now().UTC()

	expired, err := service.ExpireDue(ctx, now)
	if err != nil {
		logger.Errorf("Failed to expire signing requests: %v", err)
	}
	if expired > 0 {
		logger.Infow("Expired signing requests", "count", expired)
	}

	report, err := service.DispatchDueReminders(ctx, now)
	if err != nil {
		logger.Errorf("Failed to dispatch reminders: %v", err)
		return
	}
	logger.Infow("Dispatched reminders",
		"delivered", len(report.Delivered),
		"skipped", len(report.Skipped),
		"failed", len(report.Failed),
	)
}
