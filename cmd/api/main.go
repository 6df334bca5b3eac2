package main

import (
	"context"
	"time"

	appcontext "github.com/SeakMengs/SignFlow/internal/app_context"
	"github.com/SeakMengs/SignFlow/internal/auth"
	"github.com/SeakMengs/SignFlow/internal/cache"
	"github.com/SeakMengs/SignFlow/internal/config"
	"github.com/SeakMengs/SignFlow/internal/controller"
	"github.com/SeakMengs/SignFlow/internal/database"
	"github.com/SeakMengs/SignFlow/internal/env"
	"github.com/SeakMengs/SignFlow/internal/event"
	filestorage "github.com/SeakMengs/SignFlow/internal/file_storage"
	"github.com/SeakMengs/SignFlow/internal/mailer"
	"github.com/SeakMengs/SignFlow/internal/middleware"
	"github.com/SeakMengs/SignFlow/internal/queue"
	ratelimiter "github.com/SeakMengs/SignFlow/internal/rate_limiter"
	"github.com/SeakMengs/SignFlow/internal/repository"
	"github.com/SeakMengs/SignFlow/internal/route"
	"github.com/SeakMengs/SignFlow/internal/util"
	"github.com/SeakMengs/SignFlow/pkg/esign"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

// this function run before main
func init() {
	env.LoadEnv(".env")
}

func main() {
	cfg := config.GetConfig()

	logger := util.NewLogger(cfg.ENV)
	logger.Debugf("Configuration: %+v \n", cfg)

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

	s3, err := filestorage.NewMinioClient(&cfg.Minio)
	if err != nil {
		logger.Error("Error connecting to minio")
		logger.Panic(err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	if err := util.CreateBucketIfNotExists(ctx, s3, cfg.Minio.BUCKET); err != nil {
		logger.Panicf("Failed to prepare bucket %s: %v", cfg.Minio.BUCKET, err)
	}
	cancel()

	// Custom validation
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		if err := util.RegisterCustomValidations(v); err != nil {
			logger.Panicf("Failed to register custom validations: %v", err)
		}
	}

	repo := repository.NewRepository(db, logger, s3)

	var ledger esign.ReminderLedger = esign.NewMemoryLedger()
	var counter ratelimiter.WindowCounter
	if cfg.Redis.URL != "" {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		rdb, err := cache.Connect(ctx, cfg.Redis.URL)
		cancel()
		if err != nil {
			logger.Panicf("Error connecting to redis: %v", err)
		}
		defer rdb.Close()
		logger.Info("Redis connected \n")

		ledger = cache.NewRedisReminderLedger(rdb)
		counter = cache.NewRedisWindowCounter(rdb)
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
		logger.Info("RabbitMQ connected \n")
		notifier = queue.NewMailNotifier(rabbitMQ)
	} else {
		logger.Warn("RABBITMQ_URL is empty, mail will be sent from the api process")
		notifier = mailer.NewNotifier(mailer.New(&cfg, logger), cfg.FrontendURL)
	}

	service := esign.NewService(esign.ServiceOptions{
		Store:          repo.SigningRequest,
		Notifier:       notifier,
		Ledger:         ledger,
		Audit:          event.NewAuditRecorder(repo.SigningRequestLog, publisher, logger),
		Logger:         logger,
		TokenGenerator: util.GenerateSignerToken,
	})
	defer service.Wait()

	rateLimiter := ratelimiter.NewRateLimiter(cfg.RateLimiter, logger, counter)
	jwtService := auth.NewJwt(cfg.Auth, logger)
	app := appcontext.Application{
		Config:     &cfg,
		Logger:     logger,
		Repository: repo,
		Service:    service,
		Documents:  filestorage.NewDocumentStore(s3, cfg.Minio.BUCKET),
		Files:      repo.File,
		AuditTrail: repo.SigningRequestLog,
		JWTService: jwtService,
	}

	_middleware := middleware.NewMiddleware(&app, rateLimiter)

	if cfg.IsProduction() {
		logger.Info("Running in production mode")
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.Default()

	// docs: https://github.com/gin-contrib/cors?tab=readme-ov-file#using-defaultconfig-as-start-point
	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = []string{"*"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Length", "Content-Type", "Authorization", "X-Requested-With", "Accept"}
	r.Use(cors.New(corsConfig))
	r.Use(_middleware.RateLimiterMiddleware)
	r.MaxMultipartMemory = 32 << 20

	_controller := controller.NewController(&app)

	r.GET("/", _controller.Index.Index)

	rApi := r.Group("/api")

	route.V1_Documents(rApi, _controller.Document, _middleware)
	route.V1_SigningRequests(rApi, _controller.SigningRequest, _middleware)
	route.V1_Sign(rApi, _controller.Sign)
	route.V1_ShortLinks(rApi, _controller.ShortLink)

	if err := r.Run("0.0.0.0:" + app.Config.Port); err != nil {
		logger.Panicf("Error running server: %v \n", err)
	}
}
