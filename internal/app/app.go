package app

import (
	"context"
	"fmt"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"kaziflow_backend/internal/cache"
	"kaziflow_backend/internal/config"
	"kaziflow_backend/internal/database"
	"kaziflow_backend/internal/email"
	"kaziflow_backend/internal/handlers"
	"kaziflow_backend/internal/logger"
	"kaziflow_backend/internal/middleware"
	"kaziflow_backend/internal/payment"
	"kaziflow_backend/internal/repositories"
	"kaziflow_backend/internal/routes"
	"kaziflow_backend/internal/services"
	"kaziflow_backend/internal/storage"
	"kaziflow_backend/internal/validator"
	"kaziflow_backend/internal/workers"
)

type backgroundWorker interface {
	Start(ctx context.Context)
}

func Run() {
	config.LoadConfig()
	cfg := config.AppConfig
	logger.Init(cfg.Server.Env)
	logger.Info("Logger initialized", "env", cfg.Server.Env)

	gormDB, err := gorm.Open(postgres.Open(cfg.Database.DSN), &gorm.Config{})
	if err != nil {
		logger.Fatal("Failed to connect to database", "error", err)
	}
	sqlDB, err := gormDB.DB()
	if err != nil {
		logger.Fatal("Failed to get *sql.DB from GORM", "error", err)
	}
	if err = sqlDB.Ping(); err != nil {
		logger.Fatal("Database unavailable", "error", err)
	}
	logger.Info("Database connected")

	if err := database.AutoMigrate(gormDB); err != nil {
		logger.Fatal("Migration failed", "error", err)
	}

	profileRepo := repositories.NewProfileRepository(gormDB)
	if len(cfg.Admin.Emails) > 0 {
		if err := profileRepo.SeedAdminGrants(cfg.Admin.Emails); err != nil {
			logger.Fatal("Failed to seed admin grants", "error", err)
		}
		logger.Info("Admin grants seeded", "count", len(cfg.Admin.Emails))
	}

	ginRouter, background := SetupRouter(cfg, gormDB)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	for _, w := range background {
		w.Start(ctx)
	}

	address := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	logger.Info("Server starting", "address", address)
	if err := ginRouter.Run(address); err != nil {
		logger.Fatal("Server startup error", "error", err)
	}
}

// SetupRouter wires repositories, services and handlers, and returns the
// engine plus the background workers the caller should start.
func SetupRouter(cfg *config.Config, gormDB *gorm.DB) (*gin.Engine, []backgroundWorker) {
	storageInstance, err := storage.NewStorage(storage.Config{
		Type:     cfg.Storage.Type,
		BasePath: cfg.Storage.BasePath,
		BaseURL:  cfg.Storage.BaseURL,
	})
	if err != nil {
		logger.Fatal("Failed to initialize storage", "error", err)
	}
	logger.Info("Storage initialized", "type", cfg.Storage.Type)

	// The cache tier is optional: no Redis address means the aggregate is
	// computed on every request.
	var cacheInstance *cache.Cache
	if cfg.Redis.Addr != "" {
		cacheInstance, err = cache.InitServer(context.Background(), cache.Config{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err != nil {
			logger.Warn("Redis unavailable, running without the cache tier", "error", err)
			cacheInstance = nil
		} else {
			logger.Info("Cache connected", "addr", cfg.Redis.Addr)
		}
	}

	var emailProvider email.Provider
	emailCfg := email.Config{
		SMTPHost:     cfg.Email.SMTPHost,
		SMTPPort:     cfg.Email.SMTPPort,
		SMTPUsername: cfg.Email.SMTPUsername,
		SMTPPassword: cfg.Email.SMTPPassword,
		FromEmail:    cfg.Email.FromEmail,
		FromName:     cfg.Email.FromName,
	}
	if emailCfg.Configured() {
		emailProvider, err = email.NewSMTPProvider(emailCfg)
		if err != nil {
			logger.Fatal("Failed to initialize email provider", "error", err)
		}
	} else {
		logger.Warn("SMTP not configured, email notifications are mocked")
		emailProvider = &MockEmailProvider{}
	}

	// Repositories
	profileRepo := repositories.NewProfileRepository(gormDB)
	taskRepo := repositories.NewTaskRepository(gormDB)
	txnRepo := repositories.NewTransactionRepository(gormDB)
	bidRepo := repositories.NewFallbackBidRepository(repositories.NewBidRepository(gormDB))

	gateway := payment.NewSimulator(time.Duration(cfg.Payment.GatewayDelayMs) * time.Millisecond)

	// Services
	authService := services.NewAuthService(profileRepo)
	taskService := services.NewTaskService(taskRepo, bidRepo, profileRepo, txnRepo, storageInstance, emailProvider)
	bidService := services.NewBidService(bidRepo, taskRepo, profileRepo, cacheInstance)
	paymentService := services.NewPaymentService(profileRepo, txnRepo, gateway, emailProvider, cfg)
	walletService := services.NewWalletService(profileRepo, txnRepo)

	// Settlements from the simulated gateway are delivered in-process;
	// the signed HTTP webhook route covers provider-originated callbacks.
	gateway.SetSink(paymentService.HandleGatewayCallback)

	// Handlers
	customValidator := validator.New()
	baseHandler := handlers.NewBaseHandler(customValidator)
	appHandlers := &handlers.AppHandlers{
		AuthHandler:    handlers.NewAuthHandler(baseHandler, authService),
		TaskHandler:    handlers.NewTaskHandler(baseHandler, taskService, bidService, profileRepo),
		BidHandler:     handlers.NewBidHandler(baseHandler, bidService, profileRepo),
		PaymentHandler: handlers.NewPaymentHandler(baseHandler, paymentService, walletService),
	}

	ginRouter := initializeGinRouter()
	routes.RegisterRoutes(ginRouter, appHandlers)

	background := []backgroundWorker{
		gateway,
		workers.NewReconcileWorker(bidRepo, time.Duration(cfg.Workers.ReconcileIntervalSec)*time.Second),
		workers.NewDeadlineWorker(taskRepo, time.Duration(cfg.Workers.DeadlineSweepSec)*time.Second),
	}
	if cacheInstance != nil {
		background = append(background,
			workers.NewBidCountWorker(bidService, time.Duration(cfg.Workers.BidCountIntervalSec)*time.Second))
	}

	return ginRouter, background
}

func initializeGinRouter() *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestIDMiddleware())
	router.Use(middleware.LoggingMiddleware())
	router.Use(middleware.CORSMiddleware())
	return router
}
