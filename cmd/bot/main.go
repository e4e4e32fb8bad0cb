package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"recruitment_notification_bot/internal/app"
	"recruitment_notification_bot/internal/domain/messaging"
	"recruitment_notification_bot/internal/infra/config"
	idb "recruitment_notification_bot/internal/infra/database"
	"recruitment_notification_bot/internal/infra/email"
	"recruitment_notification_bot/internal/infra/logger"
	"recruitment_notification_bot/internal/infra/scheduler"
	"recruitment_notification_bot/internal/infra/sms"
	"recruitment_notification_bot/internal/infra/telegram"
	"recruitment_notification_bot/internal/infra/webhook"
	"recruitment_notification_bot/internal/infra/worker"

	"gopkg.in/telebot.v3"
)

func main() {
	fmt.Println("Recruitment Notification Bot starting...")

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: Could not load application configuration: %v\n", err)
		os.Exit(1)
	}

	logger.Init(cfg)
	log := logger.Get()
	log.Infof("Configuration loaded. LogLevel: %s, Environment: %s, Admin ID: %d", cfg.LogLevel, cfg.Environment, cfg.AdminTelegramID)

	// Initialize Database Connection
	db, err := idb.NewPostgresConnection(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Could not connect to database: %v", err)
	}
	defer db.Close()
	log.Info("Database connection established successfully.")

	// Initialize Repositories
	directionRepo := idb.NewPostgresDirectionRepository(db)
	userRepo := idb.NewPostgresUserRepository(db)
	examRepo := idb.NewPostgresExamRepository(db)
	notificationRepo := idb.NewPostgresNotificationRepository(db)
	historyRepo := idb.NewPostgresHistoryRepository(db)
	courseCatalog := idb.NewPostgresCourseCatalog(db)
	taskQueue := idb.NewPostgresTaskQueue(db)
	log.Info("Repositories initialized.")

	// Initialize Telegram Bot
	pref := telebot.Settings{
		Token:  cfg.TelegramToken,
		Poller: &telebot.LongPoller{Timeout: 10 * time.Second},
		OnError: func(err error, c telebot.Context) {
			if c != nil && c.Sender() != nil {
				log.Errorf("telebot error for sender %d: %v", c.Sender().ID, err)
			} else {
				log.Errorf("telebot error: %v", err)
			}
		},
	}
	bot, err := telebot.NewBot(pref)
	if err != nil {
		log.Fatalf("Could not create Telegram bot: %v", err)
	}
	tgClient := telegram.NewTelebotAdapter(bot)

	// Initialize outbound channels
	var emailSender messaging.EmailSender
	if cfg.SendgridAPIKey != "" {
		emailSender = email.NewSendgridSender(cfg.SendgridAPIKey, cfg.EmailFrom, cfg.EmailFromName)
		log.Info("Sendgrid email sender initialized.")
	} else {
		emailSender = email.NewConsoleSender(log)
		log.Warn("SENDGRID_API_KEY not set, emails go to the console.")
	}
	smsSender := sms.NewGatewayClient(cfg.SMSGatewayURL, cfg.SMSGatewayToken, cfg.SMSSender)
	webhookClient := webhook.NewClient(cfg.WebhookURL)
	dispatcher := app.NewChannelDispatcher(emailSender, smsSender, historyRepo, log)
	log.Info("Outbound channels initialized.")

	// Initialize application services
	provisioningService := app.NewProvisioningService(
		directionRepo, courseCatalog, courseCatalog, courseCatalog, courseCatalog,
		taskQueue, tgClient, cfg.AdminTelegramID, cfg.TaskMaxAttempts, log,
	)
	notificationService := app.NewNotificationService(
		examRepo, directionRepo, userRepo, courseCatalog, notificationRepo,
		dispatcher, webhookClient, log,
	)
	declarationService := app.NewDeclarationService(directionRepo, userRepo, dispatcher, log)
	adminService := app.NewAdminService(
		directionRepo, examRepo, courseCatalog, courseCatalog,
		provisioningService, declarationService, cfg.AdminTelegramID,
	)
	log.Info("Application services initialized.")

	// Worker consuming the provisioning queue
	provisioningWorker := worker.NewWorker(taskQueue, provisioningService, cfg.WorkerPollInterval, log)
	provisioningWorker.Start()

	// Cron scheduler for the sweep and the result push
	notifScheduler := scheduler.NewNotificationScheduler(
		notificationService, log,
		cfg.CronSpecNotificationSweep, cfg.CronSpecResultPush,
	)
	notifScheduler.Start()

	// Register admin command handlers
	rootCtx, rootCancel := context.WithCancel(context.Background())
	telegram.RegisterAdminHandlers(rootCtx, bot, adminService, cfg.AdminTelegramID, log.WithField("component", "telegram"))
	log.Info("Admin command handlers registered.")

	log.Info("Application setup complete. Bot, worker and scheduler are starting...")
	go bot.Start()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down application...")
	rootCancel()
	notifScheduler.Stop()
	provisioningWorker.Stop()
	log.Info("Application shut down gracefully.")
}
