package main

import (
	"context"
	"os/signal"
	"syscall"

	"reserver_notifier/internal/app"
	"reserver_notifier/internal/infra/config"
	idb "reserver_notifier/internal/infra/database"
	"reserver_notifier/internal/infra/logger"
	"reserver_notifier/internal/infra/mailer"
	"reserver_notifier/internal/infra/render"
	"reserver_notifier/internal/infra/scheduler"
	"reserver_notifier/internal/infra/telegram"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logger.Log.Fatalf("Could not load application configuration: %v", err)
	}
	logger.Init(cfg)
	mainLogger := logger.Component("main")

	mainLogger.WithField("environment", cfg.Environment).
		WithField("debug", cfg.Debug).
		WithField("timezone", cfg.Timezone).
		Info("Reservation notifier starting...")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Initialize Database Connection
	db, err := idb.NewPostgresConnection(cfg.DatabaseURL)
	if err != nil {
		mainLogger.WithError(err).Fatal("Could not connect to database")
	}
	defer db.Close()
	if err := idb.EnsureSchema(ctx, db); err != nil {
		mainLogger.WithError(err).Fatal("Could not prepare delivery log")
	}
	mainLogger.Info("Database connection established successfully.")

	// Initialize Repositories
	userRepo := idb.NewPostgresUserRepository(db)
	notificationRepo := idb.NewPostgresNotificationRepository(db)

	// Mail channels
	channels := app.Channels{
		Record: mailer.NewFileTransport(cfg.EmailFilePath),
		Debug:  cfg.Debug,
		From:   cfg.EmailFrom,
	}
	if !cfg.Debug {
		channels.Production = mailer.NewSMTPTransport(mailer.SMTPConfig{
			Host:     cfg.SMTPHost,
			Port:     cfg.SMTPPort,
			User:     cfg.SMTPUser,
			Password: cfg.SMTPPass,
			Timeout:  cfg.SMTPTimeout,
		})
	}
	mainLogger.WithField("record_dir", cfg.EmailFilePath).
		WithField("smtp_enabled", channels.Production != nil).
		Info("Mail channels initialized.")

	// Operator alerts
	var alerter app.Alerter = app.NopAlerter{}
	if cfg.TelegramToken != "" {
		bot, err := telegram.NewBot(cfg.TelegramToken, "")
		if err != nil {
			mainLogger.WithError(err).Fatal("Could not create Telegram bot")
		}
		alerter = telegram.NewTelebotAdapter(bot, cfg.AlertTelegramChatID)
		mainLogger.Info("Telegram alerts enabled.")
	}

	dispatcher := app.NewDispatcher(
		notificationRepo,
		notificationRepo,
		app.NewRecipientResolver(userRepo),
		render.NewTemplateRenderer(cfg.Location()),
		channels,
		alerter,
		logger.Component("dispatcher"),
	)

	notifScheduler := scheduler.NewNotificationScheduler(
		dispatcher,
		notificationRepo,
		logger.Component("scheduler"),
		cfg.CronSpecDaily,
		scheduler.WithLocation(cfg.Location()),
		scheduler.WithOffset(cfg.ScanOffset),
	)

	if cfg.MetricsAddr != "" {
		startMetricsServer(ctx, cfg.MetricsAddr, notifScheduler, logger.Component("metrics"))
	}

	if err := notifScheduler.Start(ctx); err != nil {
		mainLogger.WithError(err).Fatal("Could not start notification scheduler")
	}

	mainLogger.Info("Application setup complete. Waiting for notifications...")

	<-ctx.Done() // Block until a signal is received

	mainLogger.Info("Shutting down application...")
	notifScheduler.Stop()
	mainLogger.Info("Application shut down gracefully.")
}
