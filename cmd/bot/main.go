package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"regiss_network_bot/internal/app"
	"regiss_network_bot/internal/infra/config"
	idb "regiss_network_bot/internal/infra/database"
	"regiss_network_bot/internal/infra/logger"
	"regiss_network_bot/internal/infra/scheduler"
	"regiss_network_bot/internal/infra/telegram"

	"github.com/sirupsen/logrus"
	"gopkg.in/telebot.v3"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logrus.Fatalf("FATAL: Could not load application configuration: %v", err)
	}

	logger.Init(cfg)
	mainLogger := logger.Component("main")
	mainLogger.WithFields(logrus.Fields{
		"environment": cfg.Environment,
		"admin_id":    cfg.AdminTelegramID,
		"timezone":    cfg.Timezone,
	}).Info("REGISS network bot starting...")

	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		mainLogger.WithError(err).Fatal("Could not load timezone")
	}
	now := func() time.Time { return time.Now().In(loc) }

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Initialize Database Connection
	db, err := idb.NewPostgresConnection(ctx, cfg.DatabaseURL)
	if err != nil {
		mainLogger.WithError(err).Fatal("Could not connect to database")
	}
	defer db.Close()
	if err := idb.RunMigrations(ctx, db, logger.Component("migrations")); err != nil {
		mainLogger.WithError(err).Fatal("Could not apply migrations")
	}
	mainLogger.Info("Database connection established successfully.")

	// Initialize Repositories
	profileRepo := idb.NewPostgresProfileRepository(db)
	jobRepo := idb.NewPostgresJobRepository(db)
	inviteRepo := idb.NewPostgresInviteRepository(db)

	// Initialize Telegram Bot
	pref := telebot.Settings{
		Token:  cfg.TelegramToken,
		Poller: &telebot.LongPoller{Timeout: 10 * time.Second},
		OnError: func(err error, c telebot.Context) {
			entry := logger.Component("telebot").WithError(err)
			if c != nil && c.Sender() != nil && c.Chat() != nil {
				entry = entry.WithFields(logrus.Fields{"text": c.Text(), "sender_id": c.Sender().ID, "chat_id": c.Chat().ID})
			}
			entry.Error("Telegram handler error")
		},
	}
	bot, err := telebot.NewBot(pref)
	if err != nil {
		mainLogger.WithError(err).Fatal("Could not create Telegram bot")
	}
	telegramClient := telegram.NewTelebotAdapter(bot)

	// Initialize Services
	directory := app.NewDirectoryService(profileRepo, cfg.AdminTelegramID, now, logger.Component("directory"))
	matchmaking := app.NewMatchmakingService(
		profileRepo,
		jobRepo,
		inviteRepo,
		telegramClient,
		cfg.AdminTelegramID,
		cfg.CoordinatorTelegramID,
		now,
		logger.Component("matchmaking"),
	)
	calendar := app.NewCalendarService(profileRepo, telegramClient, loc, logger.Component("calendar"))

	// Register Handlers
	handlerLogger := logger.Component("telegram")
	telegram.RegisterBotCommands(ctx, bot, directory, handlerLogger)
	telegram.RegisterMemberHandlers(ctx, bot, directory, matchmaking, calendar, cfg.SuggestionLimit, now, handlerLogger)
	telegram.RegisterCoordinatorHandlers(ctx, bot, directory, matchmaking, cfg.InviteTopN, cfg.InviteMinScore, handlerLogger)
	telegram.RegisterInviteResponseHandlers(ctx, bot, matchmaking, handlerLogger)
	mainLogger.Info("Command handlers registered.")

	announcements := scheduler.NewAnnouncementScheduler(
		calendar,
		logger.Component("scheduler"),
		loc,
		now,
		cfg.CronSpecHolidayCheck,
		cfg.CronSpecAcademicYear,
	)
	if err := announcements.Start(); err != nil {
		mainLogger.WithError(err).Fatal("Could not start scheduler")
	}

	mainLogger.Info("Application setup complete. Bot and Scheduler are starting...")
	go bot.Start()

	<-ctx.Done()

	mainLogger.Info("Shutting down application...")
	bot.Stop()
	announcements.Stop()
	mainLogger.Info("Application shut down gracefully.")
}
