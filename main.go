// main.go
package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"cinema-showtime/cmd"
	"cinema-showtime/internal/data/migrations"
	"cinema-showtime/internal/data/repository"
	"cinema-showtime/internal/usecase"
	"cinema-showtime/internal/wire"
	"cinema-showtime/internal/worker"
	"cinema-showtime/pkg/broker"
	"cinema-showtime/pkg/cache"
	"cinema-showtime/pkg/database"
	"cinema-showtime/pkg/mailer"
	"cinema-showtime/pkg/tmdb"
	"cinema-showtime/pkg/utils"

	"go.uber.org/zap"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Load config
	config, err := utils.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Initialize logger
	logger, err := utils.InitLogger(config.App)
	if err != nil {
		log.Printf("Failed to init logger: %v. Using standard log.", err)
		logger, _ = zap.NewProduction()
	}
	defer logger.Sync()

	logger.Info("Starting application",
		zap.String("app", config.App.Name),
		zap.String("port", config.App.Port),
		zap.Bool("debug", config.App.Debug),
		zap.Duration("hold_window", config.Booking.HoldWindow),
	)

	// Connect to database
	db, err := database.InitDB(ctx, config.Database)
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	if err := database.Migrate(ctx, config.Database, migrations.FS, migrations.Dir, logger); err != nil {
		logger.Fatal("Failed to run migrations", zap.Error(err))
	}
	logger.Info("Database connected successfully")

	rdb, err := cache.NewRedisClient(ctx, config.Redis)
	if err != nil {
		logger.Fatal("Failed to connect to redis", zap.Error(err))
	}
	defer rdb.Close()

	mq, err := broker.Dial(config.Broker.URL, logger)
	if err != nil {
		logger.Fatal("Failed to connect to broker", zap.Error(err))
	}
	defer mq.Close()

	// Initialize all repositories and services
	repos := repository.NewRepository(db, rdb, config.Catalog.CacheTTL, logger)
	source := usecase.NewTMDBSource(tmdb.NewClient(config.Catalog))
	publisher := usecase.NewQueuePublisher(mq, logger)
	service := usecase.NewService(repos, config, source, publisher, logger)

	// Background work
	sweeper, err := worker.NewSweeper(service.Timeout, config.Jobs.SweepInterval, logger)
	if err != nil {
		logger.Fatal("Failed to create sweeper", zap.Error(err))
	}
	sweeper.Start()
	defer sweeper.Stop()

	reminders, err := worker.NewReminders(service.Reminder, config.Jobs.ReminderCron, config.App.Location(), logger)
	if err != nil {
		logger.Fatal("Failed to create reminder scheduler", zap.Error(err))
	}
	reminders.Start()
	defer func() { _ = reminders.Stop() }()

	go func() {
		err := worker.Run(ctx, mq,
			worker.NewReleaseWorker(service.Timeout, logger),
			worker.NewNotificationWorker(mailer.NewMailer(config.Email, logger), config.Email.NewShowsTo, config.App.Location(), logger),
			logger,
		)
		if err != nil {
			logger.Error("Queue workers stopped", zap.Error(err))
		}
	}()

	// Wire HTTP
	app := wire.Wiring(service, db, config, logger)

	if err := cmd.APIServer(ctx, app.Router, config.App.Port, logger); err != nil {
		logger.Error("Server stopped", zap.Error(err))
	}
	logger.Info("Shutdown complete")
}
