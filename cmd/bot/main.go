package main

import (
	"context"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/ilhammtg/mhew-backend/internal/api"
	"github.com/ilhammtg/mhew-backend/internal/bmkg"
	"github.com/ilhammtg/mhew-backend/internal/config"
	"github.com/ilhammtg/mhew-backend/internal/engine"
	"github.com/ilhammtg/mhew-backend/internal/geo"
	"github.com/ilhammtg/mhew-backend/internal/hazard"
	"github.com/ilhammtg/mhew-backend/internal/notifier"
	"github.com/ilhammtg/mhew-backend/internal/observability"
	"github.com/ilhammtg/mhew-backend/internal/storage"
	"github.com/ilhammtg/mhew-backend/internal/telegram"
	"github.com/ilhammtg/mhew-backend/internal/windy"
	"github.com/ilhammtg/mhew-backend/pkg/logger"
)

func main() {
	// Parse command-line flags
	configPath := flag.String("config", "", "Path to configuration file")
	flag.Parse()

	// Load configuration
	cfg, err := config.Load(*configPath)
	if err != nil {
		// Try to initialize basic logger for error output
		logger.Init(true, "")
		logger.Fatal().Err(err).Msg("Failed to load configuration")
	}

	// Initialize logger
	debug := cfg.Log.Level == "debug"
	if err := logger.Init(debug, cfg.Log.File); err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}

	logger.Info().Msg("Starting MHEWS monitoring engine")
	logger.Info().Str("mode", cfg.Weather.DefaultMode).Msg("Default weather mode")

	// Initialize database
	db, err := storage.NewDatabase(cfg.Database.Path)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to initialize database")
	}
	defer db.Close()

	store := storage.NewStore(db)
	logger.Info().Str("path", cfg.Database.Path).Msg("Database initialized")

	if removed, err := store.CleanupOldDispatches(90); err != nil {
		logger.Warn().Err(err).Msg("Dispatch record cleanup failed")
	} else if removed > 0 {
		logger.Info().Int64("removed", removed).Msg("Pruned old dispatch records")
	}

	// Initialize hazard data sources
	timeout := time.Duration(cfg.Sources.TimeoutSeconds) * time.Second
	bmkgClient := bmkg.NewClient(cfg.Sources.SeismicURL, cfg.Sources.NowcastURL,
		cfg.Sources.ForecastURL, cfg.Geo.UserAgent, timeout)
	windyClient := windy.NewClient(cfg.Sources.WindyURL, cfg.Sources.WindyKey, timeout)

	// Initialize location resolution
	dataset := geo.NewDataset(cfg.Geo.DatasetPath)
	geocoder := geo.NewGeocoder(cfg.Geo.GeocoderURL, cfg.Geo.UserAgent, timeout)
	resolver := geo.NewResolver(dataset, geocoder)

	metrics := observability.NewMetrics()
	clock := clockwork.NewRealClock()
	agg := hazard.Aggregator{RollingDivisor: cfg.Weather.PrecipCorrectionDivisor}

	// Initialize Telegram bot. The bot is also the notification transport, so
	// it exists before the pipeline and gets its handlers attached after.
	bot, err := telegram.NewBot(cfg.Telegram.Token, cfg.Telegram.Debug)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to initialize Telegram bot")
	}

	notify := notifier.NewNotifier(bot, metrics)
	pipeline := engine.NewPipeline(store, bmkgClient, windyClient, notify, agg, metrics, clock,
		cfg.Weather.DefaultMode, cfg.Weather.DefaultKeywords)
	service := engine.NewService(store, resolver, agg, clock, cfg.Weather.DefaultMode)
	scheduler := engine.NewScheduler(pipeline, metrics, clock, cfg.Scheduler)
	bot.AttachHandlers(service, scheduler)

	// Seed the SYSTEM baseline so data accrues with zero subscribers.
	seedCtx, seedCancel := context.WithTimeout(context.Background(), 2*time.Minute)
	if err := service.SeedSystemDefaults(seedCtx, cfg.Weather.DefaultLocations); err != nil {
		logger.Error().Err(err).Msg("Failed to seed system defaults")
	}
	seedCancel()

	// Schedule timers: SYSTEM baseline plus every known subscriber.
	scheduler.RegisterSystemDefaults()
	subs, err := store.ListSubscribers()
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to list subscribers")
	}
	for _, sub := range subs {
		if sub.ID == storage.SystemSubscriber {
			continue
		}
		scheduler.RegisterSubscriber(sub.ID)
	}
	logger.Info().Int("timers", scheduler.TimerCount()).Msg("Monitoring timers scheduled")

	// Start HTTP query API
	apiServer := api.NewServer(service)
	server := &http.Server{
		Addr:    cfg.ServerAddress(),
		Handler: apiServer.Router(),
	}

	go func() {
		logger.Info().Str("address", cfg.ServerAddress()).Msg("Starting HTTP server")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("HTTP server error")
		}
	}()

	// Start Telegram bot
	bot.Start()

	// Wait for shutdown signal
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	logger.Info().Msg("Shutting down...")

	// Graceful shutdown
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	scheduler.Stop()

	if err := server.Shutdown(ctx); err != nil {
		logger.Error().Err(err).Msg("HTTP server shutdown error")
	}

	bot.Stop()

	logger.Info().Msg("Shutdown complete")
}
