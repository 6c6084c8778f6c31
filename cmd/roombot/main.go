package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/MJEvans3/roombookingslackbot/internal/application"
	"github.com/MJEvans3/roombookingslackbot/internal/catalog"
	"github.com/MJEvans3/roombookingslackbot/internal/config"
	"github.com/MJEvans3/roombookingslackbot/internal/interpreter"
	"github.com/MJEvans3/roombookingslackbot/internal/logging"
	"github.com/MJEvans3/roombookingslackbot/internal/persistence"
	"github.com/MJEvans3/roombookingslackbot/internal/persistence/jsonfile"
	"github.com/MJEvans3/roombookingslackbot/internal/persistence/sqlite"
	"github.com/MJEvans3/roombookingslackbot/internal/slackbot"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx = logging.ContextWithLogger(ctx, logger)

	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	location, err := cfg.Location()
	if err != nil {
		logger.Error("failed to load timezone", "error", err)
		os.Exit(1)
	}
	now := func() time.Time { return time.Now().In(location) }

	rooms := catalog.Default()
	if cfg.RoomsFile != "" {
		rooms, err = catalog.Load(cfg.RoomsFile)
		if err != nil {
			logger.Error("failed to load room catalog", "error", err, "path", cfg.RoomsFile)
			os.Exit(1)
		}
	}

	var store persistence.BookingRepository
	switch cfg.StoreDriver {
	case config.StoreSQLite:
		var db *sqlite.Store
		if db, err = sqlite.Open(cfg.SQLiteDSN, location); err == nil {
			err = db.Ping(ctx)
			store = db
		}
	default:
		store, err = jsonfile.Open(cfg.DataFile)
	}
	if err != nil {
		logger.Error("failed to open booking store", "error", err, "driver", string(cfg.StoreDriver))
		os.Exit(1)
	}
	defer func() {
		if cerr := store.Close(); cerr != nil {
			logger.Error("failed to close booking store", "error", cerr)
		}
	}()

	service := application.NewBookingService(application.BookingServiceParams{
		Rooms:          rooms,
		Bookings:       store,
		Now:            now,
		Logger:         logger,
		DayStartHour:   cfg.DayStartHour,
		DayEndHour:     cfg.DayEndHour,
		MaxSuggestions: cfg.MaxSuggestions,
		ListingTTL:     cfg.ListingTTL,
	})

	handler := interpreter.New(service, now, logger)
	bot := slackbot.New(cfg.SlackBotToken, cfg.SlackAppToken, handler, logger)

	logger.Info("room booking bot starting",
		"driver", string(cfg.StoreDriver),
		"rooms", len(rooms.Rooms()),
		"timezone", cfg.Timezone,
	)
	if err := bot.Run(ctx); err != nil {
		logger.Error("bot terminated", "error", err)
		os.Exit(1)
	}
	logger.Info("room booking bot stopped")
}
