package main

import (
	"log"
	"os"
	"time"

	_ "github.com/joho/godotenv/autoload"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/iliyamo/event-ticketing/internal/config"
	"github.com/iliyamo/event-ticketing/internal/database"
	"github.com/iliyamo/event-ticketing/internal/handler"
	"github.com/iliyamo/event-ticketing/internal/queue"
	"github.com/iliyamo/event-ticketing/internal/repository"
	"github.com/iliyamo/event-ticketing/internal/router"
	"github.com/iliyamo/event-ticketing/internal/service"
	"github.com/iliyamo/event-ticketing/internal/store"
	"github.com/iliyamo/event-ticketing/internal/store/memstore"
)

func main() {
	cfg := config.Load()

	logger := zerolog.New(os.Stdout).With().Timestamp().Str("service", "ticketing").Logger()
	if cfg.Env == "dev" {
		logger = logger.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen})
	}

	var st store.Store
	switch cfg.Store {
	case "memory":
		// In-memory backend for local development without MySQL.
		// Everything is lost on restart.
		logger.Warn().Msg("using in-memory store; data will not survive a restart")
		st = memstore.New()
	default:
		db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
		if err != nil {
			log.Fatalf("database connection failed: %v", err)
		}
		defer db.Close()
		st = repository.New(db)
	}

	rdb := config.NewRedisClient()
	if rdb == nil {
		logger.Warn().Msg("redis unavailable; rate limiting and report caching disabled")
	}

	pub := service.NewAMQPPublisher(logger)
	go func() {
		if err := queue.StartSinkConsumer(); err != nil {
			logger.Error().Err(err).Msg("sink consumer stopped")
		}
	}()

	catalog := service.NewCatalog(st, logger)
	ledger := service.NewLedger(st, pub, logger)
	attendance := service.NewAttendance(st, logger)
	certs := service.NewCertificates(st, pub, logger)
	revenue := service.NewRevenue(st)

	e := echo.New()
	e.HideBanner = true
	e.Validator = handler.NewValidator()

	router.RegisterRoutes(e)
	router.RegisterPublic(e, handler.NewPublicHandler(catalog, ledger, certs, logger), rdb)
	router.RegisterAdmin(e, handler.NewAdminHandler(catalog, ledger, attendance, certs, logger),
		handler.NewReportsHandler(revenue, logger), cfg.JWTSecret, rdb)

	addr := ":" + cfg.Port
	logger.Info().Str("addr", addr).Str("env", cfg.Env).Str("store", cfg.Store).Msg("listening")
	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}
