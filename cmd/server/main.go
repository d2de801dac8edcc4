package main // Entry point package

import (
	"log"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"

	"github.com/opencivic/records-portal/internal/config"
	"github.com/opencivic/records-portal/internal/database"
	"github.com/opencivic/records-portal/internal/handler"
	"github.com/opencivic/records-portal/internal/lifecycle"
	"github.com/opencivic/records-portal/internal/mailer"
	"github.com/opencivic/records-portal/internal/middleware"
	"github.com/opencivic/records-portal/internal/notify"
	"github.com/opencivic/records-portal/internal/queue"
	"github.com/opencivic/records-portal/internal/repository"
	"github.com/opencivic/records-portal/internal/router"
)

func main() {
	// .env is optional; in containers everything comes from real env vars.
	_ = godotenv.Load()
	cfg := config.Load()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("open database: %v", err)
	}
	if err := database.Migrate(db); err != nil {
		log.Fatalf("migrate database: %v", err)
	}

	// Redis is optional; a nil client turns the cache and rate limiter
	// into pass-through middleware.
	rdb := config.NewRedisClient()

	users := repository.NewUserRepo(db)
	tokens := repository.NewTokenRepo(db)
	requests := repository.NewRequestRepo(db)
	messages := repository.NewMessageRepo(db)
	notifications := repository.NewNotificationRepo(db)
	templates := repository.NewTemplateRepo(db)

	mail := mailer.New(cfg)
	dispatcher := notify.NewDispatcher(notifications, templates, mail, cfg.AMQPURL)
	coord := lifecycle.NewCoordinator(requests, users, messages, dispatcher)

	if cfg.AMQPURL != "" {
		go func() {
			if err := queue.StartDispatchConsumer(cfg.AMQPURL); err != nil {
				log.Printf("dispatch consumer stopped: %v", err)
			}
		}()
	}

	e := echo.New()
	router.RegisterRoutes(e)

	limiter := middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb)
	cache := middleware.NewResponseCache(config.LoadCacheConfig(), rdb)

	router.RegisterAuth(e, handler.NewAuthHandler(cfg, users, tokens), cfg.JWTSecret, limiter)
	router.RegisterRequests(e, handler.NewRequestHandler(coord, requests), cfg.JWTSecret)
	router.RegisterMessages(e, handler.NewMessageHandler(coord, requests, messages), cfg.JWTSecret)
	router.RegisterNotifications(e, handler.NewNotificationHandler(notifications), cfg.JWTSecret)
	router.RegisterDashboard(e, handler.NewDashboardHandler(requests, users), cfg.JWTSecret, cache)
	router.RegisterExports(e, handler.NewExportHandler(requests, users, messages), cfg.JWTSecret)
	router.RegisterAdmin(e, handler.NewAdminHandler(cfg.BcryptCost, users, requests, templates, coord, mail), cfg.JWTSecret)

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env)
	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}
