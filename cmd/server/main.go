package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/mandoni/retail-ordering/internal/config"
	"github.com/mandoni/retail-ordering/internal/es"
	"github.com/mandoni/retail-ordering/internal/events"
	"github.com/mandoni/retail-ordering/internal/handlers"
	"github.com/mandoni/retail-ordering/internal/logging"
	authmw "github.com/mandoni/retail-ordering/internal/middleware/auth"
	"github.com/mandoni/retail-ordering/internal/response"
	"github.com/mandoni/retail-ordering/internal/service"
	"github.com/mandoni/retail-ordering/internal/service/search"
	httpserver "github.com/mandoni/retail-ordering/internal/transport/http"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}

	logger := logging.New(cfg.LogLevel)

	db, err := config.InitDB(cfg)
	if err != nil {
		log.Fatalf("database error: %v", err)
	}

	var producer *events.Producer
	if cfg.KafkaAddress != "" {
		producer = events.NewProducer(cfg.KafkaAddress)
	} else {
		logger.Warn("KAFKA_ADDRESS not set, event publishing disabled")
	}

	searchSvc := &search.Service{Index: cfg.ESIndex}
	if cfg.ESURL != "" {
		esClient, err := es.NewClient(cfg)
		if err != nil {
			logger.Warn("elasticsearch unavailable, search disabled", "error", err)
		} else {
			searchSvc.ES = esClient
		}
	} else {
		logger.Warn("ES_URL not set, search disabled")
	}

	jwtSecret := []byte(cfg.JWTSecret)
	refreshSecret := []byte(cfg.RefreshSecret)
	gate := &authmw.Gate{DB: db, JWTSecret: jwtSecret}

	e := echo.New()
	e.HideBanner = true
	e.HTTPErrorHandler = response.HTTPErrorHandler
	e.Pre(middleware.RemoveTrailingSlash())
	e.Use(middleware.Recover(), middleware.RequestID())
	e.Use(func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			ctx := logging.IntoContext(c.Request().Context(), logger)
			c.SetRequest(c.Request().WithContext(ctx))
			return next(c)
		}
	})

	deps := &httpserver.Deps{
		Gate: gate,
		AuthHandler: &handlers.AuthHandler{
			DB:            db,
			JWTSecret:     jwtSecret,
			RefreshSecret: refreshSecret,
			AccessTTL:     cfg.AccessTTL,
			RefreshTTL:    cfg.RefreshTTL,
			Producer:      producer,
		},
		ProductHandler:  &handlers.ProductHandler{DB: db, Producer: producer, Search: searchSvc},
		OrderHandler:    &handlers.OrderAdminHandler{DB: db},
		CustomerHandler: &handlers.CustomerHandler{DB: db, Orders: &service.OrderService{DB: db}, Producer: producer},
		SearchHandler:   &handlers.SearchHandler{Search: searchSvc},
	}
	httpserver.Register(e, deps)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      e,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("starting http server", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("server shutdown error", "error", err)
	}

	if sqlDB, err := db.DB(); err == nil {
		if err := sqlDB.Close(); err != nil {
			logger.Error("db close error", "error", err)
		}
	}

	if err := producer.Close(); err != nil {
		logger.Error("kafka close error", "error", err)
	}

	logger.Info("shutdown complete")
}
