package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"

	"github.com/shopzone/ecommerce-api/internal/config"
	"github.com/shopzone/ecommerce-api/internal/es"
	"github.com/shopzone/ecommerce-api/internal/events"
	"github.com/shopzone/ecommerce-api/internal/handlers"
	"github.com/shopzone/ecommerce-api/internal/logging"
	"github.com/shopzone/ecommerce-api/internal/middleware"
	"github.com/shopzone/ecommerce-api/internal/repo"
	"github.com/shopzone/ecommerce-api/internal/search"
	"github.com/shopzone/ecommerce-api/internal/storage"
	"github.com/shopzone/ecommerce-api/internal/token"
	httpserver "github.com/shopzone/ecommerce-api/internal/transport/http"
	"github.com/shopzone/ecommerce-api/internal/validation"
)

func main() {
	configuration, err := config.LoadConfig()
	if err != nil {
		log.Fatal(err)
	}

	logger := logging.New(configuration.LOG_LEVEL)
	slog.SetDefault(logger)

	db, err := config.InitDB(configuration)
	if err != nil {
		log.Fatalf("database init failed: %v", err)
	}

	var revocation token.RevocationList
	if redisClient := config.NewRedisClient(configuration); redisClient != nil {
		revocation = &token.RedisRevocationList{Client: redisClient}
	} else {
		logger.Warn("redis not configured, using in-process token revocation")
		revocation = token.NewMemoryRevocationList()
	}

	tokens := &token.Service{
		Secret:     []byte(configuration.JWT_SECRET),
		TTL:        time.Duration(configuration.JWT_TTL_MIN) * time.Minute,
		Revocation: revocation,
	}

	producer := events.NewProducer(configuration.KAFKA_ADDRESS)
	if producer == nil {
		logger.Warn("kafka not configured, domain events disabled")
	}

	esClient, err := es.NewClient(configuration)
	if err != nil {
		logger.Error("elasticsearch unavailable, full-text search disabled", "error", err)
	}
	index := search.NewIndex(esClient, configuration.ES_INDEX)

	images := &storage.ImageStore{Root: configuration.UPLOAD_DIR}

	users := &repo.UserRepo{DB: db}
	categories := &repo.CategoryRepo{DB: db}
	products := &repo.ProductRepo{DB: db}

	e := echo.New()
	e.Pre(echomw.RemoveTrailingSlash())
	e.Use(echomw.Recover(), echomw.RequestID(), middleware.RequestLogger(logger))
	e.Validator = validation.New()

	deps := httpserver.Deps{
		AuthHandler:     &handlers.AuthHandler{Users: users, Tokens: tokens, Producer: producer},
		CategoryHandler: &handlers.CategoryHandler{Categories: categories, Producer: producer},
		ProductHandler: &handlers.ProductHandler{
			Products:   products,
			Categories: categories,
			Images:     images,
			Producer:   producer,
			Index:      index,
		},
		SearchHandler: &handlers.SearchHandler{Index: index},
		Tokens:        tokens,
		UploadDir:     configuration.UPLOAD_DIR,
	}
	httpserver.Register(e, &deps)

	srv := &http.Server{
		Addr:         configuration.HTTP_ADDR,
		Handler:      e,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Printf("http server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Printf("server shutdown error: %v", err)
	}

	if sqlDB, err := db.DB(); err == nil {
		if err := sqlDB.Close(); err != nil {
			log.Printf("db close error: %v", err)
		}
	} else {
		log.Printf("db() error: %v", err)
	}

	if err := producer.Close(); err != nil {
		log.Printf("kafka close error: %v", err)
	}

	log.Println("shutdown complete")
}
