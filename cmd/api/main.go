package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"

	"github.com/matteoferri/habitlens-engine/internal/adapters/cache"
	adapterHTTP "github.com/matteoferri/habitlens-engine/internal/adapters/handler/http"
	"github.com/matteoferri/habitlens-engine/internal/adapters/repository"
	"github.com/matteoferri/habitlens-engine/internal/core/domain"
	"github.com/matteoferri/habitlens-engine/internal/core/services"
	"github.com/matteoferri/habitlens-engine/internal/core/workers"
)

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func main() {
	startTime := time.Now()

	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, relying on environment")
	}

	dsn := fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable",
		getEnv("DB_USER", "habitlens"),
		getEnv("DB_PASSWORD", ""),
		getEnv("DB_HOST", "localhost"),
		getEnv("DB_PORT", "5432"),
		getEnv("DB_NAME", "habitlens_db"),
	)

	log.Println("Connecting to database...")

	db, err := sqlx.Connect("pgx", dsn)
	if err != nil {
		log.Fatalf("Critical: Failed to connect to database: %v", err)
	}
	defer db.Close()

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(25)
	db.SetConnMaxLifetime(5 * time.Minute)

	log.Println("Database connected successfully.")

	rdb, err := cache.NewRedisClient(cache.Config{
		Host:     getEnv("REDIS_HOST", "localhost"),
		Port:     getEnv("REDIS_PORT", "6379"),
		Password: getEnv("REDIS_PASSWORD", ""),
	})
	if err != nil {
		log.Printf("Redis unavailable, derived-cache reads go straight to Postgres: %v", err)
		rdb = nil
	}

	source := repository.NewPostgresCompletionSource(db)

	var store domain.AnalyticsRepository = repository.NewPostgresAnalyticsRepository(db)
	if rdb != nil {
		store = repository.NewCachedAnalyticsRepository(store, rdb)
	}

	svc := services.NewAnalyticsService(source, store)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	worker := workers.NewRecomputeWorker(svc)
	worker.Start(ctx)

	router := adapterHTTP.NewRouter(adapterHTTP.RouterDependencies{
		AnalyticsHandler: adapterHTTP.NewAnalyticsHandler(svc),
		GroupHandler:     adapterHTTP.NewGroupHandler(svc),
		DB:               db,
		Redis:            rdb,
		StartTime:        startTime,
	})

	srv := &http.Server{
		Addr:         ":" + getEnv("PORT", "8080"),
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		log.Printf("HabitLens analytics engine running on http://localhost%s", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Critical server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Stop signal received. Shutting down...")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatal("Forced shutdown error:", err)
	}

	log.Println("Server stopped gracefully.")
}
