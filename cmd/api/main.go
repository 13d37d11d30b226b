package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/go-confirm-mailer/internal/application/confirmation"
	"github.com/go-confirm-mailer/internal/config"
	"github.com/go-confirm-mailer/internal/infrastructure/memory"
	redisinfra "github.com/go-confirm-mailer/internal/infrastructure/redis"
	"github.com/go-confirm-mailer/internal/infrastructure/smtp"
	transporthttp "github.com/go-confirm-mailer/internal/transport/http"
	"github.com/joho/godotenv"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, reading from environment")
	}

	cfg := config.Load()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Confirmation store: in-process by default, Redis when several instances share codes.
	var store confirmation.Store
	switch cfg.StoreBackend {
	case config.StoreRedis:
		client, err := redisinfra.NewClient(ctx, cfg)
		if err != nil {
			log.Fatalf("redis: %v", err)
		}
		defer client.Close()
		store = redisinfra.NewConfirmationStore(client, cfg.Redis.Prefix, cfg.ConfirmationTTL, nil)
	case config.StoreMemory:
		store = memory.NewConfirmationStore(cfg.ConfirmationTTL, nil)
	default:
		log.Fatalf("unknown STORE_BACKEND %q (want %s or %s)", cfg.StoreBackend, config.StoreMemory, config.StoreRedis)
	}
	log.Printf("Confirmation store: %s (ttl=%s)", cfg.StoreBackend, cfg.ConfirmationTTL)

	// SMTP mailer.
	if cfg.SMTPUsername == "" {
		log.Println("WARN: SMTP_USERNAME not configured, relay must accept unauthenticated mail")
	}
	mailer := smtp.NewMailer(cfg)

	var wg sync.WaitGroup
	sweeper := confirmation.NewSweeper(store, cfg.SweepInterval)
	wg.Add(1)
	go func() {
		defer wg.Done()
		sweeper.Run(ctx)
	}()

	router := transporthttp.NewRouter(cfg, &transporthttp.Deps{
		Store:  store,
		Mailer: mailer,
	})
	defer router.Close()

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.AppPort),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("Server starting on :%s (env=%s)", cfg.AppPort, cfg.AppEnv)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	<-ctx.Done()

	log.Println("Shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("forced shutdown: %v", err)
	}
	wg.Wait()
	log.Println("Server stopped")
}
