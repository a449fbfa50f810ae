// Package main starts the zkdex backend: the confidential swap engine and
// the privacy bridge behind one HTTP surface.
package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"zkdex-backend/internal/app"
	"zkdex-backend/internal/config"
	"zkdex-backend/internal/db"
	"zkdex-backend/internal/router"
	"zkdex-backend/internal/services"
)

func main() {
	configPath := flag.String("config", "", "path to config file")
	flag.Parse()

	if err := config.LoadConfig(*configPath); err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	db.InitDB()

	container, err := app.InitializeContainer()
	if err != nil {
		log.Fatalf("Failed to initialize services: %v", err)
	}
	defer container.Shutdown()

	bootstrapEngines(container)

	srv := &http.Server{
		Addr:    config.AppConfig.GetServerAddress(),
		Handler: router.SetupRouter(container),
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		log.Printf("Server listening on %s", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	<-ctx.Done()
	log.Println("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("Forced shutdown: %v", err)
	}
}

// bootstrapEngines applies the configured one-time initialization so a fresh
// deployment comes up ready. Already initialized engines are left untouched.
func bootstrapEngines(container *app.ServiceContainer) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	cfg := config.AppConfig
	if cfg.Swap.Authority != "" {
		if _, err := container.SwapService.Initialize(ctx, cfg.Swap.Authority, cfg.Swap.FeeBps); err != nil {
			if !errors.Is(err, services.ErrAlreadyInitialized) {
				log.Fatalf("Swap bootstrap failed: %v", err)
			}
		} else {
			log.Printf("Swap engine initialized with authority %s", cfg.Swap.Authority)
		}
	}
	if cfg.Bridge.Authority != "" {
		if _, err := container.BridgeService.Initialize(ctx, cfg.Bridge.Authority, cfg.Bridge.MinConfirmations, cfg.Bridge.FeeBps); err != nil {
			if !errors.Is(err, services.ErrAlreadyInitialized) {
				log.Fatalf("Bridge bootstrap failed: %v", err)
			}
		} else {
			log.Printf("Bridge engine initialized with authority %s", cfg.Bridge.Authority)
		}
	}
}
