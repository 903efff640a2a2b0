// README: Entry point; loads config, wires services, starts the HTTP server.
package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"loadapp/internal/ai"
	"loadapp/internal/config"
	httptransport "loadapp/internal/http"
	"loadapp/internal/infra"
	"loadapp/internal/logger"
	"loadapp/internal/maps"
	"loadapp/internal/modules/costing"
	"loadapp/internal/modules/offer"
	"loadapp/internal/modules/route"
	"loadapp/internal/modules/settings"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}
	logger.Setup(cfg.Log.File)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	dbPool, err := infra.NewDB(ctx, cfg.DB.DSN)
	if err != nil {
		log.Fatalf("postgres init: %v", err)
	}
	defer dbPool.Close()

	redisClient := infra.NewRedis(cfg.Redis.Addr)

	if cfg.Maps.APIKey == "" {
		log.Fatal("GOOGLE_MAPS_API_KEY is required")
	}
	segmentProvider, err := maps.NewRouteService(cfg.Maps.APIKey)
	if err != nil {
		log.Fatalf("maps init: %v", err)
	}

	// Enrichment is optional: without a Gemini key the offer service
	// falls back to deterministic texts.
	var enricher offer.Enricher
	if cfg.AI.GeminiKey != "" {
		gemini, err := ai.NewGeminiEnricher(ctx, cfg.AI.GeminiKey,
			cfg.Enrichment.Retries, time.Duration(cfg.Enrichment.BackoffMS)*time.Millisecond)
		if err != nil {
			log.Fatalf("gemini init: %v", err)
		}
		defer gemini.Close()
		enricher = gemini
	}

	settingsStore := settings.NewStore(dbPool, redisClient)
	settingsSvc := settings.NewService(settingsStore)

	routeStore := route.NewStore(dbPool)
	routeSvc := route.NewService(routeStore, segmentProvider)

	costingSvc := costing.NewService()

	offerStore := offer.NewStore(dbPool)
	offerSvc := offer.NewService(offerStore, enricher,
		time.Duration(cfg.Offer.ValidityDays)*24*time.Hour)

	handler := httptransport.NewRouter(routeSvc, settingsSvc, costingSvc, offerSvc)
	server := &http.Server{Addr: cfg.HTTP.Addr, Handler: handler}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = server.Shutdown(shutdownCtx)
	}()

	log.Printf("listening on %s", cfg.HTTP.Addr)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatal(err)
	}
}
