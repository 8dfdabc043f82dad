package main

import (
	"context"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"gitlab.com/maplesense1/rft.asset_tracker/src/production/RFT.ApiService/controllers"
	container "gitlab.com/maplesense1/rft.asset_tracker/src/production/RFT.Container"
	hub "gitlab.com/maplesense1/rft.asset_tracker/src/production/RFT.Hub"
	rftingestor "gitlab.com/maplesense1/rft.asset_tracker/src/production/RFT.Ingestor"
	implementation "gitlab.com/maplesense1/rft.asset_tracker/src/production/RFT.Repository/Implementation"
	tracker "gitlab.com/maplesense1/rft.asset_tracker/src/production/RFT.Tracker"
)

func main() {
	// Initialize dependency injection container
	ctr, err := container.NewContainer()
	if err != nil {
		panic(fmt.Sprintf("Failed to initialize container: %v", err))
	}
	defer ctr.Shutdown(context.Background())

	logger := ctr.GetLogger()
	cfg := ctr.GetConfig()
	logger.Info("Starting RFID Asset Tracker")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Connect persistence and prepare the catalog
	bootCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	client, err := ctr.GetMongoClient()
	if err != nil {
		logger.FatalWithError(err, "Failed to connect to MongoDB")
	}
	assetRepo, err := ctr.GetAssetRepository()
	if err != nil {
		logger.FatalWithError(err, "Failed to initialize asset repository")
	}
	scanRepo, err := ctr.GetScanRepository()
	if err != nil {
		logger.FatalWithError(err, "Failed to initialize scan repository")
	}

	if err := assetRepo.EnsureIndexes(bootCtx); err != nil {
		logger.FatalWithError(err, "Failed to create asset indexes")
	}
	if err := scanRepo.EnsureIndexes(bootCtx); err != nil {
		logger.FatalWithError(err, "Failed to create scan indexes")
	}
	if err := implementation.SeedSampleData(bootCtx, assetRepo, scanRepo); err != nil {
		logger.FatalWithError(err, "Failed to seed sample data")
	}

	catalog, err := implementation.LoadCatalog(bootCtx, assetRepo, scanRepo)
	if err != nil {
		logger.FatalWithError(err, "Failed to load asset catalog")
	}

	// Core pipeline: store, hub, normalizer, service
	store := tracker.NewStore(cfg.Tracking.ActiveWindow, cfg.Tracking.MissingWindow)
	store.Seed(catalog, time.Now().UTC())
	logger.WithField("assets", len(catalog)).Info("Asset catalog loaded")

	broadcastHub := hub.NewHub(logger)
	go func() {
		_ = broadcastHub.Run(ctx)
	}()

	service := tracker.NewService(tracker.NewNormalizer(nil), store, scanRepo, broadcastHub, logger)

	// Background tasks
	reconciler := tracker.NewReconciler(store, broadcastHub, cfg.Tracking.SweepInterval, logger)
	reconciler.Start(ctx)
	defer reconciler.Stop()

	if cfg.Simulator.Enabled {
		simulator := tracker.NewSimulator(service, cfg.Simulator, logger)
		simulator.Start(ctx)
		defer simulator.Stop()
	}

	if cfg.MQTT.Enabled {
		ingestor := rftingestor.New(cfg.MQTT, cfg.GetMQTTBrokerURL(), service, logger)
		if err := ingestor.Start(ctx); err != nil {
			logger.FatalWithError(err, "Failed to start MQTT ingestor")
		}
		defer ingestor.Stop()
	}

	// HTTP API
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())

	corsConfig := cors.Config{
		AllowOrigins:     cfg.CORS.AllowedOrigins,
		AllowMethods:     cfg.CORS.AllowedMethods,
		AllowHeaders:     cfg.CORS.AllowedHeaders,
		ExposeHeaders:    cfg.CORS.ExposedHeaders,
		AllowCredentials: cfg.CORS.AllowCredentials,
		MaxAge:           time.Duration(cfg.CORS.MaxAge) * time.Second,
	}
	router.Use(cors.New(corsConfig))

	controllers.NewScanController(service, logger).RegisterRoutes(router)
	controllers.NewAssetController(store, scanRepo, logger).RegisterRoutes(router)
	controllers.NewWSController(broadcastHub, logger).RegisterRoutes(router)
	controllers.NewHealthController(client, logger).RegisterRoutes(router)

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		logger.WithField("port", cfg.Server.Port).Info("HTTP server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.FatalWithError(err, "HTTP server failed")
		}
	}()

	<-ctx.Done()
	logger.Info("Shutdown signal received")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.ErrorWithError(err, "HTTP server shutdown failed")
	}
}
