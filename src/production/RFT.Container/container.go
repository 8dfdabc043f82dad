package container

import (
	"context"
	"fmt"
	"sync"

	config "gitlab.com/maplesense1/rft.asset_tracker/src/production/RFT.Config"
	logger "gitlab.com/maplesense1/rft.asset_tracker/src/production/RFT.Logger"
	implementation "gitlab.com/maplesense1/rft.asset_tracker/src/production/RFT.Repository/Implementation"
	"go.mongodb.org/mongo-driver/mongo"
)

// Container manages dependencies and their lifecycle
type Container struct {
	config *config.Config
	logger *logger.Logger
	client *mongo.Client

	assetRepo *implementation.MongoAssetRepository
	scanRepo  *implementation.MongoScanRepository

	// Mutex for thread-safe access
	mu sync.Mutex

	// Cleanup functions
	cleanupFuncs []func() error
}

// NewContainer creates a new dependency injection container
func NewContainer() (*Container, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	log := logger.NewLogger(&cfg.Logging)

	return &Container{
		config: cfg,
		logger: log,
	}, nil
}

// GetConfig returns the configuration
func (c *Container) GetConfig() *config.Config {
	return c.config
}

// GetLogger returns the logger
func (c *Container) GetLogger() *logger.Logger {
	return c.logger
}

// GetMongoClient returns the MongoDB client, connecting on first use
func (c *Container) GetMongoClient() (*mongo.Client, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.client == nil {
		client, err := implementation.ConnectMongo(&c.config.Mongo)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
		}
		c.client = client
		c.cleanupFuncs = append(c.cleanupFuncs, func() error {
			return client.Disconnect(context.Background())
		})
	}

	return c.client, nil
}

// GetAssetRepository returns the asset catalog repository
func (c *Container) GetAssetRepository() (*implementation.MongoAssetRepository, error) {
	client, err := c.GetMongoClient()
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.assetRepo == nil {
		c.assetRepo = implementation.NewMongoAssetRepository(client, c.config.Mongo.Database)
	}
	return c.assetRepo, nil
}

// GetScanRepository returns the scan ledger repository
func (c *Container) GetScanRepository() (*implementation.MongoScanRepository, error) {
	client, err := c.GetMongoClient()
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.scanRepo == nil {
		c.scanRepo = implementation.NewMongoScanRepository(client, c.config.Mongo.Database)
	}
	return c.scanRepo, nil
}

// AddCleanupFunc adds a cleanup function
func (c *Container) AddCleanupFunc(fn func() error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cleanupFuncs = append(c.cleanupFuncs, fn)
}

// Shutdown gracefully shuts down the container and all its dependencies
func (c *Container) Shutdown(ctx context.Context) error {
	c.logger.Info("Shutting down container...")

	c.mu.Lock()
	funcs := c.cleanupFuncs
	c.cleanupFuncs = nil
	c.mu.Unlock()

	// Execute cleanup functions in reverse order
	for i := len(funcs) - 1; i >= 0; i-- {
		if err := funcs[i](); err != nil {
			c.logger.ErrorWithError(err, "Error during cleanup")
		}
	}

	c.logger.Info("Container shutdown complete")
	return nil
}
