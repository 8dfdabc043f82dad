package implementation

import (
	"context"
	"errors"
	"fmt"

	rftmodels "gitlab.com/maplesense1/rft.asset_tracker/src/production/RFT.Models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoScanRepository persists the append-only scan ledger.
type MongoScanRepository struct {
	scans *mongo.Collection
}

func NewMongoScanRepository(client *mongo.Client, database string) *MongoScanRepository {
	return &MongoScanRepository{
		scans: client.Database(database).Collection(scansCollection),
	}
}

func (r *MongoScanRepository) EnsureIndexes(ctx context.Context) error {
	_, err := r.scans.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "asset_id", Value: 1}, {Key: "timestamp", Value: -1}},
	})
	if err != nil {
		return fmt.Errorf("failed to create scan index: %w", err)
	}
	return nil
}

func (r *MongoScanRepository) InsertScan(ctx context.Context, scan rftmodels.ScanRecord) error {
	if _, err := r.scans.InsertOne(ctx, scan); err != nil {
		return fmt.Errorf("failed to insert scan: %w", err)
	}
	return nil
}

func (r *MongoScanRepository) ListScansByAsset(ctx context.Context, assetID int64, limit int64) ([]rftmodels.ScanRecord, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "timestamp", Value: -1}}).
		SetLimit(limit)

	cursor, err := r.scans.Find(ctx, bson.D{{Key: "asset_id", Value: assetID}}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to query scans: %w", err)
	}
	defer cursor.Close(ctx)

	var scans []rftmodels.ScanRecord
	if err := cursor.All(ctx, &scans); err != nil {
		return nil, fmt.Errorf("failed to decode scans: %w", err)
	}
	return scans, nil
}

func (r *MongoScanRepository) LatestScan(ctx context.Context, assetID int64) (*rftmodels.ScanRecord, error) {
	opts := options.FindOne().SetSort(bson.D{{Key: "timestamp", Value: -1}})

	var scan rftmodels.ScanRecord
	err := r.scans.FindOne(ctx, bson.D{{Key: "asset_id", Value: assetID}}, opts).Decode(&scan)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query latest scan: %w", err)
	}
	return &scan, nil
}
