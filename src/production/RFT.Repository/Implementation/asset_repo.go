package implementation

import (
	"context"
	"fmt"

	rftmodels "gitlab.com/maplesense1/rft.asset_tracker/src/production/RFT.Models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoAssetRepository persists the asset catalog.
type MongoAssetRepository struct {
	assets *mongo.Collection
}

func NewMongoAssetRepository(client *mongo.Client, database string) *MongoAssetRepository {
	return &MongoAssetRepository{
		assets: client.Database(database).Collection(assetsCollection),
	}
}

func (r *MongoAssetRepository) EnsureIndexes(ctx context.Context) error {
	_, err := r.assets.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "tag_id", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return fmt.Errorf("failed to create tag_id index: %w", err)
	}
	return nil
}

func (r *MongoAssetRepository) Count(ctx context.Context) (int64, error) {
	return r.assets.CountDocuments(ctx, bson.D{})
}

func (r *MongoAssetRepository) InsertAssets(ctx context.Context, assets []rftmodels.Asset) error {
	if len(assets) == 0 {
		return nil
	}
	docs := make([]interface{}, 0, len(assets))
	for _, asset := range assets {
		docs = append(docs, asset)
	}
	if _, err := r.assets.InsertMany(ctx, docs); err != nil {
		return fmt.Errorf("failed to insert assets: %w", err)
	}
	return nil
}

func (r *MongoAssetRepository) ListAssets(ctx context.Context) ([]rftmodels.Asset, error) {
	cursor, err := r.assets.Find(ctx, bson.D{}, options.Find().SetSort(bson.D{{Key: "_id", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("failed to query assets: %w", err)
	}
	defer cursor.Close(ctx)

	var assets []rftmodels.Asset
	if err := cursor.All(ctx, &assets); err != nil {
		return nil, fmt.Errorf("failed to decode assets: %w", err)
	}
	return assets, nil
}
