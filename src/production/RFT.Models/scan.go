package rftmodels

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ScanEvent is a single accepted sighting of a tag. The timestamp is assigned
// by the normalizer at acceptance; AssetName and AssetType are denormalized
// copies attached at emission time for observer convenience.
type ScanEvent struct {
	TagID     string    `json:"tag_id"`
	Location  string    `json:"location"`
	Timestamp time.Time `json:"timestamp"`
	RSSI      *int      `json:"rssi,omitempty"`
	AssetName string    `json:"asset_name,omitempty"`
	AssetType string    `json:"asset_type,omitempty"`
}

// ScanRecord is the persisted form of a sighting in the scan ledger.
type ScanRecord struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	AssetID   int64              `bson:"asset_id" json:"asset_id"`
	TagID     string             `bson:"tag_id" json:"tag_id"`
	Location  string             `bson:"location" json:"location"`
	Timestamp time.Time          `bson:"timestamp" json:"timestamp"`
	RSSI      *int               `bson:"rssi,omitempty" json:"rssi,omitempty"`
}
