package rftmodels

import "time"

// Status is the derived presence classification of an Asset. It is a pure
// function of the time elapsed since the asset's last accepted sighting.
type Status string

const (
	StatusActive  Status = "active"
	StatusIdle    Status = "idle"
	StatusMissing Status = "missing"
)

// Valid reports whether s is one of the known status values.
func (s Status) Valid() bool {
	switch s {
	case StatusActive, StatusIdle, StatusMissing:
		return true
	}
	return false
}

// Severity orders statuses from most recently seen (0) to lapsed (2).
func (s Status) Severity() int {
	switch s {
	case StatusActive:
		return 0
	case StatusIdle:
		return 1
	default:
		return 2
	}
}

// Asset represents a tracked physical asset identified by an RFID tag.
type Asset struct {
	ID           int64      `bson:"_id" json:"id"`
	TagID        string     `bson:"tag_id" json:"tag_id"`
	Name         string     `bson:"name" json:"name"`
	Description  string     `bson:"description,omitempty" json:"description,omitempty"`
	AssetType    string     `bson:"asset_type" json:"asset_type"`
	Status       Status     `bson:"status" json:"status"`
	LastSeen     *time.Time `bson:"last_seen,omitempty" json:"last_seen,omitempty"`
	LastLocation string     `bson:"last_location,omitempty" json:"last_location,omitempty"`
	CreatedAt    time.Time  `bson:"created_at" json:"created_at"`
}

// Transition records a status change for a single asset.
type Transition struct {
	AssetID   int64     `json:"asset_id"`
	TagID     string    `json:"tag_id"`
	OldStatus Status    `json:"old_status"`
	NewStatus Status    `json:"new_status"`
	At        time.Time `json:"at"`
}
