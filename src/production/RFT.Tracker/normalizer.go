package tracker

import (
	"fmt"
	"strings"
	"sync"
	"time"

	rftmodels "gitlab.com/maplesense1/rft.asset_tracker/src/production/RFT.Models"
)

// RawEvent is a sighting as described by a caller, before validation. Any
// caller-supplied timestamp is ignored; acceptance time is authoritative.
type RawEvent struct {
	TagID    string `json:"tag_id"`
	Location string `json:"location"`
	RSSI     *int   `json:"rssi,omitempty"`
}

// Normalizer validates raw events and stamps them with the acceptance time.
// Assigned timestamps are monotonically non-decreasing per process.
type Normalizer struct {
	mu   sync.Mutex
	now  func() time.Time
	last time.Time
}

// NewNormalizer creates a normalizer using the given clock. A nil clock means
// time.Now.
func NewNormalizer(now func() time.Time) *Normalizer {
	if now == nil {
		now = time.Now
	}
	return &Normalizer{now: now}
}

// Normalize turns a raw event into a canonical ScanEvent or fails with
// ErrInvalidEvent when a required field is missing or blank.
func (n *Normalizer) Normalize(raw RawEvent) (rftmodels.ScanEvent, error) {
	tagID := strings.TrimSpace(raw.TagID)
	location := strings.TrimSpace(raw.Location)

	if tagID == "" {
		return rftmodels.ScanEvent{}, fmt.Errorf("%w: tag_id is required", ErrInvalidEvent)
	}
	if location == "" {
		return rftmodels.ScanEvent{}, fmt.Errorf("%w: location is required", ErrInvalidEvent)
	}

	n.mu.Lock()
	ts := n.now().UTC()
	if ts.Before(n.last) {
		ts = n.last
	}
	n.last = ts
	n.mu.Unlock()

	return rftmodels.ScanEvent{
		TagID:     tagID,
		Location:  location,
		Timestamp: ts,
		RSSI:      raw.RSSI,
	}, nil
}
