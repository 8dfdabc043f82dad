package tracker

import (
	"fmt"
	"sort"
	"sync"
	"time"

	rftmodels "gitlab.com/maplesense1/rft.asset_tracker/src/production/RFT.Models"
)

// Store is the authoritative in-memory holder of all asset records. All
// mutations go through Apply and SweepStatuses, which are serialized by the
// write lock; readers get point-in-time copies and never observe a
// half-applied mutation.
type Store struct {
	mu    sync.RWMutex
	byTag map[string]*rftmodels.Asset
	byID  map[int64]*rftmodels.Asset

	activeWindow  time.Duration
	missingWindow time.Duration
}

// NewStore creates an empty store with the given status windows. The caller
// is responsible for having validated activeWindow < missingWindow.
func NewStore(activeWindow, missingWindow time.Duration) *Store {
	return &Store{
		byTag:         make(map[string]*rftmodels.Asset),
		byID:          make(map[int64]*rftmodels.Asset),
		activeWindow:  activeWindow,
		missingWindow: missingWindow,
	}
}

// Seed loads the asset catalog, recomputing each status from its last sighting
// so a restart never resurrects a stale status.
func (s *Store) Seed(assets []rftmodels.Asset, now time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, asset := range assets {
		a := asset
		a.Status = s.statusFor(a.LastSeen, now)
		s.byTag[a.TagID] = &a
		s.byID[a.ID] = &a
	}
}

// Apply records an accepted sighting: it updates last_seen and last_location,
// forces the status to active, and reports the resulting transition (a no-op
// transition when the asset was already active). Fails with ErrUnknownTag
// when no asset carries the event's tag; the store is left untouched.
func (s *Store) Apply(event rftmodels.ScanEvent) (rftmodels.Asset, rftmodels.Transition, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	asset, ok := s.byTag[event.TagID]
	if !ok {
		return rftmodels.Asset{}, rftmodels.Transition{}, fmt.Errorf("%w: %s", ErrUnknownTag, event.TagID)
	}

	old := asset.Status
	ts := event.Timestamp
	asset.LastSeen = &ts
	asset.LastLocation = event.Location
	asset.Status = rftmodels.StatusActive

	transition := rftmodels.Transition{
		AssetID:   asset.ID,
		TagID:     asset.TagID,
		OldStatus: old,
		NewStatus: rftmodels.StatusActive,
		At:        ts,
	}
	return *asset, transition, nil
}

// SweepStatuses recomputes every asset's status from elapsed time and returns
// the transitions for assets whose status actually changed, ordered by asset
// ID. Calling it again with the same clock yields nothing.
func (s *Store) SweepStatuses(now time.Time) []rftmodels.Transition {
	s.mu.Lock()
	defer s.mu.Unlock()

	var transitions []rftmodels.Transition
	for _, asset := range s.byID {
		derived := s.statusFor(asset.LastSeen, now)
		if derived == asset.Status {
			continue
		}
		transitions = append(transitions, rftmodels.Transition{
			AssetID:   asset.ID,
			TagID:     asset.TagID,
			OldStatus: asset.Status,
			NewStatus: derived,
			At:        now,
		})
		asset.Status = derived
	}

	sort.Slice(transitions, func(i, j int) bool {
		return transitions[i].AssetID < transitions[j].AssetID
	})
	return transitions
}

// statusFor derives the presence status from a last sighting time. Callers
// must hold at least the read lock. An asset never seen is missing, not idle.
func (s *Store) statusFor(lastSeen *time.Time, now time.Time) rftmodels.Status {
	if lastSeen == nil {
		return rftmodels.StatusMissing
	}
	elapsed := now.Sub(*lastSeen)
	switch {
	case elapsed < s.activeWindow:
		return rftmodels.StatusActive
	case elapsed < s.missingWindow:
		return rftmodels.StatusIdle
	default:
		return rftmodels.StatusMissing
	}
}

// GetByTag returns a copy of the asset carrying the given tag.
func (s *Store) GetByTag(tagID string) (rftmodels.Asset, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	asset, ok := s.byTag[tagID]
	if !ok {
		return rftmodels.Asset{}, false
	}
	return *asset, true
}

// GetByID returns a copy of the asset with the given surrogate key.
func (s *Store) GetByID(id int64) (rftmodels.Asset, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	asset, ok := s.byID[id]
	if !ok {
		return rftmodels.Asset{}, false
	}
	return *asset, true
}

// List returns a snapshot of all assets ordered by ID.
func (s *Store) List() []rftmodels.Asset {
	return s.snapshot(func(*rftmodels.Asset) bool { return true })
}

// ListByStatus returns a snapshot of the assets currently in the given status.
func (s *Store) ListByStatus(status rftmodels.Status) []rftmodels.Asset {
	return s.snapshot(func(a *rftmodels.Asset) bool { return a.Status == status })
}

// TagIDs returns the known tag identifiers in lexical order.
func (s *Store) TagIDs() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	tags := make([]string, 0, len(s.byTag))
	for tag := range s.byTag {
		tags = append(tags, tag)
	}
	sort.Strings(tags)
	return tags
}

func (s *Store) snapshot(keep func(*rftmodels.Asset) bool) []rftmodels.Asset {
	s.mu.RLock()
	assets := make([]rftmodels.Asset, 0, len(s.byID))
	for _, asset := range s.byID {
		if keep(asset) {
			assets = append(assets, *asset)
		}
	}
	s.mu.RUnlock()

	sort.Slice(assets, func(i, j int) bool { return assets[i].ID < assets[j].ID })
	return assets
}
