package tracker

import (
	"errors"
	"reflect"
	"testing"
	"time"

	rftmodels "gitlab.com/maplesense1/rft.asset_tracker/src/production/RFT.Models"
)

var storeEpoch = time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	store := NewStore(10*time.Second, 30*time.Second)
	store.Seed([]rftmodels.Asset{
		{ID: 1, TagID: "RF001", Name: "Laptop", AssetType: "Electronics"},
		{ID: 2, TagID: "RF002", Name: "Projector", AssetType: "Electronics"},
	}, storeEpoch)
	return store
}

func TestApplySetsActiveAndLastSeen(t *testing.T) {
	store := newTestStore(t)
	ts := storeEpoch.Add(time.Minute)

	asset, transition, err := store.Apply(rftmodels.ScanEvent{TagID: "RF001", Location: "Office", Timestamp: ts})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if asset.Status != rftmodels.StatusActive {
		t.Errorf("status = %s, want active", asset.Status)
	}
	if asset.LastSeen == nil || !asset.LastSeen.Equal(ts) {
		t.Errorf("last_seen = %v, want %v", asset.LastSeen, ts)
	}
	if asset.LastLocation != "Office" {
		t.Errorf("last_location = %q, want Office", asset.LastLocation)
	}
	if transition.OldStatus != rftmodels.StatusMissing || transition.NewStatus != rftmodels.StatusActive {
		t.Errorf("transition = %+v, want missing->active", transition)
	}

	// A repeat sighting is a no-op transition but still refreshes state.
	ts2 := ts.Add(time.Second)
	_, transition, err = store.Apply(rftmodels.ScanEvent{TagID: "RF001", Location: "Lobby", Timestamp: ts2})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if transition.OldStatus != rftmodels.StatusActive || transition.NewStatus != rftmodels.StatusActive {
		t.Errorf("transition = %+v, want active->active", transition)
	}
	got, _ := store.GetByTag("RF001")
	if got.LastLocation != "Lobby" {
		t.Errorf("last_location = %q, want Lobby", got.LastLocation)
	}
}

func TestApplyUnknownTagLeavesStoreUnchanged(t *testing.T) {
	store := newTestStore(t)
	before := store.List()

	_, _, err := store.Apply(rftmodels.ScanEvent{TagID: "RF999", Location: "Lobby", Timestamp: storeEpoch})
	if !errors.Is(err, ErrUnknownTag) {
		t.Fatalf("expected ErrUnknownTag, got %v", err)
	}

	after := store.List()
	if !reflect.DeepEqual(before, after) {
		t.Errorf("store changed on unknown tag:\nbefore %+v\nafter  %+v", before, after)
	}
}

func TestNeverSeenAssetStartsMissing(t *testing.T) {
	store := newTestStore(t)
	asset, ok := store.GetByTag("RF002")
	if !ok {
		t.Fatal("asset not found")
	}
	if asset.Status != rftmodels.StatusMissing {
		t.Errorf("never-seen asset status = %s, want missing", asset.Status)
	}
	if asset.LastSeen != nil {
		t.Errorf("never-seen asset has last_seen = %v", asset.LastSeen)
	}
}

func TestSweepStatusesIsIdempotent(t *testing.T) {
	store := newTestStore(t)
	if _, _, err := store.Apply(rftmodels.ScanEvent{TagID: "RF001", Location: "Office", Timestamp: storeEpoch}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	now := storeEpoch.Add(15 * time.Second)
	first := store.SweepStatuses(now)
	if len(first) != 1 {
		t.Fatalf("first sweep transitions = %d, want 1", len(first))
	}
	second := store.SweepStatuses(now)
	if len(second) != 0 {
		t.Errorf("second sweep transitions = %d, want 0", len(second))
	}
}

func TestStatusDecaysMonotonically(t *testing.T) {
	store := newTestStore(t)
	if _, _, err := store.Apply(rftmodels.ScanEvent{TagID: "RF001", Location: "Office", Timestamp: storeEpoch}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// ACTIVE_WINDOW=10s, MISSING_WINDOW=30s.
	steps := []struct {
		offset time.Duration
		want   rftmodels.Status
	}{
		{5 * time.Second, rftmodels.StatusActive},
		{15 * time.Second, rftmodels.StatusIdle},
		{35 * time.Second, rftmodels.StatusMissing},
	}

	lastSeverity := -1
	for _, step := range steps {
		store.SweepStatuses(storeEpoch.Add(step.offset))
		asset, _ := store.GetByTag("RF001")
		if asset.Status != step.want {
			t.Errorf("at +%s status = %s, want %s", step.offset, asset.Status, step.want)
		}
		if asset.Status.Severity() < lastSeverity {
			t.Errorf("status severity decreased at +%s", step.offset)
		}
		lastSeverity = asset.Status.Severity()
	}
}

func TestSweepTransitionsOrderedByAssetID(t *testing.T) {
	store := NewStore(10*time.Second, 30*time.Second)
	var assets []rftmodels.Asset
	for i := int64(1); i <= 5; i++ {
		assets = append(assets, rftmodels.Asset{ID: i, TagID: "RF00" + string(rune('0'+i))})
	}
	store.Seed(assets, storeEpoch)
	for _, a := range assets {
		if _, _, err := store.Apply(rftmodels.ScanEvent{TagID: a.TagID, Location: "Office", Timestamp: storeEpoch}); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}

	transitions := store.SweepStatuses(storeEpoch.Add(time.Minute))
	if len(transitions) != 5 {
		t.Fatalf("transitions = %d, want 5", len(transitions))
	}
	for i := 1; i < len(transitions); i++ {
		if transitions[i-1].AssetID >= transitions[i].AssetID {
			t.Fatalf("transitions not ordered by asset id: %+v", transitions)
		}
	}
}

func TestListFilters(t *testing.T) {
	store := newTestStore(t)
	if _, _, err := store.Apply(rftmodels.ScanEvent{TagID: "RF001", Location: "Office", Timestamp: storeEpoch}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	all := store.List()
	if len(all) != 2 {
		t.Fatalf("List() = %d assets, want 2", len(all))
	}
	if all[0].ID != 1 || all[1].ID != 2 {
		t.Errorf("List() not ordered by id: %+v", all)
	}

	active := store.ListByStatus(rftmodels.StatusActive)
	if len(active) != 1 || active[0].TagID != "RF001" {
		t.Errorf("ListByStatus(active) = %+v, want RF001 only", active)
	}
	missing := store.ListByStatus(rftmodels.StatusMissing)
	if len(missing) != 1 || missing[0].TagID != "RF002" {
		t.Errorf("ListByStatus(missing) = %+v, want RF002 only", missing)
	}
}

func TestSeedRecomputesStatusFromLastSeen(t *testing.T) {
	store := NewStore(10*time.Second, 30*time.Second)
	seen := storeEpoch.Add(-20 * time.Second)
	store.Seed([]rftmodels.Asset{
		// Persisted status says active, but the sighting is 20s old.
		{ID: 1, TagID: "RF001", Status: rftmodels.StatusActive, LastSeen: &seen},
	}, storeEpoch)

	asset, _ := store.GetByTag("RF001")
	if asset.Status != rftmodels.StatusIdle {
		t.Errorf("seeded status = %s, want idle", asset.Status)
	}
}
